package types

import "strings"

// Normalize produces the canonical concept identifier: lowercased and
// trimmed. Every graph lookup goes through this function so two spellings
// of the same concept name always resolve to the same node.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
