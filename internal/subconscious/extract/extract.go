// Package extract implements the rule-based concept extraction that seeds
// the cognitive graph from free text, and the lightweight insight
// extraction used when summarizing an LLM response.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-zA-Z0-9]{4,}`)

// DefaultStopWords is the English stop-word set filtered out of extracted
// concepts. Pluggable: callers needing a different language pass their own
// set to ConceptsWith.
var DefaultStopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "their": true, "there": true, "these": true,
	"those": true, "which": true, "about": true, "would": true, "could": true,
	"should": true, "into": true, "over": true, "such": true, "than": true,
	"then": true, "them": true, "they": true, "when": true, "where": true,
	"what": true, "will": true, "your": true, "some": true, "more": true,
	"only": true, "also": true, "just": true, "also.": true,
}

// DefaultSuffixes is the fixed list of morphological endings stripped from
// each token before stop-word filtering, the way the original strips a
// fixed suffix list for its source language. English carries far less
// inflectional morphology, so this list is short; correctness of the
// extractor does not depend on the choice, only on its stability.
var DefaultSuffixes = []string{"ing", "tion", "ness", "ment", "ed", "es", "s"}

const maxConcepts = 15

// Concepts extracts up to 15 deduplicated concept tokens from text using
// the default English stop-word set and suffix list.
func Concepts(text string) []string {
	return ConceptsWith(text, DefaultStopWords, DefaultSuffixes)
}

// ConceptsWith extracts concepts using a caller-supplied stop-word set and
// suffix list, so the pipeline is language-pluggable while staying
// deterministic for a given input and configuration.
func ConceptsWith(text string, stopWords map[string]bool, suffixes []string) []string {
	lower := strings.ToLower(text)
	tokens := tokenPattern.FindAllString(lower, -1)

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens {
		tok = stripSuffixes(tok, suffixes)
		if tok == "" || stopWords[tok] {
			continue
		}
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) >= maxConcepts {
			break
		}
	}
	return out
}

func stripSuffixes(tok string, suffixes []string) string {
	for _, suf := range suffixes {
		if strings.HasSuffix(tok, suf) && len(tok)-len(suf) >= 4 {
			return tok[:len(tok)-len(suf)]
		}
	}
	return tok
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// DefaultInsightMarkers is the fixed marker-word set used to select
// response sentences worth surfacing as insights.
var DefaultInsightMarkers = []string{"interesting", "connection", "perhaps", "notice", "reminds"}

const maxInsights = 3

// InsightSentences splits response into sentences and returns up to 3 that
// contain any of the given marker words, case-insensitively.
func InsightSentences(response string, markers []string) []string {
	sentences := sentenceSplit.Split(response, -1)
	var out []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, m := range markers {
			if strings.Contains(lower, m) {
				out = append(out, s)
				break
			}
		}
		if len(out) >= maxInsights {
			break
		}
	}
	return out
}
