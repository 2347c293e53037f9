package graph

import (
	"sort"
	"time"

	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

func now() time.Time { return time.Now() }

func unixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// snapshotNodesLocked returns owned copies of every node. Caller must hold
// at least a read lock.
func (g *Graph) snapshotNodesLocked() []types.Concept {
	out := make([]types.Concept, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	return out
}

func sortConceptsBy(c []types.Concept, less func(a, b types.Concept) bool) {
	sort.Slice(c, func(i, j int) bool { return less(c[i], c[j]) })
}

func truncate(c []types.Concept, n int) []types.Concept {
	if n > 0 && len(c) > n {
		return c[:n]
	}
	return c
}
