package graph

import (
	"sort"

	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

type walkCandidate struct {
	id     string
	weight float64
}

// RandomWalk performs a random walk of the given number of steps starting
// at start (or a uniformly random node if start is empty or absent).
// At each step, candidates are the symmetric neighborhood (both outgoing
// and incoming edges). If empty, the walk teleports to a uniformly random
// node. The next node is chosen with probability proportional to
// 1/max(weight,0.01) when preferDistant, else proportional to weight; if
// every candidate weight is zero, the walk teleports. The returned path has
// length steps+1 (or is empty if the graph has no nodes).
func (g *Graph) RandomWalk(start string, steps int, preferDistant bool) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.nodes) == 0 {
		return nil
	}

	current := types.Normalize(start)
	if current == "" || g.nodes[current] == nil {
		current = g.randomNodeLocked()
	}

	path := []string{current}
	for i := 0; i < steps; i++ {
		candidates := g.symmetricCandidatesLocked(current)
		next := ""
		if len(candidates) == 0 {
			next = g.randomNodeLocked()
		} else {
			next = g.weightedChoiceLocked(candidates, preferDistant)
			if next == "" {
				next = g.randomNodeLocked()
			}
		}
		path = append(path, next)
		current = next
	}
	return path
}

func (g *Graph) symmetricCandidatesLocked(id string) []walkCandidate {
	var out []walkCandidate
	for target, byType := range g.edgesOut[id] {
		for _, edge := range byType {
			out = append(out, walkCandidate{target, edge.Weight})
		}
	}
	for source, byType := range g.edgesIn[id] {
		for _, edge := range byType {
			out = append(out, walkCandidate{source, edge.Weight})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (g *Graph) weightedChoiceLocked(candidates []walkCandidate, preferDistant bool) string {
	scores := make([]float64, len(candidates))
	var total float64
	for i, c := range candidates {
		w := c.weight
		if preferDistant {
			if w < 0.01 {
				w = 0.01
			}
			w = 1.0 / w
		}
		scores[i] = w
		total += w
	}
	if total <= 0 {
		return ""
	}

	pick := g.rng.Float64() * total
	var cumulative float64
	for i, s := range scores {
		cumulative += s
		if pick <= cumulative {
			return candidates[i].id
		}
	}
	return candidates[len(candidates)-1].id
}

func (g *Graph) randomNodeLocked() string {
	if len(g.nodes) == 0 {
		return ""
	}
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[g.rng.Intn(len(ids))]
}
