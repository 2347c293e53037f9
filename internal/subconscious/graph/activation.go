package graph

import "github.com/hoxofp/subconscious/internal/subconscious/types"

type frontierEntry struct {
	id       string
	strength float64
	depth    int
}

// Activate performs bounded breadth-first spreading activation from name.
// Each node is visited at most once per call; visiting sets its activation
// to min(1, old+incoming) and refreshes last_activated. From a visited node
// below the depth limit, outgoing neighbors are enqueued with propagated
// strength = strength * spreadFactor * edge.weight, and incoming neighbors
// with an additional 0.7 attenuation; propagation below a 0.01 cutoff is
// dropped. Returns the id->activation map of every node visited.
func (g *Graph) Activate(name string, strength float64, depth int) map[string]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := types.Normalize(name)
	if _, ok := g.nodes[start]; !ok {
		return map[string]float64{}
	}

	result := make(map[string]float64)
	visited := make(map[string]bool)
	queue := []frontierEntry{{start, strength, 0}}

	for len(queue) > 0 {
		entry := queue[0]
		queue = queue[1:]

		if visited[entry.id] {
			continue
		}
		node, ok := g.nodes[entry.id]
		if !ok {
			continue
		}
		visited[entry.id] = true

		node.Activation = min1(node.Activation + entry.strength)
		node.LastActivated = now()
		result[entry.id] = node.Activation

		if entry.depth >= depth {
			continue
		}

		for target, byType := range g.edgesOut[entry.id] {
			if visited[target] {
				continue
			}
			for _, edge := range byType {
				propagated := entry.strength * g.spreadFactor * edge.Weight
				if propagated > activationCutoff {
					queue = append(queue, frontierEntry{target, propagated, entry.depth + 1})
				}
			}
		}
		for source, byType := range g.edgesIn[entry.id] {
			if visited[source] {
				continue
			}
			for _, edge := range byType {
				propagated := entry.strength * g.spreadFactor * edge.Weight * 0.7
				if propagated > activationCutoff {
					queue = append(queue, frontierEntry{source, propagated, entry.depth + 1})
				}
			}
		}
	}

	return result
}

// DecayAll subtracts rate from every node's activation, clamped at 0.
func (g *Graph) DecayAll(rate float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, node := range g.nodes {
		node.Activation -= rate
		if node.Activation < 0 {
			node.Activation = 0
		}
	}
}

// GetMostActive returns the n nodes with highest activation.
func (g *Graph) GetMostActive(n int) []types.Concept {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := g.snapshotNodesLocked()
	sortConceptsBy(out, func(a, b types.Concept) bool { return a.Activation > b.Activation })
	return truncate(out, n)
}

// GetMostConnected returns the n nodes with the highest total degree
// (outgoing + incoming edges).
func (g *Graph) GetMostConnected(n int) []types.Concept {
	g.mu.RLock()
	defer g.mu.RUnlock()

	degree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		for _, byType := range g.edgesOut[id] {
			degree[id] += len(byType)
		}
		for _, byType := range g.edgesIn[id] {
			degree[id] += len(byType)
		}
	}

	out := g.snapshotNodesLocked()
	sortConceptsBy(out, func(a, b types.Concept) bool {
		return degree[a.ID()] > degree[b.ID()]
	})
	return truncate(out, n)
}
