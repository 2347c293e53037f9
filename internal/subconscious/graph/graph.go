// Package graph implements the Cognitive Graph (C7): a typed directed
// multigraph of concepts and associations with spreading activation,
// random-walk traversal, clustering and single-file JSON persistence.
//
// All mutations are serialized by a single exclusive lock (mu), matching
// the "shared mutable graph" design note: no observer may see a
// partially-constructed node or edge, whether it reads from the foreground
// think path or the background dream loop.
package graph

import (
	"math/rand"
	"sync"
	"time"

	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

const activationCutoff = 0.01

// Graph is the in-memory cognitive graph.
type Graph struct {
	mu sync.RWMutex

	nodes map[string]*types.Concept

	// edgesOut[source][target] holds at most one edge per EdgeType,
	// enforcing the "at most one edge per (source,target,type) triple"
	// invariant directly in the index shape.
	edgesOut map[string]map[string]map[types.EdgeType]*types.Association
	edgesIn  map[string]map[string]map[types.EdgeType]*types.Association

	spreadFactor float64
	rng          *rand.Rand
}

// New creates an empty graph. spreadFactor controls activation propagation
// (ACTIVATION_DECAY's companion, SPREAD_FACTOR, from configuration). seed
// makes the random source reproducible for tests.
func New(spreadFactor float64, seed int64) *Graph {
	return &Graph{
		nodes:        make(map[string]*types.Concept),
		edgesOut:     make(map[string]map[string]map[types.EdgeType]*types.Association),
		edgesIn:      make(map[string]map[string]map[types.EdgeType]*types.Association),
		spreadFactor: spreadFactor,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// AddConcept creates or reinforces a node. If the node already exists, its
// frequency is incremented, last_activated is refreshed, its importance is
// raised if the new value is larger, and its domain is filled in if it was
// previously empty. Otherwise a fresh node is created with activation 0
// and frequency 1.
func (g *Graph) AddConcept(name string, nodeType types.NodeType, domain string, importance float64, metadata map[string]any) *types.Concept {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addConceptLocked(name, nodeType, domain, importance, metadata)
}

func (g *Graph) addConceptLocked(name string, nodeType types.NodeType, domain string, importance float64, metadata map[string]any) *types.Concept {
	id := types.Normalize(name)
	now := time.Now()

	if existing, ok := g.nodes[id]; ok {
		existing.Frequency++
		existing.LastActivated = now
		if importance > existing.Importance {
			existing.Importance = importance
		}
		if existing.Domain == "" && domain != "" {
			existing.Domain = domain
		}
		return existing
	}

	if nodeType == "" {
		nodeType = types.NodeConcept
	}
	c := &types.Concept{
		Name:          name,
		NodeType:      nodeType,
		Activation:    0,
		Importance:    importance,
		Frequency:     1,
		Domain:        domain,
		Metadata:      metadata,
		CreatedAt:     now,
		LastActivated: now,
	}
	g.nodes[id] = c
	return c
}

// GetConcept returns the node for name, if present.
func (g *Graph) GetConcept(name string) (types.Concept, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.nodes[types.Normalize(name)]
	if !ok {
		return types.Concept{}, false
	}
	return *c, true
}

// RemoveConcept deletes a node and every edge incident to it.
func (g *Graph) RemoveConcept(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := types.Normalize(name)
	delete(g.nodes, id)

	for target := range g.edgesOut[id] {
		delete(g.edgesIn[target], id)
	}
	delete(g.edgesOut, id)

	for source := range g.edgesIn[id] {
		delete(g.edgesOut[source], id)
	}
	delete(g.edgesIn, id)
}

// Connect creates or reinforces the edge (source, target, edgeType). If an
// edge of that type already exists between the ordered pair, its weight is
// raised by 0.05 (saturating at 1.0) and its reinforced count incremented;
// otherwise a fresh edge is inserted with the given weight and confidence.
// Missing endpoints are auto-created as plain concepts.
func (g *Graph) Connect(source, target string, edgeType types.EdgeType, weight, confidence float64) *types.Association {
	g.mu.Lock()
	defer g.mu.Unlock()

	srcID := types.Normalize(source)
	tgtID := types.Normalize(target)
	if _, ok := g.nodes[srcID]; !ok {
		g.addConceptLocked(source, types.NodeConcept, "", 0.5, nil)
	}
	if _, ok := g.nodes[tgtID]; !ok {
		g.addConceptLocked(target, types.NodeConcept, "", 0.5, nil)
	}
	if edgeType == "" {
		edgeType = types.EdgeSemantic
	}

	if existing := g.edgeAt(srcID, tgtID, edgeType); existing != nil {
		existing.Weight = min1(existing.Weight + 0.05)
		existing.ReinforcedCount++
		return existing
	}

	edge := &types.Association{
		Source:          srcID,
		Target:          tgtID,
		EdgeType:        edgeType,
		Weight:          weight,
		Confidence:      confidence,
		CreatedAt:       time.Now(),
		ReinforcedCount: 1,
	}
	g.indexEdge(edge)
	return edge
}

func (g *Graph) edgeAt(source, target string, edgeType types.EdgeType) *types.Association {
	byTarget, ok := g.edgesOut[source]
	if !ok {
		return nil
	}
	byType, ok := byTarget[target]
	if !ok {
		return nil
	}
	return byType[edgeType]
}

func (g *Graph) indexEdge(edge *types.Association) {
	if g.edgesOut[edge.Source] == nil {
		g.edgesOut[edge.Source] = make(map[string]map[types.EdgeType]*types.Association)
	}
	if g.edgesOut[edge.Source][edge.Target] == nil {
		g.edgesOut[edge.Source][edge.Target] = make(map[types.EdgeType]*types.Association)
	}
	g.edgesOut[edge.Source][edge.Target][edge.EdgeType] = edge

	if g.edgesIn[edge.Target] == nil {
		g.edgesIn[edge.Target] = make(map[string]map[types.EdgeType]*types.Association)
	}
	if g.edgesIn[edge.Target][edge.Source] == nil {
		g.edgesIn[edge.Target][edge.Source] = make(map[types.EdgeType]*types.Association)
	}
	g.edgesIn[edge.Target][edge.Source][edge.EdgeType] = edge
}

// ConnectCooccurrence connects every unordered pair of distinct concepts
// with a co-occurrence edge of the given weight (0.3 if unset).
func (g *Graph) ConnectCooccurrence(concepts []string, weight float64) {
	if weight <= 0 {
		weight = 0.3
	}
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			g.Connect(concepts[i], concepts[j], types.EdgeCooccurrence, weight, 1.0)
		}
	}
}

// Neighbor is one entry returned by GetNeighbors.
type Neighbor struct {
	TargetID   string
	EdgeType   types.EdgeType
	Weight     float64
	Confidence float64
	Node       types.Concept
	Direction  string // "out" or "in"
}

// GetNeighbors returns both outgoing and incoming edges of name that match
// types (all types if empty) and have weight >= minWeight.
func (g *Graph) GetNeighbors(name string, edgeTypes []types.EdgeType, minWeight float64) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id := types.Normalize(name)
	allowed := make(map[types.EdgeType]bool, len(edgeTypes))
	for _, t := range edgeTypes {
		allowed[t] = true
	}

	var out []Neighbor
	for target, byType := range g.edgesOut[id] {
		for edgeType, edge := range byType {
			if len(allowed) > 0 && !allowed[edgeType] {
				continue
			}
			if edge.Weight < minWeight {
				continue
			}
			node := g.nodes[target]
			if node == nil {
				continue
			}
			out = append(out, Neighbor{target, edgeType, edge.Weight, edge.Confidence, *node, "out"})
		}
	}
	for source, byType := range g.edgesIn[id] {
		for edgeType, edge := range byType {
			if len(allowed) > 0 && !allowed[edgeType] {
				continue
			}
			if edge.Weight < minWeight {
				continue
			}
			node := g.nodes[source]
			if node == nil {
				continue
			}
			out = append(out, Neighbor{source, edgeType, edge.Weight, edge.Confidence, *node, "in"})
		}
	}
	return out
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
