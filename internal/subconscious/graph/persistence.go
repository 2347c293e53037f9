package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

// persistedNode and persistedEdge are the self-describing document shapes
// written to disk; they carry every attribute needed for load(save(x)) = x.
type persistedNode struct {
	Name          string         `json:"name"`
	NodeType      string         `json:"node_type"`
	Activation    float64        `json:"activation"`
	Importance    float64        `json:"importance"`
	Frequency     int            `json:"frequency"`
	Domain        string         `json:"domain"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     int64          `json:"created_at"`
	LastActivated int64          `json:"last_activated"`
}

type persistedEdge struct {
	Source          string         `json:"source"`
	Target          string         `json:"target"`
	EdgeType        string         `json:"edge_type"`
	Weight          float64        `json:"weight"`
	Confidence      float64        `json:"confidence"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       int64          `json:"created_at"`
	ReinforcedCount int            `json:"reinforced_count"`
}

type persistedGraph struct {
	Nodes []persistedNode `json:"nodes"`
	Edges []persistedEdge `json:"edges"`
}

// Save writes the full graph to path as a self-describing JSON document.
func (g *Graph) Save(path string) error {
	g.mu.RLock()
	doc := g.toPersistedLocked()
	g.mu.RUnlock()

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: marshal: %w: %w", cogerrors.ErrParse, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("graph: mkdir: %w: %w", cogerrors.ErrStorage, err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("graph: write %s: %w: %w", path, cogerrors.ErrStorage, err)
	}
	return nil
}

func (g *Graph) toPersistedLocked() persistedGraph {
	var doc persistedGraph
	for _, n := range g.nodes {
		doc.Nodes = append(doc.Nodes, persistedNode{
			Name: n.Name, NodeType: string(n.NodeType), Activation: n.Activation,
			Importance: n.Importance, Frequency: n.Frequency, Domain: n.Domain,
			Metadata: n.Metadata, CreatedAt: n.CreatedAt.UnixNano(),
			LastActivated: n.LastActivated.UnixNano(),
		})
	}
	for _, byTarget := range g.edgesOut {
		for _, byType := range byTarget {
			for edgeType, edge := range byType {
				doc.Edges = append(doc.Edges, persistedEdge{
					Source: edge.Source, Target: edge.Target, EdgeType: string(edgeType),
					Weight: edge.Weight, Confidence: edge.Confidence, Metadata: edge.Metadata,
					CreatedAt: edge.CreatedAt.UnixNano(), ReinforcedCount: edge.ReinforcedCount,
				})
			}
		}
	}
	return doc
}

// Load reconstructs the graph from path. A missing or malformed file
// yields an empty graph without error, matching the ParseError/StorageError
// degrade-to-empty contract.
func Load(path string, spreadFactor float64, seed int64) *Graph {
	g := New(spreadFactor, seed)

	raw, err := os.ReadFile(path)
	if err != nil {
		return g
	}
	var doc persistedGraph
	if err := json.Unmarshal(raw, &doc); err != nil {
		return g
	}

	for _, n := range doc.Nodes {
		id := types.Normalize(n.Name)
		g.nodes[id] = &types.Concept{
			Name: n.Name, NodeType: types.NodeType(n.NodeType), Activation: n.Activation,
			Importance: n.Importance, Frequency: n.Frequency, Domain: n.Domain,
			Metadata: n.Metadata, CreatedAt: unixNano(n.CreatedAt), LastActivated: unixNano(n.LastActivated),
		}
	}
	for _, e := range doc.Edges {
		edge := &types.Association{
			Source: e.Source, Target: e.Target, EdgeType: types.EdgeType(e.EdgeType),
			Weight: e.Weight, Confidence: e.Confidence, Metadata: e.Metadata,
			CreatedAt: unixNano(e.CreatedAt), ReinforcedCount: e.ReinforcedCount,
		}
		g.indexEdge(edge)
	}
	return g
}
