package graph

// Stats summarizes graph size.
type Stats struct {
	NodeCount int            `json:"node_count"`
	EdgeCount int            `json:"edge_count"`
	ByNodeType map[string]int `json:"by_node_type"`
	ByEdgeType map[string]int `json:"by_edge_type"`
}

// Stats reports node/edge counts broken down by type.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{ByNodeType: make(map[string]int), ByEdgeType: make(map[string]int)}
	for _, n := range g.nodes {
		s.NodeCount++
		s.ByNodeType[string(n.NodeType)]++
	}
	for _, byTarget := range g.edgesOut {
		for _, byType := range byTarget {
			for edgeType := range byType {
				s.EdgeCount++
				s.ByEdgeType[string(edgeType)]++
			}
		}
	}
	return s
}

// ExportedGraph is an adjacency dump suitable for external renderers.
type ExportedGraph struct {
	Nodes []ExportedNode `json:"nodes"`
	Edges []ExportedEdge `json:"edges"`
}

// ExportedNode is one node entry of an ExportedGraph.
type ExportedNode struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	NodeType   string  `json:"node_type"`
	Activation float64 `json:"activation"`
	Importance float64 `json:"importance"`
	Domain     string  `json:"domain"`
}

// ExportedEdge is one edge entry of an ExportedGraph.
type ExportedEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	EdgeType string  `json:"edge_type"`
	Weight   float64 `json:"weight"`
}

// ExportGraph returns an owned adjacency dump of the whole graph.
func (g *Graph) ExportGraph() ExportedGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out ExportedGraph
	for id, n := range g.nodes {
		out.Nodes = append(out.Nodes, ExportedNode{
			ID: id, Name: n.Name, NodeType: string(n.NodeType),
			Activation: n.Activation, Importance: n.Importance, Domain: n.Domain,
		})
	}
	for _, byTarget := range g.edgesOut {
		for _, byType := range byTarget {
			for edgeType, edge := range byType {
				out.Edges = append(out.Edges, ExportedEdge{
					Source: edge.Source, Target: edge.Target,
					EdgeType: string(edgeType), Weight: edge.Weight,
				})
			}
		}
	}
	return out
}
