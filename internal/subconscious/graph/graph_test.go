package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

func TestAddConceptReinforcesExisting(t *testing.T) {
	g := New(0.6, 1)
	g.AddConcept("Neuron", types.NodeConcept, "", 0.3, nil)
	c := g.AddConcept("neuron", types.NodeConcept, "biology", 0.7, nil)

	if c.Frequency != 2 {
		t.Errorf("Frequency = %d, want 2", c.Frequency)
	}
	if c.Importance != 0.7 {
		t.Errorf("Importance = %v, want 0.7 (max of old/new)", c.Importance)
	}
	if c.Domain != "biology" {
		t.Errorf("Domain = %q, want filled in from empty", c.Domain)
	}
}

func TestConnectReinforcesExistingEdge(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeCausal, 0.9, 0.5)
	edge := g.Connect("a", "b", types.EdgeCausal, 0.9, 0.5)

	if edge.ReinforcedCount != 2 {
		t.Errorf("ReinforcedCount = %d, want 2", edge.ReinforcedCount)
	}
	if got, want := edge.Weight, 0.95; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Weight = %v, want %v (0.9+0.05)", got, want)
	}
}

func TestConnectWeightSaturatesAtOne(t *testing.T) {
	g := New(0.6, 1)
	for i := 0; i < 10; i++ {
		g.Connect("a", "b", types.EdgeSemantic, 0.99, 0.5)
	}
	edge := g.Connect("a", "b", types.EdgeSemantic, 0.99, 0.5)
	if edge.Weight != 1.0 {
		t.Errorf("Weight = %v, want capped at 1.0", edge.Weight)
	}
}

func TestRemoveConceptRemovesIncidentEdges(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("b", "c", types.EdgeSemantic, 0.5, 0.5)

	g.RemoveConcept("b")

	if _, ok := g.GetConcept("b"); ok {
		t.Fatal("expected b removed")
	}
	if n := g.GetNeighbors("a", nil, 0); len(n) != 0 {
		t.Errorf("expected a to have no neighbors after b removed, got %v", n)
	}
	if n := g.GetNeighbors("c", nil, 0); len(n) != 0 {
		t.Errorf("expected c to have no neighbors after b removed, got %v", n)
	}
}

func TestActivateSpreadsAndDecays(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.8, 1.0)

	result := g.Activate("a", 1.0, 2)
	if _, ok := result["a"]; !ok {
		t.Fatal("expected start node activated")
	}
	if v, ok := result["b"]; !ok || v <= 0 {
		t.Fatalf("expected neighbor b activated, got %v ok=%v", v, ok)
	}

	g.DecayAll(1.0)
	a, _ := g.GetConcept("a")
	if a.Activation != 0 {
		t.Errorf("Activation after full decay = %v, want 0 (clamped)", a.Activation)
	}
}

func TestActivateMissingStartReturnsEmpty(t *testing.T) {
	g := New(0.6, 1)
	result := g.Activate("nonexistent", 1.0, 2)
	if len(result) != 0 {
		t.Errorf("expected empty result for missing start node, got %v", result)
	}
}

func TestRandomWalkDeterministicForSeed(t *testing.T) {
	g1 := New(0.6, 42)
	g2 := New(0.6, 42)
	for _, g := range []*Graph{g1, g2} {
		g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
		g.Connect("b", "c", types.EdgeSemantic, 0.5, 0.5)
		g.Connect("c", "d", types.EdgeSemantic, 0.5, 0.5)
	}

	w1 := g1.RandomWalk("a", 5, true)
	w2 := g2.RandomWalk("a", 5, true)

	if len(w1) != len(w2) {
		t.Fatalf("walk lengths differ: %d vs %d", len(w1), len(w2))
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Fatalf("walks diverge at step %d: %q vs %q", i, w1[i], w2[i])
		}
	}
}

func TestFindDistantPairsRanksUnreachableFirst(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
	g.AddConcept("isolated", types.NodeConcept, "", 0.5, nil)

	pairs := g.FindDistantPairs(5)
	if len(pairs) == 0 {
		t.Fatal("expected at least one pair")
	}
	if pairs[0].Distance != -1 {
		t.Errorf("expected unreachable pair ranked first, got distance %d", pairs[0].Distance)
	}
}

func TestFindClustersConnectedComponents(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("c", "d", types.EdgeSemantic, 0.5, 0.5)

	clusters := g.FindClusters()
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %v", len(clusters), clusters)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := New(0.6, 1)
	g.AddConcept("memory", types.NodeConcept, "cognition", 0.8, nil)
	g.Connect("memory", "graph", types.EdgeAnalogical, 0.6, 0.7)

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(path, 0.6, 1)
	c, ok := loaded.GetConcept("memory")
	if !ok {
		t.Fatal("expected 'memory' concept to survive round trip")
	}
	if c.Domain != "cognition" || c.Importance != 0.8 {
		t.Errorf("concept fields did not round-trip: %+v", c)
	}

	neighbors := loaded.GetNeighbors("memory", nil, 0)
	if len(neighbors) != 1 || neighbors[0].TargetID != "graph" {
		t.Errorf("edge did not round-trip: %v", neighbors)
	}
}

func TestLoadMissingFileDegradesToEmpty(t *testing.T) {
	g := Load(filepath.Join(t.TempDir(), "missing.json"), 0.6, 1)
	if g.Stats().NodeCount != 0 {
		t.Errorf("expected empty graph for missing file, got %d nodes", g.Stats().NodeCount)
	}
}

func TestLoadMalformedFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := Load(path, 0.6, 1)
	if g.Stats().NodeCount != 0 {
		t.Errorf("expected empty graph for malformed file, got %d nodes", g.Stats().NodeCount)
	}
}

func TestStats(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
	stats := g.Stats()
	if stats.NodeCount != 2 || stats.EdgeCount != 1 {
		t.Errorf("Stats() = %+v, want 2 nodes / 1 edge", stats)
	}
}

func TestGetMostActiveOrdersByActivation(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("x", "y", types.EdgeSemantic, 0.8, 1.0)
	g.Activate("x", 1.0, 1)

	top := g.GetMostActive(1)
	if len(top) != 1 || top[0].ID() != "x" {
		t.Fatalf("GetMostActive(1) = %+v, want [x]", top)
	}
}

func TestGetMostConnectedCountsBothDirections(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("hub", "a", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("hub", "b", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("c", "hub", types.EdgeSemantic, 0.5, 0.5)

	top := g.GetMostConnected(1)
	if len(top) != 1 || top[0].ID() != "hub" {
		t.Fatalf("GetMostConnected(1) = %+v, want [hub]", top)
	}
}

func TestExportGraphDumpsNodesAndEdges(t *testing.T) {
	g := New(0.6, 1)
	g.Connect("a", "b", types.EdgeCausal, 0.7, 0.9)

	export := g.ExportGraph()
	if len(export.Nodes) != 2 {
		t.Errorf("exported %d nodes, want 2", len(export.Nodes))
	}
	if len(export.Edges) != 1 || export.Edges[0].EdgeType != string(types.EdgeCausal) {
		t.Errorf("exported edges = %+v, want one causal edge", export.Edges)
	}
}
