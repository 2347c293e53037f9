package creative

import (
	"context"
	"testing"

	"github.com/hoxofp/subconscious/internal/subconscious/graph"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

func TestSparkWithoutProviderFallsBackDeterministically(t *testing.T) {
	g := graph.New(0.6, 1)
	g.Connect("memory", "graph", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("graph", "dream", types.EdgeSemantic, 0.5, 0.5)
	g.Connect("dream", "spark", types.EdgeSemantic, 0.5, 0.5)

	e := New(g, nil, 0.8, 1)
	sparks := e.Spark(context.Background(), "memory and graph", types.StrategyBisociation, 2)

	if len(sparks) != 2 {
		t.Fatalf("expected 2 sparks, got %d", len(sparks))
	}
	for _, s := range sparks {
		if s.Idea == "" {
			t.Error("expected a non-empty fallback idea with no provider")
		}
		if s.Strategy != types.StrategyBisociation {
			t.Errorf("Strategy = %v, want bisociation", s.Strategy)
		}
		if s.Novelty != noveltyBisociation {
			t.Errorf("Novelty = %v, want %v", s.Novelty, noveltyBisociation)
		}
	}
}

func TestSparkForPairUsesExplicitEndpoints(t *testing.T) {
	g := graph.New(0.6, 1)
	e := New(g, nil, 0.8, 1)

	spark := e.SparkForPair(context.Background(), "sun", "moon", types.StrategyAnalogy)
	if spark.SourceA != "sun" || spark.SourceB != "moon" {
		t.Errorf("expected explicit endpoints preserved, got %+v", spark)
	}
	if spark.Novelty != noveltyAnalogy {
		t.Errorf("Novelty = %v, want %v", spark.Novelty, noveltyAnalogy)
	}
}

func TestSparkSamplesStrategyWhenEmpty(t *testing.T) {
	g := graph.New(0.6, 1)
	g.Connect("a", "b", types.EdgeSemantic, 0.5, 0.5)
	e := New(g, nil, 0.8, 7)

	sparks := e.Spark(context.Background(), "", "", 5)
	if len(sparks) != 5 {
		t.Fatalf("expected 5 sparks, got %d", len(sparks))
	}
	for _, s := range sparks {
		found := false
		for _, strat := range allStrategies {
			if s.Strategy == strat {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("unexpected strategy sampled: %v", s.Strategy)
		}
	}
}
