// Package mind implements the Mind Orchestrator (C11): the public surface
// of the cognitive middleware — think, learn, recall, imagine, dream —
// composed leaf-first over the memory manager, cognitive graph, creative
// engine and dream processor, the way the teacher's
// internal/agent/orchestrator.go composes its own collaborators.
package mind

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hoxofp/subconscious/internal/subconscious/config"
	"github.com/hoxofp/subconscious/internal/subconscious/creative"
	"github.com/hoxofp/subconscious/internal/subconscious/dream"
	"github.com/hoxofp/subconscious/internal/subconscious/extract"
	"github.com/hoxofp/subconscious/internal/subconscious/graph"
	"github.com/hoxofp/subconscious/internal/subconscious/llm"
	"github.com/hoxofp/subconscious/internal/subconscious/memory"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

// Mind is the public orchestrator. Provider may be nil: every operation
// degrades to a deterministic, non-LLM code path when it is absent.
type Mind struct {
	cfg      *config.Settings
	memory   *memory.Manager
	graph    *graph.Graph
	provider llm.Provider
	creative *creative.Engine
	dream    *dream.Processor
	graphPath string
}

// New composes a Mind over already-constructed collaborators, leaves
// first: memory manager and graph must exist before the creative engine,
// which must exist before the dream processor.
func New(cfg *config.Settings, m *memory.Manager, g *graph.Graph, provider llm.Provider, graphPath string) *Mind {
	ce := creative.New(g, provider, cfg.CreativityTemperature, 1)
	dp := dream.New(m, g, ce, graphPath)
	return &Mind{cfg: cfg, memory: m, graph: g, provider: provider, creative: ce, dream: dp, graphPath: graphPath}
}

// Think is the primary entry point: it extracts concepts from message,
// fans recall out across the memory layers, spreads activation seeded by
// the extracted concepts, assembles a context, optionally calls the LLM
// provider, stores both turns, produces creative sparks, and persists the
// graph. Side effects happen in exactly this order, matching the
// concurrency contract: recall -> activate -> learn-concepts -> (LLM call)
// -> store-user -> store-response -> creative sparks -> graph save.
func (m *Mind) Think(ctx context.Context, message string, includeCreative bool, nCreative int) types.ThinkResult {
	concepts := extract.Concepts(message)

	fanOut := m.memory.Recall(ctx, message, 5, "")
	recalled := flattenRecalled(fanOut)

	activated := make(map[string]float64)
	for _, c := range concepts {
		for id, v := range m.graph.Activate(c, 1.0, 2) {
			activated[id] = v
		}
	}
	for _, c := range concepts {
		m.graph.AddConcept(c, types.NodeConcept, "", 0.5, nil)
	}
	if len(concepts) >= 2 {
		m.graph.ConnectCooccurrence(concepts, 0.4)
	}

	contextText := m.buildContext(message, recalled, activated)

	var response string
	if m.provider != nil {
		reply, err := m.provider.Generate(ctx, contextText, "", 0.7, 2048)
		if err == nil && strings.TrimSpace(reply) != "" {
			response = reply
		}
	}
	if response == "" {
		response = m.fallbackSummary(message, recalled, activated)
	}

	if _, err := m.memory.Remember(ctx, message, types.MemoryEpisodic, 0.5, "", nil, "user"); err != nil {
		_ = err // storage errors degrade silently per the error-handling design
	}
	if _, err := m.memory.Remember(ctx, response, types.MemoryEpisodic, 0.5, "", nil, "assistant"); err != nil {
		_ = err
	}

	var sparks []types.CreativeSpark
	if includeCreative {
		sparks = m.creative.Spark(ctx, contextText, "", nCreative)
	}

	_ = m.graph.Save(m.graphPath)

	var assocs []types.Association
	for _, c := range concepts {
		for _, nb := range m.graph.GetNeighbors(c, nil, m.cfg.MinAssociationWeight) {
			assocs = append(assocs, types.Association{
				Source: c, Target: nb.TargetID, EdgeType: nb.EdgeType,
				Weight: nb.Weight, Confidence: nb.Confidence,
			})
		}
	}

	return types.ThinkResult{
		Response:          response,
		Associations:      assocs,
		Insights:          insightsFrom(response),
		CreativeSparks:    sparks,
		ActivatedConcepts: activated,
		RecalledMemories:  recalled,
	}
}

// Learn stores content as a semantic record, adds each extracted concept
// to the graph under domain with importance*0.8, connects them by
// co-occurrence if there are at least two, saves the graph, and returns
// the stored record.
func (m *Mind) Learn(ctx context.Context, content, domain string, importance float64, tags []string) (types.MemoryRecord, error) {
	concepts := extract.Concepts(content)

	record, err := m.memory.Remember(ctx, content, types.MemorySemantic, importance, domain, tags, "learn")
	if err != nil {
		return record, err
	}

	for _, c := range concepts {
		m.graph.AddConcept(c, types.NodeConcept, domain, importance*0.8, nil)
	}
	if len(concepts) >= 2 {
		m.graph.ConnectCooccurrence(concepts, 0.4)
	}
	_ = m.graph.Save(m.graphPath)

	return record, nil
}

// Recall delegates to the memory manager's flattened recall.
func (m *Mind) Recall(ctx context.Context, query string, n int, domain string) []memory.FlatResult {
	return m.memory.RecallFlat(ctx, query, n)
}

// Imagine produces creative sparks. If both a and b are supplied, it
// returns one spark per strategy (bisociation, blending, analogy),
// truncated to n. Otherwise it delegates to the creative engine's Spark
// using whichever of a/b is non-empty as context.
func (m *Mind) Imagine(ctx context.Context, a, b string, n int) []types.CreativeSpark {
	if n <= 0 {
		n = 3
	}
	if a != "" && b != "" {
		strategies := []types.CreativityStrategy{types.StrategyBisociation, types.StrategyBlending, types.StrategyAnalogy}
		sparks := make([]types.CreativeSpark, 0, len(strategies))
		for _, s := range strategies {
			sparks = append(sparks, m.creative.SparkForPair(ctx, a, b, s))
		}
		if len(sparks) > n {
			sparks = sparks[:n]
		}
		return sparks
	}

	contextText := a
	if contextText == "" {
		contextText = b
	}
	return m.creative.Spark(ctx, contextText, "", n)
}

// Dream runs a single dream cycle synchronously.
func (m *Mind) Dream(ctx context.Context) types.DreamReport {
	return m.dream.DreamOnce(ctx, m.cfg.ActivationDecay)
}

// StartDreaming spawns the background dream loop on the configured
// interval.
func (m *Mind) StartDreaming() {
	m.dream.Start(m.cfg.DreamInterval, m.cfg.ActivationDecay)
}

// StopDreaming signals the dream loop to stop and waits (up to 5s) for it
// to join.
func (m *Mind) StopDreaming() {
	m.dream.Stop()
}

// StartConsolidating spawns a standalone consolidation loop on the
// configured CONSOLIDATION_INTERVAL, independent of the full dream
// cycle's DREAM_INTERVAL cadence.
func (m *Mind) StartConsolidating() {
	m.dream.StartConsolidating(m.cfg.ConsolidationInterval)
}

// StopConsolidating signals the standalone consolidation loop to stop.
func (m *Mind) StopConsolidating() {
	m.dream.StopConsolidating()
}

// Stats summarizes memory and graph state.
type Stats struct {
	Memory memory.Stats
	Graph  graph.Stats
}

// Stats reports the current memory and graph statistics.
func (m *Mind) Stats(ctx context.Context) (Stats, error) {
	memStats, err := m.memory.GetStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Memory: memStats, Graph: m.graph.Stats()}, nil
}

// Reset clears working memory only; Mind keeps no separate conversation
// buffer. Episodic, semantic, procedural storage and the graph are
// untouched.
func (m *Mind) Reset() {
	m.memory.Working.Clear()
}

func flattenRecalled(r types.RecallResult) []types.MemoryRecord {
	var out []types.MemoryRecord
	out = append(out, r.Episodic...)
	out = append(out, r.Semantic...)
	out = append(out, r.Procedural...)
	return out
}

// buildContext assembles the think prompt: the user message, up to 5
// layer-tagged recalled memories truncated to 150 chars, a sorted top-8
// list of activated concepts with activation, and for the top-3 activated
// concepts, their up-to-5 graph neighbors at min_weight 0.3.
func (m *Mind) buildContext(message string, recalled []types.MemoryRecord, activated map[string]float64) string {
	var b strings.Builder
	b.WriteString(message)

	limit := len(recalled)
	if limit > 5 {
		limit = 5
	}
	for _, r := range recalled[:limit] {
		content := r.Content
		if len(content) > 150 {
			content = content[:150]
		}
		fmt.Fprintf(&b, "\n[%s] %s", r.MemoryType, content)
	}

	type scored struct {
		id  string
		act float64
	}
	ranked := make([]scored, 0, len(activated))
	for id, act := range activated {
		ranked = append(ranked, scored{id, act})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].act > ranked[j].act })
	if len(ranked) > 8 {
		ranked = ranked[:8]
	}
	for _, s := range ranked {
		fmt.Fprintf(&b, "\nconcept: %s (%.2f)", s.id, s.act)
	}

	top3 := ranked
	if len(top3) > 3 {
		top3 = top3[:3]
	}
	for _, s := range top3 {
		neighbors := m.graph.GetNeighbors(s.id, nil, 0.3)
		if len(neighbors) > 5 {
			neighbors = neighbors[:5]
		}
		for _, nb := range neighbors {
			fmt.Fprintf(&b, "\nneighbor of %s: %s (%s, %.2f)", s.id, nb.TargetID, nb.EdgeType, nb.Weight)
		}
	}

	return b.String()
}

// fallbackSummary builds a deterministic response when no provider is
// configured or the provider call failed.
func (m *Mind) fallbackSummary(message string, recalled []types.MemoryRecord, activated map[string]float64) string {
	return fmt.Sprintf(
		"I considered %q, drawing on %d recalled memories and %d activated concepts.",
		message, len(recalled), len(activated),
	)
}

func insightsFrom(response string) []types.Insight {
	sentences := extract.InsightSentences(response, extract.DefaultInsightMarkers)
	out := make([]types.Insight, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, types.Insight{Content: s, Confidence: 0.6, InsightType: "intuition"})
	}
	return out
}
