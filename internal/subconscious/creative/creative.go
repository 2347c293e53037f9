// Package creative implements the Creative Engine (C9): four recombination
// strategies over the cognitive graph, each producing a CreativeSpark.
package creative

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/hoxofp/subconscious/internal/subconscious/graph"
	"github.com/hoxofp/subconscious/internal/subconscious/llm"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

// novelty baselines per strategy, matching the original reference
// implementation exactly.
const (
	noveltyBisociation = 0.8
	noveltyBlending    = 0.7
	noveltyAnalogy     = 0.65
	noveltyLateral     = 0.9
	noveltyFallback    = 0.5
)

var allStrategies = []types.CreativityStrategy{
	types.StrategyBisociation, types.StrategyBlending,
	types.StrategyAnalogy, types.StrategyLateral,
}

// Engine produces creative sparks over a cognitive graph, optionally
// enriched by an LLM provider. Without a provider it falls back to
// deterministic placeholder ideas naming the source concepts.
type Engine struct {
	graph       *graph.Graph
	provider    llm.Provider
	temperature float64
	rng         *rand.Rand
}

// New constructs a creative engine over graph g. provider may be nil.
func New(g *graph.Graph, provider llm.Provider, temperature float64, seed int64) *Engine {
	return &Engine{graph: g, provider: provider, temperature: temperature, rng: rand.New(rand.NewSource(seed))}
}

// Spark produces n creative sparks. If strategy is empty, one is sampled
// uniformly for each spark.
func (e *Engine) Spark(ctx context.Context, contextText string, strategy types.CreativityStrategy, n int) []types.CreativeSpark {
	if n <= 0 {
		n = 1
	}
	out := make([]types.CreativeSpark, 0, n)
	for i := 0; i < n; i++ {
		strat := strategy
		if strat == "" {
			strat = allStrategies[e.rng.Intn(len(allStrategies))]
		}
		out = append(out, e.sparkOne(ctx, contextText, strat))
	}
	return out
}

func (e *Engine) sparkOne(ctx context.Context, contextText string, strategy types.CreativityStrategy) types.CreativeSpark {
	switch strategy {
	case types.StrategyBisociation:
		return e.bisociation(ctx)
	case types.StrategyBlending:
		return e.blending(ctx, contextText)
	case types.StrategyAnalogy:
		return e.analogy(ctx, contextText)
	case types.StrategyLateral:
		return e.lateral(ctx, contextText)
	default:
		return e.bisociation(ctx)
	}
}

// bisociation picks two structurally distant concepts and asks the LLM for
// a surprising common ground.
func (e *Engine) bisociation(ctx context.Context) types.CreativeSpark {
	pairs := e.graph.FindDistantPairs(3)
	if len(pairs) == 0 {
		return e.fallback(ctx, types.StrategyBisociation, "", "", "find an unexpected link between two distant ideas")
	}
	pick := pairs[e.rng.Intn(len(pairs))]

	prompt := fmt.Sprintf(
		"In one striking sentence, describe a surprising common ground between %q and %q.",
		pick.A, pick.B)
	idea, ok := e.ask(ctx, prompt)
	if !ok {
		idea = fmt.Sprintf("a surprising bridge between %s and %s", pick.A, pick.B)
	}
	return types.CreativeSpark{
		Idea: idea, Strategy: types.StrategyBisociation,
		SourceA: pick.A, SourceB: pick.B, Novelty: noveltyBisociation, Relevance: 0.5,
	}
}

// blending picks two context-relevant concepts and asks the LLM to blend
// them into a new concept.
func (e *Engine) blending(ctx context.Context, contextText string) types.CreativeSpark {
	a, b, ok := e.pickRelevantPair(contextText)
	if !ok {
		return e.fallback(ctx, types.StrategyBlending, a, b, "blend two familiar ideas into something new")
	}

	prompt := fmt.Sprintf("Blend %q and %q into a single new concept; name it and explain it in one sentence.", a, b)
	idea, ok2 := e.ask(ctx, prompt)
	if !ok2 {
		idea = fmt.Sprintf("a blend of %s and %s", a, b)
	}
	return types.CreativeSpark{
		Idea: idea, Strategy: types.StrategyBlending,
		SourceA: a, SourceB: b, Novelty: noveltyBlending, Relevance: 0.6,
	}
}

// analogy picks the same kind of pair as blending but asks the LLM to
// transfer structural relations from source to target.
func (e *Engine) analogy(ctx context.Context, contextText string) types.CreativeSpark {
	a, b, ok := e.pickRelevantPair(contextText)
	if !ok {
		return e.fallback(ctx, types.StrategyAnalogy, a, b, "draw an analogy between two familiar ideas")
	}

	prompt := fmt.Sprintf("Explain %q by analogy to %q: what structural relationship transfers from one to the other?", b, a)
	idea, ok2 := e.ask(ctx, prompt)
	if !ok2 {
		idea = fmt.Sprintf("%s is to its domain as %s is to its own", a, b)
	}
	return types.CreativeSpark{
		Idea: idea, Strategy: types.StrategyAnalogy,
		SourceA: a, SourceB: b, Novelty: noveltyAnalogy, Relevance: 0.6,
	}
}

// lateral performs a random walk and injects its endpoint as a disruptive
// perspective on the context.
func (e *Engine) lateral(ctx context.Context, contextText string) types.CreativeSpark {
	path := e.graph.RandomWalk("", 4, true)
	if len(path) == 0 {
		return e.fallback(ctx, types.StrategyLateral, "", "", "take a sideways leap away from the obvious")
	}
	endpoint := path[len(path)-1]
	start := path[0]

	prompt := fmt.Sprintf("Given this context: %q — now reinterpret it through the unexpected lens of %q. One sentence.", contextText, endpoint)
	idea, ok := e.ask(ctx, prompt)
	if !ok {
		idea = fmt.Sprintf("seen through the lens of %s, this looks different", endpoint)
	}
	return types.CreativeSpark{
		Idea: idea, Strategy: types.StrategyLateral,
		SourceA: start, SourceB: endpoint, Novelty: noveltyLateral, Relevance: 0.4,
	}
}

// SparkForPair produces one spark for an explicitly given pair of concepts
// under the given strategy, used by imagine(a, b) where both endpoints are
// supplied directly instead of discovered from the graph or context.
func (e *Engine) SparkForPair(ctx context.Context, a, b string, strategy types.CreativityStrategy) types.CreativeSpark {
	var prompt, placeholder string
	novelty := noveltyFallback
	switch strategy {
	case types.StrategyBisociation:
		prompt = fmt.Sprintf("In one striking sentence, describe a surprising common ground between %q and %q.", a, b)
		placeholder = fmt.Sprintf("a surprising bridge between %s and %s", a, b)
		novelty = noveltyBisociation
	case types.StrategyAnalogy:
		prompt = fmt.Sprintf("Explain %q by analogy to %q: what structural relationship transfers from one to the other?", b, a)
		placeholder = fmt.Sprintf("%s is to its domain as %s is to its own", a, b)
		novelty = noveltyAnalogy
	default: // blending
		prompt = fmt.Sprintf("Blend %q and %q into a single new concept; name it and explain it in one sentence.", a, b)
		placeholder = fmt.Sprintf("a blend of %s and %s", a, b)
		novelty = noveltyBlending
		strategy = types.StrategyBlending
	}

	idea, ok := e.ask(ctx, prompt)
	if !ok {
		idea = placeholder
	}
	return types.CreativeSpark{Idea: idea, Strategy: strategy, SourceA: a, SourceB: b, Novelty: novelty, Relevance: 0.5}
}

// pickRelevantPair prefers two concepts mentioned in contextText; failing
// that, the two most active graph nodes.
func (e *Engine) pickRelevantPair(contextText string) (a, b string, ok bool) {
	lower := strings.ToLower(contextText)
	var mentioned []string
	for _, c := range e.graph.GetMostActive(0) {
		if strings.Contains(lower, c.Name) {
			mentioned = append(mentioned, c.ID())
		}
		if len(mentioned) >= 2 {
			break
		}
	}
	if len(mentioned) >= 2 {
		return mentioned[0], mentioned[1], true
	}

	top := e.graph.GetMostActive(2)
	if len(top) < 2 {
		return "", "", false
	}
	return top[0].ID(), top[1].ID(), true
}

// ask calls the LLM provider if one is configured; returns ok=false on any
// absence or failure so the caller can fall back to a placeholder.
func (e *Engine) ask(ctx context.Context, prompt string) (string, bool) {
	if e.provider == nil {
		return "", false
	}
	idea, err := e.provider.Generate(ctx, prompt, "", e.temperature, 200)
	if err != nil || strings.TrimSpace(idea) == "" {
		return "", false
	}
	return idea, true
}

// fallback produces either a provider-driven generic spark (novelty 0.5)
// or, with no provider, a deterministic placeholder naming the sources.
func (e *Engine) fallback(ctx context.Context, strategy types.CreativityStrategy, a, b, genericPrompt string) types.CreativeSpark {
	idea, ok := e.ask(ctx, genericPrompt)
	novelty := noveltyFallback
	if !ok {
		if a != "" || b != "" {
			idea = fmt.Sprintf("a placeholder spark naming %s and %s", a, b)
		} else {
			idea = "a placeholder spark: the graph is too small for " + string(strategy)
		}
	}
	return types.CreativeSpark{
		Idea: idea, Strategy: strategy, SourceA: a, SourceB: b,
		Novelty: novelty, Relevance: 0.3,
	}
}
