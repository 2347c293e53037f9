// Package dream implements the background consolidation loop (C10): a
// periodic goroutine that consolidates, decays, persists, prunes,
// discovers and hypothesizes, running concurrently with foreground think
// calls. Start/Stop is grounded on the teacher's worker-pool shutdown
// pattern (WaitGroup plus a timeout-bounded join).
package dream

import (
	"context"
	"sync"
	"time"

	"github.com/hoxofp/subconscious/internal/subconscious/creative"
	"github.com/hoxofp/subconscious/internal/subconscious/graph"
	"github.com/hoxofp/subconscious/internal/subconscious/memory"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

const (
	consolidationBatch    = 20
	consolidationImportance = 0.6
	episodicKeep          = 500
	discoveryWalks        = 3
	discoveryWalkSteps    = 4
	discoveryWeight       = 0.2
	discoveryConfidence   = 0.3
	hypothesisCount       = 2
)

// Processor runs dream cycles on a schedule and records their reports.
type Processor struct {
	memory   *memory.Manager
	graph    *graph.Graph
	creative *creative.Engine // may be nil: hypothesis generation is skipped
	graphPath string

	mu      sync.Mutex
	history []types.DreamReport

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	consolidateStopCh chan struct{}
	consolidateWg     sync.WaitGroup
	consolidateOnce   sync.Once
}

// New constructs a dream processor over the given collaborators. creativeEngine may be nil.
func New(m *memory.Manager, g *graph.Graph, creativeEngine *creative.Engine, graphPath string) *Processor {
	return &Processor{memory: m, graph: g, creative: creativeEngine, graphPath: graphPath}
}

// DreamOnce performs exactly one dream cycle, in the fixed order:
// consolidate -> decay -> persist -> prune -> discover -> hypothesize ->
// cluster count.
func (p *Processor) DreamOnce(ctx context.Context, decayRate float64) types.DreamReport {
	start := time.Now()
	report := types.DreamReport{Timestamp: start}

	report.MemoriesConsolidated = p.consolidate()
	p.graph.DecayAll(decayRate)
	_ = p.graph.Save(p.graphPath) // storage errors degrade silently; the loop never dies on a save failure
	if pruned, err := p.memory.Episodic.Prune(episodicKeep); err == nil {
		report.MemoriesPruned = pruned
	}
	report.NewConnections = p.discover()
	report.HypothesesGenerated = p.hypothesize(ctx)
	report.PatternsFound = len(p.graph.FindClusters())

	report.DurationSeconds = time.Since(start).Seconds()

	p.mu.Lock()
	p.history = append(p.history, report)
	p.mu.Unlock()

	return report
}

// consolidate pulls up to 20 recent episodic records and promotes any with
// importance >= 0.6 into semantic.
func (p *Processor) consolidate() int {
	recent, err := p.memory.Episodic.RecallRecent(consolidationBatch)
	if err != nil {
		return 0
	}
	count := 0
	for _, r := range recent {
		if r.Importance < consolidationImportance {
			continue
		}
		if err := p.memory.Semantic.Store(context.Background(), r); err == nil {
			count++
		}
	}
	return count
}

// discover performs 3 random walks of length 4 preferring distant nodes;
// for each walk whose endpoints differ, it connects them with a weak,
// low-confidence semantic edge and counts the addition.
func (p *Processor) discover() int {
	added := 0
	for i := 0; i < discoveryWalks; i++ {
		path := p.graph.RandomWalk("", discoveryWalkSteps, true)
		if len(path) < 2 {
			continue
		}
		start, end := path[0], path[len(path)-1]
		if start == end {
			continue
		}
		p.graph.Connect(start, end, types.EdgeSemantic, discoveryWeight, discoveryConfidence)
		added++
	}
	return added
}

// hypothesize requests 2 context-free sparks from the creative engine, if
// one is wired, and records their idea texts.
func (p *Processor) hypothesize(ctx context.Context) []string {
	if p.creative == nil {
		return nil
	}
	sparks := p.creative.Spark(ctx, "", "", hypothesisCount)
	out := make([]string, 0, len(sparks))
	for _, s := range sparks {
		out = append(out, s.Idea)
	}
	return out
}

// History returns the list of past dream reports.
func (p *Processor) History() []types.DreamReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.DreamReport, len(p.history))
	copy(out, p.history)
	return out
}

// Start spawns the dream loop on a background goroutine, running DreamOnce
// every interval. The stop flag is observed only at the top of each
// iteration: a cycle already underway always runs to completion.
func (p *Processor) Start(interval time.Duration, decayRate float64) {
	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.DreamOnce(context.Background(), decayRate)
			}
		}
	}()
}

// StartConsolidating spawns a standalone consolidation loop on its own
// ticker, running only the consolidate step (and a graph save) rather
// than a full dream cycle. This lets a caller consolidate memories on a
// different cadence than the full dream cycle runs, using
// CONSOLIDATION_INTERVAL independently of DREAM_INTERVAL.
func (p *Processor) StartConsolidating(interval time.Duration) {
	p.consolidateStopCh = make(chan struct{})
	p.consolidateWg.Add(1)
	go func() {
		defer p.consolidateWg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.consolidateStopCh:
				return
			case <-ticker.C:
				p.consolidate()
				_ = p.graph.Save(p.graphPath)
			}
		}
	}()
}

// StopConsolidating signals the standalone consolidation loop to stop
// and waits up to 5 seconds for it to join.
func (p *Processor) StopConsolidating() {
	p.consolidateOnce.Do(func() {
		if p.consolidateStopCh == nil {
			return
		}
		close(p.consolidateStopCh)
	})

	done := make(chan struct{})
	go func() {
		p.consolidateWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

// Stop signals the loop to stop and waits up to 5 seconds for it to join.
// After that, the processor is considered stopped even if a cycle is
// mid-flight, mirroring the original's daemon-thread join timeout.
func (p *Processor) Stop() {
	p.once.Do(func() {
		if p.stopCh == nil {
			return
		}
		close(p.stopCh)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
