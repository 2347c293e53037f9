// Package memory implements the Memory Manager (C6): it coordinates
// working, episodic, semantic and procedural storage, fans recall out
// across all four layers, and enforces the cross-reference invariant for
// important records.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hoxofp/subconscious/internal/subconscious/episodic"
	"github.com/hoxofp/subconscious/internal/subconscious/procedural"
	"github.com/hoxofp/subconscious/internal/subconscious/semantic"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
	"github.com/hoxofp/subconscious/internal/subconscious/working"
)

// Manager coordinates the four memory layers (C2-C5).
type Manager struct {
	Working    *working.Memory
	Episodic   *episodic.Store
	Semantic   *semantic.Store
	Procedural *procedural.Store
}

// New composes a Manager over already-open stores.
func New(w *working.Memory, ep *episodic.Store, se *semantic.Store, pr *procedural.Store) *Manager {
	return &Manager{Working: w, Episodic: ep, Semantic: se, Procedural: pr}
}

// Remember builds a MemoryRecord from content and routes it to the correct
// layer, consolidating any working-memory overflow into episodic and
// mirroring important records into semantic.
func (m *Manager) Remember(ctx context.Context, content string, memType types.MemoryType, importance float64, domain string, tags []string, source string) (types.MemoryRecord, error) {
	record := types.MemoryRecord{
		MemoryID:   uuid.NewString(),
		Content:    content,
		MemoryType: memType,
		Importance: importance,
		Domain:     domain,
		Tags:       tags,
		Source:     source,
		Timestamp:  time.Now(),
	}

	role := source
	if role != "user" && role != "assistant" {
		role = "system"
	}
	overflow := m.Working.Push(working.Item{
		"content":   content,
		"role":      role,
		"memory_id": record.MemoryID,
	})
	if overflow != nil {
		overflowRecord := types.MemoryRecord{
			MemoryID:   uuid.NewString(),
			Content:    fmt.Sprint(overflow["content"]),
			MemoryType: types.MemoryEpisodic,
			Importance: 0.4,
			Source:     "working_overflow",
			Timestamp:  time.Now(),
		}
		if err := m.Episodic.Store(overflowRecord); err != nil {
			return record, err
		}
	}

	switch memType {
	case types.MemoryEpisodic:
		if err := m.Episodic.Store(record); err != nil {
			return record, err
		}
	case types.MemorySemantic:
		if err := m.Semantic.Store(ctx, record); err != nil {
			return record, err
		}
	case types.MemoryProcedural:
		if err := m.Procedural.Store(record, "solution"); err != nil {
			return record, err
		}
	case types.MemoryWorking:
		// already placed in working memory above; no further storage.
	default:
		if err := m.Episodic.Store(record); err != nil {
			return record, err
		}
	}

	if importance >= 0.6 && memType != types.MemorySemantic {
		if err := m.Semantic.Store(ctx, record); err != nil {
			return record, err
		}
	}

	return record, nil
}

// Recall performs the parallel fan-out query across all four layers.
func (m *Manager) Recall(ctx context.Context, query string, n int, domain string) types.RecallResult {
	var (
		result types.RecallResult
		wg     sync.WaitGroup
	)
	wg.Add(4)

	go func() {
		defer wg.Done()
		lowerQ := strings.ToLower(query)
		for _, item := range m.Working.GetContext() {
			content, _ := item["content"].(string)
			if strings.Contains(strings.ToLower(content), lowerQ) {
				result.Working = append(result.Working, item)
			}
		}
	}()

	go func() {
		defer wg.Done()
		var recs []types.MemoryRecord
		var err error
		if domain != "" {
			recs, err = m.Episodic.RecallByDomain(domain, n)
		} else {
			recs, err = m.Episodic.SearchContent(query, n)
		}
		if err == nil {
			result.Episodic = recs
		}
	}()

	go func() {
		defer wg.Done()
		recs, err := m.Semantic.Search(ctx, query, n, 0, domain)
		if err == nil {
			result.Semantic = recs
		}
	}()

	go func() {
		defer wg.Done()
		recs, err := m.Procedural.SearchContent(query, n)
		if err == nil {
			result.Procedural = recs
		}
	}()

	wg.Wait()
	return result
}

// RecallFlat flattens all layers into a single importance/similarity-sorted
// slice annotated with its source layer, truncated to n.
func (m *Manager) RecallFlat(ctx context.Context, query string, n int) []FlatResult {
	fanOut := m.Recall(ctx, query, n, "")

	var flat []FlatResult
	for _, it := range fanOut.Working {
		content, _ := it["content"].(string)
		flat = append(flat, FlatResult{Layer: "working", Content: content})
	}
	for _, r := range fanOut.Episodic {
		flat = append(flat, FlatResult{Layer: "episodic", Record: r, Score: r.Importance})
	}
	for _, r := range fanOut.Semantic {
		flat = append(flat, FlatResult{Layer: "semantic", Record: r, Score: r.Similarity})
	}
	for _, r := range fanOut.Procedural {
		flat = append(flat, FlatResult{Layer: "procedural", Record: r, Score: r.Importance})
	}

	sort.SliceStable(flat, func(i, j int) bool { return flat[i].Score > flat[j].Score })
	if n > 0 && len(flat) > n {
		flat = flat[:n]
	}
	return flat
}

// FlatResult is one entry of a RecallFlat result.
type FlatResult struct {
	Layer   string
	Content string
	Record  types.MemoryRecord
	Score   float64
}

// Stats summarizes the size of each memory layer.
type Stats struct {
	WorkingSize       int
	WorkingCapacity   int
	EpisodicCount     int
	SemanticCount     int
	ProceduralCount   int
	Total             int
}

// GetStats reports per-layer counts.
func (m *Manager) GetStats(ctx context.Context) (Stats, error) {
	epCount, err := m.Episodic.Count()
	if err != nil {
		return Stats{}, err
	}
	seCount, err := m.Semantic.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	prCount, err := m.Procedural.Count()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		WorkingSize:     m.Working.Size(),
		WorkingCapacity: m.Working.Capacity(),
		EpisodicCount:   epCount,
		SemanticCount:   seCount,
		ProceduralCount: prCount,
		Total:           m.Working.Size() + epCount + seCount + prCount,
	}, nil
}

// ClearAll empties every memory layer.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.Working.Clear()
	if err := m.Episodic.Clear(); err != nil {
		return err
	}
	if err := m.Semantic.Clear(ctx); err != nil {
		return err
	}
	return m.Procedural.Clear()
}
