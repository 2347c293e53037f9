package procedural

import (
	"errors"
	"testing"
	"time"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreThenReinforceSuccess(t *testing.T) {
	s := openTestStore(t)
	r := types.MemoryRecord{MemoryID: "1", Content: "retry with backoff", Domain: "infra", Importance: 0.5, Timestamp: time.Now()}
	if err := s.Store(r, ""); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := s.Reinforce("1", true); err != nil {
		t.Fatalf("Reinforce: %v", err)
	}

	best, err := s.RecallBest(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(best) != 1 {
		t.Fatalf("expected 1 record, got %d", len(best))
	}
	if best[0].SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2 (1 from Store + 1 from Reinforce)", best[0].SuccessCount)
	}
	if got, want := best[0].Importance, 0.55; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Importance = %v, want %v", got, want)
	}
}

func TestReinforceFailureLowersImportance(t *testing.T) {
	s := openTestStore(t)
	s.Store(types.MemoryRecord{MemoryID: "1", Content: "x", Importance: 0.1, Timestamp: time.Now()}, "")
	s.Reinforce("1", false)

	best, _ := s.RecallBest(10)
	if best[0].FailCount != 1 {
		t.Errorf("FailCount = %d, want 1", best[0].FailCount)
	}
	if got, want := best[0].Importance, 0.07; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("Importance = %v, want 0.07 (0.1-0.03)", got)
	}
}

func TestReinforceImportanceFloorsAtZero(t *testing.T) {
	s := openTestStore(t)
	s.Store(types.MemoryRecord{MemoryID: "1", Content: "x", Importance: 0.01, Timestamp: time.Now()}, "")
	s.Reinforce("1", false)

	best, _ := s.RecallBest(10)
	if best[0].Importance != 0 {
		t.Errorf("Importance = %v, want floored at 0", best[0].Importance)
	}
}

func TestReinforceMissingIDReturnsValidationError(t *testing.T) {
	s := openTestStore(t)
	err := s.Reinforce("missing", true)
	if err == nil || !errors.Is(err, cogerrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRecallByDomainOrdersBySuccessRate(t *testing.T) {
	s := openTestStore(t)
	s.Store(types.MemoryRecord{MemoryID: "low", Content: "a", Domain: "d", Importance: 0.5, Timestamp: time.Now()}, "")
	s.Store(types.MemoryRecord{MemoryID: "high", Content: "b", Domain: "d", Importance: 0.5, Timestamp: time.Now()}, "")
	s.Reinforce("low", false)
	s.Reinforce("low", false)
	s.Reinforce("high", true)
	s.Reinforce("high", true)

	got, err := s.RecallByDomain("d", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].MemoryID != "high" {
		t.Fatalf("expected 'high' ranked first by success rate, got %+v", got)
	}
}

func TestSearchContent(t *testing.T) {
	s := openTestStore(t)
	s.Store(types.MemoryRecord{MemoryID: "1", Content: "restart the service", Importance: 0.5, Timestamp: time.Now()}, "")
	s.Store(types.MemoryRecord{MemoryID: "2", Content: "unrelated pattern", Importance: 0.5, Timestamp: time.Now()}, "")

	got, err := s.SearchContent("restart", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].MemoryID != "1" {
		t.Fatalf("expected content match, got %+v", got)
	}
}

func TestCountAndClear(t *testing.T) {
	s := openTestStore(t)
	s.Store(types.MemoryRecord{MemoryID: "1", Content: "x", Timestamp: time.Now()}, "")
	s.Store(types.MemoryRecord{MemoryID: "2", Content: "y", Timestamp: time.Now()}, "")

	count, err := s.Count()
	if err != nil || count != 2 {
		t.Fatalf("Count() = %d, %v, want 2, nil", count, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	count, _ = s.Count()
	if count != 0 {
		t.Fatalf("expected 0 after Clear, got %d", count)
	}
}
