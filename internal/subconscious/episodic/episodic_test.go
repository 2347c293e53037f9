package episodic

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "episodic.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, content, domain string, importance float64) types.MemoryRecord {
	return types.MemoryRecord{
		MemoryID:   id,
		Content:    content,
		MemoryType: types.MemoryEpisodic,
		Importance: importance,
		Domain:     domain,
		Tags:       []string{"a", "b"},
		Timestamp:  time.Now(),
	}
}

func TestStoreAndRecallRecent(t *testing.T) {
	s := openTestStore(t)

	if err := s.Store(record("1", "first memory", "work", 0.5)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Store(record("2", "second memory", "work", 0.5)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := s.RecallRecent(10)
	if err != nil {
		t.Fatalf("RecallRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Tags[0] != "a" || got[0].Tags[1] != "b" {
		t.Errorf("tags did not round-trip: %v", got[0].Tags)
	}
}

func TestStoreUpsertsById(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("1", "original", "work", 0.5))
	s.Store(record("1", "updated", "work", 0.9))

	got, err := s.RecallRecent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Content != "updated" {
		t.Fatalf("expected single upserted record, got %+v", got)
	}
}

func TestRecallByDomain(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("1", "a", "biology", 0.5))
	s.Store(record("2", "b", "physics", 0.5))

	got, err := s.RecallByDomain("biology", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].MemoryID != "1" {
		t.Fatalf("expected only biology record, got %+v", got)
	}
}

func TestSearchContent(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("1", "the cat sat on the mat", "", 0.5))
	s.Store(record("2", "completely unrelated", "", 0.5))

	got, err := s.SearchContent("cat", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].MemoryID != "1" {
		t.Fatalf("expected content match, got %+v", got)
	}
}

func TestPruneKeepsHighestImportance(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("low", "x", "", 0.1))
	s.Store(record("high", "y", "", 0.9))
	s.Store(record("mid", "z", "", 0.5))

	deleted, err := s.Prune(2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deletion, got %d", deleted)
	}

	count, _ := s.Count()
	if count != 2 {
		t.Fatalf("expected 2 remaining, got %d", count)
	}

	got, _ := s.RecallImportant(10, 0)
	for _, r := range got {
		if r.MemoryID == "low" {
			t.Error("expected lowest-importance record pruned")
		}
	}
}

func TestTouchIncrementsAccessCount(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("1", "x", "", 0.5))
	s.Touch("1")
	s.Touch("1")

	got, _ := s.RecallRecent(1)
	if len(got) != 1 || got[0].AccessCount != 2 {
		t.Fatalf("expected access_count=2, got %+v", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s := openTestStore(t)
	s.Store(record("1", "x", "", 0.5))
	s.Store(record("2", "y", "", 0.5))

	if err := s.Delete("1"); err != nil {
		t.Fatal(err)
	}
	count, _ := s.Count()
	if count != 1 {
		t.Fatalf("expected 1 after delete, got %d", count)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	count, _ = s.Count()
	if count != 0 {
		t.Fatalf("expected 0 after clear, got %d", count)
	}
}
