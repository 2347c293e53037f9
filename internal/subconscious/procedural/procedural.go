// Package procedural implements the reinforceable success/fail pattern
// store (C5), backed by BadgerDB (github.com/dgraph-io/badger/v4, the
// teacher's own dependency), structured the way the teacher's
// internal/memory/procedural.go lays out keys and iterates patterns.
package procedural

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

const keyPrefix = "procedure:"

type record struct {
	MemoryID     string    `json:"memory_id"`
	Content      string    `json:"content"`
	PatternType  string    `json:"pattern_type"`
	Domain       string    `json:"domain"`
	Tags         []string  `json:"tags"`
	SuccessCount int       `json:"success_count"`
	FailCount    int       `json:"fail_count"`
	Importance   float64   `json:"importance"`
	Timestamp    float64   `json:"timestamp"`
	LastUsed     float64   `json:"last_used"`
}

// Store is a BadgerDB-backed procedural pattern store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) the procedural database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("procedural: open %s: %w: %w", path, cogerrors.ErrStorage, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store upserts a pattern record under patternType (default "solution" if
// empty), initialized with a single success and no failures.
func (s *Store) Store(r types.MemoryRecord, patternType string) error {
	if patternType == "" {
		patternType = "solution"
	}
	now := float64(r.Timestamp.UnixNano()) / 1e9
	rec := record{
		MemoryID:     r.MemoryID,
		Content:      r.Content,
		PatternType:  patternType,
		Domain:       r.Domain,
		Tags:         r.Tags,
		SuccessCount: 1,
		FailCount:    0,
		Importance:   r.Importance,
		Timestamp:    now,
		LastUsed:     now,
	}
	return s.put(rec)
}

func (s *Store) put(rec record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("procedural: marshal %s: %w: %w", rec.MemoryID, cogerrors.ErrParse, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.MemoryID), payload)
	})
	if err != nil {
		return fmt.Errorf("procedural: put %s: %w: %w", rec.MemoryID, cogerrors.ErrStorage, err)
	}
	return nil
}

// Reinforce updates a pattern after use: on success, increments the
// success counter and raises importance by 0.05 (capped at 1.0); on
// failure, increments the fail counter and lowers importance by 0.03
// (floored at 0.0). Either way, last-used is refreshed.
func (s *Store) Reinforce(id string, success bool) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("procedural: reinforce %s: %w: not found", id, cogerrors.ErrValidation)
		}
		if err != nil {
			return fmt.Errorf("procedural: reinforce %s: %w: %w", id, cogerrors.ErrStorage, err)
		}
		var rec record
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return fmt.Errorf("procedural: reinforce %s: %w: %w", id, cogerrors.ErrParse, err)
		}

		if success {
			rec.SuccessCount++
			rec.Importance = min(1.0, rec.Importance+0.05)
		} else {
			rec.FailCount++
			rec.Importance = max(0.0, rec.Importance-0.03)
		}
		rec.LastUsed = float64(time.Now().UnixNano()) / 1e9

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("procedural: marshal %s: %w: %w", id, cogerrors.ErrParse, err)
		}
		return txn.Set([]byte(keyPrefix+id), payload)
	})
}

// RecallByDomain returns up to limit patterns in domain, ordered by
// success_rate = success / max(success+fail, 1), then importance.
func (s *Store) RecallByDomain(domain string, limit int) ([]types.MemoryRecord, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	var filtered []record
	for _, r := range all {
		if r.Domain == domain {
			filtered = append(filtered, r)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		si, sj := successRate(filtered[i]), successRate(filtered[j])
		if si != sj {
			return si > sj
		}
		return filtered[i].Importance > filtered[j].Importance
	})
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return toMemoryRecords(filtered), nil
}

// RecallBest returns up to limit patterns ordered by importance then
// success count.
func (s *Store) RecallBest(limit int) ([]types.MemoryRecord, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Importance != all[j].Importance {
			return all[i].Importance > all[j].Importance
		}
		return all[i].SuccessCount > all[j].SuccessCount
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return toMemoryRecords(all), nil
}

// SearchContent returns up to limit patterns whose content contains query,
// ordered by importance.
func (s *Store) SearchContent(query string, limit int) ([]types.MemoryRecord, error) {
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	var filtered []record
	lq := strings.ToLower(query)
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.Content), lq) {
			filtered = append(filtered, r)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Importance > filtered[j].Importance })
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return toMemoryRecords(filtered), nil
}

// Count returns the number of stored patterns.
func (s *Store) Count() (int, error) {
	all, err := s.all()
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

// Clear deletes every stored pattern.
func (s *Store) Clear() error {
	all, err := s.all()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, r := range all {
			if err := txn.Delete([]byte(keyPrefix + r.MemoryID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) all() ([]record, error) {
	var out []record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec record
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
				continue
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("procedural: iterate: %w: %w", cogerrors.ErrStorage, err)
	}
	return out, nil
}

func successRate(r record) float64 {
	denom := r.SuccessCount + r.FailCount
	if denom < 1 {
		denom = 1
	}
	return float64(r.SuccessCount) / float64(denom)
}

func toMemoryRecords(recs []record) []types.MemoryRecord {
	out := make([]types.MemoryRecord, len(recs))
	for i, r := range recs {
		out[i] = types.MemoryRecord{
			MemoryID:     r.MemoryID,
			Content:      r.Content,
			MemoryType:   types.MemoryProcedural,
			Importance:   r.Importance,
			Domain:       r.Domain,
			Tags:         r.Tags,
			Timestamp:    time.Unix(0, int64(r.Timestamp*1e9)),
			SuccessCount: r.SuccessCount,
			FailCount:    r.FailCount,
		}
	}
	return out
}
