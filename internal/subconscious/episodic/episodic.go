// Package episodic implements the timestamp-indexed event log (C3),
// backed by SQLite the way the original reference implementation and the
// teacher repo's relational dependency (mattn/go-sqlite3) both do.
package episodic

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	memory_id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	memory_type TEXT DEFAULT 'episodic',
	importance REAL DEFAULT 0.5,
	domain TEXT DEFAULT '',
	tags TEXT DEFAULT '[]',
	source TEXT DEFAULT '',
	timestamp REAL NOT NULL,
	access_count INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_episodes_timestamp ON episodes(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_episodes_importance ON episodes(importance DESC);
`

// Store is a SQLite-backed episodic memory. A single *sql.DB is shared
// across goroutines; database/sql itself serializes writes against the
// file, giving every caller on any goroutine visibility of prior writes,
// matching the "writes become visible to subsequent reads" contract.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the episodic database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("episodic: open %s: %w: %w", path, cogerrors.ErrStorage, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("episodic: init schema: %w: %w", cogerrors.ErrStorage, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store upserts a record by id.
func (s *Store) Store(r types.MemoryRecord) error {
	tagsJSON, err := marshalTags(r.Tags)
	if err != nil {
		return fmt.Errorf("episodic: marshal tags: %w: %w", cogerrors.ErrParse, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO episodes
			(memory_id, content, memory_type, importance, domain, tags, source, timestamp, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(memory_id) DO UPDATE SET
			content=excluded.content, memory_type=excluded.memory_type,
			importance=excluded.importance, domain=excluded.domain,
			tags=excluded.tags, source=excluded.source,
			timestamp=excluded.timestamp, access_count=excluded.access_count`,
		r.MemoryID, r.Content, string(r.MemoryType), r.Importance, r.Domain,
		tagsJSON, r.Source, float64(r.Timestamp.UnixNano())/1e9, r.AccessCount,
	)
	if err != nil {
		return fmt.Errorf("episodic: store %s: %w: %w", r.MemoryID, cogerrors.ErrStorage, err)
	}
	return nil
}

// RecallRecent returns the n most recently stored records.
func (s *Store) RecallRecent(n int) ([]types.MemoryRecord, error) {
	rows, err := s.db.Query(`SELECT * FROM episodes ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("episodic: recall_recent: %w: %w", cogerrors.ErrStorage, err)
	}
	return scanAll(rows)
}

// RecallByDomain returns the n most recent records for the given domain.
func (s *Store) RecallByDomain(domain string, n int) ([]types.MemoryRecord, error) {
	rows, err := s.db.Query(
		`SELECT * FROM episodes WHERE domain = ? ORDER BY timestamp DESC LIMIT ?`, domain, n)
	if err != nil {
		return nil, fmt.Errorf("episodic: recall_by_domain: %w: %w", cogerrors.ErrStorage, err)
	}
	return scanAll(rows)
}

// RecallImportant returns the n highest-importance records at or above
// minImportance.
func (s *Store) RecallImportant(n int, minImportance float64) ([]types.MemoryRecord, error) {
	rows, err := s.db.Query(
		`SELECT * FROM episodes WHERE importance >= ? ORDER BY importance DESC LIMIT ?`,
		minImportance, n)
	if err != nil {
		return nil, fmt.Errorf("episodic: recall_important: %w: %w", cogerrors.ErrStorage, err)
	}
	return scanAll(rows)
}

// SearchContent returns the n most recent records whose content contains
// query, case-insensitively.
func (s *Store) SearchContent(query string, n int) ([]types.MemoryRecord, error) {
	rows, err := s.db.Query(
		`SELECT * FROM episodes WHERE content LIKE ? ORDER BY timestamp DESC LIMIT ?`,
		"%"+query+"%", n)
	if err != nil {
		return nil, fmt.Errorf("episodic: search_content: %w: %w", cogerrors.ErrStorage, err)
	}
	return scanAll(rows)
}

// Touch increments the access counter of a record.
func (s *Store) Touch(id string) error {
	_, err := s.db.Exec(`UPDATE episodes SET access_count = access_count + 1 WHERE memory_id = ?`, id)
	if err != nil {
		return fmt.Errorf("episodic: touch %s: %w: %w", id, cogerrors.ErrStorage, err)
	}
	return nil
}

// Delete removes a record by id.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM episodes WHERE memory_id = ?`, id)
	if err != nil {
		return fmt.Errorf("episodic: delete %s: %w: %w", id, cogerrors.ErrStorage, err)
	}
	return nil
}

// Prune retains the keep highest-(importance, timestamp) records and
// deletes the rest, returning the number deleted.
func (s *Store) Prune(keep int) (int, error) {
	before, err := s.Count()
	if err != nil {
		return 0, err
	}
	if before <= keep {
		return 0, nil
	}
	_, err = s.db.Exec(
		`DELETE FROM episodes WHERE memory_id NOT IN
			(SELECT memory_id FROM episodes ORDER BY importance DESC, timestamp DESC LIMIT ?)`,
		keep)
	if err != nil {
		return 0, fmt.Errorf("episodic: prune: %w: %w", cogerrors.ErrStorage, err)
	}
	after, err := s.Count()
	if err != nil {
		return 0, err
	}
	return before - after, nil
}

// Count returns the total number of stored records.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("episodic: count: %w: %w", cogerrors.ErrStorage, err)
	}
	return n, nil
}

// Clear deletes every record.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM episodes`)
	if err != nil {
		return fmt.Errorf("episodic: clear: %w: %w", cogerrors.ErrStorage, err)
	}
	return nil
}

func scanAll(rows *sql.Rows) ([]types.MemoryRecord, error) {
	defer rows.Close()

	var out []types.MemoryRecord
	for rows.Next() {
		var (
			r      types.MemoryRecord
			ts     float64
			tags   string
			mtype  string
		)
		if err := rows.Scan(&r.MemoryID, &r.Content, &mtype, &r.Importance,
			&r.Domain, &tags, &r.Source, &ts, &r.AccessCount); err != nil {
			return nil, fmt.Errorf("episodic: scan: %w: %w", cogerrors.ErrStorage, err)
		}
		r.MemoryType = types.MemoryType(mtype)
		r.Timestamp = time.Unix(0, int64(ts*1e9))
		r.Tags = unmarshalTags(tags)
		out = append(out, r)
	}
	return out, rows.Err()
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}
