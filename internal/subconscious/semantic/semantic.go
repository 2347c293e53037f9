// Package semantic implements the embedding-indexed vector store (C4),
// backed by Redis (github.com/go-redis/redis/v8, the teacher's own
// dependency) the way the teacher's episodic.go uses Redis hashes to hold
// vectorized content. Similarity ranking is computed client-side so the
// min_similarity/domain filter contract is exact and does not depend on a
// RediSearch module being loaded on the target Redis instance.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-redis/redis/v8"

	"github.com/hoxofp/subconscious/internal/subconscious/cogerrors"
	"github.com/hoxofp/subconscious/internal/subconscious/types"
)

const keyPrefix = "subconscious:semantic:"

type record struct {
	Content     string    `json:"content"`
	MemoryType  string    `json:"memory_type"`
	Importance  float64   `json:"importance"`
	Domain      string    `json:"domain"`
	Tags        []string  `json:"tags"`
	Source      string    `json:"source"`
	Timestamp   float64   `json:"timestamp"`
	AccessCount int       `json:"access_count"`
	Embedding   []float32 `json:"embedding"`
}

// Store is a Redis-backed vector content store.
type Store struct {
	rdb      *redis.Client
	embedder EmbeddingGenerator
	// cache holds previously computed embeddings keyed by content, so
	// repeated Store/Search calls over the same text (a query re-issued
	// across several think calls, content already learned once) skip the
	// embedder round-trip entirely.
	cache *ristretto.Cache[string, []float32]
}

// Config configures the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to Redis and returns a Store using embedder to vectorize
// content on Store. If embedder is nil, searches degrade to returning an
// empty result, matching the "embedding provider optionality" design note.
func Open(ctx context.Context, cfg Config, embedder EmbeddingGenerator) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("semantic: connect %s: %w: %w", cfg.Addr, cogerrors.ErrStorage, err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: init embedding cache: %w: %w", cogerrors.ErrStorage, err)
	}

	return &Store{rdb: rdb, embedder: embedder, cache: cache}, nil
}

// embed returns the embedding for text, computing it through the
// configured embedder only on a cache miss.
func (s *Store) embed(text string) ([]float32, error) {
	if vec, ok := s.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := s.embedder.Generate(text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(text, vec, int64(len(vec)*4))
	s.cache.Wait()
	return vec, nil
}

// Close closes the Redis connection and the embedding cache.
func (s *Store) Close() error {
	s.cache.Close()
	return s.rdb.Close()
}

// Store upserts record by id, computing and holding its embedding.
func (s *Store) Store(ctx context.Context, r types.MemoryRecord) error {
	embedding := r.Embedding
	if len(embedding) == 0 && s.embedder != nil {
		vec, err := s.embed(r.Content)
		if err != nil {
			return fmt.Errorf("semantic: embed %s: %w: %w", r.MemoryID, cogerrors.ErrProvider, err)
		}
		embedding = vec
	}

	rec := record{
		Content:     r.Content,
		MemoryType:  string(r.MemoryType),
		Importance:  r.Importance,
		Domain:      r.Domain,
		Tags:        r.Tags,
		Source:      r.Source,
		Timestamp:   float64(r.Timestamp.UnixNano()) / 1e9,
		AccessCount: r.AccessCount,
		Embedding:   embedding,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("semantic: marshal %s: %w: %w", r.MemoryID, cogerrors.ErrParse, err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+r.MemoryID, payload, 0).Err(); err != nil {
		return fmt.Errorf("semantic: store %s: %w: %w", r.MemoryID, cogerrors.ErrStorage, err)
	}
	return nil
}

// Search returns the top-n records by cosine similarity to query, filtered
// by domain (if non-empty) and by similarity >= minSimilarity (if > 0).
// If no embedder is configured, it returns an empty slice rather than an
// error.
func (s *Store) Search(ctx context.Context, query string, n int, minSimilarity float64, domain string) ([]types.MemoryRecord, error) {
	if s.embedder == nil {
		return nil, nil
	}
	qvec, err := s.embed(query)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed query: %w: %w", cogerrors.ErrProvider, err)
	}

	records, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		rec types.MemoryRecord
		sim float64
	}
	var candidates []scored
	for id, r := range records {
		if domain != "" && r.Domain != domain {
			continue
		}
		sim := cosineSimilarity(qvec, r.rec.Embedding)
		if minSimilarity > 0 && sim < minSimilarity {
			continue
		}
		rc := r.rec
		rc.MemoryID = id
		rc.Similarity = sim
		candidates = append(candidates, scored{rec: rc, sim: sim})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}

	out := make([]types.MemoryRecord, len(candidates))
	for i, c := range candidates {
		out[i] = c.rec
	}
	return out, nil
}

type idRecord struct {
	rec types.MemoryRecord
}

func (s *Store) scanAll(ctx context.Context) (map[string]idRecord, error) {
	out := make(map[string]idRecord)
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.rdb.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		out[key[len(keyPrefix):]] = idRecord{rec: toMemoryRecord(rec)}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("semantic: scan: %w: %w", cogerrors.ErrStorage, err)
	}
	return out, nil
}

func toMemoryRecord(r record) types.MemoryRecord {
	return types.MemoryRecord{
		Content:     r.Content,
		MemoryType:  types.MemoryType(r.MemoryType),
		Importance:  r.Importance,
		Domain:      r.Domain,
		Tags:        r.Tags,
		Source:      r.Source,
		Timestamp:   time.Unix(0, int64(r.Timestamp*1e9)),
		AccessCount: r.AccessCount,
		Embedding:   r.Embedding,
	}
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("semantic: delete %s: %w: %w", id, cogerrors.ErrStorage, err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("semantic: count: %w: %w", cogerrors.ErrStorage, err)
	}
	return n, nil
}

// Clear deletes every stored record.
func (s *Store) Clear(ctx context.Context) error {
	records, err := s.scanAll(ctx)
	if err != nil {
		return err
	}
	for id := range records {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// cosineSimilarity returns 1 - cosine_distance. An empty vector on either
// side yields zero similarity rather than an error, matching the "degrade
// to returning [] on any search" design note.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
