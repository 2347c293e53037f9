package semantic

import (
	"strings"
)

// EmbeddingGenerator turns text into a fixed-dimension vector. The store
// never depends on a specific model; any generator, including the LLM
// provider's own Embed method, may be plugged in.
type EmbeddingGenerator interface {
	Generate(text string) ([]float32, error)
	Dimensions() int
}

// HashEmbedding is a deterministic, dependency-free fallback generator used
// when no LLM-backed embedder is configured. It hashes tokens into buckets
// across the target dimensionality and L2-normalizes the result, so cosine
// similarity between near-duplicate texts is still meaningful.
type HashEmbedding struct {
	dims int
}

// NewHashEmbedding returns a HashEmbedding targeting the given dimension
// count (384 if dims <= 0, matching the default model dimensionality).
func NewHashEmbedding(dims int) *HashEmbedding {
	if dims <= 0 {
		dims = 384
	}
	return &HashEmbedding{dims: dims}
}

func (h *HashEmbedding) Dimensions() int { return h.dims }

func (h *HashEmbedding) Generate(text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	words := strings.Fields(strings.ToLower(text))
	for pos, w := range words {
		hash := simpleHash(w)
		weight := float32(1.0 / (1.0 + float64(pos)))
		for j := 0; j < 3; j++ {
			idx := int((hash + uint32(j)) % uint32(h.dims))
			vec[idx] += weight
		}
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return vec, nil
	}
	norm := float32(sqrtApprox(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

func simpleHash(s string) uint32 {
	var h uint32 = 2166136261
	for _, c := range s {
		h = h*31 + uint32(c)
	}
	return h
}

// sqrtApprox computes the square root of x with 20 fixed Newton
// iterations starting from x; it returns 0 for x <= 0.
func sqrtApprox(x float64) float64 {
	if x <= 0 {
		return 0
	}
	z := x
	for i := 0; i < 20; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}
