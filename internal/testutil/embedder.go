package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Embedder is a deterministic, model-free embedder for tests. It hashes
// character trigrams into a fixed-width vector and L2-normalizes it, so
// identical texts embed identically, texts sharing vocabulary land close
// together, and unrelated texts score low cosine similarity. Good enough
// to exercise ranking and thresholds without a real model.
type Embedder struct {
	Dim int
}

// NewEmbedder creates an Embedder of the given dimension.
func NewEmbedder(dim int) *Embedder {
	return &Embedder{Dim: dim}
}

// Dimension reports the fixed vector width.
func (e *Embedder) Dimension() int { return e.Dim }

// EmbedOne embeds a single text. Empty input yields a zero vector,
// matching the production adapter's contract.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.Dim), nil
	}
	return e.vectorize(text), nil
}

// EmbedMany embeds texts one by one; output length equals input length.
func (e *Embedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		if t == "" {
			t = " "
		}
		vecs[i] = e.vectorize(t)
	}
	return vecs, nil
}

func (e *Embedder) vectorize(text string) []float32 {
	vec := make([]float32, e.Dim)

	lower := strings.ToLower(text)
	runes := []rune(lower)
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%uint32(e.Dim)]++ // #nosec G115 -- Dim is a small positive test constant
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
