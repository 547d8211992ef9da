// Package embed wraps the embedding model behind a small interface with
// fixed output dimensionality.
//
// The production implementation is backed by a Genkit ai.Embedder
// (Google AI text embedding models). Model initialization is expensive,
// so the composition root constructs a single adapter and shares it; the
// Lazy wrapper defers that construction to first use.
package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"
)

// DefaultDimension is the embedding width the store schema is built for.
// Changing it requires a schema migration and a full re-embed.
const DefaultDimension = 384

// Embedder produces fixed-length embedding vectors for text.
//
// Implementations must return vectors of exactly Dimension() elements,
// including for empty input, and are safe for concurrent use.
type Embedder interface {
	// EmbedOne embeds a single text. Empty or whitespace-only input
	// yields a zero vector without invoking the model.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedMany embeds a batch of texts in one model call. The result
	// always has exactly len(texts) elements; empty inputs are embedded
	// as a single space so the model never sees an empty string.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension reports the fixed vector width.
	Dimension() int
}

// Adapter adapts a Genkit ai.Embedder to the Embedder interface,
// enforcing a fixed dimensionality and an optional call rate limit.
//
// Adapter is safe for concurrent use: the underlying model client is
// read-only after construction and the rate limiter is internally
// synchronized.
type Adapter struct {
	embedder  ai.Embedder
	dimension int
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRateLimit caps model calls at r calls per second with the given
// burst. Useful when the embedding backend enforces API quotas.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(a *Adapter) {
		a.limiter = rate.NewLimiter(r, burst)
	}
}

// NewAdapter creates an Adapter producing vectors of the given dimension.
// A non-positive dimension falls back to DefaultDimension.
func NewAdapter(embedder ai.Embedder, dimension int, logger *slog.Logger, opts ...Option) *Adapter {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		embedder:  embedder,
		dimension: dimension,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimension reports the fixed vector width.
func (a *Adapter) Dimension() int { return a.dimension }

// EmbedOne embeds a single text. Empty input returns a zero vector and
// never reaches the model.
func (a *Adapter) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return make([]float32, a.dimension), nil
	}

	vecs, err := a.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany embeds texts in a single model call. Output length always
// equals input length; empty elements are substituted with a single
// space rather than skipped.
func (a *Adapter) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	prepared := make([]string, len(texts))
	for i, t := range texts {
		if t == "" {
			prepared[i] = " "
		} else {
			prepared[i] = t
		}
	}

	return a.embed(ctx, prepared)
}

// embed performs the model call and validates the response shape.
func (a *Adapter) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for embed rate limit: %w", err)
		}
	}

	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = ai.DocumentFromText(t, nil)
	}

	resp, err := a.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(resp.Embeddings), len(texts))
	}

	vecs := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Embedding) != a.dimension {
			return nil, fmt.Errorf("embedder returned %d dimensions, want %d", len(e.Embedding), a.dimension)
		}
		vecs[i] = e.Embedding
	}

	a.logger.Debug("embedded texts", "count", len(texts))
	return vecs, nil
}
