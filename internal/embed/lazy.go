package embed

import (
	"context"
	"sync"
)

// Lazy defers construction of an Embedder to first use.
//
// Model weights and API clients are expensive to set up, and not every
// command needs them (migrate and stats run without a model). Lazy wraps
// a build function behind a mutex: construction runs at most once, a
// construction failure surfaces to the caller, and subsequent calls
// retry instead of caching the error.
//
// The dimension is known from configuration without building the model,
// so Dimension never triggers construction.
type Lazy struct {
	mu        sync.Mutex
	build     func(context.Context) (Embedder, error)
	inst      Embedder
	dimension int
}

// NewLazy wraps build into a lazily constructed Embedder of the given
// dimension.
func NewLazy(dimension int, build func(context.Context) (Embedder, error)) *Lazy {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Lazy{build: build, dimension: dimension}
}

// Dimension reports the configured vector width.
func (l *Lazy) Dimension() int { return l.dimension }

// EmbedOne builds the underlying embedder on first use, then delegates.
func (l *Lazy) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	e, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return e.EmbedOne(ctx, text)
}

// EmbedMany builds the underlying embedder on first use, then delegates.
func (l *Lazy) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return e.EmbedMany(ctx, texts)
}

func (l *Lazy) get(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inst != nil {
		return l.inst, nil
	}

	inst, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	l.inst = inst
	return inst, nil
}
