// Package indexer rebuilds a user's embedding index from their synced
// GitHub content.
//
// The strategy is full replace: every run re-chunks and re-embeds all of
// the user's current issues and repositories, then swaps the new rows in
// atomically. There is no incremental upsert path; a row's lifetime is
// exactly one sync generation.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/reposage/reposage/internal/chunk"
	"github.com/reposage/reposage/internal/knowledge"
	"github.com/reposage/reposage/internal/source"
)

// SourceStore provides the user's current GitHub content.
// *source.Store satisfies it.
type SourceStore interface {
	ListIssues(ctx context.Context, userID int64) ([]source.Issue, error)
	ListRepositories(ctx context.Context, userID int64) ([]source.Repository, error)
}

// Embedder is the batch embedding capability the sync pipeline needs.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore receives the freshly built index generation.
// *knowledge.Store satisfies it.
type VectorStore interface {
	ReplaceForUser(ctx context.Context, userID int64, records []knowledge.Record) error
}

// Report summarizes one sync run. ChunksSynced counts issue chunks;
// repositories always contribute one row each and are counted
// separately.
type Report struct {
	ChunksSynced int
	ReposSynced  int
}

// Syncer runs the full-replace embedding pipeline.
type Syncer struct {
	sources        SourceStore
	embedder       Embedder
	store          VectorStore
	chunkMaxLength int
	chunkOverlap   int
	logger         *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithChunkPolicy overrides the default chunking policy for issue text.
// Invalid combinations (non-positive max length, negative overlap) keep
// the defaults.
func WithChunkPolicy(maxLength, overlap int) Option {
	return func(s *Syncer) {
		if maxLength > 0 && overlap >= 0 && overlap < maxLength {
			s.chunkMaxLength = maxLength
			s.chunkOverlap = overlap
		}
	}
}

// New creates a Syncer.
func New(sources SourceStore, embedder Embedder, store VectorStore, logger *slog.Logger, opts ...Option) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		sources:        sources,
		embedder:       embedder,
		store:          store,
		chunkMaxLength: chunk.DefaultMaxLength,
		chunkOverlap:   chunk.DefaultOverlap,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync rebuilds userID's embedding index from their current issues and
// repositories.
//
// When the user has no source content at all, Sync is a no-op that
// leaves any existing rows untouched: a transient empty fetch upstream
// must not wipe a previously good index. Otherwise the run deletes the
// user's prior rows and inserts the new generation in one transaction;
// embedding hundreds of chunks takes seconds to minutes, so callers
// should keep Sync off any latency-sensitive path.
func (s *Syncer) Sync(ctx context.Context, userID int64) (Report, error) {
	logger := s.logger.With("user_id", userID, "sync_run", uuid.NewString())

	issues, err := s.sources.ListIssues(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("loading issues for user %d: %w", userID, err)
	}
	repos, err := s.sources.ListRepositories(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("loading repositories for user %d: %w", userID, err)
	}

	if len(issues) == 0 && len(repos) == 0 {
		logger.Info("no source content, leaving existing index untouched")
		return Report{}, nil
	}

	var records []knowledge.Record
	for _, issue := range issues {
		records = append(records, source.PrepareIssue(issue, userID, s.chunkMaxLength, s.chunkOverlap)...)
	}
	chunksSynced := len(records)

	for _, repo := range repos {
		records = append(records, source.PrepareRepository(repo, userID))
	}

	logger.Info("prepared embedding candidates",
		"issues", len(issues),
		"repositories", len(repos),
		"candidates", len(records))

	// One batch call for the whole run: far cheaper than a model round
	// trip per chunk.
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Content
	}
	vectors, err := s.embedder.EmbedMany(ctx, texts)
	if err != nil {
		return Report{}, fmt.Errorf("embedding %d candidates: %w", len(texts), err)
	}
	if len(vectors) != len(records) {
		return Report{}, fmt.Errorf("embedder returned %d vectors for %d candidates", len(vectors), len(records))
	}
	for i := range records {
		records[i].Vector = vectors[i]
	}

	if err := s.store.ReplaceForUser(ctx, userID, records); err != nil {
		return Report{}, fmt.Errorf("replacing index for user %d: %w", userID, err)
	}

	report := Report{
		ChunksSynced: chunksSynced,
		ReposSynced:  len(repos),
	}
	logger.Info("sync complete",
		"issue_chunks", report.ChunksSynced,
		"repositories", report.ReposSynced)
	return report, nil
}
