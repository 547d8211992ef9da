// Package knowledge persists embedding records in PostgreSQL + pgvector
// and serves cosine-similarity search scoped to a single user.
//
// Every operation on the store takes a user id; there is deliberately no
// way to search or delete across users. Rows are written only through
// ReplaceForUser, which swaps a user's entire index inside one
// transaction, so readers observe either the previous generation or the
// new one, never a mix.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store manages embedding rows with vector search capabilities.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store over the given connection pool. The pool must
// have pgvector types registered (see database.NewPool).
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// ReplaceForUser atomically replaces all of a user's embedding rows with
// records. The delete and the batch insert run in one transaction: a
// failure at any point leaves the user's previous index intact.
//
// Records must already carry vectors; passing an empty slice clears the
// user's index.
func (s *Store) ReplaceForUser(ctx context.Context, userID int64, records []Record) error {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if rec.UserID != userID {
			return fmt.Errorf("record %d belongs to user %d, not %d", i, rec.UserID, userID)
		}
		if len(rec.Vector) == 0 {
			return fmt.Errorf("record %d has no vector", i)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", "user_id", userID, "error", rbErr)
		}
	}()

	tag, err := tx.Exec(ctx, `DELETE FROM embeddings WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting embeddings for user %d: %w", userID, err)
	}

	if len(records) > 0 {
		batch := &pgx.Batch{}
		for _, rec := range records {
			metadataJSON, mErr := json.Marshal(rec.Metadata)
			if mErr != nil {
				return fmt.Errorf("marshaling metadata: %w", mErr)
			}
			batch.Queue(`
				INSERT INTO embeddings (user_id, content, embedding, source_type, source_id, metadata)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				rec.UserID,
				rec.Content,
				pgvector.NewVector(rec.Vector),
				string(rec.SourceType),
				rec.SourceID,
				metadataJSON,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("inserting embedding %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("closing insert batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing replace for user %d: %w", userID, err)
	}

	s.logger.Debug("replaced embeddings",
		"user_id", userID,
		"deleted", tag.RowsAffected(),
		"inserted", len(records))
	return nil
}

// Search returns the user's stored rows most similar to queryVector,
// ordered by descending cosine similarity. Rows below the similarity
// floor are excluded; ties break by insertion order. A query timeout
// prevents long vector scans from blocking the caller.
func (s *Store) Search(ctx context.Context, userID int64, queryVector []float32, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	// <=> is pgvector's cosine distance operator; similarity is
	// 1 - distance. The similarity floor is applied server-side so the
	// limit counts only surviving rows.
	rows, err := s.pool.Query(queryCtx, `
		SELECT content, source_type, source_id, metadata, created_at,
		       1 - (embedding <=> $2) AS similarity
		FROM embeddings
		WHERE user_id = $1
		  AND 1 - (embedding <=> $2) >= $3
		ORDER BY embedding <=> $2, id
		LIMIT $4`,
		userID,
		pgvector.NewVector(queryVector),
		cfg.minSimilarity,
		cfg.limit,
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("vector search timeout: %w", err)
		}
		return nil, fmt.Errorf("vector search for user %d: %w", userID, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			content     string
			sourceType  string
			sourceID    int64
			metadataRaw []byte
			createdAt   time.Time
			similarity  float64
		)
		if err := rows.Scan(&content, &sourceType, &sourceID, &metadataRaw, &createdAt, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}

		metadata, err := decodeMetadata(SourceType(sourceType), metadataRaw)
		if err != nil {
			// A row from a retired source kind should not break search
			// for everything else.
			s.logger.Warn("skipping row with undecodable metadata",
				"source_type", sourceType, "source_id", sourceID, "error", err)
			continue
		}

		results = append(results, Result{
			Content:    content,
			SourceType: SourceType(sourceType),
			SourceID:   sourceID,
			Metadata:   metadata,
			Similarity: similarity,
			CreatedAt:  createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	return results, nil
}

// CountForUser returns the number of embedding rows owned by userID.
func (s *Store) CountForUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM embeddings WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting embeddings for user %d: %w", userID, err)
	}
	return count, nil
}

// StatsAll returns the total embedding count and the per-source-type
// breakdown across all users. Operational visibility only; it exposes
// counts, never content.
func (s *Store) StatsAll(ctx context.Context) (Stats, error) {
	stats := Stats{BySourceType: make(map[SourceType]int64)}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&stats.Total); err != nil {
		return Stats{}, fmt.Errorf("counting embeddings: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT source_type, COUNT(*)
		FROM embeddings
		GROUP BY source_type
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting embeddings by source type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sourceType string
			count      int64
		)
		if err := rows.Scan(&sourceType, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		stats.BySourceType[SourceType(sourceType)] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("reading stats rows: %w", err)
	}

	return stats, nil
}
