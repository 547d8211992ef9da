package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reposage/reposage/db"
	"github.com/reposage/reposage/internal/answer"
	"github.com/reposage/reposage/internal/config"
	"github.com/reposage/reposage/internal/database"
	"github.com/reposage/reposage/internal/embed"
	"github.com/reposage/reposage/internal/indexer"
	"github.com/reposage/reposage/internal/knowledge"
	"github.com/reposage/reposage/internal/retrieval"
	"github.com/reposage/reposage/internal/source"
)

// Setup creates and initializes the application. Migrations run first,
// then the pool, then the model-facing services. The embedder is lazy:
// commands that never embed (stats, migrate) work without GEMINI_API_KEY.
//
// On failure everything already initialized is released; on success call
// Close to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Embedder = embed.NewLazy(cfg.EmbedderDimension, func(ctx context.Context) (embed.Embedder, error) {
		return embed.NewGoogleAI(ctx, g, cfg.EmbedderModel, cfg.EmbedderDimension,
			cfg.EmbedderCallsPerSecond, logger), nil
	})

	a.Knowledge = knowledge.NewStore(pool, logger)
	a.Sources = source.NewStore(pool, logger)

	a.Retriever = retrieval.New(a.Embedder, a.Knowledge,
		cfg.RetrievalTopK, cfg.RetrievalMinSimilarity, logger)
	a.Syncer = indexer.New(a.Sources, a.Embedder, a.Knowledge, logger,
		indexer.WithChunkPolicy(cfg.ChunkMaxLength, cfg.ChunkOverlap))
	a.Answerer = answer.New(a.Retriever, answer.NewGoogleAI(g, cfg.GenerationModel), logger)

	return a, nil
}

// provideDBPool runs pending migrations and opens the connection pool.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// provideGenkit initializes Genkit with the Google AI plugin.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit with googleai plugin")
	}
	return g, nil
}
