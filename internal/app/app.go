// Package app wires the application together: configuration, database
// pool, Genkit, and the services built on top of them.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reposage/reposage/internal/answer"
	"github.com/reposage/reposage/internal/config"
	"github.com/reposage/reposage/internal/embed"
	"github.com/reposage/reposage/internal/indexer"
	"github.com/reposage/reposage/internal/knowledge"
	"github.com/reposage/reposage/internal/retrieval"
	"github.com/reposage/reposage/internal/source"
)

// App is the application container holding every long-lived component.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit    *genkit.Genkit
	DBPool    *pgxpool.Pool
	Embedder  embed.Embedder
	Knowledge *knowledge.Store
	Sources   *source.Store
	Retriever *retrieval.Retriever
	Syncer    *indexer.Syncer
	Answerer  *answer.Service
}

// Close releases all resources held by the App.
func (a *App) Close() error {
	a.Logger.Debug("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Debug("database pool closed")
	}

	return nil
}
