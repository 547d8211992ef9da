// Package retrieval assembles grounded context for answering questions
// from a user's indexed GitHub content.
//
// Given a free-text question it embeds the query, searches the user's
// vector index, and renders the surviving chunks as a numbered context
// block with a deduplicated citation list. Retrieval is an enhancement
// to answering, not a hard dependency: when the index is empty or the
// store is unreachable, the result is simply an empty context.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/reposage/reposage/internal/knowledge"
)

// Embedder is the single-text embedding capability the retriever needs.
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the scoped vector search capability the retriever needs.
// *knowledge.Store satisfies it.
type Searcher interface {
	Search(ctx context.Context, userID int64, queryVector []float32, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
}

// Citation is a display-ready reference to one originating source
// entity, deduplicated across the chunks retrieved from it. The
// type-specific fields follow the source kind: issues carry repository
// and state, repositories carry language and stars.
type Citation struct {
	Type       knowledge.SourceType `json:"type"`
	Title      string               `json:"title"`
	URL        string               `json:"url"`
	Repository string               `json:"repository,omitempty"`
	State      string               `json:"state,omitempty"`
	Language   string               `json:"language,omitempty"`
	Stars      int                  `json:"stars,omitempty"`
	Similarity float64              `json:"similarity"`
}

// Context is the retrieval result handed to the generation layer.
// SourceCount counts distinct citations, not raw chunks; a zero count
// means "answer without retrieved context".
type Context struct {
	Text        string
	Citations   []Citation
	SourceCount int
}

// Retriever orchestrates query-time retrieval.
type Retriever struct {
	embedder      Embedder
	searcher      Searcher
	limit         int32
	minSimilarity float64
	logger        *slog.Logger
}

// New creates a Retriever. A non-positive limit falls back to the store
// default (7 results). minSimilarity is honored anywhere in the cosine
// range [-1, 1], including zero and negative floors; NaN or out-of-range
// values fall back to the 0.3 default.
func New(embedder Embedder, searcher Searcher, limit int32, minSimilarity float64, logger *slog.Logger) *Retriever {
	if limit <= 0 {
		limit = knowledge.DefaultSearchLimit
	}
	if math.IsNaN(minSimilarity) || minSimilarity < -1 || minSimilarity > 1 {
		minSimilarity = knowledge.DefaultMinSimilarity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder:      embedder,
		searcher:      searcher,
		limit:         limit,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Retrieve embeds query and returns the most relevant indexed content
// for userID.
//
// An embedding failure is returned to the caller: silently answering
// with an empty context would misrepresent "model down" as "no relevant
// data". A search failure degrades to an empty Context instead, so the
// answer path stays available when the index is unreachable.
func (r *Retriever) Retrieve(ctx context.Context, query string, userID int64) (Context, error) {
	queryVector, err := r.embedder.EmbedOne(ctx, query)
	if err != nil {
		return Context{}, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.searcher.Search(ctx, userID, queryVector,
		knowledge.WithLimit(r.limit),
		knowledge.WithMinSimilarity(r.minSimilarity),
	)
	if err != nil {
		r.logger.Warn("vector search failed, answering without context",
			"user_id", userID, "error", err)
		return Context{}, nil
	}

	if len(results) == 0 {
		return Context{}, nil
	}

	return buildContext(results), nil
}

// buildContext renders ranked results as a numbered context block and a
// citation list deduplicated on (source_type, source_id). The first,
// highest-similarity chunk of each source wins the citation; later
// chunks still contribute context lines.
func buildContext(results []knowledge.Result) Context {
	type sourceKey struct {
		sourceType knowledge.SourceType
		sourceID   int64
	}

	lines := make([]string, 0, len(results))
	citations := make([]Citation, 0, len(results))
	seen := make(map[sourceKey]bool, len(results))

	for i, res := range results {
		lines = append(lines, fmt.Sprintf("[Source %d] %s", i+1, res.Content))

		key := sourceKey{res.SourceType, res.SourceID}
		if seen[key] {
			continue
		}
		seen[key] = true
		citations = append(citations, newCitation(res))
	}

	return Context{
		Text:        strings.Join(lines, "\n\n"),
		Citations:   citations,
		SourceCount: len(citations),
	}
}

// newCitation builds the display shape for one result. The switch is
// exhaustive over the metadata union; decodeMetadata guarantees no other
// variant reaches this point.
func newCitation(res knowledge.Result) Citation {
	similarity := math.Round(res.Similarity*100) / 100

	switch m := res.Metadata.(type) {
	case knowledge.IssueMetadata:
		title := m.Title
		if title == "" {
			title = "GitHub Issue"
		}
		return Citation{
			Type:       knowledge.SourceTypeIssue,
			Title:      title,
			URL:        m.URL,
			Repository: m.Repository,
			State:      m.State,
			Similarity: similarity,
		}
	case knowledge.RepositoryMetadata:
		title := m.Name
		if title == "" {
			title = "GitHub Repository"
		}
		return Citation{
			Type:       knowledge.SourceTypeRepository,
			Title:      title,
			URL:        m.URL,
			Language:   m.Language,
			Stars:      m.Stars,
			Similarity: similarity,
		}
	default:
		// Unreachable while the union stays sealed; keep the row usable
		// rather than dropping it.
		return Citation{
			Type:       res.SourceType,
			Similarity: similarity,
		}
	}
}
