// Package answer joins retrieval with text generation.
//
// Generation is an opaque collaborator behind the Completer interface:
// the service builds a grounded prompt when retrieval found context and
// forwards the raw question otherwise. It never retries the model call.
package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reposage/reposage/internal/retrieval"
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever is the retrieval capability the service needs.
// *retrieval.Retriever satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, userID int64) (retrieval.Context, error)
}

// Response is a generated answer plus the citations backing it. An empty
// citation list means the model answered without retrieved context.
type Response struct {
	Text        string               `json:"text"`
	Citations   []retrieval.Citation `json:"citations"`
	ContextUsed bool                 `json:"context_used"`
}

// Service answers questions against a user's indexed GitHub content.
type Service struct {
	retriever Retriever
	completer Completer
	logger    *slog.Logger
}

// New creates a Service.
func New(retriever Retriever, completer Completer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		retriever: retriever,
		completer: completer,
		logger:    logger,
	}
}

// Ask answers question for userID. Retrieval and generation failures
// both surface to the caller; an empty index does not, the model simply
// answers without context.
func (s *Service) Ask(ctx context.Context, userID int64, question string) (Response, error) {
	rc, err := s.retriever.Retrieve(ctx, question, userID)
	if err != nil {
		return Response{}, fmt.Errorf("retrieving context: %w", err)
	}

	prompt := retrieval.BuildPrompt(question, rc)

	text, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return Response{}, fmt.Errorf("generating answer: %w", err)
	}

	s.logger.Debug("answered question",
		"user_id", userID,
		"sources", rc.SourceCount)

	return Response{
		Text:        text,
		Citations:   rc.Citations,
		ContextUsed: rc.SourceCount > 0,
	}, nil
}
