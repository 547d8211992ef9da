package embed

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"golang.org/x/time/rate"
)

// DefaultModel is the default Google AI embedding model.
// Its output is truncated to the configured dimension server-side when
// the model supports Matryoshka-style truncation.
const DefaultModel = "text-embedding-004"

// NewGoogleAI constructs an Adapter backed by a Google AI embedding model
// through Genkit. Requires GEMINI_API_KEY in the environment.
//
// callsPerSecond caps embedding API calls; zero disables the limit.
func NewGoogleAI(ctx context.Context, g *genkit.Genkit, model string, dimension int, callsPerSecond float64, logger *slog.Logger) *Adapter {
	if model == "" {
		model = DefaultModel
	}

	embedder := googlegenai.GoogleAIEmbedder(g, model)

	var opts []Option
	if callsPerSecond > 0 {
		opts = append(opts, WithRateLimit(rate.Limit(callsPerSecond), 1))
	}

	return NewAdapter(embedder, dimension, logger, opts...)
}
