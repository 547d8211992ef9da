package answer

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// DefaultModel is the default generation model.
const DefaultModel = "gemini-2.5-flash"

// GoogleAI is a Completer backed by a Google AI model through Genkit.
type GoogleAI struct {
	g     *genkit.Genkit
	model string
}

// NewGoogleAI creates a GoogleAI completer. Requires GEMINI_API_KEY in
// the environment.
func NewGoogleAI(g *genkit.Genkit, model string) *GoogleAI {
	if model == "" {
		model = DefaultModel
	}
	return &GoogleAI{g: g, model: model}
}

// Complete implements Completer.
func (c *GoogleAI) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName("googleai/"+c.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating completion: %w", err)
	}
	return resp.Text(), nil
}
