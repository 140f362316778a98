// Package tablesafgenkit adapts a Genkit model into a tablesaf text
// generator, enabling the AI table reconstruction path.
package tablesafgenkit

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/antflydb/tablesaf"
)

// Generator calls a Genkit model to reconstruct tables from page text.
type Generator struct {
	g     *genkit.Genkit
	model string
}

// NewGenerator creates a generator backed by the named model, e.g.
// "openrouter/anthropic/claude-sonnet-4.5" or "googleai/gemini-2.5-flash".
// The model's plugin must already be registered on g.
func NewGenerator(g *genkit.Genkit, model string) *Generator {
	return &Generator{g: g, model: model}
}

// Generate executes one text completion.
func (gen *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, gen.g,
		ai.WithModelName(gen.model),
		ai.WithPrompt("%s", prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return resp.Text(), nil
}

var _ tablesaf.TextGenerator = (*Generator)(nil)
