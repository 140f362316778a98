package tablesaf

import "context"

// TextGenerator is the single capability the AI reconstruction path consumes.
// Implementations wrap whatever model provider the caller uses; the core
// treats the call as synchronous, fallible, and untrusted. See the
// tablesafgenkit package for a Genkit-backed implementation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the TextGenerator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls the wrapped function.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
