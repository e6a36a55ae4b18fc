package llm

import "context"

// ChatClient is the seam between the pipeline and an LLM provider.
// GenerateJSON sends a rendered prompt with the provider configured for
// structured JSON output and returns the raw response content (one JSON
// document, possibly wrapped in markdown fences by sloppier models).
//
// Correctness tests stub this interface; live model output is
// non-deterministic and never asserted on.
type ChatClient interface {
	GenerateJSON(ctx context.Context, prompt string) ([]byte, error)
	ModelName() string
}
