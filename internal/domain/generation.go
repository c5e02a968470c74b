package domain

import "context"

// Generator is the shared text generation contract between layers.
// instruction says what to write; facts carries the catalog context to write about.
type Generator interface {
	Generate(ctx context.Context, instruction, facts string) (Generation, error)
}

// HealthChecker verifies generation provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Generation carries generated text and token usage through the decorator chain.
type Generation struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
