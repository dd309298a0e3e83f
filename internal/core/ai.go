package core

import "context"

// EmbeddingProvider maps a batch of texts to fixed-dimension vectors. The
// result has the same length and order as the input. An empty input returns
// an empty result without a network call. No retries happen here; callers
// decide whether a failure is worth retrying.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates a completion from a system and a user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
