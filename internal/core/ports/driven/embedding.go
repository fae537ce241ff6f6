// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must wrap timeout-class failures (deadline exceeded,
// HTTP 504) with domain.ErrEmbeddingTimeout so callers can retry them
// with backoff and fail fast on everything else.
//
// Implementations may include:
//   - Gemini via Genkit (text-embedding-004)
//   - OpenAI (text-embedding-3-small with 768 dimensions)
//   - Ollama (nomic-embed-text)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
