package driven

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// VectorStore persists embedded chunks and serves retrieval.
// The core only appends; it never updates or deletes chunks.
type VectorStore interface {
	// Insert persists all chunks in one bulk write. Either every chunk
	// is stored or an error is returned.
	Insert(ctx context.Context, chunks []domain.EmbeddedChunk) error

	// Match returns up to count chunks whose cosine similarity to query is
	// at least threshold, best first.
	Match(ctx context.Context, query []float32, threshold float64, count int) ([]domain.ScoredChunk, error)

	// List returns up to limit stored chunks in no particular ranking.
	List(ctx context.Context, limit int) ([]domain.EmbeddedChunk, error)

	// Close releases resources.
	Close() error
}
