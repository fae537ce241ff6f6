// Package memory provides an in-process vector store. Chunks are lost when
// the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore/similarity"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps chunks in insertion order.
type Store struct {
	mu     sync.RWMutex
	chunks []domain.EmbeddedChunk
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Insert appends chunks.
func (s *Store) Insert(_ context.Context, chunks []domain.EmbeddedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		c.Embedding = append([]float32(nil), c.Embedding...)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

// Match ranks every stored chunk against query.
func (s *Store) Match(_ context.Context, query []float32, threshold float64, count int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return similarity.Rank(s.chunks, query, threshold, count), nil
}

// List returns the oldest limit chunks.
func (s *Store) List(_ context.Context, limit int) ([]domain.EmbeddedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.chunks) {
		limit = len(s.chunks)
	}
	out := make([]domain.EmbeddedChunk, limit)
	copy(out, s.chunks[:limit])
	return out, nil
}

// Len returns the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}
