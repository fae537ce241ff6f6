package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// IndexResult reports what one Index call persisted.
type IndexResult struct {
	// Inserted is the number of chunks written. It always equals the
	// number of chunk texts passed in.
	Inserted int

	// Degraded is how many of them carry the zero vector.
	Degraded int
}

// Indexer embeds chunk texts and persists them in one bulk write.
type Indexer struct {
	embedder *ResilientEmbedder
	store    driven.VectorStore
}

// NewIndexer creates an indexer.
func NewIndexer(embedder *ResilientEmbedder, store driven.VectorStore) *Indexer {
	return &Indexer{embedder: embedder, store: store}
}

// Index embeds each chunk in order and inserts them all under docID.
// Embedding failures degrade individual vectors; only the insert can fail,
// and then nothing from this call is considered stored.
func (i *Indexer) Index(ctx context.Context, docID string, chunks []string) (IndexResult, error) {
	if len(chunks) == 0 {
		return IndexResult{}, nil
	}
	if i.store == nil {
		return IndexResult{}, domain.NewStageError(domain.PhaseIndex, "", domain.ErrStorage,
			domain.ErrVectorStoreUnavailable)
	}

	logger.Debug("Embedding %d chunks for %s", len(chunks), docID)

	rows := make([]domain.EmbeddedChunk, len(chunks))
	degraded := 0
	for n, text := range chunks {
		vec, zero := i.embedder.Embed(ctx, text)
		if zero {
			degraded++
		}
		rows[n] = domain.EmbeddedChunk{
			ID:         uuid.New().String(),
			DocumentID: docID,
			Content:    text,
			Embedding:  vec,
		}
	}

	if err := i.store.Insert(ctx, rows); err != nil {
		logger.Error("insert %d chunks for %s: %v", len(rows), docID, err)
		return IndexResult{}, domain.NewStageError(domain.PhaseIndex, "", domain.ErrStorage, err)
	}

	if degraded > 0 {
		logger.Warn("%s: %d of %d chunks stored with zero vectors", docID, degraded, len(rows))
	}
	logger.Info("Indexed %d chunks for %s", len(rows), docID)
	return IndexResult{Inserted: len(rows), Degraded: degraded}, nil
}
