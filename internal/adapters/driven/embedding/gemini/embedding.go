// Package gemini provides an embedding service adapter for Google's Gemini
// embedding models through Genkit.
package gemini

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/embedding"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/googleai"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const provider = "gemini"

// DefaultModel produces domain.EmbeddingDimensions-long vectors.
const DefaultModel = "text-embedding-004"

// EmbeddingService generates embeddings with a Gemini embedder.
type EmbeddingService struct {
	g     *genkit.Genkit
	model string
}

// NewEmbeddingService creates an embedding service on an initialised
// Genkit runtime. An empty model means DefaultModel.
func NewEmbeddingService(g *genkit.Genkit, model string) *EmbeddingService {
	if model == "" {
		model = DefaultModel
	}
	return &EmbeddingService{g: g, model: googleai.ModelRef(model)}
}

// Embed generates a vector embedding for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := genkit.Embed(ctx, s.g,
		ai.WithEmbedderName(s.model),
		ai.WithTextDocs(text),
	)
	if err != nil {
		if googleai.IsTimeout(err) {
			return nil, fmt.Errorf("%s: %w: %w", provider, domain.ErrEmbeddingTimeout, err)
		}
		return nil, embedding.Classify(provider, err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("%s: response contained no embeddings", provider)
	}
	return resp.Embeddings[0].Embedding, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return domain.EmbeddingDimensions
}

// ModelName returns the qualified embedder name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping embeds a short probe text.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.Embed(ctx, "ping")
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
