package domain

// EmbeddingDimensions is the fixed vector size of every persisted chunk.
const EmbeddingDimensions = 768

// EmbeddedChunk is a persisted, retrievable unit of text.
// Invariant: len(Embedding) == EmbeddingDimensions. A chunk whose embedding
// failed carries the zero vector instead of being dropped.
type EmbeddedChunk struct {
	// ID is assigned by the store. May be empty before persistence.
	ID string `json:"id,omitempty"`

	// DocumentID links the chunk to its AnalysisDocument.
	DocumentID string `json:"doc_id"`

	// Content is one finding's rendered text.
	Content string `json:"content"`

	// Embedding is the chunk's vector.
	Embedding []float32 `json:"embedding"`
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	EmbeddedChunk

	// Similarity is the cosine similarity to the query (0-1).
	Similarity float64 `json:"similarity"`
}

// ZeroVector returns the zero vector of length n.
func ZeroVector(n int) []float32 {
	return make([]float32, n)
}

// IsZeroVector reports whether every component of v is zero.
func IsZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
