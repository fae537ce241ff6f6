package domain

// DefaultTopK is the number of chunks retrieved when the caller does not say.
const DefaultTopK = 5

// SimilarityThreshold is the minimum cosine similarity for vector matches.
const SimilarityThreshold = 0.7

// NoContextSentinel replaces the context when nothing could be retrieved.
const NoContextSentinel = "No relevant audit data is available yet. Please upload some audit reports first."

// RetrievalMode records which retrieval tier produced the context.
type RetrievalMode string

// Retrieval tiers, best first.
const (
	// RetrievalVector is similarity search over embeddings.
	RetrievalVector RetrievalMode = "vector"

	// RetrievalEnumeration is an unranked listing of stored chunks.
	RetrievalEnumeration RetrievalMode = "enumeration"

	// RetrievalNone means the sentinel context was used.
	RetrievalNone RetrievalMode = "none"
)

// String returns the string representation.
func (m RetrievalMode) String() string {
	return string(m)
}

// QueryContext is the per-question state of the answerer. Not persisted.
type QueryContext struct {
	// Question is the user's verbatim question.
	Question string

	// TopK is the requested result count.
	TopK int

	// Mode is the retrieval tier that supplied Chunks.
	Mode RetrievalMode

	// Chunks are the retrieved chunk texts.
	Chunks []string

	// Prompt is the assembled model prompt.
	Prompt string

	// Answer is the generated answer.
	Answer string
}
