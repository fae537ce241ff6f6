package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

func TestAnswerService_VectorSearch(t *testing.T) {
	store := &mockVectorStore{
		matches: []domain.ScoredChunk{
			{EmbeddedChunk: domain.EmbeddedChunk{Content: "[STATIC] severity:High | Reentrancy | elements:withdraw"}, Similarity: 0.9},
			{EmbeddedChunk: domain.EmbeddedChunk{Content: "[DYNAMIC:fails] property:P | trace:a -> b"}, Similarity: 0.8},
		},
		rows: []domain.EmbeddedChunk{{Content: "unused"}},
	}
	llm := &mockLLMService{response: "Use a reentrancy guard."}
	svc := NewAnswerService(quickEmbedder(newMockEmbedding()), store, llm)

	qc, err := svc.Ask(context.Background(), "  How do I fix reentrancy?  ", 3)

	require.NoError(t, err)
	assert.Equal(t, "Use a reentrancy guard.", qc.Answer)
	assert.Equal(t, "  How do I fix reentrancy?  ", qc.Question)
	assert.Equal(t, domain.RetrievalVector, qc.Mode)
	assert.Equal(t, domain.SimilarityThreshold, store.matchThreshold)
	assert.Equal(t, 3, store.matchCount)
	assert.Zero(t, store.listLimit, "enumeration not used")

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "blockchain security audit expert")
	assert.Contains(t, prompt,
		"[STATIC] severity:High | Reentrancy | elements:withdraw\n\n[DYNAMIC:fails] property:P | trace:a -> b")
	assert.Contains(t, prompt, "How do I fix reentrancy?")
	assert.NotContains(t, prompt, "unused")
}

func TestAnswerService_DefaultTopK(t *testing.T) {
	store := &mockVectorStore{}
	svc := NewAnswerService(quickEmbedder(newMockEmbedding()), store, &mockLLMService{response: "ok"})

	qc, err := svc.Ask(context.Background(), "q", 0)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, qc.TopK)
	assert.Equal(t, domain.DefaultTopK, store.matchCount)
	assert.Equal(t, domain.DefaultTopK, store.listLimit)
}

// quickEmbedder wraps svc with the default retry policy and no waiting.
func quickEmbedder(svc *mockEmbeddingService) *ResilientEmbedder {
	e, _ := newTestEmbedder(svc)
	return e
}

func TestAnswerService_EmptyStoreAndFailingEmbedder(t *testing.T) {
	embedder := newMockEmbedding()
	embedder.embedErr = errTimeout
	resilient, rec := newTestEmbedder(embedder)
	llm := &mockLLMService{response: "Upload reports first."}
	svc := NewAnswerService(resilient, &mockVectorStore{}, llm)

	qc, err := svc.Ask(context.Background(), "Is my contract safe?", 5)

	require.NoError(t, err)
	assert.NotEmpty(t, qc.Answer)
	assert.Equal(t, domain.RetrievalNone, qc.Mode)
	assert.Empty(t, qc.Chunks)
	assert.Contains(t, llm.prompts[0], domain.NoContextSentinel)
	assert.Equal(t, DefaultEmbedAttempts, embedder.callCount())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.delays)
}

func TestAnswerService_QuestionEmbeddingRetriesTimeout(t *testing.T) {
	embedder := newMockEmbedding()
	embedder.script = []embedResponse{{err: errTimeout}}
	store := &mockVectorStore{matches: []domain.ScoredChunk{
		{EmbeddedChunk: domain.EmbeddedChunk{Content: "[STATIC] severity:High | Reentrancy"}, Similarity: 0.9},
	}}
	resilient, rec := newTestEmbedder(embedder)

	qc, err := NewAnswerService(resilient, store, &mockLLMService{response: "a"}).Ask(context.Background(), " q ", 1)

	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalVector, qc.Mode)
	assert.Equal(t, []string{" q ", " q "}, embedder.calls, "question is embedded verbatim")
	assert.Equal(t, []time.Duration{time.Second}, rec.delays)
}

func TestAnswerService_FallsBackToEnumeration(t *testing.T) {
	tests := []struct {
		name  string
		store *mockVectorStore
	}{
		{"no matches", &mockVectorStore{rows: []domain.EmbeddedChunk{{Content: "row one"}, {Content: "row two"}}}},
		{"match error", &mockVectorStore{
			matchErr: errors.New("function match_documents does not exist"),
			rows:     []domain.EmbeddedChunk{{Content: "row one"}, {Content: "row two"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLMService{response: "answer"}
			svc := NewAnswerService(quickEmbedder(newMockEmbedding()), tt.store, llm)

			qc, err := svc.Ask(context.Background(), "q", 2)

			require.NoError(t, err)
			assert.Equal(t, domain.RetrievalEnumeration, qc.Mode)
			assert.Equal(t, []string{"row one", "row two"}, qc.Chunks)
			assert.Equal(t, 2, tt.store.listLimit)
			assert.Contains(t, llm.prompts[0], "row one\n\nrow two")
		})
	}
}

func TestAnswerService_ZeroQuestionVectorSkipsSearch(t *testing.T) {
	embedder := newMockEmbedding()
	embedder.embedding = domain.ZeroVector(domain.EmbeddingDimensions)
	store := &mockVectorStore{rows: []domain.EmbeddedChunk{{Content: "row"}}}

	qc, err := NewAnswerService(quickEmbedder(embedder), store, &mockLLMService{response: "a"}).Ask(context.Background(), "q", 1)

	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalEnumeration, qc.Mode)
	assert.Zero(t, store.matchCount)
}

func TestAnswerService_EnumerationFailureUsesSentinel(t *testing.T) {
	store := &mockVectorStore{listErr: errors.New("connection reset")}
	llm := &mockLLMService{response: "answer"}

	qc, err := NewAnswerService(nil, store, llm).Ask(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalNone, qc.Mode)
	assert.Contains(t, qc.Prompt, domain.NoContextSentinel)
}

func TestAnswerService_NoStore(t *testing.T) {
	llm := &mockLLMService{response: "answer"}

	qc, err := NewAnswerService(quickEmbedder(newMockEmbedding()), nil, llm).Ask(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Contains(t, qc.Prompt, domain.NoContextSentinel)
}

func TestAnswerService_GenerationFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	svc := NewAnswerService(quickEmbedder(newMockEmbedding()), &mockVectorStore{}, &mockLLMService{generateErr: cause})

	qc, err := svc.Ask(context.Background(), "q", 5)

	assert.Nil(t, qc)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, cause)
}

func TestAnswerService_NoLLM(t *testing.T) {
	_, err := NewAnswerService(nil, nil, nil).Ask(context.Background(), "q", 5)

	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswerService_EmptyQuestion(t *testing.T) {
	llm := &mockLLMService{response: "a"}

	_, err := NewAnswerService(quickEmbedder(newMockEmbedding()), &mockVectorStore{}, llm).Ask(context.Background(), "   ", 5)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, llm.prompts)
}

func TestAnswerService_PromptTemplate(t *testing.T) {
	tests := []struct {
		name   string
		store  *mockPromptStore
		expect string
	}{
		{"custom", &mockPromptStore{prompt: "CTX=%s Q=%s"}, "CTX=" + domain.NoContextSentinel + " Q=why"},
		{"load error", &mockPromptStore{loadErr: errors.New("permission denied")}, "### Question\nwhy\n"},
		{"missing placeholder", &mockPromptStore{prompt: "only %s"}, "### Question\nwhy\n"},
		{"stray verb", &mockPromptStore{prompt: "%s %s %d"}, "### Question\nwhy\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLMService{response: "a"}
			svc := NewAnswerService(nil, nil, llm)
			svc.SetPromptStore(tt.store)
			svc.SetGenerateOptions(driven.GenerateOptions{Temperature: 0.2})

			qc, err := svc.Ask(context.Background(), "why", 5)

			require.NoError(t, err)
			assert.Contains(t, qc.Prompt, tt.expect)
		})
	}
}
