package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AskService = (*AnswerService)(nil)

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// AnswerService answers questions from indexed findings.
// Retrieval degrades from vector search to plain enumeration to no
// context at all; only generation can fail a request.
type AnswerService struct {
	embedder *ResilientEmbedder
	store    driven.VectorStore
	llm      driven.LLMService
	prompts  driven.PromptStore
	opts     driven.GenerateOptions
}

// NewAnswerService creates an answer service.
// embedder and store may be nil; retrieval then skips the tiers that need them.
func NewAnswerService(
	embedder *ResilientEmbedder,
	store driven.VectorStore,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		embedder: embedder,
		store:    store,
		llm:      llm,
	}
}

// SetPromptStore sets where the answer template is loaded from.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetGenerateOptions sets the options passed to the generative model.
func (s *AnswerService) SetGenerateOptions(opts driven.GenerateOptions) {
	s.opts = opts
}

// Ask answers question using up to topK retrieved chunks.
// A non-positive topK means domain.DefaultTopK.
func (s *AnswerService) Ask(ctx context.Context, question string, topK int) (*domain.QueryContext, error) {
	logger.Section("Ask")

	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	qc := &domain.QueryContext{Question: question, TopK: topK, Mode: domain.RetrievalNone}
	s.retrieve(ctx, qc)

	assembled := domain.NoContextSentinel
	if len(qc.Chunks) > 0 {
		assembled = strings.Join(qc.Chunks, contextSeparator)
	}
	qc.Prompt = fmt.Sprintf(s.template(), assembled, question)
	logger.Debug("Retrieval mode: %s, chunks: %d, prompt: %d chars", qc.Mode, len(qc.Chunks), len(qc.Prompt))

	if s.llm == nil {
		return nil, domain.NewStageError(domain.PhaseGenerate, "", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}
	answer, err := s.llm.Generate(ctx, qc.Prompt, s.opts)
	if err != nil {
		logger.Error("generation failed: %v", err)
		return nil, domain.NewStageError(domain.PhaseGenerate, s.llm.ModelName(), domain.ErrGeneration, err)
	}

	qc.Answer = answer
	logger.Info("Answered with %d chars", len(answer))
	return qc, nil
}

// retrieve fills qc.Chunks and qc.Mode. Failures at any tier fall through.
func (s *AnswerService) retrieve(ctx context.Context, qc *domain.QueryContext) {
	if s.store == nil {
		logger.Debug("No vector store, answering without context")
		return
	}

	if vec := s.embedQuestion(ctx, qc.Question); vec != nil {
		matches, err := s.store.Match(ctx, vec, domain.SimilarityThreshold, qc.TopK)
		switch {
		case err != nil:
			logger.Warn("vector search failed: %v", err)
		case len(matches) > 0:
			qc.Mode = domain.RetrievalVector
			qc.Chunks = make([]string, len(matches))
			for i, m := range matches {
				qc.Chunks[i] = m.Content
			}
			return
		default:
			logger.Debug("Vector search returned nothing above %.2f", domain.SimilarityThreshold)
		}
	}

	rows, err := s.store.List(ctx, qc.TopK)
	if err != nil {
		logger.Warn("chunk enumeration failed: %v", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	qc.Mode = domain.RetrievalEnumeration
	qc.Chunks = make([]string, len(rows))
	for i, r := range rows {
		qc.Chunks[i] = r.Content
	}
}

// embedQuestion returns nil when the question cannot be used for vector search.
// The question gets the same retry budget as indexed chunks.
func (s *AnswerService) embedQuestion(ctx context.Context, question string) []float32 {
	if s.embedder == nil {
		return nil
	}
	vec, degraded := s.embedder.Embed(ctx, question)
	if degraded || domain.IsZeroVector(vec) {
		logger.Debug("Question embedding unavailable, skipping vector search")
		return nil
	}
	return vec
}

// template returns the configured answer template, or the built-in one when
// the store is missing, fails, or holds a template with the wrong placeholders.
func (s *AnswerService) template() string {
	if s.prompts == nil {
		return driven.DefaultAskPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAsk)
	if err != nil {
		logger.Warn("load %s prompt: %v", driven.PromptAsk, err)
		return driven.DefaultAskPrompt
	}
	if strings.Count(tmpl, "%s") != 2 || strings.Count(tmpl, "%") != 2 {
		logger.Warn("%s prompt must contain exactly two %%s placeholders, using default", driven.PromptAsk)
		return driven.DefaultAskPrompt
	}
	return tmpl
}
