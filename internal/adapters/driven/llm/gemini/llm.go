// Package gemini provides an LLM service adapter for Google Gemini models
// through Genkit.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/googleai"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// LLMService generates answers with a Gemini model.
type LLMService struct {
	g     *genkit.Genkit
	model string
}

// NewLLMService creates an LLM service on an initialised Genkit runtime.
func NewLLMService(g *genkit.Genkit, model string) *LLMService {
	if model == "" {
		model = DefaultModel
	}
	return &LLMService{g: g, model: googleai.ModelRef(model)}
}

// Generate produces a completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if s.g == nil {
		return "", errors.New("gemini: genkit runtime not initialised")
	}
	genOpts := []ai.GenerateOption{
		ai.WithModelName(s.model),
		ai.WithPrompt(prompt),
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		genOpts = append(genOpts, ai.WithConfig(&ai.GenerationCommonConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     opts.Temperature,
		}))
	}

	resp, err := genkit.Generate(ctx, s.g, genOpts...)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	return resp.Text(), nil
}

// ModelName returns the qualified model name.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping requests a one-token completion.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	return err
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
