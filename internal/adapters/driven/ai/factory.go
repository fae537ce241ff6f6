// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"

	geminiembed "github.com/custodia-labs/chainaudit/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/chainaudit/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/chainaudit/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/googleai"
	anthropicllm "github.com/custodia-labs/chainaudit/internal/adapters/driven/llm/anthropic"
	azurellm "github.com/custodia-labs/chainaudit/internal/adapters/driven/llm/azure"
	geminillm "github.com/custodia-labs/chainaudit/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/chainaudit/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/chainaudit/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorStore      driven.VectorStore
	Warnings         []string // Non-fatal issues; the affected service is nil.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.VectorStore != nil {
		r.VectorStore.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Factory builds adapters from settings. Gemini embedding and generation
// share one Genkit runtime, created on first use with the first key seen.
type Factory struct {
	ctx context.Context
	g   *genkit.Genkit
}

// NewFactory creates a factory whose Genkit runtime is bound to ctx.
func NewFactory(ctx context.Context) *Factory {
	return &Factory{ctx: ctx}
}

// Init creates every driven service the pipelines need. A service that
// cannot be created is left nil and reported in Warnings: the pipelines
// degrade (zero vectors, storage or generation errors) rather than refuse
// to start.
func (f *Factory) Init(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	embedSvc, err := f.CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", domain.ErrEmbeddingUnavailable, err))
	case embedSvc == nil:
		result.Warnings = append(result.Warnings, "embedding provider not configured; chunks will carry zero vectors")
	default:
		result.EmbeddingService = embedSvc
	}

	llmSvc, err := f.CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", domain.ErrLLMUnavailable, err))
	case llmSvc == nil:
		result.Warnings = append(result.Warnings, "LLM provider not configured; questions cannot be answered")
	default:
		result.LLMService = llmSvc
	}

	store, err := vectorstore.Open(f.ctx, settings.VectorStore)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%v: %v", domain.ErrVectorStoreUnavailable, err))
	} else {
		result.VectorStore = store
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func (f *Factory) CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := f.CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(f.ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func (f *Factory) CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := f.CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(f.ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderAnthropic, domain.AIProviderAzureOpenAI:
		return nil, fmt.Errorf("%s does not provide embeddings, use gemini, ollama or openai", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		g, err := f.genkit(settings.APIKey)
		if err != nil {
			return nil, err
		}
		return geminiembed.NewEmbeddingService(g, settings.Model), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		g, err := f.genkit(settings.APIKey)
		if err != nil {
			return nil, err
		}
		return geminillm.NewLLMService(g, settings.Model), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAzureOpenAI:
		return azurellm.NewLLMService(azurellm.Config{
			Endpoint:   settings.BaseURL,
			APIKey:     settings.APIKey,
			Deployment: settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func (f *Factory) genkit(apiKey string) (*genkit.Genkit, error) {
	if f.g != nil {
		return f.g, nil
	}
	g, err := googleai.NewApp(f.ctx, apiKey)
	if err != nil {
		return nil, err
	}
	f.g = g
	return g, nil
}
