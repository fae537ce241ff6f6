// Package app wires driven adapters into the core services.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/ai"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/explorer/etherscan"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/tools/echidna"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/tools/exec"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/tools/slither"
	"github.com/custodia-labs/chainaudit/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/core/services"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// ErrNoSettings is returned by Load when no settings store is given.
var ErrNoSettings = errors.New("settings store is required")

// Services holds the wired pipelines and the resources behind them.
type Services struct {
	Audit *services.AuditService
	Ask   *services.AnswerService

	// Warnings lists collaborators that could not be created. The
	// pipelines run without them.
	Warnings []string

	deps *ai.InitResult
}

// Close releases the AI clients and the vector store.
func (s *Services) Close() error {
	if s.deps != nil {
		s.deps.Close()
	}
	return nil
}

// Options tune Build beyond what settings carry.
type Options struct {
	// PromptDir overrides the prompt template directory. Empty selects
	// ~/.chainaudit/prompts.
	PromptDir string

	// TempRoot is the parent for per-request working directories.
	TempRoot string
}

// OpenSettings returns the settings store for path. An empty path selects
// the default location.
func OpenSettings(path string) (driven.SettingsStore, error) {
	store, err := file.NewSettingsStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Build wires both pipelines from settings.
func Build(ctx context.Context, settings domain.AppSettings, opts Options) (*Services, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	deps := ai.NewFactory(ctx).Init(&settings)
	for _, w := range deps.Warnings {
		logger.Warn("%s", w)
	}

	runner := exec.NewRunner()
	toolRunner := services.NewToolRunner(
		slither.NewAnalyzer(runner, settings.Tools.SlitherPath),
		echidna.NewFuzzer(runner, settings.Tools.ContainerRuntime, settings.Tools.FuzzerImage),
		settings.Tools.StaticTimeout,
		settings.Tools.DynamicTimeout,
	)

	acquirer := services.NewSourceAcquirer(etherscan.NewClient(settings.Explorer), opts.TempRoot)
	embedder := services.NewResilientEmbedder(deps.EmbeddingService)
	indexer := services.NewIndexer(embedder, deps.VectorStore)
	audit := services.NewAuditService(acquirer, toolRunner, indexer)

	ask := services.NewAnswerService(embedder, deps.VectorStore, deps.LLMService)
	prompts, err := file.NewPromptStore(opts.PromptDir)
	if err != nil {
		logger.Warn("Prompt templates unavailable, using built-in: %v", err)
	} else {
		ask.SetPromptStore(prompts)
	}

	return &Services{
		Audit:    audit,
		Ask:      ask,
		Warnings: deps.Warnings,
		deps:     deps,
	}, nil
}

// Load reads settings from store and wires both pipelines.
func Load(ctx context.Context, store driven.SettingsStore, opts Options) (*Services, error) {
	if store == nil {
		return nil, ErrNoSettings
	}
	settings, err := store.Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded settings from %s", store.Path())
	return Build(ctx, settings, opts)
}

// Check pings the configured AI providers and opens the vector store once.
// Unconfigured providers are skipped.
func Check(ctx context.Context, settings domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	factory := ai.NewFactory(ctx)

	var errs []error
	if settings.Embedding.IsConfigured() {
		svc, err := factory.CreateAndValidateEmbeddingService(&settings.Embedding)
		if err != nil {
			errs = append(errs, fmt.Errorf("embedding: %w", err))
		} else if svc != nil {
			svc.Close()
		}
	}
	if settings.LLM.IsConfigured() {
		svc, err := factory.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			errs = append(errs, fmt.Errorf("llm: %w", err))
		} else if svc != nil {
			svc.Close()
		}
	}
	store, err := vectorstore.Open(ctx, settings.VectorStore)
	if err != nil {
		errs = append(errs, fmt.Errorf("vector store: %w", err))
	} else {
		store.Close()
	}
	return errors.Join(errs...)
}
