// Package cli provides the cobra command tree for chainaudit.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

// Runtime is a wired set of services for one command invocation.
type Runtime struct {
	Audit driving.AuditService
	Ask   driving.AskService

	// Close releases the services. May be nil.
	Close func() error
}

// Bootstrap creates the collaborators commands need. It is injected by
// main so the command tree does not depend on concrete adapters.
type Bootstrap struct {
	// OpenSettings returns the settings store at path ("" = default).
	OpenSettings func(path string) (driven.SettingsStore, error)

	// Build wires the pipelines from settings.
	Build func(ctx context.Context, settings domain.AppSettings) (*Runtime, error)

	// Check pings the configured providers.
	Check func(ctx context.Context, settings domain.AppSettings) error
}

var bootstrap Bootstrap

// SetBootstrap injects the collaborator factories.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "chainaudit",
	Short: "Smart-contract security audits with retrieval-augmented Q&A",
	Long: `chainaudit runs static analysis and fuzzing against Solidity contracts,
indexes the findings in a vector store and answers security questions
grounded in those findings.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"settings file (default ~/.chainaudit/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func openSettings() (driven.SettingsStore, error) {
	if bootstrap.OpenSettings == nil {
		return nil, errors.New("settings store not configured")
	}
	return bootstrap.OpenSettings(configPath)
}

func loadSettings() (domain.AppSettings, error) {
	store, err := openSettings()
	if err != nil {
		return domain.AppSettings{}, err
	}
	settings, err := store.Load()
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// startRuntime loads settings, applies adjust and builds the services.
// The caller must close the returned runtime.
func startRuntime(ctx context.Context, adjust func(*domain.AppSettings)) (*Runtime, domain.AppSettings, error) {
	if bootstrap.Build == nil {
		return nil, domain.AppSettings{}, errors.New("services not configured")
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, settings, err
	}
	if adjust != nil {
		adjust(&settings)
	}
	rt, err := bootstrap.Build(ctx, settings)
	if err != nil {
		return nil, settings, fmt.Errorf("failed to start services: %w", err)
	}
	return rt, settings, nil
}

func (r *Runtime) close() {
	if r == nil || r.Close == nil {
		return
	}
	if err := r.Close(); err != nil {
		logger.Warn("close services: %v", err)
	}
}
