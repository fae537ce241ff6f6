package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// settingsInput is where the wizards read answers from.
var settingsInput io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the vector store and analyzer options.

Settings are read from the config file, then .env, then the environment;
later sources win.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default settings file",
	RunE:  runSettingsInit,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Ping the configured providers and vector store",
	RunE:  runSettingsCheck,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index findings and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the language model that answers security questions.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Printf("Settings file: %s\n\n", store.Path())

	cmd.Println("[Server]")
	cmd.Printf("  Listen: %s\n", settings.Server.ListenAddr)
	cmd.Printf("  Allowed origins: %s\n", strings.Join(settings.Server.AllowedOrigins, ", "))
	cmd.Println()

	cmd.Println("[Tools]")
	cmd.Printf("  Static analyzer: %s (timeout %s)\n", settings.Tools.SlitherPath, settings.Tools.StaticTimeout)
	cmd.Printf("  Fuzzer: %s run %s (timeout %s)\n",
		settings.Tools.ContainerRuntime, settings.Tools.FuzzerImage, settings.Tools.DynamicTimeout)
	cmd.Println()

	cmd.Println("[Explorer]")
	cmd.Printf("  Base URL: %s\n", settings.Explorer.BaseURL)
	cmd.Printf("  API Key: %s\n", displayKey(settings.Explorer.APIKey))
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", displayKey(settings.LLM.APIKey))
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", settings.VectorStore.Backend)
	switch settings.VectorStore.Backend {
	case domain.VectorStoreSupabase:
		cmd.Printf("  URL: %s\n", settings.VectorStore.URL)
		cmd.Printf("  Table: %s\n", settings.VectorStore.Table)
		cmd.Printf("  API Key: %s\n", displayKey(settings.VectorStore.APIKey))
	case domain.VectorStoreSQLite, domain.VectorStoreBolt:
		if settings.VectorStore.DataDir != "" {
			cmd.Printf("  Data dir: %s\n", settings.VectorStore.DataDir)
		}
	}
	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("getting force flag: %w", err)
	}
	store, err := openSettings()
	if err != nil {
		return err
	}
	if _, err := os.Stat(store.Path()); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", store.Path())
	}
	if err := store.Save(domain.DefaultAppSettings()); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Wrote default settings to %s\n", store.Path())
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if bootstrap.Check == nil {
		return errors.New("settings check not configured")
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	cmd.Print("Checking configuration... ")
	if err := bootstrap.Check(cmd.Context(), settings); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	return configureProvider(cmd, domain.EmbeddingProviders(), domain.DefaultEmbeddingModels(),
		func(s *domain.AppSettings, p providerChoice) {
			s.Embedding = domain.EmbeddingSettings{Provider: p.provider, Model: p.model, BaseURL: p.baseURL, APIKey: p.apiKey}
		})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	return configureProvider(cmd, domain.LLMProviders(), domain.DefaultLLMModels(),
		func(s *domain.AppSettings, p providerChoice) {
			s.LLM = domain.LLMSettings{Provider: p.provider, Model: p.model, BaseURL: p.baseURL, APIKey: p.apiKey}
		})
}

type providerChoice struct {
	provider domain.AIProvider
	model    string
	baseURL  string
	apiKey   string
}

func configureProvider(
	cmd *cobra.Command,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
	apply func(*domain.AppSettings, providerChoice),
) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	reader := bufio.NewReader(settingsInput)

	cmd.Println("Select Provider")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	choice := providerChoice{provider: providers[parseChoice(readLine(reader), len(providers), 1)-1]}

	defaultModel := defaults[choice.provider]
	label := "model name"
	if choice.provider == domain.AIProviderAzureOpenAI {
		label = "deployment name"
	}
	cmd.Printf("Enter %s [%s]: ", label, defaultModel)
	if choice.model = readLine(reader); choice.model == "" {
		choice.model = defaultModel
	}

	switch choice.provider {
	case domain.AIProviderAzureOpenAI:
		cmd.Print("Enter resource endpoint: ")
		if choice.baseURL = readLine(reader); choice.baseURL == "" {
			return errors.New("endpoint is required for Azure OpenAI")
		}
	case domain.AIProviderOllama:
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		choice.baseURL = readLine(reader)
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(reader)
		cmd.Println()
		if choice.apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	apply(&settings, choice)
	if err := store.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Configured %s (%s) in %s\n", choice.provider.Description(), choice.model, store.Path())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when input is a terminal.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func displayKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
