package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

var _ driven.SettingsStore = (*SettingsStore)(nil)

// Environment variables that override the settings file.
const (
	EnvListenAddr       = "CHAINAUDIT_LISTEN_ADDR"
	EnvDataDir          = "CHAINAUDIT_DATA_DIR"
	EnvVectorStore      = "CHAINAUDIT_VECTOR_STORE"
	EnvSupabaseURL      = "SUPABASE_URL"
	EnvSupabaseKey      = "SUPABASE_KEY"
	EnvGoogleAPIKey     = "GOOGLE_API_KEY"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvAzureAPIKey      = "AZURE_OPENAI_API_KEY"
	EnvAzureEndpoint    = "AZURE_OPENAI_ENDPOINT"
	EnvEtherscanAPIKey  = "ETHERSCAN_API_KEY"
	EnvSlitherPath      = "CHAINAUDIT_SLITHER_PATH"
	EnvContainerRuntime = "CHAINAUDIT_CONTAINER_RUNTIME"
)

// SettingsStore loads domain.AppSettings from a TOML file.
//
// Precedence, lowest first: built-in defaults, the TOML file, the .env
// file, the process environment.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
	envFile  string
}

// fileSettings is the on-disk shape. Tool timeouts are duration strings
// ("300s", "10m").
type fileSettings struct {
	Server      domain.ServerSettings      `toml:"server"`
	Tools       fileTools                  `toml:"tools"`
	Explorer    domain.ExplorerSettings    `toml:"explorer"`
	Embedding   domain.EmbeddingSettings   `toml:"embedding"`
	LLM         domain.LLMSettings         `toml:"llm"`
	VectorStore domain.VectorStoreSettings `toml:"vector_store"`
}

type fileTools struct {
	SlitherPath      string `toml:"slither_path"`
	ContainerRuntime string `toml:"container_runtime"`
	FuzzerImage      string `toml:"fuzzer_image"`
	StaticTimeout    string `toml:"static_timeout"`
	DynamicTimeout   string `toml:"dynamic_timeout"`
}

// NewSettingsStore creates a store for the settings file at path.
// If path is empty, defaults to ~/.chainaudit/config.toml. Environment
// entries are also read from .env in the working directory.
func NewSettingsStore(path string) (*SettingsStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, ".chainaudit", "config.toml")
	}
	return &SettingsStore{filePath: path, envFile: ".env"}, nil
}

// WithEnvFile sets the dotenv file. An empty name disables dotenv loading.
func (s *SettingsStore) WithEnvFile(name string) *SettingsStore {
	s.envFile = name
	return s
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// Load returns validated settings. A missing settings file or .env file
// is not an error.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return settings, fmt.Errorf("read settings: %w", err)
	default:
		if err := decode(data, &settings); err != nil {
			return settings, fmt.Errorf("parse %s: %w", s.filePath, err)
		}
	}

	dotenv := map[string]string{}
	if s.envFile != "" {
		dotenv, err = godotenv.Read(s.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return settings, fmt.Errorf("read %s: %w", s.envFile, err)
		}
	}
	applyEnv(&settings, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Save writes settings to the file, creating its directory.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(encode(settings))
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// Restricted permissions: the file may hold API keys.
	return os.WriteFile(s.filePath, data, 0600)
}

// decode overlays the TOML document on settings.
func decode(data []byte, settings *domain.AppSettings) error {
	f := encode(*settings)
	if err := toml.Unmarshal(data, &f); err != nil {
		return err
	}

	static, err := parseDuration("tools.static_timeout", f.Tools.StaticTimeout)
	if err != nil {
		return err
	}
	dynamic, err := parseDuration("tools.dynamic_timeout", f.Tools.DynamicTimeout)
	if err != nil {
		return err
	}

	*settings = domain.AppSettings{
		Server: f.Server,
		Tools: domain.ToolSettings{
			SlitherPath:      f.Tools.SlitherPath,
			ContainerRuntime: f.Tools.ContainerRuntime,
			FuzzerImage:      f.Tools.FuzzerImage,
			StaticTimeout:    static,
			DynamicTimeout:   dynamic,
		},
		Explorer:    f.Explorer,
		Embedding:   f.Embedding,
		LLM:         f.LLM,
		VectorStore: f.VectorStore,
	}
	return nil
}

func encode(settings domain.AppSettings) fileSettings {
	return fileSettings{
		Server: settings.Server,
		Tools: fileTools{
			SlitherPath:      settings.Tools.SlitherPath,
			ContainerRuntime: settings.Tools.ContainerRuntime,
			FuzzerImage:      settings.Tools.FuzzerImage,
			StaticTimeout:    settings.Tools.StaticTimeout.String(),
			DynamicTimeout:   settings.Tools.DynamicTimeout.String(),
		},
		Explorer:    settings.Explorer,
		Embedding:   settings.Embedding,
		LLM:         settings.LLM,
		VectorStore: settings.VectorStore,
	}
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// applyEnv overrides settings with non-empty environment values. Provider
// keys apply only to the section whose provider uses them.
func applyEnv(settings *domain.AppSettings, getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&settings.Server.ListenAddr, EnvListenAddr)
	set(&settings.Tools.SlitherPath, EnvSlitherPath)
	set(&settings.Tools.ContainerRuntime, EnvContainerRuntime)
	set(&settings.Explorer.APIKey, EnvEtherscanAPIKey)
	set(&settings.VectorStore.DataDir, EnvDataDir)
	set(&settings.VectorStore.URL, EnvSupabaseURL)
	set(&settings.VectorStore.APIKey, EnvSupabaseKey)
	if v := getenv(EnvVectorStore); v != "" {
		settings.VectorStore.Backend = domain.VectorStoreBackend(v)
	}

	switch settings.Embedding.Provider {
	case domain.AIProviderGemini:
		set(&settings.Embedding.APIKey, EnvGoogleAPIKey, EnvGeminiAPIKey)
	case domain.AIProviderOpenAI:
		set(&settings.Embedding.APIKey, EnvOpenAIAPIKey)
	}

	switch settings.LLM.Provider {
	case domain.AIProviderGemini:
		set(&settings.LLM.APIKey, EnvGoogleAPIKey, EnvGeminiAPIKey)
	case domain.AIProviderOpenAI:
		set(&settings.LLM.APIKey, EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		set(&settings.LLM.APIKey, EnvAnthropicAPIKey)
	case domain.AIProviderAzureOpenAI:
		set(&settings.LLM.APIKey, EnvAzureAPIKey)
		set(&settings.LLM.BaseURL, EnvAzureEndpoint)
	}
}
