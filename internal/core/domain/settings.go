package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google Gemini through Genkit.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAzureOpenAI is an Azure OpenAI deployment.
	AIProviderAzureOpenAI AIProvider = "azure"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAzureOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAzureOpenAI:
		return "Azure OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingProviders returns the providers that can embed text.
func EmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderGemini, AIProviderOpenAI, AIProviderOllama}
}

// LLMProviders returns the providers that can generate answers.
func LLMProviders() []AIProvider {
	return []AIProvider{AIProviderGemini, AIProviderOpenAI, AIProviderAzureOpenAI, AIProviderAnthropic, AIProviderOllama}
}

// DefaultEmbeddingModels returns the suggested model per embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "googleai/text-embedding-004",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
	}
}

// DefaultLLMModels returns the suggested model per LLM provider.
// For Azure the value is a deployment name.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:      "googleai/gemini-2.0-flash",
		AIProviderOpenAI:      "gpt-4o-mini",
		AIProviderAzureOpenAI: "gpt-4o-mini",
		AIProviderAnthropic:   "claude-3-5-sonnet-latest",
		AIProviderOllama:      "llama3.2",
	}
}

// VectorStoreBackend identifies where embedded chunks are persisted.
type VectorStoreBackend string

// Available vector store backends.
const (
	// VectorStoreSQLite is a local SQLite database (default).
	VectorStoreSQLite VectorStoreBackend = "sqlite"

	// VectorStoreBolt is a local bbolt key/value file.
	VectorStoreBolt VectorStoreBackend = "bolt"

	// VectorStoreSupabase is a hosted Postgres/pgvector table behind PostgREST.
	VectorStoreSupabase VectorStoreBackend = "supabase"

	// VectorStoreMemory keeps chunks in process memory.
	VectorStoreMemory VectorStoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorStoreBackend) IsValid() bool {
	switch b {
	case VectorStoreSQLite, VectorStoreBolt, VectorStoreSupabase, VectorStoreMemory:
		return true
	default:
		return false
	}
}

// ServerSettings configures the HTTP boundary.
type ServerSettings struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `toml:"listen_addr"`

	// AllowedOrigins is the CORS allow-list.
	AllowedOrigins []string `toml:"allowed_origins"`

	// MaxUploadBytes bounds multipart uploads.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
}

// ToolSettings configures the external analyzers.
type ToolSettings struct {
	// SlitherPath is the static analyzer binary.
	SlitherPath string `toml:"slither_path"`

	// ContainerRuntime is the container CLI used for the fuzzer (docker or podman).
	ContainerRuntime string `toml:"container_runtime"`

	// FuzzerImage is the image that provides echidna-test.
	FuzzerImage string `toml:"fuzzer_image"`

	// StaticTimeout is the static analyzer's wall-clock ceiling.
	// Read from the config file as a duration string by the file adapter.
	StaticTimeout time.Duration `toml:"-"`

	// DynamicTimeout is the fuzzer's wall-clock ceiling.
	DynamicTimeout time.Duration `toml:"-"`
}

// ExplorerSettings configures the blockchain-explorer API.
type ExplorerSettings struct {
	// BaseURL is the explorer API endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey is the explorer access key. Address lookups fail without it.
	APIKey string `toml:"api_key"`

	// RequestsPerSecond throttles explorer calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key for cloud providers.
	APIKey string `toml:"api_key"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic || e.Provider == AIProviderAzureOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider `toml:"provider"`

	// Model is the LLM model name (deployment name for Azure).
	Model string `toml:"model"`

	// BaseURL is the API endpoint (Ollama URL or Azure resource endpoint).
	BaseURL string `toml:"base_url"`

	// APIKey is the API key for cloud providers.
	APIKey string `toml:"api_key"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	if l.Provider == AIProviderAzureOpenAI && l.BaseURL == "" {
		return false
	}
	return true
}

// VectorStoreSettings configures chunk persistence.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorStoreBackend `toml:"backend"`

	// DataDir holds local store files (sqlite, bolt).
	DataDir string `toml:"data_dir"`

	// URL is the Supabase project URL.
	URL string `toml:"url"`

	// APIKey is the Supabase service key.
	APIKey string `toml:"api_key"`

	// Table is the chunk table name (Supabase).
	Table string `toml:"table"`

	// MatchFunction is the similarity-search RPC name (Supabase).
	MatchFunction string `toml:"match_function"`
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Server      ServerSettings      `toml:"server"`
	Tools       ToolSettings        `toml:"tools"`
	Explorer    ExplorerSettings    `toml:"explorer"`
	Embedding   EmbeddingSettings   `toml:"embedding"`
	LLM         LLMSettings         `toml:"llm"`
	VectorStore VectorStoreSettings `toml:"vector_store"`
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Server: ServerSettings{
			ListenAddr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:3001",
			},
			MaxUploadBytes: 10 << 20,
		},
		Tools: ToolSettings{
			SlitherPath:      "slither",
			ContainerRuntime: "docker",
			FuzzerImage:      "trailofbits/eth-security-toolbox",
			StaticTimeout:    300 * time.Second,
			DynamicTimeout:   600 * time.Second,
		},
		Explorer: ExplorerSettings{
			BaseURL:           "https://api.etherscan.io/api",
			RequestsPerSecond: 5,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    "googleai/text-embedding-004",
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    "googleai/gemini-2.0-flash",
		},
		VectorStore: VectorStoreSettings{
			Backend:       VectorStoreSQLite,
			Table:         "audit_vectors",
			MatchFunction: "match_documents",
		},
	}
}

// Validate checks settings that cannot be defaulted.
func (s AppSettings) Validate() error {
	if !s.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector store backend %q", ErrInvalidInput, s.VectorStore.Backend)
	}
	if s.VectorStore.Backend == VectorStoreSupabase && (s.VectorStore.URL == "" || s.VectorStore.APIKey == "") {
		return fmt.Errorf("%w: supabase backend requires url and api_key", ErrInvalidInput)
	}
	if s.Tools.StaticTimeout <= 0 || s.Tools.DynamicTimeout <= 0 {
		return fmt.Errorf("%w: tool timeouts must be positive", ErrInvalidInput)
	}
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	return nil
}
