package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Responses are consumed per call from script; when script is exhausted
// the fallback embedding or error is used.
type mockEmbeddingService struct {
	mu        sync.Mutex
	calls     []string
	script    []embedResponse
	embedding []float32
	embedErr  error
	failFor   map[string]error
}

type embedResponse struct {
	vec []float32
	err error
}

func newMockEmbedding() *mockEmbeddingService {
	return &mockEmbeddingService{embedding: unitVector(domain.EmbeddingDimensions)}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if err, ok := m.failFor[text]; ok {
		return nil, err
	}
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r.vec, r.err
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) Dimensions() int { return domain.EmbeddingDimensions }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockVectorStore implements driven.VectorStore for testing.
type mockVectorStore struct {
	mu        sync.Mutex
	inserted  [][]domain.EmbeddedChunk
	matches   []domain.ScoredChunk
	rows      []domain.EmbeddedChunk
	insertErr error
	matchErr  error
	listErr   error

	matchThreshold float64
	matchCount     int
	listLimit      int
}

func (m *mockVectorStore) Insert(_ context.Context, chunks []domain.EmbeddedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, chunks)
	return nil
}

func (m *mockVectorStore) Match(
	_ context.Context, _ []float32, threshold float64, count int,
) ([]domain.ScoredChunk, error) {
	m.matchThreshold = threshold
	m.matchCount = count
	if m.matchErr != nil {
		return nil, m.matchErr
	}
	return m.matches, nil
}

func (m *mockVectorStore) List(_ context.Context, limit int) ([]domain.EmbeddedChunk, error) {
	m.listLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit < len(m.rows) {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

func (m *mockVectorStore) Close() error { return nil }

func (m *mockVectorStore) all() []domain.EmbeddedChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EmbeddedChunk
	for _, batch := range m.inserted {
		out = append(out, batch...)
	}
	return out
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	prompts     []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompt  string
	loadErr error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.prompt, m.loadErr }

// mockStaticAnalyzer implements driven.StaticAnalyzer for testing.
type mockStaticAnalyzer struct {
	result   domain.ToolResult
	block    bool
	lastPath string
}

func (m *mockStaticAnalyzer) Name() string { return "slither" }

func (m *mockStaticAnalyzer) Analyze(ctx context.Context, path string) domain.ToolResult {
	m.lastPath = path
	if m.block {
		<-ctx.Done()
		return domain.ToolResult{Status: domain.ToolStatusError, ExitCode: -1, Error: ctx.Err().Error()}
	}
	return m.result
}

// mockDynamicFuzzer implements driven.DynamicFuzzer for testing.
type mockDynamicFuzzer struct {
	result       domain.ToolResult
	block        bool
	lastDir      string
	lastFile     string
	lastContract string
	sawSource    []byte
	readSource   func(dir, file string) []byte
}

func (m *mockDynamicFuzzer) Name() string { return "echidna" }

func (m *mockDynamicFuzzer) Fuzz(ctx context.Context, dir, file, contract string) domain.ToolResult {
	m.lastDir, m.lastFile, m.lastContract = dir, file, contract
	if m.readSource != nil {
		m.sawSource = m.readSource(dir, file)
	}
	if m.block {
		<-ctx.Done()
		return domain.ToolResult{Status: domain.ToolStatusError, ExitCode: -1, Error: ctx.Err().Error()}
	}
	return m.result
}

// mockExplorer implements driven.SourceExplorer for testing.
type mockExplorer struct {
	source string
	err    error
	calls  int
}

func (m *mockExplorer) Name() string { return "etherscan" }

func (m *mockExplorer) GetSourceCode(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.source, m.err
}

// recordingSleep records backoff durations without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func unitVector(n int) []float32 {
	v := make([]float32, n)
	v[0] = 1
	return v
}

var errTimeout = errors.New("504 Deadline Exceeded")

// Compile-time checks.
var (
	_ driven.EmbeddingService = (*mockEmbeddingService)(nil)
	_ driven.VectorStore      = (*mockVectorStore)(nil)
	_ driven.LLMService       = (*mockLLMService)(nil)
	_ driven.PromptStore      = (*mockPromptStore)(nil)
	_ driven.StaticAnalyzer   = (*mockStaticAnalyzer)(nil)
	_ driven.DynamicFuzzer    = (*mockDynamicFuzzer)(nil)
	_ driven.SourceExplorer   = (*mockExplorer)(nil)
)
