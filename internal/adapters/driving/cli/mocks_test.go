package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
)

type mockSettingsStore struct {
	mu       sync.Mutex
	settings domain.AppSettings
	saved    []domain.AppSettings
	path     string
	loadErr  error
}

func (m *mockSettingsStore) Load() (domain.AppSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, m.loadErr
}

func (m *mockSettingsStore) Save(s domain.AppSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, s)
	m.settings = s
	return nil
}

func (m *mockSettingsStore) Path() string { return m.path }

type mockAuditService struct {
	analyzeReq  domain.AnalyzeRequest
	analyzeResp *domain.AnalysisSummary
	ingested    []domain.ReportFile
	err         error
}

func (m *mockAuditService) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalysisSummary, error) {
	m.analyzeReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.analyzeResp, nil
}

func (m *mockAuditService) Ingest(_ context.Context, reports []domain.ReportFile) (*domain.IngestSummary, error) {
	m.ingested = append(m.ingested, reports...)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestSummary{Files: len(reports), ChunksInserted: 2 * len(reports)}, nil
}

type mockAskService struct {
	question string
	topK     int
	err      error
}

func (m *mockAskService) Ask(_ context.Context, question string, topK int) (*domain.QueryContext, error) {
	m.question = question
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return &domain.QueryContext{
		Question: question,
		TopK:     topK,
		Mode:     domain.RetrievalVector,
		Chunks:   []string{"Reentrancy in withdraw()"},
		Answer:   "Use checks-effects-interactions.",
	}, nil
}

// testEnv holds the fakes behind the injected bootstrap.
type testEnv struct {
	store    *mockSettingsStore
	audit    *mockAuditService
	ask      *mockAskService
	built    []domain.AppSettings
	closed   int
	checkErr error
	out      *bytes.Buffer
}

// setupTestEnv injects fakes and resets command state. Cleanup restores
// the previous bootstrap.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: &mockSettingsStore{settings: domain.DefaultAppSettings(), path: "/tmp/chainaudit-test/config.toml"},
		audit: &mockAuditService{analyzeResp: &domain.AnalysisSummary{DocID: "Vault", StaticFindings: 3, DynamicFindings: 1}},
		ask:   &mockAskService{},
		out:   new(bytes.Buffer),
	}

	old := bootstrap
	oldInput := settingsInput
	SetBootstrap(Bootstrap{
		OpenSettings: func(string) (driven.SettingsStore, error) { return env.store, nil },
		Build: func(_ context.Context, s domain.AppSettings) (*Runtime, error) {
			env.built = append(env.built, s)
			return &Runtime{
				Audit: env.audit,
				Ask:   env.ask,
				Close: func() error { env.closed++; return nil },
			}, nil
		},
		Check: func(context.Context, domain.AppSettings) error { return env.checkErr },
	})

	resetFlags(rootCmd)
	rootCmd.SetOut(env.out)
	rootCmd.SetErr(env.out)
	rootCmd.SetIn(strings.NewReader(""))

	t.Cleanup(func() {
		bootstrap = old
		settingsInput = oldInput
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})
	return env
}

// run executes the root command with args.
func (e *testEnv) run(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

// resetFlags restores every flag to its default so values do not leak
// between tests sharing the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	// cobra keeps the first context a subcommand sees.
	cmd.SetContext(nil)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
