package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
	"github.com/custodia-labs/chainaudit/internal/logger"
	"github.com/custodia-labs/chainaudit/internal/normalisers"
	"github.com/custodia-labs/chainaudit/internal/normalisers/echidna"
	"github.com/custodia-labs/chainaudit/internal/normalisers/slither"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// maxDiagnostic bounds tool diagnostics surfaced to callers.
const maxDiagnostic = 300

// AuditService runs the analyze and ingest pipelines.
type AuditService struct {
	acquirer *SourceAcquirer
	runner   *ToolRunner
	indexer  *Indexer
}

// NewAuditService creates an audit service.
func NewAuditService(acquirer *SourceAcquirer, runner *ToolRunner, indexer *Indexer) *AuditService {
	return &AuditService{
		acquirer: acquirer,
		runner:   runner,
		indexer:  indexer,
	}
}

// Analyze acquires the requested source, runs both analyzers on it and
// indexes the findings, static first. A failed static run aborts the
// request; a failed dynamic run contributes no findings.
func (s *AuditService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisSummary, error) {
	logger.Section("Analyze")

	src, err := s.acquirer.Acquire(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Cleanup(); cerr != nil {
			logger.Warn("remove %s: %v", src.Dir, cerr)
		}
	}()
	logger.Info("Analyzing %s (contract %s)", src.DocID, src.ContractName)

	static := s.runner.RunStatic(ctx, src.Path)
	if !static.OK() {
		return nil, domain.NewStageError(domain.PhaseStatic, static.Tool, domain.ErrAnalysisTool,
			errors.New(truncate(static.Error, maxDiagnostic)))
	}
	staticFindings := slither.Normalise(static.Payload)

	dynamic := s.runner.RunDynamic(ctx, src.Path, src.ContractName)
	dynamicFindings := echidna.Normalise(dynamic.Payload)
	logger.Debug("Findings: %d static, %d dynamic", len(staticFindings), len(dynamicFindings))

	doc := domain.AnalysisDocument{
		ID:       src.DocID,
		Findings: append(staticFindings, dynamicFindings...),
	}
	res, err := s.indexer.Index(ctx, doc.ID, doc.Chunks())
	if err != nil {
		return nil, err
	}

	summary := &domain.AnalysisSummary{
		DocID:           doc.ID,
		StaticFindings:  len(staticFindings),
		DynamicFindings: len(dynamicFindings),
		DegradedChunks:  res.Degraded,
	}
	if res.Degraded > 0 {
		logger.Error("%s: %d of %d findings stored without embeddings", doc.ID, res.Degraded, res.Inserted)
	}
	if !dynamic.OK() {
		summary.DynamicError = truncate(dynamic.Error, maxDiagnostic)
	}
	return summary, nil
}

// Ingest indexes pre-generated analyzer reports. Every report is parsed
// before anything is stored, so one unsupported file rejects the batch.
func (s *AuditService) Ingest(ctx context.Context, files []domain.ReportFile) (*domain.IngestSummary, error) {
	logger.Section("Ingest")

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one report is required", domain.ErrInvalidInput)
	}

	docs := make([]domain.AnalysisDocument, len(files))
	for i, f := range files {
		findings, err := normalisers.ParseReport(f.Filename, f.Data)
		if err != nil {
			return nil, domain.NewStageError(domain.PhaseParse, "", nil, err)
		}
		docs[i] = domain.AnalysisDocument{ID: reportDocID(f.Filename, i), Findings: findings}
		logger.Debug("%s: %d findings", f.Filename, len(findings))
	}

	summary := &domain.IngestSummary{Files: len(files)}
	for _, doc := range docs {
		res, err := s.indexer.Index(ctx, doc.ID, doc.Chunks())
		if err != nil {
			return nil, err
		}
		summary.ChunksInserted += res.Inserted
		summary.DegradedChunks += res.Degraded
	}
	if summary.DegradedChunks > 0 {
		logger.Error("%d of %d chunks stored without embeddings", summary.DegradedChunks, summary.ChunksInserted)
	}

	logger.Info("Ingested %d files, %d chunks", summary.Files, summary.ChunksInserted)
	return summary, nil
}

func reportDocID(filename string, index int) string {
	if stem := fileStem(strings.TrimSpace(filename)); stem != "" && stem != "." {
		return stem
	}
	return fmt.Sprintf("report-%d", index+1)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
