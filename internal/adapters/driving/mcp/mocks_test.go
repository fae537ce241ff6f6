package mcp

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	result *domain.QueryContext
	err    error
}

func (m *mockAskService) Ask(_ context.Context, _ string, _ int) (*domain.QueryContext, error) {
	return m.result, m.err
}

// mockAuditService is a mock implementation of driving.AuditService.
type mockAuditService struct {
	analyzeReq domain.AnalyzeRequest
	reports    []domain.ReportFile
	summary    *domain.AnalysisSummary
	ingest     *domain.IngestSummary
	err        error
}

func (m *mockAuditService) Analyze(_ context.Context, req domain.AnalyzeRequest) (*domain.AnalysisSummary, error) {
	m.analyzeReq = req
	return m.summary, m.err
}

func (m *mockAuditService) Ingest(_ context.Context, reports []domain.ReportFile) (*domain.IngestSummary, error) {
	m.reports = reports
	return m.ingest, m.err
}
