package httpapi

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

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

type mockAskService struct {
	question string
	topK     int
	answer   string
	err      error
}

func (m *mockAskService) Ask(_ context.Context, question string, topK int) (*domain.QueryContext, error) {
	m.question = question
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	return &domain.QueryContext{Question: question, TopK: topK, Mode: domain.RetrievalVector, Answer: m.answer}, nil
}
