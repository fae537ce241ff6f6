package driving

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// AuditService runs the ingest path: analyse contracts and index reports.
type AuditService interface {
	// Analyze acquires contract source, runs both analyzers and indexes the findings.
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisSummary, error)

	// Ingest indexes pre-computed analyzer reports. Either every report is
	// accepted or none is indexed.
	Ingest(ctx context.Context, reports []domain.ReportFile) (*domain.IngestSummary, error)
}
