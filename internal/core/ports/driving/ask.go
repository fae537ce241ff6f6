package driving

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// AskService answers security questions from indexed findings.
type AskService interface {
	// Ask retrieves findings relevant to question and generates an answer.
	// topK <= 0 selects domain.DefaultTopK.
	Ask(ctx context.Context, question string, topK int) (*domain.QueryContext, error)
}
