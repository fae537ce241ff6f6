package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// Each fatal category of the audit pipeline has one sentinel; callers
// classify failures with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Rejected before any external call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAnalysisTool indicates the static analyzer produced no usable report.
	ErrAnalysisTool = errors.New("analysis tool failed")

	// ErrSourceFetch indicates contract source could not be fetched from the explorer.
	ErrSourceFetch = errors.New("source fetch failed")

	// ErrUnsupportedFormat indicates an ingested report matches no known schema.
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// ErrStorage indicates the vector store rejected a write.
	ErrStorage = errors.New("storage failed")

	// ErrGeneration indicates the generative model failed to answer.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingTimeout is returned by embedding adapters for timeout-class
	// failures (deadline exceeded, gateway timeout). It is retried, never surfaced.
	ErrEmbeddingTimeout = errors.New("embedding timed out")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
)

// Pipeline phases reported in StageError.
const (
	PhaseAcquire  = "acquire"
	PhaseStatic   = "static-analysis"
	PhaseDynamic  = "dynamic-analysis"
	PhaseParse    = "parse"
	PhaseIndex    = "index"
	PhaseRetrieve = "retrieve"
	PhaseGenerate = "generate"
)

// StageError is a fatal pipeline failure annotated with where it happened.
// It unwraps to both its category sentinel (Kind) and the underlying cause,
// so errors.Is(err, ErrStorage) and errors.Is(err, cause) both hold.
type StageError struct {
	// Phase is the pipeline phase that failed (see Phase* constants).
	Phase string

	// Tool names the external collaborator involved, if any.
	Tool string

	// Kind is one of the category sentinels above.
	Kind error

	// Err is the underlying cause. May be nil.
	Err error
}

// NewStageError creates a StageError.
func NewStageError(phase, tool string, kind, err error) *StageError {
	return &StageError{Phase: phase, Tool: tool, Kind: kind, Err: err}
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Phase)
	if e.Tool != "" {
		fmt.Fprintf(&b, " (%s)", e.Tool)
	}
	if e.Kind != nil {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the category and the cause.
func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
