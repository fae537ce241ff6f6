package driven

import (
	"context"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// CommandOutput is the captured result of a finished process.
type CommandOutput struct {
	// Stdout is everything the process wrote to standard output.
	Stdout []byte

	// Stderr is everything the process wrote to standard error.
	Stderr []byte

	// ExitCode is the exit status; -1 if the process did not exit normally.
	ExitCode int
}

// CommandRunner executes external processes.
// A non-zero exit is reported through CommandOutput.ExitCode, not as an error;
// the error is reserved for processes that could not be started or were
// killed because ctx ended.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandOutput, error)
}

// StaticAnalyzer runs a source-level vulnerability detector.
// It never panics or returns an error: every failure becomes a ToolResult.
type StaticAnalyzer interface {
	// Name returns the tool name reported in results and errors.
	Name() string

	// Analyze runs the analyzer against the source file at path.
	Analyze(ctx context.Context, path string) domain.ToolResult
}

// DynamicFuzzer runs a property-based fuzzer in an isolated container.
// It never returns an error: every failure becomes a ToolResult with an
// empty "fails" payload.
type DynamicFuzzer interface {
	// Name returns the tool name reported in results and logs.
	Name() string

	// Fuzz runs the fuzzer against file inside dir, targeting contract.
	Fuzz(ctx context.Context, dir, file, contract string) domain.ToolResult
}
