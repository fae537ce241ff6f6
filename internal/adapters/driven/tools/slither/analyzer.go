// Package slither runs the Slither static analyzer.
package slither

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/tools"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	slithernorm "github.com/custodia-labs/chainaudit/internal/normalisers/slither"
)

// Ensure Analyzer implements the interface.
var _ driven.StaticAnalyzer = (*Analyzer)(nil)

// DefaultBinary is the slither executable looked up on PATH.
const DefaultBinary = "slither"

// Analyzer invokes slither with JSON output on stdout.
type Analyzer struct {
	runner driven.CommandRunner
	binary string
}

// NewAnalyzer creates an analyzer. An empty binary means DefaultBinary.
func NewAnalyzer(runner driven.CommandRunner, binary string) *Analyzer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Analyzer{runner: runner, binary: binary}
}

// Name returns the tool name.
func (a *Analyzer) Name() string {
	return slithernorm.ToolName
}

// Analyze runs `slither <path> --json -`. A non-zero exit status is an
// error whose diagnostic is the start of stderr. Empty stdout is read as
// an empty report.
func (a *Analyzer) Analyze(ctx context.Context, path string) domain.ToolResult {
	result := domain.ToolResult{Tool: a.Name(), Payload: map[string]any{}}

	out, err := a.runner.Run(ctx, a.binary, path, "--json", "-")
	result.ExitCode = out.ExitCode
	if err != nil {
		result.Status = domain.ToolStatusUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			result.Status = domain.ToolStatusTimeout
		}
		result.Error = tools.Truncate(err.Error())
		return result
	}

	if out.ExitCode != 0 {
		result.Status = domain.ToolStatusError
		result.Error = diagnostic(out)
		return result
	}

	payload, err := decode(out.Stdout)
	if err != nil {
		result.Status = domain.ToolStatusError
		result.Error = tools.Truncate(err.Error())
		return result
	}

	result.Status = domain.ToolStatusOK
	result.Payload = payload
	return result
}

func diagnostic(out driven.CommandOutput) string {
	if msg := bytes.TrimSpace(out.Stderr); len(msg) > 0 {
		return tools.Truncate(string(msg))
	}
	return fmt.Sprintf("exit status %d", out.ExitCode)
}

func decode(stdout []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(stdout)) == 0 {
		return map[string]any{}, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(stdout, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON output: %w", err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}
