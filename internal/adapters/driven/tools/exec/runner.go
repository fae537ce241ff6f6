// Package exec runs external commands for the analyzer adapters.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// waitDelay bounds how long output pipes are drained after the process is killed.
const waitDelay = 5 * time.Second

// Runner executes commands with os/exec.
type Runner struct{}

// NewRunner creates a command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes name with args and captures stdout and stderr separately.
// A non-zero exit status is reported through ExitCode, not as an error.
// Errors mean the process could not be started or was killed because ctx
// ended.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (driven.CommandOutput, error) {
	logger.Debug("Running command: %s %s", name, strings.Join(args, " "))

	cmd := osexec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	out := driven.CommandOutput{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}
	logger.Debug("Command %s exited %d (%d bytes stdout, %d bytes stderr)",
		name, out.ExitCode, len(out.Stdout), len(out.Stderr))

	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", name, ctxErr)
	}
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		return out, nil
	}
	return out, fmt.Errorf("%s: %w", name, err)
}
