// Package echidna runs the Echidna fuzzer inside a container.
package echidna

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/custodia-labs/chainaudit/internal/adapters/driven/tools"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	echidnanorm "github.com/custodia-labs/chainaudit/internal/normalisers/echidna"
)

// Ensure Fuzzer implements the interface.
var _ driven.DynamicFuzzer = (*Fuzzer)(nil)

// Defaults for the container invocation.
const (
	DefaultRuntime = "docker"
	DefaultImage   = "trailofbits/eth-security-toolbox"

	// mountPoint is where the source directory appears in the container.
	mountPoint = "/src"
)

// Fuzzer invokes echidna-test in a throwaway container with the source
// directory mounted read-only.
type Fuzzer struct {
	runner  driven.CommandRunner
	runtime string
	image   string
}

// NewFuzzer creates a fuzzer. Empty runtime or image use the defaults.
func NewFuzzer(runner driven.CommandRunner, runtime, image string) *Fuzzer {
	if runtime == "" {
		runtime = DefaultRuntime
	}
	if image == "" {
		image = DefaultImage
	}
	return &Fuzzer{runner: runner, runtime: runtime, image: image}
}

// Name returns the tool name.
func (f *Fuzzer) Name() string {
	return echidnanorm.ToolName
}

// Args returns the container runtime arguments for one run.
func (f *Fuzzer) Args(dir, file, contract string) []string {
	return []string{
		"run", "--rm",
		"-v", dir + ":" + mountPoint + ":ro",
		f.image,
		"echidna-test", path.Join(mountPoint, file),
		"--contract", contract,
		"--format", "json",
	}
}

// Fuzz runs echidna against file in dir. The fuzzer's exit status is not
// interpreted: a run with failing properties exits non-zero yet still
// prints its report.
func (f *Fuzzer) Fuzz(ctx context.Context, dir, file, contract string) domain.ToolResult {
	result := domain.ToolResult{Tool: f.Name(), Payload: map[string]any{}}

	out, err := f.runner.Run(ctx, f.runtime, f.Args(dir, file, contract)...)
	result.ExitCode = out.ExitCode
	if err != nil {
		result.Status = domain.ToolStatusUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			result.Status = domain.ToolStatusTimeout
		}
		result.Error = tools.Truncate(err.Error())
		return result
	}

	if len(bytes.TrimSpace(out.Stdout)) == 0 {
		result.Status = domain.ToolStatusOK
		return result
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Stdout, &payload); err != nil {
		result.Status = domain.ToolStatusError
		result.Error = tools.Truncate(fmt.Sprintf("invalid JSON output: %v: %s", err, bytes.TrimSpace(out.Stderr)))
		return result
	}
	if payload != nil {
		result.Payload = payload
	}
	result.Status = domain.ToolStatusOK
	return result
}
