package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driven"
	"github.com/custodia-labs/chainaudit/internal/logger"
)

// Default wall-clock ceilings for analyzer runs.
const (
	DefaultStaticTimeout  = 300 * time.Second
	DefaultDynamicTimeout = 600 * time.Second
)

// ToolRunner runs the static analyzer and the dynamic fuzzer, each under
// its own ceiling. It always returns a ToolResult; classifying a result as
// fatal is the caller's decision.
type ToolRunner struct {
	static         driven.StaticAnalyzer
	dynamic        driven.DynamicFuzzer
	staticTimeout  time.Duration
	dynamicTimeout time.Duration
}

// NewToolRunner creates a tool runner. Non-positive timeouts fall back to
// the defaults. Either tool may be nil, in which case its runs report
// ToolStatusUnavailable.
func NewToolRunner(
	static driven.StaticAnalyzer,
	dynamic driven.DynamicFuzzer,
	staticTimeout, dynamicTimeout time.Duration,
) *ToolRunner {
	if staticTimeout <= 0 {
		staticTimeout = DefaultStaticTimeout
	}
	if dynamicTimeout <= 0 {
		dynamicTimeout = DefaultDynamicTimeout
	}
	return &ToolRunner{
		static:         static,
		dynamic:        dynamic,
		staticTimeout:  staticTimeout,
		dynamicTimeout: dynamicTimeout,
	}
}

// RunStatic runs the static analyzer against the source file at path.
func (r *ToolRunner) RunStatic(ctx context.Context, path string) domain.ToolResult {
	if r.static == nil {
		return domain.ToolResult{
			Tool:     "static",
			Status:   domain.ToolStatusUnavailable,
			ExitCode: -1,
			Payload:  map[string]any{},
			Error:    "no static analyzer configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.staticTimeout)
	defer cancel()

	start := time.Now()
	result := r.static.Analyze(ctx, path)
	result = settle(ctx, result, r.static.Name(), r.staticTimeout)
	logger.Debug("%s finished in %s: status=%s exit=%d", result.Tool, time.Since(start).Round(time.Millisecond),
		result.Status, result.ExitCode)
	return result
}

// RunDynamic runs the fuzzer against the source file at path, targeting
// contract. An empty contract defaults to the file's base name without
// extension. A failed run degrades to an empty legacy-shaped payload so
// normalisation yields no findings.
func (r *ToolRunner) RunDynamic(ctx context.Context, path, contract string) domain.ToolResult {
	contract = ContractName(path, contract)

	if r.dynamic == nil {
		return degradeDynamic(domain.ToolResult{
			Tool:     "dynamic",
			Status:   domain.ToolStatusUnavailable,
			ExitCode: -1,
			Error:    "no fuzzer configured",
		})
	}

	ctx, cancel := context.WithTimeout(ctx, r.dynamicTimeout)
	defer cancel()

	start := time.Now()
	result := r.dynamic.Fuzz(ctx, filepath.Dir(path), filepath.Base(path), contract)
	result = settle(ctx, result, r.dynamic.Name(), r.dynamicTimeout)
	logger.Debug("%s finished in %s: status=%s contract=%s", result.Tool, time.Since(start).Round(time.Millisecond),
		result.Status, contract)

	if !result.OK() {
		logger.Warn("dynamic analysis degraded: %s", result.Error)
		return degradeDynamic(result)
	}
	return result
}

// ContractName returns explicit if set, otherwise the base name of path
// without its extension.
func ContractName(path, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	return fileStem(path)
}

// settle fills in the fields a tool adapter may leave unset and reclassifies
// failures caused by the ceiling as timeouts.
func settle(ctx context.Context, result domain.ToolResult, name string, ceiling time.Duration) domain.ToolResult {
	if result.Tool == "" {
		result.Tool = name
	}
	if result.Payload == nil {
		result.Payload = map[string]any{}
	}
	if result.Status == "" {
		result.Status = domain.ToolStatusOK
	}
	if !result.OK() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.Status = domain.ToolStatusTimeout
		result.Error = fmt.Sprintf("timed out after %s", ceiling)
	}
	return result
}

func degradeDynamic(result domain.ToolResult) domain.ToolResult {
	result.Payload = map[string]any{"fails": []any{}}
	if result.Error != "" {
		result.Payload["error"] = result.Error
	}
	return result
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
