// Package echidna flattens Echidna fuzzing reports into findings.
//
// Two report shapes are in circulation and both are accepted:
//
//	legacy:  {"fails":   [{"property": "...", "trace": ["call", ...]}]}
//	current: {"results": [{"contract": "...", "test": "...", "status": "...", "error": "..."}]}
//
// The shape is decided per item by field presence, not per report, so a
// payload mixing both item kinds is flattened item by item.
package echidna

import (
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/normalisers/field"
)

// ToolName is the fuzzer name used in results and logs.
const ToolName = "echidna"

// VersionKey marks a report as produced by Echidna.
const VersionKey = "echidnaVersion"

// Normalise flattens the report's item list into one finding per item.
// The legacy "fails" list is used when non-empty, otherwise "results".
// Items carrying neither a property nor a test are skipped.
func Normalise(payload map[string]any) []domain.Finding {
	items := reportItems(payload)

	findings := make([]domain.Finding, 0, len(items))
	for _, item := range items {
		if f, ok := parseItem(item); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// Matches reports whether payload looks like an Echidna report.
func Matches(payload map[string]any) bool {
	if field.Has(payload, "fails") || field.Has(payload, VersionKey) {
		return true
	}
	_, ok := field.List(payload, "results")
	return ok
}

func reportItems(payload map[string]any) []map[string]any {
	if fails, ok := field.List(payload, "fails"); ok && len(fails) > 0 {
		return field.Objects(fails)
	}
	if results, ok := field.List(payload, "results"); ok {
		return field.Objects(results)
	}
	return nil
}

func parseItem(item map[string]any) (domain.Finding, bool) {
	switch {
	case field.Has(item, "property"):
		return domain.Finding{
			Tool:   domain.ToolDynamic,
			Schema: domain.SchemaFails,
			Test:   field.String(item, "property"),
			Trace:  field.Strings(item, "trace"),
		}, true
	case field.Has(item, "test"):
		return domain.Finding{
			Tool:     domain.ToolDynamic,
			Schema:   domain.SchemaResults,
			Contract: field.String(item, "contract"),
			Test:     field.String(item, "test"),
			Status:   field.String(item, "status"),
			Error:    field.String(item, "error"),
		}, true
	default:
		return domain.Finding{}, false
	}
}
