// Package slither flattens Slither static-analysis reports into findings.
package slither

import (
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/normalisers/field"
)

// ToolName is the analyzer name used in results and logs.
const ToolName = "slither"

// VersionKey marks a report as produced by Slither.
const VersionKey = "slitherVersion"

// Normalise flattens results.detectors into one finding per detector, in
// report order. Duplicates are kept. A payload without detectors yields
// no findings.
func Normalise(payload map[string]any) []domain.Finding {
	results, ok := field.Map(payload, "results")
	if !ok {
		return nil
	}
	detectors, ok := field.List(results, "detectors")
	if !ok {
		return nil
	}

	findings := make([]domain.Finding, 0, len(detectors))
	for _, det := range field.Objects(detectors) {
		findings = append(findings, domain.Finding{
			Tool:     domain.ToolStatic,
			Schema:   domain.SchemaDetectors,
			Severity: field.String(det, "impact"),
			Message:  field.String(det, "description"),
			Elements: elementNames(det),
		})
	}
	return findings
}

// Matches reports whether payload looks like a Slither report.
func Matches(payload map[string]any) bool {
	if field.Has(payload, VersionKey) {
		return true
	}
	results, ok := field.Map(payload, "results")
	return ok && field.Has(results, "detectors")
}

func elementNames(det map[string]any) []string {
	elements, ok := field.List(det, "elements")
	if !ok {
		return nil
	}
	objs := field.Objects(elements)
	names := make([]string, len(objs))
	for i, el := range objs {
		names[i] = field.String(el, "name")
	}
	return names
}
