package domain

import (
	"fmt"
	"strings"
)

// ToolKind identifies which class of analyzer produced a finding.
type ToolKind string

// Available tool kinds.
const (
	// ToolStatic is a source-level analyzer (Slither).
	ToolStatic ToolKind = "static"

	// ToolDynamic is a property-based fuzzer (Echidna).
	ToolDynamic ToolKind = "dynamic"
)

// String returns the string representation.
func (k ToolKind) String() string {
	return string(k)
}

// ReportSchema identifies the report shape a finding was parsed from.
type ReportSchema string

// Known report schemas.
const (
	// SchemaDetectors is the static report's results.detectors list.
	SchemaDetectors ReportSchema = "detectors"

	// SchemaFails is the legacy dynamic report keyed by "fails".
	SchemaFails ReportSchema = "fails"

	// SchemaResults is the newer dynamic report keyed by "results".
	SchemaResults ReportSchema = "results"
)

// traceSeparator joins call-sequence steps in rendered dynamic findings.
const traceSeparator = " -> "

// Finding is one normalised security observation.
// Static and dynamic findings share this canonical shape; which fields are
// populated depends on Tool. Findings are values and are never mutated
// after the normaliser returns them.
type Finding struct {
	// Tool is the analyzer class that produced the finding.
	Tool ToolKind

	// Schema is the report shape the finding was read from.
	// It only affects rendering.
	Schema ReportSchema

	// Severity is the tool-specific impact label (static only).
	Severity string

	// Message is the human-readable description (static only).
	Message string

	// Elements are the implicated code elements, in report order (static only).
	Elements []string

	// Contract is the contract under test (dynamic only).
	Contract string

	// Test is the violated property or test name (dynamic only).
	Test string

	// Status is the fuzzer's verdict for the test (dynamic only).
	Status string

	// Error is the fuzzer's failure message (dynamic only).
	Error string

	// Trace is the call sequence that triggered the failure (dynamic only).
	Trace []string
}

// Render returns the chunk text for the finding.
func (f Finding) Render() string {
	switch f.Tool {
	case ToolStatic:
		return fmt.Sprintf("[STATIC] severity:%s | %s | elements:%s",
			f.Severity, f.Message, strings.Join(f.Elements, ", "))
	case ToolDynamic:
		if f.Schema == SchemaFails {
			return fmt.Sprintf("[DYNAMIC:fails] property:%s | trace:%s",
				f.Test, strings.Join(f.Trace, traceSeparator))
		}
		return fmt.Sprintf("[DYNAMIC:results] contract:%s | test:%s | status:%s | error:%s",
			f.Contract, f.Test, f.Status, f.Error)
	default:
		return f.Message
	}
}

// RenderFindings renders findings in order.
func RenderFindings(findings []Finding) []string {
	out := make([]string, len(findings))
	for i := range findings {
		out[i] = findings[i].Render()
	}
	return out
}
