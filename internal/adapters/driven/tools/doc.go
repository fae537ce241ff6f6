// Package tools holds the adapters that drive external analyzer binaries.
//
// Subpackages:
//   - exec: runs processes and captures their output
//   - slither: static analysis via the slither CLI
//   - echidna: property fuzzing via echidna inside a container
//
// The analyzer adapters never return errors. Every outcome, including a
// missing binary, is reported as a domain.ToolResult.
package tools

import "unicode/utf8"

// MaxDiagnostic bounds how much process output is kept in a ToolResult error.
const MaxDiagnostic = 300

// Truncate returns at most MaxDiagnostic bytes of s, ending on a rune boundary.
func Truncate(s string) string {
	if len(s) <= MaxDiagnostic {
		return s
	}
	n := MaxDiagnostic
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
