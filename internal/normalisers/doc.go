// Package normalisers turns analyzer reports into canonical findings.
//
// Each analyzer has its own subpackage that flattens one report family:
//
//   - slither: static reports keyed by results.detectors
//   - echidna: dynamic reports keyed by fails (legacy) or results (current)
//
// All normalisers are pure and total: absent or mistyped fields are read as
// empty strings, never reported as errors. This package adds report-shape
// detection for ingested files, where the tool is not known in advance.
package normalisers
