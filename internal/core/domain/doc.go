// Package domain defines the core business entities for chainaudit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Finding: One normalised observation from an analyzer report
//   - AnalysisDocument: The findings produced for one contract or report
//   - EmbeddedChunk: A finding's rendered text plus its embedding vector
//   - ToolResult: The outcome of one analyzer invocation
//   - QueryContext: The state of one retrieval-augmented question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
