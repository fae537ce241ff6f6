// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CommandRunner: Runs external processes (analyzers, container runtime)
//   - StaticAnalyzer: Produces the static report for a source file
//   - DynamicFuzzer: Produces the dynamic report for a source file
//   - VectorStore: Persists and retrieves embedded chunks
//   - LLMService: Generates answers. Without it, ask is unavailable.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, every chunk is stored with the zero
//     vector and questions fall back to plain enumeration.
//   - SourceExplorer: Without it, address-based analysis is rejected.
//   - PromptStore: Without it, built-in prompt templates are used.
//   - SettingsStore: Used by the CLI to load and persist configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
