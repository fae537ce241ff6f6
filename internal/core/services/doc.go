// Package services implements the driving port interfaces.
// Services contain the core audit pipeline logic and orchestrate
// calls to driven ports (adapters): analyzers, the contract explorer,
// the embedding model, the vector store and the generative model.
//
// Services are pure Go with no CGO dependencies.
package services
