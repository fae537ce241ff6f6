package mcp

import (
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask answers questions from indexed findings.
	Ask driving.AskService

	// Audit analyses contracts and ingests reports. Optional: without it
	// only the ask tool is registered.
	Audit driving.AuditService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
