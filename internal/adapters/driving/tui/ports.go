// Package tui provides an interactive terminal interface for asking
// questions about indexed audit findings.
// It is a driving adapter over the same ports as the CLI and HTTP API.
package tui

import (
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Ask answers questions from indexed findings.
	Ask driving.AskService
}

// NewPorts creates a Ports aggregate.
func NewPorts(ask driving.AskService) *Ports {
	return &Ports{Ask: ask}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
