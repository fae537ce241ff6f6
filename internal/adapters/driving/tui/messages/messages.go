// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// AskCompleted carries the answer to a submitted question.
type AskCompleted struct {
	Context *domain.QueryContext
	Err     error
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewAsk is the question, answer and findings view.
	ViewAsk ViewType = iota
	// ViewHelp lists the keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewAsk:
		return "ask"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}
