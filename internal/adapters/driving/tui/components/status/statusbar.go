// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// State represents what the view is doing.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays progress, the retrieval tier and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	state   State
	message string
	mode    domain.RetrievalMode
	count   int
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Tick starts the spinner animation.
func (b *Bar) Tick() tea.Msg {
	return b.spinner.Tick()
}

// Update advances the spinner while a question is in flight.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || b.state != StateAsking {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateAsking:
		return b.spinner.View() + " " + b.styles.Muted.Render("Retrieving findings and generating answer...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateAnswered:
		return b.styles.Normal.Render(b.describeRetrieval())
	case StateReady:
	}
	return b.styles.Muted.Render("Ready")
}

// describeRetrieval names the tier that supplied the context.
func (b *Bar) describeRetrieval() string {
	switch b.mode {
	case domain.RetrievalVector:
		return fmt.Sprintf("%d similar findings", b.count)
	case domain.RetrievalEnumeration:
		return fmt.Sprintf("%d recent findings (no close match)", b.count)
	case domain.RetrievalNone:
		return "No indexed findings"
	default:
		return fmt.Sprintf("%d findings", b.count)
	}
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	if b.state == StateAnswered {
		bindings = b.keymap.AnsweredHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the error message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetRetrieval records how the last answer's context was retrieved.
func (b *Bar) SetRetrieval(mode domain.RetrievalMode, count int) {
	b.mode = mode
	b.count = count
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.mode = ""
	b.count = 0
}
