package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/views/ask"
)

// App is the root Bubbletea model. It owns the ask view and a help overlay.
type App struct {
	ports  *Ports
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	askView     *ask.View
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI. topK is passed to every question; a non-positive
// value uses the service default.
func NewApp(ports *Ports, topK int) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	return &App{
		ports:       ports,
		styles:      s,
		keymap:      km,
		help:        h,
		askView:     ask.NewView(s, km, ports.Ask, topK),
		currentView: messages.ViewAsk,
	}, nil
}

// WithContext sets the context for questions asked from the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.askView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("chainaudit"),
		a.askView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.help.Width = msg.Width
		a.askView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.Quit) {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if key.Matches(msg, a.keymap.Help, a.keymap.Back) {
				a.currentView = messages.ViewAsk
			}
			return a, nil
		}
		// "?" is a normal character while typing a question.
		if !a.askView.InputFocused() && key.Matches(msg, a.keymap.Help) {
			a.currentView = messages.ViewHelp
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.askView, cmd = a.askView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return a.askView.View()
}

func (a *App) viewHelp() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Title.Render("Keybindings"),
		"",
		a.help.View(a.keymap),
		"",
		a.styles.Muted.Render("Findings are tagged STATIC (slither) or DYNAMIC (echidna)."),
		a.styles.Muted.Render("[esc] back"),
	)
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// AskView returns the ask view.
func (a *App) AskView() *ask.View {
	return a.askView
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
