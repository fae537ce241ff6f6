// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/chainaudit/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/chainaudit/internal/core/domain"
	"github.com/custodia-labs/chainaudit/internal/core/ports/driving"
)

// chromeHeight is the rows taken by the header, input, pane borders and status bar.
const chromeHeight = 12

// View shows the question input, the answer pane and the findings behind it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	answer    viewport.Model
	list      *list.FindingList
	statusbar *status.Bar

	askService driving.AskService
	ctx        context.Context
	topK       int

	last       *domain.QueryContext
	width      int
	height     int
	ready      bool
	asking     bool
	err        error
	focusInput bool // true while typing a question, false while reading an answer
}

// NewView creates the ask view. A non-positive topK uses the service default.
func NewView(s *styles.Styles, km *keymap.KeyMap, askService driving.AskService, topK int) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		answer:     viewport.New(76, 8),
		list:       list.NewFindingList(s),
		statusbar:  status.NewBar(s, km),
		askService: askService,
		ctx:        context.Background(),
		topK:       topK,
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context passed to the ask service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		return v, v.handleAskCompleted(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.asking {
		return v, nil
	}

	if v.focusInput {
		switch {
		case key.Matches(msg, v.keymap.Ask):
			return v, v.submit()
		case key.Matches(msg, v.keymap.Back):
			return v, tea.Quit
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.PageUp, v.keymap.PageDown):
		var cmd tea.Cmd
		v.answer, cmd = v.answer.Update(msg)
		return v, cmd
	case key.Matches(msg, v.keymap.NewQuestion, v.keymap.Back):
		return v, v.startQuestion()
	}
	return v, nil
}

// submit sends the typed question to the ask service.
func (v *View) submit() tea.Cmd {
	question := v.input.Value()
	if strings.TrimSpace(question) == "" {
		return nil
	}
	v.asking = true
	v.err = nil
	v.input.Blur()
	v.statusbar.SetState(status.StateAsking)
	return tea.Batch(v.statusbar.Tick, v.askCmd(question))
}

// askCmd runs the question off the UI goroutine.
func (v *View) askCmd(question string) tea.Cmd {
	svc, ctx, topK := v.askService, v.ctx, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.AskCompleted{Err: ErrNoAskService}
		}
		qc, err := svc.Ask(ctx, question, topK)
		return messages.AskCompleted{Context: qc, Err: err}
	}
}

func (v *View) handleAskCompleted(msg messages.AskCompleted) tea.Cmd {
	v.asking = false
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.focusInput = true
		return v.input.Focus()
	}

	if msg.Context == nil {
		msg.Context = &domain.QueryContext{Mode: domain.RetrievalNone}
	}
	v.last = msg.Context
	v.renderAnswer()
	v.answer.GotoTop()
	v.list.SetChunks(msg.Context.Chunks)
	v.statusbar.SetState(status.StateAnswered)
	v.statusbar.SetRetrieval(msg.Context.Mode, len(msg.Context.Chunks))
	v.focusInput = false
	return nil
}

// startQuestion clears the input and gives it focus.
func (v *View) startQuestion() tea.Cmd {
	v.focusInput = true
	v.err = nil
	v.input.SetValue("")
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage("")
	return v.input.Focus()
}

// renderAnswer wraps the last answer to the pane width.
func (v *View) renderAnswer() {
	if v.last == nil {
		v.answer.SetContent("")
		return
	}
	v.answer.SetContent(lipgloss.NewStyle().Width(v.answer.Width).Render(v.last.Answer))
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("chainaudit"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.last != nil {
		sections = append(sections,
			v.styles.Subtitle.Render("Answer"),
			v.styles.AnswerPane.Render(v.answer.View()),
			"",
			v.list.View(),
		)
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions splits the space between the answer pane and the findings list.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	body := max(height-chromeHeight, 6)
	v.input.SetWidth(width)
	v.answer.Width = max(width-4, 20)
	v.answer.Height = body / 2
	v.list.SetDimensions(width, body-body/2)
	v.statusbar.SetWidth(width)
	v.renderAnswer()
}

// Ready returns whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the text in the input.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion replaces the text in the input.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}

// Last returns the most recent answer, or nil.
func (v *View) Last() *domain.QueryContext {
	return v.last
}

// SelectedFinding returns the highlighted retrieved finding.
func (v *View) SelectedFinding() string {
	return v.list.SelectedChunk()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// InputFocused reports whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
