package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/components/input"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/components/status"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/components/transcript"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/keymap"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/messages"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/styles"
)

const greeting = "Hello! Ask me anything about Cadillac V16 cars."

// App is the chat application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	transcript *transcript.View
	input      *input.QuestionInput
	status     *status.Bar
	spinner    spinner.Model

	// waiting is true while a question is in flight; input is ignored.
	waiting bool
	asked   int

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Muted

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		transcript: transcript.New(s),
		input:      input.NewQuestionInput(s),
		status:     status.NewBar(s, km),
		spinner:    sp,
	}
	a.transcript.Append(messages.RoleAssistant, greeting)
	return a, nil
}

// WithContext sets the context used for questions.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ncdb - Cadillac V16 assistant"),
		a.input.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		a.waiting = true
		a.asked++
		a.transcript.Append(messages.RoleUser, msg.Question)
		a.status.SetState(status.StateThinking)
		a.status.SetAsked(a.asked)
		return a, tea.Batch(a.ask(msg.Question), a.spinner.Tick)

	case messages.AnswerReceived:
		a.waiting = false
		if msg.Err != nil {
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.status.Clear()
		a.transcript.Append(messages.RoleAssistant, msg.Answer)
		return a, nil

	case spinner.TickMsg:
		if !a.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.status.SetSpinner(a.spinner.View())
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Clear):
		a.transcript.Clear()
		a.status.Clear()
		return a, nil

	case keymap.Matches(key, a.keymap.Send):
		if a.waiting {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.input.Reset()
		return a, func() tea.Msg { return messages.QuestionSubmitted{Question: question} }
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask runs the question off the update loop.
func (a *App) ask(question string) tea.Cmd {
	asker := a.ports.Asker
	ctx := a.ctx
	return func() tea.Msg {
		answer, err := asker.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	title := a.styles.Title.Render("New Cadillac Database")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		a.transcript.View(),
		a.input.View(),
		a.status.View(),
	)
}

// SetDimensions lays out the components for the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// title, input (3 with border), status
	a.transcript.SetSize(width, height-5)
	a.input.SetWidth(width)
	a.status.SetWidth(width)
}

// Transcript returns the conversation so far.
func (a *App) Transcript() []transcript.Entry {
	return a.transcript.Entries()
}

// Waiting reports whether a question is in flight.
func (a *App) Waiting() bool {
	return a.waiting
}

// Run starts the chat program and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}
