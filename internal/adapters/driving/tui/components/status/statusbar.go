// Package status provides the chat status bar.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/keymap"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/styles"
)

// State is what the status bar reports on its left side.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar displays chat state and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	spinner string
	asked   int
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
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	// Width includes the style's padding, so the gap is measured
	// against the content area only.
	inner := b.width - b.styles.StatusBar.GetHorizontalFrameSize()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render(strings.TrimSpace(b.spinner + " Thinking..."))
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateReady:
	}
	if b.asked > 0 {
		return b.styles.Muted.Render(fmt.Sprintf("%d asked", b.asked))
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
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

// SetMessage sets the error detail.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// SetSpinner sets the spinner frame shown while thinking.
func (b *Bar) SetSpinner(frame string) {
	b.spinner = frame
}

// SetAsked sets the number of questions asked this session.
func (b *Bar) SetAsked(n int) {
	b.asked = n
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
