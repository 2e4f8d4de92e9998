// Package transcript renders the scrolling conversation history.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/messages"
	"github.com/ncdb-labs/ncdb-chat/internal/adapters/driving/tui/styles"
)

// Entry is one line of the conversation.
type Entry struct {
	Role messages.Role
	Text string
}

// View is a viewport over the conversation entries.
type View struct {
	viewport viewport.Model
	styles   *styles.Styles
	entries  []Entry
}

// New creates an empty transcript.
func New(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		viewport: viewport.New(80, 20),
		styles:   s,
	}
}

// Append adds an entry and scrolls to the bottom.
func (v *View) Append(role messages.Role, text string) {
	v.entries = append(v.entries, Entry{Role: role, Text: text})
	v.refresh()
	v.viewport.GotoBottom()
}

// Entries returns the conversation so far.
func (v *View) Entries() []Entry {
	return v.entries
}

// Clear removes all entries.
func (v *View) Clear() {
	v.entries = nil
	v.refresh()
}

// SetSize resizes the viewport and re-wraps the entries.
func (v *View) SetSize(width, height int) {
	if width < 10 {
		width = 10
	}
	if height < 1 {
		height = 1
	}
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

// Update forwards scrolling keys to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the visible part of the transcript.
func (v *View) View() string {
	return v.viewport.View()
}

func (v *View) refresh() {
	body := v.styles.Message.Width(v.viewport.Width - 2)

	var sb strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		label := v.styles.AssistantLabel
		if e.Role == messages.RoleUser {
			label = v.styles.UserLabel
		}
		sb.WriteString(label.Render(e.Role.String()))
		sb.WriteString("\n")
		sb.WriteString(body.Render(e.Text))
		sb.WriteString("\n")
	}
	v.viewport.SetContent(sb.String())
}
