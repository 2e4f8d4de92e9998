package status

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestBar_States(t *testing.T) {
	bar := NewBar(nil, nil)
	assert.Equal(t, StateReady, bar.State())
	assert.Contains(t, bar.View(), "Ready")

	bar.SetAsked(3)
	assert.Contains(t, bar.View(), "3 asked")

	bar.SetState(StateThinking)
	bar.SetSpinner("*")
	assert.Contains(t, bar.View(), "Thinking...")

	bar.SetState(StateError)
	bar.SetMessage("connection refused")
	assert.Contains(t, bar.View(), "Error: connection refused")

	bar.Clear()
	assert.Equal(t, StateReady, bar.State())
}

func TestBar_ShowsHints(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)

	view := bar.View()
	assert.Contains(t, view, "enter: ask")
	assert.Contains(t, view, "esc: quit")
}

func TestBar_FitsOnOneLine(t *testing.T) {
	for _, width := range []int{100, 120, 160} {
		bar := NewBar(nil, nil)
		bar.SetWidth(width)

		view := bar.View()
		assert.NotContains(t, view, "\n", "width %d", width)
		assert.Equal(t, width, lipgloss.Width(view), "width %d", width)
	}
}
