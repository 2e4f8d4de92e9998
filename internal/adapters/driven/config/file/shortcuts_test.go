package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

func TestShortcutStore_ImplementsInterface(t *testing.T) {
	var _ driven.ShortcutStore = (*ShortcutStore)(nil)
}

func writeShortcuts(t *testing.T, entries []domain.Shortcut) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions_with_answers.json")
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestShortcutStore_Lookup(t *testing.T) {
	path := writeShortcuts(t, []domain.Shortcut{
		{Question: "Who built the V16?", Answer: "Cadillac."},
		{Question: "who built the v16?", Answer: "shadowed"},
	})
	store := NewShortcutStore(path)

	tests := []struct {
		name   string
		query  string
		answer string
		found  bool
	}{
		{"exact", "Who built the V16?", "Cadillac.", true},
		{"case insensitive", "WHO BUILT THE V16?", "Cadillac.", true},
		{"partial does not match", "Who built the V16", "", false},
		{"unknown", "How many were made?", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, ok := store.Lookup(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.answer, answer)
		})
	}
}

func TestShortcutStore_MissingFile(t *testing.T) {
	store := NewShortcutStore(filepath.Join(t.TempDir(), "missing.json"))

	assert.Empty(t, store.All())
	_, ok := store.Lookup("anything")
	assert.False(t, ok)
}

func TestShortcutStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewShortcutStore(path)

	assert.Empty(t, store.All())
}

func TestShortcutStore_Prepend(t *testing.T) {
	path := writeShortcuts(t, []domain.Shortcut{{Question: "old", Answer: "a"}})
	store := NewShortcutStore(path)

	err := store.Prepend(domain.Shortcut{Question: "new", Answer: "b"})
	require.NoError(t, err)

	assert.Equal(t, []domain.Shortcut{
		{Question: "new", Answer: "b"},
		{Question: "old", Answer: "a"},
	}, store.All())

	reloaded := NewShortcutStore(path)
	assert.Equal(t, store.All(), reloaded.All())
	answer, ok := reloaded.Lookup("NEW")
	assert.True(t, ok)
	assert.Equal(t, "b", answer)
}

func TestShortcutStore_Prepend_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "qa.json")
	store := NewShortcutStore(path)

	require.NoError(t, store.Prepend(domain.Shortcut{Question: "q", Answer: "a"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestShortcutStore_Prepend_RejectsEmpty(t *testing.T) {
	store := NewShortcutStore(filepath.Join(t.TempDir(), "qa.json"))

	err := store.Prepend(domain.Shortcut{Question: "q", Answer: "  "})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.All())
}
