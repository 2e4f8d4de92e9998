package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

// Ensure ShortcutStore implements the interface.
var _ driven.ShortcutStore = (*ShortcutStore)(nil)

// ShortcutStore keeps the curated question/answer list in a JSON file of
// the form [{"question": "...", "answer": "..."}].
type ShortcutStore struct {
	mu       sync.RWMutex
	filePath string
	entries  []domain.Shortcut
}

// NewShortcutStore loads the shortcut file. A missing or unreadable file
// yields an empty list so that the service can still start.
func NewShortcutStore(filePath string) *ShortcutStore {
	s := &ShortcutStore{filePath: filePath}
	if err := s.load(); err != nil {
		logger.Error("load shortcut file %s: %v", filePath, err)
	}
	return s
}

// Lookup returns the answer whose question equals q, ignoring case.
// The first matching entry wins.
func (s *ShortcutStore) Lookup(q string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if strings.EqualFold(e.Question, q) {
			return e.Answer, true
		}
	}
	return "", false
}

// Prepend adds a pair ahead of the existing entries and rewrites the file.
func (s *ShortcutStore) Prepend(sc domain.Shortcut) error {
	if strings.TrimSpace(sc.Question) == "" || strings.TrimSpace(sc.Answer) == "" {
		return fmt.Errorf("shortcut needs question and answer: %w", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]domain.Shortcut, 0, len(s.entries)+1)
	entries = append(entries, sc)
	entries = append(entries, s.entries...)

	if err := s.save(entries); err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// All returns a copy of the entries in lookup order.
func (s *ShortcutStore) All() []domain.Shortcut {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Shortcut, len(s.entries))
	copy(out, s.entries)
	return out
}

// Path returns the shortcut file path.
func (s *ShortcutStore) Path() string {
	return s.filePath
}

func (s *ShortcutStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var entries []domain.Shortcut
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse shortcuts: %w", err)
	}
	s.entries = entries
	return nil
}

// save writes entries to a temp file and renames it over the target (caller must hold lock).
func (s *ShortcutStore) save(entries []domain.Shortcut) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode shortcuts: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create shortcut directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".shortcuts-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write shortcuts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close shortcuts: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace shortcut file: %w", err)
	}
	return nil
}
