package file

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
	"github.com/ncdb-labs/ncdb-chat/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

//go:embed defaults/*.txt
var builtinPrompts embed.FS

// promptArgs is the number of %s verbs each named prompt must carry.
var promptArgs = map[string]int{
	driven.PromptAnswer: 2,
}

// PromptStore serves prompt templates from <dir>/<name>.txt, falling back
// to the built-in copy when the file is missing or malformed. The first
// miss seeds the directory with the built-in text so it can be edited.
type PromptStore struct {
	dir string

	mu    sync.Mutex
	cache map[string]string
}

// NewPromptStore creates a store over dir, "prompts" when empty. No I/O
// happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		dir = "prompts"
	}
	return &PromptStore{dir: dir, cache: map[string]string{}}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string { return s.dir }

// Load returns the template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}

	builtin, hasBuiltin := readBuiltin(name)
	path := filepath.Join(s.dir, name+".txt")

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		tmpl := strings.TrimSpace(string(data))
		if verr := checkTemplate(name, tmpl); verr != nil && hasBuiltin {
			logger.Warn("Ignoring %s: %v", path, verr)
			tmpl = builtin
		}
		s.cache[name] = tmpl
		return tmpl, nil
	case !errors.Is(err, fs.ErrNotExist):
		logger.Warn("Read prompt %s: %v", path, err)
	}

	if !hasBuiltin {
		return "", fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	s.seed(path, builtin)
	s.cache[name] = builtin
	return builtin, nil
}

// Reload drops cached templates so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = map[string]string{}
	s.mu.Unlock()
}

func (s *PromptStore) seed(path, content string) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		logger.Debug("Seed prompt dir: %v", err)
		return
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := f.WriteString(content + "\n"); err != nil {
		logger.Debug("Seed prompt %s: %v", path, err)
	}
}

func readBuiltin(name string) (string, bool) {
	data, err := builtinPrompts.ReadFile("defaults/" + name + ".txt")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// checkTemplate accepts only %s and %% verbs, exactly as many %s as the
// prompt is rendered with.
func checkTemplate(name, tmpl string) error {
	want, known := promptArgs[name]
	got := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return fmt.Errorf("trailing %%: %w", domain.ErrInvalidInput)
		}
		i++
		switch tmpl[i] {
		case 's':
			got++
		case '%':
		default:
			return fmt.Errorf("unsupported verb %%%c: %w", tmpl[i], domain.ErrInvalidInput)
		}
	}
	if known && got != want {
		return fmt.Errorf("want %d %%s placeholders, found %d: %w", want, got, domain.ErrInvalidInput)
	}
	return nil
}
