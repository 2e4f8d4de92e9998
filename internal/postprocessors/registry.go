package postprocessors

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// BuilderFunc constructs a stage from loosely typed settings, as decoded
// from TOML.
type BuilderFunc func(settings map[string]any) (driven.PostProcessor, error)

// Registry resolves stage names to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds name to build. Names can only be bound once.
func (r *Registry) Register(name string, build BuilderFunc) error {
	if name == "" || build == nil {
		return fmt.Errorf("stage registration needs a name and a builder: %w", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.builders[name]; dup {
		return fmt.Errorf("stage %q already registered: %w", name, domain.ErrInvalidInput)
	}
	r.builders[name] = build
	return nil
}

// Build constructs the stage registered as name.
func (r *Registry) Build(name string, settings map[string]any) (driven.PostProcessor, error) {
	r.mu.RLock()
	build, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("stage %q: %w", name, domain.ErrNotFound)
	}
	return build(settings)
}

// Names returns the registered stage names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
