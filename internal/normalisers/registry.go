package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// documentNamespace seeds the name-based document IDs.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://newcadillacdatabase.org/document"))

// Registry dispatches raw files to normalisers by extension. When several
// normalisers claim an extension the highest priority wins.
type Registry struct {
	mu     sync.RWMutex
	byExt  map[string][]driven.Normaliser
	sorted map[string]bool
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		byExt:  make(map[string][]driven.Normaliser),
		sorted: make(map[string]bool),
	}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		r.byExt[ext] = append(r.byExt[ext], n)
		r.sorted[ext] = false
	}
}

// SupportedExtensions returns all extensions that can be normalised, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Normalise transforms a raw file using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	n := r.lookup(strings.ToLower(raw.Extension))
	if n == nil {
		return nil, fmt.Errorf("%s: %w", raw.Extension, domain.ErrUnsupportedType)
	}
	return n.Normalise(ctx, raw)
}

func (r *Registry) lookup(ext string) driven.Normaliser {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates := r.byExt[ext]
	if len(candidates) == 0 {
		return nil
	}
	if !r.sorted[ext] {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Priority() > candidates[j].Priority()
		})
		r.sorted[ext] = true
	}
	return candidates[0]
}

// DocumentID derives a stable identifier for the record at sequence in
// sourceID.
func DocumentID(sourceID string, sequence int) string {
	return uuid.NewSHA1(documentNamespace, []byte(sourceID+"#"+strconv.Itoa(sequence))).String()
}
