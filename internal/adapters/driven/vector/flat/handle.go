package flat

import (
	"context"
	"sync/atomic"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
	"github.com/ncdb-labs/ncdb-chat/internal/core/ports/driven"
)

// Ensure Handle implements the interface.
var _ driven.VectorIndex = (*Handle)(nil)

// Handle is a swappable reference to the current index. An empty Handle
// reports domain.ErrIndexUnavailable from Search.
type Handle struct {
	current atomic.Pointer[Index]
}

// NewHandle returns a handle holding idx, which may be nil.
func NewHandle(idx *Index) *Handle {
	h := &Handle{}
	if idx != nil {
		h.current.Store(idx)
	}
	return h
}

// Current returns the index in use, or nil.
func (h *Handle) Current() *Index {
	return h.current.Load()
}

// Swap installs idx and returns the previous index.
func (h *Handle) Swap(idx *Index) *Index {
	return h.current.Swap(idx)
}

// Reload loads the bundle at path and swaps it in. On error the current
// index stays in place.
func (h *Handle) Reload(path string) (*Index, error) {
	idx, err := Load(path)
	if err != nil {
		return nil, err
	}
	h.current.Store(idx)
	return idx, nil
}

// Search delegates to the current index.
func (h *Handle) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievalHit, error) {
	idx := h.current.Load()
	if idx == nil {
		return nil, domain.ErrIndexUnavailable
	}
	return idx.Search(ctx, query, k)
}

// Len returns the current index size, zero when none is loaded.
func (h *Handle) Len() int {
	if idx := h.current.Load(); idx != nil {
		return idx.Len()
	}
	return 0
}

// Dimensions returns the current index vector size, zero when none is loaded.
func (h *Handle) Dimensions() int {
	if idx := h.current.Load(); idx != nil {
		return idx.Dimensions()
	}
	return 0
}
