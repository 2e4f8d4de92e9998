package flat

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncdb-labs/ncdb-chat/internal/core/domain"
)

func TestWatcher_ReloadsOnRebuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vector_index")
	h := NewHandle(nil)

	w, err := NewWatcher(h, path)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	reloaded := make(chan *Index, 4)
	w.OnReload(func(idx *Index, err error) {
		if err == nil {
			reloaded <- idx
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	require.NoError(t, sampleIndex(t).Save(path))

	select {
	case idx := <-reloaded:
		assert.Equal(t, 5, idx.Len())
	case <-time.After(5 * time.Second):
		t.Fatal("index was not reloaded")
	}

	hits, err := h.Search(context.Background(), unit(0), 1)
	require.NoError(t, err)
	assert.Equal(t, "exact", hits[0].Chunk.ID)

	// A second rebuild replaces the live index
	next, err := New(2, "m")
	require.NoError(t, err)
	require.NoError(t, next.Add(domain.Chunk{ID: "fresh"}, unit(0)))
	require.NoError(t, next.Save(path))

	require.Eventually(t, func() bool {
		return h.Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(NewHandle(nil), filepath.Join(dir, "vector_index"))
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other"), Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "vector_index"), Op: fsnotify.Create}))
}
