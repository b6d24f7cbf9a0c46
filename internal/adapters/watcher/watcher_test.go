package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/watcher"
	"go.trai.ch/relay/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// recorder collects the batches delivered by a Watch call.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) onChange(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
}

func (r *recorder) saw(p string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.paths, p)
}

// startWatch runs Watch in the background and returns a function that stops it.
func startWatch(t *testing.T, w *watcher.Watcher, root string, rec *recorder) func() error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, root, rec.onChange)
	}()

	// Give fsnotify a moment to register the tree.
	time.Sleep(100 * time.Millisecond)

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Watch did not return after cancellation")
			return nil
		}
	}
}

func TestWatcher_Watch_ReportsChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o750))

	rec := &recorder{}
	stop := startWatch(t, watcher.NewWatcher(mockLogger, 20*time.Millisecond), root, rec)

	target := filepath.Join(root, "app", "main.ts")
	require.NoError(t, os.WriteFile(target, []byte("export {}"), 0o600))

	assert.Eventually(t, func() bool {
		return rec.saw(filepath.ToSlash(target))
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, stop())
}

func TestWatcher_Watch_NewDirectoryContents(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	staging := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "views"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "views", "list.ts"), []byte(""), 0o600))

	rec := &recorder{}
	stop := startWatch(t, watcher.NewWatcher(mockLogger, 20*time.Millisecond), root, rec)

	// Moving a populated directory in emits a single create event.
	require.NoError(t, os.Rename(filepath.Join(staging, "views"), filepath.Join(root, "views")))

	assert.Eventually(t, func() bool {
		return rec.saw(filepath.ToSlash(filepath.Join(root, "views", "list.ts")))
	}, 3*time.Second, 20*time.Millisecond)

	// Files created later in the new directory are watched too.
	later := filepath.Join(root, "views", "detail.ts")
	require.NoError(t, os.WriteFile(later, []byte(""), 0o600))

	assert.Eventually(t, func() bool {
		return rec.saw(filepath.ToSlash(later))
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, stop())
}

func TestWatcher_Watch_SkipsNodeModules(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o750))

	rec := &recorder{}
	stop := startWatch(t, watcher.NewWatcher(mockLogger, 20*time.Millisecond), root, rec)

	ignored := filepath.Join(root, "node_modules", "pkg", "index.js")
	require.NoError(t, os.WriteFile(ignored, []byte(""), 0o600))
	marker := filepath.Join(root, "marker.ts")
	require.NoError(t, os.WriteFile(marker, []byte(""), 0o600))

	assert.Eventually(t, func() bool {
		return rec.saw(filepath.ToSlash(marker))
	}, 3*time.Second, 20*time.Millisecond)
	assert.False(t, rec.saw(filepath.ToSlash(ignored)))

	require.NoError(t, stop())
}

func TestWatcher_Watch_MissingRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	w := watcher.NewWatcher(mockLogger, watcher.DefaultDebounceWindow)
	err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), func([]string) {})

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatcher_Watch_ReturnsNilOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := watcher.NewWatcher(mockLogger, watcher.DefaultDebounceWindow)
	err := w.Watch(ctx, t.TempDir(), func([]string) {
		t.Error("no changes expected")
	})

	assert.NoError(t, err)
}
