// Package watcher implements recursive file system watching for the watch pipelines.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultDebounceWindow is the default time window for debouncing file events.
const DefaultDebounceWindow = 50 * time.Millisecond

// skipDirectories are directories that are never watched.
var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	"node_modules": true,
}

// Watcher implements ports.Watcher using fsnotify.
// Every Watch call owns its own fsnotify instance, so several trees can be
// watched at once.
type Watcher struct {
	logger ports.Logger
	window time.Duration
}

// NewWatcher creates a Watcher that batches events arriving within window.
func NewWatcher(logger ports.Logger, window time.Duration) *Watcher {
	return &Watcher{logger: logger, window: window}
}

// Watch watches root recursively until ctx is done.
func (w *Watcher) Watch(ctx context.Context, root string, onChange func(paths []string)) error {
	info, err := os.Stat(root)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", root)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("watch root is not a directory"), "path", root)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}
	defer fsWatcher.Close() //nolint:errcheck // Closed on shutdown

	for dir := range directories(root) {
		if err := fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan []string)
	debouncer := NewDebouncer(w.window, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	var wg sync.WaitGroup
	wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case paths := <-batches:
				onChange(paths)
			}
		}
	})

	s := &session{watcher: w, fsWatcher: fsWatcher, debouncer: debouncer}
	s.run(ctx)

	cancel()
	wg.Wait()
	return nil
}

// session processes the raw events of one Watch call.
type session struct {
	watcher   *Watcher
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
}

func (s *session) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			s.handle(event)
		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			s.watcher.logger.Warn("file watcher error: " + err.Error())
		}
	}
}

func (s *session) handle(event fsnotify.Event) {
	if !relevant(event) {
		return
	}

	s.debouncer.Add(filepath.ToSlash(event.Name))

	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() || skipDirectories[info.Name()] {
		return
	}

	// A directory that appears with content produces no events for the files
	// inside it, so they are reported here.
	for dir := range directories(event.Name) {
		if err := s.fsWatcher.Add(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.watcher.logger.Warn("failed to watch " + dir + ": " + err.Error())
		}
	}
	_ = filepath.WalkDir(event.Name, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Skip entries that vanished mid-walk
		}
		if d.IsDir() && skipDirectories[d.Name()] {
			return fs.SkipDir
		}
		if !d.IsDir() {
			s.debouncer.Add(filepath.ToSlash(p))
		}
		return nil
	})
}

// relevant reports whether event changes file content or the set of files.
func relevant(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) ||
		event.Has(fsnotify.Rename)
}

// directories yields root and every directory below it that is not skipped.
func directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Continue walking even if there's an error accessing a directory.
				return nil //nolint:nilerr // This is intentional - we want to skip problematic directories
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
