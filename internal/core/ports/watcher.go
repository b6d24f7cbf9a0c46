package ports

import "context"

// Watcher observes a directory tree.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Watch watches root recursively and calls onChange with the slash-separated
	// paths changed during each debounce window.
	// It blocks until ctx is done and returns nil then; it returns an error if
	// watching cannot start.
	Watch(ctx context.Context, root string, onChange func(paths []string)) error
}
