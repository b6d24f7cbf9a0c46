package tasks

import (
	"context"
	"sync"

	"go.trai.ch/relay/internal/core/domain"
)

// watch runs pass after every batch of changes under root that belongs to globs.
// Passes never overlap. A failing pass is logged and watching continues.
// It blocks until ctx is done.
func (f *Factory) watch(
	ctx context.Context,
	root string,
	globs domain.GlobSet,
	verbose bool,
	pass func(context.Context) error,
) error {
	var mu sync.Mutex

	return f.watcher.Watch(ctx, root, func(changed []string) {
		matched := f.paths.Filter(globs, changed)
		if len(matched) == 0 {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		if verbose {
			for _, p := range matched {
				f.logger.Info("changed: " + p)
			}
		}

		if err := pass(ctx); err != nil {
			f.logger.Error(err)
		}
	})
}
