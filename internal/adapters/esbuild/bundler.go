package esbuild

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
)

var _ ports.Bundler = (*Bundler)(nil)

// Bundler bundles compiled output with esbuild.
type Bundler struct{}

// NewBundler creates a new Bundler.
func NewBundler() *Bundler {
	return &Bundler{}
}

// Bundle bundles the entry points of req.Config found in req.InputDir into req.OutDir.
func (b *Bundler) Bundle(ctx context.Context, req ports.BundleRequest) error {
	opts, err := LoadBundleOptions(req.Config)
	if err != nil {
		return err
	}

	buildOpts, err := opts.buildOptions(req.InputDir, req.OutDir)
	if err != nil {
		return err
	}

	return build(ctx, buildOpts, domain.ErrBundleFailed)
}
