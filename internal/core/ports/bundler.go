package ports

import (
	"context"

	"go.trai.ch/relay/internal/core/domain"
)

// BundleRequest describes one bundling pass.
type BundleRequest struct {
	// InputDir holds the compiled files; bundle entry points are relative to it.
	InputDir string
	// OutDir receives the bundle.
	OutDir string
	// Config is the effective bundler configuration for the target.
	Config domain.Locator
}

// Bundler bundles compiled output in-process.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	Bundle(ctx context.Context, req BundleRequest) error
}
