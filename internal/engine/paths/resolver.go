// Package paths derives directories and glob sets from the project configuration.
// Nothing in this package touches the file system.
package paths

import (
	"path"
	"path/filepath"

	"go.trai.ch/relay/internal/core/domain"
)

// Resolver computes source globs, resource globs and per-target output locations.
type Resolver struct {
	cfg domain.Config
}

// NewResolver creates a Resolver for cfg.
func NewResolver(cfg domain.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// SourceGlobs returns the patterns of files handed to the compiler.
func (r *Resolver) SourceGlobs() []string {
	src := filepath.ToSlash(r.cfg.SrcDir)
	globs := []string{
		path.Join(src, "**", "*.ts"),
		path.Join(src, "**", "*.tsx"),
	}
	if r.cfg.IncludePlainScripts {
		globs = append(globs,
			path.Join(src, "**", "*.js"),
			path.Join(src, "**", "*.jsx"),
		)
	}
	return globs
}

// SourceGlobSet returns the source globs as a GlobSet.
func (r *Resolver) SourceGlobSet() domain.GlobSet {
	return domain.GlobSet{Include: r.SourceGlobs()}
}

// ResourceGlobs returns every file under the source directory that is not a source.
func (r *Resolver) ResourceGlobs() domain.GlobSet {
	return domain.GlobSet{
		Include: []string{path.Join(filepath.ToSlash(r.cfg.SrcDir), "**", "*")},
		Exclude: r.SourceGlobs(),
	}
}

// CompiledDir returns the compiled-output directory of target t.
func (r *Resolver) CompiledDir(t domain.Target) string {
	return filepath.Join(r.cfg.CompiledRoot, t.String())
}

// CompiledGlob returns the pattern matching everything in CompiledDir(t).
func (r *Resolver) CompiledGlob(t domain.Target) string {
	return path.Join(filepath.ToSlash(r.CompiledDir(t)), "**", "*")
}

// CompiledGlobSet returns CompiledGlob(t) as a GlobSet.
func (r *Resolver) CompiledGlobSet(t domain.Target) domain.GlobSet {
	return domain.GlobSet{Include: []string{r.CompiledGlob(t)}}
}

// BundleDir returns the bundle-output directory of target t.
func (r *Resolver) BundleDir(t domain.Target) string {
	return filepath.Join(r.cfg.BundleRoot, t.String())
}

// BundlerConfig returns the per-target bundler configuration if one is declared,
// and the shared one otherwise.
func (r *Resolver) BundlerConfig(t domain.Target) domain.Locator {
	if l, ok := r.cfg.Bundlers[t]; ok && l != nil {
		return l
	}
	return r.cfg.Bundler
}

// SourceRoot returns the slash-separated path from CompiledDir(t) back to the
// source directory, used as the source map root.
func (r *Resolver) SourceRoot(t domain.Target) string {
	rel, err := filepath.Rel(r.CompiledDir(t), r.cfg.SrcDir)
	if err != nil {
		// One side is absolute and the other is not; point at the source directory itself.
		return filepath.ToSlash(r.cfg.SrcDir)
	}
	return filepath.ToSlash(rel)
}

// Matches reports whether p belongs to globs.
// Patterns that fail to compile match nothing.
func (r *Resolver) Matches(globs domain.GlobSet, p string) bool {
	ok, err := globs.Match(filepath.ToSlash(p))
	return err == nil && ok
}

// Filter returns the elements of paths that belong to globs, in order.
func (r *Resolver) Filter(globs domain.GlobSet, paths []string) []string {
	matched := make([]string, 0, len(paths))
	for _, p := range paths {
		if r.Matches(globs, p) {
			matched = append(matched, p)
		}
	}
	return matched
}
