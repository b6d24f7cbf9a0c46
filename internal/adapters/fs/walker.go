// Package fs implements the file operations behind the resource, compile and bundle tasks.
package fs

import (
	"errors"
	iofs "io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// vcsDirs are never descended into.
var vcsDirs = []string{".git", ".jj", ".hg", ".svn"}

// Walker yields the regular files below a directory.
type Walker struct {
	skip []string
}

// NewWalker creates a Walker that also skips directories whose base name matches one of skip.
func NewWalker(skip ...string) *Walker {
	return &Walker{skip: append(slices.Clone(vcsDirs), skip...)}
}

// WalkFiles yields every file under root as root-joined paths.
// A root that does not exist yields nothing. Walk errors stop the
// iteration and are reported through the returned function.
func (w *Walker) WalkFiles(root string) (iter.Seq[string], func() error) {
	var walkErr error
	seq := func(yield func(string) bool) {
		err := filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
			if err != nil {
				if p == root && errors.Is(err, iofs.ErrNotExist) {
					return filepath.SkipAll
				}
				return err
			}

			if d.IsDir() {
				if p != root && w.skipped(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(p) {
				return filepath.SkipAll
			}
			return nil
		})
		walkErr = err
	}
	return seq, func() error { return walkErr }
}

func (w *Walker) skipped(name string) bool {
	for _, pattern := range w.skip {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
