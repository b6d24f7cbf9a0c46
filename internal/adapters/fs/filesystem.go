package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct {
	walker *Walker
	hasher *Hasher
}

// NewFileSystem creates a FileSystem.
func NewFileSystem(walker *Walker, hasher *Hasher) *FileSystem {
	return &FileSystem{walker: walker, hasher: hasher}
}

// Expand walks the roots of globs and returns the files the set matches.
func (f *FileSystem) Expand(globs domain.GlobSet) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, root := range globs.Roots() {
		seq, walkErr := f.walker.WalkFiles(filepath.FromSlash(root))
		for p := range seq {
			slashed := filepath.ToSlash(p)
			matched, err := globs.Match(slashed)
			if err != nil {
				return nil, err
			}
			if !matched {
				continue
			}
			if _, ok := seen[slashed]; ok {
				continue
			}
			seen[slashed] = struct{}{}
			files = append(files, slashed)
		}
		if err := walkErr(); err != nil {
			return nil, failure(domain.ErrGlobFailed, err, root)
		}
	}

	slices.Sort(files)
	return files, nil
}

// Copy copies each file to destDir, keeping its path relative to baseDir.
// Files whose destination already has identical content are not rewritten.
func (f *FileSystem) Copy(files []string, baseDir, destDir string) error {
	for _, file := range files {
		src := filepath.FromSlash(file)
		rel, err := filepath.Rel(filepath.FromSlash(baseDir), src)
		if err != nil {
			return failure(domain.ErrCopyFailed, err, file)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return failure(domain.ErrCopyFailed, fmt.Errorf("%s is outside %s", file, baseDir), file)
		}

		dest := filepath.Join(filepath.FromSlash(destDir), rel)
		if f.hasher.SameContent(src, dest) {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			return failure(domain.ErrCopyFailed, err, file)
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return err
	}

	in, err := os.Open(src) //nolint:gosec // Path comes from glob expansion
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only handle

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm()) //nolint:gosec // Destination is under the output root
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CleanStale removes the files under dir that have no counterpart under keepDir.
// A missing dir is left alone.
func (f *FileSystem) CleanStale(keepDir, dir string) error {
	var stale []string

	seq, walkErr := f.walker.WalkFiles(dir)
	for p := range seq {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return failure(domain.ErrCleanFailed, err, p)
		}
		_, err = os.Lstat(filepath.Join(keepDir, rel))
		switch {
		case err == nil:
		case errors.Is(err, iofs.ErrNotExist):
			stale = append(stale, p)
		default:
			return failure(domain.ErrCleanFailed, err, p)
		}
	}
	if err := walkErr(); err != nil {
		return failure(domain.ErrCleanFailed, err, dir)
	}

	for _, p := range stale {
		if err := os.Remove(p); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return failure(domain.ErrCleanFailed, err, p)
		}
	}
	return nil
}

// DirExists reports whether path is an existing directory.
func (f *FileSystem) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, failure(domain.ErrDirInspectFailed, err, path)
	}
	return info.IsDir(), nil
}

// MkdirAll creates path and any missing parents.
func (f *FileSystem) MkdirAll(path string) error {
	if err := os.MkdirAll(path, domain.DirPerm); err != nil {
		return failure(domain.ErrCreateDirFailed, err, path)
	}
	return nil
}

// RemoveAll deletes path and everything below it.
func (f *FileSystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return failure(domain.ErrCleanFailed, err, path)
	}
	return nil
}

// failure joins a domain sentinel with the underlying cause.
func failure(sentinel, cause error, path string) error {
	return zerr.With(fmt.Errorf("%w: %w", sentinel, cause), "path", path)
}
