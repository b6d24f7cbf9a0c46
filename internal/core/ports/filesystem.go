package ports

import "go.trai.ch/relay/internal/core/domain"

// FileSystem groups the file operations the tasks need.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Expand returns the sorted, slash-separated paths of the files in the glob set.
	Expand(globs domain.GlobSet) ([]string, error)
	// Copy copies files into destDir, keeping their paths relative to baseDir.
	Copy(files []string, baseDir, destDir string) error
	// CleanStale removes files under dir whose path relative to dir does not exist under keepDir.
	CleanStale(keepDir, dir string) error
	// DirExists reports whether path is an existing directory.
	// A missing path is not an error.
	DirExists(path string) (bool, error)
	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error
	// RemoveAll removes path and everything below it.
	RemoveAll(path string) error
}
