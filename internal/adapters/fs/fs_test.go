package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/fs"
	"go.trai.ch/relay/internal/core/domain"
)

// writeTree creates the given files below root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func newFileSystem() *fs.FileSystem {
	return fs.NewFileSystem(fs.NewWalker("node_modules"), fs.NewHasher())
}

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".git/config":             "git config",
		"node_modules/x/index.js": "module.exports = 1",
		"src/main.ts":             "export {}",
		"README.md":               "# Readme",
	})

	seq, walkErr := fs.NewWalker("node_modules").WalkFiles(tmpDir)
	files := make(map[string]bool)
	for p := range seq {
		rel, err := filepath.Rel(tmpDir, p)
		require.NoError(t, err)
		files[filepath.ToSlash(rel)] = true
	}
	require.NoError(t, walkErr())

	assert.False(t, files[".git/config"], "expected .git/config to be skipped")
	assert.False(t, files["node_modules/x/index.js"], "expected node_modules to be skipped")
	assert.True(t, files["src/main.ts"])
	assert.True(t, files["README.md"])
}

func TestWalker_WalkFiles_MissingRoot(t *testing.T) {
	seq, walkErr := fs.NewWalker().WalkFiles(filepath.Join(t.TempDir(), "absent"))
	for p := range seq {
		t.Errorf("unexpected file %s", p)
	}
	assert.NoError(t, walkErr())
}

func TestHasher_ComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "hello world", "b.txt": "hello world", "c.txt": "other"})

	hasher := fs.NewHasher()

	hash1, err := hasher.ComputeFileHash(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.NotZero(t, hash1)

	hash2, err := hasher.ComputeFileHash(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2, "expected deterministic hash")

	assert.True(t, hasher.SameContent(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")))
	assert.False(t, hasher.SameContent(filepath.Join(dir, "a.txt"), filepath.Join(dir, "c.txt")))
	assert.False(t, hasher.SameContent(filepath.Join(dir, "a.txt"), filepath.Join(dir, "missing.txt")))

	_, err = hasher.ComputeFileHash(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestFileSystem_Expand(t *testing.T) {
	t.Chdir(t.TempDir())
	writeTree(t, ".", map[string]string{
		"src/index.ts":      "",
		"src/app/view.tsx":  "",
		"src/app/style.css": "",
		"src/img/logo.png":  "",
		"src/.hidden.ts":    "",
		"test/index.ts":     "",
	})

	filesystem := newFileSystem()

	sources, err := filesystem.Expand(domain.GlobSet{Include: []string{"src/**/*.ts", "src/**/*.tsx"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app/view.tsx", "src/index.ts"}, sources)

	resources, err := filesystem.Expand(domain.GlobSet{
		Include: []string{"src/**/*"},
		Exclude: []string{"src/**/*.ts", "src/**/*.tsx"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/app/style.css", "src/img/logo.png"}, resources)
}

func TestFileSystem_Expand_MissingRootIsEmpty(t *testing.T) {
	t.Chdir(t.TempDir())

	files, err := newFileSystem().Expand(domain.GlobSet{Include: []string{"src/**/*.ts"}})

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileSystem_Expand_OverlappingPatterns(t *testing.T) {
	t.Chdir(t.TempDir())
	writeTree(t, ".", map[string]string{"src/index.ts": ""})

	files, err := newFileSystem().Expand(domain.GlobSet{Include: []string{"src/**/*.ts", "src/*.ts"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"src/index.ts"}, files)
}

func TestFileSystem_Copy(t *testing.T) {
	t.Chdir(t.TempDir())
	writeTree(t, ".", map[string]string{
		"src/img/logo.png":  "png",
		"src/app/style.css": "body {}",
	})

	filesystem := newFileSystem()
	files := []string{"src/img/logo.png", "src/app/style.css"}

	require.NoError(t, filesystem.Copy(files, "src", "build/tmp/debug"))

	data, err := os.ReadFile(filepath.Join("build", "tmp", "debug", "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	data, err = os.ReadFile(filepath.Join("build", "tmp", "debug", "app", "style.css"))
	require.NoError(t, err)
	assert.Equal(t, "body {}", string(data))
}

func TestFileSystem_Copy_SkipsUnchangedFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	writeTree(t, ".", map[string]string{"src/a.css": "a"})
	filesystem := newFileSystem()

	require.NoError(t, filesystem.Copy([]string{"src/a.css"}, "src", "out"))

	dest := filepath.Join("out", "a.css")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(dest, past, past))

	require.NoError(t, filesystem.Copy([]string{"src/a.css"}, "src", "out"))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(past), "unchanged file should not be rewritten")

	writeTree(t, ".", map[string]string{"src/a.css": "changed"})
	require.NoError(t, filesystem.Copy([]string{"src/a.css"}, "src", "out"))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "changed", string(data))
}

func TestFileSystem_Copy_OutsideBase(t *testing.T) {
	t.Chdir(t.TempDir())
	writeTree(t, ".", map[string]string{"lib/a.css": "a"})

	err := newFileSystem().Copy([]string{"lib/a.css"}, "src", "out")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCopyFailed)
}

func TestFileSystem_Copy_MissingSource(t *testing.T) {
	t.Chdir(t.TempDir())

	err := newFileSystem().Copy([]string{"src/gone.css"}, "src", "out")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCopyFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSystem_CleanStale(t *testing.T) {
	root := t.TempDir()
	compiled := filepath.Join(root, "build", "tmp", "release")
	bundle := filepath.Join(root, "build", "dist", "release")
	writeTree(t, compiled, map[string]string{"index.js": "", "app/main.js": ""})
	writeTree(t, bundle, map[string]string{"index.js": "", "app/main.js": "", "app/removed.js": "", "old.js": ""})

	require.NoError(t, newFileSystem().CleanStale(compiled, bundle))

	assert.FileExists(t, filepath.Join(bundle, "index.js"))
	assert.FileExists(t, filepath.Join(bundle, "app", "main.js"))
	assert.NoFileExists(t, filepath.Join(bundle, "app", "removed.js"))
	assert.NoFileExists(t, filepath.Join(bundle, "old.js"))
}

func TestFileSystem_CleanStale_MissingDir(t *testing.T) {
	root := t.TempDir()

	err := newFileSystem().CleanStale(filepath.Join(root, "compiled"), filepath.Join(root, "bundle"))

	assert.NoError(t, err)
}

func TestFileSystem_DirExists(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.txt": ""})
	filesystem := newFileSystem()

	exists, err := filesystem.DirExists(root)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = filesystem.DirExists(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = filesystem.DirExists(filepath.Join(root, "file.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileSystem_DirExists_InspectFailure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"file.txt": ""})

	// A path below a regular file cannot be inspected.
	_, err := newFileSystem().DirExists(filepath.Join(root, "file.txt", "sub"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDirInspectFailed)
}

func TestFileSystem_MkdirAll(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "build", "tmp", "debug")

	filesystem := newFileSystem()
	require.NoError(t, filesystem.MkdirAll(target))
	assert.DirExists(t, target)
	require.NoError(t, filesystem.MkdirAll(target), "an existing directory is not an error")

	writeTree(t, root, map[string]string{"file.txt": ""})
	err := filesystem.MkdirAll(filepath.Join(root, "file.txt", "sub"))
	assert.ErrorIs(t, err, domain.ErrCreateDirFailed)
}

func TestFileSystem_RemoveAll(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "build", "tmp")
	writeTree(t, target, map[string]string{"debug/index.js": ""})

	filesystem := newFileSystem()
	require.NoError(t, filesystem.RemoveAll(target))
	assert.NoDirExists(t, target)

	require.NoError(t, filesystem.RemoveAll(target), "removing a missing path is not an error")
}
