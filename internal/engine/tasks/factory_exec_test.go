package tasks_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/shell"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports/mocks"
	"go.trai.ch/relay/internal/engine/tasks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeTool(t *testing.T, dir, name, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	//nolint:gosec // test tool must be executable
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
}

func TestFactory_CompileExec_ExitCodeSurfaces(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	binDir := filepath.Join(t.TempDir(), "node_modules", ".bin")
	writeTool(t, binDir, "tsc", "#!/bin/sh\nexit 2\n")

	ctrl := gomock.NewController(t)
	f := tasks.NewFactory(
		domain.NewConfig(domain.WithCompiler(domain.PathLocator("tsconfig.json"))),
		mocks.NewMockFileSystem(ctrl),
		mocks.NewMockCompiler(ctrl),
		mocks.NewMockBundler(ctrl),
		shell.NewExecutor(),
		mocks.NewMockWatcher(ctrl),
		mocks.NewMockLogger(ctrl),
	).WithBinDir(binDir)

	err := f.CompileExec("debug", false)(context.Background())

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrSubprocessFailed)
	assert.Contains(t, err.Error(), "tsc exited with code 2")

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, 2, zErr.Metadata()["exit_code"])
}

func TestFactory_CompileExec_PassesArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	tmp := t.TempDir()
	binDir := filepath.Join(tmp, "bin")
	argsFile := filepath.Join(tmp, "args.txt")
	writeTool(t, binDir, "tsc", "#!/bin/sh\necho \"$@\" > \""+argsFile+"\"\n")

	ctrl := gomock.NewController(t)
	f := tasks.NewFactory(
		domain.NewConfig(domain.WithCompiler(domain.PathLocator("tsconfig.json"))),
		mocks.NewMockFileSystem(ctrl),
		mocks.NewMockCompiler(ctrl),
		mocks.NewMockBundler(ctrl),
		shell.NewExecutor(),
		mocks.NewMockWatcher(ctrl),
		mocks.NewMockLogger(ctrl),
	).WithBinDir(binDir)

	require.NoError(t, f.CompileExec("release", false)(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--outDir build/tmp/release -p tsconfig.json\n", string(data))
}
