package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/internal/adapters/telemetry"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/relay/internal/core/ports/mocks"
	"go.trai.ch/relay/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader   *mocks.MockConfigLoader
	fs       *mocks.MockFileSystem
	compiler *mocks.MockCompiler
	bundler  *mocks.MockBundler
	executor *mocks.MockExecutor
	watcher  *mocks.MockWatcher
	logger   *mocks.MockLogger
	app      *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	fx := &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		fs:       mocks.NewMockFileSystem(ctrl),
		compiler: mocks.NewMockCompiler(ctrl),
		bundler:  mocks.NewMockBundler(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	fx.app = app.New(
		fx.loader,
		fx.fs,
		fx.compiler,
		fx.bundler,
		fx.executor,
		fx.watcher,
		fx.logger,
		scheduler.NewScheduler(telemetry.NewNoOpTracer()),
	)
	return fx
}

func testProject(root string) *domain.Project {
	return &domain.Project{
		Root:   root,
		Config: domain.NewConfig(),
		Pipelines: []domain.Pipeline{
			{Name: "release", Kind: domain.PipelineBuild, Target: "release"},
			{Name: "dev", Kind: domain.PipelineWatch, Target: "debug"},
		},
	}
}

func TestApp_Run_NoTasks(t *testing.T) {
	fx := newFixture(t)

	err := fx.app.Run(context.Background(), nil, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrNoTasksSpecified)
}

func TestApp_Run_Build(t *testing.T) {
	fx := newFixture(t)
	root := t.TempDir()
	t.Chdir(root)

	fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)

	fx.fs.EXPECT().Expand(gomock.Any()).DoAndReturn(func(globs domain.GlobSet) ([]string, error) {
		if len(globs.Exclude) > 0 {
			return []string{"src/logo.png"}, nil
		}
		return []string{"src/index.ts"}, nil
	}).Times(2)
	fx.fs.EXPECT().Copy([]string{"src/logo.png"}, "src", "build/tmp/release").Return(nil)
	fx.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.CompileRequest) error {
		assert.Equal(t, []string{"src/index.ts"}, req.Sources)
		assert.Equal(t, "build/tmp/release", req.OutDir)
		return nil
	})
	fx.fs.EXPECT().CleanStale("build/tmp/release", "build/dist/release").Return(nil)
	fx.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req ports.BundleRequest) error {
		assert.Equal(t, "build/tmp/release", req.InputDir)
		assert.Equal(t, "build/dist/release", req.OutDir)
		assert.True(t, domain.IsInline(req.Config))
		return nil
	})

	err := fx.app.Run(context.Background(), []string{"release"}, app.RunOptions{Jobs: 2})
	require.NoError(t, err)
}

func TestApp_Run_EntersProjectRoot(t *testing.T) {
	fx := newFixture(t)
	base := t.TempDir()
	root := filepath.Join(base, "web")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))
	t.Chdir(filepath.Join(root, "src"))

	fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)
	fx.fs.EXPECT().Expand(gomock.Any()).Return(nil, nil)
	fx.fs.EXPECT().Copy(gomock.Any(), "src", "build/tmp/release").Return(nil)

	require.NoError(t, fx.app.Run(context.Background(), []string{"release:resources"}, app.RunOptions{}))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cwd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestApp_Run_LoadFailure(t *testing.T) {
	fx := newFixture(t)
	fx.loader.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrConfigNotFound)

	err := fx.app.Run(context.Background(), []string{"release"}, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Run_UnknownTask(t *testing.T) {
	fx := newFixture(t)
	root := t.TempDir()
	t.Chdir(root)
	fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)

	err := fx.app.Run(context.Background(), []string{"deploy"}, app.RunOptions{})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestApp_Run_TaskFailure(t *testing.T) {
	fx := newFixture(t)
	root := t.TempDir()
	t.Chdir(root)
	errDisk := errors.New("disk full")

	fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)
	fx.fs.EXPECT().Expand(gomock.Any()).Return([]string{"src/logo.png"}, nil)
	fx.fs.EXPECT().Copy(gomock.Any(), gomock.Any(), gomock.Any()).Return(errDisk)

	err := fx.app.Run(context.Background(), []string{"release:resources"}, app.RunOptions{})
	require.ErrorIs(t, err, errDisk)
	assert.Contains(t, err.Error(), "task execution failed")
}

func TestApp_Tasks(t *testing.T) {
	fx := newFixture(t)
	root := t.TempDir()
	t.Chdir(root)
	fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)

	infos, err := fx.app.Tasks(context.Background())
	require.NoError(t, err)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	assert.Equal(t, []string{
		"dev",
		"dev:build",
		"dev:build:compile",
		"dev:build:resources",
		"dev:bundle",
		"dev:compile",
		"dev:resources",
		"release",
		"release:compile",
		"release:resources",
	}, names)
	assert.Equal(t, []string{"release:resources", "release:compile"}, infos[7].Dependencies)
}

func TestApp_Clean(t *testing.T) {
	t.Run("all declared targets", func(t *testing.T) {
		fx := newFixture(t)
		root := t.TempDir()
		t.Chdir(root)
		fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)
		fx.logger.EXPECT().Info(gomock.Any()).Times(4)

		gomock.InOrder(
			fx.fs.EXPECT().RemoveAll("build/tmp/release").Return(nil),
			fx.fs.EXPECT().RemoveAll("build/dist/release").Return(nil),
			fx.fs.EXPECT().RemoveAll("build/tmp/debug").Return(nil),
			fx.fs.EXPECT().RemoveAll("build/dist/debug").Return(nil),
		)

		require.NoError(t, fx.app.Clean(context.Background(), nil))
	})

	t.Run("selected target", func(t *testing.T) {
		fx := newFixture(t)
		root := t.TempDir()
		t.Chdir(root)
		fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)
		fx.logger.EXPECT().Info("removing build/tmp/debug")
		fx.logger.EXPECT().Info("removing build/dist/debug")
		fx.fs.EXPECT().RemoveAll("build/tmp/debug").Return(nil)
		fx.fs.EXPECT().RemoveAll("build/dist/debug").Return(nil)

		require.NoError(t, fx.app.Clean(context.Background(), []string{"debug"}))
	})

	t.Run("unknown target", func(t *testing.T) {
		fx := newFixture(t)
		root := t.TempDir()
		t.Chdir(root)
		fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)

		err := fx.app.Clean(context.Background(), []string{"staging"})
		assert.ErrorIs(t, err, domain.ErrUnknownTarget)
	})

	t.Run("failures are collected", func(t *testing.T) {
		fx := newFixture(t)
		root := t.TempDir()
		t.Chdir(root)
		fx.loader.EXPECT().Load(gomock.Any()).Return(testProject(root), nil)
		fx.logger.EXPECT().Info(gomock.Any()).Times(2)
		fx.fs.EXPECT().RemoveAll("build/tmp/debug").Return(domain.ErrCleanFailed)
		fx.fs.EXPECT().RemoveAll("build/dist/debug").Return(nil)

		err := fx.app.Clean(context.Background(), []string{"debug"})
		assert.ErrorIs(t, err, domain.ErrCleanFailed)
	})
}
