package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/relay/cmd/relay/commands"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, taskNames []string, opts app.RunOptions) error
	tasksFunc func(ctx context.Context) ([]app.TaskInfo, error)
	cleanFunc func(ctx context.Context, targets []string) error
}

func (m *mockApp) Run(ctx context.Context, taskNames []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, taskNames, opts)
	}
	return nil
}

func (m *mockApp) Tasks(ctx context.Context) ([]app.TaskInfo, error) {
	if m.tasksFunc != nil {
		return m.tasksFunc(ctx)
	}
	return nil, nil
}

func (m *mockApp) Clean(ctx context.Context, targets []string) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, targets)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedTasks []string

		mock := &mockApp{
			runFunc: func(_ context.Context, taskNames []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedTasks = taskNames
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "web", "api:build", "-j", "4"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, 4, capturedOpts.Jobs)
		assert.Equal(t, []string{"web", "api:build"}, capturedTasks)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "web"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no tasks provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Tasks(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	mock := &mockApp{
		tasksFunc: func(context.Context) ([]app.TaskInfo, error) {
			return []app.TaskInfo{
				{Name: "release", Dependencies: []string{"release:resources", "release:compile"}},
				{Name: "release:compile"},
				{Name: "release:resources"},
			}, nil
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"tasks"})

	require.NoError(t, cli.Execute(context.Background()))

	g := goldie.New(t)
	g.Assert(t, "tasks", buf.Bytes())
}

func TestCommands_Tasks_Error(t *testing.T) {
	mock := &mockApp{
		tasksFunc: func(context.Context) ([]app.TaskInfo, error) {
			return nil, errors.New("could not find relay.yaml")
		},
	}

	cli := commands.New(mock)
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"tasks"})

	err := cli.Execute(context.Background())
	assert.ErrorContains(t, err, "relay.yaml")
}

func TestCommands_Clean(t *testing.T) {
	var captured []string
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context, targets []string) error {
			called = true
			captured = targets
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"clean", "debug"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
	assert.Equal(t, []string{"debug"}, captured)

	cli = commands.New(mock)
	cli.SetArgs([]string{"clean"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Empty(t, captured)
}

func TestCommands_JSONFlag(t *testing.T) {
	var enabled bool
	cli := commands.New(&mockApp{}, commands.WithJSONLogs(func(on bool) { enabled = on }))
	cli.SetArgs([]string{"run", "web", "--json"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, enabled)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "relay version "+build.Version)
}
