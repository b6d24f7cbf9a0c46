// Package shell provides an executor that spawns external tools with inherited stdio.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/relay/internal/core/domain"
	"go.trai.ch/relay/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// terminateGrace is how long a cancelled process gets to exit after the interrupt.
const terminateGrace = 5 * time.Second

// Executor implements ports.Executor using os/exec.
type Executor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewExecutor creates an Executor wired to the process's standard streams.
func NewExecutor() *Executor {
	return &Executor{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithOutput redirects the standard output and error of spawned processes.
func (e *Executor) WithOutput(stdout, stderr io.Writer) *Executor {
	e.stdout = stdout
	e.stderr = stderr
	return e
}

// Execute runs cmd and waits for it to exit.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command) error {
	if cmd.Name == "" {
		return nil
	}

	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := cmd.Name
	if !strings.ContainsRune(cmd.Name, os.PathSeparator) && !strings.ContainsRune(cmd.Name, '/') {
		if lp, err := lookPath(cmd.Name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Args...) //nolint:gosec // tool path comes from project layout
	c.Args[0] = cmd.Name
	c.Dir = cmd.Dir
	c.Env = env
	c.Stdin = e.stdin
	c.Stdout = e.stdout
	c.Stderr = e.stderr
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = terminateGrace

	tool := toolName(cmd.Name)

	if err := c.Start(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to start "+tool), "command", cmd.Name)
	}

	if err := c.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return zerr.With(zerr.Wrap(err, tool+" failed"), "command", cmd.Name)
		}

		code := exitErr.ExitCode()
		failed := zerr.Wrap(domain.ErrSubprocessFailed, fmt.Sprintf("%s exited with code %d", tool, code))
		return zerr.With(zerr.With(failed, "exit_code", code), "command", cmd.Name)
	}

	return nil
}

// toolName returns the base name of a tool without a Windows script suffix.
func toolName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, ".cmd")
}

// resolveEnvironment applies overrides on top of the inherited environment.
// The result is sorted by key.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(overrides))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if p, ok := strings.CutPrefix(e, "PATH="); ok {
			path = p
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
