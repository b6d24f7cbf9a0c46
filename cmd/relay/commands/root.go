// Package commands implements the CLI commands for relay.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/build"
)

// CLI represents the command line interface for relay.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	jsonLog func(bool)
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, taskNames []string, opts app.RunOptions) error
	Tasks(ctx context.Context) ([]app.TaskInfo, error)
	Clean(ctx context.Context, targets []string) error
}

// Option configures a CLI.
type Option func(*CLI)

// WithJSONLogs registers the function that switches the logger to JSON output
// when --json is given.
func WithJSONLogs(fn func(bool)) Option {
	return func(c *CLI) {
		c.jsonLog = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "relay",
		Short:         "Build, watch and serve front-end projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("json", false, "Write log output as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if c.jsonLog == nil {
			return
		}
		if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
			c.jsonLog(true)
		}
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newTasksCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
