package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/relay/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [tasks...]",
		Short: "Run tasks and their dependencies",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			jobs, _ := cmd.Flags().GetInt("jobs")
			return c.app.Run(cmd.Context(), args, app.RunOptions{Jobs: jobs})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of tasks to run at once (0 for no limit)")
	return cmd
}
