package commands

import "github.com/spf13/cobra"

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [targets...]",
		Short: "Remove the compiled and bundled output of targets",
		Long: "Remove the compiled-output and bundle-output directories of the given targets.\n" +
			"Without arguments every target declared by a pipeline is cleaned.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Clean(cmd.Context(), args)
		},
	}
}
