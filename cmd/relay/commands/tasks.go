package commands

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/relay/internal/app"
	"go.trai.ch/relay/internal/ui/output"
	"go.trai.ch/relay/internal/ui/style"
)

func (c *CLI) newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the tasks registered by the project's pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := c.app.Tasks(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), infos)
		},
	}
}

// printTasks writes one line per task, aligning the dependency lists.
func printTasks(w io.Writer, infos []app.TaskInfo) error {
	out := output.New(w)

	width := 0
	for _, info := range infos {
		width = max(width, len(info.Name))
	}

	var sb strings.Builder
	for _, info := range infos {
		sb.WriteString(out.String(info.Name).Foreground(termenv.RGBColor(string(style.Iris))).String())
		if len(info.Dependencies) > 0 {
			sb.WriteString(strings.Repeat(" ", width-len(info.Name)+2))
			deps := style.Arrow + " " + strings.Join(info.Dependencies, ", ")
			sb.WriteString(out.String(deps).Foreground(termenv.RGBColor(string(style.Slate))).String())
		}
		sb.WriteString("\n")
	}

	_, err := out.WriteString(sb.String())
	return err
}
