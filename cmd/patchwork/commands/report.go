package commands

import "github.com/spf13/cobra"

func (c *CLI) newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <plan>",
		Short: "Print the report of the latest run of a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _ := cmd.Flags().GetString("repo")
			return c.app.Report(cmd.Context(), args[0], repo)
		},
	}
}
