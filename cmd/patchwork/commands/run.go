package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/patchwork/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <plan>",
		Short: "Resolve every task of a plan on a new run branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _ := cmd.Flags().GetString("repo")
			base, _ := cmd.Flags().GetString("base")
			branch, _ := cmd.Flags().GetString("branch")
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")

			retries := -1
			if cmd.Flags().Changed("retries") {
				retries, _ = cmd.Flags().GetInt("retries")
			}

			// --ci is shorthand for plain output
			if ci {
				outputMode = "plain"
			}

			return c.app.Run(cmd.Context(), app.RunOptions{
				PlanPath:   args[0],
				RepoDir:    repo,
				Base:       base,
				Branch:     branch,
				Retries:    retries,
				OutputMode: outputMode,
			})
		},
	}
	cmd.Flags().String("base", "HEAD", "Revision the run branch starts from")
	cmd.Flags().String("branch", "", "Resolve on an existing branch instead of creating a run branch")
	cmd.Flags().Int("retries", 0, "Edit attempts allowed after the first one (default from settings)")
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, rich, plain, or json")
	cmd.Flags().Bool("ci", false, "Use plain output mode (shorthand for --output-mode=plain)")
	cmd.MarkFlagsMutuallyExclusive("base", "branch")
	return cmd
}
