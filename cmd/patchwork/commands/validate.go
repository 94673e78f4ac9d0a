package commands

import "github.com/spf13/cobra"

func (c *CLI) newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan>",
		Short: "Check a plan for duplicate ids, dangling dependencies and cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, err := cmd.Flags().GetBool("watch")
			if err != nil {
				return err
			}
			if watch {
				return c.app.WatchPlan(cmd.Context(), args[0])
			}
			return c.app.Validate(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolP("watch", "w", false, "Validate again whenever the plan file changes")

	return cmd
}
