package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <workflow>",
	Short: "Switch the active workflow",
	Long: `Switch the active workflow, like git checkout.

The identifier may be a root id, an exact title, a 1-based index into
'sg branch', a template keyword (bug, feature), or a title substring.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(rt *server.Runtime) error {
			status, err := rt.Manager.SwitchWorkflow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(status)
			}
			printWorkflowStatus(status)
			return nil
		})
	},
}
