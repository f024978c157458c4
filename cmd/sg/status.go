package main

import (
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active workflow step by step",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(rt *server.Runtime) error {
			status, err := rt.Manager.GetStatus(cmd.Context())
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
