package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/project"
	"github.com/alfredjeanlab/specgraph/internal/server"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate the docs/specs markdown tree from the graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(rt *server.Runtime) error {
			result, err := rt.Projector.Sync(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(result)
			}
			fmt.Printf("Synced %d workflows (%d files) into %s\n", result.Workflows, result.Files, project.SpecsDir(workspaceRoot))
			return nil
		})
	},
}
