package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a specgraph workspace in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := workspace.Init(workspaceRoot); err != nil {
			return err
		}
		// Opening the runtime creates the database and runs migrations.
		rt, err := server.Open(workspaceRoot)
		if err != nil {
			return err
		}
		rt.Close()

		fmt.Printf("Initialized specgraph workspace in %s\n", workspace.MarkerPath(workspaceRoot))
		return nil
	},
}
