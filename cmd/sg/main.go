// Command sg is the workflow graph CLI: git-like workflow management
// over a local spec graph, plus an MCP server for agent integration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/ui"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

var (
	jsonOutput bool
	noColor    bool

	workspaceRoot string
)

var rootCmd = &cobra.Command{
	Use:   "sg",
	Short: "Spec workflow graphs with git-like context switching",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		var err error
		workspaceRoot, err = workspace.Detect()
		if err != nil {
			return err
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// withRuntime opens the workspace runtime for one command invocation.
func withRuntime(fn func(rt *server.Runtime) error) error {
	rt, err := server.Open(workspaceRoot)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sg version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sg", server.Version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}
