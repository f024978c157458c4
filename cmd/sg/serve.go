package main

import (
	"fmt"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Run the MCP server on stdio for agent integration.

All non-protocol output goes to stderr; stdout carries only the MCP
protocol stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := server.New(workspaceRoot)
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Fprintf(os.Stderr, "specgraph MCP server %s serving workspace %s\n", server.Version, workspaceRoot)
		return mcpserver.ServeStdio(s)
	},
}
