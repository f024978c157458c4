package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <node-id>",
	Short: "Show a node's content and pending draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(rt *server.Runtime) error {
			node, err := rt.Graph.GetNode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(node)
			}

			fmt.Printf("%s  %s\n", ui.RenderAccent(node.ID), node.Label)
			w := newTabWriter()
			fmt.Fprintf(w, "Type:\t%s\n", node.Type)
			fmt.Fprintf(w, "Status:\t%s\n", node.Status())
			fmt.Fprintf(w, "Version:\t%d\n", node.CurrentVersion)
			fmt.Fprintf(w, "Updated:\t%s\n", node.UpdatedAt.Format(time.RFC3339))
			w.Flush()

			if node.Content != "" {
				fmt.Printf("\n%s\n%s\n", ui.RenderMuted("--- content ---"), node.Content)
			}
			if node.DraftContent != nil {
				fmt.Printf("\n%s\n%s\n", ui.RenderWarn("--- pending draft ("+string(node.DraftSource)+") ---"), *node.DraftContent)
			}
			return nil
		})
	},
}
