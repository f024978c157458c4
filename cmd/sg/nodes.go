package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List every node in the workspace graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(rt *server.Runtime) error {
			nodes, err := rt.Graph.AllNodes(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(nodes)
			}
			if len(nodes) == 0 {
				fmt.Println("No nodes yet.")
				return nil
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tVERSION\tLABEL")
			for _, n := range nodes {
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%d\t%s\n", n.ID, n.Type, statusMarker(n.Status()), n.Status(), n.CurrentVersion, n.Label)
			}
			return w.Flush()
		})
	},
}
