package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
)

var versionsCmd = &cobra.Command{
	Use:   "versions <node-id>",
	Short: "Show a node's version history, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showContent, _ := cmd.Flags().GetBool("content")

		return withRuntime(func(rt *server.Runtime) error {
			versions, err := rt.Graph.Versions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(versions)
			}
			if len(versions) == 0 {
				fmt.Println("No versions yet; the node has never been finalized.")
				return nil
			}

			w := newTabWriter()
			fmt.Fprintln(w, "VERSION\tSOURCE\tCREATED\tDESCRIPTION")
			for _, v := range versions {
				fmt.Fprintf(w, "v%d\t%s\t%s\t%s\n", v.Version, v.Source, v.CreatedAt.Format(time.RFC3339), v.ChangeDescription)
			}
			w.Flush()

			if showContent {
				for _, v := range versions {
					fmt.Printf("\n--- v%d ---\n%s\n", v.Version, v.Content)
				}
			}
			return nil
		})
	},
}

func init() {
	versionsCmd.Flags().Bool("content", false, "print each version's full content")
}
