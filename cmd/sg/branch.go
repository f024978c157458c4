package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/ui"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

var branchCmd = &cobra.Command{
	Use:   "branch [workflow]",
	Short: "List workflows, or delete one with -d/-D",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		safeDelete, _ := cmd.Flags().GetBool("delete")
		forceDelete, _ := cmd.Flags().GetBool("force-delete")

		if safeDelete || forceDelete {
			if len(args) == 0 {
				return fmt.Errorf("branch -d requires a workflow identifier")
			}
			return deleteWorkflow(cmd, args[0], forceDelete)
		}

		return withRuntime(func(rt *server.Runtime) error {
			summaries, err := rt.Manager.ListAllWorkflows(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(summaries)
			}
			if len(summaries) == 0 {
				fmt.Println("No workflows yet. Create one with 'sg new'.")
				return nil
			}

			c, err := workspace.NewContextStore(workspace.ContextPath(workspaceRoot)).Load()
			if err != nil {
				return err
			}

			w := newTabWriter()
			for i, s := range summaries {
				marker := " "
				title := s.Title
				if s.RootID == c.ActiveWorkflowID {
					marker = ui.RenderGood("*")
					title = ui.RenderAccent(title)
				}
				fmt.Fprintf(w, "%s %d.\t%s\t%s\t%s\t%d/%d finalized\n",
					marker, i+1, title, s.Template, s.RootID, s.FinalizedCount, s.NodeCount)
			}
			return w.Flush()
		})
	},
}

func deleteWorkflow(cmd *cobra.Command, identifier string, force bool) error {
	return withRuntime(func(rt *server.Runtime) error {
		result, err := rt.Manager.DeleteWorkflow(cmd.Context(), identifier, force)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("Deleted workflow %s (%d nodes, %d edges)\n", result.Title, result.DeletedNodes, result.DeletedEdges)
		if result.WasActive {
			fmt.Println("The active workflow was deleted; check out another with 'sg checkout'.")
		}
		return nil
	})
}

func init() {
	branchCmd.Flags().BoolP("delete", "d", false, "delete a workflow (refuses active or drafted workflows)")
	branchCmd.Flags().BoolP("force-delete", "D", false, "delete a workflow even when active or holding drafts")
}
