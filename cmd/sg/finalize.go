package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/engine"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/ui"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize <node-id>",
	Short: "Commit a node's draft as a new version and run the stage transition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		noGenerate, _ := cmd.Flags().GetBool("no-generate")

		return withRuntime(func(rt *server.Runtime) error {
			node, err := rt.Graph.Finalize(cmd.Context(), args[0], message)
			if err != nil {
				return err
			}

			transition, err := rt.Engine.OnNodeFinalized(cmd.Context(), node.ID, !noGenerate)
			if err != nil {
				return err
			}
			if transition != nil {
				if err := rt.Manager.RecordStep(cmd.Context(), transition.NodeID, transition.Type); err != nil {
					return err
				}
			}

			if jsonOutput {
				return printJSON(struct {
					Node       *model.Node              `json:"node"`
					Transition *engine.TransitionResult `json:"transition,omitempty"`
				}{node, transition})
			}

			fmt.Printf("Finalized %s at %s\n", node.ID, ui.RenderGood(fmt.Sprintf("v%d", node.CurrentVersion)))
			if transition == nil {
				fmt.Println("Pipeline complete: no next stage.")
				return nil
			}

			fmt.Printf("Next stage: %s %s (%s)\n", transition.Type, ui.RenderAccent(transition.Label), transition.NodeID)
			gen := transition.Generation
			if gen.Enabled {
				fmt.Printf("\n%s\n%s\n", ui.RenderMuted("--- generation prompt ---"), gen.Prompt)
				fmt.Printf("\nDraft the generated content with: sg draft %s -s ai_generated -f <file>\n", transition.NodeID)
			} else if gen.Reason != "" {
				fmt.Printf("Generation skipped: %s\n", gen.Reason)
			}
			return nil
		})
	},
}

func init() {
	finalizeCmd.Flags().StringP("message", "m", "", "change description stored on the version")
	finalizeCmd.Flags().Bool("no-generate", false, "skip building the AI generation prompt")
}
