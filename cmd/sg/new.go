package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/server"
	"github.com/alfredjeanlab/specgraph/internal/ui"
)

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a workflow from a template and make it active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		description, _ := cmd.Flags().GetString("description")

		return withRuntime(func(rt *server.Runtime) error {
			result, err := rt.Manager.CreateWorkflow(cmd.Context(), template, args[0], description)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(result)
			}

			fmt.Printf("Created %s workflow %s (%s)\n", result.Template, ui.RenderAccent(result.Title), result.RootID)
			fmt.Printf("Current step: %s (%s)\n", result.CurrentStep, result.Steps[result.CurrentStep])
			return nil
		})
	},
}

func init() {
	newCmd.Flags().StringP("template", "t", flow.TemplateStandard, "workflow template (standard, bugfix, feature)")
	newCmd.Flags().StringP("description", "d", "", "initial description for the root node")
}
