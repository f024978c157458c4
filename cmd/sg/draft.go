package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/server"
)

var draftCmd = &cobra.Command{
	Use:   "draft <node-id> [content]",
	Short: "Write a pending draft onto a node",
	Long: `Write a pending draft onto a node. The finalized content is untouched
until 'sg finalize' commits the draft as a new version.

Content comes from the second argument, --file, or stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := draftContent(cmd, args)
		if err != nil {
			return err
		}
		source, _ := cmd.Flags().GetString("source")

		return withRuntime(func(rt *server.Runtime) error {
			node, err := rt.Graph.UpdateDraft(cmd.Context(), args[0], content, model.DraftSource(source))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(node)
			}
			fmt.Printf("Drafted %s (%s, based on v%d)\n", node.ID, node.DraftSource, node.CurrentVersion)
			return nil
		})
	},
}

func draftContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading draft file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading draft from stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no draft content given")
	}
	return string(data), nil
}

func init() {
	draftCmd.Flags().StringP("file", "f", "", "read the draft body from a file")
	draftCmd.Flags().StringP("source", "s", "", "draft provenance (manual_created, manual_modified, ai_generated, ai_modified)")
}
