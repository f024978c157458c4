package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/ui"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// renderError turns typed errors into actionable CLI messages.
func renderError(err error) string {
	var ambiguous *model.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		var b strings.Builder
		fmt.Fprintf(&b, "Error: %q matches %d workflows:\n", ambiguous.Identifier, len(ambiguous.Candidates))
		for i, c := range ambiguous.Candidates {
			fmt.Fprintf(&b, "  %d. %s  %s (%s)\n", i+1, c.RootID, c.Title, c.Template)
		}
		b.WriteString("Pick one by root id or list index.")
		return b.String()
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return "Error: " + err.Error() + "\nRun 'sg branch' to list workflows or 'sg status' for node ids."
	default:
		return "Error: " + err.Error()
	}
}

func statusMarker(status string) string {
	switch status {
	case "finalized":
		return ui.RenderGood("●")
	case "draft":
		return ui.RenderWarn("◐")
	default:
		return ui.RenderMuted("○")
	}
}

func printWorkflowStatus(ws *model.WorkflowStatus) {
	fmt.Printf("On workflow %s (%s)\n", ui.RenderAccent(ws.Title), ws.Template)
	fmt.Printf("Root %s, %d%% complete\n\n", ws.RootID, ws.Completion)

	w := newTabWriter()
	for _, step := range ws.Steps {
		cursor := " "
		if step.IsCurrent {
			cursor = ui.RenderAccent("→")
		}
		label := step.Label
		if label == "" {
			label = ui.RenderMuted("(not created)")
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", cursor, statusMarker(step.Status), step.Name, step.NodeID, label)
	}
	w.Flush()
}
