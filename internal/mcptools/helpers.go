// Package mcptools exposes every core operation as an MCP tool. Each
// tool marshals primitive arguments into the services and converts typed
// errors into actionable messages; no business logic lives here.
package mcptools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult renders typed errors as guidance instead of raw traces.
func errorResult(err error) *mcp.CallToolResult {
	var ambiguous *model.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		var b strings.Builder
		fmt.Fprintf(&b, "%q matches %d workflows; use a root id:\n", ambiguous.Identifier, len(ambiguous.Candidates))
		for i, c := range ambiguous.Candidates {
			fmt.Fprintf(&b, "%d. %s  %s (%s)\n", i+1, c.RootID, c.Title, c.Template)
		}
		return mcp.NewToolResultError(b.String())
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return mcp.NewToolResultError(err.Error() + "; use workflow_list or node ids from workflow_status")
	case errors.Is(err, model.ErrInvalidOperation),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrValidation):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError("operation failed: " + err.Error())
	}
}
