package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alfredjeanlab/specgraph/internal/project"
)

// SyncFilesTool handles the files_sync MCP tool.
type SyncFilesTool struct {
	proj *project.Projector
}

// NewSyncFilesTool creates a SyncFilesTool.
func NewSyncFilesTool(proj *project.Projector) *SyncFilesTool {
	return &SyncFilesTool{proj: proj}
}

// Definition returns the MCP tool definition for files_sync.
func (t *SyncFilesTool) Definition() mcp.Tool {
	return mcp.NewTool("files_sync",
		mcp.WithDescription(
			"Regenerate the docs/specs file tree from the graph: one directory per "+
				"workflow, one markdown file per stage, plus an index. The tree is a "+
				"projection and safe to regenerate at any time.",
		),
	)
}

// Handle processes the files_sync tool call.
func (t *SyncFilesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.proj.Sync(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}
