package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alfredjeanlab/specgraph/internal/engine"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

// GetNodeTool handles the node_get MCP tool.
type GetNodeTool struct {
	graph *graph.Service
}

// NewGetNodeTool creates a GetNodeTool.
func NewGetNodeTool(g *graph.Service) *GetNodeTool {
	return &GetNodeTool{graph: g}
}

// Definition returns the MCP tool definition for node_get.
func (t *GetNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("node_get",
		mcp.WithDescription(
			"Fetch one spec node: its finalized content, pending draft if any, "+
				"version counter, and metadata.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Node id, e.g. req_V1StGXR8_Z5j"),
		),
	)
}

// Handle processes the node_get tool call.
func (t *GetNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	node, err := t.graph.GetNode(ctx, nodeID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(node), nil
}

// DraftNodeTool handles the node_draft MCP tool.
type DraftNodeTool struct {
	graph *graph.Service
}

// NewDraftNodeTool creates a DraftNodeTool.
func NewDraftNodeTool(g *graph.Service) *DraftNodeTool {
	return &DraftNodeTool{graph: g}
}

// Definition returns the MCP tool definition for node_draft.
func (t *DraftNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("node_draft",
		mcp.WithDescription(
			"Replace a node's pending draft. The finalized content is untouched until "+
				"node_finalize commits the draft as a new version.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Node id to draft on"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Full draft body in markdown"),
		),
		mcp.WithString("source",
			mcp.Description("Draft provenance: manual_created, manual_modified, ai_generated, or ai_modified (default inferred)"),
		),
	)
}

// Handle processes the node_draft tool call.
func (t *DraftNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	content := req.GetString("content", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	node, err := t.graph.UpdateDraft(ctx, nodeID, content, model.DraftSource(req.GetString("source", "")))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(node), nil
}

// FinalizeNodeTool handles the node_finalize MCP tool. Finalizing also
// runs the auto-transition engine, so the result may carry a freshly
// created successor node and its generation prompt.
type FinalizeNodeTool struct {
	graph  *graph.Service
	engine *engine.Engine
	mgr    *workspace.Manager
}

// NewFinalizeNodeTool creates a FinalizeNodeTool.
func NewFinalizeNodeTool(g *graph.Service, e *engine.Engine, mgr *workspace.Manager) *FinalizeNodeTool {
	return &FinalizeNodeTool{graph: g, engine: e, mgr: mgr}
}

// Definition returns the MCP tool definition for node_finalize.
func (t *FinalizeNodeTool) Definition() mcp.Tool {
	return mcp.NewTool("node_finalize",
		mcp.WithDescription(
			"Commit a node's pending draft as a new immutable version and run the "+
				"stage transition: a successor draft node is created per the flow rules, "+
				"and when generation is enabled an AI prompt for its content is returned.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Node id to finalize"),
		),
		mcp.WithString("change_description",
			mcp.Description("Optional changelog line stored on the version"),
		),
		mcp.WithBoolean("generate",
			mcp.Description("Build an AI generation prompt for the successor (default true)"),
		),
	)
}

type finalizeView struct {
	Node       *model.Node              `json:"node"`
	Transition *engine.TransitionResult `json:"transition,omitempty"`
}

// Handle processes the node_finalize tool call.
func (t *FinalizeNodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	node, err := t.graph.Finalize(ctx, nodeID, req.GetString("change_description", ""))
	if err != nil {
		return errorResult(err), nil
	}

	transition, err := t.engine.OnNodeFinalized(ctx, node.ID, req.GetBool("generate", true))
	if err != nil {
		return errorResult(err), nil
	}
	if transition != nil {
		if err := t.mgr.RecordStep(ctx, transition.NodeID, transition.Type); err != nil {
			return errorResult(err), nil
		}
	}

	return jsonResult(finalizeView{Node: node, Transition: transition}), nil
}

// VersionsTool handles the node_versions MCP tool.
type VersionsTool struct {
	graph *graph.Service
}

// NewVersionsTool creates a VersionsTool.
func NewVersionsTool(g *graph.Service) *VersionsTool {
	return &VersionsTool{graph: g}
}

// Definition returns the MCP tool definition for node_versions.
func (t *VersionsTool) Definition() mcp.Tool {
	return mcp.NewTool("node_versions",
		mcp.WithDescription(
			"List a node's append-only version history, oldest first, with content, "+
				"provenance, and change descriptions.",
		),
		mcp.WithString("node_id",
			mcp.Required(),
			mcp.Description("Node id to inspect"),
		),
	)
}

// Handle processes the node_versions tool call.
func (t *VersionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodeID := req.GetString("node_id", "")
	if nodeID == "" {
		return mcp.NewToolResultError("'node_id' is required"), nil
	}

	versions, err := t.graph.Versions(ctx, nodeID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(versions), nil
}
