package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

// CreateWorkflowTool handles the workflow_create MCP tool.
type CreateWorkflowTool struct {
	mgr *workspace.Manager
}

// NewCreateWorkflowTool creates a CreateWorkflowTool.
func NewCreateWorkflowTool(mgr *workspace.Manager) *CreateWorkflowTool {
	return &CreateWorkflowTool{mgr: mgr}
}

// Definition returns the MCP tool definition for workflow_create.
func (t *CreateWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_create",
		mcp.WithDescription(
			"Create a new workflow from a template and make it the active one. "+
				"The standard template bootstraps an aggregate root plus a requirement draft; "+
				"bugfix and feature templates create a single draft root.",
		),
		mcp.WithString("template",
			mcp.Required(),
			mcp.Description("Template key: standard, bugfix, or feature"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Workflow title, e.g. '用户登录功能'"),
		),
		mcp.WithString("description",
			mcp.Description("Initial description stored on the root node"),
		),
	)
}

// Handle processes the workflow_create tool call.
func (t *CreateWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	template := req.GetString("template", flow.TemplateStandard)
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	result, err := t.mgr.CreateWorkflow(ctx, template, title, req.GetString("description", ""))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}

// ListWorkflowsTool handles the workflow_list MCP tool.
type ListWorkflowsTool struct {
	mgr *workspace.Manager
}

// NewListWorkflowsTool creates a ListWorkflowsTool.
func NewListWorkflowsTool(mgr *workspace.Manager) *ListWorkflowsTool {
	return &ListWorkflowsTool{mgr: mgr}
}

// Definition returns the MCP tool definition for workflow_list.
func (t *ListWorkflowsTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_list",
		mcp.WithDescription(
			"List every workflow in the workspace, most recently created first. "+
				"Each entry carries the root id, template, title, and node counts.",
		),
	)
}

// Handle processes the workflow_list tool call.
func (t *ListWorkflowsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := t.mgr.ListAllWorkflows(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(summaries), nil
}

// SwitchWorkflowTool handles the workflow_switch MCP tool.
type SwitchWorkflowTool struct {
	mgr *workspace.Manager
}

// NewSwitchWorkflowTool creates a SwitchWorkflowTool.
func NewSwitchWorkflowTool(mgr *workspace.Manager) *SwitchWorkflowTool {
	return &SwitchWorkflowTool{mgr: mgr}
}

// Definition returns the MCP tool definition for workflow_switch.
func (t *SwitchWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_switch",
		mcp.WithDescription(
			"Switch the active workflow, like git checkout. The identifier may be a root id, "+
				"an exact title, a 1-based index into workflow_list, a template keyword "+
				"(bug, feature), or a title substring.",
		),
		mcp.WithString("workflow",
			mcp.Required(),
			mcp.Description("Workflow identifier to switch to"),
		),
	)
}

// Handle processes the workflow_switch tool call.
func (t *SwitchWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier := req.GetString("workflow", "")
	if identifier == "" {
		return mcp.NewToolResultError("'workflow' is required"), nil
	}

	status, err := t.mgr.SwitchWorkflow(ctx, identifier)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(status), nil
}

// StatusWorkflowTool handles the workflow_status MCP tool.
type StatusWorkflowTool struct {
	mgr *workspace.Manager
}

// NewStatusWorkflowTool creates a StatusWorkflowTool.
func NewStatusWorkflowTool(mgr *workspace.Manager) *StatusWorkflowTool {
	return &StatusWorkflowTool{mgr: mgr}
}

// Definition returns the MCP tool definition for workflow_status.
func (t *StatusWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_status",
		mcp.WithDescription(
			"Report the active workflow step by step: node ids, draft or finalized state, "+
				"the current step, and the completion percentage. When no workflow is active "+
				"and exactly one exists, it is activated automatically.",
		),
	)
}

// Handle processes the workflow_status tool call.
func (t *StatusWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := t.mgr.GetStatus(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(status), nil
}

// DeleteWorkflowTool handles the workflow_delete MCP tool.
type DeleteWorkflowTool struct {
	mgr *workspace.Manager
}

// NewDeleteWorkflowTool creates a DeleteWorkflowTool.
func NewDeleteWorkflowTool(mgr *workspace.Manager) *DeleteWorkflowTool {
	return &DeleteWorkflowTool{mgr: mgr}
}

// Definition returns the MCP tool definition for workflow_delete.
func (t *DeleteWorkflowTool) Definition() mcp.Tool {
	return mcp.NewTool("workflow_delete",
		mcp.WithDescription(
			"Delete a workflow and every node reachable from its root. Without force, "+
				"the delete refuses when the workflow is active or still has unfinalized drafts.",
		),
		mcp.WithString("workflow",
			mcp.Required(),
			mcp.Description("Workflow identifier to delete"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Delete even when active or holding drafts (default false)"),
		),
	)
}

// Handle processes the workflow_delete tool call.
func (t *DeleteWorkflowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	identifier := req.GetString("workflow", "")
	if identifier == "" {
		return mcp.NewToolResultError("'workflow' is required"), nil
	}

	result, err := t.mgr.DeleteWorkflow(ctx, identifier, req.GetBool("force", false))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(result), nil
}
