package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/alfredjeanlab/specgraph/internal/engine"
	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/project"
	"github.com/alfredjeanlab/specgraph/internal/store/sqlite"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

type toolDeps struct {
	root   string
	graph  *graph.Service
	engine *engine.Engine
	mgr    *workspace.Manager
	proj   *project.Projector
}

func newToolDeps(t *testing.T) *toolDeps {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".specgraph"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	st, err := sqlite.New(filepath.Join(root, ".specgraph", "graph.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	table := flow.NewTable()
	g := graph.NewService(st, table, nil)
	mgr := workspace.NewManager(g, workspace.NewContextStore(workspace.ContextPath(root)), nil)
	return &toolDeps{
		root:   root,
		graph:  g,
		engine: engine.New(g, table, nil),
		mgr:    mgr,
		proj:   project.NewProjector(g, mgr, root),
	}
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("tool returned error: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), v); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
}

func TestCreateWorkflowToolMissingTitle(t *testing.T) {
	deps := newToolDeps(t)
	tool := NewCreateWorkflowTool(deps.mgr)

	result, err := tool.Handle(context.Background(), callReq(map[string]any{
		"template": "bugfix",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "'title' is required") {
		t.Errorf("result = %q, want title-required error", resultText(t, result))
	}
}

func TestCreateWorkflowToolUnknownTemplate(t *testing.T) {
	deps := newToolDeps(t)
	tool := NewCreateWorkflowTool(deps.mgr)

	result, err := tool.Handle(context.Background(), callReq(map[string]any{
		"template": "sprint",
		"title":    "登录",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "unknown template") {
		t.Errorf("result = %q, want unknown-template error", resultText(t, result))
	}
}

func TestWorkflowToolPipeline(t *testing.T) {
	deps := newToolDeps(t)
	ctx := context.Background()

	create := NewCreateWorkflowTool(deps.mgr)
	result, err := create.Handle(ctx, callReq(map[string]any{
		"template":    "standard",
		"title":       "用户登录",
		"description": "登录功能总体说明",
	}))
	if err != nil {
		t.Fatalf("workflow_create error: %v", err)
	}
	var created workspace.CreateResult
	decodeResult(t, result, &created)
	if created.Template != flow.TemplateStandard || created.CurrentStep != "requirement" {
		t.Fatalf("created = %+v", created)
	}

	status := NewStatusWorkflowTool(deps.mgr)
	result, err = status.Handle(ctx, callReq(nil))
	if err != nil {
		t.Fatalf("workflow_status error: %v", err)
	}
	var ws model.WorkflowStatus
	decodeResult(t, result, &ws)
	if ws.RootID != created.RootID || ws.CurrentStep != "requirement" {
		t.Fatalf("status = %+v", ws)
	}

	reqID := created.Steps["requirement"]
	draft := NewDraftNodeTool(deps.graph)
	result, err = draft.Handle(ctx, callReq(map[string]any{
		"node_id": reqID,
		"content": "## 需求\n\n支持邮箱登录",
	}))
	if err != nil {
		t.Fatalf("node_draft error: %v", err)
	}
	var node model.Node
	decodeResult(t, result, &node)
	if !node.IsDraft || node.DraftContent == nil {
		t.Fatalf("draft node = %+v", node)
	}

	finalize := NewFinalizeNodeTool(deps.graph, deps.engine, deps.mgr)
	result, err = finalize.Handle(ctx, callReq(map[string]any{
		"node_id": reqID,
	}))
	if err != nil {
		t.Fatalf("node_finalize error: %v", err)
	}
	var fin finalizeView
	decodeResult(t, result, &fin)
	if fin.Node.CurrentVersion != 1 || fin.Node.IsDraft {
		t.Errorf("finalized node = %+v", fin.Node)
	}
	if fin.Transition == nil || fin.Transition.Type != model.TypeDesign {
		t.Fatalf("transition = %+v, want design successor", fin.Transition)
	}
	if !fin.Transition.Generation.Enabled || fin.Transition.Generation.Prompt == "" {
		t.Errorf("generation = %+v, want enabled with prompt", fin.Transition.Generation)
	}

	// The step index follows the transition.
	result, err = status.Handle(ctx, callReq(nil))
	if err != nil {
		t.Fatalf("workflow_status error: %v", err)
	}
	decodeResult(t, result, &ws)
	if ws.CurrentStep != "design" {
		t.Errorf("current step = %q, want design", ws.CurrentStep)
	}
}

func TestFinalizeToolWithoutDraft(t *testing.T) {
	deps := newToolDeps(t)
	ctx := context.Background()

	node, err := deps.graph.CreateNode(ctx, graph.NewNode{
		Type: model.TypeRequirement, Label: "r", Content: "已定稿",
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	tool := NewFinalizeNodeTool(deps.graph, deps.engine, deps.mgr)
	result, err := tool.Handle(ctx, callReq(map[string]any{"node_id": node.ID}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "nothing to finalize") {
		t.Errorf("result = %q, want nothing-to-finalize error", resultText(t, result))
	}
}

func TestGetNodeToolNotFound(t *testing.T) {
	deps := newToolDeps(t)

	tool := NewGetNodeTool(deps.graph)
	result, err := tool.Handle(context.Background(), callReq(map[string]any{
		"node_id": "req_missing",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "workflow_list") {
		t.Errorf("result = %q, want not-found guidance", resultText(t, result))
	}
}

func TestDeleteWorkflowToolAmbiguous(t *testing.T) {
	deps := newToolDeps(t)
	ctx := context.Background()

	create := NewCreateWorkflowTool(deps.mgr)
	for _, title := range []string{"崩溃一", "崩溃二"} {
		result, err := create.Handle(ctx, callReq(map[string]any{
			"template": "bugfix",
			"title":    title,
		}))
		if err != nil {
			t.Fatalf("workflow_create error: %v", err)
		}
		if result.IsError {
			t.Fatalf("workflow_create failed: %s", resultText(t, result))
		}
	}

	tool := NewDeleteWorkflowTool(deps.mgr)
	result, err := tool.Handle(ctx, callReq(map[string]any{"workflow": "bug"}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	text := resultText(t, result)
	if !result.IsError || !strings.Contains(text, "matches 2 workflows") {
		t.Errorf("result = %q, want ambiguous-match error", text)
	}
	if !strings.Contains(text, "崩溃一") || !strings.Contains(text, "崩溃二") {
		t.Errorf("candidates missing from %q", text)
	}
}

func TestVersionsTool(t *testing.T) {
	deps := newToolDeps(t)
	ctx := context.Background()

	node, err := deps.graph.CreateNode(ctx, graph.NewNode{
		Type: model.TypeDesign, Label: "d", Content: "v1 内容",
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	tool := NewVersionsTool(deps.graph)
	result, err := tool.Handle(ctx, callReq(map[string]any{"node_id": node.ID}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	var versions []*model.NodeVersion
	decodeResult(t, result, &versions)
	if len(versions) != 1 || versions[0].Content != "v1 内容" {
		t.Errorf("versions = %+v", versions)
	}
}

func TestSyncFilesTool(t *testing.T) {
	deps := newToolDeps(t)
	ctx := context.Background()

	create := NewCreateWorkflowTool(deps.mgr)
	result, err := create.Handle(ctx, callReq(map[string]any{
		"template":    "standard",
		"title":       "支付",
		"description": "支付模块",
	}))
	if err != nil {
		t.Fatalf("workflow_create error: %v", err)
	}
	var created workspace.CreateResult
	decodeResult(t, result, &created)

	tool := NewSyncFilesTool(deps.proj)
	result, err = tool.Handle(ctx, callReq(nil))
	if err != nil {
		t.Fatalf("files_sync error: %v", err)
	}
	var sync project.SyncResult
	decodeResult(t, result, &sync)
	if sync.Workflows != 1 || sync.Files == 0 {
		t.Errorf("sync = %+v", sync)
	}

	if _, err := os.Stat(filepath.Join(project.SpecsDir(deps.root), created.RootID, "README.md")); err != nil {
		t.Errorf("projection index missing: %v", err)
	}
}
