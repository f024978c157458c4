// Package server is the composition root: it wires the store, graph,
// engine, and workspace services and registers every MCP tool on one
// server instance. No business logic lives here.
package server

import (
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alfredjeanlab/specgraph/internal/mcptools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server for the workspace rooted at root, with all
// workflow and node tools registered.
//
// The returned cleanup function closes the store and any publisher
// connection and must be called on shutdown (typically via defer).
func New(root string) (*mcpserver.MCPServer, func(), error) {
	rt, err := Open(root)
	if err != nil {
		return nil, func() {}, err
	}

	s := mcpserver.NewMCPServer(
		"specgraph",
		Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
		mcpserver.WithInstructions(serverInstructions()),
	)

	createTool := mcptools.NewCreateWorkflowTool(rt.Manager)
	s.AddTool(createTool.Definition(), createTool.Handle)

	listTool := mcptools.NewListWorkflowsTool(rt.Manager)
	s.AddTool(listTool.Definition(), listTool.Handle)

	switchTool := mcptools.NewSwitchWorkflowTool(rt.Manager)
	s.AddTool(switchTool.Definition(), switchTool.Handle)

	statusTool := mcptools.NewStatusWorkflowTool(rt.Manager)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	deleteTool := mcptools.NewDeleteWorkflowTool(rt.Manager)
	s.AddTool(deleteTool.Definition(), deleteTool.Handle)

	getTool := mcptools.NewGetNodeTool(rt.Graph)
	s.AddTool(getTool.Definition(), getTool.Handle)

	draftTool := mcptools.NewDraftNodeTool(rt.Graph)
	s.AddTool(draftTool.Definition(), draftTool.Handle)

	finalizeTool := mcptools.NewFinalizeNodeTool(rt.Graph, rt.Engine, rt.Manager)
	s.AddTool(finalizeTool.Definition(), finalizeTool.Handle)

	versionsTool := mcptools.NewVersionsTool(rt.Graph)
	s.AddTool(versionsTool.Definition(), versionsTool.Handle)

	syncTool := mcptools.NewSyncFilesTool(rt.Projector)
	s.AddTool(syncTool.Definition(), syncTool.Handle)

	return s, rt.Close, nil
}

func serverInstructions() string {
	return `specgraph manages spec-driven workflows as a graph of staged nodes.

Typical flow:
1. workflow_create starts a workflow from a template (standard, bugfix, feature) and activates it.
2. workflow_status shows the active workflow's steps with node ids.
3. node_draft writes content onto a step's node; node_finalize commits it as an immutable version.
4. Finalizing a stage auto-creates the next stage as a draft and returns a generation prompt for its content; draft the generated content onto that node and finalize again.
5. files_sync mirrors everything into docs/specs markdown files.

Use workflow_switch to move between workflows like git branches, and node_versions to audit a node's history.`
}
