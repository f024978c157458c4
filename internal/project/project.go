// Package project mirrors graph state into a human-readable file tree
// under docs/specs. The projection is a pure function of the graph: it
// can be deleted and regenerated at any time without losing data.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

// Projector writes the docs/specs tree for a workspace.
type Projector struct {
	graph *graph.Service
	mgr   *workspace.Manager
	root  string
}

// NewProjector constructs a projector rooted at the workspace directory.
func NewProjector(g *graph.Service, mgr *workspace.Manager, workspaceRoot string) *Projector {
	return &Projector{graph: g, mgr: mgr, root: workspaceRoot}
}

// SyncResult reports what a projection pass wrote.
type SyncResult struct {
	Workflows int `json:"workflows"`
	Files     int `json:"files"`
}

// SpecsDir returns the projection root for a workspace.
func SpecsDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, "docs", "specs")
}

// Sync regenerates the projection: one directory per workflow root, one
// markdown file per pipeline stage, plus a README.md index. Directories
// of deleted workflows are removed.
func (p *Projector) Sync(ctx context.Context) (*SyncResult, error) {
	summaries, err := p.mgr.ListAllWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	specsDir := SpecsDir(p.root)
	if err := os.MkdirAll(specsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating specs dir: %w", err)
	}

	live := map[string]bool{}
	result := &SyncResult{}
	for _, summary := range summaries {
		live[summary.RootID] = true
		files, err := p.syncWorkflow(ctx, summary)
		if err != nil {
			return nil, err
		}
		result.Workflows++
		result.Files += files
	}

	// Drop directories whose workflow no longer exists.
	entries, err := os.ReadDir(specsDir)
	if err != nil {
		return nil, fmt.Errorf("reading specs dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && !live[e.Name()] {
			if err := os.RemoveAll(filepath.Join(specsDir, e.Name())); err != nil {
				return nil, fmt.Errorf("removing stale projection %s: %w", e.Name(), err)
			}
		}
	}

	return result, nil
}

func (p *Projector) syncWorkflow(ctx context.Context, summary *model.WorkflowSummary) (int, error) {
	dir := filepath.Join(SpecsDir(p.root), summary.RootID)
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("clearing projection dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating projection dir: %w", err)
	}

	closure, err := p.graph.Closure(ctx, summary.RootID)
	if err != nil {
		return 0, err
	}

	var nodes []*model.Node
	for _, id := range closure {
		node, err := p.graph.GetNode(ctx, id)
		if err != nil {
			continue
		}
		nodes = append(nodes, node)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})

	files := 0
	seenType := map[model.NodeType]bool{}
	for _, node := range nodes {
		name := string(node.Type) + ".md"
		if seenType[node.Type] {
			// A second node of the same type keeps its id in the name.
			name = string(node.Type) + "_" + node.ID + ".md"
		}
		seenType[node.Type] = true

		if err := os.WriteFile(filepath.Join(dir, name), []byte(renderNode(node)), 0o644); err != nil {
			return 0, fmt.Errorf("writing %s: %w", name, err)
		}
		files++
	}

	index := renderIndex(summary, nodes)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(index), 0o644); err != nil {
		return 0, fmt.Errorf("writing index: %w", err)
	}
	return files + 1, nil
}

func renderNode(node *model.Node) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "id: %s\n", node.ID)
	fmt.Fprintf(&b, "type: %s\n", node.Type)
	fmt.Fprintf(&b, "title: %s\n", node.Label)
	fmt.Fprintf(&b, "status: %s\n", node.Status())
	fmt.Fprintf(&b, "version: %d\n", node.CurrentVersion)
	fmt.Fprintf(&b, "created: %s\n", node.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "updated: %s\n", node.UpdatedAt.Format(time.RFC3339))
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", node.Label)
	if node.Content != "" {
		b.WriteString(node.Content)
		b.WriteString("\n")
	} else {
		b.WriteString("_尚未定稿_\n")
	}
	return b.String()
}

func renderIndex(summary *model.WorkflowSummary, nodes []*model.Node) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", summary.Title)
	fmt.Fprintf(&b, "- 模板: %s\n", summary.Template)
	fmt.Fprintf(&b, "- 根节点: %s\n", summary.RootID)
	fmt.Fprintf(&b, "- 节点: %d（已定稿 %d）\n\n", len(nodes), countFinalized(nodes))
	b.WriteString("| 阶段 | 标题 | 状态 | 版本 |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, node := range nodes {
		marker := "草稿"
		if node.Finalized() && !node.IsDraft {
			marker = "已定稿"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | v%d |\n", node.Type, node.Label, marker, node.CurrentVersion)
	}
	return b.String()
}

func countFinalized(nodes []*model.Node) int {
	n := 0
	for _, node := range nodes {
		if node.Finalized() {
			n++
		}
	}
	return n
}
