package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/store/sqlite"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

func newTestProjector(t *testing.T) (*Projector, *workspace.Manager, *graph.Service, string) {
	t.Helper()
	root := t.TempDir()
	st, err := sqlite.New(filepath.Join(root, "graph.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	g := graph.NewService(st, flow.NewTable(), nil)
	mgr := workspace.NewManager(g, workspace.NewContextStore(filepath.Join(root, "context.json")), nil)
	return NewProjector(g, mgr, root), mgr, g, root
}

func TestSyncWritesProjection(t *testing.T) {
	p, mgr, g, root := newTestProjector(t)
	ctx := context.Background()

	res, err := mgr.CreateWorkflow(ctx, flow.TemplateBugfix, "崩溃修复", "保存时崩溃")
	if err != nil {
		t.Fatalf("CreateWorkflow() error: %v", err)
	}
	if _, err := g.Finalize(ctx, res.RootID, ""); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	sync, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if sync.Workflows != 1 || sync.Files != 2 {
		// bug_report.md + README.md
		t.Errorf("sync = %+v, want 1 workflow / 2 files", sync)
	}

	reportPath := filepath.Join(SpecsDir(root), res.RootID, "bug_report.md")
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("reading projection: %v", err)
	}
	content := string(data)
	for _, want := range []string{"id: " + res.RootID, "type: bug_report", "status: finalized", "保存时崩溃"} {
		if !strings.Contains(content, want) {
			t.Errorf("projection missing %q:\n%s", want, content)
		}
	}

	index, err := os.ReadFile(filepath.Join(SpecsDir(root), res.RootID, "README.md"))
	if err != nil {
		t.Fatalf("reading index: %v", err)
	}
	if !strings.Contains(string(index), "崩溃修复") || !strings.Contains(string(index), "已定稿") {
		t.Errorf("index content wrong:\n%s", index)
	}
}

func TestSyncDraftMarker(t *testing.T) {
	p, mgr, _, root := newTestProjector(t)
	ctx := context.Background()

	res, err := mgr.CreateWorkflow(ctx, flow.TemplateFeature, "draft only", "")
	if err != nil {
		t.Fatalf("CreateWorkflow() error: %v", err)
	}
	if _, err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(SpecsDir(root), res.RootID, "requirement.md"))
	if err != nil {
		t.Fatalf("reading projection: %v", err)
	}
	if !strings.Contains(string(data), "status: draft") || !strings.Contains(string(data), "尚未定稿") {
		t.Errorf("draft projection wrong:\n%s", data)
	}
}

func TestSyncRemovesStaleDirs(t *testing.T) {
	p, mgr, _, root := newTestProjector(t)
	ctx := context.Background()

	victim, err := mgr.CreateWorkflow(ctx, flow.TemplateFeature, "victim", "")
	if err != nil {
		t.Fatalf("CreateWorkflow() error: %v", err)
	}
	if _, err := p.Sync(ctx); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	if _, err := mgr.DeleteWorkflow(ctx, victim.RootID, true); err != nil {
		t.Fatalf("DeleteWorkflow() error: %v", err)
	}
	if _, err := p.Sync(ctx); err != nil {
		t.Fatalf("second Sync() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(SpecsDir(root), victim.RootID)); !os.IsNotExist(err) {
		t.Errorf("stale projection dir survived: %v", err)
	}
}

func TestSyncIsRegenerable(t *testing.T) {
	p, mgr, _, root := newTestProjector(t)
	ctx := context.Background()

	if _, err := mgr.CreateWorkflow(ctx, flow.TemplateStandard, "regen", "desc"); err != nil {
		t.Fatalf("CreateWorkflow() error: %v", err)
	}
	first, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}

	// Wipe the tree; a fresh sync rebuilds the same file count.
	if err := os.RemoveAll(SpecsDir(root)); err != nil {
		t.Fatal(err)
	}
	second, err := p.Sync(ctx)
	if err != nil {
		t.Fatalf("regenerating Sync() error: %v", err)
	}
	if second.Files != first.Files || second.Workflows != first.Workflows {
		t.Errorf("regenerated projection differs: %+v vs %+v", second, first)
	}
}
