package graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("opening sqlite store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st, flow.NewTable(), nil)
}

func TestCreateNodeDraft(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{
		Type:    model.TypeRequirement,
		Label:   "Login feature",
		Content: "seed draft",
		AsDraft: true,
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if !node.IsDraft || node.CurrentVersion != 0 || node.Content != "" {
		t.Errorf("want untouched draft, got %+v", node)
	}
	if node.DraftContent == nil || *node.DraftContent != "seed draft" {
		t.Errorf("DraftContent = %v", node.DraftContent)
	}
	if node.DraftSource != model.SourceManualCreated {
		t.Errorf("DraftSource = %q, want manual_created", node.DraftSource)
	}
	if node.ID[:4] != "req_" {
		t.Errorf("id %q should carry the req_ prefix", node.ID)
	}
}

func TestCreateNodeFinalized(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{
		Type:    model.TypeBugReport,
		Label:   "Crash on save",
		Content: "steps to reproduce",
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if node.IsDraft || node.CurrentVersion != 1 || node.Content != "steps to reproduce" {
		t.Errorf("want finalized v1, got %+v", node)
	}

	versions, err := s.Versions(ctx, node.ID)
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}
	if len(versions) != 1 || versions[0].Version != 1 || versions[0].Content != "steps to reproduce" {
		t.Errorf("version history wrong: %+v", versions)
	}
}

func TestCreateNodeEmptyContentIsDraft(t *testing.T) {
	s := newTestService(t)

	node, err := s.CreateNode(context.Background(), NewNode{
		Type:  model.TypeDesign,
		Label: "no body yet",
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if !node.IsDraft || node.CurrentVersion != 0 {
		t.Errorf("empty-content node should be a draft: %+v", node)
	}
}

func TestCreateNodeUnknownTypeAllowed(t *testing.T) {
	// Node types are extensible; unknown types fall back to the generic prefix.
	s := newTestService(t)

	node, err := s.CreateNode(context.Background(), NewNode{
		Type:  model.NodeType("retrospective"),
		Label: "sprint retro",
	})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if node.ID[:5] != "node_" {
		t.Errorf("id %q should carry the generic node_ prefix", node.ID)
	}
}

func TestUpdateDraftThenFinalizeRoundTrip(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{Type: model.TypeDesign, Label: "d"})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	if _, err := s.UpdateDraft(ctx, node.ID, "X", ""); err != nil {
		t.Fatalf("UpdateDraft() error: %v", err)
	}
	final, err := s.Finalize(ctx, node.ID, "first pass")
	if err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if final.Content != "X" || final.CurrentVersion != 1 || final.IsDraft {
		t.Errorf("finalized node = %+v", final)
	}
	if final.DraftContent != nil || final.DraftSource != "" || final.DraftBasedOnVersion != nil || final.DraftUpdatedAt != nil {
		t.Errorf("draft area not cleared: %+v", final)
	}

	versions, err := s.Versions(ctx, node.ID)
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}
	if len(versions) != 1 || versions[0].Content != "X" || versions[0].ChangeDescription != "first pass" {
		t.Errorf("versions = %+v", versions)
	}
}

func TestDraftSourceInference(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{Type: model.TypeRequirement, Label: "r"})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	// Draft on a never-finalized node is manual_created.
	got, err := s.UpdateDraft(ctx, node.ID, "v1 body", "")
	if err != nil {
		t.Fatalf("UpdateDraft() error: %v", err)
	}
	if got.DraftSource != model.SourceManualCreated {
		t.Errorf("DraftSource = %q, want manual_created", got.DraftSource)
	}
	if got.DraftBasedOnVersion != nil {
		t.Errorf("DraftBasedOnVersion = %v, want nil before first finalize", got.DraftBasedOnVersion)
	}

	if _, err := s.Finalize(ctx, node.ID, ""); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	// Draft on a finalized node is manual_modified, based on v1.
	got, err = s.UpdateDraft(ctx, node.ID, "v2 body", "")
	if err != nil {
		t.Fatalf("UpdateDraft() error: %v", err)
	}
	if got.DraftSource != model.SourceManualModified {
		t.Errorf("DraftSource = %q, want manual_modified", got.DraftSource)
	}
	if got.DraftBasedOnVersion == nil || *got.DraftBasedOnVersion != 1 {
		t.Errorf("DraftBasedOnVersion = %v, want 1", got.DraftBasedOnVersion)
	}

	// Explicit source wins over inference.
	got, err = s.UpdateDraft(ctx, node.ID, "ai body", model.SourceAIModified)
	if err != nil {
		t.Fatalf("UpdateDraft() error: %v", err)
	}
	if got.DraftSource != model.SourceAIModified {
		t.Errorf("DraftSource = %q, want ai_modified", got.DraftSource)
	}
}

func TestFinalizeWithoutDraft(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{Type: model.TypeTest, Label: "t", Content: "final"})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	_, err = s.Finalize(ctx, node.ID, "")
	if !errors.Is(err, model.ErrInvalidOperation) {
		t.Errorf("Finalize() without draft = %v, want ErrInvalidOperation", err)
	}
}

func TestVersionMonotonicity(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	node, err := s.CreateNode(ctx, NewNode{Type: model.TypeImplementation, Label: "i"})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}

	for i := 1; i <= 4; i++ {
		if _, err := s.UpdateDraft(ctx, node.ID, "body", ""); err != nil {
			t.Fatalf("UpdateDraft(%d) error: %v", i, err)
		}
		if _, err := s.Finalize(ctx, node.ID, ""); err != nil {
			t.Fatalf("Finalize(%d) error: %v", i, err)
		}
	}

	versions, err := s.Versions(ctx, node.ID)
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}
	if len(versions) != 4 {
		t.Fatalf("got %d versions, want 4", len(versions))
	}
	for i, v := range versions {
		if v.Version != i+1 {
			t.Errorf("versions[%d].Version = %d, want %d", i, v.Version, i+1)
		}
	}
}

func makeEdge(t *testing.T, s *Service, source, target string, typ model.EdgeType) {
	t.Helper()
	if _, err := s.CreateEdge(context.Background(), NewEdge{Source: source, Target: target, Type: typ}); err != nil {
		t.Fatalf("CreateEdge(%s→%s) error: %v", source, target, err)
	}
}

func makeNode(t *testing.T, s *Service, id string, typ model.NodeType, content string) {
	t.Helper()
	if _, err := s.CreateNode(context.Background(), NewNode{ID: id, Type: typ, Label: id, Content: content}); err != nil {
		t.Fatalf("CreateNode(%s) error: %v", id, err)
	}
}

func TestParentNodesCycleSafety(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// A → B → C → A plus a self-edge on C.
	makeNode(t, s, "a", model.TypeRequirement, "ra")
	makeNode(t, s, "b", model.TypeDesign, "db")
	makeNode(t, s, "c", model.TypeImplementation, "ic")
	makeEdge(t, s, "a", "b", model.EdgeNext)
	makeEdge(t, s, "b", "c", model.EdgeNext)
	makeEdge(t, s, "c", "a", model.EdgeReference)
	makeEdge(t, s, "c", "c", model.EdgeReference)

	parents, err := s.ParentNodes(ctx, "c", true)
	if err != nil {
		t.Fatalf("ParentNodes() error: %v", err)
	}
	if len(parents) != 2 {
		t.Fatalf("got %d parents, want 2 (b then a)", len(parents))
	}
	if parents[0].ID != "b" || parents[1].ID != "a" {
		t.Errorf("parents = [%s %s], want [b a]", parents[0].ID, parents[1].ID)
	}
}

func TestParentNodesDirect(t *testing.T) {
	s := newTestService(t)

	makeNode(t, s, "root", model.TypeAggregate, "")
	makeNode(t, s, "mid", model.TypeRequirement, "")
	makeNode(t, s, "leaf", model.TypeDesign, "")
	makeEdge(t, s, "root", "mid", model.EdgeNext)
	makeEdge(t, s, "mid", "leaf", model.EdgeNext)

	parents, err := s.ParentNodes(context.Background(), "leaf", false)
	if err != nil {
		t.Fatalf("ParentNodes() error: %v", err)
	}
	if len(parents) != 1 || parents[0].ID != "mid" {
		t.Errorf("direct parents = %+v, want [mid]", parents)
	}
}

func TestNextNodeDeterministic(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	makeNode(t, s, "p", model.TypeRequirement, "body")
	makeNode(t, s, "q1", model.TypeDesign, "")
	makeNode(t, s, "q2", model.TypeDesign, "")

	// Reference edge first: must be ignored by NextNode.
	makeEdge(t, s, "p", "q2", model.EdgeReference)
	makeEdge(t, s, "p", "q1", model.EdgeNext)
	makeEdge(t, s, "p", "q2", model.EdgeNext)

	for i := 0; i < 3; i++ {
		next, err := s.NextNode(ctx, "p")
		if err != nil {
			t.Fatalf("NextNode() error: %v", err)
		}
		if next == nil || next.ID != "q1" {
			t.Fatalf("NextNode() = %v, want q1 every time", next)
		}
	}

	none, err := s.NextNode(ctx, "q1")
	if err != nil {
		t.Fatalf("NextNode(leaf) error: %v", err)
	}
	if none != nil {
		t.Errorf("NextNode(leaf) = %+v, want nil", none)
	}
}

func TestClosure(t *testing.T) {
	s := newTestService(t)

	makeNode(t, s, "r", model.TypeAggregate, "")
	makeNode(t, s, "x", model.TypeRequirement, "")
	makeNode(t, s, "y", model.TypeDesign, "")
	makeNode(t, s, "island", model.TypeBugReport, "")
	makeEdge(t, s, "r", "x", model.EdgeContain)
	makeEdge(t, s, "x", "y", model.EdgeNext)
	makeEdge(t, s, "y", "x", model.EdgeReference) // cycle back

	closure, err := s.Closure(context.Background(), "r")
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	if len(closure) != 3 {
		t.Fatalf("closure = %v, want 3 nodes without island", closure)
	}
	for _, id := range closure {
		if id == "island" {
			t.Error("island must not be in closure")
		}
	}
}

func TestUpdateNodePartial(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	makeNode(t, s, "n", model.TypeDesign, "body")

	label := "renamed"
	got, err := s.UpdateNode(ctx, "n", NodeUpdate{
		Label:    &label,
		Metadata: map[string]any{"reviewed": true},
	})
	if err != nil {
		t.Fatalf("UpdateNode() error: %v", err)
	}
	if got.Label != "renamed" || got.Metadata["reviewed"] != true {
		t.Errorf("updated node = %+v", got)
	}
	// Content untouched by partial update.
	if got.Content != "body" || got.CurrentVersion != 1 {
		t.Errorf("content changed by partial update: %+v", got)
	}
}
