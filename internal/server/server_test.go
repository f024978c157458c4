package server

import (
	"context"
	"testing"

	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
)

func TestOpenWiresRuntime(t *testing.T) {
	root := t.TempDir()

	rt, err := Open(root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rt.Close()

	if rt.Config.Store.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", rt.Config.Store.Backend)
	}

	// The runtime must be usable end to end out of the box.
	ctx := context.Background()
	node, err := rt.Graph.CreateNode(ctx, graph.NewNode{Type: model.TypeRequirement, Label: "r", Content: "需求"})
	if err != nil {
		t.Fatalf("CreateNode() error: %v", err)
	}
	if _, err := rt.Engine.OnNodeFinalized(ctx, node.ID, false); err != nil {
		t.Fatalf("OnNodeFinalized() error: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	root := t.TempDir()

	for i := 0; i < 2; i++ {
		rt, err := Open(root)
		if err != nil {
			t.Fatalf("Open() #%d error: %v", i+1, err)
		}
		rt.Close()
	}
}

func TestNewRegistersServer(t *testing.T) {
	s, cleanup, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer cleanup()
	if s == nil {
		t.Fatal("New() returned nil server")
	}
}
