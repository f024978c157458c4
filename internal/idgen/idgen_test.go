package idgen

import (
	"strings"
	"testing"
)

func TestNode(t *testing.T) {
	id, err := Node("req")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("id %q missing req_ prefix", id)
	}
	if len(id) != len("req_")+Length {
		t.Errorf("id %q has wrong length", id)
	}
}

func TestNode_EmptyPrefix(t *testing.T) {
	id, err := Node("")
	if err != nil {
		t.Fatalf("Node: %v", err)
	}
	if !strings.HasPrefix(id, "node_") {
		t.Errorf("id %q missing node_ fallback prefix", id)
	}
}

func TestEdge_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := Edge()
		if err != nil {
			t.Fatalf("Edge: %v", err)
		}
		if !strings.HasPrefix(id, "edge_") {
			t.Fatalf("id %q missing edge_ prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
