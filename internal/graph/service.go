// Package graph implements the graph store service: node and edge CRUD
// with draft semantics, deterministic successor lookup, and the cycle-safe
// ancestor walk every other component routes ancestor queries through.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/specgraph/internal/events"
	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/idgen"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
)

// Service wraps a store.Store with the graph-level semantics: id
// generation, draft-vs-finalized creation, and guarded traversals.
type Service struct {
	store store.Store
	rules *flow.Table
	pub   events.Publisher
}

// NewService constructs a graph service. pub may be a NoopPublisher.
func NewService(st store.Store, rules *flow.Table, pub events.Publisher) *Service {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Service{store: st, rules: rules, pub: pub}
}

// Store exposes the underlying store for callers that need raw access,
// e.g. the snapshot exporter.
func (s *Service) Store() store.Store {
	return s.store
}

// NewNode describes a node to create. ID is optional; when empty an id is
// generated from the type's prefix.
type NewNode struct {
	ID       string
	Type     model.NodeType
	Label    string
	Content  string
	Position model.Position
	Metadata map[string]any

	// AsDraft forces draft state even when Content is supplied.
	AsDraft bool
	// Source tags the draft provenance; defaults to manual_created.
	Source model.DraftSource
}

// CreateNode creates a node. When Content is supplied and AsDraft is
// false, the node starts finalized at version 1 with a matching version
// row; otherwise it starts as a draft holding Content in the draft area.
func (s *Service) CreateNode(ctx context.Context, in NewNode) (*model.Node, error) {
	if !in.Type.IsValid() {
		return nil, &model.ValidationError{Field: "type", Reason: "node type is required"}
	}

	id := in.ID
	if id == "" {
		var err error
		id, err = idgen.Node(s.rules.IDPrefix(in.Type))
		if err != nil {
			return nil, err
		}
	}

	source := in.Source
	if source == "" {
		source = model.SourceManualCreated
	}

	now := time.Now().UTC()
	node := &model.Node{
		ID:        id,
		Type:      in.Type,
		Label:     in.Label,
		Metadata:  in.Metadata,
		Position:  in.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	finalized := in.Content != "" && !in.AsDraft
	if finalized {
		node.Content = in.Content
		node.CurrentVersion = 1
		node.IsDraft = false
	} else {
		node.IsDraft = true
		if in.Content != "" {
			content := in.Content
			node.DraftContent = &content
			node.DraftSource = source
			node.DraftUpdatedAt = &now
		}
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateNode(ctx, node); err != nil {
			return err
		}
		if finalized {
			return tx.AppendVersion(ctx, &model.NodeVersion{
				NodeID:            node.ID,
				Version:           1,
				Content:           node.Content,
				Source:            source,
				ChangeDescription: "initial version",
				CreatedAt:         now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.pub.Publish(ctx, events.TopicNodeCreated, events.NodeCreated{Node: node})
	return node, nil
}

// GetNode fetches a node by id.
func (s *Service) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return s.store.GetNode(ctx, id)
}

// NodeUpdate is a partial update; nil fields are left unchanged.
type NodeUpdate struct {
	Label    *string
	Metadata map[string]any
	Position *model.Position
}

// UpdateNode applies a partial update to mutable non-content fields.
// Content changes go through the draft lifecycle, never through here.
func (s *Service) UpdateNode(ctx context.Context, id string, upd NodeUpdate) (*model.Node, error) {
	var node *model.Node
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		node, err = tx.GetNode(ctx, id)
		if err != nil {
			return err
		}
		if upd.Label != nil {
			node.Label = *upd.Label
		}
		if upd.Metadata != nil {
			if node.Metadata == nil {
				node.Metadata = map[string]any{}
			}
			for k, v := range upd.Metadata {
				node.Metadata[k] = v
			}
		}
		if upd.Position != nil {
			node.Position = *upd.Position
		}
		node.UpdatedAt = time.Now().UTC()
		return tx.UpdateNode(ctx, node)
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteNode removes a node; its version rows cascade with it.
func (s *Service) DeleteNode(ctx context.Context, id string) error {
	return s.store.DeleteNode(ctx, id)
}

// AllNodes lists every node ordered by creation time, then id.
func (s *Service) AllNodes(ctx context.Context) ([]*model.Node, error) {
	return s.store.AllNodes(ctx)
}

// AllEdges lists every edge ordered by creation time, then id.
func (s *Service) AllEdges(ctx context.Context) ([]*model.Edge, error) {
	return s.store.AllEdges(ctx)
}

// NewEdge describes an edge to create. ID is optional.
type NewEdge struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Label        string
	Type         model.EdgeType
	Animated     bool
}

// CreateEdge creates an edge between two existing nodes.
func (s *Service) CreateEdge(ctx context.Context, in NewEdge) (*model.Edge, error) {
	if !in.Type.IsValid() {
		return nil, &model.ValidationError{Field: "edge_type", Reason: fmt.Sprintf("unknown edge type %q", in.Type)}
	}

	id := in.ID
	if id == "" {
		var err error
		id, err = idgen.Edge()
		if err != nil {
			return nil, err
		}
	}

	edge := &model.Edge{
		ID:           id,
		Source:       in.Source,
		Target:       in.Target,
		SourceHandle: defaultHandle(in.SourceHandle, "right"),
		TargetHandle: defaultHandle(in.TargetHandle, "left"),
		Label:        in.Label,
		Type:         in.Type,
		Animated:     in.Animated,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetNode(ctx, in.Source); err != nil {
			return err
		}
		if in.Target != in.Source {
			if _, err := tx.GetNode(ctx, in.Target); err != nil {
				return err
			}
		}
		return tx.CreateEdge(ctx, edge)
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// DeleteEdge removes an edge by id.
func (s *Service) DeleteEdge(ctx context.Context, id string) error {
	return s.store.DeleteEdge(ctx, id)
}

// EdgesFrom lists outgoing edges of a node.
func (s *Service) EdgesFrom(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return s.store.EdgesFrom(ctx, nodeID)
}

// EdgesTo lists incoming edges of a node.
func (s *Service) EdgesTo(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return s.store.EdgesTo(ctx, nodeID)
}

// NextNode returns the target of the node's first outgoing edge of type
// "next". Edges are ordered by creation time then id, so the pick is
// deterministic when several next-edges exist. Returns (nil, nil) when
// the node has no next-edge.
func (s *Service) NextNode(ctx context.Context, id string) (*model.Node, error) {
	edges, err := s.store.EdgesFrom(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.Type == model.EdgeNext && !e.SelfLoop() {
			return s.store.GetNode(ctx, e.Target)
		}
	}
	return nil, nil
}

// ParentNodes walks backward along incoming edges, skipping self-edges
// and tracking visited ids so any cycle terminates. Results are ordered
// nearest ancestor first. With recursive=false only direct parents are
// returned.
func (s *Service) ParentNodes(ctx context.Context, id string, recursive bool) ([]*model.Node, error) {
	visited := map[string]bool{id: true}
	var parents []*model.Node

	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, nodeID := range frontier {
			edges, err := s.store.EdgesTo(ctx, nodeID)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if e.SelfLoop() || visited[e.Source] {
					continue
				}
				visited[e.Source] = true
				parent, err := s.store.GetNode(ctx, e.Source)
				if err != nil {
					// An edge may reference a node deleted out from
					// under it; skip rather than fail the walk.
					continue
				}
				parents = append(parents, parent)
				next = append(next, e.Source)
			}
		}
		if !recursive {
			break
		}
		frontier = next
	}
	return parents, nil
}

// Closure returns the node ids reachable from root by following outgoing
// edges, de-duplicated, root included. Used for workflow deletes.
func (s *Service) Closure(ctx context.Context, rootID string) ([]string, error) {
	visited := map[string]bool{rootID: true}
	order := []string{rootID}

	frontier := []string{rootID}
	for len(frontier) > 0 {
		var next []string
		for _, nodeID := range frontier {
			edges, err := s.store.EdgesFrom(ctx, nodeID)
			if err != nil {
				return nil, err
			}
			for _, e := range edges {
				if visited[e.Target] {
					continue
				}
				visited[e.Target] = true
				order = append(order, e.Target)
				next = append(next, e.Target)
			}
		}
		frontier = next
	}
	return order, nil
}

// Versions lists a node's append-only version history, oldest first.
func (s *Service) Versions(ctx context.Context, nodeID string) ([]*model.NodeVersion, error) {
	if _, err := s.store.GetNode(ctx, nodeID); err != nil {
		return nil, err
	}
	return s.store.Versions(ctx, nodeID)
}

func defaultHandle(h, fallback string) string {
	if strings.TrimSpace(h) == "" {
		return fallback
	}
	return h
}
