// Package store defines the persistence interface for the workflow graph.
package store

import (
	"context"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// Store is the transactional persistence interface over the three graph
// tables: nodes, edges, and the append-only node_versions history.
//
// Read operations return results in deterministic order (creation time,
// then id) so edge tie-breaks are stable across backends.
type Store interface {
	// Nodes
	CreateNode(ctx context.Context, node *model.Node) error
	GetNode(ctx context.Context, id string) (*model.Node, error)
	UpdateNode(ctx context.Context, node *model.Node) error
	DeleteNode(ctx context.Context, id string) error
	AllNodes(ctx context.Context) ([]*model.Node, error)

	// Edges
	CreateEdge(ctx context.Context, edge *model.Edge) error
	DeleteEdge(ctx context.Context, id string) error
	EdgesFrom(ctx context.Context, nodeID string) ([]*model.Edge, error)
	EdgesTo(ctx context.Context, nodeID string) ([]*model.Edge, error)
	AllEdges(ctx context.Context) ([]*model.Edge, error)

	// Versions (append-only; deleted only together with their node)
	AppendVersion(ctx context.Context, v *model.NodeVersion) error
	Versions(ctx context.Context, nodeID string) ([]*model.NodeVersion, error)

	// RunInTransaction runs fn against a Store bound to a single
	// transaction; either every write commits or none does.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
