package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanNode(row scannable) (*model.Node, error) {
	var (
		node        model.Node
		meta        []byte
		draftBody   sql.NullString
		draftSource sql.NullString
		draftBase   sql.NullInt64
		draftAt     sql.NullTime
	)
	err := row.Scan(
		&node.ID, &node.Type, &node.Label, &node.Content, &meta,
		&node.Position.X, &node.Position.Y,
		&node.CurrentVersion, &node.IsDraft,
		&draftBody, &draftSource, &draftBase, &draftAt,
		&node.CreatedAt, &node.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &node.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", node.ID, err)
		}
	}
	if draftBody.Valid {
		node.DraftContent = &draftBody.String
	}
	if draftSource.Valid {
		node.DraftSource = model.DraftSource(draftSource.String)
	}
	if draftBase.Valid {
		v := int(draftBase.Int64)
		node.DraftBasedOnVersion = &v
	}
	if draftAt.Valid {
		t := draftAt.Time
		node.DraftUpdatedAt = &t
	}
	return &node, nil
}

func scanEdge(row scannable) (*model.Edge, error) {
	var edge model.Edge
	err := row.Scan(
		&edge.ID, &edge.Source, &edge.Target,
		&edge.SourceHandle, &edge.TargetHandle,
		&edge.Label, &edge.Type, &edge.Animated, &edge.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func collectEdges(rows *sql.Rows) ([]*model.Edge, error) {
	var edges []*model.Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

func scanVersion(row scannable) (*model.NodeVersion, error) {
	var (
		v      model.NodeVersion
		base   sql.NullInt64
		change sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.NodeID, &v.Version, &v.Content, &v.Source,
		&base, &change, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	if base.Valid {
		b := int(base.Int64)
		v.BasedOnVersion = &b
	}
	if change.Valid {
		v.ChangeDescription = change.String
	}
	return &v, nil
}
