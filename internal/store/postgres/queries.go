package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// executor is satisfied by both *sql.DB and *sql.Tx so the query
// functions can serve the store and its transaction wrapper alike.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const nodeColumns = `id, type, label, content, metadata, pos_x, pos_y,
	current_version, is_draft, draft_content, draft_source,
	draft_based_on_version, draft_updated_at, created_at, updated_at`

const edgeColumns = `id, source, target, source_handle, target_handle,
	label, edge_type, animated, created_at`

const versionColumns = `id, node_id, version, content, source,
	based_on_version, change_description, created_at`

func queryCreateNode(ctx context.Context, ex executor, node *model.Node) error {
	meta, err := marshalMetadata(node.Metadata)
	if err != nil {
		return err
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		node.ID, string(node.Type), node.Label, node.Content, meta,
		node.Position.X, node.Position.Y,
		node.CurrentVersion, node.IsDraft,
		node.DraftContent, nullDraftSource(node.DraftSource),
		node.DraftBasedOnVersion, node.DraftUpdatedAt,
		node.CreatedAt, node.UpdatedAt)
	if isUniqueViolation(err) {
		return &model.ConflictError{Kind: "node", ID: node.ID}
	}
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	return nil
}

func queryGetNode(ctx context.Context, ex executor, id string) (*model.Node, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &model.NotFoundError{Kind: "node", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}
	return node, nil
}

func queryUpdateNode(ctx context.Context, ex executor, node *model.Node) error {
	meta, err := marshalMetadata(node.Metadata)
	if err != nil {
		return err
	}

	res, err := ex.ExecContext(ctx, `
		UPDATE nodes SET
			type = $1, label = $2, content = $3, metadata = $4,
			pos_x = $5, pos_y = $6, current_version = $7, is_draft = $8,
			draft_content = $9, draft_source = $10,
			draft_based_on_version = $11, draft_updated_at = $12,
			updated_at = $13
		WHERE id = $14`,
		string(node.Type), node.Label, node.Content, meta,
		node.Position.X, node.Position.Y,
		node.CurrentVersion, node.IsDraft,
		node.DraftContent, nullDraftSource(node.DraftSource),
		node.DraftBasedOnVersion, node.DraftUpdatedAt,
		node.UpdatedAt, node.ID)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &model.NotFoundError{Kind: "node", ID: node.ID}
	}
	return nil
}

func queryDeleteNode(ctx context.Context, ex executor, id string) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &model.NotFoundError{Kind: "node", ID: id}
	}
	return nil
}

func queryAllNodes(ctx context.Context, ex executor) ([]*model.Node, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*model.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func queryCreateEdge(ctx context.Context, ex executor, edge *model.Edge) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		edge.ID, edge.Source, edge.Target,
		edge.SourceHandle, edge.TargetHandle,
		edge.Label, string(edge.Type), edge.Animated, edge.CreatedAt)
	if isUniqueViolation(err) {
		return &model.ConflictError{Kind: "edge", ID: edge.ID}
	}
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

func queryDeleteEdge(ctx context.Context, ex executor, id string) error {
	res, err := ex.ExecContext(ctx, `DELETE FROM edges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &model.NotFoundError{Kind: "edge", ID: id}
	}
	return nil
}

// queryEdges lists edges by one endpoint column, either "source" or
// "target". The column name is interpolated, never caller data.
func queryEdges(ctx context.Context, ex executor, column, nodeID string) ([]*model.Edge, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges
		WHERE `+column+` = $1 ORDER BY created_at, id`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list edges by %s: %w", column, err)
	}
	defer rows.Close()
	return collectEdges(rows)
}

func queryAllEdges(ctx context.Context, ex executor) ([]*model.Edge, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT `+edgeColumns+` FROM edges ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()
	return collectEdges(rows)
}

func queryAppendVersion(ctx context.Context, ex executor, v *model.NodeVersion) error {
	err := ex.QueryRowContext(ctx, `
		INSERT INTO node_versions
			(node_id, version, content, source, based_on_version,
			 change_description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		v.NodeID, v.Version, v.Content, string(v.Source),
		v.BasedOnVersion, v.ChangeDescription, v.CreatedAt).Scan(&v.ID)
	if isUniqueViolation(err) {
		return &model.ConflictError{Kind: "version", ID: fmt.Sprintf("%s@v%d", v.NodeID, v.Version)}
	}
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func queryVersions(ctx context.Context, ex executor, nodeID string) ([]*model.NodeVersion, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT `+versionColumns+` FROM node_versions
		WHERE node_id = $1 ORDER BY version`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []*model.NodeVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func marshalMetadata(meta map[string]any) ([]byte, error) {
	if len(meta) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return raw, nil
}

func nullDraftSource(s model.DraftSource) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(s), Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
