// Package sqlite implements the store.Store interface backed by a
// workspace-local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements store.Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements store.Store.
var _ store.Store = (*SQLiteStore)(nil)

// New opens (creating if needed) the SQLite database at path, enables
// foreign keys, and runs any pending migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY on concurrent tool calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateNode(ctx context.Context, node *model.Node) error {
	return queryCreateNode(ctx, s.db, node)
}

func (s *SQLiteStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return queryGetNode(ctx, s.db, id)
}

func (s *SQLiteStore) UpdateNode(ctx context.Context, node *model.Node) error {
	return queryUpdateNode(ctx, s.db, node)
}

func (s *SQLiteStore) DeleteNode(ctx context.Context, id string) error {
	return queryDeleteNode(ctx, s.db, id)
}

func (s *SQLiteStore) AllNodes(ctx context.Context) ([]*model.Node, error) {
	return queryAllNodes(ctx, s.db)
}

func (s *SQLiteStore) CreateEdge(ctx context.Context, edge *model.Edge) error {
	return queryCreateEdge(ctx, s.db, edge)
}

func (s *SQLiteStore) DeleteEdge(ctx context.Context, id string) error {
	return queryDeleteEdge(ctx, s.db, id)
}

func (s *SQLiteStore) EdgesFrom(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.db, "source", nodeID)
}

func (s *SQLiteStore) EdgesTo(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.db, "target", nodeID)
}

func (s *SQLiteStore) AllEdges(ctx context.Context) ([]*model.Edge, error) {
	return queryAllEdges(ctx, s.db)
}

func (s *SQLiteStore) AppendVersion(ctx context.Context, v *model.NodeVersion) error {
	return queryAppendVersion(ctx, s.db, v)
}

func (s *SQLiteStore) Versions(ctx context.Context, nodeID string) ([]*model.NodeVersion, error) {
	return queryVersions(ctx, s.db, nodeID)
}

// RunInTransaction begins a transaction, creates a txStore that delegates
// to it, calls fn, and commits on success or rolls back on error.
func (s *SQLiteStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateNode(ctx context.Context, node *model.Node) error {
	return queryCreateNode(ctx, s.tx, node)
}

func (s *txStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return queryGetNode(ctx, s.tx, id)
}

func (s *txStore) UpdateNode(ctx context.Context, node *model.Node) error {
	return queryUpdateNode(ctx, s.tx, node)
}

func (s *txStore) DeleteNode(ctx context.Context, id string) error {
	return queryDeleteNode(ctx, s.tx, id)
}

func (s *txStore) AllNodes(ctx context.Context) ([]*model.Node, error) {
	return queryAllNodes(ctx, s.tx)
}

func (s *txStore) CreateEdge(ctx context.Context, edge *model.Edge) error {
	return queryCreateEdge(ctx, s.tx, edge)
}

func (s *txStore) DeleteEdge(ctx context.Context, id string) error {
	return queryDeleteEdge(ctx, s.tx, id)
}

func (s *txStore) EdgesFrom(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.tx, "source", nodeID)
}

func (s *txStore) EdgesTo(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.tx, "target", nodeID)
}

func (s *txStore) AllEdges(ctx context.Context) ([]*model.Edge, error) {
	return queryAllEdges(ctx, s.tx)
}

func (s *txStore) AppendVersion(ctx context.Context, v *model.NodeVersion) error {
	return queryAppendVersion(ctx, s.tx, v)
}

func (s *txStore) Versions(ctx context.Context, nodeID string) ([]*model.NodeVersion, error) {
	return queryVersions(ctx, s.tx, nodeID)
}

// RunInTransaction on a txStore reuses the already-open transaction;
// nesting is flattened rather than creating savepoints.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
