// Package postgres implements the store.Store interface backed by
// PostgreSQL, for shared-server deployments where several agents work
// against one graph.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateNode(ctx context.Context, node *model.Node) error {
	return queryCreateNode(ctx, s.db, node)
}

func (s *PostgresStore) GetNode(ctx context.Context, id string) (*model.Node, error) {
	return queryGetNode(ctx, s.db, id)
}

func (s *PostgresStore) UpdateNode(ctx context.Context, node *model.Node) error {
	return queryUpdateNode(ctx, s.db, node)
}

func (s *PostgresStore) DeleteNode(ctx context.Context, id string) error {
	return queryDeleteNode(ctx, s.db, id)
}

func (s *PostgresStore) AllNodes(ctx context.Context) ([]*model.Node, error) {
	return queryAllNodes(ctx, s.db)
}

func (s *PostgresStore) CreateEdge(ctx context.Context, edge *model.Edge) error {
	return queryCreateEdge(ctx, s.db, edge)
}

func (s *PostgresStore) DeleteEdge(ctx context.Context, id string) error {
	return queryDeleteEdge(ctx, s.db, id)
}

func (s *PostgresStore) EdgesFrom(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.db, "source", nodeID)
}

func (s *PostgresStore) EdgesTo(ctx context.Context, nodeID string) ([]*model.Edge, error) {
	return queryEdges(ctx, s.db, "target", nodeID)
}

func (s *PostgresStore) AllEdges(ctx context.Context) ([]*model.Edge, error) {
	return queryAllEdges(ctx, s.db)
}

func (s *PostgresStore) AppendVersion(ctx context.Context, v *model.NodeVersion) error {
	return queryAppendVersion(ctx, s.db, v)
}

func (s *PostgresStore) Versions(ctx context.Context, nodeID string) ([]*model.NodeVersion, error) {
	return queryVersions(ctx, s.db, nodeID)
}

// RunInTransaction begins a transaction, creates a txStore that delegates
// to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
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

func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
