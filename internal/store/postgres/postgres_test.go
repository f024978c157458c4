package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// nodeRowColumns is the column list for scanNode results.
var nodeRowColumns = []string{
	"id", "type", "label", "content", "metadata", "pos_x", "pos_y",
	"current_version", "is_draft", "draft_content", "draft_source",
	"draft_based_on_version", "draft_updated_at", "created_at", "updated_at",
}

var edgeRowColumns = []string{
	"id", "source", "target", "source_handle", "target_handle",
	"label", "edge_type", "animated", "created_at",
}

func TestQueryGetNode(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(nodeRowColumns).AddRow(
		"req_1", "requirement", "Login - 需求分析", "final body",
		[]byte(`{"auto_created":true}`), 350.0, 0.0,
		2, true, "pending draft", "ai_modified", 2, now, now, now,
	)
	mock.ExpectQuery("SELECT .+ FROM nodes WHERE id = \\$1").
		WithArgs("req_1").WillReturnRows(rows)

	node, err := queryGetNode(context.Background(), db, "req_1")
	if err != nil {
		t.Fatalf("queryGetNode() error: %v", err)
	}
	if node.Type != model.TypeRequirement || node.CurrentVersion != 2 {
		t.Errorf("node = %+v", node)
	}
	if !node.IsDraft || node.DraftContent == nil || *node.DraftContent != "pending draft" {
		t.Errorf("draft fields wrong: %+v", node)
	}
	if node.DraftSource != model.SourceAIModified {
		t.Errorf("DraftSource = %q", node.DraftSource)
	}
	if node.DraftBasedOnVersion == nil || *node.DraftBasedOnVersion != 2 {
		t.Errorf("DraftBasedOnVersion = %v", node.DraftBasedOnVersion)
	}
	if node.Metadata["auto_created"] != true {
		t.Errorf("metadata = %v", node.Metadata)
	}
}

func TestQueryGetNodeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT .+ FROM nodes WHERE id = \\$1").
		WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := queryGetNode(context.Background(), db, "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("queryGetNode(missing) = %v, want ErrNotFound", err)
	}
}

func TestQueryCreateNodeConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO nodes").
		WillReturnError(&pq.Error{Code: "23505"})

	node := &model.Node{
		ID: "req_dup", Type: model.TypeRequirement, Label: "x",
		IsDraft: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	err := queryCreateNode(context.Background(), db, node)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("duplicate queryCreateNode() = %v, want ErrConflict", err)
	}
}

func TestQueryUpdateNodeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE nodes SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	node := &model.Node{ID: "ghost", Type: model.TypeDesign, UpdatedAt: time.Now()}
	err := queryUpdateNode(context.Background(), db, node)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("queryUpdateNode(ghost) = %v, want ErrNotFound", err)
	}
}

func TestQueryEdges(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(edgeRowColumns).
		AddRow("e1", "a", "b", "right", "left", "", "next", false, now).
		AddRow("e2", "a", "c", "right", "left", "", "reference", true, now.Add(time.Second))
	mock.ExpectQuery("SELECT .+ FROM edges\\s+WHERE source = \\$1 ORDER BY created_at, id").
		WithArgs("a").WillReturnRows(rows)

	edges, err := queryEdges(context.Background(), db, "source", "a")
	if err != nil {
		t.Fatalf("queryEdges() error: %v", err)
	}
	if len(edges) != 2 || edges[0].Type != model.EdgeNext || edges[1].Type != model.EdgeReference {
		t.Errorf("edges = %+v", edges)
	}
}

func TestQueryAppendVersion(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("INSERT INTO node_versions").
		WithArgs("req_1", 1, "body", "manual_created", nil, "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	v := &model.NodeVersion{
		NodeID: "req_1", Version: 1, Content: "body",
		Source: model.SourceManualCreated, CreatedAt: time.Now(),
	}
	if err := queryAppendVersion(context.Background(), db, v); err != nil {
		t.Fatalf("queryAppendVersion() error: %v", err)
	}
	if v.ID != 7 {
		t.Errorf("v.ID = %d, want 7", v.ID)
	}
}

func TestQueryAppendVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO node_versions").
		WillReturnError(&pq.Error{Code: "23505"})

	v := &model.NodeVersion{
		NodeID: "req_1", Version: 1, Content: "body",
		Source: model.SourceManualCreated, CreatedAt: time.Now(),
	}
	err := queryAppendVersion(context.Background(), db, v)
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("queryAppendVersion() = %v, want ErrConflict", err)
	}
}

func TestRunInTransactionRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM edges WHERE id = \\$1").
		WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	s := &PostgresStore{db: db}
	boom := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		if err := tx.DeleteEdge(context.Background(), "e1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("RunInTransaction() = %v, want boom", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if isUniqueViolation(nil) || isUniqueViolation(errors.New("x")) {
		t.Error("nil/plain errors are not unique violations")
	}
}
