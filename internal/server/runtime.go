package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/specgraph/internal/config"
	"github.com/alfredjeanlab/specgraph/internal/engine"
	"github.com/alfredjeanlab/specgraph/internal/events"
	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/project"
	"github.com/alfredjeanlab/specgraph/internal/rules"
	"github.com/alfredjeanlab/specgraph/internal/store"
	"github.com/alfredjeanlab/specgraph/internal/store/postgres"
	"github.com/alfredjeanlab/specgraph/internal/store/sqlite"
	"github.com/alfredjeanlab/specgraph/internal/workspace"
)

// Runtime holds every wired service for one workspace. Both the MCP
// server and the CLI commands run on top of it.
type Runtime struct {
	Root      string
	Config    *config.Config
	Store     store.Store
	Graph     *graph.Service
	Engine    *engine.Engine
	Manager   *workspace.Manager
	Projector *project.Projector

	pub events.Publisher
}

// Open wires a runtime for the workspace rooted at root. The workspace
// marker directory is created when missing, so any command works in a
// fresh directory.
func Open(root string) (*Runtime, error) {
	if err := workspace.Init(root); err != nil {
		return nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	var st store.Store
	switch cfg.Store.Backend {
	case "postgres":
		st, err = postgres.New(cfg.Store.URL)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
		st, err = sqlite.New(cfg.Store.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}

	var pub events.Publisher = &events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			st.Close()
			return nil, err
		}
		pub = natsPub
	}

	table := flow.NewTable()
	g := graph.NewService(st, table, pub)
	ctxStore := workspace.NewContextStore(workspace.ContextPath(root))
	mgr := workspace.NewManager(g, ctxStore, pub)

	return &Runtime{
		Root:      root,
		Config:    cfg,
		Store:     st,
		Graph:     g,
		Engine:    engine.New(g, table, rules.Provider(root)),
		Manager:   mgr,
		Projector: project.NewProjector(g, mgr, root),
		pub:       pub,
	}, nil
}

// Close releases the store and any event publisher connection.
func (r *Runtime) Close() {
	if closer, ok := r.pub.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = r.Store.Close()
}
