package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// ContextStore persists the workflow context record for one workspace.
// Every mutation is a fresh read-modify-write so two operations touching
// different workflows never clobber each other's entries.
type ContextStore struct {
	path string
}

// NewContextStore returns a store for the context file at path.
func NewContextStore(path string) *ContextStore {
	return &ContextStore{path: path}
}

// Load reads the context record. A missing file yields an empty context.
func (c *ContextStore) Load() (*model.Context, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return &model.Context{Workflows: map[string]*model.WorkflowEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var ctx model.Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}
	if ctx.Workflows == nil {
		ctx.Workflows = map[string]*model.WorkflowEntry{}
	}
	return &ctx, nil
}

// Update loads the current record, applies fn, and writes the result
// atomically (temp file plus rename).
func (c *ContextStore) Update(fn func(ctx *model.Context) error) error {
	ctx, err := c.Load()
	if err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		return err
	}
	return c.save(ctx)
}

func (c *ContextStore) save(ctx *model.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating context dir: %w", err)
	}

	data, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	data = append(data, '\n')

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing context file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing context file: %w", err)
	}
	return nil
}
