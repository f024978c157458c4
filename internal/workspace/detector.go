// Package workspace implements workspace discovery, the per-workspace
// context file, and the git-like workflow manager layered over the graph.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvWorkspace overrides workspace detection entirely.
	EnvWorkspace = "SPECGRAPH_WORKSPACE"

	// MarkerDir is the workspace metadata directory, created by `sg init`.
	MarkerDir = ".specgraph"

	markerFile  = "workspace.json"
	contextFile = "context.json"
	dbFile      = "graph.db"
)

// Detect resolves the workspace root for the current process:
//
//  1. SPECGRAPH_WORKSPACE environment variable, when set.
//  2. Nearest ancestor directory containing .specgraph/workspace.json.
//  3. Nearest ancestor directory containing .git.
//  4. The working directory itself.
func Detect() (string, error) {
	if ws := os.Getenv(EnvWorkspace); ws != "" {
		abs, err := filepath.Abs(ws)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", EnvWorkspace, err)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return DetectFrom(cwd), nil
}

// DetectFrom applies the marker-then-git upward search starting at dir.
func DetectFrom(dir string) string {
	if root, ok := findUp(dir, filepath.Join(MarkerDir, markerFile)); ok {
		return root
	}
	if root, ok := findUp(dir, ".git"); ok {
		return root
	}
	return dir
}

// findUp walks from dir to the filesystem root looking for rel.
func findUp(dir, rel string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, rel)); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// ContextPath returns the context file path for a workspace root.
func ContextPath(root string) string {
	return filepath.Join(root, MarkerDir, contextFile)
}

// DatabasePath returns the sqlite database path for a workspace root.
func DatabasePath(root string) string {
	return filepath.Join(root, MarkerDir, dbFile)
}

// MarkerPath returns the workspace marker path for a workspace root.
func MarkerPath(root string) string {
	return filepath.Join(root, MarkerDir, markerFile)
}

// Init creates the workspace marker directory and file. Idempotent.
func Init(root string) error {
	if err := os.MkdirAll(filepath.Join(root, MarkerDir), 0o755); err != nil {
		return fmt.Errorf("creating workspace dir: %w", err)
	}
	marker := MarkerPath(root)
	if _, err := os.Stat(marker); err == nil {
		return nil
	}
	if err := os.WriteFile(marker, []byte("{\"version\": 1}\n"), 0o644); err != nil {
		return fmt.Errorf("writing workspace marker: %w", err)
	}
	return nil
}
