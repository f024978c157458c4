package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRules(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, ".specgraph", "rules")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadExcerptPriorityFilter(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "coding.md", `# Coding rules

## Tests required

**Priority**: 250

Every change ships with tests.

## Nice to have

**Priority**: 100

Prefer short functions.

## Untagged section

This one has no priority tag.
`)

	got, err := ReadExcerpt(root)
	if err != nil {
		t.Fatalf("ReadExcerpt() error: %v", err)
	}
	if !strings.Contains(got, "Every change ships with tests.") {
		t.Errorf("high-priority section missing: %q", got)
	}
	if strings.Contains(got, "Prefer short functions.") {
		t.Errorf("low-priority section included: %q", got)
	}
	if strings.Contains(got, "no priority tag") {
		t.Errorf("untagged section included: %q", got)
	}
}

func TestReadExcerptBoundary(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "r.md", "## Exactly\n\n**Priority**: 200\n\nat the threshold\n")

	got, err := ReadExcerpt(root)
	if err != nil {
		t.Fatalf("ReadExcerpt() error: %v", err)
	}
	if !strings.Contains(got, "at the threshold") {
		t.Errorf("priority 200 should be included: %q", got)
	}
}

func TestReadExcerptMissingDir(t *testing.T) {
	got, err := ReadExcerpt(t.TempDir())
	if err != nil || got != "" {
		t.Errorf("ReadExcerpt(no rules dir) = (%q, %v), want empty and nil", got, err)
	}
}

func TestReadExcerptMultipleFilesOrdered(t *testing.T) {
	root := t.TempDir()
	writeRules(t, root, "b.md", "## B rule\n\n**Priority**: 300\n\nsecond\n")
	writeRules(t, root, "a.md", "## A rule\n\n**Priority**: 300\n\nfirst\n")

	got, err := ReadExcerpt(root)
	if err != nil {
		t.Fatalf("ReadExcerpt() error: %v", err)
	}
	if strings.Index(got, "first") > strings.Index(got, "second") {
		t.Errorf("files not in name order: %q", got)
	}
}
