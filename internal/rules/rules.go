// Package rules reads the workspace project-rules excerpt appended to
// generated prompts. Everything here is best effort: a missing directory,
// an unreadable file, or a malformed section never produces an error that
// reaches a caller's main operation.
package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MinPriority is the inclusion threshold: only sections tagged with
// **Priority**: N where N >= MinPriority make it into prompts.
const MinPriority = 200

var priorityRe = regexp.MustCompile(`\*\*Priority\*\*:\s*(\d+)`)

// ReadExcerpt collects high-priority sections from every markdown file in
// <root>/.specgraph/rules, in file-name order. A missing rules directory
// yields an empty excerpt and no error.
func ReadExcerpt(root string) (string, error) {
	dir := filepath.Join(root, ".specgraph", "rules")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		for _, section := range highPrioritySections(string(data)) {
			parts = append(parts, section)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// Provider binds ReadExcerpt to a workspace root for the engine.
func Provider(root string) func() (string, error) {
	return func() (string, error) {
		return ReadExcerpt(root)
	}
}

// highPrioritySections splits a rules document on second-level headings
// and keeps sections whose Priority tag meets the threshold.
func highPrioritySections(doc string) []string {
	var sections []string
	for _, section := range splitSections(doc) {
		m := priorityRe.FindStringSubmatch(section)
		if m == nil {
			continue
		}
		priority, err := strconv.Atoi(m[1])
		if err != nil || priority < MinPriority {
			continue
		}
		sections = append(sections, strings.TrimSpace(section))
	}
	return sections
}

func splitSections(doc string) []string {
	lines := strings.Split(doc, "\n")
	var sections []string
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") && len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}
