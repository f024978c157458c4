package model

import (
	"strings"
	"time"
)

// NodeType categorizes a pipeline stage.
// Well-known constants are provided below, but node types are extensible;
// any type registered in the flow rule table is valid.
type NodeType string

// Standard development pipeline types.
const (
	TypeAggregate       NodeType = "aggregate"
	TypeRequirement     NodeType = "requirement"
	TypeDesign          NodeType = "design"
	TypeImplementation  NodeType = "implementation"
	TypeTest            NodeType = "test"
	TypeIntegrationTest NodeType = "integration_test"
	TypeCodeReview      NodeType = "code_review"
	TypeDocumentation   NodeType = "documentation"
)

// Bugfix pipeline types.
const (
	TypeBugReport   NodeType = "bug_report"
	TypeBugAnalysis NodeType = "bug_analysis"
	TypeBugFix      NodeType = "bug_fix"
	TypeBugVerify   NodeType = "bug_verify"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid reports whether the node type is a non-empty string.
// Node types are extensible, so any non-empty value is accepted.
func (t NodeType) IsValid() bool {
	return t != ""
}

// DraftSource records the provenance of a pending draft.
type DraftSource string

const (
	SourceAIGenerated    DraftSource = "ai_generated"
	SourceAIModified     DraftSource = "ai_modified"
	SourceManualCreated  DraftSource = "manual_created"
	SourceManualModified DraftSource = "manual_modified"
)

// String returns the string representation of the draft source.
func (s DraftSource) String() string {
	return string(s)
}

// IsValid checks whether the draft source is a known value.
func (s DraftSource) IsValid() bool {
	switch s {
	case SourceAIGenerated, SourceAIModified, SourceManualCreated, SourceManualModified:
		return true
	}
	return false
}

// Position is a 2D layout hint. UI concern only; the engine never reads it
// beyond offsetting successor nodes horizontally.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a single pipeline stage instance with draft/finalized content.
//
// A node is always in exactly one of three states:
//
//  1. Untouched draft: CurrentVersion == 0, Content empty, DraftContent set.
//  2. Finalized, clean: IsDraft == false, CurrentVersion >= 1, DraftContent nil.
//  3. Finalized with a pending draft: IsDraft == true, CurrentVersion >= 1,
//     Content holds the prior finalized body, DraftContent the pending one.
type Node struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label"`
	Content  string         `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Position Position       `json:"position"`

	CurrentVersion int `json:"current_version"` // 0 = never finalized

	// Draft area. All Draft* fields are cleared together on finalize.
	IsDraft             bool        `json:"is_draft"`
	DraftContent        *string     `json:"draft_content,omitempty"`
	DraftSource         DraftSource `json:"draft_source,omitempty"`
	DraftBasedOnVersion *int        `json:"draft_based_on_version,omitempty"`
	DraftUpdatedAt      *time.Time  `json:"draft_updated_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finalized reports whether the node has at least one committed version.
func (n *Node) Finalized() bool {
	return n.CurrentVersion > 0
}

// HasDraftContent reports whether a non-blank draft body is pending.
func (n *Node) HasDraftContent() bool {
	return n.DraftContent != nil && strings.TrimSpace(*n.DraftContent) != ""
}

// Status returns the human-facing lifecycle state, "draft" or "finalized".
func (n *Node) Status() string {
	if n.IsDraft {
		return "draft"
	}
	return "finalized"
}
