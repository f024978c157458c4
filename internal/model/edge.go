package model

import "time"

// EdgeType categorizes the relationship between two nodes.
type EdgeType string

const (
	// EdgeNext denotes pipeline order (requirement → design → …).
	EdgeNext EdgeType = "next"
	// EdgeContain denotes containment (aggregate contains sub-entities).
	EdgeContain EdgeType = "contain"
	// EdgeReference denotes an auxiliary cross-workflow reference.
	EdgeReference EdgeType = "reference"
)

// String returns the string representation of the edge type.
func (t EdgeType) String() string {
	return string(t)
}

// IsValid checks whether the edge type is a known value.
func (t EdgeType) IsValid() bool {
	switch t {
	case EdgeNext, EdgeContain, EdgeReference:
		return true
	}
	return false
}

// Edge is a directed relation between two nodes. Self-edges (Source ==
// Target) are legal but every ancestor walk must skip them.
type Edge struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	SourceHandle string   `json:"source_handle,omitempty"` // layout anchor, UI only
	TargetHandle string   `json:"target_handle,omitempty"` // layout anchor, UI only
	Label        string   `json:"label,omitempty"`
	Type         EdgeType `json:"type"`
	Animated     bool     `json:"animated,omitempty"` // UI only

	CreatedAt time.Time `json:"created_at"`
}

// SelfLoop reports whether the edge points back at its own source.
func (e *Edge) SelfLoop() bool {
	return e.Source == e.Target
}
