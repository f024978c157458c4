package model

import "time"

// WorkflowSummary is one row of the workflow listing: a root node plus
// aggregate counts over its connected component.
type WorkflowSummary struct {
	RootID         string     `json:"root_id"`
	Template       string     `json:"template"`
	Title          string     `json:"title"`
	NodeCount      int        `json:"node_count"`
	FinalizedCount int        `json:"finalized_count"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// WorkflowEntry is the persisted per-workflow record in the context file.
// Steps is a denormalized index from step name to node id; it is always
// reconstructible by walking the graph from the root.
type WorkflowEntry struct {
	Template    string            `json:"template"`
	Title       string            `json:"title"`
	CurrentStep string            `json:"current_step,omitempty"`
	Steps       map[string]string `json:"steps"`
	CreatedAt   string            `json:"created_at,omitempty"`
}

// Context is the workspace-scoped workflow context record, the git-like
// layer's single shared resource. One file per workspace.
type Context struct {
	ActiveWorkflowID string                    `json:"active_workflow_id,omitempty"`
	Workflows        map[string]*WorkflowEntry `json:"workflows"`
}

// Active returns the entry for the active workflow, or nil.
func (c *Context) Active() *WorkflowEntry {
	if c.ActiveWorkflowID == "" {
		return nil
	}
	return c.Workflows[c.ActiveWorkflowID]
}

// StepStatus is the lifecycle state of one template step in a status report.
type StepStatus struct {
	Name      string `json:"name"`
	NodeID    string `json:"node_id,omitempty"`
	Label     string `json:"label,omitempty"`
	Status    string `json:"status"` // not_created | draft | finalized
	IsCurrent bool   `json:"is_current"`
}

// WorkflowStatus is the git-status-like view of the active workflow.
type WorkflowStatus struct {
	RootID      string       `json:"root_id"`
	Template    string       `json:"template"`
	Title       string       `json:"title"`
	CurrentStep string       `json:"current_step,omitempty"`
	Steps       []StepStatus `json:"steps"`
	Completion  int          `json:"completion"` // percent of finalized steps
}

// DeleteResult reports what a workflow delete removed.
type DeleteResult struct {
	RootID       string `json:"root_id"`
	Title        string `json:"title"`
	DeletedNodes int    `json:"deleted_nodes"`
	DeletedEdges int    `json:"deleted_edges"`
	WasActive    bool   `json:"was_active"`
}
