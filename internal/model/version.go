package model

import "time"

// NodeVersion is one immutable snapshot in a node's append-only history.
// Versions start at 1 and increase by exactly one per finalize; rows are
// never mutated or deleted except when their owning node is deleted.
type NodeVersion struct {
	ID                int64       `json:"id"`
	NodeID            string      `json:"node_id"`
	Version           int         `json:"version"`
	Content           string      `json:"content"`
	Source            DraftSource `json:"source"`
	BasedOnVersion    *int        `json:"based_on_version,omitempty"`
	ChangeDescription string      `json:"change_description,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}
