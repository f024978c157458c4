// Package events defines lifecycle event topics and the Publisher
// abstraction. When no NATS URL is configured, a NoopPublisher stands in
// and every publish is a no-op.
package events

import (
	"context"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

// Event topic constants
const (
	TopicNodeCreated      = "specgraph.node.created"
	TopicNodeDraftUpdated = "specgraph.node.draft_updated"
	TopicNodeFinalized    = "specgraph.node.finalized"

	TopicWorkflowCreated  = "specgraph.workflow.created"
	TopicWorkflowSwitched = "specgraph.workflow.switched"
	TopicWorkflowDeleted  = "specgraph.workflow.deleted"

	// TopicWildcard matches every subject the system publishes.
	TopicWildcard = "specgraph.>"
)

// topics is the closed set of subjects publishers accept.
var topics = map[string]bool{
	TopicNodeCreated:      true,
	TopicNodeDraftUpdated: true,
	TopicNodeFinalized:    true,
	TopicWorkflowCreated:  true,
	TopicWorkflowSwitched: true,
	TopicWorkflowDeleted:  true,
}

// KnownTopic reports whether topic is one the system publishes.
func KnownTopic(topic string) bool {
	return topics[topic]
}

// Event types

type NodeCreated struct {
	Node *model.Node `json:"node"`
}

type NodeDraftUpdated struct {
	NodeID string            `json:"node_id"`
	Source model.DraftSource `json:"source"`
}

type NodeFinalized struct {
	Node    *model.Node `json:"node"`
	Version int         `json:"version"`
}

type WorkflowCreated struct {
	RootID   string `json:"root_id"`
	Template string `json:"template"`
	Title    string `json:"title"`
}

type WorkflowSwitched struct {
	RootID string `json:"root_id"`
}

type WorkflowDeleted struct {
	RootID       string `json:"root_id"`
	DeletedNodes int    `json:"deleted_nodes"`
	DeletedEdges int    `json:"deleted_edges"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher discards every event. It is the default when no event
// bus is configured.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// Message is one received event: the subject it was published on plus
// the raw JSON payload, so wildcard subscribers can route by topic.
type Message struct {
	Topic string
	Data  []byte
}

// Subscriber is the interface for receiving events.
type Subscriber interface {
	// Subscribe returns a channel of messages for the given topic, which
	// may be a wildcard like TopicWildcard. Call the returned cancel
	// function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan Message, func(), error)
	Close() error
}
