package graph

import (
	"context"
	"strings"
	"time"

	"github.com/alfredjeanlab/specgraph/internal/events"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
)

// UpdateDraft replaces a node's pending draft. Legal from any state.
// When source is empty, provenance is inferred from the node's history:
// never finalized means manual_created, otherwise manual_modified. For a
// node with committed versions the draft records which version it was
// derived from.
func (s *Service) UpdateDraft(ctx context.Context, nodeID, text string, source model.DraftSource) (*model.Node, error) {
	if source != "" && !source.IsValid() {
		return nil, &model.ValidationError{Field: "source", Reason: "unknown draft source " + string(source)}
	}

	var node *model.Node
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		node, err = tx.GetNode(ctx, nodeID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		node.IsDraft = true
		node.DraftContent = &text
		node.DraftUpdatedAt = &now
		node.UpdatedAt = now

		if source != "" {
			node.DraftSource = source
		} else if node.DraftSource == "" {
			if node.CurrentVersion == 0 {
				node.DraftSource = model.SourceManualCreated
			} else {
				node.DraftSource = model.SourceManualModified
			}
		}
		if node.CurrentVersion > 0 {
			v := node.CurrentVersion
			node.DraftBasedOnVersion = &v
		}

		return tx.UpdateNode(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	_ = s.pub.Publish(ctx, events.TopicNodeDraftUpdated, events.NodeDraftUpdated{
		NodeID: node.ID,
		Source: node.DraftSource,
	})
	return node, nil
}

// Finalize commits a node's pending draft: append a version snapshot,
// promote the draft body to content, bump the version, and clear the
// draft area, all in one transaction. There is no un-finalize; a mistake
// is corrected by drafting and finalizing again.
func (s *Service) Finalize(ctx context.Context, nodeID, changeDescription string) (*model.Node, error) {
	var node *model.Node
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		node, err = tx.GetNode(ctx, nodeID)
		if err != nil {
			return err
		}
		if !node.IsDraft {
			return &model.InvalidOperationError{Reason: "nothing to finalize: node has no pending draft"}
		}

		var body string
		if node.DraftContent != nil {
			body = *node.DraftContent
		}

		source := node.DraftSource
		if source == "" {
			source = model.SourceManualCreated
		}

		now := time.Now().UTC()
		version := &model.NodeVersion{
			NodeID:            node.ID,
			Version:           node.CurrentVersion + 1,
			Content:           body,
			Source:            source,
			BasedOnVersion:    node.DraftBasedOnVersion,
			ChangeDescription: strings.TrimSpace(changeDescription),
			CreatedAt:         now,
		}
		if err := tx.AppendVersion(ctx, version); err != nil {
			return err
		}

		node.Content = body
		node.CurrentVersion++
		node.IsDraft = false
		node.DraftContent = nil
		node.DraftSource = ""
		node.DraftBasedOnVersion = nil
		node.DraftUpdatedAt = nil
		node.UpdatedAt = now

		return tx.UpdateNode(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	_ = s.pub.Publish(ctx, events.TopicNodeFinalized, events.NodeFinalized{
		Node:    node,
		Version: node.CurrentVersion,
	})
	return node, nil
}
