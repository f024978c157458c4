// Package engine implements the auto-transition engine: when a node is
// finalized, it consults the flow rule table, idempotently creates the
// successor stage, and optionally builds an AI generation prompt from
// ancestor content.
package engine

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/templates"
)

// successorOffsetX is the horizontal layout offset applied to an
// auto-created successor relative to its parent.
const successorOffsetX = 350

// RulesProvider returns a project-rules excerpt to append to generated
// prompts. Best effort: any error is absorbed and the base prompt stands.
type RulesProvider func() (string, error)

// Engine drives rule-based successor creation.
type Engine struct {
	graph     *graph.Service
	rules     *flow.Table
	readRules RulesProvider
}

// New constructs an engine. readRules may be nil.
func New(g *graph.Service, rules *flow.Table, readRules RulesProvider) *Engine {
	return &Engine{graph: g, rules: rules, readRules: readRules}
}

// Generation is the explicit outcome of the prompt-building step. It is
// always populated on a TransitionResult so callers can tell "no prompt
// needed" apart from "prompt skipped".
type Generation struct {
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"` // set when Enabled is false
	Prompt  string `json:"prompt,omitempty"`
}

// Generation-disabled reasons.
const (
	ReasonGenerationOff    = "generation_disabled"
	ReasonAutoGenerateOff  = "auto_generate_disabled"
	ReasonParentNodeEmpty  = "parent_node_empty"
	ReasonPromptBuildError = "prompt_build_error"
)

// TransitionResult describes the successor created for a finalized node.
type TransitionResult struct {
	NodeID     string         `json:"node_id"`
	Type       model.NodeType `json:"type"`
	Label      string         `json:"label"`
	EdgeID     string         `json:"edge_id"`
	Generation Generation     `json:"generation"`
}

// OnNodeFinalized runs the transition for a node that was just finalized.
// Returns (nil, nil) when the node is absent, its type is a terminal
// stage, or a successor of the next type already exists; re-running the
// transition never duplicates nodes or edges.
func (e *Engine) OnNodeFinalized(ctx context.Context, nodeID string, enableGeneration bool) (*TransitionResult, error) {
	parent, err := e.graph.GetNode(ctx, nodeID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rule, ok := e.rules.Lookup(parent.Type)
	if !ok || rule.NextType == "" {
		// Terminal stage: the pipeline ends here.
		return nil, nil
	}

	// Idempotence: an existing successor of the next type means the
	// transition already ran.
	outgoing, err := e.graph.EdgesFrom(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	for _, edge := range outgoing {
		if edge.SelfLoop() {
			continue
		}
		target, err := e.graph.GetNode(ctx, edge.Target)
		if err != nil {
			continue
		}
		if target.Type == rule.NextType {
			return nil, nil
		}
	}

	label := templates.Render(rule.LabelTemplate, map[string]string{
		"parent_label": flow.StripStageSuffix(parent.Label),
	})

	successor, err := e.graph.CreateNode(ctx, graph.NewNode{
		Type:    rule.NextType,
		Label:   label,
		AsDraft: true,
		Source:  model.SourceAIGenerated,
		Position: model.Position{
			X: parent.Position.X + successorOffsetX,
			Y: parent.Position.Y,
		},
		Metadata: map[string]any{
			"auto_created":   true,
			"parent_node_id": parent.ID,
		},
	})
	if err != nil {
		return nil, err
	}

	edge, err := e.graph.CreateEdge(ctx, graph.NewEdge{
		Source: parent.ID,
		Target: successor.ID,
		Type:   model.EdgeNext,
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{
		NodeID: successor.ID,
		Type:   successor.Type,
		Label:  successor.Label,
		EdgeID: edge.ID,
	}
	result.Generation = e.buildGeneration(ctx, parent, rule, enableGeneration)
	return result, nil
}

// buildGeneration decides whether a prompt can be produced and produces
// it. Prompt failures disable generation with a reason; they never fail
// the transition itself.
func (e *Engine) buildGeneration(ctx context.Context, parent *model.Node, rule flow.Rule, enabled bool) Generation {
	if !enabled {
		return Generation{Reason: ReasonGenerationOff}
	}
	if !rule.AutoGenerate || rule.PromptTemplate == "" {
		return Generation{Reason: ReasonAutoGenerateOff}
	}
	// Generation feeds on the finalized content, never the draft.
	if parent.Content == "" {
		return Generation{Reason: ReasonParentNodeEmpty}
	}

	prompt, err := e.BuildPrompt(ctx, parent, rule.PromptTemplate)
	if err != nil {
		return Generation{Reason: ReasonPromptBuildError + ": " + err.Error()}
	}
	return Generation{Enabled: true, Prompt: prompt}
}
