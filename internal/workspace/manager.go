package workspace

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/specgraph/internal/events"
	"github.com/alfredjeanlab/specgraph/internal/flow"
	"github.com/alfredjeanlab/specgraph/internal/graph"
	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/store"
	"github.com/alfredjeanlab/specgraph/internal/templates"
)

// Manager is the git-like layer over the graph: it tracks which logical
// workflow is active and resolves human-facing identifiers to roots.
type Manager struct {
	graph *graph.Service
	ctx   *ContextStore
	pub   events.Publisher
}

// NewManager constructs a workflow manager. pub may be nil.
func NewManager(g *graph.Service, cs *ContextStore, pub events.Publisher) *Manager {
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Manager{graph: g, ctx: cs, pub: pub}
}

// CreateResult reports what `sg new` built.
type CreateResult struct {
	RootID      string            `json:"root_id"`
	Template    string            `json:"template"`
	Title       string            `json:"title"`
	CurrentStep string            `json:"current_step"`
	Steps       map[string]string `json:"steps"`
}

// CreateWorkflow bootstraps a workflow from a template and makes it the
// active one. The standard template creates a finalized aggregate root
// (when a description is given) plus a linked requirement draft; bugfix
// and feature templates create a single draft root.
func (m *Manager) CreateWorkflow(ctx context.Context, templateKey, title, description string) (*CreateResult, error) {
	tpl, ok := flow.Template(templateKey)
	if !ok {
		return nil, &model.ValidationError{Field: "template", Reason: "unknown template " + templateKey + " (known: " + strings.Join(flow.TemplateKeys(), ", ") + ")"}
	}
	if strings.TrimSpace(title) == "" {
		return nil, &model.ValidationError{Field: "title", Reason: "title is required"}
	}

	// Standard roots are containers and finalize immediately when a
	// description is given; bugfix and feature roots hold the description
	// as a draft so finalizing it drives the transition engine.
	root, err := m.graph.CreateNode(ctx, graph.NewNode{
		Type:    tpl.RootType,
		Label:   title,
		Content: description,
		AsDraft: tpl.Key != flow.TemplateStandard,
		Metadata: map[string]any{
			"template":       tpl.Key,
			"workflow_title": title,
		},
	})
	if err != nil {
		return nil, err
	}

	steps := map[string]string{tpl.Steps[0].Name: root.ID}
	currentStep := tpl.Steps[0].Name

	// The standard pipeline starts work at the requirement stage, so the
	// aggregate root immediately grows a requirement draft.
	if tpl.Key == flow.TemplateStandard {
		rule, _ := flow.NewTable().Lookup(model.TypeAggregate)
		label := templates.Render(rule.LabelTemplate, map[string]string{"parent_label": title})
		req, err := m.graph.CreateNode(ctx, graph.NewNode{
			Type:    model.TypeRequirement,
			Label:   label,
			AsDraft: true,
			Position: model.Position{
				X: root.Position.X + 350,
				Y: root.Position.Y,
			},
			Metadata: map[string]any{
				"auto_created":   true,
				"parent_node_id": root.ID,
			},
		})
		if err != nil {
			return nil, err
		}
		if _, err := m.graph.CreateEdge(ctx, graph.NewEdge{
			Source: root.ID,
			Target: req.ID,
			Type:   model.EdgeNext,
		}); err != nil {
			return nil, err
		}
		steps["requirement"] = req.ID
		currentStep = "requirement"
	}

	err = m.ctx.Update(func(c *model.Context) error {
		c.Workflows[root.ID] = &model.WorkflowEntry{
			Template:    tpl.Key,
			Title:       title,
			CurrentStep: currentStep,
			Steps:       steps,
			CreatedAt:   root.CreatedAt.Format(time.RFC3339),
		}
		c.ActiveWorkflowID = root.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = m.pub.Publish(ctx, events.TopicWorkflowCreated, events.WorkflowCreated{
		RootID: root.ID, Template: tpl.Key, Title: title,
	})

	return &CreateResult{
		RootID:      root.ID,
		Template:    tpl.Key,
		Title:       title,
		CurrentStep: currentStep,
		Steps:       steps,
	}, nil
}

// ListAllWorkflows groups the whole graph into workflow instances by
// root (nodes with no incoming edges), most recently created first.
func (m *Manager) ListAllWorkflows(ctx context.Context) ([]*model.WorkflowSummary, error) {
	nodes, err := m.graph.AllNodes(ctx)
	if err != nil {
		return nil, err
	}
	edges, err := m.graph.AllEdges(ctx)
	if err != nil {
		return nil, err
	}

	incoming := map[string]int{}
	for _, e := range edges {
		if e.SelfLoop() {
			continue
		}
		incoming[e.Target]++
	}

	byID := make(map[string]*model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var summaries []*model.WorkflowSummary
	for _, n := range nodes {
		if incoming[n.ID] > 0 {
			continue
		}
		closure, err := m.graph.Closure(ctx, n.ID)
		if err != nil {
			return nil, err
		}

		types := map[model.NodeType]bool{}
		finalized := 0
		for _, id := range closure {
			member, ok := byID[id]
			if !ok {
				continue
			}
			types[member.Type] = true
			if member.Finalized() {
				finalized++
			}
		}

		created := n.CreatedAt
		summaries = append(summaries, &model.WorkflowSummary{
			RootID:         n.ID,
			Template:       workflowTemplate(n, types),
			Title:          workflowTitle(n),
			NodeCount:      len(closure),
			FinalizedCount: finalized,
			CreatedAt:      &created,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(*summaries[j].CreatedAt)
	})
	return summaries, nil
}

func workflowTemplate(root *model.Node, types map[model.NodeType]bool) string {
	if t, ok := root.Metadata["template"].(string); ok && t != "" {
		return t
	}
	return flow.InferTemplate(types)
}

func workflowTitle(root *model.Node) string {
	if t, ok := root.Metadata["workflow_title"].(string); ok && t != "" {
		return t
	}
	return flow.StripStageSuffix(root.Label)
}

// SwitchWorkflow resolves an identifier (root id, exact title, 1-based
// list index, template keyword, or title substring), rebuilds its step
// index from the graph, and persists it as the active workflow.
func (m *Manager) SwitchWorkflow(ctx context.Context, identifier string) (*model.WorkflowStatus, error) {
	summary, err := m.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return m.activate(ctx, summary)
}

func (m *Manager) activate(ctx context.Context, summary *model.WorkflowSummary) (*model.WorkflowStatus, error) {
	steps, err := m.rebuildSteps(ctx, summary)
	if err != nil {
		return nil, err
	}

	var entry *model.WorkflowEntry
	err = m.ctx.Update(func(c *model.Context) error {
		entry = c.Workflows[summary.RootID]
		if entry == nil {
			entry = &model.WorkflowEntry{}
			c.Workflows[summary.RootID] = entry
		}
		entry.Template = summary.Template
		entry.Title = summary.Title
		entry.Steps = steps
		if entry.CreatedAt == "" && summary.CreatedAt != nil {
			entry.CreatedAt = summary.CreatedAt.Format(time.RFC3339)
		}
		if entry.CurrentStep == "" || steps[entry.CurrentStep] == "" {
			entry.CurrentStep = firstConcreteStep(summary.Template, steps)
		}
		c.ActiveWorkflowID = summary.RootID
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = m.pub.Publish(ctx, events.TopicWorkflowSwitched, events.WorkflowSwitched{RootID: summary.RootID})
	return m.status(ctx, summary.RootID, entry)
}

// Resolve maps an identifier to exactly one workflow summary, or returns
// AmbiguousMatch with the candidate list.
func (m *Manager) Resolve(ctx context.Context, identifier string) (*model.WorkflowSummary, error) {
	summaries, err := m.ListAllWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	identifier = strings.TrimSpace(identifier)

	// Exact root id.
	for _, s := range summaries {
		if s.RootID == identifier {
			return s, nil
		}
	}
	// Exact title.
	for _, s := range summaries {
		if s.Title == identifier {
			return s, nil
		}
	}
	// 1-based index into the listing.
	if idx, err := strconv.Atoi(identifier); err == nil && idx >= 1 && idx <= len(summaries) {
		return summaries[idx-1], nil
	}
	// Template keyword ("bug", "feature", …).
	if key, ok := flow.TemplateForKeyword(strings.ToLower(identifier)); ok {
		var matches []*model.WorkflowSummary
		for _, s := range summaries {
			if s.Template == key {
				matches = append(matches, s)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		default:
			if len(matches) > 1 {
				return nil, &model.AmbiguousMatchError{Identifier: identifier, Candidates: matches}
			}
		}
	}
	// Substring of the title, case-insensitive.
	var matches []*model.WorkflowSummary
	lower := strings.ToLower(identifier)
	for _, s := range summaries {
		if strings.Contains(strings.ToLower(s.Title), lower) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &model.NotFoundError{Kind: "workflow", ID: identifier}
	default:
		return nil, &model.AmbiguousMatchError{Identifier: identifier, Candidates: matches}
	}
}

// rebuildSteps scans the workflow's closure against its template's
// step table. The earliest created node of each step type wins.
func (m *Manager) rebuildSteps(ctx context.Context, summary *model.WorkflowSummary) (map[string]string, error) {
	tpl, ok := flow.Template(summary.Template)
	if !ok {
		// Unknown template: only the root is addressable.
		return map[string]string{"root": summary.RootID}, nil
	}

	closure, err := m.graph.Closure(ctx, summary.RootID)
	if err != nil {
		return nil, err
	}

	var members []*model.Node
	for _, id := range closure {
		node, err := m.graph.GetNode(ctx, id)
		if err != nil {
			continue
		}
		members = append(members, node)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})

	steps := map[string]string{}
	for _, step := range tpl.Steps {
		for _, node := range members {
			if node.Type == step.Type {
				steps[step.Name] = node.ID
				break
			}
		}
	}
	return steps, nil
}

func firstConcreteStep(templateKey string, steps map[string]string) string {
	tpl, ok := flow.Template(templateKey)
	if !ok {
		return ""
	}
	for _, step := range tpl.Steps {
		if steps[step.Name] != "" {
			return step.Name
		}
	}
	return ""
}

// GetStatus reports the active workflow step-by-step. When nothing is
// active and exactly one workflow exists, it is activated automatically.
func (m *Manager) GetStatus(ctx context.Context) (*model.WorkflowStatus, error) {
	c, err := m.ctx.Load()
	if err != nil {
		return nil, err
	}

	if c.ActiveWorkflowID == "" {
		summaries, err := m.ListAllWorkflows(ctx)
		if err != nil {
			return nil, err
		}
		if len(summaries) != 1 {
			return nil, &model.InvalidOperationError{Reason: "no active workflow: use checkout to select one"}
		}
		return m.activate(ctx, summaries[0])
	}

	entry := c.Workflows[c.ActiveWorkflowID]
	if entry == nil {
		// Context entry lost; rebuild from the graph.
		summary, err := m.Resolve(ctx, c.ActiveWorkflowID)
		if err != nil {
			return nil, err
		}
		return m.activate(ctx, summary)
	}
	return m.status(ctx, c.ActiveWorkflowID, entry)
}

func (m *Manager) status(ctx context.Context, rootID string, entry *model.WorkflowEntry) (*model.WorkflowStatus, error) {
	tpl, ok := flow.Template(entry.Template)
	if !ok {
		return nil, &model.ValidationError{Field: "template", Reason: "unknown template " + entry.Template}
	}

	status := &model.WorkflowStatus{
		RootID:      rootID,
		Template:    entry.Template,
		Title:       entry.Title,
		CurrentStep: entry.CurrentStep,
	}

	finalized := 0
	for _, step := range tpl.Steps {
		ss := model.StepStatus{
			Name:      step.Name,
			Status:    "not_created",
			IsCurrent: step.Name == entry.CurrentStep,
		}
		if nodeID := entry.Steps[step.Name]; nodeID != "" {
			node, err := m.graph.GetNode(ctx, nodeID)
			if err == nil {
				ss.NodeID = node.ID
				ss.Label = node.Label
				if node.Finalized() && !node.IsDraft {
					ss.Status = "finalized"
					finalized++
				} else {
					ss.Status = "draft"
				}
			}
		}
		status.Steps = append(status.Steps, ss)
	}
	status.Completion = finalized * 100 / len(tpl.Steps)
	return status, nil
}

// DeleteWorkflow removes a workflow and everything reachable from its
// root. A safe delete (force=false) refuses when the workflow is active
// or any node in its closure still has a pending draft.
func (m *Manager) DeleteWorkflow(ctx context.Context, identifier string, force bool) (*model.DeleteResult, error) {
	summary, err := m.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	c, err := m.ctx.Load()
	if err != nil {
		return nil, err
	}
	wasActive := c.ActiveWorkflowID == summary.RootID

	closure, err := m.graph.Closure(ctx, summary.RootID)
	if err != nil {
		return nil, err
	}
	inClosure := map[string]bool{}
	for _, id := range closure {
		inClosure[id] = true
	}

	if !force {
		if wasActive {
			return nil, &model.InvalidOperationError{Reason: "workflow is active: check out another workflow first or use force"}
		}
		for _, id := range closure {
			node, err := m.graph.GetNode(ctx, id)
			if err != nil {
				continue
			}
			if node.IsDraft {
				return nil, &model.InvalidOperationError{Reason: "workflow has unfinalized drafts (node " + id + "): finalize them or use force"}
			}
		}
	}

	edges, err := m.graph.AllEdges(ctx)
	if err != nil {
		return nil, err
	}

	deletedNodes, deletedEdges := 0, 0
	err = m.graph.Store().RunInTransaction(ctx, func(tx store.Store) error {
		for _, e := range edges {
			if inClosure[e.Source] || inClosure[e.Target] {
				if err := tx.DeleteEdge(ctx, e.ID); err != nil {
					return err
				}
				deletedEdges++
			}
		}
		for _, id := range closure {
			if err := tx.DeleteNode(ctx, id); err != nil {
				return err
			}
			deletedNodes++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = m.ctx.Update(func(c *model.Context) error {
		delete(c.Workflows, summary.RootID)
		if c.ActiveWorkflowID == summary.RootID {
			c.ActiveWorkflowID = ""
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = m.pub.Publish(ctx, events.TopicWorkflowDeleted, events.WorkflowDeleted{
		RootID: summary.RootID, DeletedNodes: deletedNodes, DeletedEdges: deletedEdges,
	})

	return &model.DeleteResult{
		RootID:       summary.RootID,
		Title:        summary.Title,
		DeletedNodes: deletedNodes,
		DeletedEdges: deletedEdges,
		WasActive:    wasActive,
	}, nil
}

// RecordStep updates the active workflow's step index after a transition
// created a successor node, and advances the current step.
func (m *Manager) RecordStep(ctx context.Context, nodeID string, nodeType model.NodeType) error {
	return m.ctx.Update(func(c *model.Context) error {
		entry := c.Active()
		if entry == nil {
			return nil
		}
		tpl, ok := flow.Template(entry.Template)
		if !ok {
			return nil
		}
		for _, step := range tpl.Steps {
			if step.Type == nodeType {
				if entry.Steps == nil {
					entry.Steps = map[string]string{}
				}
				entry.Steps[step.Name] = nodeID
				entry.CurrentStep = step.Name
				break
			}
		}
		return nil
	})
}
