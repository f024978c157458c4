package engine

import (
	"context"
	"log"

	"github.com/alfredjeanlab/specgraph/internal/model"
	"github.com/alfredjeanlab/specgraph/internal/templates"
)

// nonePlaceholder fills prompt slots that have no matching ancestor.
const nonePlaceholder = "无"

// ancestorSlots maps ancestor node types to the prompt variable their
// finalized content is bucketed under.
var ancestorSlots = map[model.NodeType]string{
	model.TypeRequirement:    "requirement_content",
	model.TypeDesign:         "design_content",
	model.TypeImplementation: "implementation_content",
	model.TypeBugReport:      "bug_report_content",
}

// BuildPrompt renders a generation prompt for the successor of parent.
// The parent's finalized content fills parent_content; ancestor content
// is bucketed by type. Duplicate stage types in one ancestry overwrite
// as the walk moves outward, so the farthest ancestor wins. When a
// workflow starts from an aggregate root with no requirement stage, the
// aggregate's content stands in for requirement_content. Missing slots
// render as the "无" placeholder rather than failing.
func (e *Engine) BuildPrompt(ctx context.Context, parent *model.Node, promptTemplate string) (string, error) {
	vars := map[string]string{
		"parent_content": parent.Content,
		"parent_label":   parent.Label,
	}

	ancestors, err := e.graph.ParentNodes(ctx, parent.ID, true)
	if err != nil {
		return "", err
	}

	var aggregateContent string
	for _, ancestor := range ancestors {
		if !ancestor.Finalized() || ancestor.Content == "" {
			continue
		}
		if ancestor.Type == model.TypeAggregate {
			aggregateContent = ancestor.Content
		}
		// Ancestors arrive nearest first; overwriting on each hit leaves
		// the farthest ancestor of each type in the slot.
		if slot, ok := ancestorSlots[ancestor.Type]; ok {
			vars[slot] = ancestor.Content
		}
	}

	if _, ok := vars["requirement_content"]; !ok && aggregateContent != "" {
		vars["requirement_content"] = aggregateContent
	}

	prompt := templates.RenderWithFallback(promptTemplate, vars, nonePlaceholder)

	if e.readRules != nil {
		excerpt, err := e.readRules()
		if err != nil {
			log.Printf("warning: project rules excerpt unavailable: %v", err)
		} else if excerpt != "" {
			prompt += "\n\n## 项目规则\n\n" + excerpt
		}
	}

	return prompt, nil
}
