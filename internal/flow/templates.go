package flow

import "github.com/alfredjeanlab/specgraph/internal/model"

// Template names.
const (
	TemplateStandard = "standard"
	TemplateBugfix   = "bugfix"
	TemplateFeature  = "feature"
)

// Step maps a human-facing step name to the node type filling that step.
type Step struct {
	Name string
	Type model.NodeType
}

// WorkflowTemplate describes one pipeline as an ordered list of steps.
type WorkflowTemplate struct {
	Key       string
	RootType  model.NodeType
	Steps     []Step
}

var templates = map[string]WorkflowTemplate{
	TemplateStandard: {
		Key:      TemplateStandard,
		RootType: model.TypeAggregate,
		Steps: []Step{
			{"aggregate", model.TypeAggregate},
			{"requirement", model.TypeRequirement},
			{"design", model.TypeDesign},
			{"implementation", model.TypeImplementation},
			{"test", model.TypeTest},
			{"review", model.TypeCodeReview},
			{"documentation", model.TypeDocumentation},
		},
	},
	TemplateBugfix: {
		Key:      TemplateBugfix,
		RootType: model.TypeBugReport,
		Steps: []Step{
			{"report", model.TypeBugReport},
			{"analysis", model.TypeBugAnalysis},
			{"fix", model.TypeBugFix},
			{"verify", model.TypeBugVerify},
		},
	},
	TemplateFeature: {
		Key:      TemplateFeature,
		RootType: model.TypeRequirement,
		Steps: []Step{
			{"requirement", model.TypeRequirement},
			{"implementation", model.TypeImplementation},
		},
	},
}

// typeKeywords maps checkout shorthand to a template key.
var typeKeywords = map[string]string{
	"bug":      TemplateBugfix,
	"bugfix":   TemplateBugfix,
	"修复":       TemplateBugfix,
	"standard": TemplateStandard,
	"标准":       TemplateStandard,
	"完整":       TemplateStandard,
	"feature":  TemplateFeature,
	"快速":       TemplateFeature,
	"功能":       TemplateFeature,
}

// Template returns the named workflow template.
func Template(key string) (WorkflowTemplate, bool) {
	t, ok := templates[key]
	return t, ok
}

// TemplateKeys returns all template names in a stable order.
func TemplateKeys() []string {
	return []string{TemplateStandard, TemplateBugfix, TemplateFeature}
}

// TemplateForKeyword resolves a checkout shorthand ("bug", "feature") to a
// template key. ok is false when the word is not a known keyword.
func TemplateForKeyword(word string) (string, bool) {
	key, ok := typeKeywords[word]
	return key, ok
}

// InferTemplate guesses the template of a workflow from the node types
// present in it, for roots created before templates were recorded in
// metadata. Returns "unknown" when nothing matches.
func InferTemplate(types map[model.NodeType]bool) string {
	for _, typ := range []model.NodeType{model.TypeBugReport, model.TypeBugAnalysis, model.TypeBugFix, model.TypeBugVerify} {
		if types[typ] {
			return TemplateBugfix
		}
	}
	if types[model.TypeAggregate] {
		return TemplateStandard
	}
	if types[model.TypeRequirement] && types[model.TypeImplementation] {
		return TemplateFeature
	}
	return "unknown"
}
