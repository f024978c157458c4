// Package flow holds the static, data-driven workflow configuration: the
// per-type transition rules consumed by the auto-transition engine and the
// per-template step tables consumed by the workflow context manager.
//
// Everything here is data. Adding a pipeline or a stage means adding
// entries, never touching engine code.
package flow

import "github.com/alfredjeanlab/specgraph/internal/model"

// Rule describes what happens when a node of a given type is finalized.
// An absent rule, or a rule with an empty NextType, marks the type as the
// terminal stage of its pipeline.
type Rule struct {
	NextType       model.NodeType
	LabelTemplate  string // rendered with {{parent_label}}
	AutoGenerate   bool
	PromptTemplate string // rendered with the prompt context slots
	IDPrefix       string // id prefix for nodes of this type
}

// Table is the flow rule lookup consulted on every finalize.
type Table struct {
	rules map[model.NodeType]Rule
}

// NewTable returns the built-in rule table covering the standard, bugfix,
// and feature pipelines.
func NewTable() *Table {
	return &Table{rules: builtinRules}
}

// Lookup returns the rule for a node type. ok is false for unknown types.
func (t *Table) Lookup(typ model.NodeType) (Rule, bool) {
	r, ok := t.rules[typ]
	return r, ok
}

// Terminal reports whether finalizing a node of this type ends its pipeline.
func (t *Table) Terminal(typ model.NodeType) bool {
	r, ok := t.rules[typ]
	return !ok || r.NextType == ""
}

// IDPrefix returns the id prefix for a node type, falling back to "node".
func (t *Table) IDPrefix(typ model.NodeType) string {
	if r, ok := t.rules[typ]; ok && r.IDPrefix != "" {
		return r.IDPrefix
	}
	return "node"
}

// KnownType reports whether the type appears in the rule table.
func (t *Table) KnownType(typ model.NodeType) bool {
	_, ok := t.rules[typ]
	return ok
}

var builtinRules = map[model.NodeType]Rule{
	// Standard development pipeline:
	// aggregate → requirement → design → implementation → test (terminal).
	// The review tail hangs off a separately created integration_test node:
	// integration_test → code_review → documentation.
	model.TypeAggregate: {
		NextType:      model.TypeRequirement,
		LabelTemplate: "{{parent_label}} - 需求分析",
		AutoGenerate:  false,
		IDPrefix:      "agg",
	},
	model.TypeRequirement: {
		NextType:       model.TypeDesign,
		LabelTemplate:  "{{parent_label}} - 设计方案",
		AutoGenerate:   true,
		PromptTemplate: promptDesign,
		IDPrefix:       "req",
	},
	model.TypeDesign: {
		NextType:       model.TypeImplementation,
		LabelTemplate:  "{{parent_label}} - 实现方案",
		AutoGenerate:   true,
		PromptTemplate: promptImplementation,
		IDPrefix:       "design",
	},
	model.TypeImplementation: {
		NextType:       model.TypeTest,
		LabelTemplate:  "{{parent_label}} - 测试方案",
		AutoGenerate:   true,
		PromptTemplate: promptTest,
		IDPrefix:       "impl",
	},
	model.TypeTest: {
		// Terminal stage: finalizing a test plan ends the automatic flow.
		IDPrefix: "test",
	},
	model.TypeIntegrationTest: {
		NextType:       model.TypeCodeReview,
		LabelTemplate:  "{{parent_label}} - 代码评审",
		AutoGenerate:   true,
		PromptTemplate: promptCodeReview,
		IDPrefix:       "itest",
	},
	model.TypeCodeReview: {
		NextType:       model.TypeDocumentation,
		LabelTemplate:  "{{parent_label}} - 文档",
		AutoGenerate:   true,
		PromptTemplate: promptDocumentation,
		IDPrefix:       "review",
	},
	model.TypeDocumentation: {
		// Terminal stage.
		IDPrefix: "doc",
	},

	// Bugfix pipeline: bug_report → bug_analysis → bug_fix → bug_verify
	model.TypeBugReport: {
		NextType:       model.TypeBugAnalysis,
		LabelTemplate:  "{{parent_label}} - 问题分析",
		AutoGenerate:   true,
		PromptTemplate: promptBugAnalysis,
		IDPrefix:       "bug",
	},
	model.TypeBugAnalysis: {
		NextType:       model.TypeBugFix,
		LabelTemplate:  "{{parent_label}} - 修复方案",
		AutoGenerate:   true,
		PromptTemplate: promptBugFix,
		IDPrefix:       "analysis",
	},
	model.TypeBugFix: {
		NextType:       model.TypeBugVerify,
		LabelTemplate:  "{{parent_label}} - 验证方案",
		AutoGenerate:   true,
		PromptTemplate: promptBugVerify,
		IDPrefix:       "fix",
	},
	model.TypeBugVerify: {
		// Terminal stage.
		IDPrefix: "verify",
	},
}

// stageSuffixes are the label decorations appended by LabelTemplate rules.
// They are stripped from a parent label before rendering the next one so
// suffixes do not pile up along the pipeline.
var stageSuffixes = []string{
	" - 需求分析",
	" - 设计方案",
	" - 实现方案",
	" - 测试方案",
	" - 代码评审",
	" - 文档",
	" - 问题分析",
	" - 修复方案",
	" - 验证方案",
}

// StripStageSuffix removes any known stage suffix from a node label.
func StripStageSuffix(label string) string {
	for _, suffix := range stageSuffixes {
		if len(label) > len(suffix) && label[len(label)-len(suffix):] == suffix {
			return label[:len(label)-len(suffix)]
		}
	}
	return label
}
