package main

import (
	"strings"
	"testing"

	"github.com/alfredjeanlab/specgraph/internal/model"
)

func TestRenderErrorAmbiguous(t *testing.T) {
	err := &model.AmbiguousMatchError{
		Identifier: "bug",
		Candidates: []*model.WorkflowSummary{
			{RootID: "bug_a", Title: "崩溃一", Template: "bugfix"},
			{RootID: "bug_b", Title: "崩溃二", Template: "bugfix"},
		},
	}

	out := renderError(err)
	for _, want := range []string{"matches 2 workflows", "bug_a", "崩溃二", "list index"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderError() = %q, missing %q", out, want)
		}
	}
}

func TestRenderErrorNotFound(t *testing.T) {
	out := renderError(&model.NotFoundError{Kind: "node", ID: "req_x"})
	if !strings.Contains(out, "req_x") || !strings.Contains(out, "sg branch") {
		t.Errorf("renderError() = %q, want id and branch hint", out)
	}
}
