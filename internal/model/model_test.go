package model

import (
	"errors"
	"testing"
	"time"
)

func TestNodeType_IsValid(t *testing.T) {
	for _, tc := range []struct {
		typ  NodeType
		want bool
	}{
		{TypeAggregate, true},
		{TypeRequirement, true},
		{TypeBugVerify, true},
		{NodeType("custom_stage"), true},
		{NodeType(""), false},
	} {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("NodeType(%q).IsValid() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestDraftSource_IsValid(t *testing.T) {
	for _, tc := range []struct {
		src  DraftSource
		want bool
	}{
		{SourceAIGenerated, true},
		{SourceAIModified, true},
		{SourceManualCreated, true},
		{SourceManualModified, true},
		{DraftSource("bogus"), false},
		{DraftSource(""), false},
	} {
		if got := tc.src.IsValid(); got != tc.want {
			t.Errorf("DraftSource(%q).IsValid() = %v, want %v", tc.src, got, tc.want)
		}
	}
}

func TestEdgeType_IsValid(t *testing.T) {
	for _, tc := range []struct {
		typ  EdgeType
		want bool
	}{
		{EdgeNext, true},
		{EdgeContain, true},
		{EdgeReference, true},
		{EdgeType("follows"), false},
	} {
		if got := tc.typ.IsValid(); got != tc.want {
			t.Errorf("EdgeType(%q).IsValid() = %v, want %v", tc.typ, got, tc.want)
		}
	}
}

func TestNode_States(t *testing.T) {
	draft := "pending"
	now := time.Now()

	untouched := &Node{ID: "n1", IsDraft: true, DraftContent: &draft, DraftUpdatedAt: &now}
	if untouched.Finalized() {
		t.Error("untouched draft should not be finalized")
	}
	if !untouched.HasDraftContent() {
		t.Error("untouched draft should have draft content")
	}
	if untouched.Status() != "draft" {
		t.Errorf("Status() = %q, want draft", untouched.Status())
	}

	clean := &Node{ID: "n2", Content: "body", CurrentVersion: 2}
	if !clean.Finalized() {
		t.Error("finalized-clean node should be finalized")
	}
	if clean.HasDraftContent() {
		t.Error("finalized-clean node should have no draft content")
	}
	if clean.Status() != "finalized" {
		t.Errorf("Status() = %q, want finalized", clean.Status())
	}

	blank := "   "
	pending := &Node{ID: "n3", Content: "body", CurrentVersion: 1, IsDraft: true, DraftContent: &blank}
	if pending.HasDraftContent() {
		t.Error("whitespace-only draft should not count as draft content")
	}
}

func TestEdge_SelfLoop(t *testing.T) {
	if !(&Edge{Source: "a", Target: "a"}).SelfLoop() {
		t.Error("a→a should be a self loop")
	}
	if (&Edge{Source: "a", Target: "b"}).SelfLoop() {
		t.Error("a→b should not be a self loop")
	}
}

func TestTypedErrors_Is(t *testing.T) {
	for _, tc := range []struct {
		err    error
		target error
	}{
		{&NotFoundError{Kind: "node", ID: "x"}, ErrNotFound},
		{&ConflictError{Kind: "node", ID: "x"}, ErrConflict},
		{&InvalidOperationError{Reason: "no draft"}, ErrInvalidOperation},
		{&AmbiguousMatchError{Identifier: "bug"}, ErrAmbiguousMatch},
		{&ValidationError{Field: "type", Reason: "empty"}, ErrValidation},
	} {
		if !errors.Is(tc.err, tc.target) {
			t.Errorf("errors.Is(%T, %v) = false, want true", tc.err, tc.target)
		}
	}

	if errors.Is(&NotFoundError{Kind: "node", ID: "x"}, ErrConflict) {
		t.Error("NotFoundError should not match ErrConflict")
	}
}

func TestContext_Active(t *testing.T) {
	ctx := &Context{Workflows: map[string]*WorkflowEntry{
		"root1": {Template: "bugfix", Title: "login crash"},
	}}
	if ctx.Active() != nil {
		t.Error("no active id set, Active() should be nil")
	}
	ctx.ActiveWorkflowID = "root1"
	if got := ctx.Active(); got == nil || got.Title != "login crash" {
		t.Errorf("Active() = %+v, want login crash entry", got)
	}
	ctx.ActiveWorkflowID = "missing"
	if ctx.Active() != nil {
		t.Error("active id with no entry should yield nil")
	}
}
