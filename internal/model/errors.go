package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the five failure kinds every layer agrees on.
// Stores and services wrap these with context; callers test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrAmbiguousMatch   = errors.New("ambiguous match")
	ErrValidation       = errors.New("validation failed")
)

// NotFoundError reports a missing node, edge, version, or workflow.
type NotFoundError struct {
	Kind string // "node", "edge", "workflow", …
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a duplicate id on create.
type ConflictError struct {
	Kind string
	ID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InvalidOperationError reports a lifecycle violation, e.g. finalizing a
// node that has no pending draft.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string { return e.Reason }

func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

// AmbiguousMatchError reports that a workflow identifier matched more than
// one candidate. Candidates carry enough detail for the caller to list them.
type AmbiguousMatchError struct {
	Identifier string
	Candidates []*WorkflowSummary
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("identifier %q matches %d workflows", e.Identifier, len(e.Candidates))
}

func (e *AmbiguousMatchError) Is(target error) bool { return target == ErrAmbiguousMatch }

// ValidationError reports an unknown node/edge type or malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
