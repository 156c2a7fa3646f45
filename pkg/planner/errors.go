package planner

import "errors"

// ErrInternal marks a planner invariant violation: an AST shape the
// planner does not know how to dispatch on, or a field the caller should
// have validated before invoking do_planner.
var ErrInternal = errors.New("planner: internal error")

// ErrEngineConfig is returned when a join is required but neither
// nested-loop nor sort-merge join is enabled.
var ErrEngineConfig = errors.New("planner: no join executor enabled")

// ErrAmbiguousColumn is returned when an ORDER BY column name resolves
// against more than one selected table's schema.
var ErrAmbiguousColumn = errors.New("planner: ambiguous column")

// ErrUnknownColumn is returned when an ORDER BY column name resolves
// against none of the selected tables' schemas.
var ErrUnknownColumn = errors.New("planner: unknown column")
