package planner

import (
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

// Query is the planner's normalized input: the AST root plus everything a
// semantic-validation pass is assumed to have already resolved — the
// referenced tables, the flattened (conjunctive) condition list, the
// projected columns, and optional aggregation/group/having state. Ordering
// lives on the AST root itself (ast.SelectStmt.OrderBy), since only SELECT
// carries one.
//
// Conds is mutated in place as the planner consumes it: MakeOneRel pops
// table-local predicates out of it and then consumes the cross-table
// predicates from the front as it builds the join tree, so a Query must
// not be reused across planning calls.
type Query struct {
	Root        ast.Statement
	Tables      []string
	Conds       []ast.Condition
	Cols        []catalog.ColRef
	GroupCols   []catalog.ColRef
	HasAggr     bool
	HavingConds []ast.Condition
}
