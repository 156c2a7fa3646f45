package planner

import "github.com/latticedb/lattice/pkg/ast"

// PopConds removes and returns every condition in conds that is either a
// table-local predicate on tabName with a literal right-hand side, or a
// column-vs-column predicate whose two sides name the same table
// (regardless of whether that table is tabName — such a condition is
// table-local no matter which table's turn it is). The remaining
// conditions are written back into conds for the higher operators.
func PopConds(conds *[]ast.Condition, tabName string) []ast.Condition {
	remaining := (*conds)[:0:0]
	var solved []ast.Condition
	for _, c := range *conds {
		local := (c.Lhs.TabName == tabName && c.IsRhsVal) || (!c.IsRhsVal && c.Lhs.TabName == c.RhsCol.TabName)
		if local {
			solved = append(solved, c)
		} else {
			remaining = append(remaining, c)
		}
	}
	*conds = remaining
	return solved
}

// pushConds recursively descends plan, trying to attach cond to the
// deepest JoinPlan whose two children together cover both of cond's
// tables. Return codes: 1 = this subtree holds the table of cond's
// left-hand column, 2 = it holds the table of cond's right-hand column,
// 3 = attached somewhere below (stop), 0 = neither table is in this
// subtree.
//
// This is the clean taxonomy the design notes prefer over the source's
// overlapping 1/2/3/0 encoding; cond is mutated (lhs/rhs swapped, operator
// inverted) when it is attached with its sides reversed from input order.
func pushConds(cond *ast.Condition, plan Plan) int {
	switch p := plan.(type) {
	case *ScanPlan:
		switch {
		case p.Table == cond.Lhs.TabName:
			return 1
		case p.Table == cond.RhsCol.TabName:
			return 2
		default:
			return 0
		}
	case *JoinPlan:
		leftRes := pushConds(cond, p.Left)
		if leftRes == 3 {
			return 3
		}
		rightRes := pushConds(cond, p.Right)
		if rightRes == 3 {
			return 3
		}
		if leftRes == 0 || rightRes == 0 {
			return leftRes + rightRes
		}
		if leftRes == 2 {
			*cond = cond.Swap()
		}
		p.Conds = append(p.Conds, *cond)
		return 3
	default:
		return 0
	}
}
