package planner

import (
	"fmt"

	"github.com/latticedb/lattice/pkg/ast"
)

// scanPlanForTable builds a ScanPlan for one table given its local
// conditions, choosing IndexScan when MatchIndex finds a usable index.
// It returns the (possibly reordered) conditions alongside the plan, since
// callers that also build a DMLPlan must share the same reordering.
func (pl *Planner) scanPlanForTable(tabName string, conds []ast.Condition) (*ScanPlan, []ast.Condition, error) {
	tab, err := pl.catalog.GetTable(tabName)
	if err != nil {
		return nil, conds, fmt.Errorf("planner: %w", err)
	}
	indexColNames, reordered, matched := MatchIndex(tab, conds)
	if !matched {
		return &ScanPlan{Kind: SeqScan, Table: tabName, Conds: conds}, conds, nil
	}
	return &ScanPlan{Kind: IndexScan, Table: tabName, Conds: reordered, IndexColNames: indexColNames}, reordered, nil
}

// MakeOneRel builds the join tree for a multi-table query (§4.2.4): one
// ScanPlan per referenced table, a first join honoring FROM-clause order,
// subsequent joins threaded in as each condition is consumed, and a final
// cartesian closure over any table no condition ever touched.
func (pl *Planner) MakeOneRel(query *Query) (Plan, error) {
	tables := query.Tables
	scans := make([]Plan, len(tables))
	for i, t := range tables {
		local := PopConds(&query.Conds, t)
		sp, _, err := pl.scanPlanForTable(t, local)
		if err != nil {
			return nil, err
		}
		scans[i] = sp
	}
	if len(tables) == 1 {
		return scans[0], nil
	}

	scanned := make([]bool, len(tables))
	var joinedTables []string

	popScan := func(table string) Plan {
		for i, t := range tables {
			if t == table && !scanned[i] {
				scanned[i] = true
				joinedTables = append(joinedTables, table)
				return scans[i]
			}
		}
		return nil
	}

	var root Plan
	if len(query.Conds) == 0 {
		root = scans[0]
		scanned[0] = true
	} else {
		cond := query.Conds[0]
		query.Conds = query.Conds[1:]

		left := popScan(cond.Lhs.TabName)
		right := popScan(cond.RhsCol.TabName)
		// Preserve the FROM clause's table order in the first join: if the
		// two sides landed reversed relative to tables[0], tables[1], swap
		// both the children and the condition back into FROM order.
		if len(tables) >= 2 && cond.Lhs.TabName == tables[1] && cond.RhsCol.TabName == tables[0] {
			left, right = right, left
			cond = cond.Swap()
		}

		joinPlan, err := pl.buildFirstJoin(cond, left, right)
		if err != nil {
			return nil, err
		}
		root = joinPlan

		for len(query.Conds) > 0 {
			c := query.Conds[0]
			query.Conds = query.Conds[1:]

			leftJoined := contains(joinedTables, c.Lhs.TabName)
			rightJoined := contains(joinedTables, c.RhsCol.TabName)

			var leftNeed, rightNeed Plan
			needReverse := false
			if !leftJoined {
				leftNeed = popScan(c.Lhs.TabName)
			}
			if !rightJoined {
				rightNeed = popScan(c.RhsCol.TabName)
				needReverse = true
			}

			switch {
			case leftNeed != nil && rightNeed != nil:
				temp := &JoinPlan{Kind: NestLoop, Left: leftNeed, Right: rightNeed, Conds: []ast.Condition{c}}
				root = &JoinPlan{Kind: NestLoop, Left: temp, Right: root}
			case leftNeed != nil || rightNeed != nil:
				if needReverse {
					c = c.Swap()
					leftNeed = rightNeed
				}
				root = &JoinPlan{Kind: NestLoop, Left: leftNeed, Right: root, Conds: []ast.Condition{c}}
			default:
				pushConds(&c, root)
			}
		}
	}

	for i := range tables {
		if !scanned[i] {
			root = &JoinPlan{Kind: NestLoop, Left: scans[i], Right: root}
		}
	}

	return root, nil
}

// buildFirstJoin chooses the join strategy for the first join according to
// the enabled executors, matching the precedence of the source: both
// flags enabled defaults to nested loop, same as nested-loop-only.
func (pl *Planner) buildFirstJoin(cond ast.Condition, left, right Plan) (Plan, error) {
	conds := []ast.Condition{cond}
	switch {
	case pl.cfg.EnableNestedLoopJoin:
		return &JoinPlan{Kind: NestLoop, Left: left, Right: right, Conds: conds}, nil
	case pl.cfg.EnableSortMergeJoin:
		leftCols, _, leftOK := pl.indexColsFor(cond.Lhs.TabName, conds)
		swapped := cond.Swap()
		rightCols, _, rightOK := pl.indexColsFor(swapped.Lhs.TabName, []ast.Condition{swapped})
		if leftOK && rightOK {
			left = &ScanPlan{Kind: IndexScan, Table: cond.Lhs.TabName, IndexColNames: leftCols}
			right = &ScanPlan{Kind: IndexScan, Table: cond.RhsCol.TabName, IndexColNames: rightCols}
			return &JoinPlan{Kind: SortMergeWithIndex, Left: left, Right: right, Conds: conds}, nil
		}
		return &JoinPlan{Kind: SortMerge, Left: left, Right: right, Conds: conds}, nil
	default:
		return nil, fmt.Errorf("%w", ErrEngineConfig)
	}
}

func (pl *Planner) indexColsFor(tabName string, conds []ast.Condition) ([]string, []ast.Condition, bool) {
	tab, err := pl.catalog.GetTable(tabName)
	if err != nil {
		return nil, conds, false
	}
	return MatchIndex(tab, conds)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
