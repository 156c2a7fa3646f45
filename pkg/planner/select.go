package planner

import (
	"fmt"

	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

// generateAggregationGroupPlan wraps plan in an AggregationPlan when the
// query has any aggregate output or GROUP BY column; otherwise it is a
// pass-through (§4.2.5).
func generateAggregationGroupPlan(query *Query, plan Plan) Plan {
	if !query.HasAggr && len(query.GroupCols) == 0 {
		return plan
	}
	return &AggregationPlan{
		Child:       plan,
		OutputCols:  query.Cols,
		GroupCols:   query.GroupCols,
		HavingConds: query.HavingConds,
	}
}

// generateSortPlan wraps plan in a SortPlan when the query's SELECT
// carries an ORDER BY, resolving the order column's fully-qualified
// identity across every selected table's schema. An order column found in
// more than one table is ErrAmbiguousColumn; found in none is
// ErrUnknownColumn (§4.2.5, §7).
func (pl *Planner) generateSortPlan(query *Query, plan Plan) (Plan, error) {
	sel, ok := query.Root.(*ast.SelectStmt)
	if !ok || sel.OrderBy == nil {
		return plan, nil
	}

	target := sel.OrderBy.Col.ColName
	var resolved catalog.ColRef
	found := false
	for _, tabName := range query.Tables {
		tab, err := pl.catalog.GetTable(tabName)
		if err != nil {
			return nil, fmt.Errorf("planner: %w", err)
		}
		if col, ok := tab.ColByName(target); ok {
			if found {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousColumn, target)
			}
			resolved = catalog.ColRef{TabName: tabName, ColName: col.Name}
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, target)
	}
	return &SortPlan{Child: plan, Col: resolved, Desc: sel.OrderBy.Desc}, nil
}

// physicalOptimization builds the join tree and wraps it with aggregation
// and sort, mirroring the source's physical_optimization (no statistics-
// driven costing: Non-goals exclude that).
func (pl *Planner) physicalOptimization(query *Query) (Plan, error) {
	plan, err := pl.MakeOneRel(query)
	if err != nil {
		return nil, err
	}
	plan = generateAggregationGroupPlan(query, plan)
	return pl.generateSortPlan(query, plan)
}

// logicalOptimize is the query-rewrite extension point. The source leaves
// it as an identity TODO; Non-goals here exclude query rewrite beyond
// predicate pushdown, so this stays a deliberate no-op.
func (pl *Planner) logicalOptimize(query *Query) *Query {
	return query
}

// generateSelectPlan produces the full SELECT plan: logical optimization
// (a no-op), physical optimization (join/aggregation/sort), then a final
// ProjectionPlan over the selected columns.
func (pl *Planner) generateSelectPlan(query *Query) (Plan, error) {
	query = pl.logicalOptimize(query)
	root, err := pl.physicalOptimization(query)
	if err != nil {
		return nil, err
	}
	return &ProjectionPlan{Child: root, Cols: query.Cols}, nil
}
