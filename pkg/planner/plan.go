package planner

import (
	"fmt"
	"strings"

	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

// Plan is a physical operator-tree node. Plan trees are acyclic,
// constructed bottom-up, and immutable once do_planner returns.
type Plan interface {
	planNode()
}

// ScanKind distinguishes a full-table scan from an index-probing scan.
type ScanKind int

const (
	SeqScan ScanKind = iota
	IndexScan
)

func (k ScanKind) String() string {
	if k == IndexScan {
		return "IndexScan"
	}
	return "SeqScan"
}

// ScanPlan is a leaf: either a sequential scan or an index scan over one
// table, carrying every condition that is local to that table.
type ScanPlan struct {
	Kind          ScanKind
	Table         string
	Conds         []ast.Condition
	IndexColNames []string
}

func (*ScanPlan) planNode() {}

// JoinKind selects the join algorithm a JoinPlan will be executed with.
type JoinKind int

const (
	NestLoop JoinKind = iota
	SortMerge
	SortMergeWithIndex
)

func (k JoinKind) String() string {
	switch k {
	case SortMerge:
		return "SortMerge"
	case SortMergeWithIndex:
		return "SortMergeWithIndex"
	default:
		return "NestLoop"
	}
}

// JoinPlan joins two subtrees. Conds is normalized so that every
// condition's left column names a table reachable through Left.
type JoinPlan struct {
	Kind  JoinKind
	Left  Plan
	Right Plan
	Conds []ast.Condition
}

func (*JoinPlan) planNode() {}

// SortPlan orders its child's output by a single resolved column.
type SortPlan struct {
	Child Plan
	Col   catalog.ColRef
	Desc  bool
}

func (*SortPlan) planNode() {}

// AggregationPlan groups its child's output and evaluates aggregate
// output columns, filtering groups with HavingConds.
type AggregationPlan struct {
	Child       Plan
	OutputCols  []catalog.ColRef
	GroupCols   []catalog.ColRef
	HavingConds []ast.Condition
}

func (*AggregationPlan) planNode() {}

// ProjectionPlan restricts its child's output to the selected columns.
type ProjectionPlan struct {
	Child Plan
	Cols  []catalog.ColRef
}

func (*ProjectionPlan) planNode() {}

// DMLKind distinguishes the four data-manipulation plan shapes.
type DMLKind int

const (
	DMLInsert DMLKind = iota
	DMLDelete
	DMLUpdate
	DMLSelect
)

func (k DMLKind) String() string {
	switch k {
	case DMLInsert:
		return "Insert"
	case DMLDelete:
		return "Delete"
	case DMLUpdate:
		return "Update"
	default:
		return "Select"
	}
}

// DMLPlan wraps a scan/projection child (or, for Insert, literal rows)
// with the statement-level bookkeeping an executor needs: the target
// table, inserted values, filter conditions, and SET clauses.
type DMLPlan struct {
	Kind       DMLKind
	Child      Plan
	Table      string
	Values     []catalog.Value
	Conds      []ast.Condition
	SetClauses []ast.SetClause
}

func (*DMLPlan) planNode() {}

// DDLKind distinguishes the five schema-modification plan shapes.
type DDLKind int

const (
	DDLCreateTable DDLKind = iota
	DDLDropTable
	DDLCreateIndex
	DDLDropIndex
	DDLShowIndex
)

func (k DDLKind) String() string {
	switch k {
	case DDLCreateTable:
		return "CreateTable"
	case DDLDropTable:
		return "DropTable"
	case DDLCreateIndex:
		return "CreateIndex"
	case DDLDropIndex:
		return "DropIndex"
	default:
		return "ShowIndex"
	}
}

// DDLPlan is a leaf describing one schema-modification statement.
type DDLPlan struct {
	Kind     DDLKind
	Table    string
	ColNames []string
	ColDefs  []ast.ColDef
}

func (*DDLPlan) planNode() {}

// Explain renders a Plan tree as an indented, human-readable outline —
// used by the CLI's plan command and the REPL's \plan command.
func Explain(p Plan) string {
	var b strings.Builder
	explain(&b, p, "")
	return b.String()
}

func explain(b *strings.Builder, p Plan, indent string) {
	switch n := p.(type) {
	case *ScanPlan:
		fmt.Fprintf(b, "%s%s(%s) conds=%d", indent, n.Kind, n.Table, len(n.Conds))
		if len(n.IndexColNames) > 0 {
			fmt.Fprintf(b, " index=%v", n.IndexColNames)
		}
		b.WriteByte('\n')
	case *JoinPlan:
		fmt.Fprintf(b, "%sJoin[%s] conds=%d\n", indent, n.Kind, len(n.Conds))
		explain(b, n.Left, indent+"  ")
		explain(b, n.Right, indent+"  ")
	case *SortPlan:
		fmt.Fprintf(b, "%sSort(%s desc=%t)\n", indent, n.Col, n.Desc)
		explain(b, n.Child, indent+"  ")
	case *AggregationPlan:
		fmt.Fprintf(b, "%sAggregation(group=%v)\n", indent, n.GroupCols)
		explain(b, n.Child, indent+"  ")
	case *ProjectionPlan:
		fmt.Fprintf(b, "%sProjection(%v)\n", indent, n.Cols)
		explain(b, n.Child, indent+"  ")
	case *DMLPlan:
		fmt.Fprintf(b, "%sDML[%s] table=%q\n", indent, n.Kind, n.Table)
		if n.Child != nil {
			explain(b, n.Child, indent+"  ")
		}
	case *DDLPlan:
		fmt.Fprintf(b, "%sDDL[%s] table=%q\n", indent, n.Kind, n.Table)
	default:
		fmt.Fprintf(b, "%s<unknown plan node>\n", indent)
	}
}
