// Package planner turns a validated Query into a Plan tree: index
// selection via leftmost-prefix matching, predicate pushdown, join-tree
// construction, and the final sort/aggregation/projection wrapping. See
// Planner.DoPlanner for the single entry point.
package planner

import (
	"fmt"

	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/internal/logger"
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

// Planner is pure with respect to persistent state except for reading the
// catalog; it is safe for concurrent use as long as the catalog is.
type Planner struct {
	catalog *catalog.Catalog
	cfg     config.PlannerConfig
	log     *logger.Logger
}

// New constructs a Planner backed by cat, configured by cfg.
func New(cat *catalog.Catalog, cfg config.PlannerConfig, log *logger.Logger) *Planner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Planner{catalog: cat, cfg: cfg, log: log}
}

// DoPlanner is the planner's single entry point: it dispatches on the
// Query's AST root kind and returns the corresponding Plan tree.
func (pl *Planner) DoPlanner(query *Query) (Plan, error) {
	switch stmt := query.Root.(type) {
	case *ast.CreateTableStmt:
		return &DDLPlan{Kind: DDLCreateTable, Table: stmt.TableName, ColDefs: stmt.Cols}, nil

	case *ast.DropTableStmt:
		return &DDLPlan{Kind: DDLDropTable, Table: stmt.TableName}, nil

	case *ast.CreateIndexStmt:
		return &DDLPlan{Kind: DDLCreateIndex, Table: stmt.TableName, ColNames: stmt.Cols}, nil

	case *ast.DropIndexStmt:
		return &DDLPlan{Kind: DDLDropIndex, Table: stmt.TableName, ColNames: stmt.Cols}, nil

	case *ast.ShowIndexStmt:
		return &DDLPlan{Kind: DDLShowIndex, Table: stmt.TableName}, nil

	case *ast.InsertStmt:
		return &DMLPlan{Kind: DMLInsert, Table: stmt.TableName, Values: stmt.Values}, nil

	case *ast.DeleteStmt:
		// Conditions live on Query, not the AST node: a single-table
		// statement goes through the same index-matching path a
		// SELECT's scans do, just without a join to build.
		scan, reordered, err := pl.scanPlanForTable(stmt.TableName, query.Conds)
		if err != nil {
			return nil, err
		}
		return &DMLPlan{Kind: DMLDelete, Child: scan, Table: stmt.TableName, Conds: reordered}, nil

	case *ast.UpdateStmt:
		scan, reordered, err := pl.scanPlanForTable(stmt.TableName, query.Conds)
		if err != nil {
			return nil, err
		}
		return &DMLPlan{
			Kind:       DMLUpdate,
			Child:      scan,
			Table:      stmt.TableName,
			Conds:      reordered,
			SetClauses: stmt.SetClauses,
		}, nil

	case *ast.SelectStmt:
		pl.log.Debug("planner: planning select", "tables", query.Tables, "conds", len(query.Conds))
		proj, err := pl.generateSelectPlan(query)
		if err != nil {
			return nil, err
		}
		return &DMLPlan{Kind: DMLSelect, Child: proj}, nil

	default:
		return nil, fmt.Errorf("%w: unexpected AST root", ErrInternal)
	}
}
