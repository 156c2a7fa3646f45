package planner

import (
	"testing"

	"github.com/latticedb/lattice/internal/config"
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

func col(tab, name string) catalog.ColRef {
	return catalog.ColRef{TabName: tab, ColName: name}
}

func eqVal(tab, name string, v int32) ast.Condition {
	return ast.Condition{Lhs: col(tab, name), Op: ast.OpEq, IsRhsVal: true, RhsVal: catalog.NewInt32(v)}
}

func gtVal(tab, name string, v int32) ast.Condition {
	return ast.Condition{Lhs: col(tab, name), Op: ast.OpGt, IsRhsVal: true, RhsVal: catalog.NewInt32(v)}
}

func colCond(ltab, lcol, rtab, rcol string) ast.Condition {
	return ast.Condition{Lhs: col(ltab, lcol), Op: ast.OpEq, IsRhsVal: false, RhsCol: col(rtab, rcol)}
}

func newTestPlanner(t *testing.T) (*Planner, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	cfg := config.PlannerConfig{EnableNestedLoopJoin: true}
	return New(cat, cfg, nil), cat
}

// S3 — index leftmost match.
func TestMatchIndexLeftmostPrefix(t *testing.T) {
	_, cat := newTestPlanner(t)
	cols := []catalog.ColMeta{
		{Name: "a", Type: catalog.TypeInt32},
		{Name: "b", Type: catalog.TypeInt32},
		{Name: "c", Type: catalog.TypeInt32},
	}
	if _, err := cat.CreateTable("t", cols); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := cat.CreateIndex("t", catalog.IndexMeta{
		Name: "idx_abc",
		Cols: []catalog.ColRef{{ColName: "a"}, {ColName: "b"}, {ColName: "c"}},
	}); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}

	tab, err := cat.GetTable("t")
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}

	conds := []ast.Condition{eqVal("t", "b", 1), eqVal("t", "a", 2), gtVal("t", "c", 0)}
	indexCols, reordered, matched := MatchIndex(tab, conds)
	if !matched {
		t.Fatal("expected a matched index")
	}
	wantIdx := []string{"a", "b", "c"}
	if !equalStrings(indexCols, wantIdx) {
		t.Errorf("index_col_names = %v, want %v", indexCols, wantIdx)
	}
	if len(reordered) != 3 || reordered[0].Lhs.ColName != "a" || reordered[1].Lhs.ColName != "b" || reordered[2].Lhs.ColName != "c" {
		t.Errorf("reordered conds = %+v, want a, b, c order", reordered)
	}
}

// Stability of matched index: ties resolve to the earliest-declared index.
func TestMatchIndexTieBreaking(t *testing.T) {
	_, cat := newTestPlanner(t)
	cols := []catalog.ColMeta{{Name: "x", Type: catalog.TypeInt32}, {Name: "y", Type: catalog.TypeInt32}}
	if _, err := cat.CreateTable("t", cols); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := cat.CreateIndex("t", catalog.IndexMeta{Name: "idx_x", Cols: []catalog.ColRef{{ColName: "x"}}}); err != nil {
		t.Fatal(err)
	}
	if err := cat.CreateIndex("t", catalog.IndexMeta{Name: "idx_y", Cols: []catalog.ColRef{{ColName: "y"}}}); err != nil {
		t.Fatal(err)
	}

	tab, _ := cat.GetTable("t")
	conds := []ast.Condition{eqVal("t", "x", 1), eqVal("t", "y", 2)}
	indexCols, _, matched := MatchIndex(tab, conds)
	if !matched {
		t.Fatal("expected a matched index")
	}
	if !equalStrings(indexCols, []string{"x"}) {
		t.Errorf("expected earliest-declared index idx_x to win tie, got %v", indexCols)
	}
}

func TestMatchIndexNoIndex(t *testing.T) {
	_, cat := newTestPlanner(t)
	if _, err := cat.CreateTable("t", []catalog.ColMeta{{Name: "a", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}
	tab, _ := cat.GetTable("t")
	_, reordered, matched := MatchIndex(tab, []ast.Condition{gtVal("t", "z", 1)})
	if matched {
		t.Error("expected no index match")
	}
	if len(reordered) != 1 {
		t.Error("expected unmatched conds returned unchanged")
	}
}

func TestPopConds(t *testing.T) {
	conds := []ast.Condition{
		eqVal("r", "x", 1),
		colCond("r", "z", "r", "w"),
		colCond("r", "x", "s", "y"),
	}
	solved := PopConds(&conds, "r")
	if len(solved) != 2 {
		t.Fatalf("expected 2 table-local conditions popped, got %d: %+v", len(solved), solved)
	}
	if len(conds) != 1 {
		t.Fatalf("expected 1 condition remaining, got %d", len(conds))
	}
	if conds[0].Lhs.TabName != "r" || conds[0].RhsCol.TabName != "s" {
		t.Errorf("expected the cross-table condition to remain, got %+v", conds[0])
	}
}

func setupRSCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := cat.CreateTable("r", []catalog.ColMeta{{Name: "x", Type: catalog.TypeInt32}, {Name: "z", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.CreateTable("s", []catalog.ColMeta{{Name: "y", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}
	return cat
}

// S4 — pushdown: SELECT * FROM r, s WHERE r.x = s.y AND r.z > 3.
func TestPushdownSoundness(t *testing.T) {
	cat := setupRSCatalog(t)
	cfg := config.PlannerConfig{EnableNestedLoopJoin: true}
	pl := New(cat, cfg, nil)

	q := &Query{
		Root:   &ast.SelectStmt{Tables: []string{"r", "s"}},
		Tables: []string{"r", "s"},
		Conds:  []ast.Condition{colCond("r", "x", "s", "y"), gtVal("r", "z", 3)},
	}
	plan, err := pl.MakeOneRel(q)
	if err != nil {
		t.Fatalf("MakeOneRel: %v", err)
	}
	join, ok := plan.(*JoinPlan)
	if !ok {
		t.Fatalf("expected JoinPlan root, got %T", plan)
	}
	if len(join.Conds) != 1 || join.Conds[0].Lhs.TabName != "r" {
		t.Errorf("expected join cond with lhs on r, got %+v", join.Conds)
	}
	scanR, ok := join.Left.(*ScanPlan)
	if !ok || scanR.Table != "r" {
		t.Fatalf("expected left child ScanPlan(r), got %+v", join.Left)
	}
	if len(scanR.Conds) != 1 || scanR.Conds[0].Lhs.ColName != "z" {
		t.Errorf("expected r's scan to carry z > 3, got %+v", scanR.Conds)
	}
}

// S5 — FROM-order preservation:
// SELECT * FROM item, stock WHERE s_i_id = i_id ORDER BY i_id.
func TestFromOrderPreservation(t *testing.T) {
	cat, err := catalog.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := cat.CreateTable("item", []catalog.ColMeta{{Name: "i_id", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.CreateTable("stock", []catalog.ColMeta{{Name: "s_i_id", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}

	cfg := config.PlannerConfig{EnableNestedLoopJoin: true}
	pl := New(cat, cfg, nil)

	q := &Query{
		Root:   &ast.SelectStmt{Tables: []string{"item", "stock"}},
		Tables: []string{"item", "stock"},
		Conds:  []ast.Condition{colCond("stock", "s_i_id", "item", "i_id")},
	}
	plan, err := pl.MakeOneRel(q)
	if err != nil {
		t.Fatalf("MakeOneRel: %v", err)
	}
	join, ok := plan.(*JoinPlan)
	if !ok {
		t.Fatalf("expected JoinPlan root, got %T", plan)
	}
	scan, ok := join.Left.(*ScanPlan)
	if !ok || scan.Table != "item" {
		t.Fatalf("expected item on the left of the first join, got %+v", join.Left)
	}
	if len(join.Conds) != 1 || join.Conds[0].Lhs.TabName != "item" {
		t.Errorf("expected join condition rewritten so lhs references item, got %+v", join.Conds)
	}
}

// S6 — cartesian closure: SELECT * FROM a, b (no conditions).
func TestCartesianClosure(t *testing.T) {
	cat, err := catalog.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if _, err := cat.CreateTable("a", []catalog.ColMeta{{Name: "id", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.CreateTable("b", []catalog.ColMeta{{Name: "id", Type: catalog.TypeInt32}}); err != nil {
		t.Fatal(err)
	}

	cfg := config.PlannerConfig{EnableNestedLoopJoin: true}
	pl := New(cat, cfg, nil)

	q := &Query{
		Root:   &ast.SelectStmt{Tables: []string{"a", "b"}},
		Tables: []string{"a", "b"},
	}
	plan, err := pl.MakeOneRel(q)
	if err != nil {
		t.Fatalf("MakeOneRel: %v", err)
	}
	join, ok := plan.(*JoinPlan)
	if !ok {
		t.Fatalf("expected JoinPlan root, got %T", plan)
	}
	if len(join.Conds) != 0 {
		t.Errorf("expected empty join conditions, got %+v", join.Conds)
	}
}

func TestEngineConfigErrorWhenNoJoinEnabled(t *testing.T) {
	cat := setupRSCatalog(t)
	pl := New(cat, config.PlannerConfig{}, nil)
	q := &Query{
		Root:   &ast.SelectStmt{Tables: []string{"r", "s"}},
		Tables: []string{"r", "s"},
		Conds:  []ast.Condition{colCond("r", "x", "s", "y")},
	}
	if _, err := pl.MakeOneRel(q); err == nil {
		t.Fatal("expected ErrEngineConfig")
	}
}

func TestDoPlannerDDLAndDML(t *testing.T) {
	cat := setupRSCatalog(t)
	pl := New(cat, config.PlannerConfig{EnableNestedLoopJoin: true}, nil)

	createPlan, err := pl.DoPlanner(&Query{Root: &ast.CreateTableStmt{
		TableName: "widgets",
		Cols:      []ast.ColDef{{Name: "id", Type: catalog.TypeInt32, Length: 4}},
	}})
	if err != nil {
		t.Fatalf("DoPlanner(CreateTable): %v", err)
	}
	ddl, ok := createPlan.(*DDLPlan)
	if !ok || ddl.Kind != DDLCreateTable || ddl.Table != "widgets" {
		t.Errorf("unexpected create-table plan: %+v", createPlan)
	}

	insertPlan, err := pl.DoPlanner(&Query{Root: &ast.InsertStmt{
		TableName: "r",
		Values:    []catalog.Value{catalog.NewInt32(1), catalog.NewInt32(2)},
	}})
	if err != nil {
		t.Fatalf("DoPlanner(Insert): %v", err)
	}
	dml, ok := insertPlan.(*DMLPlan)
	if !ok || dml.Kind != DMLInsert || len(dml.Values) != 2 {
		t.Errorf("unexpected insert plan: %+v", insertPlan)
	}

	deletePlan, err := pl.DoPlanner(&Query{
		Root:   &ast.DeleteStmt{TableName: "r"},
		Tables: []string{"r"},
		Conds:  []ast.Condition{eqVal("r", "x", 5)},
	})
	if err != nil {
		t.Fatalf("DoPlanner(Delete): %v", err)
	}
	delPlan, ok := deletePlan.(*DMLPlan)
	if !ok || delPlan.Kind != DMLDelete {
		t.Errorf("unexpected delete plan: %+v", deletePlan)
	}
	if scan, ok := delPlan.Child.(*ScanPlan); !ok || scan.Table != "r" {
		t.Errorf("expected delete plan's child to scan r, got %+v", delPlan.Child)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
