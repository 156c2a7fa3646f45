package planner

import (
	"github.com/latticedb/lattice/pkg/ast"
	"github.com/latticedb/lattice/pkg/catalog"
)

// MatchIndex implements leftmost-prefix index matching (§4.2.1): given a
// table and the conditions local to it, it picks the IndexMeta whose key
// columns form the longest usable prefix against conds, where an equality
// predicate extends the prefix and a single non-equality predicate
// terminates it.
//
// It returns the chosen index's full ordered column-name list, conds
// reordered so the matched predicates come first in index-key order
// followed by the rest in their original order, and whether any index
// scored at least 1. When matched is false, conds is returned unchanged.
func MatchIndex(tab *catalog.TabMeta, conds []ast.Condition) (indexColNames []string, reordered []ast.Condition, matched bool) {
	eqPos := make(map[string]int, len(conds))
	neqPos := make(map[string]int, len(conds))
	for i, c := range conds {
		if c.Op == ast.OpEq {
			eqPos[c.Lhs.ColName] = i
		} else {
			neqPos[c.Lhs.ColName] = i
		}
	}

	bestIdx := -1
	bestLen := 0
	for i, idx := range tab.Indexes {
		length := 0
		for _, col := range idx.Cols {
			if _, ok := eqPos[col.ColName]; ok {
				length++
				continue
			}
			if _, ok := neqPos[col.ColName]; ok {
				length++
			}
			break
		}
		if length > bestLen {
			bestLen = length
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		return nil, conds, false
	}

	chosen := tab.Indexes[bestIdx]
	indexColNames = chosen.ColNames()

	matchedOrder := make([]int, 0, bestLen)
	matchedSet := make(map[int]bool, bestLen)
	for i := 0; i < bestLen; i++ {
		colName := chosen.Cols[i].ColName
		if pos, ok := eqPos[colName]; ok {
			matchedOrder = append(matchedOrder, pos)
			matchedSet[pos] = true
			continue
		}
		if pos, ok := neqPos[colName]; ok {
			matchedOrder = append(matchedOrder, pos)
			matchedSet[pos] = true
		}
	}

	reordered = make([]ast.Condition, 0, len(conds))
	for _, pos := range matchedOrder {
		reordered = append(reordered, conds[pos])
	}
	for i, c := range conds {
		if !matchedSet[i] {
			reordered = append(reordered, c)
		}
	}
	return indexColNames, reordered, true
}
