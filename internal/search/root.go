package search

import (
	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/intr"
)

// RootSearcher enumerates legal root moves and delegates each to the
// middle searcher (spec component C6), grounded on original_source/src/
// engine/{search.rs,one_searcher.rs}: search.rs's trait gives the Go
// interface shape (an optional restricted search_moves subset), and
// one_searcher.rs's body gives the tie-break/outcome semantics.
type RootSearcher struct {
	middle      *MiddleSearcher
	middleDepth int
}

// NewRootSearcher wires a MiddleSearcher in at a fixed classical-pass
// depth (middleDepth).
func NewRootSearcher(middle *MiddleSearcher, middleDepth int) *RootSearcher {
	return &RootSearcher{middle: middle, middleDepth: middleDepth}
}

// IntrChecker exposes the shared interruption checker, matching
// Search::intr_checker.
func (s *RootSearcher) IntrChecker() intr.Checker { return s.middle.checker }

// MinDepth is the minimum admissible depth: one root move + a full
// middle pass + one neural ply (spec.md §4.6).
func (s *RootSearcher) MinDepth() int { return s.middleDepth + 2 }

// Search enumerates root moves (optionally restricted to searchMoves),
// searching each via the middle searcher at depth-1, and returns the
// best value (from the root side-to-move's perspective), total node
// count, and principal variation.
func (s *RootSearcher) Search(chain *chessx.MoveChain, depth int, searchMoves []chessx.Move) (int, uint64, []chessx.Move, error) {
	var nodeCount uint64 = 1
	var pv []chessx.Move
	bestValue := MinEval

	if outcome := chain.SetAutoOutcome(); outcome.IsOver {
		v := 0
		if outcome.IsWin {
			v = MinRootMate
		}
		return v, nodeCount, pv, nil
	}
	chain.ClearOutcome()

	moves := chain.LegalMoves()
	if len(searchMoves) > 0 {
		moves = restrictTo(moves, searchMoves)
	}

	for _, mv := range moves {
		if err := chain.Push(mv); err != nil {
			continue
		}
		if outcome := chain.SetAutoOutcome(); outcome.IsOver {
			v := 0
			if outcome.IsWin {
				v = MaxMidMate
			}
			if v >= bestValue {
				bestValue = v
				pv = []chessx.Move{mv}
			}
			nodeCount++
			chain.Pop()
			continue
		}
		negValue, midNodes, midPV, err := s.middle.Search(chain.Last(), s.middleDepth, depth-1)
		if err != nil {
			chain.Pop()
			return 0, nodeCount, nil, err
		}
		value := -negValue
		if value >= bestValue {
			bestValue = value
			pv = append([]chessx.Move{mv}, midPV...)
		}
		nodeCount += midNodes
		chain.Pop()
	}
	return bestValue, nodeCount, pv, nil
}

func restrictTo(moves, allowed []chessx.Move) []chessx.Move {
	out := make([]chessx.Move, 0, len(moves))
	for _, m := range moves {
		for _, a := range allowed {
			if m.From == a.From && m.To == a.To && m.Promo == a.Promo {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
