package search

import (
	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/neural"
)

// leaf is one frontier position reached by pass 1, together with the
// move sequence (relative to the search root) that reaches it.
type leaf struct {
	board Board
	pv    []chessx.Move
}

// Board is a local alias to keep this file's signatures short.
type Board = chessx.Board

// treeNode is the fixed-depth pass-1 exploration tree, recorded once and
// collapsed twice: first with static-eval leaf values to decide whether
// neural refinement is worthwhile, then (if so) with neural-rollout leaf
// values. Recording the tree once and collapsing it twice is equivalent
// to middle_searcher.rs's "run negamax again", since the set of explored
// moves and their legality cannot change between the two passes.
type treeNode struct {
	move      chessx.Move // the move made to reach this node (root node's is zero)
	isOutcome bool
	outcomeV  int // fixed value for a pass-1 terminal outcome (checkmate/stalemate)
	leafIdx   int // index into leaves, or -1 if this is an internal node
	children  []*treeNode
}

// MiddleSearcher runs a fixed-depth classical negamax, then (unless
// pass 1 already found a decisive mate) re-evaluates every leaf through
// a neural rollout (spec component C5), grounded on original_source/src/
// engine/middle_searcher.rs.
type MiddleSearcher struct {
	checker  intr.Checker
	searcher *neural.Searcher
	nodes    uint64
}

// NewMiddleSearcher builds a MiddleSearcher using searcher for the
// neural-rollout pass.
func NewMiddleSearcher(checker intr.Checker, searcher *neural.Searcher) *MiddleSearcher {
	return &MiddleSearcher{checker: checker, searcher: searcher}
}

// Search negates: returns the value from the side-to-move-at-board's
// perspective, the node count, and the principal variation, for a
// fixed-depth middleDepth classical pass plus (neuralDepth = depth -
// middleDepth) neural rollout plies.
func (s *MiddleSearcher) Search(board Board, middleDepth, depth int) (int, uint64, []chessx.Move, error) {
	s.nodes = 0
	var leaves []leaf
	root, err := s.buildTree(board, middleDepth, nil, &leaves)
	if err != nil {
		return 0, s.nodes, nil, err
	}

	values := make([]int, len(leaves))
	for i, lf := range leaves {
		values[i] = StaticEval(lf.board)
	}
	bestValue, bestPV := collapse(root, values)
	if len(leaves) == 0 || isDecisive(bestValue) {
		return bestValue, s.nodes, bestPV, nil
	}

	neuralDepth := depth - middleDepth
	if neuralDepth < 0 {
		neuralDepth = 0
	}
	pvs := make([][]chessx.Move, len(leaves))
	origLen := make([]int, len(leaves))
	for i, lf := range leaves {
		pv := make([]chessx.Move, len(lf.pv))
		copy(pv, lf.pv)
		pvs[i] = pv
		origLen[i] = len(lf.pv)
	}
	if err := s.searcher.Search(board, pvs, neuralDepth); err != nil {
		return 0, s.nodes, nil, err
	}

	for i, lf := range leaves {
		pos := replayFrom(board, pvs[i])
		plyWalked := len(pvs[i]) - origLen[i]
		var v int
		if !pos.HasLegalMoves() {
			if pos.InCheck() {
				v = MinMate - (neuralDepth - plyWalked)
			} else {
				v = 0
			}
		} else {
			v = StaticEval(pos)
		}
		if plyWalked%2 == 1 {
			v = -v
		}
		values[i] = v
		leaves[i].pv = pvs[i]
	}
	bestValue, bestPV = collapseWithLeaves(root, values, leaves)
	return bestValue, s.nodes, bestPV, nil
}

func replayFrom(board Board, pv []chessx.Move) Board {
	b := board
	for _, mv := range pv {
		nb, ok := chessx.Push(b, mv)
		if !ok {
			break
		}
		b = nb
	}
	return b
}

// isDecisive reports whether v already lies in a mate band, meaning
// pass-1's classical result can be trusted without neural refinement.
func isDecisive(v int) bool { return v >= MaxMidMate || v <= MinMidMate }

const nodesPerCheck = 1024

func (s *MiddleSearcher) buildTree(board Board, remainingDepth int, pvPrefix []chessx.Move, leaves *[]leaf) (*treeNode, error) {
	s.nodes++
	if s.nodes%nodesPerCheck == 0 {
		if err := s.checker.Check(); err != nil {
			return nil, err
		}
	}
	if outcome := chessx.AutoOutcomeFrom(board); outcome.IsOver {
		v := 0
		if outcome.IsWin {
			v = -(MaxMidMate - 0)
		}
		return &treeNode{isOutcome: true, outcomeV: v, leafIdx: -1}, nil
	}
	if remainingDepth == 0 {
		idx := len(*leaves)
		pv := make([]chessx.Move, len(pvPrefix))
		copy(pv, pvPrefix)
		*leaves = append(*leaves, leaf{board: board, pv: pv})
		return &treeNode{leafIdx: idx}, nil
	}
	moves := chessx.LegalMovesFrom(board)
	node := &treeNode{leafIdx: -1}
	for _, mv := range moves {
		child, ok := chessx.Push(board, mv)
		if !ok {
			continue
		}
		childPV := append(append([]chessx.Move{}, pvPrefix...), mv)
		childNode, err := s.buildTree(child, remainingDepth-1, childPV, leaves)
		if err != nil {
			return nil, err
		}
		childNode.move = mv
		node.children = append(node.children, childNode)
	}
	return node, nil
}

func collapse(node *treeNode, leafValues []int) (int, []chessx.Move) {
	return collapseWithLeaves(node, leafValues, nil)
}

func collapseWithLeaves(node *treeNode, leafValues []int, leaves []leaf) (int, []chessx.Move) {
	if node.isOutcome {
		return node.outcomeV, nil
	}
	if node.leafIdx >= 0 {
		var pv []chessx.Move
		if leaves != nil {
			pv = leaves[node.leafIdx].pv
		}
		return leafValues[node.leafIdx], pv
	}
	best := MinEval
	var bestPV []chessx.Move
	for _, child := range node.children {
		v, pv := collapseWithLeaves(child, leafValues, leaves)
		v = -v
		if v >= best {
			best = v
			bestPV = append([]chessx.Move{child.move}, pv...)
		}
	}
	return best, bestPV
}
