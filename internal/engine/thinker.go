package engine

import (
	"io"
	"sync"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/search"
)

// RootProber is consulted once, before the iterative search loop starts;
// a hit is used as the best move outright and the search is skipped
// entirely, per spec.md §4.7 step 2 ("If Syzygy is configured and yields
// a best move for the current position, skip search entirely"). Wired by
// the tablebase package's adapted Prober.
type RootProber interface {
	ProbeRootMove(board chessx.Board) (chessx.Move, bool)
}

// Thinker runs the iterative-deepening driver (spec component C7),
// grounded on original_source/src/engine/thinker.rs. It owns the
// interruption checker shared with the root/middle/neural searchers, and
// is started/stopped/waited-on by an Engine running it on its own
// goroutine.
type Thinker struct {
	root    *search.RootSearcher
	checker *intr.RealChecker
	writer  io.Writer
	printer Printer
	prober  RootProber

	mu        sync.Mutex
	cond      *sync.Cond
	isStopped bool
}

// NewThinker builds a Thinker over root, sharing checker with root's
// middle/neural searchers, writing PV/best-move/outcome lines to w.
func NewThinker(root *search.RootSearcher, checker *intr.RealChecker, w io.Writer) *Thinker {
	t := &Thinker{
		root:      root,
		checker:   checker,
		writer:    w,
		printer:   EmptyPrinter{},
		isStopped: true,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// SetPrinter installs the wire-format renderer (e.g. UCIPrinter).
func (t *Thinker) SetPrinter(p Printer) { t.printer = p }

// SetProber installs the pre-search tablebase probe, or nil to disable it.
func (t *Thinker) SetProber(p RootProber) { t.prober = p }

// IntrChecker exposes the shared interruption checker.
func (t *Thinker) IntrChecker() intr.Checker { return t.checker }

// Start marks the thinker as actively searching.
func (t *Thinker) Start() {
	t.mu.Lock()
	t.isStopped = false
	t.mu.Unlock()
}

// Wait blocks until the current (if any) search has finished.
func (t *Thinker) Wait() {
	t.mu.Lock()
	for !t.isStopped {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

// IsStopped reports whether the thinker is idle.
func (t *Thinker) IsStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isStopped
}

func (t *Thinker) stop() {
	t.mu.Lock()
	t.isStopped = true
	t.mu.Unlock()
	t.cond.Broadcast()
}

// Think runs the iterative-deepening loop to the first of maxDepth,
// maxNodeCount, or checkmateMoveCount (each nil meaning "no limit"),
// bounded by timeout (nil meaning "no timeout"). It emits a PV line per
// completed depth when canPrintPV, the chosen move when
// canPrintBestMoveAndOutcome (plus the outcome, when canMakeBestMove is
// also set and the applied move ends the game), and applies the chosen
// move to chain when canMakeBestMove. Always releases
// the thinker (unblocking Wait) on return, including on error; thinker.rs
// instead leaves that to the caller on the error path, but unconditional
// release here avoids a caller that forgets to do so wedging Wait.
func (t *Thinker) Think(
	chain *chessx.MoveChain,
	searchMoves []chessx.Move,
	maxDepth *int,
	maxNodeCount *uint64,
	checkmateMoveCount *int,
	timeout *time.Duration,
	canMakeBestMove, canPrintPV, canPrintBestMoveAndOutcome bool,
) error {
	defer t.stop()

	now := time.Now()
	t.checker.Reset()
	if timeout != nil {
		t.checker.SetTimeout(now, *timeout)
	} else {
		t.checker.ClearTimeout()
	}

	var bestMove *chessx.Move
	if t.prober != nil {
		if mv, ok := t.prober.ProbeRootMove(chain.Last()); ok {
			bestMove = &mv
		}
	}

	if bestMove == nil {
		depth := t.root.MinDepth()
		for {
			value, nodeCount, pv, err := t.root.Search(chain, depth, searchMoves)
			if err != nil {
				break
			}
			if len(pv) > 0 {
				mv := pv[0]
				bestMove = &mv
			}
			if canPrintPV {
				if err := t.printer.PrintPV(t.writer, chain.Last(), depth, value, time.Since(now), nodeCount, pv); err != nil {
					return err
				}
			}
			if maxDepth != nil && depth+1 > *maxDepth {
				break
			}
			if maxNodeCount != nil && nodeCount >= *maxNodeCount {
				break
			}
			if checkmateMoveCount != nil {
				if n, ok := search.MoveCountToCheckmate(value, depth); ok && n <= *checkmateMoveCount*2 {
					break
				}
			}
			depth++
		}
	}

	if bestMove == nil {
		t.checker.Stop()
		return nil
	}

	if canPrintBestMoveAndOutcome {
		if err := t.printer.PrintBestMove(t.writer, chain.Last(), *bestMove); err != nil {
			return err
		}
	}
	if canMakeBestMove {
		if err := chain.Push(*bestMove); err == nil {
			outcome := chain.SetAutoOutcome()
			if canPrintBestMoveAndOutcome && outcome.IsOver {
				if err := t.printer.PrintOutcome(t.writer, outcome); err != nil {
					return err
				}
			}
		}
	}
	t.checker.Stop()
	return nil
}
