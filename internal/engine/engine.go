// Package engine implements the time-controlled iterative driver (spec
// components C7 Thinker, C8 Engine), grounded on original_source/src/
// engine/{engine.rs,thinker.rs} and structurally on the teacher's single-
// worker-goroutine engine (the classical alpha-beta search it drove is
// replaced outright by internal/search.RootSearcher).
package engine

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
)

// TimeControl selects how Engine.calculateTimeout budgets the next move.
type TimeControl struct {
	kind timeControlKind
	mps  int
	inc  time.Duration
	time time.Duration
}

type timeControlKind int

const (
	levelControl timeControlKind = iota
	fixedControl
)

// Level is a classical "N moves in T plus increment" time control; mps
// of 0 means "all remaining moves in one time bank".
func Level(mps int, inc time.Duration) TimeControl {
	return TimeControl{kind: levelControl, mps: mps, inc: inc}
}

// Fixed allots a flat duration per move.
func Fixed(d time.Duration) TimeControl {
	return TimeControl{kind: fixedControl, time: d}
}

const safetyMargin = 500 * time.Millisecond

type thinkingParams struct {
	searchMoves            []chessx.Move
	depth                  *int
	nodeCount              *uint64
	moveCountToCheckmate   *int
	now                    time.Time
	timeout                *time.Duration
	canMakeBestMove        bool
	canPrintPV             bool
	canPrintBestMoveAndOutcome bool
}

type threadCommand struct {
	kind  commandKind
	think thinkingParams
}

type commandKind int

const (
	cmdThink commandKind = iota
	cmdQuit
)

// Engine controls a move chain, a time control, and the iterative search
// thread running a Thinker (spec component C8), grounded on
// original_source/src/engine/engine.rs.
type Engine struct {
	thinker *Thinker
	cmds    chan threadCommand
	done    chan struct{}

	mu              sync.Mutex
	moveChain       *chessx.MoveChain
	timeControl     TimeControl
	remainingTime   time.Duration
	moveCountToGo   int
}

// New builds an engine wrapping thinker, starting at the initial
// position with a 5-minute time bank and no move-count-to-go override.
func New(thinker *Thinker) *Engine {
	e := &Engine{
		thinker:       thinker,
		cmds:          make(chan threadCommand),
		done:          make(chan struct{}),
		moveChain:     chessx.NewInitialChain(),
		timeControl:   Level(0, 0),
		remainingTime: 5 * time.Minute,
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.done)
	for cmd := range e.cmds {
		switch cmd.kind {
		case cmdThink:
			p := cmd.think
			e.mu.Lock()
			chain := e.moveChain
			e.mu.Unlock()
			err := e.thinker.Think(chain, p.searchMoves, p.depth, p.nodeCount, p.moveCountToCheckmate, p.timeout,
				p.canMakeBestMove, p.canPrintPV, p.canPrintBestMoveAndOutcome)
			if err != nil {
				fmt.Fprintf(os.Stderr, "I/O error: %v\n", err)
			}
		case cmdQuit:
			return
		}
	}
}

// Thinker returns the underlying iterative-deepening driver.
func (e *Engine) Thinker() *Thinker { return e.thinker }

// TimeControl returns the currently configured time control.
func (e *Engine) TimeControl() TimeControl {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeControl
}

// SetTimeControl installs a new time control.
func (e *Engine) SetTimeControl(tc TimeControl) {
	e.mu.Lock()
	e.timeControl = tc
	e.mu.Unlock()
}

// RemainingTime returns the time left on the clock.
func (e *Engine) RemainingTime() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remainingTime
}

// SetRemainingTime updates the time left on the clock.
func (e *Engine) SetRemainingTime(d time.Duration) {
	e.mu.Lock()
	e.remainingTime = d
	e.mu.Unlock()
}

// MoveCountToGo returns the configured moves-to-go override, or 0 if
// Engine should derive it from the time control and move chain length.
func (e *Engine) MoveCountToGo() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveCountToGo
}

// SetMoveCountToGo sets the moves-to-go override.
func (e *Engine) SetMoveCountToGo(n int) {
	e.mu.Lock()
	e.moveCountToGo = n
	e.mu.Unlock()
}

// DoMoveChain waits for the thinker to be idle, then runs f against the
// move chain under lock, matching engine.rs's do_move_chain.
func (e *Engine) DoMoveChain(f func(*chessx.MoveChain)) {
	e.thinker.Wait()
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.moveChain)
}

// Stop requests interruption of any running search.
func (e *Engine) Stop() { e.thinker.checker.Stop() }

// IsStopped reports whether the thinker is idle.
func (e *Engine) IsStopped() bool { return e.thinker.IsStopped() }

func (e *Engine) calculateTimeout() time.Duration {
	e.mu.Lock()
	tc := e.timeControl
	remaining := e.remainingTime
	moveCountToGo := e.moveCountToGo
	chainLen := e.moveChain.Len()
	e.mu.Unlock()

	switch tc.kind {
	case levelControl:
		n := moveCountToGo
		if n <= 0 {
			if tc.mps > 0 {
				n = tc.mps - (chainLen/2)%tc.mps
				if n <= 0 {
					n = tc.mps
				}
			} else {
				n = 30
			}
		}
		timeout := remaining/time.Duration(n) + tc.inc/2
		if timeout >= remaining {
			if remaining > safetyMargin {
				timeout = remaining - safetyMargin
			} else {
				timeout = 0
			}
		}
		return timeout
	default: // fixedControl
		if tc.time > safetyMargin {
			return tc.time - safetyMargin
		}
		return 0
	}
}

// Go stops any running search, waits for the thinker, and (unless the
// current position is already a terminal outcome) dispatches a new
// think to the worker goroutine. searchMoves, depth, nodeCount, and
// checkmateMoveCount are nil for "no limit"; isTimeout selects whether
// calculateTimeout's budget is applied at all, matching engine.rs's go.
func (e *Engine) Go(searchMoves []chessx.Move, depth *int, nodeCount *uint64, checkmateMoveCount *int, isTimeout bool, canMakeBestMove, canPrintPV, canPrintBestMoveAndOutcome bool) {
	e.Stop()
	e.thinker.Wait()

	e.mu.Lock()
	outcome := e.moveChain.SetAutoOutcome()
	e.moveChain.ClearOutcome()
	e.mu.Unlock()
	if outcome.IsOver {
		return
	}

	e.thinker.Start()
	var timeout *time.Duration
	if isTimeout {
		d := e.calculateTimeout()
		timeout = &d
	}
	e.cmds <- threadCommand{
		kind: cmdThink,
		think: thinkingParams{
			searchMoves:                searchMoves,
			depth:                      depth,
			nodeCount:                  nodeCount,
			moveCountToCheckmate:       checkmateMoveCount,
			now:                        time.Now(),
			timeout:                    timeout,
			canMakeBestMove:            canMakeBestMove,
			canPrintPV:                 canPrintPV,
			canPrintBestMoveAndOutcome: canPrintBestMoveAndOutcome,
		},
	}
}

// Quit stops any running search, waits for the thinker, and terminates
// the worker goroutine.
func (e *Engine) Quit() {
	e.Stop()
	e.thinker.Wait()
	e.cmds <- threadCommand{kind: cmdQuit}
	<-e.done
}
