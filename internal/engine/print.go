package engine

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
)

// Printer renders search progress to a writer, grounded on
// original_source/src/engine/print.rs: a narrow interface so the
// protocol layer (UCI "info"/"bestmove" lines) and any other caller can
// each supply their own wire format without the Thinker knowing about
// either wire protocol.
type Printer interface {
	PrintPV(w io.Writer, board chessx.Board, depth, value int, elapsed time.Duration, nodeCount uint64, pv []chessx.Move) error
	PrintBestMove(w io.Writer, board chessx.Board, mv chessx.Move) error
	PrintOutcome(w io.Writer, outcome chessx.Outcome) error
}

// EmptyPrinter discards everything, matching print.rs's EmptyPrinter: the
// default until a protocol handler installs its own.
type EmptyPrinter struct{}

func (EmptyPrinter) PrintPV(io.Writer, chessx.Board, int, int, time.Duration, uint64, []chessx.Move) error {
	return nil
}
func (EmptyPrinter) PrintBestMove(io.Writer, chessx.Board, chessx.Move) error { return nil }
func (EmptyPrinter) PrintOutcome(io.Writer, chessx.Outcome) error            { return nil }

// UCIPrinter renders "info ..." and "bestmove ..." lines per spec.md
// §6's UCI subset.
type UCIPrinter struct{}

func (UCIPrinter) PrintPV(w io.Writer, board chessx.Board, depth, value int, elapsed time.Duration, nodeCount uint64, pv []chessx.Move) error {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	nps := nodeCount * 1000 / uint64(ms)
	pvStr := make([]string, len(pv))
	for i, mv := range pv {
		pvStr[i] = mv.String()
	}
	_, err := fmt.Fprintf(w, "info depth %d multipv 1 score cp %d time %d nodes %d nps %d pv %s\n",
		depth, value, ms, nodeCount, nps, strings.Join(pvStr, " "))
	return err
}

func (UCIPrinter) PrintBestMove(w io.Writer, board chessx.Board, mv chessx.Move) error {
	_, err := fmt.Fprintf(w, "bestmove %s\n", mv.String())
	return err
}

func (UCIPrinter) PrintOutcome(io.Writer, chessx.Outcome) error { return nil }

// XBoardPrinter renders the "<depth> <cp> <centisec> <nodes> <pv…>",
// "move <uci>", and result lines XBoard expects, grounded on
// original_source/src/engine/xboard.rs's XboardPrinter. PV moves are
// rendered in UCI notation rather than XBoard's SAN convention: chessx
// exposes no SAN-rendering helper and none of SPEC_FULL.md's core
// components need one, so reproducing full SAN styling here would be
// scope beyond this protocol adapter's narrow job (see DESIGN.md).
type XBoardPrinter struct{}

func (XBoardPrinter) PrintPV(w io.Writer, board chessx.Board, depth, value int, elapsed time.Duration, nodeCount uint64, pv []chessx.Move) error {
	pvStr := make([]string, len(pv))
	for i, mv := range pv {
		pvStr[i] = mv.String()
	}
	_, err := fmt.Fprintf(w, "%d %d %d %d %s\n", depth, value, elapsed.Milliseconds()/10, nodeCount, strings.Join(pvStr, " "))
	return err
}

func (XBoardPrinter) PrintBestMove(w io.Writer, board chessx.Board, mv chessx.Move) error {
	_, err := fmt.Fprintf(w, "move %s\n", mv.String())
	return err
}

func (XBoardPrinter) PrintOutcome(w io.Writer, outcome chessx.Outcome) error {
	var err error
	switch {
	case outcome.IsWin && outcome.Winner == chessx.White:
		_, err = fmt.Fprintln(w, "1-0 {White mates}")
	case outcome.IsWin:
		_, err = fmt.Fprintln(w, "0-1 {Black mates}")
	case outcome.IsDraw:
		_, err = fmt.Fprintln(w, "1/2-1/2 {Draw}")
	}
	return err
}
