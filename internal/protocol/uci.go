package protocol

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/engine"
)

func runUCI(eng *engine.Engine, setSyzygyPath SyzygyPathSetter, scanner *bufio.Scanner, log *StdoutLog) error {
	eng.Thinker().SetPrinter(engine.UCIPrinter{})
	uciHandshake(log)

	for {
		line, ok := nextLine(scanner, log)
		if !ok {
			return nil
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "isready":
			fmt.Fprintln(log, "readyok")
		case "setoption":
			uciSetOption(args, setSyzygyPath)
		case "ucinewgame":
			eng.Stop()
			eng.DoMoveChain(func(mc *chessx.MoveChain) { *mc = *chessx.NewInitialChain() })
		case "position":
			eng.Stop()
			uciPosition(eng, args)
		case "go":
			uciGo(eng, args)
		case "stop":
			eng.Stop()
		case "ponderhit":
			// ignored, per spec.md §6
		case "display":
			uciDisplay(eng, log)
		case "quit":
			eng.Quit()
			return nil
		default:
			fmt.Fprintf(log, "Unknown command: %s\n", cmd)
		}
	}
}

func uciHandshake(log *StdoutLog) {
	fmt.Fprintln(log, "id name Neurina")
	fmt.Fprintln(log, "id author Lukasz Szpakowski")
	fmt.Fprintln(log, "option name SyzygyPath type string default <empty>")
	fmt.Fprintln(log, "uciok")
}

func uciSetOption(args []string, setSyzygyPath SyzygyPathSetter) {
	if len(args) < 4 || args[0] != "name" {
		return
	}
	nameEnd := indexOf(args[1:], "value")
	if nameEnd < 0 {
		return
	}
	name := strings.Join(args[1:1+nameEnd], " ")
	value := strings.Join(args[2+nameEnd:], " ")
	if strings.EqualFold(name, "SyzygyPath") && setSyzygyPath != nil {
		setSyzygyPath(value)
	}
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func uciPosition(eng *engine.Engine, args []string) {
	eng.DoMoveChain(func(mc *chessx.MoveChain) {
		if len(args) == 0 {
			return
		}
		i := 0
		switch {
		case args[i] == "startpos":
			*mc = *chessx.NewInitialChain()
			i++
		case args[i] == "fen" && len(args) >= i+5:
			fenFields := args[i+1 : i+5]
			i += 5
			for i < len(args) && args[i] != "moves" {
				fenFields = append(fenFields, args[i])
				i++
			}
			nc, err := chessx.NewChainFromFEN(strings.Join(fenFields, " "))
			if err != nil {
				return
			}
			*mc = *nc
		default:
			return
		}
		if i < len(args) && args[i] == "moves" {
			for _, s := range args[i+1:] {
				mv, ok := chessx.ParseUCIMove(s)
				if !ok {
					return
				}
				if err := mc.Push(mv); err != nil {
					return
				}
			}
		}
	})
}

func uciGo(eng *engine.Engine, args []string) {
	eng.Stop()

	var searchMoves []chessx.Move
	var whiteTime, blackTime, whiteInc, blackInc *time.Duration
	var moveCountToGo int
	var depth *int
	var nodeCount *uint64
	var checkmateMoveCount *int
	var moveTime *time.Duration

	i := 0
	for i < len(args) {
		switch args[i] {
		case "searchmoves":
			i++
			for i < len(args) {
				mv, ok := chessx.ParseUCIMove(args[i])
				if !ok {
					break
				}
				searchMoves = append(searchMoves, mv)
				i++
			}
		case "wtime":
			if d, ok := parseMillisArg(args, i); ok {
				whiteTime = &d
			}
			i += 2
		case "btime":
			if d, ok := parseMillisArg(args, i); ok {
				blackTime = &d
			}
			i += 2
		case "winc":
			if d, ok := parseMillisArg(args, i); ok {
				whiteInc = &d
			}
			i += 2
		case "binc":
			if d, ok := parseMillisArg(args, i); ok {
				blackInc = &d
			}
			i += 2
		case "movestogo":
			if i+1 < len(args) {
				n, _ := strconv.Atoi(args[i+1])
				moveCountToGo = n
			}
			i += 2
		case "depth":
			if i+1 < len(args) {
				n, _ := strconv.Atoi(args[i+1])
				depth = &n
			}
			i += 2
		case "nodes":
			if i+1 < len(args) {
				n, _ := strconv.ParseUint(args[i+1], 10, 64)
				nodeCount = &n
			}
			i += 2
		case "mate":
			if i+1 < len(args) {
				n, _ := strconv.Atoi(args[i+1])
				checkmateMoveCount = &n
			}
			i += 2
		case "movetime":
			if d, ok := parseMillisArg(args, i); ok {
				moveTime = &d
			}
			i += 2
		default:
			i++
		}
	}

	isTimeout := false
	if moveTime != nil {
		eng.SetTimeControl(engine.Fixed(*moveTime))
		isTimeout = true
	} else {
		var remaining, inc *time.Duration
		eng.DoMoveChain(func(mc *chessx.MoveChain) {
			if mc.Last().Side() == chessx.White {
				remaining, inc = whiteTime, whiteInc
			} else {
				remaining, inc = blackTime, blackInc
			}
		})
		if remaining != nil {
			incDur := time.Duration(0)
			if inc != nil {
				incDur = *inc
			}
			eng.SetTimeControl(engine.Level(0, incDur))
			eng.SetRemainingTime(*remaining)
			isTimeout = true
		}
	}
	eng.SetMoveCountToGo(moveCountToGo)
	// canMakeBestMove is false: UCI expects the GUI to resend "position"
	// with the move appended, not the engine to self-apply it.
	eng.Go(searchMoves, depth, nodeCount, checkmateMoveCount, isTimeout, false, true, true)
}

func parseMillisArg(args []string, i int) (time.Duration, bool) {
	if i+1 >= len(args) {
		return 0, false
	}
	n, err := strconv.ParseInt(args[i+1], 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}

func uciDisplay(eng *engine.Engine, log *StdoutLog) {
	eng.DoMoveChain(func(mc *chessx.MoveChain) {
		fmt.Fprintln(log, mc.Last().FEN())
	})
}
