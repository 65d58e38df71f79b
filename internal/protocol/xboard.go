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

// xboardState tracks the session flags XBoard's command set mutates
// (force mode and post/nopost), grounded
// on original_source/src/engine/xboard.rs's Context.
type xboardState struct {
	forceMode bool
	post      bool
}

func runXBoard(eng *engine.Engine, setSyzygyPath SyzygyPathSetter, scanner *bufio.Scanner, log *StdoutLog) error {
	eng.Thinker().SetPrinter(engine.XBoardPrinter{})
	st := &xboardState{post: true}

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
		case "protover":
			xboardFeatures(log)
		case "new":
			eng.Stop()
			eng.DoMoveChain(func(mc *chessx.MoveChain) { *mc = *chessx.NewInitialChain() })
			st.forceMode = false
		case "force":
			eng.Stop()
			st.forceMode = true
		case "playother":
			st.forceMode = false
		case "go":
			st.forceMode = false
			eng.Go(nil, nil, nil, nil, true, true, st.post, st.post)
		case "level":
			xboardLevel(eng, args)
		case "st":
			if len(args) >= 1 {
				if secs, err := strconv.Atoi(args[0]); err == nil {
					eng.SetTimeControl(engine.Fixed(time.Duration(secs) * time.Second))
				}
			}
		case "sd":
			// max search depth; accepted but ignored: XBoard searches in
			// this port run without a depth limit.
		case "time":
			if len(args) >= 1 {
				if cs, err := strconv.Atoi(args[0]); err == nil {
					eng.SetRemainingTime(time.Duration(cs) * 10 * time.Millisecond)
				}
			}
		case "otim":
			// opponent's clock, ignored
		case "?":
			eng.Stop()
		case "ping":
			if len(args) >= 1 {
				fmt.Fprintf(log, "pong %s\n", args[0])
			} else {
				fmt.Fprintln(log, "pong")
			}
		case "result":
			eng.Stop()
		case "setboard":
			eng.Stop()
			fen := strings.Join(args, " ")
			eng.DoMoveChain(func(mc *chessx.MoveChain) {
				nc, err := chessx.NewChainFromFEN(fen)
				if err != nil {
					return
				}
				*mc = *nc
			})
		case "hint", "bk":
			// no book/hint support; silently ignored
		case "undo":
			eng.Stop()
			eng.DoMoveChain(func(mc *chessx.MoveChain) { mc.Pop() })
		case "remove":
			eng.Stop()
			eng.DoMoveChain(func(mc *chessx.MoveChain) { mc.Pop(); mc.Pop() })
		case "post":
			st.post = true
		case "nopost":
			st.post = false
		case "analyze":
			eng.Go(nil, nil, nil, nil, false, false, true, false)
		case "exit":
			eng.Stop()
		case ".":
			// periodic analysis status request; nothing to report
		case "hard", "easy":
			// pondering toggle, ignored (no pondering support)
		case "quit":
			eng.Quit()
			return nil
		case "display":
			eng.DoMoveChain(func(mc *chessx.MoveChain) {
				fmt.Fprintln(log, mc.Last().FEN())
			})
		default:
			if !st.forceMode {
				if xboardTryMove(eng, cmd, st.post) {
					continue
				}
			}
			fmt.Fprintf(log, "Error (unknown command): %s\n", cmd)
		}
	}
}

func xboardFeatures(log *StdoutLog) {
	fmt.Fprintln(log, `feature done=0`)
	fmt.Fprintln(log, `feature ping=1 setboard=1 playother=1 time=1 draw=0 sigint=0 sigterm=0 reuse=1 analyze=1 myname="Neurina" variants="normal" colors=0 name=0 done=1`)
}

func xboardLevel(eng *engine.Engine, args []string) {
	if len(args) < 3 {
		return
	}
	mps, _ := strconv.Atoi(args[0])
	baseMinutes, _ := strconv.Atoi(strings.Split(args[1], ":")[0])
	incSecs, _ := strconv.Atoi(args[2])
	eng.SetTimeControl(engine.Level(mps, time.Duration(incSecs)*time.Second))
	eng.SetRemainingTime(time.Duration(baseMinutes) * time.Minute)
}

// xboardTryMove attempts to apply s (UCI or SAN) as the opponent's move,
// then lets the engine reply, matching XBoard's implicit "any move string
// makes the engine move" convention.
func xboardTryMove(eng *engine.Engine, s string, canPrintPV bool) bool {
	applied := false
	eng.DoMoveChain(func(mc *chessx.MoveChain) {
		if mv, ok := chessx.ParseUCIMove(s); ok {
			if err := mc.Push(mv); err == nil {
				applied = true
				return
			}
		}
		if err := mc.PushSAN(s); err == nil {
			applied = true
		}
	})
	if !applied {
		return false
	}
	eng.Go(nil, nil, nil, nil, true, true, canPrintPV, true)
	return true
}
