package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/luckboy/neurina/internal/engine"
)

// ErrUnrecognizedProtocol is returned by Run when the first non-empty
// input line is neither "uci" nor "xboard".
var ErrUnrecognizedProtocol = errors.New("protocol: unrecognized protocol")

// SyzygyPathSetter is consulted for the UCI "setoption name SyzygyPath
// value <path>" / XBoard equivalent; nil disables the option.
type SyzygyPathSetter func(path string)

// Run reads the first non-empty line from r to detect the protocol
// (exactly "uci" or "xboard"), then runs that protocol's loop to
// completion, grounded on spec.md §4.9. Every input line read and output
// line written is teed through log (see StdoutLog).
func Run(eng *engine.Engine, setSyzygyPath SyzygyPathSetter, r io.Reader, log *StdoutLog) error {
	scanner := bufio.NewScanner(r)
	var first string
	for scanner.Scan() {
		first = strings.TrimSpace(scanner.Text())
		log.LogInputLine(scanner.Text())
		if first != "" {
			break
		}
	}
	switch first {
	case "uci":
		return runUCI(eng, setSyzygyPath, scanner, log)
	case "xboard":
		return runXBoard(eng, setSyzygyPath, scanner, log)
	default:
		return ErrUnrecognizedProtocol
	}
}

func nextLine(scanner *bufio.Scanner, log *StdoutLog) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	log.LogInputLine(scanner.Text())
	return strings.TrimSpace(scanner.Text()), true
}
