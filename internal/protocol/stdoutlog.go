// Package protocol implements the UCI/XBoard dispatch loop (spec
// component C9), grounded on original_source/src/engine/{io.rs,uci.rs,
// xboard.rs} and structurally on the teacher's internal/uci/uci.go
// (bufio.Scanner stdin loop, fmt-based plain-text responses).
package protocol

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdoutLog tees every byte written to it to stdout and, if a log writer
// is configured, to that writer too, prefixing each output line with
// "output: ", mirroring original_source/src/engine/io.rs's StdoutLog.
// LogInputLine mirrors its "input: " counterpart for lines read from
// stdin.
type StdoutLog struct {
	stdout          io.Writer
	log             io.Writer
	hasOutputPrefix bool
}

// NewStdoutLog builds a StdoutLog writing to os.Stdout, additionally
// teeing to log if non-nil.
func NewStdoutLog(log io.Writer) *StdoutLog {
	return &StdoutLog{stdout: os.Stdout, log: log, hasOutputPrefix: true}
}

func (s *StdoutLog) Write(buf []byte) (int, error) {
	n, err := s.stdout.Write(buf)
	if err != nil {
		return n, err
	}
	if s.log == nil {
		return n, nil
	}
	start := 0
	for i := 0; i < len(buf); i++ {
		if s.hasOutputPrefix {
			if _, err := io.WriteString(s.log, "output: "); err != nil {
				return n, err
			}
		}
		if buf[i] == '\n' {
			if _, err := s.log.Write(buf[start : i+1]); err != nil {
				return n, err
			}
			start = i + 1
			s.hasOutputPrefix = true
		} else {
			s.hasOutputPrefix = false
		}
	}
	if start < len(buf) {
		if _, err := s.log.Write(buf[start:]); err != nil {
			return n, err
		}
	}
	return n, nil
}

// LogInputLine records a line read from stdin to the log sink, if any.
func (s *StdoutLog) LogInputLine(line string) {
	if s.log == nil {
		return
	}
	fmt.Fprintf(s.log, "input: %s\n", strings.TrimRight(line, "\r\n"))
	if f, ok := s.log.(interface{ Sync() error }); ok {
		f.Sync()
	}
}
