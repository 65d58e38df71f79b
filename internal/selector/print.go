package selector

import (
	"fmt"
	"io"
)

// Printer reports selection progress, matching
// original_source/src/selector/print.rs's Print trait.
type Printer interface {
	Print(w io.Writer, puzzleCount uint64, isDone bool) error
}

// EmptyPrinter discards everything, matching selector/print.rs's
// EmptyPrinter.
type EmptyPrinter struct{}

func (EmptyPrinter) Print(io.Writer, uint64, bool) error { return nil }

// DefaultPrinter renders the exact format
// original_source/src/selector/printer.rs uses.
type DefaultPrinter struct{}

func (DefaultPrinter) Print(w io.Writer, puzzleCount uint64, isDone bool) error {
	var err error
	if isDone {
		_, err = fmt.Fprintf(w, "selecting (%d) ... done\n", puzzleCount)
	} else {
		_, err = fmt.Fprintf(w, "selecting (%d) ...\r", puzzleCount)
	}
	return err
}
