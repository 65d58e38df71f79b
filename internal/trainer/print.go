package trainer

import (
	"fmt"
	"io"
)

// Printer reports training progress, matching
// original_source/src/trainer/print.rs's Print trait: one line per call,
// carriage-returned while running and newline-terminated once done.
type Printer interface {
	Print(w io.Writer, sampleCount, computedMinibatchCount, minibatchCount uint64, isDone bool) error
}

// EmptyPrinter discards everything, matching print.rs's EmptyPrinter.
type EmptyPrinter struct{}

func (EmptyPrinter) Print(io.Writer, uint64, uint64, uint64, bool) error { return nil }

// DefaultPrinter renders the exact format original_source/src/trainer/
// printer.rs uses.
type DefaultPrinter struct{}

func (DefaultPrinter) Print(w io.Writer, sampleCount, computedMinibatchCount, minibatchCount uint64, isDone bool) error {
	var err error
	if isDone {
		_, err = fmt.Fprintf(w, "computing (%d) (%d/%d) ... done\n", sampleCount, computedMinibatchCount, minibatchCount)
	} else {
		_, err = fmt.Fprintf(w, "computing (%d) (%d/%d) ...\r", sampleCount, computedMinibatchCount, minibatchCount)
	}
	return err
}
