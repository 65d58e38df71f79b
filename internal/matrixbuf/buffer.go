package matrixbuf

// Checker is the narrow interruption-check collaborator (spec C13);
// declared locally to avoid matrixbuf depending on the intr package.
type Checker interface {
	Check() error
}

// Buffer stages a slice of heterogeneous elements into column-batched
// input/output matrices, chunked by MaxColCount (spec component C2).
//
// Unlike original_source's shared/matrix_buffer.rs (fixed output count at
// construction), Buffer takes its output-matrix count per DoElems call,
// matching trainer/gradient_adder.rs's dynamic move_count need — see
// DESIGN.md's "MatrixBuffer output-count shape" open question.
type Buffer[T any] struct {
	inputRowCount  int
	outputRowCount int
	maxColCount    int
	inputBuf       []float32
	outputBufs     [][]float32
}

// NewBuffer allocates a buffer for inputRowCount-row inputs and
// outputRowCount-row outputs, chunked to at most maxColCount columns.
func NewBuffer[T any](inputRowCount, outputRowCount, maxColCount int) *Buffer[T] {
	return &Buffer[T]{
		inputRowCount:  inputRowCount,
		outputRowCount: outputRowCount,
		maxColCount:    maxColCount,
		inputBuf:       make([]float32, inputRowCount*maxColCount),
	}
}

func (b *Buffer[T]) MaxColCount() int { return b.maxColCount }

// ElemsAreFull reports whether a bucket of sampleCount elements has
// reached the buffer's maximum column width and should be flushed.
func (b *Buffer[T]) ElemsAreFull(sampleCount int) bool { return sampleCount >= b.maxColCount }

func (b *Buffer[T]) resizeOutputs(outputCount int) {
	if len(b.outputBufs) == outputCount {
		return
	}
	b.outputBufs = make([][]float32, outputCount)
	for i := range b.outputBufs {
		b.outputBufs[i] = make([]float32, b.outputRowCount*b.maxColCount)
	}
}

// Fill populates one column (col of colCount) of the staging buffers for
// a single element.
type Fill[T any] func(elem *T, inputElems []float32, outputBufs [][]float32, col, colCount int)

// Process receives one fully-staged chunk: the input matrix, the
// outputCount output matrices, and the elements that made up the chunk.
type Process[T any] func(input *Matrix, outputs []*Matrix, chunk []T) error

// DoElems walks elems in chunks of at most MaxColCount, calling fill once
// per element to stage it and process once per chunk with the resulting
// matrices. Interruption is checked once per chunk, matching
// original_source's MatrixBufferInner::do_elems.
func (b *Buffer[T]) DoElems(elems []T, outputCount int, checker Checker, fill Fill[T], process Process[T]) error {
	b.resizeOutputs(outputCount)
	for i := 0; i < len(elems); i += b.maxColCount {
		if checker != nil {
			if err := checker.Check(); err != nil {
				return err
			}
		}
		colCount := b.maxColCount
		if rem := len(elems) - i; rem < colCount {
			colCount = rem
		}
		for j := 0; j < colCount; j++ {
			fill(&elems[i+j], b.inputBuf, b.outputBufs, j, colCount)
		}
		input := NewWithElems(b.inputRowCount, colCount, cloneSlice(b.inputBuf[:b.inputRowCount*colCount]))
		outputs := make([]*Matrix, outputCount)
		for k := range outputs {
			outputs[k] = NewWithElems(b.outputRowCount, colCount, cloneSlice(b.outputBufs[k][:b.outputRowCount*colCount]))
		}
		if err := process(input, outputs, elems[i:i+colCount]); err != nil {
			return err
		}
	}
	return nil
}

func cloneSlice(s []float32) []float32 {
	out := make([]float32, len(s))
	copy(out, s)
	return out
}
