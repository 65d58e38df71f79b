package trainer

import (
	"sync"
	"sync/atomic"

	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
)

// GradientAdderMaxColCount is the default minibatch column width,
// matching gradient_adder.rs's GradientAdder::MAX_COL_COUNT.
const GradientAdderMaxColCount = 1024

// GradientAdder computes a one-shot forward/backward pass over a whole
// minibatch's full move sequence (D search tiers and P PV tiers both
// equal to the sequence length), grounded on
// original_source/src/trainer/gradient_adder.rs. It is the default
// GradientAdd implementation; OneGradientAdder instead replays its
// minibatch one ply at a time, re-encoding the board between plies.
type GradientAdder struct {
	checker intr.Checker
	encoder *encoding.Encoder

	mu             sync.Mutex
	network        *neural.Network
	gradient       *neural.Gradient
	allSampleCount atomic.Uint64

	buf *matrixbuf.Buffer[DataSample]
}

// NewGradientAdder builds a GradientAdder over network, batching up to
// maxColCount samples per forward/backward pass.
func NewGradientAdder(checker intr.Checker, encoder *encoding.Encoder, network *neural.Network, maxColCount int) *GradientAdder {
	return &GradientAdder{
		checker: checker,
		encoder: encoder,
		network: network,
		buf:     matrixbuf.NewBuffer[DataSample](encoding.BoardRowCount, encoder.MoveRowCount(), maxColCount),
	}
}

func (ga *GradientAdder) IntrChecker() intr.Checker { return ga.checker }

func (ga *GradientAdder) SamplesAreFull(sampleCount int) bool {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	return ga.buf.ElemsAreFull(sampleCount)
}

func (ga *GradientAdder) Start() {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	ga.gradient = nil
	ga.allSampleCount.Store(0)
}

// Compute stages samples (all sharing the same move-sequence length
// moveCount) into one input matrix plus moveCount one-hot output
// matrices, runs a single Forward(depth=moveCount, pv=moveCount), reads
// off each output column's top-1 move against the expected one-hot to
// accumulate (passed, total) counts, and — when areGradients is set —
// backpropagates and folds the resulting gradient bundle into the
// accumulator.
func (ga *GradientAdder) Compute(samples []DataSample, moveCount int, areGradients bool) (uint64, uint64, error) {
	ga.mu.Lock()
	defer ga.mu.Unlock()

	var passedOutputCount, allOutputCount uint64
	err := ga.buf.DoElems(samples, moveCount, ga.checker,
		func(sample *DataSample, inputElems []float32, outputBufs [][]float32, col, colCount int) {
			ga.encoder.BoardToCol(sample.Board, inputElems, col, colCount)
			side := sample.Board.Side()
			for k := range outputBufs {
				ga.encoder.MoveToCol(sample.Moves[k], side, outputBufs[k], col, colCount)
			}
		},
		func(x *matrixbuf.Matrix, ys []*matrixbuf.Matrix, chunk []DataSample) error {
			colCount := len(chunk)
			var hs, outs []*matrixbuf.Matrix
			ferr := ga.network.Forward(x, moveCount, moveCount, ga.checker,
				func(h *matrixbuf.Matrix) error {
					if areGradients {
						hs = append(hs, h)
					}
					return nil
				},
				func(o *matrixbuf.Matrix) error {
					outs = append(outs, o)
					return nil
				})
			if ferr != nil {
				return ferr
			}
			for p, o := range outs {
				y := ys[p]
				for k := 0; k < colCount; k++ {
					best := o.ColArgmax(k)
					if y.At(best, k) > 0 {
						passedOutputCount++
					}
					allOutputCount++
				}
			}
			if areGradients {
				grad := ga.network.Backward(x, hs, outs, ys, moveCount, moveCount)
				if ga.gradient == nil {
					ga.gradient = grad
				} else {
					ga.gradient.AddAssign(grad)
				}
			}
			return nil
		})
	if err != nil {
		return 0, 0, &InterruptedError{Err: err}
	}
	ga.allSampleCount.Add(uint64(len(samples)))
	return passedOutputCount, allOutputCount, nil
}

func (ga *GradientAdder) Divide() error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	n := ga.allSampleCount.Load()
	if n == 0 {
		return ErrNoGradient
	}
	ga.gradient = ga.gradient.Scale(1.0 / float32(n))
	return nil
}

func (ga *GradientAdder) NetworkIn(f func(*neural.Network)) {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	f(ga.network)
}

func (ga *GradientAdder) GradientIn(f func(*neural.Gradient)) error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	f(ga.gradient)
	return nil
}

func (ga *GradientAdder) NetworkAndGradientIn(f func(network *neural.Network, gradient *neural.Gradient)) error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	f(ga.network, ga.gradient)
	return nil
}

var _ GradientAdd = (*GradientAdder)(nil)
