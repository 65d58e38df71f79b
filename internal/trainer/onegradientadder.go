package trainer

import (
	"sync"
	"sync/atomic"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
)

// OneGradientAdderMaxColCount matches one_gradient_adder.rs's
// OneGradientAdder::MAX_COL_COUNT.
const OneGradientAdderMaxColCount = 1024

// OneGradientAdder replays a minibatch's move sequence one ply at a
// time, re-encoding the board reached so far before every ply's
// depth=1,pv=1 forward/backward pass, rather than unrolling the whole
// sequence in one shot the way GradientAdder does. Grounded on
// original_source/src/trainer/one_gradient_adder.rs; the expected-move
// side alternates every ply (since after the sample's own move it's the
// opponent's turn), matching that file's color.inv() stepping inside its
// fill closure.
type OneGradientAdder struct {
	checker intr.Checker
	encoder *encoding.Encoder

	mu             sync.Mutex
	network        *neural.Network
	gradient       *neural.Gradient
	allOutputCount atomic.Uint64

	buf *matrixbuf.Buffer[DataSample]
}

// NewOneGradientAdder builds a OneGradientAdder over network, batching
// up to maxColCount samples per ply.
func NewOneGradientAdder(checker intr.Checker, encoder *encoding.Encoder, network *neural.Network, maxColCount int) *OneGradientAdder {
	return &OneGradientAdder{
		checker: checker,
		encoder: encoder,
		network: network,
		buf:     matrixbuf.NewBuffer[DataSample](encoding.BoardRowCount, encoder.MoveRowCount(), maxColCount),
	}
}

func (ga *OneGradientAdder) IntrChecker() intr.Checker { return ga.checker }

func (ga *OneGradientAdder) SamplesAreFull(sampleCount int) bool {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	return ga.buf.ElemsAreFull(sampleCount)
}

func (ga *OneGradientAdder) Start() {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	ga.gradient = nil
	ga.allOutputCount.Store(0)
}

func (ga *OneGradientAdder) Compute(samples []DataSample, moveCount int, areGradients bool) (uint64, uint64, error) {
	ga.mu.Lock()
	defer ga.mu.Unlock()

	var passedOutputCount, allOutputCount uint64
	inputRows := encoding.BoardRowCount
	err := ga.buf.DoElems(samples, moveCount, ga.checker,
		func(sample *DataSample, inputElems []float32, outputBufs [][]float32, col, colCount int) {
			ga.encoder.BoardToCol(sample.Board, inputElems, col, colCount)
			side := sample.Board.Side()
			for k := range outputBufs {
				ga.encoder.MoveToCol(sample.Moves[k], side, outputBufs[k], col, colCount)
				side = side.Other()
			}
		},
		func(x *matrixbuf.Matrix, ys []*matrixbuf.Matrix, chunk []DataSample) error {
			colCount := len(chunk)
			boards := make([]chessx.Board, colCount)
			for j, s := range chunk {
				boards[j] = s.Board
			}
			tmpI := x
			for ply, y := range ys {
				if err := ga.checker.Check(); err != nil {
					return err
				}
				if ply > 0 {
					inputElems := make([]float32, inputRows*colCount)
					for j, b := range boards {
						ga.encoder.BoardToCol(b, inputElems, j, colCount)
					}
					tmpI = matrixbuf.NewWithElems(inputRows, colCount, inputElems)
				}
				var hs, outs []*matrixbuf.Matrix
				ferr := ga.network.Forward(tmpI, 1, 1, ga.checker,
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
				o := outs[0]
				for k := 0; k < colCount; k++ {
					best := o.ColArgmax(k)
					if y.At(best, k) > 0 {
						passedOutputCount++
					}
					allOutputCount++
				}
				if areGradients {
					grad := ga.network.Backward(tmpI, hs, outs, ys[ply:ply+1], 1, 1)
					if ga.gradient == nil {
						ga.gradient = grad
					} else {
						ga.gradient.AddAssign(grad)
					}
				}
				for j, s := range chunk {
					if nb, ok := chessx.Push(boards[j], s.Moves[ply]); ok {
						boards[j] = nb
					}
				}
			}
			return nil
		})
	if err != nil {
		return 0, 0, &InterruptedError{Err: err}
	}
	ga.allOutputCount.Add(allOutputCount)
	return passedOutputCount, allOutputCount, nil
}

func (ga *OneGradientAdder) Divide() error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	n := ga.allOutputCount.Load()
	if n == 0 {
		return ErrNoGradient
	}
	ga.gradient = ga.gradient.Scale(1.0 / float32(n))
	return nil
}

func (ga *OneGradientAdder) NetworkIn(f func(*neural.Network)) {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	f(ga.network)
}

func (ga *OneGradientAdder) GradientIn(f func(*neural.Gradient)) error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	f(ga.gradient)
	return nil
}

func (ga *OneGradientAdder) NetworkAndGradientIn(f func(network *neural.Network, gradient *neural.Gradient)) error {
	ga.mu.Lock()
	defer ga.mu.Unlock()
	if ga.gradient == nil {
		return ErrNoGradient
	}
	f(ga.network, ga.gradient)
	return nil
}

var _ GradientAdd = (*OneGradientAdder)(nil)
