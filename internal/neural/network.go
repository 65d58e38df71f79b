// Package neural implements the recurrent network (spec component C3)
// and the neural searcher (spec component C4), grounded on
// original_source/src/shared/network.rs and
// original_source/src/engine/one_neural_searcher.rs.
package neural

import (
	"fmt"

	"github.com/luckboy/neurina/internal/matrixbuf"
)

// Network holds the eight weight/bias matrices spec.md §4.2 names:
// input projection (IW,IB), the shared search tier (SW,SB), the shared
// PV tier (PW,PB), and the output projection (OW,OB).
type Network struct {
	IW, IB *matrixbuf.Matrix
	SW, SB *matrixbuf.Matrix
	PW, PB *matrixbuf.Matrix
	OW, OB *matrixbuf.Matrix
}

// HiddenWidth returns h, the shared hidden dimension.
func (n *Network) HiddenWidth() int { return n.IW.Rows() }

// InputRows returns the expected input row count (encoding.BoardRowCount,
// 64*13+6+9 = 847; see DESIGN.md's note on that value).
func (n *Network) InputRows() int { return n.IW.Cols() }

// OutputRows returns the move vocabulary size (1924 per spec.md).
func (n *Network) OutputRows() int { return n.OW.Rows() }

// Check validates the invariant spec.md §4.2 states: matrix shapes are
// mutually consistent, and the hidden width is nonzero.
func (n *Network) Check() error {
	h := n.HiddenWidth()
	if h == 0 {
		return fmt.Errorf("neural: hidden width must be nonzero")
	}
	if n.IB.Rows() != h || n.IB.Cols() != 1 {
		return fmt.Errorf("neural: input bias shape mismatch")
	}
	if n.SW.Rows() != h || n.SW.Cols() != h {
		return fmt.Errorf("neural: search weight must be h x h")
	}
	if n.SB.Rows() != h || n.SB.Cols() != 1 {
		return fmt.Errorf("neural: search bias shape mismatch")
	}
	if n.PW.Rows() != h || n.PW.Cols() != h {
		return fmt.Errorf("neural: pv weight must be h x h")
	}
	if n.PB.Rows() != h || n.PB.Cols() != 1 {
		return fmt.Errorf("neural: pv bias shape mismatch")
	}
	if n.OW.Cols() != h {
		return fmt.Errorf("neural: output weight must be moveCount x h")
	}
	if n.OB.Rows() != n.OW.Rows() || n.OB.Cols() != 1 {
		return fmt.Errorf("neural: output bias shape mismatch")
	}
	return nil
}

// OpAssign updates every weight/bias matrix in n in place via
// f(existing, g's matching gradient matrix), the generic combinator
// every algorithm's update rule (GD, Momentum, Adagrad, ...) is built
// from (spec.md §4.11's "network.op_assign(gradient, f)").
func (n *Network) OpAssign(g *Gradient, f func(x, dx *matrixbuf.Matrix) *matrixbuf.Matrix) {
	n.IW, n.IB = f(n.IW, g.DIW), f(n.IB, g.DIB)
	n.SW, n.SB = f(n.SW, g.DSW), f(n.SB, g.DSB)
	n.PW, n.PB = f(n.PW, g.DPW), f(n.PB, g.DPB)
	n.OW, n.OB = f(n.OW, g.DOW), f(n.OB, g.DOB)
}

// Checker is the narrow interruption collaborator forward/backward
// consult between tiers.
type Checker interface{ Check() error }

// Forward computes, in order: h[0] = tanh(IW*X + IB); for d in 1..=D:
// h[d] = tanh(SW*h[d-1] + SB); for p in 1..=P: h[D+p] =
// tanh(PW*h[D+p-1] + PB), o[p] = OW*h[D+p] + OB. emitH/emitO are called
// for every produced hidden state/output in order and may abort the call
// by returning an error (spec.md §4.2 Forward).
func (n *Network) Forward(x *matrixbuf.Matrix, depth, pvLen int, checker Checker, emitH func(*matrixbuf.Matrix) error, emitO func(*matrixbuf.Matrix) error) error {
	if err := checker.Check(); err != nil {
		return err
	}
	h := n.IW.Mul(x).AddBroadcastCol(n.IB).Tanh()
	if err := emitH(h); err != nil {
		return err
	}
	for d := 1; d <= depth; d++ {
		if err := checker.Check(); err != nil {
			return err
		}
		h = n.SW.Mul(h).AddBroadcastCol(n.SB).Tanh()
		if err := emitH(h); err != nil {
			return err
		}
	}
	for p := 1; p <= pvLen; p++ {
		if err := checker.Check(); err != nil {
			return err
		}
		h = n.PW.Mul(h).AddBroadcastCol(n.PB).Tanh()
		if err := emitH(h); err != nil {
			return err
		}
		o := n.OW.Mul(h).AddBroadcastCol(n.OB)
		if err := emitO(o); err != nil {
			return err
		}
	}
	return nil
}

// Gradient is a "network-shaped" bundle of partial derivatives, one per
// weight/bias matrix, matching spec.md §4.2 Backward's return value.
type Gradient struct {
	DIW, DIB *matrixbuf.Matrix
	DSW, DSB *matrixbuf.Matrix
	DPW, DPB *matrixbuf.Matrix
	DOW, DOB *matrixbuf.Matrix
}

// ZeroGradientLike returns a zero-filled gradient with n's shapes.
func ZeroGradientLike(n *Network) *Gradient {
	return &Gradient{
		DIW: matrixbuf.NewZeros(n.IW.Rows(), n.IW.Cols()), DIB: matrixbuf.NewZeros(n.IB.Rows(), 1),
		DSW: matrixbuf.NewZeros(n.SW.Rows(), n.SW.Cols()), DSB: matrixbuf.NewZeros(n.SB.Rows(), 1),
		DPW: matrixbuf.NewZeros(n.PW.Rows(), n.PW.Cols()), DPB: matrixbuf.NewZeros(n.PB.Rows(), 1),
		DOW: matrixbuf.NewZeros(n.OW.Rows(), n.OW.Cols()), DOB: matrixbuf.NewZeros(n.OB.Rows(), 1),
	}
}

// AddAssign accumulates other into g in place (op_assign in spec.md's
// terminology), used by the trainer's gradient accumulator.
func (g *Gradient) AddAssign(other *Gradient) {
	g.DIW = g.DIW.Add(other.DIW)
	g.DIB = g.DIB.Add(other.DIB)
	g.DSW = g.DSW.Add(other.DSW)
	g.DSB = g.DSB.Add(other.DSB)
	g.DPW = g.DPW.Add(other.DPW)
	g.DPB = g.DPB.Add(other.DPB)
	g.DOW = g.DOW.Add(other.DOW)
	g.DOB = g.DOB.Add(other.DOB)
}

// Op returns a new Gradient obtained by applying f to each corresponding
// pair of matrices in g and other, the generic elementwise combinator
// the optimizer algorithms build their update rules from (spec.md's "op"
// terminology).
func (g *Gradient) Op(other *Gradient, f func(a, b *matrixbuf.Matrix) *matrixbuf.Matrix) *Gradient {
	return &Gradient{
		DIW: f(g.DIW, other.DIW), DIB: f(g.DIB, other.DIB),
		DSW: f(g.DSW, other.DSW), DSB: f(g.DSB, other.DSB),
		DPW: f(g.DPW, other.DPW), DPB: f(g.DPB, other.DPB),
		DOW: f(g.DOW, other.DOW), DOB: f(g.DOB, other.DOB),
	}
}

// OpAssign replaces each matrix in g with f(existing, other's matrix),
// in place (spec.md's "op_assign" combinator).
func (g *Gradient) OpAssign(other *Gradient, f func(a, b *matrixbuf.Matrix) *matrixbuf.Matrix) {
	g.DIW, g.DIB = f(g.DIW, other.DIW), f(g.DIB, other.DIB)
	g.DSW, g.DSB = f(g.DSW, other.DSW), f(g.DSB, other.DSB)
	g.DPW, g.DPB = f(g.DPW, other.DPW), f(g.DPB, other.DPB)
	g.DOW, g.DOB = f(g.DOW, other.DOW), f(g.DOB, other.DOB)
}

// Fun maps every matrix in g through f, returning a new Gradient.
func (g *Gradient) Fun(f func(*matrixbuf.Matrix) *matrixbuf.Matrix) *Gradient {
	return &Gradient{
		DIW: f(g.DIW), DIB: f(g.DIB),
		DSW: f(g.DSW), DSB: f(g.DSB),
		DPW: f(g.DPW), DPB: f(g.DPB),
		DOW: f(g.DOW), DOB: f(g.DOB),
	}
}

// Scale returns a copy of g with every matrix scaled by alpha (op in
// spec.md's terminology), used to divide an accumulated gradient by the
// minibatch size before an algorithm consumes it.
func (g *Gradient) Scale(alpha float32) *Gradient {
	return &Gradient{
		DIW: g.DIW.Scale(alpha), DIB: g.DIB.Scale(alpha),
		DSW: g.DSW.Scale(alpha), DSB: g.DSB.Scale(alpha),
		DPW: g.DPW.Scale(alpha), DPB: g.DPB.Scale(alpha),
		DOW: g.DOW.Scale(alpha), DOB: g.DOB.Scale(alpha),
	}
}

// Backward computes the analytical gradient of cross-entropy-after-
// softmax loss with respect to every parameter, given the hidden states
// and outputs Forward emitted (hs has length 1+D+P, os has length P) and
// the expected one-hot columns ys (length P), following the standard
// backpropagation-through-time chain rule for the unrolled graph (spec.md
// §4.2 Backward): PV-tier gradients accumulate across all P tiers and
// search-tier gradients accumulate across all D tiers, since (PW,PB,
// OW,OB) and (SW,SB) are shared weights reused at every tier.
func (n *Network) Backward(x *matrixbuf.Matrix, hs []*matrixbuf.Matrix, os []*matrixbuf.Matrix, ys []*matrixbuf.Matrix, depth, pvLen int) *Gradient {
	grad := ZeroGradientLike(n)
	ones := matrixbuf.Ones(x.Cols())

	// dh accumulates the upstream gradient flowing into the hidden state
	// at the current tier boundary, starting empty (no PV tier yet below
	// the last one processed).
	var dhNext *matrixbuf.Matrix

	for p := pvLen; p >= 1; p-- {
		h := hs[depth+p]
		hPrev := hs[depth+p-1]
		o := os[p-1]
		y := ys[p-1]

		dO := o.SoftmaxCols().Sub(y)
		grad.DOW.AddAssignInPlace(dO.Mul(h.Transpose()))
		grad.DOB.AddAssignInPlace(dO.Mul(ones))

		dh := n.OW.Transpose().Mul(dO)
		if dhNext != nil {
			dh = dh.Add(dhNext)
		}
		dPre := dh.Hadamard(h.TanhDeriv())
		grad.DPW.AddAssignInPlace(dPre.Mul(hPrev.Transpose()))
		grad.DPB.AddAssignInPlace(dPre.Mul(ones))

		dhNext = n.PW.Transpose().Mul(dPre)
	}

	dh := dhNext
	for d := depth; d >= 1; d-- {
		h := hs[d]
		hPrev := hs[d-1]
		if dh == nil {
			dh = matrixbuf.NewZeros(h.Rows(), h.Cols())
		}
		dPre := dh.Hadamard(h.TanhDeriv())
		grad.DSW.AddAssignInPlace(dPre.Mul(hPrev.Transpose()))
		grad.DSB.AddAssignInPlace(dPre.Mul(ones))
		dh = n.SW.Transpose().Mul(dPre)
	}

	h0 := hs[0]
	if dh == nil {
		dh = matrixbuf.NewZeros(h0.Rows(), h0.Cols())
	}
	dPre := dh.Hadamard(h0.TanhDeriv())
	grad.DIW.AddAssignInPlace(dPre.Mul(x.Transpose()))
	grad.DIB.AddAssignInPlace(dPre.Mul(ones))

	return grad
}
