// Package matrixbuf provides the float32 matrix type and the
// column-batched staging buffer (spec component C2) shared by the
// network, searchers, and trainer.
//
// spec.md's Non-goals explicitly scope matrix *kernels* out ("assume a
// backend offering matrix multiply, elementwise ops, tanh, softmax,
// transpose, and host<->device element transfer"); no example repo in the
// retrieved pack ships a float32 tensor type with an analytical-backward
// friendly API (gonum/mat is float64-only), so this is the one
// deliberately stdlib-only seam in the module — see DESIGN.md. Matrix is
// kept narrow on purpose so a real backend could replace it without
// touching C3-C5/C10.
package matrixbuf

import "math"

// Matrix is a dense, row-major, column-batched float32 matrix.
type Matrix struct {
	rows, cols int
	elems      []float32
}

// NewZeros allocates a rows x cols zero matrix.
func NewZeros(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, elems: make([]float32, rows*cols)}
}

// NewWithElems wraps an existing row-major element slice (no copy),
// matching Matrix::new_with_elems's zero-copy staging-buffer handoff.
func NewWithElems(rows, cols int, elems []float32) *Matrix {
	return &Matrix{rows: rows, cols: cols, elems: elems}
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Elems returns the underlying row-major slice.
func (m *Matrix) Elems() []float32 { return m.elems }

func (m *Matrix) At(r, c int) float32 { return m.elems[r*m.cols+c] }
func (m *Matrix) Set(r, c int, v float32) { m.elems[r*m.cols+c] = v }

func (m *Matrix) Clone() *Matrix {
	out := make([]float32, len(m.elems))
	copy(out, m.elems)
	return &Matrix{rows: m.rows, cols: m.cols, elems: out}
}

// Mul computes m x other.
func (m *Matrix) Mul(other *Matrix) *Matrix {
	if m.cols != other.rows {
		panic("matrixbuf: shape mismatch in Mul")
	}
	out := NewZeros(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.At(i, k)
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				out.elems[i*out.cols+j] += a * other.At(k, j)
			}
		}
	}
	return out
}

// AddBroadcastCol adds bias (a cols x 1... here rows x 1) column vector to
// every column of m, returning a new matrix.
func (m *Matrix) AddBroadcastCol(bias *Matrix) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		b := bias.At(i, 0)
		for j := 0; j < m.cols; j++ {
			out.Set(i, j, m.At(i, j)+b)
		}
	}
	return out
}

// Add computes elementwise m + other.
func (m *Matrix) Add(other *Matrix) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] + other.elems[i]
	}
	return out
}

// AddAssignInPlace adds other into m elementwise, in place.
func (m *Matrix) AddAssignInPlace(other *Matrix) {
	for i := range m.elems {
		m.elems[i] += other.elems[i]
	}
}

// Sub computes elementwise m - other.
func (m *Matrix) Sub(other *Matrix) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] - other.elems[i]
	}
	return out
}

// Hadamard computes elementwise m .* other.
func (m *Matrix) Hadamard(other *Matrix) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] * other.elems[i]
	}
	return out
}

// Scale multiplies every element by alpha.
func (m *Matrix) Scale(alpha float32) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] * alpha
	}
	return out
}

// Transpose returns m^T.
func (m *Matrix) Transpose() *Matrix {
	out := NewZeros(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.Set(j, i, m.At(i, j))
		}
	}
	return out
}

// Tanh applies tanh elementwise.
func (m *Matrix) Tanh() *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = float32(math.Tanh(float64(m.elems[i])))
	}
	return out
}

// TanhDeriv returns 1 - m.*m (the derivative of tanh expressed in terms
// of its own output, as BPTT through the network needs).
func (m *Matrix) TanhDeriv() *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = 1 - m.elems[i]*m.elems[i]
	}
	return out
}

// SoftmaxCols applies softmax independently to each column.
func (m *Matrix) SoftmaxCols() *Matrix {
	out := NewZeros(m.rows, m.cols)
	for j := 0; j < m.cols; j++ {
		max := float32(math.Inf(-1))
		for i := 0; i < m.rows; i++ {
			if v := m.At(i, j); v > max {
				max = v
			}
		}
		var sum float32
		for i := 0; i < m.rows; i++ {
			e := float32(math.Exp(float64(m.At(i, j) - max)))
			out.Set(i, j, e)
			sum += e
		}
		for i := 0; i < m.rows; i++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

// Ones returns a rows x 1 column vector of 1.0, used as the right-hand
// operand that reduces an upstream signal to a bias gradient (spec.md
// §4.3: "The gradient of a bias is obtained by right-multiplying the
// upstream signal by ones").
func Ones(rows int) *Matrix {
	m := NewZeros(rows, 1)
	for i := range m.elems {
		m.elems[i] = 1.0
	}
	return m
}

// Sqrt applies the elementwise square root, used by the Adagrad/RMSProp/
// Adadelta/Adam update rules.
func (m *Matrix) Sqrt() *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = float32(math.Sqrt(float64(m.elems[i])))
	}
	return out
}

// AddScalar adds c to every element.
func (m *Matrix) AddScalar(c float32) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] + c
	}
	return out
}

// DivElems computes elementwise m ./ other.
func (m *Matrix) DivElems(other *Matrix) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = m.elems[i] / other.elems[i]
	}
	return out
}

// Rdiv computes elementwise c / m (a "reverse divide" by a scalar
// numerator), used by Adagrad/RMSProp's eta/sqrt(s+eps) term.
func (m *Matrix) Rdiv(c float32) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = c / m.elems[i]
	}
	return out
}

// Fun maps every element through f.
func (m *Matrix) Fun(f func(float32) float32) *Matrix {
	out := NewZeros(m.rows, m.cols)
	for i := range m.elems {
		out.elems[i] = f(m.elems[i])
	}
	return out
}

// ColArgmax returns the row index of the maximum element in column col.
func (m *Matrix) ColArgmax(col int) int {
	best := 0
	bestV := m.At(0, col)
	for i := 1; i < m.rows; i++ {
		if v := m.At(i, col); v > bestV {
			bestV = v
			best = i
		}
	}
	return best
}
