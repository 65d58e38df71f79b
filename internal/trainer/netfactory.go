package trainer

import (
	"math"
	"math/rand"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
)

// NetFactory builds a fresh network shaped for inputCount input rows and
// outputCount output rows, matching original_source/src/trainer/
// net_create.rs's NetCreate trait.
type NetFactory interface {
	Create(inputCount, outputCount int) *neural.Network
}

// XavierNetFactory builds networks with every weight matrix and every
// (single-column) bias Xavier/Glorot-uniform initialized, grounded on
// xavier_network_factory.rs and shared/xavier_init.rs.
type XavierNetFactory struct {
	HiddenWidth int
}

func xavierInit(rows, cols int) *matrixbuf.Matrix {
	u := float32(math.Sqrt(6.0 / float64(rows+cols)))
	elems := make([]float32, rows*cols)
	for i := range elems {
		elems[i] = (rand.Float32()*2 - 1) * u
	}
	return matrixbuf.NewWithElems(rows, cols, elems)
}

func (f XavierNetFactory) Create(inputCount, outputCount int) *neural.Network {
	h := f.HiddenWidth
	return &neural.Network{
		IW: xavierInit(h, inputCount), IB: xavierInit(h, 1),
		SW: xavierInit(h, h), SB: xavierInit(h, 1),
		PW: xavierInit(h, h), PB: xavierInit(h, 1),
		OW: xavierInit(outputCount, h), OB: xavierInit(outputCount, 1),
	}
}

// Optimizer accumulators (Momentum's v, Adagrad's s, Adadelta's s/delta,
// Adam's v/s, RMSProp's s) are always zero-initialized and exactly
// network-shaped, so they use neural.Gradient and
// neural.ZeroGradientLike directly rather than a second NetFactory
// implementation: original_source's ZeroNetworkFactory<T> degenerates to
// that once T is fixed to the one Network type this port has (see
// zero_network_factory.rs).
