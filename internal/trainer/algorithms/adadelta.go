package algorithms

import (
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// AdadeltaParams is adadelta.rs's AdadeltaParams: no explicit learning
// rate, just the decay rate rho and the numerical-stability epsilon.
type AdadeltaParams struct {
	Rho float32 `toml:"rho"`
	Eps float32 `toml:"eps"`
}

// AdadeltaAlgorithm tracks a decayed squared-gradient accumulator S and
// a decayed squared-update accumulator Delta, grounded on
// original_source/src/trainer/algorithms/adadelta.rs:
//
//	S      <- rho*S + (1-rho)*G.*G
//	upd    <- sqrt(Delta+eps) / sqrt(S-eps) .* G
//	Delta  <- rho*Delta + (1-rho)*upd.*upd
//	W      <- W - upd
type AdadeltaAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params AdadeltaParams

	mu    sync.Mutex
	state epochState
	s     *neural.Gradient
	delta *neural.Gradient
}

func NewAdadeltaAlgorithm(dir string, ga trainer.GradientAdd) (*AdadeltaAlgorithm, error) {
	params, err := trainer.LoadTOML[AdadeltaParams](filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, err
	}
	state, err := loadEpochState(dir)
	if err != nil {
		return nil, err
	}
	s, err := loadOrZeroAux(dir, "s", ga)
	if err != nil {
		return nil, err
	}
	delta, err := loadOrZeroAux(dir, "delta", ga)
	if err != nil {
		return nil, err
	}
	return &AdadeltaAlgorithm{dir: dir, ga: ga, params: params, state: state, s: s, delta: delta}, nil
}

func (a *AdadeltaAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *AdadeltaAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *AdadeltaAlgorithm) Save() error {
	a.mu.Lock()
	st, s, delta := a.state, a.s, a.delta
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	if err := saveNetwork(a.dir, a.ga); err != nil {
		return err
	}
	if err := saveAux(a.dir, "s", s); err != nil {
		return err
	}
	return saveAux(a.dir, "delta", delta)
}

func (a *AdadeltaAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.s.OpAssign(gradient, func(s, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return s.Scale(a.params.Rho).Add(g.Hadamard(g).Scale(1 - a.params.Rho))
		})
		tmp := a.delta.Op(a.s, func(delta, s *matrixbuf.Matrix) *matrixbuf.Matrix {
			return delta.AddScalar(a.params.Eps).Sqrt().DivElems(s.AddScalar(-a.params.Eps).Sqrt())
		})
		upd := tmp.Op(gradient, func(t, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return t.Hadamard(g)
		})
		a.delta.OpAssign(upd, func(delta, u *matrixbuf.Matrix) *matrixbuf.Matrix {
			return delta.Scale(a.params.Rho).Add(u.Hadamard(u).Scale(1 - a.params.Rho))
		})
		network.OpAssign(upd, func(x, u *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(u)
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*AdadeltaAlgorithm)(nil)
