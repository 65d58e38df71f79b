package algorithms

import (
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// AdagradParams is adagrad.rs's AdagradParams.
type AdagradParams struct {
	Eta float32 `toml:"eta"`
	Eps float32 `toml:"eps"`
}

// AdagradAlgorithm accumulates S <- S + G.*G and steps
// W <- W - eta*G/sqrt(S+eps), grounded on
// original_source/src/trainer/algorithms/adagrad.rs.
type AdagradAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params AdagradParams

	mu    sync.Mutex
	state epochState
	s     *neural.Gradient
}

func NewAdagradAlgorithm(dir string, ga trainer.GradientAdd) (*AdagradAlgorithm, error) {
	params, err := trainer.LoadTOML[AdagradParams](filepath.Join(dir, paramsFileName))
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
	return &AdagradAlgorithm{dir: dir, ga: ga, params: params, state: state, s: s}, nil
}

func (a *AdagradAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *AdagradAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *AdagradAlgorithm) Save() error {
	a.mu.Lock()
	st, s := a.state, a.s
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	if err := saveNetwork(a.dir, a.ga); err != nil {
		return err
	}
	return saveAux(a.dir, "s", s)
}

func (a *AdagradAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.s.OpAssign(gradient, func(s, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return s.Add(g.Hadamard(g))
		})
		tmp := a.s.Op(gradient, func(s, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return s.AddScalar(a.params.Eps).Sqrt().Rdiv(a.params.Eta).Hadamard(g)
		})
		network.OpAssign(tmp, func(x, t *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(t)
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*AdagradAlgorithm)(nil)
