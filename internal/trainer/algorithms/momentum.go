package algorithms

import (
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// MomentumParams is momentum.rs's MomentumParams.
type MomentumParams struct {
	Eta  float32 `toml:"eta"`
	Beta float32 `toml:"beta"`
}

// MomentumAlgorithm tracks a velocity accumulator V <- beta*V + G and
// steps W <- W - eta*V, grounded on
// original_source/src/trainer/algorithms/momentum.rs.
type MomentumAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params MomentumParams

	mu    sync.Mutex
	state epochState
	v     *neural.Gradient
}

func NewMomentumAlgorithm(dir string, ga trainer.GradientAdd) (*MomentumAlgorithm, error) {
	params, err := trainer.LoadTOML[MomentumParams](filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, err
	}
	state, err := loadEpochState(dir)
	if err != nil {
		return nil, err
	}
	v, err := loadOrZeroAux(dir, "v", ga)
	if err != nil {
		return nil, err
	}
	return &MomentumAlgorithm{dir: dir, ga: ga, params: params, state: state, v: v}, nil
}

func (a *MomentumAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *MomentumAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *MomentumAlgorithm) Save() error {
	a.mu.Lock()
	st, v := a.state, a.v
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	if err := saveNetwork(a.dir, a.ga); err != nil {
		return err
	}
	return saveAux(a.dir, "v", v)
}

func (a *MomentumAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.v.OpAssign(gradient, func(v, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return v.Scale(a.params.Beta).Add(g)
		})
		network.OpAssign(a.v, func(x, v *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(v.Scale(a.params.Eta))
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*MomentumAlgorithm)(nil)
