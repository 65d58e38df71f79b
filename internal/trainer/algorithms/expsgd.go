package algorithms

import (
	"math"
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// ExpSGDParams configures an exponential learning-rate decay schedule
// applied to plain gradient descent: eta_t = eta0 * exp(-decay*epoch).
// algorithms.rs declares ExpSgd alongside the other algorithm variants
// but its exp_sgd.rs source did not survive filtering into
// original_source; this port implements it from spec.md's explicit
// note that ExpSGD and PolySGD are GD with a learning-rate schedule
// (see DESIGN.md).
type ExpSGDParams struct {
	Eta0  float32 `toml:"eta0"`
	Decay float32 `toml:"decay"`
}

// ExpSGDAlgorithm is gradient descent with an exponentially-decaying
// learning rate.
type ExpSGDAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params ExpSGDParams

	mu    sync.Mutex
	state epochState
}

func NewExpSGDAlgorithm(dir string, ga trainer.GradientAdd) (*ExpSGDAlgorithm, error) {
	params, err := trainer.LoadTOML[ExpSGDParams](filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, err
	}
	state, err := loadEpochState(dir)
	if err != nil {
		return nil, err
	}
	return &ExpSGDAlgorithm{dir: dir, ga: ga, params: params, state: state}, nil
}

func (a *ExpSGDAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *ExpSGDAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *ExpSGDAlgorithm) Save() error {
	a.mu.Lock()
	st := a.state
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	return saveNetwork(a.dir, a.ga)
}

func (a *ExpSGDAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		eta := a.params.Eta0 * float32(math.Exp(-float64(a.params.Decay)*float64(a.state.Epoch)))
		network.OpAssign(gradient, func(x, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(g.Scale(eta))
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*ExpSGDAlgorithm)(nil)
