package algorithms

import (
	"math"
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// PolySGDParams configures a polynomial learning-rate decay schedule
// applied to plain gradient descent:
// eta_t = eta0 / (1 + decay*epoch)^power. Like ExpSGD, poly_sgd.rs did
// not survive filtering into original_source; invented from spec.md's
// explicit note (see DESIGN.md and expsgd.go).
type PolySGDParams struct {
	Eta0  float32 `toml:"eta0"`
	Decay float32 `toml:"decay"`
	Power float32 `toml:"power"`
}

// PolySGDAlgorithm is gradient descent with a polynomially-decaying
// learning rate.
type PolySGDAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params PolySGDParams

	mu    sync.Mutex
	state epochState
}

func NewPolySGDAlgorithm(dir string, ga trainer.GradientAdd) (*PolySGDAlgorithm, error) {
	params, err := trainer.LoadTOML[PolySGDParams](filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, err
	}
	state, err := loadEpochState(dir)
	if err != nil {
		return nil, err
	}
	return &PolySGDAlgorithm{dir: dir, ga: ga, params: params, state: state}, nil
}

func (a *PolySGDAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *PolySGDAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *PolySGDAlgorithm) Save() error {
	a.mu.Lock()
	st := a.state
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	return saveNetwork(a.dir, a.ga)
}

func (a *PolySGDAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		base := 1 + float64(a.params.Decay)*float64(a.state.Epoch)
		eta := a.params.Eta0 / float32(math.Pow(base, float64(a.params.Power)))
		network.OpAssign(gradient, func(x, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(g.Scale(eta))
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*PolySGDAlgorithm)(nil)
