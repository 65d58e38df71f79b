package algorithms

import (
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// GDParams is gd.rs's GDParams: a single learning rate.
type GDParams struct {
	Eta float32 `toml:"eta"`
}

// GDAlgorithm is plain gradient descent: W <- W - eta*G, grounded on
// original_source/src/trainer/algorithms/gd.rs.
type GDAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params GDParams

	mu    sync.Mutex
	state epochState
}

// NewGDAlgorithm loads gd.rs's Params and State TOML files from dir and
// binds them to an already-constructed gradient adder.
func NewGDAlgorithm(dir string, ga trainer.GradientAdd) (*GDAlgorithm, error) {
	params, err := trainer.LoadTOML[GDParams](filepath.Join(dir, paramsFileName))
	if err != nil {
		return nil, err
	}
	state, err := loadEpochState(dir)
	if err != nil {
		return nil, err
	}
	return &GDAlgorithm{dir: dir, ga: ga, params: params, state: state}, nil
}

func (a *GDAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *GDAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *GDAlgorithm) Save() error {
	a.mu.Lock()
	st := a.state
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	return saveNetwork(a.dir, a.ga)
}

func (a *GDAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		network.OpAssign(gradient, func(x, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(g.Scale(a.params.Eta))
		})
		a.mu.Lock()
		a.state.Epoch++
		a.mu.Unlock()
	})
}

var _ Algorithm = (*GDAlgorithm)(nil)
