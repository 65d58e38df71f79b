package algorithms

import (
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// RMSPropParams is rms_prop.rs's RMSPropParams.
type RMSPropParams struct {
	Eta   float32 `toml:"eta"`
	Gamma float32 `toml:"gamma"`
	Eps   float32 `toml:"eps"`
}

// RMSPropAlgorithm tracks a decayed squared-gradient accumulator
// S <- gamma*S + (1-gamma)*G.*G and steps W <- W - eta*G/sqrt(S+eps),
// grounded on original_source/src/trainer/algorithms/rms_prop.rs.
type RMSPropAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params RMSPropParams

	mu    sync.Mutex
	state epochState
	s     *neural.Gradient
}

func NewRMSPropAlgorithm(dir string, ga trainer.GradientAdd) (*RMSPropAlgorithm, error) {
	params, err := trainer.LoadTOML[RMSPropParams](filepath.Join(dir, paramsFileName))
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
	return &RMSPropAlgorithm{dir: dir, ga: ga, params: params, state: state, s: s}, nil
}

func (a *RMSPropAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *RMSPropAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *RMSPropAlgorithm) Save() error {
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

func (a *RMSPropAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.s.OpAssign(gradient, func(s, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return s.Scale(a.params.Gamma).Add(g.Hadamard(g).Scale(1 - a.params.Gamma))
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

var _ Algorithm = (*RMSPropAlgorithm)(nil)
