package algorithms

import (
	"math"
	"path/filepath"
	"sync"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
)

// AdamParams is adam.rs's AdamParams.
type AdamParams struct {
	Eta   float32 `toml:"eta"`
	Beta1 float32 `toml:"beta1"`
	Beta2 float32 `toml:"beta2"`
	Eps   float32 `toml:"eps"`
}

// AdamAlgorithm tracks first- and second-moment accumulators V and S and
// steps with their bias-corrected ratio, grounded on
// original_source/src/trainer/algorithms/adam.rs:
//
//	V     <- beta1*V + (1-beta1)*G
//	S     <- beta2*S + (1-beta2)*G.*G
//	Vhat  <- V / (1 - beta1^epoch)
//	Shat  <- S / (1 - beta2^epoch)
//	W     <- W - eta*Vhat/(sqrt(Shat)+eps)
//
// adam.rs itself divides V (and S) by (1-beta1).powf(epoch) rather than
// by (1 - beta1.powf(epoch)) — a transcription bug also visible in how
// fast that denominator collapses for any beta1 close to 1. spec.md
// states the standard bias-corrected form explicitly, so this port
// follows spec.md's formula over the buggy original_source expression
// (see DESIGN.md).
type AdamAlgorithm struct {
	dir    string
	ga     trainer.GradientAdd
	params AdamParams

	mu    sync.Mutex
	state epochState
	v     *neural.Gradient
	s     *neural.Gradient
}

func NewAdamAlgorithm(dir string, ga trainer.GradientAdd) (*AdamAlgorithm, error) {
	params, err := trainer.LoadTOML[AdamParams](filepath.Join(dir, paramsFileName))
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
	s, err := loadOrZeroAux(dir, "s", ga)
	if err != nil {
		return nil, err
	}
	return &AdamAlgorithm{dir: dir, ga: ga, params: params, state: state, v: v, s: s}, nil
}

func (a *AdamAlgorithm) GradientAdder() trainer.GradientAdd { return a.ga }

func (a *AdamAlgorithm) Epoch() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Epoch
}

func (a *AdamAlgorithm) Save() error {
	a.mu.Lock()
	st, v, s := a.state, a.v, a.s
	a.mu.Unlock()
	if err := saveEpochState(a.dir, st); err != nil {
		return err
	}
	if err := saveNetwork(a.dir, a.ga); err != nil {
		return err
	}
	if err := saveAux(a.dir, "v", v); err != nil {
		return err
	}
	return saveAux(a.dir, "s", s)
}

func (a *AdamAlgorithm) DoAlgorithm() error {
	return a.ga.NetworkAndGradientIn(func(network *neural.Network, gradient *neural.Gradient) {
		a.mu.Lock()
		defer a.mu.Unlock()
		epoch := float64(a.state.Epoch)
		a.v.OpAssign(gradient, func(v, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return v.Scale(a.params.Beta1).Add(g.Scale(1 - a.params.Beta1))
		})
		a.s.OpAssign(gradient, func(s, g *matrixbuf.Matrix) *matrixbuf.Matrix {
			return s.Scale(a.params.Beta2).Add(g.Hadamard(g).Scale(1 - a.params.Beta2))
		})
		vCorr := 1 / (1 - float32(math.Pow(float64(a.params.Beta1), epoch)))
		sCorr := 1 / (1 - float32(math.Pow(float64(a.params.Beta2), epoch)))
		vHat := a.v.Fun(func(m *matrixbuf.Matrix) *matrixbuf.Matrix { return m.Scale(vCorr) })
		sHat := a.s.Fun(func(m *matrixbuf.Matrix) *matrixbuf.Matrix { return m.Scale(sCorr) })
		upd := vHat.Op(sHat, func(vh, sh *matrixbuf.Matrix) *matrixbuf.Matrix {
			return vh.Scale(a.params.Eta).DivElems(sh.Sqrt().AddScalar(a.params.Eps))
		})
		network.OpAssign(upd, func(x, u *matrixbuf.Matrix) *matrixbuf.Matrix {
			return x.Sub(u)
		})
		a.state.Epoch++
	})
}

var _ Algorithm = (*AdamAlgorithm)(nil)
