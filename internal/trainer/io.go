package trainer

import (
	"encoding/gob"
	"errors"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/neural"
)

// LoadTOML decodes a TOML file into a fresh T, used for both the
// per-algorithm hyperparameter files (read-only, hand-edited) and the
// epoch-state files (round-tripped by SaveTOML), matching
// original_source/src/trainer/algorithms/*.rs's load_params/load_state.
func LoadTOML[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// SaveTOML writes v to path as TOML.
func SaveTOML[T any](path string, v T) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadTOMLOr loads path, falling back to dflt when the file is absent
// (a fresh run with no prior epoch-state file), matching
// original_source/src/trainer/io.rs's load_or.
func LoadTOMLOr[T any](path string, dflt T) (T, error) {
	v, err := LoadTOML[T](path)
	if errors.Is(err, os.ErrNotExist) {
		return dflt, nil
	}
	return v, err
}

// MovePrevAndSave rotates prefix+suffix to prefix-2+suffix (discarding
// whatever was previously there) before calling save with the freed
// prefix+suffix path, matching io.rs's move_prev_and_save: every save
// keeps exactly one rollback generation on disk.
func MovePrevAndSave(prefix, suffix string, save func(path string) error) error {
	fileName := prefix + suffix
	prevFileName := prefix + "-2" + suffix
	if _, err := os.Stat(fileName); err == nil {
		os.Remove(prevFileName)
		if err := os.Rename(fileName, prevFileName); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return save(fileName)
}

// matrixGob is the gob-friendly shadow of matrixbuf.Matrix used by the
// .nnet binary format below.
type matrixGob struct {
	Rows, Cols int
	Elems      []float32
}

func toMatrixGob(m *matrixbuf.Matrix) matrixGob {
	return matrixGob{Rows: m.Rows(), Cols: m.Cols(), Elems: m.Elems()}
}

func fromMatrixGob(g matrixGob) *matrixbuf.Matrix {
	return matrixbuf.NewWithElems(g.Rows, g.Cols, g.Elems)
}

// original_source serialises its .nnet files with a bincode-specific
// layout that has no counterpart among the example pack's dependencies;
// gob is the standard-library equivalent and no third-party binary-
// tensor codec appears anywhere in the pack (see DESIGN.md). Both the
// trained network and the network-shaped optimizer accumulators
// (Momentum's v, Adagrad's s, ...) share this layout, since both are
// eight same-shaped matrices.

type networkGob struct {
	IW, IB, SW, SB, PW, PB, OW, OB matrixGob
}

// SaveNetwork persists n's eight weight/bias matrices to path.
func SaveNetwork(path string, n *neural.Network) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	g := networkGob{
		IW: toMatrixGob(n.IW), IB: toMatrixGob(n.IB),
		SW: toMatrixGob(n.SW), SB: toMatrixGob(n.SB),
		PW: toMatrixGob(n.PW), PB: toMatrixGob(n.PB),
		OW: toMatrixGob(n.OW), OB: toMatrixGob(n.OB),
	}
	return gob.NewEncoder(f).Encode(&g)
}

// LoadNetwork loads a network saved by SaveNetwork.
func LoadNetwork(path string) (*neural.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var g networkGob
	if err := gob.NewDecoder(f).Decode(&g); err != nil {
		return nil, err
	}
	return &neural.Network{
		IW: fromMatrixGob(g.IW), IB: fromMatrixGob(g.IB),
		SW: fromMatrixGob(g.SW), SB: fromMatrixGob(g.SB),
		PW: fromMatrixGob(g.PW), PB: fromMatrixGob(g.PB),
		OW: fromMatrixGob(g.OW), OB: fromMatrixGob(g.OB),
	}, nil
}

// LoadOrCreateNetwork loads path, or calls create and uses its result
// when path does not yet exist, matching load_or_else's use for a fresh
// Xavier-initialised network on a brand-new training run.
func LoadOrCreateNetwork(path string, create func() *neural.Network) (*neural.Network, error) {
	n, err := LoadNetwork(path)
	if errors.Is(err, os.ErrNotExist) {
		return create(), nil
	}
	return n, err
}

// SaveGradient and LoadGradient persist a network-shaped optimizer
// accumulator (Momentum's v, Adagrad's s, Adadelta's s/delta, Adam's
// v/s, RMSProp's s) using the same .nnet binary shape as SaveNetwork.
func SaveGradient(path string, g *neural.Gradient) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	ng := networkGob{
		IW: toMatrixGob(g.DIW), IB: toMatrixGob(g.DIB),
		SW: toMatrixGob(g.DSW), SB: toMatrixGob(g.DSB),
		PW: toMatrixGob(g.DPW), PB: toMatrixGob(g.DPB),
		OW: toMatrixGob(g.DOW), OB: toMatrixGob(g.DOB),
	}
	return gob.NewEncoder(f).Encode(&ng)
}

func LoadGradient(path string) (*neural.Gradient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ng networkGob
	if err := gob.NewDecoder(f).Decode(&ng); err != nil {
		return nil, err
	}
	return &neural.Gradient{
		DIW: fromMatrixGob(ng.IW), DIB: fromMatrixGob(ng.IB),
		DSW: fromMatrixGob(ng.SW), DSB: fromMatrixGob(ng.SB),
		DPW: fromMatrixGob(ng.PW), DPB: fromMatrixGob(ng.PB),
		DOW: fromMatrixGob(ng.OW), DOB: fromMatrixGob(ng.OB),
	}, nil
}

// LoadOrCreateGradient loads path, or calls create (typically
// neural.ZeroGradientLike) when path does not yet exist.
func LoadOrCreateGradient(path string, create func() *neural.Gradient) (*neural.Gradient, error) {
	g, err := LoadGradient(path)
	if errors.Is(err, os.ErrNotExist) {
		return create(), nil
	}
	return g, err
}
