package algorithms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/trainer"
)

func newTestGradientAdder(t *testing.T) *trainer.GradientAdder {
	t.Helper()
	encoder := encoding.New()
	factory := trainer.XavierNetFactory{HiddenWidth: 8}
	network := factory.Create(encoding.BoardRowCount, encoder.MoveRowCount())
	return trainer.NewGradientAdder(intr.New(), encoder, network, trainer.GradientAdderMaxColCount)
}

func accumulateOneSample(t *testing.T, ga *trainer.GradientAdder) {
	t.Helper()
	mv, ok := chessx.ParseUCIMove("e2e4")
	if !ok {
		t.Fatalf("ParseUCIMove: not ok")
	}
	sample := trainer.DataSample{Board: chessx.Initial(), Moves: []chessx.Move{mv}}
	ga.Start()
	if _, _, err := ga.Compute([]trainer.DataSample{sample}, 1, true); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if err := ga.Divide(); err != nil {
		t.Fatalf("Divide: %v", err)
	}
}

func TestGDAlgorithmAppliesUpdateAndPersists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "params.toml"), []byte("eta = 0.1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile params.toml: %v", err)
	}

	ga := newTestGradientAdder(t)

	alg, err := NewGDAlgorithm(dir, ga)
	if err != nil {
		t.Fatalf("NewGDAlgorithm: %v", err)
	}
	if alg.Epoch() != 1 {
		t.Fatalf("expected a fresh epoch state to start at 1, got %d", alg.Epoch())
	}

	accumulateOneSample(t, ga)

	if err := alg.DoAlgorithm(); err != nil {
		t.Fatalf("DoAlgorithm: %v", err)
	}
	if alg.Epoch() != 2 {
		t.Fatalf("expected DoAlgorithm to advance the epoch counter, got %d", alg.Epoch())
	}

	if err := alg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "state.toml")); err != nil {
		t.Errorf("expected state.toml to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "network.nnet")); err != nil {
		t.Errorf("expected network.nnet to be written: %v", err)
	}
}

func TestNewGDAlgorithmRequiresParamsFile(t *testing.T) {
	dir := t.TempDir()
	ga := newTestGradientAdder(t)
	if _, err := NewGDAlgorithm(dir, ga); err == nil {
		t.Fatalf("expected an error when params.toml is missing")
	}
}

func TestRegistryBuildsEveryKnownAlgorithm(t *testing.T) {
	names := []string{"gd", "momentum", "adagrad", "rmsprop", "adadelta", "adam", "expsgd", "polysgd"}
	params := map[string]string{
		"gd":       "eta = 0.1\n",
		"momentum": "eta = 0.1\nbeta = 0.9\n",
		"adagrad":  "eta = 0.1\neps = 1e-8\n",
		"rmsprop":  "eta = 0.1\ngamma = 0.9\neps = 1e-8\n",
		"adadelta": "rho = 0.9\neps = 1e-8\n",
		"adam":     "eta = 0.1\nbeta1 = 0.9\nbeta2 = 0.999\neps = 1e-8\n",
		"expsgd":   "eta0 = 0.1\ndecay = 0.01\n",
		"polysgd":  "eta0 = 0.1\ndecay = 0.01\npower = 0.5\n",
	}
	for _, name := range names {
		name := name
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "params.toml"), []byte(params[name]), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			ga := newTestGradientAdder(t)
			alg, err := New(name, dir, ga)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			if alg.GradientAdder() != ga {
				t.Errorf("expected GradientAdder() to return the bound adder")
			}
		})
	}
}

func TestRegistryRejectsUnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	ga := newTestGradientAdder(t)
	if _, err := New("not-a-real-algorithm", dir, ga); err == nil {
		t.Fatalf("expected an error for an unknown algorithm name")
	}
}
