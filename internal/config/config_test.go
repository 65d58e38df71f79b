package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != nil || cfg.Syzygy != nil || cfg.Trainer != nil || cfg.Algorithm != nil {
		t.Errorf("expected a zero Config for a missing file, got %+v", cfg)
	}
}

func TestLoadParsesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neurina.toml")
	doc := `
[backend]
name = "cpu"

[syzygy]
path = "/tmp/syzygy"

[trainer]
sampler = "multi"
gradient_adder = "full"
max_col_count = 512
hidden_width = 128
algorithm_dir = "./run"
worker_count = 4

[algorithm]
name = "adam"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend == nil || cfg.Backend.Name != "cpu" {
		t.Errorf("unexpected Backend: %+v", cfg.Backend)
	}
	if cfg.Syzygy == nil || cfg.Syzygy.Path != "/tmp/syzygy" {
		t.Errorf("unexpected Syzygy: %+v", cfg.Syzygy)
	}
	if cfg.Trainer == nil || cfg.Trainer.HiddenWidth != 128 || cfg.Trainer.MaxColCount != 512 || cfg.Trainer.WorkerCount != 4 {
		t.Errorf("unexpected Trainer: %+v", cfg.Trainer)
	}
	if cfg.Algorithm == nil || cfg.Algorithm.Name != "adam" {
		t.Errorf("unexpected Algorithm: %+v", cfg.Algorithm)
	}
}
