// Package config loads the application's TOML configuration file,
// grounded on original_source/src/shared/config.rs's Config/
// BackendConfig/SyzygyConfig shape, using spf13/viper the way
// niceyeti-tabular/tabular/reinforcement/learning.go's FromYaml uses it
// (vp := viper.New(); SetConfigFile/SetConfigType/AddConfigPath;
// ReadInConfig; Unmarshal), swapped from YAML to TOML.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the top-level neurina.toml document. config.rs's `backend`
// section only ever mattered for choosing between CUDA/OpenCL/CPU
// matrix backends; this port has a single CPU matrix implementation
// (see internal/matrixbuf's package doc), so BackendConfig is kept only
// as an acknowledged, always-"cpu" compatibility field.
type Config struct {
	Backend   *BackendConfig   `mapstructure:"backend"`
	Syzygy    *SyzygyConfig    `mapstructure:"syzygy"`
	Trainer   *TrainerConfig   `mapstructure:"trainer"`
	Algorithm *AlgorithmConfig `mapstructure:"algorithm"`
}

// BackendConfig mirrors config.rs's BackendConfig. Every CUDA/OpenCL
// selector field is preserved as a named field for fidelity with the
// original shape; the fields, Name included, are parsed but not read
// anywhere else in this port.
type BackendConfig struct {
	Name        string `mapstructure:"name"`
	FirstOpenCL *bool  `mapstructure:"first_opencl"`
	Ordinal     *int   `mapstructure:"ordinal"`
	Platform    *int   `mapstructure:"platform"`
	Device      *int   `mapstructure:"device"`
	CuBLAS      *bool  `mapstructure:"cublas"`
	MMA         *bool  `mapstructure:"mma"`
}

// SyzygyConfig mirrors config.rs's SyzygyConfig.
type SyzygyConfig struct {
	Path string `mapstructure:"path"`
}

// TrainerConfig extends the original config shape with the trainer's
// own knobs (spec.md's ambient-stack expansion; config.rs has no
// trainer-facing section since the Rust original splits training
// config across CLI flags and per-algorithm directories instead).
type TrainerConfig struct {
	Sampler       string `mapstructure:"sampler"`
	GradientAdder string `mapstructure:"gradient_adder"`
	MaxColCount   int    `mapstructure:"max_col_count"`
	HiddenWidth   int    `mapstructure:"hidden_width"`
	AlgorithmDir  string `mapstructure:"algorithm_dir"`
	WorkerCount   int    `mapstructure:"worker_count"`
}

// AlgorithmConfig selects which of the 8 first-order algorithms
// (internal/trainer/algorithms) a training run applies.
type AlgorithmConfig struct {
	Name string `mapstructure:"name"`
}

// Load reads path as TOML into a Config. A missing file returns a zero
// Config and a nil error, matching config.rs's load_config returning
// Ok(None) when the file doesn't exist.
func Load(path string) (Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("toml")
	vp.AddConfigPath(filepath.Dir(path))

	var cfg Config
	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := vp.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
