// Command neurina-train runs one or more epochs of minibatch training
// over a Lichess puzzle database, grounded on
// original_source/src/bin/neurina-train.rs.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/luckboy/neurina/internal/config"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/lichess"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/trainer"
	"github.com/luckboy/neurina/internal/trainer/algorithms"
	"github.com/luckboy/neurina/internal/trainstatus"
)

var (
	configPath       = flag.String("config", "neurina.toml", "path to the TOML configuration file")
	dir              = flag.String("dir", "", "change to this directory before training")
	epochs           = flag.Int("epochs", 1, "number of epochs to run")
	samplerName      = flag.String("sampler", "", "sampler: single or multi (overrides the config file)")
	algorithmName    = flag.String("algorithm", "", "algorithm: gd, momentum, adagrad, rmsprop, adadelta, adam, expsgd or polysgd (overrides the config file)")
	gradientAdder    = flag.String("gradient-adder", "", "gradient adder: full or one (overrides the config file)")
	lichessPuzzles   = flag.String("lichess-puzzles", "", "Lichess puzzle database CSV file")
	maxLichessCount  = flag.Uint64("max-lichess-puzzles", 0, "maximal number of puzzles to read (0 = unlimited)")
	networkSize      = flag.Int("network-size", 0, "hidden width of a freshly initialized network (overrides the config file)")
	noResult         = flag.Bool("no-result", false, "skip the read-only accuracy pass after training")
	httpAddr         = flag.String("http", "", "optional address to serve GET /status on, e.g. :8090")
	workers          = flag.Int("workers", 0, "concurrent minibatch flush workers (overrides the config file, 0/1 = sequential)")
)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printDuration(s string, d time.Duration) {
	secs := int64(d / time.Second)
	fmt.Printf("%s time: %d:%02d:%02d.%03d\n", s, (secs/60)/60, (secs/60)%60, secs%60, int64(d/time.Millisecond)%1000)
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("neurina-train: loading config: %v", err)
	}
	if *dir != "" {
		if err := os.Chdir(*dir); err != nil {
			fatalf("neurina-train: %v", err)
		}
	}

	tc := cfg.Trainer
	if tc == nil {
		tc = &config.TrainerConfig{Sampler: "multi", GradientAdder: "full", MaxColCount: trainer.GradientAdderMaxColCount, HiddenWidth: 256, AlgorithmDir: "."}
	}
	if *samplerName != "" {
		tc.Sampler = *samplerName
	}
	if *gradientAdder != "" {
		tc.GradientAdder = *gradientAdder
	}
	if *networkSize != 0 {
		tc.HiddenWidth = *networkSize
	}
	if tc.AlgorithmDir == "" {
		tc.AlgorithmDir = "."
	}

	var algName string
	if cfg.Algorithm != nil && cfg.Algorithm.Name != "" {
		algName = cfg.Algorithm.Name
	}
	if *algorithmName != "" {
		algName = *algorithmName
	}
	if algName == "" {
		algName = "gd"
	}

	var sampler trainer.Sampler
	switch tc.Sampler {
	case "single":
		sampler = trainer.SingleSampler{}
	default:
		sampler = trainer.MultiSampler{}
	}

	checker := intr.New()
	encoder := encoding.New()
	factory := trainer.XavierNetFactory{HiddenWidth: tc.HiddenWidth}
	networkPath := filepath.Join(tc.AlgorithmDir, "network.nnet")
	network, err := trainer.LoadOrCreateNetwork(networkPath, func() *neural.Network {
		return factory.Create(encoding.BoardRowCount, encoder.MoveRowCount())
	})
	if err != nil {
		fatalf("neurina-train: loading network: %v", err)
	}

	maxColCount := tc.MaxColCount
	if maxColCount == 0 {
		maxColCount = trainer.GradientAdderMaxColCount
	}
	var ga trainer.GradientAdd
	if tc.GradientAdder == "one" {
		ga = trainer.NewOneGradientAdder(checker, encoder, network, maxColCount)
	} else {
		ga = trainer.NewGradientAdder(checker, encoder, network, maxColCount)
	}

	alg, err := algorithms.New(algName, tc.AlgorithmDir, ga)
	if err != nil {
		fatalf("neurina-train: %v", err)
	}

	var reporter *trainstatus.Reporter
	if *httpAddr != "" {
		reporter = trainstatus.NewReporter(alg)
		srv := trainstatus.NewServer(reporter)
		go func() {
			if err := http.ListenAndServe(*httpAddr, srv); err != nil {
				log.Printf("neurina-train: status server: %v", err)
			}
		}()
	}

	tr := trainer.NewTrainer(sampler, alg, os.Stdout, trainer.DefaultPrinter{})
	workerCount := tc.WorkerCount
	if *workers != 0 {
		workerCount = *workers
	}
	if workerCount > 1 {
		tr.SetWorkerCount(workerCount)
	}

	if *lichessPuzzles == "" {
		fatalf("neurina-train: -lichess-puzzles is required")
	}

	openDataSource := func() (*trainer.LichessDataSource, *lichess.PuzzleReader, error) {
		reader, err := lichess.OpenPuzzleReader(*lichessPuzzles)
		if err != nil {
			return nil, nil, err
		}
		if *maxLichessCount > 0 {
			reader.SetMaxCount(*maxLichessCount)
		}
		return trainer.NewLichessDataSource(reader), reader, nil
	}

	for e := 0; e < *epochs; e++ {
		fmt.Printf("epoch: %d\n", alg.Epoch())
		data, reader, err := openDataSource()
		if err != nil {
			fatalf("neurina-train: %v", err)
		}
		now := time.Now()
		passed, all, errCount, err := tr.DoEpoch(data)
		reader.Close()
		if err != nil {
			fatalf("neurina-train: %v", err)
		}
		fmt.Printf("passed: %d/%d, errors: %d\n", passed, all, errCount)
		printDuration("epoch", time.Since(now))
		if err := tr.Save(); err != nil {
			fatalf("neurina-train: %v", err)
		}
		if reporter != nil {
			reporter.Update(all, 0, 0, all, true)
		}
	}

	if !*noResult {
		fmt.Println("result")
		data, reader, err := openDataSource()
		if err != nil {
			fatalf("neurina-train: %v", err)
		}
		now := time.Now()
		passed, all, errCount, err := tr.DoResult(data)
		reader.Close()
		if err != nil {
			fatalf("neurina-train: %v", err)
		}
		fmt.Printf("passed: %d/%d, errors: %d\n", passed, all, errCount)
		printDuration("result", time.Since(now))
	}
}
