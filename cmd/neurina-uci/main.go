// Command neurina-uci is the engine's UCI/XBoard entrypoint, grounded
// on cmd/chessplay-uci/main.go's flag-parsing/construct/Run shape
// (adapted: no NNUE auto-load or CPU profiling flag here, since this
// port's network is always the recurrent C3 network and its weights are
// loaded from a single --network flag).
package main

import (
	"flag"
	"log"
	"os"

	"github.com/luckboy/neurina/internal/config"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/engine"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/neural"
	"github.com/luckboy/neurina/internal/poscache"
	"github.com/luckboy/neurina/internal/protocol"
	"github.com/luckboy/neurina/internal/search"
	"github.com/luckboy/neurina/internal/tablebase"
	"github.com/luckboy/neurina/internal/trainer"
)

var (
	configPath   = flag.String("config", "neurina.toml", "path to the TOML configuration file")
	networkPath  = flag.String("network", "network.nnet", "path to the trained network weights")
	middleDepth  = flag.Int("middle-depth", 2, "plies searched by the middle negamax searcher before PV extension")
	posCacheDir  = flag.String("poscache", "", "directory for the durable position-eval cache (disabled if empty)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("neurina-uci: loading config: %v", err)
	}

	network, err := trainer.LoadNetwork(*networkPath)
	if err != nil {
		log.Fatalf("neurina-uci: loading network: %v", err)
	}

	checker := intr.NewFirst()
	encoder := encoding.New()
	searcher := neural.NewSearcher(network, encoder, checker)
	if *posCacheDir != "" {
		cache, err := poscache.Open(*posCacheDir)
		if err != nil {
			log.Fatalf("neurina-uci: opening position cache: %v", err)
		}
		defer cache.Close()
		searcher.SetCache(cache)
	}
	middle := search.NewMiddleSearcher(checker, searcher)
	root := search.NewRootSearcher(middle, *middleDepth)

	thinker := engine.NewThinker(root, checker, os.Stdout)
	eng := engine.New(thinker)
	defer eng.Quit()

	var setSyzygyPath protocol.SyzygyPathSetter = func(path string) {
		thinker.SetProber(tablebase.NewRootProbeAdapter(tablebase.NewSyzygyProber(path)))
	}
	if cfg.Syzygy != nil && cfg.Syzygy.Path != "" {
		setSyzygyPath(cfg.Syzygy.Path)
	}

	stdoutLog := protocol.NewStdoutLog(os.Stderr)
	if err := protocol.Run(eng, setSyzygyPath, os.Stdin, stdoutLog); err != nil {
		log.Fatalf("neurina-uci: %v", err)
	}
}
