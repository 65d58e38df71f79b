// Package trainstatus serves a read-only JSON snapshot of an
// in-progress training run over HTTP, an optional companion to
// cmd/neurina-train for long unattended runs. gorilla/mux is already
// one of the teacher's dependencies (carried in go.mod); no repo in the
// retrieved pack calls its API directly, so this package follows
// gorilla/mux's own documented NewRouter/HandleFunc/Methods pattern
// rather than a pack call-site.
package trainstatus

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/luckboy/neurina/internal/trainer/algorithms"
)

// Status is the JSON body GET /status returns.
type Status struct {
	Epoch                  uint64 `json:"epoch"`
	SampleCount            uint64 `json:"sample_count"`
	ComputedMinibatchCount uint64 `json:"computed_minibatch_count"`
	PassedOutputCount      uint64 `json:"passed_output_count"`
	AllOutputCount         uint64 `json:"all_output_count"`
	Done                   bool   `json:"done"`
}

// Reporter is updated by the training loop and read by the HTTP handler.
type Reporter struct {
	mu  sync.RWMutex
	st  Status
	alg algorithms.Algorithm
}

// NewReporter builds a Reporter over alg, used to read the current
// epoch on every request.
func NewReporter(alg algorithms.Algorithm) *Reporter {
	return &Reporter{alg: alg}
}

// Update replaces the reporter's progress snapshot; called by the
// training loop after each minibatch or epoch.
func (r *Reporter) Update(sampleCount, computedMinibatchCount, passedOutputCount, allOutputCount uint64, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st = Status{
		SampleCount:            sampleCount,
		ComputedMinibatchCount: computedMinibatchCount,
		PassedOutputCount:      passedOutputCount,
		AllOutputCount:         allOutputCount,
		Done:                   done,
	}
}

func (r *Reporter) snapshot() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := r.st
	st.Epoch = r.alg.Epoch()
	return st
}

// NewServer builds an http.Handler exposing GET /status.
func NewServer(r *Reporter) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(r.snapshot())
	}).Methods(http.MethodGet)
	return router
}
