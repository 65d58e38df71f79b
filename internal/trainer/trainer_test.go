package trainer

import (
	"testing"

	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/intr"
	"github.com/luckboy/neurina/internal/neural"
)

// fakeAlgorithm wraps a GradientAdder with the no-op Epoch/Save/
// DoAlgorithm a doData-only test needs; it never applies an update.
type fakeAlgorithm struct {
	ga GradientAdd
}

func (a *fakeAlgorithm) GradientAdder() GradientAdd { return a.ga }
func (a *fakeAlgorithm) Epoch() uint64              { return 0 }
func (a *fakeAlgorithm) Save() error                { return nil }
func (a *fakeAlgorithm) DoAlgorithm() error         { return nil }

// sliceDataSource replays a fixed slice of DataSamples, satisfying
// DataSource the way LichessDataSource does for real puzzle CSVs.
type sliceDataSource struct {
	samples []DataSample
	i       int
}

func (s *sliceDataSource) Next() bool {
	if s.i >= len(s.samples) {
		return false
	}
	s.i++
	return true
}

func (s *sliceDataSource) Sample() (*DataSample, bool) {
	if s.i == 0 || s.i > len(s.samples) {
		return nil, false
	}
	return &s.samples[s.i-1], true
}

func (s *sliceDataSource) Err() error { return nil }

// samplesAtVaryingLengths builds one DataSample per move count in
// 1..n from the starting position, each a distinct legal continuation,
// so doData buckets them into n independent move-count buckets.
func samplesAtVaryingLengths(t *testing.T, n int) []DataSample {
	t.Helper()
	uciByPly := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6"}
	samples := make([]DataSample, 0, n)
	for mc := 1; mc <= n; mc++ {
		chain, err := chessx.NewChainFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
		if err != nil {
			t.Fatalf("NewChainFromFEN: %v", err)
		}
		start := chain.Last()
		moves := make([]chessx.Move, 0, mc)
		for k := 0; k < mc; k++ {
			mv, ok := chessx.ParseUCIMove(uciByPly[k])
			if !ok {
				t.Fatalf("ParseUCIMove(%s): not ok", uciByPly[k])
			}
			if err := chain.Push(mv); err != nil {
				t.Fatalf("Push(%s): %v", uciByPly[k], err)
			}
			moves = append(moves, mv)
		}
		samples = append(samples, DataSample{Board: start, Moves: moves})
	}
	return samples
}

func newTestTrainer(t *testing.T, workerCount int) (*Trainer, *fakeAlgorithm) {
	t.Helper()
	encoder := encoding.New()
	factory := XavierNetFactory{HiddenWidth: 8}
	network := factory.Create(encoding.BoardRowCount, encoder.MoveRowCount())
	ga := NewGradientAdder(intr.New(), encoder, network, GradientAdderMaxColCount)
	alg := &fakeAlgorithm{ga: ga}
	tr := NewTrainer(SingleSampler{}, alg, &nullWriter{}, EmptyPrinter{})
	tr.SetWorkerCount(workerCount)
	return tr, alg
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestTrainerDoEpochSequential(t *testing.T) {
	tr, alg := newTestTrainer(t, 1)
	samples := samplesAtVaryingLengths(t, 4)
	_, all, errCount, err := tr.DoEpoch(&sliceDataSource{samples: samples})
	if err != nil {
		t.Fatalf("DoEpoch: %v", err)
	}
	if errCount != 0 {
		t.Errorf("unexpected errCount: %d", errCount)
	}
	if all == 0 {
		t.Errorf("expected some outputs to be counted")
	}
	if err := alg.ga.GradientIn(func(*neural.Gradient) {}); err != nil {
		t.Errorf("expected a gradient to have been accumulated: %v", err)
	}
}

func TestTrainerDoEpochConcurrentMatchesSequential(t *testing.T) {
	samples := samplesAtVaryingLengths(t, 6)

	seqTrainer, _ := newTestTrainer(t, 1)
	seqPassed, seqAll, seqErrCount, err := seqTrainer.DoEpoch(&sliceDataSource{samples: append([]DataSample(nil), samples...)})
	if err != nil {
		t.Fatalf("sequential DoEpoch: %v", err)
	}

	concTrainer, _ := newTestTrainer(t, 4)
	concPassed, concAll, concErrCount, err := concTrainer.DoEpoch(&sliceDataSource{samples: append([]DataSample(nil), samples...)})
	if err != nil {
		t.Fatalf("concurrent DoEpoch: %v", err)
	}

	if seqAll != concAll || seqErrCount != concErrCount {
		t.Fatalf("output counts diverged: sequential (passed=%d all=%d err=%d) vs concurrent (passed=%d all=%d err=%d)",
			seqPassed, seqAll, seqErrCount, concPassed, concAll, concErrCount)
	}
}

func TestTrainerDoResultDoesNotAccumulateGradient(t *testing.T) {
	tr, alg := newTestTrainer(t, 2)
	samples := samplesAtVaryingLengths(t, 3)
	if _, _, _, err := tr.DoResult(&sliceDataSource{samples: samples}); err != nil {
		t.Fatalf("DoResult: %v", err)
	}
	if err := alg.ga.Divide(); err == nil {
		t.Errorf("expected Divide to fail: DoResult must not accumulate a gradient")
	}
}
