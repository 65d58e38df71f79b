package trainer

import (
	"context"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// MinibatchCountToPrint matches trainer.rs's Trainer::MINIBATCH_COUNT_TO_PRINT.
const MinibatchCountToPrint = 32

// Algorithm wraps a gradient adder and applies its accumulated gradient
// to the live network once per epoch, matching algorithm.rs's Algorithm
// trait. Declared here (rather than imported from
// internal/trainer/algorithms) so that package can depend on trainer's
// GradientAdd/DataSample types without the reverse import trainer would
// otherwise need to name algorithms.Algorithm; every concrete type in
// internal/trainer/algorithms satisfies this structurally.
type Algorithm interface {
	GradientAdder() GradientAdd
	Epoch() uint64
	Save() error
	DoAlgorithm() error
}

// DataSource iterates a training set, modeled on database/sql's Rows:
// call Next until it returns false, then check Err for a fatal iteration
// failure. Sample's ok result distinguishes a per-item read/parse error
// (counted but not fatal) from a usable sample, matching the
// Result<Option<DataSample>> item type trainer.rs's do_data iterates.
type DataSource interface {
	Next() bool
	Sample() (sample *DataSample, ok bool)
	Err() error
}

// Trainer drives one or more gradient-adder passes over a DataSource,
// bucketing samples by move-sequence length into minibatches and
// flushing a bucket through the algorithm's gradient adder once it
// reaches its column-count limit, grounded on
// original_source/src/trainer/trainer.rs.
type Trainer struct {
	sampler   Sampler
	algorithm Algorithm

	mu      sync.Mutex
	writer  io.Writer
	printer Printer

	workerCount int
}

// NewTrainer builds a Trainer over sampler and algorithm, writing
// progress through writer via printer.
func NewTrainer(sampler Sampler, algorithm Algorithm, writer io.Writer, printer Printer) *Trainer {
	return &Trainer{sampler: sampler, algorithm: algorithm, writer: writer, printer: printer, workerCount: 1}
}

func (t *Trainer) Sampler() Sampler     { return t.sampler }
func (t *Trainer) Algorithm() Algorithm { return t.algorithm }

// SetWorkerCount bounds how many distinct move-count buckets doData
// flushes through the gradient adder concurrently once the data
// source is exhausted. n <= 1 keeps the original sequential behavior;
// original_source/src/trainer/trainer.rs has no such knob, since the
// Rust original's do_data is inherently single-threaded. Both gradient
// adders hold their own mutex for the whole of Compute, minibatch
// encoding included, so the concurrent flushes still run one at a time.
func (t *Trainer) SetWorkerCount(n int) {
	if n < 1 {
		n = 1
	}
	t.workerCount = n
}

func (t *Trainer) Load() error { return nil }
func (t *Trainer) Save() error { return t.algorithm.Save() }

func (t *Trainer) print(sampleCount, computedMinibatchCount, minibatchCount uint64, isDone bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.printer.Print(t.writer, sampleCount, computedMinibatchCount, minibatchCount, isDone); err != nil {
		return err
	}
	if f, ok := t.writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// doData buckets data by move-sequence length, flushing a bucket
// through the gradient adder each time it reaches the adder's column
// limit, then flushes every remaining non-empty bucket once data is
// exhausted. It returns (passedOutputCount, allOutputCount, errCount).
func (t *Trainer) doData(data DataSource, areGradients bool) (uint64, uint64, uint64, error) {
	ga := t.algorithm.GradientAdder()

	minibatches := make(map[int][]DataSample)
	var sampleCount, computedMinibatchCount, minibatchCount uint64
	var passedOutputCount, allOutputCount, errCount uint64
	var bucketsMu sync.Mutex

	if err := t.print(sampleCount, computedMinibatchCount, minibatchCount, false); err != nil {
		return 0, 0, 0, err
	}

	ga.Start()
	// flush may run on its own goroutine once data is exhausted (see the
	// final-bucket loop below), so every read/write of the bucket map and
	// the output counters is guarded by bucketsMu; ga.Compute keeps its
	// own mutex and simply serializes concurrent callers.
	flush := func(moveCount int) error {
		bucketsMu.Lock()
		minibatch := minibatches[moveCount]
		bucketsMu.Unlock()
		if len(minibatch) == 0 {
			return nil
		}
		passed, all, err := ga.Compute(minibatch, moveCount, areGradients)
		if err != nil {
			return err
		}
		bucketsMu.Lock()
		passedOutputCount += passed
		allOutputCount += all
		minibatches[moveCount] = minibatch[:0]
		computedMinibatchCount++
		cmc := computedMinibatchCount
		bucketsMu.Unlock()
		if cmc%MinibatchCountToPrint == 0 {
			if err := t.print(sampleCount, cmc, minibatchCount, false); err != nil {
				return err
			}
		}
		return nil
	}

	for data.Next() {
		if err := ga.IntrChecker().Check(); err != nil {
			return 0, 0, 0, &InterruptedError{Err: err}
		}
		sample, ok := data.Sample()
		if !ok {
			errCount++
			sampleCount++
			continue
		}
		samples, ok := t.sampler.Samples(*sample)
		if !ok {
			errCount++
			sampleCount++
			continue
		}
		for _, s := range samples {
			moveCount := len(s.Moves)
			if _, exists := minibatches[moveCount]; !exists {
				minibatchCount++
			} else if len(minibatches[moveCount]) == 0 {
				minibatchCount++
			}
			minibatches[moveCount] = append(minibatches[moveCount], s)
			if ga.SamplesAreFull(len(minibatches[moveCount])) {
				if err := flush(moveCount); err != nil {
					return 0, 0, 0, err
				}
			}
		}
		sampleCount++
	}
	if err := data.Err(); err != nil {
		return 0, 0, 0, err
	}

	moveCounts := make([]int, 0, len(minibatches))
	for mc := range minibatches {
		moveCounts = append(moveCounts, mc)
	}
	sort.Ints(moveCounts)

	if t.workerCount > 1 && len(moveCounts) > 1 {
		sem := semaphore.NewWeighted(int64(t.workerCount))
		g, ctx := errgroup.WithContext(context.Background())
	countLoop:
		for _, mc := range moveCounts {
			mc := mc
			if err := sem.Acquire(ctx, 1); err != nil {
				break countLoop
			}
			g.Go(func() error {
				defer sem.Release(1)
				return flush(mc)
			})
		}
		if err := g.Wait(); err != nil {
			return 0, 0, 0, err
		}
	} else {
		for _, mc := range moveCounts {
			if err := flush(mc); err != nil {
				return 0, 0, 0, err
			}
		}
	}

	if err := t.print(sampleCount, computedMinibatchCount, minibatchCount, true); err != nil {
		return 0, 0, 0, err
	}
	return passedOutputCount, allOutputCount, errCount, nil
}

// DoEpoch runs one training epoch over data: accumulate gradients,
// divide them into a mean (see GradientAdd.Divide), then apply the
// algorithm's update rule.
func (t *Trainer) DoEpoch(data DataSource) (uint64, uint64, uint64, error) {
	passed, all, errCount, err := t.doData(data, true)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := t.algorithm.GradientAdder().Divide(); err != nil {
		return 0, 0, 0, err
	}
	if err := t.algorithm.DoAlgorithm(); err != nil {
		return 0, 0, 0, err
	}
	return passed, all, errCount, nil
}

// DoResult runs a read-only accuracy pass over data without
// accumulating or applying a gradient update.
func (t *Trainer) DoResult(data DataSource) (uint64, uint64, uint64, error) {
	return t.doData(data, false)
}
