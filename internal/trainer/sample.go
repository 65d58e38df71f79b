package trainer

import "github.com/luckboy/neurina/internal/chessx"

// Sampler expands one incoming DataSample into the samples that actually
// get bucketed and fed to a GradientAdd, matching
// original_source/src/trainer/sample.rs. A false second return means the
// sample is ill-formed (e.g. a move in the sequence turned out illegal)
// and should be counted as a skipped sample by the caller.
type Sampler interface {
	Samples(sample DataSample) ([]DataSample, bool)
}

// SingleSampler passes each puzzle through unchanged, matching
// single_sampler.rs.
type SingleSampler struct{}

func (SingleSampler) Samples(sample DataSample) ([]DataSample, bool) {
	return []DataSample{sample}, true
}

// MultiSampler emits one sample per non-terminal prefix of the puzzle's
// move sequence: the puzzle itself, plus one sample per remaining suffix
// after replaying each move, matching multi_sampler.rs. A puzzle of
// length L yields L samples with move-list lengths L, L-1, ..., 1.
type MultiSampler struct{}

func (MultiSampler) Samples(sample DataSample) ([]DataSample, bool) {
	samples := []DataSample{{Board: sample.Board, Moves: sample.Moves}}
	board := sample.Board
	for i, mv := range sample.Moves {
		nb, ok := chessx.Push(board, mv)
		if !ok {
			return nil, false
		}
		board = nb
		if rest := sample.Moves[i+1:]; len(rest) > 0 {
			samples = append(samples, DataSample{Board: board, Moves: append([]chessx.Move(nil), rest...)})
		}
	}
	return samples, true
}
