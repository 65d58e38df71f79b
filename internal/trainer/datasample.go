package trainer

import "github.com/luckboy/neurina/internal/chessx"

// DataSample is a labeled training example: a board plus the move
// sequence the puzzle/game considers correct from that board onward,
// matching original_source/src/trainer/data_sample.rs.
type DataSample struct {
	Board chessx.Board
	Moves []chessx.Move
}
