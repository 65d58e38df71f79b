package neural

import (
	"github.com/luckboy/neurina/internal/chessx"
	"github.com/luckboy/neurina/internal/encoding"
	"github.com/luckboy/neurina/internal/matrixbuf"
	"github.com/luckboy/neurina/internal/poscache"
)

// MaxColCount bounds how many partial principal variations are batched
// into one forward pass, matching OneNeuralSearcher::MAX_COL_COUNT.
const MaxColCount = 1024

// Searcher extends a batch of partial principal variations by one move
// per ply via batched forward passes (spec component C4), grounded on
// original_source/src/engine/one_neural_searcher.rs: every ply the
// board reached by each PV is re-encoded from scratch and pushed through
// a single depth=1,pv=1 forward call, rather than unrolling the whole
// search in one shot.
type Searcher struct {
	network     *Network
	encoder     *encoding.Encoder
	checker     Checker
	maxColCount int
	cache       *poscache.Cache
}

// NewSearcher builds a Searcher over network using encoder for board/move
// (de)serialisation; checker is consulted once per ply and once per
// batch chunk.
func NewSearcher(network *Network, encoder *encoding.Encoder, checker Checker) *Searcher {
	return &Searcher{network: network, encoder: encoder, checker: checker, maxColCount: MaxColCount}
}

// SetCache installs a durable per-position evaluation cache: a board
// reached along more than one PV (or re-reached across restarts of the
// same engine against the same opponent) skips the forward pass
// entirely on a hit. A nil cache (the default) disables caching.
func (s *Searcher) SetCache(cache *poscache.Cache) { s.cache = cache }

// lookup reports the cached move for board, consulting s.cache only
// when one is installed and the suggested move is still legal (an
// entry can outlive the specific PV context it was written from).
func (s *Searcher) lookup(board chessx.Board) (chessx.Move, bool) {
	if s.cache == nil {
		return chessx.Move{}, false
	}
	entry, ok, err := s.cache.Get(board)
	if err != nil || !ok {
		return chessx.Move{}, false
	}
	for _, mv := range chessx.LegalMovesFrom(board) {
		if mv == entry.BestMove {
			return mv, true
		}
	}
	return chessx.Move{}, false
}

// remember stores the network's chosen move and output scores for
// board, so a later lookup (same search, a later PV, or a later process
// run against the same cache directory) can skip recomputing it.
func (s *Searcher) remember(board chessx.Board, mv chessx.Move, scores []float32) {
	if s.cache == nil {
		return
	}
	cp := make([]float32, len(scores))
	copy(cp, scores)
	if err := s.cache.Put(board, poscache.Entry{BestMove: mv, Scores: cp}); err != nil {
		return
	}
}

// Search extends every pv in pvs, in place, by depth moves starting from
// board (each pv is relative to board, i.e. board.Push(pv...) gives the
// position the extension begins at).
func (s *Searcher) Search(board chessx.Board, pvs [][]chessx.Move, depth int) error {
	for i := 0; i < len(pvs); i += s.maxColCount {
		if err := s.checker.Check(); err != nil {
			return err
		}
		colCount := s.maxColCount
		if rem := len(pvs) - i; rem < colCount {
			colCount = rem
		}
		if err := s.searchChunk(board, pvs[i:i+colCount], depth); err != nil {
			return err
		}
	}
	return nil
}

func (s *Searcher) searchChunk(board chessx.Board, pvs [][]chessx.Move, depth int) error {
	colCount := len(pvs)
	boards := make([]chessx.Board, colCount)
	for j, pv := range pvs {
		boards[j] = replay(board, pv)
	}
	inputRows := encoding.BoardRowCount
	outputRows := s.encoder.MoveRowCount()

	for iter := 0; iter < depth; iter++ {
		if err := s.checker.Check(); err != nil {
			return err
		}

		// Columns whose board is already cached skip the forward pass
		// entirely; only the rest need a network evaluation this ply.
		live := make([]int, 0, colCount)
		for j := 0; j < colCount; j++ {
			if mv, ok := s.lookup(boards[j]); ok {
				pvs[j] = append(pvs[j], mv)
				boards[j] = applyMove(boards[j], mv)
				continue
			}
			live = append(live, j)
		}
		if len(live) == 0 {
			continue
		}

		liveCount := len(live)
		inputElems := make([]float32, inputRows*liveCount)
		outputElems := make([]float32, outputRows*liveCount)
		for k, j := range live {
			s.encoder.BoardToCol(boards[j], inputElems, k, liveCount)
		}
		x := matrixbuf.NewWithElems(inputRows, liveCount, inputElems)
		err := s.network.Forward(x, 1, 1, s.checker,
			func(*matrixbuf.Matrix) error { return s.checker.Check() },
			func(o *matrixbuf.Matrix) error {
				if err := s.checker.Check(); err != nil {
					return err
				}
				copy(outputElems, o.Elems())
				outMat := matrixbuf.NewWithElems(outputRows, liveCount, outputElems)
				for k, j := range live {
					legal := chessx.LegalMovesFrom(boards[j])
					mv, ok := s.encoder.ColToMove(legal, boards[j].Side(), outMat.Elems(), k, liveCount, encoding.DefaultMoveEPS)
					if !ok {
						continue
					}
					scores := make([]float32, outputRows)
					for r := 0; r < outputRows; r++ {
						scores[r] = outMat.At(r, k)
					}
					s.remember(boards[j], mv, scores)
					b2 := applyMove(boards[j], mv)
					pvs[j] = append(pvs[j], mv)
					boards[j] = b2
				}
				return nil
			})
		if err != nil {
			return err
		}
	}
	return nil
}

// replay returns the board obtained by applying pv's moves to board,
// stopping early (without error) on the first illegal move, matching
// one_neural_searcher.rs's best-effort replay.
func replay(board chessx.Board, pv []chessx.Move) chessx.Board {
	b := board
	for _, mv := range pv {
		nb, ok := chessx.Push(b, mv)
		if !ok {
			break
		}
		b = nb
	}
	return b
}

func applyMove(b chessx.Board, mv chessx.Move) chessx.Board {
	nb, ok := chessx.Push(b, mv)
	if !ok {
		return b
	}
	return nb
}
