// Package encoding implements the board<->column and move<->index
// bijections shared by every searcher and the trainer (spec component
// C1), grounded on original_source/src/shared/{converter.rs,
// index_converter.rs,utils.rs}.
package encoding

import (
	"math"

	"github.com/luckboy/neurina/internal/chessx"
)

// BoardRowCount is the column height of an encoded board: 64 squares x 13
// one-hot categories, plus 6 castling-flag bits, plus 9 en-passant bits.
//
// original_source's Converter::BOARD_ROW_COUNT is literally the constant
// expression `64 * 13 + 6 + 9`, which evaluates to 847; spec.md's prose
// states "845" for the same expression, an arithmetic slip, so the
// expression's actual value is used here (see DESIGN.md open questions).
const BoardRowCount = 64*13 + 6 + 9

const (
	moveEPS = 0.01
)

// mailbox120, mailbox64, queenSteps120 and knightSteps120 are the
// 10x12-mailbox ray-walking tables used to build the move index table,
// transcribed from index_converter.rs's MAILBOX/MAILBOX64/*_STEPS120.
var mailbox120 = [120]int{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, 0, 1, 2, 3, 4, 5, 6, 7, -1,
	-1, 8, 9, 10, 11, 12, 13, 14, 15, -1,
	-1, 16, 17, 18, 19, 20, 21, 22, 23, -1,
	-1, 24, 25, 26, 27, 28, 29, 30, 31, -1,
	-1, 32, 33, 34, 35, 36, 37, 38, 39, -1,
	-1, 40, 41, 42, 43, 44, 45, 46, 47, -1,
	-1, 48, 49, 50, 51, 52, 53, 54, 55, -1,
	-1, 56, 57, 58, 59, 60, 61, 62, 63, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
}

var mailbox64 = [64]int{
	21, 22, 23, 24, 25, 26, 27, 28,
	31, 32, 33, 34, 35, 36, 37, 38,
	41, 42, 43, 44, 45, 46, 47, 48,
	51, 52, 53, 54, 55, 56, 57, 58,
	61, 62, 63, 64, 65, 66, 67, 68,
	71, 72, 73, 74, 75, 76, 77, 78,
	81, 82, 83, 84, 85, 86, 87, 88,
	91, 92, 93, 94, 95, 96, 97, 98,
}

var queenSteps120 = [8]int{-11, -10, -9, -1, 1, 9, 10, 11}
var knightSteps120 = [8]int{-21, -19, -12, -8, 8, 12, 19, 21}

// promoIdx mirrors the five promotion slots: 0=none, 1=knight, 2=bishop,
// 3=rook, 4=queen (queen shares index 0's slot value, see buildIndexTable).
func promoIdx(p chessx.Piece) int {
	switch p {
	case chessx.Knight:
		return 1
	case chessx.Bishop:
		return 2
	case chessx.Rook:
		return 3
	case chessx.Queen:
		return 4
	default:
		return 0
	}
}

// IndexTable is the read-only, once-built move<->index table (spec C1's
// "index table built once at startup").
type IndexTable struct {
	moveCount int
	table     [64][64][5]int32
}

var defaultIndexTable = buildIndexTable()

// Default returns the shared, process-wide index table.
func Default() *IndexTable { return defaultIndexTable }

// MoveCount is the fixed table size (1924 per spec.md).
func (t *IndexTable) MoveCount() int { return t.moveCount }

func buildIndexTable() *IndexTable {
	t := &IndexTable{}
	for i := range t.table {
		for j := range t.table[i] {
			for k := range t.table[i][j] {
				t.table[i][j][k] = -1
			}
		}
	}
	count := 0
	for from := 0; from < 64; from++ {
		from120 := mailbox64[from]
		for _, step := range queenSteps120 {
			to120 := from120 + step
			for mailbox120[to120] != -1 {
				to := mailbox120[to120]
				t.table[from][to][0] = int32(count)
				delta := to120 - from120
				onRank2 := (from >> 3) == 1 && (delta == -11 || delta == -10 || delta == -9)
				onRank7 := (from >> 3) == 6 && (delta == 9 || delta == 10 || delta == 11)
				if onRank2 || onRank7 {
					t.table[from][to][4] = int32(count)
					count++
					for piece := 1; piece < 4; piece++ {
						t.table[from][to][piece] = int32(count)
						count++
					}
				} else {
					count++
				}
				to120 += step
			}
		}
		for _, step := range knightSteps120 {
			to120 := from120 + step
			if mailbox120[to120] != -1 {
				to := mailbox120[to120]
				t.table[from][to][0] = int32(count)
				count++
			}
		}
	}
	t.moveCount = count
	return t
}

// MoveToIndex returns the table index of a move, canonicalised to side's
// perspective, or (0, false) if the table has no entry for it (e.g. a
// promotion piece on a move that does not reach the last rank). Castling
// moves are covered: they are the king's two-square move along the rank.
func (t *IndexTable) MoveToIndex(m chessx.Move, side chessx.Color) (int, bool) {
	from := coordToIndex(m.From, side)
	to := coordToIndex(m.To, side)
	idx := t.table[from][to][promoIdx(m.Promo)]
	if idx < 0 {
		return 0, false
	}
	return int(idx), true
}

// coordToIndex canonicalises a square index to side's perspective: a
// vertical (rank) reflection for the second color, identity for the
// first, per original_source/src/shared/utils.rs's coord_to_index.
func coordToIndex(sq int, side chessx.Color) int {
	if side == chessx.White {
		return sq
	}
	rank := sq >> 3
	file := sq & 7
	return ((7 - rank) << 3) | file
}

// Encoder turns boards and moves into/out of matrix columns (spec C1's
// encode_board/encode_move/decode_move contract).
type Encoder struct {
	table *IndexTable
}

// New returns an Encoder backed by the shared default index table.
func New() *Encoder { return &Encoder{table: Default()} }

// NewWithTable allows tests to inject a smaller table.
func NewWithTable(t *IndexTable) *Encoder { return &Encoder{table: t} }

// MoveRowCount is the one-hot height of an encoded move: the index
// table's move count.
func (e *Encoder) MoveRowCount() int { return e.table.moveCount }

// BoardToCol writes board's canonicalised BoardRowCount-row encoding into
// column col of a (BoardRowCount x colCount) buffer. Unused slots are
// -1.0, set slots +1.0, matching spec.md §4.1's encode_board contract.
func (e *Encoder) BoardToCol(b chessx.Board, elems []float32, col, colCount int) {
	for i := 0; i < BoardRowCount; i++ {
		elems[colCount*i+col] = -1.0
	}
	side := b.Side()
	for squ := 0; squ < 64; squ++ {
		srcSq := squ
		if side == chessx.Black {
			srcSq = coordToIndex(squ, chessx.Black)
		}
		cellIdx := cellToIndex(b, srcSq, side)
		elems[colCount*(squ*13+cellIdx)+col] = 1.0
	}
	offset := 64 * 13
	rights := b.CastleRights()
	var wq, wk, bq, bk bool
	if side == chessx.White {
		wq, wk, bq, bk = rights[1], rights[0], rights[3], rights[2]
	} else {
		wq, wk, bq, bk = rights[3], rights[2], rights[1], rights[0]
	}
	we := !(wq || wk)
	be := !(bq || bk)
	setBit := func(i int, v bool) {
		if v {
			elems[colCount*(offset+i)+col] = 1.0
		}
	}
	setBit(0, wq)
	setBit(1, wk)
	setBit(2, we)
	setBit(3, bq)
	setBit(4, bk)
	setBit(5, be)
	offset += 6
	if file, ok := b.EnPassantFile(); ok {
		elems[colCount*(offset+file+1)+col] = 1.0
	} else {
		elems[colCount*offset+col] = 1.0
	}
}

// cellToIndex returns the 13-way one-hot category of the piece at sq:
// 0 empty, 1-6 friendly {pawn..king}, 7-12 enemy {pawn..king}. Not
// present in the filtered original_source pack (see DESIGN.md); the
// category ordering follows spec.md §4.1's "empty, 6 friendly, 6 enemy".
func cellToIndex(b chessx.Board, sq int, side chessx.Color) int {
	piece, color, ok := b.PieceAt(sq)
	if !ok {
		return 0
	}
	base := int(piece)
	if color != side {
		base += 6
	}
	return base
}

// MoveToCol writes move's one-hot encoding (MoveRowCount rows) into
// column col; an unrepresentable move zeroes the whole column.
func (e *Encoder) MoveToCol(m chessx.Move, side chessx.Color, elems []float32, col, colCount int) {
	for i := 0; i < e.table.moveCount; i++ {
		elems[colCount*i+col] = 0.0
	}
	if idx, ok := e.table.MoveToIndex(m, side); ok {
		elems[colCount*idx+col] = 1.0
	}
}

// ColToMove picks the legal move in moves whose table index has the
// highest score in column col, returning false if the margin between the
// best and worst scoring legal moves is too small to be decisive (the
// eps-relative-margin rule from matrix_col_to_move).
func (e *Encoder) ColToMove(moves []chessx.Move, side chessx.Color, elems []float32, col, colCount int, eps float32) (chessx.Move, bool) {
	bestScore := float32(math.Inf(-1))
	worstScore := float32(math.Inf(1))
	var best chessx.Move
	found := false
	count := 0
	for _, mv := range moves {
		idx, ok := e.table.MoveToIndex(mv, side)
		if !ok {
			continue
		}
		score := elems[colCount*idx+col]
		if score > bestScore {
			best = mv
			bestScore = score
			found = true
		}
		if score < worstScore {
			worstScore = score
		}
		count++
	}
	if !found {
		return chessx.Move{}, false
	}
	if count <= 1 || float32(math.Abs(float64(bestScore-worstScore))) > float32(math.Abs(float64(bestScore)))*eps {
		return best, true
	}
	return chessx.Move{}, false
}

// DefaultMoveEPS is the decisiveness margin one_neural_searcher.rs uses.
const DefaultMoveEPS = moveEPS
