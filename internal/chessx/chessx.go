// Package chessx adapts github.com/notnil/chess to the narrow board/move/
// move-chain contract the rest of this module consumes. Chess rules
// themselves are not reimplemented here; this package only translates
// between notnil/chess's types and the shapes the encoding and search
// packages need.
package chessx

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Color mirrors chess.Color without leaking the external package's enum
// values into call sites that don't already import it.
type Color int

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Piece is a 1-indexed piece type: 1=Pawn..6=King, matching the column
// ordering the encoding layer expects.
type Piece int

const (
	NoPiece Piece = 0
	Pawn    Piece = 1
	Knight  Piece = 2
	Bishop  Piece = 3
	Rook    Piece = 4
	Queen   Piece = 5
	King    Piece = 6
)

var pieceTypeOf = map[chess.PieceType]Piece{
	chess.Pawn:   Pawn,
	chess.Knight: Knight,
	chess.Bishop: Bishop,
	chess.Rook:   Rook,
	chess.Queen:  Queen,
	chess.King:   King,
}

var chessPieceTypeOf = map[Piece]chess.PieceType{
	Pawn:   chess.Pawn,
	Knight: chess.Knight,
	Bishop: chess.Bishop,
	Rook:   chess.Rook,
	Queen:  chess.Queen,
	King:   chess.King,
}

// Move is a structured source/destination/optional-promotion value with a
// UCI textual form, matching spec.md §3's "Move (external)".
type Move struct {
	From, To int // 0..63, a1=0 .. h8=63
	Promo    Piece
}

func (m Move) String() string {
	s := squareName(m.From) + squareName(m.To)
	if m.Promo != NoPiece {
		s += strings.ToLower(promoLetter(m.Promo))
	}
	return s
}

// ParseUCIMove decodes a UCI move string (e.g. "e2e4", "e7e8q") into a
// Move, without checking legality.
func ParseUCIMove(s string) (Move, bool) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, false
	}
	from, ok := parseSquareName(s[0:2])
	if !ok {
		return Move{}, false
	}
	to, ok := parseSquareName(s[2:4])
	if !ok {
		return Move{}, false
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
			m.Promo = Queen
		case 'r':
			m.Promo = Rook
		case 'b':
			m.Promo = Bishop
		case 'n':
			m.Promo = Knight
		default:
			return Move{}, false
		}
	}
	return m, true
}

func parseSquareName(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	file := s[0]
	rank := s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	return int(rank-'1')*8 + int(file-'a'), true
}

func squareName(sq int) string {
	file := sq % 8
	rank := sq / 8
	return string(rune('a'+file)) + string(rune('1'+rank))
}

func promoLetter(p Piece) string {
	switch p {
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	default:
		return ""
	}
}

// Outcome is the automatic outcome detected for a position: either a win
// for the side named, or a draw. A zero Outcome means the game continues.
type Outcome struct {
	IsOver bool
	Winner Color
	IsWin  bool
	IsDraw bool
}

// Board is an immutable chess position snapshot.
type Board struct {
	pos *chess.Position
}

func newBoard(pos *chess.Position) Board { return Board{pos: pos} }

// Initial returns the starting position.
func Initial() Board { return newBoard(chess.NewGame().Position()) }

// Side returns the side to move.
func (b Board) Side() Color {
	if b.pos.Turn() == chess.White {
		return White
	}
	return Black
}

// PieceAt returns the piece occupying sq (0..63) and its color, or
// (NoPiece, White, false) if the square is empty.
func (b Board) PieceAt(sq int) (Piece, Color, bool) {
	p := b.pos.Board().Piece(chess.Square(sq))
	if p == chess.NoPiece {
		return NoPiece, White, false
	}
	pt, ok := pieceTypeOf[p.Type()]
	if !ok {
		return NoPiece, White, false
	}
	color := White
	if p.Color() == chess.Black {
		color = Black
	}
	return pt, color, true
}

// CastleRights reports, in order (white kingside, white queenside, black
// kingside, black queenside), whether that castle is still available.
func (b Board) CastleRights() [4]bool {
	cr := b.pos.CastleRights()
	return [4]bool{
		cr.CanCastle(chess.White, chess.KingSide),
		cr.CanCastle(chess.White, chess.QueenSide),
		cr.CanCastle(chess.Black, chess.KingSide),
		cr.CanCastle(chess.Black, chess.QueenSide),
	}
}

// EnPassantFile returns the file (0..7) a capturing en-passant pawn would
// target, or (-1, false) if no such square exists.
func (b Board) EnPassantFile() (int, bool) {
	sq := b.pos.EnPassantSquare()
	if sq == chess.NoSquare {
		return -1, false
	}
	return int(sq) % 8, true
}

// Reflected returns a board mirrored top-to-bottom with colors swapped:
// a board-level form of the canonicalization that encoding.BoardToCol
// applies square by square (utils.rs's coord_to_index transform).
// BoardToCol itself does not call Reflected.
func (b Board) Reflected() Board {
	fen := b.pos.String()
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return b
	}
	ranks := strings.Split(parts[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	for i, r := range ranks {
		ranks[i] = swapCase(r)
	}
	parts[0] = strings.Join(ranks, "/")
	if len(parts) > 1 {
		if parts[1] == "w" {
			parts[1] = "b"
		} else {
			parts[1] = "w"
		}
	}
	newFEN := strings.Join(parts, " ")
	fn, err := chess.FEN(newFEN)
	if err != nil {
		return b
	}
	g := chess.NewGame(fn)
	return newBoard(g.Position())
}

func swapCase(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z':
			out[i] = r - 32
		case r >= 'A' && r <= 'Z':
			out[i] = r + 32
		}
	}
	return string(out)
}

// FEN returns the Forsyth-Edwards form of the position.
func (b Board) FEN() string { return b.pos.String() }

// BoardFromFEN parses fen into a standalone Board snapshot, for callers
// (puzzle ingestion, tablebase probes) that only need a position, not a
// live move chain.
func BoardFromFEN(fen string) (Board, error) {
	fn, err := chess.FEN(fen)
	if err != nil {
		return Board{}, fmt.Errorf("chessx: parse FEN: %w", err)
	}
	return newBoard(chess.NewGame(fn).Position()), nil
}

// MoveChain is a mutable, ordered sequence of legal moves from an initial
// position. Push/Pop bookkeeping is glue code: notnil/chess.Game is
// append-only, so Pop restores a saved clone rather than un-making a move
// inside the rules engine.
type MoveChain struct {
	stack []*chess.Game
}

// NewInitialChain returns a move chain starting at the initial position.
func NewInitialChain() *MoveChain {
	return &MoveChain{stack: []*chess.Game{chess.NewGame()}}
}

// NewChainFromFEN starts a move chain from an arbitrary FEN position.
func NewChainFromFEN(fen string) (*MoveChain, error) {
	fn, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("chessx: parse FEN: %w", err)
	}
	return &MoveChain{stack: []*chess.Game{chess.NewGame(fn)}}, nil
}

func (mc *MoveChain) game() *chess.Game { return mc.stack[len(mc.stack)-1] }

// Last returns the current (most recently pushed) board.
func (mc *MoveChain) Last() Board { return newBoard(mc.game().Position()) }

// Len returns the number of half-moves made so far.
func (mc *MoveChain) Len() int { return len(mc.stack) - 1 }

// Push makes a move, failing if it is not legal in the current position.
func (mc *MoveChain) Push(m Move) error {
	g := mc.game().Clone()
	enc := chess.UCINotation{}
	cm, err := enc.Decode(g.Position(), m.String())
	if err != nil {
		return fmt.Errorf("chessx: decode move %s: %w", m, err)
	}
	if err := g.Move(cm); err != nil {
		return fmt.Errorf("chessx: illegal move %s: %w", m, err)
	}
	mc.stack = append(mc.stack, g)
	return nil
}

// PushSAN makes a move given in standard algebraic notation (e.g.
// "Nf3", "O-O", "exd5"), failing if it does not parse or is not legal.
func (mc *MoveChain) PushSAN(san string) error {
	g := mc.game().Clone()
	enc := chess.AlgebraicNotation{}
	cm, err := enc.Decode(g.Position(), san)
	if err != nil {
		return fmt.Errorf("chessx: decode SAN %s: %w", san, err)
	}
	if err := g.Move(cm); err != nil {
		return fmt.Errorf("chessx: illegal move %s: %w", san, err)
	}
	mc.stack = append(mc.stack, g)
	return nil
}

// Pop undoes the most recent Push. It is a no-op at the initial position.
func (mc *MoveChain) Pop() {
	if len(mc.stack) > 1 {
		mc.stack = mc.stack[:len(mc.stack)-1]
	}
}

// LegalMoves enumerates all legal moves in the current position.
func (mc *MoveChain) LegalMoves() []Move {
	valid := mc.game().ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, vm := range valid {
		out = append(out, fromChessMove(vm))
	}
	return out
}

func fromChessMove(cm *chess.Move) Move {
	m := Move{From: int(cm.S1()), To: int(cm.S2())}
	if pt, ok := pieceTypeOf[cm.Promo()]; ok {
		m.Promo = pt
	}
	return m
}

// InCheck reports whether the side to move is in check.
func (b Board) InCheck() bool { return b.pos.InCheck() }

// HasLegalMoves reports whether the side to move has at least one legal
// move from this position.
func (b Board) HasLegalMoves() bool { return len(LegalMovesFrom(b)) > 0 }

// AutoOutcomeFrom detects the automatic outcome of an arbitrary board
// snapshot, for callers that only hold a Board rather than a live
// MoveChain.
func AutoOutcomeFrom(b Board) Outcome {
	fn, err := chess.FEN(b.FEN())
	if err != nil {
		return Outcome{}
	}
	g := chess.NewGame(fn)
	out := g.Outcome()
	if out == chess.NoOutcome {
		return Outcome{}
	}
	switch out {
	case chess.WhiteWon:
		return Outcome{IsOver: true, IsWin: true, Winner: White}
	case chess.BlackWon:
		return Outcome{IsOver: true, IsWin: true, Winner: Black}
	default:
		return Outcome{IsOver: true, IsDraw: true}
	}
}

// Push returns the board reached by playing m from b, or ok=false if m
// is not legal in b.
func Push(b Board, m Move) (Board, bool) {
	fn, err := chess.FEN(b.FEN())
	if err != nil {
		return b, false
	}
	g := chess.NewGame(fn)
	enc := chess.UCINotation{}
	cm, err := enc.Decode(g.Position(), m.String())
	if err != nil {
		return b, false
	}
	if err := g.Move(cm); err != nil {
		return b, false
	}
	return newBoard(g.Position()), true
}

// LegalMovesFrom enumerates legal moves from an arbitrary board snapshot,
// for callers (like the neural searcher) that only hold Board values
// rather than a live MoveChain.
func LegalMovesFrom(b Board) []Move {
	fn, err := chess.FEN(b.FEN())
	if err != nil {
		return nil
	}
	g := chess.NewGame(fn)
	valid := g.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, vm := range valid {
		out = append(out, fromChessMove(vm))
	}
	return out
}

// SetAutoOutcome detects and returns the automatic outcome (checkmate,
// stalemate, draw by rule) of the current position, if any.
func (mc *MoveChain) SetAutoOutcome() Outcome {
	g := mc.game()
	out := g.Outcome()
	if out == chess.NoOutcome {
		return Outcome{}
	}
	switch out {
	case chess.WhiteWon:
		return Outcome{IsOver: true, IsWin: true, Winner: White}
	case chess.BlackWon:
		return Outcome{IsOver: true, IsWin: true, Winner: Black}
	default:
		return Outcome{IsOver: true, IsDraw: true}
	}
}

// ClearOutcome is a no-op placeholder matching the original's API shape:
// notnil/chess recomputes outcome from position every call, so there is
// no cached flag to clear.
func (mc *MoveChain) ClearOutcome() {}
