// Package position adapts github.com/IlikeChooros/dragontoothmg to the
// node.Position/node.Move handles the search core consumes.
package position

import (
	"math/bits"
	"strings"

	chess "github.com/IlikeChooros/dragontoothmg"
	"github.com/nnsearch-go/mctsnode/node"
)

// Board wraps a *chess.Board with the bookkeeping node.Position needs that
// the library itself doesn't track: half-move clock, last move, and the
// checkmate/stalemate flags the core sets once it has classified a leaf.
// Grounded on chessmcts.UcbGameOps's board-ownership pattern
// (examples/chess/chess-mcts/ucb.go): one board per branch, cloned rather
// than made/undone in place, since the search tree keeps every visited
// position alive concurrently instead of rolling back a single shared board.
type Board struct {
	game          *chess.Board
	halfMoveClock int
	lastMove      node.Move
	checkMate     bool
	staleMate     bool
	repetitions   int
}

// NewGame returns a Board at the standard starting position.
func NewGame() *Board {
	return &Board{game: chess.NewBoard(), repetitions: -1}
}

// FromFEN parses fen into a Board.
func FromFEN(fen string) *Board {
	g := chess.ParseFen(fen)
	return &Board{game: &g, halfMoveClock: halfMoveClockField(fen), repetitions: -1}
}

func halfMoveClockField(fen string) int {
	fields := strings.Fields(fen)
	if len(fields) < 5 {
		return 0
	}
	n := 0
	for _, c := range fields[4] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func (b *Board) Clone() node.Position {
	return &Board{
		game:          b.game.Clone(),
		halfMoveClock: b.halfMoveClock,
		lastMove:      b.lastMove,
		checkMate:     b.checkMate,
		staleMate:     b.staleMate,
		repetitions:   -1,
	}
}

// ApplyMove makes mv on this board, rejecting moves not currently legal.
// Grounded on ExpandNode's Make/test/Undo pattern in ucb.go, but here the
// move is simply made in place since each Board instance is owned by
// exactly one node.
func (b *Board) ApplyMove(mv node.Move) bool {
	m, ok := mv.(Move)
	if !ok {
		return false
	}

	legal := false
	for _, cand := range b.game.GenerateLegalMoves() {
		if cand == m.raw {
			legal = true
			break
		}
	}
	if !legal {
		return false
	}

	own := b.ownBitboards()
	isPawnMove := own.Pawns&(1<<m.raw.From()) != 0
	isCapture := chess.IsCapture(m.raw, b.game)

	b.game.Make(m.raw)

	if isCapture || isPawnMove {
		b.halfMoveClock = 0
	} else {
		b.halfMoveClock++
	}
	b.lastMove = mv
	b.repetitions = -1
	return true
}

// PseudoLegalMoves enumerates this position's moves, classifying each as
// capture/check/promotion the way ExpandNode classifies terminality: make
// the move, inspect the resulting position, undo it.
func (b *Board) PseudoLegalMoves(visit func(node.Move)) {
	for _, mv := range b.game.GenerateLegalMoves() {
		capture := chess.IsCapture(mv, b.game)
		promotion := mv.Promote() != chess.NoPiece

		b.game.Make(mv)
		check := b.isCheckedRaw(b.game.Wtomove)
		b.game.Undo()

		visit(Move{raw: mv, capture: capture, check: check, promotion: promotion})
	}
}

func (b *Board) ownBitboards() chess.Bitboards {
	if b.game.Wtomove {
		return b.game.White
	}
	return b.game.Black
}

func (b *Board) isCheckedRaw(whiteKing bool) bool {
	kingBB, attackerBB := b.game.Black, b.game.White
	if whiteKing {
		kingBB, attackerBB = b.game.White, b.game.Black
	}
	if kingBB.Kings == 0 {
		return false
	}
	occ := b.game.White.All | b.game.Black.All
	kingSq := uint8(bits.TrailingZeros64(kingBB.Kings))
	return isSquareAttacked(kingSq, attackerBB, occ, !whiteKing)
}

func (b *Board) IsChecked(side node.Side) bool {
	return b.isCheckedRaw(side == node.White)
}

// IsDeadPosition reports the simple insufficient-material draws (K v K,
// K+minor v K). Same-colored-bishop and other edge-case dead positions are
// left to the 50-move/threefold rules to eventually catch.
func (b *Board) IsDeadPosition() bool {
	w, bl := b.game.White, b.game.Black
	if w.Pawns|bl.Pawns|w.Rooks|bl.Rooks|w.Queens|bl.Queens != 0 {
		return false
	}
	wMinors := bits.OnesCount64(w.Knights | w.Bishops)
	bMinors := bits.OnesCount64(bl.Knights | bl.Bishops)
	return wMinors+bMinors <= 1
}

func (b *Board) HalfMoveClock() int { return b.halfMoveClock }

func (b *Board) IsSamePosition(other node.Position) bool {
	o, ok := other.(*Board)
	if !ok {
		return false
	}
	return fenIdentity(b.game.ToFen()) == fenIdentity(o.game.ToFen())
}

// fenIdentity strips the half-move and full-move counters from a FEN,
// since threefold repetition is defined over piece placement, side to move,
// castling rights and en passant target only.
func fenIdentity(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fen
	}
	return strings.Join(fields[:4], " ")
}

func (b *Board) LastMove() node.Move { return b.lastMove }

func (b *Board) ActiveSide() node.Side {
	if b.game.Wtomove {
		return node.White
	}
	return node.Black
}

func (b *Board) SetCheckMate(v bool) { b.checkMate = v }
func (b *Board) SetStaleMate(v bool) { b.staleMate = v }
func (b *Board) IsCheckMate() bool   { return b.checkMate }
func (b *Board) IsStaleMate() bool   { return b.staleMate }

func (b *Board) SetRepetitions(n int) { b.repetitions = n }
func (b *Board) Repetitions() int     { return b.repetitions }

// FEN returns the current position in Forsyth-Edwards notation.
func (b *Board) FEN() string { return b.game.ToFen() }

// Bitboards exposes the raw per-side piece bitboards, for callers (material
// counting, endgame classification) that need more than the Position
// interface's narrow surface.
func (b *Board) Bitboards() (white, black chess.Bitboards) {
	return b.game.White, b.game.Black
}
