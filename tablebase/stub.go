// Package tablebase supplies node.Tablebase implementations. No Syzygy (or
// other on-disk) reader is implemented here — that file format and its I/O
// layer are out of scope — but a small in-memory Stub resolves the
// material-trivial endgames a real tablebase would answer instantly, so the
// search core's tablebase-probing path has something real to exercise.
package tablebase

import (
	"math/bits"

	"github.com/nnsearch-go/mctsnode/node"
	"github.com/nnsearch-go/mctsnode/position"
)

// Stub is a deterministic, file-free node.Tablebase covering K v K, K+minor
// v K+minor, and K+rook-or-queen v bare K. Anything else reports
// TBNotFound, the same answer a real tablebase gives outside its material
// range.
type Stub struct{}

func (Stub) Probe(pos node.Position) node.TBResult {
	b, ok := pos.(*position.Board)
	if !ok {
		return node.TBNotFound
	}
	result, ok := classify(b)
	if !ok {
		return node.TBNotFound
	}
	return result
}

// ProbeDTZ additionally names a move when it can, matching the shape of a
// real DTZ probe (spec §6) but with no real distance-to-zero search: it
// simply looks for the first legal move that doesn't hand the win back to
// the opponent.
func (Stub) ProbeDTZ(pos node.Position) (result node.TBResult, mv node.Move, dtz int, ok bool) {
	b, isBoard := pos.(*position.Board)
	if !isBoard {
		return node.TBNotFound, nil, 0, false
	}
	result, ok = classify(b)
	if !ok || result == node.TBDraw {
		return result, nil, 0, ok
	}

	var found node.Move
	b.PseudoLegalMoves(func(candidate node.Move) {
		if found != nil {
			return
		}
		clone := b.Clone().(*position.Board)
		if !clone.ApplyMove(candidate) {
			return
		}
		if r, ok := classify(clone); ok && r != node.TBWin {
			found = candidate
		}
	})
	if found == nil {
		return result, nil, 0, false
	}
	return result, found, 1, true
}

type materialSide struct {
	pawns, knights, bishops, rooks, queens int
}

func materialCounts(b *position.Board) (white, black materialSide) {
	wBB, bBB := b.Bitboards()
	white = materialSide{
		pawns:   bits.OnesCount64(wBB.Pawns),
		knights: bits.OnesCount64(wBB.Knights),
		bishops: bits.OnesCount64(wBB.Bishops),
		rooks:   bits.OnesCount64(wBB.Rooks),
		queens:  bits.OnesCount64(wBB.Queens),
	}
	black = materialSide{
		pawns:   bits.OnesCount64(bBB.Pawns),
		knights: bits.OnesCount64(bBB.Knights),
		bishops: bits.OnesCount64(bBB.Bishops),
		rooks:   bits.OnesCount64(bBB.Rooks),
		queens:  bits.OnesCount64(bBB.Queens),
	}
	return
}

// classify answers a result from the perspective of the side to move in b,
// matching the qValue sign convention the core uses everywhere else.
func classify(b *position.Board) (node.TBResult, bool) {
	w, bl := materialCounts(b)
	if w.pawns != 0 || bl.pawns != 0 {
		return node.TBNotFound, false
	}

	wMajors, bMajors := w.rooks+w.queens, bl.rooks+bl.queens
	wMinors, bMinors := w.knights+w.bishops, bl.knights+bl.bishops

	switch {
	case wMajors == 0 && bMajors == 0 && wMinors <= 1 && bMinors <= 1:
		return node.TBDraw, true
	case wMajors > 0 && bMajors == 0 && bMinors == 0:
		return sidedResult(b, node.White), true
	case bMajors > 0 && wMajors == 0 && wMinors == 0:
		return sidedResult(b, node.Black), true
	default:
		return node.TBNotFound, false
	}
}

// sidedResult reports TBWin if winner is the side to move, TBLoss otherwise.
func sidedResult(b *position.Board, winner node.Side) node.TBResult {
	if b.ActiveSide() == winner {
		return node.TBWin
	}
	return node.TBLoss
}
