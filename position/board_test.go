package position

import (
	"testing"

	"github.com/nnsearch-go/mctsnode/node"
)

func TestStartingPositionLegalMoveCount(t *testing.T) {
	b := NewGame()
	count := 0
	b.PseudoLegalMoves(func(mv node.Move) { count++ })
	if count != 20 {
		t.Fatalf("expected 20 legal moves from the starting position, got %d", count)
	}
}

func TestStartingPositionNotChecked(t *testing.T) {
	b := NewGame()
	if b.IsChecked(node.White) || b.IsChecked(node.Black) {
		t.Fatal("neither side should be in check at the starting position")
	}
	if b.ActiveSide() != node.White {
		t.Fatal("white moves first")
	}
}

func TestApplyMoveRejectsForeignMove(t *testing.T) {
	b := NewGame()
	foreign := Move{raw: 0xffffffff}
	if b.ApplyMove(foreign) {
		t.Fatal("applying a move absent from the legal move list should fail")
	}
}

func TestApplyMoveAdvancesHalfMoveClockOnQuietMoves(t *testing.T) {
	b := NewGame()
	var knightMove node.Move
	b.PseudoLegalMoves(func(mv node.Move) {
		m := mv.(Move)
		if knightMove == nil && !m.IsCapture() && m.raw.String() == "g1f3" {
			knightMove = mv
		}
	})
	if knightMove == nil {
		t.Fatal("expected to find the g1f3 knight development move")
	}
	if !b.ApplyMove(knightMove) {
		t.Fatal("g1f3 should be legal from the starting position")
	}
	if b.HalfMoveClock() != 1 {
		t.Fatalf("a quiet knight move should advance the half-move clock to 1, got %d", b.HalfMoveClock())
	}
	if b.ActiveSide() != node.Black {
		t.Fatal("side to move should flip after a move")
	}
}

func TestApplyMoveResetsHalfMoveClockOnPawnPush(t *testing.T) {
	b := NewGame()
	var pawnMove node.Move
	b.PseudoLegalMoves(func(mv node.Move) {
		m := mv.(Move)
		if pawnMove == nil && m.raw.String() == "e2e4" {
			pawnMove = mv
		}
	})
	if pawnMove == nil {
		t.Fatal("expected to find the e2e4 pawn push")
	}
	if !b.ApplyMove(pawnMove) {
		t.Fatal("e2e4 should be legal from the starting position")
	}
	if b.HalfMoveClock() != 0 {
		t.Fatalf("a pawn push must reset the half-move clock to 0, got %d", b.HalfMoveClock())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := NewGame()
	clone := b.Clone().(*Board)

	var pawnMove node.Move
	clone.PseudoLegalMoves(func(mv node.Move) {
		m := mv.(Move)
		if pawnMove == nil && m.raw.String() == "e2e4" {
			pawnMove = mv
		}
	})
	if !clone.ApplyMove(pawnMove) {
		t.Fatal("e2e4 should be legal on the clone")
	}

	if b.ActiveSide() != node.White {
		t.Fatal("mutating the clone must not affect the original board")
	}
	if clone.ActiveSide() != node.Black {
		t.Fatal("the clone should reflect its own move")
	}
}

func TestIsSamePositionIgnoresMoveCounters(t *testing.T) {
	a := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	c := FromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 7 42")
	if !a.IsSamePosition(c) {
		t.Fatal("positions differing only in half-move/full-move counters must compare equal")
	}
}

func TestIsDeadPositionBareKings(t *testing.T) {
	b := FromFEN("8/8/4k3/8/8/4K3/8/8 w - - 0 1")
	if !b.IsDeadPosition() {
		t.Fatal("lone kings should be a dead position")
	}
}

func TestIsDeadPositionFalseWithRooks(t *testing.T) {
	b := NewGame()
	if b.IsDeadPosition() {
		t.Fatal("the starting position is not a dead position")
	}
}

func TestMoveClassificationFlagsPromotion(t *testing.T) {
	// White pawn on e7 can push to e8 and promote, capturing nothing.
	b := FromFEN("4k3/4P3/8/8/8/8/8/4K3 w - - 0 1")
	foundPromotion := false
	b.PseudoLegalMoves(func(mv node.Move) {
		if mv.IsPromotion() {
			foundPromotion = true
		}
	})
	if !foundPromotion {
		t.Fatal("expected at least one promotion move from e7")
	}
}
