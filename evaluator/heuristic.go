package evaluator

import (
	"math/bits"

	"github.com/nnsearch-go/mctsnode/node"
	"github.com/nnsearch-go/mctsnode/position"
)

// pieceValues are the standard centipawn values used throughout the pack's
// chess engines (e.g. Oliverans-GooseEngine's SeePieceValue table), here
// feeding a material-only static evaluation standing in for a real value
// network (wiring an actual NN is out of scope; see spec §1).
var pieceValues = struct{ pawn, knight, bishop, rook, queen int }{
	pawn: 100, knight: 320, bishop: 330, rook: 500, queen: 900,
}

// MaterialBackend is a real, if shallow, Backend: a material count for the
// value head, and a capture/check/promotion-weighted heuristic for the
// policy head. Only understands *position.Board; any other Position
// implementation is scored as a dead draw.
type MaterialBackend struct{}

func (MaterialBackend) Evaluate(pos node.Position, moves []node.Move) (float64, []float64) {
	priors := make([]float64, len(moves))
	for i, mv := range moves {
		priors[i] = moveScore(mv)
	}

	b, ok := pos.(*position.Board)
	if !ok {
		return 0, priors
	}

	cp := materialCP(b)
	if pos.ActiveSide() == node.Black {
		cp = -cp
	}
	return node.CpToScore(cp), priors
}

func materialCP(b *position.Board) int {
	w, bl := b.Bitboards()
	count := func(bb uint64) int { return bits.OnesCount64(bb) }

	material := func(knights, bishops, rooks, queens, pawns uint64) int {
		return count(pawns)*pieceValues.pawn +
			count(knights)*pieceValues.knight +
			count(bishops)*pieceValues.bishop +
			count(rooks)*pieceValues.rook +
			count(queens)*pieceValues.queen
	}

	return material(w.Knights, w.Bishops, w.Rooks, w.Queens, w.Pawns) -
		material(bl.Knights, bl.Bishops, bl.Rooks, bl.Queens, bl.Pawns)
}

// moveScore is an unnormalized prior weight favoring noisy moves, matching
// the node package's own "noisy" classification (capture/check/promotion).
func moveScore(mv node.Move) float64 {
	score := 1.0
	if mv.IsCapture() {
		score += 1.5
	}
	if mv.IsCheck() {
		score += 1.0
	}
	if mv.IsPromotion() {
		score += 2.0
	}
	return score
}
