package position

import chess "github.com/IlikeChooros/dragontoothmg"

// Move adapts a dragontoothmg move to node.Move, precomputing the
// capture/check/promotion flags at generation time the way
// chessmcts.UcbGameOps precomputes terminality right after Make/Undo.
type Move struct {
	raw       chess.Move
	capture   bool
	check     bool
	promotion bool
}

func (m Move) String() string    { return m.raw.String() }
func (m Move) IsCapture() bool   { return m.capture }
func (m Move) IsCheck() bool     { return m.check }
func (m Move) IsPromotion() bool { return m.promotion }

// Raw returns the underlying dragontoothmg move, for callers (evaluator
// input encoding, UCI output) that need the library's own representation.
func (m Move) Raw() chess.Move { return m.raw }
