package position

import chess "github.com/IlikeChooros/dragontoothmg"

// knightAttacks and kingAttacks are precomputed per-square jump masks. The
// library itself only exports sliding-piece attack generators
// (CalculateRookMoveBitboard/CalculateBishopMoveBitboard); these two tables
// fill the same gap Oliverans-GooseEngine's engine/see.go fills with its own
// KnightMasks/KingMoves tables.
var knightAttacks [64]uint64
var kingAttacks [64]uint64

func init() {
	knightDeltas := [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas := [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

	for sq := 0; sq < 64; sq++ {
		file, rank := sq%8, sq/8
		for _, d := range knightDeltas {
			f, r := file+d[0], rank+d[1]
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				knightAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
		for _, d := range kingDeltas {
			f, r := file+d[0], rank+d[1]
			if f >= 0 && f < 8 && r >= 0 && r < 8 {
				kingAttacks[sq] |= 1 << uint(r*8+f)
			}
		}
	}
}

// pawnAttackers returns the squares from which a pawn of side white would
// attack sq.
func pawnAttackers(sq uint8, white bool) uint64 {
	file, rank := int(sq)%8, int(sq)/8
	var bb uint64
	// A pawn attacking sq sits one rank behind it, relative to its own
	// direction of travel.
	srcRank := rank - 1
	if !white {
		srcRank = rank + 1
	}
	if srcRank < 0 || srcRank > 7 {
		return 0
	}
	for _, df := range []int{-1, 1} {
		f := file + df
		if f >= 0 && f < 8 {
			bb |= 1 << uint(srcRank*8+f)
		}
	}
	return bb
}

// isSquareAttacked reports whether sq is attacked by the given side's pieces,
// given the full-board occupancy. Mirrors the attack-detection piece of
// Oliverans-GooseEngine's SEE (engine/see.go's getPiecesAttackingSquare),
// trimmed to a single yes/no query instead of a full attacker bitboard.
func isSquareAttacked(sq uint8, attackers chess.Bitboards, occupancy uint64, attackersAreWhite bool) bool {
	if knightAttacks[sq]&attackers.Knights != 0 {
		return true
	}
	if kingAttacks[sq]&attackers.Kings != 0 {
		return true
	}
	if pawnAttackers(sq, attackersAreWhite)&attackers.Pawns != 0 {
		return true
	}
	if chess.CalculateRookMoveBitboard(sq, occupancy)&(attackers.Rooks|attackers.Queens) != 0 {
		return true
	}
	if chess.CalculateBishopMoveBitboard(sq, occupancy)&(attackers.Bishops|attackers.Queens) != 0 {
		return true
	}
	return false
}
