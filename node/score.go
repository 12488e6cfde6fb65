package node

import "math"

// These constants reproduce lc0's value<->centipawn conversion exactly; the
// UCI output's "cp" field depends on them matching bit for bit.
const (
	cpScale = 290.680623072
	cpSlope = 1.548090806
)

// ScoreToCP converts a value in [-1, 1] to a centipawn estimate.
func ScoreToCP(s float64) int {
	return int(math.Round(cpScale * math.Tan(cpSlope*s)))
}

// CpToScore is the inverse of ScoreToCP.
func CpToScore(cp int) float64 {
	return math.Atan(float64(cp)/cpScale) / cpSlope
}

// cpToScore is the unexported spelling used internally wherever the
// reference algorithm calls cpToScore(1) to derive the "almost ±1" epsilon
// used for TB/mate scoring.
func cpToScore(cp int) float64 {
	return CpToScore(cp)
}
