// Package evaluator supplies the value/policy backend the search core
// needs to score a leaf (spec §4.8): one value in [-1, 1] from the
// perspective of the side to move, and one prior per legal move.
package evaluator

import (
	"math"

	"github.com/nnsearch-go/mctsnode/node"
)

// Backend is the pluggable scoring seam a real neural network would sit
// behind. moves is given in the same order the leaf's potentials were
// generated in; priors must be the same length and need not already sum to
// one (Evaluate normalizes them).
type Backend interface {
	Evaluate(pos node.Position, moves []node.Move) (value float64, priors []float64)
}

// Evaluator scores a batch of expanded, non-exact leaves: for each, it
// calls the backend, writes RawQValue and every potential's PValue, then
// calls SetQValueAndPropagate. Leaves already flagged IsExact must be
// filtered out by the caller (the search loop's own tablebase/terminal
// leaves already carry a meaningful raw value without a backend).
type Evaluator interface {
	Evaluate(leaves []*node.Node)
}

// scoreLeaf runs one leaf through a backend and commits the result; every
// BatchEvaluator worker scores its leaves through it.
func scoreLeaf(backend Backend, leaf *node.Node) {
	potentials := leaf.Potentials()
	moves := make([]node.Move, len(potentials))
	for i, p := range potentials {
		moves[i] = p.Move()
	}

	value, priors := backend.Evaluate(leaf.Game(), moves)
	if len(priors) != len(potentials) {
		panic("evaluator: backend returned a prior count that doesn't match the potential count")
	}

	normalized := softmax(priors)
	for i, p := range potentials {
		p.SetPValue(normalized[i])
	}

	leaf.SetRawQValue(value)
	leaf.SetQValueAndPropagate()
}

func softmax(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	peak := xs[0]
	for _, x := range xs[1:] {
		if x > peak {
			peak = x
		}
	}
	out := make([]float64, len(xs))
	var sum float64
	for i, x := range xs {
		e := math.Exp(x - peak)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		uniform := 1.0 / float64(len(xs))
		for i := range out {
			out[i] = uniform
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
