package node

import "math"

// fuzzyEqual treats values within 1e-6 as equal, matching the reference
// engine's qFuzzyCompare tolerance for the wec - q == 0 case.
func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// virtualLossDistance computes the smallest number of extra virtual visits
// the current best candidate needs to absorb before the runner-up
// (q, p, uCoeff) would overtake it at score wec. Clamped to [1, vldMax].
func virtualLossDistance(wec, q, p, uCoeff float64, vldMax int) int {
	if fuzzyEqual(wec-q, 0) {
		return 1
	}
	if q >= wec {
		return vldMax
	}
	nf := (q + p*uCoeff - wec) / (wec - q)
	n := int(math.Ceil(nf))
	if n < 1 {
		n = 1
	}
	if n > vldMax {
		n = vldMax
	}
	return n
}

// selectCandidates scans this node's children and potentials once, tracking
// the best and second-best by weightedExplorationScore with insertion order
// as the tie-break (strict > comparisons, matching the reference scan).
func (n *Node) selectCandidates() (first, second Candidate, bestScore float64) {
	n.mu.Lock()
	children := append([]*Node(nil), n.children...)
	potentials := append([]*Potential(nil), n.potentials...)
	n.mu.Unlock()

	haveFirst, haveSecond := false, false
	secondScore := -1.0
	bestScore = -1.0

	consider := func(c Candidate, score float64) {
		if !haveFirst || score > bestScore {
			second, secondScore, haveSecond = first, bestScore, haveFirst
			first, bestScore, haveFirst = c, score, true
		} else if !haveSecond || score > secondScore {
			second, secondScore, haveSecond = c, score, true
		}
	}

	for _, child := range children {
		c := candidateFromNode(child)
		consider(c, c.weightedExplorationScore())
	}
	for _, p := range potentials {
		c := candidateFromPotential(n, p)
		consider(c, c.weightedExplorationScore())
	}

	return first, second, bestScore
}

// PlayoutResult is the outcome of a single descent: the leaf node to score
// (nil if the local playout budget was exhausted), the depth reached, and
// whether a new node was materialized along the way.
type PlayoutResult struct {
	Leaf    *Node
	Depth   int
	Created bool
}

// Playout descends the tree rooted at n, applying virtual loss and the
// virtual-loss-distance optimization, and returns the next leaf to score —
// or nil if the local retry budget (TryPlayoutLimit, VldMax) is exhausted,
// which is a retry hint, not an error.
//
// Expressed as an outer bounded loop with tryPlayoutLimit/vldMax as
// loop-carried counters (per the design note steering away from the
// reference implementation's goto-based retry); the inner descent is a
// plain walk.
func (n *Node) Playout() *PlayoutResult {
	tryPlayoutLimit := n.settings.TryPlayoutLimit
	vldMax := n.settings.VldMax

outer:
	for {
		d := 0
		vld := vldMax
		cur := n
		created := false

		for {
			d++

			if cur.claimScoring() || cur.IsExact() {
				cur.virtualLoss.Add(1)
				return &PlayoutResult{Leaf: cur, Depth: d, Created: created}
			}

			alreadyPlayingOut := cur.isAlreadyPlayingOut()
			increment := int32(1)
			if alreadyPlayingOut {
				increment = int32(vld - 1)
			}
			cur.virtualLoss.Add(increment)

			if alreadyPlayingOut || cur.isNotExtendable() {
				tryPlayoutLimit--
				if tryPlayoutLimit <= 0 {
					return nil
				}

				vldMax -= int(cur.virtualLoss.Load())
				if vldMax <= 0 {
					return nil
				}

				continue outer
			}

			first, second, bestScore := cur.selectCandidates()
			if !second.IsNull() {
				vldNew := virtualLossDistance(bestScore, second.qValue(), second.pValue(), second.uCoeff(), n.settings.VldMax)
				if vld == 0 {
					vld = vldNew
				} else {
					vld = min(vld, vldNew)
				}
			}

			next, wasCreated := first.materialize()
			if wasCreated {
				created = true
			}
			cur = next
		}
	}
}
