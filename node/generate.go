package node

// GeneratePotentials expands a leaf node with no potentials and no children.
// Order of checks: forced draw by rule, tablebase probe (skipped at the
// root), pseudo-legal move enumeration, then a mate/stalemate fallback if
// enumeration produced nothing.
func (n *Node) GeneratePotentials(tb Tablebase) {
	if n.HasPotentials() {
		return
	}

	if n.game.HalfMoveClock() >= 100 || n.game.IsDeadPosition() || n.IsThreeFold() {
		n.setRawQValue(0)
		n.isExact.Store(true)
		return
	}

	if !n.IsRoot() && tb != nil {
		switch tb.Probe(n.game) {
		case TBWin:
			n.setRawQValue(1 - cpToScore(1))
			n.isExact.Store(true)
			n.isTB.Store(true)
			return
		case TBLoss:
			n.setRawQValue(-1 + cpToScore(1))
			n.isExact.Store(true)
			n.isTB.Store(true)
			return
		case TBDraw:
			n.setRawQValue(0)
			n.isExact.Store(true)
			n.isTB.Store(true)
			return
		case TBNotFound:
		}
	}

	n.game.PseudoLegalMoves(n.generatePotential)

	if !n.HasPotentials() {
		if n.game.IsChecked(n.game.ActiveSide()) {
			n.game.SetCheckMate(true)
			v := 1 + float64(maxDepth)*mateDistanceStep - float64(n.Depth())*mateDistanceStep
			n.setRawQValue(v)
		} else {
			n.game.SetStaleMate(true)
			n.setRawQValue(0)
		}
		n.isExact.Store(true)
	}
}

// generatePotential applies mv to a clone of this node's position; illegal
// moves (those that leave the mover in check, or that the position adapter
// itself rejects) are silently dropped rather than ever becoming a
// Potential.
func (n *Node) generatePotential(mv Move) {
	g := n.game.Clone()
	if !g.ApplyMove(mv) {
		return
	}
	if g.IsChecked(n.game.ActiveSide()) {
		return
	}

	n.mu.Lock()
	n.potentials = append(n.potentials, newPotential(mv))
	n.mu.Unlock()
}

// generateChild materializes a potential into a full Node: applies its
// move, transfers its prior, and removes it from the potentials list.
func (n *Node) generateChild(p *Potential) *Node {
	g := n.game.Clone()
	if !g.ApplyMove(p.Move()) {
		invariantViolation("generateChild", "a previously validated potential's move is now illegal")
		g = n.game.Clone()
	}

	child := New(n, g, n.settings)
	child.setPValue(p.PValue())

	n.mu.Lock()
	n.children = append(n.children, child)
	for i, pp := range n.potentials {
		if pp == p {
			n.potentials = append(n.potentials[:i], n.potentials[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	return child
}

// CheckAndGenerateDTZ probes the distance-to-zero tablebase at the root.
// On success it materializes a single real child for the recommended move,
// sets its value from the (perspective-inverted) probe result, and
// back-propagates it. Must only be called on the root.
func (n *Node) CheckAndGenerateDTZ(tb Tablebase) bool {
	if !n.IsRoot() {
		invariantViolation("CheckAndGenerateDTZ", "called on a non-root node")
		return false
	}

	result, mv, _, ok := tb.ProbeDTZ(n.game)
	if !ok {
		return false
	}

	g := n.game.Clone()
	if !g.ApplyMove(mv) {
		return false
	}
	if g.IsChecked(n.game.ActiveSide()) {
		return false
	}
	if g.IsChecked(g.ActiveSide()) {
		g.SetCheckMate(true)
	}

	child := New(n, g, n.settings)
	child.setPValue(1.0)

	// Inverted: the probe reports the result from the parent's perspective.
	switch result {
	case TBWin:
		child.setRawQValue(-1 + cpToScore(1))
	case TBLoss:
		child.setRawQValue(1 - cpToScore(1))
	case TBDraw:
		child.setRawQValue(0)
	default:
		return false
	}
	child.isExact.Store(true)
	child.isTB.Store(true)

	if !n.HasQValue() {
		n.setRawQValue(0)
		n.setQValueFromRaw()
		n.visited.Add(1)
	}

	child.SetQValueAndPropagate()

	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()

	return true
}
