package node

// Candidate unifies a materialized Node and an unexpanded Potential under
// one polymorphic score interface, per the "tagged variant, not
// inheritance" design note: exactly one of node or potential is non-nil,
// and every method dispatches on which.
type Candidate struct {
	node      *Node
	parent    *Node // owning node, only meaningful when potential != nil
	potential *Potential
}

func candidateFromNode(n *Node) Candidate {
	return Candidate{node: n}
}

func candidateFromPotential(parent *Node, p *Potential) Candidate {
	return Candidate{parent: parent, potential: p}
}

func (c Candidate) IsPotential() bool {
	return c.potential != nil
}

func (c Candidate) IsNull() bool {
	return c.node == nil && c.potential == nil
}

func (c Candidate) Equal(o Candidate) bool {
	return c.node == o.node && c.parent == o.parent && c.potential == o.potential
}

func (c Candidate) uCoeff() float64 {
	if c.IsPotential() {
		return c.parent.UCoeff()
	}
	return c.node.parent.UCoeff()
}

func (c Candidate) pValue() float64 {
	if c.IsPotential() {
		return c.potential.PValue()
	}
	return c.node.PValue()
}

func (c Candidate) qValue() float64 {
	if c.IsPotential() {
		if c.parent.IsRoot() {
			return 1.0
		}
		return c.parent.qValueDefault()
	}
	return c.node.QValue()
}

func (c Candidate) uValue() float64 {
	if c.IsPotential() {
		return c.uCoeff() * c.potential.PValue()
	}
	return c.node.UValue()
}

func (c Candidate) weightedExplorationScore() float64 {
	if c.IsPotential() {
		return c.qValue() + c.uValue()
	}
	return c.node.WeightedExplorationScore()
}

// materialize returns the real Node behind this candidate, generating a
// child from the potential if necessary.
func (c Candidate) materialize() (n *Node, created bool) {
	if c.IsPotential() {
		return c.parent.generateChild(c.potential), true
	}
	return c.node, false
}

func (c Candidate) String() string {
	switch {
	case c.IsNull():
		return "<null>"
	case c.IsPotential():
		return c.potential.String()
	default:
		return c.node.game.LastMove().String()
	}
}
