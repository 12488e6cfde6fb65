package node

// Potential is a lightweight placeholder for a legal move that has received
// a prior probability but has not yet been expanded into a full Node.
type Potential struct {
	move   Move
	pValue optFloat
}

func newPotential(mv Move) *Potential {
	return &Potential{move: mv}
}

func (p *Potential) Move() Move {
	return p.move
}

func (p *Potential) PValue() float64 {
	return p.pValue.ValueOr(0)
}

func (p *Potential) HasPValue() bool {
	return p.pValue.Valid()
}

// SetPValue is called by the policy head after generatePotentials to assign
// the NN's softmax-normalized prior for this move.
func (p *Potential) SetPValue(v float64) {
	p.pValue.Set(v)
}

func (p *Potential) String() string {
	return p.move.String()
}
