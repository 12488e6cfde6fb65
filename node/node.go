package node

import (
	"math"
	"sync"
	"sync/atomic"
)

const (
	// maxDepth bounds the mate-distance scoring formula; shallower mates
	// score strictly higher than deeper ones.
	maxDepth         = 1000
	mateDistanceStep = 1e-4

	// previousMoveCount caps the compact history window fed to NN input
	// planes.
	previousMoveCount = 11
)

// Node is a search-tree vertex: a chess position reached by one path from
// the root, its running statistics, and links to materialized children and
// unexpanded potentials.
//
// Concurrency: visited/virtualLoss/policySum/isExact/isTB/scoringOrScored
// are lock-free atomics so many workers can read and update them during
// concurrent descents. qValue, rawQValue, pValue and the cached uCoeff are
// guarded by mu, since back-propagation performs a read-modify-write mean
// update that must not interleave with a concurrent write from another
// evaluator goroutine finishing a sibling subtree. children/potentials are
// mutated only under mu, by whichever goroutine materializes a potential
// or creates a child.
type Node struct {
	mu sync.Mutex

	game       Position
	parent     *Node
	children   []*Node
	potentials []*Potential

	settings *Settings

	visited     atomic.Int32
	virtualLoss atomic.Int32

	// policySumBits stores the running sum of visited children's pValue,
	// fixed-point encoded at 1e6 precision, following the same
	// atomic-integer-as-float trick the teacher's stats bookkeeping uses.
	policySumBits atomic.Uint64

	qValue    optFloat
	rawQValue optFloat
	pValue    optFloat
	uCoeffVal optFloat

	isExact         atomic.Bool
	isTB            atomic.Bool
	scoringOrScored atomic.Bool
}

// New constructs a node reached by applying some move to game, arriving
// under parent (nil for the root). If settings is nil, it inherits the
// parent's settings, or falls back to DefaultSettings for a fresh root.
func New(parent *Node, game Position, settings *Settings) *Node {
	if settings == nil {
		if parent != nil {
			settings = parent.settings
		} else {
			settings = DefaultSettings()
		}
	}
	return &Node{
		game:     game,
		parent:   parent,
		settings: settings,
	}
}

func (n *Node) IsRoot() bool {
	return n.parent == nil
}

func (n *Node) Parent() *Node {
	return n.parent
}

// Root walks parent links to the tree root.
func (n *Node) Root() *Node {
	cur := n
	for !cur.IsRoot() {
		cur = cur.parent
	}
	return cur
}

// SetAsRoot removes n from its former parent's children and drops the
// parent link. The caller is responsible for releasing the discarded
// former root and siblings.
func (n *Node) SetAsRoot() {
	if n.parent != nil {
		p := n.parent
		p.mu.Lock()
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
	}
	n.parent = nil
}

// PreviousMoves walks ancestors and returns their positions, oldest first,
// newest (the immediate parent) last. Unless full is set, history is
// limited to the most recent previousMoveCount positions, matching the
// compact NN input-plane window.
func (n *Node) PreviousMoves(full bool) []Position {
	var result []Position
	cur := n.parent
	for cur != nil && (full || len(result) < previousMoveCount) {
		result = append([]Position{cur.game}, result...)
		cur = cur.parent
	}
	return result
}

func (n *Node) IsFirstChild() bool {
	if n.IsRoot() {
		return false
	}
	p := n.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.children) > 0 && p.children[0] == n
}

func (n *Node) IsSecondChild() bool {
	if n.IsRoot() {
		return false
	}
	p := n.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.children) < 2 {
		return false
	}
	isFirst := p.children[0] == n
	return !isFirst && (p.children[0] == n || p.children[1] == n)
}

// Depth returns the distance of n from the tree root.
func (n *Node) Depth() int {
	d := 0
	cur := n
	for !cur.IsRoot() {
		d++
		cur = cur.parent
	}
	return d
}

// TreeDepth returns the maximum depth reached by any descendant of n.
func (n *Node) TreeDepth() int {
	n.mu.Lock()
	children := append([]*Node(nil), n.children...)
	n.mu.Unlock()

	deepest := n.Depth()
	for _, c := range children {
		if d := c.TreeDepth(); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func (n *Node) IsNoisy() bool {
	mv := n.game.LastMove()
	if mv == nil {
		return false
	}
	return mv.IsCapture() || mv.IsCheck() || mv.IsPromotion()
}

func (n *Node) HasNoisyChildren() bool {
	n.mu.Lock()
	children := append([]*Node(nil), n.children...)
	n.mu.Unlock()

	for _, c := range children {
		if c.IsNoisy() {
			return true
		}
	}
	return false
}

// Repetitions counts prior ancestor positions equal to this one, stopping
// at an irreversible move (detected via half-move clock reset) or upon
// reaching a count of 2. The result is memoized on the position handle.
func (n *Node) Repetitions() int {
	if r := n.game.Repetitions(); r != -1 {
		return r
	}

	r := 0
	cur := n.parent
	for cur != nil {
		if n.game.IsSamePosition(cur.game) {
			r++
		}
		if r >= 2 {
			break
		}
		if cur.game.HalfMoveClock() == 0 {
			break
		}
		cur = cur.parent
	}

	n.game.SetRepetitions(r)
	return r
}

func (n *Node) IsThreeFold() bool {
	return n.Repetitions() >= 2
}

func (n *Node) Game() Position {
	return n.game
}

func (n *Node) Children() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Node(nil), n.children...)
}

func (n *Node) Potentials() []*Potential {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*Potential(nil), n.potentials...)
}

func (n *Node) HasChildren() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children) > 0
}

func (n *Node) HasPotentials() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.potentials) > 0
}

func (n *Node) isNotExtendable() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children) == 0 && len(n.potentials) == 0
}

func (n *Node) IsExact() bool { return n.isExact.Load() }
func (n *Node) IsTB() bool    { return n.isTB.Load() }

func (n *Node) Visited() int32     { return n.visited.Load() }
func (n *Node) VirtualLoss() int32 { return n.virtualLoss.Load() }

// isAlreadyPlayingOut reads virtualLoss without a fence against the
// selection scan; the race is accepted per the spec's own "robust to small
// inaccuracies" guidance rather than taking a snapshot.
func (n *Node) isAlreadyPlayingOut() bool {
	return n.virtualLoss.Load() > 0
}

// claimScoring atomically claims this node for scoring; it returns true
// only for the first caller, mirroring the reference engine's
// setScoringOrScored (there negated at the call site — here expressed
// directly as "did I just win the claim").
func (n *Node) claimScoring() bool {
	return n.scoringOrScored.CompareAndSwap(false, true)
}

func (n *Node) QValue() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.qValue.ValueOr(0)
}

func (n *Node) HasQValue() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.qValue.Valid()
}

func (n *Node) RawQValue() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rawQValue.ValueOr(0)
}

func (n *Node) HasRawQValue() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.rawQValue.Valid()
}

func (n *Node) PValue() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pValue.ValueOr(0)
}

func (n *Node) HasPValue() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pValue.Valid()
}

func (n *Node) setPValue(v float64) {
	n.mu.Lock()
	n.pValue.Set(v)
	n.mu.Unlock()
}

// PolicySum returns the running sum of visited children's priors.
func (n *Node) PolicySum() float64 {
	return float64(n.policySumBits.Load()) / 1e6
}

func (n *Node) addPolicySum(v float64) {
	n.policySumBits.Add(uint64(v * 1e6))
}

// UCoeff returns kpuct*sqrt(N) for this node's children, caching the value
// until the next visit invalidates it.
func (n *Node) UCoeff() float64 {
	n.mu.Lock()
	if n.uCoeffVal.Valid() {
		v := n.uCoeffVal.Value()
		n.mu.Unlock()
		return v
	}
	n.mu.Unlock()

	v := n.settings.Kpuct * math.Sqrt(float64(n.visited.Load()))

	n.mu.Lock()
	n.uCoeffVal.Set(v)
	n.mu.Unlock()
	return v
}

// qValueDefault is the first-play-urgency estimate used for an unvisited
// child elsewhere in the tree: the parent's Q, reduced in proportion to
// sqrt(policySum).
func (n *Node) qValueDefault() float64 {
	q := n.QValue()
	reduction := n.settings.FpuReduction * math.Sqrt(n.PolicySum())
	return q - reduction
}

// UValue is the exploration term for a materialized, non-root node:
// uCoeff(parent) * pValue / (1 + visited + virtualLoss).
func (n *Node) UValue() float64 {
	if n.parent == nil {
		return 0
	}
	uCoeff := n.parent.UCoeff()
	denom := 1 + float64(n.visited.Load()) + float64(n.virtualLoss.Load())
	return uCoeff * n.PValue() / denom
}

func (n *Node) WeightedExplorationScore() float64 {
	return n.QValue() + n.UValue()
}
