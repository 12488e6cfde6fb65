package node

import (
	"math"
	"testing"
)

// dummyMove and dummyPosition form a minimal Position harness for testing
// the core machinery, in the spirit of the teacher's DummyOps.

type dummyMove struct {
	name      string
	capture   bool
	check     bool
	promotion bool
}

func (m dummyMove) String() string     { return m.name }
func (m dummyMove) IsCapture() bool    { return m.capture }
func (m dummyMove) IsCheck() bool      { return m.check }
func (m dummyMove) IsPromotion() bool  { return m.promotion }

type dummyPosition struct {
	label         string
	side          Side
	halfMoveClock int
	repetitions   int
	dead          bool
	checkMate     bool
	staleMate     bool
	lastMove      Move
	moves         []Move
	inCheck       map[Side]bool
	next          map[string]*dummyPosition
}

func newDummyPosition(label string, side Side) *dummyPosition {
	return &dummyPosition{
		label:       label,
		side:        side,
		repetitions: -1,
		inCheck:     map[Side]bool{},
		next:        map[string]*dummyPosition{},
	}
}

func (p *dummyPosition) Clone() Position {
	cp := *p
	return &cp
}

func (p *dummyPosition) ApplyMove(mv Move) bool {
	nxt, ok := p.next[mv.String()]
	if !ok {
		return false
	}
	*p = *nxt
	return true
}

func (p *dummyPosition) PseudoLegalMoves(visit func(Move)) {
	for _, mv := range p.moves {
		visit(mv)
	}
}

func (p *dummyPosition) IsChecked(side Side) bool   { return p.inCheck[side] }
func (p *dummyPosition) IsDeadPosition() bool       { return p.dead }
func (p *dummyPosition) HalfMoveClock() int         { return p.halfMoveClock }
func (p *dummyPosition) LastMove() Move             { return p.lastMove }
func (p *dummyPosition) ActiveSide() Side           { return p.side }
func (p *dummyPosition) SetCheckMate(v bool)        { p.checkMate = v }
func (p *dummyPosition) SetStaleMate(v bool)        { p.staleMate = v }
func (p *dummyPosition) IsCheckMate() bool          { return p.checkMate }
func (p *dummyPosition) IsStaleMate() bool          { return p.staleMate }
func (p *dummyPosition) SetRepetitions(n int)       { p.repetitions = n }
func (p *dummyPosition) Repetitions() int           { return p.repetitions }

func (p *dummyPosition) IsSamePosition(other Position) bool {
	o, ok := other.(*dummyPosition)
	return ok && o.label == p.label
}

func testSettings() *Settings {
	return &Settings{Kpuct: 1.5, TryPlayoutLimit: 4, VldMax: 32, FpuReduction: 0.35}
}

// --- Scenario 1: immediate mate ---

func TestScenarioImmediateMate(t *testing.T) {
	root := newDummyPosition("root", White)
	mateChild := newDummyPosition("mated", Black)
	mateChild.inCheck[Black] = true // no replies, and in check: checkmate
	mv := dummyMove{name: "Qh5-f7", check: true}
	root.next[mv.name] = mateChild
	root.moves = []Move{mv}

	n := New(nil, root, testSettings())
	n.GeneratePotentials(nil)

	potentials := n.Potentials()
	if len(potentials) != 1 {
		t.Fatalf("expected exactly one legal move, got %d", len(potentials))
	}

	potentials[0].SetPValue(1.0)
	child := n.generateChild(potentials[0])
	child.GeneratePotentials(nil)

	if !child.IsExact() {
		t.Fatal("mated child should be exact")
	}
	if !child.Game().IsCheckMate() {
		t.Fatal("mated child should be flagged checkmate")
	}
	if child.RawQValue() <= 1.0 {
		t.Fatalf("mate score should exceed 1.0 (shallow-mate bias), got %v", child.RawQValue())
	}

	// The root must carry a qValue before a child can back-propagate into it.
	n.SetRawQValue(0)
	n.SetQValueAndPropagate()
	child.SetQValueAndPropagate()

	best := n.bestChildByScore()
	if best != child {
		t.Fatal("root's best-scoring child should be the mating move")
	}
}

// --- Scenario 2: stalemate ---

func TestScenarioStalemate(t *testing.T) {
	pos := newDummyPosition("stuck", Black)
	// no legal moves, not in check
	n := New(nil, pos, testSettings())
	n.GeneratePotentials(nil)

	if !n.IsExact() {
		t.Fatal("stalemate node should be exact")
	}
	if n.Game().IsCheckMate() {
		t.Fatal("stalemate node must not be flagged checkmate")
	}
	if !n.Game().IsStaleMate() {
		t.Fatal("stalemate node must be flagged stalemate")
	}
	if n.RawQValue() != 0 {
		t.Fatalf("stalemate rawQValue should be 0, got %v", n.RawQValue())
	}
}

// --- Scenario 3: threefold repetition ---

func TestScenarioThreefold(t *testing.T) {
	settings := testSettings()

	p0 := newDummyPosition("A", White)
	p0.halfMoveClock = 10
	n0 := New(nil, p0, settings)

	p1 := newDummyPosition("B", Black)
	p1.halfMoveClock = 11
	n1 := New(n0, p1, settings)

	p2 := newDummyPosition("A", White)
	p2.halfMoveClock = 12
	n2 := New(n1, p2, settings)

	p3 := newDummyPosition("B", Black)
	p3.halfMoveClock = 13
	n3 := New(n2, p3, settings)

	p4 := newDummyPosition("A", White)
	p4.halfMoveClock = 14
	n4 := New(n3, p4, settings)

	if !n4.IsThreeFold() {
		t.Fatal("expected threefold repetition to be detected")
	}

	n4.GeneratePotentials(nil)
	if !n4.IsExact() {
		t.Fatal("threefold node should be exact")
	}
	if n4.RawQValue() != 0 {
		t.Fatalf("threefold rawQValue should be 0, got %v", n4.RawQValue())
	}
}

// --- Scenario 4: tablebase win ---

type stubWinTB struct{}

func (stubWinTB) Probe(pos Position) TBResult { return TBWin }
func (stubWinTB) ProbeDTZ(pos Position) (TBResult, Move, int, bool) {
	return TBNotFound, nil, 0, false
}

func TestScenarioTablebaseWin(t *testing.T) {
	settings := testSettings()
	rootPos := newDummyPosition("root", White)
	root := New(nil, rootPos, settings)

	childPos := newDummyPosition("tb-position", Black)
	n := New(root, childPos, settings)

	n.GeneratePotentials(stubWinTB{})

	if !n.IsExact() || !n.IsTB() {
		t.Fatal("TB win node should be exact and TB-flagged")
	}
	want := 1 - cpToScore(1)
	if math.Abs(n.RawQValue()-want) > 1e-9 {
		t.Fatalf("TB win rawQValue = %v, want %v", n.RawQValue(), want)
	}
}

// --- Scenario 4b: positional helpers and noisy children ---

func TestNodePositionalHelpers(t *testing.T) {
	settings := testSettings()
	rootPos := newDummyPosition("root", White)
	quiet := dummyMove{name: "Ng1-f3"}
	noisy := dummyMove{name: "Bxf7", capture: true}
	rootPos.moves = []Move{quiet, noisy}

	quietPos := newDummyPosition("quiet", Black)
	quietPos.lastMove = quiet
	noisyPos := newDummyPosition("noisy", Black)
	noisyPos.lastMove = noisy
	rootPos.next[quiet.name] = quietPos
	rootPos.next[noisy.name] = noisyPos

	root := New(nil, rootPos, settings)
	if root.IsFirstChild() || root.IsSecondChild() {
		t.Fatal("root has no parent, so it is neither a first nor second child")
	}
	if root.IsNoisy() {
		t.Fatal("root has no last move yet, so it cannot be noisy")
	}
	if root.HasNoisyChildren() {
		t.Fatal("a childless root should not report noisy children")
	}

	root.GeneratePotentials(nil)
	potentials := root.Potentials()
	if len(potentials) != 2 {
		t.Fatalf("expected two legal moves, got %d", len(potentials))
	}

	first := root.generateChild(potentials[0])
	second := root.generateChild(potentials[1])

	if !first.IsFirstChild() || first.IsSecondChild() {
		t.Fatal("the first materialized child should report IsFirstChild only")
	}
	if second.IsFirstChild() || !second.IsSecondChild() {
		t.Fatal("the second materialized child should report IsSecondChild only")
	}
	if first.IsNoisy() {
		t.Fatal("a quiet move should not be noisy")
	}
	if !second.IsNoisy() {
		t.Fatal("a capturing move should be noisy")
	}
	if !root.HasNoisyChildren() {
		t.Fatal("root should report noisy children once a capturing child exists")
	}
}

// --- Scenario 5: VLD monotonicity ---

func TestScenarioVLDMonotonicity(t *testing.T) {
	const wec = 0.5
	const q = 0.0
	const uCoeff = 1.0
	const vldMax = 64

	prev := 0
	for _, p := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 1.2, 1.6, 2.0} {
		n := virtualLossDistance(wec, q, p, uCoeff, vldMax)
		if n < 1 {
			t.Fatalf("virtualLossDistance must be >= 1, got %d for p=%v", n, p)
		}
		if n < prev {
			t.Fatalf("virtualLossDistance should be monotonically non-decreasing in p; got %d after %d at p=%v", n, prev, p)
		}
		prev = n
	}
}

func TestVirtualLossDistanceEdgeCases(t *testing.T) {
	if n := virtualLossDistance(0.5, 0.5, 0.2, 1.0, 32); n != 1 {
		t.Fatalf("wec == q should return 1, got %d", n)
	}
	if n := virtualLossDistance(0.5, 0.9, 0.2, 1.0, 32); n != 32 {
		t.Fatalf("q > wec should return vldMax, got %d", n)
	}
}

// --- Scenario 6: collision ---

func TestScenarioCollision(t *testing.T) {
	// A single fresh node with no children/potentials yet: the only path
	// available to a descent is the node itself.
	settings := &Settings{Kpuct: 1.5, TryPlayoutLimit: 1, VldMax: 4, FpuReduction: 0.35}
	root := New(nil, newDummyPosition("root", White), settings)

	first := root.Playout()
	if first == nil || first.Leaf != root {
		t.Fatalf("first playout should claim the root as its leaf, got %+v", first)
	}
	if root.VirtualLoss() != 1 {
		t.Fatalf("expected virtualLoss==1 after first claim, got %d", root.VirtualLoss())
	}

	// The node is still unscored and unextendable (no children/potentials),
	// so a second descent must collide, charge virtual loss, and exhaust
	// its single-try budget.
	second := root.Playout()
	if second != nil {
		t.Fatalf("second playout should collide and find no leaf, got %+v", second)
	}
}

// --- Round trip: cpToScore(scoreToCP(s)) ~= s ---

func TestScoreCPRoundTrip(t *testing.T) {
	for _, s := range []float64{-0.9, -0.5, -0.1, 0, 0.1, 0.5, 0.9} {
		cp := ScoreToCP(s)
		back := CpToScore(cp)
		if math.Abs(back-s) > 1e-3 {
			t.Fatalf("round trip failed for s=%v: cp=%d back=%v", s, cp, back)
		}
	}
}

// --- Quantified invariants ---

func TestInvariantMeanUpdate(t *testing.T) {
	settings := testSettings()
	rootPos := newDummyPosition("root", White)
	root := New(nil, rootPos, settings)
	root.SetRawQValue(0.2)
	root.SetQValueAndPropagate()

	if root.QValue() != 0.2 {
		t.Fatalf("expected qValue 0.2 after first propagate, got %v", root.QValue())
	}
	if root.Visited() != 1 {
		t.Fatalf("expected visited==1, got %d", root.Visited())
	}

	child := New(root, newDummyPosition("child", Black), settings)
	child.SetRawQValue(0.6)
	child.SetQValueAndPropagate()

	// leaf keeps its own raw value; parent absorbs the flipped value.
	if child.QValue() != 0.6 {
		t.Fatalf("leaf qValue should equal its raw value, got %v", child.QValue())
	}
	wantParentQ := (1*0.2 + (-0.6)) / 2
	if math.Abs(root.QValue()-wantParentQ) > 1e-9 {
		t.Fatalf("parent mean update incorrect: got %v want %v", root.QValue(), wantParentQ)
	}
	if root.Visited() != 2 {
		t.Fatalf("expected root visited==2 after child propagate, got %d", root.Visited())
	}
	if root.QValue() < -1 || root.QValue() > 1 {
		t.Fatalf("qValue out of range: %v", root.QValue())
	}
}

func TestInvariantVisitedNonNegative(t *testing.T) {
	settings := testSettings()
	root := New(nil, newDummyPosition("root", White), settings)
	if root.Visited() < 0 || root.VirtualLoss() < 0 {
		t.Fatal("visited and virtualLoss must start non-negative")
	}
}

// --- StrictMode: invariant violation panics or falls back ---

func TestStrictModeInvariantPanicsByDefault(t *testing.T) {
	root := New(nil, newDummyPosition("root", White), testSettings())

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected SetQValueAndPropagate on an unscored leaf to panic with StrictMode on")
		}
	}()
	root.SetQValueAndPropagate()
}

func TestStrictModeFalseFallsBackInstead(t *testing.T) {
	StrictMode = false
	defer func() { StrictMode = true }()

	root := New(nil, newDummyPosition("root", White), testSettings())
	root.SetQValueAndPropagate()

	if root.QValue() != 0 {
		t.Fatalf("expected the fallback rawQValue=0 to propagate, got %v", root.QValue())
	}
}
