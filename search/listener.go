package search

import "github.com/nnsearch-go/mctsnode/node"

// TreeStats is a snapshot of the running search, handed to listener
// callbacks. Adapted from the teacher's ListenerTreeStats[T] — generalized
// away from the generic MoveLike parameter to the concrete node.Move the
// node package already settled on, and trimmed from a MultiPv slice of
// lines down to the single principal variation this package's node.Node
// exposes.
type TreeStats struct {
	MaxDepth   int
	Cycles     int
	TimeMs     int
	Cps        uint32
	Size       uint32
	BestMove   node.Move
	Pv         []node.Move
	Eval       float64
	Terminal   bool
	StopReason StopReason
}

func toTreeStats(s *Searcher) TreeStats {
	pv := s.Root.PrincipalVariation()
	var bestMove node.Move
	if len(pv) > 0 {
		bestMove = pv[0]
	}

	return TreeStats{
		MaxDepth:   s.MaxDepth(),
		Cycles:     s.Cycles(),
		TimeMs:     int(s.limiter.Elapsed()),
		Cps:        s.Cps(),
		Size:       s.Size(),
		BestMove:   bestMove,
		Pv:         pv,
		Eval:       s.Root.QValue(),
		Terminal:   s.Root.IsExact(),
		StopReason: s.limiter.StopReason(),
	}
}

// ListenerFunc receives a TreeStats snapshot.
type ListenerFunc func(TreeStats)

// StatsListener is the UCI-info-style callback set a caller attaches to a
// Searcher before starting a search. Ported field-for-field from the
// teacher's StatsListener[T] in pkg/mcts/stats_listener.go.
type StatsListener struct {
	// onDepth is called, from the main search goroutine only, whenever that
	// goroutine raises the tree's max depth.
	onDepth ListenerFunc

	// onCycle is called every nCycles backpropagation cycles; expensive
	// (it walks the PV), so reserve it for debugging.
	onCycle ListenerFunc
	nCycles int

	// onStop is called once, after the search has stopped for any reason.
	onStop ListenerFunc
}

func NewStatsListener() *StatsListener {
	return &StatsListener{nCycles: 1}
}

func (l *StatsListener) OnDepth(f ListenerFunc) *StatsListener {
	l.onDepth = f
	return l
}

func (l *StatsListener) OnCycle(f ListenerFunc) *StatsListener {
	l.onCycle = f
	return l
}

func (l *StatsListener) SetCycleInterval(n int) *StatsListener {
	if n < 1 {
		n = 1
	}
	l.nCycles = n
	return l
}

func (l *StatsListener) OnStop(f ListenerFunc) *StatsListener {
	l.onStop = f
	return l
}

func (l *StatsListener) invoke(f ListenerFunc, s *Searcher) {
	if f != nil {
		f(toTreeStats(s))
	}
}
