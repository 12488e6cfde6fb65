package search

import (
	"encoding/json"
	"math"
	"strings"
)

// Limits bounds one call to Searcher.Search. Unlike the teacher's rollout
// MCTS, this core only ever reports a single principal variation (Node has
// no per-root-child PV table to rank), so there is no MultiPv knob here —
// and unlike a byte-budgeted tree, MaxNodes caps Searcher.Size directly
// rather than going through a per-node-size/byte-size division.
type Limits struct {
	// Depth stops the search once a Playout descent has reached this many
	// plies; it does not shorten an individual descent.
	Depth int
	// MaxNodes caps the number of node.Node instances the tree may hold.
	MaxNodes uint32
	// Cycles caps the number of Playout/backpropagation cycles.
	Cycles uint32
	// Movetime caps wall-clock thinking time, in milliseconds.
	Movetime int
	// Infinite disables every budget above; only Stop() or context
	// cancellation ends the search.
	Infinite bool
	// NThreads is the number of worker goroutines Search spins up.
	NThreads int
}

func (l Limits) String() string {
	var b strings.Builder
	_ = json.NewEncoder(&b).Encode(l)
	return b.String()
}

const (
	DefaultDepthLimit    int    = math.MaxInt
	DefaultNodeLimit     uint32 = math.MaxUint32
	DefaultMovetimeLimit int    = -1
	DefaultCyclesLimit   uint32 = math.MaxUint32
)

func DefaultLimits() *Limits {
	return &Limits{
		Depth:    DefaultDepthLimit,
		MaxNodes: DefaultNodeLimit,
		Cycles:   DefaultCyclesLimit,
		Movetime: DefaultMovetimeLimit,
		Infinite: true,
		NThreads: 1,
	}
}

func (l *Limits) SetDepth(depth int) *Limits {
	l.Depth = depth
	l.Infinite = false
	return l
}

func (l *Limits) SetMaxNodes(maxNodes uint32) *Limits {
	l.MaxNodes = maxNodes
	l.Infinite = false
	return l
}

func (l *Limits) SetCycles(cycles uint32) *Limits {
	l.Cycles = cycles
	l.Infinite = false
	return l
}

func (l *Limits) SetMovetime(movetime int) *Limits {
	l.Movetime = movetime
	l.Infinite = false
	return l
}

func (l *Limits) SetInfinite(infinite bool) *Limits {
	l.Infinite = infinite
	return l
}

func (l *Limits) SetThreads(threads int) *Limits {
	l.NThreads = max(threads, 1)
	return l
}
