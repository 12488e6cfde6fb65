package search

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
)

// StopReason is a bitmask of the reasons a search call stopped; more than
// one can apply in the same cycle (e.g. a movetime budget and a cycle cap
// expiring together).
type StopReason int

const (
	StopNone      StopReason = 0
	StopInterrupt StopReason = 1 << 0 // Stop() called, or the search context was cancelled
	StopMovetime  StopReason = 1 << 1 // movetime budget elapsed
	StopNodes     StopReason = 1 << 2 // MaxNodes budget reached
	StopDepth     StopReason = 1 << 3 // Depth limit reached
	StopCycles    StopReason = 1 << 4 // Cycles limit reached
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}
	var names []string
	for _, flag := range []struct {
		bit  StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopNodes, "Nodes"},
		{StopDepth, "Depth"},
		{StopCycles, "Cycles"},
	} {
		if sr&flag.bit != 0 {
			names = append(names, flag.name)
		}
	}
	return strings.Join(names, "|")
}

// limiter decides, cycle by cycle, whether a Searcher must stop: it tracks
// a wall-clock deadline alongside the live depth/cycle/node-count counters
// a worker reports back each Playout.
//
// Hitting MaxNodes alone only freezes tree growth (Expand turns false)
// rather than ending the search outright, as long as some other budget
// (movetime or cycles) is still open to let the search keep re-visiting
// the existing tree; with nothing else bounding it, a full MaxNodes tree
// has nowhere left to go and the search simply ends.
type limiter struct {
	limits   *Limits
	start    time.Time
	deadline time.Time // zero when no movetime budget is set
	softCap  bool      // MaxNodes set, but another open budget keeps searching past it

	expand atomic.Bool
	stop   atomic.Bool
	reason StopReason
	ctx    context.Context
}

func newLimiter() *limiter {
	l := &limiter{limits: DefaultLimits(), ctx: context.Background()}
	l.expand.Store(true)
	return l
}

func (l *limiter) Reset() {
	l.stop.Store(false)
	l.expand.Store(true)
	l.reason = StopNone
	l.start = time.Now()

	if l.limits.Movetime >= 0 {
		l.deadline = l.start.Add(time.Duration(l.limits.Movetime) * time.Millisecond)
	} else {
		l.deadline = time.Time{}
	}

	l.softCap = l.limits.MaxNodes != DefaultNodeLimit &&
		(l.limits.Movetime != DefaultMovetimeLimit || l.limits.Cycles != DefaultCyclesLimit)
}

func (l *limiter) SetContext(ctx context.Context) { l.ctx = ctx }
func (l *limiter) SetLimits(limits *Limits)       { l.limits = limits }
func (l *limiter) Limits() *Limits                { return l.limits }
func (l *limiter) Expand() bool                   { return l.expand.Load() }
func (l *limiter) StopReason() StopReason         { return l.reason }

func (l *limiter) SetStop(v bool) { l.stop.Store(v) }

// Stop reports the stop signal, also honoring context cancellation.
func (l *limiter) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

// Elapsed is the time, in milliseconds, since the last Reset.
func (l *limiter) Elapsed() uint32 {
	return uint32(max(time.Since(l.start).Milliseconds(), 1))
}

// reasonFor reports every budget that size/depth/cycles have breached,
// regardless of whether the search should actually halt for it yet.
func (l *limiter) reasonFor(size, depth, cycles uint32) StopReason {
	var reason StopReason
	if l.Stop() {
		reason |= StopInterrupt
	}
	if l.limits.Infinite {
		return reason
	}
	if !l.deadline.IsZero() && !time.Now().Before(l.deadline) {
		reason |= StopMovetime
	}
	if l.limits.MaxNodes != DefaultNodeLimit && size >= l.limits.MaxNodes {
		reason |= StopNodes
	}
	if l.limits.Depth != DefaultDepthLimit && depth >= uint32(l.limits.Depth) {
		reason |= StopDepth
	}
	if l.limits.Cycles != DefaultCyclesLimit && cycles >= l.limits.Cycles {
		reason |= StopCycles
	}
	return reason
}

// EvaluateStopReason records the final stop reason; called once, by the
// main search goroutine, after the loop in searchWorker has exited.
func (l *limiter) EvaluateStopReason(size, depth, cycles uint32) {
	l.reason = l.reasonFor(size, depth, cycles)
}

// Ok reports whether the search may keep running. A MaxNodes breach with
// no other open budget is a hard stop; with one, it only disables further
// expansion and lets the search keep spending its remaining cycles/time
// re-visiting the tree it already has.
func (l *limiter) Ok(size, depth, cycles uint32) bool {
	reason := l.reasonFor(size, depth, cycles)
	if reason == StopNodes && l.softCap {
		l.expand.Store(false)
		return true
	}
	return reason == StopNone
}
