// Package search drives the worker-pool search loop: many goroutines
// descend the shared tree with Node.Playout, hand each non-exact leaf off to
// an evaluator.Evaluator (exact leaves are back-propagated directly), and
// report progress through a
// StatsListener — the role the teacher's MCTS[T,S,R] plays for rollout-based
// MCTS, generalized here to NN-guided search (pkg/mcts/mcts.go,
// pkg/mcts/search.go).
package search

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nnsearch-go/mctsnode/evaluator"
	"github.com/nnsearch-go/mctsnode/node"
)

// Searcher owns one node.Node tree and the worker pool searching it.
type Searcher struct {
	Root      *node.Node
	evaluator evaluator.Evaluator
	tablebase node.Tablebase

	limiter  *limiter
	listener *StatsListener

	size     atomic.Uint32
	maxdepth atomic.Int32
	cycles   atomic.Uint32
	cps      atomic.Uint32

	collisions atomic.Int32

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewSearcher wraps root, ready to be driven by Search. tablebase may be
// nil (no probing). eval scores every non-exact leaf the workers surface.
func NewSearcher(root *node.Node, eval evaluator.Evaluator, tablebase node.Tablebase) *Searcher {
	s := &Searcher{
		Root:      root,
		evaluator: eval,
		tablebase: tablebase,
		limiter:   newLimiter(),
		listener:  NewStatsListener(),
		logger:    log.Logger,
	}
	s.limiter.SetStop(true)

	if !root.HasPotentials() && !root.HasChildren() && !root.IsExact() {
		root.GeneratePotentials(tablebase)
	}
	s.size.Store(1)
	return s
}

func (s *Searcher) StatsListener() *StatsListener {
	return s.listener
}

func (s *Searcher) SetListener(listener *StatsListener) {
	s.listener = listener
}

func (s *Searcher) SetLimits(limits *Limits) {
	s.limiter.SetLimits(limits)
}

func (s *Searcher) Limits() *Limits {
	return s.limiter.Limits()
}

// SetContext ties the search to ctx; cancelling ctx stops the search the
// same way calling Stop does.
func (s *Searcher) SetContext(ctx context.Context) {
	s.limiter.SetContext(ctx)
}

func (s *Searcher) IsSearching() bool {
	return !s.limiter.Stop()
}

func (s *Searcher) Stop() {
	s.limiter.SetStop(true)
}

func (s *Searcher) StopReason() StopReason {
	return s.limiter.StopReason()
}

func (s *Searcher) MaxDepth() int  { return int(s.maxdepth.Load()) }
func (s *Searcher) Cycles() int    { return int(s.cycles.Load()) }
func (s *Searcher) Cps() uint32    { return s.cps.Load() }
func (s *Searcher) Size() uint32   { return s.size.Load() }
func (s *Searcher) Collisions() int32 {
	return s.collisions.Load()
}

// PrincipalVariation is the current best line from the root.
func (s *Searcher) PrincipalVariation() []node.Move {
	return s.Root.PrincipalVariation()
}

// Search starts NThreads worker goroutines against the current tree and
// returns immediately; call Synchronize to wait for them to finish.
func (s *Searcher) Search() {
	s.limiter.Reset()
	s.cps.Store(0)
	s.cycles.Store(0)
	s.maxdepth.Store(0)
	s.collisions.Store(0)

	if s.Root.IsExact() {
		s.limiter.SetStop(true)
		s.listener.invoke(s.listener.onStop, s)
		return
	}

	threads := max(1, s.limiter.Limits().NThreads)
	s.wg.Add(threads)
	for id := 0; id < threads; id++ {
		go s.searchWorker(id)
	}
}

// mainThreadID identifies the one worker goroutine allowed to touch the
// listener and evaluate the final stop reason.
const mainThreadID = 0

func (s *Searcher) searchWorker(threadID int) {
	defer s.wg.Done()

	for s.limiter.Ok(s.Size(), uint32(s.MaxDepth()), uint32(s.Cycles())) {
		result := s.Root.Playout()
		if result == nil {
			s.collisions.Add(1)
			runtime.Gosched()
			continue
		}

		if result.Created {
			s.size.Add(1)
		}

		s.scoreLeaf(result.Leaf)

		s.cycles.Add(1)
		if elapsed := s.limiter.Elapsed(); elapsed > 0 {
			s.cps.Store(s.cycles.Load() * 1000 / elapsed)
		}

		depth := int32(result.Depth)
		for {
			cur := s.maxdepth.Load()
			if depth <= cur {
				break
			}
			if s.maxdepth.CompareAndSwap(cur, depth) {
				if threadID == mainThreadID {
					s.listener.invoke(s.listener.onDepth, s)
				}
				break
			}
		}

		if threadID == mainThreadID && s.listener.onCycle != nil && s.Cycles()%s.listener.nCycles == 0 {
			s.listener.onCycle(toTreeStats(s))
		}
	}

	if threadID == mainThreadID {
		s.limiter.EvaluateStopReason(s.Size(), uint32(s.MaxDepth()), uint32(s.Cycles()))
		s.limiter.SetStop(true)
		s.listener.invoke(s.listener.onStop, s)
	}
}

// scoreLeaf expands leaf if it hasn't been expanded yet, then either
// propagates its now-exact value directly or hands it to the evaluator.
//
// Expansion is gated by s.limiter.Expand(): once a soft MaxNodes cap has
// frozen tree growth, a freshly materialized leaf is left without
// potentials and the evaluator just scores the bare position, exactly
// like a node.Node this package has already finished expanding once and
// is revisiting. The one exception is a leaf reached through a noisy
// line (its parent has a capture/check/promotion child): tactics still
// get to widen past the cap, since abandoning a forcing sequence
// mid-resolution is worse than a handful of extra nodes.
func (s *Searcher) scoreLeaf(leaf *node.Node) {
	unexpanded := !leaf.IsExact() && !leaf.HasPotentials() && !leaf.HasChildren()
	if unexpanded {
		widen := false
		if p := leaf.Parent(); p != nil {
			widen = p.HasNoisyChildren()
		}
		if expand := s.limiter.Expand(); expand || widen {
			if widen && !expand {
				s.logger.Debug().Str("pos", leaf.String()).Msg("search: widening past the node cap for a noisy line")
			}
			leaf.GeneratePotentials(s.tablebase)
		}
	}

	if leaf.IsExact() {
		leaf.SetQValueAndPropagate()
		return
	}

	s.evaluator.Evaluate([]*node.Node{leaf})
}

// Synchronize blocks until every worker goroutine started by Search has
// returned.
func (s *Searcher) Synchronize() {
	s.wg.Wait()
}

// MakeMove re-roots the tree at the child reached by mv, discarding the
// rest of the tree, so a subsequent Search continues from there instead of
// starting over. Does nothing if mv isn't among the root's materialized
// children; the tree then stays rooted where it was.
func (s *Searcher) MakeMove(mv node.Move) {
	if s.IsSearching() {
		s.Stop()
		s.Synchronize()
	}

	var newRoot *node.Node
	for _, c := range s.Root.Children() {
		if c.Game().LastMove().String() == mv.String() {
			newRoot = c
			break
		}
	}
	if newRoot == nil {
		return
	}

	newRoot.SetAsRoot()
	s.Root = newRoot
	s.size.Store(uint32(countTreeNodes(newRoot)))
	if d := s.MaxDepth() - 1; d > 0 {
		s.maxdepth.Store(int32(d))
	} else {
		s.maxdepth.Store(0)
	}

	if !newRoot.IsExact() && !newRoot.HasPotentials() && !newRoot.HasChildren() {
		newRoot.GeneratePotentials(s.tablebase)
	}
}

func countTreeNodes(n *node.Node) int {
	count := 1
	for _, c := range n.Children() {
		count += countTreeNodes(c)
	}
	return count
}
