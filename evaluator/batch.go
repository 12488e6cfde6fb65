package evaluator

import (
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nnsearch-go/mctsnode/node"
)

// BatchEvaluator scores many leaves concurrently across a small worker
// pool, grounded on montecarlo.Simmer's errgroup-driven thread pool
// (domino14-macondo/montecarlo/montecarlo.go's Simulate): a fixed number of
// goroutines drain a shared channel of leaves rather than splitting the
// batch evenly up front, so one slow evaluation doesn't stall the others.
type BatchEvaluator struct {
	backend Backend
	workers int
	logger  zerolog.Logger
}

// NewBatchEvaluator wraps backend with a worker pool. workers <= 0 defaults
// to the number of available CPUs.
func NewBatchEvaluator(backend Backend, workers int) *BatchEvaluator {
	if workers <= 0 {
		workers = max(1, runtime.NumCPU())
	}
	return &BatchEvaluator{backend: backend, workers: workers, logger: log.Logger}
}

func (e *BatchEvaluator) Evaluate(leaves []*node.Node) {
	if len(leaves) == 0 {
		return
	}

	work := make(chan *node.Node, len(leaves))
	for _, leaf := range leaves {
		work <- leaf
	}
	close(work)

	workers := e.workers
	if workers > len(leaves) {
		workers = len(leaves)
	}

	e.logger.Debug().Int("leaves", len(leaves)).Int("workers", workers).Msg("batch-evaluate")

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for leaf := range work {
				scoreLeaf(e.backend, leaf)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Err(err).Msg("batch evaluation worker failed")
	}
}
