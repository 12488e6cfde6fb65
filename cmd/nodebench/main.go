// Command nodebench runs the search core against a FEN (the starting
// position by default) for a fixed movetime and prints UCI-style info/
// bestmove lines, mirroring the teacher's examples/chess/main.go demo but
// wired to the NN-guided search core instead of a rollout MCTS.
package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/nnsearch-go/mctsnode/evaluator"
	"github.com/nnsearch-go/mctsnode/node"
	"github.com/nnsearch-go/mctsnode/position"
	"github.com/nnsearch-go/mctsnode/search"
	"github.com/nnsearch-go/mctsnode/tablebase"
)

func movesToString(mvs []node.Move) string {
	parts := make([]string, len(mvs))
	for i, mv := range mvs {
		parts[i] = mv.String()
	}
	return strings.Join(parts, " ")
}

func main() {
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	movetimeFlag := flag.Int("movetime", 2000, "search time in milliseconds")
	threadsFlag := flag.Int("threads", 4, "number of search worker goroutines")
	workersFlag := flag.Int("evalworkers", 0, "evaluator worker pool size (0 = NumCPU)")
	kpuctFlag := flag.Float64("kpuct", 1.5, "PUCT exploration constant")
	flag.Parse()

	node.StrictMode = false

	var game *position.Board
	if *fenFlag != "" {
		game = position.FromFEN(*fenFlag)
	} else {
		game = position.NewGame()
	}

	settings := &node.Settings{
		Kpuct:           *kpuctFlag,
		TryPlayoutLimit: 4,
		VldMax:          32,
		FpuReduction:    0.35,
	}

	root := node.New(nil, game, settings)
	backend := evaluator.MaterialBackend{}
	eval := evaluator.NewBatchEvaluator(backend, *workersFlag)
	searcher := search.NewSearcher(root, eval, tablebase.Stub{})
	searcher.SetLimits(search.DefaultLimits().SetThreads(*threadsFlag).SetMovetime(*movetimeFlag))

	printLine := func(stats search.TreeStats) {
		if len(stats.Pv) == 0 {
			return
		}
		fmt.Printf("info eval %.4f depth %d cps %d cycles %d pv %s\n",
			stats.Eval, stats.MaxDepth, stats.Cps, stats.Cycles, movesToString(stats.Pv))
	}

	searcher.SetListener(search.NewStatsListener().
		OnDepth(printLine).
		OnStop(func(stats search.TreeStats) {
			printLine(stats)
			if stats.BestMove == nil {
				fmt.Println("bestmove (none)")
				return
			}
			fmt.Printf("bestmove %s\n", stats.BestMove.String())
		}))

	searcher.Search()
	searcher.Synchronize()
}
