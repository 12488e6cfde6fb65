package node

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrincipalVariation greedily follows the highest-scoring child at each
// level from n down to a leaf, returning the moves in order.
func (n *Node) PrincipalVariation() []Move {
	moves, _ := n.principalVariation(0)
	return moves
}

func (n *Node) principalVariation(depth int) ([]Move, int) {
	if !n.IsRoot() && !n.HasPValue() {
		return nil, depth
	}
	depth++

	if !n.HasChildren() {
		return []Move{n.game.LastMove()}, depth
	}

	best := n.bestChildByScore()
	if n.IsRoot() {
		return best.principalVariation(depth)
	}

	rest, d := best.principalVariation(depth)
	return append([]Move{n.game.LastMove()}, rest...), d
}

func (n *Node) bestChildByScore() *Node {
	children := n.Children()
	best := children[0]
	bestScore := best.WeightedExplorationScore()
	for _, c := range children[1:] {
		if s := c.WeightedExplorationScore(); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best
}

// String renders the path of moves from the root's most-recent-11-move
// history through this node, for debugging (fmt.Stringer).
func (n *Node) String() string {
	games := n.PreviousMoves(false)
	var parts []string
	for _, g := range games {
		if mv := g.LastMove(); mv != nil {
			parts = append(parts, mv.String())
		}
	}
	if mv := n.game.LastMove(); mv != nil {
		parts = append(parts, mv.String())
	} else {
		parts = append(parts, "start")
	}
	return strings.Join(parts, " ")
}

// PrintTree dumps this subtree down to the given depth for diagnostics,
// listing each node's children best-first by q+u. Only the root's line is
// highlighted (bold, via termenv); no other line is colored.
func (n *Node) PrintTree(depth int) string {
	var b strings.Builder
	n.printTree(&b, depth)
	return b.String()
}

func (n *Node) printTree(b *strings.Builder, maxDepth int) {
	d := n.Depth()
	b.WriteByte('\n')
	for i := 0; i < d; i++ {
		b.WriteString("      |")
	}

	move := "start"
	if mv := n.game.LastMove(); mv != nil {
		move = mv.String()
	}

	line := fmt.Sprintf("%6s  n: %-4d p: %5.2f%%  q: %8.5f  u: %6.5f  q+u: %8.5f  v: %7.4f  cp: %d",
		move,
		n.Visited()+n.VirtualLoss(),
		n.PValue()*100,
		n.QValue(),
		n.UValue(),
		n.WeightedExplorationScore(),
		n.RawQValue(),
		ScoreToCP(n.QValue()),
	)

	if n.IsRoot() {
		b.WriteString(termenv.String(line).Bold().String())
	} else {
		b.WriteString(line)
	}

	if d >= maxDepth {
		return
	}

	children := n.Children()
	if len(children) == 0 {
		return
	}

	sorted := append([]*Node(nil), children...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].WeightedExplorationScore() > sorted[j-1].WeightedExplorationScore(); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	for _, c := range sorted {
		c.printTree(b, maxDepth)
	}
}
