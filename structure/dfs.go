package structure

import (
	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

// spanningTree is the result of one DFS pass: per-block DFS state
// plus the reverse post-order array the rest of the engine indexes
// everything by.
type spanningTree struct {
	rpo       []*flow.Block       // index -> block, in reverse post-order
	rpoIndex  map[*flow.Block]int // block -> rpo index
	preorder  map[*flow.Block]int
	skipEdges map[edgeKey]bool // irreducible edges excluded from the next rebuild attempt
}

type edgeKey struct {
	from, to *flow.Block
	slot     int
}

// buildSpanningTree runs a DFS from roots (every block with no
// in-edge, plus any block never visited, appended as a virtual extra
// root per §4.4.1 "unreachable roots appended as virtual entries"),
// labels every edge, and detects irreducible back-edges. It retries at
// most twice with irreducible tree-edges excluded, then gives up.
func buildSpanningTree(blocks []*flow.Block) (*spanningTree, error) {
	skip := map[edgeKey]bool{}
	for attempt := 0; attempt < 3; attempt++ {
		st, rebuiltEdges, err := attemptSpanningTree(blocks, skip)
		if err != nil {
			return nil, err
		}
		if len(rebuiltEdges) == 0 {
			return st, nil
		}
		for k := range rebuiltEdges {
			skip[k] = true
		}
	}
	return nil, errs.NewLowLevel("could not generate spanning tree")
}

func attemptSpanningTree(blocks []*flow.Block, skip map[edgeKey]bool) (*spanningTree, map[edgeKey]bool, error) {
	preorder := map[*flow.Block]int{}
	postorder := []*flow.Block{}
	onStack := map[*flow.Block]bool{}
	visited := map[*flow.Block]bool{}
	pre := 0

	newIrreducible := map[edgeKey]bool{}
	treeEdges := map[edgeKey]bool{}

	var visit func(b *flow.Block)
	visit = func(b *flow.Block) {
		visited[b] = true
		preorder[b] = pre
		pre++
		onStack[b] = true

		for slot, e := range b.Outofthis {
			k := edgeKey{from: b, to: e.Point, slot: slot}
			if skip[k] {
				e.SetLabel(ir.EdgeLabelIrreducible)
				continue
			}
			switch {
			case !visited[e.Point]:
				e.SetLabel(ir.EdgeLabelTree)
				treeEdges[k] = true
				visit(e.Point)
			case onStack[e.Point]:
				e.SetLabel(ir.EdgeLabelBack)
				markIrreducible(b, e.Point, preorder, visited, onStack, newIrreducible)
			case preorder[e.Point] > preorder[b]:
				e.SetLabel(ir.EdgeLabelForward)
			default:
				e.SetLabel(ir.EdgeLabelCross)
			}
		}
		onStack[b] = false
		postorder = append(postorder, b)
	}

	for _, b := range blocks {
		if b.NumIn() == 0 && !visited[b] {
			visit(b)
		}
	}
	for _, b := range blocks {
		if !visited[b] {
			visit(b)
		}
	}

	rpo := make([]*flow.Block, len(postorder))
	rpoIndex := map[*flow.Block]int{}
	for i, b := range postorder {
		pos := len(postorder) - 1 - i
		rpo[pos] = b
		rpoIndex[b] = pos
		b.Index = pos
	}

	if len(newIrreducible) > 0 {
		// Only tree-edge irreducibility forces a rebuild; otherwise the
		// irreducible edges are labelled in place.
		for k := range newIrreducible {
			if treeEdges[k] {
				return nil, newIrreducible, nil
			}
		}
		for k := range newIrreducible {
			k.from.Outofthis[k.slot].SetLabel(ir.EdgeLabelIrreducible)
		}
	}

	return &spanningTree{rpo: rpo, rpoIndex: rpoIndex, preorder: preorder, skipEdges: skip}, nil, nil
}

// markIrreducible walks the natural-loop "reachunder" set of the back
// edge (head -> tail where tail is an ancestor of head) and flags any
// edge entering that set from a block outside it, by preorder number,
// as irreducible.
func markIrreducible(head, tail *flow.Block, preorder map[*flow.Block]int, visited, onStack map[*flow.Block]bool, out map[edgeKey]bool) {
	reachunder := map[*flow.Block]bool{tail: true, head: true}
	worklist := []*flow.Block{head}
	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, e := range b.Intothis {
			p := e.Point
			if !onStack[p] || reachunder[p] {
				continue
			}
			reachunder[p] = true
			worklist = append(worklist, p)
		}
	}

	for b := range reachunder {
		for slot, e := range b.Intothis {
			src := e.Point
			if reachunder[src] {
				continue
			}
			if !onStack[src] {
				continue
			}
			if preorder[src] < preorder[b] {
				continue
			}
			out[edgeKey{from: src, to: b, slot: e.ReverseIndex}] = true
			_ = slot
		}
	}
}

// markLoopEdges runs a second DFS over the already-classified tree and
// flags every edge whose target is an ancestor on the current DFS path
// as a loop edge.
func markLoopEdges(st *spanningTree) {
	onPath := map[*flow.Block]bool{}
	visited := map[*flow.Block]bool{}

	var visit func(b *flow.Block)
	visit = func(b *flow.Block) {
		visited[b] = true
		onPath[b] = true
		for _, e := range b.Outofthis {
			if onPath[e.Point] {
				e.SetLabel(ir.EdgeLabelLoop)
			} else if !visited[e.Point] {
				visit(e.Point)
			}
		}
		onPath[b] = false
	}
	for _, b := range st.rpo {
		if !visited[b] {
			visit(b)
		}
	}
}
