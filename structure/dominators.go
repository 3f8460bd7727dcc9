package structure

import "github.com/decompcore/pcodeir/flow"

// computeDominators runs the Cooper-Harvey-Kennedy iterative algorithm
// over st.rpo, synthesizing a virtual root when more than one block
// has no in-edge so every remaining block has a defined immediate
// dominator, then dissolving the virtual root again.
func computeDominators(st *spanningTree) {
	roots := []*flow.Block{}
	for _, b := range st.rpo {
		if b.NumIn() == 0 {
			roots = append(roots, b)
		}
	}

	virtual := (*flow.Block)(nil)
	idom := map[*flow.Block]*flow.Block{}

	if len(roots) > 1 {
		virtual = flow.NewBlock(flow.KindPlain)
		for _, r := range roots {
			flow.AddInEdge(virtual, r, 0)
		}
		idom[virtual] = virtual
	} else if len(roots) == 1 {
		idom[roots[0]] = roots[0]
	}

	changed := true
	for changed {
		changed = false
		for _, b := range st.rpo {
			if idom[b] == b {
				continue // a root, already fixed
			}
			var newIdom *flow.Block
			for _, e := range b.Intothis {
				pred := e.Point
				if idom[pred] == nil {
					continue
				}
				if newIdom == nil {
					newIdom = pred
					continue
				}
				newIdom = intersect(newIdom, pred, idom, st)
			}
			if virtual != nil && newIdom == nil {
				newIdom = virtual
			}
			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	for _, b := range st.rpo {
		d := idom[b]
		if d == b || d == virtual || d == nil {
			b.ImmedDom = nil
		} else {
			b.ImmedDom = d
		}
	}

	// Dissolve the virtual root: it was never added to the graph, but
	// each real root still carries the synthesized in-edge from it.
	// Each root had zero in-edges before AddInEdge ran (that is why it
	// qualified as a root), so the synthesized edge is always slot 0.
	if virtual != nil {
		for _, r := range roots {
			flow.RemoveInEdge(r, 0)
		}
	}
}

func intersect(a, b *flow.Block, idom map[*flow.Block]*flow.Block, st *spanningTree) *flow.Block {
	for a != b {
		for rpoOf(a, st) > rpoOf(b, st) {
			a = idom[a]
			if a == nil {
				return b
			}
		}
		for rpoOf(b, st) > rpoOf(a, st) {
			b = idom[b]
			if b == nil {
				return a
			}
		}
	}
	return a
}

func rpoOf(b *flow.Block, st *spanningTree) int {
	if i, ok := st.rpoIndex[b]; ok {
		return i
	}
	return -1 // virtual root sorts before everything
}
