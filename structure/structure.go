package structure

import "github.com/decompcore/pcodeir/flow"

// Structure turns leaves, a flat set of already-built flow.Block
// leaves (ordinarily flow.NewCopy wrappers over one function's
// ir.BasicBlocks), into a single hierarchical root by repeatedly
// classifying edges, computing dominators, and applying the greedy
// collapse rules until one block remains.
func Structure(leaves []*flow.Block) (*flow.Block, error) {
	g := flow.NewGraph()
	for _, l := range leaves {
		g.AddBlock(l)
	}

	if err := analyze(g); err != nil {
		return nil, err
	}

	for len(g.Blocks) > 1 {
		collapsed, domChanged := tryCollapse(g)
		if !collapsed {
			isolated := true
			for _, b := range g.Blocks {
				if b.NumOut() > 0 {
					isolated = false
					break
				}
			}
			if isolated {
				// No edges remain between the leftover blocks, so no goto
				// can be introduced; they become the children of one
				// generic graph block, in their current order.
				root := flow.NewBlock(flow.KindGraph)
				root.Children = append(root.Children, g.Blocks...)
				g.Blocks = []*flow.Block{root}
				break
			}
			introduceGoto(g)
			domChanged = true
		}
		if domChanged {
			if err := analyze(g); err != nil {
				return nil, err
			}
		}
	}

	root := g.Blocks[0]
	markUnstructured(root)
	scopeBreak(root, nil, nil)
	finalTransform(root)
	return root, nil
}

// analyze rebuilds the spanning tree, dominators, and loop-edge labels
// from the current top-level block set.
func analyze(g *flow.Graph) error {
	st, err := buildSpanningTree(g.Blocks)
	if err != nil {
		return err
	}
	computeDominators(st)
	markLoopEdges(st)
	return nil
}

// introduceGoto finds the lowest-index block with an unstructured
// outgoing edge and converts that one edge into an explicit goto,
// guaranteeing termination of the fixed-point loop: the edge is
// recorded in the wrapping block's GotoTargets for later emission,
// then removed from the real graph entirely (RemoveOutEdge), hiding
// it from the structuring view rather than merely re-pointing it at
// the composite. Any other outgoing edges of the block are left live
// and get retargeted onto the composite by ReplaceWithComposite as
// ordinary structural edges, so a single call never disconnects more
// of the graph than the one edge it converts. If b was already
// wrapped into a goto by an earlier call (a second unstructured edge
// from the same source), the new target is appended in place and the
// wrapper is promoted to BlockMultiGoto instead of nesting another
// composite around it.
func introduceGoto(g *flow.Graph) {
	ordered := orderedByIndex(g.Blocks)
	for _, b := range ordered {
		if b.NumOut() == 0 {
			continue
		}
		target := b.Outofthis[0].Point
		flow.RemoveOutEdge(b, 0)

		if b.Kind == flow.KindGoto || b.Kind == flow.KindMultiGoto {
			b.Kind = flow.KindMultiGoto
			b.GotoTargets = append(b.GotoTargets, target)
			return
		}

		composite := flow.NewGoto(b, target)
		flow.ReplaceWithComposite(g, composite, []*flow.Block{b})
		return
	}
}
