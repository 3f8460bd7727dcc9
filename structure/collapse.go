package structure

import (
	"sort"

	"github.com/decompcore/pcodeir/flow"
)

// tryCollapse attempts each rule in priority order against g's current
// top-level blocks and applies the first match found, trying
// candidates smallest-index-first within a rule. It reports whether a
// collapse happened and whether
// dominance may have changed as a result.
func tryCollapse(g *flow.Graph) (collapsed bool, domChanged bool) {
	ordered := orderedByIndex(g.Blocks)

	if m := findList(ordered); m != nil {
		flow.ReplaceWithComposite(g, flow.NewList(m...), m)
		return true, false
	}
	if head, thenB, elseB := findIf(ordered); head != nil {
		members := []*flow.Block{head}
		if thenB != nil {
			members = append(members, thenB)
		}
		if elseB != nil {
			members = append(members, elseB)
		}
		flow.ReplaceWithComposite(g, flow.NewIf(head, thenB, elseB), members)
		return true, false
	}
	if first, second, isAnd := findCondition(ordered); first != nil {
		members := []*flow.Block{first, second}
		flow.ReplaceWithComposite(g, flow.NewCondition(first, second, isAnd), members)
		return true, true
	}
	if head, body := findWhileDo(ordered); head != nil {
		members := []*flow.Block{head, body}
		flow.ReplaceWithComposite(g, flow.NewWhileDo(head, body), members)
		return true, true
	}
	if body := findDoWhile(ordered); body != nil {
		flow.ReplaceWithComposite(g, flow.NewDoWhile(body), []*flow.Block{body})
		return true, true
	}
	if body := findInfLoop(ordered); body != nil {
		flow.ReplaceWithComposite(g, flow.NewInfLoop(body), []*flow.Block{body})
		return true, true
	}
	if head, cases := findSwitch(ordered); head != nil {
		members := append([]*flow.Block{head}, cases...)
		flow.ReplaceWithComposite(g, flow.NewSwitch(head, head.Table, cases...), members)
		return true, false
	}
	return false, false
}

func orderedByIndex(blocks []*flow.Block) []*flow.Block {
	out := make([]*flow.Block, len(blocks))
	copy(out, blocks)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// findList locates the earliest maximal chain of >=2 blocks where each
// has exactly one fall-through successor which is the next block, and
// that successor has exactly that one predecessor.
func findList(ordered []*flow.Block) []*flow.Block {
	for _, head := range ordered {
		if head.NumOut() != 1 {
			continue
		}
		chain := []*flow.Block{head}
		cur := head
		for {
			next := cur.Outofthis[0].Point
			if next.NumIn() != 1 || next == head {
				break
			}
			chain = append(chain, next)
			if next.NumOut() != 1 {
				break
			}
			cur = next
		}
		if len(chain) >= 2 {
			return chain
		}
	}
	return nil
}

// findIf locates the earliest 2-out block whose then/else bodies each
// have it as their sole predecessor and converge on (or exit through)
// a common point.
func findIf(ordered []*flow.Block) (head, thenB, elseB *flow.Block) {
	for _, b := range ordered {
		if b.NumOut() != 2 {
			continue
		}
		f, t := b.FalseOut(), b.TrueOut()

		fSolo := f.NumIn() == 1
		tSolo := t.NumIn() == 1

		switch {
		case fSolo && tSolo && sameExit(f, t):
			return b, f, t
		case fSolo && !tSolo:
			// IfGoto: the false body is private, the true arm is
			// reached from elsewhere too (an implicit join/goto).
			return b, f, nil
		case tSolo && !fSolo:
			return b, t, nil
		}
	}
	return nil, nil, nil
}

func sameExit(a, b *flow.Block) bool {
	if a.NumOut() != 1 || b.NumOut() != 1 {
		return false
	}
	return a.Outofthis[0].Point == b.Outofthis[0].Point
}

// findCondition locates two adjacent condition (2-out) blocks
// composable by short-circuit AND/OR: the first's false (or true)
// successor is the second, whose two successors include the first's
// other successor.
func findCondition(ordered []*flow.Block) (first, second *flow.Block, isAnd bool) {
	for _, a := range ordered {
		if a.NumOut() != 2 {
			continue
		}
		// AND form: a's true-out is b; a's false-out short-circuits past b.
		if b := a.TrueOut(); b != nil && b.NumOut() == 2 && b.NumIn() == 1 {
			if b.FalseOut() == a.FalseOut() || b.TrueOut() == a.FalseOut() {
				return a, b, true
			}
		}
		// OR form: a's false-out is b; a's true-out short-circuits past b.
		if b := a.FalseOut(); b != nil && b.NumOut() == 2 && b.NumIn() == 1 {
			if b.TrueOut() == a.TrueOut() || b.FalseOut() == a.TrueOut() {
				return a, b, false
			}
		}
	}
	return nil, nil, false
}

// findWhileDo locates a two-block loop: a condition head dominating a
// single-block body that back-edges to the head.
func findWhileDo(ordered []*flow.Block) (head, body *flow.Block) {
	for _, h := range ordered {
		if h.NumOut() != 2 {
			continue
		}
		for _, cand := range []*flow.Block{h.FalseOut(), h.TrueOut()} {
			if cand == nil || cand == h {
				continue
			}
			if cand.NumIn() != 1 || cand.NumOut() != 1 {
				continue
			}
			if cand.Outofthis[0].Point == h {
				return h, cand
			}
		}
	}
	return nil, nil
}

// findDoWhile locates a single block with two out-edges, one to
// itself and one to the exit.
func findDoWhile(ordered []*flow.Block) *flow.Block {
	for _, b := range ordered {
		if b.NumOut() != 2 {
			continue
		}
		if b.FalseOut() == b || b.TrueOut() == b {
			return b
		}
	}
	return nil
}

// findInfLoop locates a single block whose only out-edge targets
// itself.
func findInfLoop(ordered []*flow.Block) *flow.Block {
	for _, b := range ordered {
		if b.NumOut() == 1 && b.Outofthis[0].Point == b {
			return b
		}
	}
	return nil
}

// findSwitch locates the first block carrying a JumpTable. The case
// bodies are all of its distinct successors, whether or not they also
// have other predecessors.
func findSwitch(ordered []*flow.Block) (head *flow.Block, cases []*flow.Block) {
	for _, b := range ordered {
		if b.Table == nil {
			continue
		}
		seen := map[*flow.Block]bool{}
		var bodies []*flow.Block
		for _, e := range b.Outofthis {
			if seen[e.Point] {
				continue
			}
			seen[e.Point] = true
			bodies = append(bodies, e.Point)
		}
		return b, bodies
	}
	return nil, nil
}
