package flow

// newComposite returns a composite of kind wrapping children in order.
// It touches no edges; ReplaceWithComposite retargets the outside
// edges onto the composite.
func newComposite(kind Kind, children ...*Block) *Block {
	b := NewBlock(kind)
	b.Children = append(b.Children, children...)
	return b
}

// NewList collapses a linear chain of blocks, none of which is
// entered or exited from outside the chain except at its head/tail
func NewList(children ...*Block) *Block {
	return newComposite(KindList, children...)
}

// NewIf collapses a condition block and its then/else targets. With a
// nil elseBlk the composite has two children (cond, then); no
// GotoTargets are recorded.
func NewIf(cond *Block, thenBlk, elseBlk *Block) *Block {
	b := newComposite(KindIf, cond, thenBlk, elseBlk)
	if elseBlk == nil {
		b.Children = b.Children[:2]
	}
	return b
}

// NewCondition collapses a pair of 2-way blocks sharing one successor
// into a single short-circuited AND/OR test.
func NewCondition(first, second *Block, isAnd bool) *Block {
	b := newComposite(KindCondition, first, second)
	b.ConditionIsAnd = isAnd
	return b
}

// NewWhileDo collapses a loop whose test precedes its body.
func NewWhileDo(test, body *Block) *Block {
	return newComposite(KindWhileDo, test, body)
}

// NewDoWhile collapses a loop whose test follows its body.
func NewDoWhile(body *Block) *Block {
	return newComposite(KindDoWhile, body)
}

// NewInfLoop collapses a loop with no structured exit test at all
func NewInfLoop(body *Block) *Block {
	return newComposite(KindInfLoop, body)
}

// NewSwitch collapses a multi-way branch and its case targets, table
// recording the CaseOrder vector.
func NewSwitch(head *Block, table *JumpTable, cases ...*Block) *Block {
	b := newComposite(KindSwitch, append([]*Block{head}, cases...)...)
	b.Table = table
	return b
}

// NewGoto wraps src with an explicit unstructured jump to target,
// used once scopeBreak/markUnstructured has classified an edge as a
// goto rather than a structured fallthrough.
func NewGoto(src, target *Block) *Block {
	b := newComposite(KindGoto, src)
	b.GotoTargets = []*Block{target}
	return b
}

// NewMultiGoto wraps src with several unstructured jump targets, used
// when a single block's trailing edges cannot all be expressed as one
// goto.
func NewMultiGoto(src *Block, targets ...*Block) *Block {
	b := newComposite(KindMultiGoto, src)
	b.GotoTargets = append(b.GotoTargets, targets...)
	return b
}

// ReplaceWithComposite substitutes composite for every member of
// members inside g's top-level block list, and for every outside edge
// that pointed at a member, retargeting it at composite instead (the
// "collapse" step common to every structuring rule).
func ReplaceWithComposite(g *Graph, composite *Block, members []*Block) {
	memberSet := make(map[*Block]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}

	// Retarget inbound edges landing on a member from a non-member.
	for _, m := range members {
		for i := 0; i < len(m.Intothis); {
			src := m.Intothis[i].Point
			if memberSet[src] {
				i++
				continue
			}
			ReplaceOutEdge(src, m.Intothis[i].ReverseIndex, composite)
		}
	}
	// Retarget outbound edges leaving a member to a non-member.
	for _, m := range members {
		for i := 0; i < len(m.Outofthis); {
			dst := m.Outofthis[i].Point
			if memberSet[dst] {
				i++
				continue
			}
			ReplaceInEdge(dst, m.Outofthis[i].ReverseIndex, composite)
		}
	}

	g.AddBlock(composite)
	for _, m := range members {
		g.RemoveBlock(m)
	}
}

// topoBlockOf descends a copy/leaf to its representative ir.BasicBlock
// index, used when a collapse rule needs the original address order
// (e.g. the goto-introduction tie-break, which always picks the
// lowest index).
func topoBlockOf(b *Block) int {
	if b.Kind == KindCopy && b.Basic != nil {
		return b.Basic.Index
	}
	return b.Index
}
