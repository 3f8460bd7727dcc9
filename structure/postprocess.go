package structure

import (
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

// markUnstructured recurses through the finished hierarchy; for every
// goto target it flags the target's entry leaf with
// BlockFlagUnstructuredTarg. Whether a target is also the structural
// fall-through of the goto is not checked. For an if-without-else,
// the unstructured target is the then-body's own entry.
func markUnstructured(b *flow.Block) {
	entryLeaf := func(t *flow.Block) *flow.Block {
		for t.Kind != flow.KindCopy && len(t.Children) > 0 {
			t = t.Children[0]
		}
		return t
	}
	switch b.Kind {
	case flow.KindGoto, flow.KindMultiGoto:
		for _, t := range b.GotoTargets {
			entryLeaf(t).SetFlag(ir.BlockFlagUnstructuredTarg)
		}
	case flow.KindIf:
		if len(b.Children) == 2 {
			entryLeaf(b.Children[1]).SetFlag(ir.BlockFlagUnstructuredTarg)
		}
	}
	for _, c := range b.Children {
		markUnstructured(c)
	}
}

// scopeBreak walks the hierarchy comparing each goto target to the
// current syntactic exit (curExit) and the nearest enclosing loop's
// exit (curLoopExit). It records no goto/break/continue classification
// on any block, and no target is recognised as a continue.
func scopeBreak(b *flow.Block, curExit, curLoopExit *flow.Block) {
	switch b.Kind {
	case flow.KindWhileDo, flow.KindDoWhile, flow.KindInfLoop:
		exit := loopExit(b)
		for _, c := range b.Children {
			scopeBreak(c, b.ExitLeaf(), exit)
		}
		return
	case flow.KindGoto, flow.KindMultiGoto:
		for _, t := range b.GotoTargets {
			switch {
			case curLoopExit != nil && t == curLoopExit:
				// break
			case curExit != nil && t == curExit:
				// fall-through, no annotation needed
			default:
				// genuine unstructured goto, left as-is
			}
		}
	}
	for _, c := range b.Children {
		scopeBreak(c, curExit, curLoopExit)
	}
}

// loopExit returns the block structurally reached when a loop
// terminates normally: the WhileDo head's false branch, or nil when
// the loop has no single structured exit (DoWhile/InfLoop typically
// rely on an interior goto instead).
func loopExit(b *flow.Block) *flow.Block {
	if b.Kind != flow.KindWhileDo || len(b.Children) == 0 {
		return nil
	}
	head := b.Children[0]
	if head.FalseOut() != nil {
		return head.FalseOut()
	}
	return nil
}
