package structure

import (
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

// flipInPlaceTest collects the CBRANCH op whose fallthru-true/
// boolean-flip flags would need to be toggled to swap the sense of
// the test, and reports 0 on success or 2 otherwise. It handles only a
// single leaf (KindCopy) block ending in CBRANCH; a composite,
// including a condition, is not descended into and yields 2.
func flipInPlaceTest(b *flow.Block) ([]*ir.PcodeOp, int) {
	var ops []*ir.PcodeOp
	var walk func(b *flow.Block) int
	walk = func(b *flow.Block) int {
		if b.Kind != flow.KindCopy {
			return 2
		}
		last := b.LastOp()
		if last == nil || last.Opcode != ir.OpCbranch {
			return 2
		}
		ops = append(ops, last)
		return 0
	}
	if code := walk(b); code != 0 {
		return nil, 2
	}
	return ops, 0
}

// flipInPlaceExecute toggles the fallthru-true/boolean-flip flags of
// the ops collected by flipInPlaceTest and swaps the outgoing edges of
// each block in blocks to match.
func flipInPlaceExecute(ops []*ir.PcodeOp, blocks []*flow.Block) {
	for _, op := range ops {
		if op.Flags().Has(ir.OpFlagFallthruTrue) {
			op.Flags().Clear(ir.OpFlagFallthruTrue)
		} else {
			op.Flags().Set(ir.OpFlagFallthruTrue)
		}
		if op.Flags().Has(ir.OpFlagBooleanFlip) {
			op.Flags().Clear(ir.OpFlagBooleanFlip)
		} else {
			op.Flags().Set(ir.OpFlagBooleanFlip)
		}
	}
	for _, b := range blocks {
		flow.SwapEdges(b)
	}
}

// preferComplement chooses between `if (c) T else F` and `if (!c) F
// else T` by op count alone, applying flipInPlaceExecute when the then
// body has more ops than the else body. Goto exits of the bodies are
// not considered.
func preferComplement(ifBlock *flow.Block) {
	if ifBlock.Kind != flow.KindIf || len(ifBlock.Children) != 3 {
		return
	}
	cond, thenB, elseB := ifBlock.Children[0], ifBlock.Children[1], ifBlock.Children[2]
	if countOps(thenB) <= countOps(elseB) {
		return
	}
	ops, code := flipInPlaceTest(cond)
	if code != 0 {
		return
	}
	flipInPlaceExecute(ops, []*flow.Block{cond})
	ifBlock.Children[1], ifBlock.Children[2] = elseB, thenB
}

func countOps(b *flow.Block) int {
	if b == nil {
		return 0
	}
	if b.Kind == flow.KindCopy {
		return b.Basic.NumOps()
	}
	n := 0
	for _, c := range b.Children {
		n += countOps(c)
	}
	return n
}
