package structure

import (
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

// finalTransform recurses through the hierarchy looking for WhileDo
// loops whose head tests a variable updated by the tail block through
// a phi in the head; when found, the tail's updating op is promoted to
// IterateOp and a matching InitializeOp is sought among the defs of
// the phi's other inputs (see findInitializer), recovering C-style
// for-loop shape.
func finalTransform(b *flow.Block) {
	for _, c := range b.Children {
		finalTransform(c)
	}
	if b.Kind != flow.KindWhileDo || len(b.Children) != 2 {
		return
	}
	head, body := b.Children[0], b.Children[1]
	headLast := head.LastOp()
	if headLast == nil || headLast.Opcode != ir.OpCbranch {
		return
	}
	testVar := headLast.Input(1)
	if testVar == nil {
		return
	}

	tailOp := findLoopVariableUpdate(body, testVar)
	if tailOp == nil || !isMoveable(tailOp) {
		return
	}
	b.IterateOp = tailOp

	if initOp := findInitializer(head, testVar, tailOp); initOp != nil && isMoveable(initOp) {
		b.InitializeOp = initOp
	}
}

// findLoopVariableUpdate looks, in body's trailing ops, for the
// definition that reaches testVar's defining phi in the loop head
// through a MULTIEQUAL input slot.
func findLoopVariableUpdate(body *flow.Block, testVar *ir.Varnode) *ir.PcodeOp {
	def := testVar.Def()
	if def == nil || def.Opcode != ir.OpMultiequal {
		return nil
	}
	last := body.LastOp()
	for _, in := range def.Inputs() {
		if d := in.Def(); d != nil && d.Parent == last.Parent {
			return d
		}
	}
	return nil
}

// findInitializer returns the op defining testVar's other phi input
// (one not defined by tailOp) — the loop's initial value — taking the
// first such def that lies outside head's own basic block. Dominance
// of that def over the head is not checked.
func findInitializer(head *flow.Block, testVar *ir.Varnode, tailOp *ir.PcodeOp) *ir.PcodeOp {
	def := testVar.Def()
	if def == nil || def.Opcode != ir.OpMultiequal {
		return nil
	}
	for _, in := range def.Inputs() {
		if d := in.Def(); d != nil && d != tailOp {
			if d.Parent != nil && head.Basic != nil && d.Parent != head.Basic {
				return d
			}
		}
	}
	return nil
}

// isMoveable reports whether op can be relocated without crossing a
// side effect. STORE, CALL*,
// and branch family ops pin their position.
func isMoveable(op *ir.PcodeOp) bool {
	if op.Opcode.IsBranch() || op.Opcode.IsCall() {
		return false
	}
	return op.Opcode != ir.OpStore
}
