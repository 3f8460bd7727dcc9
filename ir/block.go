package ir

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
)

// BasicBlock holds an ordered sequence of p-code ops executed in
// insertion order, plus the range of original machine-code addresses
// it covers.
type BasicBlock struct {
	Index int // position in the owning function's block list

	ops   []*PcodeOp
	Cover *addr.RangeList

	// SwitchOut is set when the block's last op is BRANCHIND.
	SwitchOut bool
}

// NewBasicBlock returns an empty block.
func NewBasicBlock(index int) *BasicBlock {
	return &BasicBlock{Index: index, Cover: addr.NewRangeList()}
}

// Ops returns the block's op list in execution order.
func (bb *BasicBlock) Ops() []*PcodeOp { return bb.ops }

// NumOps returns the number of ops in the block.
func (bb *BasicBlock) NumOps() int { return len(bb.ops) }

// LastOp returns the block's final op, or nil if empty.
func (bb *BasicBlock) LastOp() *PcodeOp {
	if len(bb.ops) == 0 {
		return nil
	}
	return bb.ops[len(bb.ops)-1]
}

// InsertOp appends op to the block (inserting before pos if pos >= 0
// and < len, else at the end), setting the op's parent pointer.
func (bb *BasicBlock) InsertOp(op *PcodeOp, pos int) {
	op.Parent = bb
	if pos < 0 || pos >= len(bb.ops) {
		bb.ops = append(bb.ops, op)
		bb.afterLastOpChanged()
		return
	}
	bb.ops = append(bb.ops, nil)
	copy(bb.ops[pos+1:], bb.ops[pos:])
	bb.ops[pos] = op
	bb.afterLastOpChanged()
}

// RemoveOp deletes op from the block.
func (bb *BasicBlock) RemoveOp(op *PcodeOp) error {
	for i, o := range bb.ops {
		if o == op {
			bb.ops = append(bb.ops[:i], bb.ops[i+1:]...)
			op.Parent = nil
			bb.afterLastOpChanged()
			return nil
		}
	}
	return errs.NewLowLevel("op %s is not in block %d", op, bb.Index)
}

func (bb *BasicBlock) afterLastOpChanged() {
	bb.SwitchOut = len(bb.ops) > 0 && bb.ops[len(bb.ops)-1].Opcode == OpBranchind
}

// SetOrder renumbers every op's micro-order uniformly so later
// insertions have room between existing ops.
func (bb *BasicBlock) SetOrder() {
	const stride = 16
	for i, op := range bb.ops {
		op.Seq.Order = uint32(i * stride)
	}
}

// IsDoNothing reports whether the block is a no-op: exactly one
// outgoing edge, at least one incoming
// edge, only markers and non-BRANCHIND branches, and no switch-out
// predecessor whose target (this block) also has multiple preds.
//
// numOut/numIn/predIsSwitchWithMultiPreds are supplied by the caller
// (the flow package, which owns edge topology) rather than looked up
// here, keeping BasicBlock free of a dependency on flow.
func (bb *BasicBlock) IsDoNothing(numOut, numIn int, predIsSwitchWithMultiPreds bool) bool {
	if numOut != 1 || numIn < 1 {
		return false
	}
	if predIsSwitchWithMultiPreds {
		return false
	}
	for _, op := range bb.ops {
		if op.IsMarker() {
			continue
		}
		if op.Opcode == OpBranch || op.Opcode == OpCbranch {
			continue
		}
		return false
	}
	return true
}

// NoInterveningStatement reports whether bb is eligible to be folded
// into a condition expression: every non-marker, non-branch op is
// either a pure COPY/SUBPIECE, or its output is consumed only within
// bb, is not address-tied, and is not a STORE/NEW.
func (bb *BasicBlock) NoInterveningStatement() bool {
	for _, op := range bb.ops {
		if op.IsMarker() || op.Opcode.IsBranch() {
			continue
		}
		if op.Opcode == OpCopy || op.Opcode == OpSubpiece {
			continue
		}
		if op.Opcode == OpStore || op.Opcode == OpNew {
			return false
		}
		out := op.Output()
		if out == nil {
			return false
		}
		if out.Flags.Has(FlagAddressTied) {
			return false
		}
		for _, d := range out.Descendants() {
			if d.Parent != bb {
				return false
			}
		}
	}
	return true
}

// IsComplex reports whether bb has "too many" statements to be folded
// into a condition expression inline. MULTIEQUAL counts; flow-breaks
// (RETURN, unconditional BRANCH) don't. The threshold (>2) is
// hardcoded in the original implementation this spec distills and is
// replicated verbatim rather than generalized.
func (bb *BasicBlock) IsComplex() bool {
	count := 0
	for _, op := range bb.ops {
		switch op.Opcode {
		case OpReturn, OpBranch:
			continue
		}
		count++
	}
	return count > 2
}

// UnblockedMulti reports whether splicing this block out of the edge
// at the given outgoing slot is safe: for every phi in the successor
// reached via that slot, the value coming from this block must agree
// with the value coming from any other predecessor that also flows to
// that successor. otherSlots lists the phi input slots of those other
// predecessors; each must hold the same varnode as slot.
func UnblockedMulti(phi *PcodeOp, slot int, otherSlots []int) bool {
	mine := phi.Input(slot)
	for _, s := range otherSlots {
		if phi.Input(s) != mine {
			return false
		}
	}
	return true
}
