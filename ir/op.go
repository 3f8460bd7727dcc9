package ir

import "fmt"

// PcodeOp is a single p-code operation: an opcode, an ordered input
// list, an optional output, a sequence number, a parent block, and a
// bit vector of marker/control flags.
type PcodeOp struct {
	Opcode Opcode
	Seq    SeqNum

	inputs []*Varnode
	output *Varnode

	Parent *BasicBlock

	flags *OpFlags
}

// OpFlags is the PcodeOp-specific flag vector (branch, call, marker,
// fallthru-true, boolean-flip, is-moveable).
type OpFlags struct {
	bits uint32
}

func (f *OpFlags) Has(b OpFlag) bool  { return f.bits&(1<<uint(b)) != 0 }
func (f *OpFlags) Set(b OpFlag)       { f.bits |= 1 << uint(b) }
func (f *OpFlags) Clear(b OpFlag)     { f.bits &^= 1 << uint(b) }

// NewOp constructs a PcodeOp and records it as a descendant of each
// non-nil input. It is not linked into any block or given an output
// until BasicBlock.InsertOp and VarnodeBank.SetDef are called.
func NewOp(opcode Opcode, seq SeqNum, inputs []*Varnode) *PcodeOp {
	op := &PcodeOp{
		Opcode: opcode,
		Seq:    seq,
		inputs: append([]*Varnode(nil), inputs...),
		flags:  &OpFlags{},
	}
	for _, vn := range op.inputs {
		if vn != nil {
			vn.addDescendant(op)
		}
	}
	if opcode.IsBranch() {
		op.flags.Set(OpFlagBranch)
	}
	if opcode.IsCall() {
		op.flags.Set(OpFlagCall)
	}
	if opcode.IsMarker() {
		op.flags.Set(OpFlagMarker)
	}
	return op
}

// Flags returns the op's marker/control bit vector.
func (op *PcodeOp) Flags() *OpFlags { return op.flags }

// IsMarker reports whether op is a phi/INDIRECT.
func (op *PcodeOp) IsMarker() bool { return op.Opcode.IsMarker() }

// NumInputs returns the number of input slots.
func (op *PcodeOp) NumInputs() int { return len(op.inputs) }

// Input returns the i'th input varnode.
func (op *PcodeOp) Input(i int) *Varnode { return op.inputs[i] }

// Inputs returns the ordered input slice (read-only by convention).
func (op *PcodeOp) Inputs() []*Varnode { return op.inputs }

// Output returns the op's single output varnode, or nil.
func (op *PcodeOp) Output() *Varnode { return op.output }

// SetInput replaces the varnode at slot i, updating descendant lists
// on both the old and new varnode.
func (op *PcodeOp) SetInput(i int, vn *Varnode) {
	old := op.inputs[i]
	if old != nil {
		old.removeDescendant(op)
	}
	op.inputs[i] = vn
	if vn != nil {
		vn.addDescendant(op)
	}
}

// AppendInput adds a new trailing input slot (used when building
// MULTIEQUAL phis one predecessor edge at a time).
func (op *PcodeOp) AppendInput(vn *Varnode) {
	op.inputs = append(op.inputs, vn)
	if vn != nil {
		vn.addDescendant(op)
	}
}

// RemoveInput deletes input slot i, shifting later slots down. Used to
// keep a MULTIEQUAL's inputs slot-aligned with intothis after an edge
// is removed.
func (op *PcodeOp) RemoveInput(i int) {
	vn := op.inputs[i]
	if vn != nil {
		vn.removeDescendant(op)
	}
	op.inputs = append(op.inputs[:i], op.inputs[i+1:]...)
}

// setOutput is called by VarnodeBank.setDef; it is not exported
// because the output/def relationship must only change through the
// bank so both sides of the SSA invariant stay consistent.
func (op *PcodeOp) setOutput(vn *Varnode) {
	op.output = vn
}

func (op *PcodeOp) String() string {
	return fmt.Sprintf("%s %s", op.Seq, op.Opcode)
}
