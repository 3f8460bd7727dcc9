// Package flow implements the control-flow block hierarchy: the
// plain/copy/goto/list/if/condition/while/dowhile/infloop/switch/
// multigoto variants, their edges, and the mutation primitives the
// structuring engine drives.
package flow

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/decompcore/pcodeir/ir"
)

// Kind discriminates the FlowBlock variants. Rather than deep
// inheritance, each variant is the same Block struct with Kind
// selecting which of the variant-specific fields below are live —
// the flat, tagged-variant re-architecture that avoids the deep
// inheritance hierarchy a class-based FlowBlock implementation would use.
type Kind int

const (
	KindPlain Kind = iota
	KindCopy       // leaf wrapping an *ir.BasicBlock
	KindGraph      // generic composite, used internally during collapse
	KindGoto
	KindMultiGoto
	KindList
	KindCondition
	KindIf
	KindWhileDo
	KindDoWhile
	KindInfLoop
	KindSwitch
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindCopy:
		return "copy"
	case KindGraph:
		return "graph"
	case KindGoto:
		return "goto"
	case KindMultiGoto:
		return "multigoto"
	case KindList:
		return "list"
	case KindCondition:
		return "condition"
	case KindIf:
		return "if"
	case KindWhileDo:
		return "whiledo"
	case KindDoWhile:
		return "dowhile"
	case KindInfLoop:
		return "infloop"
	case KindSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// BlockEdge is one half of a doubly-represented edge.
type BlockEdge struct {
	Point        *Block
	labelBits    uint32
	ReverseIndex int
}

func (e *BlockEdge) HasLabel(l ir.EdgeLabel) bool { return e.labelBits&(1<<uint(l)) != 0 }
func (e *BlockEdge) SetLabel(l ir.EdgeLabel)      { e.labelBits |= 1 << uint(l) }
func (e *BlockEdge) ClearLabel(l ir.EdgeLabel)    { e.labelBits &^= 1 << uint(l) }
func (e *BlockEdge) OrLabels(o *BlockEdge)        { e.labelBits |= o.labelBits }

// CaseOrder records one case label of a BlockSwitch.
type CaseOrder struct {
	Value    int64
	Chain    int // fall-through chain id, -1 if none
	Depth    int
	Exit     bool
	Default  bool
	GotoType bool
	Block    *Block
}

// JumpTable is the passive handle populated by an external jump-table
// analyzer and consumed here only to drive the Switch collapse rule
type JumpTable struct {
	Addr  ir.SeqNum
	Cases []CaseOrder
}

// Block is a node of the control-flow hierarchy.
type Block struct {
	Kind Kind

	Index      int
	Visitcount int
	Numdesc    int
	ImmedDom   *Block
	Copymap    *Block // back-pointer used while iterating a mirror

	Intothis  []*BlockEdge
	Outofthis []*BlockEdge

	flags *bitset.BitSet

	// Leaf payload (KindCopy).
	Basic *ir.BasicBlock

	// Composite payload (graph/goto/list/if/whiledo/dowhile/infloop/
	// switch/condition/multigoto): ordered children, the way
	// BlockGraph-derived variants own "an ordered list of child
	// blocks".
	Children []*Block

	// KindIf / KindGoto / KindMultiGoto.
	GotoTargets []*Block

	// KindCondition: AND (true) or OR (false) — "Discriminates AND vs.
	// OR by which successor of the first feeds the second".
	ConditionIsAnd bool

	// KindSwitch.
	Table *JumpTable

	// Set by finalTransform when a WhileDo is recognized as a for-loop
	IterateOp    *ir.PcodeOp
	InitializeOp *ir.PcodeOp
}

// NewBlock returns an empty Block of the given kind.
func NewBlock(kind Kind) *Block {
	return &Block{Kind: kind, flags: bitset.New(uint(ir.BlockFlagMark2) + 1)}
}

// NewCopy wraps bb as a KindCopy leaf.
func NewCopy(bb *ir.BasicBlock) *Block {
	b := NewBlock(KindCopy)
	b.Basic = bb
	return b
}

func (b *Block) HasFlag(f ir.BlockFlag) bool { return b.flags.Test(uint(f)) }
func (b *Block) SetFlag(f ir.BlockFlag)      { b.flags.Set(uint(f)) }
func (b *Block) ClearFlag(f ir.BlockFlag)    { b.flags.Clear(uint(f)) }

// NumIn/NumOut return the current edge counts.
func (b *Block) NumIn() int  { return len(b.Intothis) }
func (b *Block) NumOut() int { return len(b.Outofthis) }

// FalseOut/TrueOut return the two successors of a 2-out conditional
// block, where outofthis[0] is false and outofthis[1] is true.
func (b *Block) FalseOut() *Block {
	if len(b.Outofthis) < 2 {
		return nil
	}
	return b.Outofthis[0].Point
}

func (b *Block) TrueOut() *Block {
	if len(b.Outofthis) < 2 {
		return nil
	}
	return b.Outofthis[1].Point
}

// LastOp returns the final p-code op of the block's representative
// leaf, descending into the last child of a composite (the "virtual"
// "last_op" virtual operation of the FlowBlock interface).
func (b *Block) LastOp() *ir.PcodeOp {
	switch b.Kind {
	case KindCopy:
		return b.Basic.LastOp()
	default:
		if len(b.Children) == 0 {
			return nil
		}
		return b.Children[len(b.Children)-1].LastOp()
	}
}

// ExitLeaf returns the leaf block structurally exited when control
// leaves this composite, defaulting to the last child.
func (b *Block) ExitLeaf() *Block {
	if b.Kind == KindCopy || len(b.Children) == 0 {
		return b
	}
	return b.Children[len(b.Children)-1].ExitLeaf()
}
