package ir

import (
	"fmt"

	"github.com/decompcore/pcodeir/addr"
)

// VarnodeKind is the primary definition mode of a Varnode. Exactly one
// of {Constant, Input, Written} is the mode for any Varnode attached to
// a VarnodeBank; Free means neither input nor written, i.e. not in SSA
type VarnodeKind int

const (
	KindFree VarnodeKind = iota
	KindConstant
	KindInput
	KindWritten
)

func (k VarnodeKind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindConstant:
		return "constant"
	case KindInput:
		return "input"
	case KindWritten:
		return "written"
	default:
		return "unknown"
	}
}

// CoverInterval is one (block, start, end) live-range piece of a
// Varnode's Cover.
type CoverInterval struct {
	Block *BasicBlock
	Start int // op index at which the varnode becomes live
	End   int // op index at which the varnode is last read, -1 = open
}

// Cover is the lazily-recomputed live range of a Varnode, expressed as
// a set of block-local intervals.
type Cover struct {
	Intervals []CoverInterval
	Dirty     bool
}

// Varnode is a typed, sized storage reference: the fundamental SSA
// value.
type Varnode struct {
	Loc  addr.Address
	Size int

	kind VarnodeKind

	def         *PcodeOp // defining op, set iff kind == KindWritten
	descendants []*PcodeOp

	Type     Datatype
	TempType Datatype
	Locked   bool

	Consumed uint64 // bits read by downstream consumers
	NZM      uint64 // bits known to be zero

	Flags Flags

	Symbol interface{} // back-reference to a *symbol.Symbol, set by the caller
	HighVar interface{}

	cover Cover

	// createIndex breaks ties among Free varnodes in both bank
	// indices.
	createIndex uint64
}

// Datatype is the minimal surface the IR needs from the external
// data-type factory.
type Datatype interface {
	Size() int
	Name() string
}

func (v *Varnode) String() string {
	return fmt.Sprintf("%s(%s):%d", v.Loc, v.kind, v.Size)
}

// Kind returns the varnode's current definition state.
func (v *Varnode) Kind() VarnodeKind { return v.kind }

// IsFree reports whether v is free (not in SSA).
func (v *Varnode) IsFree() bool { return v.kind == KindFree }

// Def returns the op defining v, or nil if v is not written.
func (v *Varnode) Def() *PcodeOp { return v.def }

// Descendants returns the ops reading v, in no particular order.
func (v *Varnode) Descendants() []*PcodeOp {
	return v.descendants
}

// CreateIndex is the monotonically increasing id assigned at creation,
// used to order Free varnodes deterministically.
func (v *Varnode) CreateIndex() uint64 { return v.createIndex }

// MarkCoverDirty flags v's cover for lazy recomputation.
func (v *Varnode) MarkCoverDirty() { v.cover.Dirty = true }

func (v *Varnode) addDescendant(op *PcodeOp) {
	v.descendants = append(v.descendants, op)
}

func (v *Varnode) removeDescendant(op *PcodeOp) {
	out := v.descendants[:0]
	for _, d := range v.descendants {
		if d != op {
			out = append(out, d)
		}
	}
	v.descendants = out
}
