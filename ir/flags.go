package ir

import "github.com/bits-and-blooms/bitset"

// VarnodeFlag is a bit position in a Varnode's property vector.
type VarnodeFlag uint

const (
	FlagAddressTied VarnodeFlag = iota
	FlagAddressForced
	FlagPersist
	FlagExternalRef
	FlagReadOnly
	FlagVolatile
	FlagSpacebase
	FlagReturnAddress
	FlagMapped
	FlagUnaffected
	FlagHiddenReturn
	FlagIndirectCreation
	FlagPreciseLow
	FlagPreciseHigh
	FlagIncidentalCopy
	FlagProtoPartial
	FlagAutoliveHold
	FlagDirectWrite
	FlagConstant
	FlagAnnotation
	FlagWritten
	FlagInput
	FlagInsert
	FlagMark
	FlagNameLock
	FlagTypeLock
)

// Flags is a fixed-purpose bit vector of VarnodeFlag bits.
type Flags struct {
	bits *bitset.BitSet
}

// NewFlags returns an empty flag vector.
func NewFlags() Flags {
	return Flags{bits: bitset.New(uint(FlagTypeLock) + 1)}
}

// Has reports whether f is set.
func (v Flags) Has(f VarnodeFlag) bool {
	if v.bits == nil {
		return false
	}
	return v.bits.Test(uint(f))
}

// Set turns f on and returns v for chaining.
func (v Flags) Set(f VarnodeFlag) Flags {
	v.bits.Set(uint(f))
	return v
}

// Clear turns f off and returns v for chaining.
func (v Flags) Clear(f VarnodeFlag) Flags {
	v.bits.Clear(uint(f))
	return v
}

// Clone returns an independent copy of v.
func (v Flags) Clone() Flags {
	return Flags{bits: v.bits.Clone()}
}

// OpFlag is a bit position in a PcodeOp's marker/control flag vector.
type OpFlag uint

const (
	OpFlagBranch OpFlag = iota
	OpFlagCall
	OpFlagMarker
	OpFlagFallthruTrue
	OpFlagBooleanFlip
	OpFlagMoveable
)

// BlockFlag is a bit position in a FlowBlock's flag vector.
type BlockFlag uint

const (
	BlockFlagEntryPoint BlockFlag = iota
	BlockFlagSwitchOut
	BlockFlagDead
	BlockFlagDoNothingLoop
	BlockFlagJoined
	BlockFlagDuplicate
	BlockFlagLabelBumpUp
	BlockFlagFlipPath
	BlockFlagWhileDoOverflow
	BlockFlagInteriorGotoIn
	BlockFlagInteriorGotoOut
	BlockFlagUnstructuredTarg
	BlockFlagMark
	BlockFlagMark2
)

// EdgeLabel is a bit position in a BlockEdge's label vector.
type EdgeLabel uint

const (
	EdgeLabelGoto EdgeLabel = iota
	EdgeLabelLoop
	EdgeLabelDefaultSwitch
	EdgeLabelIrreducible
	EdgeLabelTree
	EdgeLabelForward
	EdgeLabelCross
	EdgeLabelBack
	EdgeLabelLoopExit
)
