package addr

import "fmt"

// Address is a (space, offset) pair. Offsets are unsigned 64-bit.
type Address struct {
	Space  *Space
	Offset uint64
}

// Invalid reports the zero-value, no-space address used as a sentinel
// by external lifters when a load-image read is unmapped.
var Invalid = Address{}

// IsInvalid reports whether a has no backing space.
func (a Address) IsInvalid() bool {
	return a.Space == nil
}

// IsConstant reports whether a's space is the constant space, i.e. the
// offset itself is the immediate value.
func (a Address) IsConstant() bool {
	return a.Space != nil && a.Space.Type == TypeConstant
}

// Compare orders addresses first by space index, then by offset. It is
// the total, reproducible comparator every index-based structure needs.
func (a Address) Compare(b Address) int {
	ai, bi := spaceIndex(a.Space), spaceIndex(b.Space)
	if ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	default:
		return 0
	}
}

func spaceIndex(s *Space) int {
	if s == nil {
		return -1
	}
	return s.Index
}

// Equal reports whether a and b denote the same (space, offset).
func (a Address) Equal(b Address) bool {
	return a.Compare(b) == 0
}

// Add returns the address delta bytes past a, within the same space.
// Offsets wrap modulo 2^64, matching the unsigned arithmetic of the
// underlying machine.
func (a Address) Add(delta uint64) Address {
	return Address{Space: a.Space, Offset: a.Offset + delta}
}

func (a Address) String() string {
	if a.IsInvalid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s:%#x", a.Space.Name, a.Offset)
}
