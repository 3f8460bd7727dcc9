// Package addr implements the address-space and address-range
// primitives of the p-code IR: spaces, addresses, inclusive ranges,
// and ordered disjoint range lists.
package addr

import "fmt"

// SpaceType tags the kind of storage an address space represents.
type SpaceType int

const (
	TypeConstant SpaceType = iota
	TypeRAM
	TypeRegister
	TypeUnique
	TypeJoin
	TypeIOP
	TypeFSpec
	TypeInternal
)

func (t SpaceType) String() string {
	switch t {
	case TypeConstant:
		return "constant"
	case TypeRAM:
		return "ram"
	case TypeRegister:
		return "register"
	case TypeUnique:
		return "unique"
	case TypeJoin:
		return "join"
	case TypeIOP:
		return "iop"
	case TypeFSpec:
		return "fspec"
	case TypeInternal:
		return "internal"
	default:
		return fmt.Sprintf("spacetype(%d)", int(t))
	}
}

// Space is an address space: a named, ordered, typed container of
// storage locations. The constant "space" encodes immediates; "join"
// encodes pseudo-addresses referring to multi-piece storage records;
// "unique" is freely-allocated scratch space.
type Space struct {
	Name      string
	Type      SpaceType
	WordSize  int
	AddrSize  int
	BigEndian bool
	// Index is this space's ordered position among all spaces known
	// to the owning Translate/AddressSpaceManager.
	Index int
}

// NewSpace constructs a Space. WordSize and AddrSize are in bytes.
func NewSpace(name string, typ SpaceType, wordSize, addrSize int, bigEndian bool, index int) *Space {
	return &Space{
		Name:      name,
		Type:      typ,
		WordSize:  wordSize,
		AddrSize:  addrSize,
		BigEndian: bigEndian,
		Index:     index,
	}
}

func (s *Space) String() string {
	if s == nil {
		return "<nil space>"
	}
	return s.Name
}
