package symbol

import "github.com/decompcore/pcodeir/datatype"

// Category is the closed set of symbol categories.
type Category int

const (
	CategoryNone Category = iota
	CategoryFunctionParameter
	CategoryEquate
	CategoryUnionFacet
	CategoryFakeInput
)

func (c Category) String() string {
	switch c {
	case CategoryFunctionParameter:
		return "function-parameter"
	case CategoryEquate:
		return "equate"
	case CategoryUnionFacet:
		return "union-facet"
	case CategoryFakeInput:
		return "fake-input"
	default:
		return "no-category"
	}
}

// SymbolFlag mirrors the lock/visibility bits a Symbol shares with its
// backing Varnode(s).
type SymbolFlag uint

const (
	SymbolFlagNameLock SymbolFlag = iota
	SymbolFlagTypeLock
	SymbolFlagReadOnly
	SymbolFlagVolatile
	SymbolFlagIsolated
)

// Symbol is a named entity mapped to one or more storage locations via
// SymbolEntry records.
type Symbol struct {
	Name        string
	DisplayName string
	Type        datatype.Datatype
	Category    Category
	Dedup       int

	Scope *Scope

	flagBits   uint32
	wholeCount int
}

// NewSymbol constructs a Symbol with no entries and no scope; callers
// attach it via Scope.AddSymbol/AddEntry.
func NewSymbol(name string, dt datatype.Datatype, cat Category) *Symbol {
	return &Symbol{Name: name, DisplayName: name, Type: dt, Category: cat}
}

func (sym *Symbol) HasFlag(f SymbolFlag) bool { return sym.flagBits&(1<<uint(f)) != 0 }
func (sym *Symbol) SetFlag(f SymbolFlag)      { sym.flagBits |= 1 << uint(f) }
func (sym *Symbol) ClearFlag(f SymbolFlag)    { sym.flagBits &^= 1 << uint(f) }

// IsWhole reports whether a storage piece of the given byte size
// covers sym's entire data type.
func (sym *Symbol) IsWhole(size int) bool {
	if sym.Type == nil {
		return false
	}
	return sym.Type.Size() == size
}
