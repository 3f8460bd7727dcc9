package symbol

import (
	"fmt"

	"github.com/decompcore/pcodeir/addr"
)

// StorageKind discriminates the storage shapes buildVariableName
// templates differently.
type StorageKind int

const (
	StorageParameter StorageKind = iota
	StorageUnaffected
	StorageExtraOut
	StorageRaw
	StorageGeneric
	StorageInput
)

// BuildVariableName produces the deterministic default name for a
// storage location: param_N, unaff_<reg>, extraout_<reg>, <space><hex>,
// <prefix>Var<N>, or in_<space>_<hex>, depending on kind. regName is
// the register name (StorageUnaffected/StorageExtraOut), prefix is
// used for StorageGeneric, and index is indexInOut / N depending on
// kind.
func BuildVariableName(kind StorageKind, a addr.Address, regName, prefix string, index int) string {
	switch kind {
	case StorageParameter:
		return fmt.Sprintf("param_%d", index)
	case StorageUnaffected:
		return fmt.Sprintf("unaff_%s", regName)
	case StorageExtraOut:
		return fmt.Sprintf("extraout_%s", regName)
	case StorageInput:
		return fmt.Sprintf("in_%s_%x", spaceName(a.Space), a.Offset)
	case StorageGeneric:
		return fmt.Sprintf("%sVar%d", prefix, index)
	case StorageRaw:
		fallthrough
	default:
		return fmt.Sprintf("%s%x", spaceName(a.Space), a.Offset)
	}
}

func spaceName(s *addr.Space) string {
	if s == nil {
		return ""
	}
	return s.Name
}

// BuildUndefinedName yields a monotone-per-scope placeholder name of
// the form "$$undef<8hex>".
func (s *Scope) BuildUndefinedName() string {
	s.undefSeed++
	return fmt.Sprintf("$$undef%08x", s.undefSeed)
}

// Dedupe resolves a collision between a freshly generated name and one
// already registered in s, by appending "_NN" for the first 99
// collisions and then "_xNNNNN" beyond that.
func (s *Scope) Dedupe(name string) string {
	if _, taken := s.SymbolByName(name, 0); !taken {
		return name
	}
	for n := 1; n < 100; n++ {
		cand := fmt.Sprintf("%s_%02d", name, n)
		if _, taken := s.SymbolByName(cand, 0); !taken {
			return cand
		}
	}
	for n := 100; ; n++ {
		cand := fmt.Sprintf("%s_x%05d", name, n)
		if _, taken := s.SymbolByName(cand, 0); !taken {
			return cand
		}
	}
}
