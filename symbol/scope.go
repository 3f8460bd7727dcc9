// Package symbol implements the scope tree, symbol/storage-mapping
// layer, property-range partition map, name generation, and string
// cache that sit above the p-code IR.
package symbol

import (
	"hash/crc64"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
)

var crcTable = crc64.MakeTable(crc64.ISO)

// DeriveID deterministically hashes a parent scope id with a child
// name into a new scope id, so a scope's id is reproducible from its
// position in the tree without needing to be stored explicitly.
func DeriveID(parent uint64, name string) uint64 {
	buf := make([]byte, 8+len(name))
	for i := 0; i < 8; i++ {
		buf[i] = byte(parent >> (8 * uint(i)))
	}
	copy(buf[8:], name)
	return crc64.Checksum(buf, crcTable)
}

// Scope is a node in the scope tree: a named container of Symbols,
// optionally owning a function, with an ownership RangeList over the
// addresses it is responsible for mapping.
type Scope struct {
	ID     uint64
	Name   string
	Parent *Scope

	children map[uint64]*Scope

	// Owner is the owning function's entry address, or addr.Invalid
	// for a pure namespace scope.
	Owner addr.Address

	Ownership *addr.RangeList

	byName    map[nameKey]*Symbol
	entries   *EntryMap
	multiSet  map[*Symbol]bool
	dynamics  []*DynamicSymbol
	hasher    DynamicHasher
	undefSeed uint32
}

type nameKey struct {
	name  string
	dedup int
}

// NewGlobalScope returns the root of a scope tree, with id 0.
func NewGlobalScope(name string) *Scope {
	return newScope(0, name, nil)
}

// NewChild attaches a new child scope named name under s, deriving its
// id from DeriveID(s.ID, name) unless explicitID is non-zero. If a
// child with the resulting id already exists, it is replaced.
func (s *Scope) NewChild(name string, explicitID uint64) *Scope {
	id := explicitID
	if id == 0 {
		id = DeriveID(s.ID, name)
	}
	child := newScope(id, name, s)
	if old, ok := s.children[id]; ok {
		logger.Printf("scope %d: id collision on attach of %q, replacing stale scope %q", s.ID, name, old.Name)
	}
	s.children[id] = child
	return child
}

func newScope(id uint64, name string, parent *Scope) *Scope {
	return &Scope{
		ID:        id,
		Name:      name,
		Parent:    parent,
		children:  map[uint64]*Scope{},
		Owner:     addr.Invalid,
		Ownership: addr.NewRangeList(),
		byName:    map[nameKey]*Symbol{},
		entries:   NewEntryMap(),
		multiSet:  map[*Symbol]bool{},
		hasher:    xxhashDynamicHasher{},
	}
}

// NewDetachedScope constructs a Scope with a caller-supplied id and no
// parent, for use by a decoder's header pass before the parent
// reference can be resolved. Attach links it into a parent afterward.
func NewDetachedScope(id uint64, name string) *Scope {
	return newScope(id, name, nil)
}

// Attach links s into parent's child set, replacing any existing
// child with the same id.
func (s *Scope) Attach(parent *Scope) {
	s.Parent = parent
	if old, ok := parent.children[s.ID]; ok {
		logger.Printf("scope %d: id collision on attach of %q, replacing stale scope %q", parent.ID, s.Name, old.Name)
	}
	parent.children[s.ID] = s
}

// Children returns s's child scopes in no particular order.
func (s *Scope) Children() []*Scope {
	out := make([]*Scope, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	return out
}

// ChildByID looks up a direct child by id.
func (s *Scope) ChildByID(id uint64) (*Scope, bool) {
	c, ok := s.children[id]
	return c, ok
}

// Detach removes s from its parent's child set, releasing ownership of
// every Symbol and child Scope it owns.
func (s *Scope) Detach() {
	if s.Parent == nil {
		return
	}
	delete(s.Parent.children, s.ID)
	s.Parent = nil
}

// AddSymbol registers sym under (name, dedup) in s's local symbol
// table. dedup distinguishes multiple same-named symbols.
func (s *Scope) AddSymbol(sym *Symbol, dedup int) {
	sym.Scope = s
	sym.Dedup = dedup
	s.byName[nameKey{sym.Name, dedup}] = sym
}

// SymbolByName looks up a symbol registered directly in s (not
// walking ancestors; that is QueryByName's job).
func (s *Scope) SymbolByName(name string, dedup int) (*Symbol, bool) {
	sym, ok := s.byName[nameKey{name, dedup}]
	return sym, ok
}

// Symbols returns every symbol registered directly in s (not
// descendant scopes), in no particular order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.byName))
	for _, sym := range s.byName {
		out = append(out, sym)
	}
	return out
}

// Entries returns s's EntryMap, for callers (e.g. serialize) that need
// to walk every storage mapping directly.
func (s *Scope) Entries() *EntryMap { return s.entries }

// AddEntry inserts a storage mapping for sym into s's EntryMap, and
// tracks sym in the multi-entry set once it has >=2 whole entries
func (s *Scope) AddEntry(entry *SymbolEntry) error {
	if err := s.entries.Insert(entry); err != nil {
		return err
	}
	if entry.Symbol.IsWhole(entry.Size) {
		entry.Symbol.wholeCount++
		if entry.Symbol.wholeCount >= 2 {
			s.multiSet[entry.Symbol] = true
		}
	}
	return nil
}

// MultiEntrySymbols returns every symbol in s with >=2 whole entries.
func (s *Scope) MultiEntrySymbols() []*Symbol {
	out := make([]*Symbol, 0, len(s.multiSet))
	for sym := range s.multiSet {
		out = append(out, sym)
	}
	return out
}

// AddDynamicSymbol registers a dynamically-addressed symbol : no static address, identified by a 64-bit hash
// computed by s's DynamicHasher.
func (s *Scope) AddDynamicSymbol(sym *Symbol, seed []byte) *DynamicSymbol {
	return s.AddDynamicSymbolWithHash(sym, s.hasher.Hash(seed))
}

// AddDynamicSymbolWithHash registers a dynamic symbol under an
// already-computed hash, for a decoder that read the hash off the wire
// instead of recomputing it from a seed.
func (s *Scope) AddDynamicSymbolWithHash(sym *Symbol, hash uint64) *DynamicSymbol {
	ds := &DynamicSymbol{Symbol: sym, Hash: hash}
	s.dynamics = append(s.dynamics, ds)
	return ds
}

// DynamicSymbols returns every dynamic symbol registered in s.
func (s *Scope) DynamicSymbols() []*DynamicSymbol {
	return s.dynamics
}

// SetDynamicHasher overrides the default xxhash-based hasher.
func (s *Scope) SetDynamicHasher(h DynamicHasher) {
	s.hasher = h
}

// errScopeNotFound is returned by lookups that walk to the root
// without finding anything.
var errScopeNotFound = errs.NewLowLevel("no scope owns the given address")
