package symbol

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
	rbt "github.com/emirpasic/gods/trees/redblacktree"
)

// SymbolEntry is one storage mapping of a Symbol : a Symbol may have several,
// e.g. the low-piece and high-piece of a 64-bit value split across two
// 32-bit registers.
type SymbolEntry struct {
	Symbol *Symbol

	Addr addr.Address
	Hash uint64 // set instead of Addr for a dynamic mapping
	IsDynamic bool

	ByteOffset int // offset of this piece within Symbol
	Size       int // byte size of this piece

	ExtraFlags uint32

	// UseLimit narrows the code addresses where this entry applies; an
	// empty UseLimit means "always valid".
	UseLimit *addr.RangeList

	subsort int
}

func (e *SymbolEntry) last() uint64 {
	return e.Addr.Offset + uint64(e.Size) - 1
}

// entryKey is the (space, first, last, subsort) ordering key the
// EntryMap rangemap sorts on.
type entryKey struct {
	space   int
	first   uint64
	last    uint64
	subsort int
}

func entryKeyOf(e *SymbolEntry) entryKey {
	sp := -1
	if e.Addr.Space != nil {
		sp = e.Addr.Space.Index
	}
	return entryKey{space: sp, first: e.Addr.Offset, last: e.last(), subsort: e.subsort}
}

func compareEntryKey(a, b interface{}) int {
	ak, bk := a.(entryKey), b.(entryKey)
	switch {
	case ak.space != bk.space:
		return ak.space - bk.space
	case ak.first != bk.first:
		if ak.first < bk.first {
			return -1
		}
		return 1
	case ak.last != bk.last:
		if ak.last < bk.last {
			return -1
		}
		return 1
	default:
		return ak.subsort - bk.subsort
	}
}

// EntryMap is a per-space rangemap of SymbolEntry records, keyed by
// (space, first, last, subsort) and backed by a red-black tree for
// deterministic ascending iteration.
type EntryMap struct {
	tree    *rbt.Tree
	nextSub int
}

// NewEntryMap returns an empty EntryMap.
func NewEntryMap() *EntryMap {
	return &EntryMap{tree: rbt.NewWith(compareEntryKey)}
}

// Insert adds entry to the map, assigning it the next subsort value.
func (m *EntryMap) Insert(entry *SymbolEntry) error {
	if entry.Size <= 0 && !entry.IsDynamic {
		return errs.NewLowLevel("symbol entry for %q has non-positive size %d", entry.Symbol.Name, entry.Size)
	}
	entry.subsort = m.nextSub
	m.nextSub++
	m.tree.Put(entryKeyOf(entry), entry)
	return nil
}

// Remove deletes entry from the map.
func (m *EntryMap) Remove(entry *SymbolEntry) {
	m.tree.Remove(entryKeyOf(entry))
}

// Overlapping returns every entry in the given space whose [first,last]
// range overlaps a, in ascending (first, last, subsort) order.
func (m *EntryMap) Overlapping(a addr.Address) []*SymbolEntry {
	sp := -1
	if a.Space != nil {
		sp = a.Space.Index
	}
	var out []*SymbolEntry
	it := m.tree.Iterator()
	for it.Next() {
		k := it.Key().(entryKey)
		if k.space != sp {
			continue
		}
		if a.Offset >= k.first && a.Offset <= k.last {
			out = append(out, it.Value().(*SymbolEntry))
		}
	}
	return out
}

// All returns every entry in ascending key order.
func (m *EntryMap) All() []*SymbolEntry {
	out := make([]*SymbolEntry, 0, m.tree.Size())
	it := m.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*SymbolEntry))
	}
	return out
}

// Size returns the number of entries stored.
func (m *EntryMap) Size() int { return m.tree.Size() }
