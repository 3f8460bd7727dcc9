package symbol

import "github.com/decompcore/pcodeir/addr"

// ExtraFlag bits live on SymbolEntry.ExtraFlags.
const (
	ExtraFlagLabel uint32 = 1 << iota
	ExtraFlagExternalRef
)

// MapScope narrows from root to the lowest descendant Scope whose
// Ownership range includes a. If no descendant's ownership covers a,
// root itself is returned.
func MapScope(root *Scope, a addr.Address) *Scope {
	best := root
	var descend func(s *Scope)
	descend = func(s *Scope) {
		for _, c := range s.children {
			if c.Ownership.Contains(a) {
				best = c
				descend(c)
			}
		}
	}
	descend(root)
	return best
}

// QueryByAddr resolves a at code address usepoint, starting the
// mapScope narrowing from root and then consulting each scope from
// the narrowest upward until a hit. usepoint may be addr.Invalid to
// mean "any use point". The scope is always returned (even with a nil
// entry) per the two-valued return (see "Usepoint" in the glossary).
func QueryByAddr(root *Scope, a addr.Address, usepoint addr.Address) (*Scope, *SymbolEntry) {
	start := MapScope(root, a)
	for s := start; s != nil; s = s.Parent {
		if best := bestEntry(s, a, usepoint); best != nil {
			return s, best
		}
	}
	return start, nil
}

func bestEntry(s *Scope, a addr.Address, usepoint addr.Address) *SymbolEntry {
	var best *SymbolEntry
	for _, e := range s.entries.Overlapping(a) {
		if !usepoint.IsInvalid() && e.UseLimit.Len() > 0 && !e.UseLimit.Contains(usepoint) {
			continue
		}
		if best == nil || e.Size < best.Size {
			best = e
		}
	}
	return best
}

// QueryContainer returns the smallest enclosing Symbol whose storage
// covers a, searching root and its descendants the same way
// QueryByAddr does.
func QueryContainer(root *Scope, a addr.Address, usepoint addr.Address) (*Scope, *SymbolEntry) {
	return QueryByAddr(root, a, usepoint)
}

// QueryFunction finds the scope owning the function whose entry
// address is owner, walking root's descendants.
func QueryFunction(root *Scope, owner addr.Address) (*Scope, bool) {
	if root.Owner.Equal(owner) {
		return root, true
	}
	for _, c := range root.children {
		if s, ok := QueryFunction(c, owner); ok {
			return s, true
		}
	}
	return nil, false
}

// QueryCodeLabel finds the label symbol entry at a, distinguished by
// ExtraFlagLabel.
func QueryCodeLabel(root *Scope, a addr.Address) (*Scope, *SymbolEntry) {
	start := MapScope(root, a)
	for s := start; s != nil; s = s.Parent {
		for _, e := range s.entries.Overlapping(a) {
			if e.ExtraFlags&ExtraFlagLabel != 0 {
				return s, e
			}
		}
	}
	return start, nil
}

// QueryExternalRefFunction finds the external-reference function
// symbol entry at a, distinguished by ExtraFlagExternalRef.
func QueryExternalRefFunction(root *Scope, a addr.Address) (*Scope, *SymbolEntry) {
	start := MapScope(root, a)
	for s := start; s != nil; s = s.Parent {
		for _, e := range s.entries.Overlapping(a) {
			if e.ExtraFlags&ExtraFlagExternalRef != 0 {
				return s, e
			}
		}
	}
	return start, nil
}

// QueryByName resolves name starting at scope s and walking up to the
// root, returning the first scope that has a local symbol by that name
// at dedup 0.
func QueryByName(s *Scope, name string) (*Scope, *Symbol) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.SymbolByName(name, 0); ok {
			return cur, sym
		}
	}
	return nil, nil
}

// StackAddr mirrors Scope::stackAddr: it reports whether the given
// storage address is reachable from s's scope chain and, if a specific
// Symbol is mapped there, returns it. A non-nil scope with a nil entry
// means "ownership reached here, but no specific symbol" — the
// two-valued shape must be preserved, not collapsed.
func StackAddr(root *Scope, a addr.Address) (*Scope, *SymbolEntry) {
	return QueryByAddr(root, a, addr.Invalid)
}
