package serialize

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/datatype"
	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/symbol"
)

// namedType is the minimal Datatype stand-in a decoded Symbol carries:
// resolving it into a real datatype.Datatype is the external type
// factory's job ;
// the wire format only needs a name and size to round-trip.
type namedType struct {
	name string
	size int
}

func (t namedType) Name() string         { return t.name }
func (t namedType) Size() int            { return t.size }
func (t namedType) Kind() datatype.Kind  { return datatype.KindUnknown }

// ScopeMap resolves parent-scope forward references during decode,
// mirroring BlockMap.
type ScopeMap struct {
	byID map[uint64]*symbol.Scope
}

// NewScopeMap returns an empty map.
func NewScopeMap() *ScopeMap {
	return &ScopeMap{byID: map[uint64]*symbol.Scope{}}
}

func (m *ScopeMap) register(s *symbol.Scope) { m.byID[s.ID] = s }

// Resolve looks up the scope registered under id.
func (m *ScopeMap) Resolve(id uint64) (*symbol.Scope, bool) {
	s, ok := m.byID[id]
	return s, ok
}

// EncodeScopeTree flattens the scope tree rooted at root into a
// <scopelist> of <scope> elements, each but root carrying a
// <parent id=.../> back-reference.
func EncodeScopeTree(root *symbol.Scope) *Element {
	list := NewElement("scopelist")
	var walk func(s *symbol.Scope)
	walk = func(s *symbol.Scope) {
		list.AddChild(encodeScope(s, root))
		for _, c := range s.Children() {
			walk(c)
		}
	}
	walk(root)
	return list
}

func encodeScope(s, root *symbol.Scope) *Element {
	e := NewElement("scope")
	e.SetAttr("name", s.Name)
	e.SetAttrHex("id", s.ID)
	if s.Parent != nil && s != root {
		p := NewElement("parent")
		p.SetAttrHex("id", s.Parent.ID)
		e.AddChild(p)
	}
	if !s.Owner.IsInvalid() {
		owner := NewElement("owner")
		EncodeAddress(owner, s.Owner)
		e.AddChild(owner)
	}
	e.AddChild(EncodeRangeList(s.Ownership))

	symlist := NewElement("symbollist")
	for _, entry := range s.Entries().All() {
		symlist.AddChild(encodeMapsym(entry))
	}
	for _, ds := range s.DynamicSymbols() {
		symlist.AddChild(encodeDynamicMapsym(ds))
	}
	e.AddChild(symlist)
	return e
}

func encodeMapsym(entry *symbol.SymbolEntry) *Element {
	m := NewElement("mapsym")
	sym := entry.Symbol
	se := NewElement("symbol")
	se.SetAttr("name", sym.Name)
	se.SetAttr("displayname", sym.DisplayName)
	se.SetAttr("category", sym.Category.String())
	se.SetAttrInt("dedup", int64(sym.Dedup))
	if sym.Type != nil {
		se.SetAttr("typename", sym.Type.Name())
		se.SetAttrHex("typesize", uint64(sym.Type.Size()))
	}
	se.SetAttrBool("namelock", sym.HasFlag(symbol.SymbolFlagNameLock))
	se.SetAttrBool("typelock", sym.HasFlag(symbol.SymbolFlagTypeLock))
	se.SetAttrBool("readonly", sym.HasFlag(symbol.SymbolFlagReadOnly))
	se.SetAttrBool("volatile", sym.HasFlag(symbol.SymbolFlagVolatile))
	m.AddChild(se)

	if entry.IsDynamic {
		h := NewElement("hash")
		h.SetAttrHex("val", entry.Hash)
		m.AddChild(h)
	} else {
		EncodeAddress(m, entry.Addr)
	}
	m.SetAttrHex("off", uint64(entry.ByteOffset))
	m.SetAttrHex("sz", uint64(entry.Size))
	m.SetAttrHex("extraflags", uint64(entry.ExtraFlags))
	m.AddChild(EncodeRangeList(entry.UseLimit))
	return m
}

func encodeDynamicMapsym(ds *symbol.DynamicSymbol) *Element {
	m := NewElement("mapsym")
	se := NewElement("symbol")
	se.SetAttr("name", ds.Symbol.Name)
	se.SetAttr("displayname", ds.Symbol.DisplayName)
	se.SetAttr("category", ds.Symbol.Category.String())
	se.SetAttrInt("dedup", int64(ds.Symbol.Dedup))
	if ds.Symbol.Type != nil {
		se.SetAttr("typename", ds.Symbol.Type.Name())
		se.SetAttrHex("typesize", uint64(ds.Symbol.Type.Size()))
	}
	m.AddChild(se)
	h := NewElement("hash")
	h.SetAttrHex("val", ds.Hash)
	m.AddChild(h)
	return m
}

// DecodeScopeTree reads a <scopelist> back into a Scope tree, doing
// the header pass (every scope created and registered by id) before
// the body pass (parent links and symbol tables resolved), so a
// <parent id=.../> naming a scope encoded later in the stream still
// resolves.
func DecodeScopeTree(e *Element, resolve SpaceResolver) (*symbol.Scope, error) {
	if e.Name != "scopelist" {
		return nil, errs.NewDecoder("scopelist", "expected <scopelist>, got <%s>", e.Name)
	}
	sm := NewScopeMap()
	scopeElems := e.FindChildren("scope")

	var root *symbol.Scope
	for _, se := range scopeElems {
		id, ok := se.AttrHex("id")
		if !ok {
			return nil, errs.NewDecoder("scope", "missing id attribute")
		}
		name, _ := se.Attr("name")
		s := symbol.NewDetachedScope(id, name)
		sm.register(s)
		if _, hasParent := se.FindChild("parent"); !hasParent {
			root = s
		}
	}
	if root == nil {
		return nil, errs.NewDecoder("scopelist", "no root scope (every <scope> had a <parent>)")
	}

	for _, se := range scopeElems {
		id, _ := se.AttrHex("id")
		s, _ := sm.Resolve(id)
		if p, ok := se.FindChild("parent"); ok {
			parentID, ok := p.AttrHex("id")
			if !ok {
				return nil, errs.NewDecoder("parent", "missing id attribute")
			}
			parent, ok := sm.Resolve(parentID)
			if !ok {
				return nil, errs.NewDecoder("parent", "unresolved forward reference to scope %d", parentID)
			}
			s.Attach(parent)
		}
		if ownerElem, ok := se.FindChild("owner"); ok {
			owner, err := DecodeAddress(ownerElem, resolve)
			if err != nil {
				return nil, err
			}
			s.Owner = owner
		}
		if rl, ok := se.FindChild("rangelist"); ok {
			ownership, err := DecodeRangeList(rl, resolve)
			if err != nil {
				return nil, err
			}
			s.Ownership = ownership
		}
		if symlist, ok := se.FindChild("symbollist"); ok {
			for _, m := range symlist.FindChildren("mapsym") {
				if err := decodeMapsymInto(s, m, resolve); err != nil {
					return nil, err
				}
			}
		}
	}
	return root, nil
}

func decodeMapsymInto(s *symbol.Scope, m *Element, resolve SpaceResolver) error {
	se, ok := m.FindChild("symbol")
	if !ok {
		return errs.NewDecoder("mapsym", "missing <symbol>")
	}
	name, _ := se.Attr("name")
	display, hasDisplay := se.Attr("displayname")
	if !hasDisplay {
		display = name
	}
	catName, _ := se.Attr("category")
	var dt datatype.Datatype
	if typeName, ok := se.Attr("typename"); ok {
		size, _ := se.AttrHex("typesize")
		dt = namedType{name: typeName, size: int(size)}
	}
	sym := symbol.NewSymbol(name, dt, categoryFromWire(catName))
	sym.DisplayName = display
	if dedup, ok := se.AttrInt("dedup"); ok {
		s.AddSymbol(sym, int(dedup))
	} else {
		s.AddSymbol(sym, 0)
	}
	if se.AttrBool("namelock") {
		sym.SetFlag(symbol.SymbolFlagNameLock)
	}
	if se.AttrBool("typelock") {
		sym.SetFlag(symbol.SymbolFlagTypeLock)
	}
	if se.AttrBool("readonly") {
		sym.SetFlag(symbol.SymbolFlagReadOnly)
	}
	if se.AttrBool("volatile") {
		sym.SetFlag(symbol.SymbolFlagVolatile)
	}

	if h, ok := m.FindChild("hash"); ok {
		val, _ := h.AttrHex("val")
		s.AddDynamicSymbolWithHash(sym, val)
		return nil
	}

	a, err := DecodeAddress(m, resolve)
	if err != nil {
		return err
	}
	off, _ := m.AttrHex("off")
	sz, _ := m.AttrHex("sz")
	extra, _ := m.AttrHex("extraflags")
	entry := &symbol.SymbolEntry{
		Symbol:     sym,
		Addr:       a,
		ByteOffset: int(off),
		Size:       int(sz),
		ExtraFlags: uint32(extra),
		UseLimit:   addr.NewRangeList(),
	}
	if rl, ok := m.FindChild("rangelist"); ok {
		ul, err := DecodeRangeList(rl, resolve)
		if err != nil {
			return err
		}
		entry.UseLimit = ul
	}
	return s.AddEntry(entry)
}

func categoryFromWire(s string) symbol.Category {
	switch s {
	case "function-parameter":
		return symbol.CategoryFunctionParameter
	case "equate":
		return symbol.CategoryEquate
	case "union-facet":
		return symbol.CategoryUnionFacet
	case "fake-input":
		return symbol.CategoryFakeInput
	default:
		return symbol.CategoryNone
	}
}
