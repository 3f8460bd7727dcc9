package serialize

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
)

// SpaceResolver looks up an address space by name, the way a real
// Translate/AddressSpaceManager would on decode.
type SpaceResolver func(name string) (*addr.Space, bool)

// EncodeAddress writes a's (space, offset) onto e as <addr
// space=... offset=.../>.
func EncodeAddress(parent *Element, a addr.Address) {
	e := NewElement("addr")
	if a.Space != nil {
		e.SetAttr("space", a.Space.Name)
	}
	e.SetAttrHex("offset", a.Offset)
	parent.AddChild(e)
}

// DecodeAddress reads the first <addr> child of parent.
func DecodeAddress(parent *Element, resolve SpaceResolver) (addr.Address, error) {
	e, ok := parent.FindChild("addr")
	if !ok {
		return addr.Invalid, errs.NewDecoder("addr", "missing <addr> element under <%s>", parent.Name)
	}
	spaceName, _ := e.Attr("space")
	sp, ok := resolve(spaceName)
	if !ok {
		return addr.Invalid, errs.NewDecoder("addr", "unknown space %q", spaceName)
	}
	off, ok := e.AttrHex("offset")
	if !ok {
		return addr.Invalid, errs.NewDecoder("addr", "missing/malformed offset attribute")
	}
	return addr.Address{Space: sp, Offset: off}, nil
}

// EncodeRange writes r as <range space=... first=... last=.../>.
func EncodeRange(parent *Element, r addr.Range) {
	e := NewElement("range")
	if r.Space != nil {
		e.SetAttr("space", r.Space.Name)
	}
	e.SetAttrHex("first", r.First)
	e.SetAttrHex("last", r.Last)
	parent.AddChild(e)
}

// EncodeRangeList writes rl as <rangelist> wrapping one <range> per
// stored entry.
func EncodeRangeList(rl *addr.RangeList) *Element {
	e := NewElement("rangelist")
	for _, r := range rl.Ranges() {
		EncodeRange(e, r)
	}
	return e
}

// DecodeRangeList reads a <rangelist> element back into a RangeList.
func DecodeRangeList(e *Element, resolve SpaceResolver) (*addr.RangeList, error) {
	if e.Name != "rangelist" {
		return nil, errs.NewDecoder("rangelist", "expected <rangelist>, got <%s>", e.Name)
	}
	rl := addr.NewRangeList()
	for _, c := range e.FindChildren("range") {
		spaceName, _ := c.Attr("space")
		sp, ok := resolve(spaceName)
		if !ok {
			return nil, errs.NewDecoder("range", "unknown space %q", spaceName)
		}
		first, ok1 := c.AttrHex("first")
		last, ok2 := c.AttrHex("last")
		if !ok1 || !ok2 {
			return nil, errs.NewDecoder("range", "missing/malformed first/last")
		}
		rl.InsertRange(addr.Range{Space: sp, First: first, Last: last})
	}
	return rl, nil
}
