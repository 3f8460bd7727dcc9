package serialize

import (
	"github.com/decompcore/pcodeir/ir"
)

// VarnodeRecord is the decoded shape of a <addr ref=.../> varnode
// element. It is a plain data record rather than
// an *ir.Varnode because materializing a varnode is VarnodeBank's job
// (Create/SetInput/SetDef establish the SSA invariants);
// the wire format only carries what the bank needs to reconstruct one.
type VarnodeRecord struct {
	Loc  AddressRecord
	Size int
	Ref  string // "free"|"constant"|"input"|"written", ir.VarnodeKind.String()

	Persists   bool
	AddrTied   bool
	Unaffected bool
	IsInput    bool
	Volatile   bool
	Grouped    bool
}

// AddressRecord is the decoded (space-name, offset) pair; the caller
// resolves SpaceName through its own Translate/AddressSpaceManager.
type AddressRecord struct {
	SpaceName string
	Offset    uint64
}

// EncodeVarnode writes vn as <addr space=... offset=... size=...
// ref=... persists=... addrtied=... unaff=... input=... volatile=...
// grp=.../>.
func EncodeVarnode(parent *Element, vn *ir.Varnode) {
	e := NewElement("addr")
	if vn.Loc.Space != nil {
		e.SetAttr("space", vn.Loc.Space.Name)
	}
	e.SetAttrHex("offset", vn.Loc.Offset)
	e.SetAttrHex("size", uint64(vn.Size))
	e.SetAttr("ref", vn.Kind().String())
	e.SetAttrBool("persists", vn.Flags.Has(ir.FlagPersist))
	e.SetAttrBool("addrtied", vn.Flags.Has(ir.FlagAddressTied))
	e.SetAttrBool("unaff", vn.Flags.Has(ir.FlagUnaffected))
	e.SetAttrBool("input", vn.Kind() == ir.KindInput)
	e.SetAttrBool("volatile", vn.Flags.Has(ir.FlagVolatile))
	e.SetAttrBool("grp", vn.Flags.Has(ir.FlagMapped))
	parent.AddChild(e)
}

// DecodeVarnode reads an <addr> element e into a VarnodeRecord.
func DecodeVarnode(e *Element) VarnodeRecord {
	size, _ := e.AttrHex("size")
	offset, _ := e.AttrHex("offset")
	spaceName, _ := e.Attr("space")
	ref, _ := e.Attr("ref")
	return VarnodeRecord{
		Loc:        AddressRecord{SpaceName: spaceName, Offset: offset},
		Size:       int(size),
		Ref:        ref,
		Persists:   e.AttrBool("persists"),
		AddrTied:   e.AttrBool("addrtied"),
		Unaffected: e.AttrBool("unaff"),
		IsInput:    e.AttrBool("input"),
		Volatile:   e.AttrBool("volatile"),
		Grouped:    e.AttrBool("grp"),
	}
}
