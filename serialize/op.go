package serialize

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/ir"
)

// EncodeFunctionBody writes one function's ordered basic blocks as a
// <funcbody> element: a <varnodepool> of <vn id=...> entries holding
// every varnode that some op of blocks reads or writes (the shared
// identity every op's <in>/<out> reference resolves against; bank
// varnodes no op references are not written), followed by a
// <bblocklist> of <bblock> elements in block-index order.
func EncodeFunctionBody(blocks []*ir.BasicBlock) *Element {
	ids := map[*ir.Varnode]uint64{}
	var order []*ir.Varnode
	idOf := func(vn *ir.Varnode) uint64 {
		if vn == nil {
			return 0
		}
		if id, ok := ids[vn]; ok {
			return id
		}
		id := uint64(len(order) + 1)
		ids[vn] = id
		order = append(order, vn)
		return id
	}
	for _, bb := range blocks {
		for _, op := range bb.Ops() {
			idOf(op.Output())
			for _, in := range op.Inputs() {
				idOf(in)
			}
		}
	}

	root := NewElement("funcbody")
	pool := NewElement("varnodepool")
	for i, vn := range order {
		ve := NewElement("vn")
		ve.SetAttrHex("id", uint64(i+1))
		EncodeVarnode(ve, vn)
		pool.AddChild(ve)
	}
	root.AddChild(pool)

	blist := NewElement("bblocklist")
	for _, bb := range blocks {
		blist.AddChild(encodeBasicBlock(bb, idOf))
	}
	root.AddChild(blist)
	return root
}

func encodeBasicBlock(bb *ir.BasicBlock, idOf func(*ir.Varnode) uint64) *Element {
	e := NewElement("bblock")
	e.SetAttrHex("index", uint64(bb.Index))
	e.AddChild(EncodeRangeList(bb.Cover))
	for _, op := range bb.Ops() {
		oe := NewElement("op")
		oe.SetAttr("opcode", op.Opcode.String())
		EncodeAddress(oe, op.Seq.Addr)
		oe.SetAttrHex("order", uint64(op.Seq.Order))
		if out := op.Output(); out != nil {
			oute := NewElement("out")
			oute.SetAttrHex("ref", idOf(out))
			oe.AddChild(oute)
		}
		for _, in := range op.Inputs() {
			ine := NewElement("in")
			ine.SetAttrHex("ref", idOf(in))
			oe.AddChild(ine)
		}
		e.AddChild(oe)
	}
	return e
}

// DecodeFunctionBody reads a <funcbody> element back into an ordered
// slice of *ir.BasicBlock, materializing every varnode through bank so
// the VarnodeBank's two sorted indices (and SSA invariants) stay
// intact rather than being reconstructed by hand.
func DecodeFunctionBody(e *Element, bank *ir.VarnodeBank, resolve SpaceResolver) ([]*ir.BasicBlock, error) {
	if e.Name != "funcbody" {
		return nil, errs.NewDecoder("funcbody", "expected <funcbody>, got <%s>", e.Name)
	}
	pool, ok := e.FindChild("varnodepool")
	if !ok {
		return nil, errs.NewDecoder("funcbody", "missing <varnodepool>")
	}
	vnByID := map[uint64]*ir.Varnode{}
	for _, ve := range pool.FindChildren("vn") {
		id, ok := ve.AttrHex("id")
		if !ok {
			return nil, errs.NewDecoder("vn", "missing id attribute")
		}
		addrElem, ok := ve.FindChild("addr")
		if !ok {
			return nil, errs.NewDecoder("vn", "missing <addr>")
		}
		rec := DecodeVarnode(addrElem)
		sp, ok := resolve(rec.Loc.SpaceName)
		if !ok {
			return nil, errs.NewDecoder("vn", "unknown space %q", rec.Loc.SpaceName)
		}
		a := addr.Address{Space: sp, Offset: rec.Loc.Offset}
		vn := bank.Create(rec.Size, a, nil)
		switch rec.Ref {
		case "input":
			got, err := bank.SetInput(vn)
			if err != nil {
				return nil, err
			}
			vn = got
		case "constant":
			// Create already classifies a varnode at a constant-space
			// address as constant, by space type, not by an explicit
			// call.
		}
		applyVarnodeFlags(vn, rec)
		vnByID[id] = vn
	}

	blist, ok := e.FindChild("bblocklist")
	if !ok {
		return nil, errs.NewDecoder("funcbody", "missing <bblocklist>")
	}
	var blocks []*ir.BasicBlock
	for _, be := range blist.FindChildren("bblock") {
		bb, err := decodeBasicBlock(be, bank, vnByID, resolve)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, bb)
	}
	return blocks, nil
}

func applyVarnodeFlags(vn *ir.Varnode, rec VarnodeRecord) {
	if rec.Persists {
		vn.Flags.Set(ir.FlagPersist)
	}
	if rec.AddrTied {
		vn.Flags.Set(ir.FlagAddressTied)
	}
	if rec.Unaffected {
		vn.Flags.Set(ir.FlagUnaffected)
	}
	if rec.Volatile {
		vn.Flags.Set(ir.FlagVolatile)
	}
	if rec.Grouped {
		vn.Flags.Set(ir.FlagMapped)
	}
}

func decodeBasicBlock(e *Element, bank *ir.VarnodeBank, vnByID map[uint64]*ir.Varnode, resolve SpaceResolver) (*ir.BasicBlock, error) {
	index, ok := e.AttrHex("index")
	if !ok {
		return nil, errs.NewDecoder("bblock", "missing index attribute")
	}
	bb := ir.NewBasicBlock(int(index))
	if rl, ok := e.FindChild("rangelist"); ok {
		cover, err := DecodeRangeList(rl, resolve)
		if err != nil {
			return nil, err
		}
		bb.Cover = cover
	}
	for _, oe := range e.FindChildren("op") {
		op, err := decodeOp(oe, bank, vnByID, resolve)
		if err != nil {
			return nil, err
		}
		bb.InsertOp(op, -1)
	}
	return bb, nil
}

func decodeOp(e *Element, bank *ir.VarnodeBank, vnByID map[uint64]*ir.Varnode, resolve SpaceResolver) (*ir.PcodeOp, error) {
	opcodeName, ok := e.Attr("opcode")
	if !ok {
		return nil, errs.NewDecoder("op", "missing opcode attribute")
	}
	opcode, ok := ir.ParseOpcode(opcodeName)
	if !ok {
		return nil, errs.NewDecoder("op", "unknown opcode %q", opcodeName)
	}
	a, err := DecodeAddress(e, resolve)
	if err != nil {
		return nil, err
	}
	order, _ := e.AttrHex("order")
	seq := ir.SeqNum{Addr: a, Order: uint32(order)}

	op := ir.NewOp(opcode, seq, nil)
	for _, ine := range e.FindChildren("in") {
		ref, ok := ine.AttrHex("ref")
		if !ok {
			return nil, errs.NewDecoder("in", "missing ref attribute")
		}
		vn, ok := vnByID[ref]
		if !ok {
			return nil, errs.NewDecoder("in", "unresolved varnode ref %d", ref)
		}
		op.AppendInput(vn)
	}

	if oute, ok := e.FindChild("out"); ok {
		ref, ok := oute.AttrHex("ref")
		if !ok {
			return nil, errs.NewDecoder("out", "missing ref attribute")
		}
		vn, ok := vnByID[ref]
		if !ok {
			return nil, errs.NewDecoder("out", "unresolved varnode ref %d", ref)
		}
		if _, err := bank.SetDef(vn, op); err != nil {
			return nil, err
		}
	}
	return op, nil
}
