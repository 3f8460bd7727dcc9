package serialize

import (
	"strings"

	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

var wireLabels = []struct {
	name  string
	label ir.EdgeLabel
}{
	{"goto", ir.EdgeLabelGoto},
	{"loop", ir.EdgeLabelLoop},
	{"default", ir.EdgeLabelDefaultSwitch},
	{"irreducible", ir.EdgeLabelIrreducible},
	{"tree", ir.EdgeLabelTree},
	{"forward", ir.EdgeLabelForward},
	{"cross", ir.EdgeLabelCross},
	{"back", ir.EdgeLabelBack},
	{"loopexit", ir.EdgeLabelLoopExit},
}

func encodeLabels(e *flow.BlockEdge) string {
	var names []string
	for _, wl := range wireLabels {
		if e.HasLabel(wl.label) {
			names = append(names, wl.name)
		}
	}
	return strings.Join(names, " ")
}

func decodeLabels(s string) []ir.EdgeLabel {
	var out []ir.EdgeLabel
	for _, tok := range strings.Fields(s) {
		for _, wl := range wireLabels {
			if wl.name == tok {
				out = append(out, wl.label)
			}
		}
	}
	return out
}

// wireType maps a flow.Block's Kind (and, for KindIf, its structural
// shape) to the bhead type vocabulary: "plain|basic|copy|
// goto|multigoto|list|condition|ifgoto|properif|ifelse|whiledo|
// dowhile|infloop|switch". KindCopy (the mirror leaf, glossary
// "BlockCopy") always serializes as "basic": only a fully structured
// tree is ever encoded, so the leaves being written are the final
// basic-block representation, not a mid-structuring mirror.
func wireType(b *flow.Block) string {
	switch b.Kind {
	case flow.KindPlain:
		return "plain"
	case flow.KindCopy:
		return "basic"
	case flow.KindGraph, flow.KindList:
		return "list"
	case flow.KindGoto:
		return "goto"
	case flow.KindMultiGoto:
		return "multigoto"
	case flow.KindCondition:
		return "condition"
	case flow.KindIf:
		switch {
		case len(b.GotoTargets) > 0 && len(b.Children) <= 2:
			return "ifgoto"
		case len(b.Children) == 2:
			return "properif"
		default:
			return "ifelse"
		}
	case flow.KindWhileDo:
		return "whiledo"
	case flow.KindDoWhile:
		return "dowhile"
	case flow.KindInfLoop:
		return "infloop"
	case flow.KindSwitch:
		return "switch"
	default:
		return "plain"
	}
}

func kindFromWire(s string) flow.Kind {
	switch s {
	case "plain":
		return flow.KindPlain
	case "basic", "copy":
		return flow.KindCopy
	case "goto":
		return flow.KindGoto
	case "multigoto":
		return flow.KindMultiGoto
	case "list":
		return flow.KindList
	case "condition":
		return flow.KindCondition
	case "ifgoto", "properif", "ifelse":
		return flow.KindIf
	case "whiledo":
		return flow.KindWhileDo
	case "dowhile":
		return flow.KindDoWhile
	case "infloop":
		return flow.KindInfLoop
	case "switch":
		return flow.KindSwitch
	default:
		return flow.KindPlain
	}
}

// EncodeGraph writes the structured tree rooted at root as a nested
// <block>/<bhead>/<edge>/<target> stream.
func EncodeGraph(root *flow.Block) *Element {
	return encodeBlock(root)
}

func encodeBlock(b *flow.Block) *Element {
	be := NewElement("block")
	be.SetAttrHex("index", uint64(b.Index))

	bh := NewElement("bhead")
	bh.SetAttrHex("index", uint64(b.Index))
	bh.SetAttr("type", wireType(b))
	bh.SetAttrBool("entry", b.HasFlag(ir.BlockFlagEntryPoint))
	bh.SetAttrBool("switchout", b.HasFlag(ir.BlockFlagSwitchOut))
	bh.SetAttrBool("dead", b.HasFlag(ir.BlockFlagDead))
	bh.SetAttrBool("whiledooverflow", b.HasFlag(ir.BlockFlagWhileDoOverflow))
	bh.SetAttrBool("unstructuredtarg", b.HasFlag(ir.BlockFlagUnstructuredTarg))
	bh.SetAttrBool("conditionand", b.ConditionIsAnd)
	if b.Basic != nil {
		bh.SetAttrHex("biref", uint64(b.Basic.Index))
	}
	be.AddChild(bh)

	for _, e := range b.Outofthis {
		ee := NewElement("edge")
		ee.SetAttrHex("end", uint64(e.Point.Index))
		ee.SetAttrInt("rev", int64(e.ReverseIndex))
		ee.SetAttr("labels", encodeLabels(e))
		be.AddChild(ee)
	}

	for _, t := range b.GotoTargets {
		te := NewElement("target")
		te.SetAttrHex("index", uint64(t.Index))
		te.SetAttrInt("depth", 0)
		te.SetAttr("type", "goto")
		be.AddChild(te)
	}

	if b.Table != nil {
		be.AddChild(encodeSwitchTable(b.Table))
	}

	for _, c := range b.Children {
		be.AddChild(encodeBlock(c))
	}
	return be
}

func encodeSwitchTable(t *flow.JumpTable) *Element {
	e := NewElement("jumptable")
	EncodeAddress(e, t.Addr.Addr)
	e.SetAttrHex("order", uint64(t.Addr.Order))
	for _, c := range t.Cases {
		ce := NewElement("blockedge")
		ce.SetAttrInt("value", c.Value)
		ce.SetAttrInt("chain", int64(c.Chain))
		ce.SetAttrInt("depth", int64(c.Depth))
		ce.SetAttrBool("exit", c.Exit)
		ce.SetAttrBool("default", c.Default)
		ce.SetAttrBool("gototype", c.GotoType)
		if c.Block != nil {
			ce.SetAttrHex("index", uint64(c.Block.Index))
		}
		e.AddChild(ce)
	}
	return e
}

// DecodeGraph reads a <block> stream back into a flow.Block tree.
// leaves supplies the *ir.BasicBlock for every "basic"/"copy" leaf,
// keyed by BasicBlock.Index (the biref attribute) — reconstructing
// varnodes and ops from leaf blocks is VarnodeBank/op-store territory,
// outside this package's scope.
func DecodeGraph(e *Element, leaves map[int]*ir.BasicBlock, resolve SpaceResolver) (*flow.Block, error) {
	bm := NewBlockMap()
	root, err := decodeHeader(e, leaves, bm)
	if err != nil {
		return nil, err
	}
	if err := decodeBody(e, bm, resolve); err != nil {
		return nil, err
	}
	return root, nil
}

func decodeHeader(e *Element, leaves map[int]*ir.BasicBlock, bm *BlockMap) (*flow.Block, error) {
	if e.Name != "block" {
		return nil, errs.NewDecoder("block", "expected <block>, got <%s>", e.Name)
	}
	index, ok := e.AttrHex("index")
	if !ok {
		return nil, errs.NewDecoder("block", "missing index attribute")
	}
	bh, ok := e.FindChild("bhead")
	if !ok {
		return nil, errs.NewDecoder("block", "missing <bhead>")
	}
	typ, _ := bh.Attr("type")
	b := flow.NewBlock(kindFromWire(typ))
	b.Index = int(index)
	if bh.AttrBool("entry") {
		b.SetFlag(ir.BlockFlagEntryPoint)
	}
	if bh.AttrBool("switchout") {
		b.SetFlag(ir.BlockFlagSwitchOut)
	}
	if bh.AttrBool("dead") {
		b.SetFlag(ir.BlockFlagDead)
	}
	if bh.AttrBool("whiledooverflow") {
		b.SetFlag(ir.BlockFlagWhileDoOverflow)
	}
	if bh.AttrBool("unstructuredtarg") {
		b.SetFlag(ir.BlockFlagUnstructuredTarg)
	}
	b.ConditionIsAnd = bh.AttrBool("conditionand")
	if biref, ok := bh.AttrHex("biref"); ok {
		bb, found := leaves[int(biref)]
		if !found {
			return nil, errs.NewDecoder("bhead", "no basic block registered for biref %d", biref)
		}
		b.Basic = bb
	}
	bm.Register(b.Index, b)

	for _, ce := range e.FindChildren("block") {
		child, err := decodeHeader(ce, leaves, bm)
		if err != nil {
			return nil, err
		}
		b.Children = append(b.Children, child)
	}
	return b, nil
}

func decodeBody(e *Element, bm *BlockMap, resolve SpaceResolver) error {
	index, _ := e.AttrHex("index")
	b, ok := bm.Resolve(int(index))
	if !ok {
		return errs.NewDecoder("block", "internal: header for index %d not registered", index)
	}

	for _, ee := range e.FindChildren("edge") {
		endIdx, ok := ee.AttrHex("end")
		if !ok {
			return errs.NewDecoder("edge", "missing end attribute")
		}
		target, ok := bm.Resolve(int(endIdx))
		if !ok {
			return errs.NewDecoder("edge", "unresolved forward reference to block %d", endIdx)
		}
		labelsAttr, _ := ee.Attr("labels")
		addEdgeMultiLabel(b, target, decodeLabels(labelsAttr))
	}

	for _, te := range e.FindChildren("target") {
		idx, ok := te.AttrHex("index")
		if !ok {
			return errs.NewDecoder("target", "missing index attribute")
		}
		target, ok := bm.Resolve(int(idx))
		if !ok {
			return errs.NewDecoder("target", "unresolved forward reference to block %d", idx)
		}
		b.GotoTargets = append(b.GotoTargets, target)
	}

	if jt, ok := e.FindChild("jumptable"); ok {
		table, err := decodeSwitchTable(jt, bm, resolve)
		if err != nil {
			return err
		}
		b.Table = table
	}

	for _, ce := range e.FindChildren("block") {
		if err := decodeBody(ce, bm, resolve); err != nil {
			return err
		}
	}
	return nil
}

func decodeSwitchTable(e *Element, bm *BlockMap, resolve SpaceResolver) (*flow.JumpTable, error) {
	order, _ := e.AttrHex("order")
	a, err := DecodeAddress(e, resolve)
	if err != nil {
		return nil, err
	}
	t := &flow.JumpTable{Addr: ir.SeqNum{Addr: a, Order: uint32(order)}}
	for _, ce := range e.FindChildren("blockedge") {
		value, _ := ce.AttrInt("value")
		chain, _ := ce.AttrInt("chain")
		depth, _ := ce.AttrInt("depth")
		c := flow.CaseOrder{
			Value:    value,
			Chain:    int(chain),
			Depth:    int(depth),
			Exit:     ce.AttrBool("exit"),
			Default:  ce.AttrBool("default"),
			GotoType: ce.AttrBool("gototype"),
		}
		if idx, ok := ce.AttrHex("index"); ok {
			target, ok := bm.Resolve(int(idx))
			if !ok {
				return nil, errs.NewDecoder("blockedge", "unresolved forward reference to block %d", idx)
			}
			c.Block = target
		}
		t.Cases = append(t.Cases, c)
	}
	return t, nil
}

func addEdgeMultiLabel(from, to *flow.Block, labels []ir.EdgeLabel) {
	outEdge := &flow.BlockEdge{Point: to, ReverseIndex: len(to.Intothis)}
	inEdge := &flow.BlockEdge{Point: from, ReverseIndex: len(from.Outofthis)}
	for _, l := range labels {
		outEdge.SetLabel(l)
		inEdge.SetLabel(l)
	}
	from.Outofthis = append(from.Outofthis, outEdge)
	to.Intothis = append(to.Intothis, inEdge)
}
