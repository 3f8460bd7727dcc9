// Package funcdata is the per-function glue layer: it owns one
// function's VarnodeBank, its ordered BasicBlocks, the structured
// flow.Block tree once Structure has run, and the local symbol.Scope
// mapping its storage. It is the top-level object a caller builds a
// function against and the unit the serialize package round-trips
package funcdata

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
	"github.com/decompcore/pcodeir/serialize"
	"github.com/decompcore/pcodeir/structure"
	"github.com/decompcore/pcodeir/symbol"
	"github.com/google/uuid"
)

// Function is one decompiled function's working set.
type Function struct {
	Name  string
	Entry addr.Address

	// DebugID correlates this Function's log lines across structuring
	// and serialization passes; it never appears on the wire.
	DebugID string

	Bank       *ir.VarnodeBank
	Scope      *symbol.Scope
	Properties *symbol.Flagbase
	blocks     []*ir.BasicBlock

	// Root is the structured control-flow tree; nil until Structure
	// succeeds.
	Root *flow.Block
}

// New returns an empty Function, with a fresh VarnodeBank allocating
// temporaries from uniqueSpace and a child scope of parent named after
// the function.
func New(name string, entry addr.Address, uniqueSpace *addr.Space, parent *symbol.Scope) *Function {
	f := &Function{
		Name:       name,
		Entry:      entry,
		DebugID:    uuid.NewString(),
		Bank:       ir.NewVarnodeBank(uniqueSpace),
		Properties: symbol.NewFlagbase(),
	}
	f.Scope = parent.NewChild(name, 0)
	f.Scope.Owner = entry
	logger.Printf("new function %q (%s) entry=%s", name, f.DebugID, entry)
	return f
}

// AddBasicBlock appends bb to the function's flat block list, in the
// order Structure will later wrap into flow.NewCopy leaves.
func (f *Function) AddBasicBlock(bb *ir.BasicBlock) {
	bb.Index = len(f.blocks)
	f.blocks = append(f.blocks, bb)
}

// BasicBlocks returns the function's flat block list.
func (f *Function) BasicBlocks() []*ir.BasicBlock { return f.blocks }

// Structure wraps every basic block as a flow.Block leaf and runs the
// control-flow structuring algorithm over them, recording the result
// in Root.
func (f *Function) Structure() error {
	if len(f.blocks) == 0 {
		return errs.NewLowLevel("function %q has no basic blocks to structure", f.Name)
	}
	leaves := make([]*flow.Block, len(f.blocks))
	for i, bb := range f.blocks {
		leaves[i] = flow.NewCopy(bb)
	}
	root, err := structure.Structure(leaves)
	if err != nil {
		return err
	}
	f.Root = root
	logger.Printf("structured function %q (%s): root kind %s", f.Name, f.DebugID, root.Kind)
	return nil
}

// Encode serializes the function's name/entry, varnode pool, basic
// blocks, structured block graph, and local scope into one <function>
// element.
func (f *Function) Encode() (*serialize.Element, error) {
	if f.Root == nil {
		return nil, errs.NewLowLevel("function %q has not been structured", f.Name)
	}
	e := serialize.NewElement("function")
	e.SetAttr("name", f.Name)
	serialize.EncodeAddress(e, f.Entry)
	e.AddChild(serialize.EncodeFunctionBody(f.blocks))
	e.AddChild(serialize.EncodeGraph(f.Root))
	e.AddChild(serialize.EncodeScopeTree(f.Scope))
	e.AddChild(serialize.EncodeFlagbase(f.Properties))
	return e, nil
}

// Decode reconstructs a Function from a <function> element. uniqueSpace
// seeds the new VarnodeBank's temporary allocator; resolve looks up
// address spaces by name on behalf of every nested decoder.
func Decode(e *serialize.Element, uniqueSpace *addr.Space, resolve serialize.SpaceResolver) (*Function, error) {
	if e.Name != "function" {
		return nil, errs.NewDecoder("function", "expected <function>, got <%s>", e.Name)
	}
	name, _ := e.Attr("name")
	entry, err := serialize.DecodeAddress(e, resolve)
	if err != nil {
		return nil, err
	}

	f := &Function{
		Name:    name,
		Entry:   entry,
		DebugID: uuid.NewString(),
		Bank:    ir.NewVarnodeBank(uniqueSpace),
	}

	body, ok := e.FindChild("funcbody")
	if !ok {
		return nil, errs.NewDecoder("function", "missing <funcbody>")
	}
	blocks, err := serialize.DecodeFunctionBody(body, f.Bank, resolve)
	if err != nil {
		return nil, err
	}
	f.blocks = blocks

	leaves := make(map[int]*ir.BasicBlock, len(blocks))
	for _, bb := range blocks {
		leaves[bb.Index] = bb
	}

	graphElem, ok := e.FindChild("block")
	if !ok {
		return nil, errs.NewDecoder("function", "missing <block> graph root")
	}
	root, err := serialize.DecodeGraph(graphElem, leaves, resolve)
	if err != nil {
		return nil, err
	}
	f.Root = root

	scopeElem, ok := e.FindChild("scopelist")
	if !ok {
		return nil, errs.NewDecoder("function", "missing <scopelist>")
	}
	scope, err := serialize.DecodeScopeTree(scopeElem, resolve)
	if err != nil {
		return nil, err
	}
	f.Scope = scope

	propsElem, _ := e.FindChild("propertylist")
	props, err := serialize.DecodeFlagbase(propsElem, resolve)
	if err != nil {
		return nil, err
	}
	f.Properties = props

	logger.Printf("decoded function %q (%s): %d basic blocks", f.Name, f.DebugID, len(f.blocks))
	return f, nil
}
