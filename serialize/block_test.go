package serialize

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

func buildTwoBlockGraph(ram *addr.Space) *flow.Block {
	bb0 := ir.NewBasicBlock(0)
	bb1 := ir.NewBasicBlock(1)

	l0 := flow.NewCopy(bb0)
	l0.Index = 0
	l1 := flow.NewCopy(bb1)
	l1.Index = 1

	flow.AddInEdge(l0, l1, ir.EdgeLabelTree)

	root := flow.NewBlock(flow.KindList)
	root.Index = 2
	root.Children = []*flow.Block{l0, l1}
	return root
}

func TestGraphEncodeDecodeRoundTrip(t *testing.T) {
	ram, resolve := testResolver()
	root := buildTwoBlockGraph(ram)

	encoded := EncodeGraph(root)

	leaves := map[int]*ir.BasicBlock{
		0: ir.NewBasicBlock(0),
		1: ir.NewBasicBlock(1),
	}
	got, err := DecodeGraph(encoded, leaves, resolve)
	if err != nil {
		t.Fatalf("DecodeGraph: %v", err)
	}

	if got.Kind != flow.KindList {
		t.Fatalf("got kind %s, want %s", got.Kind, flow.KindList)
	}
	if len(got.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(got.Children))
	}
	c0, c1 := got.Children[0], got.Children[1]
	if c0.Basic != leaves[0] || c1.Basic != leaves[1] {
		t.Fatalf("leaf biref resolution did not round trip")
	}
	if c0.NumOut() != 1 || c1.NumIn() != 1 {
		t.Fatalf("expected one edge between the two leaves, got out=%d in=%d", c0.NumOut(), c1.NumIn())
	}
	if !c0.Outofthis[0].HasLabel(ir.EdgeLabelTree) {
		t.Fatalf("expected the tree edge label to survive the round trip")
	}
}

func TestGraphDecodeMissingBasicBlock(t *testing.T) {
	ram, resolve := testResolver()
	root := buildTwoBlockGraph(ram)
	encoded := EncodeGraph(root)

	_, err := DecodeGraph(encoded, map[int]*ir.BasicBlock{0: ir.NewBasicBlock(0)}, resolve)
	if err == nil {
		t.Fatalf("expected an error when a referenced basic block is missing")
	}
}
