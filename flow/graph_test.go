package flow

import (
	"testing"

	"github.com/decompcore/pcodeir/ir"
)

func linear(n int) []*Block {
	blocks := make([]*Block, n)
	for i := range blocks {
		blocks[i] = NewBlock(KindPlain)
		blocks[i].Index = i
	}
	return blocks
}

func TestAddRemoveInEdgeSymmetry(t *testing.T) {
	bs := linear(3)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelTree)
	AddInEdge(bs[0], bs[2], ir.EdgeLabelTree)
	AddInEdge(bs[1], bs[2], ir.EdgeLabelTree)

	if err := CheckInvariant(bs); err != nil {
		t.Fatalf("invariant violated after inserts: %v", err)
	}

	// Remove bs[0]->bs[1] (the first in-edge of bs[1]).
	RemoveInEdge(bs[1], 0)
	if err := CheckInvariant(bs); err != nil {
		t.Fatalf("invariant violated after RemoveInEdge: %v", err)
	}
	if bs[0].NumOut() != 1 {
		t.Fatalf("expected bs[0] to have 1 remaining out-edge, got %d", bs[0].NumOut())
	}
	if bs[0].Outofthis[0].Point != bs[2] {
		t.Fatalf("expected bs[0]'s remaining edge to point at bs[2]")
	}
}

func TestReplaceEdgesThru(t *testing.T) {
	bs := linear(3)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelTree)
	AddInEdge(bs[1], bs[2], ir.EdgeLabelTree)

	ReplaceEdgesThru(bs[1], 0, 0)
	if err := CheckInvariant([]*Block{bs[0], bs[2]}); err != nil {
		t.Fatalf("invariant violated after ReplaceEdgesThru: %v", err)
	}
	if bs[0].NumOut() != 1 || bs[0].Outofthis[0].Point != bs[2] {
		t.Fatalf("expected bs[0] to connect directly to bs[2]")
	}
	if bs[1].NumIn() != 0 || bs[1].NumOut() != 0 {
		t.Fatalf("expected bs[1] fully disconnected")
	}
}

func TestSwapEdgesFlipsFalseTrue(t *testing.T) {
	bs := linear(3)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelTree) // false
	AddInEdge(bs[0], bs[2], ir.EdgeLabelTree) // true

	if bs[0].FalseOut() != bs[1] || bs[0].TrueOut() != bs[2] {
		t.Fatalf("unexpected initial false/true assignment")
	}
	SwapEdges(bs[0])
	if bs[0].FalseOut() != bs[2] || bs[0].TrueOut() != bs[1] {
		t.Fatalf("expected false/true swapped")
	}
	if !bs[0].HasFlag(ir.BlockFlagFlipPath) {
		t.Fatalf("expected FlipPath flag set after swap")
	}
	if err := CheckInvariant(bs); err != nil {
		t.Fatalf("invariant violated after SwapEdges: %v", err)
	}
}

func TestDedupCoalescesParallelEdges(t *testing.T) {
	bs := linear(2)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelGoto)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelTree)

	Dedup(bs[0])
	if bs[0].NumOut() != 1 {
		t.Fatalf("expected edges coalesced, got %d", bs[0].NumOut())
	}
	e := bs[0].Outofthis[0]
	if !e.HasLabel(ir.EdgeLabelGoto) || !e.HasLabel(ir.EdgeLabelTree) {
		t.Fatalf("expected coalesced edge to carry both labels")
	}
	if err := CheckInvariant(bs); err != nil {
		t.Fatalf("invariant violated after Dedup: %v", err)
	}
}

// TestDedupMidListDuplicateKeepsTrailingEdge guards against dropping or
// double-counting an edge that follows the duplicated pair: b0 -> {b1,
// b1, b2} collapses to {b1, b2} with b2's edge intact and singly
// represented.
func TestDedupMidListDuplicateKeepsTrailingEdge(t *testing.T) {
	bs := linear(3)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelGoto)
	AddInEdge(bs[0], bs[1], ir.EdgeLabelTree)
	AddInEdge(bs[0], bs[2], ir.EdgeLabelTree)

	Dedup(bs[0])
	if bs[0].NumOut() != 2 {
		t.Fatalf("expected 2 distinct out-edges after dedup, got %d", bs[0].NumOut())
	}
	seen := map[*Block]int{}
	for _, e := range bs[0].Outofthis {
		seen[e.Point]++
	}
	if seen[bs[1]] != 1 || seen[bs[2]] != 1 {
		t.Fatalf("expected exactly one edge to each of bs[1], bs[2], got %v", seen)
	}
	if bs[2].NumIn() != 1 {
		t.Fatalf("expected bs[2] to retain exactly one in-edge, got %d", bs[2].NumIn())
	}
	if err := CheckInvariant(bs); err != nil {
		t.Fatalf("invariant violated after Dedup: %v", err)
	}
}
