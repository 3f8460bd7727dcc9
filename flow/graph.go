package flow

import (
	"github.com/decompcore/pcodeir/errs"
	"github.com/decompcore/pcodeir/ir"
)

// Graph owns a set of sibling Blocks and mediates every edge mutation,
// keeping the doubly-represented edge invariant intact. Graph owns
// its children; destroying it destroys them.
type Graph struct {
	Blocks []*Block
	Root   *Block
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddBlock registers b as a top-level member of the graph, assigning
// it the next index slot (renumbered properly once a reverse
// post-order walk runs).
func (g *Graph) AddBlock(b *Block) {
	b.Index = len(g.Blocks)
	g.Blocks = append(g.Blocks, b)
}

// RemoveBlock deletes b from the graph's top-level list (used once b
// has been wrapped into a composite and all its edges retargeted).
func (g *Graph) RemoveBlock(b *Block) {
	out := g.Blocks[:0]
	for _, x := range g.Blocks {
		if x != b {
			out = append(out, x)
		}
	}
	g.Blocks = out
}

// AddInEdge appends the (from -> to) edge, writing both halves at
// once.
func AddInEdge(from, to *Block, label ir.EdgeLabel) {
	outEdge := &BlockEdge{Point: to, ReverseIndex: len(to.Intothis)}
	outEdge.SetLabel(label)
	inEdge := &BlockEdge{Point: from, ReverseIndex: len(from.Outofthis)}
	inEdge.SetLabel(label)

	from.Outofthis = append(from.Outofthis, outEdge)
	to.Intothis = append(to.Intothis, inEdge)
}

// RemoveInEdge deletes the slot-th incoming edge of b, and the
// matching outgoing half on the source; every higher-indexed edge on
// the opposite side shifts down one and has its ReverseIndex
// decremented.
func RemoveInEdge(b *Block, slot int) {
	edge := b.Intothis[slot]
	src := edge.Point
	outSlot := edge.ReverseIndex

	src.Outofthis = append(src.Outofthis[:outSlot], src.Outofthis[outSlot+1:]...)
	for i := outSlot; i < len(src.Outofthis); i++ {
		src.Outofthis[i].Point.Intothis[src.Outofthis[i].ReverseIndex].ReverseIndex = i
	}
	b.Intothis = append(b.Intothis[:slot], b.Intothis[slot+1:]...)
	for i := slot; i < len(b.Intothis); i++ {
		b.Intothis[i].Point.Outofthis[b.Intothis[i].ReverseIndex].ReverseIndex = i
	}
}

// RemoveOutEdge deletes the slot-th outgoing edge of b symmetrically
// to RemoveInEdge.
func RemoveOutEdge(b *Block, slot int) {
	edge := b.Outofthis[slot]
	dst := edge.Point
	inSlot := edge.ReverseIndex

	dst.Intothis = append(dst.Intothis[:inSlot], dst.Intothis[inSlot+1:]...)
	for i := inSlot; i < len(dst.Intothis); i++ {
		dst.Intothis[i].Point.Outofthis[dst.Intothis[i].ReverseIndex].ReverseIndex = i
	}
	b.Outofthis = append(b.Outofthis[:slot], b.Outofthis[slot+1:]...)
	for i := slot; i < len(b.Outofthis); i++ {
		b.Outofthis[i].Point.Intothis[b.Outofthis[i].ReverseIndex].ReverseIndex = i
	}
}

// ReplaceInEdge retargets b's slot-th incoming edge to originate from
// newSrc instead, preserving the edge's label.
func ReplaceInEdge(b *Block, slot int, newSrc *Block) {
	edge := b.Intothis[slot]
	RemoveInEdge(b, slot)
	newOut := &BlockEdge{Point: b, ReverseIndex: len(b.Intothis)}
	newOut.labelBits = edge.labelBits
	newIn := &BlockEdge{Point: newSrc, ReverseIndex: len(newSrc.Outofthis)}
	newIn.labelBits = edge.labelBits
	newSrc.Outofthis = append(newSrc.Outofthis, newOut)
	b.Intothis = append(b.Intothis, newIn)
}

// ReplaceOutEdge retargets b's slot-th outgoing edge to land on
// newDst instead, preserving the edge's label.
func ReplaceOutEdge(b *Block, slot int, newDst *Block) {
	edge := b.Outofthis[slot]
	RemoveOutEdge(b, slot)
	newIn := &BlockEdge{Point: b, ReverseIndex: len(b.Outofthis)}
	newIn.labelBits = edge.labelBits
	newOut := &BlockEdge{Point: newDst, ReverseIndex: len(newDst.Intothis)}
	newOut.labelBits = edge.labelBits
	b.Outofthis = append(b.Outofthis, newIn)
	newDst.Intothis = append(newDst.Intothis, newOut)
}

// ReplaceEdgesThru short-circuits b: the source of b's inSlot
// in-edge is connected directly to the target of b's outSlot
// out-edge, and both half-edges touching b are dropped.
func ReplaceEdgesThru(b *Block, inSlot, outSlot int) {
	src := b.Intothis[inSlot].Point
	dst := b.Outofthis[outSlot].Point
	label := b.Intothis[inSlot]

	RemoveOutEdge(b, outSlot)
	RemoveInEdge(b, inSlot)

	outEdge := &BlockEdge{Point: dst, ReverseIndex: len(dst.Intothis)}
	outEdge.labelBits = label.labelBits
	inEdge := &BlockEdge{Point: src, ReverseIndex: len(src.Outofthis)}
	inEdge.labelBits = label.labelBits
	src.Outofthis = append(src.Outofthis, outEdge)
	dst.Intothis = append(dst.Intothis, inEdge)
}

// SwapEdges exchanges outofthis[0] and outofthis[1] of a 2-out block,
// toggling FlagFlipPath.
func SwapEdges(b *Block) {
	if len(b.Outofthis) != 2 {
		return
	}
	b.Outofthis[0], b.Outofthis[1] = b.Outofthis[1], b.Outofthis[0]
	b.Outofthis[0].ReverseIndex, b.Outofthis[1].ReverseIndex = updatedReverseIndices(b)
	if b.HasFlag(ir.BlockFlagFlipPath) {
		b.ClearFlag(ir.BlockFlagFlipPath)
	} else {
		b.SetFlag(ir.BlockFlagFlipPath)
	}
}

func updatedReverseIndices(b *Block) (int, int) {
	for i, e := range b.Outofthis {
		e.Point.Intothis[e.ReverseIndex].ReverseIndex = i
	}
	return b.Outofthis[0].ReverseIndex, b.Outofthis[1].ReverseIndex
}

// Dedup coalesces duplicate parallel edges between the same pair of
// blocks, OR-ing their labels together.
//
// Works off a copy of b.Outofthis rather than filtering it in place:
// dropping a duplicate's matching Intothis entry on the target shifts
// that target's remaining in-edges and rewrites their *other* source
// blocks' ReverseIndex fields, which can include earlier/later entries
// of b.Outofthis itself — doing that while simultaneously compacting
// b.Outofthis's own backing array corrupts both in the same pass.
func Dedup(b *Block) {
	original := append([]*BlockEdge(nil), b.Outofthis...)
	seen := map[*Block]*BlockEdge{}
	kept := make([]*BlockEdge, 0, len(original))
	for _, e := range original {
		if existing, ok := seen[e.Point]; ok {
			existing.OrLabels(e)
			removeIntoEdgeAt(e.Point, e.ReverseIndex)
			continue
		}
		seen[e.Point] = e
		kept = append(kept, e)
	}
	b.Outofthis = kept
	// e.ReverseIndex (which slot of e.Point.Intothis this edge pairs
	// with) hasn't moved; only e's own position within b.Outofthis
	// has, so only the paired Intothis entry's back-reference needs
	// to catch up to i.
	for i, e := range b.Outofthis {
		e.Point.Intothis[e.ReverseIndex].ReverseIndex = i
	}
}

// removeIntoEdgeAt deletes dst.Intothis[slot], shifting later entries
// down and updating each shifted entry's source block's matching
// Outofthis.ReverseIndex to its new position.
func removeIntoEdgeAt(dst *Block, slot int) {
	dst.Intothis = append(dst.Intothis[:slot], dst.Intothis[slot+1:]...)
	for i := slot; i < len(dst.Intothis); i++ {
		e := dst.Intothis[i]
		e.Point.Outofthis[e.ReverseIndex].ReverseIndex = i
	}
}

// CheckInvariant verifies the edge-symmetry invariant
// for every block reachable from roots. It is intended for debug
// builds and tests, not the hot structuring path.
func CheckInvariant(roots []*Block) error {
	seen := map[*Block]bool{}
	var walk func(b *Block) error
	walk = func(b *Block) error {
		if seen[b] {
			return nil
		}
		seen[b] = true
		for i, e := range b.Outofthis {
			if e.ReverseIndex < 0 || e.ReverseIndex >= len(e.Point.Intothis) {
				return errs.NewLowLevel("block %d out-edge %d: reverse index %d out of range", b.Index, i, e.ReverseIndex)
			}
			back := e.Point.Intothis[e.ReverseIndex]
			if back.Point != b {
				return errs.NewLowLevel("block %d out-edge %d: back-pointer mismatch", b.Index, i)
			}
			if back.ReverseIndex != i {
				return errs.NewLowLevel("block %d out-edge %d: reverse index mismatch (%d != %d)", b.Index, i, back.ReverseIndex, i)
			}
		}
		for _, e := range b.Outofthis {
			if err := walk(e.Point); err != nil {
				return err
			}
		}
		for _, c := range b.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}
