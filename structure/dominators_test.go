package structure

import (
	"testing"

	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/ir"
)

// TestComputeDominatorsMultiEntryDissolvesVirtualRoot checks that the
// synthetic virtual-root edges computeDominators adds for a multi-entry
// function are torn back down afterward, not just unlinked from idom:
// a real root must have zero in-edges again once the call returns, and
// that must still hold across a second pass over the same blocks (the
// structuring loop re-runs analyze() repeatedly on the same graph).
func TestComputeDominatorsMultiEntryDissolvesVirtualRoot(t *testing.T) {
	sp := testSpace()
	root1 := leafAt(sp, 0x10, ir.OpCopy)
	root2 := leafAt(sp, 0x20, ir.OpCopy)
	join := leafAt(sp, 0x30, ir.OpReturn)

	flow.AddInEdge(root1, join, ir.EdgeLabelGoto)
	flow.AddInEdge(root2, join, ir.EdgeLabelGoto)

	blocks := []*flow.Block{root1, root2, join}

	for pass := 0; pass < 2; pass++ {
		st, err := buildSpanningTree(blocks)
		if err != nil {
			t.Fatalf("pass %d: buildSpanningTree: %v", pass, err)
		}
		computeDominators(st)

		if root1.NumIn() != 0 {
			t.Fatalf("pass %d: root1 kept a phantom in-edge (NumIn=%d)", pass, root1.NumIn())
		}
		if root2.NumIn() != 0 {
			t.Fatalf("pass %d: root2 kept a phantom in-edge (NumIn=%d)", pass, root2.NumIn())
		}
		if root1.ImmedDom != nil {
			t.Fatalf("pass %d: expected root1 to have no immediate dominator, got %v", pass, root1.ImmedDom)
		}
		if root2.ImmedDom != nil {
			t.Fatalf("pass %d: expected root2 to have no immediate dominator, got %v", pass, root2.ImmedDom)
		}
	}
}
