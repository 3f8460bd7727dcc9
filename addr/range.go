package addr

import (
	"fmt"

	"github.com/google/btree"
)

// Range is an inclusive [First,Last] span of offsets in one space.
type Range struct {
	Space *Space
	First uint64
	Last  uint64
}

func (r Range) String() string {
	return fmt.Sprintf("%s:[%#x,%#x]", r.Space, r.First, r.Last)
}

// Contains reports whether a falls within r.
func (r Range) Contains(a Address) bool {
	if a.Space != r.Space {
		return false
	}
	return a.Offset >= r.First && a.Offset <= r.Last
}

// Overlaps reports whether r and o share at least one offset in the
// same space.
func (r Range) Overlaps(o Range) bool {
	if r.Space != o.Space {
		return false
	}
	return r.First <= o.Last && o.First <= r.Last
}

// Adjacent reports whether r and o are overlapping or touch end-to-end
// (Merge collapses these into one Range).
func (r Range) Adjacent(o Range) bool {
	if r.Space != o.Space {
		return false
	}
	if r.Overlaps(o) {
		return true
	}
	return r.Last+1 == o.First || o.Last+1 == r.First
}

// rangeItem adapts Range to btree.Item, ordering by (space index,
// first, last) so RangeList presents the total, reproducible order
// every index-based structure in this module needs for reproducible
// iteration.
type rangeItem Range

func (a rangeItem) Less(than btree.Item) bool {
	b := than.(rangeItem)
	ai, bi := spaceIndex(a.Space), spaceIndex(b.Space)
	if ai != bi {
		return ai < bi
	}
	if a.First != b.First {
		return a.First < b.First
	}
	return a.Last < b.Last
}

// RangeList is an ordered, disjoint set of Ranges in one or more
// spaces, backed by a google/btree ordered index.
type RangeList struct {
	tree *btree.BTree
}

// NewRangeList returns an empty RangeList.
func NewRangeList() *RangeList {
	return &RangeList{tree: btree.New(32)}
}

// InsertRange adds r, merging it with any overlapping or adjacent
// ranges already present in the same space.
func (rl *RangeList) InsertRange(r Range) {
	if r.Last < r.First {
		return
	}
	merged := r
	// Collect and remove every range touching merged, growing merged
	// to their union, until a fixed point is reached.
	for {
		var hit Range
		found := false
		rl.tree.AscendRange(
			rangeItem{Space: merged.Space, First: 0, Last: 0},
			rangeItem{Space: merged.Space, First: ^uint64(0), Last: ^uint64(0)},
			func(it btree.Item) bool {
				cand := Range(it.(rangeItem))
				if cand.Space != merged.Space {
					return true
				}
				if cand.Adjacent(merged) {
					hit = cand
					found = true
					return false
				}
				return true
			},
		)
		if !found {
			break
		}
		rl.tree.Delete(rangeItem(hit))
		if hit.First < merged.First {
			merged.First = hit.First
		}
		if hit.Last > merged.Last {
			merged.Last = hit.Last
		}
	}
	rl.tree.ReplaceOrInsert(rangeItem(merged))
}

// RemoveRange deletes the portion of every stored range overlapping r,
// splitting a range in two when r falls strictly inside it.
func (rl *RangeList) RemoveRange(r Range) {
	var hits []Range
	rl.tree.Ascend(func(it btree.Item) bool {
		cand := Range(it.(rangeItem))
		if cand.Space == r.Space && cand.Overlaps(r) {
			hits = append(hits, cand)
		}
		return true
	})
	for _, cand := range hits {
		rl.tree.Delete(rangeItem(cand))
		if cand.First < r.First {
			rl.tree.ReplaceOrInsert(rangeItem(Range{Space: cand.Space, First: cand.First, Last: r.First - 1}))
		}
		if cand.Last > r.Last {
			rl.tree.ReplaceOrInsert(rangeItem(Range{Space: cand.Space, First: r.Last + 1, Last: cand.Last}))
		}
	}
}

// Contains reports whether a is covered by some stored range.
func (rl *RangeList) Contains(a Address) bool {
	found := false
	rl.tree.AscendRange(
		rangeItem{Space: a.Space, First: 0, Last: 0},
		rangeItem{Space: a.Space, First: ^uint64(0), Last: ^uint64(0)},
		func(it btree.Item) bool {
			cand := Range(it.(rangeItem))
			if cand.Space != a.Space {
				return true
			}
			if cand.Contains(a) {
				found = true
				return false
			}
			return true
		},
	)
	return found
}

// Ranges returns every stored range in ascending (space, first) order.
func (rl *RangeList) Ranges() []Range {
	out := make([]Range, 0, rl.tree.Len())
	rl.tree.Ascend(func(it btree.Item) bool {
		out = append(out, Range(it.(rangeItem)))
		return true
	})
	return out
}

// Len returns the number of disjoint ranges stored.
func (rl *RangeList) Len() int {
	return rl.tree.Len()
}
