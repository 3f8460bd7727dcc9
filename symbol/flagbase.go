package symbol

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/google/btree"
)

// Flagbase is a partition map covering the entire address universe:
// every sub-range carries a property bit vector (read-only, volatile,
// etc.), with gaps implicitly carrying zero flags.
type Flagbase struct {
	tree *btree.BTree
}

// NewFlagbase returns an empty Flagbase (every address implicitly
// carries flags == 0).
func NewFlagbase() *Flagbase {
	return &Flagbase{tree: btree.New(32)}
}

type partition struct {
	space *addr.Space
	first uint64
	last  uint64
	flags uint32
}

func (p partition) Less(than btree.Item) bool {
	o := than.(partition)
	as, bs := spaceIndexOf(p.space), spaceIndexOf(o.space)
	if as != bs {
		return as < bs
	}
	return p.first < o.first
}

func spaceIndexOf(s *addr.Space) int {
	if s == nil {
		return -1
	}
	return s.Index
}

// SetPropertyRange ORs flags into every address in r, splitting
// existing partitions at r's endpoints as needed and filling
// previously-implicit (zero-flag) gaps with an explicit partition
func (fb *Flagbase) SetPropertyRange(flags uint32, r addr.Range) {
	fb.splitAt(r)
	var touched []partition
	fb.tree.AscendRange(
		partition{space: r.Space, first: 0},
		partition{space: r.Space, first: ^uint64(0)},
		func(it btree.Item) bool {
			p := it.(partition)
			if p.space == r.Space && p.first >= r.First && p.last <= r.Last {
				touched = append(touched, p)
			}
			return true
		},
	)
	// Fill gaps within r that have no stored partition yet.
	fb.fillGaps(r)
	touched = touched[:0]
	fb.tree.AscendRange(
		partition{space: r.Space, first: 0},
		partition{space: r.Space, first: ^uint64(0)},
		func(it btree.Item) bool {
			p := it.(partition)
			if p.space == r.Space && p.first >= r.First && p.last <= r.Last {
				touched = append(touched, p)
			}
			return true
		},
	)
	for _, p := range touched {
		fb.tree.Delete(p)
		p.flags |= flags
		fb.tree.ReplaceOrInsert(p)
	}
}

// ClearPropertyRange ANDs the complement of flags into every address
// in r, with the same splitting behavior as SetPropertyRange.
func (fb *Flagbase) ClearPropertyRange(flags uint32, r addr.Range) {
	fb.splitAt(r)
	var touched []partition
	fb.tree.AscendRange(
		partition{space: r.Space, first: 0},
		partition{space: r.Space, first: ^uint64(0)},
		func(it btree.Item) bool {
			p := it.(partition)
			if p.space == r.Space && p.first >= r.First && p.last <= r.Last {
				touched = append(touched, p)
			}
			return true
		},
	)
	for _, p := range touched {
		fb.tree.Delete(p)
		p.flags &^= flags
		if p.flags != 0 {
			fb.tree.ReplaceOrInsert(p)
		}
	}
}

// PropertyRange is one explicit partition of a Flagbase, exposed for
// serialization.
type PropertyRange struct {
	Space *addr.Space
	First uint64
	Last  uint64
	Flags uint32
}

// All returns every explicit partition stored in fb, in ascending
// (space, first) order.
func (fb *Flagbase) All() []PropertyRange {
	var out []PropertyRange
	fb.tree.Ascend(func(it btree.Item) bool {
		p := it.(partition)
		out = append(out, PropertyRange{Space: p.space, First: p.first, Last: p.last, Flags: p.flags})
		return true
	})
	return out
}

// Query returns the flag vector at address a (0 if a falls in an
// implicit gap).
func (fb *Flagbase) Query(a addr.Address) uint32 {
	var found uint32
	fb.tree.AscendRange(
		partition{space: a.Space, first: 0},
		partition{space: a.Space, first: ^uint64(0)},
		func(it btree.Item) bool {
			p := it.(partition)
			if p.space == a.Space && a.Offset >= p.first && a.Offset <= p.last {
				found = p.flags
				return false
			}
			return true
		},
	)
	return found
}

// splitAt trims any stored partition that straddles r.First or r.Last
// into two, so that later range scans see clean boundaries aligned to
// r.
func (fb *Flagbase) splitAt(r addr.Range) {
	for _, bound := range []uint64{r.First, r.Last + 1} {
		if bound == 0 {
			continue // r.Last == ^uint64(0): no upper split point
		}
		var hit *partition
		fb.tree.AscendRange(
			partition{space: r.Space, first: 0},
			partition{space: r.Space, first: ^uint64(0)},
			func(it btree.Item) bool {
				p := it.(partition)
				if p.space == r.Space && p.first < bound && p.last >= bound {
					h := p
					hit = &h
					return false
				}
				return true
			},
		)
		if hit == nil {
			continue
		}
		fb.tree.Delete(*hit)
		fb.tree.ReplaceOrInsert(partition{space: hit.space, first: hit.first, last: bound - 1, flags: hit.flags})
		fb.tree.ReplaceOrInsert(partition{space: hit.space, first: bound, last: hit.last, flags: hit.flags})
	}
}

// fillGaps inserts zero-flag partitions covering any part of r not
// already backed by a stored partition, so SetPropertyRange's OR pass
// has something to touch.
func (fb *Flagbase) fillGaps(r addr.Range) {
	cursor := r.First
	for cursor <= r.Last {
		var next *partition
		fb.tree.AscendRange(
			partition{space: r.Space, first: 0},
			partition{space: r.Space, first: ^uint64(0)},
			func(it btree.Item) bool {
				p := it.(partition)
				if p.space == r.Space && p.first <= cursor && p.last >= cursor {
					h := p
					next = &h
					return false
				}
				return true
			},
		)
		if next != nil {
			if next.last == ^uint64(0) {
				break
			}
			cursor = next.last + 1
			continue
		}
		// cursor starts a gap; find where it ends (the next stored
		// partition's first, or r.Last+1).
		gapEnd := r.Last
		fb.tree.AscendRange(
			partition{space: r.Space, first: cursor},
			partition{space: r.Space, first: ^uint64(0)},
			func(it btree.Item) bool {
				p := it.(partition)
				if p.space == r.Space && p.first > cursor {
					if p.first-1 < gapEnd {
						gapEnd = p.first - 1
					}
					return false
				}
				return true
			},
		)
		fb.tree.ReplaceOrInsert(partition{space: r.Space, first: cursor, last: gapEnd, flags: 0})
		if gapEnd == ^uint64(0) {
			break
		}
		cursor = gapEnd + 1
	}
}
