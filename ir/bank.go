package ir

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/errs"
	"github.com/google/btree"
)

// rank orders a Varnode's definition state for VarnodeBank comparators:
// written < input < constant < free. Spec §4.1 "Comparators" describes
// achieving "free sorts last" by computing (flags&(input|written))-1
// unsigned so free wraps to UINT_MAX; we get the same ordering with an
// explicit high sentinel rank instead of replicating the unsigned
// wraparound, which has no natural Go idiom.
const (
	rankWritten = 0
	rankInput   = 1
	rankConstant = 2
	rankFree    = 3
)

func rankOf(v *Varnode) int {
	return rankForKind(v.kind)
}

func rankForKind(kind VarnodeKind) int {
	switch kind {
	case KindWritten:
		return rankWritten
	case KindInput:
		return rankInput
	case KindConstant:
		return rankConstant
	default:
		return rankFree
	}
}

func spaceIdx(s *addr.Space) int {
	if s == nil {
		return -1
	}
	return s.Index
}

// locItem is a dual-purpose btree.Item: either a live index entry
// wrapping a *Varnode, or an ephemeral, immutable lookup key built
// fresh for each query.
type locItem struct {
	vn *Varnode

	keySpace  *addr.Space
	keyOffset uint64
	keySize   int
	keyRank   int
	keySeq    SeqNum
	keyCreate uint64
}

func (i locItem) fields() (int, uint64, int, int, SeqNum, uint64) {
	if i.vn != nil {
		return spaceIdx(i.vn.Loc.Space), i.vn.Loc.Offset, i.vn.Size, rankOf(i.vn), defSeq(i.vn), i.vn.createIndex
	}
	return spaceIdx(i.keySpace), i.keyOffset, i.keySize, i.keyRank, i.keySeq, i.keyCreate
}

func defSeq(v *Varnode) SeqNum {
	if v.def != nil {
		return v.def.Seq
	}
	return SeqNum{}
}

func (i locItem) Less(than btree.Item) bool {
	o := than.(locItem)
	as, ao, asz, ar, aseq, ac := i.fields()
	bs, bo, bsz, br, bseq, bc := o.fields()
	if as != bs {
		return as < bs
	}
	if ao != bo {
		return ao < bo
	}
	if asz != bsz {
		return asz < bsz
	}
	if ar != br {
		return ar < br
	}
	if ar == rankWritten {
		return aseq.Compare(bseq) < 0
	}
	return ac < bc
}

// defItem orders primarily by definition state then defining sequence
// number, secondarily by (address, size) — the def-index of §4.1.
type defItem struct {
	vn *Varnode

	keyRank   int
	keySeq    SeqNum
	keyCreate uint64
	keySpace  *addr.Space
	keyOffset uint64
	keySize   int
}

func (i defItem) fields() (int, SeqNum, uint64, int, uint64, int) {
	if i.vn != nil {
		return rankOf(i.vn), defSeq(i.vn), i.vn.createIndex, spaceIdx(i.vn.Loc.Space), i.vn.Loc.Offset, i.vn.Size
	}
	return i.keyRank, i.keySeq, i.keyCreate, spaceIdx(i.keySpace), i.keyOffset, i.keySize
}

func (i defItem) Less(than btree.Item) bool {
	o := than.(defItem)
	ar, aseq, ac, as, ao, asz := i.fields()
	br, bseq, bc, bs, bo, bsz := o.fields()
	if ar != br {
		return ar < br
	}
	if ar == rankWritten {
		if c := aseq.Compare(bseq); c != 0 {
			return c < 0
		}
	} else if ac != bc {
		return ac < bc
	}
	if as != bs {
		return as < bs
	}
	if ao != bo {
		return ao < bo
	}
	return asz < bsz
}

// VarnodeBank owns every Varnode of one function and keeps two
// parallel sorted indices over them.
type VarnodeBank struct {
	locTree *btree.BTree
	defTree *btree.BTree

	nextCreate uint64
	uniqueBump uint64
	uniqueSpace *addr.Space
}

// NewVarnodeBank returns an empty bank. uniqueSpace is where
// CreateUnique allocates from.
func NewVarnodeBank(uniqueSpace *addr.Space) *VarnodeBank {
	return &VarnodeBank{
		locTree:     btree.New(32),
		defTree:     btree.New(32),
		uniqueSpace: uniqueSpace,
	}
}

func (b *VarnodeBank) insert(v *Varnode) {
	b.locTree.ReplaceOrInsert(locItem{vn: v})
	b.defTree.ReplaceOrInsert(defItem{vn: v})
	v.Flags.Set(FlagInsert)
}

func (b *VarnodeBank) unlink(v *Varnode) {
	b.locTree.Delete(locItem{vn: v})
	b.defTree.Delete(defItem{vn: v})
	v.Flags.Clear(FlagInsert)
}

// relink removes and re-adds v; used whenever a mutation could move v
// within either sorted order (definition-state change, rebind of def).
func (b *VarnodeBank) relink(v *Varnode, mutate func()) {
	b.unlink(v)
	mutate()
	b.insert(v)
}

func (b *VarnodeBank) lookupLoc(key locItem) *Varnode {
	var found *Varnode
	b.locTree.AscendGreaterOrEqual(key, func(it btree.Item) bool {
		cand := it.(locItem)
		if !key.Less(cand) && !cand.Less(key) {
			found = cand.vn
		}
		return false
	})
	return found
}

// create allocates a new, free Varnode at (addr,size) with the given
// (possibly nil) type, inserted into both indices.
// If an equivalent free Varnode already exists, Create still returns a
// distinct object — duplicates are only coalesced once one side is
// written.
func (b *VarnodeBank) Create(size int, at addr.Address, typ Datatype) *Varnode {
	v := &Varnode{
		Loc:      at,
		Size:     size,
		kind:     KindFree,
		Type:     typ,
		Flags:    NewFlags(),
		createIndex: b.nextCreate,
	}
	if at.IsConstant() {
		v.kind = KindConstant
		v.Flags.Set(FlagConstant)
	}
	b.nextCreate++
	b.insert(v)
	return v
}

// CreateUnique allocates size bytes from the bank's bump-allocated
// unique space.
func (b *VarnodeBank) CreateUnique(size int, typ Datatype) *Varnode {
	at := addr.Address{Space: b.uniqueSpace, Offset: b.uniqueBump}
	b.uniqueBump += uint64(size)
	return b.Create(size, at, typ)
}

// Destroy removes v from the bank. It is an error to destroy a
// Varnode that still has a defining op or descendants.
func (b *VarnodeBank) Destroy(v *Varnode) error {
	if v.def != nil {
		return errs.NewLowLevel("cannot destroy varnode %s: has a defining op", v)
	}
	if len(v.descendants) != 0 {
		return errs.NewLowLevel("cannot destroy varnode %s: has descendants", v)
	}
	b.unlink(v)
	return nil
}

// SetInput reclassifies a free Varnode as input.
func (b *VarnodeBank) SetInput(v *Varnode) (*Varnode, error) {
	if v.kind != KindFree {
		return nil, errs.NewLowLevel("setInput: varnode %s is not free", v)
	}
	b.relink(v, func() {
		v.kind = KindInput
		v.Flags.Set(FlagInput)
	})
	return v, nil
}

// SetDef reclassifies a free Varnode as written by op, linking the
// SSA def/use pointers on both sides. If a written Varnode already
// occupies (addr, size) with the same defining op (a duplicate insert
// per spec §4.1 "Edge cases"), v's readers are redirected onto the
// existing Varnode and that existing Varnode is returned instead of v.
func (b *VarnodeBank) SetDef(v *Varnode, op *PcodeOp) (*Varnode, error) {
	if v.kind != KindFree {
		return nil, errs.NewLowLevel("setDef: varnode %s is not free", v)
	}
	if existing := b.Find(v.Size, v.Loc, op.Seq, op); existing != nil && existing != v {
		b.Replace(v, existing)
		return existing, nil
	}
	if op.output != nil && op.output != v {
		return nil, errs.NewLowLevel("setDef: op %s already has a different output", op)
	}
	b.relink(v, func() {
		v.kind = KindWritten
		v.Flags.Set(FlagWritten)
		v.def = op
		op.setOutput(v)
	})
	return v, nil
}

// MakeFree detaches v's definition, clearing the insert/input/
// indirect-creation flags and re-indexing it as free.
func (b *VarnodeBank) MakeFree(v *Varnode) {
	b.relink(v, func() {
		if v.def != nil {
			v.def.setOutput(nil)
			v.def = nil
		}
		v.kind = KindFree
		v.Flags.Clear(FlagInput)
		v.Flags.Clear(FlagWritten)
		v.Flags.Clear(FlagIndirectCreation)
	})
}

// Replace moves every reader of old onto new, preserving input-slot
// order, then leaves old orphaned for the caller to Destroy.
func (b *VarnodeBank) Replace(old, new *Varnode) {
	for _, op := range append([]*PcodeOp(nil), old.descendants...) {
		for i, in := range op.Inputs() {
			if in == old {
				op.SetInput(i, new)
			}
		}
	}
}

// Find returns the Varnode at (addr,size) matching the given
// definition context, or nil. When uniq is non-nil, only a Varnode
// with that exact defining op matches. Otherwise Find scans every
// written Varnode at (addr,size) in def order and returns the one
// defined at or most recently before pc; pc's zero value matches only
// a def at the very first sequence number.
func (b *VarnodeBank) Find(size int, at addr.Address, pc SeqNum, uniq *PcodeOp) *Varnode {
	if uniq != nil {
		key := locItem{keySpace: at.Space, keyOffset: at.Offset, keySize: size, keyRank: rankWritten, keySeq: uniq.Seq}
		if v := b.lookupLoc(key); v != nil && v.def == uniq {
			return v
		}
		return nil
	}

	lo := locItem{keySpace: at.Space, keyOffset: at.Offset, keySize: size, keyRank: rankWritten}
	var best *Varnode
	b.locTree.AscendGreaterOrEqual(lo, func(it btree.Item) bool {
		cand := it.(locItem)
		if cand.vn == nil {
			return false
		}
		v := cand.vn
		if spaceIdx(v.Loc.Space) != spaceIdx(at.Space) || v.Loc.Offset != at.Offset || v.Size != size || rankOf(v) != rankWritten {
			return false
		}
		if v.def != nil && v.def.Seq.Compare(pc) <= 0 {
			if best == nil || v.def.Seq.Compare(best.def.Seq) > 0 {
				best = v
			}
		}
		return true
	})
	return best
}

// FindInput returns the input Varnode at (addr,size), or nil.
func (b *VarnodeBank) FindInput(size int, at addr.Address) *Varnode {
	key := locItem{keySpace: at.Space, keyOffset: at.Offset, keySize: size, keyRank: rankInput}
	var found *Varnode
	b.locTree.AscendGreaterOrEqual(key, func(it btree.Item) bool {
		v := it.(locItem).vn
		if v != nil && spaceIdx(v.Loc.Space) == spaceIdx(at.Space) && v.Loc.Offset == at.Offset && v.Size == size && rankOf(v) == rankInput {
			found = v
		}
		return false
	})
	return found
}

// FindCoveredInput returns an input Varnode whose range is covered by
// [at,at+size), the smallest such if several exist.
func (b *VarnodeBank) FindCoveredInput(size int, at addr.Address) *Varnode {
	var best *Varnode
	b.AscendSpace(at.Space, func(v *Varnode) bool {
		if v.Kind() != KindInput {
			return true
		}
		if v.Loc.Offset >= at.Offset && v.Loc.Offset+uint64(v.Size) <= at.Offset+uint64(size) {
			if best == nil || v.Size < best.Size {
				best = v
			}
		}
		return true
	})
	return best
}

// FindCoveringInput returns an input Varnode whose range covers
// [at,at+size), the smallest such if several exist.
func (b *VarnodeBank) FindCoveringInput(size int, at addr.Address) *Varnode {
	var best *Varnode
	b.AscendSpace(at.Space, func(v *Varnode) bool {
		if v.Kind() != KindInput {
			return true
		}
		if v.Loc.Offset <= at.Offset && v.Loc.Offset+uint64(v.Size) >= at.Offset+uint64(size) {
			if best == nil || v.Size < best.Size {
				best = v
			}
		}
		return true
	})
	return best
}

// HasInputIntersection reports whether any input Varnode overlaps
// [at,at+size).
func (b *VarnodeBank) HasInputIntersection(size int, at addr.Address) bool {
	found := false
	b.AscendSpace(at.Space, func(v *Varnode) bool {
		if v.Kind() != KindInput {
			return true
		}
		if v.Loc.Offset < at.Offset+uint64(size) && at.Offset < v.Loc.Offset+uint64(v.Size) {
			found = true
			return false
		}
		return true
	})
	return found
}

// AscendSpace walks every Varnode in loc-order restricted to sp,
// calling fn until it returns false.
func (b *VarnodeBank) AscendSpace(sp *addr.Space, fn func(*Varnode) bool) {
	lo := locItem{keySpace: sp, keyRank: rankWritten}
	b.locTree.AscendGreaterOrEqual(lo, func(it btree.Item) bool {
		cand := it.(locItem)
		if spaceIdx(cand.vn.Loc.Space) != spaceIdx(sp) {
			return false
		}
		return fn(cand.vn)
	})
}

// AscendLoc walks every Varnode in loc-order.
func (b *VarnodeBank) AscendLoc(fn func(*Varnode) bool) {
	b.locTree.Ascend(func(it btree.Item) bool {
		return fn(it.(locItem).vn)
	})
}

// AscendDef walks every Varnode in def-order (definition state, then
// defining sequence number) — the topological order heritage walks
// depend on.
func (b *VarnodeBank) AscendDef(fn func(*Varnode) bool) {
	b.defTree.Ascend(func(it btree.Item) bool {
		return fn(it.(defItem).vn)
	})
}

// AscendDefKind walks every Varnode of the given kind in def-order.
func (b *VarnodeBank) AscendDefKind(kind VarnodeKind, fn func(*Varnode) bool) {
	want := rankForKind(kind)
	lo := defItem{keyRank: want}
	b.defTree.AscendGreaterOrEqual(lo, func(it btree.Item) bool {
		cand := it.(defItem)
		if rankOf(cand.vn) != want {
			return false
		}
		return fn(cand.vn)
	})
}

// Len returns the number of Varnodes currently in the bank.
func (b *VarnodeBank) Len() int {
	return b.locTree.Len()
}

// OverlapFlags is the result of a forward loc-order walk collecting
// every Varnode overlapping a starting address.
type OverlapFlags struct {
	Varnodes []*Varnode
	OrFlags  Flags
}

// OverlapLoc walks forward in loc-order from start, collecting every
// Varnode whose range overlaps [start,start+size) in the same space,
// returning them along with the OR of all their flags.
func (b *VarnodeBank) OverlapLoc(start addr.Address, size int) OverlapFlags {
	result := OverlapFlags{OrFlags: NewFlags()}
	end := start.Offset + uint64(size)
	b.AscendSpace(start.Space, func(v *Varnode) bool {
		if v.Loc.Offset >= end {
			return false
		}
		if v.Loc.Offset+uint64(v.Size) > start.Offset {
			result.Varnodes = append(result.Varnodes, v)
			for f := VarnodeFlag(0); f <= FlagTypeLock; f++ {
				if v.Flags.Has(f) {
					result.OrFlags.Set(f)
				}
			}
		}
		return true
	})
	return result
}
