package serialize

import (
	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/symbol"
)

// EncodeFlagbase writes every explicit partition of fb as a
// <property_changepoint space=... offset=... val=.../> element : one changepoint per partition start,
// since a partition's extent is implied by the next changepoint in
// the same space.
func EncodeFlagbase(fb *symbol.Flagbase) *Element {
	e := NewElement("propertylist")
	for _, p := range fb.All() {
		cp := NewElement("property_changepoint")
		if p.Space != nil {
			cp.SetAttr("space", p.Space.Name)
		}
		cp.SetAttrHex("offset", p.First)
		cp.SetAttrHex("val", uint64(p.Flags))
		e.AddChild(cp)
	}
	return e
}

// DecodeFlagbase reads a <propertylist> back into a Flagbase, deriving
// each partition's extent from (this changepoint's offset, next
// changepoint's offset - 1) within the same space, or up to the
// maximum offset for the last changepoint in a space.
func DecodeFlagbase(e *Element, resolve SpaceResolver) (*symbol.Flagbase, error) {
	fb := symbol.NewFlagbase()
	if e == nil {
		return fb, nil
	}
	type point struct {
		space *addr.Space
		first uint64
		flags uint32
	}
	var points []point
	for _, cp := range e.FindChildren("property_changepoint") {
		spaceName, _ := cp.Attr("space")
		sp, ok := resolve(spaceName)
		if !ok {
			continue
		}
		offset, _ := cp.AttrHex("offset")
		val, _ := cp.AttrHex("val")
		points = append(points, point{space: sp, first: offset, flags: uint32(val)})
	}
	for i, p := range points {
		last := ^uint64(0)
		if i+1 < len(points) && points[i+1].space == p.space {
			last = points[i+1].first - 1
		}
		if p.flags != 0 {
			fb.SetPropertyRange(p.flags, addr.Range{Space: p.space, First: p.first, Last: last})
		}
	}
	return fb, nil
}
