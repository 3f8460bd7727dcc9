package serialize

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
)

func testResolver() (ram *addr.Space, resolve SpaceResolver) {
	ram = addr.NewSpace("ram", addr.TypeRAM, 1, 8, false, 0)
	spaces := map[string]*addr.Space{"ram": ram}
	return ram, func(name string) (*addr.Space, bool) {
		sp, ok := spaces[name]
		return sp, ok
	}
}

func TestAddressRoundTrip(t *testing.T) {
	ram, resolve := testResolver()
	a := addr.Address{Space: ram, Offset: 0x401000}

	e := NewElement("owner")
	EncodeAddress(e, a)

	got, err := DecodeAddress(e, resolve)
	if err != nil {
		t.Fatalf("DecodeAddress: %v", err)
	}
	if !got.Equal(a) {
		t.Fatalf("got %s, want %s", got, a)
	}
}

func TestDecodeAddressUnknownSpace(t *testing.T) {
	_, resolve := testResolver()
	e := NewElement("owner")
	inner := NewElement("addr")
	inner.SetAttr("space", "bogus")
	inner.SetAttrHex("offset", 0)
	e.AddChild(inner)

	if _, err := DecodeAddress(e, resolve); err == nil {
		t.Fatalf("expected an error for an unresolvable space")
	}
}

func TestRangeListRoundTrip(t *testing.T) {
	ram, resolve := testResolver()
	rl := addr.NewRangeList()
	rl.InsertRange(addr.Range{Space: ram, First: 0x1000, Last: 0x1fff})
	rl.InsertRange(addr.Range{Space: ram, First: 0x3000, Last: 0x3fff})

	e := EncodeRangeList(rl)
	got, err := DecodeRangeList(e, resolve)
	if err != nil {
		t.Fatalf("DecodeRangeList: %v", err)
	}
	if got.Len() != rl.Len() {
		t.Fatalf("got %d ranges, want %d", got.Len(), rl.Len())
	}
	for _, r := range rl.Ranges() {
		if !got.Contains(addr.Address{Space: r.Space, Offset: r.First}) {
			t.Fatalf("decoded range list missing %v", r)
		}
	}
}
