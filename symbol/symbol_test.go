package symbol

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
)

func testSpace() *addr.Space {
	return addr.NewSpace("ram", addr.TypeRAM, 1, 4, false, 1)
}

func TestScopeChildIDDerivation(t *testing.T) {
	g := NewGlobalScope("global")
	c1 := g.NewChild("foo", 0)
	c2 := g.NewChild("foo", 0)
	if c1.ID != c2.ID {
		t.Fatalf("DeriveID not deterministic: %x != %x", c1.ID, c2.ID)
	}
	if c1.ID != DeriveID(g.ID, "foo") {
		t.Fatalf("child id does not match DeriveID(parent, name)")
	}
}

func TestScopeCollisionReplaces(t *testing.T) {
	g := NewGlobalScope("global")
	first := g.NewChild("dup", 0)
	first.Owner = addr.Address{Space: testSpace(), Offset: 1}
	second := g.NewChild("dup", 0)
	got, ok := g.ChildByID(second.ID)
	if !ok || got != second {
		t.Fatalf("collision did not replace stale scope")
	}
}

func TestQueryByAddrAndMapScope(t *testing.T) {
	sp := testSpace()
	root := NewGlobalScope("global")
	root.Ownership.InsertRange(addr.Range{Space: sp, First: 0, Last: 0xffff})

	fn := root.NewChild("myfunc", 0)
	fn.Ownership.InsertRange(addr.Range{Space: sp, First: 0x100, Last: 0x1ff})

	sym := NewSymbol("local_8", nil, CategoryNone)
	entry := &SymbolEntry{
		Symbol:     sym,
		Addr:       addr.Address{Space: sp, Offset: 0x100},
		Size:       4,
		UseLimit:   addr.NewRangeList(),
	}
	if err := fn.AddEntry(entry); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	fn.AddSymbol(sym, 0)

	scope, e := QueryByAddr(root, addr.Address{Space: sp, Offset: 0x100}, addr.Invalid)
	if scope != fn {
		t.Fatalf("mapScope did not narrow to the function scope")
	}
	if e == nil || e.Symbol != sym {
		t.Fatalf("QueryByAddr did not find the entry")
	}

	// An address outside fn's ownership should resolve no narrower
	// than root, and find nothing.
	_, none := QueryByAddr(root, addr.Address{Space: sp, Offset: 0x9999}, addr.Invalid)
	if none != nil {
		t.Fatalf("expected no entry outside any scope's ownership")
	}
}

func TestFlagbasePropertyRangeSplit(t *testing.T) {
	// A write to the middle of an existing property range must split
	// it into three, with the new flags applied only to the middle.
	sp := testSpace()
	const readOnly uint32 = 1
	const volatile uint32 = 2

	fb := NewFlagbase()
	fb.SetPropertyRange(readOnly, addr.Range{Space: sp, First: 0x1000, Last: 0x1FFF})
	fb.SetPropertyRange(volatile, addr.Range{Space: sp, First: 0x1800, Last: 0x27FF})

	cases := []struct {
		off  uint64
		want uint32
	}{
		{0x0FFF, 0},
		{0x1000, readOnly},
		{0x1800, readOnly | volatile},
		{0x2000, volatile},
		{0x2800, 0},
	}
	for _, c := range cases {
		got := fb.Query(addr.Address{Space: sp, Offset: c.off})
		if got != c.want {
			t.Errorf("Query(%#x) = %#x, want %#x", c.off, got, c.want)
		}
	}
}

func TestBuildVariableNameTemplates(t *testing.T) {
	sp := testSpace()
	a := addr.Address{Space: sp, Offset: 0x20}
	cases := []struct {
		kind StorageKind
		want string
	}{
		{StorageParameter, "param_0"},
		{StorageUnaffected, "unaff_ebx"},
		{StorageExtraOut, "extraout_eax"},
		{StorageInput, "in_ram_20"},
		{StorageRaw, "ram20"},
	}
	for _, c := range cases {
		got := BuildVariableName(c.kind, a, regNameFor(c.kind), "", 0)
		if got != c.want {
			t.Errorf("BuildVariableName(%v) = %q, want %q", c.kind, got, c.want)
		}
	}
}

func regNameFor(kind StorageKind) string {
	switch kind {
	case StorageUnaffected:
		return "ebx"
	case StorageExtraOut:
		return "eax"
	default:
		return ""
	}
}

func TestDedupeCollision(t *testing.T) {
	s := NewGlobalScope("global")
	s.AddSymbol(NewSymbol("x", nil, CategoryNone), 0)
	got := s.Dedupe("x")
	if got != "x_01" {
		t.Fatalf("Dedupe(%q) = %q, want x_01", "x", got)
	}
}

func TestDynamicSymbolHash(t *testing.T) {
	s := NewGlobalScope("global")
	sym := NewSymbol("union_facet", nil, CategoryUnionFacet)
	ds := s.AddDynamicSymbol(sym, []byte("seed-bytes"))
	ds2 := s.AddDynamicSymbol(sym, []byte("seed-bytes"))
	if ds.Hash != ds2.Hash {
		t.Fatalf("DynamicHasher not deterministic")
	}
	if len(s.DynamicSymbols()) != 2 {
		t.Fatalf("expected 2 dynamic symbols, got %d", len(s.DynamicSymbols()))
	}
}

func TestStringCacheEncodingDetection(t *testing.T) {
	if got := DetectEncoding([]byte("hello")); got != EncodingUTF8 {
		t.Fatalf("DetectEncoding(ascii) = %v, want UTF8", got)
	}
	utf16le := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, 0, 0}
	if got := DetectEncoding(utf16le); got != EncodingUTF16LE {
		t.Fatalf("DetectEncoding(utf16le) = %v, want UTF16LE", got)
	}
	if got := Decode(utf16le[2:], EncodingUTF16LE); got != "hi" {
		t.Fatalf("Decode(utf16le) = %q, want %q", got, "hi")
	}
	if got := Decode([]byte{0xff, 0xff, 0xff}, EncodingUnknown); got != "" {
		t.Fatalf("Decode(unknown) = %q, want empty", got)
	}
}
