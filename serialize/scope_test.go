package serialize

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/symbol"
)

func TestScopeTreeEncodeDecodeRoundTrip(t *testing.T) {
	ram, resolve := testResolver()

	root := symbol.NewGlobalScope("global")
	root.Ownership.InsertRange(addr.Range{Space: ram, First: 0, Last: 0xffffffff})

	fnScope := root.NewChild("myfunc", 0)
	fnScope.Owner = addr.Address{Space: ram, Offset: 0x401000}
	fnScope.Ownership.InsertRange(addr.Range{Space: ram, First: 0x401000, Last: 0x4010ff})

	sym := symbol.NewSymbol("local_8", nil, symbol.CategoryNone)
	fnScope.AddSymbol(sym, 0)
	entry := &symbol.SymbolEntry{
		Symbol: sym,
		Addr:   addr.Address{Space: ram, Offset: 0x401000},
		Size:   4,
	}
	if err := fnScope.AddEntry(entry); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}

	dynSym := symbol.NewSymbol("$u0x123", nil, symbol.CategoryUnionFacet)
	fnScope.AddSymbol(dynSym, 0)
	fnScope.AddDynamicSymbol(dynSym, []byte("seed"))

	encoded := EncodeScopeTree(root)
	got, err := DecodeScopeTree(encoded, resolve)
	if err != nil {
		t.Fatalf("DecodeScopeTree: %v", err)
	}

	if got.Name != "global" || got.ID != root.ID {
		t.Fatalf("root scope did not round trip: got %q/%d", got.Name, got.ID)
	}
	children := got.Children()
	if len(children) != 1 {
		t.Fatalf("got %d child scopes, want 1", len(children))
	}
	childGot := children[0]
	if childGot.Name != "myfunc" || childGot.ID != fnScope.ID {
		t.Fatalf("child scope did not round trip: got %q/%d", childGot.Name, childGot.ID)
	}
	if childGot.Parent != got {
		t.Fatalf("child scope's Parent pointer did not resolve to the decoded root")
	}

	gotSym, ok := childGot.SymbolByName("local_8", 0)
	if !ok {
		t.Fatalf("expected local_8 symbol to round trip")
	}
	overlapping := childGot.Entries().Overlapping(addr.Address{Space: ram, Offset: 0x401000})
	if len(overlapping) != 1 || overlapping[0].Symbol.Name != gotSym.Name {
		t.Fatalf("expected one entry for local_8 at 0x401000, got %v", overlapping)
	}

	dyns := childGot.DynamicSymbols()
	if len(dyns) != 1 || dyns[0].Symbol.Name != "$u0x123" {
		t.Fatalf("expected one dynamic symbol to round trip, got %v", dyns)
	}
}

func TestScopeTreeDecodeMissingRoot(t *testing.T) {
	_, resolve := testResolver()
	e := NewElement("scopelist")
	s := NewElement("scope")
	s.SetAttrHex("id", 1)
	s.SetAttr("name", "orphan")
	p := NewElement("parent")
	p.SetAttrHex("id", 99)
	s.AddChild(p)
	e.AddChild(s)

	if _, err := DecodeScopeTree(e, resolve); err == nil {
		t.Fatalf("expected an error: every scope has a parent, and the parent is unresolved")
	}
}
