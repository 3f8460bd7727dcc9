package funcdata

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/ir"
	"github.com/decompcore/pcodeir/symbol"
)

func testSpaces() (ram, unique *addr.Space, resolve func(string) (*addr.Space, bool)) {
	ram = addr.NewSpace("ram", addr.TypeRAM, 1, 8, false, 0)
	unique = addr.NewSpace("unique", addr.TypeUnique, 1, 8, false, 1)
	spaces := map[string]*addr.Space{"ram": ram, "unique": unique}
	return ram, unique, func(name string) (*addr.Space, bool) {
		sp, ok := spaces[name]
		return sp, ok
	}
}

func TestFunctionStructureEncodeDecodeRoundTrip(t *testing.T) {
	ram, unique, resolve := testSpaces()
	global := symbol.NewGlobalScope("global")

	entry := addr.Address{Space: ram, Offset: 0x401000}
	fn := New("do_thing", entry, unique, global)

	a := ir.NewBasicBlock(0)
	a.InsertOp(ir.NewOp(ir.OpCopy, ir.SeqNum{Addr: addr.Address{Space: ram, Offset: 0x401000}}, nil), -1)
	fn.AddBasicBlock(a)

	b := ir.NewBasicBlock(1)
	b.InsertOp(ir.NewOp(ir.OpReturn, ir.SeqNum{Addr: addr.Address{Space: ram, Offset: 0x401010}}, nil), -1)
	fn.AddBasicBlock(b)

	if err := fn.Structure(); err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if fn.Root == nil {
		t.Fatalf("expected a structured root")
	}

	encoded, err := fn.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(encoded, unique, resolve)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != fn.Name {
		t.Fatalf("got name %q, want %q", got.Name, fn.Name)
	}
	if !got.Entry.Equal(fn.Entry) {
		t.Fatalf("got entry %s, want %s", got.Entry, fn.Entry)
	}
	if len(got.BasicBlocks()) != 2 {
		t.Fatalf("got %d basic blocks, want 2", len(got.BasicBlocks()))
	}
	if got.Root == nil {
		t.Fatalf("expected a decoded structured root")
	}
	if got.Scope == nil || got.Scope.Name != "do_thing" {
		t.Fatalf("expected the function's local scope to round trip")
	}
}

func TestStructureWithoutBlocksErrors(t *testing.T) {
	ram, unique, _ := testSpaces()
	global := symbol.NewGlobalScope("global")
	fn := New("empty", addr.Address{Space: ram, Offset: 0}, unique, global)
	if err := fn.Structure(); err == nil {
		t.Fatalf("expected an error structuring a function with no basic blocks")
	}
}
