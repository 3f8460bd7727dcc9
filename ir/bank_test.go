package ir

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
)

func testSpaces() (ram, unique *addr.Space) {
	ram = addr.NewSpace("ram", addr.TypeRAM, 1, 8, false, 0)
	unique = addr.NewSpace("unique", addr.TypeUnique, 1, 8, false, 1)
	return
}

func TestVarnodeBankCreateDedup(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)

	at := addr.Address{Space: ram, Offset: 0x1000}
	v1 := bank.Create(4, at, nil)
	v2 := bank.Create(4, at, nil)

	if v1 == v2 {
		t.Fatalf("Create should return distinct free varnodes")
	}
	if v1.CreateIndex() == v2.CreateIndex() {
		t.Fatalf("expected distinct create indices")
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 varnodes in bank, got %d", bank.Len())
	}

	op := NewOp(OpCopy, SeqNum{Addr: at}, nil)
	if _, err := bank.SetDef(v1, op); err != nil {
		t.Fatalf("SetDef: %v", err)
	}
	if v1.Kind() != KindWritten {
		t.Fatalf("expected v1 written")
	}
	if op.Output() != v1 {
		t.Fatalf("expected op output == v1")
	}

	// Redirect a reader of v2 onto v1, the way the bank would on a
	// duplicate-insert collision.
	reader := NewOp(OpIntAdd, SeqNum{Addr: at.Add(4)}, []*Varnode{v2, v2})
	bank.Replace(v2, v1)
	if reader.Input(0) != v1 || reader.Input(1) != v1 {
		t.Fatalf("expected readers redirected to v1")
	}
	if len(v2.Descendants()) != 0 {
		t.Fatalf("expected v2 to have no remaining descendants")
	}
}

func TestVarnodeBankDestroyRequiresDetached(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)
	at := addr.Address{Space: ram, Offset: 0x2000}

	v := bank.Create(4, at, nil)
	op := NewOp(OpCopy, SeqNum{Addr: at}, nil)
	if _, err := bank.SetDef(v, op); err != nil {
		t.Fatalf("SetDef: %v", err)
	}
	if err := bank.Destroy(v); err == nil {
		t.Fatalf("expected destroy of written varnode to fail")
	}

	bank.MakeFree(v)
	if v.Kind() != KindFree {
		t.Fatalf("expected v free after MakeFree")
	}
	if err := bank.Destroy(v); err != nil {
		t.Fatalf("Destroy after MakeFree: %v", err)
	}
}

func TestVarnodeBankFreeSortsLast(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)
	at := addr.Address{Space: ram, Offset: 0x3000}

	free := bank.Create(4, at, nil)
	written := bank.Create(4, at, nil)
	op := NewOp(OpCopy, SeqNum{Addr: at}, nil)
	if _, err := bank.SetDef(written, op); err != nil {
		t.Fatalf("SetDef: %v", err)
	}

	var order []*Varnode
	bank.AscendLoc(func(v *Varnode) bool {
		order = append(order, v)
		return true
	})
	if len(order) != 2 || order[0] != written || order[1] != free {
		t.Fatalf("expected written before free in loc order, got %v", order)
	}
}

func TestFindInputAndCoverage(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)
	at := addr.Address{Space: ram, Offset: 0x4000}

	v := bank.Create(8, at, nil)
	if _, err := bank.SetInput(v); err != nil {
		t.Fatalf("SetInput: %v", err)
	}
	if got := bank.FindInput(8, at); got != v {
		t.Fatalf("FindInput mismatch: %v", got)
	}

	sub := addr.Address{Space: ram, Offset: 0x4002}
	if got := bank.FindCoveringInput(2, sub); got != v {
		t.Fatalf("FindCoveringInput mismatch: %v", got)
	}
	if !bank.HasInputIntersection(2, sub) {
		t.Fatalf("expected input intersection")
	}
}

func TestFindWrittenAtOrBeforePC(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)
	at := addr.Address{Space: ram, Offset: 0x6000}

	v1 := bank.Create(4, at, nil)
	op1 := NewOp(OpCopy, SeqNum{Addr: at, Order: 0}, nil)
	if _, err := bank.SetDef(v1, op1); err != nil {
		t.Fatalf("SetDef v1: %v", err)
	}

	v2 := bank.Create(4, at, nil)
	op2 := NewOp(OpCopy, SeqNum{Addr: at, Order: 1}, nil)
	if _, err := bank.SetDef(v2, op2); err != nil {
		t.Fatalf("SetDef v2: %v", err)
	}

	if got := bank.Find(4, at, op1.Seq, nil); got != v1 {
		t.Fatalf("Find at op1's seq: expected v1, got %v", got)
	}
	if got := bank.Find(4, at, op2.Seq, nil); got != v2 {
		t.Fatalf("Find at op2's seq: expected v2 (most recent before pc), got %v", got)
	}
	if got := bank.Find(4, at, op2.Seq, op1); got != v1 {
		t.Fatalf("Find with explicit uniq=op1: expected v1, got %v", got)
	}
}

func TestOverlapLoc(t *testing.T) {
	ram, unique := testSpaces()
	bank := NewVarnodeBank(unique)
	base := addr.Address{Space: ram, Offset: 0x5000}

	bank.Create(4, base, nil)
	bank.Create(4, base.Add(2), nil)
	bank.Create(4, base.Add(100), nil)

	result := bank.OverlapLoc(base, 4)
	if len(result.Varnodes) != 2 {
		t.Fatalf("expected 2 overlapping varnodes, got %d", len(result.Varnodes))
	}
}
