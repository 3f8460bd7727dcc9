package ir

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
)

func TestBasicBlockInsertRemove(t *testing.T) {
	ram, _ := testSpaces()
	bb := NewBasicBlock(0)
	at := addr.Address{Space: ram, Offset: 0x100}

	op1 := NewOp(OpCopy, SeqNum{Addr: at}, nil)
	op2 := NewOp(OpIntAdd, SeqNum{Addr: at.Add(1)}, nil)
	bb.InsertOp(op1, -1)
	bb.InsertOp(op2, -1)

	if bb.NumOps() != 2 {
		t.Fatalf("expected 2 ops, got %d", bb.NumOps())
	}
	if op1.Parent != bb || op2.Parent != bb {
		t.Fatalf("expected ops' parent set to bb")
	}
	if bb.LastOp() != op2 {
		t.Fatalf("expected last op == op2")
	}

	if err := bb.RemoveOp(op1); err != nil {
		t.Fatalf("RemoveOp: %v", err)
	}
	if bb.NumOps() != 1 {
		t.Fatalf("expected 1 op after remove, got %d", bb.NumOps())
	}
	if op1.Parent != nil {
		t.Fatalf("expected removed op's parent cleared")
	}
}

func TestBasicBlockSwitchOut(t *testing.T) {
	ram, _ := testSpaces()
	bb := NewBasicBlock(0)
	at := addr.Address{Space: ram, Offset: 0x200}
	bb.InsertOp(NewOp(OpBranchind, SeqNum{Addr: at}, nil), -1)
	if !bb.SwitchOut {
		t.Fatalf("expected SwitchOut after inserting BRANCHIND")
	}
}

func TestBasicBlockIsDoNothing(t *testing.T) {
	ram, _ := testSpaces()
	bb := NewBasicBlock(0)
	at := addr.Address{Space: ram, Offset: 0x300}
	bb.InsertOp(NewOp(OpMultiequal, SeqNum{Addr: at}, nil), -1)
	bb.InsertOp(NewOp(OpBranch, SeqNum{Addr: at.Add(1)}, nil), -1)

	if !bb.IsDoNothing(1, 1, false) {
		t.Fatalf("expected do-nothing block")
	}
	if bb.IsDoNothing(2, 1, false) {
		t.Fatalf("expected false with 2 outgoing edges")
	}
	if bb.IsDoNothing(1, 1, true) {
		t.Fatalf("expected false when predecessor is a switch with multiple preds")
	}
}

func TestBasicBlockIsComplex(t *testing.T) {
	ram, _ := testSpaces()
	bb := NewBasicBlock(0)
	at := addr.Address{Space: ram, Offset: 0x400}
	bb.InsertOp(NewOp(OpReturn, SeqNum{Addr: at}, nil), -1)
	if bb.IsComplex() {
		t.Fatalf("a lone RETURN should not count toward complexity")
	}
	for i := 0; i < 3; i++ {
		bb.InsertOp(NewOp(OpIntAdd, SeqNum{Addr: at.Add(uint64(i + 1))}, nil), -1)
	}
	if !bb.IsComplex() {
		t.Fatalf("expected complex after >2 counted statements")
	}
}
