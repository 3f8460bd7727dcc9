package serialize

import (
	"testing"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/ir"
)

func TestFunctionBodyEncodeDecodeRoundTrip(t *testing.T) {
	ram, resolve := testResolver()
	unique := addr.NewSpace("unique", addr.TypeUnique, 1, 8, false, 1)

	bank := ir.NewVarnodeBank(unique)
	bb := ir.NewBasicBlock(0)

	at := addr.Address{Space: ram, Offset: 0x401000}
	in0 := bank.Create(4, addr.Address{Space: ram, Offset: 0x401010}, nil)
	in0, err := bank.SetInput(in0)
	if err != nil {
		t.Fatalf("SetInput: %v", err)
	}
	out := bank.Create(4, addr.Address{Space: ram, Offset: 0x401020}, nil)

	op := ir.NewOp(ir.OpIntAdd, ir.SeqNum{Addr: at, Order: 16}, nil)
	op.AppendInput(in0)
	op.AppendInput(in0)
	if _, err := bank.SetDef(out, op); err != nil {
		t.Fatalf("SetDef: %v", err)
	}
	bb.InsertOp(op, -1)

	encoded := EncodeFunctionBody([]*ir.BasicBlock{bb})

	gotBank := ir.NewVarnodeBank(unique)
	blocks, err := DecodeFunctionBody(encoded, gotBank, resolve)
	if err != nil {
		t.Fatalf("DecodeFunctionBody: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	gotBB := blocks[0]
	if gotBB.NumOps() != 1 {
		t.Fatalf("got %d ops, want 1", gotBB.NumOps())
	}
	gotOp := gotBB.Ops()[0]
	if gotOp.Opcode != ir.OpIntAdd {
		t.Fatalf("got opcode %s, want INT_ADD", gotOp.Opcode)
	}
	if gotOp.NumInputs() != 2 || gotOp.Input(0) != gotOp.Input(1) {
		t.Fatalf("expected both input slots to resolve to the same shared varnode")
	}
	if gotOp.Output() == nil || gotOp.Output().Kind() != ir.KindWritten {
		t.Fatalf("expected a written output varnode")
	}
	if gotOp.Input(0).Kind() != ir.KindInput {
		t.Fatalf("expected input varnode to round trip as KindInput, got %s", gotOp.Input(0).Kind())
	}
	if gotBank.Len() != 2 {
		t.Fatalf("got %d varnodes in decoded bank, want 2", gotBank.Len())
	}
}
