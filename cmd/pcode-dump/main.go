// Command pcode-dump is a read-only debug tool: it loads one
// serialized function and prints its varnode pool, structured block
// graph, and local scope tree. It does no decompilation of its own —
// a minimal inspector mirroring wagon's cmd/wasm-dump, scoped to the
// wire format of the serialize package.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decompcore/pcodeir/addr"
	"github.com/decompcore/pcodeir/flow"
	"github.com/decompcore/pcodeir/funcdata"
	"github.com/decompcore/pcodeir/ir"
	"github.com/decompcore/pcodeir/serialize"
)

// defaultSpaces is a fixed four-space universe (constant, ram,
// register, unique) good enough to resolve the spaces a dumped
// function actually references; a real AddressSpaceManager is an
// external collaborator , out of scope here.
func defaultSpaces() map[string]*addr.Space {
	spaces := map[string]*addr.Space{
		"const":    addr.NewSpace("const", addr.TypeConstant, 1, 8, false, 0),
		"ram":      addr.NewSpace("ram", addr.TypeRAM, 1, 8, false, 1),
		"register": addr.NewSpace("register", addr.TypeRegister, 1, 8, false, 2),
		"unique":   addr.NewSpace("unique", addr.TypeUnique, 1, 8, false, 3),
	}
	return spaces
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <function.pcx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "pcode-dump:", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	root, err := serialize.Decode(f)
	if err != nil {
		return fmt.Errorf("parsing wire stream: %w", err)
	}

	spaces := defaultSpaces()
	resolve := func(name string) (*addr.Space, bool) {
		sp, ok := spaces[name]
		return sp, ok
	}

	fn, err := funcdata.Decode(root, spaces["unique"], resolve)
	if err != nil {
		return fmt.Errorf("decoding function: %w", err)
	}

	fmt.Printf("function %s @ %s\n", fn.Name, fn.Entry)
	dumpVarnodes(fn)
	dumpBlocks(fn)
	dumpScope(fn)
	return nil
}

func dumpVarnodes(fn *funcdata.Function) {
	fmt.Printf("\nvarnodes (%d):\n", fn.Bank.Len())
	fn.Bank.AscendLoc(func(vn *ir.Varnode) bool {
		fmt.Printf("  %s\n", vn)
		return true
	})
}

func dumpBlocks(fn *funcdata.Function) {
	fmt.Printf("\nbasic blocks (%d):\n", len(fn.BasicBlocks()))
	for _, bb := range fn.BasicBlocks() {
		fmt.Printf("  block %d: %d ops\n", bb.Index, bb.NumOps())
		for _, op := range bb.Ops() {
			fmt.Printf("    %s\n", op)
		}
	}
	fmt.Println("\nstructured graph:")
	dumpBlockTree(fn.Root, 1)
}

func dumpBlockTree(b *flow.Block, depth int) {
	if b == nil {
		return
	}
	fmt.Printf("%*s%s (index %d)\n", depth*2, "", b.Kind, b.Index)
	for _, c := range b.Children {
		dumpBlockTree(c, depth+1)
	}
}

func dumpScope(fn *funcdata.Function) {
	fmt.Printf("\nscope %q (id %d):\n", fn.Scope.Name, fn.Scope.ID)
	for _, entry := range fn.Scope.Entries().All() {
		fmt.Printf("  %s @ %s size=%d\n", entry.Symbol.Name, entry.Addr, entry.Size)
	}
	for _, child := range fn.Scope.Children() {
		fmt.Printf("  child scope %q (id %d)\n", child.Name, child.ID)
	}
}
