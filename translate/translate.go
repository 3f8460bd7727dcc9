// Package translate declares the minimal surface the p-code IR core
// needs from an external address-space manager and instruction
// decoder. The core asks it for
// spaces, register names, and instruction lengths; it never decodes
// bytes itself.
package translate

import "github.com/decompcore/pcodeir/addr"

// Translate is the read-only surface a lifter-facing driver consults
// while building p-code for a function. The core (ir/flow/structure/
// symbol) only ever receives already-built addr.Space values; nothing
// in this module calls or accepts a Translate (funcdata.New takes the
// unique space directly, and symbol.BuildVariableName takes a register
// name as a plain string).
type Translate interface {
	// Space looks up a named address space (e.g. "ram", "register",
	// "unique") previously registered with the manager.
	Space(name string) (*addr.Space, bool)

	// RegisterName returns the architectural register name backing
	// the given (register-space) address and size, or false if no
	// register exactly covers that storage.
	RegisterName(a addr.Address, size int) (string, bool)

	// InstructionLength returns the length in bytes of the machine
	// instruction at a, as determined by the SLEIGH frontend.
	InstructionLength(a addr.Address) (int, error)

	// UniqueSpace returns the space used for SSA-temporaries
	// (VarnodeBank.CreateUnique allocates from it).
	UniqueSpace() *addr.Space

	// ConstantSpace returns the space that encodes immediates.
	ConstantSpace() *addr.Space
}
