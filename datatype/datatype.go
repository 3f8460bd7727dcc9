// Package datatype declares the minimal surface the p-code IR core
// needs from an external data-type factory. The core never resolves
// types itself; it stores a Datatype on a Varnode/Symbol and asks the
// factory to classify or resolve union facets when propagation needs
// an answer.
package datatype

// Kind discriminates the small closed set of type shapes the core
// needs to reason about (e.g. to decide whether a Symbol's storage
// size equals its type size, or whether a facet resolution applies).
type Kind int

const (
	KindUnknown Kind = iota
	KindPrimitive
	KindPointer
	KindComposite
	KindCode
	KindFunction
	KindUnion
)

// Datatype is the read-only view of a resolved type that the core
// consults. Concrete factories (outside this module's scope) satisfy
// it; the core never constructs one directly other than in tests.
type Datatype interface {
	Name() string
	Size() int
	Kind() Kind
}

// Factory resolves and classifies types on behalf of the core. A real
// implementation backs primitive/composite/pointer/code/function
// construction and union-facet resolution; this interface is the only
// contract the core depends on.
type Factory interface {
	// Resolve returns the concrete Datatype for a name, or false if
	// unknown to the factory.
	Resolve(name string) (Datatype, bool)

	// ResolveFacet picks the union member at the given byte offset
	// when dt is a union (backs the "facetsymbol" symbol category).
	ResolveFacet(dt Datatype, offset int) (Datatype, bool)
}

// Undefined is the zero Datatype used when a Varnode/Symbol's type is
// stale or not yet resolved.
type Undefined struct{}

func (Undefined) Name() string  { return "" }
func (Undefined) Size() int     { return 0 }
func (Undefined) Kind() Kind    { return KindUnknown }
