package symbol

import "github.com/cespare/xxhash/v2"

// DynamicHasher computes the 64-bit hash identifying a dynamic
// storage location: "a specific computed value at a specific
// read/write point".
// The real computation (walking the defining expression tree of a
// union-facet read, say) is owned by an external DynamicHash module
// ; this
// interface is the pluggable seam the scope layer needs to stay
// testable without that collaborator.
type DynamicHasher interface {
	Hash(seed []byte) uint64
}

// xxhashDynamicHasher is the default DynamicHasher, backed by xxhash
// (internal string keys in StringCache use CRC64 instead).
type xxhashDynamicHasher struct{}

func (xxhashDynamicHasher) Hash(seed []byte) uint64 {
	return xxhash.Sum64(seed)
}

// DynamicSymbol pairs a Symbol with the hash identifying its storage,
// stored in a scope's separate per-scope list rather than the
// address-keyed EntryMap.
type DynamicSymbol struct {
	Symbol *Symbol
	Hash   uint64
}
