package serialize

import "github.com/decompcore/pcodeir/flow"

// BlockMap resolves backward/forward references among block indices
// during decode: headers are built (one flow.Block per <block>
// element, keyed by its index attribute) before any edge or target
// reference is resolved against them, so forward references succeed
// regardless of encounter order.
type BlockMap struct {
	byIndex map[int]*flow.Block
}

// NewBlockMap returns an empty map.
func NewBlockMap() *BlockMap {
	return &BlockMap{byIndex: map[int]*flow.Block{}}
}

// Register associates index with b during the header pass.
func (m *BlockMap) Register(index int, b *flow.Block) {
	m.byIndex[index] = b
}

// Resolve looks up the block registered under index.
func (m *BlockMap) Resolve(index int) (*flow.Block, bool) {
	b, ok := m.byIndex[index]
	return b, ok
}
