package ir

import "github.com/decompcore/pcodeir/addr"

// SeqNum uniquely identifies a p-code op within a function: an address
// plus a micro-order disambiguating multiple ops lowered from the same
// machine instruction.
type SeqNum struct {
	Addr  addr.Address
	Order uint32
}

// Compare orders two sequence numbers by address first, then by
// micro-order; two micro-orders are only meaningfully comparable when
// the addresses match, but the address comparator alone already gives
// a total, reproducible order.
func (s SeqNum) Compare(o SeqNum) int {
	if c := s.Addr.Compare(o.Addr); c != 0 {
		return c
	}
	switch {
	case s.Order < o.Order:
		return -1
	case s.Order > o.Order:
		return 1
	default:
		return 0
	}
}

func (s SeqNum) String() string {
	return s.Addr.String()
}
