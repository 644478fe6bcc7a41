package bm13xxregister

import "math/bits"

// TicketMask is the register at 0x14 (or its wider sibling at 0x38,
// TicketMask2): an on-chip difficulty filter that suppresses nonces below a
// threshold.
type TicketMask struct {
	addr uint8
	val  uint32
}

func (r TicketMask) Addr() uint8 { return r.addr }
func (r TicketMask) Val() uint32 { return r.val }

// TicketMaskFromDifficulty computes the packed ticket-mask word for a given
// difficulty: the largest power of two at or below difficulty, minus one,
// with its bits reversed within each byte.
func TicketMaskFromDifficulty(difficulty uint32) TicketMask {
	largestPowerOfTwo := uint32(1)<<(31-bits.LeadingZeros32(difficulty)) - 1
	val := bits.ReverseBytes32(bits.Reverse32(largestPowerOfTwo))
	return TicketMask{addr: AddrTicketMask, val: val}
}
