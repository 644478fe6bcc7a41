// Package bm1370 implements the Asic contract for the BM1370 chip: a
// stepwise driver whose configuration methods advance an internal
// SequenceStep state machine and return one command at a time.
package bm1370

import (
	"time"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxcoreregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxpll"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxtopology"
)

const (
	ChipID             = 0x1370
	CoreCount          = 128
	SmallCoreCount     = 2040
	CoreSmallCoreCount = 16
	DomainCount        = 4

	pllIDHash = 0
	pllOutHash = 0
	pllIDUART = 3
	pllOutUART = 4

	nonceCoresBits = 7
	nonceCoresMask = 0x7f
	nonceChipBits  = 16
	nonceChipMask  = 0xffff

	// hashCountingNumber is the per-variant constant used by
	// SetVersionRollingNext; this driver targets the newer chip variant.
	hashCountingNumber = 0x0000_1A44
)

// BM1370 is the in-memory mirror of one BM1370 chip's configuration state,
// plus the step cursor for whichever stepwise sequence is in progress.
type BM1370 struct {
	topology              bm13xxtopology.SHA
	inputClockFreq        bm13xxclock.Frequency
	plls                  [4]bm13xxpll.Pll
	chipAddr              uint8
	registers             bm13xxregister.Mirror
	coreRegisters         bm13xxcoreregister.Mirror
	versionRollingEnabled bool
	versionMask           uint32
	chipNonceOffset       uint16

	seq bm13xxasic.SequenceStep
}

// New builds a BM1370 model clocked from a 25MHz input.
func New() *BM1370 {
	return NewWithClock(bm13xxclock.MHz(25))
}

// NewWithClock builds a BM1370 model clocked from clk.
func NewWithClock(clk bm13xxclock.Frequency) *BM1370 {
	b := &BM1370{
		topology:       bm13xxtopology.New(CoreCount, SmallCoreCount, CoreSmallCoreCount, DomainCount),
		inputClockFreq: clk,
		registers:      bm13xxregister.NewMirror(),
		coreRegisters:  bm13xxcoreregister.NewMirror(),
		versionMask:    0x1fffe000,
	}
	b.plls[0].SetParameter(0xc070_0111)
	b.plls[1].SetParameter(0x0064_0111)
	b.plls[2].SetParameter(0x0068_0111)
	b.plls[3].SetParameter(0x0070_0111)

	regDefaults := map[uint8]uint32{
		bm13xxregister.AddrChipIdentification:            0x1370_0000,
		bm13xxregister.AddrPLL0Parameter:                  0xc070_0111,
		bm13xxregister.AddrMiscControl:                    0x0000_c100,
		bm13xxregister.AddrOrderedClockEnable:             0x0000_0003,
		bm13xxregister.AddrFastUARTConfiguration:          0x0630_1a00,
		bm13xxregister.AddrUARTRelay:                      0x000f_0000,
		bm13xxregister.AddrTicketMask:                     0,
		bm13xxregister.AddrCoreRegisterControl:            0,
		bm13xxregister.AddrAnalogMuxControl:               0,
		bm13xxregister.AddrIoDriverStrengthConfiguration:  0x0001_1111,
		bm13xxregister.AddrPLL1Parameter:                  0x0064_0111,
		bm13xxregister.AddrPLL2Parameter:                  0x0068_0111,
		bm13xxregister.AddrPLL3Parameter:                  0x0070_0111,
		bm13xxregister.AddrVersionRolling:                 0x0000_ffff,
		bm13xxregister.AddrA8:                             0x0007_0000,
	}
	for addr, val := range regDefaults {
		b.registers.Set(addr, val)
	}

	coreRegDefaults := map[uint8]uint8{
		bm13xxcoreregister.IDClockDelayControl: 0x98,
		bm13xxcoreregister.IDHashClockControl:  0x40,
		bm13xxcoreregister.IDHashClockCounter:  0x08,
	}
	for id, val := range coreRegDefaults {
		b.coreRegisters.Set(id, val)
	}
	return b
}

func (b *BM1370) ChipID() uint16                       { return ChipID }
func (b *BM1370) HasVersionRolling() bool              { return true }
func (b *BM1370) Topology() bm13xxtopology.SHA         { return b.topology }
func (b *BM1370) SetChipAddr(addr uint8)               { b.chipAddr = addr }
func (b *BM1370) ChipAddr() uint8                      { return b.chipAddr }
func (b *BM1370) HashFreq() bm13xxclock.Frequency {
	return b.plls[pllIDHash].Frequency(b.inputClockFreq, pllOutHash)
}

// SetHashFreq reconfigures PLL0 to target freq without producing a wire
// command; see SetHashFreqNext for the ramped stepwise sequence.
func (b *BM1370) SetHashFreq(freq bm13xxclock.Frequency) {
	b.plls[pllIDHash].SetFrequency(b.inputClockFreq, pllOutHash, freq)
}

func (b *BM1370) TheoreticalHashrateGHs() float64 {
	return float64(b.HashFreq().Raw()) * float64(b.topology.SmallCoreCount) / 1_000_000_000.0
}

// NonceToCoreID maps a returned nonce's top 7 bits to the originating core.
func (b *BM1370) NonceToCoreID(nonce uint32) uint16 {
	return uint16((nonce >> (32 - nonceCoresBits)) & nonceCoresMask)
}

// NonceToSmallCoreID is not meaningful on BM1370: the chip address field
// is 16 bits wide and leaves no separate small-core window in the nonce.
func (b *BM1370) NonceToSmallCoreID(nonce uint32) uint16 { return 0 }

func (b *BM1370) VersionToSmallCoreID(version uint32) uint16 {
	return uint16((version >> trailingZeros32(b.versionMask)) & 0x7)
}

// NonceToChipAddr maps a returned nonce's 16-bit chip field (bits 24:9)
// back to a logical chain address.
func (b *BM1370) NonceToChipAddr(nonce uint32) uint16 {
	return uint16((nonce >> (32 - nonceCoresBits - nonceChipBits)) & nonceChipMask)
}

func msDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

func trailingZeros32(v uint32) uint {
	if v == 0 {
		return 32
	}
	var n uint
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

// Reset abandons whatever sequence is in progress. The stepwise contract
// restarts any *Next sequence from step 0 the next time it is called with a
// different kind in progress, but an explicit Reset lets a caller do so
// without triggering that sequence's side effects first.
func (b *BM1370) Reset() { b.seq = bm13xxasic.SequenceStep{} }
