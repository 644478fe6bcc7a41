// Package bm1366 implements the Asic contract for the BM1366 chip: a
// bulk-sequence driver whose configuration methods return a complete
// command/delay vector for the caller to drive in one pass.
package bm1366

import (
	"time"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxcoreregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxpll"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxtopology"
)

const (
	ChipID             = 0x1366
	CoreCount          = 112
	SmallCoreCount     = 894
	CoreSmallCoreCount = 8
	DomainCount        = 1

	pllIDHash = 0
	pllOutHash = 0
	pllIDUART = 1
	pllOutUART = 4

	nonceCoresBits      = 7
	nonceCoresMask      = 0x7f
	nonceSmallCoresBits = 3
	nonceSmallCoresMask = 0x7
	nonceBits           = 32
	chipAddrBits        = 8
	chipAddrMask        = 0xff
)

// BM1366 is the in-memory mirror of one BM1366 chip's configuration state.
type BM1366 struct {
	topology              bm13xxtopology.SHA
	inputClockFreq        bm13xxclock.Frequency
	plls                  [2]bm13xxpll.Pll
	chipAddr              uint8
	registers             bm13xxregister.Mirror
	coreRegisters         bm13xxcoreregister.Mirror
	versionRollingEnabled bool
	versionMask           uint32
}

// New builds a BM1366 model clocked from a 25MHz input, the default for
// every currently known board.
func New() *BM1366 {
	return NewWithClock(bm13xxclock.MHz(25))
}

// NewWithClock builds a BM1366 model clocked from clk.
func NewWithClock(clk bm13xxclock.Frequency) *BM1366 {
	b := &BM1366{
		topology:       bm13xxtopology.New(CoreCount, SmallCoreCount, CoreSmallCoreCount, DomainCount),
		inputClockFreq: clk,
		registers:      bm13xxregister.NewMirror(),
		coreRegisters:  bm13xxcoreregister.NewMirror(),
		versionMask:    0x1fffe000,
	}
	b.plls[0].SetParameter(0xC054_0165)
	b.plls[1].SetParameter(0x2050_0174)
	b.plls[0].SetDivider(0)
	b.plls[1].SetDivider(0)

	regDefaults := map[uint8]uint32{
		bm13xxregister.AddrChipIdentification:           0x1366_0000,
		bm13xxregister.AddrHashRate:                      0x0001_2a89,
		bm13xxregister.AddrPLL0Parameter:                 0xc054_0165,
		bm13xxregister.AddrChipNonceOffset:               0,
		bm13xxregister.AddrHashCountingNumber:            0,
		bm13xxregister.AddrTicketMask:                    0,
		bm13xxregister.AddrMiscControl:                   0x0000_c100,
		bm13xxregister.AddrI2CControl:                    0,
		bm13xxregister.AddrOrderedClockEnable:            0x0000_0003,
		bm13xxregister.Addr24:                            0x0010_0000,
		bm13xxregister.AddrFastUARTConfiguration:         0x0130_1a00,
		bm13xxregister.AddrUARTRelay:                     0x000f_0000,
		bm13xxregister.Addr30:                            0x0000_0070,
		bm13xxregister.Addr34:                            0,
		bm13xxregister.AddrTicketMask2:                   0,
		bm13xxregister.AddrCoreRegisterControl:           0,
		bm13xxregister.AddrCoreRegisterValue:             0x1eaf_5fbe,
		bm13xxregister.AddrExternalTemperatureSensor:     0,
		bm13xxregister.AddrErrorFlag:                     0,
		bm13xxregister.AddrNonceErrorCounter:              0,
		bm13xxregister.AddrNonceOverflowCounter:           0,
		bm13xxregister.AddrAnalogMuxControl:               0,
		bm13xxregister.AddrIoDriverStrengthConfiguration: 0x0001_2111,
		bm13xxregister.AddrTimeout:                        0x0000_FFFF,
		bm13xxregister.AddrPLL1Parameter:                  0x2050_0174,
		bm13xxregister.AddrOrderedClockMonitor:            0x0001_0200,
		bm13xxregister.AddrPLL0Divider:                    0,
		bm13xxregister.AddrPLL1Divider:                    0,
		bm13xxregister.AddrClockOrderControl0:             0,
		bm13xxregister.AddrClockOrderControl1:             0,
		bm13xxregister.Addr88:                             0,
		bm13xxregister.AddrClockOrderStatus:               0,
		bm13xxregister.AddrFrequencySweepControl1:         0,
		bm13xxregister.AddrGoldenNonceForSweepReturn:      0,
		bm13xxregister.AddrReturnedGroupPatternStatus:     0,
		bm13xxregister.AddrNonceReturnedTimeout:           0x00fd_0077,
		bm13xxregister.AddrReturnedSinglePatternStatus:    0,
		bm13xxregister.AddrVersionRolling:                 0x0000_ffff,
		bm13xxregister.AddrA8:                             0x0007_0000,
	}
	for addr, val := range regDefaults {
		b.registers.Set(addr, val)
	}

	coreRegDefaults := map[uint8]uint8{
		bm13xxcoreregister.IDClockDelayControl: 0x98,
		bm13xxcoreregister.IDCoreReg2:          0x55,
		bm13xxcoreregister.IDCoreError:         0,
		bm13xxcoreregister.IDCoreEnable:        0,
		bm13xxcoreregister.IDHashClockControl:  0x40,
		bm13xxcoreregister.IDHashClockCounter:  0x08,
		bm13xxcoreregister.IDSweepClockControl: 0x11,
		bm13xxcoreregister.IDCoreReg8:          0,
		bm13xxcoreregister.IDCoreReg15:         0,
		bm13xxcoreregister.IDCoreReg16:         0,
		bm13xxcoreregister.IDCoreReg22:         0,
	}
	for id, val := range coreRegDefaults {
		b.coreRegisters.Set(id, val)
	}
	return b
}

// ChipID returns the BM1366 model identifier.
func (b *BM1366) ChipID() uint16 { return ChipID }

// HasVersionRolling reports that BM1366 supports hardware version rolling.
func (b *BM1366) HasVersionRolling() bool { return true }

// Topology returns the chip's fixed SHA core/domain layout.
func (b *BM1366) Topology() bm13xxtopology.SHA { return b.topology }

// SetChipAddr assigns this model's logical chain address.
func (b *BM1366) SetChipAddr(addr uint8) { b.chipAddr = addr }

// ChipAddr returns this model's logical chain address.
func (b *BM1366) ChipAddr() uint8 { return b.chipAddr }

// EnableVersionRolling marks version rolling enabled with the given mask,
// without itself producing a wire command; see SendVersionRolling.
func (b *BM1366) EnableVersionRolling(mask uint32) {
	b.versionRollingEnabled = true
	b.versionMask = mask
}

func (b *BM1366) versionMaskBits() int {
	n := 0
	for m := b.versionMask; m != 0; m &= m - 1 {
		n++
	}
	return n
}

// HashFreq returns the chip's configured hashing frequency.
func (b *BM1366) HashFreq() bm13xxclock.Frequency {
	return b.plls[pllIDHash].Frequency(b.inputClockFreq, pllOutHash)
}

// SetHashFreq reconfigures PLL0 to target freq, without producing a wire
// command; see SendHashFreq for the ramped command sequence.
func (b *BM1366) SetHashFreq(freq bm13xxclock.Frequency) {
	b.plls[pllIDHash].SetFrequency(b.inputClockFreq, pllOutHash, freq)
}

// TheoreticalHashrateGHs returns the chip's theoretical hashrate in GH/s at
// its currently configured frequency.
func (b *BM1366) TheoreticalHashrateGHs() float64 {
	return float64(b.HashFreq().Raw()) * float64(b.topology.SmallCoreCount) / 1_000_000_000.0
}

// NonceToCoreID maps a returned nonce's high 7 bits (31:25) to the
// originating core id.
func (b *BM1366) NonceToCoreID(nonce uint32) uint16 {
	return uint16((nonce >> (nonceBits - nonceCoresBits)) & nonceCoresMask)
}

// NonceToSmallCoreID maps a returned nonce's bits 24:22 to the originating
// small-core id (version-rolling disabled layout).
func (b *BM1366) NonceToSmallCoreID(nonce uint32) uint16 {
	return uint16((nonce >> (nonceBits - nonceCoresBits - nonceSmallCoresBits)) & nonceSmallCoresMask)
}

// VersionToSmallCoreID maps a rolled version's bits to the originating
// small-core id, assuming the configured version mask.
func (b *BM1366) VersionToSmallCoreID(version uint32) uint16 {
	return uint16((version >> trailingZeros32(b.versionMask)) & nonceSmallCoresMask)
}

// NonceToChipAddr maps a returned nonce to the chip address that produced
// it: bits 24:17 with version rolling enabled, bits 21:14 otherwise.
func (b *BM1366) NonceToChipAddr(nonce uint32) uint8 {
	if b.versionRollingEnabled {
		return uint8((nonce >> (nonceBits - nonceCoresBits - chipAddrBits)) & chipAddrMask)
	}
	return uint8((nonce >> (nonceBits - nonceCoresBits - nonceSmallCoresBits - chipAddrBits)) & chipAddrMask)
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

// Init builds the full power-on command sequence: hashing clock and
// core-delay core-register writes, initial ticket mask, analog mux and I/O
// drive strength, and the per-voltage-domain boundary-chip overrides.
func (b *BM1366) Init(initialDifficulty uint32, chainDomainCnt, domainAsicCnt uint8, asicAddrInterval uint16) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay

	hashClkCtrl := bm13xxcoreregister.HashClockControl(b.coreRegisters.Get(bm13xxcoreregister.IDHashClockControl)).SetEnabled(true)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())), bm13xxproto.All()),
		Delay: msDuration(10),
	})
	b.coreRegisters.Set(bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())

	clkDlyCtrl := bm13xxcoreregister.ClockDelayControl(b.coreRegisters.Get(bm13xxcoreregister.IDClockDelayControl)).
		SetCoreClockDelay(0).SetPWTH(true).SetCCDelaySel(false)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())), bm13xxproto.All()),
		Delay: msDuration(10),
	})
	b.coreRegisters.Set(bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())

	tckMask := bm13xxregister.TicketMaskFromDifficulty(initialDifficulty).Val()
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrTicketMask, tckMask, bm13xxproto.All()),
		Delay: msDuration(10),
	})
	b.registers.Set(bm13xxregister.AddrTicketMask, tckMask)

	anaMux := bm13xxregister.AnalogMuxControlV2(b.registers.Get(bm13xxregister.AddrAnalogMuxControl)).SetDiodeVddMuxSel(3)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrAnalogMuxControl, anaMux.Val(), bm13xxproto.All()),
	})
	b.registers.Set(bm13xxregister.AddrAnalogMuxControl, anaMux.Val())

	ioDrv := bm13xxregister.IoDriverStrengthConfiguration(b.registers.Get(bm13xxregister.AddrIoDriverStrengthConfiguration)).
		SetStrength(bm13xxregister.DriverRF, 2).
		SetStrength(bm13xxregister.DriverRO, 1).
		SetStrength(bm13xxregister.DriverCLKO, 1).
		SetStrength(bm13xxregister.DriverNRSTO, 1).
		SetStrength(bm13xxregister.DriverBO, 1).
		SetStrength(bm13xxregister.DriverCO, 1).
		Enable(bm13xxregister.DriverRSelectD0R).
		Disable(bm13xxregister.DriverRSelectD1R).
		Disable(bm13xxregister.DriverRSelectD2R).
		Disable(bm13xxregister.DriverRSelectD3R)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val(), bm13xxproto.All()),
	})
	b.registers.Set(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val())

	for dom := int(chainDomainCnt) - 1; dom >= 0; dom-- {
		lastChip := uint8((dom+int(domainAsicCnt)-1)) * uint8(asicAddrInterval)
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrIoDriverStrengthConfiguration, 0x0211_f111, bm13xxproto.Chip(lastChip)),
		})
	}

	for dom := int(chainDomainCnt) - 1; dom >= 0; dom-- {
		gapCnt := uint16(domainAsicCnt) * (uint16(chainDomainCnt) - uint16(dom)) + 14
		uartRelay := bm13xxregister.UARTRelay(b.registers.Get(bm13xxregister.AddrUARTRelay)).
			SetGapCnt(gapCnt).EnableRORelay().EnableCORelay()
		firstChip := uint8(dom) * uint8(asicAddrInterval)
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrUARTRelay, uartRelay.Val(), bm13xxproto.Chip(firstChip)),
		})
		if domainAsicCnt > 1 {
			lastChip := uint8(dom+int(domainAsicCnt)-1) * uint8(asicAddrInterval)
			seq = append(seq, bm13xxasic.CmdDelay{
				Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrUARTRelay, uartRelay.Val(), bm13xxproto.Chip(lastChip)),
			})
		}
	}
	return seq
}
