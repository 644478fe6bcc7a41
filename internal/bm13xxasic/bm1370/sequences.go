package bm1370

import (
	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxcoreregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
)

// InitNext advances the power-on init sequence one step: hash-clock-control
// and clock-delay-control core-register writes, ticket mask, analog mux and
// I/O drive strength, five broadcast writes in all, one per call. Returns
// nil once the sequence completes. The per-domain boundary-chip writes are
// issued by SetBaudrateNext, not here.
func (b *BM1370) InitNext(difficulty uint32) *bm13xxasic.CmdDelay {
	if b.seq.Kind != bm13xxasic.SequenceInit {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceInit)
	}
	step := b.seq.Index

	switch step {
	case 0:
		hashClkCtrl := bm13xxcoreregister.HashClockControl(b.coreRegisters.Get(bm13xxcoreregister.IDHashClockControl)).SetEnabled(true)
		b.coreRegisters.Set(bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())), bm13xxproto.All()),
			Delay: msDuration(10),
		}
	case 1:
		clkDlyCtrl := bm13xxcoreregister.ClockDelayControl(b.coreRegisters.Get(bm13xxcoreregister.IDClockDelayControl)).
			SetCoreClockDelay(0).SetPWTH(false).SetCCDelaySel(false)
		b.coreRegisters.Set(bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())), bm13xxproto.All()),
			Delay: msDuration(10),
		}
	case 2:
		tckMask := bm13xxregister.TicketMaskFromDifficulty(difficulty).Val()
		b.registers.Set(bm13xxregister.AddrTicketMask, tckMask)
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrTicketMask, tckMask, bm13xxproto.All()),
			Delay: msDuration(10),
		}
	case 3:
		anaMux := bm13xxregister.AnalogMuxControlV2(b.registers.Get(bm13xxregister.AddrAnalogMuxControl)).SetDiodeVddMuxSel(2)
		b.registers.Set(bm13xxregister.AddrAnalogMuxControl, anaMux.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrAnalogMuxControl, anaMux.Val(), bm13xxproto.All()),
		}
	case 4:
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
		b.registers.Set(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val(), bm13xxproto.All()),
		}
	default:
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}
}

// Init drains InitNext to completion and returns the full command/delay
// vector, satisfying the bulk Asic contract.
func (b *BM1370) Init(initialDifficulty uint32, domainCnt, asicCntPerDomain uint8, addrInterval uint16) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	for {
		step := b.InitNext(initialDifficulty)
		if step == nil {
			break
		}
		seq = append(seq, *step)
	}
	return seq
}

// SetBaudrateNext advances the baudrate-reconfiguration sequence one step.
// The sequence visits, in order: a broadcast I/O-driver-strength write, one
// I/O-driver-strength write per voltage domain (last chip of each domain,
// decreasing address order), a broadcast PLL3 parameter write carrying the
// new UART output divider, one UART-relay write per domain boundary chip (first and
// last), then the path-dependent PLL3/fast-UART-config writes that actually
// switch the divider. Returns nil once the sequence completes.
func (b *BM1370) SetBaudrateNext(baudrate uint32, chainDomainCnt, domainAsicCnt int, asicAddrInterval uint16) *bm13xxasic.CmdDelay {
	const pll3Div4 = 6
	sub2 := chainDomainCnt
	sub3 := sub2 + 1
	sub4 := sub3 + chainDomainCnt
	sub5 := sub4 + chainDomainCnt
	sub6 := sub5 + 1
	end := sub6 + 1

	if b.seq.Kind != bm13xxasic.SequenceBaudrate {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceBaudrate)
		ioDrv := bm13xxregister.IoDriverStrengthConfiguration(b.registers.Get(bm13xxregister.AddrIoDriverStrengthConfiguration)).
			SetStrength(bm13xxregister.DriverRF, 0).
			Disable(bm13xxregister.DriverRSelectD3R).
			Disable(bm13xxregister.DriverRSelectD2R).
			Disable(bm13xxregister.DriverRSelectD1R).
			Disable(bm13xxregister.DriverRSelectD0R).
			SetStrength(bm13xxregister.DriverRO, 1).
			SetStrength(bm13xxregister.DriverCLKO, 1).
			SetStrength(bm13xxregister.DriverNRSTO, 1).
			SetStrength(bm13xxregister.DriverBO, 1).
			SetStrength(bm13xxregister.DriverCO, 1)
		b.registers.Set(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val())
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val(), bm13xxproto.All()),
		}
	}

	step := b.seq.Index
	switch {
	case step >= 0 && step < sub2:
		dom := sub2 - step - 1
		b.seq.Index = step + 1
		ioDrv := bm13xxregister.IoDriverStrengthConfiguration(b.registers.Get(bm13xxregister.AddrIoDriverStrengthConfiguration)).
			SetStrength(bm13xxregister.DriverCLKO, 3)
		lastChip := uint8((dom+1)*domainAsicCnt-1) * uint8(asicAddrInterval)
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrIoDriverStrengthConfiguration, ioDrv.Val(), bm13xxproto.Chip(lastChip)),
		}

	case step == sub2:
		b.seq.Index = sub3
		b.plls[pllIDUART].SetOutDiv(pllOutUART, pll3Div4)
		pll3Param := b.plls[pllIDUART].Parameter()
		b.registers.Set(bm13xxregister.AddrPLL3Parameter, pll3Param)
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrPLL3Parameter, pll3Param, bm13xxproto.All()),
		}

	case step >= sub3 && step < sub4:
		b.seq.Index = step + chainDomainCnt
		dom := sub4 - step - 1
		uartRelay := bm13xxregister.UARTRelay(b.registers.Get(bm13xxregister.AddrUARTRelay)).
			SetGapCnt(uint16(domainAsicCnt)*(uint16(chainDomainCnt)-uint16(dom))+14).
			EnableRORelay().EnableCORelay()
		firstChip := uint8(dom*domainAsicCnt) * uint8(asicAddrInterval)
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrUARTRelay, uartRelay.Val(), bm13xxproto.Chip(firstChip)),
		}

	case step >= sub4 && step < sub5:
		last := step == sub5-1
		if last {
			b.seq.Index = sub5
		} else {
			b.seq.Index = step - chainDomainCnt + 1
		}
		dom := sub5 - step - 1
		uartRelay := bm13xxregister.UARTRelay(b.registers.Get(bm13xxregister.AddrUARTRelay)).
			SetGapCnt(uint16(domainAsicCnt)*(uint16(chainDomainCnt)-uint16(dom))+14).
			EnableRORelay().EnableCORelay()
		lastChip := uint8((dom+1)*domainAsicCnt-1) * uint8(asicAddrInterval)
		delay := msDuration(0)
		if last {
			delay = msDuration(200)
		}
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrUARTRelay, uartRelay.Val(), bm13xxproto.Chip(lastChip)),
			Delay: delay,
		}

	case step == sub5:
		fbase := uint32(b.inputClockFreq.Raw())
		if baudrate <= fbase/8 {
			b.seq.Index = end
			bt8d := fbase/(8*baudrate) - 1
			fastUART := bm13xxregister.FastUARTConfigurationV2(b.registers.Get(bm13xxregister.AddrFastUARTConfiguration)).
				ClrB28().
				SetBclkSel(bm13xxregister.BaudrateClockSelectV2Clki).
				SetBt8d(uint8(bt8d))
			b.registers.Set(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val())
			return &bm13xxasic.CmdDelay{
				Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val(), bm13xxproto.All()),
				Delay: msDuration(200),
			}
		}
		b.seq.Index = sub6
		b.plls[pllIDUART].Lock().Enable().SetFbDiv(112).SetRefDiv(1).SetPost1Div(1).SetPost2Div(1).SetOutDiv(pllOutUART, pll3Div4)
		pll3Param := b.plls[pllIDUART].Parameter()
		b.registers.Set(bm13xxregister.AddrPLL3Parameter, pll3Param)
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrPLL3Parameter, pll3Param, bm13xxproto.All()),
		}

	case step == sub6:
		b.seq.Index = end
		fbase := uint32(b.inputClockFreq.Raw())
		if baudrate <= fbase/8 {
			pll3Param := b.plls[pllIDUART].Disable().Unlock().Parameter()
			b.registers.Set(bm13xxregister.AddrPLL3Parameter, pll3Param)
			return &bm13xxasic.CmdDelay{
				Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrPLL3Parameter, pll3Param, bm13xxproto.All()),
			}
		}
		fbaseUART := uint32(b.plls[pllIDUART].Frequency(b.inputClockFreq, pllOutUART).Raw())
		bt8d := fbaseUART/(2*baudrate) - 1
		fastUART := bm13xxregister.FastUARTConfigurationV2(b.registers.Get(bm13xxregister.AddrFastUARTConfiguration)).
			SetPll1Div4(pll3Div4).
			SetBclkSel(bm13xxregister.BaudrateClockSelectV2Pll1).
			SetBt8d(uint8(bt8d))
		b.registers.Set(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val())
		return &bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val(), bm13xxproto.All()),
		}

	default:
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}
}

// SetBaudrate drains SetBaudrateNext to completion, satisfying the bulk
// Asic contract. It drives the sequence for a single voltage domain holding
// one chip at address interval 1; callers with a different chain shape
// call SetBaudrateNext directly.
func (b *BM1370) SetBaudrate(baudrate uint32) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	for {
		step := b.SetBaudrateNext(baudrate, 1, 1, 1)
		if step == nil {
			break
		}
		seq = append(seq, *step)
	}
	return seq
}

// ResetCoreNext advances the core-reset sequence one step. A broadcast reset
// is two writes (register 0xA8, then misc-control); a single-chip reset
// additionally re-applies hash-clock-control and clock-delay-control and
// culminates in a core-register-2 write that arms the process-monitor
// readback.
func (b *BM1370) ResetCoreNext(dest bm13xxproto.Destination) *bm13xxasic.CmdDelay {
	if b.seq.Kind != bm13xxasic.SequenceResetCore {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceResetCore)
	}
	step := b.seq.Index

	if dest.IsAll() {
		switch step {
		case 0:
			regA8 := bm13xxregister.RegA8(b.registers.Get(bm13xxregister.AddrA8)).SetB3_0(0x7)
			b.registers.Set(bm13xxregister.AddrA8, regA8.Val())
			b.seq = b.seq.Next()
			return &bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrA8, regA8.Val(), dest)}
		case 1:
			misc := bm13xxregister.MiscControl(b.registers.Get(bm13xxregister.AddrMiscControl)).SetCoreReturnNonce(0xf)
			b.registers.Set(bm13xxregister.AddrMiscControl, misc.Val())
			b.seq = b.seq.Next()
			return &bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrMiscControl, misc.Val(), dest), Delay: msDuration(100)}
		default:
			b.seq = bm13xxasic.SequenceStep{}
			return nil
		}
	}

	switch step {
	case 0:
		regA8 := bm13xxregister.RegA8(b.registers.Get(bm13xxregister.AddrA8)).SetB8(true).SetB7_4(0xf)
		b.registers.Set(bm13xxregister.AddrA8, regA8.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrA8, regA8.Val(), dest), Delay: msDuration(10)}
	case 1:
		misc := bm13xxregister.MiscControl(b.registers.Get(bm13xxregister.AddrMiscControl)).SetCoreReturnNonce(0xf)
		b.registers.Set(bm13xxregister.AddrMiscControl, misc.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrMiscControl, misc.Val(), dest), Delay: msDuration(10)}
	case 2:
		hashClkCtrl := bm13xxcoreregister.HashClockControl(b.coreRegisters.Get(bm13xxcoreregister.IDHashClockControl)).SetEnabled(true)
		b.coreRegisters.Set(bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())), dest),
			Delay: msDuration(10),
		}
	case 3:
		clkDlyCtrl := bm13xxcoreregister.ClockDelayControl(b.coreRegisters.Get(bm13xxcoreregister.IDClockDelayControl)).
			SetCoreClockDelay(0).SetPWTH(false).SetCCDelaySel(false)
		b.coreRegisters.Set(bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())), dest),
			Delay: msDuration(10),
		}
	case 4:
		const coreReg2 = 0xAA
		b.coreRegisters.Set(bm13xxcoreregister.IDCoreReg2, coreReg2)
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDCoreReg2, coreReg2)), dest),
			Delay: msDuration(10),
		}
	default:
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}
}

// SetHashFreqNext advances the PLL0 ramp toward targetFreq by one 6.25MHz
// increment, returning nil once targetFreq is reached. BM1370 uses a 550MHz
// threshold (2700ms delay above it) versus BM1366's 380MHz/2300ms — the two
// chips document different thresholds and must not be unified.
func (b *BM1370) SetHashFreqNext(targetFreq bm13xxclock.Frequency) *bm13xxasic.CmdDelay {
	if b.seq.Kind != bm13xxasic.SequenceHashFreq {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceHashFreq)
		if b.plls[pllIDHash].OutDiv(pllOutHash) != 0 {
			b.plls[pllIDHash].SetOutDiv(pllOutHash, 0)
			b.registers.Set(bm13xxregister.AddrPLL0Divider, b.plls[pllIDHash].Divider())
			return &bm13xxasic.CmdDelay{
				Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrPLL0Divider, b.plls[pllIDHash].Divider(), bm13xxproto.All()),
				Delay: msDuration(2),
			}
		}
	}
	// Index -1 marks a ramp whose last write reached targetFreq.
	if b.seq.Index < 0 {
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}

	freq := b.HashFreq()
	freq += bm13xxclock.KHz(6250)
	if freq > targetFreq {
		freq = targetFreq
	}
	b.SetHashFreq(freq)
	b.registers.Set(bm13xxregister.AddrPLL0Parameter, b.plls[pllIDHash].Parameter())

	delay := msDuration(400)
	if freq > bm13xxclock.MHz(550) {
		delay = msDuration(2700)
	}
	if freq == targetFreq {
		b.seq = bm13xxasic.SequenceStep{Kind: bm13xxasic.SequenceHashFreq, Index: -1}
	} else {
		b.seq = b.seq.Next()
	}
	return &bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrPLL0Parameter, b.plls[pllIDHash].Parameter(), bm13xxproto.All()),
		Delay: delay,
	}
}

// SetVersionRollingNext advances the version-rolling enable sequence one
// step: hash-counting-number, then the version-rolling register itself.
func (b *BM1370) SetVersionRollingNext(mask uint32) *bm13xxasic.CmdDelay {
	if b.seq.Kind != bm13xxasic.SequenceVersionRolling {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceVersionRolling)
	}
	switch b.seq.Index {
	case 0:
		b.registers.Set(bm13xxregister.AddrHashCountingNumber, hashCountingNumber)
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrHashCountingNumber, hashCountingNumber, bm13xxproto.All()),
			Delay: msDuration(1),
		}
	case 1:
		versRoll := bm13xxregister.VersionRolling(b.registers.Get(bm13xxregister.AddrVersionRolling)).
			SetEnabled(true).SetMask(mask)
		b.registers.Set(bm13xxregister.AddrVersionRolling, versRoll.Val())
		b.versionRollingEnabled = true
		b.versionMask = mask
		b.seq = b.seq.Next()
		return &bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrVersionRolling, versRoll.Val(), bm13xxproto.All()),
			Delay: msDuration(1),
		}
	default:
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}
}

// SplitNonceBetweenChipsNext advances the nonce-offset distribution
// sequence one step: one chip-nonce-offset write per asic index.
func (b *BM1370) SplitNonceBetweenChipsNext(chainAsicNum int, asicAddrInterval uint16) *bm13xxasic.CmdDelay {
	if b.seq.Kind != bm13xxasic.SequenceSplitNonce {
		b.seq = bm13xxasic.Start(bm13xxasic.SequenceSplitNonce)
	}
	i := b.seq.Index
	if i >= chainAsicNum {
		b.seq = bm13xxasic.SequenceStep{}
		return nil
	}
	offset := bm13xxregister.NewChipNonceOffsetV2(uint32(i), uint32(chainAsicNum))
	b.chipNonceOffset = offset.Offset()
	b.seq = b.seq.Next()
	return &bm13xxasic.CmdDelay{
		Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrChipNonceOffset, offset.Val(), bm13xxproto.Chip(uint8(i)*uint8(asicAddrInterval))),
	}
}
