package bm1366

import (
	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxcoreregister"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
)

// SetBaudrate builds the command sequence that reconfigures the chip's
// UART divider for baudrate: below input/8 it drives the divider off
// CLKI directly, above it routes through PLL1 instead.
func (b *BM1366) SetBaudrate(baudrate uint32) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	fbase := uint32(b.inputClockFreq.Raw())

	if baudrate <= fbase/8 {
		bt8d := fbase/(8*baudrate) - 1
		fastUART := bm13xxregister.FastUARTConfigurationV2(b.registers.Get(bm13xxregister.AddrFastUARTConfiguration)).
			SetBclkSel(bm13xxregister.BaudrateClockSelectV2Clki).
			SetBt8d(uint8(bt8d))
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val(), bm13xxproto.All()),
		})
		b.registers.Set(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val())

		b.plls[pllIDUART].Disable().Unlock()
		pll1Param := b.plls[pllIDUART].Parameter()
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrPLL1Parameter, pll1Param, bm13xxproto.All()),
		})
		b.registers.Set(bm13xxregister.AddrPLL1Parameter, pll1Param)
	} else {
		const pll1Div4 = 6
		b.plls[pllIDUART].Lock().Enable().SetFbDiv(112).SetRefDiv(1).SetPost1Div(1).SetPost2Div(1).SetOutDiv(pllOutUART, pll1Div4)
		fbaseUART := uint32(b.plls[pllIDUART].Frequency(b.inputClockFreq, pllOutUART).Raw())
		pll1Param := b.plls[pllIDUART].Parameter()
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrPLL1Parameter, pll1Param, bm13xxproto.All()),
		})
		b.registers.Set(bm13xxregister.AddrPLL1Parameter, pll1Param)

		bt8d := fbaseUART/(2*baudrate) - 1
		fastUART := bm13xxregister.FastUARTConfigurationV2(b.registers.Get(bm13xxregister.AddrFastUARTConfiguration)).
			SetPll1Div4(pll1Div4).
			SetBclkSel(bm13xxregister.BaudrateClockSelectV2Pll1).
			SetBt8d(uint8(bt8d))
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val(), bm13xxproto.All()),
		})
		b.registers.Set(bm13xxregister.AddrFastUARTConfiguration, fastUART.Val())
	}
	return seq
}

// ResetCore builds the core-reset command sequence for dest: a broadcast
// reset touches MiscControl's wider reset-pulse fields, a single-chip reset
// additionally arms the process-monitor readback via CoreReg2.
func (b *BM1366) ResetCore(dest bm13xxproto.Destination) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	if dest.IsAll() {
		regA8 := bm13xxregister.RegA8(b.registers.Get(bm13xxregister.AddrA8)).SetB3_0(0xf)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrA8, regA8.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrA8, regA8.Val())

		misc := bm13xxregister.MiscControl(b.registers.Get(bm13xxregister.AddrMiscControl)).
			SetCoreReturnNonce(0).SetB27_26(0).SetB25_24(0).SetB19_16(0)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrMiscControl, misc.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrMiscControl, misc.Val())

		regA8 = bm13xxregister.RegA8(b.registers.Get(bm13xxregister.AddrA8)).SetB8(true).SetB3_0(0)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrA8, regA8.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrA8, regA8.Val())

		misc = bm13xxregister.MiscControl(b.registers.Get(bm13xxregister.AddrMiscControl)).
			SetCoreReturnNonce(0xf).SetB27_26(0x3).SetB25_24(0x3).SetB19_16(0xf)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrMiscControl, misc.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrMiscControl, misc.Val())
	} else {
		regA8 := bm13xxregister.RegA8(b.registers.Get(bm13xxregister.AddrA8)).SetB8(true).SetB7_4(0xf)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrA8, regA8.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrA8, regA8.Val())

		misc := bm13xxregister.MiscControl(b.registers.Get(bm13xxregister.AddrMiscControl)).
			SetCoreReturnNonce(0xf).SetB27_26(0).SetB25_24(0).SetB19_16(0)
		seq = append(seq, bm13xxasic.CmdDelay{Cmd: bm13xxproto.WriteReg(bm13xxregister.AddrMiscControl, misc.Val(), dest), Delay: msDuration(10)})
		b.registers.Set(bm13xxregister.AddrMiscControl, misc.Val())
	}

	hashClkCtrl := bm13xxcoreregister.HashClockControl(b.coreRegisters.Get(bm13xxcoreregister.IDHashClockControl)).SetEnabled(true)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())), dest),
		Delay: msDuration(10),
	})
	b.coreRegisters.Set(bm13xxcoreregister.IDHashClockControl, hashClkCtrl.Val())

	clkDlyCtrl := bm13xxcoreregister.ClockDelayControl(b.coreRegisters.Get(bm13xxcoreregister.IDClockDelayControl)).
		SetCoreClockDelay(0).SetPWTH(true).SetCCDelaySel(false)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())), dest),
		Delay: msDuration(10),
	})
	b.coreRegisters.Set(bm13xxcoreregister.IDClockDelayControl, clkDlyCtrl.Val())

	if !dest.IsAll() {
		const coreReg2 = 0xAA
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrCoreRegisterControl, uint32(bm13xxregister.NewCoreRegisterWrite(0, bm13xxcoreregister.IDCoreReg2, coreReg2)), dest),
			Delay: msDuration(10),
		})
		b.coreRegisters.Set(bm13xxcoreregister.IDCoreReg2, coreReg2)
	}
	return seq
}

// SendHashFreq builds the ramped PLL0 frequency sequence that steps from
// the currently configured hash frequency up to targetFreq in 6.25MHz
// increments, slowing the write cadence above 380MHz where the PLL settles
// more slowly.
func (b *BM1366) SendHashFreq(targetFreq bm13xxclock.Frequency) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	if b.plls[pllIDHash].OutDiv(pllOutHash) != 0 {
		b.plls[pllIDHash].SetOutDiv(pllOutHash, 0)
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrPLL0Divider, b.plls[pllIDHash].Divider(), bm13xxproto.All()),
			Delay: msDuration(2),
		})
		b.registers.Set(bm13xxregister.AddrPLL0Divider, b.plls[pllIDHash].Divider())
	}

	freq := b.HashFreq()
	longDelay := false
	for {
		freq += bm13xxclock.KHz(6250)
		if freq > targetFreq {
			freq = targetFreq
		}
		b.SetHashFreq(freq)
		longDelay = freq > bm13xxclock.MHz(380)
		delay := msDuration(400)
		if longDelay {
			delay = msDuration(2300)
		}
		seq = append(seq, bm13xxasic.CmdDelay{
			Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrPLL0Parameter, b.plls[pllIDHash].Parameter(), bm13xxproto.All()),
			Delay: delay,
		})
		b.registers.Set(bm13xxregister.AddrPLL0Parameter, b.plls[pllIDHash].Parameter())
		if freq == targetFreq {
			break
		}
	}
	return seq
}

// SendVersionRolling builds the command sequence enabling hardware version
// rolling with the given mask.
func (b *BM1366) SendVersionRolling(mask uint32) []bm13xxasic.CmdDelay {
	var seq []bm13xxasic.CmdDelay
	const hcn = 0x0000_151c
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrHashCountingNumber, hcn, bm13xxproto.All()),
		Delay: msDuration(1),
	})
	b.registers.Set(bm13xxregister.AddrHashCountingNumber, hcn)

	versRoll := bm13xxregister.VersionRolling(b.registers.Get(bm13xxregister.AddrVersionRolling)).
		SetEnabled(true).SetMask(mask)
	seq = append(seq, bm13xxasic.CmdDelay{
		Cmd:   bm13xxproto.WriteReg(bm13xxregister.AddrVersionRolling, versRoll.Val(), bm13xxproto.All()),
		Delay: msDuration(1),
	})
	b.registers.Set(bm13xxregister.AddrVersionRolling, versRoll.Val())
	b.EnableVersionRolling(mask)
	return seq
}
