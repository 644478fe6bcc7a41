package bm13xxregister

// MiscControl is register 0x18. Older chips use bt8d (split across bits
// 28:24 and 12:8), core-soft-reset (bit 22) and baudrate-clock-select (bit
// 16); newer variants additionally expose core-return-nonce at bits 31:28.
type MiscControl uint32

func (r MiscControl) Addr() uint8 { return AddrMiscControl }
func (r MiscControl) Val() uint32 { return uint32(r) }

// BaudrateClockSelect selects the UART's baudrate clock source.
type BaudrateClockSelect uint8

const (
	BaudrateClockSelectExternal BaudrateClockSelect = 0
	BaudrateClockSelectPLL3     BaudrateClockSelect = 1
)

// Bt8d returns the 9-bit UART bit-time divisor, reassembled from its split
// high (bits 28:24) and low (bits 12:8) halves.
func (r MiscControl) Bt8d() uint16 {
	high := uint16((r>>24)&0xf) << 5
	low := uint16((r >> 8) & 0x1f)
	return high | low
}

// SetBt8d splits a 9-bit bit-time divisor across bits 28:24 and 12:8.
func (r MiscControl) SetBt8d(bt8d uint16) MiscControl {
	bt8d &= 0x1ff
	high := uint32(bt8d>>5) & 0xf
	low := uint32(bt8d) & 0x1f
	v := uint32(r) &^ (0xf << 24) &^ (0x1f << 8)
	return MiscControl(v | high<<24 | low<<8)
}

// CoreSoftReset returns bit 22.
func (r MiscControl) CoreSoftReset() bool { return r&(1<<22) != 0 }

// SetCoreSoftReset sets or clears bit 22.
func (r MiscControl) SetCoreSoftReset(v bool) MiscControl {
	if v {
		return r | 1<<22
	}
	return r &^ (1 << 22)
}

// GetBaudrateClockSelect returns bit 16.
func (r MiscControl) GetBaudrateClockSelect() BaudrateClockSelect {
	if r&(1<<16) != 0 {
		return BaudrateClockSelectPLL3
	}
	return BaudrateClockSelectExternal
}

// SetBaudrateClockSelect sets bit 16.
func (r MiscControl) SetBaudrateClockSelect(sel BaudrateClockSelect) MiscControl {
	if sel == BaudrateClockSelectPLL3 {
		return r | 1<<16
	}
	return r &^ (1 << 16)
}

// CoreReturnNonce returns bits 31:28, documented on newer chip variants.
func (r MiscControl) CoreReturnNonce() uint8 { return uint8(r >> 28) }

// SetCoreReturnNonce sets bits 31:28, masked to 4 bits.
func (r MiscControl) SetCoreReturnNonce(v uint8) MiscControl {
	masked := uint32(v&0xf) << 28
	return MiscControl(uint32(r)&^(0xf<<28) | masked)
}

// B27_26 returns bits 27:26, part of the reset-core sequencing on newer
// chip variants.
func (r MiscControl) B27_26() uint8 { return uint8((r >> 26) & 0x3) }

// SetB27_26 sets bits 27:26.
func (r MiscControl) SetB27_26(v uint8) MiscControl {
	return MiscControl(uint32(r)&^(0x3<<26) | uint32(v&0x3)<<26)
}

// B25_24 returns bits 25:24.
func (r MiscControl) B25_24() uint8 { return uint8((r >> 24) & 0x3) }

// SetB25_24 sets bits 25:24.
func (r MiscControl) SetB25_24(v uint8) MiscControl {
	return MiscControl(uint32(r)&^(0x3<<24) | uint32(v&0x3)<<24)
}

// B19_16 returns bits 19:16.
func (r MiscControl) B19_16() uint8 { return uint8((r >> 16) & 0xf) }

// SetB19_16 sets bits 19:16.
func (r MiscControl) SetB19_16(v uint8) MiscControl {
	return MiscControl(uint32(r)&^(0xf<<16) | uint32(v&0xf)<<16)
}
