package bm13xxregister

// ChipIdentification is register 0x00: chip_id in bits 31:16, core_num in
// bits 15:8, chip_addr in bits 7:0.
type ChipIdentification uint32

func (r ChipIdentification) Addr() uint8 { return AddrChipIdentification }
func (r ChipIdentification) Val() uint32 { return uint32(r) }

// ChipID returns the chip model identifier, e.g. 0x1366 or 0x1370.
func (r ChipIdentification) ChipID() uint16 { return uint16(r >> 16) }

// CoreNum returns the number of SHA cores reported by the chip.
func (r ChipIdentification) CoreNum() uint8 { return uint8(r >> 8) }

// ChipAddr returns the chip's currently assigned logical address.
func (r ChipIdentification) ChipAddr() uint8 { return uint8(r) }
