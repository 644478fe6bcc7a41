package bm13xxregister

// CoreRegisterControl is register 0x3C: the indirect bus used to read and
// write the 8-bit core registers. bit 31 = do-command, bit 15 =
// read(0)/write(1), bits 24:16 = core id (9 bits), bits 12:8 = core-register
// id (5 bits), bits 7:0 = value. A read packs value=0xFF.
type CoreRegisterControl uint32

func (r CoreRegisterControl) Addr() uint8 { return AddrCoreRegisterControl }
func (r CoreRegisterControl) Val() uint32 { return uint32(r) }

// NewCoreRegisterRead builds a core-register-control word requesting a read
// of coreRegID from coreID.
func NewCoreRegisterRead(coreID uint16, coreRegID uint8) CoreRegisterControl {
	return pack(coreID, coreRegID, 0xff, false)
}

// NewCoreRegisterWrite builds a core-register-control word writing val to
// coreRegID on coreID.
func NewCoreRegisterWrite(coreID uint16, coreRegID, val uint8) CoreRegisterControl {
	return pack(coreID, coreRegID, val, true)
}

func pack(coreID uint16, coreRegID, val uint8, write bool) CoreRegisterControl {
	var w uint32 = 1 << 31
	if write {
		w |= 1 << 15
	}
	w |= uint32(coreID&0x1ff) << 16
	w |= uint32(coreRegID&0x1f) << 8
	w |= uint32(val)
	return CoreRegisterControl(w)
}

// DoCommand returns bit 31.
func (r CoreRegisterControl) DoCommand() bool { return r&(1<<31) != 0 }

// IsWrite returns bit 15.
func (r CoreRegisterControl) IsWrite() bool { return r&(1<<15) != 0 }

// CoreID returns bits 24:16.
func (r CoreRegisterControl) CoreID() uint16 { return uint16((r >> 16) & 0x1ff) }

// CoreRegID returns bits 12:8.
func (r CoreRegisterControl) CoreRegID() uint8 { return uint8((r >> 8) & 0x1f) }

// Value returns bits 7:0.
func (r CoreRegisterControl) Value() uint8 { return uint8(r) }
