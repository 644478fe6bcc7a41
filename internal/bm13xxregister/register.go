// Package bm13xxregister models the ~60 32-bit control registers mirrored
// for each chip: typed wrappers around a raw word with bitfield accessors,
// a mirror map keyed by register address, and a parser that identifies a
// (address, value) pair.
package bm13xxregister

import "fmt"

// Register is satisfied by every named register wrapper: its fixed address
// and its current packed value.
type Register interface {
	Addr() uint8
	Val() uint32
}

// Addresses of every register address recognized by the mirror, in the
// canonical 0x00..0xFC, step-4 layout.
const (
	AddrChipIdentification           = 0x00
	AddrHashRate                     = 0x04
	AddrPLL0Parameter                = 0x08
	AddrChipNonceOffset              = 0x0C
	AddrHashCountingNumber           = 0x10
	AddrTicketMask                   = 0x14
	AddrMiscControl                  = 0x18
	AddrI2CControl                   = 0x1C
	AddrOrderedClockEnable           = 0x20
	Addr24                           = 0x24
	AddrFastUARTConfiguration        = 0x28
	AddrUARTRelay                    = 0x2C
	Addr30                           = 0x30
	Addr34                           = 0x34
	AddrTicketMask2                  = 0x38
	AddrCoreRegisterControl          = 0x3C
	AddrCoreRegisterValue            = 0x40
	AddrExternalTemperatureSensor    = 0x44
	AddrErrorFlag                    = 0x48
	AddrNonceErrorCounter            = 0x4C
	AddrNonceOverflowCounter         = 0x50
	AddrAnalogMuxControl             = 0x54
	AddrIoDriverStrengthConfiguration = 0x58
	AddrTimeout                      = 0x5C
	AddrPLL1Parameter                = 0x60
	AddrPLL2Parameter                = 0x64
	AddrPLL3Parameter                = 0x68
	AddrOrderedClockMonitor          = 0x6C
	AddrPLL0Divider                  = 0x70
	AddrPLL1Divider                  = 0x74
	AddrPLL2Divider                  = 0x78
	AddrPLL3Divider                  = 0x7C
	AddrClockOrderControl0           = 0x80
	AddrClockOrderControl1           = 0x84
	Addr88                           = 0x88
	AddrClockOrderStatus             = 0x8C
	AddrFrequencySweepControl1       = 0x90
	AddrGoldenNonceForSweepReturn    = 0x94
	AddrReturnedGroupPatternStatus   = 0x98
	AddrNonceReturnedTimeout         = 0x9C
	AddrReturnedSinglePatternStatus  = 0xA0
	AddrVersionRolling               = 0xA4
	AddrA8                          = 0xA8
)

// unnamedAddrs lists the remaining registers in the 0xAC..0xFC range that
// carry no documented bitfield semantics and are mirrored opaquely.
var unnamedAddrs = func() map[uint8]struct{} {
	m := make(map[uint8]struct{})
	for a := uint32(0xAC); a <= 0xFC; a += 4 {
		m[uint8(a)] = struct{}{}
	}
	return m
}()

// namedAddrs lists every address with a dedicated wrapper type or documented
// semantics, used by Parse and by Mirror.Known.
var namedAddrs = map[uint8]struct{}{
	AddrChipIdentification: {}, AddrHashRate: {}, AddrPLL0Parameter: {},
	AddrChipNonceOffset: {}, AddrHashCountingNumber: {}, AddrTicketMask: {},
	AddrMiscControl: {}, AddrI2CControl: {}, AddrOrderedClockEnable: {},
	Addr24: {}, AddrFastUARTConfiguration: {}, AddrUARTRelay: {},
	Addr30: {}, Addr34: {}, AddrTicketMask2: {}, AddrCoreRegisterControl: {},
	AddrCoreRegisterValue: {}, AddrExternalTemperatureSensor: {}, AddrErrorFlag: {},
	AddrNonceErrorCounter: {}, AddrNonceOverflowCounter: {}, AddrAnalogMuxControl: {},
	AddrIoDriverStrengthConfiguration: {}, AddrTimeout: {},
	AddrPLL1Parameter: {}, AddrPLL2Parameter: {}, AddrPLL3Parameter: {},
	AddrOrderedClockMonitor: {}, AddrPLL0Divider: {}, AddrPLL1Divider: {},
	AddrPLL2Divider: {}, AddrPLL3Divider: {}, AddrClockOrderControl0: {},
	AddrClockOrderControl1: {}, Addr88: {}, AddrClockOrderStatus: {},
	AddrFrequencySweepControl1: {}, AddrGoldenNonceForSweepReturn: {},
	AddrReturnedGroupPatternStatus: {}, AddrNonceReturnedTimeout: {},
	AddrReturnedSinglePatternStatus: {}, AddrVersionRolling: {}, AddrA8: {},
}

// UnknownRegisterError is returned by Parse for an address the mirror does
// not recognize at all.
type UnknownRegisterError struct{ RegAddr uint8 }

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("bm13xxregister: unknown register address %#02x", e.RegAddr)
}

// Raw is the opaque wrapper used for registers with no documented bitfield
// semantics.
type Raw struct {
	addr uint8
	val  uint32
}

func (r Raw) Addr() uint8 { return r.addr }
func (r Raw) Val() uint32 { return r.val }

// Parse maps a (address, value) pair to the named register wrapper for that
// address, or Raw for a recognized-but-opaque address, or
// UnknownRegisterError for an address outside the model's ~60-entry map.
func Parse(addr uint8, val uint32) (Register, error) {
	switch addr {
	case AddrChipIdentification:
		return ChipIdentification(val), nil
	case AddrChipNonceOffset:
		return ChipNonceOffsetV2(val), nil
	case AddrTicketMask, AddrTicketMask2:
		return TicketMask{addr: addr, val: val}, nil
	case AddrMiscControl:
		return MiscControl(val), nil
	case AddrFastUARTConfiguration:
		return FastUARTConfigurationV2(val), nil
	case AddrUARTRelay:
		return UARTRelay(val), nil
	case AddrCoreRegisterControl:
		return CoreRegisterControl(val), nil
	case AddrAnalogMuxControl:
		return AnalogMuxControlV2(val), nil
	case AddrIoDriverStrengthConfiguration:
		return IoDriverStrengthConfiguration(val), nil
	case AddrVersionRolling:
		return VersionRolling(val), nil
	case AddrA8:
		return RegA8(val), nil
	}
	if _, ok := namedAddrs[addr]; ok {
		return Raw{addr: addr, val: val}, nil
	}
	if _, ok := unnamedAddrs[addr]; ok {
		return Raw{addr: addr, val: val}, nil
	}
	return nil, &UnknownRegisterError{RegAddr: addr}
}

// Mirror is the per-chip map from register address to its current 32-bit
// value, authoritative for every host-visible change: callers must write
// through it before, or in the same step as, sending the command on the
// wire.
type Mirror map[uint8]uint32

// NewMirror allocates an empty mirror with enough capacity for the full
// register set.
func NewMirror() Mirror {
	return make(Mirror, 64)
}

// Get returns the mirrored value for addr, or 0 if never written.
func (m Mirror) Get(addr uint8) uint32 { return m[addr] }

// Set writes val into the mirror at addr.
func (m Mirror) Set(addr uint8, val uint32) { m[addr] = val }
