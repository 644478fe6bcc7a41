// Package bm13xxasic defines the per-chip-model driver contract: the
// command/delay pairs a chip produces for each configuration sequence, the
// chip's fixed topology, and the address arithmetic used to map nonces and
// version bits back to originating cores.
package bm13xxasic

import (
	"time"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxtopology"
)

// CmdDelay pairs one wire-ready command frame with the delay the chain
// driver must wait after sending it before issuing the next command. Delay
// is zero when no wait is required.
type CmdDelay struct {
	Cmd   []byte
	Delay time.Duration
}

// Asic is implemented by every supported chip model. Bulk-sequence chips
// (e.g. BM1366) return every step of a sequence at once; stepwise chips
// (e.g. BM1370) instead drive the SequenceStep state machine returned by
// the *Next methods, one step per call.
type Asic interface {
	// ChipID is the model identifier reported in register 0x00's upper 16
	// bits, e.g. 0x1366 or 0x1370.
	ChipID() uint16

	// HasVersionRolling reports whether this model supports hardware
	// version rolling.
	HasVersionRolling() bool

	// Topology returns the chip's fixed SHA core/domain layout.
	Topology() bm13xxtopology.SHA

	// HashFreq returns the chip's configured hashing frequency.
	HashFreq() bm13xxclock.Frequency

	// SetHashFreq configures the chip's target hashing frequency; it does
	// not by itself produce wire commands, only updates the model the
	// next sequence step derives from.
	SetHashFreq(bm13xxclock.Frequency)

	// TheoreticalHashrateGHs returns the chip's theoretical hashrate in
	// GH/s at its currently configured frequency.
	TheoreticalHashrateGHs() float64

	// NonceToCoreID maps a returned nonce's high bits to the originating
	// core id.
	NonceToCoreID(nonce uint32) uint16

	// NonceToSmallCoreID maps a returned nonce's high bits to the
	// originating small-core id.
	NonceToSmallCoreID(nonce uint32) uint16

	// VersionToSmallCoreID maps a rolled version's high bits to the
	// originating small-core id, for chips with version rolling.
	VersionToSmallCoreID(version uint32) uint16

	// Init returns the full command/delay sequence that brings a
	// newly-addressed chip up to its configured operating state: core
	// clock-register writes, ticket mask, analog mux and I/O driver
	// strength. Version rolling, hash frequency and core resets are
	// separate sequences and are not part of it.
	Init(initialDifficulty uint32, domainCnt, asicCntPerDomain uint8, addrInterval uint16) []CmdDelay

	// SetBaudrate returns the command/delay sequence that reconfigures a
	// chip's UART divider for baudrate. The caller must switch its own
	// transport's baudrate only after the whole sequence has been sent
	// and a settling delay has elapsed.
	SetBaudrate(baudrate uint32) []CmdDelay
}

// SequenceKind names one of the chip configuration sequences a chain driver
// drives to completion.
type SequenceKind uint8

const (
	SequenceNone SequenceKind = iota
	SequenceInit
	SequenceBaudrate
	SequenceResetCore
	SequenceHashFreq
	SequenceVersionRolling
	SequenceSplitNonce
)

// SequenceStep is the state of an in-progress stepwise sequence: which
// sequence is running and the position within it. Each sequence defines its
// own positions, so Index need not equal the number of steps produced.
// The zero value is SequenceNone, meaning no sequence is in progress.
type SequenceStep struct {
	Kind  SequenceKind
	Index int
}

// Next advances the step index within the same sequence kind.
func (s SequenceStep) Next() SequenceStep {
	return SequenceStep{Kind: s.Kind, Index: s.Index + 1}
}

// Done reports whether no sequence is in progress: the zero value, or the
// state after a *Next method has returned nil.
func (s SequenceStep) Done() bool { return s.Kind == SequenceNone }

// Start begins a new sequence at step 0.
func Start(kind SequenceKind) SequenceStep {
	return SequenceStep{Kind: kind, Index: 0}
}
