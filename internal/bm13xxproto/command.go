// Package bm13xxproto implements the BM13xx wire protocol: command framing
// with CRC5/CRC16 and the two chip response framings.
package bm13xxproto

import "github.com/guiperry/bm13xx-driver/internal/bm13xxcrc"

// Destination selects whether a command targets every chip on the chain or
// a single chip address.
type Destination struct {
	all  bool
	addr uint8
}

// All targets every chip on the chain.
func All() Destination { return Destination{all: true} }

// Chip targets a single chip by its logical address.
func Chip(addr uint8) Destination { return Destination{addr: addr} }

// IsAll reports whether this destination targets every chip on the chain.
func (d Destination) IsAll() bool { return d.all }

// Addr returns the targeted chip's logical address; meaningless when IsAll
// is true.
func (d Destination) Addr() uint8 { return d.addr }

const (
	cmdAllChip       = 0x10
	cmdSendJob       = 0x21
	cmdSetChipAddr   = 0x40
	cmdWriteRegister = 0x41
	cmdReadRegister  = 0x42
	cmdChainInactive = 0x43
)

// ChainInactive disables the CI-to-CO relay on every chip, typically sent
// before addressing chips individually with SetChipAddr.
func ChainInactive() []byte {
	data := []byte{0x55, 0xAA, cmdChainInactive + cmdAllChip, 5, 0, 0, 0}
	data[6] = bm13xxcrc.CRC5(data[2:6])
	return data
}

// SetChipAddr assigns a logical chip address to the first unaddressed chip
// on the chain.
func SetChipAddr(addr uint8) []byte {
	data := []byte{0x55, 0xAA, cmdSetChipAddr, 5, addr, 0, 0}
	data[6] = bm13xxcrc.CRC5(data[2:6])
	return data
}

// ReadReg builds a read-register command.
func ReadReg(regAddr uint8, dest Destination) []byte {
	data := []byte{0x55, 0xAA, cmdReadRegister, 5, 0, regAddr, 0}
	if dest.all {
		data[2] += cmdAllChip
	} else {
		data[4] = dest.addr
	}
	data[6] = bm13xxcrc.CRC5(data[2:6])
	return data
}

// WriteReg builds a write-register command carrying a big-endian 32-bit value.
func WriteReg(regAddr uint8, regVal uint32, dest Destination) []byte {
	data := []byte{
		0x55, 0xAA, cmdWriteRegister, 9, 0, regAddr,
		byte(regVal >> 24), byte(regVal >> 16), byte(regVal >> 8), byte(regVal),
		0,
	}
	if dest.all {
		data[2] += cmdAllChip
	} else {
		data[4] = dest.addr
	}
	data[10] = bm13xxcrc.CRC5(data[2:10])
	return data
}

func le32(v uint32) [4]byte {
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// Job1Midstate builds a job frame carrying a single SHA-256 midstate.
func Job1Midstate(jobID uint8, nBits, nTime, merkleRoot uint32, midstate [32]byte) []byte {
	return jobMidstates(jobID, nBits, nTime, merkleRoot, [][32]byte{midstate})
}

// Job4Midstate builds a job frame carrying four SHA-256 midstates (one per
// version-rolling roll).
func Job4Midstate(jobID uint8, nBits, nTime, merkleRoot uint32, midstates [4][32]byte) []byte {
	return jobMidstates(jobID, nBits, nTime, merkleRoot, [][32]byte{
		midstates[0], midstates[1], midstates[2], midstates[3],
	})
}

func jobMidstates(jobID uint8, nBits, nTime, merkleRoot uint32, midstates [][32]byte) []byte {
	data := make([]byte, 22+32*len(midstates)+2)
	data[0] = 0x55
	data[1] = 0xAA
	data[2] = cmdSendJob
	data[3] = byte(len(data) - 2)
	data[4] = jobID
	data[5] = byte(len(midstates))
	nb, nt, mr := le32(nBits), le32(nTime), le32(merkleRoot)
	copy(data[10:14], nb[:])
	copy(data[14:18], nt[:])
	copy(data[18:22], mr[:])
	offset := 22
	for _, ms := range midstates {
		copy(data[offset:offset+32], ms[:])
		offset += 32
	}
	crc := bm13xxcrc.CRC16(data[2:offset])
	data[offset] = byte(crc >> 8)
	data[offset+1] = byte(crc)
	return data
}

// JobHeader builds a job frame for hardware version rolling: a full 80-byte
// header (merkle root + previous block hash + version) instead of
// precomputed midstates.
func JobHeader(jobID uint8, nBits, nTime uint32, fullMerkleRoot, prevBlockHeaderHash [32]byte, version uint32) []byte {
	data := make([]byte, 88)
	data[0] = 0x55
	data[1] = 0xAA
	data[2] = cmdSendJob
	data[3] = byte(len(data) - 32 - 2)
	data[4] = jobID
	data[5] = 1
	nb, nt, ver := le32(nBits), le32(nTime), le32(version)
	copy(data[10:14], nb[:])
	copy(data[14:18], nt[:])
	copy(data[18:50], fullMerkleRoot[:])
	copy(data[50:82], prevBlockHeaderHash[:])
	copy(data[82:86], ver[:])
	crc := bm13xxcrc.CRC16(data[2:86])
	data[86] = byte(crc >> 8)
	data[87] = byte(crc)
	return data
}
