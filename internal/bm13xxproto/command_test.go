package bm13xxproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainInactive(t *testing.T) {
	assert.Equal(t, []byte{0x55, 0xAA, 0x53, 0x05, 0x00, 0x00, 0x03}, ChainInactive())
}

func TestSetChipAddr(t *testing.T) {
	assert.Equal(t, []byte{0x55, 0xAA, 0x40, 0x05, 0x00, 0x00, 0x1C}, SetChipAddr(0x00))
	assert.Equal(t, []byte{0x55, 0xAA, 0x40, 0x05, 0x08, 0x00, 0x07}, SetChipAddr(0x08))
}

func TestReadReg(t *testing.T) {
	assert.Equal(t, []byte{0x55, 0xAA, 0x52, 0x05, 0x00, 0x00, 0x0A}, ReadReg(0x00, All()))
	assert.Equal(t, []byte{0x55, 0xAA, 0x42, 0x05, 0x40, 0x1C, 0x0B}, ReadReg(0x1C, Chip(64)))
}

func TestWriteReg(t *testing.T) {
	assert.Equal(t,
		[]byte{0x55, 0xAA, 0x51, 0x09, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x1C},
		WriteReg(0x80, 0x00000000, All()))
	assert.Equal(t,
		[]byte{0x55, 0xAA, 0x41, 0x09, 0x40, 0x18, 0x00, 0x00, 0x7A, 0x31, 0x11},
		WriteReg(0x18, 0x00007A31, Chip(64)))
}

func TestJob1Midstate(t *testing.T) {
	midstate := [32]byte{
		0xDE, 0x60, 0x4A, 0x09, 0xE9, 0x30, 0x1D, 0xE1, 0x25, 0x6D, 0x7E, 0xB8, 0x0E, 0xA1,
		0xE6, 0x43, 0x82, 0xDF, 0x61, 0x14, 0x15, 0x03, 0x96, 0x6C, 0x18, 0x5F, 0x50, 0x2F,
		0x55, 0x74, 0xD4, 0xBA,
	}
	want := []byte{
		0x55, 0xAA, 0x21, 0x36, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x15, 0x9E, 0x07, 0x17,
		0x75, 0x32, 0x8E, 0x63, 0xA2, 0xB3, 0x6A, 0x70, 0xDE, 0x60, 0x4A, 0x09, 0xE9, 0x30,
		0x1D, 0xE1, 0x25, 0x6D, 0x7E, 0xB8, 0x0E, 0xA1, 0xE6, 0x43, 0x82, 0xDF, 0x61, 0x14,
		0x15, 0x03, 0x96, 0x6C, 0x18, 0x5F, 0x50, 0x2F, 0x55, 0x74, 0xD4, 0xBA, 0xD3, 0xDC,
	}
	assert.Equal(t, want, Job1Midstate(0, 0x17079E15, 0x638E3275, 0x706AB3A2, midstate))
}

func TestJobHeader(t *testing.T) {
	merkleRoot := [32]byte{
		0x2d, 0x19, 0x75, 0x74, 0x66, 0x63, 0x21, 0x46, 0xb8, 0x71, 0x7a, 0x7e,
		0xfe, 0x83, 0xec, 0x35, 0xc0, 0x96, 0xf3, 0xa4, 0xc0, 0xd8, 0x86, 0xda, 0xa8, 0x0e,
		0x70, 0x2e, 0xed, 0xe9, 0x96, 0x71,
	}
	prevHash := [32]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x86, 0x02, 0x00,
		0x5b, 0xa4, 0xa5, 0x0e, 0x55, 0xd3, 0x00, 0xfc, 0xae, 0x0e, 0xd5, 0x56, 0xd7, 0x76,
		0xd8, 0x1a, 0x38, 0xe1, 0x99, 0x1f,
	}
	want := []byte{
		0x55, 0xaa, 0x21, 0x36, 0xa8, 0x01, 0x00, 0x00, 0x00, 0x00, 0x50, 0x24, 0x04, 0x17,
		0x83, 0xde, 0x70, 0x65, 0x2d, 0x19, 0x75, 0x74, 0x66, 0x63, 0x21, 0x46, 0xb8, 0x71,
		0x7a, 0x7e, 0xfe, 0x83, 0xec, 0x35, 0xc0, 0x96, 0xf3, 0xa4, 0xc0, 0xd8, 0x86, 0xda,
		0xa8, 0x0e, 0x70, 0x2e, 0xed, 0xe9, 0x96, 0x71, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0xff, 0x86, 0x02, 0x00, 0x5b, 0xa4, 0xa5, 0x0e, 0x55, 0xd3, 0x00, 0xfc,
		0xae, 0x0e, 0xd5, 0x56, 0xd7, 0x76, 0xd8, 0x1a, 0x38, 0xe1, 0x99, 0x1f, 0x00, 0x00,
		0x00, 0x20, 0x30, 0xb9,
	}
	assert.Equal(t, want, JobHeader(168, 0x17042450, 0x6570de83, merkleRoot, prevHash, 0x20000000))
}
