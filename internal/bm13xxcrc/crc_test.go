package bm13xxcrc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC5ByteAligned(t *testing.T) {
	assert.Equal(t, uint8(0x03), CRC5([]byte{0x53, 0x05, 0x00, 0x00}), "chain inactive")
	assert.Equal(t, uint8(0x0A), CRC5([]byte{0x52, 0x05, 0x00, 0x00}), "read chip identification")
	assert.Equal(t, uint8(0x1C), CRC5([]byte{0x51, 0x09, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00}), "write clock order control 0")
	assert.Equal(t, uint8(0x00), CRC5([]byte{0x13, 0x62, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1E}), "full register response frame")
	assert.Equal(t, uint8(0x00), CRC5([]byte{0x2F, 0xD5, 0x96, 0xCE, 0x02, 0x93, 0x94, 0xFB, 0x86}), "full nonce response frame")
}

func TestCRC5BitAligned(t *testing.T) {
	assert.Equal(t, CRC5(nil), CRC5Bits(nil), "empty slice matches byte-aligned crc5")
	assert.Equal(t, uint8(0x1E), CRC5Bits([]byte{0x13, 0x62, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}))
	assert.Equal(t, uint8(0x06), CRC5Bits([]byte{0x2F, 0xD5, 0x96, 0xCE, 0x02, 0x93, 0x94, 0xFB, 0x80}))
}

func TestCRC16(t *testing.T) {
	job := []byte{
		0x21, 0x96, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x15, 0x9E, 0x07, 0x17, 0x75, 0x32,
		0x8E, 0x63, 0xA2, 0xB3, 0x6A, 0x70, 0xDE, 0x60, 0x4A, 0x09, 0xE9, 0x30, 0x1D, 0xE1,
		0x25, 0x6D, 0x7E, 0xB8, 0x0E, 0xA1, 0xE6, 0x43, 0x82, 0xDF, 0x61, 0x14, 0x15, 0x03,
		0x96, 0x6C, 0x18, 0x5F, 0x50, 0x2F, 0x55, 0x74, 0xD4, 0xBA, 0xAE, 0x2F, 0x3F, 0xC6,
		0x02, 0xD9, 0xCD, 0x3B, 0x9E, 0x39, 0xAD, 0x97, 0x9C, 0xFD, 0xFF, 0x3A, 0x40, 0x49,
		0x4D, 0xB6, 0xD7, 0x8D, 0xA4, 0x51, 0x34, 0x99, 0x29, 0xD1, 0xAD, 0x36, 0x66, 0x1D,
		0xDF, 0xFF, 0xC1, 0xCC, 0x89, 0x33, 0xEA, 0xF3, 0xE8, 0x3A, 0x91, 0x58, 0xA6, 0xD6,
		0xFA, 0x02, 0x0D, 0xCF, 0x60, 0xF8, 0xC1, 0x0E, 0x99, 0x36, 0xDE, 0x71, 0xDB, 0xD3,
		0xF7, 0xD2, 0x86, 0xAF, 0xAD, 0x62, 0x59, 0x3A, 0x8D, 0xA3, 0x28, 0xAF, 0xEC, 0x09,
		0x6D, 0x86, 0xB9, 0x8E, 0x30, 0xE5, 0x79, 0xAE, 0xA4, 0x35, 0xE1, 0x4B, 0xB5, 0xD7,
		0x09, 0xCC, 0xE1, 0x74, 0x04, 0x3A, 0x7C, 0x2D,
	}
	assert.Equal(t, uint16(0x1B5C), CRC16(job))

	full := append(append([]byte{}, job...), 0x1B, 0x5C)
	assert.Equal(t, uint16(0), CRC16(full))
}
