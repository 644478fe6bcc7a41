package bm13xxproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponseInvalidPreamble(t *testing.T) {
	_, err := ParseResponse([9]byte{0x00, 0x55, 0x13, 0x97, 0x18, 0x00, 0x00, 0x00, 0x06})
	assert.IsType(t, &InvalidPreambleError{}, err)

	_, err = ParseResponse([9]byte{0xAA, 0x00, 0x13, 0x97, 0x18, 0x00, 0x00, 0x00, 0x06})
	assert.IsType(t, &InvalidPreambleError{}, err)
}

func TestParseResponseInvalidCRC(t *testing.T) {
	_, err := ParseResponse([9]byte{0xAA, 0x55, 0x13, 0x97, 0x18, 0x00, 0x00, 0x00, 0x00})
	assert.Equal(t, &InvalidCRCError{Expected: 0x06, Actual: 0x00}, err)
}

func TestParseResponseRegister(t *testing.T) {
	resp, err := ParseResponse([9]byte{0xAA, 0x55, 0x13, 0x97, 0x18, 0x00, 0x00, 0x00, 0x06})
	assert.NoError(t, err)
	assert.Equal(t, ResponseReg, resp.Kind)
	assert.Equal(t, RegisterResponse{ChipAddr: 0, RegAddr: 0x00, RegValue: 0x13971800}, resp.Reg)
}

func TestParseResponseJob(t *testing.T) {
	resp, err := ParseResponse([9]byte{0xAA, 0x55, 0x97, 0xC3, 0x28, 0xB6, 0x01, 0x63, 0x9C})
	assert.NoError(t, err)
	assert.Equal(t, ResponseJob, resp.Kind)
	assert.Equal(t, JobResponse{Nonce: 0x97C328B6, MidstateID: 1, JobID: 0x63}, resp.Job)
}

func TestParseVersionResponseRegister(t *testing.T) {
	resp, err := ParseVersionResponse([11]byte{0xAA, 0x55, 0x13, 0x62, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1E})
	assert.NoError(t, err)
	assert.Equal(t, ResponseReg, resp.Kind)
	assert.Equal(t, RegisterResponse{ChipAddr: 0, RegAddr: 0x00, RegValue: 0x13620300}, resp.Reg)
}

func TestParseVersionResponseJob(t *testing.T) {
	resp, err := ParseVersionResponse([11]byte{0xAA, 0x55, 0x2F, 0xD5, 0x96, 0xCE, 0x02, 0x93, 0x94, 0xFB, 0x86})
	assert.NoError(t, err)
	assert.Equal(t, ResponseJobVersion, resp.Kind)
	assert.Equal(t, JobVersionResponse{
		Nonce: 0x2FD596CE, MidstateID: 2, JobID: 0x93, VersionBit: 0x129F6000,
	}, resp.JobVersion)
}
