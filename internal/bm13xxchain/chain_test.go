package bm13xxchain

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxtopology"
)

type fakeAsic struct {
	chipID uint16
	freq   bm13xxclock.Frequency
}

func (f *fakeAsic) ChipID() uint16                      { return f.chipID }
func (f *fakeAsic) HasVersionRolling() bool              { return true }
func (f *fakeAsic) Topology() bm13xxtopology.SHA         { return bm13xxtopology.New(1, 1, 1, 1) }
func (f *fakeAsic) HashFreq() bm13xxclock.Frequency      { return f.freq }
func (f *fakeAsic) SetHashFreq(freq bm13xxclock.Frequency) { f.freq = freq }
func (f *fakeAsic) TheoreticalHashrateGHs() float64      { return 0 }
func (f *fakeAsic) NonceToCoreID(uint32) uint16          { return 0 }
func (f *fakeAsic) NonceToSmallCoreID(uint32) uint16     { return 0 }
func (f *fakeAsic) VersionToSmallCoreID(uint32) uint16   { return 0 }
func (f *fakeAsic) Init(uint32, uint8, uint8, uint16) []bm13xxasic.CmdDelay {
	return []bm13xxasic.CmdDelay{{Cmd: []byte{0x01}, Delay: 0}}
}
func (f *fakeAsic) SetBaudrate(uint32) []bm13xxasic.CmdDelay {
	return []bm13xxasic.CmdDelay{{Cmd: []byte{0x02}, Delay: 0}}
}

type fakePort struct {
	written  [][]byte
	response []byte
	baudSet  uint32
}

func (p *fakePort) Write(ctx context.Context, b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	p.written = append(p.written, cp)
	return nil
}

func (p *fakePort) Read(ctx context.Context, b []byte) (int, error) {
	n := copy(b, p.response)
	return n, nil
}

func (p *fakePort) SetBaudrate(baudrate uint32) error {
	p.baudSet = baudrate
	return nil
}

// chipIdentResponse9 is a known-valid 9-byte register response reporting
// chip id 0x1397, chip address 0, register address 0x00.
var chipIdentResponse9 = []byte{0xAA, 0x55, 0x13, 0x97, 0x18, 0x00, 0x00, 0x00, 0x06}

func TestEnumerateSuccess(t *testing.T) {
	asic := &fakeAsic{chipID: 0x1397}
	port := &fakePort{response: chipIdentResponse9}
	chain := New(1, asic, 1, port)
	chain.sleep = func(context.Context, time.Duration) {}

	err := chain.Enumerate(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, uint16(256), chain.AsicAddrInterval)
	assert.True(t, len(port.written) >= 1+3+1)
}

func TestEnumerateUnexpectedAsic(t *testing.T) {
	asic := &fakeAsic{chipID: 0x1366}
	port := &fakePort{response: chipIdentResponse9}
	chain := New(1, asic, 1, port)
	chain.sleep = func(context.Context, time.Duration) {}

	err := chain.Enumerate(context.Background())
	var unexpectedAsic *UnexpectedAsicError
	assert.ErrorAs(t, err, &unexpectedAsic)
}

func TestEnumerateUnexpectedCount(t *testing.T) {
	asic := &fakeAsic{chipID: 0x1397}
	port := &fakePort{response: chipIdentResponse9}
	chain := New(2, asic, 1, port)
	chain.sleep = func(context.Context, time.Duration) {}

	err := chain.Enumerate(context.Background())
	var unexpectedCount *UnexpectedAsicCountError
	assert.ErrorAs(t, err, &unexpectedCount)
	assert.Equal(t, uint8(2), unexpectedCount.Expected)
	assert.Equal(t, uint8(1), unexpectedCount.Actual)
}

func TestSetBaudrate(t *testing.T) {
	asic := &fakeAsic{chipID: 0x1366}
	port := &fakePort{}
	chain := New(1, asic, 1, port)
	chain.sleep = func(context.Context, time.Duration) {}

	err := chain.SetBaudrate(context.Background(), 3_000_000)
	assert.NoError(t, err)
	assert.Equal(t, uint32(3_000_000), port.baudSet)
	assert.True(t, bytes.Equal(port.written[0], []byte{0x02}))
}

func TestInit(t *testing.T) {
	asic := &fakeAsic{chipID: 0x1366}
	port := &fakePort{}
	chain := New(1, asic, 1, port)
	chain.AsicAddrInterval = 256
	chain.sleep = func(context.Context, time.Duration) {}

	err := chain.Init(context.Background(), 256)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal(port.written[0], []byte{0x01}))
}
