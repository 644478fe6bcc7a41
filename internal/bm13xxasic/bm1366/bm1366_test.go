package bm1366

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
)

func TestDefaults(t *testing.T) {
	b := New()
	assert.Equal(t, uint16(0x1366), b.ChipID())
	assert.True(t, b.HasVersionRolling())
	assert.True(t, b.HashFreq() > 0)
}

func TestTheoreticalHashrate(t *testing.T) {
	b := New()
	assert.True(t, b.TheoreticalHashrateGHs() > 0)
}

func TestSetHashFreq(t *testing.T) {
	b := New()
	b.SetHashFreq(bm13xxclock.MHz(200))
	assert.Equal(t, bm13xxclock.MHz(200), b.HashFreq())
}

func TestNonceAddressHelpers(t *testing.T) {
	b := New()
	assert.Equal(t, uint16(0x09), b.NonceToCoreID(0x12345678))
	assert.Equal(t, uint16(72), b.NonceToCoreID(0x906732c8))

	assert.Equal(t, uint16(0), b.NonceToSmallCoreID(0x12045678))
	assert.Equal(t, uint16(1), b.NonceToSmallCoreID(0x12445678))
	assert.Equal(t, uint16(7), b.NonceToSmallCoreID(0x13c45678))
}

func TestVersionToSmallCoreID(t *testing.T) {
	b := New()
	b.EnableVersionRolling(0x1fffe000)
	assert.Equal(t, uint16(0), b.VersionToSmallCoreID(0x1fff0000))
	assert.Equal(t, uint16(1), b.VersionToSmallCoreID(0x1fff2000))
	assert.Equal(t, uint16(7), b.VersionToSmallCoreID(0x1fffe000))
}

func TestNonceToChipAddr(t *testing.T) {
	b := New()
	assert.Equal(t, uint8(0xD1), b.NonceToChipAddr(0x12345678))
	b.EnableVersionRolling(0x1fffe000)
	assert.Equal(t, uint8(0x1A), b.NonceToChipAddr(0x12345679))
}

func TestInitProducesSteps(t *testing.T) {
	b := New()
	steps := b.Init(256, 1, 10, 2)
	assert.NotEmpty(t, steps)
	for _, s := range steps {
		assert.NotEmpty(t, s.Cmd)
	}
}

func TestSetBaudrateProducesSteps(t *testing.T) {
	b := New()
	steps := b.SetBaudrate(6_250_000)
	assert.Len(t, steps, 2)
	assert.True(t, b.plls[pllIDUART].Enabled())

	b2 := New()
	steps2 := b2.SetBaudrate(1_000_000)
	assert.Len(t, steps2, 2)
	assert.False(t, b2.plls[pllIDUART].Enabled())
}

func TestResetCoreAll(t *testing.T) {
	b := New()
	steps := b.ResetCore(bm13xxproto.All())
	assert.Len(t, steps, 6)
}

func TestResetCoreChip(t *testing.T) {
	b := New()
	steps := b.ResetCore(bm13xxproto.Chip(0))
	assert.Len(t, steps, 5)
}

func TestSendHashFreq(t *testing.T) {
	b := New()
	steps := b.SendHashFreq(bm13xxclock.MHz(75))
	assert.NotEmpty(t, steps)
	assert.Equal(t, bm13xxclock.MHz(75), b.HashFreq())
}

func TestSendVersionRolling(t *testing.T) {
	b := New()
	steps := b.SendVersionRolling(0x1fff_e000)
	assert.Len(t, steps, 2)
	assert.True(t, b.versionRollingEnabled)
	assert.Equal(t, uint32(0x1fff_e000), b.versionMask)
}
