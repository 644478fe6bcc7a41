package bm13xxpll

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
)

func TestParameterRoundTrip(t *testing.T) {
	var p Pll
	assert.Equal(t, uint32(0xC0600161), p.SetParameter(0xC0600161).Parameter())
	assert.Equal(t, uint32(0x00640111), p.SetParameter(0x00640111).Parameter())
}

func TestDividerRoundTrip(t *testing.T) {
	var p Pll
	assert.Equal(t, uint32(0x03040607), p.SetDivider(0x03040607).Divider())
	assert.Equal(t, uint32(0x03040506), p.SetDivider(0x03040506).Divider())
}

func TestOutDiv(t *testing.T) {
	var p Pll
	assert.Equal(t, uint8(0), p.SetOutDiv(4, 0).OutDiv(4))
	assert.Equal(t, uint8(15), p.SetOutDiv(3, 15).OutDiv(3))
	assert.Equal(t, uint8(0), p.SetOutDiv(2, 16).OutDiv(2))
	assert.Equal(t, uint8(0), p.SetOutDiv(5, 10).OutDiv(5))
}

func TestFrequency(t *testing.T) {
	var p Pll
	p.SetParameter(0xC0600161)
	assert.Equal(t, bm13xxclock.MHz(400), p.Frequency(bm13xxclock.MHz(25), 0))
	assert.Equal(t, bm13xxclock.Frequency(0), p.Frequency(bm13xxclock.MHz(25), 5))
	p.SetParameter(0x00640111)
	assert.Equal(t, bm13xxclock.Frequency(0), p.Frequency(bm13xxclock.MHz(25), 0))
}

func TestLockEnable(t *testing.T) {
	var p Pll
	assert.False(t, p.Locked())
	assert.True(t, p.Lock().Locked())
	assert.False(t, p.Unlock().Locked())

	assert.False(t, p.Enabled())
	assert.True(t, p.Enable().Enabled())
	assert.False(t, p.Disable().Enabled())
}
