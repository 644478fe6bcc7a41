package bm13xxcoreregister

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockDelayControlRoundTrip(t *testing.T) {
	var r ClockDelayControl
	r = r.SetCoreClockDelay(2).SetCCDelaySel(true).SetPWTH(true).SetMultiMidstate(true)
	assert.Equal(t, uint8(2), r.CoreClockDelay())
	assert.True(t, r.CCDelaySel())
	assert.True(t, r.PWTH())
	assert.True(t, r.MultiMidstate())
}

func TestHashClockControlAndCounter(t *testing.T) {
	var c HashClockControl
	assert.False(t, c.Enabled())
	c = c.SetEnabled(true)
	assert.True(t, c.Enabled())

	var n HashClockCounter
	n = n.SetCount(0x42)
	assert.Equal(t, uint8(0x42), n.Count())
}

func TestCoreReg2(t *testing.T) {
	var r CoreReg2
	r = r.SetStart(true).SetSelect(0x5)
	assert.True(t, r.Start())
	assert.Equal(t, uint8(0x5), r.Select())
}

func TestParseKnownAndOpaque(t *testing.T) {
	reg, err := Parse(IDClockDelayControl, 0x40)
	assert.NoError(t, err)
	assert.IsType(t, ClockDelayControl(0), reg)

	reg, err = Parse(IDCoreError, 0x01)
	assert.NoError(t, err)
	assert.IsType(t, Raw{}, reg)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse(0x17, 0)
	assert.Error(t, err)
	var unknownErr *UnknownCoreRegisterError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestMirror(t *testing.T) {
	m := NewMirror()
	m.Set(IDHashClockControl, 1)
	assert.Equal(t, uint8(1), m.Get(IDHashClockControl))
	assert.Equal(t, uint8(0), m.Get(IDCoreError))
}
