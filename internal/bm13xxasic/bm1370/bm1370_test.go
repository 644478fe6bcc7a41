package bm1370

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxclock"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
)

func TestChipIDAndTopology(t *testing.T) {
	b := New()
	assert.Equal(t, uint16(0x1370), b.ChipID())
	assert.True(t, b.HasVersionRolling())
	assert.Equal(t, uint32(CoreCount*CoreSmallCoreCount), uint32(b.Topology().SmallCoreCount))
}

func TestInitNextDrains(t *testing.T) {
	b := New()
	var steps []bm13xxasic.CmdDelay
	for {
		s := b.InitNext(256)
		if s == nil {
			break
		}
		steps = append(steps, *s)
	}
	assert.Len(t, steps, 5)
	for _, s := range steps {
		assert.NotEmpty(t, s.Cmd)
	}
	assert.True(t, b.seq.Done())
}

func TestInitAfterInterleavedCallRestarts(t *testing.T) {
	b := New()
	first := b.InitNext(256)
	assert.NotNil(t, first)
	assert.Equal(t, 1, b.seq.Index)

	restarted := b.SetHashFreqNext(bm13xxclock.MHz(400))
	assert.NotNil(t, restarted)
	assert.Equal(t, bm13xxasic.SequenceHashFreq, b.seq.Kind)
}

func TestSetBaudrateNextTerminates(t *testing.T) {
	b := New()
	var steps []bm13xxasic.CmdDelay
	for i := 0; i < 200; i++ {
		s := b.SetBaudrateNext(3_125_000, 13, 7, 2)
		if s == nil {
			break
		}
		steps = append(steps, *s)
	}
	assert.NotEmpty(t, steps)
	for _, s := range steps {
		assert.NotEmpty(t, s.Cmd)
	}
	assert.True(t, b.seq.Done())
}

func TestResetCoreNextAll(t *testing.T) {
	b := New()
	s1 := b.ResetCoreNext(bm13xxproto.All())
	assert.NotNil(t, s1)
	s2 := b.ResetCoreNext(bm13xxproto.All())
	assert.NotNil(t, s2)
	assert.Equal(t, 100*1000*1000, int(s2.Delay.Nanoseconds()))
	s3 := b.ResetCoreNext(bm13xxproto.All())
	assert.Nil(t, s3)
}

func TestResetCoreNextChip(t *testing.T) {
	b := New()
	var count int
	for {
		s := b.ResetCoreNext(bm13xxproto.Chip(0))
		if s == nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
}

func TestSetVersionRollingNext(t *testing.T) {
	b := New()
	s1 := b.SetVersionRollingNext(0x1fff_e000)
	assert.NotNil(t, s1)
	s2 := b.SetVersionRollingNext(0x1fff_e000)
	assert.NotNil(t, s2)
	s3 := b.SetVersionRollingNext(0x1fff_e000)
	assert.Nil(t, s3)
	assert.True(t, b.versionRollingEnabled)
	assert.Equal(t, uint32(0x1fff_e000), b.versionMask)
}

func TestSplitNonceBetweenChipsNext(t *testing.T) {
	b := New()
	var count int
	for {
		s := b.SplitNonceBetweenChipsNext(4, 64)
		if s == nil {
			break
		}
		count++
	}
	assert.Equal(t, 4, count)
}
