// Package bm13xxpll models a single BM13xx phase-locked loop: its lock and
// enable flags, its feedback/reference/post dividers, and its vector of up
// to five output dividers, plus the frequency arithmetic derived from them.
package bm13xxpll

import "github.com/guiperry/bm13xx-driver/internal/bm13xxclock"

// Pll is the in-memory mirror of one PLL's control state.
type Pll struct {
	enabled   bool
	locked    bool
	fbDiv     uint16
	refDiv    uint8
	post1Div  uint8
	post2Div  uint8
	outDiv    [5]uint8
}

// Parameter packs the PLL into its 32-bit parameter word: bit 31=locked,
// bit 30=enabled, bits 27:16=fb_div (12 bits), bits 13:8=ref_div, bits
// 6:4=post1_div, bits 2:0=post2_div.
func (p *Pll) Parameter() uint32 {
	var locked, enabled uint32
	if p.locked {
		locked = 1
	}
	if p.enabled {
		enabled = 1
	}
	return locked<<31 | enabled<<30 |
		uint32(p.fbDiv)<<16 |
		uint32(p.refDiv)<<8 |
		uint32(p.post1Div)<<4 |
		uint32(p.post2Div)
}

// SetParameter unpacks a 32-bit parameter word into the PLL's fields.
func (p *Pll) SetParameter(parameter uint32) *Pll {
	p.locked = parameter&0x8000_0000 != 0
	p.enabled = parameter&0x4000_0000 != 0
	p.fbDiv = uint16((parameter >> 16) & 0xfff)
	p.refDiv = uint8((parameter >> 8) & 0x3f)
	p.post1Div = uint8((parameter >> 4) & 0x7)
	p.post2Div = uint8(parameter & 0x7)
	return p
}

// Divider packs out_div[3..0] into the 32-bit divider word. out_div[4]
// never appears here; it is carried by the baudrate configuration instead.
func (p *Pll) Divider() uint32 {
	return uint32(p.outDiv[3])<<24 | uint32(p.outDiv[2])<<16 | uint32(p.outDiv[1])<<8 | uint32(p.outDiv[0])
}

// SetDivider unpacks a 32-bit divider word into out_div[3..0].
func (p *Pll) SetDivider(divider uint32) *Pll {
	p.outDiv[3] = uint8((divider >> 24) & 0xf)
	p.outDiv[2] = uint8((divider >> 16) & 0xf)
	p.outDiv[1] = uint8((divider >> 8) & 0xf)
	p.outDiv[0] = uint8(divider & 0xf)
	return p
}

// OutDiv returns the output divider for output index out (0..4), or 0 if out
// is out of range.
func (p *Pll) OutDiv(out int) uint8 {
	if out < 5 {
		return p.outDiv[out]
	}
	return 0
}

// SetOutDiv sets the output divider for output index out (0..4), masked to
// its 4-bit field. Out-of-range indexes are a no-op.
func (p *Pll) SetOutDiv(out int, div uint8) *Pll {
	if out < 5 {
		p.outDiv[out] = div & 0xf
	}
	return p
}

// Frequency returns the PLL's output frequency for the given output index,
// derived from inClk. A disabled, unlocked, or out-of-range PLL yields 0.
func (p *Pll) Frequency(inClk bm13xxclock.Frequency, out int) bm13xxclock.Frequency {
	if !p.enabled || !p.locked || out >= 5 {
		return 0
	}
	denom := uint64(p.refDiv) * uint64(p.post1Div) * uint64(p.post2Div) * uint64(p.outDiv[out]+1)
	return inClk.MulDiv(uint64(p.fbDiv), denom)
}

// Locked reports whether the PLL reports lock.
func (p *Pll) Locked() bool { return p.locked }

// Lock marks the PLL as locked.
func (p *Pll) Lock() *Pll { p.locked = true; return p }

// Unlock marks the PLL as unlocked.
func (p *Pll) Unlock() *Pll { p.locked = false; return p }

// Enabled reports whether the PLL is enabled.
func (p *Pll) Enabled() bool { return p.enabled }

// Enable turns the PLL on.
func (p *Pll) Enable() *Pll { p.enabled = true; return p }

// Disable turns the PLL off.
func (p *Pll) Disable() *Pll { p.enabled = false; return p }

// FbDiv returns the feedback divider.
func (p *Pll) FbDiv() uint16 { return p.fbDiv }

// SetFbDiv sets the feedback divider, masked to 12 bits.
func (p *Pll) SetFbDiv(div uint16) *Pll { p.fbDiv = div & 0xfff; return p }

// RefDiv returns the reference divider.
func (p *Pll) RefDiv() uint8 { return p.refDiv }

// SetRefDiv sets the reference divider, masked to 6 bits.
func (p *Pll) SetRefDiv(div uint8) *Pll { p.refDiv = div & 0x3f; return p }

// Post1Div returns the first post-divider.
func (p *Pll) Post1Div() uint8 { return p.post1Div }

// SetPost1Div sets the first post-divider, masked to 3 bits.
func (p *Pll) SetPost1Div(div uint8) *Pll { p.post1Div = div & 0x7; return p }

// Post2Div returns the second post-divider.
func (p *Pll) Post2Div() uint8 { return p.post2Div }

// SetPost2Div sets the second post-divider, masked to 3 bits.
func (p *Pll) SetPost2Div(div uint8) *Pll { p.post2Div = div & 0x7; return p }

// SetFrequency searches (fb, ref, post1, post2, outDiv) combinations so that
// Frequency(inClk, out) approximates target as closely as possible, then
// applies the chosen combination. The search is not prescribed by the
// protocol, only that the resulting frequency be the closest achievable one
// at or below target with post1/post2 fixed at 1 (the configuration every
// BM13xx sequence in this driver actually uses).
func (p *Pll) SetFrequency(inClk bm13xxclock.Frequency, out int, target bm13xxclock.Frequency) *Pll {
	if out >= 5 || target == 0 || inClk == 0 {
		return p
	}
	bestFb, bestOutDiv := uint16(1), uint8(0)
	bestFreq := bm13xxclock.Frequency(0)
	for outDiv := uint8(0); outDiv < 16; outDiv++ {
		denom := uint64(outDiv) + 1
		fb := uint64(target) * denom / uint64(inClk)
		if fb == 0 {
			fb = 1
		}
		if fb > 0xfff {
			fb = 0xfff
		}
		freq := inClk.MulDiv(fb, denom)
		if freq <= target && freq > bestFreq {
			bestFreq = freq
			bestFb = uint16(fb)
			bestOutDiv = outDiv
		}
	}
	p.locked = true
	p.enabled = true
	p.refDiv = 1
	p.post1Div = 1
	p.post2Div = 1
	p.fbDiv = bestFb
	p.outDiv[out] = bestOutDiv
	return p
}
