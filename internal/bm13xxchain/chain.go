// Package bm13xxchain drives a string of BM13xx chips wired CI-to-CO:
// enumeration, baudrate switching and the full initialization sequence,
// built from the per-model command/delay sequences an Asic produces.
package bm13xxchain

import (
	"context"
	"time"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxasic"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
)

// Port is the minimal duplex transport a Chain drives commands over.
type Port interface {
	Write(ctx context.Context, p []byte) error
	Read(ctx context.Context, p []byte) (int, error)
}

// Baud is implemented by a Port that supports switching its line rate after
// a chip-side set-baudrate sequence completes.
type Baud interface {
	SetBaudrate(baudrate uint32) error
}

// Chain drives every chip on one CI-to-CO string, addressed 0..255 at a
// fixed interval derived from how many chips enumeration actually found.
type Chain struct {
	AsicCnt          uint8
	Asic             bm13xxasic.Asic
	AsicAddrInterval uint16
	DomainCnt        uint8

	port  Port
	sleep func(context.Context, time.Duration)
}

// New builds a Chain for asicCnt chips of the given model, driven over
// port, organized into domainCnt hashing domains.
func New(asicCnt uint8, asic bm13xxasic.Asic, domainCnt uint8, port Port) *Chain {
	return &Chain{
		AsicCnt:   asicCnt,
		Asic:      asic,
		DomainCnt: domainCnt,
		port:      port,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// Enumerate broadcasts a chip-identification read and reads a single reply,
// which must come from chip address 0 and carry this chain's chip id. It
// therefore finds at most one chip and returns UnexpectedAsicCountError
// whenever AsicCnt is not 1. On success it sets AsicAddrInterval to
// 256/count and assigns each chip a logical address spaced by that interval.
func (c *Chain) Enumerate(ctx context.Context) error {
	cmd := bm13xxproto.ReadReg(bm13xxregister.AddrChipIdentification, bm13xxproto.All())
	if err := c.port.Write(ctx, cmd); err != nil {
		return err
	}

	var raw [9]byte
	if _, err := c.port.Read(ctx, raw[:]); err != nil {
		return err
	}
	resp, err := bm13xxproto.ParseResponse(raw)
	if err != nil {
		return err
	}
	if resp.Kind != bm13xxproto.ResponseReg {
		return &UnexpectedResponseError{Resp: resp}
	}
	if resp.Reg.ChipAddr != 0 || resp.Reg.RegAddr != bm13xxregister.AddrChipIdentification {
		return &BadRegisterResponseError{RegResp: resp.Reg}
	}
	chipIdent := bm13xxregister.ChipIdentification(resp.Reg.RegValue)
	var asicCnt uint8
	if chipIdent.ChipID() == c.Asic.ChipID() {
		asicCnt = 1
	} else {
		return &UnexpectedAsicError{ChipIdent: chipIdent}
	}

	if asicCnt > 0 {
		c.AsicAddrInterval = 256 / uint16(asicCnt)
	}
	if asicCnt != c.AsicCnt {
		return &UnexpectedAsicCountError{Expected: c.AsicCnt, Actual: asicCnt}
	}
	if asicCnt == 0 {
		return &EmptyChainError{}
	}

	c.sleep(ctx, 50*time.Millisecond)
	inactive := bm13xxproto.ChainInactive()
	for i := 0; i < 3; i++ {
		if err := c.port.Write(ctx, inactive); err != nil {
			return err
		}
		if i < 2 {
			c.sleep(ctx, 2*time.Millisecond)
		} else {
			c.sleep(ctx, 30*time.Millisecond)
		}
	}
	for i := uint16(0); i < uint16(asicCnt); i++ {
		cmd := bm13xxproto.SetChipAddr(uint8(i * c.AsicAddrInterval))
		if err := c.port.Write(ctx, cmd); err != nil {
			return err
		}
		c.sleep(ctx, 10*time.Millisecond)
	}
	c.sleep(ctx, 100*time.Millisecond)
	return nil
}

// send drives a command/delay sequence over the transport one step at a
// time, sleeping between writes as each step prescribes.
func (c *Chain) send(ctx context.Context, steps []bm13xxasic.CmdDelay) error {
	for _, step := range steps {
		if err := c.port.Write(ctx, step.Cmd); err != nil {
			return err
		}
		if step.Delay > 0 {
			c.sleep(ctx, step.Delay)
		}
	}
	return nil
}

// SetBaudrate drives the chip-side baudrate-change sequence, waits for the
// chips to settle, then switches the transport's own line rate.
func (c *Chain) SetBaudrate(ctx context.Context, baudrate uint32) error {
	steps := c.Asic.SetBaudrate(baudrate)
	if err := c.send(ctx, steps); err != nil {
		return err
	}
	c.sleep(ctx, 50*time.Millisecond)
	baud, ok := c.port.(Baud)
	if !ok {
		return &SetBaudrateError{Baudrate: baudrate}
	}
	if err := baud.SetBaudrate(baudrate); err != nil {
		return &SetBaudrateError{Baudrate: baudrate}
	}
	return nil
}

// Init drives the chip initialization sequence returned by Asic.Init (core
// clock registers, ticket mask, analog mux, I/O driver strength) over the
// chain.
func (c *Chain) Init(ctx context.Context, initialDifficulty uint32) error {
	steps := c.Asic.Init(initialDifficulty, c.DomainCnt, c.AsicCnt/c.DomainCnt, c.AsicAddrInterval)
	if err := c.send(ctx, steps); err != nil {
		return err
	}
	c.sleep(ctx, 100*time.Millisecond)
	return nil
}
