package bm13xxchain

import (
	"fmt"

	"github.com/guiperry/bm13xx-driver/internal/bm13xxproto"
	"github.com/guiperry/bm13xx-driver/internal/bm13xxregister"
)

// UnexpectedResponseError is returned when a response frame parses but does
// not correspond to the command the chain driver just sent.
type UnexpectedResponseError struct{ Resp bm13xxproto.Response }

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("bm13xxchain: unexpected response: %+v", e.Resp)
}

// BadRegisterResponseError is returned when a register-read response does
// not match the register or chip address that was queried.
type BadRegisterResponseError struct{ RegResp bm13xxproto.RegisterResponse }

func (e *BadRegisterResponseError) Error() string {
	return fmt.Sprintf("bm13xxchain: bad register response: %+v", e.RegResp)
}

// UnexpectedAsicError is returned when enumeration finds a chip whose
// reported chip id does not match the model this chain is driving.
type UnexpectedAsicError struct {
	ChipIdent bm13xxregister.ChipIdentification
}

func (e *UnexpectedAsicError) Error() string {
	return fmt.Sprintf("bm13xxchain: unexpected asic chip id %#04x", e.ChipIdent.ChipID())
}

// UnexpectedAsicCountError is returned when enumeration finds a different
// number of chips than the chain was configured to expect.
type UnexpectedAsicCountError struct {
	Expected, Actual uint8
}

func (e *UnexpectedAsicCountError) Error() string {
	return fmt.Sprintf("bm13xxchain: unexpected asic count: expected %d, got %d", e.Expected, e.Actual)
}

// EmptyChainError is returned when enumeration finds no chips at all.
type EmptyChainError struct{}

func (e *EmptyChainError) Error() string { return "bm13xxchain: empty chain" }

// SetBaudrateError is returned when the transport rejects a baudrate change
// requested after a set-baudrate sequence.
type SetBaudrateError struct{ Baudrate uint32 }

func (e *SetBaudrateError) Error() string {
	return fmt.Sprintf("bm13xxchain: failed to set baudrate %d", e.Baudrate)
}
