// Package transport implements bm13xxchain.Port over a direct USB bulk
// connection, bypassing any kernel CDC-ACM driver the same way the host
// driver's USB device backend does for its own hardware.
//
//go:build !mips && !mipsle

package transport

import (
	"context"
	"fmt"

	"github.com/google/gousb"
)

const (
	// DefaultVendorID and DefaultProductID identify the FTDI-style
	// USB-to-serial bridge most BM13xx control boards expose.
	DefaultVendorID  = 0x0403
	DefaultProductID = 0x6014

	endpointOut = 0x02
	endpointIn  = 0x81
)

// USB drives a chip chain over a claimed USB bulk interface.
type USB struct {
	ctx    *gousb.Context
	device *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epOut  *gousb.OutEndpoint
	epIn   *gousb.InEndpoint
}

// OpenUSB opens the control board identified by vid/pid and claims its
// bulk interface. Closing the returned USB releases the device.
func OpenUSB(vid, pid gousb.ID) (*USB, error) {
	ctx := gousb.NewContext()

	device, err := ctx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("open USB device: %w", err)
	}
	if device == nil {
		ctx.Close()
		return nil, fmt.Errorf("USB device not found (VID:0x%04x PID:0x%04x)", vid, pid)
	}

	config, err := device.Config(1)
	if err != nil {
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("set USB config: %w", err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("claim USB interface: %w", err)
	}

	epOut, err := intf.OutEndpoint(endpointOut)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("open OUT endpoint: %w", err)
	}

	epIn, err := intf.InEndpoint(endpointIn)
	if err != nil {
		intf.Close()
		config.Close()
		device.Close()
		ctx.Close()
		return nil, fmt.Errorf("open IN endpoint: %w", err)
	}

	return &USB{ctx: ctx, device: device, config: config, intf: intf, epOut: epOut, epIn: epIn}, nil
}

// Close releases the claimed interface and the underlying USB context.
func (u *USB) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	if u.config != nil {
		u.config.Close()
	}
	if u.device != nil {
		u.device.Close()
	}
	if u.ctx != nil {
		u.ctx.Close()
	}
	return nil
}

// Write sends one BM13xx command frame (7- or 11-byte control frame, or a
// variable-length job frame) over the OUT endpoint.
func (u *USB) Write(ctx context.Context, p []byte) error {
	_, err := u.epOut.WriteContext(ctx, p)
	if err != nil {
		return fmt.Errorf("USB write: %w", err)
	}
	return nil
}

// Read fills p with one response frame (9 or 11 bytes) from the IN
// endpoint, blocking until ctx is done or a frame arrives.
func (u *USB) Read(ctx context.Context, p []byte) (int, error) {
	n, err := u.epIn.ReadContext(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("USB read: %w", err)
	}
	return n, nil
}

// SetBaudrate is a no-op over this transport: a direct USB bulk interface
// has no line rate to reconfigure, unlike a UART bridge. The control board
// itself tracks the new rate once the chip-side set-baudrate sequence
// completes.
func (u *USB) SetBaudrate(baudrate uint32) error { return nil }
