// Package adapter implements the generic bus vocabulary on top of a
// fixed-target device client.
//
// The impedance mismatch between the two models is deliberate and one-way:
// the client is bound to its 7-bit address at construction, so the address
// passed to 7-bit operations is accepted for interface compatibility and
// ignored. Only 10-bit operations use the per-call address, because the
// client has no native 10-bit support and the adapter emulates it.
package adapter

import (
	"context"
	"errors"

	"github.com/mklimuk/i2cbridge"
	"github.com/mklimuk/i2cbridge/device"
)

// Ten-bit emulation concatenates the two header bytes with the payload into
// a single outgoing buffer: 2 + 256 bytes at most.
const maxTenBitPayload = 256

var _ i2cbridge.Bus = (*Adapter)(nil)

// Adapter is the core adaptation layer. Each instance exclusively owns one
// device client handle and holds no address state of its own. Instances are
// not safe for concurrent use; callers serialize access to one target.
type Adapter struct {
	dev device.Client
}

// New wraps a device client.
func New(dev device.Client) *Adapter {
	return &Adapter{dev: dev}
}

// Device exposes the underlying client for advanced operations.
func (a *Adapter) Device() device.Client {
	return a.dev
}

// Read fills buffer from the target. For 7-bit addresses the client's bound
// address is authoritative and addr is ignored. The byte count reported by
// the client is discarded, so buffer must be exactly the expected length.
func (a *Adapter) Read(ctx context.Context, addr i2cbridge.Addr, buffer []byte) error {
	if addr.Bits() == 10 {
		return a.tenBitRead(ctx, addr, buffer)
	}
	_, err := a.dev.ReadInto(ctx, buffer)
	return wrap(err, "read")
}

// Write sends data to the target, ignoring addr for 7-bit targets.
func (a *Adapter) Write(ctx context.Context, addr i2cbridge.Addr, data []byte) error {
	if addr.Bits() == 10 {
		return a.tenBitWrite(ctx, addr, data)
	}
	_, err := a.dev.Write(ctx, data)
	return wrap(err, "write")
}

// WriteRead sends data then fills buffer. A one-byte payload is treated as a
// register select and served by the client's combined register-read
// primitive in a single round trip; longer payloads fall back to a plain
// write followed by a plain read, between which another bus master may
// interleave.
func (a *Adapter) WriteRead(ctx context.Context, addr i2cbridge.Addr, data []byte, buffer []byte) error {
	if addr.Bits() == 10 {
		if err := a.tenBitWrite(ctx, addr, data); err != nil {
			return err
		}
		return a.tenBitRead(ctx, addr, buffer)
	}
	if len(data) == 1 {
		_, err := a.dev.ReadRegInto(ctx, data[0], buffer)
		return wrap(err, "write_read_reg")
	}
	if _, err := a.dev.Write(ctx, data); err != nil {
		return wrap(err, "write_read_write_phase")
	}
	_, err := a.dev.ReadInto(ctx, buffer)
	return wrap(err, "write_read_read_phase")
}

// Transaction executes ops sequentially, surfacing the first failure and
// skipping the rest. No repeated start is inserted between elements, so this
// approximates an atomic transaction rather than guaranteeing one.
func (a *Adapter) Transaction(ctx context.Context, addr i2cbridge.Addr, ops []i2cbridge.Operation) error {
	for _, op := range ops {
		switch op.Kind {
		case i2cbridge.OpRead:
			if err := a.Read(ctx, addr, op.Data); err != nil {
				return retag(err, "transaction_read")
			}
		case i2cbridge.OpWrite:
			if err := a.Write(ctx, addr, op.Data); err != nil {
				return retag(err, "transaction_write")
			}
		}
	}
	return nil
}

// ReadRegister reads a single-byte register through the client's combined
// primitive, bypassing the generic vocabulary.
func (a *Adapter) ReadRegister(ctx context.Context, reg byte) (byte, error) {
	v, err := a.dev.ReadReg(ctx, reg)
	if err != nil {
		return 0, wrap(err, "optimized_register_read")
	}
	return v, nil
}

// ReadBlock performs an SMBus block read through the client, returning the
// payload length announced by the target.
func (a *Adapter) ReadBlock(ctx context.Context, reg byte, buffer []byte) (int, error) {
	n, err := a.dev.ReadBlock(ctx, reg, buffer)
	if err != nil {
		return 0, wrap(err, "smbus_block_read")
	}
	return n, nil
}

// tenBitHeader builds the two-byte 10-bit address preamble: 0b1111_0XX0
// with the two high address bits folded in, then the low eight bits.
func tenBitHeader(addr i2cbridge.Addr) (byte, byte) {
	v := addr.Value()
	return 0xF0 | byte((v>>7)&0x06), byte(v & 0xFF)
}

// tenBitRead emulates a 10-bit read by writing the address header and then
// issuing a plain read. The client cannot produce a repeated start between
// the two phases, so this is an approximation of the 10-bit protocol, not a
// compliant rendition; the gap is inherited from the platform.
func (a *Adapter) tenBitRead(ctx context.Context, addr i2cbridge.Addr, buffer []byte) error {
	high, low := tenBitHeader(addr)
	if _, err := a.dev.Write(ctx, []byte{high, low}); err != nil {
		return wrap(err, "10bit_address_setup")
	}
	_, err := a.dev.ReadInto(ctx, buffer)
	return wrap(err, "10bit_read")
}

// tenBitWrite emulates a 10-bit write by sending header and payload as one
// buffer. Payloads beyond maxTenBitPayload are rejected, never truncated.
func (a *Adapter) tenBitWrite(ctx context.Context, addr i2cbridge.Addr, data []byte) error {
	if len(data) > maxTenBitPayload {
		return &i2cbridge.Error{Code: device.CodeBadResponse, Op: "10bit_write_buffer_overflow"}
	}
	high, low := tenBitHeader(addr)
	out := make([]byte, 0, 2+len(data))
	out = append(out, high, low)
	out = append(out, data...)
	_, err := a.dev.Write(ctx, out)
	return wrap(err, "10bit_write")
}

// codeOf recovers the status code carried by a client error. Anything a
// client returns without a code counts as a bad response.
func codeOf(err error) device.Code {
	var code device.Code
	if errors.As(err, &code) {
		return code
	}
	return device.CodeBadResponse
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &i2cbridge.Error{Code: codeOf(err), Op: op}
}

// retag replaces the operation tag on an adapter error, keeping its code.
func retag(err error, op string) error {
	var adapterErr *i2cbridge.Error
	if errors.As(err, &adapterErr) {
		return &i2cbridge.Error{Code: adapterErr.Code, Op: op}
	}
	return err
}
