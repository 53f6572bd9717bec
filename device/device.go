// Package device defines the contract of a fixed-target I2C device client:
// one client handle, bound at construction to a single controller, port,
// optional multiplexer segment and 7-bit address. Concrete implementations
// live in the subpackages (mcp2221, periphbus, gobotbus).
package device

import (
	"context"
	"fmt"
)

// Code is a low-level operation status. It implements error so client
// implementations can return it directly; the adaptation layer recovers it
// with errors.As and classifies it into a semantic kind.
type Code uint8

const (
	// CodeSuccess is the nominal status. It is never returned as an
	// error value; a classifier seeing it indicates a caller defect.
	CodeSuccess Code = iota
	// CodeAddressNackEarly means the target did not acknowledge its
	// address byte.
	CodeAddressNackEarly
	// CodeAddressNackLate means the target stopped acknowledging after
	// initially responding to its address.
	CodeAddressNackLate
	// CodeDataNack means the target did not acknowledge a data byte.
	CodeDataNack
	// CodeBusError means an illegal start/stop condition was observed.
	CodeBusError
	// CodeArbitrationLost means another master won the bus.
	CodeArbitrationLost
	// CodeBusLocked means the bus engine is held by an unfinished
	// operation.
	CodeBusLocked
	// CodeBusTimeout means clock stretching exceeded the engine limit.
	CodeBusTimeout
	// CodeNoDevice means no device responded at the bound address.
	CodeNoDevice
	// CodeBadResponse means the client returned a malformed or
	// unclassifiable response.
	CodeBadResponse
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeAddressNackEarly:
		return "address NACK (early)"
	case CodeAddressNackLate:
		return "address NACK (late)"
	case CodeDataNack:
		return "data NACK"
	case CodeBusError:
		return "bus error"
	case CodeArbitrationLost:
		return "arbitration lost"
	case CodeBusLocked:
		return "bus locked"
	case CodeBusTimeout:
		return "bus timeout"
	case CodeNoDevice:
		return "no device"
	case CodeBadResponse:
		return "bad response"
	default:
		return fmt.Sprintf("unknown status %d", uint8(c))
	}
}

func (c Code) Error() string {
	return c.String()
}

// Client is the device endpoint consumed by the adaptation layer. Every
// implementation owns exactly one endpoint; the bound address is implicit in
// each call. Returned errors carry a Code (directly or wrapped).
type Client interface {
	// Write sends p and returns the number of bytes written.
	Write(ctx context.Context, p []byte) (int, error)
	// ReadInto fills buf and returns the number of bytes read.
	ReadInto(ctx context.Context, buf []byte) (int, error)
	// ReadReg reads a single-byte register in one combined round trip.
	ReadReg(ctx context.Context, reg byte) (byte, error)
	// ReadRegInto reads len(buf) bytes starting at reg in one combined
	// round trip.
	ReadRegInto(ctx context.Context, reg byte, buf []byte) (int, error)
	// ReadBlock performs an SMBus block read from reg: the target
	// prefixes its payload with a count byte. Returns the payload size.
	ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error)
}

// Controller identifies a hardware I2C controller.
type Controller uint8

const (
	I2C1 Controller = iota + 1
	I2C2
	I2C3
	I2C4
)

// PortIndex selects a pin configuration on a controller.
type PortIndex uint8

// Mux identifies a bus multiplexer.
type Mux uint8

// Segment identifies one leg of a multiplexer.
type Segment uint8

// MuxSegment pairs a multiplexer with one of its segments.
type MuxSegment struct {
	Mux     Mux
	Segment Segment
}

// Target is the bus location a client is bound to at construction.
type Target struct {
	Controller Controller
	Port       PortIndex
	// Segment is nil for targets not behind a multiplexer.
	Segment *MuxSegment
	// Address is the 7-bit device address.
	Address byte
}

func (t Target) String() string {
	if t.Segment != nil {
		return fmt.Sprintf("i2c%d.%d mux %d seg %d addr 0x%02X",
			t.Controller, t.Port, t.Segment.Mux, t.Segment.Segment, t.Address)
	}
	return fmt.Sprintf("i2c%d.%d addr 0x%02X", t.Controller, t.Port, t.Address)
}
