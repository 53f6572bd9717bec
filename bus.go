// Package i2cbridge adapts device-centric I2C clients, each bound to a fixed
// controller/port/mux/address tuple, onto the per-operation-addressed bus
// vocabulary that portable peripheral drivers expect.
//
// The address passed to each operation is authoritative only for widths the
// underlying client does not bind natively (10-bit, which is emulated). For
// 7-bit operations the client's bound address wins and the per-call address
// is accepted but ignored; callers must not assume per-call retargeting.
package i2cbridge

import "context"

// Bus is the generic operation vocabulary shared by the core adapter and
// every decorator layered on top of it. All layers satisfy it identically;
// decorators may only change latency and round-trip count, never outcomes.
type Bus interface {
	// Read fills buffer with bytes from the target. Callers must size
	// buffer to exactly the length they expect: partial fills are not
	// surfaced as a distinct condition.
	Read(ctx context.Context, addr Addr, buffer []byte) error
	// Write sends data to the target.
	Write(ctx context.Context, addr Addr, data []byte) error
	// WriteRead sends data and then fills buffer. A one-byte payload is
	// treated as a register select and served in a single round trip.
	WriteRead(ctx context.Context, addr Addr, data []byte, buffer []byte) error
	// Transaction executes ops in order, stopping at the first failure.
	// This is a best-effort approximation: no repeated start is inserted
	// between elements, so another bus master may interleave.
	Transaction(ctx context.Context, addr Addr, ops []Operation) error
}

// OpKind discriminates transaction elements.
type OpKind int

const (
	// OpRead fills the operation's buffer from the target.
	OpRead OpKind = iota
	// OpWrite sends the operation's bytes to the target.
	OpWrite
)

// Operation is one element of a Transaction.
type Operation struct {
	Kind OpKind
	// Data is the outgoing payload for OpWrite and the destination
	// buffer for OpRead.
	Data []byte
}

// ReadOp builds a read element that fills buffer.
func ReadOp(buffer []byte) Operation {
	return Operation{Kind: OpRead, Data: buffer}
}

// WriteOp builds a write element that sends data.
func WriteOp(data []byte) Operation {
	return Operation{Kind: OpWrite, Data: data}
}
