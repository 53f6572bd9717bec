package adapter

import (
	"context"

	"github.com/mklimuk/i2cbridge"
)

var _ i2cbridge.Bus = (*RegisterFastPath)(nil)

// RegisterFastPath decorates a core Adapter for register-heavy devices. It
// recognizes write-then-read shapes that are really register accesses and
// reroutes them to the client's combined register-read primitive, saving a
// round trip. It is a pure optimization: success and failure outcomes match
// the undecorated adapter for equivalent inputs.
type RegisterFastPath struct {
	core *Adapter
}

// NewRegisterFastPath wraps a core adapter.
func NewRegisterFastPath(core *Adapter) *RegisterFastPath {
	return &RegisterFastPath{core: core}
}

func (f *RegisterFastPath) Read(ctx context.Context, addr i2cbridge.Addr, buffer []byte) error {
	return f.core.Read(ctx, addr, buffer)
}

func (f *RegisterFastPath) Write(ctx context.Context, addr i2cbridge.Addr, data []byte) error {
	return f.core.Write(ctx, addr, data)
}

// WriteRead always prefers the register primitive for one-byte payloads,
// the same rule the core adapter applies.
func (f *RegisterFastPath) WriteRead(ctx context.Context, addr i2cbridge.Addr, data []byte, buffer []byte) error {
	if addr.Bits() == 7 && len(data) == 1 {
		_, err := f.core.dev.ReadRegInto(ctx, data[0], buffer)
		return wrap(err, "optimized_write_read")
	}
	return f.core.WriteRead(ctx, addr, data, buffer)
}

// Transaction reroutes the two-element [Write(1 byte), Read(n)] shape to a
// single combined register read. Every other shape falls back to the core
// adapter's sequential handling.
func (f *RegisterFastPath) Transaction(ctx context.Context, addr i2cbridge.Addr, ops []i2cbridge.Operation) error {
	if addr.Bits() == 7 && len(ops) == 2 &&
		ops[0].Kind == i2cbridge.OpWrite && len(ops[0].Data) == 1 &&
		ops[1].Kind == i2cbridge.OpRead {
		_, err := f.core.dev.ReadRegInto(ctx, ops[0].Data[0], ops[1].Data)
		return wrap(err, "optimized_transaction")
	}
	return f.core.Transaction(ctx, addr, ops)
}
