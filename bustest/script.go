// Package bustest provides a scripted substitute for a live bus, used to
// test drivers against a predetermined operation sequence. It is a simple
// tagged queue with a cursor, not a general mocking framework.
package bustest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/i2cbridge"
)

var _ i2cbridge.Bus = (*Script)(nil)

type expectKind int

const (
	expectRead expectKind = iota
	expectWrite
	expectWriteRead
)

func (k expectKind) String() string {
	switch k {
	case expectRead:
		return "read"
	case expectWrite:
		return "write"
	default:
		return "write_read"
	}
}

type expectation struct {
	kind     expectKind
	addr     i2cbridge.Addr
	payload  []byte
	response []byte
}

// Script implements the generic bus vocabulary against an ordered list of
// expectations. Each call must match the next expectation exactly; a
// mismatch is reported as an ordinary bus failure and leaves the cursor in
// place, so a test can assert on where the sequence diverged.
type Script struct {
	expected []expectation
	pos      int
}

// New returns an empty script. Populate it with the Expect methods before
// handing it to the code under test.
func New() *Script {
	return &Script{}
}

// ExpectWrite appends an expected write of data to addr.
func (s *Script) ExpectWrite(addr i2cbridge.Addr, data []byte) {
	s.expected = append(s.expected, expectation{
		kind:    expectWrite,
		addr:    addr,
		payload: bytes.Clone(data),
	})
}

// ExpectRead appends an expected read from addr answered with response.
// The caller's buffer must be exactly len(response) bytes.
func (s *Script) ExpectRead(addr i2cbridge.Addr, response []byte) {
	s.expected = append(s.expected, expectation{
		kind:     expectRead,
		addr:     addr,
		response: bytes.Clone(response),
	})
}

// ExpectWriteRead appends an expected write of data followed by a read
// answered with response.
func (s *Script) ExpectWriteRead(addr i2cbridge.Addr, data, response []byte) {
	s.expected = append(s.expected, expectation{
		kind:     expectWriteRead,
		addr:     addr,
		payload:  bytes.Clone(data),
		response: bytes.Clone(response),
	})
}

// Remaining returns the number of expectations not yet consumed.
func (s *Script) Remaining() int {
	return len(s.expected) - s.pos
}

// AssertComplete verifies that every expectation was consumed. Pass the
// test's *testing.T; an unconsumed tail is a test-author bug.
func (s *Script) AssertComplete(t assert.TestingT) bool {
	return assert.Equal(t, len(s.expected), s.pos,
		"not all scripted bus operations were performed")
}

// next returns the current expectation if it has the wanted kind. The
// cursor is not advanced here; callers advance only after a full match.
func (s *Script) next(kind expectKind) (expectation, error) {
	if s.pos >= len(s.expected) {
		return expectation{}, &ScriptError{msg: fmt.Sprintf("unexpected %s operation: script exhausted after %d operations", kind, s.pos)}
	}
	exp := s.expected[s.pos]
	if exp.kind != kind {
		return expectation{}, &ScriptError{msg: fmt.Sprintf("operation %d: expected %s, got %s", s.pos, exp.kind, kind)}
	}
	return exp, nil
}

func (s *Script) Read(ctx context.Context, addr i2cbridge.Addr, buffer []byte) error {
	exp, err := s.next(expectRead)
	if err != nil {
		return err
	}
	if !i2cbridge.AddrEqual(exp.addr, addr) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: read address mismatch: expected 0x%02X, got 0x%02X", s.pos, exp.addr.Value(), addr.Value())}
	}
	if len(buffer) != len(exp.response) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: read buffer size mismatch: expected %d, got %d", s.pos, len(exp.response), len(buffer))}
	}
	copy(buffer, exp.response)
	s.pos++
	return nil
}

func (s *Script) Write(ctx context.Context, addr i2cbridge.Addr, data []byte) error {
	exp, err := s.next(expectWrite)
	if err != nil {
		return err
	}
	if !i2cbridge.AddrEqual(exp.addr, addr) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: write address mismatch: expected 0x%02X, got 0x%02X", s.pos, exp.addr.Value(), addr.Value())}
	}
	if !bytes.Equal(data, exp.payload) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: write data mismatch: expected % X, got % X", s.pos, exp.payload, data)}
	}
	s.pos++
	return nil
}

func (s *Script) WriteRead(ctx context.Context, addr i2cbridge.Addr, data []byte, buffer []byte) error {
	exp, err := s.next(expectWriteRead)
	if err != nil {
		return err
	}
	if !i2cbridge.AddrEqual(exp.addr, addr) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: write_read address mismatch: expected 0x%02X, got 0x%02X", s.pos, exp.addr.Value(), addr.Value())}
	}
	if !bytes.Equal(data, exp.payload) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: write_read data mismatch: expected % X, got % X", s.pos, exp.payload, data)}
	}
	if len(buffer) != len(exp.response) {
		return &ScriptError{msg: fmt.Sprintf("operation %d: write_read buffer size mismatch: expected %d, got %d", s.pos, len(exp.response), len(buffer))}
	}
	copy(buffer, exp.response)
	s.pos++
	return nil
}

// Transaction consumes one scripted expectation per element, like the
// sequential path of the core adapter.
func (s *Script) Transaction(ctx context.Context, addr i2cbridge.Addr, ops []i2cbridge.Operation) error {
	for _, op := range ops {
		switch op.Kind {
		case i2cbridge.OpRead:
			if err := s.Read(ctx, addr, op.Data); err != nil {
				return err
			}
		case i2cbridge.OpWrite:
			if err := s.Write(ctx, addr, op.Data); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScriptError reports a divergence between the script and the calls made
// against it. Drivers under test observe it as an ordinary bus failure.
type ScriptError struct {
	msg string
}

func (e *ScriptError) Error() string {
	return "bustest: " + e.msg
}

// Kind classifies scripted mismatches into the unclassified bucket.
func (e *ScriptError) Kind() i2cbridge.Kind {
	return i2cbridge.KindOther
}
