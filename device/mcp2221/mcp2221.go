// Package mcp2221 implements the device client contract over a Microchip
// MCP2221 USB-to-I2C bridge. One client is bound to one target address at
// construction; the generic adaptation layer sits on top of it.
package mcp2221

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/i2cbridge/device"
)

const VendorID = 0x04D8
const ProductID = 0x00DD

// HID command identifiers, per the MCP2221 datasheet.
const (
	cmdStatusSetParams = 0x10
	cmdGetI2CData      = 0x40
	cmdWriteData       = 0x90
	cmdReadData        = 0x91
)

const reportSize = 64

var _ device.Client = (*Client)(nil)

// Client talks to one I2C target through an MCP2221 bridge. The mutex
// guards the reusable request/response report buffers, not the bus itself;
// serializing operations against one target remains the caller's job.
type Client struct {
	mx           sync.Mutex
	target       device.Target
	request      []byte
	response     []byte
	responseWait time.Duration
}

type Option func(*Client)

// WithResponseWait overrides the pause between sending a report and reading
// the bridge's answer.
func WithResponseWait(wait time.Duration) Option {
	return func(c *Client) {
		c.responseWait = wait
	}
}

// New binds a client to target. The HID device is enumerated lazily on each
// operation, so construction never fails.
func New(target device.Target, opts ...Option) *Client {
	c := &Client{
		target:       target,
		request:      make([]byte, reportSize),
		response:     make([]byte, reportSize),
		responseWait: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Target returns the bus location this client is bound to.
func (c *Client) Target() device.Target {
	return c.target
}

func (c *Client) Write(ctx context.Context, p []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.writeLocked(ctx, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Client) ReadInto(ctx context.Context, buf []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.readLocked(ctx, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (c *Client) ReadReg(ctx context.Context, reg byte) (byte, error) {
	var buf [1]byte
	if _, err := c.ReadRegInto(ctx, reg, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadRegInto selects reg and reads len(buf) bytes while holding the report
// buffers, so no other caller can slip a command between the two phases.
func (c *Client) ReadRegInto(ctx context.Context, reg byte, buf []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.writeLocked(ctx, []byte{reg}); err != nil {
		return 0, err
	}
	if err := c.readLocked(ctx, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// ReadBlock performs an SMBus-style block read: the target announces its
// payload length in the first byte.
func (c *Client) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.writeLocked(ctx, []byte{reg}); err != nil {
		return 0, err
	}
	tmp := make([]byte, len(buf)+1)
	if err := c.readLocked(ctx, tmp); err != nil {
		return 0, err
	}
	count := int(tmp[0])
	if count > len(buf) {
		return 0, device.CodeBadResponse
	}
	copy(buf, tmp[1:1+count])
	return count, nil
}

func (c *Client) writeLocked(ctx context.Context, p []byte) error {
	c.resetBuffers()
	c.request[0] = cmdWriteData
	binary.LittleEndian.PutUint16(c.request[1:3], uint16(len(p)))
	c.request[3] = c.target.Address << 1
	if len(p) > 0 {
		copy(c.request[4:], p)
	}
	if err := c.send(ctx, true); err != nil {
		return fmt.Errorf("write to %s failed: %w", c.target, err)
	}
	// engine still holds an unfinished transfer
	if c.response[1] == 0x01 {
		return device.CodeBusLocked
	}
	return nil
}

func (c *Client) readLocked(ctx context.Context, buf []byte) error {
	c.resetBuffers()
	c.request[0] = cmdReadData
	binary.LittleEndian.PutUint16(c.request[1:3], uint16(len(buf)))
	c.request[3] = c.target.Address<<1 + 1
	if err := c.send(ctx, true); err != nil {
		return fmt.Errorf("bus read from %s failed: %w", c.target, err)
	}
	if c.response[1] == 0x01 {
		return device.CodeBusLocked
	}
	c.request[0] = cmdGetI2CData
	resetBuffer(c.response)
	if err := c.send(ctx, true); err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if c.response[1] == 0x41 {
		// the engine could not fetch target data; the usual cause is an
		// address NACK
		return device.CodeAddressNackEarly
	}
	// 127 marks an aborted transfer
	if c.response[3] == 127 || int(c.response[3]) != len(buf) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d: %w",
			len(buf), c.response[3], device.CodeBadResponse)
	}
	copy(buf, c.response[4:])
	return nil
}

// Status describes the bridge's I2C engine.
type Status struct {
	DataBufferCounter      int
	SpeedDivider           int
	Timeout                int
	CurrentAddress         string
	LastWriteRequestedSize uint16
	LastWriteSentSize      uint16
	ReadPending            int
}

// EngineStatus queries the bridge without touching the bus.
func (c *Client) EngineStatus(ctx context.Context) (*Status, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.resetBuffers()
	c.request[0] = cmdStatusSetParams
	if err := c.send(ctx, true); err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(c.response), nil
}

// ReleaseBus cancels any pending transfer held by the engine.
func (c *Client) ReleaseBus(ctx context.Context) (*Status, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.resetBuffers()
	c.request[0] = cmdStatusSetParams
	c.request[2] = 0x10
	if err := c.send(ctx, true); err != nil {
		return nil, fmt.Errorf("bus release request failed: %w", err)
	}
	return bufferToStatus(c.response), nil
}

func bufferToStatus(buffer []byte) *Status {
	/*
		9:  Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11: Lower byte (16-bit value) of the already transferred number of bytes
		12: Higher byte (16-bit value) of the already transferred number of bytes
		13: Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16: Lower byte (16-bit value) of the I2C address being used
		17: Higher byte (16-bit value) of the I2C address being used
	*/
	status := &Status{
		DataBufferCounter: int(buffer[13]),
		SpeedDivider:      int(buffer[14]),
		Timeout:           int(buffer[15]),
		ReadPending:       int(buffer[25]),
		CurrentAddress:    hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

func (c *Client) send(ctx context.Context, response bool) error {
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return fmt.Errorf("MCP2221 bridge not found: %w", device.CodeNoDevice)
	}
	if len(devs) > 1 {
		return fmt.Errorf("ambiguous device identification")
	}
	dev, err := devs[0].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	defer func() {
		_ = dev.Close()
	}()
	slog.Debug("sending report to bridge", "report", hex.EncodeToString(c.request))
	n, err := dev.Write(c.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	time.Sleep(c.responseWait)
	n, err = dev.Read(c.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != reportSize {
		return fmt.Errorf("short read: %d", n)
	}
	slog.Debug("read report from bridge", "report", hex.EncodeToString(c.response))
	return nil
}

func (c *Client) resetBuffers() {
	resetBuffer(c.request)
	resetBuffer(c.response)
}

func resetBuffer(buf []byte) {
	for i := range buf {
		buf[i] = 0x00
	}
}
