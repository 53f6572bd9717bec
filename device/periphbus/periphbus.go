// Package periphbus implements the device client contract over a periph.io
// host bus (Linux /dev/i2c-*, among others). Register reads go through a
// single Tx call, which gives them a genuine repeated start.
package periphbus

import (
	"context"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/mklimuk/i2cbridge/device"
)

var _ device.Client = (*Client)(nil)

// Client is a device client bound to one address on an open periph.io bus.
type Client struct {
	bus    i2c.BusCloser
	target device.Target
}

// Open initializes the periph host, opens the named bus (empty selects the
// first available one) and binds a client to target.
func Open(name string, target device.Target) (*Client, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return &Client{bus: bus, target: target}, nil
}

// Target returns the bus location this client is bound to.
func (c *Client) Target() device.Target {
	return c.target
}

func (c *Client) Write(ctx context.Context, p []byte) (int, error) {
	if err := c.bus.Tx(uint16(c.target.Address), p, nil); err != nil {
		return 0, translate(err)
	}
	return len(p), nil
}

func (c *Client) ReadInto(ctx context.Context, buf []byte) (int, error) {
	if err := c.bus.Tx(uint16(c.target.Address), nil, buf); err != nil {
		return 0, translate(err)
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

func (c *Client) ReadRegInto(ctx context.Context, reg byte, buf []byte) (int, error) {
	if err := c.bus.Tx(uint16(c.target.Address), []byte{reg}, buf); err != nil {
		return 0, translate(err)
	}
	return len(buf), nil
}

func (c *Client) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	tmp := make([]byte, len(buf)+1)
	if err := c.bus.Tx(uint16(c.target.Address), []byte{reg}, tmp); err != nil {
		return 0, translate(err)
	}
	count := int(tmp[0])
	if count > len(buf) {
		return 0, device.CodeBadResponse
	}
	copy(buf, tmp[1:1+count])
	return count, nil
}

func (c *Client) Close() error {
	return c.bus.Close()
}

// translate maps periph errors onto status codes. periph does not type its
// failures, so this keys on the kernel error strings: an address NACK on
// Linux surfaces as a remote I/O error.
func translate(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "remote i/o error"), strings.Contains(msg, "no such device"):
		return fmt.Errorf("%s: %w", err, device.CodeNoDevice)
	case strings.Contains(msg, "timed out"), strings.Contains(msg, "timeout"):
		return fmt.Errorf("%s: %w", err, device.CodeBusTimeout)
	case strings.Contains(msg, "busy"):
		return fmt.Errorf("%s: %w", err, device.CodeBusLocked)
	default:
		return fmt.Errorf("%s: %w", err, device.CodeBusError)
	}
}
