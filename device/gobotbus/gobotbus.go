// Package gobotbus implements the device client contract over a gobot I2C
// connection, so any board with a gobot adaptor can serve as the transport.
package gobotbus

import (
	"context"
	"fmt"

	"gobot.io/x/gobot/v2/drivers/i2c"

	"github.com/mklimuk/i2cbridge/device"
)

var _ device.Client = (*Client)(nil)

// Client is a device client bound to one gobot I2C connection. The bound
// address lives inside the connection, which gobot fixes at GetI2cConnection
// time, matching the fixed-target client model.
type Client struct {
	conn   i2c.Connection
	target device.Target
}

// Open obtains a connection to target.Address on the adaptor's bus number
// and binds a client to it.
func Open(connector i2c.Connector, bus int, target device.Target) (*Client, error) {
	conn, err := connector.GetI2cConnection(int(target.Address), bus)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c connection: %w", err)
	}
	return &Client{conn: conn, target: target}, nil
}

// Target returns the bus location this client is bound to.
func (c *Client) Target() device.Target {
	return c.target
}

func (c *Client) Write(ctx context.Context, p []byte) (int, error) {
	n, err := c.conn.Write(p)
	if err != nil {
		return 0, translate(err)
	}
	if n != len(p) {
		return n, fmt.Errorf("short write: %d of %d: %w", n, len(p), device.CodeBadResponse)
	}
	return n, nil
}

func (c *Client) ReadInto(ctx context.Context, buf []byte) (int, error) {
	n, err := c.conn.Read(buf)
	if err != nil {
		return 0, translate(err)
	}
	if n != len(buf) {
		return n, fmt.Errorf("short read: %d of %d: %w", n, len(buf), device.CodeBadResponse)
	}
	return n, nil
}

func (c *Client) ReadReg(ctx context.Context, reg byte) (byte, error) {
	v, err := c.conn.ReadByteData(reg)
	if err != nil {
		return 0, translate(err)
	}
	return v, nil
}

func (c *Client) ReadRegInto(ctx context.Context, reg byte, buf []byte) (int, error) {
	if err := c.conn.WriteByte(reg); err != nil {
		return 0, translate(err)
	}
	return c.ReadInto(ctx, buf)
}

func (c *Client) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	if err := c.conn.ReadBlockData(reg, buf); err != nil {
		return 0, translate(err)
	}
	return len(buf), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// translate buckets gobot/sysfs failures. gobot reports kernel errors
// verbatim, so anything it surfaces is treated as a bus level fault.
func translate(err error) error {
	return fmt.Errorf("%s: %w", err, device.CodeBusError)
}
