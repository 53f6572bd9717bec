// Package tmp117 drives a Texas Instruments TMP117 digital temperature
// sensor through the generic bus vocabulary. It is written against the Bus
// interface only, so it works unchanged over any decorator stack.
//
// Datasheet: https://www.ti.com/lit/ds/symlink/tmp117.pdf
package tmp117

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/mklimuk/i2cbridge"
)

const DefaultAddress = 0x48

const (
	regTempResult = 0x00
	regConfig     = 0x01
	regDeviceID   = 0x0F
)

// DeviceID is the expected content of the device id register.
const DeviceID = 0x0117

// one LSB of the temperature register is 7.8125 m°C
const lsbCelsius = 0.0078125

// TMP117 reads temperature from the sensor over a generic bus.
type TMP117 struct {
	bus  i2cbridge.Bus
	addr i2cbridge.SevenBit
}

type Config struct {
	Address byte
}

type ConfigOption func(*Config)

func WithAddress(address byte) ConfigOption {
	return func(c *Config) {
		c.Address = address
	}
}

// New creates a sensor connector on bus. The default address 0x48 (ADD0
// tied to ground) can be overridden with WithAddress.
func New(bus i2cbridge.Bus, opts ...ConfigOption) *TMP117 {
	config := &Config{Address: DefaultAddress}
	for _, opt := range opts {
		opt(config)
	}
	return &TMP117{bus: bus, addr: i2cbridge.SevenBit(config.Address)}
}

// GetTemperature reads the temperature result register and returns degrees
// Celsius.
func (sensor *TMP117) GetTemperature(ctx context.Context) (float32, error) {
	raw, err := sensor.readReg16(ctx, regTempResult)
	if err != nil {
		return 0, fmt.Errorf("tmp117: could not read temperature register: %w", err)
	}
	return float32(int16(raw)) * lsbCelsius, nil
}

// GetConfig reads the configuration register.
func (sensor *TMP117) GetConfig(ctx context.Context) (uint16, error) {
	cfg, err := sensor.readReg16(ctx, regConfig)
	if err != nil {
		return 0, fmt.Errorf("tmp117: could not read config register: %w", err)
	}
	return cfg, nil
}

// Probe reads the device id register and verifies the part responds like a
// TMP117.
func (sensor *TMP117) Probe(ctx context.Context) error {
	id, err := sensor.readReg16(ctx, regDeviceID)
	if err != nil {
		return fmt.Errorf("tmp117: could not read device id: %w", err)
	}
	// upper 4 bits carry the die revision
	if id&0x0FFF != DeviceID&0x0FFF {
		return fmt.Errorf("tmp117: unexpected device id 0x%04X", id)
	}
	return nil
}

func (sensor *TMP117) readReg16(ctx context.Context, reg byte) (uint16, error) {
	buf := make([]byte, 2)
	if err := sensor.bus.WriteRead(ctx, sensor.addr, []byte{reg}, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf), nil
}
