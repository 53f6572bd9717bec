// Package config loads bus/target configuration for the command line tools.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/i2cbridge/device"
)

// Config describes how to reach a device target.
type Config struct {
	// Adapter selects the transport: mcp2221, periph or gobot.
	Adapter string `yaml:"adapter"`
	// Bus names the host bus for periph transports (e.g. /dev/i2c-1);
	// empty picks the first available one.
	Bus string `yaml:"bus,omitempty"`
	// ResponseWaitMs tunes the HID response pause for the mcp2221
	// transport.
	ResponseWaitMs int    `yaml:"response_wait_ms,omitempty"`
	Target         Target `yaml:"target"`
	// MaxRetries configures the retry decorator; 0 disables retries.
	MaxRetries int `yaml:"max_retries,omitempty"`
}

// Target mirrors device.Target with YAML tags.
type Target struct {
	Controller uint8  `yaml:"controller"`
	Port       uint8  `yaml:"port"`
	Mux        *uint8 `yaml:"mux,omitempty"`
	Segment    *uint8 `yaml:"segment,omitempty"`
	Address    uint8  `yaml:"address"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Adapter {
	case "mcp2221", "periph", "gobot", "":
	default:
		return fmt.Errorf("unknown adapter %q", c.Adapter)
	}
	if (c.Target.Mux == nil) != (c.Target.Segment == nil) {
		return fmt.Errorf("mux and segment must be set together")
	}
	return nil
}

// DeviceTarget converts the YAML form to the device value object.
func (c *Config) DeviceTarget() device.Target {
	t := device.Target{
		Controller: device.Controller(c.Target.Controller),
		Port:       device.PortIndex(c.Target.Port),
		Address:    c.Target.Address,
	}
	if c.Target.Mux != nil && c.Target.Segment != nil {
		t.Segment = &device.MuxSegment{
			Mux:     device.Mux(*c.Target.Mux),
			Segment: device.Segment(*c.Target.Segment),
		}
	}
	return t
}
