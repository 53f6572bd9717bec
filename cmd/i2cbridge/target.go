package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbridge"
	"github.com/mklimuk/i2cbridge/adapter"
	"github.com/mklimuk/i2cbridge/config"
	"github.com/mklimuk/i2cbridge/device"
	"github.com/mklimuk/i2cbridge/device/mcp2221"
	"github.com/mklimuk/i2cbridge/device/periphbus"
)

// targetConfig merges the optional YAML config with command line overrides.
func targetConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{Adapter: "mcp2221"}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.String("bus")
	}
	if c.IsSet("address") {
		cfg.Target.Address = uint8(c.Uint("address"))
	}
	if c.IsSet("retries") {
		cfg.MaxRetries = c.Int("retries")
	}
	return cfg, nil
}

// openClient builds the device client the config points at, bound to addr.
func openClient(cfg *config.Config, addr byte) (device.Client, error) {
	target := cfg.DeviceTarget()
	target.Address = addr
	switch cfg.Adapter {
	case "mcp2221", "":
		var opts []mcp2221.Option
		if cfg.ResponseWaitMs > 0 {
			opts = append(opts, mcp2221.WithResponseWait(time.Duration(cfg.ResponseWaitMs)*time.Millisecond))
		}
		return mcp2221.New(target, opts...), nil
	case "periph":
		return periphbus.Open(cfg.Bus, target)
	default:
		return nil, fmt.Errorf("adapter %q cannot be opened from the command line", cfg.Adapter)
	}
}

// openBus stacks the retry decorator and register fast path over a core
// adapter bound to addr.
func openBus(cfg *config.Config, addr byte) (i2cbridge.Bus, error) {
	client, err := openClient(cfg, addr)
	if err != nil {
		return nil, err
	}
	stack := adapter.NewRegisterFastPath(adapter.New(client))
	if cfg.MaxRetries > 0 {
		return adapter.NewRetrying(stack, cfg.MaxRetries), nil
	}
	return stack, nil
}

var targetFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "transport to use: mcp2221 or periph",
	},
	&cli.StringFlag{
		Name:  "bus",
		Usage: "host bus name for the periph transport",
	},
	&cli.IntFlag{
		Name:  "retries",
		Usage: "max retries on transient bus faults",
	},
}
