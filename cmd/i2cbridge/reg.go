package main

import (
	"context"
	"encoding/hex"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbridge"
	"github.com/mklimuk/i2cbridge/cmd/i2cbridge/console"
)

var regCmd = cli.Command{
	Name:  "reg",
	Usage: "register level access to a target",
	Subcommands: cli.Commands{
		&regReadCmd,
		&regWriteCmd,
	},
}

var regReadCmd = cli.Command{
	Name:  "read",
	Usage: "read a register through the combined write-then-read fast path",
	Flags: append([]cli.Flag{
		&cli.UintFlag{Name: "address", Required: true, Usage: "7-bit target address"},
		&cli.UintFlag{Name: "reg", Required: true, Usage: "register to select"},
		&cli.UintFlag{Name: "len", Value: 1, Usage: "number of bytes to read"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, targetFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		cfg, err := targetConfig(c)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}
		addr, err := i2cbridge.NewSevenBit(byte(c.Uint("address")))
		if err != nil {
			return console.Exit(1, "invalid address: %s", console.Red(err))
		}
		bus, err := openBus(cfg, byte(addr.Value()))
		if err != nil {
			return console.Exit(1, "could not open transport: %s", console.Red(err))
		}
		buf := make([]byte, c.Uint("len"))
		err = bus.WriteRead(ctx, addr, []byte{byte(c.Uint("reg"))}, buf)
		if err != nil {
			return console.Exit(1, "register read failed: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "0x%02X[0x%02X] = %s", addr.Value(), c.Uint("reg"), console.White(hex.EncodeToString(buf)))
		return nil
	},
}

var regWriteCmd = cli.Command{
	Name:  "write",
	Usage: "write bytes to a register",
	Flags: append([]cli.Flag{
		&cli.UintFlag{Name: "address", Required: true, Usage: "7-bit target address"},
		&cli.UintFlag{Name: "reg", Required: true, Usage: "register to select"},
		&cli.StringFlag{Name: "data", Required: true, Usage: "payload as hex, e.g. 0C80"},
		&cli.BoolFlag{Name: "yes", Usage: "skip the confirmation prompt"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, targetFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		cfg, err := targetConfig(c)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}
		addr, err := i2cbridge.NewSevenBit(byte(c.Uint("address")))
		if err != nil {
			return console.Exit(1, "invalid address: %s", console.Red(err))
		}
		payload, err := hex.DecodeString(c.String("data"))
		if err != nil {
			return console.Exit(1, "invalid payload: %s", console.Red(err))
		}
		if !c.Bool("yes") {
			answer, err := console.YesOrNo(console.Bold("write to a live device, continue?"))
			if err != nil {
				return console.Exit(1, "could not read answer: %s", console.Red(err))
			}
			if answer != console.Yes {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		bus, err := openBus(cfg, byte(addr.Value()))
		if err != nil {
			return console.Exit(1, "could not open transport: %s", console.Red(err))
		}
		out := append([]byte{byte(c.Uint("reg"))}, payload...)
		if err := bus.Write(ctx, addr, out); err != nil {
			return console.Exit(1, "register write failed: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "wrote %s to 0x%02X[0x%02X]",
			console.White(hex.EncodeToString(payload)), addr.Value(), c.Uint("reg"))
		return nil
	},
}
