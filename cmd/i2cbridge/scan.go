package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbridge"
	"github.com/mklimuk/i2cbridge/adapter"
	"github.com/mklimuk/i2cbridge/cmd/i2cbridge/console"
)

var scanCmd = cli.Command{
	Name:  "scan",
	Usage: "probe the assignable 7-bit address range and list responding targets",
	Flags: append([]cli.Flag{
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, targetFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		cfg, err := targetConfig(c)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}

		console.PInfof(console.PictoSearch, "scanning addresses 0x08-0x77")
		w := tabwriter.NewWriter(os.Stdout, 12, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "ADDRESS\tSTATUS\n")
		found := 0
		for addr := byte(0x08); addr <= 0x77; addr++ {
			client, err := openClient(cfg, addr)
			if err != nil {
				return console.Exit(1, "could not open transport: %s", console.Red(err))
			}
			core := adapter.New(client)
			probe := make([]byte, 1)
			err = core.Read(ctx, i2cbridge.SevenBit(addr), probe)
			switch {
			case err == nil:
				_, _ = fmt.Fprintf(w, "0x%02X\t%s\n", addr, console.Green("present"))
				found++
			case isDeviceNotFound(err):
				// nothing at this address
			default:
				_, _ = fmt.Fprintf(w, "0x%02X\t%s\n", addr, console.Yellow(err))
			}
		}
		_ = w.Flush()
		console.Infof("%d device(s) found", found)
		return nil
	},
}

func isDeviceNotFound(err error) bool {
	var adapterErr *i2cbridge.Error
	return errors.As(err, &adapterErr) && adapterErr.DeviceNotFound()
}
