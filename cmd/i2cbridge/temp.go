package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/i2cbridge/cmd/i2cbridge/console"
	"github.com/mklimuk/i2cbridge/driver/tmp117"
)

var tempCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp"},
	Usage:   "read a TMP117 temperature sensor",
	Flags: append([]cli.Flag{
		&cli.UintFlag{
			Name:  "address",
			Value: tmp117.DefaultAddress,
			Usage: "7-bit sensor address",
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}, targetFlags...),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		cfg, err := targetConfig(c)
		if err != nil {
			return console.Exit(1, "invalid configuration: %s", console.Red(err))
		}
		address := byte(c.Uint("address"))
		bus, err := openBus(cfg, address)
		if err != nil {
			return console.Exit(1, "could not open transport: %s", console.Red(err))
		}
		s := tmp117.New(bus, tmp117.WithAddress(address))
		if err := s.Probe(ctx); err != nil {
			return console.Exit(1, "sensor probe failed: %s", console.Red(err))
		}
		temp, err := s.GetTemperature(ctx)
		if err != nil {
			return console.Exit(1, "error getting temperature read: %s", console.Red(err))
		}
		console.Printf("%s %s\n", console.PictoThermometer, console.White(temp))
		return nil
	},
}
