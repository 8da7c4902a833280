package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/internal/nexstore"
)

func demoCmd() *cli.Command {
	var (
		out       string
		frequency float64
		comment   string
	)

	return &cli.Command{
		Name:  "demo",
		Usage: "Write a sample file with one variable of each common kind",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .nex path",
				Value:       "sample.nex",
				Destination: &out,
			},
			&cli.Float64Flag{
				Name:        "frequency",
				Usage:       "tick frequency in Hz",
				Value:       nexstore.SampleFrequency,
				Destination: &frequency,
			},
			&cli.StringFlag{
				Name:        "comment",
				Usage:       "file comment",
				Destination: &comment,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyDemoConfig(cmd, cfg, &frequency, &comment)
			if err := nexstore.WriteSample(out, comment, frequency); err != nil {
				return cli.Exit(fmt.Sprintf("error: write %q: %v", out, err), 1)
			}
			logger.FromContext(ctx).Info("wrote sample file", "path", out, "frequency", frequency)
			return nil
		},
	}
}
