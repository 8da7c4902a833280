package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nex/internal/logger"
	"github.com/samcharles93/nex/internal/nexstore"
	"github.com/samcharles93/nex/pkg/nex"
)

func dumpCmd() *cli.Command {
	var (
		path    string
		typName string
		indices []int64
	)

	return &cli.Command{
		Name:  "dump",
		Usage: "Decode variables to JSON, in seconds and physical units",
		Flags: []cli.Flag{
			fileFlag(&path),
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "only variables of this type (neuron, event, interval, waveform, popvector, continuous, marker)",
				Destination: &typName,
			},
			&cli.Int64SliceFlag{
				Name:        "index",
				Aliases:     []string{"i"},
				Usage:       "position within --type (repeatable)",
				Destination: &indices,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := dumpOptions(typName, indices)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			f, err := nexstore.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %q: %v", path, err), 1)
			}
			defer func() { _ = f.Close() }()

			d, err := f.Dump(ctx, opts)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			failed := 0
			for _, v := range d.Variables {
				if v.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				logger.FromContext(ctx).Warn("some variables could not be decoded", "failed", failed, "total", len(d.Variables))
			}
			return nexstore.WriteJSON(os.Stdout, d)
		},
	}
}

func dumpOptions(typName string, indices []int64) (nexstore.DumpOptions, error) {
	if typName == "" {
		if len(indices) > 0 {
			return nexstore.DumpOptions{}, fmt.Errorf("--index requires --type")
		}
		return nexstore.DumpOptions{}, nil
	}
	t, ok := nex.ParseVarType(typName)
	if !ok {
		return nexstore.DumpOptions{}, fmt.Errorf("unknown variable type %q", typName)
	}
	opts := nexstore.DumpOptions{Type: &t}
	for _, i := range indices {
		opts.Indices = append(opts.Indices, int(i))
	}
	return opts, nil
}
