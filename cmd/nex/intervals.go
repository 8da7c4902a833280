package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/nex/internal/nexstore"
)

func intervalsCmd() *cli.Command {
	var (
		path          string
		name          string
		caseSensitive bool
	)

	return &cli.Command{
		Name:  "intervals",
		Usage: "List interval variables, or print one as a start/end/duration table",
		Flags: []cli.Flag{
			fileFlag(&path),
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "interval variable to print", Destination: &name},
			&cli.BoolFlag{Name: "case-sensitive", Usage: "match --name exactly", Destination: &caseSensitive},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := nexstore.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %q: %v", path, err), 1)
			}
			defer func() { _ = f.Close() }()

			if name == "" {
				for _, n := range f.ListIntervalNames() {
					fmt.Println(n)
				}
				return nil
			}
			iv, err := f.IntervalTimes(ctx, name, caseSensitive)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return printIntervals(os.Stdout, iv)
		},
	}
}

func printIntervals(w io.Writer, iv nexstore.IntervalData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "START\tEND\tDURATION\t")
	for i := range iv.Starts {
		_, _ = fmt.Fprintf(tw, "%.6f\t%.6f\t%.6f\t\n", iv.Starts[i], iv.Ends[i], iv.Durations[i])
	}
	return tw.Flush()
}
