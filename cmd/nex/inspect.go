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

func inspectCmd() *cli.Command {
	var path string

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the file header and variable directory",
		Flags: []cli.Flag{fileFlag(&path)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := nexstore.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open %q: %v", path, err), 1)
			}
			defer func() { _ = f.Close() }()
			return printInspect(os.Stdout, f)
		},
	}
}

func printInspect(w io.Writer, f *nexstore.File) error {
	info, err := f.Info()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	_, _ = fmt.Fprintf(w, "file:      %s (%d bytes)\n", info.Path, info.Size)
	_, _ = fmt.Fprintf(w, "version:   %d\n", info.Version)
	_, _ = fmt.Fprintf(w, "comment:   %q\n", info.Comment)
	_, _ = fmt.Fprintf(w, "frequency: %g Hz\n", info.Frequency)
	_, _ = fmt.Fprintf(w, "span:      %gs .. %gs\n", info.TBeg, info.TEnd)
	_, _ = fmt.Fprintf(w, "variables: %d\n\n", info.NumVars)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "IDX\tTYPE\tNAME\tVER\tCOUNT\tOFFSET\tDETAIL")
	for _, v := range f.Variables() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
			v.Index, v.Type, v.Name, v.Version, v.Count, v.DataOffset, detail(v))
	}
	return tw.Flush()
}

func detail(v nexstore.VariableInfo) string {
	switch v.Type {
	case "waveform":
		return fmt.Sprintf("%d pts @ %g Hz", v.Points, v.SampleFrequency)
	case "continuous":
		return fmt.Sprintf("%d samples @ %g Hz", v.Points, v.SampleFrequency)
	case "marker":
		return fmt.Sprintf("%d fields", v.MarkerFields)
	case "neuron":
		if v.Wire != 0 || v.Unit != 0 {
			return fmt.Sprintf("wire %d unit %d", v.Wire, v.Unit)
		}
	}
	return ""
}
