package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"github.com/peterbourgon/ff/v3/ffcli"
)

const (
	outputCBOR = "cbor"
	outputGo   = "go"
	outputHex  = "hex"
	outputJSON = "json"
)

var allOutputs = []string{outputCBOR, outputGo, outputHex, outputJSON}

type dumpConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	output     string
}

func (c *dumpConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "dump\n")
	}

	d, closer, err := newDev(ctx, c.rootConfig, c.in)
	if err != nil {
		return err
	}
	defer closer.Close()

	return writeRow(c.out, c.output, d.Row())
}

func writeRow(w io.Writer, output string, row sigrow.Row) error {
	switch output {
	case outputHex:
		fmt.Fprintln(w, prettyHexIndent(row, "", " "))
		return nil
	case outputGo:
		var src strings.Builder
		src.WriteString("[...]byte{")
		for i, b := range row {
			if (i % 8) == 0 {
				src.WriteString("\n ")
			}
			fmt.Fprintf(&src, " 0x%02x,", b)
		}
		src.WriteString("\n}")
		fmt.Fprintln(w, src.String())
		return nil
	case outputJSON:
		rec, err := sigrow.NewRecord(row)
		if err != nil {
			return err
		}
		return writeJSON(w, rec)
	case outputCBOR:
		rec, err := sigrow.NewRecord(row)
		if err != nil {
			return err
		}
		b, err := rec.MarshalCBOR()
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		outputs := strings.Join(allOutputs, ", ")
		return fmt.Errorf("avrsig: valid outputs are %s", outputs)
	}
}

func newDumpCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := dumpConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("avrsig dump", flag.ExitOnError)
	fs.StringVar(&cfg.output, "output", outputHex, "Use this output for the raw signature row: cbor, go, hex, json")
	rootConfig.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "dump",
		ShortUsage: "dump",
		ShortHelp:  "Dumps the raw signature row.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
