package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/northvolt/go-avrsig"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type lookupConfig struct {
	rootConfig *rootConfig
	out        io.Writer
}

// Exec resolves every signature given as argument without touching hardware.
func (c *lookupConfig) Exec(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("avrsig: lookup needs at least one signature")
	}

	for _, arg := range args {
		sig, err := avrsig.ParseSig(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %s\n", sig.Hex(), avrsig.ChipName(sig))
	}
	return nil
}

func newLookupCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := lookupConfig{
		rootConfig: rootConfig,
		out:        out,
	}

	fs := flag.NewFlagSet("avrsig lookup", flag.ExitOnError)
	rootConfig.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "lookup",
		ShortUsage: "lookup <signature> [<signature>...]",
		ShortHelp:  "Resolves signatures such as 0x1E950F to chip names.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}

type chipsConfig struct {
	rootConfig *rootConfig
	out        io.Writer
}

// Exec lists the chip table together with the calibration values of each part.
func (c *chipsConfig) Exec(context.Context, []string) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SIGNATURE\tNAME\tCALIBRATION")
	for _, t := range avrsig.Targets() {
		sig, _ := avrsig.SigOf(t)

		var labels []string
		for _, f := range avrsig.FeaturesFor(t).Features() {
			labels = append(labels, f.String())
		}
		if len(labels) == 0 {
			labels = append(labels, "-")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", sig.Hex(), t, strings.Join(labels, ", "))
	}
	return tw.Flush()
}

func newChipsCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := chipsConfig{
		rootConfig: rootConfig,
		out:        out,
	}

	fs := flag.NewFlagSet("avrsig chips", flag.ExitOnError)
	rootConfig.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "chips",
		ShortUsage: "chips",
		ShortHelp:  "Lists the known parts and their calibration values.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}
