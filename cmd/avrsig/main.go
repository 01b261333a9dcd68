/*
avrsig is a tool to read the signature row of AVR microcontrollers.

It talks to the target through an I²C bridge or a USB HID programmer kit, or
decodes a signature row given as hex on stdin.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	var (
		in  = os.Stdin
		out = os.Stdout
		err = os.Stderr
	)

	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newInfoCmd(cfg, in, out, err),
		newDumpCmd(cfg, in, out, err),
		newPublishCmd(cfg, in, out, err),
		newLookupCmd(cfg, out),
		newChipsCmd(cfg, out),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		var num = 0
		for range c {
			num += 1
			if num >= 3 {
				os.Exit(1)
			} else {
				cancel()
			}
		}
	}()

	if err := rootCmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, context.Canceled) {
			msg := err.Error()
			for _, libPrefix := range []string{"avrsig: ", "bridge: ", "sigrow: "} {
				msg = strings.TrimPrefix(msg, libPrefix)
			}
			fmt.Fprintf(os.Stderr, "%s: %s\n", rootCmd.Name, msg)
			os.Exit(1)
		} else if cfg.verbose {
			fmt.Fprintf(os.Stderr, "%s: cancelled\n", rootCmd.Name)
		}
	}
}
