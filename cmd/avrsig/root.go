package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

// envVarPrefix allows every flag to be set from the environment, e.g.
// AVRSIG_BUS=1 for -bus=1.
const envVarPrefix = "AVRSIG"

type rootConfig struct {
	verbose     bool
	iface       string
	bus         string
	addr        string
	port        string
	baud        int
	devIndex    int
	kit         string
	devIdentity string
	target      string
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.iface, "i", "i2c", "interface type, i2c, hid, serial or hex (row read from stdin)")
	fs.StringVar(&c.bus, "bus", "", "i2c bus to use, empty for the first one")
	fs.StringVar(&c.addr, "addr", "", "i2c address of the bridge in hex")
	fs.StringVar(&c.port, "port", "", "serial port of the kit, empty to discover it by usb id")
	fs.IntVar(&c.baud, "baud", 115200, "serial baud rate")
	fs.IntVar(&c.devIndex, "dev-index", 0, "device index when enumerating")
	fs.StringVar(&c.kit, "kit", "auto", "kit programming interface: auto, isp, tpi, updi or pdi")
	fs.StringVar(&c.devIdentity, "dev-identity", "", "identity of the target on the kit in hex")
	fs.StringVar(&c.target, "target", "auto", "target part selecting the calibration values, auto resolves it from the signature")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("avrsig", flag.ExitOnError)
	cfg.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "avrsig",
		ShortUsage: "avrsig [flags] <subcommand>",
		ShortHelp:  "Reads the factory signature row of AVR microcontrollers.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	}), &cfg
}

var avrsigLongHelp = `

GENERAL
The signature row is read through a bridge: a companion microcontroller on
I²C (-i i2c), or a programmer kit attached over USB HID (-i hid) or a serial
port (-i serial). A row dumped earlier can be decoded offline by piping its
hex representation into -i hex.

Every flag may also be set through the environment using the AVRSIG_ prefix,
e.g. AVRSIG_I=hid or AVRSIG_DEV_INDEX=1.`

func setupCommand(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}
	cmd.LongHelp += avrsigLongHelp

	cmd.Options = append(cmd.Options, ff.WithEnvVarPrefix(envVarPrefix))
	return cmd
}
