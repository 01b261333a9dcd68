package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/template"

	"github.com/northvolt/go-avrsig/bridge"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type infoConfig struct {
	rootConfig *rootConfig
	in         io.Reader
	out        io.Writer
	err        io.Writer
	json       bool
	yaml       bool
}

func (c *infoConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "info\n")
	}

	d, closer, err := newDev(ctx, c.rootConfig, c.in)
	if err != nil {
		return err
	}
	defer closer.Close()

	di := getDeviceInfo(d)
	switch {
	case c.json:
		return writeJSON(c.out, di)
	case c.yaml:
		return writeYAML(c.out, di)
	default:
		return writeText(c.out, di)
	}
}

const deviceInfoTemplate = `
{{ .Summary }}

Signature Row:
{{ hex .Row }}

Fingerprint:
    {{ .Fingerprint }}
`

func writeText(w io.Writer, di *deviceInfo) error {
	funcs := template.FuncMap{
		"hex": prettyHex,
	}
	t, err := template.New("info").Funcs(funcs).Parse(deviceInfoTemplate)
	if err != nil {
		return err
	}

	return t.Execute(w, di)
}

func newInfoCmd(
	rootConfig *rootConfig, in io.Reader, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := infoConfig{
		rootConfig: rootConfig,
		in:         in,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("avrsig info", flag.ExitOnError)
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	fs.BoolVar(&cfg.yaml, "yaml", false, "output in yaml mode")
	rootConfig.registerFlags(fs)

	return setupCommand(&ffcli.Command{
		Name:       "info",
		ShortUsage: "info",
		ShortHelp:  "Prints the identity and calibration values of the device.",
		FlagSet:    fs,
		Exec:       cfg.Exec,
	})
}

type calibrationInfo struct {
	Name    string `json:"name" yaml:"name"`
	Address uint8  `json:"address" yaml:"address"`
	Value   uint8  `json:"value" yaml:"value"`
}

type deviceInfo struct {
	Name        string            `json:"name" yaml:"name"`
	Signature   string            `json:"signature" yaml:"signature"`
	Target      string            `json:"target" yaml:"target"`
	Calibration []calibrationInfo `json:"calibration" yaml:"calibration"`
	Row         sigrow.Row        `json:"row" yaml:"-"`
	RowHex      string            `json:"-" yaml:"row"`
	Fingerprint string            `json:"fingerprint" yaml:"fingerprint"`
	Summary     string            `json:"-" yaml:"-"`
}

func getDeviceInfo(d *bridge.Dev) *deviceInfo {
	sig := d.Signature()
	di := &deviceInfo{
		Name:        sig.ChipName(),
		Signature:   sig.Hex(),
		Target:      d.Target().String(),
		Calibration: []calibrationInfo{},
		Row:         d.Row(),
		RowHex:      d.Row().String(),
		Fingerprint: d.Fingerprint(),
		Summary:     sig.Summary(),
	}

	features := d.Features()
	for _, f := range features.Set().Features() {
		v, _ := features.Value(f)
		di.Calibration = append(di.Calibration, calibrationInfo{
			Name:    f.String(),
			Address: f.Addr(),
			Value:   v,
		})
	}
	return di
}
