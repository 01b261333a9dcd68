package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/northvolt/go-avrsig"
	"github.com/northvolt/go-avrsig/bridge"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	defaultI2CAddress     = 0x29
	defaultDeviceIdentity = 0
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newDev(ctx context.Context, c *rootConfig, in io.Reader) (*bridge.Dev, io.Closer, error) {
	target, err := avrsig.ParseTarget(c.target)
	if err != nil {
		return nil, nil, err
	}

	switch c.iface {
	case "i2c":
		return newDevI2C(ctx, c, target)
	case "hid":
		return newDevHID(ctx, c, target)
	case "serial":
		return newDevSerial(ctx, c, target)
	case "hex":
		return newDevHex(c, target, in)
	default:
		return nil, nil, errors.New("avrsig: unknown interface")
	}
}

func newDevI2C(ctx context.Context, c *rootConfig, target avrsig.Target) (*bridge.Dev, io.Closer, error) {
	i2cAddress, err := getI2CAddress(c.addr)
	if err != nil {
		return nil, nil, err
	}

	if _, err = host.Init(); err != nil {
		return nil, nil, err
	}
	bus, err := i2creg.Open(c.bus)
	if err != nil {
		return nil, nil, fmt.Errorf("avrsig: failed to connect to bus: %w", err)
	}

	cfg := bridge.ConfigI2CDefault(bus)
	cfg.Debug = newLogger(c.verbose)
	cfg.Target = target
	cfg.I2C.Address = i2cAddress
	d, err := bridge.NewI2CDev(ctx, cfg)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	return d, bus, nil
}

func newDevHID(ctx context.Context, c *rootConfig, target avrsig.Target) (*bridge.Dev, io.Closer, error) {
	identity, err := getDeviceIdentity(c.devIdentity)
	if err != nil {
		return nil, nil, err
	}
	kitType, err := getKitType(c.kit)
	if err != nil {
		return nil, nil, err
	}

	cfg := bridge.ConfigKitHIDDefault()
	cfg.Debug = newLogger(c.verbose)
	cfg.Target = target
	cfg.HID.DevIndex = c.devIndex
	cfg.HID.DevIdentity = identity
	cfg.HID.KitType = kitType

	return bridge.NewHIDDev(ctx, cfg)
}

func newDevSerial(ctx context.Context, c *rootConfig, target avrsig.Target) (*bridge.Dev, io.Closer, error) {
	identity, err := getDeviceIdentity(c.devIdentity)
	if err != nil {
		return nil, nil, err
	}
	kitType, err := getKitType(c.kit)
	if err != nil {
		return nil, nil, err
	}

	cfg := bridge.ConfigKitSerialDefault(c.port)
	cfg.Debug = newLogger(c.verbose)
	cfg.Target = target
	cfg.Serial.BaudRate = c.baud
	cfg.Serial.DevIndex = c.devIndex
	cfg.Serial.DevIdentity = identity
	cfg.Serial.KitType = kitType

	return bridge.NewSerialDev(ctx, cfg)
}

func newDevHex(c *rootConfig, target avrsig.Target, in io.Reader) (*bridge.Dev, io.Closer, error) {
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, nil, err
	}
	row, err := sigrow.Parse(string(b))
	if err != nil {
		return nil, nil, err
	}

	cfg := bridge.Config{
		Target: target,
		Debug:  newLogger(c.verbose),
	}
	return bridge.FromRow(row, cfg), nopCloser{}, nil
}

func getI2CAddress(addrStr string) (uint16, error) {
	if addrStr == "" {
		return defaultI2CAddress, nil
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(addrStr, "0x"), 16, 7)
	if err != nil {
		return 0, fmt.Errorf("avrsig: invalid i2c address: %w", err)
	}
	return uint16(addr), nil
}

func getDeviceIdentity(idStr string) (uint8, error) {
	if idStr == "" {
		return defaultDeviceIdentity, nil
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(idStr, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("avrsig: invalid device identity: %w", err)
	}
	return uint8(id), nil
}

func getKitType(s string) (bridge.KitType, error) {
	for _, k := range []bridge.KitType{
		bridge.KitTypeAuto, bridge.KitTypeISP, bridge.KitTypeTPI,
		bridge.KitTypeUPDI, bridge.KitTypePDI,
	} {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return bridge.KitTypeAuto, fmt.Errorf("avrsig: unknown kit interface %q", s)
}

func prettyHex(data []byte) string {
	return prettyHexIndent(data, "    ", "")
}

func prettyHexIndent(data []byte, prefix string, space string) string {
	var buf strings.Builder

	// prefix and space every 16 byte, and 2 hex, and one space/newline
	cols := 16
	size := (len(data)/cols+1)*(len(prefix)+len(space)+1) + len(data)*3
	buf.Grow(size)

	for i := range data {
		if i > 0 {
			switch i % cols {
			case 0:
				buf.WriteByte('\n')
			case cols / 2:
				buf.WriteByte(' ')
				buf.WriteString(space)
			default:
				buf.WriteByte(' ')
			}
		}
		if i%cols == 0 {
			buf.WriteString(prefix)
		}

		fmt.Fprintf(&buf, "%02X", data[i])
	}

	return buf.String()
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(j, '\n'))
	return err
}

func writeYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func newLogger(verbose bool) avrsig.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	} else {
		return nil
	}
}
