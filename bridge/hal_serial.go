package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// serialChunkSize is the read buffer used for the kit protocol on a serial
// port.
const serialChunkSize = 64

var errSerialTimeout = errors.New("bridge: serial read timeout")

// NewSerialDev reads the signature row through a programmer kit attached as a
// serial port.
//
// The returned closer releases the port.
func NewSerialDev(ctx context.Context, cfg Config) (*Dev, io.Closer, error) {
	port := cfg.Serial.Port
	if port == "" {
		var err error
		if port, err = findSerialPort(cfg.Serial); err != nil {
			return nil, nil, err
		}
	}

	sp, err := serial.Open(port, &serial.Mode{
		BaudRate: cfg.Serial.BaudRate,
		DataBits: 8,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("bridge: failed to open %s: %w", port, err)
	}
	if cfg.Serial.ReadTimeout > 0 {
		if err := sp.SetReadTimeout(cfg.Serial.ReadTimeout); err != nil {
			_ = sp.Close()
			return nil, nil, err
		}
	}

	hal, err := newHALKit(ctx, serialPhy{sp}, cfg)
	if err != nil {
		_ = sp.Close()
		return nil, nil, err
	}
	d, err := New(ctx, hal, cfg)
	if err != nil {
		_ = sp.Close()
		return nil, nil, err
	}
	return d, sp, nil
}

// serialPhy turns the empty read of an expired timeout into an error, the
// kit protocol would otherwise wait forever for the end of a reply.
type serialPhy struct {
	port io.ReadWriter
}

func (p serialPhy) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err == nil && n == 0 {
		return 0, errSerialTimeout
	}
	return n, err
}

func (p serialPhy) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func findSerialPort(cfg SerialConfig) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("bridge: failed to list serial ports: %w", err)
	}

	vid := fmt.Sprintf("%04X", cfg.VendorID)
	pid := fmt.Sprintf("%04X", cfg.ProductID)
	for _, port := range ports {
		if port.IsUSB && strings.EqualFold(port.VID, vid) && strings.EqualFold(port.PID, pid) {
			return port.Name, nil
		}
	}
	return "", fmt.Errorf("bridge: no serial port with usb id %s:%s", vid, pid)
}
