package bridge

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// i2cMaxChunk is the largest payload the bridge returns per transaction.
const i2cMaxChunk = 16

// NewI2CDev reads the signature row from a bridge on an I²C bus.
//
// The bridge answers a write of [offset, length] with length bytes followed by
// a little endian CRC-16 of those bytes.
func NewI2CDev(ctx context.Context, cfg Config) (*Dev, error) {
	if cfg.I2C.Bus == nil {
		return nil, errors.New("bridge: missing i2c bus")
	}
	hal := &halI2C{dev: &i2c.Dev{Bus: cfg.I2C.Bus, Addr: cfg.I2C.Address}}
	return New(ctx, hal, cfg)
}

type halI2C struct {
	dev *i2c.Dev
}

func (h *halI2C) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > 0xff {
		return 0, errAddress
	}

	var buf [i2cMaxChunk + 2]byte
	read := 0
	for read < len(p) {
		size := len(p) - read
		if size > i2cMaxChunk {
			size = i2cMaxChunk
		}

		w := []byte{byte(off) + byte(read), byte(size)}
		r := buf[:size+2]
		if err := h.dev.Tx(w, r); err != nil {
			return read, fmt.Errorf("bridge: i2c transfer: %w", err)
		}

		data, crc := r[:size], r[size:]
		if crc16(data) != binary.LittleEndian.Uint16(crc) {
			return read, errCRC
		}
		read += copy(p[read:], data)
	}
	return read, nil
}

// Idle is a no-op, the bridge sleeps on its own between transactions.
func (h *halI2C) Idle() error {
	return nil
}

// Wake probes the bridge with an empty read of the row header.
func (h *halI2C) Wake() error {
	var crc [2]byte
	if err := h.dev.Tx([]byte{0x00, 0x00}, crc[:]); err != nil {
		return fmt.Errorf("bridge: i2c wake: %w", err)
	}
	if binary.LittleEndian.Uint16(crc[:]) != crc16(nil) {
		return errCRC
	}
	return nil
}
