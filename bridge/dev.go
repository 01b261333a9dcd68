package bridge

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/northvolt/go-avrsig"
	"github.com/northvolt/go-avrsig/pkg/sigrow"
	"golang.org/x/crypto/blake2b"
)

type deviceState int

const (
	deviceStateUnknown deviceState = iota
	deviceStateIdle
	deviceStateActive
)

// Dev is a signature row snapshot of one AVR device.
type Dev struct {
	hal   HAL
	state deviceState
	cfg   Config
	log   avrsig.Logger

	row    sigrow.Row
	target avrsig.Target
	sig    *avrsig.Signature
}

// New reads the signature row through the supplied HAL.
func New(ctx context.Context, hal HAL, cfg Config) (*Dev, error) {
	d := &Dev{
		hal:   hal,
		state: deviceStateUnknown,
		cfg:   cfg,
		log:   avrsig.GetLogger(cfg.Debug),
	}
	d.hal = &halDebug{"row", d.log, d.hal}
	return d, d.init(ctx)
}

// FromRow returns a Dev for a row acquired elsewhere, e.g. a file.
func FromRow(row sigrow.Row, cfg Config) *Dev {
	d := &Dev{
		cfg: cfg,
		log: avrsig.GetLogger(cfg.Debug),
	}
	d.setRow(row)
	return d
}

func (d *Dev) init(ctx context.Context) error {
	row, err := d.readRow(ctx)
	if err != nil {
		return err
	}
	d.setRow(row)
	return nil
}

func (d *Dev) setRow(row sigrow.Row) {
	d.row = row
	d.target = d.cfg.Target
	if d.target == avrsig.TargetUnknown {
		d.target = avrsig.LookupTarget(row.Sig())
	}

	r := avrsig.DebugReader("sig", d.log, row)
	d.sig = avrsig.NewSignature(r, avrsig.NewFeatures(r, avrsig.FeaturesFor(d.target)))
}

// Row returns the raw signature row.
func (d *Dev) Row() sigrow.Row {
	return d.row
}

// Target returns the part used to select the calibration values.
//
// It is either the configured target or the one matching the signature.
func (d *Dev) Target() avrsig.Target {
	return d.target
}

// Signature returns the identity and calibration values of the device.
func (d *Dev) Signature() *avrsig.Signature {
	return d.sig
}

// Features returns the calibration values of the device.
func (d *Dev) Features() *avrsig.Features {
	return d.sig.Features()
}

// Fingerprint returns a BLAKE2b-256 digest of the signature row, hex encoded.
//
// Parts with a serial number in their signature row (e.g. ATmega328PB) get a
// unique fingerprint; for others it only identifies the part and its
// calibration.
func (d *Dev) Fingerprint() string {
	sum := blake2b.Sum256(d.row)
	return hex.EncodeToString(sum[:])
}

// readRow reads the row, retrying transient failures.
func (d *Dev) readRow(ctx context.Context) (sigrow.Row, error) {
	buf := make([]byte, d.cfg.rowSize())

	// Put the bridge back into idle mode once finished. This function is
	// called even if we would encounter a panic.
	defer func() {
		_ = d.hal.Idle()
		d.state = deviceStateIdle
	}()

	var (
		n   int
		err error
	)
	for i := -1; i < d.cfg.RxRetries; i++ {
		if d.state != deviceStateActive {
			if err = d.hal.Wake(); err == nil {
				d.state = deviceStateActive
			}
		}

		if d.state == deviceStateActive {
			if n, err = d.hal.ReadAt(buf, 0); err == nil && n == len(buf) {
				return sigrow.Row(buf), nil
			} else if err == nil {
				err = errShortRead
			}
			if !isTransient(err) {
				return nil, err
			}
			d.log.Printf("read attempt %d: %v", i+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d.cfg.WakeDelay):
		}
	}
	return nil, fmt.Errorf("bridge: failed to read signature row: %w", err)
}

// isTransient reports whether a read should be retried.
func isTransient(err error) bool {
	return errors.Is(err, errCRC) ||
		errors.Is(err, errShortRead) ||
		errors.Is(err, errTargetSync)
}
