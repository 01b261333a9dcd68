package bridge

import (
	"errors"
)

// Kit protocol errors, reported in the status byte of every response.
var (
	// errAddress is used when the requested range lies outside of the row.
	errAddress = errors.New("bridge: address out of range")

	// errParseError is used when the command was not understood.
	errParseError = errors.New("bridge: protocol error")

	// errTargetSync is used when the programmer could not enter programming
	// mode on the target, e.g. a missing ISP connection or reset held high.
	errTargetSync = errors.New("bridge: target not responding")

	errExecution = errors.New("bridge: execution error")

	// errCRC is used for checksum missmatch or other communication error.
	//
	// This is a transient error and the command should be re-transmitted.
	errCRC = errors.New("bridge: crc or communication error")

	errUnknown = errors.New("bridge: unknown error")
)

// validateResponseStatusCode validates the status code returned by protocol.
//
// The status code is the first byte of the response and indicates how the
// command was processed by the bridge.
func validateResponseStatusCode(response []byte) error {
	if len(response) == 0 {
		return errors.New("bridge: empty response")
	}

	statusCode := response[0]
	switch statusCode {
	case 0x00:
		return nil
	case 0x01:
		return errAddress
	case 0x03:
		return errParseError
	case 0x05:
		return errTargetSync
	case 0x0f:
		return errExecution
	case 0xff:
		return errCRC
	default:
		return errUnknown
	}
}

// Package errors.
var (
	errRecvBuffer = errors.New("bridge: recv buffer too small")
	errNoDevice   = errors.New("bridge: no device found")
	errShortRead  = errors.New("bridge: short signature row read")
)
