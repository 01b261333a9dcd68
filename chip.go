package avrsig

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Target represents a physical AVR part.
type Target int

const (
	TargetUnknown Target = iota
	TargetATmega48A
	TargetATmega48PA
	TargetATmega88A
	TargetATmega88PA
	TargetATmega168A
	TargetATmega168PA
	TargetATmega328
	TargetATmega328P
	TargetATmega328PB
	TargetATtiny828
	numTargets
)

// Unknown is the chip name of signatures missing from the chip table.
const Unknown = "UNKNOWN"

var targetNames = [numTargets]string{
	TargetUnknown:     Unknown,
	TargetATmega48A:   "ATmega48A",
	TargetATmega48PA:  "ATmega48PA",
	TargetATmega88A:   "ATmega88A",
	TargetATmega88PA:  "ATmega88PA",
	TargetATmega168A:  "ATmega168A",
	TargetATmega168PA: "ATmega168PA",
	TargetATmega328:   "ATmega328",
	TargetATmega328P:  "ATmega328P",
	TargetATmega328PB: "ATmega328PB",
	TargetATtiny828:   "ATtiny828",
}

func (t Target) String() string {
	if t < 0 || t >= numTargets {
		return Unknown
	}
	return targetNames[t]
}

// Targets returns all known targets in table order.
func Targets() []Target {
	targets := make([]Target, 0, len(chipTable))
	for _, e := range chipTable {
		targets = append(targets, e.target)
	}
	return targets
}

// ParseTarget returns the target named s.
//
// Matching is case insensitive. The empty string and "auto" return
// TargetUnknown, which callers use to resolve the target from the signature.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return TargetUnknown, nil
	}
	for t := TargetUnknown + 1; t < numTargets; t++ {
		if strings.EqualFold(targetNames[t], s) {
			return t, nil
		}
	}
	return TargetUnknown, fmt.Errorf("avrsig: unknown target %q", s)
}

// VendorAtmel is the first signature byte of every Atmel/Microchip AVR.
const VendorAtmel = 0x1E

// Sig holds the three device signature bytes.
type Sig [3]byte

// Hex formats the signature as 0x followed by six upper case hex digits.
func (s Sig) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", s[0], s[1], s[2])
}

func (s Sig) String() string {
	return s.Hex()
}

// ParseSig parses a signature written as six hex digits, optionally prefixed
// by 0x and separated by spaces or colons.
func ParseSig(s string) (Sig, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	if len(s) != 6 {
		return Sig{}, errors.New("avrsig: signature must be 3 bytes")
	}
	var sig Sig
	if _, err := hex.Decode(sig[:], []byte(s)); err != nil {
		return Sig{}, fmt.Errorf("avrsig: invalid signature: %w", err)
	}
	return sig, nil
}

type chipEntry struct {
	sig    Sig
	target Target
}

// chipTable maps signatures to parts. Entries are compared for equality only
// so their order does not matter for correctness.
var chipTable = []chipEntry{
	{Sig{VendorAtmel, 0x92, 0x05}, TargetATmega48A},
	{Sig{VendorAtmel, 0x92, 0x0A}, TargetATmega48PA},
	{Sig{VendorAtmel, 0x93, 0x0A}, TargetATmega88A},
	{Sig{VendorAtmel, 0x93, 0x0F}, TargetATmega88PA},
	{Sig{VendorAtmel, 0x94, 0x06}, TargetATmega168A},
	{Sig{VendorAtmel, 0x94, 0x0B}, TargetATmega168PA},
	{Sig{VendorAtmel, 0x95, 0x14}, TargetATmega328},
	{Sig{VendorAtmel, 0x95, 0x0F}, TargetATmega328P},
	{Sig{VendorAtmel, 0x95, 0x16}, TargetATmega328PB},
	{Sig{VendorAtmel, 0x93, 0x14}, TargetATtiny828},
}

// LookupTarget returns the target for the signature, or TargetUnknown.
func LookupTarget(sig Sig) Target {
	if sig[0] != VendorAtmel {
		return TargetUnknown
	}
	for _, e := range chipTable {
		if e.sig == sig {
			return e.target
		}
	}
	return TargetUnknown
}

// ChipName returns the display name for the signature, or Unknown.
func ChipName(sig Sig) string {
	return LookupTarget(sig).String()
}

// SigOf returns the signature of a known target.
func SigOf(t Target) (Sig, bool) {
	for _, e := range chipTable {
		if e.target == t {
			return e.sig, true
		}
	}
	return Sig{}, false
}
