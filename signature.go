package avrsig

import (
	"strings"
	"sync"
)

// Signature row addresses of the device signature bytes.
const (
	AddrSig1 = 0x00
	AddrSig2 = 0x02
	AddrSig3 = 0x04
)

// Signature identifies a device and aggregates its calibration values.
//
// Like Features, the signature bytes are read once on first use. It is safe
// for concurrent use.
type Signature struct {
	r        Reader
	features *Features
	once     sync.Once

	sig Sig
}

// NewSignature returns a Signature reading through r.
//
// A nil features is treated as a device without calibration values.
func NewSignature(r Reader, features *Features) *Signature {
	if features == nil {
		features = NewFeatures(r, 0)
	}
	return &Signature{r: r, features: features}
}

// Init reads the calibration values and then the signature bytes. Only the
// first call touches the Reader.
func (s *Signature) Init() {
	s.once.Do(func() {
		s.features.Init()

		s.sig[0] = s.r.SignatureByte(AddrSig1)
		s.sig[1] = s.r.SignatureByte(AddrSig2)
		s.sig[2] = s.r.SignatureByte(AddrSig3)
	})
}

// Bytes returns the raw signature bytes.
func (s *Signature) Bytes() Sig {
	s.Init()
	return s.sig
}

// Hex returns the signature formatted as 0x followed by six hex digits.
func (s *Signature) Hex() string {
	return s.Bytes().Hex()
}

// Target returns the part matching the signature.
func (s *Signature) Target() Target {
	return LookupTarget(s.Bytes())
}

// ChipName returns the name of the part, or Unknown.
func (s *Signature) ChipName() string {
	return s.Target().String()
}

// Features returns the calibration values of the device.
func (s *Signature) Features() *Features {
	return s.features
}

// Summary describes the device on multiple lines. Useful for logging which
// part a program runs on.
func (s *Signature) Summary() string {
	s.Init()

	var b strings.Builder
	b.WriteString("Signature Information:\n")
	b.WriteString("\tBoard: ")
	b.WriteString(s.ChipName())
	b.WriteString(" (")
	b.WriteString(s.Hex())
	b.WriteString(")")
	for _, line := range s.features.Lines() {
		b.WriteString("\n\t")
		b.WriteString(line)
	}
	return b.String()
}
