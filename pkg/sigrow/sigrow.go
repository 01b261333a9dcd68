// Package sigrow describes the byte layout of an AVR signature row snapshot.
package sigrow

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

const (
	// RowSize is the number of signature row bytes captured in a snapshot.
	//
	// It covers the temperature sensor calibration bytes at 0x2C and 0x2D.
	RowSize = 0x30

	// HeaderSize is the size of the interleaved signature/calibration header.
	HeaderSize = 8

	// Erased is returned for addresses outside of the snapshot.
	Erased = 0xFF
)

// Row is a snapshot of the signature row.
//
// Row implements avrsig.Reader.
type Row []byte

// SignatureByte returns the byte at addr, or Erased when addr lies outside of
// the snapshot.
func (r Row) SignatureByte(addr uint8) byte {
	if int(addr) >= len(r) {
		return Erased
	}
	return r[addr]
}

// Sig returns the three device signature bytes.
func (r Row) Sig() [3]byte {
	return [3]byte{r.SignatureByte(0x00), r.SignatureByte(0x02), r.SignatureByte(0x04)}
}

// Parse parses a hex encoded row. Whitespace, including newlines, and an
// optional 0x prefix are ignored.
func Parse(s string) (Row, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.New("sigrow: empty row")
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(b) > RowSize {
		return nil, errors.New("sigrow: row exceeds maximum size")
	}
	return Row(b), nil
}

func (r Row) String() string {
	return strings.ToUpper(hex.EncodeToString(r))
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Row) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	row, err := Parse(s)
	if err != nil {
		return err
	}
	*r = row
	return nil
}

// Header is the first eight bytes of a megaAVR/tinyAVR signature row, where
// the signature bytes are interleaved with calibration bytes.
type Header struct {
	Sig1 byte `json:"sig1"`
	// Cal01 is OSCCAL on ATmega parts and OSCCAL0 on the ATtiny828.
	Cal01 byte `json:"cal01"`
	Sig2  byte `json:"sig2"`
	// Cal03 is OSCTCAL0A on the ATtiny828.
	Cal03 byte `json:"cal03"`
	Sig3  byte `json:"sig3"`
	// Cal05 is OSCTCAL0B on the ATtiny828.
	Cal05      byte `json:"cal05"`
	Reserved06 byte `json:"reserved06"`
	// Cal07 is OSCCAL1 on the ATtiny828.
	Cal07 byte `json:"cal07"`
}

// Sig returns the three device signature bytes.
func (h Header) Sig() [3]byte {
	return [3]byte{h.Sig1, h.Sig2, h.Sig3}
}

// Unmarshal decodes the leading bytes of row into data.
func Unmarshal(row []byte, data any) error {
	r := bytes.NewReader(row)
	return binary.Read(r, binary.BigEndian, data)
}

// Marshal encodes data into its row representation.
func Marshal(data any) ([]byte, error) {
	var buf bytes.Buffer
	err := binary.Write(&buf, binary.BigEndian, data)
	return buf.Bytes(), err
}

// UnmarshalPartial decodes row, which starts at offset within the signature
// row, into data. Missing bytes read as zero.
func UnmarshalPartial(row []byte, offset int, data any) error {
	var size int
	switch data.(type) {
	case *Header:
		size = HeaderSize
	default:
		return errors.New("sigrow: unsupported layout")
	}

	if offset < 0 || offset > size {
		return errors.New("sigrow: offset outside of layout")
	}

	c := make([]byte, offset, size)
	c = append(c, row...)
	if len(c) > size {
		c = c[:size]
	}
	c = append(c, make([]byte, size-len(c))...)
	return Unmarshal(c, data)
}
