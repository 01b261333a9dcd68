package sigrow

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// Record is a row together with its decoded header. It is the form in which
// rows are stored and sent to other systems.
type Record struct {
	Row    Row    `json:"row" cbor:"1,keyasint"`
	Header Header `json:"header" cbor:"2,keyasint"`
}

// NewRecord decodes the header of row. Rows shorter than the header read as
// zero in the missing bytes.
func NewRecord(row Row) (Record, error) {
	var h Header
	if err := UnmarshalPartial(row, 0, &h); err != nil {
		return Record{}, err
	}
	return Record{Row: row, Header: h}, nil
}

// MarshalCBOR encodes the record as a CBOR map with integer keys.
func (r Record) MarshalCBOR() ([]byte, error) {
	type record Record
	return cbor.Marshal(record(r))
}

// UnmarshalRecordCBOR decodes a record written by MarshalCBOR.
func UnmarshalRecordCBOR(b []byte) (Record, error) {
	type record Record
	var r record
	if err := cbor.Unmarshal(b, &r); err != nil {
		return Record{}, err
	}
	if len(r.Row) > RowSize {
		return Record{}, errors.New("sigrow: row exceeds maximum size")
	}
	return Record(r), nil
}
