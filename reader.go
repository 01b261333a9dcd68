package avrsig

// Reader fetches single bytes from the signature row.
//
// Reads cannot fail: a Reader is either backed by memory mapped hardware or
// by a snapshot that was acquired, and checked, beforehand.
type Reader interface {
	// SignatureByte returns the byte at addr in the signature row.
	SignatureByte(addr uint8) byte
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(addr uint8) byte

func (f ReaderFunc) SignatureByte(addr uint8) byte {
	return f(addr)
}

// DebugReader returns a Reader that logs every fetch to l.
func DebugReader(id string, l Logger, next Reader) Reader {
	if l == nil || l == nullLogger {
		return next
	}
	return &readerDebug{id, l, next}
}

type readerDebug struct {
	id   string
	l    Logger
	next Reader
}

func (r *readerDebug) SignatureByte(addr uint8) byte {
	r.l.Printf("%5s >>  read(0x%02X)", r.id, addr)
	b := r.next.SignatureByte(addr)
	r.l.Printf("%5s <<  read 0x%02X", r.id, b)
	return b
}
