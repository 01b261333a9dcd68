package bridge

import (
	"encoding/hex"
	"strings"
)

// hexDump formats row chunks and kit packets for the debug log in the
// `hexdump -C` layout. Formatting only happens when the logger prints it.
type hexDump []byte

func (h hexDump) String() string {
	var buf strings.Builder
	buf.WriteByte('\n')
	d := hex.Dumper(&buf)
	_, _ = d.Write([]byte(h))
	_ = d.Close()
	buf.WriteByte('\n')
	return buf.String()
}
