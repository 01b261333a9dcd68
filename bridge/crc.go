package bridge

// crc16 calculates the CRC.
//
// The I²C bridge protects every response with the same CRC used by the
// Microchip CryptoAuthentication devices, refer to the Atmel
// CryptoAuthentication Data Zone CRC Calculation document for details.
// https://ww1.microchip.com/downloads/en/Appnotes/Atmel-8936-CryptoAuth-Data-Zone-CRC-Calculation-ApplicationNote.pdf
func crc16(data []byte) uint16 {
	const polynom uint16 = 0x8005
	var crc uint16

	for _, b := range data {
		for j := 0; j < 8; j++ {
			dataBit := uint16(b>>j) & 1
			crcBit := crc >> 15
			crc <<= 1
			if dataBit != crcBit {
				crc ^= polynom
			}
		}
	}

	return crc
}
