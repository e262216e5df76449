package common

import (
	"github.com/snksoft/crc"
)

// Checksum is recorded with every result to correlate stored results with their input.  It is the
// CRC-64/ECMA of the raw bytes and is not unique, so it must not be used as an identity.
func Checksum(data []byte) uint64 {
	return crc.CalculateCRC(crc.CRC64ECMA, data)
}
