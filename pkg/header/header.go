// Package header codecs the 10-byte part header: an 8-byte big-endian part
// size followed by a 2-byte big-endian part count. It is emitted only as
// the prefix of the first chunk of part 0.
package header

import (
	"encoding/binary"
	"fmt"
)

// Size is the fixed on-wire header length in bytes.
const Size = 10

// Header is the decoded part_size/part_count pair.
type Header struct {
	PartSize  uint64
	PartCount uint16
}

// Encode produces the 10-byte wire representation.
func (h Header) Encode() []byte {
	buf := make([]byte, Size)
	binary.BigEndian.PutUint64(buf[0:8], h.PartSize)
	binary.BigEndian.PutUint16(buf[8:10], h.PartCount)
	return buf
}

// Decode parses a 10-byte wire representation.
func Decode(buf []byte) (Header, error) {
	if len(buf) != Size {
		return Header{}, fmt.Errorf("header: expected %d bytes, got %d", Size, len(buf))
	}
	return Header{
		PartSize:  binary.BigEndian.Uint64(buf[0:8]),
		PartCount: binary.BigEndian.Uint16(buf[8:10]),
	}, nil
}
