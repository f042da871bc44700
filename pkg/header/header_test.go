package header

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS7Encoding(t *testing.T) {
	h := Header{PartSize: 1_048_576, PartCount: 4}
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x04}, h.Encode())
}

func TestRoundTrip(t *testing.T) {
	f := func(ps uint64, pc uint16) bool {
		h := Header{PartSize: ps, PartCount: pc}
		decoded, err := Decode(h.Encode())
		return err == nil && decoded == h
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}
