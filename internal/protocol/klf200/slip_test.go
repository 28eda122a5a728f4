package klf200

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlipEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"no special bytes", []byte{0x01, 0x02, 0x03}},
		{"contains END", []byte{0x01, slipEnd, 0x03}},
		{"contains ESC", []byte{0x01, slipEsc, 0x03}},
		{"contains both", []byte{slipEnd, slipEsc, slipEnd, slipEsc}},
		{"all special", []byte{slipEnd, slipEnd, slipEsc, slipEsc}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := slipEncode(tt.payload)
			assert.Equal(t, slipEnd, encoded[0])
			assert.Equal(t, slipEnd, encoded[len(encoded)-1])

			decoded, err := slipDecode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestSlipDecodeRejectsMissingDelimiters(t *testing.T) {
	_, err := slipDecode([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrMissingDelimiter)
}

func TestSlipDecodeRejectsInteriorEnd(t *testing.T) {
	_, err := slipDecode([]byte{slipEnd, 0x01, slipEnd, 0x02, slipEnd})
	assert.ErrorIs(t, err, ErrInteriorEnd)
}

func TestSlipDecodeRejectsDanglingEscape(t *testing.T) {
	_, err := slipDecode([]byte{slipEnd, 0x01, slipEsc, slipEnd})
	assert.ErrorIs(t, err, ErrDanglingEscape)
}

func TestSlipDecodeRejectsInvalidEscapeByte(t *testing.T) {
	_, err := slipDecode([]byte{slipEnd, slipEsc, 0xAA, slipEnd})
	assert.ErrorIs(t, err, ErrDanglingEscape)
}

func TestFrameReaderSplitsConcatenatedFrames(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(slipEncode([]byte{1, 2, 3}))
	buf.Write(slipEncode([]byte{4, 5}))

	fr := newFrameReader(&buf)

	first, err := fr.ReadFrame()
	require.NoError(t, err)
	decoded, err := slipDecode(first)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, decoded)

	second, err := fr.ReadFrame()
	require.NoError(t, err)
	decoded, err = slipDecode(second)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, decoded)
}

func TestFrameReaderSkipsStrayLeadingEnd(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(slipEnd) // idle-line noise
	buf.WriteByte(slipEnd)
	buf.Write(slipEncode([]byte{9}))

	fr := newFrameReader(&buf)
	frame, err := fr.ReadFrame()
	require.NoError(t, err)
	decoded, err := slipDecode(frame)
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, decoded)
}
