package klf200

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePositionPercent(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int
	}{
		{0x0000, 0},
		{0x6400, 50},
		{0xC800, 100},
	}
	for _, tt := range tests {
		p := decodePosition(tt.raw)
		require.NotNil(t, p.Percent)
		assert.Equal(t, tt.want, *p.Percent)
		assert.Empty(t, p.Sentinel)
	}
}

func TestDecodePositionSentinels(t *testing.T) {
	tests := []struct {
		raw  uint16
		want string
	}{
		{posTargetPos, "target"},
		{posCurrentPos, "current"},
		{posDefault, "default"},
		{posIgnore, "ignore"},
		{posUnknown, "unknown"},
	}
	for _, tt := range tests {
		p := decodePosition(tt.raw)
		assert.Equal(t, tt.want, p.Sentinel)
		assert.Nil(t, p.Percent)
	}
}

func TestEncodePositionRoundTrip(t *testing.T) {
	for pct := 0; pct <= 100; pct += 10 {
		p := pct
		raw := encodePosition(Position{Percent: &p})
		decoded := decodePosition(raw)
		require.NotNil(t, decoded.Percent)
		assert.Equal(t, pct, *decoded.Percent)
	}
}

func TestEncodePositionSentinel(t *testing.T) {
	assert.Equal(t, uint16(posTargetPos), encodePosition(Position{Sentinel: "target"}))
	assert.Equal(t, uint16(posIgnore), encodePosition(Position{}))
}

func TestVelocityString(t *testing.T) {
	assert.Equal(t, "default", VelocityDefault.String())
	assert.Equal(t, "fast", VelocityFast.String())
	assert.Equal(t, "not_supported", VelocityNotSupported.String())
}
