package klf200

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeGroupRecordAcceptsExactRecordLength(t *testing.T) {
	data := make([]byte, groupRecordLen)
	data[0] = 7             // ID
	data[68] = 2            // Velocity
	data[71] = 1            // GroupType
	data[72] = 3            // NodeCount
	data[73] = 0b10000000   // Members bitmap, node 0 set

	g, err := decodeGroupRecord(data)
	require.NoError(t, err)
	assert.Equal(t, byte(7), g.ID)
	assert.Equal(t, byte(3), g.NodeCount)
	assert.True(t, g.IsMember(0))
	assert.False(t, g.IsMember(1))
}

func TestDecodeGroupRecordTooShort(t *testing.T) {
	_, err := decodeGroupRecord(make([]byte, groupRecordLen-1))
	assert.ErrorIs(t, err, ErrPayloadTooShort)
}

func TestGroupIsMemberOutOfRangeNodeID(t *testing.T) {
	g := &Group{Members: make([]byte, 25)}
	assert.False(t, g.IsMember(250))
}
