package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/CUknot/messenger_backend/errors"
)

func TestCanonicalDMChannel_OrderIndependent(t *testing.T) {
	forward, err := CanonicalDMChannel(3, 11)
	require.NoError(t, err)
	backward, err := CanonicalDMChannel(11, 3)
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
	assert.Equal(t, "dm_3_11", forward.Key)
	assert.True(t, forward.IsDM())
}

func TestCanonicalDMChannel_RejectsInvalidPairs(t *testing.T) {
	for _, pair := range [][2]uint{{5, 5}, {0, 4}, {4, 0}} {
		_, err := CanonicalDMChannel(pair[0], pair[1])
		assert.ErrorIs(t, err, apperrors.ErrInvalidPair, "pair %v", pair)
	}
}

func TestChannelID_RoomAndDMNeverCollide(t *testing.T) {
	dm, err := CanonicalDMChannel(1, 2)
	require.NoError(t, err)
	room := RoomChannel("dm_1_2")

	assert.NotEqual(t, dm, room)
	assert.True(t, room.IsRoom())
	assert.Equal(t, "room:dm_1_2", room.String())
	assert.Equal(t, "dm_1_2", dm.String())
}
