package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalIsSymmetric(t *testing.T) {
	ids := []uint{1, 2, 7, 10, 42, 1000, 1 << 40}
	for _, a := range ids {
		for _, b := range ids {
			assert.Equal(t, Canonical(a, b), Canonical(b, a), "pair %d,%d", a, b)
		}
	}
	assert.Equal(t, "dm:1:7", Canonical(7, 1))
	// Numeric, not lexical, ordering.
	assert.Equal(t, "dm:9:10", Canonical(10, 9))
}

func TestParseRoomKey(t *testing.T) {
	a, b, err := ParseRoomKey(Canonical(7, 1))
	require.NoError(t, err)
	assert.Equal(t, uint(1), a)
	assert.Equal(t, uint(7), b)

	for _, bad := range []string{"", "dm:7:1", "dm:1", "room:1:7", "dm:x:7", "dm:0:7", "dm:01:7", "dm:1:7:9"} {
		_, _, err := ParseRoomKey(bad)
		assert.Error(t, err, "key %q", bad)
	}
}

func TestIsParticipant(t *testing.T) {
	key := Canonical(1, 7)
	assert.True(t, IsParticipant(key, 1))
	assert.True(t, IsParticipant(key, 7))
	assert.False(t, IsParticipant(key, 8))
	assert.False(t, IsParticipant("garbage", 1))
}

func TestSendMessageValidate(t *testing.T) {
	ok := SendMessage{RoomKey: Canonical(1, 7), SenderID: 7, ReceiverID: 1, Body: "ping"}
	assert.NoError(t, ok.Validate())

	bad := []SendMessage{
		{RoomKey: Canonical(1, 7), SenderID: 0, ReceiverID: 1, Body: "ping"},
		{RoomKey: Canonical(1, 7), SenderID: 7, ReceiverID: 0, Body: "ping"},
		{RoomKey: Canonical(1, 7), SenderID: 7, ReceiverID: 1, Body: " "},
		{RoomKey: Canonical(1, 8), SenderID: 7, ReceiverID: 1, Body: "ping"},
		{RoomKey: "", SenderID: 7, ReceiverID: 1, Body: "ping"},
	}
	for _, m := range bad {
		assert.Error(t, m.Validate(), "%+v", m)
	}
}

func TestJoinRoomValidate(t *testing.T) {
	assert.NoError(t, JoinRoom{RoomKey: "dm:1:7"}.Validate())
	assert.Error(t, JoinRoom{}.Validate())
	assert.Error(t, JoinRoom{RoomKey: "dm:7:1"}.Validate())
}
