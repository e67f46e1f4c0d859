package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeClientJoinRoom(t *testing.T) {
	raw := []byte(`{"type":"join_room","roomId":"ABC123","name":"kai","teamId":"red"}`)

	msg, err := DecodeClient(raw)
	require.NoError(t, err)

	join, ok := msg.(JoinRoom)
	require.True(t, ok, "expected JoinRoom, got %T", msg)
	assert.Equal(t, "ABC123", join.RoomID)
	assert.Equal(t, "kai", join.Name)
	assert.Equal(t, "red", join.TeamID)
}

func TestDecodeClientBallHitWithoutTarget(t *testing.T) {
	raw := []byte(`{"type":"ball_hit","ballId":"b1","energy":0.5,"timestamp":123}`)

	msg, err := DecodeClient(raw)
	require.NoError(t, err)

	hit, ok := msg.(BallHit)
	require.True(t, ok)
	assert.Empty(t, hit.TargetID, "absent targetId must decode empty so the room can reject it")
}

func TestDecodeClientErrors(t *testing.T) {
	_, err := DecodeClient([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrBadJSON)

	_, err = DecodeClient([]byte(`{"roomId":"X"}`))
	assert.ErrorIs(t, err, ErrBadMessage, "missing type tag")

	_, err = DecodeClient([]byte(`{"type":42}`))
	assert.ErrorIs(t, err, ErrBadMessage, "non-string type tag")

	_, err = DecodeClient([]byte(`{"type":"warp_drive"}`))
	assert.ErrorIs(t, err, ErrBadMessage, "unknown tag")
}

func TestDecodeServerRoundTrip(t *testing.T) {
	out := MustEncode(BallHitEvent{
		Type:      TypeBallHit,
		BallID:    "b1",
		ShooterID: "p1",
		TargetID:  "p2",
		Energy:    1,
		Points:    30,
		Damage:    20,
		Timestamp: 99,
	})

	msg, err := DecodeServer(out)
	require.NoError(t, err)

	evt, ok := msg.(BallHitEvent)
	require.True(t, ok)
	assert.Equal(t, 30, evt.Points)
	assert.Equal(t, 20, evt.Damage)
	assert.Equal(t, "p1", evt.ShooterID)
}

func TestDecodeServerSnapshot(t *testing.T) {
	raw := []byte(`{"type":"joined","playerId":"p1","roomId":"R","state":{"id":"R","tick":0,"serverTime":1,"players":[{"id":"p1","score":0,"ready":false}],"balls":[]}}`)

	msg, err := DecodeServer(raw)
	require.NoError(t, err)

	joined, ok := msg.(Joined)
	require.True(t, ok)
	assert.Equal(t, "R", joined.State.ID)
	require.Len(t, joined.State.Players, 1)
	assert.Equal(t, "p1", joined.State.Players[0].ID)
	assert.NotNil(t, joined.State.Balls)
}

// Wire tags are part of the protocol contract with the browser client; a
// rename here is a breaking change.
func TestTypeTagsAreStable(t *testing.T) {
	assert.Equal(t, "join_room", TypeJoinRoom)
	assert.Equal(t, "leave_room", TypeLeaveRoom)
	assert.Equal(t, "player_ready", TypePlayerReady)
	assert.Equal(t, "pose_update", TypePoseUpdate)
	assert.Equal(t, "ball_hit", TypeBallHit)
	assert.Equal(t, "match_reset", TypeMatchReset)
	assert.Equal(t, "ping", TypePing)
	assert.Equal(t, "joined", TypeJoined)
	assert.Equal(t, "player_joined", TypePlayerJoined)
	assert.Equal(t, "player_left", TypePlayerLeft)
	assert.Equal(t, "room_update", TypeRoomUpdate)
	assert.Equal(t, "error", TypeError)
	assert.Equal(t, "pong", TypePong)
	assert.Equal(t, "bad_json", CodeBadJSON)
	assert.Equal(t, "bad_message", CodeBadMessage)
	assert.Equal(t, "missing_target", CodeMissingTarget)
}
