package protocol

import (
	"encoding/json"
	"errors"
)

var (
	ErrBadJSON    = errors.New("frame is not valid JSON")
	ErrBadMessage = errors.New("frame has no usable type tag")
)

// tag is the minimal probe used to read the discriminator before a full
// decode. Type must be a JSON string; anything else is ErrBadMessage.
type tag struct {
	Type *string `json:"type"`
}

func sniff(data []byte) (string, error) {
	var t tag
	if err := json.Unmarshal(data, &t); err != nil {
		return "", ErrBadJSON
	}
	if t.Type == nil || *t.Type == "" {
		return "", ErrBadMessage
	}
	return *t.Type, nil
}

// Encode marshals any message struct. Callers set the Type field themselves;
// the helpers below exist for the common server replies.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// MustEncode is for messages built entirely from local values, where a
// marshal failure is a programming error.
func MustEncode(msg any) []byte {
	b, err := json.Marshal(msg)
	if err != nil {
		panic(err)
	}
	return b
}

func decodeAs[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var zero T
		return zero, ErrBadJSON
	}
	return out, nil
}

// DecodeClient parses one client->server frame into its typed message.
// Unknown tags and non-JSON frames come back as ErrBadMessage / ErrBadJSON;
// the connection is expected to stay open either way.
func DecodeClient(data []byte) (any, error) {
	t, err := sniff(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeJoinRoom:
		return decodeAs[JoinRoom](data)
	case TypeLeaveRoom:
		return decodeAs[LeaveRoom](data)
	case TypePlayerReady:
		return decodeAs[PlayerReady](data)
	case TypePoseUpdate:
		return decodeAs[PoseUpdate](data)
	case TypeBallHit:
		return decodeAs[BallHit](data)
	case TypeMatchReset:
		return decodeAs[MatchReset](data)
	case TypePing:
		return decodeAs[Ping](data)
	default:
		return nil, ErrBadMessage
	}
}

// DecodeServer parses one server->client frame into its typed message.
func DecodeServer(data []byte) (any, error) {
	t, err := sniff(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeJoined:
		return decodeAs[Joined](data)
	case TypePlayerJoined:
		return decodeAs[PlayerJoined](data)
	case TypePlayerLeft:
		return decodeAs[PlayerLeft](data)
	case TypeRoomUpdate:
		return decodeAs[RoomUpdate](data)
	case TypePoseUpdate:
		return decodeAs[PoseUpdate](data)
	case TypeBallHit:
		return decodeAs[BallHitEvent](data)
	case TypeMatchReset:
		return decodeAs[MatchReset](data)
	case TypeError:
		return decodeAs[Error](data)
	case TypePong:
		return decodeAs[Pong](data)
	default:
		return nil, ErrBadMessage
	}
}
