package protocol

import "kiball/internal/game"

// Message type tags. Every frame on the wire is a flat JSON object with a
// string "type" field; the remaining fields belong to that tag.
const (
	// Client -> server
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypePlayerReady = "player_ready"
	TypePoseUpdate  = "pose_update"
	TypeBallHit     = "ball_hit"
	TypeMatchReset  = "match_reset"
	TypePing        = "ping"

	// Server -> client
	TypeJoined       = "joined"
	TypePlayerJoined = "player_joined"
	TypePlayerLeft   = "player_left"
	TypeRoomUpdate   = "room_update"
	TypeError        = "error"
	TypePong         = "pong"
)

// Error codes surfaced on the protocol error path.
const (
	CodeBadJSON       = "bad_json"
	CodeBadMessage    = "bad_message"
	CodeMissingTarget = "missing_target"
)

// Player is the wire view of a room member.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	TeamID string `json:"teamId,omitempty"`
	Score  int    `json:"score"`
	Ready  bool   `json:"ready"`
}

// Ball is the wire view of an energy ball, carried in room snapshots.
type Ball struct {
	ID       string       `json:"id"`
	OwnerID  string       `json:"ownerId,omitempty"`
	Position game.Vector3 `json:"position"`
	Velocity game.Vector3 `json:"velocity"`
	Scale    float64      `json:"scale"`
	Energy   float64      `json:"energy"`
	State    string       `json:"state"`
	HeldBy   string       `json:"heldBy,omitempty"`
	Color    string       `json:"color,omitempty"`
}

// RoomState is the full snapshot sent in joined and room_update messages.
type RoomState struct {
	ID         string   `json:"id"`
	Tick       int      `json:"tick"`
	ServerTime int64    `json:"serverTime"`
	Players    []Player `json:"players"`
	Balls      []Ball   `json:"balls"`
}

// --- Client -> server ---

type JoinRoom struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	TeamID string `json:"teamId,omitempty"`
}

type LeaveRoom struct {
	Type string `json:"type"`
}

type PlayerReady struct {
	Type  string `json:"type"`
	Ready bool   `json:"ready"`
}

// PoseUpdate is sent by clients at the pose send rate and re-broadcast by the
// server stamped with the sender's PlayerID. The server never inspects the
// hand contents; it is a relay.
type PoseUpdate struct {
	Type         string          `json:"type"`
	PlayerID     string          `json:"playerId,omitempty"` // server-stamped
	Hands        []game.HandPose `json:"hands"`
	ShieldActive bool            `json:"shieldActive"`
	Timestamp    int64           `json:"timestamp"`
}

// BallHit is the client's report of a scoring collision. TargetID is
// mandatory; hits without one are rejected with code missing_target.
type BallHit struct {
	Type      string  `json:"type"`
	BallID    string  `json:"ballId"`
	TargetID  string  `json:"targetId,omitempty"`
	Energy    float64 `json:"energy"`
	Timestamp int64   `json:"timestamp"`
}

type MatchReset struct {
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // set on the server echo
}

type Ping struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// --- Server -> client ---

type Joined struct {
	Type     string    `json:"type"`
	PlayerID string    `json:"playerId"`
	RoomID   string    `json:"roomId"`
	State    RoomState `json:"state"`
}

type PlayerJoined struct {
	Type   string `json:"type"`
	Player Player `json:"player"`
}

type PlayerLeft struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type RoomUpdate struct {
	Type  string    `json:"type"`
	State RoomState `json:"state"`
}

// BallHitEvent is the authoritative broadcast after a scored hit.
type BallHitEvent struct {
	Type      string  `json:"type"`
	BallID    string  `json:"ballId"`
	ShooterID string  `json:"shooterId"`
	TargetID  string  `json:"targetId"`
	Energy    float64 `json:"energy"`
	Points    int     `json:"points"`
	Damage    int     `json:"damage"`
	Timestamp int64   `json:"timestamp"`
}

type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}
