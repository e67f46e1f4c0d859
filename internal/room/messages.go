package room

import "kiball/internal/game"

type Msg interface{ isRoomMsg() }

// Join binds a new player to the room. The joined snapshot is delivered on
// Outbox; Reply carries the generated player id back to the session.
type Join struct {
	Name   string
	TeamID string
	Outbox chan []byte
	Reply  chan JoinResult
}

func (Join) isRoomMsg() {}

type JoinResult struct {
	PlayerID string
}

// Leave removes a player. Unknown ids are a silent no-op so the disconnect
// path and an explicit leave_room can race without harm.
type Leave struct{ PlayerID string }

func (Leave) isRoomMsg() {}

type Ready struct {
	PlayerID string
	Ready    bool
}

func (Ready) isRoomMsg() {}

// Pose is the latest gesture telemetry for a player, relayed verbatim to
// every other session in the room.
type Pose struct {
	PlayerID     string
	Hands        []game.HandPose
	ShieldActive bool
	Timestamp    int64
}

func (Pose) isRoomMsg() {}

// Hit is a client-reported scoring collision; the room is the authoritative
// scoring boundary.
type Hit struct {
	PlayerID  string
	BallID    string
	TargetID  string
	Energy    float64
	Timestamp int64
}

func (Hit) isRoomMsg() {}

type Reset struct {
	PlayerID string
	Reason   string
}

func (Reset) isRoomMsg() {}

// GetView reflects internal state without data races; test-only.
type GetView struct {
	Reply chan View
}

func (GetView) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// View is a copy of the room's state for tests and introspection.
type View struct {
	ID         string
	Tick       int
	NumPlayers int
	Scores     map[string]int
	Ready      map[string]bool
}
