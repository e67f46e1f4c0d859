package client

import (
	"sync"

	"kiball/internal/match"
	"kiball/internal/protocol"
	"kiball/internal/sim"
)

// Game glues a connection to the local simulation and match lifecycle. Wire
// HandleMessage and HandleStatus into the client's callbacks; the render loop
// calls Advance once per frame and Snapshot when drawing.
type Game struct {
	World     *sim.World
	Lifecycle *match.Lifecycle

	mu       sync.Mutex
	playerID string
	state    protocol.RoomState
}

func NewGame(w *sim.World, l *match.Lifecycle) *Game {
	return &Game{World: w, Lifecycle: l}
}

// PlayerID is the server-assigned id, empty until joined.
func (g *Game) PlayerID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerID
}

// HandleStatus follows the connection: while offline the lifecycle runs
// unmanaged so local play is never gated on readiness.
func (g *Game) HandleStatus(s Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Lifecycle.SetConnected(s == StatusOpen)
}

// HandleMessage folds server frames into local state.
func (g *Game) HandleMessage(msg any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch m := msg.(type) {
	case protocol.Joined:
		g.playerID = m.PlayerID
		g.state = m.State

	case protocol.RoomUpdate:
		g.state = m.State

	case protocol.BallHitEvent:
		// The world skipped local scoring while online; the broadcast
		// carries the authoritative points.
		if m.ShooterID == g.playerID {
			g.World.AddScore(m.Points)
		}

	case protocol.MatchReset:
		g.Lifecycle.Reset()
	}
}

// Advance drives the lifecycle from the latest room state.
func (g *Game) Advance(delta float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]match.PlayerState, 0, len(g.state.Players))
	for _, p := range g.state.Players {
		players = append(players, match.PlayerState{Score: p.Score, Ready: p.Ready})
	}
	g.Lifecycle.Advance(delta, players)
}

// Snapshot merges the last room state with the locally simulated balls for
// the render layer.
func (g *Game) Snapshot() protocol.RoomState {
	g.mu.Lock()
	st := g.state
	g.mu.Unlock()

	balls := g.World.Balls()
	st.Balls = make([]protocol.Ball, 0, len(balls))
	for _, b := range balls {
		st.Balls = append(st.Balls, b.Wire())
	}
	return st
}
