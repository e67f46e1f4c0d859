package sim

import (
	"kiball/internal/game"
	"kiball/internal/protocol"
)

type BallState string

const (
	BallCharging BallState = "charging"
	BallFlying   BallState = "flying"
	BallFizzle   BallState = "fizzle"
	BallExploded BallState = "exploded"
)

// Terminal reports whether a state admits no further physics.
func (s BallState) Terminal() bool {
	return s == BallFizzle || s == BallExploded
}

type Ball struct {
	ID       string
	OwnerID  string // hand id that spawned it
	Position game.Vector3
	Velocity game.Vector3
	Scale    float64
	Energy   float64
	State    BallState
	HeldBy   string // hand id, empty once thrown or released
	Color    string

	SpawnedAt  float64 // sim clock seconds
	terminalAt float64
}

// Wire converts a ball to its protocol representation.
func (b *Ball) Wire() protocol.Ball {
	return protocol.Ball{
		ID:       b.ID,
		OwnerID:  b.OwnerID,
		Position: b.Position,
		Velocity: b.Velocity,
		Scale:    b.Scale,
		Energy:   b.Energy,
		State:    string(b.State),
		HeldBy:   b.HeldBy,
		Color:    b.Color,
	}
}

func colorFor(h game.Handedness) string {
	if h == game.HandLeft {
		return "cyan"
	}
	return "orange"
}
