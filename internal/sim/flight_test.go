package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiball/internal/game"
)

// addFlying drops a ball straight into flight, bypassing the gesture path.
func addFlying(w *World, id string, pos, vel game.Vector3, energy float64) *Ball {
	b := &Ball{
		ID:        id,
		OwnerID:   "spawner",
		Position:  pos,
		Velocity:  vel,
		Scale:     ScaleBase + energy*ScalePerEnergy,
		Energy:    energy,
		State:     BallFlying,
		SpawnedAt: w.now - OwnerGrace, // grace already over
	}
	w.balls[id] = b
	return b
}

func TestFlightGravityAndDrag(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{Z: -5}, game.Vector3{X: 1}, 1)

	w.Step(0.1, nil)

	assert.InDelta(t, -Gravity*GravityScale*0.1*Drag, b.Velocity.Y, 1e-9)
	assert.InDelta(t, 1*Drag, b.Velocity.X, 1e-9)
	assert.InDelta(t, 1-EnergyDecay*0.1, b.Energy, 1e-9)
}

func TestEnergyDecayFizzlesAndLingers(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{Z: -5}, game.Vector3{}, 0.4)

	// 0.4 energy at 0.08/s burns out after 5 s of flight.
	for i := 0; i < 49; i++ {
		w.Step(0.1, nil)
	}
	require.Equal(t, BallFlying, b.State, "still alight one frame early")

	w.Step(0.1, nil)
	require.Equal(t, BallFizzle, b.State)
	assert.Zero(t, b.Energy)

	// Lingers for the fade animation, then is removed.
	for i := 0; i < 7; i++ {
		w.Step(0.1, nil)
	}
	_, alive := w.Ball("b")
	require.True(t, alive)

	w.Step(0.1, nil)
	_, alive = w.Ball("b")
	assert.False(t, alive, "removed after the terminal linger")
}

func TestCatchByOpenRemoteHand(t *testing.T) {
	rec := &pulseRecorder{}
	w := newTestWorld(Options{Haptics: rec})
	b := addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.5)

	catcher := openPalm("r1")
	catcher.PlayerID = "p2"
	catcher.WorldPos = game.Vector3{Z: -2}
	w.Step(0.01, []Hand{catcher})

	assert.Equal(t, BallCharging, b.State)
	assert.Equal(t, "r1", b.HeldBy)
	assert.Equal(t, game.Vector3{}, b.Velocity)
	assert.InDelta(t, 0.5-EnergyDecay*0.01+CatchEnergy, b.Energy, 1e-6)
	assert.Equal(t, CatchPoints, w.Score())
	assert.True(t, rec.has("catch"))
}

func TestCatchRefusedWhenHandAlreadyHolds(t *testing.T) {
	w := newTestWorld(Options{})

	// The hand is already carrying a charging ball.
	holder := &Ball{ID: "held", State: BallCharging, HeldBy: "r1", Energy: 0.5}
	w.balls["held"] = holder
	b := addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.5)

	full := openPalm("r1")
	full.PlayerID = "p2"
	full.WorldPos = game.Vector3{Z: -2}
	w.Step(0.01, []Hand{full})

	assert.Equal(t, BallFlying, b.State, "one ball per hand is enforced at catch")
}

func TestHitOfflineScoresLocally(t *testing.T) {
	rec := &pulseRecorder{}
	w := newTestWorld(Options{Haptics: rec})
	b := addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.5)

	fist := openPalm("r1")
	fist.PalmUp = false
	fist.PlayerID = "p2"
	fist.WorldPos = game.Vector3{Z: -2}
	w.Step(0.01, []Hand{fist})

	assert.Equal(t, BallExploded, b.State)
	assert.Equal(t, game.HitPoints(b.Energy), w.Score())
	assert.True(t, rec.has("hit"))
}

func TestHitOnlineDefersToServer(t *testing.T) {
	sink := &fakeSink{connected: true}
	w := newTestWorld(Options{Sink: sink})
	b := addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.5)

	fist := openPalm("r1")
	fist.PalmUp = false
	fist.PlayerID = "p2"
	fist.WorldPos = game.Vector3{Z: -2}
	w.Step(0.01, []Hand{fist})

	assert.Equal(t, BallExploded, b.State)
	assert.Zero(t, w.Score(), "authoritative scoring replaces the local path")
	require.Len(t, sink.hits, 1)
	assert.Equal(t, "b", sink.hits[0].ballID)
	assert.Equal(t, "p2", sink.hits[0].targetID)
}

func TestHitOfflineWhenSinkDisconnected(t *testing.T) {
	sink := &fakeSink{connected: false}
	w := newTestWorld(Options{Sink: sink})
	addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.5)

	fist := openPalm("r1")
	fist.PalmUp = false
	fist.PlayerID = "p2"
	fist.WorldPos = game.Vector3{Z: -2}
	w.Step(0.01, []Hand{fist})

	assert.Empty(t, sink.hits)
	assert.NotZero(t, w.Score())
}

func TestOwnerGracePeriod(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{Z: -2}, game.Vector3{}, 0.8)
	b.OwnerID = "h1"
	b.SpawnedAt = w.now // fresh spawn, grace active

	fist := openPalm("h1")
	fist.PalmUp = false
	fist.WorldPos = game.Vector3{Z: -2}

	w.Step(0.1, []Hand{fist})
	assert.Equal(t, BallFlying, b.State, "owner cannot touch the ball inside the grace window")

	for i := 0; i < 4; i++ {
		// Pin the ball in the fist so only the grace timer decides.
		b.Position = game.Vector3{Z: -2}
		b.Velocity = game.Vector3{}
		w.Step(0.1, []Hand{fist})
	}
	assert.Equal(t, BallExploded, b.State, "grace over, the owner's fist counts")
}

func TestScreenHitInCentralWindow(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{Z: 2.9}, game.Vector3{Z: 10}, 1)

	w.Step(0.05, nil)

	assert.Equal(t, BallExploded, b.State)
	assert.Equal(t, ScreenPoints, w.Score())
}

func TestScreenMissOutsideWindowCulls(t *testing.T) {
	w := newTestWorld(Options{})
	addFlying(w, "b", game.Vector3{X: 3, Z: 4.9}, game.Vector3{Z: 10}, 1)

	w.Step(0.05, nil)

	_, alive := w.Ball("b")
	assert.False(t, alive, "a wide miss flies past the screen and is culled")
	assert.Zero(t, w.Score())
}

func TestFloorBounce(t *testing.T) {
	rec := &pulseRecorder{}
	w := newTestWorld(Options{Haptics: rec})
	b := addFlying(w, "b", game.Vector3{Y: -2.45, Z: -5}, game.Vector3{Y: -3}, 1)

	w.Step(0.05, nil)

	assert.InDelta(t, FloorY, b.Position.Y, 1e-9)
	assert.Greater(t, b.Velocity.Y, 0.0, "floor reflects upward")
	assert.True(t, rec.has("bounce"))
}

func TestSideWallBounce(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{X: 3.9, Z: -5}, game.Vector3{X: 5}, 1)

	w.Step(0.05, nil)

	assert.InDelta(t, WallX, b.Position.X, 1e-9)
	assert.Less(t, b.Velocity.X, 0.0)
}

func TestBackWallBounce(t *testing.T) {
	w := newTestWorld(Options{})
	b := addFlying(w, "b", game.Vector3{Z: -9.8}, game.Vector3{Z: -6}, 1)

	w.Step(0.05, nil)

	assert.InDelta(t, BackZ, b.Position.Z, 1e-9)
	assert.Greater(t, b.Velocity.Z, 0.0)
}

func TestBallBallImpulse(t *testing.T) {
	w := newTestWorld(Options{})
	a := addFlying(w, "a", game.Vector3{X: -0.05, Z: -5}, game.Vector3{X: 2}, 1)
	b := addFlying(w, "b", game.Vector3{X: 0.05, Z: -5}, game.Vector3{X: -2}, 1)

	w.Step(0.01, nil)

	assert.Less(t, a.Velocity.X, 2.0, "impulse pushes the pair apart")
	assert.Greater(t, b.Velocity.X, -2.0)
}
