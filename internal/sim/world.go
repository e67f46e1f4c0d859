// Package sim is the client-side energy ball state machine: spawn, charge,
// throw, flight, collision, and decay, advanced once per render frame from
// local and remote hand poses.
package sim

import (
	"math"
	"time"

	"github.com/google/uuid"

	"kiball/internal/game"
)

// Hand is a tracked hand pose plus its owner. PlayerID is empty for the
// local player's hands; only local hands can spawn and throw.
type Hand struct {
	game.HandPose
	PlayerID string
}

// HitSink is the network seam for authoritative scoring. When Connected
// reports true, hand hits are reported instead of scored locally.
type HitSink interface {
	Connected() bool
	SendHit(ballID, targetID string, energy float64, timestamp int64)
}

// Haptics receives fire-and-forget feedback pulses. Implementations must
// never block.
type Haptics interface {
	Pulse(kind string)
}

type noHaptics struct{}

func (noHaptics) Pulse(string) {}

type Options struct {
	Sink    HitSink
	Haptics Haptics
	NewID   func() string
}

type World struct {
	now         float64
	lastSpawnAt float64
	balls       map[string]*Ball
	score       int

	sink    HitSink
	haptics Haptics
	newID   func() string
}

func NewWorld(opts Options) *World {
	if opts.Haptics == nil {
		opts.Haptics = noHaptics{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &World{
		lastSpawnAt: -SpawnCooldown,
		balls:       make(map[string]*Ball),
		sink:        opts.Sink,
		haptics:     opts.Haptics,
		newID:       opts.NewID,
	}
}

func (w *World) Score() int { return w.score }

// AddScore folds in an externally-awarded score, e.g. the authoritative
// points from a server ball_hit broadcast.
func (w *World) AddScore(points int) { w.score += points }

func (w *World) Balls() []*Ball {
	out := make([]*Ball, 0, len(w.balls))
	for _, b := range w.balls {
		out = append(out, b)
	}
	return out
}

func (w *World) Ball(id string) (*Ball, bool) {
	b, ok := w.balls[id]
	return b, ok
}

// Step advances the simulation by delta seconds. hands is the latest pose
// snapshot for every tracked hand, local and remote.
func (w *World) Step(delta float64, hands []Hand) {
	w.now += delta

	byID := make(map[string]Hand, len(hands))
	held := make(map[string]bool) // hand id -> already holding a ball
	for _, h := range hands {
		byID[h.ID] = h
	}
	for _, b := range w.balls {
		if b.HeldBy != "" {
			held[b.HeldBy] = true
		}
	}

	w.spawn(hands, held)

	var remove []string
	for id, b := range w.balls {
		switch {
		case b.State == BallCharging:
			w.stepCharging(b, delta, byID)
		case b.State == BallFlying:
			if w.stepFlying(b, delta, hands, held) {
				remove = append(remove, id)
			}
		case b.State.Terminal():
			if w.now-b.terminalAt >= TerminalLinger {
				remove = append(remove, id)
			}
		}
	}

	w.collideBalls()

	for _, id := range remove {
		delete(w.balls, id)
	}
}

// spawn creates a charging ball for any open local palm, subject to the
// global cooldown and the one-held-ball-per-hand rule.
func (w *World) spawn(hands []Hand, held map[string]bool) {
	for _, h := range hands {
		if h.PlayerID != "" || !h.PalmUp || held[h.ID] {
			continue
		}
		if w.now-w.lastSpawnAt < SpawnCooldown {
			continue
		}
		b := &Ball{
			ID:        w.newID(),
			OwnerID:   h.ID,
			Position:  h.WorldPos.Add(game.Vector3{Y: SpawnLift}),
			Scale:     SpawnScale,
			Energy:    SpawnEnergy,
			State:     BallCharging,
			HeldBy:    h.ID,
			Color:     colorFor(h.Handedness),
			SpawnedAt: w.now,
		}
		w.balls[b.ID] = b
		held[h.ID] = true
		w.lastSpawnAt = w.now
		w.haptics.Pulse("spawn")
	}
}

func (w *World) stepCharging(b *Ball, delta float64, byID map[string]Hand) {
	hand, tracked := byID[b.HeldBy]
	if !tracked {
		// Holder vanished from tracking: let the ball go with the last
		// velocity it was carried at.
		b.State = BallFlying
		b.HeldBy = ""
		return
	}

	b.Position = b.Position.Lerp(hand.WorldPos.Add(game.Vector3{Y: SpawnLift}), HoldLerp)
	b.Velocity = hand.Velocity
	b.Energy = math.Min(1, b.Energy+ChargeRate*delta)
	b.Scale = ScaleBase + b.Energy*ScalePerEnergy

	v, a := hand.Velocity, hand.Acceleration
	speed := hand.Speed()
	throwAway := v.Z < -ThrowVelZ || a.Z < -ThrowAccZ
	throwToward := v.Z > ThrowVelZ || a.Z > ThrowAccZ

	if (throwAway || throwToward) && speed > ThrowMinSpeed && b.Energy > ThrowMinEnergy {
		vel := v
		if math.Abs(a.Z) > BoostAccZ {
			vel = vel.Add(a.Scale(BoostFactor))
		}
		vel = vel.Scale(ThrowBoost)
		if throwAway && vel.Z > -ThrowMinExitZ {
			vel.Z = -ThrowMinExitZ
		}
		if throwToward && vel.Z < ThrowMinExitZ {
			vel.Z = ThrowMinExitZ
		}
		vel.Y += ThrowArcLift

		b.Velocity = vel
		b.State = BallFlying
		b.HeldBy = ""
		w.haptics.Pulse("throw")
		return
	}

	// Closing the palm while slow just drops the ball.
	if !hand.PalmUp && speed < ReleaseMaxSpeed && w.now-b.SpawnedAt >= SpawnCooldown {
		b.Velocity = game.Vector3{Y: -ReleaseDrop}
		b.State = BallFlying
		b.HeldBy = ""
	}
}

// stepFlying integrates one frame of flight and resolves collisions. The
// return value reports that the ball left the playfield and must be removed
// immediately.
func (w *World) stepFlying(b *Ball, delta float64, hands []Hand, held map[string]bool) bool {
	b.Velocity.Y -= Gravity * GravityScale * delta
	b.Velocity = b.Velocity.Scale(Drag)
	b.Position = b.Position.Add(b.Velocity.Scale(delta))

	b.Energy -= EnergyDecay * delta
	if b.Energy <= 0 {
		b.Energy = 0
		w.fizzle(b)
		return false
	}

	for _, h := range hands {
		if b.Position.DistanceTo(h.WorldPos) >= HandHitRadius {
			continue
		}
		if h.ID == b.OwnerID && w.now-b.SpawnedAt < OwnerGrace {
			continue
		}
		if h.PalmUp && !held[h.ID] {
			w.catch(b, h, held)
			return false
		}
		if !h.PalmUp {
			w.hit(b, h)
			return false
		}
	}

	if b.Velocity.Z > 0 && b.Position.Z > ScreenZ &&
		math.Abs(b.Position.X) < ScreenWindow && math.Abs(b.Position.Y) < ScreenWindow {
		w.explode(b)
		w.score += ScreenPoints
		w.haptics.Pulse("hit")
		return false
	}

	w.bounce(b)

	return b.Position.Z > CullZ || b.Position.Y < CullY
}

func (w *World) catch(b *Ball, h Hand, held map[string]bool) {
	b.State = BallCharging
	b.HeldBy = h.ID
	b.Velocity = game.Vector3{}
	b.Energy = math.Min(1, b.Energy+CatchEnergy)
	held[h.ID] = true
	w.score += CatchPoints
	w.haptics.Pulse("catch")
}

// hit resolves a scoring collision against a closed hand. With a live
// connection the report goes to the server and the authoritative response is
// the source of truth; offline, the same formulas are applied locally.
func (w *World) hit(b *Ball, h Hand) {
	w.explode(b)
	w.haptics.Pulse("hit")

	if w.sink != nil && w.sink.Connected() && h.PlayerID != "" {
		w.sink.SendHit(b.ID, h.PlayerID, b.Energy, time.Now().UnixMilli())
		return
	}
	w.score += game.HitPoints(b.Energy)
}

func (w *World) bounce(b *Ball) {
	bounced := false
	if b.Position.Y < FloorY {
		b.Position.Y = FloorY
		if b.Velocity.Y < 0 {
			b.Velocity.Y = -b.Velocity.Y * FloorRestitution
			bounced = true
		}
	}
	if b.Position.Y > CeilingY {
		b.Position.Y = CeilingY
		if b.Velocity.Y > 0 {
			b.Velocity.Y = -b.Velocity.Y * FloorRestitution
			bounced = true
		}
	}
	if b.Position.X > WallX {
		b.Position.X = WallX
		if b.Velocity.X > 0 {
			b.Velocity.X = -b.Velocity.X * WallRestitution
			bounced = true
		}
	}
	if b.Position.X < -WallX {
		b.Position.X = -WallX
		if b.Velocity.X < 0 {
			b.Velocity.X = -b.Velocity.X * WallRestitution
			bounced = true
		}
	}
	if b.Position.Z < BackZ {
		b.Position.Z = BackZ
		if b.Velocity.Z < 0 {
			b.Velocity.Z = -b.Velocity.Z * BackRestitution
			bounced = true
		}
	}
	if bounced {
		w.haptics.Pulse("bounce")
	}
}

// collideBalls applies an elastic-style impulse along the separation normal
// for every flying pair that overlaps.
func (w *World) collideBalls() {
	flying := make([]*Ball, 0, len(w.balls))
	for _, b := range w.balls {
		if b.State == BallFlying {
			flying = append(flying, b)
		}
	}
	for i := 0; i < len(flying); i++ {
		for j := i + 1; j < len(flying); j++ {
			a, b := flying[i], flying[j]
			dist := a.Position.DistanceTo(b.Position)
			if dist >= BallRadiusFactor*(a.Scale+b.Scale) {
				continue
			}
			n := a.Position.Sub(b.Position).Normalized()
			rel := a.Velocity.Sub(b.Velocity).Length()
			impulse := n.Scale(rel * 0.5)
			a.Velocity = a.Velocity.Add(impulse)
			b.Velocity = b.Velocity.Sub(impulse)
		}
	}
}

func (w *World) fizzle(b *Ball) {
	b.State = BallFizzle
	b.terminalAt = w.now
}

func (w *World) explode(b *Ball) {
	b.State = BallExploded
	b.terminalAt = w.now
}
