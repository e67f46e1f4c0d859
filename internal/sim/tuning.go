package sim

// Gameplay tuning. All distances are world units, times are seconds, and
// velocities are units per second.
const (
	// Spawn
	SpawnCooldown = 0.5 // global, not per hand
	SpawnEnergy   = 0.1
	SpawnScale    = 0.1
	SpawnLift     = 0.15 // ball appears just above the palm

	// Charging
	ChargeRate     = 0.8 // energy per second while held
	HoldLerp       = 0.4 // position lerp factor per frame
	ScaleBase      = 0.3
	ScalePerEnergy = 0.5

	// Throw detection on the holding hand's z axis
	ThrowVelZ      = 2.5
	ThrowAccZ      = 8.0
	ThrowMinSpeed  = 0.5
	ThrowMinEnergy = 0.15
	BoostAccZ      = 5.0 // |acceleration.z| above this adds an impulse
	BoostFactor    = 0.2
	ThrowBoost     = 1.4
	ThrowMinExitZ  = 5.0 // outgoing z speed floor in the throw direction
	ThrowArcLift   = 0.5

	// Palm-down release
	ReleaseMaxSpeed = 1.0
	ReleaseDrop     = 0.5

	// Flight
	Gravity      = 9.8
	GravityScale = 0.4
	Drag         = 0.99 // per frame
	EnergyDecay  = 0.08 // per second

	// Collisions
	HandHitRadius    = 0.5
	OwnerGrace       = 0.5 // seconds after spawn the owner can't touch it
	CatchEnergy      = 0.3
	CatchPoints      = 10
	ScreenZ          = 3.0
	ScreenWindow     = 2.0
	ScreenPoints     = 100
	BallRadiusFactor = 0.4

	// Playfield bounds
	FloorY           = -2.5
	CeilingY         = 3.5
	FloorRestitution = 0.6
	WallX            = 4.0
	WallRestitution  = 0.8
	BackZ            = -10.0
	BackRestitution  = 0.8
	CullZ            = 5.0
	CullY            = -10.0

	// Terminal states linger for the burst animation before removal.
	TerminalLinger = 0.8
)
