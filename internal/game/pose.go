package game

type Handedness string

const (
	HandLeft  Handedness = "Left"
	HandRight Handedness = "Right"
)

// HandPose is one frame of gesture telemetry for a single tracked hand.
// It is produced by the external pose-estimation layer; only the latest
// value per hand id is ever retained.
type HandPose struct {
	ID            string     `json:"id"` // stable per hand, e.g. "Right0"
	Handedness    Handedness `json:"handedness"`
	WorldPos      Vector3    `json:"worldPos"`
	Velocity      Vector3    `json:"velocity"`
	Acceleration  Vector3    `json:"acceleration"`
	PalmUp        bool       `json:"palmUp"`
	PalmForward   bool       `json:"palmForward"`
	PinchStrength float64    `json:"pinchStrength"`
}

// Speed is the magnitude of the hand's velocity.
func (p HandPose) Speed() float64 {
	return p.Velocity.Length()
}
