package game

import "math"

// Hit scoring formulas, shared by the server's authoritative path and the
// client's offline fallback so single-player and networked scores agree.

// ClampEnergy bounds a reported ball energy to [0,1].
func ClampEnergy(e float64) float64 {
	return math.Max(0, math.Min(1, e))
}

// HitPoints converts a ball's energy into points credited to the shooter.
func HitPoints(energy float64) int {
	return int(math.Round(10 + ClampEnergy(energy)*20))
}

// HitDamage converts a ball's energy into damage dealt to the target.
func HitDamage(energy float64) int {
	return int(math.Round(8 + ClampEnergy(energy)*12))
}
