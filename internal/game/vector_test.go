package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorBasics(t *testing.T) {
	v := Vector3{3, 0, 4}
	assert.InDelta(t, 5, v.Length(), 1e-9)
	assert.InDelta(t, 5, Vector3{}.DistanceTo(v), 1e-9)

	n := v.Normalized()
	assert.InDelta(t, 1, n.Length(), 1e-9)
	assert.Equal(t, Vector3{}, Vector3{}.Normalized())
}

func TestVectorLerp(t *testing.T) {
	from := Vector3{0, 0, 0}
	to := Vector3{10, -10, 2}

	mid := from.Lerp(to, 0.5)
	assert.Equal(t, Vector3{5, -5, 1}, mid)

	assert.Equal(t, from, from.Lerp(to, 0))
	assert.Equal(t, to, from.Lerp(to, 1))
}
