package transfer

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

var up = mgl32.Vec3{0, 1, 0}

func TestIsVertical(t *testing.T) {
	assert.True(t, IsVertical(mgl32.Vec3{0, 1, 0}, up, DefaultVerticalThreshold))
	assert.True(t, IsVertical(mgl32.Vec3{0, -1, 0.05}, up, DefaultVerticalThreshold))
	assert.False(t, IsVertical(mgl32.Vec3{0, 0, 1}, up, DefaultVerticalThreshold))
	assert.True(t, NeedsPopUp(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, up, DefaultVerticalThreshold))
	assert.False(t, NeedsPopUp(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, up, DefaultVerticalThreshold))
}

func TestPopUpSpeed(t *testing.T) {
	want := float32(gomath.Sqrt(2 * 9.81 * 2))
	assert.InDelta(t, want, PopUpSpeed(-9.81, 2, 1), 1e-4)
	assert.InDelta(t, float32(gomath.Sqrt(2*9.81*0.5*2)), PopUpSpeed(-9.81, 2, 0.5), 1e-4)
	assert.Zero(t, PopUpSpeed(0, 2, 1))
	assert.Zero(t, PopUpSpeed(9.81, 2, 1))
	assert.Zero(t, PopUpSpeed(-9.81, 0, 1))
}

func TestVerticalPortalPopUp(t *testing.T) {
	// floor portal whose exit face points up, linked to a wall portal
	floor := Frame{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatRotate(gomath.Pi/2, mgl32.Vec3{1, 0, 0}),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
	wall := frame(10, 1, 0, 0, 1)
	tr := Between(wall, floor)

	outward := floor.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
	assert.True(t, IsVertical(outward, up, DefaultVerticalThreshold))

	const gravity, height = float32(-9.81), float32(1.8)
	need := PopUpSpeed(gravity, height, 1)

	// horizontal entry velocity into the wall portal
	entry := mgl32.Vec3{0, 0, 0.5}
	v := ApplyPopUp(tr.Velocity(entry), outward, gravity, height, 1)
	assert.GreaterOrEqual(t, v.Dot(outward), need-1e-4)

	// an already faster exit is left untouched
	fast := outward.Mul(need * 3)
	assert.Equal(t, fast, ApplyPopUp(fast, outward, gravity, height, 1))
}
