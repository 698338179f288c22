package transfer

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultVerticalThreshold is the |cos| above which a portal counts as vertical.
const DefaultVerticalThreshold = 0.99

// IsVertical reports whether forward is nearly parallel to up, in either
// direction.
func IsVertical(forward, up mgl32.Vec3, threshold float32) bool {
	f, u := forward.Normalize(), up.Normalize()
	return float32(gomath.Abs(float64(f.Dot(u)))) >= threshold
}

// NeedsPopUp reports whether a crossing between the two forwards involves a
// vertical portal on either end.
func NeedsPopUp(entryForward, exitForward, up mgl32.Vec3, threshold float32) bool {
	return IsVertical(entryForward, up, threshold) || IsVertical(exitForward, up, threshold)
}

// PopUpSpeed is the launch speed that lifts a traveler of the given vertical
// extent clear of the portal: sqrt(-2·g·h) with g scaled by the traveler scale.
// It is zero when gravity does not pull down.
func PopUpSpeed(gravity, height, scale float32) float32 {
	g := gravity * scale
	if g >= 0 || height <= 0 {
		return 0
	}
	return float32(gomath.Sqrt(float64(-2 * g * height)))
}

// ApplyPopUp raises the component of v along outward to at least PopUpSpeed.
// A larger existing outward velocity is kept as is.
func ApplyPopUp(v, outward mgl32.Vec3, gravity, height, scale float32) mgl32.Vec3 {
	n := outward.Normalize()
	need := PopUpSpeed(gravity, height, scale)
	cur := v.Dot(n)
	if cur >= need {
		return v
	}
	return v.Add(n.Mul(need - cur))
}
