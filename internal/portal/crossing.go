package portal

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Crossed reports whether the segment from a to b passes through the opening
// from its viewing side (local -Z) to its far side.
func (p *Portal) Crossed(a, b mgl32.Vec3) bool {
	m := p.WorldToLocal()
	la := mgl32.TransformCoordinate(a, m)
	lb := mgl32.TransformCoordinate(b, m)
	if la.Z() >= 0 || lb.Z() < 0 {
		return false
	}
	t := -la.Z() / (lb.Z() - la.Z())
	x := la.X() + t*(lb.X()-la.X())
	y := la.Y() + t*(lb.Y()-la.Y())
	return abs(x) <= p.Size[0] && abs(y) <= p.Size[1]
}

// Straddles reports whether pt lies within dist of the portal plane and over
// the opening. A camera whose near plane straddles a portal sees only the
// portal's view.
func (p *Portal) Straddles(pt mgl32.Vec3, dist float32) bool {
	if abs(p.Plane().Distance(pt)) > dist {
		return false
	}
	l := mgl32.TransformCoordinate(pt, p.WorldToLocal())
	return abs(l.X()) <= p.Size[0] && abs(l.Y()) <= p.Size[1]
}

func abs(v float32) float32 {
	return float32(gomath.Abs(float64(v)))
}
