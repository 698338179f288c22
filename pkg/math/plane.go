package math

import "github.com/go-gl/mathgl/mgl32"

// Plane is the set of points p with Normal·p + D = 0. Normal is unit length.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// PlaneFromPointNormal builds a plane through point facing normal.
func PlaneFromPointNormal(point, normal mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point)}
}

// PlaneFromVec4 builds a normalized plane from (a, b, c, d) coefficients.
func PlaneFromVec4(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{Normal: n, D: v.W()}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// Distance returns the signed distance from pt to the plane.
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Flip returns the same plane facing the other way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), D: -p.D}
}

// Vec4 returns the plane coefficients.
func (p Plane) Vec4() mgl32.Vec4 {
	return p.Normal.Vec4(p.D)
}

// Transform re-expresses the plane in the space that m maps points into.
func (p Plane) Transform(m mgl32.Mat4) Plane {
	return PlaneFromVec4(m.Inv().Transpose().Mul4x1(p.Vec4()))
}
