package math

import "github.com/go-gl/mathgl/mgl32"

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the planes of a clip matrix (projection * view, or
// any further remap on top of it) using the Gribb/Hartmann method.
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	return Frustum{
		PlaneFromVec4(r3.Add(r0)),
		PlaneFromVec4(r3.Sub(r0)),
		PlaneFromVec4(r3.Add(r1)),
		PlaneFromVec4(r3.Sub(r1)),
		PlaneFromVec4(r3.Add(r2)),
		PlaneFromVec4(r3.Sub(r2)),
	}
}

// IntersectsAABB reports whether any part of b is inside the frustum.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, p := range f {
		// positive vertex along the plane normal
		v := b.Max
		if p.Normal[0] < 0 {
			v[0] = b.Min[0]
		}
		if p.Normal[1] < 0 {
			v[1] = b.Min[1]
		}
		if p.Normal[2] < 0 {
			v[2] = b.Min[2]
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt is inside every plane.
func (f Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for _, p := range f {
		if p.Distance(pt) < 0 {
			return false
		}
	}
	return true
}
