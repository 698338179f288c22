package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// AABBFromPoints returns the smallest box containing every point.
func AABBFromPoints(points ...mgl32.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	inf := float32(gomath.Inf(1))
	b := AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
	for _, p := range points {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], p[i])
			b.Max[i] = max(b.Max[i], p[i])
		}
	}
	return b
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half size of the box.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Corners returns the eight box corners.
func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// ClosestPoint returns the point of the box nearest to p.
func (b AABB) ClosestPoint(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		clamp(p[0], b.Min[0], b.Max[0]),
		clamp(p[1], b.Min[1], b.Max[1]),
		clamp(p[2], b.Min[2], b.Max[2]),
	}
}

// Transform returns the box enclosing b after applying m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	corners := b.Corners()
	pts := make([]mgl32.Vec3, 0, len(corners))
	for _, c := range corners {
		pts = append(pts, mgl32.TransformCoordinate(c, m))
	}
	return AABBFromPoints(pts...)
}
