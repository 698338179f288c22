package math

import "github.com/go-gl/mathgl/mgl32"

// minClipW guards the perspective divide for points on or behind the eye plane.
const minClipW = 1e-5

// ProjectBounds projects b with the clip matrix and returns the normalized
// screen rectangle it covers. A box that straddles the eye plane cannot be
// bounded by its projected corners, so the full rectangle is returned for it.
// ok is false when the whole box is behind the eye or off screen.
func ProjectBounds(clip mgl32.Mat4, b AABB) (r Rect, ok bool) {
	minX, minY := float32(1), float32(1)
	maxX, maxY := float32(-1), float32(-1)
	behind := 0
	corners := b.Corners()
	for _, c := range corners {
		h := clip.Mul4x1(c.Vec4(1))
		if h.W() <= minClipW {
			behind++
			continue
		}
		x, y := h.X()/h.W(), h.Y()/h.W()
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	switch {
	case behind == len(corners):
		return Rect{}, false
	case behind > 0:
		return FullRect(), true
	}
	r = RectFromMinMax((minX+1)/2, (minY+1)/2, (maxX+1)/2, (maxY+1)/2).Clamp01()
	return r, !r.Empty()
}

// ViewportRemap returns the clip-space matrix that stretches r to the full
// [-1,1] range, so frustum planes extracted after it bound only what is seen
// through r.
func ViewportRemap(r Rect) mgl32.Mat4 {
	if r.Empty() {
		return mgl32.Ident4()
	}
	m := mgl32.Ident4()
	m[0] = 1 / r.W
	m[5] = 1 / r.H
	m[12] = (1-2*r.X)/r.W - 1
	m[13] = (1-2*r.Y)/r.H - 1
	return m
}

// ObliqueProjection replaces the near plane of proj with clipPlane, given in
// view space with its normal facing away from the eye (clipPlane.W() < 0).
// Depth precision is traded for an exact near clip on an arbitrary plane.
func ObliqueProjection(proj mgl32.Mat4, clipPlane mgl32.Vec4) mgl32.Mat4 {
	corner := mgl32.Vec4{sgn(clipPlane.X()), sgn(clipPlane.Y()), 1, 1}
	q := proj.Inv().Mul4x1(corner)
	dot := clipPlane.Dot(q)
	if dot == 0 {
		return proj
	}
	c := clipPlane.Mul(2 / dot)
	proj[2] = c[0] - proj[3]
	proj[6] = c[1] - proj[7]
	proj[10] = c[2] - proj[11]
	proj[14] = c[3] - proj[15]
	return proj
}

func sgn(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
