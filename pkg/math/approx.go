package math

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the default tolerance for the approximate comparisons below.
const Epsilon = 1e-4

// ApproxEqual reports whether a and b differ by at most eps.
func ApproxEqual(a, b, eps float32) bool {
	return float32(gomath.Abs(float64(a-b))) <= eps
}

// ApproxEqualVec3 compares two vectors component-wise.
func ApproxEqualVec3(a, b mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if !ApproxEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// ApproxEqualMat4 compares two matrices element-wise.
func ApproxEqualMat4(a, b mgl32.Mat4, eps float32) bool {
	for i := range a {
		if !ApproxEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// ApproxEqualQuat compares two rotations, treating q and -q as equal.
func ApproxEqualQuat(a, b mgl32.Quat, eps float32) bool {
	d := a.Dot(b)
	return ApproxEqual(float32(gomath.Abs(float64(d))), 1, eps)
}

// IsUniformScale reports whether all three scale components agree within eps.
func IsUniformScale(s mgl32.Vec3, eps float32) bool {
	return ApproxEqual(s[0], s[1], eps) && ApproxEqual(s[1], s[2], eps)
}

// MatrixScale returns the length of each basis column of m.
func MatrixScale(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}

// DecomposeTRS splits an affine matrix into translation, rotation and scale.
func DecomposeTRS(m mgl32.Mat4) (pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) {
	pos = m.Col(3).Vec3()
	scale = MatrixScale(m)
	r := mgl32.Ident4()
	for c := 0; c < 3; c++ {
		if scale[c] == 0 {
			continue
		}
		col := m.Col(c).Vec3().Mul(1 / scale[c])
		r.SetCol(c, col.Vec4(0))
	}
	rot = mgl32.Mat4ToQuat(r).Normalize()
	return pos, rot, scale
}

// Rigid strips scale from m, keeping its rotation and translation.
func Rigid(m mgl32.Mat4) mgl32.Mat4 {
	pos, rot, _ := DecomposeTRS(m)
	return TRS(pos, rot, 1)
}

// TRS composes translation, rotation and uniform scale.
func TRS(pos mgl32.Vec3, rot mgl32.Quat, scale float32) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale, scale, scale))
}

// IsFinite reports whether every component of v is a real number.
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
			return false
		}
	}
	return true
}
