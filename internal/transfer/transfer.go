// Package transfer maps positions, rotations and velocities from the space in
// front of one portal to the equivalent space behind its linked partner.
package transfer

import (
	"github.com/go-gl/mathgl/mgl32"

	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// halfTurn rotates half a turn about local up. It negates local Z, mirroring
// the entry face onto the exit face, and negates X so the result stays a
// proper rotation.
var halfTurn = mgl32.Mat4{
	-1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, -1, 0,
	0, 0, 0, 1,
}

var halfTurnQuat = mgl32.Quat{W: 0, V: mgl32.Vec3{0, 1, 0}}

// Frame is the placement of a portal in world space. Portals are expected to
// carry a uniform scale; other scales are transformed on a best-effort basis.
type Frame struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalToWorld returns the frame's model matrix.
func (f Frame) LocalToWorld() mgl32.Mat4 {
	s := f.safeScale()
	return mgl32.Translate3D(f.Position[0], f.Position[1], f.Position[2]).
		Mul4(f.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// WorldToLocal returns the inverse of LocalToWorld.
func (f Frame) WorldToLocal() mgl32.Mat4 {
	s := f.safeScale()
	return mgl32.Scale3D(1/s[0], 1/s[1], 1/s[2]).
		Mul4(f.Rotation.Normalize().Inverse().Mat4()).
		Mul4(mgl32.Translate3D(-f.Position[0], -f.Position[1], -f.Position[2]))
}

// UniformScale returns the mean scale component.
func (f Frame) UniformScale() float32 {
	s := f.safeScale()
	return (s[0] + s[1] + s[2]) / 3
}

func (f Frame) safeScale() mgl32.Vec3 {
	s := f.Scale
	for i := range s {
		if s[i] == 0 {
			s[i] = 1
		}
	}
	return s
}

// Matrix composes exit.localToWorld ∘ halfTurn ∘ entry.worldToLocal.
func Matrix(entryWorldToLocal, exitLocalToWorld mgl32.Mat4) mgl32.Mat4 {
	return exitLocalToWorld.Mul4(halfTurn).Mul4(entryWorldToLocal)
}

// Transfer is the mapping through one portal into its partner.
type Transfer struct {
	Matrix mgl32.Mat4
	Turn   mgl32.Quat
	// Scale is the exit to entry size ratio.
	Scale float32
}

// Between builds the transfer from the entry frame to the exit frame.
func Between(entry, exit Frame) Transfer {
	turn := exit.Rotation.Normalize().
		Mul(halfTurnQuat).
		Mul(entry.Rotation.Normalize().Inverse()).
		Normalize()
	return Transfer{
		Matrix: Matrix(entry.WorldToLocal(), exit.LocalToWorld()),
		Turn:   turn,
		Scale:  exit.UniformScale() / entry.UniformScale(),
	}
}

// Identity returns a transfer that changes nothing.
func Identity() Transfer {
	return Transfer{Matrix: mgl32.Ident4(), Turn: mgl32.QuatIdent(), Scale: 1}
}

// Point maps a world-space position.
func (t Transfer) Point(p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, t.Matrix)
}

// Direction maps a unit direction, ignoring translation and scale.
func (t Transfer) Direction(d mgl32.Vec3) mgl32.Vec3 {
	return t.Turn.Rotate(d)
}

// Rotate maps a world-space orientation.
func (t Transfer) Rotate(q mgl32.Quat) mgl32.Quat {
	return t.Turn.Mul(q).Normalize()
}

// Velocity maps a linear velocity through the rotation and scale parts only.
func (t Transfer) Velocity(v mgl32.Vec3) mgl32.Vec3 {
	return t.Turn.Rotate(v).Mul(t.Scale)
}

// AngularVelocity maps an angular velocity. Angular speed does not change
// with uniform scale.
func (t Transfer) AngularVelocity(w mgl32.Vec3) mgl32.Vec3 {
	return t.Turn.Rotate(w)
}

// Pose maps a full model matrix, keeping whatever scale it carries.
func (t Transfer) Pose(localToWorld mgl32.Mat4) mgl32.Mat4 {
	return t.Matrix.Mul4(localToWorld)
}

// Inverse returns the transfer that undoes t.
func (t Transfer) Inverse() Transfer {
	scale := float32(1)
	if t.Scale != 0 {
		scale = 1 / t.Scale
	}
	return Transfer{
		Matrix: t.Matrix.Inv(),
		Turn:   t.Turn.Inverse(),
		Scale:  scale,
	}
}

// IsUniform reports whether both frames carry a uniform scale.
func IsUniform(entry, exit Frame) bool {
	return pmath.IsUniformScale(entry.Scale, pmath.Epsilon) &&
		pmath.IsUniformScale(exit.Scale, pmath.Epsilon)
}
