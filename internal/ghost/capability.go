package ghost

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// capability is the per-kind behaviour of a ghost.
type capability struct {
	// reset puts the mirrored state back to neutral defaults.
	reset func(g *Ghost)
	// setup copies the physically relevant state of src onto g.
	setup func(g *Ghost, src Source) error
}

var capabilities = [kindCount]capability{
	KindRigidBody: {reset: resetBody, setup: setupBody},
	KindBox:       {reset: resetCollider(ShapeBox), setup: setupCollider(copyBox)},
	KindCapsule:   {reset: resetCollider(ShapeCapsule), setup: setupCollider(copyCapsule)},
	KindMesh:      {reset: resetCollider(ShapeMesh), setup: setupCollider(copyMesh)},
	KindSphere:    {reset: resetCollider(ShapeSphere), setup: setupCollider(copySphere)},
}

func neutralBody() RigidBody {
	return RigidBody{
		Mass:               1,
		AngularDrag:        0.05,
		MaxAngularVelocity: 7,
		InertiaTensor:      mgl32.Vec3{1, 1, 1},
		UseGravity:         true,
	}
}

func neutralCollider(s Shape) Collider {
	c := Collider{Shape: s, ContactOffset: 0.01}
	switch s {
	case ShapeBox:
		c.Size = mgl32.Vec3{1, 1, 1}
	case ShapeCapsule:
		c.Radius, c.Height, c.Direction = 0.5, 2, 1
	case ShapeSphere:
		c.Radius = 0.5
	}
	return c
}

func resetBody(g *Ghost) {
	g.Body = neutralBody()
	g.Collider = Collider{}
}

func setupBody(g *Ghost, src Source) error {
	rb, ok := src.(*RigidBody)
	if !ok || rb == nil {
		return fmt.Errorf("%w: %T for %s", ErrKindMismatch, src, KindRigidBody)
	}
	g.Body = *rb
	return nil
}

func resetCollider(s Shape) func(g *Ghost) {
	return func(g *Ghost) {
		g.Body = RigidBody{}
		g.Collider = neutralCollider(s)
	}
}

func setupCollider(copyShape func(dst, src *Collider)) func(g *Ghost, src Source) error {
	return func(g *Ghost, src Source) error {
		c, ok := src.(*Collider)
		if !ok || c == nil || c.Kind() != g.Kind {
			return fmt.Errorf("%w: %T for %s", ErrKindMismatch, src, g.Kind)
		}
		dst := &g.Collider
		dst.Center = c.Center
		dst.IsTrigger = c.IsTrigger
		dst.Material = c.Material
		dst.ContactOffset = c.ContactOffset
		copyShape(dst, c)
		return nil
	}
}

func copyBox(dst, src *Collider) {
	dst.Size = src.Size
}

func copyCapsule(dst, src *Collider) {
	dst.Radius = src.Radius
	dst.Height = src.Height
	dst.Direction = src.Direction
}

func copyMesh(dst, src *Collider) {
	dst.Mesh = src.Mesh
	dst.Convex = src.Convex
}

func copySphere(dst, src *Collider) {
	dst.Radius = src.Radius
}
