// Package portal describes portal entities: a placed opening with exactly one
// linked partner, and the registry of portals present in a scene.
package portal

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/portalcam/internal/transfer"
	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// Texture is whatever a render back end hands out as a render target.
type Texture interface {
	Size() (width, height int)
}

// Collider is the physics shape of the portal surface. Closest-point queries
// only work on convex shapes.
type Collider struct {
	Convex bool
}

// Portal is a rectangular opening facing local +Z. A viewer looks through it
// from the -Z side; travelers cross it moving along +Z.
type Portal struct {
	ID       uuid.UUID
	Name     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	// Size holds the local half extents of the opening along X and Y.
	Size mgl32.Vec2
	// Depth is the local half thickness of the collider along Z.
	Depth    float32
	Layer    uint
	Active   bool
	Collider Collider

	linked *Portal
	view   Texture
}

// New creates an active portal at the origin with a 1x2 opening.
func New(name string) *Portal {
	return &Portal{
		ID:       uuid.New(),
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Size:     mgl32.Vec2{0.5, 1},
		Depth:    0.05,
		Active:   true,
	}
}

// Link pairs a and b, dropping any previous partners of either.
func Link(a, b *Portal) {
	if a == nil || b == nil || a == b {
		return
	}
	Unlink(a)
	Unlink(b)
	a.linked = b
	b.linked = a
}

// Unlink breaks the pairing of p in both directions.
func Unlink(p *Portal) {
	if p == nil || p.linked == nil {
		return
	}
	if p.linked.linked == p {
		p.linked.linked = nil
	}
	p.linked = nil
}

// Linked returns the partner portal, or nil.
func (p *Portal) Linked() *Portal {
	return p.linked
}

// IsWorkable reports whether the portal can be looked or walked through.
func (p *Portal) IsWorkable() bool {
	if p == nil || !p.Active || p.linked == nil || !p.linked.Active || p.linked.linked != p {
		return false
	}
	if p.Size[0] <= 0 || p.Size[1] <= 0 {
		return false
	}
	return pmath.IsFinite(p.Position) && pmath.IsFinite(p.Scale) && p.Scale.Len() > 0
}

// InMask reports whether the portal layer is part of a culling mask.
func (p *Portal) InMask(mask uint32) bool {
	if p.Layer >= 32 {
		return false
	}
	return mask&(1<<p.Layer) != 0
}

// Frame returns the placement used by transfer math.
func (p *Portal) Frame() transfer.Frame {
	return transfer.Frame{Position: p.Position, Rotation: p.Rotation, Scale: p.Scale}
}

// LocalToWorld returns the portal model matrix.
func (p *Portal) LocalToWorld() mgl32.Mat4 {
	return p.Frame().LocalToWorld()
}

// WorldToLocal returns the inverse model matrix.
func (p *Portal) WorldToLocal() mgl32.Mat4 {
	return p.Frame().WorldToLocal()
}

// Forward returns the world direction travelers cross the portal in.
func (p *Portal) Forward() mgl32.Vec3 {
	return p.Rotation.Normalize().Rotate(mgl32.Vec3{0, 0, 1})
}

// Outward returns the world direction travelers leave the portal in when it is
// the exit of a crossing.
func (p *Portal) Outward() mgl32.Vec3 {
	return p.Forward().Mul(-1)
}

// Plane returns the portal plane, facing Forward.
func (p *Portal) Plane() pmath.Plane {
	return pmath.PlaneFromPointNormal(p.Position, p.Forward())
}

// Transfer returns the mapping from the space in front of p to the space
// behind its partner. An unlinked portal maps everything onto itself.
func (p *Portal) Transfer() transfer.Transfer {
	if p.linked == nil {
		return transfer.Identity()
	}
	return transfer.Between(p.Frame(), p.linked.Frame())
}

// TransferMatrix returns Transfer().Matrix.
func (p *Portal) TransferMatrix() mgl32.Mat4 {
	return p.Transfer().Matrix
}

// Corners returns the four corners of the opening in world space.
func (p *Portal) Corners() [4]mgl32.Vec3 {
	m := p.LocalToWorld()
	sx, sy := p.Size[0], p.Size[1]
	return [4]mgl32.Vec3{
		mgl32.TransformCoordinate(mgl32.Vec3{-sx, -sy, 0}, m),
		mgl32.TransformCoordinate(mgl32.Vec3{sx, -sy, 0}, m),
		mgl32.TransformCoordinate(mgl32.Vec3{sx, sy, 0}, m),
		mgl32.TransformCoordinate(mgl32.Vec3{-sx, sy, 0}, m),
	}
}

// Bounds returns the world-space box around the portal collider.
func (p *Portal) Bounds() pmath.AABB {
	local := pmath.AABB{
		Min: mgl32.Vec3{-p.Size[0], -p.Size[1], -p.Depth},
		Max: mgl32.Vec3{p.Size[0], p.Size[1], p.Depth},
	}
	return local.Transform(p.LocalToWorld())
}

// ClosestPoint returns the point of the collider nearest to pt. Non-convex
// colliders cannot answer the query and report the portal center instead.
func (p *Portal) ClosestPoint(pt mgl32.Vec3) mgl32.Vec3 {
	if !p.Collider.Convex {
		return p.Position
	}
	return p.Bounds().ClosestPoint(pt)
}

// SetViewTexture attaches the render target shown on the portal surface.
// Pass nil to detach it.
func (p *Portal) SetViewTexture(t Texture) {
	p.view = t
}

// ViewTexture returns the attached render target, or nil.
func (p *Portal) ViewTexture() Texture {
	return p.view
}
