package ghost

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/Faultbox/portalcam/internal/portal"
)

// InUse is the LastUsed stamp of an active ghost.
const InUse = time.Duration(math.MaxInt64)

// Transform places a ghost relative to its parent.
type Transform struct {
	Parent   *Transform
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func identityTransform(parent *Transform) Transform {
	return Transform{
		Parent:   parent,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Ghost is a pooled physics double.
type Ghost struct {
	ID   uuid.UUID
	Kind Kind
	// Source is the mirrored object; nil while pooled.
	Source Source
	// LastUsed is InUse while active and the release time while pooled.
	LastUsed       time.Duration
	AttachedPortal *portal.Portal
	Active         bool
	Transform      Transform

	// Body is the mirrored state of a rigid-body ghost.
	Body RigidBody
	// Collider is the mirrored state of a collider ghost.
	Collider Collider

	pool *Pool
}

// Attach places the ghost under parent at the given local pose and records
// the portal it is simulating through.
func (g *Ghost) Attach(p *portal.Portal, parent *Transform, pos mgl32.Vec3, rot mgl32.Quat) {
	g.AttachedPortal = p
	g.Transform.Parent = parent
	g.Transform.Position = pos
	g.Transform.Rotation = rot
}

// IdleFor returns how long the ghost has been pooled at time now. Active
// ghosts report zero.
func (g *Ghost) IdleFor(now time.Duration) time.Duration {
	if g.Active || g.LastUsed == InUse {
		return 0
	}
	return now - g.LastUsed
}

// Owned reports whether the ghost still belongs to a pool.
func (g *Ghost) Owned() bool {
	return g.pool != nil
}
