package ghost

import "github.com/go-gl/mathgl/mgl32"

// Source is a physics object a ghost can mirror: *RigidBody or *Collider.
type Source interface {
	ghostKind() Kind
}

// Constraints freeze individual degrees of freedom of a body.
type Constraints uint8

const (
	FreezePositionX Constraints = 1 << iota
	FreezePositionY
	FreezePositionZ
	FreezeRotationX
	FreezeRotationY
	FreezeRotationZ

	FreezePosition = FreezePositionX | FreezePositionY | FreezePositionZ
	FreezeRotation = FreezeRotationX | FreezeRotationY | FreezeRotationZ
	FreezeAll      = FreezePosition | FreezeRotation
)

// CollisionDetection selects how a body is swept between steps.
type CollisionDetection int

const (
	Discrete CollisionDetection = iota
	Continuous
	ContinuousDynamic
	ContinuousSpeculative
)

// RigidBody holds the simulation parameters of a dynamic body.
type RigidBody struct {
	Mass               float32
	Drag               float32
	AngularDrag        float32
	Velocity           mgl32.Vec3
	AngularVelocity    mgl32.Vec3
	CenterOfMass       mgl32.Vec3
	InertiaTensor      mgl32.Vec3
	MaxAngularVelocity float32
	UseGravity         bool
	IsKinematic        bool
	Constraints        Constraints
	Detection          CollisionDetection
}

func (*RigidBody) ghostKind() Kind { return KindRigidBody }

// Material is the surface response of a collider.
type Material struct {
	Name            string
	StaticFriction  float32
	DynamicFriction float32
	Bounciness      float32
}

// Collider is a shape-tagged collision volume. Only the fields of its Shape
// are meaningful.
type Collider struct {
	Shape         Shape
	Center        mgl32.Vec3
	IsTrigger     bool
	Material      *Material
	ContactOffset float32

	// box
	Size mgl32.Vec3
	// capsule and sphere
	Radius float32
	// capsule
	Height float32
	// Direction is the capsule axis: 0 = X, 1 = Y, 2 = Z.
	Direction int
	// mesh
	Mesh   string
	Convex bool
}

func (c *Collider) ghostKind() Kind {
	if c == nil {
		return kindCount
	}
	return c.Shape.Kind()
}

// Kind returns the ghost kind matching the collider shape.
func (c *Collider) Kind() Kind { return c.ghostKind() }
