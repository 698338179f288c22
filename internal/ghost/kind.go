// Package ghost pools transient physics doubles used while an object
// straddles a portal. A ghost mirrors exactly one source body or collider
// while active and mirrors nothing while pooled.
package ghost

// Kind is the closed set of ghost variants.
type Kind int

const (
	KindRigidBody Kind = iota
	KindBox
	KindCapsule
	KindMesh
	KindSphere

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindRigidBody:
		return "rigidbody"
	case KindBox:
		return "box"
	case KindCapsule:
		return "capsule"
	case KindMesh:
		return "mesh"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Shape is the geometry of a collider.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeCapsule
	ShapeMesh
	ShapeSphere
)

// Kind maps a collider shape to its ghost kind.
func (s Shape) Kind() Kind {
	switch s {
	case ShapeBox:
		return KindBox
	case ShapeCapsule:
		return KindCapsule
	case ShapeMesh:
		return KindMesh
	case ShapeSphere:
		return KindSphere
	default:
		return kindCount
	}
}

func (s Shape) String() string {
	return s.Kind().String()
}
