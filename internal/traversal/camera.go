package traversal

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// ProjectionMode selects how a camera lens is modelled.
type ProjectionMode int

const (
	Perspective ProjectionMode = iota
	Orthographic
	Physical
)

// String returns the lower-case mode name.
func (m ProjectionMode) String() string {
	switch m {
	case Orthographic:
		return "orthographic"
	case Physical:
		return "physical"
	default:
		return "perspective"
	}
}

// ParseProjectionMode maps a mode name back to its value. Unknown names are
// treated as perspective.
func ParseProjectionMode(s string) ProjectionMode {
	switch s {
	case "orthographic", "ortho":
		return Orthographic
	case "physical":
		return Physical
	default:
		return Perspective
	}
}

// Camera describes the real camera a portal tree is built for. It looks down
// its local -Z axis.
type Camera struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat

	Mode ProjectionMode
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	// Aspect is width over height. Zero derives it from the pixel size.
	Aspect float32
	// OrthographicSize is half the vertical view height.
	OrthographicSize float32
	// FocalLength and SensorSize are in millimetres.
	FocalLength float32
	SensorSize  mgl32.Vec2
	// LensShift offsets the frustum in units of the sensor size.
	LensShift mgl32.Vec2

	Near, Far   float32
	CullingMask uint32

	PixelWidth, PixelHeight int
}

// NewCamera returns a 60 degree perspective camera that sees every layer.
func NewCamera() *Camera {
	return &Camera{
		Rotation:         mgl32.QuatIdent(),
		Mode:             Perspective,
		FieldOfView:      60,
		OrthographicSize: 5,
		FocalLength:      50,
		SensorSize:       mgl32.Vec2{36, 24},
		Near:             0.1,
		Far:              1000,
		CullingMask:      ^uint32(0),
		PixelWidth:       1280,
		PixelHeight:      720,
	}
}

// LocalToWorld returns the rigid camera-to-world matrix.
func (c *Camera) LocalToWorld() mgl32.Mat4 {
	return pmath.TRS(c.Position, c.Rotation.Normalize(), 1)
}

// AspectRatio returns the configured or pixel-derived aspect ratio.
func (c *Camera) AspectRatio() float32 {
	if c.Aspect > 0 {
		return c.Aspect
	}
	if c.PixelWidth > 0 && c.PixelHeight > 0 {
		return float32(c.PixelWidth) / float32(c.PixelHeight)
	}
	return 1
}

// Projection builds the lens projection for the given clip distances.
// scale enlarges orthographic views seen through scaled portals.
func (c *Camera) Projection(near, far, scale float32) mgl32.Mat4 {
	aspect := c.AspectRatio()
	switch c.Mode {
	case Orthographic:
		h := c.OrthographicSize * scale
		w := h * aspect
		return mgl32.Ortho(-w, w, -h, h, near, far)
	case Physical:
		f := c.FocalLength
		if f <= 0 {
			f = 50
		}
		sensorH := c.SensorSize[1]
		if sensorH <= 0 {
			sensorH = 24
		}
		top := near * sensorH / (2 * f)
		height := 2 * top
		width := height * aspect
		left := (-0.5 + c.LensShift[0]) * width
		bottom := (-0.5 + c.LensShift[1]) * height
		return mgl32.Frustum(left, left+width, bottom, bottom+height, near, far)
	default:
		fov := c.FieldOfView
		if fov <= 0 || fov >= 180 {
			fov = 60
		}
		return mgl32.Perspective(mgl32.DegToRad(fov), aspect, near, far)
	}
}

// PhysicalFieldOfView returns the vertical field of view in degrees implied by
// the focal length and sensor height.
func (c *Camera) PhysicalFieldOfView() float32 {
	if c.FocalLength <= 0 {
		return c.FieldOfView
	}
	return mgl32.RadToDeg(float32(2 * gomath.Atan(float64(c.SensorSize[1]/(2*c.FocalLength)))))
}

// targetSize returns the pixel size of render targets for portal views.
func (c *Camera) targetSize() (int, int) {
	return max(c.PixelWidth, 1), max(c.PixelHeight, 1)
}

// Forward returns the world direction the camera looks in.
func (c *Camera) Forward() mgl32.Vec3 {
	return c.Rotation.Normalize().Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the world direction of the camera's local +X axis.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Rotation.Normalize().Rotate(mgl32.Vec3{1, 0, 0})
}

// Displacement converts a move in camera-local axes (x right, y up, z back)
// to world space.
func (c *Camera) Displacement(local mgl32.Vec3) mgl32.Vec3 {
	return c.Rotation.Normalize().Rotate(local)
}

// Turn yaws the camera about world up and pitches it about its own right
// axis, both in degrees.
func (c *Camera) Turn(yaw, pitch float32) {
	q := mgl32.QuatRotate(mgl32.DegToRad(yaw), mgl32.Vec3{0, 1, 0})
	q = q.Mul(c.Rotation.Normalize())
	q = q.Mul(mgl32.QuatRotate(mgl32.DegToRad(pitch), mgl32.Vec3{1, 0, 0}))
	c.Rotation = q.Normalize()
}
