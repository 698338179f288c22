package traversal

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/portalcam/internal/portal"
	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// Handle addresses a node in the engine's arena. Handles are only valid until
// the next Release.
type Handle int32

const (
	// Root is the node of the real camera.
	Root Handle = 0
	// NoHandle marks the absence of a node.
	NoHandle Handle = -1
)

// node is one virtual camera. Children of a node are always stored next to
// each other, starting at firstChild.
type node struct {
	portal *portal.Portal
	parent Handle
	depth  int

	firstChild Handle
	childCount int32

	localToWorld  mgl32.Mat4
	worldToCamera mgl32.Mat4
	viewport      pmath.Rect
	near, far     float32
	scale         float32

	// standard is the lens projection before any oblique adjustment; culling
	// and screen-space bounds use it.
	standard   mgl32.Mat4
	projection mgl32.Mat4
	culling    mgl32.Mat4

	// clipPlane keeps the far side of the exit portal, in world space.
	clipPlane pmath.Plane
	hasClip   bool

	target portal.Texture
}

func (n *node) reset() {
	*n = node{parent: NoHandle, firstChild: NoHandle}
}

func (n *node) position() mgl32.Vec3 {
	return n.localToWorld.Col(3).Vec3()
}

// View is a read-only snapshot of one node, handed to render back ends.
type View struct {
	Handle Handle
	Parent Handle
	// Portal is the portal this view is seen through; nil for the root.
	Portal *portal.Portal
	Depth  int

	LocalToWorld  mgl32.Mat4
	WorldToCamera mgl32.Mat4
	Projection    mgl32.Mat4
	Culling       mgl32.Mat4
	Viewport      pmath.Rect
	Near, Far     float32
	Oblique       bool

	// Target is the render target this view draws into; nil for the root,
	// which draws to the screen.
	Target portal.Texture
}

// Position returns the virtual camera position.
func (v View) Position() mgl32.Vec3 {
	return v.LocalToWorld.Col(3).Vec3()
}

func (n *node) view(h Handle) View {
	return View{
		Handle:        h,
		Parent:        n.parent,
		Portal:        n.portal,
		Depth:         n.depth,
		LocalToWorld:  n.localToWorld,
		WorldToCamera: n.worldToCamera,
		Projection:    n.projection,
		Culling:       n.culling,
		Viewport:      n.viewport,
		Near:          n.near,
		Far:           n.far,
		Oblique:       n.projection != n.standard,
		Target:        n.target,
	}
}
