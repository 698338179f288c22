// Package traversal builds the per-frame tree of virtual portal cameras and
// walks it innermost view first.
//
// A frame goes through Initialize, then MoveNext until it returns false, with
// SetupPortalsBeforeCameraRendering / SetupPortalsAfterCameraRendering around
// the rendering of every yielded node and of the root, then Release.
package traversal

import (
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/portal"
	pmath "github.com/Faultbox/portalcam/pkg/math"
)

// State is the lifecycle state of an Engine.
type State int

const (
	Uninitialized State = iota
	Initialized
)

func (s State) String() string {
	if s == Initialized {
		return "initialized"
	}
	return "uninitialized"
}

// RenderTargetPool hands out temporary render targets for portal views.
type RenderTargetPool interface {
	Get(width, height int) portal.Texture
	Put(t portal.Texture)
}

// Options tunes tree construction.
type Options struct {
	// ViewportMargin is added around every projected portal rectangle.
	ViewportMargin float32
	// MinViewportSize is the smallest width and height of a view.
	MinViewportSize float32
	// ObliqueThreshold is how far in front of a virtual camera the exit plane
	// must lie before the near plane is bent onto it.
	ObliqueThreshold float32
	// Targets supplies render targets. Without it views carry no target.
	Targets RenderTargetPool
	Logger  *zap.Logger
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		ViewportMargin:   0.01,
		MinViewportSize:  0.02,
		ObliqueThreshold: 0.05,
	}
}

// cursor is one level of the enumeration stack.
type cursor struct {
	h    Handle
	next int32
}

// Engine owns the node arena for one camera. It is not safe for concurrent use.
type Engine struct {
	opts Options
	log  *zap.Logger

	state  State
	camera Camera

	nodes []node
	work  []Handle
	walk  []cursor

	walking bool
	done    bool
	current Handle

	candidates []*portal.Portal
	convex     []bool
	maxDepth   int
}

// New creates an engine with an empty tree.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Named("traversal")
	}
	e := &Engine{
		opts:    opts,
		log:     log,
		nodes:   make([]node, 1, 16),
		current: NoHandle,
	}
	e.nodes[Root].reset()
	return e
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Initialize builds the tree for cam, descending at most recursionLimit portal
// levels. penetrating is the portal the camera currently straddles, or nil.
// A second call before Release is ignored.
//
// Missing camera, empty registry or an unworkable penetrating portal leave a
// root-only tree.
func (e *Engine) Initialize(reg *portal.Registry, cam *Camera, recursionLimit int, penetrating *portal.Portal) {
	if e.state == Initialized {
		return
	}
	e.state = Initialized
	e.maxDepth = 0

	if cam == nil {
		return
	}
	e.camera = *cam
	e.setupRoot()

	if reg == nil || reg.Len() == 0 {
		return
	}
	if penetrating != nil && !penetrating.IsWorkable() {
		return
	}
	if recursionLimit < 0 {
		recursionLimit = 0
	}

	e.candidates = e.candidates[:0]
	for _, p := range reg.AppendActive(nil) {
		if p.IsWorkable() {
			e.candidates = append(e.candidates, p)
		}
	}
	if len(e.candidates) == 0 {
		return
	}

	e.markConvex()
	defer e.restoreConvex()

	e.work = append(e.work[:0], Root)
	for len(e.work) > 0 {
		h := e.work[len(e.work)-1]
		e.work = e.work[:len(e.work)-1]
		if e.nodes[h].depth >= recursionLimit {
			continue
		}
		e.expand(h, penetrating)
	}

	e.log.Debug("portal tree built",
		zap.Int("nodes", len(e.nodes)),
		zap.Int("depth", e.maxDepth),
		zap.Int("portals", len(e.candidates)),
	)
}

func (e *Engine) setupRoot() {
	root := &e.nodes[Root]
	root.reset()
	cam := &e.camera
	root.localToWorld = cam.LocalToWorld()
	root.worldToCamera = root.localToWorld.Inv()
	root.viewport = pmath.FullRect()
	root.near, root.far = cam.Near, cam.Far
	root.scale = 1
	root.standard = cam.Projection(root.near, root.far, 1)
	root.projection = root.standard
	root.culling = root.standard.Mul4(root.worldToCamera)
}

// markConvex forces every candidate collider convex so closest-point queries
// answer during the build. restoreConvex puts the original flags back.
func (e *Engine) markConvex() {
	e.convex = e.convex[:0]
	for _, p := range e.candidates {
		e.convex = append(e.convex, p.Collider.Convex)
		p.Collider.Convex = true
	}
}

func (e *Engine) restoreConvex() {
	for i, p := range e.candidates {
		p.Collider.Convex = e.convex[i]
	}
}

// expand creates every child of h and pushes them for further expansion.
func (e *Engine) expand(h Handle, penetrating *portal.Portal) {
	first := Handle(len(e.nodes))
	cur := e.nodes[h]
	camPos := cur.position()
	frustum := pmath.FrustumFromMatrix(cur.culling)
	screen := cur.standard.Mul4(cur.worldToCamera)

	var entry *portal.Portal
	if cur.depth != 0 {
		entry = cur.portal
	}

	for _, p := range e.candidates {
		if !p.InMask(e.camera.CullingMask) {
			continue
		}
		if entry != nil && p == entry.Linked() {
			continue
		}

		var rect pmath.Rect
		if cur.depth == 0 && p == penetrating {
			rect = pmath.FullRect()
		} else {
			bounds := p.Bounds()
			if !frustum.IntersectsAABB(bounds) {
				continue
			}
			if p.Forward().Dot(p.Position.Sub(camPos)) <= 0 {
				continue
			}
			if cur.hasClip && behindPlane(cur.clipPlane, bounds) {
				continue
			}
			r, ok := pmath.ProjectBounds(screen, bounds)
			if !ok {
				continue
			}
			rect = r
		}

		rect = rect.Expand(e.opts.ViewportMargin)
		if cur.depth > 0 {
			if !rect.Overlaps(cur.viewport) {
				continue
			}
			bounds := cur.viewport.Expand(e.opts.ViewportMargin)
			rect = rect.Intersect(bounds).EnsureMinSizeWithin(bounds, e.opts.MinViewportSize)
		} else {
			rect = rect.EnsureMinSize(e.opts.MinViewportSize)
		}

		e.nodes = append(e.nodes, e.child(h, &cur, p, rect))
	}

	count := int32(len(e.nodes)) - int32(first)
	if count == 0 {
		return
	}
	e.nodes[h].firstChild = first
	e.nodes[h].childCount = count
	for i := count - 1; i >= 0; i-- {
		e.work = append(e.work, first+Handle(i))
	}
	if d := cur.depth + 1; d > e.maxDepth {
		e.maxDepth = d
	}
}

// child builds the virtual camera seen through p from parent.
func (e *Engine) child(h Handle, parent *node, p *portal.Portal, rect pmath.Rect) node {
	tr := p.Transfer()
	root := &e.nodes[Root]

	var n node
	n.reset()
	n.portal = p
	n.parent = h
	n.depth = parent.depth + 1
	n.viewport = rect

	n.localToWorld = pmath.Rigid(tr.Matrix.Mul4(parent.localToWorld))
	n.worldToCamera = n.localToWorld.Inv()
	n.scale = parent.scale * tr.Scale

	dist := parent.position().Sub(p.ClosestPoint(parent.position())).Len()
	n.near = max(root.near, dist*tr.Scale)
	n.far = parent.far * tr.Scale
	if n.far <= n.near {
		n.far = n.near * 2
	}

	n.standard = e.camera.Projection(n.near, n.far, n.scale)
	n.projection = n.standard

	exit := p.Linked()
	clip := exit.Plane().Flip()
	n.clipPlane, n.hasClip = clip, true
	view := clip.Transform(n.worldToCamera)
	if view.D <= -e.opts.ObliqueThreshold {
		n.projection = pmath.ObliqueProjection(n.standard, view.Vec4())
	}

	n.culling = pmath.ViewportRemap(rect).Mul4(n.standard).Mul4(n.worldToCamera)
	return n
}

// behindPlane reports whether the whole box lies on the negative side of pl.
func behindPlane(pl pmath.Plane, b pmath.AABB) bool {
	for _, c := range b.Corners() {
		if pl.Distance(c) >= 0 {
			return false
		}
	}
	return true
}
