// Package frame owns the per-process portal state: the registry, traversal
// engine, ghost pool, render target pool and deferred-action queue. Each is
// built on first use and torn down by FreeMemory.
package frame

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/config"
	"github.com/Faultbox/portalcam/internal/ghost"
	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/portal"
	"github.com/Faultbox/portalcam/internal/rendertarget"
	"github.com/Faultbox/portalcam/internal/schedule"
	"github.com/Faultbox/portalcam/internal/transfer"
	"github.com/Faultbox/portalcam/internal/traversal"
)

// Up is the world up axis used for gravity redirection.
var Up = mgl32.Vec3{0, 1, 0}

// TargetPool is a render target pool that can be torn down.
type TargetPool interface {
	traversal.RenderTargetPool
	Clear()
}

// RenderFunc draws one view into its target, or to the screen for the root.
type RenderFunc func(v traversal.View) error

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used by the context and everything it builds.
func WithLogger(l *zap.Logger) Option {
	return func(c *Context) { c.log = l }
}

// WithTargets supplies the render target pool factory, for GPU back ends.
// It is called again after FreeMemory.
func WithTargets(newPool func() TargetPool) Option {
	return func(c *Context) { c.newTargets = newPool }
}

// WithRegistry makes the context start from an existing registry.
func WithRegistry(r *portal.Registry) Option {
	return func(c *Context) { c.registry = r }
}

// Context is the explicit replacement for process-wide portal singletons.
// It is not safe for concurrent use.
type Context struct {
	cfg *config.Config
	log *zap.Logger

	newTargets func() TargetPool

	registry *portal.Registry
	engine   *traversal.Engine
	ghosts   *ghost.Pool
	targets  TargetPool
	sched    *schedule.Queue

	active []*portal.Portal

	frame   uint64
	now     time.Duration
	sweepID schedule.ID
}

// New creates a context. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	c := &Context{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("frame")
	}
	return c
}

// Config returns the configuration the context was built with.
func (c *Context) Config() *config.Config { return c.cfg }

// Frame returns the number of frames begun.
func (c *Context) Frame() uint64 { return c.frame }

// Now returns the accumulated frame time.
func (c *Context) Now() time.Duration { return c.now }

// Portals returns the registry of portals.
func (c *Context) Portals() *portal.Registry {
	if c.registry == nil {
		c.registry = portal.NewRegistry()
	}
	return c.registry
}

// Scheduler returns the deferred-action queue ticked by BeginFrame.
func (c *Context) Scheduler() *schedule.Queue {
	if c.sched == nil {
		c.sched = schedule.New()
	}
	return c.sched
}

// Targets returns the render target pool.
func (c *Context) Targets() TargetPool {
	if c.targets == nil {
		if c.newTargets != nil {
			c.targets = c.newTargets()
		} else {
			c.targets = rendertarget.New(rendertarget.Options{Logger: c.log.Named("rendertarget")})
		}
	}
	return c.targets
}

// Engine returns the traversal engine.
func (c *Context) Engine() *traversal.Engine {
	if c.engine == nil {
		p := c.cfg.Portals
		c.engine = traversal.New(traversal.Options{
			ViewportMargin:   p.ViewportMargin,
			MinViewportSize:  p.MinViewportSize,
			ObliqueThreshold: p.ObliqueThreshold,
			Targets:          c.Targets(),
			Logger:           c.log.Named("traversal"),
		})
	}
	return c.engine
}

// Ghosts returns the ghost pool. The first call arms the periodic idle sweep.
func (c *Context) Ghosts() *ghost.Pool {
	if c.ghosts == nil {
		c.ghosts = ghost.New(ghost.Options{
			Clock:  c.Now,
			Logger: c.log.Named("ghost"),
		})
		maxIdle := c.cfg.Ghosts.MaxIdle
		c.sweepID = c.Scheduler().Every(c.cfg.Ghosts.SweepInterval, func() {
			if c.ghosts != nil {
				c.ghosts.DestroyIdle(maxIdle)
			}
		})
	}
	return c.ghosts
}

// BeginFrame advances frame time by dt and runs deferred actions that are due.
func (c *Context) BeginFrame(dt time.Duration) {
	c.frame++
	c.now += max(dt, 0)
	if c.sched != nil {
		c.sched.Tick(c.frame, c.now)
	}
}

// RenderFrame builds the portal tree for cam and calls render for every
// portal view innermost first, then for the root. The tree is released
// before returning, also when render fails.
func (c *Context) RenderFrame(cam *traversal.Camera, penetrating *portal.Portal, render RenderFunc) error {
	e := c.Engine()
	if cam != nil {
		cam = c.frameCamera(cam)
	}
	e.Initialize(c.Portals(), cam, c.cfg.Portals.RecursionLimit, penetrating)
	defer e.Release()

	for e.MoveNext() {
		h := e.Current()
		if err := c.renderNode(e, h, render); err != nil {
			return fmt.Errorf("rendering portal view %d: %w", h, err)
		}
	}
	if err := c.renderNode(e, traversal.Root, render); err != nil {
		return fmt.Errorf("rendering root view: %w", err)
	}
	return nil
}

func (c *Context) renderNode(e *traversal.Engine, h traversal.Handle, render RenderFunc) error {
	e.SetupPortalsBeforeCameraRendering(h)
	defer e.SetupPortalsAfterCameraRendering(h)
	return render(e.View(h))
}

// frameCamera applies the configured render target size without changing
// the camera's aspect ratio.
func (c *Context) frameCamera(cam *traversal.Camera) *traversal.Camera {
	p := c.cfg.Portals
	if p.TargetWidth <= 0 && p.TargetHeight <= 0 {
		return cam
	}
	cp := *cam
	cp.Aspect = cam.AspectRatio()
	cp.PixelWidth, cp.PixelHeight = c.cfg.TargetSize()
	return &cp
}

// EndFrame finishes the frame. A tree left initialized by a caller driving
// the engine directly is released here.
func (c *Context) EndFrame() {
	if c.engine != nil && c.engine.State() == traversal.Initialized {
		c.log.Warn("portal tree still initialized at end of frame", zap.Uint64("frame", c.frame))
		c.engine.Release()
	}
}

// TransferVelocity carries v through entry and, when the pair involves a
// vertical portal facing up on the exit, lifts the result so a traveler of
// the given height clears the exit against gravity. Gravity is scaled by the
// traveler's scale as it leaves the exit, travelerScale times the pair ratio.
func (c *Context) TransferVelocity(entry *portal.Portal, v mgl32.Vec3, height, travelerScale float32) mgl32.Vec3 {
	exit := entry.Linked()
	if exit == nil {
		return v
	}
	tr := entry.Transfer()
	out := tr.Velocity(v)

	ph := c.cfg.Physics
	outward := exit.Outward()
	if outward.Dot(Up) > 0 && transfer.NeedsPopUp(entry.Forward(), exit.Forward(), Up, ph.VerticalThreshold) {
		out = transfer.ApplyPopUp(out, outward, ph.Gravity, height, travelerScale*tr.Scale)
	}
	return out
}

// MoveCamera moves cam by the world displacement delta, carrying it through
// the first workable portal the move crosses. It returns that portal, or nil,
// and the portal whose plane the camera now straddles within its near clip.
func (c *Context) MoveCamera(cam *traversal.Camera, delta mgl32.Vec3) (entered, penetrating *portal.Portal) {
	from, to := cam.Position, cam.Position.Add(delta)
	c.active = c.Portals().AppendActive(c.active[:0])
	cam.Position = to
	for _, p := range c.active {
		if !p.IsWorkable() || !p.Crossed(from, to) {
			continue
		}
		tr := p.Transfer()
		cam.Position = tr.Point(to)
		cam.Rotation = tr.Rotate(cam.Rotation)
		c.log.Debug("camera crossed portal",
			zap.String("entry", p.Name),
			zap.String("exit", p.Linked().Name),
			zap.Uint64("frame", c.frame))
		entered = p
		break
	}
	return entered, c.Penetrating(cam)
}

// Penetrating returns the nearest workable portal whose opening the camera's
// near plane straddles, or nil.
func (c *Context) Penetrating(cam *traversal.Camera) *portal.Portal {
	c.active = c.Portals().AppendActive(c.active[:0])
	reach := max(cam.Near, 0) * 2
	var best *portal.Portal
	bestDist := float32(0)
	for _, p := range c.active {
		if !p.IsWorkable() || !p.Straddles(cam.Position, reach) {
			continue
		}
		d := p.Plane().Distance(cam.Position)
		if d < 0 {
			d = -d
		}
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// FreeMemory tears down every owned sub-system. The next accessor call
// rebuilds it from scratch.
func (c *Context) FreeMemory() {
	if c.engine != nil {
		c.engine.Release()
		c.engine = nil
	}
	if c.ghosts != nil {
		c.ghosts.Clear()
		c.ghosts = nil
	}
	if c.targets != nil {
		c.targets.Clear()
		c.targets = nil
	}
	if c.sched != nil {
		c.sched.Clear()
		c.sched = nil
		c.sweepID = 0
	}
	if c.registry != nil {
		c.registry.Clear()
		c.registry = nil
	}
	c.log.Debug("frame context freed", zap.Uint64("frame", c.frame))
}
