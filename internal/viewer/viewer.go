// Package viewer implements the interactive portal viewer loop.
package viewer

import (
	"fmt"
	"image"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/config"
	"github.com/Faultbox/portalcam/internal/debugview"
	"github.com/Faultbox/portalcam/internal/engine/framebuffer"
	"github.com/Faultbox/portalcam/internal/engine/input"
	"github.com/Faultbox/portalcam/internal/engine/window"
	"github.com/Faultbox/portalcam/internal/frame"
	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/portal"
	"github.com/Faultbox/portalcam/internal/scene"
	"github.com/Faultbox/portalcam/internal/traversal"
)

const (
	title = "portalview"

	// Per second, in world units and degrees.
	moveSpeed = 3
	turnSpeed = 90

	maxDepth = 16
)

// Viewer renders a scene's nested portal views, each view cleared to a color
// keyed by its depth with the views it contains blitted on top.
type Viewer struct {
	cfg   *config.Config
	log   *zap.Logger
	scene *scene.Scene

	window *window.Window
	input  *input.Input
	ctx    *frame.Context
	screen *framebuffer.Framebuffer

	penetrating *portal.Portal
	running     bool
	lastNodes   int
	shots       int
}

// New opens the window and prepares the frame context for sc.
func New(cfg *config.Config, sc *scene.Scene) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		log:   logger.Named("viewer"),
		scene: sc,
	}
	v.log.Info("initializing viewer",
		zap.Int("portals", sc.Registry.Len()),
		zap.Int("depth", cfg.Portals.RecursionLimit))

	var err error
	v.window, err = window.New(title, cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	if err := gl.Init(); err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	w, h := v.window.Size()
	v.screen, err = framebuffer.New(w, h)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create screen buffer: %w", err)
	}
	sc.Camera.PixelWidth, sc.Camera.PixelHeight = w, h
	v.penetrating = sc.Penetrating

	v.ctx = frame.New(cfg,
		frame.WithLogger(logger.Named("frame")),
		frame.WithRegistry(sc.Registry),
		frame.WithTargets(func() frame.TargetPool {
			return framebuffer.NewPool(logger.Named("rendertarget"))
		}),
	)
	v.input = input.New()

	v.log.Info("viewer initialized", zap.Int("width", w), zap.Int("height", h))
	return v, nil
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		if _, _, ok := v.input.Resized(); ok {
			v.resize()
		}

		ctrl := v.input.Controls()
		if ctrl.Quit {
			v.running = false
			break
		}

		v.ctx.BeginFrame(dt)
		v.update(ctrl, float32(dt.Seconds()))

		if err := v.ctx.RenderFrame(v.scene.Camera, v.penetrating, v.render); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if ctrl.Snapshot {
			v.snapshot()
		}
		v.ctx.EndFrame()

		v.present()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - depth %d - %d views - %d fps",
				title, v.cfg.Portals.RecursionLimit, v.lastNodes, frameCount))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

// Close releases GL resources and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.ctx != nil {
		v.ctx.FreeMemory()
	}
	if v.screen != nil {
		v.screen.Destroy()
	}
	if v.window != nil {
		v.window.Close()
	}
}

func (v *Viewer) update(ctrl input.Controls, dt float32) {
	cam := v.scene.Camera
	cam.Turn(ctrl.Yaw*turnSpeed*dt, ctrl.Pitch*turnSpeed*dt)

	var entered *portal.Portal
	entered, v.penetrating = v.ctx.MoveCamera(cam, cam.Displacement(ctrl.Move.Mul(moveSpeed*dt)))
	if entered != nil {
		v.log.Info("walked through portal", zap.String("portal", entered.Name))
	}

	if ctrl.ToggleDebug {
		next := "debug"
		if logger.Level() == "debug" {
			next = v.cfg.Logging.Level
		}
		logger.SetLevel(next)
	}

	if ctrl.Depth != 0 {
		limit := max(0, min(v.cfg.Portals.RecursionLimit+ctrl.Depth, maxDepth))
		if limit != v.cfg.Portals.RecursionLimit {
			v.cfg.Portals.RecursionLimit = limit
			v.log.Info("recursion limit changed", zap.Int("depth", limit))
		}
	}
}

// resize follows the drawable size, which differs from the reported window
// size on high density displays.
func (v *Viewer) resize() {
	w, h := v.window.Size()
	v.screen.Resize(w, h)
	v.scene.Camera.PixelWidth, v.scene.Camera.PixelHeight = w, h
	// Targets of the old size are no longer handed out.
	v.ctx.Targets().Clear()
	v.log.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
}

// render draws one view: the root into the screen buffer, every other view
// into its own target.
func (v *Viewer) render(view traversal.View) error {
	dst := v.screen
	if view.Handle != traversal.Root {
		fb, ok := view.Target.(*framebuffer.Framebuffer)
		if !ok {
			return fmt.Errorf("view %d has no framebuffer target", view.Handle)
		}
		dst = fb
	} else {
		v.lastNodes = v.ctx.Engine().Len()
	}

	restore := dst.BindWithViewport()
	c := debugview.DepthColor(view.Depth)
	framebuffer.Clear(float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, 1)
	restore()

	e := v.ctx.Engine()
	for _, ch := range e.Children(view.Handle) {
		child := e.View(ch)
		src, ok := child.Target.(*framebuffer.Framebuffer)
		if !ok {
			continue
		}
		sw, sh := src.Size()
		x, y, w, h := child.Viewport.ToPixels(sw, sh)
		src.BlitRegion(dst, image.Rect(int(x), int(y), int(x+w), int(y+h)), 0, 0)
	}
	return nil
}

func (v *Viewer) present() {
	w, h := v.window.Size()
	sw, sh := v.screen.Size()
	v.screen.BlitRegion(nil, image.Rect(0, 0, sw, sh), w, h)
}

func (v *Viewer) snapshot() {
	v.shots++
	path := fmt.Sprintf("portalview-%03d.webp", v.shots)
	if err := debugview.SaveWebP(path, v.screen.Image()); err != nil {
		v.log.Error("failed to save snapshot", zap.String("path", path), zap.Error(err))
		return
	}
	v.log.Info("snapshot saved", zap.String("path", path))
}
