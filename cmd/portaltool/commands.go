package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/config"
	"github.com/Faultbox/portalcam/internal/debugview"
	"github.com/Faultbox/portalcam/internal/frame"
	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/scene"
	"github.com/Faultbox/portalcam/internal/traversal"
)

var errNoScene = errors.New("missing scene file argument")

// session is a scene loaded into a frame context.
type session struct {
	ctx   *frame.Context
	scene *scene.Scene
}

func open(c *cli.Context) (*session, error) {
	if c.NArg() < 1 {
		return nil, errNoScene
	}
	cfg, err := config.LoadFile(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if d := c.Int("depth"); d >= 0 {
		cfg.Portals.RecursionLimit = d
	}

	sc, err := scene.Load(c.Args().First())
	if err != nil {
		return nil, err
	}
	logger.Debug("scene loaded",
		zap.String("path", c.Args().First()),
		zap.Int("portals", sc.Registry.Len()),
		zap.Int("depth", cfg.Portals.RecursionLimit))

	fc := frame.New(cfg, frame.WithRegistry(sc.Registry), frame.WithLogger(logger.Named("portaltool")))
	return &session{ctx: fc, scene: sc}, nil
}

// build initializes the portal tree for the scene camera. The caller releases it.
func (s *session) build() *traversal.Engine {
	e := s.ctx.Engine()
	e.Initialize(s.ctx.Portals(), s.scene.Camera, s.ctx.Config().Portals.RecursionLimit, s.scene.Penetrating)
	return e
}

func cmdTree(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.ctx.FreeMemory()

	e := s.build()
	defer e.Release()
	if err := debugview.WriteTree(os.Stdout, e); err != nil {
		return fmt.Errorf("writing tree: %w", err)
	}
	return nil
}

func cmdSnapshot(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.ctx.FreeMemory()

	w, h := c.Int("width"), c.Int("height")
	if w <= 0 {
		w = s.scene.Camera.PixelWidth
	}
	if h <= 0 {
		h = s.scene.Camera.PixelHeight
	}

	e := s.build()
	img := debugview.Snapshot(e, w, h)
	nodes := e.Len()
	e.Release()

	out := c.String("out")
	if err := debugview.SaveWebP(out, img); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d, %d views)\n", out, w, h, nodes)
	return nil
}

func cmdWalk(c *cli.Context) error {
	s, err := open(c)
	if err != nil {
		return err
	}
	defer s.ctx.FreeMemory()

	cam := s.scene.Camera
	step := float32(c.Float64("step"))
	steps := c.Int("steps")
	for i := 1; i <= steps; i++ {
		entered, pen := s.ctx.MoveCamera(cam, cam.Forward().Mul(step))

		e := s.ctx.Engine()
		e.Initialize(s.ctx.Portals(), cam, s.ctx.Config().Portals.RecursionLimit, pen)
		nodes := e.Len()
		e.Release()

		line := fmt.Sprintf("%3d  pos (%7.2f %7.2f %7.2f)  views %d", i,
			cam.Position.X(), cam.Position.Y(), cam.Position.Z(), nodes)
		if entered != nil {
			line += "  through " + entered.Name
		}
		if pen != nil {
			line += "  inside " + pen.Name
		}
		fmt.Println(line)
	}
	return nil
}

func cmdConfig(c *cli.Context) error {
	cfg, err := config.LoadFile(c.GlobalString("config"))
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		if err := cfg.SaveTo(out); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", out)
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
