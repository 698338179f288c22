// portaltool inspects portal scenes without a window: it prints the portal
// tree a scene camera builds and renders viewport layouts to WebP.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Faultbox/portalcam/internal/logger"
)

func main() {
	app := cli.NewApp()
	app.Name = "portaltool"
	app.Usage = "inspect recursive portal views of a scene"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "config file overriding the defaults",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		level := "warn"
		if ctx.GlobalBool("v") {
			level = "debug"
		}
		return logger.Init(level, "")
	}
	app.After = func(ctx *cli.Context) error {
		logger.Sync()
		return nil
	}
	depthFlag := cli.IntFlag{
		Name:  "depth, d",
		Value: -1,
		Usage: "recursion limit, -1 uses the config value",
	}
	app.Commands = []cli.Command{
		{
			Name:      "tree",
			Usage:     "print the portal tree built for the scene camera",
			ArgsUsage: "scene.yaml",
			Flags:     []cli.Flag{depthFlag},
			Action:    cmdTree,
		},
		{
			Name:  "snapshot",
			Usage: "render the viewport layout of every portal view to WebP",
			Description: `
Each node of the portal tree is drawn as a rectangle filled with a color keyed
by its recursion depth. Deeper views are drawn over the views that contain them.`,
			ArgsUsage: "scene.yaml",
			Flags: []cli.Flag{
				depthFlag,
				cli.StringFlag{
					Name:  "out, o",
					Value: "portals.webp",
					Usage: "output image file",
				},
				cli.IntFlag{
					Name:  "width",
					Usage: "image width, 0 uses the camera pixel width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "image height, 0 uses the camera pixel height",
				},
			},
			Action: cmdSnapshot,
		},
		{
			Name:      "walk",
			Usage:     "move the scene camera forward in steps and report portal crossings",
			ArgsUsage: "scene.yaml",
			Flags: []cli.Flag{
				depthFlag,
				cli.Float64Flag{
					Name:  "step",
					Value: 0.5,
					Usage: "distance moved per step",
				},
				cli.IntFlag{
					Name:  "steps, n",
					Value: 20,
					Usage: "number of steps",
				},
			},
			Action: cmdWalk,
		},
		{
			Name:  "config",
			Usage: "print the effective configuration, or write it with --out",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "file to write instead of stdout",
				},
			},
			Action: cmdConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
