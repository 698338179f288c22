// Package config handles portal renderer configuration loading and management.
package config

import "time"

// Config holds all settings.
type Config struct {
	Portals PortalsConfig `yaml:"portals"`
	Ghosts  GhostsConfig  `yaml:"ghosts"`
	Physics PhysicsConfig `yaml:"physics"`
	Window  WindowConfig  `yaml:"window"`
	Logging LoggingConfig `yaml:"logging"`
	Scene   string        `yaml:"scene"` // Scene file opened at startup
}

// PortalsConfig tunes portal tree construction.
type PortalsConfig struct {
	RecursionLimit   int     `yaml:"recursion_limit"`
	ViewportMargin   float32 `yaml:"viewport_margin"`
	MinViewportSize  float32 `yaml:"min_viewport_size"`
	ObliqueThreshold float32 `yaml:"oblique_threshold"`
	TargetWidth      int     `yaml:"target_width"`  // 0 = window width
	TargetHeight     int     `yaml:"target_height"` // 0 = window height
}

// GhostsConfig controls the ghost pool idle sweep.
type GhostsConfig struct {
	MaxIdle       time.Duration `yaml:"max_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// PhysicsConfig holds the gravity redirection settings.
type PhysicsConfig struct {
	Gravity           float32 `yaml:"gravity"`
	VerticalThreshold float32 `yaml:"vertical_threshold"`
}

// WindowConfig holds display settings for the viewer.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Portals: PortalsConfig{
			RecursionLimit:   4,
			ViewportMargin:   0.01,
			MinViewportSize:  0.02,
			ObliqueThreshold: 0.05,
		},
		Ghosts: GhostsConfig{
			MaxIdle:       5 * time.Second,
			SweepInterval: time.Second,
		},
		Physics: PhysicsConfig{
			Gravity:           -9.81,
			VerticalThreshold: 0.99,
		},
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Sanitize clamps out-of-range values to the nearest usable setting.
func (c *Config) Sanitize() {
	p := &c.Portals
	p.RecursionLimit = max(p.RecursionLimit, 0)
	p.ViewportMargin = min(max(p.ViewportMargin, 0), 0.5)
	p.MinViewportSize = min(max(p.MinViewportSize, 0), 1)
	p.ObliqueThreshold = max(p.ObliqueThreshold, 0)
	p.TargetWidth = max(p.TargetWidth, 0)
	p.TargetHeight = max(p.TargetHeight, 0)

	c.Ghosts.MaxIdle = max(c.Ghosts.MaxIdle, 0)
	if c.Ghosts.SweepInterval <= 0 {
		c.Ghosts.SweepInterval = time.Second
	}
	if c.Physics.VerticalThreshold <= 0 || c.Physics.VerticalThreshold > 1 {
		c.Physics.VerticalThreshold = 0.99
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
}

// TargetSize returns the render target size, falling back to the window size.
func (c *Config) TargetSize() (int, int) {
	w, h := c.Portals.TargetWidth, c.Portals.TargetHeight
	if w <= 0 {
		w = c.Window.Width
	}
	if h <= 0 {
		h = c.Window.Height
	}
	return w, h
}
