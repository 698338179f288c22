// Package input turns SDL2 events into viewer controls.
package input

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
)

// EventType tags a processed event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Controls is the per-frame viewer intent.
type Controls struct {
	// Move is in camera-local axes: x right, y up, z back.
	Move mgl32.Vec3
	// Yaw and Pitch are turn rates in -1..1.
	Yaw, Pitch float32
	// Depth is the recursion limit change requested this frame.
	Depth       int
	Snapshot    bool
	ToggleDebug bool
	Quit        bool
}

// Input polls SDL events and tracks held keys.
type Input struct {
	events []Event
	keys   []uint8
}

// New creates an input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. It returns true when the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				i.events = append(i.events, Event{
					Type: EventKeyDown,
					Key:  e.Keysym.Scancode,
				})
			}
		}
	}

	i.keys = sdl.GetKeyboardState()
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether a key went down this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(scancode sdl.Scancode) bool {
	return int(scancode) < len(i.keys) && i.keys[scancode] != 0
}

// Resized returns the last window size reported this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventWindowResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}

// Controls maps held and pressed keys to viewer intent. WASD moves, Q and E
// fly down and up, arrows turn, +/- change depth, F3 toggles debug logging, F12 takes a
// snapshot.
func (i *Input) Controls() Controls {
	c := Controls{
		Move: mgl32.Vec3{
			i.axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
			i.axis(sdl.SCANCODE_E, sdl.SCANCODE_Q),
			i.axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
		},
		Yaw:         i.axis(sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT),
		Pitch:       i.axis(sdl.SCANCODE_UP, sdl.SCANCODE_DOWN),
		Snapshot:    i.IsKeyPressed(sdl.SCANCODE_F12),
		ToggleDebug: i.IsKeyPressed(sdl.SCANCODE_F3),
		Quit:        i.IsKeyPressed(sdl.SCANCODE_ESCAPE),
	}
	if i.IsKeyPressed(sdl.SCANCODE_EQUALS) || i.IsKeyPressed(sdl.SCANCODE_KP_PLUS) {
		c.Depth++
	}
	if i.IsKeyPressed(sdl.SCANCODE_MINUS) || i.IsKeyPressed(sdl.SCANCODE_KP_MINUS) {
		c.Depth--
	}
	if c.Move.Len() > 1 {
		c.Move = c.Move.Normalize()
	}
	return c
}

func (i *Input) axis(pos, neg sdl.Scancode) float32 {
	var v float32
	if i.IsKeyHeld(pos) {
		v++
	}
	if i.IsKeyHeld(neg) {
		v--
	}
	return v
}
