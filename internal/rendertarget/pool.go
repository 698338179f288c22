// Package rendertarget pools temporary render targets for portal views.
package rendertarget

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/logger"
	"github.com/Faultbox/portalcam/internal/portal"
)

// Texture is an in-memory render target with no GPU backing.
type Texture struct {
	ID            int
	Width, Height int
}

// Size returns the target size in pixels.
func (t *Texture) Size() (int, int) { return t.Width, t.Height }

func (t *Texture) String() string {
	return fmt.Sprintf("rt#%d %dx%d", t.ID, t.Width, t.Height)
}

// CreateFunc allocates a target of the given size.
type CreateFunc func(width, height int) (portal.Texture, error)

// Options configures a Pool.
type Options struct {
	// Create allocates new targets. Defaults to in-memory textures.
	Create CreateFunc
	// Destroy frees a target dropped by the pool.
	Destroy func(t portal.Texture)
	Logger  *zap.Logger
}

type size struct{ w, h int }

// Stats is a snapshot of pool counters.
type Stats struct {
	Created   int
	Destroyed int
	InUse     int
	Free      int
}

// Pool hands out targets per size, most recently returned first. It is not
// safe for concurrent use.
type Pool struct {
	create  CreateFunc
	destroy func(t portal.Texture)
	log     *zap.Logger

	free  map[size][]portal.Texture
	owned map[portal.Texture]bool // true while in use

	nextID    int
	created   int
	destroyed int
	inUse     int
}

// New creates an empty pool.
func New(opts Options) *Pool {
	p := &Pool{
		create:  opts.Create,
		destroy: opts.Destroy,
		log:     opts.Logger,
		free:    make(map[size][]portal.Texture),
		owned:   make(map[portal.Texture]bool),
	}
	if p.log == nil {
		p.log = logger.Named("rendertarget")
	}
	if p.create == nil {
		p.create = p.memory
	}
	return p
}

func (p *Pool) memory(w, h int) (portal.Texture, error) {
	p.nextID++
	return &Texture{ID: p.nextID, Width: w, Height: h}, nil
}

// Get returns a target of the given size, or nil if one cannot be created.
func (p *Pool) Get(width, height int) portal.Texture {
	width, height = max(width, 1), max(height, 1)
	key := size{width, height}
	if list := p.free[key]; len(list) > 0 {
		t := list[len(list)-1]
		list[len(list)-1] = nil
		p.free[key] = list[:len(list)-1]
		p.owned[t] = true
		p.inUse++
		return t
	}

	t, err := p.create(width, height)
	if err != nil || t == nil {
		p.log.Error("render target creation failed",
			zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		return nil
	}
	p.created++
	p.owned[t] = true
	p.inUse++
	p.log.Debug("render target pool grew",
		zap.Int("width", width), zap.Int("height", height), zap.Int("total", len(p.owned)))
	return t
}

// Put returns t to the pool. Unknown or already returned targets are ignored.
func (p *Pool) Put(t portal.Texture) {
	if t == nil {
		return
	}
	busy, ok := p.owned[t]
	if !ok || !busy {
		return
	}
	p.owned[t] = false
	p.inUse--
	w, h := t.Size()
	key := size{w, h}
	p.free[key] = append(p.free[key], t)
}

// InUse returns how many targets are handed out.
func (p *Pool) InUse() int { return p.inUse }

// Trim destroys every free target and returns how many were dropped.
func (p *Pool) Trim() int {
	n := 0
	for key, list := range p.free {
		for _, t := range list {
			p.drop(t)
			n++
		}
		delete(p.free, key)
	}
	return n
}

// Clear destroys every target, including the ones still in use.
func (p *Pool) Clear() {
	if p.inUse > 0 {
		p.log.Warn("render targets destroyed while in use", zap.Int("count", p.inUse))
	}
	for t := range p.owned {
		p.drop(t)
	}
	clear(p.free)
	p.inUse = 0
}

// Stats returns the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{Created: p.created, Destroyed: p.destroyed, InUse: p.inUse}
	for _, list := range p.free {
		s.Free += len(list)
	}
	return s
}

func (p *Pool) drop(t portal.Texture) {
	delete(p.owned, t)
	p.destroyed++
	if p.destroy != nil {
		p.destroy(t)
	}
}
