package ghost

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/logger"
)

var (
	// ErrKindMismatch is returned when a source does not match the requested kind.
	ErrKindMismatch = errors.New("ghost: source does not match kind")
	// ErrForeignGhost is returned when releasing a ghost this pool does not own.
	ErrForeignGhost = errors.New("ghost: not owned by this pool")
)

// Options configures a Pool.
type Options struct {
	// Clock returns the current frame time. Defaults to time since New.
	Clock func() time.Duration
	// OnDestroy is called for every ghost physically destroyed.
	OnDestroy func(g *Ghost)
	Logger    *zap.Logger
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Created    int
	Reused     int
	Destroyed  int
	Active     int
	Idle       int
	IdleByKind [kindCount]int
}

// Pool hands out ghosts per kind, reusing the most recently released first.
// It is not safe for concurrent use.
type Pool struct {
	clock     func() time.Duration
	onDestroy func(g *Ghost)
	log       *zap.Logger

	free [kindCount][]*Ghost
	all  []*Ghost
	root Transform

	created   int
	reused    int
	destroyed int
}

// New creates an empty pool.
func New(opts Options) *Pool {
	p := &Pool{
		clock:     opts.Clock,
		onDestroy: opts.OnDestroy,
		log:       opts.Logger,
	}
	if p.clock == nil {
		start := time.Now()
		p.clock = func() time.Duration { return time.Since(start) }
	}
	if p.log == nil {
		p.log = logger.Named("ghost")
	}
	p.root = identityTransform(nil)
	return p
}

// Root is the transform pooled ghosts are parked under.
func (p *Pool) Root() *Transform {
	return &p.root
}

// Acquire returns a ghost of kind k mirroring src.
func (p *Pool) Acquire(k Kind, src Source) (*Ghost, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrKindMismatch, int(k))
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source for %s", ErrKindMismatch, k)
	}
	if src.ghostKind() != k {
		return nil, fmt.Errorf("%w: %s source for %s", ErrKindMismatch, src.ghostKind(), k)
	}

	g := p.pop(k)
	if err := capabilities[k].setup(g, src); err != nil {
		p.push(g)
		return nil, err
	}
	g.Source = src
	g.Active = true
	g.LastUsed = InUse
	return g, nil
}

// AcquireRigidBody returns a rigid-body ghost mirroring rb.
func (p *Pool) AcquireRigidBody(rb *RigidBody) (*Ghost, error) {
	if rb == nil {
		return nil, fmt.Errorf("%w: nil rigid body", ErrKindMismatch)
	}
	return p.Acquire(KindRigidBody, rb)
}

// AcquireCollider returns a collider ghost of c's shape mirroring c.
func (p *Pool) AcquireCollider(c *Collider) (*Ghost, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil collider", ErrKindMismatch)
	}
	return p.Acquire(c.Kind(), c)
}

// Release returns g to its free list. Releasing a pooled ghost is a no-op.
func (p *Pool) Release(g *Ghost) error {
	if g == nil {
		return nil
	}
	if g.pool != p {
		return ErrForeignGhost
	}
	if !g.Active {
		return nil
	}
	p.reset(g)
	g.LastUsed = p.clock()
	p.push(g)
	return nil
}

// CollectAndReset releases every ghost in gs.
func (p *Pool) CollectAndReset(gs []*Ghost) error {
	var errs []error
	for _, g := range gs {
		if err := p.Release(g); err != nil {
			errs = append(errs, fmt.Errorf("ghost %s: %w", g.ID, err))
		}
	}
	return errors.Join(errs...)
}

// DestroyIdle destroys every pooled ghost idle for longer than maxIdle and
// returns how many were destroyed. A zero maxIdle destroys all idle ghosts.
func (p *Pool) DestroyIdle(maxIdle time.Duration) int {
	now := p.clock()
	n := 0
	for k := range p.free {
		kept := p.free[k][:0]
		for _, g := range p.free[k] {
			if maxIdle <= 0 || g.IdleFor(now) > maxIdle {
				p.destroy(g)
				n++
				continue
			}
			kept = append(kept, g)
		}
		clear(p.free[k][len(kept):])
		p.free[k] = kept
	}
	if n > 0 {
		p.compact()
		p.log.Debug("idle ghosts destroyed", zap.Int("count", n), zap.Duration("max_idle", maxIdle))
	}
	return n
}

// Clear destroys every ghost the pool created, active or not.
func (p *Pool) Clear() {
	n := len(p.all)
	for _, g := range p.all {
		if g.Active {
			p.reset(g)
		}
		p.destroy(g)
	}
	clear(p.all)
	p.all = p.all[:0]
	for k := range p.free {
		clear(p.free[k])
		p.free[k] = p.free[k][:0]
	}
	if n > 0 {
		p.log.Debug("ghost pool cleared", zap.Int("count", n))
	}
}

// Idle returns the number of pooled ghosts of kind k.
func (p *Pool) Idle(k Kind) int {
	if !k.Valid() {
		return 0
	}
	return len(p.free[k])
}

// Stats returns the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{Created: p.created, Reused: p.reused, Destroyed: p.destroyed}
	for k := range p.free {
		s.IdleByKind[k] = len(p.free[k])
		s.Idle += len(p.free[k])
	}
	s.Active = len(p.all) - s.Idle
	return s
}

func (p *Pool) pop(k Kind) *Ghost {
	if n := len(p.free[k]); n > 0 {
		g := p.free[k][n-1]
		p.free[k][n-1] = nil
		p.free[k] = p.free[k][:n-1]
		p.reused++
		return g
	}
	g := &Ghost{
		ID:   uuid.New(),
		Kind: k,
		pool: p,
	}
	p.reset(g)
	p.all = append(p.all, g)
	p.created++
	p.log.Debug("ghost pool grew", zap.Stringer("kind", k), zap.Int("total", len(p.all)))
	return g
}

func (p *Pool) push(g *Ghost) {
	p.free[g.Kind] = append(p.free[g.Kind], g)
}

// reset parks g under the pool root and clears every mirrored parameter.
func (p *Pool) reset(g *Ghost) {
	g.Active = false
	g.Source = nil
	g.AttachedPortal = nil
	g.Transform = identityTransform(&p.root)
	capabilities[g.Kind].reset(g)
}

func (p *Pool) destroy(g *Ghost) {
	g.pool = nil
	p.destroyed++
	if p.onDestroy != nil {
		p.onDestroy(g)
	}
}

// compact drops destroyed ghosts from the owner list.
func (p *Pool) compact() {
	kept := p.all[:0]
	for _, g := range p.all {
		if g.pool == p {
			kept = append(kept, g)
		}
	}
	clear(p.all[len(kept):])
	p.all = kept
}
