package traversal

import "go.uber.org/zap"

// SetupPortalsBeforeCameraRendering prepares node h for rendering. A non-root
// node gets its own render target, and the targets of its already rendered
// children are attached to their portal surfaces.
func (e *Engine) SetupPortalsBeforeCameraRendering(h Handle) {
	if e.state != Initialized || !e.Valid(h) {
		return
	}
	n := &e.nodes[h]
	if h != Root && n.target == nil && e.opts.Targets != nil {
		n.target = e.opts.Targets.Get(e.camera.targetSize())
	}
	for i := int32(0); i < n.childCount; i++ {
		c := &e.nodes[n.firstChild+Handle(i)]
		if c.target != nil {
			c.portal.SetViewTexture(c.target)
		}
	}
}

// SetupPortalsAfterCameraRendering detaches the targets of h's children from
// their portal surfaces and returns them to the pool.
func (e *Engine) SetupPortalsAfterCameraRendering(h Handle) {
	if e.state != Initialized || !e.Valid(h) {
		return
	}
	n := &e.nodes[h]
	for i := int32(0); i < n.childCount; i++ {
		e.releaseTarget(&e.nodes[n.firstChild+Handle(i)])
	}
}

func (e *Engine) releaseTarget(n *node) bool {
	if n.target == nil {
		return false
	}
	if n.portal != nil && n.portal.ViewTexture() == n.target {
		n.portal.SetViewTexture(nil)
	}
	if e.opts.Targets != nil {
		e.opts.Targets.Put(n.target)
	}
	n.target = nil
	return true
}

// Release returns every node to the arena and resets the root. It is safe to
// call at any point, including mid-enumeration or before Initialize.
func (e *Engine) Release() {
	leaked := 0
	for i := len(e.nodes) - 1; i >= 0; i-- {
		if e.releaseTarget(&e.nodes[i]) {
			leaked++
		}
		if i != int(Root) {
			e.nodes[i] = node{}
		}
	}
	if leaked > 0 {
		e.log.Warn("render targets reclaimed on release", zap.Int("count", leaked))
	}
	e.nodes = e.nodes[:1]
	e.nodes[Root].reset()
	e.work = e.work[:0]
	e.candidates = e.candidates[:0]
	e.Rewind()
	e.state = Uninitialized
}
