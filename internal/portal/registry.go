package portal

import "github.com/google/uuid"

// Registry is the set of portals present in a scene, in insertion order.
type Registry struct {
	portals []*Portal
	index   map[uuid.UUID]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[uuid.UUID]int)}
}

// Add registers portals. Portals already present are ignored.
func (r *Registry) Add(portals ...*Portal) {
	for _, p := range portals {
		if p == nil {
			continue
		}
		if _, ok := r.index[p.ID]; ok {
			continue
		}
		r.index[p.ID] = len(r.portals)
		r.portals = append(r.portals, p)
	}
}

// Remove unregisters p. Its link is left alone.
func (r *Registry) Remove(p *Portal) {
	i, ok := r.index[p.ID]
	if !ok {
		return
	}
	copy(r.portals[i:], r.portals[i+1:])
	r.portals[len(r.portals)-1] = nil
	r.portals = r.portals[:len(r.portals)-1]
	delete(r.index, p.ID)
	for j := i; j < len(r.portals); j++ {
		r.index[r.portals[j].ID] = j
	}
}

// Portals returns every registered portal. The slice must not be modified.
func (r *Registry) Portals() []*Portal {
	return r.portals
}

// AppendActive appends every active portal to dst and returns it.
func (r *Registry) AppendActive(dst []*Portal) []*Portal {
	for _, p := range r.portals {
		if p.Active {
			dst = append(dst, p)
		}
	}
	return dst
}

// ByName returns the first portal with the given name, or nil.
func (r *Registry) ByName(name string) *Portal {
	for _, p := range r.portals {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Len returns the number of registered portals.
func (r *Registry) Len() int {
	return len(r.portals)
}

// Clear drops every portal and detaches any view textures left on them.
func (r *Registry) Clear() {
	for _, p := range r.portals {
		p.SetViewTexture(nil)
	}
	r.portals = r.portals[:0]
	clear(r.index)
}
