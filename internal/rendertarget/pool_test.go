package rendertarget

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/portalcam/internal/portal"
)

func TestGetReusesMostRecent(t *testing.T) {
	p := New(Options{})
	a := p.Get(64, 32)
	b := p.Get(64, 32)
	require.NotNil(t, a)
	require.NotSame(t, a, b)
	assert.Equal(t, 2, p.InUse())

	p.Put(a)
	p.Put(b)
	assert.Same(t, b, p.Get(64, 32))
	assert.Same(t, a, p.Get(64, 32))
	assert.Equal(t, 2, p.Stats().Created)
}

func TestTargetsArePooledPerSize(t *testing.T) {
	p := New(Options{})
	small := p.Get(16, 16)
	p.Put(small)

	big := p.Get(32, 32)
	assert.NotSame(t, small, big)
	w, h := big.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 32, h)
	assert.Equal(t, 1, p.Stats().Free)
}

func TestPutIgnoresUnknownAndDoubleReturns(t *testing.T) {
	p := New(Options{})
	tex := p.Get(8, 8)
	p.Put(tex)
	p.Put(tex)
	p.Put(&Texture{ID: 99, Width: 8, Height: 8})
	p.Put(nil)

	s := p.Stats()
	assert.Zero(t, s.InUse)
	assert.Equal(t, 1, s.Free)
}

func TestDegenerateSizeIsClamped(t *testing.T) {
	p := New(Options{})
	w, h := p.Get(0, -4).Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestCreateFailureReturnsNil(t *testing.T) {
	p := New(Options{Create: func(w, h int) (portal.Texture, error) {
		return nil, errors.New("out of memory")
	}})
	assert.Nil(t, p.Get(4, 4))
	assert.Zero(t, p.InUse())
}

func TestTrimAndClear(t *testing.T) {
	var destroyed []portal.Texture
	p := New(Options{Destroy: func(t portal.Texture) { destroyed = append(destroyed, t) }})

	a := p.Get(4, 4)
	b := p.Get(4, 4)
	p.Put(a)

	assert.Equal(t, 1, p.Trim())
	assert.Equal(t, []portal.Texture{a}, destroyed)
	assert.Equal(t, 1, p.InUse())

	p.Clear()
	assert.Equal(t, []portal.Texture{a, b}, destroyed)
	assert.Zero(t, p.InUse())
	assert.Equal(t, Stats{Created: 2, Destroyed: 2}, p.Stats())

	// a destroyed target is no longer accepted
	p.Put(b)
	assert.Zero(t, p.Stats().Free)
}
