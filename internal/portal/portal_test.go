package portal

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmath "github.com/Faultbox/portalcam/pkg/math"
)

func TestLinkIsSymmetric(t *testing.T) {
	a, b, c := New("a"), New("b"), New("c")
	Link(a, b)
	require.Same(t, b, a.Linked())
	require.Same(t, a, b.Linked())

	Link(a, c)
	assert.Same(t, c, a.Linked())
	assert.Nil(t, b.Linked(), "previous partner must be released")

	Unlink(c)
	assert.Nil(t, a.Linked())
	assert.Nil(t, c.Linked())

	Link(a, a)
	assert.Nil(t, a.Linked(), "self links are ignored")
}

func TestIsWorkable(t *testing.T) {
	a, b := New("a"), New("b")
	assert.False(t, a.IsWorkable(), "unlinked")

	Link(a, b)
	assert.True(t, a.IsWorkable())

	b.Active = false
	assert.False(t, a.IsWorkable(), "inactive partner")
	b.Active = true

	a.Size = mgl32.Vec2{0, 1}
	assert.False(t, a.IsWorkable(), "zero size")

	var nilPortal *Portal
	assert.False(t, nilPortal.IsWorkable())
}

func TestPlaneAndForward(t *testing.T) {
	p := New("p")
	p.Position = mgl32.Vec3{0, 0, 5}
	p.Rotation = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})

	assert.True(t, pmath.ApproxEqualVec3(p.Forward(), mgl32.Vec3{1, 0, 0}, 1e-5))
	assert.True(t, pmath.ApproxEqualVec3(p.Outward(), mgl32.Vec3{-1, 0, 0}, 1e-5))
	assert.InDelta(t, 2, p.Plane().Distance(mgl32.Vec3{2, 3, 5}), 1e-5)
}

func TestBoundsAndClosestPoint(t *testing.T) {
	p := New("p")
	p.Position = mgl32.Vec3{0, 1, 0}
	b := p.Bounds()
	assert.True(t, pmath.ApproxEqualVec3(b.Min, mgl32.Vec3{-0.5, 0, -0.05}, 1e-5))
	assert.True(t, pmath.ApproxEqualVec3(b.Max, mgl32.Vec3{0.5, 2, 0.05}, 1e-5))

	far := mgl32.Vec3{3, 1, -4}
	assert.Equal(t, p.Position, p.ClosestPoint(far), "non-convex collider falls back to center")

	p.Collider.Convex = true
	assert.True(t, pmath.ApproxEqualVec3(p.ClosestPoint(far), mgl32.Vec3{0.5, 1, -0.05}, 1e-5))
}

func TestUnlinkedTransferIsIdentity(t *testing.T) {
	p := New("p")
	p.Position = mgl32.Vec3{4, 4, 4}
	pt := mgl32.Vec3{1, 2, 3}
	assert.Equal(t, pt, p.Transfer().Point(pt))
}

func TestInMask(t *testing.T) {
	p := New("p")
	p.Layer = 3
	assert.True(t, p.InMask(1<<3))
	assert.False(t, p.InMask(1<<2))
	p.Layer = 40
	assert.False(t, p.InMask(^uint32(0)))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, b, c := New("a"), New("b"), New("c")
	r.Add(a, b, c, a)
	require.Equal(t, 3, r.Len())

	b.Active = false
	assert.Equal(t, []*Portal{a, c}, r.AppendActive(nil))

	r.Remove(a)
	assert.Equal(t, []*Portal{b, c}, r.Portals())
	assert.Same(t, c, r.ByName("c"))
	assert.Nil(t, r.ByName("a"))

	r.Remove(b)
	r.Add(a)
	assert.Equal(t, []*Portal{c, a}, r.Portals())

	c.SetViewTexture(fakeTexture{})
	r.Clear()
	assert.Zero(t, r.Len())
	assert.Nil(t, c.ViewTexture())
}

type fakeTexture struct{}

func (fakeTexture) Size() (int, int) { return 1, 1 }

func TestCrossed(t *testing.T) {
	p := New("p")
	p.Position = mgl32.Vec3{0, 0, 5}

	assert.True(t, p.Crossed(mgl32.Vec3{0, 0, 4.9}, mgl32.Vec3{0, 0, 5.1}))
	assert.True(t, p.Crossed(mgl32.Vec3{0.4, 0.9, 4}, mgl32.Vec3{0.4, 0.9, 5}), "landing on the plane counts")
	assert.False(t, p.Crossed(mgl32.Vec3{0, 0, 5.1}, mgl32.Vec3{0, 0, 4.9}), "leaving through the back")
	assert.False(t, p.Crossed(mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0, 0, 4.5}), "short of the plane")
	assert.False(t, p.Crossed(mgl32.Vec3{0.6, 0, 4.9}, mgl32.Vec3{0.6, 0, 5.1}), "beside the opening")
	assert.False(t, p.Crossed(mgl32.Vec3{-1, 0, 4}, mgl32.Vec3{1, 0, 4}), "parallel to the plane")
}

func TestStraddles(t *testing.T) {
	p := New("p")
	p.Position = mgl32.Vec3{0, 0, 5}

	assert.True(t, p.Straddles(mgl32.Vec3{0, 0, 4.95}, 0.1))
	assert.True(t, p.Straddles(mgl32.Vec3{0.2, -0.5, 5.05}, 0.1))
	assert.False(t, p.Straddles(mgl32.Vec3{0, 0, 4.5}, 0.1))
	assert.False(t, p.Straddles(mgl32.Vec3{0, 1.5, 5}, 0.1))
}
