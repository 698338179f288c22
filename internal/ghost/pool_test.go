package ghost

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/portalcam/internal/portal"
)

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }

func newTestPool() (*Pool, *fakeClock, *[]*Ghost) {
	clk := &fakeClock{}
	var destroyed []*Ghost
	p := New(Options{
		Clock:     clk.Now,
		OnDestroy: func(g *Ghost) { destroyed = append(destroyed, g) },
	})
	return p, clk, &destroyed
}

func sampleBody() *RigidBody {
	return &RigidBody{
		Mass:            3,
		Drag:            0.2,
		Velocity:        mgl32.Vec3{1, 2, 3},
		AngularVelocity: mgl32.Vec3{0, 1, 0},
		UseGravity:      true,
		Constraints:     FreezeRotation,
		Detection:       Continuous,
	}
}

func TestAcquireMirrorsSource(t *testing.T) {
	p, _, _ := newTestPool()
	src := sampleBody()

	g, err := p.AcquireRigidBody(src)
	require.NoError(t, err)
	assert.Equal(t, KindRigidBody, g.Kind)
	assert.Same(t, src, g.Source)
	assert.True(t, g.Active)
	assert.Equal(t, InUse, g.LastUsed)
	assert.Equal(t, *src, g.Body)

	// the ghost owns a copy
	src.Mass = 10
	assert.Equal(t, float32(3), g.Body.Mass)
}

func TestAcquireCollidersByShape(t *testing.T) {
	mat := &Material{Name: "ice", DynamicFriction: 0.02}
	tests := []struct {
		name  string
		src   *Collider
		kind  Kind
		check func(t *testing.T, c Collider)
	}{
		{
			name: "box",
			src:  &Collider{Shape: ShapeBox, Size: mgl32.Vec3{2, 3, 4}, Center: mgl32.Vec3{0, 1, 0}, Material: mat},
			kind: KindBox,
			check: func(t *testing.T, c Collider) {
				assert.Equal(t, mgl32.Vec3{2, 3, 4}, c.Size)
				assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Center)
				assert.Same(t, mat, c.Material)
			},
		},
		{
			name: "capsule",
			src:  &Collider{Shape: ShapeCapsule, Radius: 0.3, Height: 1.8, Direction: 2, IsTrigger: true},
			kind: KindCapsule,
			check: func(t *testing.T, c Collider) {
				assert.Equal(t, float32(0.3), c.Radius)
				assert.Equal(t, float32(1.8), c.Height)
				assert.Equal(t, 2, c.Direction)
				assert.True(t, c.IsTrigger)
			},
		},
		{
			name: "mesh",
			src:  &Collider{Shape: ShapeMesh, Mesh: "crate.obj", Convex: true, ContactOffset: 0.02},
			kind: KindMesh,
			check: func(t *testing.T, c Collider) {
				assert.Equal(t, "crate.obj", c.Mesh)
				assert.True(t, c.Convex)
				assert.Equal(t, float32(0.02), c.ContactOffset)
			},
		},
		{
			name: "sphere",
			src:  &Collider{Shape: ShapeSphere, Radius: 1.5, Size: mgl32.Vec3{9, 9, 9}},
			kind: KindSphere,
			check: func(t *testing.T, c Collider) {
				assert.Equal(t, float32(1.5), c.Radius)
				assert.Equal(t, mgl32.Vec3{}, c.Size, "box fields are not copied onto a sphere")
			},
		},
	}

	p, _, _ := newTestPool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := p.AcquireCollider(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, g.Kind)
			assert.Equal(t, tt.src.Shape, g.Collider.Shape)
			tt.check(t, g.Collider)
		})
	}
}

func TestAcquireRejectsMismatchedSource(t *testing.T) {
	p, _, _ := newTestPool()

	_, err := p.Acquire(KindBox, sampleBody())
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = p.Acquire(KindRigidBody, &Collider{Shape: ShapeSphere})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = p.Acquire(Kind(42), sampleBody())
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = p.Acquire(KindSphere, nil)
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = p.AcquireCollider(nil)
	assert.ErrorIs(t, err, ErrKindMismatch)

	assert.Zero(t, p.Stats().Created)
}

func TestReleaseResetsGhost(t *testing.T) {
	p, clk, _ := newTestPool()
	pt := portal.New("a")

	g, err := p.AcquireCollider(&Collider{Shape: ShapeBox, Size: mgl32.Vec3{5, 5, 5}, IsTrigger: true})
	require.NoError(t, err)
	parent := &Transform{}
	g.Attach(pt, parent, mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(1, mgl32.Vec3{0, 1, 0}))

	clk.now = 3 * time.Second
	require.NoError(t, p.Release(g))

	assert.False(t, g.Active)
	assert.Nil(t, g.Source)
	assert.Nil(t, g.AttachedPortal)
	assert.Same(t, p.Root(), g.Transform.Parent)
	assert.Equal(t, mgl32.Vec3{}, g.Transform.Position)
	assert.Equal(t, mgl32.QuatIdent(), g.Transform.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, g.Collider.Size)
	assert.False(t, g.Collider.IsTrigger)
	assert.Equal(t, 3*time.Second, g.LastUsed)
	assert.Equal(t, 1, p.Idle(KindBox))

	// releasing twice is harmless
	require.NoError(t, p.Release(g))
	assert.Equal(t, 1, p.Idle(KindBox))
	assert.NoError(t, p.Release(nil))
}

func TestReleaseForeignGhost(t *testing.T) {
	p, _, _ := newTestPool()
	other, _, _ := newTestPool()

	g, err := other.AcquireRigidBody(sampleBody())
	require.NoError(t, err)
	assert.ErrorIs(t, p.Release(g), ErrForeignGhost)

	err = p.CollectAndReset([]*Ghost{g})
	assert.ErrorIs(t, err, ErrForeignGhost)
	assert.True(t, g.Active, "foreign ghost is left alone")
}

func TestReuseWithinFrame(t *testing.T) {
	p, _, _ := newTestPool()
	const n = 8

	first := make([]*Ghost, n)
	for i := range first {
		g, err := p.AcquireRigidBody(sampleBody())
		require.NoError(t, err)
		first[i] = g
	}
	require.NoError(t, p.CollectAndReset(first))

	seen := map[*Ghost]bool{}
	for _, g := range first {
		seen[g] = true
	}
	for i := 0; i < n; i++ {
		g, err := p.AcquireRigidBody(sampleBody())
		require.NoError(t, err)
		assert.True(t, seen[g], "acquisition %d constructed a new ghost", i)
		delete(seen, g)
	}

	s := p.Stats()
	assert.Equal(t, n, s.Created)
	assert.Equal(t, n, s.Reused)
	assert.Equal(t, n, s.Active)
}

func TestReuseIsLIFO(t *testing.T) {
	p, _, _ := newTestPool()
	a, _ := p.AcquireCollider(&Collider{Shape: ShapeSphere, Radius: 1})
	b, _ := p.AcquireCollider(&Collider{Shape: ShapeSphere, Radius: 2})
	require.NoError(t, p.Release(a))
	require.NoError(t, p.Release(b))

	g, err := p.AcquireCollider(&Collider{Shape: ShapeSphere, Radius: 3})
	require.NoError(t, err)
	assert.Same(t, b, g)
	assert.Equal(t, float32(3), g.Collider.Radius)
}

func TestFreeListsArePerKind(t *testing.T) {
	p, _, _ := newTestPool()
	box, _ := p.AcquireCollider(&Collider{Shape: ShapeBox})
	require.NoError(t, p.Release(box))

	sphere, err := p.AcquireCollider(&Collider{Shape: ShapeSphere})
	require.NoError(t, err)
	assert.NotSame(t, box, sphere)
	assert.Equal(t, 1, p.Idle(KindBox))
}

func TestDestroyIdleZeroDestroysEverythingIdle(t *testing.T) {
	p, _, destroyed := newTestPool()

	var gs []*Ghost
	for i := 0; i < 3; i++ {
		g, err := p.AcquireCollider(&Collider{Shape: ShapeCapsule})
		require.NoError(t, err)
		gs = append(gs, g)
	}
	require.NoError(t, p.CollectAndReset(gs))

	assert.Equal(t, 3, p.DestroyIdle(0))
	assert.Len(t, *destroyed, 3)
	for _, g := range gs {
		assert.False(t, g.Owned())
	}

	g, err := p.AcquireCollider(&Collider{Shape: ShapeCapsule})
	require.NoError(t, err)
	for _, old := range gs {
		assert.NotSame(t, old, g, "destroyed ghost came back")
	}
	assert.Equal(t, 4, p.Stats().Created)

	// destroyed ghosts are no longer ours
	assert.ErrorIs(t, p.Release(gs[0]), ErrForeignGhost)
}

func TestDestroyIdleHonoursMaxIdle(t *testing.T) {
	p, clk, _ := newTestPool()

	old, _ := p.AcquireRigidBody(sampleBody())
	fresh, _ := p.AcquireRigidBody(sampleBody())
	busy, _ := p.AcquireRigidBody(sampleBody())

	clk.now = time.Second
	require.NoError(t, p.Release(old))
	clk.now = 5 * time.Second
	require.NoError(t, p.Release(fresh))

	clk.now = 7 * time.Second
	assert.Equal(t, 1, p.DestroyIdle(3*time.Second))
	assert.False(t, old.Owned())
	assert.True(t, fresh.Owned())
	assert.True(t, busy.Owned())
	assert.True(t, busy.Active)

	s := p.Stats()
	assert.Equal(t, 1, s.Idle)
	assert.Equal(t, 1, s.Active)
	assert.Equal(t, 1, s.Destroyed)
}

func TestClearDestroysActiveGhosts(t *testing.T) {
	p, _, destroyed := newTestPool()

	a, _ := p.AcquireRigidBody(sampleBody())
	b, _ := p.AcquireCollider(&Collider{Shape: ShapeMesh, Mesh: "rock"})
	require.NoError(t, p.Release(b))

	p.Clear()
	assert.Len(t, *destroyed, 2)
	assert.False(t, a.Active)
	assert.Nil(t, a.Source)
	assert.Zero(t, p.Stats().Idle)
	assert.Zero(t, p.Stats().Active)

	assert.NotPanics(t, p.Clear)
}

func TestSourceIsNilExactlyWhenIdle(t *testing.T) {
	p, _, _ := newTestPool()
	var gs []*Ghost
	for _, k := range Kinds() {
		var src Source
		if k == KindRigidBody {
			src = sampleBody()
		} else {
			src = &Collider{Shape: Shape(k - KindBox)}
		}
		g, err := p.Acquire(k, src)
		require.NoError(t, err, k.String())
		gs = append(gs, g)
	}
	require.NoError(t, p.Release(gs[1]))
	require.NoError(t, p.Release(gs[3]))

	for _, g := range gs {
		assert.Equal(t, g.Active, g.Source != nil, "ghost %s", g.Kind)
	}
}
