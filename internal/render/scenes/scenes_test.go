package scenes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/render/fake"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/cubes"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/particles"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/sphere"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/waves"
)

var style = render.Style{Color: render.Color{R: 1}, Opacity: 0.5}

// draw builds k, draws it once from its rig camera and returns the surface.
func draw(t *testing.T, k render.GeometryKind, spec render.Spec) (render.Geometry, *fake.Surface) {
	t.Helper()
	g, rig, err := scenes.Registry().Build(k, spec)
	require.NoError(t, err)
	s := fake.NewSurface(400, 400)
	cam := render.NewCamera(rig.Camera, s.Size())
	require.NoError(t, g.Draw(s, cam, render.Euler{}, style))
	return g, s
}

func TestRegistryHasEveryKind(t *testing.T) {
	assert.ElementsMatch(t, render.Kinds(), scenes.Registry().List())
}

func TestSphere(t *testing.T) {
	g, s := draw(t, render.Sphere, render.Spec{})
	sp := g.(*sphere.Sphere)
	assert.Len(t, sp.Vertices(), 42)
	for _, v := range sp.Vertices() {
		assert.InDelta(t, 2, render.LenV3(v), 1e-9)
	}
	assert.Equal(t, 120, s.Segs)
	assert.Equal(t, style, s.Last)
}

func TestCubes(t *testing.T) {
	g, s := draw(t, render.Cubes, render.Spec{Seed: 2})
	assert.Equal(t, cubes.DefaultCount, g.(*cubes.Cubes).Len())
	assert.Equal(t, cubes.DefaultCount*12, s.Segs)

	g, _ = draw(t, render.Cubes, render.Spec{Count: 3})
	assert.Equal(t, 3, g.(*cubes.Cubes).Len())
}

func TestWavesDisplacementIsPure(t *testing.T) {
	a, s := draw(t, render.Waves, render.Spec{})
	b, _ := draw(t, render.Waves, render.Spec{})
	assert.Equal(t, 2*waves.Segments*(waves.Segments+1), s.Segs)

	a.Update(1.5)
	b.Update(0.3)
	b.Update(7)
	b.Update(1.5)
	va, vb := a.(*waves.Waves).Vertices(), b.(*waves.Waves).Vertices()
	assert.Equal(t, va, vb)

	v := va[0]
	assert.InDelta(t, waves.Floor+waves.Height(v.X, v.Z, 1.5), v.Y, 1e-12)
}

func TestParticlesSeeded(t *testing.T) {
	spec := render.Spec{Count: 1500, Seed: 3, VertexColors: true}
	a, s := draw(t, render.Particles, spec)
	b, _ := draw(t, render.Particles, spec)
	pa, pb := a.(*particles.Particles), b.(*particles.Particles)
	assert.Equal(t, 1500, pa.Len())
	assert.Equal(t, pa.Vertices(), pb.Vertices())
	assert.Equal(t, 1500, s.Dots)

	c, _ := draw(t, render.Particles, render.Spec{Count: 1500, Seed: 4})
	assert.NotEqual(t, pa.Vertices(), c.(*particles.Particles).Vertices())

	pa.Update(2)
	pb.Update(2)
	assert.Equal(t, pa.Vertices(), pb.Vertices())
}

func TestParticlesZeroCountIsEmpty(t *testing.T) {
	g, s := draw(t, render.Particles, render.Spec{})
	assert.Zero(t, g.(*particles.Particles).Len())
	assert.Zero(t, s.Dots)
	assert.Equal(t, 1, s.Fills)
}

func TestReleasedGeometryRefusesDraw(t *testing.T) {
	for _, k := range render.Kinds() {
		g, _ := draw(t, k, render.Spec{Count: 10})
		g.Release()
		err := g.Draw(fake.NewSurface(10, 10), render.NewCamera(render.Vec3{Z: 5}, render.Size{W: 10, H: 10}), render.Euler{}, style)
		assert.ErrorIs(t, err, render.ErrReleased, k)
	}
}
