package render

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHex(t *testing.T) {
	c, err := Hex("#6366f1")
	require.NoError(t, err)
	assert.InDelta(t, float32(0x63)/255, c.R, 1e-6)
	assert.InDelta(t, float32(0x66)/255, c.G, 1e-6)
	assert.InDelta(t, float32(0xf1)/255, c.B, 1e-6)

	_, err = Hex("4338ca")
	assert.NoError(t, err)
	for _, bad := range []string{"", "#123", "zzzzzz", "#6366f1ff"} {
		_, err := Hex(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseTheme(t *testing.T) {
	th, err := ParseTheme(" DARK ")
	require.NoError(t, err)
	assert.Equal(t, Dark, th)
	assert.Equal(t, Light, th.Other())
	assert.Equal(t, Dark, Light.Other())

	_, err = ParseTheme("sepia")
	assert.Error(t, err)
}

func TestPaletteFor(t *testing.T) {
	p := Palette{Light: Color{R: 1}, Dark: Color{B: 1}}
	assert.Equal(t, Color{R: 1}, p.For(Light))
	assert.Equal(t, Color{B: 1}, p.For(Dark))
	assert.Equal(t, Color{B: 1}, p.For(Theme("unset")))
}

func TestRotate(t *testing.T) {
	v := Rotate(Vec3{X: 1}, Euler{Z: math.Pi / 2})
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, 1, v.Y, 1e-9)

	v = Rotate(Vec3{X: 1}, Euler{Y: math.Pi / 2})
	assert.InDelta(t, 0, v.X, 1e-9)
	assert.InDelta(t, -1, v.Z, 1e-9)

	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, Rotate(Vec3{X: 1, Y: 2, Z: 3}, Euler{}))
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera(Vec3{Z: 5}, Size{W: 100, H: 100})
	assert.Equal(t, 1.0, cam.Aspect)

	x, y, s, ok := cam.Project(Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 50, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.Greater(t, s, 0.0)

	// y grows downwards on the surface
	_, y, _, ok = cam.Project(Vec3{Y: 1})
	require.True(t, ok)
	assert.Less(t, y, 50.0)

	_, _, _, ok = cam.Project(Vec3{Z: 10})
	assert.False(t, ok, "behind the camera")
}

func TestCameraViewport(t *testing.T) {
	cam := NewCamera(Vec3{Z: 5}, Size{W: 200, H: 100})
	assert.Equal(t, 2.0, cam.Aspect)

	cam.SetViewport(Size{W: 0, H: 50})
	assert.Equal(t, Size{W: 200, H: 100}, cam.Viewport())

	cam.SetViewport(Size{W: 50, H: 100})
	assert.Equal(t, 0.5, cam.Aspect)
	x, _, _, _ := cam.Project(Vec3{})
	assert.InDelta(t, 25, x, 1e-9)
}

func TestEdgeSegmentsSkipsHidden(t *testing.T) {
	cam := NewCamera(Vec3{Z: 5}, Size{W: 100, H: 100})
	pts := ProjectVertices(cam, []Vec3{{X: -1}, {X: 1}, {Z: 10}}, Euler{}, Vec3{}, nil)
	require.Len(t, pts, 3)
	assert.False(t, pts[2].Ok)

	segs := EdgeSegments([][2]int{{0, 1}, {1, 2}, {2, 0}}, pts, nil)
	require.Len(t, segs, 1)
	assert.Less(t, segs[0].A.X, segs[0].B.X)
}

func TestProjectVerticesReusesBuffer(t *testing.T) {
	cam := NewCamera(Vec3{Z: 5}, Size{W: 10, H: 10})
	buf := make([]Projected, 0, 8)
	out := ProjectVertices(cam, []Vec3{{}, {X: 1}}, Euler{}, Vec3{}, buf)
	assert.Len(t, out, 2)
	assert.Equal(t, 8, cap(out))
}

type stubBuilder struct{ err error }

func (stubBuilder) Kind() GeometryKind { return Sphere }
func (stubBuilder) Rig(Spec) Rig       { return Rig{Camera: Vec3{Z: 1}} }
func (b stubBuilder) Build(Spec) (Geometry, error) {
	return nil, b.err
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	assert.Empty(t, r.List())

	_, _, err := r.Build(Cubes, Spec{})
	assert.Error(t, err)

	boom := errors.New("boom")
	r.Register(stubBuilder{err: boom})
	assert.Equal(t, []GeometryKind{Sphere}, r.List())
	_, _, err = r.Build(Sphere, Spec{})
	assert.ErrorIs(t, err, boom)
}

func TestGeometryKindValid(t *testing.T) {
	for _, k := range Kinds() {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, GeometryKind("torus").Valid())
	assert.True(t, Size{W: 1, H: 1}.Valid())
	assert.False(t, Size{W: 1}.Valid())
}
