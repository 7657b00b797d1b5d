package cubes

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

const (
	DefaultCount  = 20
	DefaultExtent = 20.0
	lineWidth     = 1.0
)

var unitCube = []render.Vec3{
	{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
	{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
}

var cubeEdges = [][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Builder scatters wireframe unit cubes with random resting orientations.
type Builder struct{}

func New() Builder { return Builder{} }

func (Builder) Kind() render.GeometryKind { return render.Cubes }

func (Builder) Rig(render.Spec) render.Rig {
	return render.Rig{
		Camera:   render.Vec3{Z: 15},
		IdleSpin: render.Euler{X: 1, Y: 1},
	}
}

func (Builder) Build(spec render.Spec) (render.Geometry, error) {
	n := spec.Count
	if n <= 0 {
		n = DefaultCount
	}
	ext := spec.Extent
	if ext <= 0 {
		ext = DefaultExtent
	}
	rng := rand.New(rand.NewSource(spec.Seed))
	g := &Cubes{items: make([]cube, n)}
	for i := range g.items {
		g.items[i] = cube{
			at: render.Vec3{
				X: (rng.Float64() - 0.5) * ext,
				Y: (rng.Float64() - 0.5) * ext,
				Z: (rng.Float64() - 0.5) * ext,
			},
			rest: render.Euler{X: rng.Float64() * math.Pi, Y: rng.Float64() * math.Pi},
		}
	}
	return g, nil
}

type cube struct {
	at   render.Vec3
	rest render.Euler
}

// Cubes rotates every cube about its own center by the scene orientation.
type Cubes struct {
	items []cube

	proj []render.Projected
	segs []render.Segment
	gone bool
}

func (c *Cubes) Kind() render.GeometryKind { return render.Cubes }

func (c *Cubes) Update(float64) {}

func (c *Cubes) Len() int { return len(c.items) }

func (c *Cubes) Draw(dst render.Surface, cam *render.Camera, rot render.Euler, st render.Style) error {
	if c.gone {
		return render.ErrReleased
	}
	c.segs = c.segs[:0]
	for _, it := range c.items {
		c.proj = render.ProjectVertices(cam, unitCube, render.AddEuler(it.rest, rot), it.at, c.proj)
		c.segs = render.EdgeSegments(cubeEdges, c.proj, c.segs)
	}
	return dst.Stroke(c.segs, st, lineWidth)
}

func (c *Cubes) Release() {
	c.items, c.proj, c.segs = nil, nil, nil
	c.gone = true
}
