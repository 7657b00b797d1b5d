package sphere

import (
	"math"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

const (
	radius    = 2.0
	lineWidth = 1.0
)

// Builder makes a once-subdivided wireframe icosphere.
type Builder struct{}

func New() Builder { return Builder{} }

func (Builder) Kind() render.GeometryKind { return render.Sphere }

func (Builder) Rig(render.Spec) render.Rig {
	return render.Rig{
		Camera:   render.Vec3{Z: 5},
		IdleSpin: render.Euler{X: 0.5, Y: 0.5},
	}
}

func (Builder) Build(render.Spec) (render.Geometry, error) {
	verts, edges := icosphere(radius)
	return &Sphere{verts: verts, edges: edges}, nil
}

type Sphere struct {
	verts []render.Vec3
	edges [][2]int

	proj []render.Projected
	segs []render.Segment
	gone bool
}

func (s *Sphere) Kind() render.GeometryKind { return render.Sphere }

// Update is a no-op: the sphere only moves by rotation.
func (s *Sphere) Update(float64) {}

func (s *Sphere) Draw(dst render.Surface, cam *render.Camera, rot render.Euler, st render.Style) error {
	if s.gone {
		return render.ErrReleased
	}
	s.proj = render.ProjectVertices(cam, s.verts, rot, render.Vec3{}, s.proj)
	s.segs = render.EdgeSegments(s.edges, s.proj, s.segs[:0])
	return dst.Stroke(s.segs, st, lineWidth)
}

func (s *Sphere) Release() {
	s.verts, s.edges, s.proj, s.segs = nil, nil, nil, nil
	s.gone = true
}

// Vertices returns the base vertices; used by tests.
func (s *Sphere) Vertices() []render.Vec3 { return s.verts }

// icosphere returns an icosahedron with every face split into four, pushed out to r.
func icosphere(r float64) ([]render.Vec3, [][2]int) {
	p := (1 + math.Sqrt(5)) / 2
	verts := []render.Vec3{
		{X: -1, Y: p, Z: 0}, {X: 1, Y: p, Z: 0}, {X: -1, Y: -p, Z: 0}, {X: 1, Y: -p, Z: 0},
		{X: 0, Y: -1, Z: p}, {X: 0, Y: 1, Z: p}, {X: 0, Y: -1, Z: -p}, {X: 0, Y: 1, Z: -p},
		{X: p, Y: 0, Z: -1}, {X: p, Y: 0, Z: 1}, {X: -p, Y: 0, Z: -1}, {X: -p, Y: 0, Z: 1},
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}

	mid := map[[2]int]int{}
	midpoint := func(a, b int) int {
		k := [2]int{a, b}
		if a > b {
			k = [2]int{b, a}
		}
		if i, ok := mid[k]; ok {
			return i
		}
		verts = append(verts, render.ScaleV3(0.5, render.AddV3(verts[a], verts[b])))
		mid[k] = len(verts) - 1
		return len(verts) - 1
	}

	edgeSet := map[[2]int]struct{}{}
	var edges [][2]int
	addEdge := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		k := [2]int{a, b}
		if _, ok := edgeSet[k]; ok {
			return
		}
		edgeSet[k] = struct{}{}
		edges = append(edges, k)
	}

	for _, f := range faces {
		a, b, c := f[0], f[1], f[2]
		ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
		for _, t := range [][3]int{{a, ab, ca}, {b, bc, ab}, {c, ca, bc}, {ab, bc, ca}} {
			addEdge(t[0], t[1])
			addEdge(t[1], t[2])
			addEdge(t[2], t[0])
		}
	}
	for i := range verts {
		verts[i] = render.ScaleV3(r, render.NormV3(verts[i]))
	}
	return verts, edges
}
