package waves

import (
	"math"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

const (
	DefaultExtent = 100.0
	Segments      = 50
	Floor         = -10.0
	Amplitude     = 2.0
	Frequency     = 0.3
	lineWidth     = 1.0
)

// Builder makes a wireframe grid on the XZ plane whose height travels as a wave.
type Builder struct{}

func New() Builder { return Builder{} }

func (Builder) Kind() render.GeometryKind { return render.Waves }

func (Builder) Rig(render.Spec) render.Rig {
	return render.Rig{Camera: render.Vec3{Y: 20, Z: 50}}
}

func (Builder) Build(spec render.Spec) (render.Geometry, error) {
	ext := spec.Extent
	if ext <= 0 {
		ext = DefaultExtent
	}
	side := Segments + 1
	w := &Waves{
		base:  make([]render.Vec3, side*side),
		verts: make([]render.Vec3, side*side),
	}
	step := ext / Segments
	for iz := 0; iz < side; iz++ {
		for ix := 0; ix < side; ix++ {
			w.base[iz*side+ix] = render.Vec3{
				X: -ext/2 + float64(ix)*step,
				Y: Floor,
				Z: -ext/2 + float64(iz)*step,
			}
		}
	}
	for iz := 0; iz < side; iz++ {
		for ix := 0; ix < side; ix++ {
			i := iz*side + ix
			if ix+1 < side {
				w.edges = append(w.edges, [2]int{i, i + 1})
			}
			if iz+1 < side {
				w.edges = append(w.edges, [2]int{i, i + side})
			}
		}
	}
	copy(w.verts, w.base)
	return w, nil
}

// Height is the displacement of a grid point at (x, z) and time t.
func Height(x, z, t float64) float64 {
	return math.Sin((x+t)*Frequency) * math.Cos((z+t)*Frequency) * Amplitude
}

type Waves struct {
	base  []render.Vec3
	verts []render.Vec3
	edges [][2]int

	proj []render.Projected
	segs []render.Segment
	gone bool
}

func (w *Waves) Kind() render.GeometryKind { return render.Waves }

// Update recomputes every vertex from its base position; nothing carries over
// between calls.
func (w *Waves) Update(t float64) {
	for i, b := range w.base {
		w.verts[i] = render.Vec3{X: b.X, Y: b.Y + Height(b.X, b.Z, t), Z: b.Z}
	}
}

func (w *Waves) Draw(dst render.Surface, cam *render.Camera, rot render.Euler, st render.Style) error {
	if w.gone {
		return render.ErrReleased
	}
	w.proj = render.ProjectVertices(cam, w.verts, rot, render.Vec3{}, w.proj)
	w.segs = render.EdgeSegments(w.edges, w.proj, w.segs[:0])
	return dst.Stroke(w.segs, st, lineWidth)
}

func (w *Waves) Release() {
	w.base, w.verts, w.edges, w.proj, w.segs = nil, nil, nil, nil, nil
	w.gone = true
}

// Vertices exposes the current displaced vertices.
func (w *Waves) Vertices() []render.Vec3 { return w.verts }
