package particles

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

const (
	DefaultExtent = 50.0
	// Size is the world-space diameter of one particle.
	Size = 0.2
	// Drift is the amplitude of the vertical float of each particle.
	Drift = 0.3
)

// Builder scatters spec.Count particles in a cube of side Extent. A count of
// zero builds an empty cloud that draws nothing.
type Builder struct{}

func New() Builder { return Builder{} }

func (Builder) Kind() render.GeometryKind { return render.Particles }

// Rig keeps the camera at a fixed fraction of the cloud size so every preset
// is framed the same way.
func (Builder) Rig(spec render.Spec) render.Rig {
	ext := spec.Extent
	if ext <= 0 {
		ext = DefaultExtent
	}
	return render.Rig{
		Camera:   render.Vec3{Z: ext * 0.6},
		IdleSpin: render.Euler{X: 0.05, Y: 0.05},
	}
}

func (Builder) Build(spec render.Spec) (render.Geometry, error) {
	n := spec.Count
	if n < 0 {
		n = 0
	}
	ext := spec.Extent
	if ext <= 0 {
		ext = DefaultExtent
	}
	rng := rand.New(rand.NewSource(spec.Seed))
	p := &Particles{
		base:  make([]render.Vec3, n),
		verts: make([]render.Vec3, n),
	}
	for i := range p.base {
		p.base[i] = render.Vec3{
			X: (rng.Float64() - 0.5) * ext,
			Y: (rng.Float64() - 0.5) * ext,
			Z: (rng.Float64() - 0.5) * ext,
		}
	}
	if spec.VertexColors {
		p.colors = make([]render.Color, n)
		for i := range p.colors {
			p.colors[i] = render.Color{R: rng.Float32(), G: rng.Float32(), B: rng.Float32()}
		}
	}
	copy(p.verts, p.base)
	return p, nil
}

type Particles struct {
	base   []render.Vec3
	verts  []render.Vec3
	colors []render.Color

	proj []render.Projected
	dots []render.Dot
	gone bool
}

func (p *Particles) Kind() render.GeometryKind { return render.Particles }

func (p *Particles) Len() int { return len(p.base) }

// Update floats each particle vertically; the phase comes from its base position.
func (p *Particles) Update(t float64) {
	for i, b := range p.base {
		p.verts[i] = render.Vec3{X: b.X, Y: b.Y + Drift*math.Sin(t+0.1*b.X+0.1*b.Z), Z: b.Z}
	}
}

func (p *Particles) Draw(dst render.Surface, cam *render.Camera, rot render.Euler, st render.Style) error {
	if p.gone {
		return render.ErrReleased
	}
	p.proj = render.ProjectVertices(cam, p.verts, rot, render.Vec3{}, p.proj)
	p.dots = p.dots[:0]
	for i, pt := range p.proj {
		if !pt.Ok {
			continue
		}
		d := render.Dot{P: pt.P, R: math.Max(0.5, Size*pt.Scale/2)}
		if p.colors != nil {
			d.Color = &p.colors[i]
		}
		p.dots = append(p.dots, d)
	}
	return dst.Fill(p.dots, st)
}

func (p *Particles) Release() {
	p.base, p.verts, p.colors, p.proj, p.dots = nil, nil, nil, nil, nil
	p.gone = true
}

// Vertices exposes the current displaced positions.
func (p *Particles) Vertices() []render.Vec3 { return p.verts }
