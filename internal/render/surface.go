package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// Segment is a line between two surface points.
type Segment struct{ A, B Vec2 }

// Dot is a filled disc. A nil Color uses the style color.
type Dot struct {
	P     Vec2
	R     float64
	Color *Color
}

// Surface is the drawable target a scene renders into, sized to its container.
type Surface interface {
	Size() Size
	Resize(w, h int) error
	Clear()
	Stroke(segs []Segment, st Style, width float64) error
	Fill(dots []Dot, st Style) error
	Image() image.Image
	Close() error
}

// Backend creates surfaces. It fails when no rendering context is available.
type Backend func(w, h int) (Surface, error)

var ErrSurfaceClosed = errors.New("surface closed")

// Canvas is the software Surface backed by a gg drawing context.
type Canvas struct {
	dc     *gg.Context
	closed bool
}

// NewCanvas is the default Backend.
func NewCanvas(w, h int) (Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", w, h)
	}
	return &Canvas{dc: gg.NewContext(w, h)}, nil
}

func (c *Canvas) Size() Size {
	return Size{W: float64(c.dc.Width()), H: float64(c.dc.Height())}
}

func (c *Canvas) Resize(w, h int) error {
	if c.closed {
		return ErrSurfaceClosed
	}
	return c.dc.Resize(w, h)
}

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	if c.closed {
		return
	}
	c.dc.ClearWithColor(gg.RGBA{})
}

func (c *Canvas) Stroke(segs []Segment, st Style, width float64) error {
	if c.closed {
		return ErrSurfaceClosed
	}
	if len(segs) == 0 {
		return nil
	}
	c.dc.SetRGBA(float64(st.Color.R), float64(st.Color.G), float64(st.Color.B), st.Opacity)
	c.dc.SetLineWidth(width)
	for _, s := range segs {
		c.dc.MoveTo(s.A.X, s.A.Y)
		c.dc.LineTo(s.B.X, s.B.Y)
	}
	return c.dc.Stroke()
}

func (c *Canvas) Fill(dots []Dot, st Style) error {
	if c.closed {
		return ErrSurfaceClosed
	}
	shared := dots[:0:0]
	for _, d := range dots {
		if d.Color == nil {
			shared = append(shared, d)
			continue
		}
		c.dc.SetRGBA(float64(d.Color.R), float64(d.Color.G), float64(d.Color.B), st.Opacity)
		c.dc.DrawCircle(d.P.X, d.P.Y, d.R)
		if err := c.dc.Fill(); err != nil {
			return err
		}
	}
	if len(shared) == 0 {
		return nil
	}
	c.dc.SetRGBA(float64(st.Color.R), float64(st.Color.G), float64(st.Color.B), st.Opacity)
	for _, d := range shared {
		c.dc.NewSubPath()
		c.dc.DrawCircle(d.P.X, d.P.Y, d.R)
	}
	return c.dc.Fill()
}

func (c *Canvas) Image() image.Image { return c.dc.Image() }

// Close releases the drawing context. It is idempotent.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.dc.Close()
}
