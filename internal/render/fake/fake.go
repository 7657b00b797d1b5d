// Package fake provides in-memory render doubles for tests and headless runs.
package fake

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// Surface records draw calls instead of rasterizing them.
type Surface struct {
	mu      sync.Mutex
	w, h    int
	closed  bool
	Clears  int
	Strokes int
	Fills   int
	Segs    int
	Dots    int
	Resizes int
	Last    render.Style
	// FailDraw makes the next Stroke or Fill fail.
	FailDraw error
}

func NewSurface(w, h int) *Surface { return &Surface{w: w, h: h} }

// Backend returns a render.Backend that hands out fake surfaces and keeps them
// in *out for inspection.
func Backend(out *[]*Surface) render.Backend {
	var mu sync.Mutex
	return func(w, h int) (render.Surface, error) {
		if w <= 0 || h <= 0 {
			return nil, errors.New("fake: invalid size")
		}
		s := NewSurface(w, h)
		if out != nil {
			mu.Lock()
			*out = append(*out, s)
			mu.Unlock()
		}
		return s, nil
	}
}

// Unavailable is a Backend that always fails, like a host with no GPU context.
func Unavailable(w, h int) (render.Surface, error) {
	return nil, errors.New("fake: no rendering context")
}

func (s *Surface) Size() render.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.Size{W: float64(s.w), H: float64(s.h)}
}

func (s *Surface) Resize(w, h int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return render.ErrSurfaceClosed
	}
	if w <= 0 || h <= 0 {
		return errors.New("fake: invalid size")
	}
	s.w, s.h = w, h
	s.Resizes++
	return nil
}

func (s *Surface) Clear() {
	s.mu.Lock()
	s.Clears++
	s.mu.Unlock()
}

func (s *Surface) Stroke(segs []render.Segment, st render.Style, _ float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.Strokes++
	s.Segs += len(segs)
	s.Last = st
	return nil
}

func (s *Surface) Fill(dots []render.Dot, st render.Style) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.Fills++
	s.Dots += len(dots)
	s.Last = st
	return nil
}

func (s *Surface) check() error {
	if s.closed {
		return render.ErrSurfaceClosed
	}
	if s.FailDraw != nil {
		err := s.FailDraw
		s.FailDraw = nil
		return err
	}
	return nil
}

// Image is a uniform image in the last used style color.
func (s *Surface) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	c := color.RGBA{
		R: uint8(s.Last.Color.R * 255),
		G: uint8(s.Last.Color.G * 255),
		B: uint8(s.Last.Color.B * 255),
		A: uint8(s.Last.Opacity * 255),
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func (s *Surface) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetFailDraw arms a one-shot draw failure.
func (s *Surface) SetFailDraw(err error) {
	s.mu.Lock()
	s.FailDraw = err
	s.mu.Unlock()
}

// Counts returns a consistent copy of the draw counters.
func (s *Surface) Counts() (clears, strokes, fills int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Clears, s.Strokes, s.Fills
}
