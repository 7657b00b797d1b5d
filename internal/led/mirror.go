package led

import (
	"image"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/coreman2200/funtimes-backdrop/internal/layout"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
)

// Mirror shows one section's scene on an LED panel stack. Every panel gets
// the same downsampled image.
type Mirror struct {
	mu         sync.Mutex
	section    string
	layout     layout.Layout
	limiter    Limiter
	brightness float64
	gamma      float64
	drv        Driver
	log        zerolog.Logger

	small  *image.RGBA
	buf    []render.Color
	rgb    []byte
	frames uint64
}

func NewMirror(section string, l layout.Layout, lim Limiter, brightness float64, drv Driver, log zerolog.Logger) *Mirror {
	if brightness <= 0 || brightness > 1 {
		brightness = 1
	}
	return &Mirror{
		section:    section,
		layout:     l,
		limiter:    lim,
		brightness: brightness,
		drv:        drv,
		log:        log.With().Str("led", section).Logger(),
		small:      image.NewRGBA(image.Rect(0, 0, l.Dim.X, l.Dim.Y)),
		buf:        make([]render.Color, l.Count()),
		rgb:        make([]byte, l.Count()*3),
	}
}

// WriteFrame implements scene.Sink. Frames of other sections are ignored.
func (m *Mirror) WriteFrame(f scene.Frame) error {
	if f.Scene != m.section || f.Image == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	draw.ApproxBiLinear.Scale(m.small, m.small.Bounds(), f.Image, f.Image.Bounds(), draw.Src, nil)

	d := m.layout.Dim
	for z := 0; z < d.Z; z++ {
		for y := 0; y < d.Y; y++ {
			for x := 0; x < d.X; x++ {
				o := m.small.PixOffset(x, y)
				p := m.small.Pix[o : o+3 : o+3]
				m.buf[m.layout.Index(x, y, z)] = render.Color{
					R: float32(p[0]) / 255,
					G: float32(p[1]) / 255,
					B: float32(p[2]) / 255,
				}
			}
		}
	}
	Decode(m.buf, m.gamma)
	m.limiter.Apply(m.buf)
	b := float32(m.brightness)
	for i, c := range m.buf {
		m.rgb[i*3+0] = toByte(c.R * b)
		m.rgb[i*3+1] = toByte(c.G * b)
		m.rgb[i*3+2] = toByte(c.B * b)
	}
	m.frames++
	if m.drv == nil {
		return nil
	}
	return m.drv.Write(m.rgb)
}

func toByte(v float32) byte {
	return byte(math.Round(float64(min(max(v, 0), 1)) * 255))
}

// SetGamma sets the display gamma decoded before limiting.
func (m *Mirror) SetGamma(g float64) {
	m.mu.Lock()
	m.gamma = g
	m.mu.Unlock()
}

// Last returns a copy of the most recent RGB frame.
func (m *Mirror) Last() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.rgb...)
}

func (m *Mirror) Frames() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func (m *Mirror) Close() error {
	if m.drv == nil {
		return nil
	}
	m.log.Debug().Uint64("frames", m.Frames()).Msg("led mirror closed")
	return m.drv.Close()
}
