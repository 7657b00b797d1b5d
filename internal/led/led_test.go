package led

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
	"github.com/coreman2200/funtimes-backdrop/internal/layout"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
)

// estCurrent uses the same model as the limiter.
func estCurrent(buf []render.Color, chanmA float32) float64 {
	total := 0.0
	for i := range buf {
		total += float64((buf[i].R + buf[i].G + buf[i].B) * chanmA)
	}
	return total
}

func TestLimiterBudgetClamp(t *testing.T) {
	buf := make([]render.Color, 10)
	for i := range buf {
		buf[i] = render.Color{R: 1, G: 1, B: 1}
	}
	l := Limiter{WhiteCap: 3, ChanmA: 20, BudgetmA: 300, Knee: 0.9}

	// 10 * 60 mA before limiting
	s := l.Apply(buf)
	assert.InDelta(t, 0.5, s, 1e-6)
	assert.LessOrEqual(t, estCurrent(buf, 20), 300.1)
}

func TestLimiterWhiteCap(t *testing.T) {
	buf := []render.Color{{R: 1, G: 1, B: 1}}
	Limiter{WhiteCap: 1.5}.Apply(buf)
	assert.InDelta(t, 1.5, buf[0].R+buf[0].G+buf[0].B, 1e-4)
}

func TestLimiterUnderKnee(t *testing.T) {
	buf := []render.Color{{R: 0.1}}
	assert.Equal(t, float32(1), NewLimiter(config.PowerCfg{LimitAmps: 4}).Apply(buf))
	assert.Equal(t, float32(0.1), buf[0].R)
}

type recordDriver struct {
	frames [][]byte
	closed bool
	err    error
}

func (r *recordDriver) Write(rgb []byte) error {
	r.frames = append(r.frames, append([]byte(nil), rgb...))
	return r.err
}

func (r *recordDriver) Close() error { r.closed = true; return nil }

func solid(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestMirrorDownsamples(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 4, Y: 2, Z: 2}, Order: layout.Serpentine{XFlipEveryRow: true}}
	drv := &recordDriver{}
	m := NewMirror("hero", l, Limiter{WhiteCap: 3}, 1, drv, zerolog.Nop())

	require.NoError(t, m.WriteFrame(scene.Frame{Scene: "skills", Image: solid(8, 8, color.RGBA{G: 255, A: 255})}))
	assert.Empty(t, drv.frames)

	require.NoError(t, m.WriteFrame(scene.Frame{Scene: "hero", Image: solid(40, 20, color.RGBA{R: 255, B: 128, A: 255})}))
	require.Len(t, drv.frames, 1)
	got := drv.frames[0]
	require.Len(t, got, l.Count()*3)
	for i := 0; i < l.Count(); i++ {
		assert.Equal(t, []byte{255, 0, 128}, got[i*3:i*3+3])
	}
	assert.Equal(t, uint64(1), m.Frames())

	require.NoError(t, m.Close())
	assert.True(t, drv.closed)
}

func TestMirrorAppliesBrightnessAndLimiter(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 2, Y: 2, Z: 1}}
	m := NewMirror("hero", l, Limiter{WhiteCap: 1.5}, 0.5, nil, zerolog.Nop())
	require.NoError(t, m.WriteFrame(scene.Frame{Scene: "hero", Image: solid(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})}))
	// white capped to half, then half brightness
	for _, v := range m.Last() {
		assert.Equal(t, byte(64), v)
	}
}

func TestMirrorDecodesGamma(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 1, Y: 1, Z: 1}}
	m := NewMirror("hero", l, Limiter{}, 1, nil, zerolog.Nop())
	m.SetGamma(2)
	require.NoError(t, m.WriteFrame(scene.Frame{Scene: "hero", Image: solid(2, 2, color.RGBA{R: 255, G: 128, B: 0, A: 255})}))
	assert.Equal(t, []byte{255, 64, 0}, m.Last())
}

func TestDecodeIgnoresLinearGamma(t *testing.T) {
	buf := []render.Color{{R: 0.5, G: 0.25, B: 1}}
	Decode(buf, 1)
	assert.Equal(t, render.Color{R: 0.5, G: 0.25, B: 1}, buf[0])
}

func TestMirrorPropagatesDriverError(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 1, Y: 1, Z: 1}}
	drv := &recordDriver{err: errors.New("spi gone")}
	m := NewMirror("hero", l, Limiter{}, 1, drv, zerolog.Nop())
	assert.Error(t, m.WriteFrame(scene.Frame{Scene: "hero", Image: solid(2, 2, color.RGBA{A: 255})}))
}

func TestNRZStripOverRecordedSPI(t *testing.T) {
	buf := bytes.Buffer{}
	s, err := NewNRZ(spitest.NewRecordRaw(&buf), 3, 2500000, nil)
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", s.Name())
	assert.Equal(t, 3, s.Count())

	require.NoError(t, s.Write([]byte{255, 0, 0, 0, 255, 0, 0, 0, 255}))
	assert.NotZero(t, buf.Len())
	assert.Error(t, s.Write([]byte{1, 2}))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Error(t, s.Write(make([]byte, 9)))
}

func TestNewNRZRejectsEmptyStrip(t *testing.T) {
	_, err := NewNRZ(spitest.NewRecordRaw(&bytes.Buffer{}), 0, 0, nil)
	assert.Error(t, err)
}

func TestOpenOff(t *testing.T) {
	d, err := Open(config.LED{Driver: "off"}, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = Open(config.LED{Driver: "laser"}, 10, zerolog.Nop())
	assert.Error(t, err)
}

func TestCalibrationPatterns(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 2, Y: 1, Z: 2}}
	rgb := make([]byte, l.Count()*3)

	c, err := NewCalibration(IndexSweep, l)
	require.NoError(t, err)
	frames := 0
	for c.Step(rgb) {
		assert.Equal(t, []byte{255, 255, 255}, rgb[frames*3:frames*3+3])
		frames++
	}
	assert.Equal(t, 4, frames)

	c, _ = NewCalibration(RGBTest, l)
	require.True(t, c.Step(rgb))
	require.True(t, c.Step(rgb))
	assert.Equal(t, []byte{0, 255, 0}, rgb[:3])

	c, _ = NewCalibration(PlaneZ, l)
	c.Step(rgb)
	require.True(t, c.Step(rgb))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 255, 255, 0, 255, 255}, rgb)
	assert.False(t, c.Step(rgb))

	_, err = NewCalibration("strobe", l)
	assert.Error(t, err)
}
