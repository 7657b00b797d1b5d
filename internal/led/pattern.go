package led

import (
	"fmt"

	"github.com/coreman2200/funtimes-backdrop/internal/layout"
)

// Pattern is a wiring check for a freshly installed strip.
type Pattern string

const (
	IndexSweep Pattern = "index_sweep"
	RGBTest    Pattern = "rgb_channels"
	PlaneZ     Pattern = "plane_z"
)

func Patterns() []Pattern { return []Pattern{IndexSweep, RGBTest, PlaneZ} }

// Calibration steps a pattern one frame at a time.
type Calibration struct {
	pattern Pattern
	layout  layout.Layout
	step    int
}

func NewCalibration(p Pattern, l layout.Layout) (*Calibration, error) {
	switch p {
	case IndexSweep, RGBTest, PlaneZ:
		return &Calibration{pattern: p, layout: l}, nil
	}
	return nil, fmt.Errorf("unknown pattern %q", p)
}

// Len is the number of frames in one run of the pattern.
func (c *Calibration) Len() int {
	switch c.pattern {
	case IndexSweep:
		return c.layout.Count()
	case RGBTest:
		return 3
	default:
		return c.layout.Dim.Z
	}
}

// Step fills rgb with the next frame; it returns false when the pattern is done.
func (c *Calibration) Step(rgb []byte) bool {
	if c.step >= c.Len() {
		return false
	}
	clear(rgb)
	n := c.layout.Count()
	switch c.pattern {
	case IndexSweep:
		i := c.step
		rgb[i*3], rgb[i*3+1], rgb[i*3+2] = 255, 255, 255
	case RGBTest:
		for i := 0; i < n; i++ {
			rgb[i*3+c.step] = 255
		}
	case PlaneZ:
		per := c.layout.Dim.X * c.layout.Dim.Y
		for i := c.step * per; i < (c.step+1)*per; i++ {
			rgb[i*3+1], rgb[i*3+2] = 255, 255 // cyan
		}
	}
	c.step++
	return true
}
