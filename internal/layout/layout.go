package layout

import "github.com/coreman2200/funtimes-backdrop/internal/config"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// FromConfig builds the strip layout of the LED mirror. Missing dimensions
// default to one.
func FromConfig(c config.LED) Layout {
	return Layout{
		Dim: Dim{X: atLeastOne(c.Dim.X), Y: atLeastOne(c.Dim.Y), Z: atLeastOne(c.Dim.Z)},
		Order: Serpentine{
			XFlipEveryRow:   c.XFlipEveryRow,
			YFlipEveryPanel: c.YFlipEveryPanel,
		},
	}
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Layout) Index(x, y, z int) int {
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Dim.Y - 1 - y
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}
