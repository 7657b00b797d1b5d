package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
)

func TestIndexSerpentine(t *testing.T) {
	l := Layout{Dim: Dim{X: 3, Y: 2, Z: 2}, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	assert.Equal(t, 12, l.Count())
	assert.Equal(t, 0, l.Index(0, 0, 0))
	assert.Equal(t, 5, l.Index(0, 1, 0))
	assert.Equal(t, 3, l.Index(2, 1, 0))
	// second panel runs its rows bottom-up
	assert.Equal(t, 6+3, l.Index(0, 0, 1))
}

func TestIndexIsPermutation(t *testing.T) {
	l := Layout{Dim: Dim{X: 4, Y: 3, Z: 3}, Order: Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true}}
	seen := map[int]bool{}
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				seen[l.Index(x, y, z)] = true
			}
		}
	}
	assert.Len(t, seen, l.Count())
}

func TestFromConfig(t *testing.T) {
	l := FromConfig(config.LED{Dim: config.Dim{X: 16, Y: 8}, XFlipEveryRow: true})
	assert.Equal(t, Dim{X: 16, Y: 8, Z: 1}, l.Dim)
	assert.True(t, l.Order.XFlipEveryRow)
	assert.Equal(t, 128, l.Count())
}
