package scenes

import (
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/cubes"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/particles"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/sphere"
	"github.com/coreman2200/funtimes-backdrop/internal/render/scenes/waves"
)

// Register adds every built-in geometry to reg.
func Register(reg *render.Registry) {
	reg.Register(sphere.New())
	reg.Register(cubes.New())
	reg.Register(waves.New())
	reg.Register(particles.New())
}

// Registry returns a registry holding the built-in geometries.
func Registry() *render.Registry {
	reg := render.NewRegistry()
	Register(reg)
	return reg
}
