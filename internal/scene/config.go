// Package scene implements the lifecycle of one decorative animated surface
// bound to one container.
package scene

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-backdrop/internal/render"
)

// TimeStep is how far scene time advances per frame.
const TimeStep = 0.01

// PointerGain converts pointer NDC to radians of rotation while hovering.
const PointerGain = 0.5

var ErrInvalidConfig = errors.New("invalid scene config")

// Config describes what a controller draws. Colors are baked at construction.
type Config struct {
	Palette       render.Palette
	Geometry      render.GeometryKind
	ParticleCount int
	Interactive   bool
	Opacity       float64

	// FillWindow sizes the surface to the window instead of the container.
	FillWindow bool
	Seed       int64
	// VertexColors gives every particle its own color. Particles only.
	VertexColors bool
	// Extent overrides the geometry's default volume. Zero keeps the default.
	Extent float64
}

func (c Config) Validate() error {
	if !c.Geometry.Valid() {
		return fmt.Errorf("%w: unknown geometry %q", ErrInvalidConfig, c.Geometry)
	}
	if c.ParticleCount < 0 {
		return fmt.Errorf("%w: particle count %d", ErrInvalidConfig, c.ParticleCount)
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("%w: opacity %v outside [0,1]", ErrInvalidConfig, c.Opacity)
	}
	if c.Extent < 0 {
		return fmt.Errorf("%w: extent %v", ErrInvalidConfig, c.Extent)
	}
	return nil
}

func (c Config) spec() render.Spec {
	s := render.Spec{Seed: c.Seed, Extent: c.Extent}
	if c.Geometry == render.Particles {
		s.Count = c.ParticleCount
		s.VertexColors = c.VertexColors
	}
	return s
}

// AnimationState is the per-controller mutable animation input.
type AnimationState struct {
	T        float64
	Hovering bool
	// Pointer is in normalized device coordinates, [-1, 1] on both axes.
	Pointer render.Vec2
}

// Idle is the orientation of an untouched scene at time t.
func Idle(spin render.Euler, t float64) render.Euler {
	return render.Euler{X: spin.X * t, Y: spin.Y * t, Z: spin.Z * t}
}

// State is the lifecycle stage of a controller.
type State int

const (
	StateUninitialized State = iota
	StateLive
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLive:
		return "live"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
