package section

import (
	"fmt"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
)

// DefaultPalette is the indigo accent of the portfolio.
var DefaultPalette = render.Palette{
	Light: render.MustHex("#4338ca"),
	Dark:  render.MustHex("#6366f1"),
}

// Preset is a named section background. A zero Size fills the window.
type Preset struct {
	Name   string
	Config scene.Config
	Size   render.Size
}

// Presets returns the page backgrounds in page order.
func Presets() []Preset {
	p := DefaultPalette
	return []Preset{
		{Name: "hero", Size: render.Size{W: 400, H: 400},
			Config: scene.Config{Palette: p, Geometry: render.Sphere, Interactive: true, Opacity: 0.7}},
		{Name: "skills",
			Config: scene.Config{Palette: p, Geometry: render.Particles, ParticleCount: 1000, Opacity: 0.6, FillWindow: true, Extent: 100, Seed: 1}},
		{Name: "projects",
			Config: scene.Config{Palette: p, Geometry: render.Cubes, Opacity: 0.3, FillWindow: true, Seed: 2}},
		{Name: "resume",
			Config: scene.Config{Palette: p, Geometry: render.Particles, ParticleCount: 1500, Opacity: 0.6, FillWindow: true, VertexColors: true, Seed: 3}},
		{Name: "contact",
			Config: scene.Config{Palette: p, Geometry: render.Waves, Opacity: 0.3, FillWindow: true}},
	}
}

func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// FromConfig converts the configured sections. An empty list yields Presets.
func FromConfig(c *config.Config) ([]Preset, error) {
	if c == nil || len(c.Sections) == 0 {
		return Presets(), nil
	}
	pal := DefaultPalette
	if c.Palette.Light != "" {
		col, err := render.Hex(c.Palette.Light)
		if err != nil {
			return nil, fmt.Errorf("palette.light: %w", err)
		}
		pal.Light = col
	}
	if c.Palette.Dark != "" {
		col, err := render.Hex(c.Palette.Dark)
		if err != nil {
			return nil, fmt.Errorf("palette.dark: %w", err)
		}
		pal.Dark = col
	}

	out := make([]Preset, 0, len(c.Sections))
	seen := map[string]bool{}
	for i, sc := range c.Sections {
		if sc.Name == "" {
			return nil, fmt.Errorf("sections[%d]: missing name", i)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("sections[%d]: duplicate name %q", i, sc.Name)
		}
		seen[sc.Name] = true
		cfg := scene.Config{
			Palette:       pal,
			Geometry:      render.GeometryKind(sc.Geometry),
			ParticleCount: sc.ParticleCount,
			Interactive:   sc.Interactive,
			Opacity:       sc.Opacity,
			FillWindow:    sc.FillWindow,
			Seed:          sc.Seed,
			VertexColors:  sc.VertexColors,
			Extent:        sc.Extent,
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("section %s: %w", sc.Name, err)
		}
		out = append(out, Preset{Name: sc.Name, Config: cfg, Size: render.Size{W: sc.Width, H: sc.Height}})
	}
	return out, nil
}
