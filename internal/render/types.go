package render

import (
	"fmt"
	"strings"
)

type Vec2 struct{ X, Y float64 }
type Vec3 struct{ X, Y, Z float64 }
type Color struct{ R, G, B float32 }

// Size is a pixel extent. Zero or negative components mean "not measurable".
type Size struct{ W, H float64 }

func (s Size) Valid() bool { return s.W > 0 && s.H > 0 }

// Euler is an XYZ rotation in radians.
type Euler struct{ X, Y, Z float64 }

// Theme is the two-valued page theme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark" (case-insensitive).
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Palette holds the geometry color for each theme.
type Palette struct {
	Light Color
	Dark  Color
}

// For returns the palette entry for th. Unknown themes fall back to Dark.
func (p Palette) For(th Theme) Color {
	if th == Light {
		return p.Light
	}
	return p.Dark
}

// Hex parses "#rrggbb" or "rrggbb" into a Color.
func Hex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("bad hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return Color{}, fmt.Errorf("bad hex color %q: %w", s, err)
	}
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}, nil
}

// MustHex is Hex for package-level literals.
func MustHex(s string) Color {
	c, err := Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// GeometryKind selects the procedural shape a scene builds.
type GeometryKind string

const (
	Sphere    GeometryKind = "sphere"
	Cubes     GeometryKind = "cubes"
	Waves     GeometryKind = "waves"
	Particles GeometryKind = "particles"
)

// Kinds lists every geometry kind in a stable order.
func Kinds() []GeometryKind { return []GeometryKind{Sphere, Cubes, Waves, Particles} }

func (k GeometryKind) Valid() bool {
	for _, v := range Kinds() {
		if v == k {
			return true
		}
	}
	return false
}

// Spec is what a geometry builder needs from the scene configuration.
type Spec struct {
	Count        int
	Seed         int64
	VertexColors bool
	// Extent is the edge length of the volume procedural content is scattered in.
	// Zero selects the kind's default.
	Extent float64
}

// Style is the per-draw material state baked at construction.
type Style struct {
	Color   Color
	Opacity float64
}

// Geometry is a procedural shape owned by exactly one scene.
type Geometry interface {
	Kind() GeometryKind
	// Update recomputes animated vertex data for time t. It must depend only on t
	// and the geometry's base positions.
	Update(t float64)
	// Draw projects the geometry through cam, rotated by rot, onto s.
	Draw(s Surface, cam *Camera, rot Euler, st Style) error
	// Release drops vertex buffers. The geometry is unusable afterwards.
	Release()
}

// Rig is how a geometry is framed and animated when nobody interacts with it.
type Rig struct {
	Camera Vec3
	// IdleSpin is radians per unit of scene time.
	IdleSpin Euler
}

// Builder constructs a Geometry from a Spec.
type Builder interface {
	Kind() GeometryKind
	Rig(spec Spec) Rig
	Build(spec Spec) (Geometry, error)
}
