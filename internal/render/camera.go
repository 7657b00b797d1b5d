package render

import "math"

// Camera is a perspective camera looking at Target from Position.
type Camera struct {
	FovY     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position Vec3
	Target   Vec3
	Up       Vec3

	viewport Size

	// derived by UpdateProjection
	right, up, fwd Vec3
	focal          float64
}

// NewCamera returns a 75° camera at pos looking at the origin, sized to vp.
func NewCamera(pos Vec3, vp Size) *Camera {
	c := &Camera{
		FovY:     75,
		Near:     0.1,
		Far:      1000,
		Position: pos,
		Up:       Vec3{0, 1, 0},
	}
	c.SetViewport(vp)
	return c
}

// SetViewport updates the aspect ratio and recomputes the projection.
func (c *Camera) SetViewport(vp Size) {
	if !vp.Valid() {
		return
	}
	c.viewport = vp
	c.Aspect = vp.W / vp.H
	c.UpdateProjection()
}

func (c *Camera) Viewport() Size { return c.viewport }

// UpdateProjection recomputes the view basis; call after moving the camera.
func (c *Camera) UpdateProjection() {
	c.fwd = NormV3(SubV3(c.Target, c.Position))
	c.right = NormV3(Cross(c.fwd, c.Up))
	c.up = Cross(c.right, c.fwd)
	c.focal = 1 / math.Tan(c.FovY*math.Pi/360)
}

// Project maps a world point to surface pixels. scale is pixels per world unit at
// the point's depth; ok is false when the point is outside the near/far range.
func (c *Camera) Project(p Vec3) (x, y, scale float64, ok bool) {
	d := SubV3(p, c.Position)
	depth := DotV3(d, c.fwd)
	if depth < c.Near || depth > c.Far {
		return 0, 0, 0, false
	}
	ndcX := DotV3(d, c.right) * c.focal / (depth * c.Aspect)
	ndcY := DotV3(d, c.up) * c.focal / depth
	x = (ndcX + 1) / 2 * c.viewport.W
	y = (1 - ndcY) / 2 * c.viewport.H
	scale = c.focal * c.viewport.H / (2 * depth)
	return x, y, scale, true
}
