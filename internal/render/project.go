package render

import "errors"

// ErrReleased is returned when drawing a geometry after Release.
var ErrReleased = errors.New("geometry released")

// Projected is a vertex mapped onto the surface.
type Projected struct {
	P     Vec2
	Scale float64
	Ok    bool
}

// ProjectVertices rotates verts by rot about origin, offsets them by at, and projects
// them through cam into dst (reused when large enough).
func ProjectVertices(cam *Camera, verts []Vec3, rot Euler, at Vec3, dst []Projected) []Projected {
	if cap(dst) < len(verts) {
		dst = make([]Projected, len(verts))
	}
	dst = dst[:len(verts)]
	for i, v := range verts {
		w := AddV3(Rotate(v, rot), at)
		x, y, s, ok := cam.Project(w)
		dst[i] = Projected{P: Vec2{x, y}, Scale: s, Ok: ok}
	}
	return dst
}

// EdgeSegments appends a segment for every edge whose endpoints are both visible.
func EdgeSegments(edges [][2]int, pts []Projected, dst []Segment) []Segment {
	for _, e := range edges {
		a, b := pts[e[0]], pts[e[1]]
		if !a.Ok || !b.Ok {
			continue
		}
		dst = append(dst, Segment{A: a.P, B: b.P})
	}
	return dst
}
