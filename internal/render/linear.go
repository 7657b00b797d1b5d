package render

import "math"

func AddV3(v, w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

func SubV3(v, w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

func ScaleV3(s float64, v Vec3) Vec3 { return Vec3{s * v.X, s * v.Y, s * v.Z} }

func DotV3(v, w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

func LenV3(v Vec3) float64 { return math.Sqrt(DotV3(v, v)) }

func NormV3(v Vec3) Vec3 {
	l := LenV3(v)
	if l == 0 {
		return v
	}
	return ScaleV3(1/l, v)
}

func Cross(v, w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Rotate applies e in XYZ order (Z first, X last), matching an object rotation.
func Rotate(v Vec3, e Euler) Vec3 {
	if e.Z != 0 {
		s, c := math.Sincos(e.Z)
		v = Vec3{v.X*c - v.Y*s, v.X*s + v.Y*c, v.Z}
	}
	if e.Y != 0 {
		s, c := math.Sincos(e.Y)
		v = Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
	}
	if e.X != 0 {
		s, c := math.Sincos(e.X)
		v = Vec3{v.X, v.Y*c - v.Z*s, v.Y*s + v.Z*c}
	}
	return v
}

// AddEuler sums two rotations component-wise.
func AddEuler(a, b Euler) Euler { return Euler{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
