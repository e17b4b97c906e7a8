package d3dbsp

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

func abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

// fuzzyEqual reports whether a and b differ by at most eps.
func fuzzyEqual[T constraints.Float](a, b, eps T) bool {
	return abs(a-b) <= eps
}

// vecFuzzyEqual compares two vectors axis by axis.
func vecFuzzyEqual(a, b mgl32.Vec3, eps float32) bool {
	for k := range a {
		if !fuzzyEqual(a[k], b[k], eps) {
			return false
		}
	}
	return true
}

// vecFuzzyZero reports whether every component of v is strictly within eps
// of zero.
func vecFuzzyZero(v mgl32.Vec3, eps float32) bool {
	return math32.Abs(v[0]) < eps && math32.Abs(v[1]) < eps && math32.Abs(v[2]) < eps
}

// normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v.Dot(v))
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}

// triangleNormal returns the unit normal of the triangle a, b, c.
func triangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return normalize(b.Sub(a).Cross(c.Sub(a)))
}

// sortTriple returns t in ascending order.
func sortTriple[T constraints.Integer](t [3]T) [3]T {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	return t
}
