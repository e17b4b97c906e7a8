package d3dbsp

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat/combin"
)

// Polygon is a face that survives on the final solid. Points are the
// distinct corners found on the plane, in no particular order.
type Polygon struct {
	Plane  int // Index into the brush planes
	Points []mgl32.Vec3
}

// minFacePlanes is the smallest plane count that can bound a solid.
const minFacePlanes = 4

// Polygonize finds the faces of a brush. Every plane is intersected with
// every pair of the other planes; an intersection point is a corner when
// it lies inside all half-spaces. Planes with fewer than three corners do
// not touch the solid and are dropped, as are repeats of an earlier plane.
//
// The cost is cubic in the number of planes, which stays in the tens for
// compiled brushes.
func Polygonize(brush *Brush, tol Tolerances) []Polygon {
	n := len(brush.Planes)
	if n < minFacePlanes {
		return nil
	}
	pairs := combin.Combinations(n-1, 2)
	others := make([]int, 0, n-1)

	var polygons []Polygon
	for i := range brush.Planes {
		if brush.repeatsEarlierPlane(i, tol) {
			continue
		}
		others = others[:0]
		for j := range brush.Planes {
			if j != i {
				others = append(others, j)
			}
		}

		p0 := &brush.Planes[i]
		var points []mgl32.Vec3
		for _, pair := range pairs {
			p1, p2 := &brush.Planes[others[pair[0]]], &brush.Planes[others[pair[1]]]
			v, ok := intersectPlanes(p0, p1, p2, tol.Determinant)
			if !ok || !brush.contains(v, tol.HalfSpace) || hasPoint(points, v, tol.VertexMerge) {
				continue
			}
			points = append(points, v)
		}
		if len(points) >= 3 {
			polygons = append(polygons, Polygon{Plane: i, Points: points})
		}
	}
	return polygons
}

// intersectPlanes solves the three plane equations for their common point.
func intersectPlanes(p0, p1, p2 *Plane, minDet float32) (mgl32.Vec3, bool) {
	m := mgl32.Mat3FromRows(p0.Normal, p1.Normal, p2.Normal)
	if math32.Abs(m.Det()) <= minDet {
		return mgl32.Vec3{}, false
	}
	return m.Inv().Mul3x1(mgl32.Vec3{p0.Dist, p1.Dist, p2.Dist}), true
}

// contains reports whether pt is inside every half-space of the brush.
func (b *Brush) contains(pt mgl32.Vec3, eps float32) bool {
	for i := range b.Planes {
		if b.Planes[i].Distance(pt) > eps {
			return false
		}
	}
	return true
}

func (b *Brush) repeatsEarlierPlane(i int, tol Tolerances) bool {
	p := &b.Planes[i]
	for j := 0; j < i; j++ {
		q := &b.Planes[j]
		if vecFuzzyEqual(p.Normal, q.Normal, tol.Fuzzy) && fuzzyEqual(p.Dist, q.Dist, tol.PlaneDistance) {
			return true
		}
	}
	return false
}

func hasPoint(points []mgl32.Vec3, v mgl32.Vec3, eps float32) bool {
	for _, p := range points {
		if v.Sub(p).Len() < eps {
			return true
		}
	}
	return false
}

// BasisPoints returns three points spanning the plane, in the order they
// are written to a map. They are built from a tangent basis rather than
// from the face corners: up (0,0,1) is the reference axis unless the normal
// is close to it, in which case forward (0,1,0) is used.
func (p *Plane) BasisPoints(scale float32) [3]mgl32.Vec3 {
	up := mgl32.Vec3{0, 0, 1}
	forward := mgl32.Vec3{0, 1, 0}
	var tangent mgl32.Vec3
	if math32.Abs(up.Dot(p.Normal)) < 0.01 {
		tangent = p.Normal.Cross(up)
	} else {
		tangent = p.Normal.Cross(forward)
	}
	tangent = normalize(tangent)
	bitangent := normalize(p.Normal.Cross(tangent))

	a := p.Normal.Mul(p.Dist)
	b := a.Add(tangent.Mul(scale))
	c := a.Add(bitangent.Mul(scale))
	return [3]mgl32.Vec3{c, b, a}
}
