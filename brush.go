package d3dbsp

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a brush face. A point p lies inside the half-space when
// Normal·p - Dist <= 0.
type Plane struct {
	Normal   mgl32.Vec3
	Dist     float32
	Material string
}

// Distance returns the signed distance of p in front of the plane.
func (p *Plane) Distance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) - p.Dist
}

// Brush is a convex solid: the intersection of the half-spaces of its
// planes. The first six planes are the axial faces of Mins/Maxs, the rest
// come from the shared plane table.
type Brush struct {
	Mins   mgl32.Vec3
	Maxs   mgl32.Vec3
	Planes []Plane
}

const axialSides = 6

// axialCoordinate returns the bound stored in an axial brush side. The
// compiler keeps the IEEE-754 bits of the coordinate in the plane index
// field, so the integer is reinterpreted, not converted.
func axialCoordinate(side binBrushSide) float32 {
	return math.Float32frombits(uint32(side.Plane))
}

// planesFromBounds returns the outward facing planes of an axis aligned
// box in the order -X, +X, -Y, +Y, -Z, +Z.
func planesFromBounds(mins, maxs mgl32.Vec3) [axialSides]Plane {
	var planes [axialSides]Plane
	for axis := 0; axis < 3; axis++ {
		var n mgl32.Vec3
		n[axis] = -1
		planes[axis*2] = Plane{Normal: n, Dist: -mins[axis]}
		n[axis] = 1
		planes[axis*2+1] = Plane{Normal: n, Dist: maxs[axis]}
	}
	return planes
}

// Brushes rebuilds every brush of the brushes lump, indexed like the lump.
func (b *BSP) Brushes() ([]Brush, error) {
	logger.Debug().Msg("Reading brushes ...")

	brushes := make([]Brush, 0, len(b.brushes))
	sideOffset := 0
	for i, src := range b.brushes {
		numSides := int(src.NumSides)
		if numSides < axialSides {
			return nil, formatErrorf(LumpBrushes, "brush %d has %d sides, need at least %d", i, numSides, axialSides)
		}
		if sideOffset+numSides > len(b.brushSides) {
			return nil, formatErrorf(LumpBrushSides, "brush %d needs sides up to %d, lump has %d", i, sideOffset+numSides, len(b.brushSides))
		}
		sides := b.brushSides[sideOffset : sideOffset+numSides]
		sideOffset += numSides

		dst := Brush{Planes: make([]Plane, 0, numSides)}
		for axis := 0; axis < 3; axis++ {
			dst.Mins[axis] = axialCoordinate(sides[axis*2])
			dst.Maxs[axis] = axialCoordinate(sides[axis*2+1])
		}
		for h, plane := range planesFromBounds(dst.Mins, dst.Maxs) {
			material, err := b.sideMaterial(i, sides[h])
			if err != nil {
				return nil, err
			}
			plane.Material = material
			dst.Planes = append(dst.Planes, plane)
		}

		for _, side := range sides[axialSides:] {
			if side.Plane < 0 || int(side.Plane) >= len(b.planes) {
				return nil, formatErrorf(LumpBrushSides, "brush %d references plane %d of %d", i, side.Plane, len(b.planes))
			}
			material, err := b.sideMaterial(i, side)
			if err != nil {
				return nil, err
			}
			p := &b.planes[side.Plane]
			dst.Planes = append(dst.Planes, Plane{
				Normal:   mgl32.Vec3(p.Normal),
				Dist:     p.Dist,
				Material: material,
			})
		}
		brushes = append(brushes, dst)
	}
	logger.Debug().Msgf("Read %v brushes", len(brushes))

	return brushes, nil
}

func (b *BSP) sideMaterial(brush int, side binBrushSide) (string, error) {
	if side.MaterialNum < 0 || int(side.MaterialNum) >= len(b.materials) {
		return "", formatErrorf(LumpBrushSides, "brush %d references material %d of %d", brush, side.MaterialNum, len(b.materials))
	}
	return b.materials[side.MaterialNum].String(), nil
}
