package d3dbsp

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Portal is the opening between two cells, as stored in the portals lump.
// Every opening is usually stored once per adjoining cell.
type Portal struct {
	Cell   int
	Normal mgl32.Vec3 // From the plane table
	Ring   []mgl32.Vec3
}

// Fence is a thin convex brush closing a portal: a drawn front face, a
// back face PortalDepth behind it and one side per ring edge.
type Fence struct {
	Planes []Plane
}

const (
	portalMaterial       = "portal"
	portalNodrawMaterial = "portal_nodraw"
)

// isPortalMaterial reports whether faces with material m only mark portals.
func isPortalMaterial(m string) bool {
	return m == portalMaterial || m == portalNodrawMaterial
}

// Portals returns the portals of the portals lump. Entries with fewer than
// three vertices or with references outside their lumps are skipped.
func (b *BSP) Portals() []Portal {
	logger.Debug().Msg("Reading portals ...")

	portals := make([]Portal, 0, len(b.portals))
	for i, p := range b.portals {
		first, count := int(p.FirstPortalVertex), int(p.PortalVertexCount)
		switch {
		case count < 3:
			logger.Warn().Int("portal", i).Int("vertices", count).Msg("Skipping degenerate portal")
			continue
		case first+count > len(b.portalVerts):
			logger.Warn().Int("portal", i).Msgf("Skipping portal with vertices %d+%d of %d", first, count, len(b.portalVerts))
			continue
		case int(p.PlaneIndex) >= len(b.planes):
			logger.Warn().Int("portal", i).Msgf("Skipping portal with plane %d of %d", p.PlaneIndex, len(b.planes))
			continue
		}

		ring := make([]mgl32.Vec3, count)
		for k := range ring {
			ring[k] = mgl32.Vec3(b.portalVerts[first+k].XYZ)
		}
		portals = append(portals, Portal{
			Cell:   int(p.CellIndex),
			Normal: mgl32.Vec3(b.planes[p.PlaneIndex].Normal),
			Ring:   ring,
		})
	}
	logger.Debug().Msgf("Read %v portals", len(portals))

	return portals
}

// sameRing reports whether a and b have the same vertex count and every
// vertex of either ring has a match in the other. The starting vertex and
// the winding are ignored.
func sameRing(a, b []mgl32.Vec3, eps float32) bool {
	return len(a) == len(b) && coversRing(a, b, eps) && coversRing(b, a, eps)
}

// coversRing reports whether every vertex of a has a match in b.
func coversRing(a, b []mgl32.Vec3, eps float32) bool {
	for _, v := range a {
		found := false
		for _, w := range b {
			if vecFuzzyEqual(v, w, eps) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// DedupePortals keeps the first portal of every distinct ring.
func DedupePortals(portals []Portal, eps float32) []Portal {
	var kept []Portal
	for _, p := range portals {
		dup := false
		for _, k := range kept {
			if sameRing(k.Ring, p.Ring, eps) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
		}
	}
	return kept
}

// NewFence builds the fence brush for a portal. The face normal comes from
// the first three ring vertices; the side planes are perpendicular to the
// stored plane normal and face away from the ring centroid, whatever the
// winding of the ring.
func NewFence(p *Portal, depth float32) Fence {
	ring := p.Ring
	n := triangleNormal(ring[0], ring[1], ring[2])
	d := n.Dot(ring[0])

	var centroid mgl32.Vec3
	for _, v := range ring {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float32(len(ring)))

	planes := make([]Plane, 0, len(ring)+2)
	planes = append(planes,
		Plane{Normal: n, Dist: d, Material: portalMaterial},
		Plane{Normal: n.Mul(-1), Dist: -d + depth, Material: portalNodrawMaterial},
	)
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		en := normalize(b.Sub(a)).Cross(p.Normal)
		side := Plane{Normal: en.Mul(-1), Dist: -en.Dot(a), Material: portalNodrawMaterial}
		if side.Distance(centroid) > 0 {
			side.Normal, side.Dist = en, en.Dot(a)
		}
		planes = append(planes, side)
	}
	return Fence{Planes: planes}
}

// PortalFences returns one fence per distinct portal, in lump order.
func (b *BSP) PortalFences(cfg Config) []Fence {
	portals := DedupePortals(b.Portals(), cfg.Tolerances.Fuzzy)
	fences := make([]Fence, len(portals))
	for i := range portals {
		fences[i] = NewFence(&portals[i], cfg.PortalDepth)
	}
	logger.Debug().Msgf("Built %v portal fences", len(fences))
	return fences
}
