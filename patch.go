package d3dbsp

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle holds three indices into the collision vertices, sorted
// ascending.
type Triangle [3]int

// Patch is a small triangle mesh sharing one material.
type Patch struct {
	Material  int
	Triangles []Triangle
}

// Patches regroups the collision triangles of every collision leaf into
// patch meshes. Leaves are visited in lump order. A triangle is dropped
// when one of its vertices sits at the origin, which the compiler uses as
// a placeholder, or when an identical triangle was already taken. Each
// material fills one patch at a time until it holds cfg.PatchTriangles.
func (b *BSP) Patches(cfg Config) ([]Patch, error) {
	logger.Debug().Msg("Building patches ...")

	nodes, err := b.CollisionTree()
	if err != nil {
		return nil, err
	}

	var patches []Patch
	current := make(map[int]int) // Material -> index of its open patch
	seen := make(map[Triangle]struct{})
	skipped := 0
	for _, n := range nodes {
		leaf, ok := n.(*CollisionLeaf)
		if !ok {
			continue
		}
		part := &b.collisionPartitions[leaf.Partition]
		first, count := int(part.FirstTriIndex), int(part.TriCount)
		if first+count > len(b.collisionTris) {
			return nil, formatErrorf(LumpCollisionPartitions, "partition %d has triangles %d+%d of %d", leaf.Partition, first, count, len(b.collisionTris))
		}

		for _, tri := range b.collisionTris[first : first+count] {
			var t Triangle
			placeholder := false
			for k, vi := range tri.VertIndices {
				if int(vi) >= len(b.collisionVerts) {
					return nil, formatErrorf(LumpCollisionTris, "vertex %d of %d", vi, len(b.collisionVerts))
				}
				t[k] = int(vi)
				if vecFuzzyZero(b.CollisionVertex(t[k]), cfg.Tolerances.Fuzzy) {
					placeholder = true
				}
			}
			if placeholder {
				skipped++
				continue
			}
			t = sortTriple(t)
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}

			pi, ok := current[leaf.MaterialIndex]
			if !ok || len(patches[pi].Triangles) >= cfg.PatchTriangles {
				patches = append(patches, Patch{Material: leaf.MaterialIndex})
				pi = len(patches) - 1
				current[leaf.MaterialIndex] = pi
			}
			patches[pi].Triangles = append(patches[pi].Triangles, t)
		}
	}
	logger.Debug().Int("placeholders", skipped).Msgf("Built %v patches", len(patches))

	return patches, nil
}

// CollisionVertex returns the position of collision vertex i.
func (b *BSP) CollisionVertex(i int) mgl32.Vec3 {
	return mgl32.Vec3(b.collisionVerts[i].XYZ)
}
