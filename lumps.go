package d3dbsp

import (
	"bytes"
	"encoding/binary"
)

// LumpType identifies one of the lumps listed in the header directory.
type LumpType int

const (
	LumpMaterials LumpType = iota
	LumpLightBytes
	LumpLightGridEntries
	LumpLightGridColors
	LumpPlanes
	LumpBrushSides
	LumpBrushes
	LumpTriangles
	LumpDrawVerts
	LumpDrawIndices
	LumpCullGroups
	LumpCullGroupIndices
	LumpObsolete1
	LumpObsolete2
	LumpObsolete3
	LumpObsolete4
	LumpObsolete5
	LumpPortalVerts
	LumpOccluders
	LumpOccluderPlanes
	LumpOccluderEdges
	LumpOccluderIndices
	LumpAabbTrees
	LumpCells
	LumpPortals
	LumpNodes
	LumpLeafs
	LumpLeafBrushes
	LumpLeafSurfaces
	LumpCollisionVerts
	LumpCollisionEdges
	LumpCollisionTris
	LumpCollisionBorders
	LumpCollisionPartitions
	LumpCollisionAabbs
	LumpModels
	LumpVisibility
	LumpEntities
	LumpPathConnections

	NumLumps = int(iota)
)

var lumpNames = [NumLumps]string{
	LumpMaterials:           "materials",
	LumpLightBytes:          "lightmaps",
	LumpLightGridEntries:    "light grid hash",
	LumpLightGridColors:     "light grid values",
	LumpPlanes:              "planes",
	LumpBrushSides:          "brushsides",
	LumpBrushes:             "brushes",
	LumpTriangles:           "trianglesoups",
	LumpDrawVerts:           "drawverts",
	LumpDrawIndices:         "drawindexes",
	LumpCullGroups:          "cullgroups",
	LumpCullGroupIndices:    "cullgroupindexes",
	LumpObsolete1:           "shadowverts",
	LumpObsolete2:           "shadowindices",
	LumpObsolete3:           "shadowclusters",
	LumpObsolete4:           "shadowaabbtrees",
	LumpObsolete5:           "shadowsources",
	LumpPortalVerts:         "portalverts",
	LumpOccluders:           "occluders",
	LumpOccluderPlanes:      "occluderplanes",
	LumpOccluderEdges:       "occluderedges",
	LumpOccluderIndices:     "occluderindexes",
	LumpAabbTrees:           "aabbtrees",
	LumpCells:               "cells",
	LumpPortals:             "portals",
	LumpNodes:               "nodes",
	LumpLeafs:               "leafs",
	LumpLeafBrushes:         "leafbrushes",
	LumpLeafSurfaces:        "leafsurfaces",
	LumpCollisionVerts:      "collisionverts",
	LumpCollisionEdges:      "collisionedges",
	LumpCollisionTris:       "collisiontris",
	LumpCollisionBorders:    "collisionborders",
	LumpCollisionPartitions: "collisionparts",
	LumpCollisionAabbs:      "collisionaabbs",
	LumpModels:              "models",
	LumpVisibility:          "visibility",
	LumpEntities:            "entdata",
	LumpPathConnections:     "paths",
}

func (t LumpType) String() string {
	if t < 0 || int(t) >= NumLumps {
		return "unknown"
	}
	return lumpNames[t]
}

// On-disk records. Every field is little-endian and densely packed, so
// binary.Size gives the record size exactly.

type binLump struct {
	Length uint32
	Offset uint32
}

type binHeader struct {
	Magic   [4]byte
	Version uint32
	Lumps   [NumLumps]binLump
}

type binMaterial struct {
	Name         [64]byte
	SurfaceFlags uint32
	ContentFlags uint32
}

// String returns the material name up to the first NUL.
func (m *binMaterial) String() string {
	i := bytes.IndexByte(m.Name[:], 0)
	if i == -1 {
		i = len(m.Name)
	}
	return string(m.Name[:i])
}

type binTriangleSoup struct {
	MaterialIndex uint16
	LightmapIndex uint16
	FirstVertex   uint32
	VertexCount   uint16
	IndexCount    uint16
	FirstIndex    uint32
}

type binDrawVert struct {
	XYZ       [3]float32
	Normal    [3]float32
	Color     uint32
	TexCoord  [2]float32
	LmapCoord [2]float32
	Tangent   [3]float32
	Binormal  [3]float32
}

// A lightmap is three 512x512 RGBA planes followed by a 1024x1024 shadow
// map. The lump is only measured, never decoded.
const lightmapSize = 3*512*512*4 + 1024*1024

type binNode struct {
	PlaneNum int32
	Children [2]int32 // Negative values are leaf indices: -(leaf+1)
	Mins     [3]int32
	Maxs     [3]int32
}

type binPlane struct {
	Normal [3]float32
	Dist   float32
}

type binBrush struct {
	NumSides    uint16
	MaterialNum uint16
}

type binBrushSide struct {
	Plane       int32 // Float bits of a bound for the six axial sides
	MaterialNum int32
}

type binCollisionVert struct {
	CheckStamp int32
	XYZ        [3]float32
}

type binCollisionEdge struct {
	CheckStamp int32
	Origin     [3]float32
	Axis       [3][3]float32
	Length     uint32
}

type binCollisionBorder struct {
	DistEq [3]float32
	ZBase  int32
	ZSlope int32
	Start  int32
	Length int32
}

type binCollisionPartition struct {
	CheckStamp       uint16
	TriCount         uint8
	BorderCount      uint8
	FirstTriIndex    uint32
	FirstBorderIndex uint32
}

type binModel struct {
	Mins          [3]float32
	Maxs          [3]float32
	FirstTriangle uint32
	NumTriangles  uint32
	FirstSurface  uint32
	NumSurfaces   uint32
	FirstBrush    uint32
	NumBrushes    uint32
}

// binCollisionAabb stores either the first child index or the partition
// index in Index, depending on ChildCount. See CollisionMember.
type binCollisionAabb struct {
	Origin        [3]float32
	HalfSize      [3]float32
	MaterialIndex int16
	ChildCount    int16
	Index         int32
}

type binCollisionTri struct {
	Plane       [4]float32
	SVec        [4]float32
	TVec        [4]float32
	VertIndices [3]uint32
	EdgeIndices [3]uint32
}

type binLeaf struct {
	Cluster          int32 // Negative for leafs outside the map
	Area             int32
	FirstLeafSurface int32
	NumLeafSurfaces  uint32
	FirstLeafBrush   int32
	NumLeafBrushes   uint32
	CellNum          int32
	FirstLightIndex  int32
	NumLights        uint32
}

type binLeafBrush struct {
	Brush int32
}

type binLeafSurface struct {
	Face int32
}

type binCullGroup struct {
	Mins         [3]float32
	Maxs         [3]float32
	FirstSurface int32
	SurfaceCount int32
}

type binCell struct {
	Mins           [3]float32
	Maxs           [3]float32
	AabbTreeIndex  int32
	FirstPortal    int32
	PortalCount    int32
	FirstCullGroup int32
	CullGroupCount int32
	FirstOccluder  int32
	OccluderCount  int32
}

type binPortalVert struct {
	XYZ [3]float32
}

type binPortal struct {
	PlaneIndex        uint32
	CellIndex         uint32
	FirstPortalVertex uint32
	PortalVertexCount uint32
}

type binAabbTree struct {
	FirstSurface int32
	SurfaceCount int32
	ChildCount   int32
}

// Element size of each lump. Zero marks opaque lumps whose contents are
// only measured; one marks plain byte lumps.
var lumpSizes = [NumLumps]int{
	LumpMaterials:           binary.Size(binMaterial{}),
	LumpLightBytes:          lightmapSize,
	LumpPlanes:              binary.Size(binPlane{}),
	LumpBrushSides:          binary.Size(binBrushSide{}),
	LumpBrushes:             binary.Size(binBrush{}),
	LumpTriangles:           binary.Size(binTriangleSoup{}),
	LumpDrawVerts:           binary.Size(binDrawVert{}),
	LumpDrawIndices:         binary.Size(uint16(0)),
	LumpCullGroups:          binary.Size(binCullGroup{}),
	LumpPortalVerts:         binary.Size(binPortalVert{}),
	LumpAabbTrees:           binary.Size(binAabbTree{}),
	LumpCells:               binary.Size(binCell{}),
	LumpPortals:             binary.Size(binPortal{}),
	LumpNodes:               binary.Size(binNode{}),
	LumpLeafs:               binary.Size(binLeaf{}),
	LumpLeafBrushes:         binary.Size(binLeafBrush{}),
	LumpLeafSurfaces:        binary.Size(binLeafSurface{}),
	LumpCollisionVerts:      binary.Size(binCollisionVert{}),
	LumpCollisionEdges:      binary.Size(binCollisionEdge{}),
	LumpCollisionTris:       binary.Size(binCollisionTri{}),
	LumpCollisionBorders:    binary.Size(binCollisionBorder{}),
	LumpCollisionPartitions: binary.Size(binCollisionPartition{}),
	LumpCollisionAabbs:      binary.Size(binCollisionAabb{}),
	LumpModels:              binary.Size(binModel{}),
	LumpVisibility:          1,
	LumpEntities:            1,
}

// ElementSize returns the record size of a lump, 0 for opaque lumps.
func (t LumpType) ElementSize() int {
	if t < 0 || int(t) >= NumLumps {
		return 0
	}
	return lumpSizes[t]
}
