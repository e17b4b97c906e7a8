package d3dbsp

import (
	"fmt"
	"io"
	"math"
)

// infoGroups is the order of the info report. Groups are separated by a
// blank line.
var infoGroups = [][]LumpType{
	{LumpModels, LumpMaterials, LumpBrushes, LumpBrushSides, LumpPlanes, LumpEntities},
	{
		LumpNodes, LumpLeafs, LumpLeafBrushes, LumpLeafSurfaces,
		LumpCollisionVerts, LumpCollisionEdges, LumpCollisionTris, LumpCollisionBorders, LumpCollisionAabbs,
		LumpDrawVerts, LumpDrawIndices, LumpTriangles,
		LumpObsolete1, LumpObsolete2, LumpObsolete3, LumpObsolete4, LumpObsolete5,
		LumpLightBytes, LumpLightGridEntries, LumpLightGridColors,
		-1, // Light entities
		LumpVisibility, LumpPortalVerts,
		LumpOccluders, LumpOccluderPlanes, LumpOccluderEdges, LumpOccluderIndices,
		LumpAabbTrees, LumpCells, LumpPortals, LumpCullGroups, LumpCullGroupIndices,
	},
	{LumpPathConnections},
}

// Directory returns the header directory in lump order.
func (b *BSP) Directory() []LumpInfo {
	return b.lumps[:]
}

// PrintInfo writes a size report of every lump of the file read from path.
func (b *BSP) PrintInfo(w io.Writer, path string) error {
	lights := 0
	for i := range b.Entities {
		if b.Entities[i].ClassName() == "light" {
			lights++
		}
	}

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("d3dbsp\n")
	printf("---------------------\n")
	printf("%s: %d\n", path, b.size)
	for g, group := range infoGroups {
		if g > 0 {
			printf("\n")
		}
		for _, t := range group {
			if t < 0 {
				printf("%6d %-19s %6d B\t%2d KB %5.1f%%\n", lights, "lights", 0, 0, 0.0)
				continue
			}
			printf("%s\n", b.infoRow(t))
		}
	}
	printf("---------------------\n")
	return err
}

func (b *BSP) infoRow(t LumpType) string {
	l := b.lumps[t]
	var amount string
	switch size := t.ElementSize(); {
	case t == LumpEntities:
		amount = fmt.Sprintf("%6d", len(b.Entities))
	case size == 0:
		amount = "     ?"
	case size == 1:
		amount = "      "
	default:
		amount = fmt.Sprintf("%6d", l.Length/size)
	}

	var percent float64
	if b.size > 0 {
		percent = float64(l.Length) / float64(b.size) * 100
	}
	kb := int(math.Ceil(float64(l.Length) / 1000))
	return fmt.Sprintf("%s %-19s %6d B\t%2d KB %5.1f%%", amount, t, l.Length, kb, percent)
}
