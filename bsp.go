// Package d3dbsp decodes compiled "IBSP" version 4 level files and rebuilds
// an editable brush map from them.
//
// The decoder loads the 39 lumps of the header directory into typed record
// slices. The reconstruction stages work purely from that data: brushes are
// rebuilt from their half-space planes, cell portals are deduplicated into
// thin fence brushes and collision triangles are regrouped into patch
// meshes. WriteMap serializes the result in the "iwmap 4" text format.
package d3dbsp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Magic and Version identify the only supported container revision.
var Magic = [4]byte{'I', 'B', 'S', 'P'}

const Version = 4

// LumpInfo describes one header directory entry after loading.
type LumpInfo struct {
	Type   LumpType
	Offset int
	Length int
	Count  int  // Number of records, 0 for opaque lumps
	Opaque bool // No record size is known; only Length is meaningful
}

// BSP holds everything decoded from one file. It is built once by Decode
// and only read afterwards.
type BSP struct {
	header binHeader
	size   int64
	lumps  [NumLumps]LumpInfo
	raw    [NumLumps][]byte

	materials           []binMaterial
	planes              []binPlane
	brushSides          []binBrushSide
	brushes             []binBrush
	triangleSoups       []binTriangleSoup
	drawVerts           []binDrawVert
	drawIndices         []uint16
	cullGroups          []binCullGroup
	portalVerts         []binPortalVert
	aabbTrees           []binAabbTree
	cells               []binCell
	portals             []binPortal
	nodes               []binNode
	leafs               []binLeaf
	leafBrushes         []binLeafBrush
	leafSurfaces        []binLeafSurface
	collisionVerts      []binCollisionVert
	collisionEdges      []binCollisionEdge
	collisionTris       []binCollisionTri
	collisionBorders    []binCollisionBorder
	collisionPartitions []binCollisionPartition
	collisionAabbs      []binCollisionAabb
	models              []binModel

	Entities []Entity
}

// Open decodes the BSP file at path. The file is closed before Open returns.
func Open(path string) (*BSP, error) {
	logger.Debug().Str("path", path).Msg("Opening BSP")

	s, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	b, err := Decode(s)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return b, nil
}

// Decode reads a whole BSP from s.
func Decode(s Stream) (*BSP, error) {
	size, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	b := &BSP{size: size}

	// Read header
	if err := binary.Read(s, binary.LittleEndian, &b.header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &FormatError{Reason: "file too short for header"}
		}
		return nil, err
	}
	if b.header.Magic != Magic {
		return nil, &FormatError{Reason: fmt.Sprintf("magic mismatch: %q", b.header.Magic[:])}
	}
	if b.header.Version != Version {
		return nil, &FormatError{Reason: fmt.Sprintf("version mismatch: %d", b.header.Version)}
	}

	// Read lumps
	for i := range b.header.Lumps {
		if err := b.readLump(s, LumpType(i)); err != nil {
			return nil, err
		}
	}
	if err := b.decodeLumps(); err != nil {
		return nil, err
	}

	entities, err := parseEntities(NewMemoryStream(b.raw[LumpEntities]))
	if err != nil {
		return nil, err
	}
	b.Entities = entities
	logger.Debug().Int("entities", len(entities)).Msg("Read entities")

	return b, nil
}

// readLump validates one directory entry and copies its bytes.
func (b *BSP) readLump(s Stream, t LumpType) error {
	l := b.header.Lumps[t]
	size := t.ElementSize()
	info := LumpInfo{
		Type:   t,
		Offset: int(l.Offset),
		Length: int(l.Length),
		Opaque: size == 0,
	}
	b.lumps[t] = info
	if l.Length == 0 {
		return nil
	}
	if size != 0 && int(l.Length)%size != 0 {
		return formatErrorf(t, "length %d is not a multiple of record size %d", l.Length, size)
	}
	if int64(l.Offset)+int64(l.Length) > b.size {
		return formatErrorf(t, "range %d+%d exceeds file size %d", l.Offset, l.Length, b.size)
	}
	if _, err := s.Seek(int64(l.Offset), io.SeekStart); err != nil {
		return err
	}
	data := make([]byte, l.Length)
	if _, err := io.ReadFull(s, data); err != nil {
		return errors.Wrapf(err, "reading %s lump", t)
	}
	if size != 0 {
		info.Count = int(l.Length) / size
	}
	b.lumps[t] = info
	b.raw[t] = data
	return nil
}

// decodeLumps translates the raw bytes of every sized lump into records.
func (b *BSP) decodeLumps() error {
	var err error
	if b.materials, err = readRecords[binMaterial](b, LumpMaterials); err != nil {
		return err
	}
	if b.planes, err = readRecords[binPlane](b, LumpPlanes); err != nil {
		return err
	}
	if b.brushSides, err = readRecords[binBrushSide](b, LumpBrushSides); err != nil {
		return err
	}
	if b.brushes, err = readRecords[binBrush](b, LumpBrushes); err != nil {
		return err
	}
	if b.triangleSoups, err = readRecords[binTriangleSoup](b, LumpTriangles); err != nil {
		return err
	}
	if b.drawVerts, err = readRecords[binDrawVert](b, LumpDrawVerts); err != nil {
		return err
	}
	if b.drawIndices, err = readRecords[uint16](b, LumpDrawIndices); err != nil {
		return err
	}
	if b.cullGroups, err = readRecords[binCullGroup](b, LumpCullGroups); err != nil {
		return err
	}
	if b.portalVerts, err = readRecords[binPortalVert](b, LumpPortalVerts); err != nil {
		return err
	}
	if b.aabbTrees, err = readRecords[binAabbTree](b, LumpAabbTrees); err != nil {
		return err
	}
	if b.cells, err = readRecords[binCell](b, LumpCells); err != nil {
		return err
	}
	if b.portals, err = readRecords[binPortal](b, LumpPortals); err != nil {
		return err
	}
	if b.nodes, err = readRecords[binNode](b, LumpNodes); err != nil {
		return err
	}
	if b.leafs, err = readRecords[binLeaf](b, LumpLeafs); err != nil {
		return err
	}
	if b.leafBrushes, err = readRecords[binLeafBrush](b, LumpLeafBrushes); err != nil {
		return err
	}
	if b.leafSurfaces, err = readRecords[binLeafSurface](b, LumpLeafSurfaces); err != nil {
		return err
	}
	if b.collisionVerts, err = readRecords[binCollisionVert](b, LumpCollisionVerts); err != nil {
		return err
	}
	if b.collisionEdges, err = readRecords[binCollisionEdge](b, LumpCollisionEdges); err != nil {
		return err
	}
	if b.collisionTris, err = readRecords[binCollisionTri](b, LumpCollisionTris); err != nil {
		return err
	}
	if b.collisionBorders, err = readRecords[binCollisionBorder](b, LumpCollisionBorders); err != nil {
		return err
	}
	if b.collisionPartitions, err = readRecords[binCollisionPartition](b, LumpCollisionPartitions); err != nil {
		return err
	}
	if b.collisionAabbs, err = readRecords[binCollisionAabb](b, LumpCollisionAabbs); err != nil {
		return err
	}
	if b.models, err = readRecords[binModel](b, LumpModels); err != nil {
		return err
	}
	return nil
}

// readRecords decodes lump t into a slice of fixed-layout records.
func readRecords[T any](b *BSP, t LumpType) ([]T, error) {
	records := make([]T, b.lumps[t].Count)
	if len(records) == 0 {
		return records, nil
	}
	if err := binary.Read(bytes.NewReader(b.raw[t]), binary.LittleEndian, records); err != nil {
		return nil, errors.Wrapf(err, "decoding %s lump", t)
	}
	logger.Debug().Msgf("Read %v %s", len(records), t)
	return records, nil
}

// Lump returns the directory information of lump t.
func (b *BSP) Lump(t LumpType) LumpInfo {
	return b.lumps[t]
}

// Size returns the size of the decoded file in bytes.
func (b *BSP) Size() int64 {
	return b.size
}

// RawLump returns the bytes of lump t. The slice must not be modified.
func (b *BSP) RawLump(t LumpType) []byte {
	return b.raw[t]
}

// MaterialName returns the name of material i, or "caulk" when i is out
// of range.
func (b *BSP) MaterialName(i int) string {
	if i < 0 || i >= len(b.materials) {
		return defaultMaterial
	}
	return b.materials[i].String()
}

const defaultMaterial = "caulk"
