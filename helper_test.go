package d3dbsp

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// bspBuilder assembles a file in memory: the header followed by every
// non-empty lump in directory order.
type bspBuilder struct {
	t       *testing.T
	magic   [4]byte
	version uint32
	lumps   [NumLumps][]byte
}

func newBSPBuilder(t *testing.T) *bspBuilder {
	return &bspBuilder{t: t, magic: Magic, version: Version}
}

func (bb *bspBuilder) put(lump LumpType, records any) *bspBuilder {
	var buf bytes.Buffer
	require.NoError(bb.t, binary.Write(&buf, binary.LittleEndian, records))
	bb.lumps[lump] = buf.Bytes()
	return bb
}

func (bb *bspBuilder) raw(lump LumpType, data []byte) *bspBuilder {
	bb.lumps[lump] = data
	return bb
}

func (bb *bspBuilder) entities(text string) *bspBuilder {
	return bb.raw(LumpEntities, append([]byte(text), 0))
}

func (bb *bspBuilder) bytes() []byte {
	h := binHeader{Magic: bb.magic, Version: bb.version}
	offset := binary.Size(h)
	for i, data := range bb.lumps {
		h.Lumps[i] = binLump{Length: uint32(len(data)), Offset: uint32(offset)}
		offset += len(data)
	}

	var buf bytes.Buffer
	require.NoError(bb.t, binary.Write(&buf, binary.LittleEndian, h))
	for _, data := range bb.lumps {
		buf.Write(data)
	}
	return buf.Bytes()
}

func (bb *bspBuilder) decode() *BSP {
	b, err := Decode(NewMemoryStream(bb.bytes()))
	require.NoError(bb.t, err)
	return b
}

func material(name string) binMaterial {
	var m binMaterial
	copy(m.Name[:], name)
	return m
}

// boxSides returns the six axial sides of a box, each using materials[k]
// or materials[0].
func boxSides(mins, maxs [3]float32, materials ...int32) []binBrushSide {
	sides := make([]binBrushSide, 0, axialSides)
	for axis := 0; axis < 3; axis++ {
		for sign, v := range []float32{mins[axis], maxs[axis]} {
			var m int32
			if k := axis*2 + sign; k < len(materials) {
				m = materials[k]
			} else if len(materials) > 0 {
				m = materials[0]
			}
			sides = append(sides, binBrushSide{Plane: int32(math.Float32bits(v)), MaterialNum: m})
		}
	}
	return sides
}

const worldspawn = "{\n\"classname\" \"worldspawn\"\n}\n"

// cubeBuilder describes one 16 unit cube in model 0.
func cubeBuilder(t *testing.T) *bspBuilder {
	return newBSPBuilder(t).
		put(LumpMaterials, []binMaterial{material("wood"), material("portal")}).
		put(LumpBrushSides, boxSides([3]float32{0, 0, 0}, [3]float32{16, 16, 16})).
		put(LumpBrushes, []binBrush{{NumSides: 6}}).
		put(LumpModels, []binModel{{NumBrushes: 1}}).
		entities(worldspawn)
}

func cubeBrush() Brush {
	mins, maxs := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{16, 16, 16}
	b := Brush{Mins: mins, Maxs: maxs}
	planes := planesFromBounds(mins, maxs)
	for _, p := range planes {
		p.Material = "wood"
		b.Planes = append(b.Planes, p)
	}
	return b
}
