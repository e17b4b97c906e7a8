package d3dbsp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMap(t *testing.T, b *BSP, opts ExportOptions) []string {
	var buf bytes.Buffer
	require.NoError(t, b.WriteMap(&buf, opts))
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func planeLines(lines []string) []string {
	var planes []string
	for _, l := range lines {
		if strings.HasPrefix(l, " ( ") {
			planes = append(planes, l)
		}
	}
	return planes
}

const topFace = " ( 0.000000 -100.000000 16.000000 ) ( -100.000000 0.000000 16.000000 ) ( 0.000000 0.000000 16.000000 ) wood 128 128 0 0 0 0 lightmap_gray 16384 16384 0 0 0 0"

func TestWriteMapCube(t *testing.T) {
	lines := writeMap(t, cubeBuilder(t).decode(), DefaultExportOptions())

	require.GreaterOrEqual(t, len(lines), 13)
	assert.Equal(t, []string{"iwmap 4", "// entity 0", "{", `"classname" "worldspawn"`, "{"}, lines[:5])
	assert.Equal(t, []string{"}", "}"}, lines[len(lines)-2:])
	planes := planeLines(lines)
	require.Len(t, planes, 6)
	assert.Equal(t, topFace, planes[5])
	for _, p := range planes {
		assert.True(t, strings.HasSuffix(p, " wood 128 128 0 0 0 0 lightmap_gray 16384 16384 0 0 0 0"))
	}
}

func TestWriteMapBrushEntity(t *testing.T) {
	b := cubeBuilder(t).
		put(LumpModels, []binModel{{NumBrushes: 0}, {FirstBrush: 0, NumBrushes: 1}}).
		entities(worldspawn +
			"{\n\"classname\" \"script_brushmodel\"\n\"origin\" \"10 0 0\"\n\"model\" \"*1\"\n\"targetname\" \"door\"\n}\n" +
			"{\n\"classname\" \"info_player_start\"\n\"origin\" \"1 2 3\"\n}\n").
		decode()

	lines := writeMap(t, b, DefaultExportOptions())
	text := strings.Join(lines, "\n")

	assert.Contains(t, text, "// entity 1\n{\n\"classname\" \"script_brushmodel\"\n\"targetname\" \"door\"\n{\n")
	assert.Contains(t, text, "// entity 2\n{\n\"classname\" \"info_player_start\"\n\"origin\" \"1 2 3\"\n}")
	assert.NotContains(t, text, `"model"`)

	planes := planeLines(lines)
	require.Len(t, planes, 6)
	assert.Equal(t, " ( 10.000000 -100.000000 16.000000 ) ( -90.000000 0.000000 16.000000 ) ( 10.000000 0.000000 16.000000 ) wood 128 128 0 0 0 0 lightmap_gray 16384 16384 0 0 0 0", planes[5])
}

func TestWriteMapMissingInlineModel(t *testing.T) {
	b := cubeBuilder(t).
		entities(worldspawn + "{\n\"classname\" \"trigger_multiple\"\n}\n").
		decode()
	lines := writeMap(t, b, DefaultExportOptions())
	assert.Len(t, planeLines(lines), 6)
}

func TestWriteMapUnknownInlineModel(t *testing.T) {
	b := cubeBuilder(t).
		entities(worldspawn + "{\n\"classname\" \"script_brushmodel\"\n\"model\" \"*4\"\n}\n").
		decode()
	lines := writeMap(t, b, DefaultExportOptions())
	assert.Len(t, planeLines(lines), 6)
	assert.Equal(t, []string{"// entity 1", "{", `"classname" "script_brushmodel"`, "}"}, lines[len(lines)-4:])
}

func TestWriteMapZeroOptions(t *testing.T) {
	b := collisionBuilder(t, 4, []int16{0}, []binCollisionTri{tri(1, 2, 3)}).decode()
	text := strings.Join(writeMap(t, b, ExportOptions{}), "\n")
	assert.Equal(t, strings.Join(writeMap(t, b, DefaultExportOptions()), "\n"), text)
	assert.Contains(t, text, "   mesh\n")
}

func TestWriteMapPortals(t *testing.T) {
	// The only brush is all portal faces
	b := portalBuilder(t).
		put(LumpBrushSides, boxSides([3]float32{0, 0, 0}, [3]float32{16, 16, 16}, 1)).
		decode()

	lines := writeMap(t, b, DefaultExportOptions())
	planes := planeLines(lines)
	require.Len(t, planes, 6)
	assert.True(t, strings.Contains(planes[0], ") portal 128"))
	for _, p := range planes[1:] {
		assert.True(t, strings.Contains(p, ") portal_nodraw 128"))
	}

	opts := DefaultExportOptions()
	opts.PortalMode = PortalsOriginal
	planes = planeLines(writeMap(t, b, opts))
	require.Len(t, planes, 6)
	for _, p := range planes {
		assert.True(t, strings.Contains(p, ") portal 128"))
	}
}

func TestWriteMapPatches(t *testing.T) {
	b := collisionBuilder(t, 4, []int16{0}, []binCollisionTri{tri(1, 2, 3)}).decode()
	lines := writeMap(t, b, DefaultExportOptions())
	text := strings.Join(lines, "\n")
	assert.Contains(t, text, "  {\n   mesh\n   {\n   wood\n   lightmap_gray\n   2 2 16 8\n   (\n")
	assert.Contains(t, text, "  v 8.000000 8.000000 4.000000 t -1024 1024 -4 4\n  v 16.000000 0.000000 4.000000 t -1024 1024 -4 4\n   )")
	assert.Contains(t, text, "   (\n  v 24.000000 8.000000 4.000000 t -1024 1024 -4 4\n  v 8.000000 8.000000 4.000000 t -1024 1024 -4 4\n   )\n   }\n  }\n}")

	opts := DefaultExportOptions()
	opts.ExcludePatches = true
	assert.NotContains(t, strings.Join(writeMap(t, b, opts), "\n"), "mesh")
}

func TestWriteMapErrors(t *testing.T) {
	b := cubeBuilder(t).entities("").decode()
	err := b.WriteMap(&bytes.Buffer{}, DefaultExportOptions())
	requireFormatError(t, err, "entdata")

	b = cubeBuilder(t).put(LumpModels, []binModel{{NumBrushes: 2}}).decode()
	err = b.WriteMap(&bytes.Buffer{}, DefaultExportOptions())
	requireFormatError(t, err, "models")

	opts := DefaultExportOptions()
	opts.PortalMode = "sideways"
	assert.Error(t, cubeBuilder(t).decode().WriteMap(&bytes.Buffer{}, opts))
}

func TestExportMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mp_cube_exported.map")

	require.NoError(t, cubeBuilder(t).decode().ExportMap(path, DefaultExportOptions()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "iwmap 4\n// entity 0\n"))

	// A failed export leaves nothing behind
	bad := filepath.Join(dir, "bad.map")
	b := cubeBuilder(t).put(LumpModels, []binModel{{NumBrushes: 2}}).decode()
	assert.Error(t, b.ExportMap(bad, DefaultExportOptions()))
	assert.NoFileExists(t, bad)
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("maps", "mp", "mp_crash_exported.map"), DefaultExportPath(filepath.Join("maps", "mp", "mp_crash.d3dbsp")))
	assert.Equal(t, "mp_crash_exported.map", DefaultExportPath("mp_crash"))
}
