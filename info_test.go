package d3dbsp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintInfo(t *testing.T) {
	b := cubeBuilder(t).
		entities(worldspawn + "{\n\"classname\" \"light\"\n}\n{\n\"classname\" \"light\"\n}\n").
		decode()

	var buf bytes.Buffer
	require.NoError(t, b.PrintInfo(&buf, "mp_cube.d3dbsp"))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "d3dbsp\n---------------------\nmp_cube.d3dbsp: "))
	assert.Contains(t, out, "     1 models                  48 B\t 1 KB")
	assert.Contains(t, out, "     2 materials              144 B\t 1 KB")
	assert.Contains(t, out, "     3 entdata ")
	assert.Contains(t, out, "     2 lights                   0 B\t 0 KB   0.0%\n")
	assert.Contains(t, out, "     ? shadowverts              0 B\t 0 KB   0.0%\n")
	assert.Contains(t, out, "       visibility               0 B\t 0 KB   0.0%\n")
	assert.True(t, strings.HasSuffix(out, "\n\n     ? paths                    0 B\t 0 KB   0.0%\n---------------------\n"))
}
