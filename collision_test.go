package d3dbsp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollisionTree(t *testing.T) {
	b := collisionBuilder(t, 4, []int16{0, 1},
		[]binCollisionTri{tri(1, 2, 3)},
		[]binCollisionTri{tri(1, 2, 3)},
	).put(LumpCollisionAabbs, []binCollisionAabb{
		{Origin: [3]float32{8, 8, 8}, HalfSize: [3]float32{8, 8, 8}, ChildCount: 2, Index: 1},
		{MaterialIndex: 0, Index: 0},
		{MaterialIndex: 1, Index: 1},
	}).decode()

	nodes, err := b.CollisionTree()
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	root, ok := nodes[0].(*CollisionBranch)
	require.True(t, ok)
	assert.Equal(t, CollisionBranchType, root.CollisionType())
	assert.Equal(t, 1, root.FirstChild)
	assert.Equal(t, 2, root.ChildCount)
	mins, maxs := root.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, mins)
	assert.Equal(t, mgl32.Vec3{16, 16, 16}, maxs)

	leaf, ok := nodes[2].(*CollisionLeaf)
	require.True(t, ok)
	assert.Equal(t, CollisionLeafType, leaf.CollisionType())
	assert.Equal(t, 1, leaf.Partition)
	assert.Equal(t, 1, leaf.MaterialIndex)

	assert.Equal(t, []int{0}, collisionRoots(nodes))

	var buf bytes.Buffer
	PrintCollisionTree(&buf, nodes)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "- node 0 children 2"))
	assert.True(t, strings.HasPrefix(lines[1], "   - leaf 1 partition 0 material 0"))
	assert.True(t, strings.HasPrefix(lines[2], "   - leaf 2 partition 1 material 1"))
}

func TestCollisionTreeBadReferences(t *testing.T) {
	b := collisionBuilder(t, 4, []int16{0}, []binCollisionTri{tri(1, 2, 3)}).
		put(LumpCollisionAabbs, []binCollisionAabb{{ChildCount: 3, Index: 1}, {}}).
		decode()
	_, err := b.CollisionTree()
	requireFormatError(t, err, "collisionaabbs")

	b = collisionBuilder(t, 4, []int16{0}, []binCollisionTri{tri(1, 2, 3)}).
		put(LumpCollisionAabbs, []binCollisionAabb{{Index: 5}}).
		decode()
	_, err = b.CollisionTree()
	requireFormatError(t, err, "collisionaabbs")
}
