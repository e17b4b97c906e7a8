package d3dbsp

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type CollisionType int

const (
	CollisionBranchType CollisionType = iota
	CollisionLeafType
)

// CollisionMember is a node of the collision AABB tree: either a
// *CollisionBranch or a *CollisionLeaf.
type CollisionMember interface {
	CollisionType() CollisionType
	Bounds() (mins, maxs mgl32.Vec3)
}

// CollisionNode holds the fields shared by branches and leaves.
type CollisionNode struct {
	Index         int
	Origin        mgl32.Vec3
	HalfSize      mgl32.Vec3
	MaterialIndex int
}

func (n *CollisionNode) Bounds() (mins, maxs mgl32.Vec3) {
	return n.Origin.Sub(n.HalfSize), n.Origin.Add(n.HalfSize)
}

// CollisionBranch has ChildCount children stored from FirstChild on.
type CollisionBranch struct {
	CollisionNode
	FirstChild int
	ChildCount int
}

// CollisionLeaf points at a partition of collision triangles.
type CollisionLeaf struct {
	CollisionNode
	Partition int
}

func (b *CollisionBranch) CollisionType() CollisionType {
	return CollisionBranchType
}

func (l *CollisionLeaf) CollisionType() CollisionType {
	return CollisionLeafType
}

// CollisionTree returns the collision AABB nodes in lump order. A node with
// children becomes a branch, any other node a leaf.
func (b *BSP) CollisionTree() ([]CollisionMember, error) {
	logger.Debug().Msg("Reading collision tree ...")

	nodes := make([]CollisionMember, len(b.collisionAabbs))
	for i, n := range b.collisionAabbs {
		node := CollisionNode{
			Index:         i,
			Origin:        mgl32.Vec3(n.Origin),
			HalfSize:      mgl32.Vec3(n.HalfSize),
			MaterialIndex: int(n.MaterialIndex),
		}
		if n.ChildCount > 0 {
			first, count := int(n.Index), int(n.ChildCount)
			if first < 0 || first+count > len(b.collisionAabbs) {
				return nil, formatErrorf(LumpCollisionAabbs, "node %d has children %d+%d of %d", i, first, count, len(b.collisionAabbs))
			}
			nodes[i] = &CollisionBranch{CollisionNode: node, FirstChild: first, ChildCount: count}
			continue
		}
		if n.Index < 0 || int(n.Index) >= len(b.collisionPartitions) {
			return nil, formatErrorf(LumpCollisionAabbs, "node %d references partition %d of %d", i, n.Index, len(b.collisionPartitions))
		}
		nodes[i] = &CollisionLeaf{CollisionNode: node, Partition: int(n.Index)}
	}
	logger.Debug().Msgf("Read %v collision nodes", len(nodes))

	return nodes, nil
}

// collisionRoots returns the nodes no branch refers to.
func collisionRoots(nodes []CollisionMember) []int {
	referenced := make([]bool, len(nodes))
	for _, n := range nodes {
		if br, ok := n.(*CollisionBranch); ok {
			for c := br.FirstChild; c < br.FirstChild+br.ChildCount; c++ {
				referenced[c] = true
			}
		}
	}
	var roots []int
	for i, r := range referenced {
		if !r {
			roots = append(roots, i)
		}
	}
	return roots
}

// PrintCollisionTree writes the tree below every root, one node per line.
func PrintCollisionTree(w io.Writer, nodes []CollisionMember) {
	visited := make([]bool, len(nodes))
	var printRecursive func(int, string)
	printRecursive = func(i int, prefix string) {
		if visited[i] {
			fmt.Fprintf(w, "%s- %d (cycle)\n", prefix, i)
			return
		}
		visited[i] = true

		mins, maxs := nodes[i].Bounds()
		switch v := nodes[i].(type) {
		case *CollisionLeaf:
			fmt.Fprintf(w, "%s- leaf %d partition %d material %d %v %v\n", prefix, i, v.Partition, v.MaterialIndex, mins, maxs)
		case *CollisionBranch:
			fmt.Fprintf(w, "%s- node %d children %d %v %v\n", prefix, i, v.ChildCount, mins, maxs)
			for c := v.FirstChild; c < v.FirstChild+v.ChildCount; c++ {
				printRecursive(c, prefix+strings.Repeat(" ", 3))
			}
		}
	}

	for _, root := range collisionRoots(nodes) {
		printRecursive(root, "")
	}
}
