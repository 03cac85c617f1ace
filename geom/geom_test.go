package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnclosingAABB(t *testing.T) {
	points := []mgl32.Vec3{
		{0, 0, 0},
		{1, 2, 3},
		{-1, 5, 0},
	}
	box, ok := EnclosingAABB(points)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{1, 5, 3}, box.Max)
}

func TestEnclosingAABB_Empty(t *testing.T) {
	_, ok := EnclosingAABB(nil)
	assert.False(t, ok)
}

func TestAABB_Expand(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	grown := box.Expand(0.5)
	assert.Equal(t, mgl32.Vec3{-0.5, -0.5, -0.5}, grown.Min)
	assert.Equal(t, mgl32.Vec3{1.5, 1.5, 1.5}, grown.Max)
}

func TestGrid_HalfOpenIndexing(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{4, 4, 4}}
	g := NewGrid(box, 1.0)

	// A point exactly on a cell boundary maps to the cell above, not below.
	c := g.CellOf(mgl32.Vec3{2, 0, 0})
	assert.Equal(t, CellIndex{I: 2, J: 0, K: 0}, c)

	c2 := g.CellOf(mgl32.Vec3{1.999, 0, 0})
	assert.Equal(t, CellIndex{I: 1, J: 0, K: 0}, c2)
}

func TestGrid_CellCorners(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 2, 2}}
	g := NewGrid(box, 1.0)
	corners := g.CellCorners(CellIndex{I: 0, J: 0, K: 0})
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, corners[0])
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, corners[1])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, corners[6])
}

func TestNumericOverflow(t *testing.T) {
	assert.False(t, NumericOverflow([3]int{100, 100, 100}))
	assert.True(t, NumericOverflow([3]int{1 << 11, 1 << 11, 1 << 11}))
	assert.True(t, NumericOverflow([3]int{0, 10, 10}))
}
