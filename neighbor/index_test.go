package neighbor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/surfmesh/geom"
)

func TestIndex_CellRangeCoversAllPoints(t *testing.T) {
	points := []mgl32.Vec3{
		{0, 0, 0}, {0.1, 0, 0}, {5, 5, 5}, {5.1, 5, 5}, {10, 0, 0},
	}
	bounds, ok := geom.EnclosingAABB(points)
	require.True(t, ok)
	bounds = bounds.Expand(0.5)
	idx := Build(points, bounds, 1.0)
	assert.Equal(t, len(points), idx.Len())

	total := 0
	for i := range idx.cellStart[:len(idx.cellStart)-1] {
		total += int(idx.cellStart[i+1] - idx.cellStart[i])
	}
	assert.Equal(t, len(points), total)
}

func TestIndex_QueryFindsNeighborsWithinRadius(t *testing.T) {
	points := []mgl32.Vec3{
		{0, 0, 0}, {0.3, 0, 0}, {2, 2, 2},
	}
	bounds, _ := geom.EnclosingAABB(points)
	bounds = bounds.Expand(1.0)
	idx := Build(points, bounds, 1.0)

	var found []int32
	idx.Query(mgl32.Vec3{0, 0, 0}, 0.5, nil, func(q int32) {
		found = append(found, q)
	})
	assert.ElementsMatch(t, []int32{0, 1}, found)
}

func TestIndex_QueryRespectsMask(t *testing.T) {
	points := []mgl32.Vec3{{0, 0, 0}, {0.1, 0, 0}}
	bounds, _ := geom.EnclosingAABB(points)
	bounds = bounds.Expand(1.0)
	idx := Build(points, bounds, 1.0)

	mask := []bool{true, false}
	var found []int32
	idx.Query(mgl32.Vec3{0, 0, 0}, 1.0, mask, func(q int32) {
		found = append(found, q)
	})
	assert.Equal(t, []int32{0}, found)
}
