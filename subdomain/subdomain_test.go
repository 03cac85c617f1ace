package subdomain

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/surfmesh/geom"
)

func buildGrid(t *testing.T, s int, cellSize float32, bounds geom.AABB) Grid {
	t.Helper()
	bg := geom.NewGrid(bounds, cellSize)
	return NewGrid(bg, s)
}

func TestGrid_CellRangeTilesBackground(t *testing.T) {
	bounds := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{8, 8, 8}}
	sg := buildGrid(t, 4, 1.0, bounds) // background is 8^3 cells, S=4 -> 2x2x2 subdomains
	assert.Equal(t, [3]int{2, 2, 2}, sg.Dims)

	lo, hi := sg.CellRange(Index{0, 0, 0})
	assert.Equal(t, geom.CellIndex{I: 0, J: 0, K: 0}, lo)
	assert.Equal(t, geom.CellIndex{I: 4, J: 4, K: 4}, hi)

	lo2, hi2 := sg.CellRange(Index{1, 1, 1})
	assert.Equal(t, geom.CellIndex{I: 4, J: 4, K: 4}, lo2)
	assert.Equal(t, geom.CellIndex{I: 8, J: 8, K: 8}, hi2)
}

func TestGrid_NeighborsExcludesSelfAndOutOfBounds(t *testing.T) {
	bounds := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{8, 8, 8}}
	sg := buildGrid(t, 4, 1.0, bounds)
	neighbors := sg.Neighbors(Index{0, 0, 0})
	// With Dims 2x2x2 every other subdomain (7 of them) is a neighbor of
	// the corner subdomain (0,0,0).
	assert.Len(t, neighbors, 7)
	for _, n := range neighbors {
		assert.NotEqual(t, Index{0, 0, 0}, n)
	}
}

func TestClassify_EveryParticleOwnedExactlyOnce(t *testing.T) {
	bounds := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 10}}
	sg := buildGrid(t, 2, 1.0, bounds)

	points := []mgl32.Vec3{
		{0.5, 0.5, 0.5}, {1.5, 0.5, 0.5}, {9.5, 9.5, 9.5}, {5, 5, 5},
	}
	sets := Classify(points, sg, 0.5)

	owners := map[int32]int{}
	totalOwned := 0
	for si, ws := range sets {
		totalOwned += len(ws.Owned)
		for _, o := range ws.Owned {
			owners[o] = si
		}
	}
	assert.Len(t, owners, len(points))
	assert.Equal(t, len(points), totalOwned)
}

func TestClassify_GhostsAppearAcrossBoundary(t *testing.T) {
	bounds := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{8, 8, 8}}
	sg := buildGrid(t, 4, 1.0, bounds)

	// One particle just inside subdomain (0,0,0), one just inside (1,0,0),
	// close enough to the shared boundary (x=4) that each should see the
	// other as a ghost with a margin of 1.0.
	points := []mgl32.Vec3{
		{3.7, 1, 1},
		{4.3, 1, 1},
	}
	sets := Classify(points, sg, 1.0)
	require.Len(t, sets, 2)

	bySub := map[Index]WorkingSet{}
	for _, ws := range sets {
		bySub[ws.Index] = ws
	}
	left := bySub[Index{0, 0, 0}]
	right := bySub[Index{1, 0, 0}]
	assert.Len(t, left.Owned, 1)
	assert.Len(t, left.Ghost, 1)
	assert.Len(t, right.Owned, 1)
	assert.Len(t, right.Ghost, 1)
}

func TestGhostMargin(t *testing.T) {
	assert.Equal(t, float32(2.0), GhostMargin(1.0, false))
	assert.Equal(t, float32(1.0), GhostMargin(1.0, true))
}
