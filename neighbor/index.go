// Package neighbor implements a per-subdomain flat spatial hash that
// answers compact-support radius queries in O(1) amortized time. Points are
// bucketed into a counting-sort cell_start[]/particle_index[] layout
// instead of a map-of-slices, so a cell's contents are contiguous and its
// iteration order is reproducible run to run.
package neighbor

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/geom"
)

// Index is a flat spatial hash over a fixed point set. Cells are sized to
// the compact support radius, so a neighbor query only has to examine the
// 3x3x3 stencil of cells around the query point.
type Index struct {
	grid         geom.Grid
	cellStart    []int32 // len = numCells+1
	particleIdx  []int32 // len = len(points)
	points       []mgl32.Vec3
}

// Build constructs an Index over points, using cellSize as the cell edge
// (callers pass the compact support radius so a 3x3x3 stencil suffices).
func Build(points []mgl32.Vec3, bounds geom.AABB, cellSize float32) *Index {
	g := geom.NewGrid(bounds, cellSize)
	numCells := g.Dims[0] * g.Dims[1] * g.Dims[2]

	counts := make([]int32, numCells+1)
	cellOf := make([]int32, len(points))
	for i, p := range points {
		c := g.CellOf(p)
		flat := flatten(g, c)
		cellOf[i] = flat
		counts[flat+1]++
	}
	for i := 1; i <= numCells; i++ {
		counts[i] += counts[i-1]
	}
	cellStart := make([]int32, numCells+1)
	copy(cellStart, counts)

	cursor := make([]int32, numCells)
	copy(cursor, counts[:numCells])
	particleIdx := make([]int32, len(points))
	for i := range points {
		flat := cellOf[i]
		particleIdx[cursor[flat]] = int32(i)
		cursor[flat]++
	}

	return &Index{grid: g, cellStart: cellStart, particleIdx: particleIdx, points: points}
}

func flatten(g geom.Grid, c geom.CellIndex) int32 {
	// Clamp to grid bounds: points exactly on the outer edge of `bounds`
	// can floor into Dims due to float rounding; clamping keeps them in
	// the last valid cell instead of overflowing the flat index.
	i, j, k := c.I, c.J, c.K
	if i < 0 {
		i = 0
	} else if i >= g.Dims[0] {
		i = g.Dims[0] - 1
	}
	if j < 0 {
		j = 0
	} else if j >= g.Dims[1] {
		j = g.Dims[1] - 1
	}
	if k < 0 {
		k = 0
	} else if k >= g.Dims[2] {
		k = g.Dims[2] - 1
	}
	return int32(i + g.Dims[0]*(j+g.Dims[1]*k))
}

// CellRange returns the [start, end) range of particleIdx for a given cell.
func (idx *Index) CellRange(c geom.CellIndex) (start, end int32) {
	if c.I < 0 || c.I >= idx.grid.Dims[0] ||
		c.J < 0 || c.J >= idx.grid.Dims[1] ||
		c.K < 0 || c.K >= idx.grid.Dims[2] {
		return 0, 0
	}
	flat := flatten(idx.grid, c)
	return idx.cellStart[flat], idx.cellStart[flat+1]
}

// Query enumerates every point index q such that ||x - points[q]|| < radius,
// by scanning the 3x3x3 cell stencil around x. fn is called once per match;
// mask, if non-nil, is consulted before the distance check and candidates
// for which mask[q] is false are skipped (used to suppress ghost-ghost
// work when only owned-particle contributions are needed).
func (idx *Index) Query(x mgl32.Vec3, radius float32, mask []bool, fn func(q int32)) {
	center := idx.grid.CellOf(x)
	r2 := radius * radius
	for dk := -1; dk <= 1; dk++ {
		for dj := -1; dj <= 1; dj++ {
			for di := -1; di <= 1; di++ {
				c := geom.CellIndex{I: center.I + di, J: center.J + dj, K: center.K + dk}
				start, end := idx.CellRange(c)
				for p := start; p < end; p++ {
					q := idx.particleIdx[p]
					if mask != nil && !mask[q] {
						continue
					}
					d := idx.points[q].Sub(x)
					if d.LenSqr() < r2 {
						fn(q)
					}
				}
			}
		}
	}
}

// Len returns the number of indexed points.
func (idx *Index) Len() int { return len(idx.points) }
