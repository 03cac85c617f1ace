package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CellIndex addresses a single cubical cell of a uniform grid.
type CellIndex struct {
	I, J, K int
}

// Grid is a uniform axis-aligned grid of cubical cells of edge CellSize,
// anchored at Origin. Indexing follows a half-open [min, max) convention: a
// point on an upper cell boundary maps to the adjacent cell, not the one
// below it.
type Grid struct {
	Origin   mgl32.Vec3
	CellSize float32
	// Dims is the number of cells along each axis.
	Dims [3]int
}

// NewGrid builds a grid covering bounds, rounding the cell counts up so the
// grid fully encloses bounds.
func NewGrid(bounds AABB, cellSize float32) Grid {
	size := bounds.Size()
	dims := [3]int{
		int(math.Ceil(float64(size.X() / cellSize))),
		int(math.Ceil(float64(size.Y() / cellSize))),
		int(math.Ceil(float64(size.Z() / cellSize))),
	}
	for a := 0; a < 3; a++ {
		if dims[a] < 1 {
			dims[a] = 1
		}
	}
	return Grid{Origin: bounds.Min, CellSize: cellSize, Dims: dims}
}

// CellOf returns the index of the cell containing p.
func (g Grid) CellOf(p mgl32.Vec3) CellIndex {
	rel := p.Sub(g.Origin)
	return CellIndex{
		I: int(math.Floor(float64(rel.X() / g.CellSize))),
		J: int(math.Floor(float64(rel.Y() / g.CellSize))),
		K: int(math.Floor(float64(rel.Z() / g.CellSize))),
	}
}

// CellMin returns the world-space minimum corner of cell c.
func (g Grid) CellMin(c CellIndex) mgl32.Vec3 {
	return mgl32.Vec3{
		g.Origin.X() + float32(c.I)*g.CellSize,
		g.Origin.Y() + float32(c.J)*g.CellSize,
		g.Origin.Z() + float32(c.K)*g.CellSize,
	}
}

// VertexPos returns the world-space position of the grid vertex at integer
// lattice coordinates (i,j,k); cell corners double as MC vertices.
func (g Grid) VertexPos(i, j, k int) mgl32.Vec3 {
	return mgl32.Vec3{
		g.Origin.X() + float32(i)*g.CellSize,
		g.Origin.Y() + float32(j)*g.CellSize,
		g.Origin.Z() + float32(k)*g.CellSize,
	}
}

// InBounds reports whether c addresses a cell within Dims.
func (g Grid) InBounds(c CellIndex) bool {
	return c.I >= 0 && c.I < g.Dims[0] &&
		c.J >= 0 && c.J < g.Dims[1] &&
		c.K >= 0 && c.K < g.Dims[2]
}

// CellCorners returns the 8 corner vertices of cell c in the standard MC
// winding (corner 0 at the cell's min lattice point, advancing +X, +Y, +Z).
func (g Grid) CellCorners(c CellIndex) [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		g.VertexPos(c.I, c.J, c.K),
		g.VertexPos(c.I+1, c.J, c.K),
		g.VertexPos(c.I+1, c.J+1, c.K),
		g.VertexPos(c.I, c.J+1, c.K),
		g.VertexPos(c.I, c.J, c.K+1),
		g.VertexPos(c.I+1, c.J, c.K+1),
		g.VertexPos(c.I+1, c.J+1, c.K+1),
		g.VertexPos(c.I, c.J+1, c.K+1),
	}
}

// ForEachCell iterates every cell index in [lo, hi) (inclusive lo,
// exclusive hi on each axis), calling fn for each. Iteration order is
// ascending K, then J, then I innermost-last (I varies fastest), matching
// the row-major layout density/mc use for dense voxel arrays.
func ForEachCell(lo, hi CellIndex, fn func(c CellIndex)) {
	for k := lo.K; k < hi.K; k++ {
		for j := lo.J; j < hi.J; j++ {
			for i := lo.I; i < hi.I; i++ {
				fn(CellIndex{I: i, J: j, K: k})
			}
		}
	}
}

// NumericOverflow reports whether the given grid dimensions would overflow
// a 32-bit cell or vertex count.
func NumericOverflow(dims [3]int) bool {
	const maxIndex = int64(1) << 31
	total := int64(1)
	for _, d := range dims {
		if d <= 0 {
			return true
		}
		total *= int64(d)
		if total >= maxIndex {
			return true
		}
	}
	return false
}
