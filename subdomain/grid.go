// Package subdomain implements the two-level decomposition that makes the
// pipeline parallelizable: a coarse grid of fixed-size cubical subdomains
// over the background MC grid, and the classifier that assigns particles
// (including ghost copies) to each subdomain's working set.
package subdomain

import (
	"math"

	"github.com/gekko3d/surfmesh/geom"
)

// Index addresses one subdomain by its (I,J,K) position in the subdomain
// grid.
type Index struct {
	I, J, K int
}

// Less implements the canonical lexicographic tie-break used for
// boundary-vertex ownership: the subdomain with the smallest (I,J,K) among
// sharers of a shared edge owns the vertex on it.
func (a Index) Less(b Index) bool {
	if a.I != b.I {
		return a.I < b.I
	}
	if a.J != b.J {
		return a.J < b.J
	}
	return a.K < b.K
}

// Grid partitions a background MC grid (geom.Grid) into subdomains of
// S^3 MC cells each, with (S+1)^3 MC vertices per subdomain; subdomains at
// the background grid's upper edge are truncated to the cells that remain.
type Grid struct {
	Background geom.Grid
	S          int
	Dims       [3]int
}

// NewGrid builds a subdomain grid over bg with S cells per subdomain axis.
func NewGrid(bg geom.Grid, s int) Grid {
	dims := [3]int{}
	for a := 0; a < 3; a++ {
		dims[a] = int(math.Ceil(float64(bg.Dims[a]) / float64(s)))
		if dims[a] < 1 {
			dims[a] = 1
		}
	}
	return Grid{Background: bg, S: s, Dims: dims}
}

// NumSubdomains returns the total subdomain count.
func (g Grid) NumSubdomains() int { return g.Dims[0] * g.Dims[1] * g.Dims[2] }

// Flatten maps a subdomain index to a dense array slot, row-major with I
// fastest-varying, matching geom.ForEachCell's convention.
func (g Grid) Flatten(idx Index) int {
	return idx.I + g.Dims[0]*(idx.J+g.Dims[1]*idx.K)
}

// CellRange returns the half-open range of background MC cells [lo, hi)
// owned by subdomain idx.
func (g Grid) CellRange(idx Index) (lo, hi geom.CellIndex) {
	lo = geom.CellIndex{I: idx.I * g.S, J: idx.J * g.S, K: idx.K * g.S}
	hi = geom.CellIndex{I: lo.I + g.S, J: lo.J + g.S, K: lo.K + g.S}
	if hi.I > g.Background.Dims[0] {
		hi.I = g.Background.Dims[0]
	}
	if hi.J > g.Background.Dims[1] {
		hi.J = g.Background.Dims[1]
	}
	if hi.K > g.Background.Dims[2] {
		hi.K = g.Background.Dims[2]
	}
	return lo, hi
}

// Bounds returns the world-space AABB of subdomain idx's owned MC cells
// (not including any ghost margin).
func (g Grid) Bounds(idx Index) geom.AABB {
	lo, hi := g.CellRange(idx)
	return geom.AABB{
		Min: g.Background.VertexPos(lo.I, lo.J, lo.K),
		Max: g.Background.VertexPos(hi.I, hi.J, hi.K),
	}
}

// IndexOfCell returns which subdomain owns background cell c.
func (g Grid) IndexOfCell(c geom.CellIndex) Index {
	return Index{I: c.I / g.S, J: c.J / g.S, K: c.K / g.S}
}

// AllIndices returns every subdomain index in the grid, in ascending
// Flatten order (I varying fastest, K slowest).
func (g Grid) AllIndices() []Index {
	out := make([]Index, 0, g.NumSubdomains())
	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				out = append(out, Index{I: i, J: j, K: k})
			}
		}
	}
	return out
}

// Neighbors returns the (up to 26) subdomain indices adjacent to idx,
// including diagonal face/edge/corner neighbors, clipped to the grid.
func (g Grid) Neighbors(idx Index) []Index {
	out := make([]Index, 0, 26)
	for dk := -1; dk <= 1; dk++ {
		for dj := -1; dj <= 1; dj++ {
			for di := -1; di <= 1; di++ {
				if di == 0 && dj == 0 && dk == 0 {
					continue
				}
				n := Index{I: idx.I + di, J: idx.J + dj, K: idx.K + dk}
				if n.I < 0 || n.I >= g.Dims[0] || n.J < 0 || n.J >= g.Dims[1] || n.K < 0 || n.K >= g.Dims[2] {
					continue
				}
				out = append(out, n)
			}
		}
	}
	return out
}
