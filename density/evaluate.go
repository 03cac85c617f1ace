package density

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"

	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/neighbor"
	"github.com/gekko3d/surfmesh/subdomain"
)

// ParticleDensities runs Stage A: for every particle in positions (owned
// and, by default, ghosts too, since each subdomain recomputes its own
// ghosts' densities rather than relying on global synchronization), sums
// SPH contributions from every neighbor within support. positions holds
// the particle set being evaluated: a subdomain's combined owned+ghost
// positions, or every particle for a single global pass.
func ParticleDensities(positions []mgl32.Vec3, idx *neighbor.Index, k kernel.CubicSpline, mass float32) []float32 {
	out := make([]float32, len(positions))
	support := float32(k.CompactSupport)
	for i, p := range positions {
		sum := 0.0
		idx.Query(p, support, nil, func(q int32) {
			d := float64(p.Sub(positions[q]).Len())
			sum += float64(mass) * k.Eval(d)
		})
		out[i] = float32(sum)
	}
	return out
}

// canonicalKey orders particles the same way in every subdomain that sees
// them: by the flat index of the subdomain that owns the particle's
// position, then by the particle's own global index. Both neighboring
// subdomains compute this from the same deterministic function over the
// same particle positions, so they agree on order without any
// communication — this is what keeps shared-boundary float sums
// bit-identical on both sides of the boundary.
func canonicalKey(globalIdx int32, pos mgl32.Vec3, sg subdomain.Grid) (ownerFlat int, original int32) {
	c := sg.Background.CellOf(pos)
	si := sg.IndexOfCell(c)
	clampToGrid(&si, sg.Dims)
	return sg.Flatten(si), globalIdx
}

func clampToGrid(idx *subdomain.Index, dims [3]int) {
	if idx.I < 0 {
		idx.I = 0
	} else if idx.I >= dims[0] {
		idx.I = dims[0] - 1
	}
	if idx.J < 0 {
		idx.J = 0
	} else if idx.J >= dims[1] {
		idx.J = dims[1] - 1
	}
	if idx.K < 0 {
		idx.K = 0
	} else if idx.K >= dims[2] {
		idx.K = dims[2] - 1
	}
}

// VoxelField runs Stage B: accumulates, at every MC vertex of a subdomain,
// the SPH contribution of every particle whose support reaches it, summed
// in ascending canonical-key order so that a vertex shared with a
// neighboring subdomain gets a bit-identical float sum on both sides.
//
// sg/subIdx/globalIndices/positions together let VoxelField recompute the
// canonical owner of any particle without consulting global state; dense
// selects between DenseField and SparseField (subdomain.WorkingSet.Sparse).
func VoxelField(
	sg subdomain.Grid,
	subIdx subdomain.Index,
	globalIndices []int32,
	localPositions []mgl32.Vec3,
	idx *neighbor.Index,
	k kernel.CubicSpline,
	mass float32,
	dense bool,
) ScalarField {
	lo, hi := sg.CellRange(subIdx)
	dims := sg.S + 1
	if lo.I+sg.S != hi.I || lo.J+sg.S != hi.J || lo.K+sg.S != hi.K {
		// Boundary subdomain truncated by the background grid edge: size
		// the field to the largest per-axis cell count rather than a full
		// S-cube.
		dims = max3(hi.I-lo.I, hi.J-lo.J, hi.K-lo.K) + 1
	}

	var field ScalarField
	if dense {
		field = NewDenseField(dims)
	} else {
		field = NewSparseField(dims)
	}

	support := float32(k.CompactSupport)
	type contrib struct {
		ownerFlat int
		original  int32
		dist      float64
	}

	for li := 0; li < dims; li++ {
		for lj := 0; lj < dims; lj++ {
			for lk := 0; lk < dims; lk++ {
				vpos := sg.Background.VertexPos(lo.I+li, lo.J+lj, lo.K+lk)

				var candidates []contrib
				idx.Query(vpos, support, nil, func(q int32) {
					d := float64(vpos.Sub(localPositions[q]).Len())
					ownerFlat, original := canonicalKey(globalIndices[q], localPositions[q], sg)
					candidates = append(candidates, contrib{ownerFlat: ownerFlat, original: original, dist: d})
				})
				if len(candidates) == 0 {
					continue
				}
				sort.Slice(candidates, func(a, b int) bool {
					if candidates[a].ownerFlat != candidates[b].ownerFlat {
						return candidates[a].ownerFlat < candidates[b].ownerFlat
					}
					return candidates[a].original < candidates[b].original
				})

				terms := make([]float64, len(candidates))
				for ci, c := range candidates {
					terms[ci] = float64(mass) * k.Eval(c.dist)
				}
				// floats.Sum reduces left-to-right over the
				// canonically-ordered slice: an explicit, auditable
				// summation order rather than an accumulator variable
				// threaded through the loop above.
				sum := floats.Sum(terms)
				field.Set(li, lj, lk, float32(sum))
			}
		}
	}
	return field
}

func max3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
