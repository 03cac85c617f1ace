// Package mc triangulates a subdomain's density.ScalarField into a surface
// mesh via Marching Cubes.
package mc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/density"
	"github.com/gekko3d/surfmesh/geom"
	"github.com/gekko3d/surfmesh/subdomain"
)

// cornerOffsets gives the (i,j,k) lattice offset of each of the 8 cube
// corners from the cell's min corner, in the same winding geom.Grid.
// CellCorners uses.
var cornerOffsets = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// EdgeKey identifies a grid edge independent of which cell or subdomain
// produced it: the canonical (min-corner) lattice point of the edge in
// background-grid coordinates, plus the axis the edge runs along. Two
// subdomains triangulating adjacent cells across a shared face compute the
// same EdgeKey for their common edges, which is what lets stitch merge
// vertices without a global spatial search.
type EdgeKey struct {
	Axis    int // 0=X, 1=Y, 2=Z
	I, J, K int
}

func edgeKeyFor(ci, cj, ck int, edge int) EdgeKey {
	a, b := edgeVertices[edge][0], edgeVertices[edge][1]
	oa, ob := cornerOffsets[a], cornerOffsets[b]
	axis := 0
	for ax := 0; ax < 3; ax++ {
		if oa[ax] != ob[ax] {
			axis = ax
			break
		}
	}
	mi, mj, mk := oa[0], oa[1], oa[2]
	if ob[0] < mi {
		mi = ob[0]
	}
	if ob[1] < mj {
		mj = ob[1]
	}
	if ob[2] < mk {
		mk = ob[2]
	}
	return EdgeKey{Axis: axis, I: ci + mi, J: cj + mj, K: ck + mk}
}

// Mesh is one subdomain's local triangulation result: a deduplicated vertex
// list, the EdgeKey each vertex was interpolated on (for stitch to match
// against neighboring subdomains), and a triangle index list into Vertices.
type Mesh struct {
	Vertices  []mgl32.Vec3
	EdgeKeys  []EdgeKey
	Triangles []int32
}

// Triangulate runs Marching Cubes over one subdomain's scalar field. lo is
// the background-grid cell index of the field's local origin (field index
// (0,0,0) corresponds to background vertex lo); isoValue is tau*rho0.
//
// Sign convention: a corner is "outside" the surface (bit set) when its
// density is strictly less than isoValue, matching the classic Lorensen/
// Cline table in tables.go; a corner exactly at isoValue counts as inside,
// giving deterministic, non-ambiguous endpoint handling for density samples
// that land exactly on the threshold. Degenerate triangles (zero area,
// from coincident interpolated vertices) are emitted as produced by the
// table, not suppressed — removing those is postproc's job, not this
// stage's.
func Triangulate(bg geom.Grid, loI, loJ, loK int, field density.ScalarField, isoValue float32) Mesh {
	dims := field.Dims()
	cells := dims - 1

	m := Mesh{}
	vertexOf := make(map[EdgeKey]int32)

	getVal := func(li, lj, lk int) float32 {
		if !field.Touched(li, lj, lk) {
			return 0
		}
		return field.Get(li, lj, lk)
	}

	for lk := 0; lk < cells; lk++ {
		for lj := 0; lj < cells; lj++ {
			for li := 0; li < cells; li++ {
				var vals [8]float32
				anyTouched := false
				for c, off := range cornerOffsets {
					vals[c] = getVal(li+off[0], lj+off[1], lk+off[2])
					if field.Touched(li+off[0], lj+off[1], lk+off[2]) {
						anyTouched = true
					}
				}
				if !anyTouched {
					continue
				}

				var config uint8
				for c := 0; c < 8; c++ {
					if vals[c] < isoValue {
						config |= 1 << uint(c)
					}
				}
				if edgeTable[config] == 0 {
					continue
				}

				ci, cj, ck := loI+li, loJ+lj, loK+lk
				edgeLocalVert := [12]int32{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}

				vertexForEdge := func(e int) int32 {
					if v := edgeLocalVert[e]; v >= 0 {
						return v
					}
					key := edgeKeyFor(ci, cj, ck, e)
					if v, ok := vertexOf[key]; ok {
						edgeLocalVert[e] = v
						return v
					}
					a, b := edgeVertices[e][0], edgeVertices[e][1]
					oa, ob := cornerOffsets[a], cornerOffsets[b]
					pa := bg.VertexPos(ci+oa[0], cj+oa[1], ck+oa[2])
					pb := bg.VertexPos(ci+ob[0], cj+ob[1], ck+ob[2])
					va, vb := vals[a], vals[b]
					t := float32(0.5)
					if va != vb {
						t = (isoValue - va) / (vb - va)
					}
					if t < 0 {
						t = 0
					} else if t > 1 {
						t = 1
					}
					pos := pa.Add(pb.Sub(pa).Mul(t))
					idx := int32(len(m.Vertices))
					m.Vertices = append(m.Vertices, pos)
					m.EdgeKeys = append(m.EdgeKeys, key)
					vertexOf[key] = idx
					edgeLocalVert[e] = idx
					return idx
				}

				for _, e := range triangleEdges(config) {
					m.Triangles = append(m.Triangles, vertexForEdge(e))
				}
			}
		}
	}
	return m
}

// TriangulateSubdomain is a thin adapter over Triangulate for callers that
// have a subdomain.Grid/subdomain.Index in hand rather than a raw lattice
// origin.
func TriangulateSubdomain(sg subdomain.Grid, subIdx subdomain.Index, field density.ScalarField, isoValue float32) Mesh {
	lo, _ := sg.CellRange(subIdx)
	return Triangulate(sg.Background, lo.I, lo.J, lo.K, field, isoValue)
}
