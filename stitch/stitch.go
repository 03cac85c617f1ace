// Package stitch merges per-subdomain Marching Cubes patches into one
// global indexed mesh, with no duplicated vertices and no dangling edges
// at subdomain boundaries.
package stitch

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/internal/workerpool"
	"github.com/gekko3d/surfmesh/mc"
	"github.com/gekko3d/surfmesh/subdomain"
)

// Patch pairs one subdomain's local triangulation with the subdomain index
// that produced it, needed for the boundary-vertex ownership tie-break.
type Patch struct {
	SubIdx subdomain.Index
	Mesh   mc.Mesh
}

// Mesh is the stitched global mesh: one deduplicated vertex per distinct
// EdgeKey across all input patches, and a triangle list remapped onto that
// global vertex array.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles []int32
}

// Stitch merges patches by an ownership protocol: for every edge key
// shared by 2, 4, or 8 subdomains (a subdomain-grid face, edge, or
// corner), the subdomain with the smallest lexicographic (I,J,K) index
// among sharers owns the vertex; every other sharer's reference resolves to
// that same global index rather than creating a duplicate. Because
// density.VoxelField guarantees bit-identical scalar values on both sides
// of a shared face, the owned and referenced copies of a boundary vertex
// would already be at the same coordinate — ownership only decides which
// one is materialized.
func Stitch(patches []Patch) Mesh {
	// Pass 1: determine, for every edge key, which subdomain owns it. This
	// is the cross-subdomain step the two-pass prefix-sum protocol below
	// presupposes as already resolved before the parallel count/write
	// passes.
	owner := make(map[mc.EdgeKey]subdomain.Index, estimateVertexCount(patches))
	for _, p := range patches {
		for _, key := range p.Mesh.EdgeKeys {
			cur, ok := owner[key]
			if !ok || p.SubIdx.Less(cur) {
				owner[key] = p.SubIdx
			}
		}
	}

	// Pass 2a: prefix-sum owned-vertex counts per patch, in ascending
	// subdomain order, to assign each owning patch a contiguous global
	// index range. Parallelizes trivially since each patch only counts
	// its own vertices.
	ownedCounts := workerpool.RunCollect(len(patches), 0, func(i int) int {
		p := patches[i]
		n := 0
		for _, key := range p.Mesh.EdgeKeys {
			if owner[key] == p.SubIdx {
				n++
			}
		}
		return n
	})

	order := make([]int, len(patches))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return patches[order[a]].SubIdx.Less(patches[order[b]].SubIdx)
	})

	offsets := make([]int, len(patches))
	total := 0
	for _, pi := range order {
		offsets[pi] = total
		total += ownedCounts[pi]
	}

	// Pass 2b: each owning patch writes its owned vertices into the
	// global array at its assigned offset, and records the global index
	// under (edge key) so referencing patches can resolve it.
	globalVerts := make([]mgl32.Vec3, total)
	keyToGlobal := make(map[mc.EdgeKey]int32, total)
	for pi, p := range patches {
		cursor := offsets[pi]
		for li, key := range p.Mesh.EdgeKeys {
			if owner[key] != p.SubIdx {
				continue
			}
			gi := int32(cursor)
			globalVerts[cursor] = p.Mesh.Vertices[li]
			keyToGlobal[key] = gi
			cursor++
		}
	}

	// Pass 3: remap every patch's local triangle indices to global vertex
	// indices via the edge-key lookup; independent per patch.
	triangleLists := workerpool.RunCollect(len(patches), 0, func(i int) []int32 {
		p := patches[i]
		localToGlobal := make([]int32, len(p.Mesh.Vertices))
		for li, key := range p.Mesh.EdgeKeys {
			localToGlobal[li] = keyToGlobal[key]
		}
		out := make([]int32, len(p.Mesh.Triangles))
		for ti, li := range p.Mesh.Triangles {
			out[ti] = localToGlobal[li]
		}
		return out
	})

	var globalTris []int32
	for _, tl := range triangleLists {
		globalTris = append(globalTris, tl...)
	}

	return Mesh{Vertices: globalVerts, Triangles: globalTris}
}

func estimateVertexCount(patches []Patch) int {
	n := 0
	for _, p := range patches {
		n += len(p.Mesh.Vertices)
	}
	return n
}
