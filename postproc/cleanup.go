package postproc

import "github.com/go-gl/mathgl/mgl32"

// Mesh is the plain vertex/triangle pair cleanup operates on and returns;
// a local type rather than importing stitch.Mesh, since cleanup has no
// reason to depend on the stitching package.
type Mesh struct {
	Vertices  []mgl32.Vec3
	Triangles []int32
}

type unionFind struct {
	parent []int32
}

func newUnionFind(n int) *unionFind {
	p := make([]int32, n)
	for i := range p {
		p[i] = int32(i)
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int32) int32 {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int32) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// CollapseSlivers removes MC slivers — triangles whose shortest edge is
// below epsRel*voxelEdge, or whose longest-to-shortest edge ratio exceeds
// aspectMax — by collapsing the shorter edge of each flagged triangle.
// Flagging is computed once over the input mesh, not re-evaluated as
// collapses happen, so a chain of adjacent slivers collapses in a single
// pass rather than iteratively converging.
func CollapseSlivers(mesh Mesh, voxelEdge, epsRel, aspectMax float32) Mesh {
	uf := newUnionFind(len(mesh.Vertices))
	minAllowed := epsRel * voxelEdge

	for t := 0; t+2 < len(mesh.Triangles); t += 3 {
		ia, ib, ic := mesh.Triangles[t], mesh.Triangles[t+1], mesh.Triangles[t+2]
		a, b, c := mesh.Vertices[ia], mesh.Vertices[ib], mesh.Vertices[ic]

		eAB := a.Sub(b).Len()
		eBC := b.Sub(c).Len()
		eCA := c.Sub(a).Len()

		shortest, longest := eAB, eAB
		shortPair := [2]int32{ia, ib}
		if eBC < shortest {
			shortest = eBC
			shortPair = [2]int32{ib, ic}
		}
		if eCA < shortest {
			shortest = eCA
			shortPair = [2]int32{ic, ia}
		}
		if eBC > longest {
			longest = eBC
		}
		if eCA > longest {
			longest = eCA
		}

		isSliver := shortest < minAllowed
		if !isSliver && shortest > 1e-12 {
			isSliver = longest/shortest > aspectMax
		}
		if isSliver {
			uf.union(shortPair[0], shortPair[1])
		}
	}

	return applyVertexMerge(mesh, uf)
}

// applyVertexMerge remaps every vertex to its union-find representative,
// drops triangles that degenerate to a point or a line as a result, and
// compacts the vertex array to only those still referenced.
func applyVertexMerge(mesh Mesh, uf *unionFind) Mesh {
	remap := make([]int32, len(mesh.Vertices))
	for i := range remap {
		remap[i] = uf.find(int32(i))
	}

	newIndex := make([]int32, len(mesh.Vertices))
	for i := range newIndex {
		newIndex[i] = -1
	}
	var newVerts []mgl32.Vec3
	resolve := func(root int32) int32 {
		if newIndex[root] < 0 {
			newIndex[root] = int32(len(newVerts))
			newVerts = append(newVerts, mesh.Vertices[root])
		}
		return newIndex[root]
	}

	var newTris []int32
	for t := 0; t+2 < len(mesh.Triangles); t += 3 {
		ra := remap[mesh.Triangles[t]]
		rb := remap[mesh.Triangles[t+1]]
		rc := remap[mesh.Triangles[t+2]]
		if ra == rb || rb == rc || rc == ra {
			continue // degenerate after collapse
		}
		newTris = append(newTris, resolve(ra), resolve(rb), resolve(rc))
	}

	return Mesh{Vertices: newVerts, Triangles: newTris}
}

// DecimateBarnacles removes a "barnacle": a single triangle attached to the
// rest of the mesh by at most one of its three edges (at least two are used
// by no other triangle, so fully isolated triangles go too), the signature of a spike MC can produce at a thin
// feature whose vertex has exactly two reflex neighbors in its triangle
// fan. Unlike CollapseSlivers this drops the triangle outright rather than
// merging vertices, then compacts away any vertex left unreferenced.
func DecimateBarnacles(mesh Mesh) Mesh {
	type edgeKey [2]int32
	canon := func(a, b int32) edgeKey {
		if a > b {
			a, b = b, a
		}
		return edgeKey{a, b}
	}

	edgeCount := make(map[edgeKey]int)
	numTris := len(mesh.Triangles) / 3
	for t := 0; t < numTris; t++ {
		a, b, c := mesh.Triangles[t*3], mesh.Triangles[t*3+1], mesh.Triangles[t*3+2]
		edgeCount[canon(a, b)]++
		edgeCount[canon(b, c)]++
		edgeCount[canon(c, a)]++
	}

	var newTris []int32
	for t := 0; t < numTris; t++ {
		a, b, c := mesh.Triangles[t*3], mesh.Triangles[t*3+1], mesh.Triangles[t*3+2]
		freeEdges := 0
		if edgeCount[canon(a, b)] == 1 {
			freeEdges++
		}
		if edgeCount[canon(b, c)] == 1 {
			freeEdges++
		}
		if edgeCount[canon(c, a)] == 1 {
			freeEdges++
		}
		if freeEdges >= 2 {
			continue // barnacle: attached by at most one shared edge
		}
		newTris = append(newTris, a, b, c)
	}

	return compactUnreferenced(Mesh{Vertices: mesh.Vertices, Triangles: newTris})
}

func compactUnreferenced(mesh Mesh) Mesh {
	newIndex := make([]int32, len(mesh.Vertices))
	for i := range newIndex {
		newIndex[i] = -1
	}
	var newVerts []mgl32.Vec3
	var newTris []int32
	for _, idx := range mesh.Triangles {
		if newIndex[idx] < 0 {
			newIndex[idx] = int32(len(newVerts))
			newVerts = append(newVerts, mesh.Vertices[idx])
		}
		newTris = append(newTris, newIndex[idx])
	}
	return Mesh{Vertices: newVerts, Triangles: newTris}
}
