// Package postproc implements the global-mesh cleanup, smoothing, normal
// estimation, and attribute interpolation stages. Every function here
// operates on the already-stitched global mesh; nothing in this package
// is subdomain-aware.
package postproc

import "github.com/go-gl/mathgl/mgl32"

// Adjacency is the per-vertex incidence structure cleanup, smoothing, and
// normals all need: which triangles touch a vertex, and which other
// vertices share an edge with it.
type Adjacency struct {
	VertexTriangles [][]int32
	VertexNeighbors [][]int32
}

// BuildAdjacency derives vertex-triangle and vertex-vertex adjacency from a
// triangle index list.
func BuildAdjacency(numVerts int, triangles []int32) Adjacency {
	adj := Adjacency{
		VertexTriangles: make([][]int32, numVerts),
		VertexNeighbors: make([][]int32, numVerts),
	}
	neighborSeen := make([]map[int32]struct{}, numVerts)
	for i := range neighborSeen {
		neighborSeen[i] = make(map[int32]struct{})
	}

	for t := 0; t+2 < len(triangles); t += 3 {
		tri := [3]int32{triangles[t], triangles[t+1], triangles[t+2]}
		triIdx := int32(t / 3)
		for c := 0; c < 3; c++ {
			v := tri[c]
			adj.VertexTriangles[v] = append(adj.VertexTriangles[v], triIdx)
			for d := 0; d < 3; d++ {
				if d == c {
					continue
				}
				n := tri[d]
				if _, ok := neighborSeen[v][n]; !ok {
					neighborSeen[v][n] = struct{}{}
					adj.VertexNeighbors[v] = append(adj.VertexNeighbors[v], n)
				}
			}
		}
	}
	return adj
}

// TriangleNormal returns the unnormalized (area-weighted) face normal of
// triangle (a,b,c).
func TriangleNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// TriangleArea returns the area of triangle (a,b,c).
func TriangleArea(a, b, c mgl32.Vec3) float32 {
	return TriangleNormal(a, b, c).Len() * 0.5
}
