package postproc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/neighbor"
)

// AreaWeightedNormals averages, for every vertex, the (area-weighted)
// normals of its incident triangles, then normalizes. Vertices with no
// incident triangles get the zero vector.
func AreaWeightedNormals(vertices []mgl32.Vec3, triangles []int32, adj Adjacency) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(vertices))
	for v, tris := range adj.VertexTriangles {
		var sum mgl32.Vec3
		for _, ti := range tris {
			a := vertices[triangles[ti*3]]
			b := vertices[triangles[ti*3+1]]
			c := vertices[triangles[ti*3+2]]
			sum = sum.Add(TriangleNormal(a, b, c))
		}
		if sum.Len() > 1e-12 {
			out[v] = sum.Normalize()
		}
	}
	return out
}

// SmoothNormals runs iterations of the unweighted Laplacian smoother over a
// normal field, then renormalizes the result once so it is a unit vector
// field again even though plain averaging shrinks vector length.
func SmoothNormals(normals []mgl32.Vec3, adj Adjacency, iterations int) []mgl32.Vec3 {
	if iterations <= 0 {
		return normals
	}
	weights := make([]float32, len(normals))
	for i := range weights {
		weights[i] = 1
	}
	smoothed := SmoothLaplacian(normals, adj, weights, iterations)
	for i, n := range smoothed {
		if n.Len() > 1e-12 {
			smoothed[i] = n.Normalize()
		}
	}
	return smoothed
}

// SPHGradientNormals computes, at every mesh vertex, the negated and
// normalized SPH density gradient: the direction of steepest density
// increase points into the fluid, so its negation points outward along the
// surface normal.
func SPHGradientNormals(vertices []mgl32.Vec3, particlePositions []mgl32.Vec3, idx *neighbor.Index, k kernel.CubicSpline, mass float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(vertices))
	support := float32(k.CompactSupport)
	for vi, p := range vertices {
		var grad mgl32.Vec3
		idx.Query(p, support, nil, func(q int32) {
			sep := p.Sub(particlePositions[q])
			d := float64(sep.Len())
			if d <= 1e-12 {
				return
			}
			gradMag := k.GradMagnitude(d)
			dir := sep.Mul(1 / float32(d))
			grad = grad.Add(dir.Mul(float32(float64(mass) * gradMag)))
		})
		if grad.Len() > 1e-12 {
			out[vi] = grad.Mul(-1).Normalize()
		}
	}
	return out
}
