package postproc

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/floats"
)

// FeatureWeights computes a feature-preserving smoothing weight for
// every vertex: a normalized count of particle neighbors within
// featureRadius, clamped to [0,1]. particleCounts[v] is the number of
// input particles within featureRadius of mesh vertex v, precomputed by the
// caller (typically via neighbor.Index.Query); maxCount is the largest
// count across all vertices. Isolated vertices (particleCounts near 0, on a
// thin feature with few fluid neighbors) get weight near 0, so they barely
// pull their neighbors' positions during smoothing and their detail
// survives.
func FeatureWeights(particleCounts []int, maxCount int) []float32 {
	out := make([]float32, len(particleCounts))
	if maxCount <= 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, c := range particleCounts {
		w := float32(c) / float32(maxCount)
		if w < 0 {
			w = 0
		} else if w > 1 {
			w = 1
		}
		out[i] = w
	}
	return out
}

// SmoothLaplacian runs N iterations of weighted Laplacian smoothing over
// vertices, using adj for neighbor lookups. weights gives a per-vertex
// weight w(u) for every vertex u acting as a neighbor; pass a slice of all
// 1s for the unweighted umbrella operator. Each iteration is computed from
// the previous one in full (double-buffered), never mutating vertices in
// place mid-pass, so later vertices in iteration order don't see
// already-updated neighbors.
func SmoothLaplacian(vertices []mgl32.Vec3, adj Adjacency, weights []float32, iterations int) []mgl32.Vec3 {
	cur := make([]mgl32.Vec3, len(vertices))
	copy(cur, vertices)

	for iter := 0; iter < iterations; iter++ {
		next := make([]mgl32.Vec3, len(cur))
		for v := range cur {
			neighbors := adj.VertexNeighbors[v]
			if len(neighbors) == 0 {
				next[v] = cur[v]
				continue
			}
			wsum := make([]float64, len(neighbors))
			dx := make([]float64, len(neighbors))
			dy := make([]float64, len(neighbors))
			dz := make([]float64, len(neighbors))
			for i, u := range neighbors {
				w := float64(weights[u])
				wsum[i] = w
				delta := cur[u].Sub(cur[v])
				dx[i] = w * float64(delta.X())
				dy[i] = w * float64(delta.Y())
				dz[i] = w * float64(delta.Z())
			}
			totalW := floats.Sum(wsum)
			if totalW <= 1e-12 {
				next[v] = cur[v]
				continue
			}
			avg := mgl32.Vec3{
				float32(floats.Sum(dx) / totalW),
				float32(floats.Sum(dy) / totalW),
				float32(floats.Sum(dz) / totalW),
			}
			next[v] = cur[v].Add(avg)
		}
		cur = next
	}
	return cur
}
