package postproc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/neighbor"
)

// InterpolateAttribute computes, for every mesh vertex, the SPH kernel-sum
// interpolation of a per-particle scalar attribute, weighted by 1/rho_p.
// particleDensities[p] must be the Stage A density already computed for
// particle p (density.ParticleDensities).
//
// A vertex with no particle within kernel support gets exactly 0, not NaN
// from a 0/0 division. The per-vertex weight sum is also checked against a
// small fixed epsilon (1e-8) before dividing, so a vertex whose only in-range
// particles happen to sit at (or extremely near) the support boundary —
// where the kernel value underflows towards zero — doesn't divide by a
// near-zero denominator and blow up.
func InterpolateAttribute(
	vertices []mgl32.Vec3,
	particlePositions []mgl32.Vec3,
	particleDensities []float32,
	attribute []float32,
	idx *neighbor.Index,
	k kernel.CubicSpline,
	mass float32,
) []float32 {
	const relEpsilon = 1e-8

	out := make([]float32, len(vertices))
	support := float32(k.CompactSupport)
	for vi, p := range vertices {
		var weightedSum, weightSum float64
		idx.Query(p, support, nil, func(q int32) {
			d := float64(p.Sub(particlePositions[q]).Len())
			rho := float64(particleDensities[q])
			if rho <= 0 {
				return
			}
			w := float64(mass) / rho * k.Eval(d)
			weightSum += w
			weightedSum += w * float64(attribute[q])
		})
		if weightSum <= relEpsilon {
			continue // leaves out[vi] at its zero value
		}
		out[vi] = float32(weightedSum / weightSum)
	}
	return out
}
