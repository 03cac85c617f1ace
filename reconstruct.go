package surfmesh

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/density"
	"github.com/gekko3d/surfmesh/geom"
	"github.com/gekko3d/surfmesh/internal/workerpool"
	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/mc"
	"github.com/gekko3d/surfmesh/neighbor"
	"github.com/gekko3d/surfmesh/postproc"
	"github.com/gekko3d/surfmesh/stats"
	"github.com/gekko3d/surfmesh/stitch"
	"github.com/gekko3d/surfmesh/subdomain"
)

// subdomainResult is the per-subdomain output of the density+MC stage,
// handed off to stitching. Working sets themselves are dropped as soon as
// this is produced; nothing downstream needs the particle buckets once a
// subdomain's patch exists.
type subdomainResult struct {
	patch stitch.Patch
	stat  stats.SubdomainStat
}

// Reconstruct runs the full particles-to-mesh pipeline: clip, classify into
// subdomains, evaluate SPH density, triangulate each subdomain via
// Marching Cubes, stitch the patches into one global mesh, then
// post-process (cleanup, smoothing, output clipping, normals, attribute
// interpolation).
//
// attributes holds zero or more named per-particle scalar arrays (same
// length and order as particles) to interpolate onto the output mesh.
func Reconstruct(particles []mgl32.Vec3, attributes map[string][]float32, config Config) (ReconstructionOutput, *ReconstructionError) {
	if rerr := config.Validate(); rerr != nil {
		return ReconstructionOutput{}, rerr
	}
	report := stats.NewReport()
	log := config.Logger

	filtered, filteredAttrs, clippedOut := clipParticles(particles, attributes, config.ParticleAABB)
	report.TotalParticles = len(filtered)
	report.ClippedOut = clippedOut
	if len(filtered) == 0 {
		return ReconstructionOutput{}, newErr(ErrEmptyInput, "no particle falls inside the clip region")
	}

	k := kernel.NewCubicSpline(float64(config.CompactSupportRadius()))
	support := k.CompactSupport32()
	mass := config.ParticleMass()

	bounds, _ := geom.EnclosingAABB(filtered)
	bounds = bounds.Expand(support)

	bg := geom.NewGrid(bounds, config.VoxelEdge())
	if geom.NumericOverflow(bg.Dims) {
		return ReconstructionOutput{}, newErr(ErrNumericDomain, "background grid dimensions %v exceed addressable index space", bg.Dims)
	}
	sg := subdomain.NewGrid(bg, config.SubdomainCubes)
	if geom.NumericOverflow(sg.Dims) {
		return ReconstructionOutput{}, newErr(ErrNumericDomain, "subdomain grid dimensions %v exceed addressable index space", sg.Dims)
	}

	// globalIdx answers every particle-proximity query the pipeline needs
	// outside the per-subdomain stage: attribute interpolation, SPH normals
	// and feature-weight smoothing all operate on the stitched mesh, after
	// subdomain working sets no longer exist.
	globalIdx := neighbor.Build(filtered, bounds, support)

	// particleDensities holds each particle's Stage A density, the value
	// attribute interpolation and SPH-gradient normals weight by 1/rho_p.
	// With GlobalDensitySync it is computed once here and broadcast to
	// every subdomain's ghost copies; otherwise each subdomain computes its
	// own owned particles' densities below and contributes them back here.
	var particleDensities []float32
	if config.GlobalDensitySync {
		t0 := time.Now()
		particleDensities = density.ParticleDensities(filtered, globalIdx, k, mass)
		report.AddStage("global_density", time.Since(t0))
	} else {
		particleDensities = make([]float32, len(filtered))
	}

	ghostMargin := subdomain.GhostMargin(support, config.GlobalDensitySync)
	t0 := time.Now()
	workingSets := subdomain.Classify(filtered, sg, ghostMargin)
	report.AddStage("classify", time.Since(t0))
	log.Infof("classified %d particles into %d subdomains", len(filtered), len(workingSets))

	isoValue := config.IsoSurfaceThreshold * config.RestDensity

	t0 = time.Now()
	results := workerpool.RunCollect(len(workingSets), config.MaxWorkers, func(i int) subdomainResult {
		ws := workingSets[i]
		indices, _ := ws.Particles()
		localPos := make([]mgl32.Vec3, len(indices))
		for li, gi := range indices {
			localPos[li] = filtered[gi]
		}

		localBounds := sg.Bounds(ws.Index).Expand(ghostMargin)
		nidx := neighbor.Build(localPos, localBounds, support)

		var localDensities []float32
		if config.GlobalDensitySync {
			localDensities = make([]float32, len(indices))
			for li, gi := range indices {
				localDensities[li] = particleDensities[gi]
			}
		} else {
			localDensities = density.ParticleDensities(localPos, nidx, k, mass)
			for li := 0; li < len(ws.Owned); li++ {
				particleDensities[indices[li]] = localDensities[li]
			}
		}

		field := density.VoxelField(sg, ws.Index, indices, localPos, nidx, k, mass, !ws.Sparse)
		mesh := mc.TriangulateSubdomain(sg, ws.Index, field, isoValue)

		return subdomainResult{
			patch: stitch.Patch{SubIdx: ws.Index, Mesh: mesh},
			stat: stats.SubdomainStat{
				I: ws.Index.I, J: ws.Index.J, K: ws.Index.K,
				Index:          fmt.Sprintf("%d,%d,%d", ws.Index.I, ws.Index.J, ws.Index.K),
				OwnedCount:     len(ws.Owned),
				GhostCount:     len(ws.Ghost),
				Sparse:         ws.Sparse,
				PatchVertices:  len(mesh.Vertices),
				PatchTriangles: len(mesh.Triangles) / 3,
			},
		}
	})
	report.AddStage("density_and_mc", time.Since(t0))

	patches := make([]stitch.Patch, len(results))
	for i, r := range results {
		patches[i] = r.patch
		report.Subdomains = append(report.Subdomains, r.stat)
	}

	t0 = time.Now()
	global := stitch.Stitch(patches)
	report.AddStage("stitch", time.Since(t0))

	if len(global.Vertices) == 0 {
		return ReconstructionOutput{}, newErr(ErrDegenerate, "iso-surface extraction found zero vertices")
	}

	t0 = time.Now()
	mesh := postproc.Mesh{Vertices: global.Vertices, Triangles: global.Triangles}

	switch config.MeshCleanup {
	case CleanupSliverCollapse:
		const epsRel, aspectMax = 0.01, 20.0
		mesh = postproc.CollapseSlivers(mesh, config.VoxelEdge(), epsRel, aspectMax)
	case CleanupBarnacleDecimation:
		mesh = postproc.DecimateBarnacles(mesh)
	}

	adj := postproc.BuildAdjacency(len(mesh.Vertices), mesh.Triangles)

	if config.MeshSmoothingIters > 0 {
		weights := make([]float32, len(mesh.Vertices))
		for i := range weights {
			weights[i] = 1
		}
		if config.MeshSmoothingWeights {
			featureRadius := config.CompactSupportRadius()
			counts := make([]int, len(mesh.Vertices))
			maxCount := 0
			for vi, v := range mesh.Vertices {
				n := 0
				globalIdx.Query(v, featureRadius, nil, func(int32) { n++ })
				counts[vi] = n
				if n > maxCount {
					maxCount = n
				}
			}
			weights = postproc.FeatureWeights(counts, maxCount)
		}
		mesh.Vertices = postproc.SmoothLaplacian(mesh.Vertices, adj, weights, config.MeshSmoothingIters)
	}

	if config.MeshAABB != nil {
		mesh = postproc.ClipToAABB(mesh, *config.MeshAABB, config.MeshAABBClampVerts)
		adj = postproc.BuildAdjacency(len(mesh.Vertices), mesh.Triangles)
	}

	var normals []mgl32.Vec3
	switch config.Normals {
	case NormalsAreaWeighted:
		normals = postproc.AreaWeightedNormals(mesh.Vertices, mesh.Triangles, adj)
		if config.NormalsSmoothingIters > 0 {
			normals = postproc.SmoothNormals(normals, adj, config.NormalsSmoothingIters)
		}
	case NormalsSPHGradient:
		normals = postproc.SPHGradientNormals(mesh.Vertices, filtered, globalIdx, k, mass)
	}

	interpolated := make(map[string][]float32, len(filteredAttrs))
	for name, values := range filteredAttrs {
		interpolated[name] = postproc.InterpolateAttribute(mesh.Vertices, filtered, particleDensities, values, globalIdx, k, mass)
	}
	report.AddStage("postproc", time.Since(t0))

	report.TotalVertices = len(mesh.Vertices)
	report.TotalTriangles = len(mesh.Triangles) / 3

	out := ReconstructionOutput{
		Vertices:   toFlatVec3(mesh.Vertices),
		Triangles:  mesh.Triangles,
		Attributes: interpolated,
		Stats:      report,
	}
	if normals != nil {
		out.Normals = toFlatVec3(normals)
	}
	return out, nil
}

// clipParticles keeps only the particles (and parallel attribute values)
// inside box, or returns everything unchanged if box is nil.
func clipParticles(particles []mgl32.Vec3, attributes map[string][]float32, box *geom.AABB) ([]mgl32.Vec3, map[string][]float32, int) {
	if box == nil {
		out := make(map[string][]float32, len(attributes))
		for name, v := range attributes {
			out[name] = append([]float32{}, v...)
		}
		return particles, out, 0
	}

	keep := make([]int, 0, len(particles))
	for i, p := range particles {
		if box.Contains(p) {
			keep = append(keep, i)
		}
	}
	filtered := make([]mgl32.Vec3, len(keep))
	for i, gi := range keep {
		filtered[i] = particles[gi]
	}
	filteredAttrs := make(map[string][]float32, len(attributes))
	for name, values := range attributes {
		fv := make([]float32, len(keep))
		for i, gi := range keep {
			fv[i] = values[gi]
		}
		filteredAttrs[name] = fv
	}
	return filtered, filteredAttrs, len(particles) - len(keep)
}

func toFlatVec3(vs []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(vs))
	for i, v := range vs {
		out[i] = [3]float32(v)
	}
	return out
}
