package surfmesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/surfmesh/geom"
)

// isClosedManifold reports whether every undirected edge of the mesh is
// used by exactly two triangle half-edges, the closedness invariant every
// reconstructed surface must satisfy.
func isClosedManifold(triangles []int32) bool {
	edgeUse := map[[2]int32]int{}
	for t := 0; t+2 < len(triangles); t += 3 {
		tri := [3]int32{triangles[t], triangles[t+1], triangles[t+2]}
		for e := 0; e < 3; e++ {
			a, b := tri[e], tri[(e+1)%3]
			key := [2]int32{a, b}
			if a > b {
				key = [2]int32{b, a}
			}
			edgeUse[key]++
		}
	}
	for _, count := range edgeUse {
		if count != 2 {
			return false
		}
	}
	return true
}

// countComponents returns the number of connected components of the mesh,
// where two vertices are connected if they share a triangle edge.
func countComponents(numVerts int, triangles []int32) int {
	parent := make([]int32, numVerts)
	for i := range parent {
		parent[i] = int32(i)
	}
	var find func(int32) int32
	find = func(x int32) int32 {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int32) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for t := 0; t+2 < len(triangles); t += 3 {
		union(triangles[t], triangles[t+1])
		union(triangles[t+1], triangles[t+2])
	}

	referenced := make(map[int32]bool)
	for _, idx := range triangles {
		referenced[idx] = true
	}
	roots := make(map[int32]bool)
	for idx := range referenced {
		roots[find(idx)] = true
	}
	return len(roots)
}

func vecLen(v [3]float32) float32 {
	return mgl32.Vec3(v).Len()
}

func TestReconstruct_EmptyInputReturnsEmptyInputError(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	_, rerr := Reconstruct(nil, nil, config)
	require.NotNil(t, rerr)
	assert.Equal(t, ErrEmptyInput, rerr.Kind)
	assert.True(t, rerr.Recoverable())
}

func TestReconstruct_InvalidConfigReturnsConfigInvalidError(t *testing.T) {
	config := NewConfig(0, 1000, 1.2, 0.5)
	_, rerr := Reconstruct([]mgl32.Vec3{{0, 0, 0}}, nil, config)
	require.NotNil(t, rerr)
	assert.Equal(t, ErrConfigInvalid, rerr.Kind)
	assert.False(t, rerr.Recoverable())
}

func TestReconstruct_SingleParticleProducesClosedMeshWithinCompactSupport(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	particles := []mgl32.Vec3{{0, 0, 0}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	require.NotEmpty(t, out.Vertices)
	require.NotEmpty(t, out.Triangles)
	assert.True(t, isClosedManifold(out.Triangles))

	// Density is exactly zero beyond the kernel's compact support, so the
	// iso-surface of a single particle can never extend past it.
	support := config.CompactSupportRadius()
	for _, v := range out.Vertices {
		assert.LessOrEqual(t, vecLen(v), support+config.VoxelEdge())
	}

	assert.Equal(t, len(out.Vertices), out.Stats.TotalVertices)
	assert.Equal(t, len(out.Triangles)/3, out.Stats.TotalTriangles)
	assert.NotEmpty(t, out.Stats.RunID)
	assert.NotEmpty(t, out.Stats.Stages)
}

func TestReconstruct_NearbyParticlesMergeIntoOneComponent(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	particles := []mgl32.Vec3{{-0.3, 0, 0}, {0.3, 0, 0}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	require.NotEmpty(t, out.Triangles)
	assert.Equal(t, 1, countComponents(len(out.Vertices), out.Triangles))
}

func TestReconstruct_DistantParticlesProduceTwoComponents(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	particles := []mgl32.Vec3{{-3, 0, 0}, {3, 0, 0}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	require.NotEmpty(t, out.Triangles)
	assert.Equal(t, 2, countComponents(len(out.Vertices), out.Triangles))
}

func TestReconstruct_ZeroSmoothingIterationsIsDeterministic(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	particles := []mgl32.Vec3{{-0.3, 0, 0}, {0.3, 0, 0}, {0, 0.3, 0}}

	out1, rerr1 := Reconstruct(particles, nil, config)
	require.Nil(t, rerr1)
	out2, rerr2 := Reconstruct(particles, nil, config)
	require.Nil(t, rerr2)

	require.Equal(t, len(out1.Vertices), len(out2.Vertices))
	for i := range out1.Vertices {
		assert.Equal(t, out1.Vertices[i], out2.Vertices[i])
	}
	assert.Equal(t, out1.Triangles, out2.Triangles)
}

func TestReconstruct_SmoothingChangesVertexPositions(t *testing.T) {
	particles := []mgl32.Vec3{{-0.3, 0, 0}, {0.3, 0, 0}, {0, 0.3, 0}}

	rawConfig := NewConfig(1, 1000, 1.2, 0.5)
	raw, rerr := Reconstruct(particles, nil, rawConfig)
	require.Nil(t, rerr)

	smoothConfig := NewConfig(1, 1000, 1.2, 0.5, WithMeshSmoothing(5, false))
	smoothed, rerr := Reconstruct(particles, nil, smoothConfig)
	require.Nil(t, rerr)

	require.Equal(t, len(raw.Vertices), len(smoothed.Vertices))
	changed := false
	for i := range raw.Vertices {
		if raw.Vertices[i] != smoothed.Vertices[i] {
			changed = true
			break
		}
	}
	assert.True(t, changed, "smoothing should move at least one vertex")
}

func TestReconstruct_NormalsAreUnitLengthWhenRequested(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5, WithNormals(NormalsAreaWeighted, 0))
	particles := []mgl32.Vec3{{0, 0, 0}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	require.Len(t, out.Normals, len(out.Vertices))
	for _, n := range out.Normals {
		assert.InDelta(t, 1.0, vecLen(n), 1e-3)
	}
}

func TestReconstruct_AttributeInterpolationProducesRequestedKey(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5)
	particles := []mgl32.Vec3{{0, 0, 0}}
	attributes := map[string][]float32{"temperature": {42}}

	out, rerr := Reconstruct(particles, attributes, config)
	require.Nil(t, rerr)
	require.Contains(t, out.Attributes, "temperature")
	assert.Len(t, out.Attributes["temperature"], len(out.Vertices))
}

func TestReconstruct_ParticleAABBClipsOutParticles(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5, WithParticleAABB(geom.AABB{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	}))
	particles := []mgl32.Vec3{{0, 0, 0}, {100, 100, 100}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	assert.Equal(t, 1, out.Stats.TotalParticles)
	assert.Equal(t, 1, out.Stats.ClippedOut)
}

func TestReconstruct_MeshAABBClipDropsOutsideTriangles(t *testing.T) {
	config := NewConfig(1, 1000, 1.2, 0.5, WithMeshAABB(geom.AABB{
		Min: mgl32.Vec3{-0.01, -0.01, -0.01},
		Max: mgl32.Vec3{0.01, 0.01, 0.01},
	}, false))
	particles := []mgl32.Vec3{{0, 0, 0}}

	out, rerr := Reconstruct(particles, nil, config)
	require.Nil(t, rerr)
	assert.Empty(t, out.Triangles)
}
