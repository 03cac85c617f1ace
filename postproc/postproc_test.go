package postproc

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/surfmesh/geom"
	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/neighbor"
)

func neighborIndexFor(points []mgl32.Vec3, bounds geom.AABB) *neighbor.Index {
	return neighbor.Build(points, bounds, testKernel().CompactSupport32())
}

func testKernel() kernel.CubicSpline {
	return kernel.NewCubicSpline(2.0)
}

// tetrahedron returns a simple closed mesh (4 vertices, 4 triangles) to
// exercise adjacency, smoothing, and normals against a known shape.
func tetrahedron() ([]mgl32.Vec3, []int32) {
	verts := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	}
	tris := []int32{
		0, 2, 1,
		0, 1, 3,
		0, 3, 2,
		1, 2, 3,
	}
	return verts, tris
}

func TestBuildAdjacency_EveryVertexSeesItsTriangles(t *testing.T) {
	verts, tris := tetrahedron()
	adj := BuildAdjacency(len(verts), tris)
	for v := range verts {
		assert.NotEmpty(t, adj.VertexTriangles[v])
		assert.NotEmpty(t, adj.VertexNeighbors[v])
	}
	// Every vertex of a tetrahedron is adjacent to the other 3.
	for v := range verts {
		assert.Len(t, adj.VertexNeighbors[v], 3)
	}
}

func TestSmoothLaplacian_ZeroIterationsIsIdentity(t *testing.T) {
	verts, tris := tetrahedron()
	adj := BuildAdjacency(len(verts), tris)
	weights := []float32{1, 1, 1, 1}
	out := SmoothLaplacian(verts, adj, weights, 0)
	assert.Equal(t, verts, out)
}

func TestSmoothLaplacian_MovesTowardNeighborCentroid(t *testing.T) {
	verts, tris := tetrahedron()
	adj := BuildAdjacency(len(verts), tris)
	weights := []float32{1, 1, 1, 1}
	out := SmoothLaplacian(verts, adj, weights, 1)
	for v := range verts {
		// After one unweighted iteration, each vertex should have moved
		// off its original position toward its neighbors' centroid.
		assert.NotEqual(t, verts[v], out[v])
	}
}

func TestAreaWeightedNormals_PointOutwardForTetrahedron(t *testing.T) {
	verts, tris := tetrahedron()
	adj := BuildAdjacency(len(verts), tris)
	normals := AreaWeightedNormals(verts, tris, adj)
	centroid := mgl32.Vec3{0.25, 0.25, 0.25}
	for i, n := range normals {
		assert.InDelta(t, 1.0, n.Len(), 1e-4)
		assert.Greater(t, n.Dot(verts[i].Sub(centroid)), float32(0))
	}
}

func TestCollapseSlivers_RemovesDegenerateTriangle(t *testing.T) {
	// A sliver: third vertex almost coincident with the first.
	mesh := Mesh{
		Vertices: []mgl32.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0.0001, 0.0001, 0},
		},
		Triangles: []int32{0, 1, 2},
	}
	out := CollapseSlivers(mesh, 1.0, 0.01, 20)
	// The near-zero edge (0-2) should have collapsed, degenerating the
	// triangle and dropping it.
	assert.Empty(t, out.Triangles)
}

func TestCollapseSlivers_KeepsWellFormedTriangle(t *testing.T) {
	mesh := Mesh{
		Vertices: []mgl32.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
		},
		Triangles: []int32{0, 1, 2},
	}
	out := CollapseSlivers(mesh, 1.0, 0.01, 20)
	assert.Len(t, out.Triangles, 3)
}

func TestDecimateBarnacles_RemovesSpikeTriangle(t *testing.T) {
	// A closed tetrahedron (every edge shared by exactly 2 triangles) plus
	// a spike triangle reusing edge (0,1) but introducing two new, unique
	// edges of its own.
	verts, tetraTris := tetrahedron()
	verts = append(verts, mgl32.Vec3{0.5, 0.5, -1})
	tris := append(append([]int32{}, tetraTris...), 1, 0, 4)

	mesh := Mesh{Vertices: verts, Triangles: tris}
	out := DecimateBarnacles(mesh)
	assert.Len(t, out.Triangles, len(tetraTris)) // spike dropped, tetra intact
}

func TestClipToAABB_DropsTrianglesOutsideBox(t *testing.T) {
	mesh := Mesh{
		Vertices: []mgl32.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, // inside
			{10, 10, 10}, {11, 10, 10}, {10, 11, 10}, // outside
		},
		Triangles: []int32{0, 1, 2, 3, 4, 5},
	}
	box := geom.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{2, 2, 2}}
	out := ClipToAABB(mesh, box, false)
	require.Len(t, out.Triangles, 3)
	assert.Len(t, out.Vertices, 3)
}

func TestClipToAABB_ClampKeepsAllTriangles(t *testing.T) {
	mesh := Mesh{
		Vertices: []mgl32.Vec3{
			{0, 0, 0}, {10, 0, 0}, {0, 10, 0},
		},
		Triangles: []int32{0, 1, 2},
	}
	box := geom.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{2, 2, 2}}
	out := ClipToAABB(mesh, box, true)
	require.Len(t, out.Triangles, 3)
	for _, v := range out.Vertices {
		assert.LessOrEqual(t, v.X(), float32(2))
		assert.LessOrEqual(t, v.Y(), float32(2))
	}
}

func TestInterpolateAttribute_ZeroWhenNoNeighbors(t *testing.T) {
	particlePositions := []mgl32.Vec3{{100, 100, 100}}
	densities := []float32{1}
	attr := []float32{42}
	vertices := []mgl32.Vec3{{0, 0, 0}}

	bounds := geom.AABB{Min: mgl32.Vec3{-200, -200, -200}, Max: mgl32.Vec3{200, 200, 200}}
	idx := neighborIndexFor(particlePositions, bounds)
	out := InterpolateAttribute(vertices, particlePositions, densities, attr, idx, testKernel(), 1.0)
	assert.Equal(t, float32(0), out[0])
}
