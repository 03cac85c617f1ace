package density

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/surfmesh/geom"
	"github.com/gekko3d/surfmesh/kernel"
	"github.com/gekko3d/surfmesh/neighbor"
	"github.com/gekko3d/surfmesh/subdomain"
)

func TestParticleDensities_SingleParticleSeesOnlyItself(t *testing.T) {
	positions := []mgl32.Vec3{{0, 0, 0}}
	bounds := geom.AABB{Min: mgl32.Vec3{-2, -2, -2}, Max: mgl32.Vec3{2, 2, 2}}
	k := kernel.NewCubicSpline(1.0)
	idx := neighbor.Build(positions, bounds, 1.0)
	densities := ParticleDensities(positions, idx, k, 1.0)
	require.Len(t, densities, 1)
	assert.Greater(t, densities[0], float32(0))
}

func TestVoxelField_SharedBoundaryIsBitIdentical(t *testing.T) {
	// Two subdomains sharing a face; a few particles straddle the
	// boundary. The scalar value at a shared vertex, computed once per
	// subdomain via VoxelField, must match exactly.
	bounds := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{8, 8, 8}}
	bg := geom.NewGrid(bounds, 1.0)
	sg := subdomain.NewGrid(bg, 4)

	points := []mgl32.Vec3{
		{3.2, 2, 2}, {4.8, 2, 2}, {3.9, 2.1, 1.9}, {4.1, 1.9, 2.1},
	}
	k := kernel.NewCubicSpline(2.0)
	margin := subdomain.GhostMargin(k.CompactSupport32(), false)
	sets := subdomain.Classify(points, sg, margin)
	require.Len(t, sets, 2)

	var left, right subdomain.WorkingSet
	for _, ws := range sets {
		if ws.Index == (subdomain.Index{0, 0, 0}) {
			left = ws
		} else {
			right = ws
		}
	}

	fieldFor := func(ws subdomain.WorkingSet) ScalarField {
		indices, _ := ws.Particles()
		localPos := make([]mgl32.Vec3, len(indices))
		for i, gi := range indices {
			localPos[i] = points[gi]
		}
		localBounds := sg.Bounds(ws.Index).Expand(margin)
		nidx := neighbor.Build(localPos, localBounds, k.CompactSupport32())
		return VoxelField(sg, ws.Index, indices, localPos, nidx, k, 1.0, true)
	}

	leftField := fieldFor(left)
	rightField := fieldFor(right)

	// Shared face is at background cell I=4: local I=4 in `left` (S=4) and
	// local I=0 in `right`.
	for j := 0; j <= 4; j++ {
		for kk := 0; kk <= 4; kk++ {
			lv := leftField.Get(4, j, kk)
			rv := rightField.Get(0, j, kk)
			assert.Equal(t, lv, rv, "mismatch at j=%d k=%d", j, kk)
		}
	}
}
