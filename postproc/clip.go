package postproc

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/surfmesh/geom"
)

// ClipToAABB restricts the mesh to an axis-aligned bounding box. When
// clampVerts is false, any triangle with a vertex outside box is dropped
// outright. When true,
// vertices are clamped component-wise into box instead, and no triangle is
// removed — the mesh is deformed at the clip boundary rather than cut.
func ClipToAABB(mesh Mesh, box geom.AABB, clampVerts bool) Mesh {
	if clampVerts {
		clamped := make([]mgl32.Vec3, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			clamped[i] = clampVec3(v, box)
		}
		return Mesh{Vertices: clamped, Triangles: mesh.Triangles}
	}

	inside := make([]bool, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		inside[i] = box.Contains(v)
	}
	var newTris []int32
	for t := 0; t+2 < len(mesh.Triangles); t += 3 {
		a, b, c := mesh.Triangles[t], mesh.Triangles[t+1], mesh.Triangles[t+2]
		if inside[a] && inside[b] && inside[c] {
			newTris = append(newTris, a, b, c)
		}
	}
	return compactUnreferenced(Mesh{Vertices: mesh.Vertices, Triangles: newTris})
}

func clampVec3(v mgl32.Vec3, box geom.AABB) mgl32.Vec3 {
	return mgl32.Vec3{
		clampFloat(v.X(), box.Min.X(), box.Max.X()),
		clampFloat(v.Y(), box.Min.Y(), box.Max.Y()),
		clampFloat(v.Z(), box.Min.Z(), box.Max.Z()),
	}
}

func clampFloat(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
