package surfmesh

import "github.com/gekko3d/surfmesh/stats"

// ReconstructionOutput is the result of a successful Reconstruct call:
// the global indexed mesh plus whatever optional per-vertex data the
// Config requested.
type ReconstructionOutput struct {
	// Vertices is the global vertex array; Triangles indexes into it in
	// groups of 3.
	Vertices  [][3]float32
	Triangles []int32

	// Normals is non-nil only when Config.Normals != NormalsNone, and has
	// the same length as Vertices.
	Normals [][3]float32

	// Attributes holds one interpolated array per input attribute passed
	// to Reconstruct, keyed by the name the caller supplied.
	Attributes map[string][]float32

	Stats stats.Report
}
