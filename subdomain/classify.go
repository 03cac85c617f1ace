package subdomain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// WorkingSet is one subdomain's particle working set: the particles it
// owns (centers inside its AABB) plus ghost copies of particles owned by
// neighboring subdomains whose compact support reaches in. Working sets
// exist only for the duration of density evaluation and MC triangulation;
// nothing downstream retains them once a subdomain's patch is produced.
type WorkingSet struct {
	Index Index
	// Owned holds global particle indices whose center lies inside this
	// subdomain.
	Owned []int32
	// Ghost holds global particle indices owned by a neighboring
	// subdomain but within GhostMargin of this subdomain's bounds.
	Ghost []int32
	// Sparse is set once classification completes, for subdomains whose
	// owned count is below 5% of the maximum across all subdomains: these
	// are triangulated with the hash-map-backed MC path instead of a
	// dense array, since a full (S+1)^3 allocation would mostly be wasted.
	Sparse bool
}

// Particles returns the combined owned+ghost index list, owned first, and
// a parallel isGhost mask — the layout neighbor.Build and the density
// evaluator expect.
func (ws WorkingSet) Particles() (indices []int32, isGhost []bool) {
	indices = make([]int32, 0, len(ws.Owned)+len(ws.Ghost))
	indices = append(indices, ws.Owned...)
	indices = append(indices, ws.Ghost...)
	isGhost = make([]bool, len(indices))
	for i := len(ws.Owned); i < len(indices); i++ {
		isGhost[i] = true
	}
	return indices, isGhost
}

// Classify assigns every particle to the subdomain(s) whose working sets
// it belongs to. ghostMargin is the distance beyond a subdomain's own AABB
// within which a neighboring particle is copied in as a ghost; callers pass
// 2x the compact support radius when GlobalDensitySync is disabled (the
// default), and 1x when enabled, since synchronized ghosts don't need their
// own neighbors-of-neighbors present locally.
//
// Runs in two counting-sort passes: an owned pass that buckets every
// particle by its containing subdomain via a prefix sum over per-subdomain
// counts, then a ghost pass that, for each non-empty subdomain, scans its
// up-to-26 neighbors' owned particles and copies in the ones whose
// positions fall within the expanded bounds.
func Classify(particles []mgl32.Vec3, sg Grid, ghostMargin float32) []WorkingSet {
	n := sg.NumSubdomains()
	owners := make([]int32, len(particles))
	counts := make([]int32, n+1)

	for i, p := range particles {
		c := sg.Background.CellOf(p)
		idx := sg.IndexOfCell(c)
		clampIndex(&idx, sg.Dims)
		flat := int32(sg.Flatten(idx))
		owners[i] = flat
		counts[flat+1]++
	}
	for i := 1; i <= n; i++ {
		counts[i] += counts[i-1]
	}
	start := make([]int32, n+1)
	copy(start, counts)
	cursor := make([]int32, n)
	copy(cursor, counts[:n])
	owned := make([]int32, len(particles))
	for i := range particles {
		flat := owners[i]
		owned[cursor[flat]] = int32(i)
		cursor[flat]++
	}

	all := sg.AllIndices()
	sets := make([]WorkingSet, 0, n)
	maxOwned := 0
	for _, idx := range all {
		flat := int32(sg.Flatten(idx))
		ownedSlice := owned[start[flat]:start[flat+1]]
		if len(ownedSlice) == 0 {
			continue // pruned: zero owned particles, no patch emitted
		}
		cp := make([]int32, len(ownedSlice))
		copy(cp, ownedSlice)
		sets = append(sets, WorkingSet{Index: idx, Owned: cp})
		if len(cp) > maxOwned {
			maxOwned = len(cp)
		}
	}

	sparseThreshold := float64(maxOwned) * 0.05
	for si := range sets {
		ws := &sets[si]
		bounds := sg.Bounds(ws.Index).Expand(ghostMargin)
		seen := make(map[int32]struct{}, len(ws.Owned))
		for _, o := range ws.Owned {
			seen[o] = struct{}{}
		}
		for _, nb := range sg.Neighbors(ws.Index) {
			nflat := int32(sg.Flatten(nb))
			for _, p := range owned[start[nflat]:start[nflat+1]] {
				if _, dup := seen[p]; dup {
					continue
				}
				if bounds.Contains(particles[p]) {
					ws.Ghost = append(ws.Ghost, p)
					seen[p] = struct{}{}
				}
			}
		}
		ws.Sparse = float64(len(ws.Owned)) < sparseThreshold
	}
	return sets
}

func clampIndex(idx *Index, dims [3]int) {
	if idx.I < 0 {
		idx.I = 0
	} else if idx.I >= dims[0] {
		idx.I = dims[0] - 1
	}
	if idx.J < 0 {
		idx.J = 0
	} else if idx.J >= dims[1] {
		idx.J = dims[1] - 1
	}
	if idx.K < 0 {
		idx.K = 0
	} else if idx.K >= dims[2] {
		idx.K = dims[2] - 1
	}
}

// GhostMargin returns the ghost-margin policy: 2x the compact support
// radius when density synchronization is disabled, 1x when enabled.
func GhostMargin(compactSupportRadius float32, globalDensitySync bool) float32 {
	if globalDensitySync {
		return compactSupportRadius
	}
	return 2 * compactSupportRadius
}
