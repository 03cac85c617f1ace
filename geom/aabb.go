// Package geom provides the axis-aligned box and uniform background grid
// primitives shared by every stage of the reconstruction pipeline.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box with half-open semantics: a point
// exactly on Max is considered outside the box. Callers that need to
// enclose all relevant geometry must pad by at least one cell before using
// an AABB to size a grid (see Grid).
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns a box with inverted bounds, suitable as the seed for an
// ExpandToInclude reduction over a point set.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// ExpandToInclude grows the box to cover p, returning the updated box.
func (b AABB) ExpandToInclude(p mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(b.Min.X(), p.X()), min32(b.Min.Y(), p.Y()), min32(b.Min.Z(), p.Z())},
		Max: mgl32.Vec3{max32(b.Max.X(), p.X()), max32(b.Max.Y(), p.Y()), max32(b.Max.Z(), p.Z())},
	}
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(b.Min.X(), o.Min.X()), min32(b.Min.Y(), o.Min.Y()), min32(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{max32(b.Max.X(), o.Max.X()), max32(b.Max.Y(), o.Max.Y()), max32(b.Max.Z(), o.Max.Z())},
	}
}

// Expand returns the box grown by margin on every side.
func (b AABB) Expand(margin float32) AABB {
	m := mgl32.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Size returns Max-Min.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Valid reports whether Min is strictly less than Max on every axis.
func (b AABB) Valid() bool {
	return b.Min.X() < b.Max.X() && b.Min.Y() < b.Max.Y() && b.Min.Z() < b.Max.Z()
}

// Contains reports whether p lies within the half-open box [Min, Max).
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() < b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() < b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() < b.Max.Z()
}

// Overlaps reports whether b and o share any volume.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() < o.Max.X() && b.Max.X() > o.Min.X() &&
		b.Min.Y() < o.Max.Y() && b.Max.Y() > o.Min.Y() &&
		b.Min.Z() < o.Max.Z() && b.Max.Z() > o.Min.Z()
}

// EnclosingAABB computes the minimum enclosing box of a point set. Returns
// false if points is empty.
func EnclosingAABB(points []mgl32.Vec3) (AABB, bool) {
	if len(points) == 0 {
		return AABB{}, false
	}
	b := EmptyAABB()
	for _, p := range points {
		b = b.ExpandToInclude(p)
	}
	return b, true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
