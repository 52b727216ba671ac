package lattice

import "github.com/chazu/cubecorner/pkg/kernel"

// AABB is an axis-aligned bounding box. Boxes are normally derived from
// kernel solids via SolidBounds; hand-constructed boxes appear only as
// translated copies of a cached prototype box, which avoids re-querying
// the kernel for every placed instance.
type AABB struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// SolidBounds queries a solid's bounding box once and converts it.
func SolidBounds(s kernel.Solid) AABB {
	min, max := s.BoundingBox()
	return AABB{
		XMin: min[0], XMax: max[0],
		YMin: min[1], YMax: max[1],
		ZMin: min[2], ZMax: max[2],
	}
}

// Translated returns the box shifted by v. Valid only for
// translation-placed instances; a rotated instance would change its
// extents and must be re-queried from the kernel instead.
func (b AABB) Translated(v Vec3) AABB {
	return AABB{
		XMin: b.XMin + v.X, XMax: b.XMax + v.X,
		YMin: b.YMin + v.Y, YMax: b.YMax + v.Y,
		ZMin: b.ZMin + v.Z, ZMax: b.ZMax + v.Z,
	}
}

// Contains reports whether inner lies entirely within b. All six
// comparisons are closed-interval, so an inner box touching a face of b
// still counts as contained.
func (b AABB) Contains(inner AABB) bool {
	return inner.XMin >= b.XMin && inner.XMax <= b.XMax &&
		inner.YMin >= b.YMin && inner.YMax <= b.YMax &&
		inner.ZMin >= b.ZMin && inner.ZMax <= b.ZMax
}

// Intersects reports whether the boxes overlap, using closed-interval
// comparisons: boxes that merely touch at a face, edge, or corner still
// intersect. Boundary-touching candidates are therefore trimmed rather
// than silently dropped.
func (b AABB) Intersects(o AABB) bool {
	return !(b.XMax < o.XMin || b.XMin > o.XMax ||
		b.YMax < o.YMin || b.YMin > o.YMax ||
		b.ZMax < o.ZMin || b.ZMin > o.ZMax)
}
