// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, kerneltest) provide solid modeling and
// boolean operations behind this interface. The kernel abstraction
// allows swapping backends without changing the lattice layer, and
// lets tests classify geometry with synthetic bounding boxes.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box creates a rectangular prism centered at the origin.
	Box(x, y, z float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms. Rotation is by Euler angles in degrees about the
	// origin, applied X then Y then Z.
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates a solid. linearTol is the maximum linear
	// deviation of the mesh from the exact surface; angularTol is the
	// maximum angular deviation in degrees. Backends that cannot honor
	// one of the tolerances may ignore it.
	ToMesh(s Solid, linearTol, angularTol float64) (*Mesh, error)
}
