// Package kerneltest provides a fake geometry kernel for tests. Solids
// carry synthetic axis-aligned bounding boxes only; boolean operations
// and transforms act on those boxes without any real geometry work.
// Operation counters let tests assert how many kernel calls a code path
// performed, which is how the clipper's O(perimeter) boolean guarantee
// is verified.
package kerneltest

import (
	"math"
	"sync"

	"github.com/chazu/cubecorner/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Solid  = (*FakeSolid)(nil)
	_ kernel.Kernel = (*Fake)(nil)
)

// FakeSolid is a Solid backed only by a bounding box.
type FakeSolid struct {
	Min, Max [3]float64
}

// BoundingBox returns the synthetic bounding box.
func (s *FakeSolid) BoundingBox() (min, max [3]float64) {
	return s.Min, s.Max
}

// Counts records how many times each kernel operation ran.
type Counts struct {
	Boxes         int
	Unions        int
	Differences   int
	Intersections int
	Translates    int
	Rotates       int
	Meshes        int
}

// Fake implements kernel.Kernel over synthetic bounding boxes. It is
// safe for concurrent use; the clipper may trim from worker goroutines.
type Fake struct {
	mu  sync.Mutex
	ops Counts
}

// New returns a new fake kernel with zeroed counters.
func New() *Fake {
	return &Fake{}
}

// Counts returns a snapshot of the operation counters.
func (k *Fake) Counts() Counts {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ops
}

// Reset zeroes the operation counters.
func (k *Fake) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.ops = Counts{}
}

func (k *Fake) count(f func(c *Counts)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	f(&k.ops)
}

// Box creates a box centered at the origin.
func (k *Fake) Box(x, y, z float64) kernel.Solid {
	k.count(func(c *Counts) { c.Boxes++ })
	return &FakeSolid{
		Min: [3]float64{-x / 2, -y / 2, -z / 2},
		Max: [3]float64{x / 2, y / 2, z / 2},
	}
}

// Union returns a solid whose box encloses both inputs.
func (k *Fake) Union(a, b kernel.Solid) kernel.Solid {
	k.count(func(c *Counts) { c.Unions++ })
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var min, max [3]float64
	for i := 0; i < 3; i++ {
		min[i] = math.Min(amin[i], bmin[i])
		max[i] = math.Max(amax[i], bmax[i])
	}
	return &FakeSolid{Min: min, Max: max}
}

// Difference returns a solid with the box of a; subtracting cannot grow it.
func (k *Fake) Difference(a, b kernel.Solid) kernel.Solid {
	k.count(func(c *Counts) { c.Differences++ })
	min, max := a.BoundingBox()
	return &FakeSolid{Min: min, Max: max}
}

// Intersection returns a solid boxed by the overlap of the inputs.
// A disjoint pair yields a degenerate (zero-extent) box at the overlap seam.
func (k *Fake) Intersection(a, b kernel.Solid) kernel.Solid {
	k.count(func(c *Counts) { c.Intersections++ })
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var min, max [3]float64
	for i := 0; i < 3; i++ {
		min[i] = math.Max(amin[i], bmin[i])
		max[i] = math.Min(amax[i], bmax[i])
		if max[i] < min[i] {
			max[i] = min[i]
		}
	}
	return &FakeSolid{Min: min, Max: max}
}

// Translate shifts the bounding box.
func (k *Fake) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.count(func(c *Counts) { c.Translates++ })
	min, max := s.BoundingBox()
	d := [3]float64{x, y, z}
	for i := 0; i < 3; i++ {
		min[i] += d[i]
		max[i] += d[i]
	}
	return &FakeSolid{Min: min, Max: max}
}

// Rotate rotates the eight box corners by Euler angles (degrees, X then
// Y then Z, about the origin) and returns their bounding box. This is
// exact for boxes, which is all the lattice layer ever rotates.
func (k *Fake) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.count(func(c *Counts) { c.Rotates++ })
	min, max := s.BoundingBox()

	xr := x * math.Pi / 180
	yr := y * math.Pi / 180
	zr := z * math.Pi / 180

	out := &FakeSolid{
		Min: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for cx := 0; cx < 2; cx++ {
		for cy := 0; cy < 2; cy++ {
			for cz := 0; cz < 2; cz++ {
				p := [3]float64{
					pick(min[0], max[0], cx),
					pick(min[1], max[1], cy),
					pick(min[2], max[2], cz),
				}
				p = rotX(p, xr)
				p = rotY(p, yr)
				p = rotZ(p, zr)
				for i := 0; i < 3; i++ {
					out.Min[i] = math.Min(out.Min[i], p[i])
					out.Max[i] = math.Max(out.Max[i], p[i])
				}
			}
		}
	}
	return out
}

// boxTriangles indexes the 12 triangles of a box whose 8 corners are
// enumerated as (x + 2y + 4z) over min/max picks, outward-facing.
var boxTriangles = [12][3]uint32{
	{0, 2, 1}, {1, 2, 3}, // bottom (z min)
	{4, 5, 6}, {5, 7, 6}, // top (z max)
	{0, 1, 4}, {1, 5, 4}, // front (y min)
	{2, 6, 3}, {3, 6, 7}, // back (y max)
	{0, 4, 2}, {2, 4, 6}, // left (x min)
	{1, 3, 5}, {3, 7, 5}, // right (x max)
}

// ToMesh tessellates the solid's bounding box into 12 triangles. Real
// geometry never reaches the fake, but export paths get a valid mesh.
func (k *Fake) ToMesh(s kernel.Solid, linearTol, angularTol float64) (*kernel.Mesh, error) {
	k.count(func(c *Counts) { c.Meshes++ })
	min, max := s.BoundingBox()

	m := &kernel.Mesh{}
	for cz := 0; cz < 2; cz++ {
		for cy := 0; cy < 2; cy++ {
			for cx := 0; cx < 2; cx++ {
				m.Vertices = append(m.Vertices,
					float32(pick(min[0], max[0], cx)),
					float32(pick(min[1], max[1], cy)),
					float32(pick(min[2], max[2], cz)),
				)
			}
		}
	}
	for _, tri := range boxTriangles {
		m.Indices = append(m.Indices, tri[0], tri[1], tri[2])
	}
	return m, nil
}

func pick(lo, hi float64, which int) float64 {
	if which == 0 {
		return lo
	}
	return hi
}

func rotX(p [3]float64, a float64) [3]float64 {
	s, c := math.Sin(a), math.Cos(a)
	return [3]float64{p[0], c*p[1] - s*p[2], s*p[1] + c*p[2]}
}

func rotY(p [3]float64, a float64) [3]float64 {
	s, c := math.Sin(a), math.Cos(a)
	return [3]float64{c*p[0] + s*p[2], p[1], -s*p[0] + c*p[2]}
}

func rotZ(p [3]float64, a float64) [3]float64 {
	s, c := math.Sin(a), math.Cos(a)
	return [3]float64{c*p[0] - s*p[1], s*p[0] + c*p[1], p[2]}
}
