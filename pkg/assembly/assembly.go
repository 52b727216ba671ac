// Package assembly accumulates placed solid instances and builds the
// row-block pattern that tiles the unit cell across the lattice. Blocks
// are constructed once per start parity and instanced by translation,
// so construction cost grows with block size, not lattice area.
package assembly

import (
	"fmt"

	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Instance is a leaf of an assembly: a solid reference placed by a pure
// translation. Placements are deliberately translation-only; the
// shifted-bounding-box optimization in the clipper depends on instances
// never rotating relative to their prototype.
type Instance struct {
	Name   string
	Solid  kernel.Solid
	Offset lattice.Vec3
}

// Bounds returns the instance's effective bounding box: the prototype
// box shifted by the placement offset, with no kernel query.
func (in Instance) Bounds() lattice.AABB {
	return lattice.SolidBounds(in.Solid).Translated(in.Offset)
}

// Assembly is a named, ordered list of placed instances. It only grows;
// construction is purely additive and a failed step aborts the run.
type Assembly struct {
	Name      string
	instances []Instance
}

// New creates an empty assembly.
func New(name string) *Assembly {
	return &Assembly{Name: name}
}

// Add appends a placed instance.
func (a *Assembly) Add(name string, s kernel.Solid, offset lattice.Vec3) {
	a.instances = append(a.instances, Instance{Name: name, Solid: s, Offset: offset})
}

// Len returns the number of placed instances.
func (a *Assembly) Len() int {
	return len(a.instances)
}

// Instances returns the placed instances in insertion order.
func (a *Assembly) Instances() []Instance {
	return a.instances
}

// Bounds returns the bounding box enclosing every placed instance.
// ok is false for an empty assembly.
func (a *Assembly) Bounds() (bb lattice.AABB, ok bool) {
	for i, in := range a.instances {
		ib := in.Bounds()
		if i == 0 {
			bb = ib
			continue
		}
		bb = unionAABB(bb, ib)
	}
	return bb, len(a.instances) > 0
}

// ZMin returns the lowest Z of the assembly, the natural substrate
// contact plane.
func (a *Assembly) ZMin() (float64, error) {
	bb, ok := a.Bounds()
	if !ok {
		return 0, fmt.Errorf("assembly %q: empty, no z extent", a.Name)
	}
	return bb.ZMin, nil
}

// Flatten merges every placed instance into one solid, applying each
// instance's offset. The result's footprint equals the assembly's.
func (a *Assembly) Flatten(k kernel.Kernel) (kernel.Solid, error) {
	if len(a.instances) == 0 {
		return nil, fmt.Errorf("assembly %q: cannot flatten empty assembly", a.Name)
	}
	var out kernel.Solid
	for _, in := range a.instances {
		placed := in.Solid
		if in.Offset != (lattice.Vec3{}) {
			placed = k.Translate(placed, in.Offset.X, in.Offset.Y, in.Offset.Z)
		}
		if out == nil {
			out = placed
			continue
		}
		out = k.Union(out, placed)
	}
	return out, nil
}

func unionAABB(a, b lattice.AABB) lattice.AABB {
	if b.XMin < a.XMin {
		a.XMin = b.XMin
	}
	if b.YMin < a.YMin {
		a.YMin = b.YMin
	}
	if b.ZMin < a.ZMin {
		a.ZMin = b.ZMin
	}
	if b.XMax > a.XMax {
		a.XMax = b.XMax
	}
	if b.YMax > a.YMax {
		a.YMax = b.YMax
	}
	if b.ZMax > a.ZMax {
		a.ZMax = b.ZMax
	}
	return a
}
