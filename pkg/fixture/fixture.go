// Package fixture generates the support solids around a lattice: the
// substrate slab beneath it and the perimeter frame surrounding it.
// Both are sized from the lattice footprint, the same single source of
// truth the clipper uses; neither recomputes cell positions.
package fixture

import (
	"fmt"

	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Inner cut overshoot beyond the frame's z extent, so the difference
// pierces the ring cleanly instead of leaving coplanar faces.
const cutPad = 1.0

// Substrate builds the support slab. Its XY extent is the footprint
// grown by half the cell edge plus margin on every side (cells extend
// half an edge beyond their placement points); its top face touches
// zTop, normally the lattice's minimum Z.
func Substrate(k kernel.Kernel, fp lattice.Footprint, edgeLength, margin, thickness, zTop float64) (kernel.Solid, error) {
	if edgeLength <= 0 {
		return nil, fmt.Errorf("fixture: edge length must be > 0, got %g", edgeLength)
	}
	if margin < 0 {
		return nil, fmt.Errorf("fixture: margin must be >= 0, got %g", margin)
	}
	if thickness <= 0 {
		return nil, fmt.Errorf("fixture: thickness must be > 0, got %g", thickness)
	}

	ex := fp.Expanded(0.5*edgeLength + margin)
	cx, cy := ex.Center()

	slab := k.Box(ex.Width(), ex.Height(), thickness)
	return k.Translate(slab, cx, cy, zTop-thickness/2), nil
}

// Frame builds a rectangular ring around the lattice: an outer box
// matching the substrate's outer extent minus an inner box of the
// footprint grown by clearance, spanning [zMin, zMax].
func Frame(k kernel.Kernel, fp lattice.Footprint, edgeLength, margin, clearance, zMin, zMax float64) (kernel.Solid, error) {
	if edgeLength <= 0 {
		return nil, fmt.Errorf("fixture: edge length must be > 0, got %g", edgeLength)
	}
	if margin < 0 {
		return nil, fmt.Errorf("fixture: margin must be >= 0, got %g", margin)
	}
	if clearance < 0 {
		return nil, fmt.Errorf("fixture: clearance must be >= 0, got %g", clearance)
	}
	if zMax <= zMin {
		return nil, fmt.Errorf("fixture: frame z range [%g,%g] is empty", zMin, zMax)
	}

	outer := fp.Expanded(0.5*edgeLength + margin)
	inner := fp.Expanded(clearance)

	// The inner opening must leave a ring on every side.
	if inner.XMin <= outer.XMin || inner.XMax >= outer.XMax ||
		inner.YMin <= outer.YMin || inner.YMax >= outer.YMax {
		return nil, fmt.Errorf("fixture: clearance %g leaves no frame ring (outer grows by %g)", clearance, 0.5*edgeLength+margin)
	}

	zh := zMax - zMin
	zc := 0.5 * (zMin + zMax)

	ocx, ocy := outer.Center()
	outerBox := k.Box(outer.Width(), outer.Height(), zh)
	outerBox = k.Translate(outerBox, ocx, ocy, zc)

	icx, icy := inner.Center()
	innerBox := k.Box(inner.Width(), inner.Height(), zh+2*cutPad)
	innerBox = k.Translate(innerBox, icx, icy, zc)

	return k.Difference(outerBox, innerBox), nil
}
