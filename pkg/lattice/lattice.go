// Package lattice holds the planar placement arithmetic for staggered
// cell grids: the lattice spec, the single staggering rule, the
// closed-form footprint, and axis-aligned bounding box tests. It has no
// dependency on the geometry kernel.
package lattice

import (
	"fmt"
	"math"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Spec fully determines every cell's planar placement. It is
// independent of the unit cell's own geometry.
type Spec struct {
	NX  int     // columns
	NY  int     // rows
	DX  float64 // column pitch
	DY  float64 // row pitch
	DX0 float64 // X offset applied to odd rows; may be 0 or negative
}

// Validate reports the first invalid field, if any.
func (s Spec) Validate() error {
	if s.NX <= 0 || s.NY <= 0 {
		return fmt.Errorf("lattice: nx and ny must be > 0, got nx=%d ny=%d", s.NX, s.NY)
	}
	if s.DX <= 0 || s.DY <= 0 {
		return fmt.Errorf("lattice: dx and dy must be > 0, got dx=%g dy=%g", s.DX, s.DY)
	}
	return nil
}

// CellOffset returns the placement translation of cell (i, j):
// x = i*DX plus the stagger offset on odd rows, y = j*DY, z = 0.
// This is the single staggering rule used everywhere; any alternate
// computation of cell position is a bug.
func (s Spec) CellOffset(i, j int) Vec3 {
	x := float64(i) * s.DX
	if j&1 == 1 {
		x += s.DX0
	}
	return Vec3{X: x, Y: float64(j) * s.DY}
}

// Footprint is the exact planar extent spanned by the cell placement
// points before any clipping.
type Footprint struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Footprint computes the closed-form planar extent of the lattice.
// The stagger offset widens the X span only when a second row exists.
func (s Spec) Footprint() (Footprint, error) {
	if err := s.Validate(); err != nil {
		return Footprint{}, err
	}

	x0 := 0.0
	x1 := float64(s.NX-1) * s.DX

	xmin, xmax := x0, x1
	if s.NY >= 2 {
		xmin = math.Min(x0, s.DX0)
		xmax = math.Max(x1, x1+s.DX0)
	}

	return Footprint{
		XMin: xmin,
		XMax: xmax,
		YMin: 0,
		YMax: float64(s.NY-1) * s.DY,
	}, nil
}

// Width returns the X extent.
func (f Footprint) Width() float64 { return f.XMax - f.XMin }

// Height returns the Y extent.
func (f Footprint) Height() float64 { return f.YMax - f.YMin }

// Center returns the planar center point.
func (f Footprint) Center() (cx, cy float64) {
	return 0.5 * (f.XMin + f.XMax), 0.5 * (f.YMin + f.YMax)
}

// Expanded returns the footprint grown by the given amount on every side.
func (f Footprint) Expanded(by float64) Footprint {
	return Footprint{
		XMin: f.XMin - by,
		XMax: f.XMax + by,
		YMin: f.YMin - by,
		YMax: f.YMax + by,
	}
}

// Pitches derives the staggered-grid spacing of the hexagonal
// cube-corner cell from its edge length: columns sit one face diagonal
// apart, rows sit at the slant distance between corner apexes, and odd
// rows shift by half a face diagonal.
func Pitches(edgeLength float64) (dx, dy, dx0 float64) {
	faceDiag := math.Sqrt2 * edgeLength
	dx = faceDiag
	dy = math.Sqrt(edgeLength*edgeLength + (faceDiag/2)*(faceDiag/2))
	dx0 = 0.5 * faceDiag
	return dx, dy, dx0
}
