// Package cell builds the repeated unit-cell solid: a cube rotated into
// hexagonal corner orientation and cut by a horizontal halfspace plane.
package cell

import (
	"fmt"
	"math"

	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Keep selects which side of the cut plane survives.
type Keep int

const (
	KeepTop    Keep = iota // keep z >= plane
	KeepBottom             // keep z <= plane
)

func (k Keep) String() string {
	switch k {
	case KeepTop:
		return "top"
	case KeepBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Halfspace box padding beyond the target solid's extents. The box only
// needs to cover the solid; extra size is harmless.
const (
	padXY = 1.0
	minZH = 1.0
)

// Params configures unit-cell construction.
type Params struct {
	EdgeLength  float64 // cube edge length
	ScaleFactor float64 // oversizing factor, >= 1; fills gaps left after rotation
	Keep        Keep
}

// Validate reports the first invalid parameter, if any.
func (p Params) Validate() error {
	if p.EdgeLength <= 0 {
		return fmt.Errorf("cell: edge length must be > 0, got %g", p.EdgeLength)
	}
	if p.ScaleFactor < 1 {
		return fmt.Errorf("cell: scale factor must be >= 1, got %g", p.ScaleFactor)
	}
	if p.Keep != KeepTop && p.Keep != KeepBottom {
		return fmt.Errorf("cell: keep must be top or bottom, got %d", int(p.Keep))
	}
	return nil
}

// Alpha returns the corner-orientation tilt angle atan(sqrt 2) in
// degrees (about 54.7356). Rotating a cube 45 degrees about Z and then
// Alpha about X points one corner straight down, so a horizontal cut
// through the corner region yields a hexagonal cross-section.
func Alpha() float64 {
	return math.Atan(math.Sqrt2) * 180 / math.Pi
}

// FaceDiagonal returns the face diagonal of a cube with the given edge.
func FaceDiagonal(edgeLength float64) float64 {
	return math.Sqrt2 * edgeLength
}

// Build constructs the unit cell. The result sits with its top surface
// at z = 0; for KeepTop its z extent is [cutPlane, 0].
func Build(k kernel.Kernel, p Params) (kernel.Solid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	side := p.ScaleFactor * p.EdgeLength
	s := k.Box(side, side, side)

	// Corner orientation: 45 about Z, then alpha about X, both through
	// the origin. Two calls because the Euler composition applies X first.
	s = k.Rotate(s, 0, 0, 45)
	s = k.Rotate(s, Alpha(), 0, 0)

	// Shift so the top face sits at z = 0; the cut plane is then a
	// fixed depth below the surface regardless of prior extents.
	bb := lattice.SolidBounds(s)
	s = k.Translate(s, 0, 0, -bb.ZMax)

	alphaRad := math.Atan(math.Sqrt2)
	zPlane := -p.ScaleFactor * 0.5 * math.Sin(alphaRad) * FaceDiagonal(p.EdgeLength)

	return cutAtZ(k, s, zPlane, p.Keep), nil
}

// cutAtZ intersects s with an oversized halfspace box whose near face
// lies on the plane z = zPlane, keeping the requested side.
func cutAtZ(k kernel.Kernel, s kernel.Solid, zPlane float64, keep Keep) kernel.Solid {
	bb := lattice.SolidBounds(s)

	sizeX := (bb.XMax - bb.XMin) + 2*padXY
	sizeY := (bb.YMax - bb.YMin) + 2*padXY
	zHeight := math.Max(minZH, 2*(bb.ZMax-bb.ZMin))

	cx := 0.5 * (bb.XMin + bb.XMax)
	cy := 0.5 * (bb.YMin + bb.YMax)

	var zCenter float64
	if keep == KeepTop {
		zCenter = zPlane + zHeight/2
	} else {
		zCenter = zPlane - zHeight/2
	}

	half := k.Box(sizeX, sizeY, zHeight)
	half = k.Translate(half, cx, cy, zCenter)

	return k.Intersection(s, half)
}
