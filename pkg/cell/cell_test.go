package cell

import (
	"math"
	"testing"

	"github.com/chazu/cubecorner/pkg/kernel/kerneltest"
	"github.com/chazu/cubecorner/pkg/lattice"
)

const tol = 1e-9

func TestAlpha(t *testing.T) {
	want := math.Atan(math.Sqrt2) * 180 / math.Pi
	if got := Alpha(); math.Abs(got-want) > tol {
		t.Errorf("Alpha() = %v, want %v", got, want)
	}
	// Known value for the cube corner orientation.
	if math.Abs(Alpha()-54.7356) > 1e-3 {
		t.Errorf("Alpha() = %v, want about 54.7356", Alpha())
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Params
		wantErr bool
	}{
		{"valid", Params{EdgeLength: 0.2, ScaleFactor: 2, Keep: KeepTop}, false},
		{"valid bottom", Params{EdgeLength: 1, ScaleFactor: 1, Keep: KeepBottom}, false},
		{"zero edge", Params{EdgeLength: 0, ScaleFactor: 2, Keep: KeepTop}, true},
		{"negative edge", Params{EdgeLength: -1, ScaleFactor: 2, Keep: KeepTop}, true},
		{"undersized scale", Params{EdgeLength: 1, ScaleFactor: 0.5, Keep: KeepTop}, true},
		{"bad keep", Params{EdgeLength: 1, ScaleFactor: 2, Keep: Keep(7)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRejectsInvalidBeforeKernelWork(t *testing.T) {
	k := kerneltest.New()
	if _, err := Build(k, Params{EdgeLength: -1, ScaleFactor: 2, Keep: KeepTop}); err == nil {
		t.Fatal("Build with invalid params: expected error")
	}
	if k.Counts() != (kerneltest.Counts{}) {
		t.Errorf("invalid params reached the kernel: ops = %+v", k.Counts())
	}
}

func TestBuildTopHalfExtents(t *testing.T) {
	k := kerneltest.New()
	edge := 0.2
	scale := 2.0
	s, err := Build(k, Params{EdgeLength: edge, ScaleFactor: scale, Keep: KeepTop})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	bb := lattice.SolidBounds(s)

	// The top surface was shifted to z = 0 before the cut.
	if math.Abs(bb.ZMax) > tol {
		t.Errorf("ZMax = %v, want 0", bb.ZMax)
	}

	// Keeping the top half leaves material down to the cut plane at
	// z = -scale * 0.5 * sin(alpha) * faceDiagonal.
	alphaRad := math.Atan(math.Sqrt2)
	wantZMin := -scale * 0.5 * math.Sin(alphaRad) * FaceDiagonal(edge)
	if math.Abs(bb.ZMin-wantZMin) > 1e-9 {
		t.Errorf("ZMin = %v, want %v", bb.ZMin, wantZMin)
	}

	// Corner orientation aligns the cube's main diagonal with Z, so the
	// planar extent equals the rotated cube's: centered on the origin.
	if math.Abs(bb.XMin+bb.XMax) > 1e-9 || math.Abs(bb.YMin+bb.YMax) > 1e-9 {
		t.Errorf("cell not centered in XY: %+v", bb)
	}
}

func TestBuildBottomHalfExtents(t *testing.T) {
	k := kerneltest.New()
	edge := 0.1
	scale := 2.0
	s, err := Build(k, Params{EdgeLength: edge, ScaleFactor: scale, Keep: KeepBottom})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	bb := lattice.SolidBounds(s)

	// Keeping the bottom leaves everything below the cut plane; the
	// shifted solid spans [-cubeDiagonal*scale*edge..., 0] so the kept
	// part tops out at the cut plane.
	alphaRad := math.Atan(math.Sqrt2)
	wantZMax := -scale * 0.5 * math.Sin(alphaRad) * FaceDiagonal(edge)
	if math.Abs(bb.ZMax-wantZMax) > 1e-9 {
		t.Errorf("ZMax = %v, want %v", bb.ZMax, wantZMax)
	}

	// Bottom of the corner-oriented cube: the full main diagonal below z=0.
	wantZMin := -math.Sqrt(3) * scale * edge
	if math.Abs(bb.ZMin-wantZMin) > 1e-9 {
		t.Errorf("ZMin = %v, want %v", bb.ZMin, wantZMin)
	}
}

func TestBuildKernelCallShape(t *testing.T) {
	// One cube, one halfspace box, two rotations, one exact cut.
	k := kerneltest.New()
	if _, err := Build(k, Params{EdgeLength: 1, ScaleFactor: 2, Keep: KeepTop}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if k.Counts().Boxes != 2 {
		t.Errorf("Boxes = %d, want 2", k.Counts().Boxes)
	}
	if k.Counts().Rotates != 2 {
		t.Errorf("Rotates = %d, want 2", k.Counts().Rotates)
	}
	if k.Counts().Intersections != 1 {
		t.Errorf("Intersections = %d, want 1", k.Counts().Intersections)
	}
}
