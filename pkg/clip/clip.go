// Package clip classifies lattice blocks and cells against a clipping
// region using cheap bounding-box tests, applying exact boolean
// intersection only to boundary candidates. Interior candidates are
// kept by reference and fully-outside candidates are dropped, so the
// number of boolean operations is bounded by the lattice perimeter, not
// its area.
package clip

import (
	"fmt"
	"sync"

	"github.com/chazu/cubecorner/pkg/assembly"
	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Region is the clipping target: an exact solid for boolean trims plus
// its bounding box for classification.
type Region struct {
	Solid  kernel.Solid
	Bounds lattice.AABB
}

// RegionParams sizes a box-shaped clipping region around a lattice
// footprint. Negative margins shrink the region inside the footprint.
type RegionParams struct {
	MarginX, MarginY float64
	ZHeight          float64
	ZCenter          float64
}

// NewRegion builds a rectangular clipping region from the lattice
// footprint. The footprint is the same single source of truth the
// fixture generators use; the region never recomputes it.
func NewRegion(k kernel.Kernel, fp lattice.Footprint, p RegionParams) (Region, error) {
	if p.ZHeight <= 0 {
		return Region{}, fmt.Errorf("clip: z height must be > 0, got %g", p.ZHeight)
	}
	sizeX := fp.Width() + 2*p.MarginX
	sizeY := fp.Height() + 2*p.MarginY
	if sizeX <= 0 || sizeY <= 0 {
		return Region{}, fmt.Errorf("clip: region collapsed to %g x %g by margins", sizeX, sizeY)
	}

	cx, cy := fp.Center()
	box := k.Box(sizeX, sizeY, p.ZHeight)
	box = k.Translate(box, cx, cy, p.ZCenter)

	return Region{Solid: box, Bounds: lattice.SolidBounds(box)}, nil
}

// Granularity selects the classification unit.
type Granularity int

const (
	// Blocks classifies whole row blocks first and recurses into
	// per-cell classification only for boundary blocks.
	Blocks Granularity = iota
	// Cells classifies every cell directly.
	Cells
)

// Options tunes the clipping pass.
type Options struct {
	Granularity Granularity
	// Workers > 1 trims boundary candidates concurrently. Output order
	// is unaffected: results land in pre-assigned slots.
	Workers int
}

// Stats reports classification outcomes. BooleanOps equals the number
// of boundary candidates: interior and fully-outside candidates never
// reach the kernel.
type Stats struct {
	Kept       int // candidates kept by reference, no boolean op
	Trimmed    int // boundary candidates cut against the region solid
	Dropped    int // candidates fully outside the region
	BooleanOps int
}

// entry is a pending output slot. Boundary slots start without a solid
// and are filled by trim, possibly concurrently.
type entry struct {
	name   string
	solid  kernel.Solid
	offset lattice.Vec3

	trim *lattice.Vec3 // set for boundary candidates: placement of the cell to trim
	src  kernel.Solid  // solid to place and trim
}

// Pattern clips a block-instanced pattern against a region. The result
// is a new assembly; the input pattern is not modified. Insertion order
// is deterministic: blocks ascending, then cells row-major within a
// boundary block.
func Pattern(k kernel.Kernel, p *assembly.Pattern, region Region, opts Options) (*assembly.Assembly, *Stats, error) {
	stats := &Stats{}
	var entries []*entry

	switch opts.Granularity {
	case Blocks:
		for _, bp := range p.Placements() {
			// Block instances are translation-only placements, so the
			// prototype's cached box shifts instead of re-querying the kernel.
			bb := bp.Bounds()

			if region.Bounds.Contains(bb) {
				entries = append(entries, &entry{name: bp.Name, solid: bp.Block.Solid, offset: bp.Offset})
				stats.Kept++
				continue
			}
			if !region.Bounds.Intersects(bb) {
				stats.Dropped++
				continue
			}
			// Boundary block: classify its cells individually so interior
			// cells still pass through untrimmed.
			entries = append(entries, classifyCells(p, bp.Name, bp.Cells(p.Spec), bp.Offset, region, stats)...)
		}

	case Cells:
		for j := 0; j < p.Spec.NY; j++ {
			var cells []assembly.CellPlacement
			for i := 0; i < p.Spec.NX; i++ {
				cells = append(cells, assembly.CellPlacement{Col: i, Row: j, Offset: p.Spec.CellOffset(i, j)})
			}
			entries = append(entries, classifyCells(p, fmt.Sprintf("row_%d", j), cells, lattice.Vec3{}, region, stats)...)
		}

	default:
		return nil, nil, fmt.Errorf("clip: unknown granularity %d", opts.Granularity)
	}

	if err := trimAll(k, entries, region, opts.Workers); err != nil {
		return nil, nil, err
	}

	out := assembly.New("pattern_clipped")
	for _, e := range entries {
		out.Add(e.name, e.solid, e.offset)
	}
	stats.BooleanOps = stats.Trimmed
	return out, stats, nil
}

// classifyCells runs the keep/drop/trim trichotomy over a cell list.
// Boundary cells are returned as unresolved entries for trimAll.
func classifyCells(p *assembly.Pattern, prefix string, cells []assembly.CellPlacement, base lattice.Vec3, region Region, stats *Stats) []*entry {
	var out []*entry
	for _, c := range cells {
		off := c.Offset.Add(base)
		bb := p.CellBounds.Translated(off)

		name := fmt.Sprintf("%s_cell_%d_%d", prefix, c.Row, c.Col)

		if region.Bounds.Contains(bb) {
			out = append(out, &entry{name: name, solid: p.CellSolid, offset: off})
			stats.Kept++
			continue
		}
		if !region.Bounds.Intersects(bb) {
			stats.Dropped++
			continue
		}
		// Boundary candidate, including exact face-touch with zero
		// overlap volume: trimmed, never silently dropped.
		trimOff := off
		out = append(out, &entry{name: name + "_clipped", trim: &trimOff, src: p.CellSolid})
		stats.Trimmed++
	}
	return out
}

// trimAll resolves boundary entries with exact boolean intersections,
// optionally across a worker pool. Results are slot-addressed so the
// output order never depends on completion order.
func trimAll(k kernel.Kernel, entries []*entry, region Region, workers int) error {
	var pending []*entry
	for _, e := range entries {
		if e.trim != nil {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if workers <= 1 {
		for _, e := range pending {
			if err := trimOne(k, e, region); err != nil {
				return err
			}
		}
		return nil
	}

	errs := make([]error, len(pending))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, e := range pending {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, e *entry) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = trimOne(k, e, region)
		}(i, e)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// trimOne places the candidate and intersects it against the region
// solid. Kernel panics on degenerate geometry are surfaced as errors
// carrying the candidate's identity.
func trimOne(k kernel.Kernel, e *entry, region Region) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clip: %s: kernel failure: %v", e.name, r)
		}
	}()

	placed := k.Translate(e.src, e.trim.X, e.trim.Y, e.trim.Z)
	e.solid = k.Intersection(placed, region.Solid)
	e.offset = lattice.Vec3{}
	return nil
}
