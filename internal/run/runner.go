package run

import (
	"fmt"
	"log"
	"time"

	"github.com/chazu/cubecorner/pkg/assembly"
	"github.com/chazu/cubecorner/pkg/cell"
	"github.com/chazu/cubecorner/pkg/clip"
	"github.com/chazu/cubecorner/pkg/export"
	"github.com/chazu/cubecorner/pkg/fixture"
	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Result carries the pipeline output.
type Result struct {
	Assembly   *assembly.Assembly
	ClipStats  *clip.Stats
	ExportPath string
}

// Run executes the full generator pipeline described by cfg: unit cell,
// row-block pattern, optional clip, optional substrate and frame, and
// optional export. Each stage is timed.
func Run(k kernel.Kernel, cfg *Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	keep, err := cfg.KeepMode()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	unit, err := cell.Build(k, cell.Params{
		EdgeLength:  cfg.EdgeLength,
		ScaleFactor: cfg.ScaleFactor,
		Keep:        keep,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("cell: edge=%g scale=%g keep=%s (%s)", cfg.EdgeLength, cfg.ScaleFactor, keep, time.Since(start))

	spec := cfg.LatticeSpec()
	start = time.Now()
	pattern, err := assembly.BuildPattern(k, unit, spec, cfg.BlockRows)
	if err != nil {
		return nil, err
	}
	log.Printf("pattern: %dx%d cells, %d prototypes, %d placements (%s)",
		spec.NX, spec.NY, len(pattern.Prototypes()), len(pattern.Placements()), time.Since(start))

	res := &Result{}
	asm := pattern.Assembly()

	if cfg.Clip != nil {
		fp, err := spec.Footprint()
		if err != nil {
			return nil, err
		}
		pb, ok := asm.Bounds()
		if !ok {
			return nil, fmt.Errorf("run: pattern produced no instances")
		}
		zSpan := pb.ZMax - pb.ZMin
		region, err := clip.NewRegion(k, fp, clip.RegionParams{
			MarginX: cfg.Clip.MarginX,
			MarginY: cfg.Clip.MarginY,
			ZHeight: 2*zSpan + 1,
			ZCenter: 0.5 * (pb.ZMin + pb.ZMax),
		})
		if err != nil {
			return nil, err
		}

		start = time.Now()
		clipped, stats, err := clip.Pattern(k, pattern, region, clip.Options{
			Granularity: cfg.ClipGranularity(),
			Workers:     cfg.Workers,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("clip: kept=%d trimmed=%d dropped=%d booleans=%d (%s)",
			stats.Kept, stats.Trimmed, stats.Dropped, stats.BooleanOps, time.Since(start))
		asm = clipped
		res.ClipStats = stats
	}

	if cfg.Substrate != nil || cfg.Frame != nil {
		fp, err := spec.Footprint()
		if err != nil {
			return nil, err
		}
		if err := addFixtures(k, asm, cfg, fp); err != nil {
			return nil, err
		}
	}
	res.Assembly = asm

	if cfg.Export != nil {
		start = time.Now()
		dst, err := export.Export(k, asm, cfg.Export.Path, export.Options{
			LinearTol:  cfg.Export.LinearTol,
			AngularTol: cfg.Export.AngularTol,
			Overwrite:  cfg.Export.Overwrite,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("export: wrote %s (%s)", dst, time.Since(start))
		res.ExportPath = dst
	}

	return res, nil
}

// addFixtures appends the substrate and frame to the assembly. The
// substrate's top face sits at the lattice's lowest point; the frame
// spans from the substrate bottom (or the lattice bottom when there is
// no substrate) to the lattice top.
func addFixtures(k kernel.Kernel, asm *assembly.Assembly, cfg *Config, fp lattice.Footprint) error {
	bb, ok := asm.Bounds()
	if !ok {
		return fmt.Errorf("run: cannot add fixtures to an empty assembly")
	}

	frameZMin := bb.ZMin
	if cfg.Substrate != nil {
		start := time.Now()
		slab, err := fixture.Substrate(k, fp, cfg.EdgeLength, cfg.Substrate.Margin, cfg.Substrate.Thickness, bb.ZMin)
		if err != nil {
			return err
		}
		asm.Add("substrate", slab, lattice.Vec3{})
		frameZMin = bb.ZMin - cfg.Substrate.Thickness
		log.Printf("substrate: thickness=%g top=%g (%s)", cfg.Substrate.Thickness, bb.ZMin, time.Since(start))
	}

	if cfg.Frame != nil {
		margin := cfg.Frame.Margin
		if margin == 0 && cfg.Substrate != nil {
			// Match the substrate's outer extent by default.
			margin = cfg.Substrate.Margin
		}
		start := time.Now()
		ring, err := fixture.Frame(k, fp, cfg.EdgeLength, margin, cfg.Frame.Clearance, frameZMin, bb.ZMax)
		if err != nil {
			return err
		}
		asm.Add("frame", ring, lattice.Vec3{})
		log.Printf("frame: clearance=%g z=[%g,%g] (%s)", cfg.Frame.Clearance, frameZMin, bb.ZMax, time.Since(start))
	}
	return nil
}
