// Package run wires the generator pipeline together: a Config fully
// describes one lattice build, and Run executes it against a kernel.
package run

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chazu/cubecorner/pkg/cell"
	"github.com/chazu/cubecorner/pkg/clip"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// Config describes one end-to-end generator run. Optional sections are
// pointers; nil means the stage is skipped.
type Config struct {
	EdgeLength  float64 `yaml:"edge_length"`
	ScaleFactor float64 `yaml:"scale_factor"`
	Keep        string  `yaml:"keep"`

	NX int `yaml:"nx"`
	NY int `yaml:"ny"`

	// Pitch overrides. Zero (or nil for dx0) means derive from the
	// cell edge length.
	DX  float64  `yaml:"dx"`
	DY  float64  `yaml:"dy"`
	DX0 *float64 `yaml:"dx0"`

	BlockRows int `yaml:"block_rows"`
	Workers   int `yaml:"workers"`

	Clip      *ClipConfig      `yaml:"clip"`
	Substrate *SubstrateConfig `yaml:"substrate"`
	Frame     *FrameConfig     `yaml:"frame"`
	Export    *ExportConfig    `yaml:"export"`
}

// ClipConfig bounds the pattern to a rectangular region grown (or
// shrunk, with negative margins) from the lattice footprint.
type ClipConfig struct {
	MarginX     float64 `yaml:"margin_x"`
	MarginY     float64 `yaml:"margin_y"`
	Granularity string  `yaml:"granularity"` // "blocks" (default) or "cells"
}

// SubstrateConfig adds a support slab under the lattice.
type SubstrateConfig struct {
	Thickness float64 `yaml:"thickness"`
	Margin    float64 `yaml:"margin"`
}

// FrameConfig adds a perimeter ring around the lattice. The ring spans
// the full vertical extent of the build (substrate bottom to lattice
// top when a substrate is present).
type FrameConfig struct {
	Clearance float64 `yaml:"clearance"`
	Margin    float64 `yaml:"margin"`
}

// ExportConfig writes the final assembly to a mesh file.
type ExportConfig struct {
	Path       string  `yaml:"path"`
	LinearTol  float64 `yaml:"linear_tolerance"`
	AngularTol float64 `yaml:"angular_tolerance"`
	Overwrite  bool    `yaml:"overwrite"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and checks every field the pipeline will
// consume, failing before any kernel work happens.
func (c *Config) Validate() error {
	if c.EdgeLength <= 0 {
		return fmt.Errorf("edge_length must be > 0, got %g", c.EdgeLength)
	}
	if c.ScaleFactor == 0 {
		c.ScaleFactor = 2
	}
	if c.ScaleFactor < 1 {
		return fmt.Errorf("scale_factor must be >= 1, got %g", c.ScaleFactor)
	}
	if c.Keep == "" {
		c.Keep = "top"
	}
	if _, err := c.KeepMode(); err != nil {
		return err
	}
	if c.NX < 1 || c.NY < 1 {
		return fmt.Errorf("nx and ny must be >= 1, got %dx%d", c.NX, c.NY)
	}
	if c.BlockRows == 0 {
		c.BlockRows = 1
	}
	if c.BlockRows < 1 || c.BlockRows >= c.NY {
		return fmt.Errorf("block_rows must satisfy 1 <= block_rows < ny, got %d with ny=%d", c.BlockRows, c.NY)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.DX < 0 || c.DY < 0 {
		return fmt.Errorf("dx and dy overrides must be >= 0, got %g/%g", c.DX, c.DY)
	}
	if c.Clip != nil {
		switch c.Clip.Granularity {
		case "":
			c.Clip.Granularity = "blocks"
		case "blocks", "cells":
		default:
			return fmt.Errorf("clip granularity must be \"blocks\" or \"cells\", got %q", c.Clip.Granularity)
		}
	}
	if c.Substrate != nil {
		if c.Substrate.Thickness <= 0 {
			return fmt.Errorf("substrate thickness must be > 0, got %g", c.Substrate.Thickness)
		}
		if c.Substrate.Margin < 0 {
			return fmt.Errorf("substrate margin must be >= 0, got %g", c.Substrate.Margin)
		}
	}
	if c.Frame != nil {
		if c.Frame.Clearance < 0 {
			return fmt.Errorf("frame clearance must be >= 0, got %g", c.Frame.Clearance)
		}
		if c.Frame.Margin < 0 {
			return fmt.Errorf("frame margin must be >= 0, got %g", c.Frame.Margin)
		}
	}
	if c.Export != nil && c.Export.Path == "" {
		return fmt.Errorf("export path must not be empty")
	}
	return nil
}

// KeepMode parses the keep field.
func (c *Config) KeepMode() (cell.Keep, error) {
	switch c.Keep {
	case "top":
		return cell.KeepTop, nil
	case "bottom":
		return cell.KeepBottom, nil
	}
	return 0, fmt.Errorf("keep must be \"top\" or \"bottom\", got %q", c.Keep)
}

// LatticeSpec resolves the lattice pitches: explicit overrides win,
// zeroes derive from the cell edge geometry.
func (c *Config) LatticeSpec() lattice.Spec {
	dx, dy, dx0 := lattice.Pitches(c.EdgeLength)
	s := lattice.Spec{NX: c.NX, NY: c.NY, DX: dx, DY: dy, DX0: dx0}
	if c.DX != 0 {
		s.DX = c.DX
	}
	if c.DY != 0 {
		s.DY = c.DY
	}
	if c.DX0 != nil {
		s.DX0 = *c.DX0
	}
	return s
}

// ClipGranularity maps the config string to the clipper's enum. Only
// meaningful when the clip section is present.
func (c *Config) ClipGranularity() clip.Granularity {
	if c.Clip != nil && c.Clip.Granularity == "cells" {
		return clip.Cells
	}
	return clip.Blocks
}
