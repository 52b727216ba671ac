package assembly

import (
	"fmt"

	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/lattice"
)

// RowBlock is a compound of several consecutive lattice rows of the
// unit cell, built once per start parity and reused by translation.
type RowBlock struct {
	Solid  kernel.Solid
	Bounds lattice.AABB
	Rows   int
	Parity int // parity of the block's first row: 0 even, 1 odd
}

// CellPlacement identifies one cell inside a row block by its local
// indices and block-relative offset.
type CellPlacement struct {
	Col, Row int // Row is local to the block
	Offset   lattice.Vec3
}

// BuildRowBlock compounds rows*NX translated copies of the cell solid.
// The stagger rule is applied relative to the block's own row 0, so a
// block starting on an odd global row is built with startParity 1.
func BuildRowBlock(k kernel.Kernel, cell kernel.Solid, spec lattice.Spec, rows, startParity int) (*RowBlock, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rows <= 0 {
		return nil, fmt.Errorf("assembly: rows must be > 0, got %d", rows)
	}
	if startParity != 0 && startParity != 1 {
		return nil, fmt.Errorf("assembly: start parity must be 0 or 1, got %d", startParity)
	}

	b := &RowBlock{Rows: rows, Parity: startParity}
	for _, c := range b.cells(spec) {
		placed := k.Translate(cell, c.Offset.X, c.Offset.Y, c.Offset.Z)
		if b.Solid == nil {
			b.Solid = placed
			continue
		}
		b.Solid = k.Union(b.Solid, placed)
	}
	b.Bounds = lattice.SolidBounds(b.Solid)
	return b, nil
}

// cells enumerates block-relative cell placements in row-major order.
func (b *RowBlock) cells(spec lattice.Spec) []CellPlacement {
	out := make([]CellPlacement, 0, b.Rows*spec.NX)
	for r := 0; r < b.Rows; r++ {
		y := float64(r) * spec.DY
		xOff := 0.0
		if (b.Parity+r)&1 == 1 {
			xOff = spec.DX0
		}
		for i := 0; i < spec.NX; i++ {
			out = append(out, CellPlacement{
				Col: i, Row: r,
				Offset: lattice.Vec3{X: float64(i)*spec.DX + xOff, Y: y},
			})
		}
	}
	return out
}

// BlockPlacement places a row-block prototype at a global start row.
type BlockPlacement struct {
	Name     string
	Block    *RowBlock
	StartRow int
	Offset   lattice.Vec3
}

// Bounds returns the placement's bounding box by shifting the
// prototype's cached box; no kernel query. Valid because placements are
// translation-only.
func (bp BlockPlacement) Bounds() lattice.AABB {
	return bp.Block.Bounds.Translated(bp.Offset)
}

// Cells enumerates the placement's cells with offsets relative to the
// prototype (the placement offset is not applied).
func (bp BlockPlacement) Cells(spec lattice.Spec) []CellPlacement {
	return bp.Block.cells(spec)
}

// Pattern is the block-instanced lattice: at most two full-size row
// block prototypes plus one remainder block, each placed by translation
// to cover NY rows.
type Pattern struct {
	Spec       lattice.Spec
	BlockRows  int
	CellSolid  kernel.Solid
	CellBounds lattice.AABB

	prototypes []*RowBlock
	placements []BlockPlacement
}

// BuildPattern builds the block-reuse pattern. Cost is
// O(blockRows*NX) geometry operations for the prototypes plus
// O(NY/blockRows) cheap placements, never O(NY*NX).
func BuildPattern(k kernel.Kernel, cell kernel.Solid, spec lattice.Spec, blockRows int) (*Pattern, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if blockRows < 1 || blockRows >= spec.NY {
		return nil, fmt.Errorf("assembly: block rows must satisfy 1 <= blockRows < ny, got %d with ny=%d", blockRows, spec.NY)
	}

	p := &Pattern{
		Spec:       spec,
		BlockRows:  blockRows,
		CellSolid:  cell,
		CellBounds: lattice.SolidBounds(cell),
	}

	fullBlocks := spec.NY / blockRows
	rem := spec.NY % blockRows

	// Only two start parities exist, so two prototypes cover every full
	// block regardless of NY.
	even, err := BuildRowBlock(k, cell, spec, blockRows, 0)
	if err != nil {
		return nil, err
	}
	odd, err := BuildRowBlock(k, cell, spec, blockRows, 1)
	if err != nil {
		return nil, err
	}
	p.prototypes = append(p.prototypes, even, odd)

	for b := 0; b < fullBlocks; b++ {
		startRow := b * blockRows
		proto := even
		if startRow&1 == 1 {
			proto = odd
		}
		p.placements = append(p.placements, BlockPlacement{
			Name:     fmt.Sprintf("block_%d", b),
			Block:    proto,
			StartRow: startRow,
			Offset:   lattice.Vec3{Y: float64(startRow) * spec.DY},
		})
	}

	if rem > 0 {
		startRow := fullBlocks * blockRows
		tail, err := BuildRowBlock(k, cell, spec, rem, startRow&1)
		if err != nil {
			return nil, err
		}
		p.prototypes = append(p.prototypes, tail)
		p.placements = append(p.placements, BlockPlacement{
			Name:     "tail",
			Block:    tail,
			StartRow: startRow,
			Offset:   lattice.Vec3{Y: float64(startRow) * spec.DY},
		})
	}

	return p, nil
}

// Prototypes returns the distinct row blocks built for this pattern.
// There are never more than three.
func (p *Pattern) Prototypes() []*RowBlock {
	return p.prototypes
}

// Placements returns the block placements in ascending start-row order.
func (p *Pattern) Placements() []BlockPlacement {
	return p.placements
}

// Assembly materializes the unclipped pattern as an assembly.
func (p *Pattern) Assembly() *Assembly {
	a := New("pattern")
	for _, bp := range p.placements {
		a.Add(bp.Name, bp.Block.Solid, bp.Offset)
	}
	return a
}
