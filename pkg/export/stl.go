package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chazu/cubecorner/pkg/kernel"
)

// stlHeaderSize is the fixed binary STL header length.
const stlHeaderSize = 80

// WriteSTL writes the mesh to path in binary STL format. The path must
// already be resolved; no validation happens here.
func WriteSTL(m *kernel.Mesh, path string) error {
	if m == nil || m.IsEmpty() {
		return errors.New("export: refusing to write empty mesh")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := encodeSTL(w, m); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("export: flush %s: %w", path, err)
	}
	return f.Close()
}

// encodeSTL writes the binary STL layout: an 80-byte header, a uint32
// triangle count, then 50 bytes per triangle (normal, three vertices,
// attribute count), all little-endian.
func encodeSTL(w io.Writer, m *kernel.Mesh) error {
	var header [stlHeaderSize]byte
	copy(header[:], m.Name)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	n := m.TriangleCount()
	if err := binary.Write(w, binary.LittleEndian, uint32(n)); err != nil {
		return err
	}

	var rec [50]byte
	for i := 0; i < n; i++ {
		a, b, c := m.Triangle(i)
		nrm := faceNormal(a, b, c)

		off := 0
		for _, v := range [][3]float32{nrm, a, b, c} {
			for j := 0; j < 3; j++ {
				binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(v[j]))
				off += 4
			}
		}
		rec[48], rec[49] = 0, 0 // attribute byte count

		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}
	return nil
}

// faceNormal computes the unit normal of a counterclockwise triangle.
// Degenerate triangles get a zero normal, which STL readers accept.
func faceNormal(a, b, c [3]float32) [3]float32 {
	ux := float64(b[0] - a[0])
	uy := float64(b[1] - a[1])
	uz := float64(b[2] - a[2])
	vx := float64(c[0] - a[0])
	vy := float64(c[1] - a[1])
	vz := float64(c[2] - a[2])

	nx := uy*vz - uz*vy
	ny := uz*vx - ux*vz
	nz := ux*vy - uy*vx

	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{float32(nx / l), float32(ny / l), float32(nz / l)}
}
