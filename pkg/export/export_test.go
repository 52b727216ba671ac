package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/cubecorner/pkg/assembly"
	"github.com/chazu/cubecorner/pkg/kernel"
	"github.com/chazu/cubecorner/pkg/kernel/kerneltest"
	"github.com/chazu/cubecorner/pkg/lattice"
)

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	existing := filepath.Join(dir, "taken.stl")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		opts    PathOptions
		want    string
		wantErr bool
	}{
		{"infer default ext", filepath.Join(dir, "out"), PathOptions{}, filepath.Join(dir, "out.stl"), false},
		{"infer custom ext", filepath.Join(dir, "out2"), PathOptions{DefaultExt: Ext3MF}, filepath.Join(dir, "out2.3mf"), false},
		{"explicit stl", filepath.Join(dir, "a.stl"), PathOptions{}, filepath.Join(dir, "a.stl"), false},
		{"explicit 3mf uppercase", filepath.Join(dir, "b.3MF"), PathOptions{}, filepath.Join(dir, "b.3MF"), false},
		{"unsupported ext", filepath.Join(dir, "c.step"), PathOptions{}, "", true},
		{"empty path", "", PathOptions{}, "", true},
		{"fresh file", filepath.Join(dir, "sub.stl"), PathOptions{}, filepath.Join(dir, "sub.stl"), false},
		{"existing without overwrite", existing, PathOptions{}, "", true},
		{"existing with overwrite", existing, PathOptions{Overwrite: true}, existing, false},
		{"nested parents created", filepath.Join(dir, "deep", "er", "f.stl"), PathOptions{}, filepath.Join(dir, "deep", "er", "f.stl"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.path, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}

	// Parent directories exist after resolving a nested path.
	if _, err := os.Stat(filepath.Join(dir, "deep", "er")); err != nil {
		t.Errorf("parent directories not created: %v", err)
	}
}

func TestResolveRefusesDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "already.stl")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(sub, PathOptions{Overwrite: true}); err == nil {
		t.Error("expected error resolving a directory path")
	}
}

func TestResolveErrExistsSentinel(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f.stl")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Resolve(p, PathOptions{})
	if !errors.Is(err, ErrExists) {
		t.Errorf("error = %v, want ErrExists", err)
	}
}

// unitMesh is a single right triangle in the XY plane with +Z normal.
func unitMesh() *kernel.Mesh {
	return &kernel.Mesh{
		Name: "tri",
		Vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestEncodeSTLByteLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := encodeSTL(&buf, unitMesh()); err != nil {
		t.Fatalf("encodeSTL() error = %v", err)
	}

	b := buf.Bytes()
	if len(b) != 80+4+50 {
		t.Fatalf("encoded length = %d, want %d", len(b), 80+4+50)
	}

	// Header starts with the mesh name, zero padded.
	if string(b[:3]) != "tri" || b[3] != 0 {
		t.Errorf("header = %q...", b[:4])
	}

	if n := binary.LittleEndian.Uint32(b[80:]); n != 1 {
		t.Fatalf("triangle count = %d, want 1", n)
	}

	rec := b[84:]
	readF := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
	}

	// Normal of a CCW triangle in XY is +Z.
	if readF(0) != 0 || readF(4) != 0 || readF(8) != 1 {
		t.Errorf("normal = (%v,%v,%v), want (0,0,1)", readF(0), readF(4), readF(8))
	}
	// First vertex.
	if readF(12) != 0 || readF(16) != 0 || readF(20) != 0 {
		t.Errorf("vertex a = (%v,%v,%v), want origin", readF(12), readF(16), readF(20))
	}
	// Attribute byte count.
	if rec[48] != 0 || rec[49] != 0 {
		t.Errorf("attribute bytes = %v %v, want 0 0", rec[48], rec[49])
	}
}

func TestWriteSTLRejectsEmptyMesh(t *testing.T) {
	p := filepath.Join(t.TempDir(), "e.stl")
	if err := WriteSTL(&kernel.Mesh{}, p); err == nil {
		t.Error("expected error for empty mesh")
	}
	if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
		t.Error("empty mesh should not produce a file")
	}
}

func TestExportWritesSTL(t *testing.T) {
	k := kerneltest.New()
	a := assembly.New("pattern")
	a.Add("a", k.Box(1, 1, 1), lattice.Vec3{})
	a.Add("b", k.Box(1, 1, 1), lattice.Vec3{X: 2})

	p := filepath.Join(t.TempDir(), "out")
	dst, err := Export(k, a, p, Options{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if filepath.Ext(dst) != ExtSTL {
		t.Errorf("resolved path %q, want .stl default", dst)
	}

	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	// Fake tessellation boxes the flattened solid: 12 triangles.
	wantLen := 80 + 4 + 12*50
	if len(b) != wantLen {
		t.Errorf("file length = %d, want %d", len(b), wantLen)
	}
	if k.Counts().Meshes != 1 {
		t.Errorf("Meshes = %d, want 1", k.Counts().Meshes)
	}
}

func TestExportRefusesExistingWithoutOverwrite(t *testing.T) {
	k := kerneltest.New()
	a := assembly.New("pattern")
	a.Add("a", k.Box(1, 1, 1), lattice.Vec3{})

	p := filepath.Join(t.TempDir(), "out.stl")
	if _, err := Export(k, a, p, Options{}); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := Export(k, a, p, Options{}); !errors.Is(err, ErrExists) {
		t.Errorf("second export error = %v, want ErrExists", err)
	}
	if _, err := Export(k, a, p, Options{Overwrite: true}); err != nil {
		t.Errorf("overwrite export error = %v", err)
	}
}

func TestExportEmptyAssembly(t *testing.T) {
	k := kerneltest.New()
	a := assembly.New("empty")
	if _, err := Export(k, a, filepath.Join(t.TempDir(), "x.stl"), Options{}); err == nil {
		t.Error("expected error exporting empty assembly")
	}
}

func TestFaceNormalDegenerate(t *testing.T) {
	n := faceNormal([3]float32{0, 0, 0}, [3]float32{1, 1, 1}, [3]float32{2, 2, 2})
	if n != ([3]float32{}) {
		t.Errorf("degenerate normal = %v, want zero", n)
	}
}
