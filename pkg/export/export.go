package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/cubecorner/pkg/assembly"
	"github.com/chazu/cubecorner/pkg/kernel"
)

// Options controls assembly export.
type Options struct {
	// LinearTol is the surface deviation passed to tessellation. Zero
	// means the kernel default.
	LinearTol float64

	// AngularTol is the angular deviation in degrees. Zero means the
	// kernel default.
	AngularTol float64

	// Overwrite allows replacing an existing file.
	Overwrite bool
}

// Export flattens the assembly into one solid, tessellates it, and
// writes the mesh to path. The format follows the resolved extension.
// It returns the path actually written.
func Export(k kernel.Kernel, a *assembly.Assembly, path string, opts Options) (string, error) {
	dst, err := Resolve(path, PathOptions{Overwrite: opts.Overwrite})
	if err != nil {
		return "", err
	}

	solid, err := a.Flatten(k)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	mesh, err := k.ToMesh(solid, opts.LinearTol, opts.AngularTol)
	if err != nil {
		return "", fmt.Errorf("export: tessellate %q: %w", a.Name, err)
	}
	if mesh.Name == "" {
		mesh.Name = a.Name
	}

	switch strings.ToLower(filepath.Ext(dst)) {
	case ExtSTL:
		err = WriteSTL(mesh, dst)
	case Ext3MF:
		err = Write3MF(mesh, dst)
	}
	if err != nil {
		return "", err
	}
	return dst, nil
}
