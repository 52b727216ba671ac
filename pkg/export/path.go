// Package export writes tessellated assemblies to mesh files. Binary
// STL is handled in-package; 3MF goes through the go3mf encoder.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists reports that the destination file already exists and
// overwriting was not requested.
var ErrExists = errors.New("export: destination already exists")

// ExtSTL and Ext3MF are the supported output formats.
const (
	ExtSTL = ".stl"
	Ext3MF = ".3mf"
)

// PathOptions controls destination path resolution.
type PathOptions struct {
	// DefaultExt is appended when the path has no extension. Empty
	// means ExtSTL.
	DefaultExt string

	// Overwrite allows replacing an existing file.
	Overwrite bool
}

// Resolve validates and normalizes a destination path: a missing
// extension gets the default, the extension must name a supported
// format, directories are refused, parent directories are created, and
// an existing file is refused with ErrExists unless Overwrite is set.
func Resolve(path string, opts PathOptions) (string, error) {
	if path == "" {
		return "", errors.New("export: empty destination path")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = opts.DefaultExt
		if ext == "" {
			ext = ExtSTL
		}
		path += ext
	}
	switch ext {
	case ExtSTL, Ext3MF:
	default:
		return "", fmt.Errorf("export: unsupported extension %q (want %s or %s)", ext, ExtSTL, Ext3MF)
	}

	if fi, err := os.Stat(path); err == nil {
		if fi.IsDir() {
			return "", fmt.Errorf("export: %s is a directory", path)
		}
		if !opts.Overwrite {
			return "", fmt.Errorf("%w: %s", ErrExists, path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("export: stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("export: create parent directories for %s: %w", path, err)
		}
	}

	return path, nil
}
