package export

import (
	"errors"
	"fmt"

	"github.com/hpinc/go3mf"

	"github.com/chazu/cubecorner/pkg/kernel"
)

// Write3MF writes the mesh to path as a single-object 3MF model.
func Write3MF(m *kernel.Mesh, path string) error {
	if m == nil || m.IsEmpty() {
		return errors.New("export: refusing to write empty mesh")
	}

	model := new(go3mf.Model)
	model.Units = go3mf.UnitMillimeter

	obj := &go3mf.Object{ID: 1, Name: m.Name, Mesh: new(go3mf.Mesh)}
	obj.Mesh.Vertices.Vertex = make([]go3mf.Point3D, 0, m.VertexCount())
	for i := 0; i < m.VertexCount(); i++ {
		obj.Mesh.Vertices.Vertex = append(obj.Mesh.Vertices.Vertex, go3mf.Point3D{
			m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2],
		})
	}
	obj.Mesh.Triangles.Triangle = make([]go3mf.Triangle, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		obj.Mesh.Triangles.Triangle = append(obj.Mesh.Triangles.Triangle, go3mf.Triangle{
			V1: m.Indices[i*3], V2: m.Indices[i*3+1], V3: m.Indices[i*3+2],
		})
	}

	model.Resources.Objects = append(model.Resources.Objects, obj)
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: obj.ID})

	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	if err := w.Encode(model); err != nil {
		w.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}
