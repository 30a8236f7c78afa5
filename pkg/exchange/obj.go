package exchange

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/kernel"
)

// ExportOBJ serializes the mesh as a Wavefront OBJ document with vertex
// normals. Indices are emitted 1-based with v//vn references. An empty
// mesh is rejected; exporting nothing is a caller bug.
func ExportOBJ(m *kernel.Mesh) ([]byte, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: triangulation produced an empty mesh", base.ErrInvalidGeometry)
	}

	var b strings.Builder
	if m.PartName != "" {
		fmt.Fprintf(&b, "o %s\n", m.PartName)
	}
	for i := 0; i < m.VertexCount(); i++ {
		fmt.Fprintf(&b, "v %s %s %s\n",
			objFloat(m.Vertices[3*i]), objFloat(m.Vertices[3*i+1]), objFloat(m.Vertices[3*i+2]))
	}
	for i := 0; i < len(m.Normals)/3; i++ {
		fmt.Fprintf(&b, "vn %s %s %s\n",
			objFloat(m.Normals[3*i]), objFloat(m.Normals[3*i+1]), objFloat(m.Normals[3*i+2]))
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, bb, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		fmt.Fprintf(&b, "f %d//%d %d//%d %d//%d\n", a, a, bb, bb, c, c)
	}
	return []byte(b.String()), nil
}

// WriteOBJFile exports the mesh to path, creating parent directories as
// needed.
func WriteOBJFile(m *kernel.Mesh, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	data, err := ExportOBJ(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write OBJ file %s: %w", path, err)
	}
	return nil
}

func objFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
