package kernel

// Mesh is an indexed triangle mesh suitable for rendering and export.
// All arrays are flat: Vertices holds 3 floats per vertex (x,y,z),
// Normals 3 floats per vertex, Indices 3 uint32s per triangle. Vertices
// shared between faces are welded, so a mesh of a closed solid is itself
// closed.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which scene part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounding box of the mesh's vertices.
// An empty mesh returns zero boxes.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = float64(m.Vertices[i])
		max[i] = float64(m.Vertices[i])
	}
	for v := 1; v < m.VertexCount(); v++ {
		for i := 0; i < 3; i++ {
			c := float64(m.Vertices[3*v+i])
			if c < min[i] {
				min[i] = c
			}
			if c > max[i] {
				max[i] = c
			}
		}
	}
	return min, max
}
