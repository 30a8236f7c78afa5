// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx signed-distance-field CAD library. Solids are
// implicit, booleans are min/max combines, and meshes come from marching
// cubes, so results are approximate but fast. Use the brep backend when
// exact topology matters.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// Marching cubes resolution limits. The cell count follows the requested
// chord deviation but stays inside these bounds.
const (
	minMeshCells     = 32
	maxMeshCells     = 400
	defaultMeshCells = 200
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	w, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("%w: solid %T is not from the sdfx kernel", base.ErrInvalidGeometry, s)
	}
	return w.s, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with its minimum corner at the origin so that
// placement translations work intuitively. sdf.Box3D centers the box at
// the origin, so we shift by half-dimensions.
func (k *SdfxKernel) Box(dx, dy, dz float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: dx, Y: dy, Z: dz}, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", base.ErrInvalidGeometry, err)
	}
	m := sdf.Translate3d(v3.Vec{X: dx / 2, Y: dy / 2, Z: dz / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Plate is a box; the distinction only matters to the BIM layer.
func (k *SdfxKernel) Plate(width, height, thickness float64) (kernel.Solid, error) {
	return k.Box(width, height, thickness)
}

// Cylinder stands on the XY plane centered on the Z axis. sdf.Cylinder3D
// centers it vertically, so we shift up by half the height.
func (k *SdfxKernel) Cylinder(radius, height float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", base.ErrInvalidGeometry, err)
	}
	m := sdf.Translate3d(v3.Vec{Z: height / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// PlateWithHole subtracts a centered vertical cylinder from a plate.
func (k *SdfxKernel) PlateWithHole(width, height, thickness, holeRadius float64) (kernel.Solid, error) {
	if holeRadius <= 0 || 2*holeRadius >= math.Min(width, height) {
		return nil, fmt.Errorf("%w: hole radius %g does not fit a %g x %g plate",
			base.ErrInvalidGeometry, holeRadius, width, height)
	}
	plate, err := k.Plate(width, height, thickness)
	if err != nil {
		return nil, err
	}
	// Overshoot the plate on both sides so the subtraction cuts through.
	clearance := 0.1 * thickness
	tool, err := k.Cylinder(holeRadius, thickness+2*clearance)
	if err != nil {
		return nil, err
	}
	tool, err = k.Translate(tool, width/2, height/2, -clearance)
	if err != nil {
		return nil, err
	}
	return k.Difference(plate, tool)
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Union3D(sa, sb)), nil
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Difference3D(sa, sb)), nil
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Intersect3D(sa, sb)), nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	t, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(t, m)), nil
}

// RotateZ rotates a solid about the Z axis through the origin.
func (k *SdfxKernel) RotateZ(s kernel.Solid, angleDeg float64) (kernel.Solid, error) {
	t, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	m := sdf.RotateZ(angleDeg * math.Pi / 180)
	return wrap(sdf.Transform3D(t, m)), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes. The
// cell count is chosen so a grid cell is no larger than the requested
// deviation, clamped to keep render times sane.
func (k *SdfxKernel) ToMesh(s kernel.Solid, maxDeviation float64) (*kernel.Mesh, error) {
	sdf3, err := unwrap(s)
	if err != nil {
		return nil, err
	}

	cells := defaultMeshCells
	if maxDeviation > 0 {
		bb := sdf3.BoundingBox()
		size := bb.Size()
		longest := math.Max(size.X, math.Max(size.Y, size.Z))
		cells = int(math.Ceil(longest / maxDeviation))
		if cells < minMeshCells {
			cells = minMeshCells
		}
		if cells > maxMeshCells {
			cells = maxMeshCells
		}
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
