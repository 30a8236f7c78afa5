// Package brep implements the kernel.Kernel interface on the exact
// boundary-representation modeler. Primitives come from the topo
// builders, booleans from the ops pipeline, and meshes from the
// deviation-bounded tessellator. This is the backend used for
// manufacturing output; the sdfx backend trades exactness for speed.
package brep

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/kernel"
	"github.com/castorlab/castor/pkg/ops"
	"github.com/castorlab/castor/pkg/tessellate"
	"github.com/castorlab/castor/pkg/topo"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// brepSolid wraps a *topo.Solid to implement kernel.Solid.
type brepSolid struct {
	s *topo.Solid
}

// BoundingBox returns the axis-aligned bounding box.
func (b *brepSolid) BoundingBox() (min, max [3]float64) {
	lo, hi := b.s.BoundingBox()
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// Brep returns the wrapped exact solid, for callers that need to step
// outside the abstract interface (STEP export works on exact topology).
func (b *brepSolid) Brep() *topo.Solid {
	return b.s
}

// Kernel implements kernel.Kernel with exact boundary representations.
type Kernel struct {
	tol base.Tolerance
}

// New returns a kernel running booleans at the shape-operation tolerance.
func New() *Kernel {
	return &Kernel{tol: ops.ShapeOpsTolerance()}
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*topo.Solid, error) {
	b, ok := s.(*brepSolid)
	if !ok {
		return nil, fmt.Errorf("%w: solid %T is not from the brep kernel", base.ErrInvalidGeometry, s)
	}
	return b.s, nil
}

// wrap creates a kernel.Solid from a topo solid.
func wrap(s *topo.Solid) kernel.Solid {
	return &brepSolid{s: s}
}

// Unwrap exposes the exact solid behind a kernel.Solid handle, or an
// error if the handle came from another backend.
func Unwrap(s kernel.Solid) (*topo.Solid, error) {
	return unwrap(s)
}

func (k *Kernel) Box(dx, dy, dz float64) (kernel.Solid, error) {
	s, err := topo.Box(dx, dy, dz, base.DefaultTolerance())
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

func (k *Kernel) Plate(width, height, thickness float64) (kernel.Solid, error) {
	s, err := topo.Plate(width, height, thickness, base.DefaultTolerance())
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

// Cylinder stands the cylinder on the XY plane centered on the Z axis.
func (k *Kernel) Cylinder(radius, height float64) (kernel.Solid, error) {
	s, err := topo.CylinderZ(v3.Vec{}, radius, height, base.DefaultTolerance())
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

func (k *Kernel) PlateWithHole(width, height, thickness, holeRadius float64) (kernel.Solid, error) {
	s, err := ops.PlateWithHole(width, height, thickness, holeRadius, k.tol)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(ops.Union, a, b)
}

func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(ops.Difference, a, b)
}

func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(ops.Intersection, a, b)
}

func (k *Kernel) boolean(op func(a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error), a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	out, err := op(sa, sb, k.tol)
	if err != nil {
		return nil, err
	}
	return wrap(out), nil
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	t, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return wrap(topo.Translate(t, v3.Vec{X: x, Y: y, Z: z})), nil
}

// RotateZ rotates about the vertical axis through the origin.
func (k *Kernel) RotateZ(s kernel.Solid, angleDeg float64) (kernel.Solid, error) {
	t, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return wrap(topo.RotateZ(t, v3.Vec{}, angleDeg*math.Pi/180)), nil
}

func (k *Kernel) ToMesh(s kernel.Solid, maxDeviation float64) (*kernel.Mesh, error) {
	t, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return tessellate.Triangulate(t, maxDeviation)
}
