package bim

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/ops"
	"github.com/castorlab/castor/pkg/topo"
)

// PrimitiveSpec is a closed variant over the regenerable primitive
// shapes. Build returns the solid along with its face Guids in face
// order, so an element rebuilt from the same spec can be re-matched to
// previously exported face identities.
type PrimitiveSpec interface {
	primitiveSpec()
	Build(tol base.Tolerance) (*topo.Solid, []base.Guid, error)
	Parameters() ParameterSet
}

// BoxSpec regenerates an axis-aligned box with its minimum corner at
// the origin.
type BoxSpec struct {
	DX, DY, DZ float64
}

// PlateSpec regenerates a flat rectangular slab.
type PlateSpec struct {
	Width, Height, Thickness float64
}

// CylinderSpec regenerates a vertical cylinder standing on the XY plane.
type CylinderSpec struct {
	Radius, Height float64
}

// PlateWithHoleSpec regenerates a plate with a centered circular through
// hole.
type PlateWithHoleSpec struct {
	Width, Height, Thickness float64
	HoleRadius               float64
}

func (BoxSpec) primitiveSpec()           {}
func (PlateSpec) primitiveSpec()         {}
func (CylinderSpec) primitiveSpec()      {}
func (PlateWithHoleSpec) primitiveSpec() {}

func (s BoxSpec) Build(tol base.Tolerance) (*topo.Solid, []base.Guid, error) {
	solid, err := topo.Box(s.DX, s.DY, s.DZ, tol)
	if err != nil {
		return nil, nil, err
	}
	return solid, solid.FaceGuids(), nil
}

func (s BoxSpec) Parameters() ParameterSet {
	return ParameterSet{
		"Width":  Number(s.DX),
		"Height": Number(s.DY),
		"Depth":  Number(s.DZ),
	}
}

func (s PlateSpec) Build(tol base.Tolerance) (*topo.Solid, []base.Guid, error) {
	solid, err := topo.Plate(s.Width, s.Height, s.Thickness, tol)
	if err != nil {
		return nil, nil, err
	}
	return solid, solid.FaceGuids(), nil
}

func (s PlateSpec) Parameters() ParameterSet {
	return ParameterSet{
		"Width":     Number(s.Width),
		"Height":    Number(s.Height),
		"Thickness": Number(s.Thickness),
	}
}

func (s CylinderSpec) Build(tol base.Tolerance) (*topo.Solid, []base.Guid, error) {
	solid, err := topo.CylinderZ(v3.Vec{}, s.Radius, s.Height, tol)
	if err != nil {
		return nil, nil, err
	}
	return solid, solid.FaceGuids(), nil
}

func (s CylinderSpec) Parameters() ParameterSet {
	return ParameterSet{
		"Radius": Number(s.Radius),
		"Height": Number(s.Height),
	}
}

func (s PlateWithHoleSpec) Build(tol base.Tolerance) (*topo.Solid, []base.Guid, error) {
	solid, err := ops.PlateWithHole(s.Width, s.Height, s.Thickness, s.HoleRadius, tol)
	if err != nil {
		return nil, nil, err
	}
	return solid, solid.FaceGuids(), nil
}

func (s PlateWithHoleSpec) Parameters() ParameterSet {
	return ParameterSet{
		"Width":        Number(s.Width),
		"Height":       Number(s.Height),
		"Thickness":    Number(s.Thickness),
		"HoleDiameter": Number(2 * s.HoleRadius),
	}
}

// FromSpec builds the spec's geometry and wraps it in an element whose
// parameters record the generating dimensions and whose FaceGuids carry
// the face identity map.
func FromSpec(name string, category Category, spec PrimitiveSpec, tol base.Tolerance) (*Element, error) {
	solid, faceGuids, err := spec.Build(tol)
	if err != nil {
		return nil, err
	}
	e := NewElement(name, category, spec.Parameters(), solid)
	e.FaceGuids = faceGuids
	return e, nil
}
