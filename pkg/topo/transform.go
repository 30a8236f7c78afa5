package topo

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/geom"
)

// Transform returns the solid mapped through a rigid motion. Entity Guids
// are preserved: moving a part does not change its identity.
func Transform(s *Solid, m geom.Transform) *Solid {
	out := s.Clone()
	for i := range out.Vertices {
		out.Vertices[i].Point = m.Apply(out.Vertices[i].Point)
	}
	for i := range out.Edges {
		out.Edges[i].Curve = geom.TransformCurve(m, out.Edges[i].Curve)
	}
	for i := range out.Faces {
		out.Faces[i].Surface = geom.TransformSurface(m, out.Faces[i].Surface)
	}
	return out
}

// Translate returns the solid moved by t.
func Translate(s *Solid, t v3.Vec) *Solid {
	return Transform(s, geom.Translation(t))
}

// RotateZ returns the solid rotated about the world Z axis through a pivot
// point by angle radians.
func RotateZ(s *Solid, pivot v3.Vec, angle float64) *Solid {
	return Transform(s, geom.RotationAxis(pivot, v3.Vec{Z: 1}, angle))
}
