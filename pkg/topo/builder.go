package topo

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// arena accumulates entities while a builder assembles a solid.
type arena struct {
	verts []Vertex
	edges []Edge
	faces []Face
}

func (a *arena) vertex(p v3.Vec) VertexID {
	a.verts = append(a.verts, Vertex{Guid: base.NewGuid(), Point: p})
	return VertexID(len(a.verts) - 1)
}

func (a *arena) edge(c geom.Curve, t0, t1 float64, start, end VertexID) EdgeID {
	a.edges = append(a.edges, Edge{
		Guid: base.NewGuid(), Curve: c, T0: t0, T1: t1,
		Start: start, End: end, Closed: start == end,
	})
	return EdgeID(len(a.edges) - 1)
}

func (a *arena) face(surf geom.Surface, sameSense bool, outer Wire, inners ...Wire) FaceID {
	a.faces = append(a.faces, Face{
		Guid: base.NewGuid(), Surface: surf, SameSense: sameSense,
		Outer: outer, Inners: inners,
	})
	return FaceID(len(a.faces) - 1)
}

// solid closes the arena into a single-shell solid and validates it.
func (a *arena) solid(tol base.Tolerance) (*Solid, error) {
	shell := Shell{Faces: make([]FaceID, len(a.faces))}
	for i := range a.faces {
		shell.Faces[i] = FaceID(i)
	}
	s := NewSolid(a.verts, a.edges, a.faces, []Shell{shell})
	if err := CheckManifold(s, tol); err != nil {
		return nil, err
	}
	return s, nil
}
