package topo

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// VertexID indexes into a Solid's vertex arena.
type VertexID int

// EdgeID indexes into a Solid's edge arena.
type EdgeID int

// FaceID indexes into a Solid's face arena.
type FaceID int

// Vertex is a topological point.
type Vertex struct {
	Guid  base.Guid
	Point v3.Vec
}

// Edge is a trimmed curve between two vertices. A Closed edge spans a full
// period of a periodic curve, with Start == End; full circles are modeled
// this way rather than split at an artificial seam.
type Edge struct {
	Guid   base.Guid
	Curve  geom.Curve
	T0, T1 float64
	Start  VertexID
	End    VertexID
	Closed bool
}

// PointAt evaluates the edge's curve at a parameter.
func (e Edge) PointAt(t float64) v3.Vec {
	return e.Curve.Point(t)
}

// OrientedEdge is a use of an edge inside a wire. Reversed uses traverse
// the edge from End to Start.
type OrientedEdge struct {
	Edge     EdgeID
	Reversed bool
}

// Wire is an ordered closed loop of oriented edges.
type Wire []OrientedEdge

// Face is a region of a surface bounded by an outer wire and zero or more
// inner wires. SameSense is true when the face's outward normal agrees with
// the surface frame's normal. Wires are oriented so that, seen along the
// outward normal, the outer wire runs counter-clockwise and inner wires
// clockwise. A face on a periodic surface covering the full period has two
// closed-edge wires and no seam; Outer is then the wire at the lower v.
type Face struct {
	Guid      base.Guid
	Surface   geom.Surface
	SameSense bool
	Outer     Wire
	Inners    []Wire
}

// Wires returns the face's wires, outer first.
func (f Face) Wires() []Wire {
	out := make([]Wire, 0, 1+len(f.Inners))
	out = append(out, f.Outer)
	out = append(out, f.Inners...)
	return out
}

// Shell is a closed connected set of faces.
type Shell struct {
	Faces []FaceID
}

// FaceUse records a face's use of an edge and the orientation of that use.
type FaceUse struct {
	Face     FaceID
	Reversed bool
}

// Solid is an arena-owned boundary representation. A solid may have several
// shells: the outer boundary plus interior voids, or multiple disjoint
// bodies produced by boolean operations. An empty solid (no shells) is the
// normal result of a boolean that removes everything.
type Solid struct {
	Guid     base.Guid
	Vertices []Vertex
	Edges    []Edge
	Faces    []Face
	Shells   []Shell

	edgeFaces [][]FaceUse
}

// NewSolid assembles a solid from arenas and builds the edge adjacency.
func NewSolid(vertices []Vertex, edges []Edge, faces []Face, shells []Shell) *Solid {
	s := &Solid{
		Guid:     base.NewGuid(),
		Vertices: vertices,
		Edges:    edges,
		Faces:    faces,
		Shells:   shells,
	}
	s.rebuildAdjacency()
	return s
}

// Empty returns a solid with no shells.
func Empty() *Solid {
	return &Solid{Guid: base.NewGuid()}
}

// IsEmpty reports whether the solid has no boundary.
func (s *Solid) IsEmpty() bool {
	return len(s.Shells) == 0
}

func (s *Solid) rebuildAdjacency() {
	s.edgeFaces = make([][]FaceUse, len(s.Edges))
	for fi := range s.Faces {
		for _, w := range s.Faces[fi].Wires() {
			for _, oe := range w {
				s.edgeFaces[oe.Edge] = append(s.edgeFaces[oe.Edge],
					FaceUse{Face: FaceID(fi), Reversed: oe.Reversed})
			}
		}
	}
}

// EdgeFaces returns the face uses of an edge. For a manifold solid there
// are exactly two, with opposite orientations.
func (s *Solid) EdgeFaces(id EdgeID) []FaceUse {
	return s.edgeFaces[id]
}

// FaceEdges returns the oriented edges of a face, outer wire first.
func (s *Solid) FaceEdges(id FaceID) []OrientedEdge {
	f := s.Faces[id]
	var out []OrientedEdge
	for _, w := range f.Wires() {
		out = append(out, w...)
	}
	return out
}

// StartOf returns the vertex an oriented edge leaves from.
func (s *Solid) StartOf(oe OrientedEdge) VertexID {
	e := s.Edges[oe.Edge]
	if oe.Reversed {
		return e.End
	}
	return e.Start
}

// EndOf returns the vertex an oriented edge arrives at.
func (s *Solid) EndOf(oe OrientedEdge) VertexID {
	e := s.Edges[oe.Edge]
	if oe.Reversed {
		return e.Start
	}
	return e.End
}

// BoundingBox returns the axis-aligned bounds of the solid's boundary,
// sampling curved edges finely enough for box-level queries. Empty solids
// return a degenerate box at the origin.
func (s *Solid) BoundingBox() (min, max v3.Vec) {
	if s.IsEmpty() || len(s.Vertices) == 0 {
		return v3.Vec{}, v3.Vec{}
	}
	min = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	max = min.Neg()
	grow := func(p v3.Vec) {
		min = v3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = v3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	for _, v := range s.Vertices {
		grow(v.Point)
	}
	for _, e := range s.Edges {
		if _, isLine := e.Curve.(geom.Line); isLine {
			continue // endpoints already cover it
		}
		const n = 16
		for i := 0; i <= n; i++ {
			t := e.T0 + (e.T1-e.T0)*float64(i)/n
			grow(e.PointAt(t))
		}
	}
	return min, max
}

// Clone returns a deep copy of the solid. Entity Guids are preserved;
// operations that derive new entities mint fresh ones instead.
func (s *Solid) Clone() *Solid {
	out := &Solid{
		Guid:     s.Guid,
		Vertices: append([]Vertex(nil), s.Vertices...),
		Edges:    append([]Edge(nil), s.Edges...),
		Faces:    make([]Face, len(s.Faces)),
		Shells:   make([]Shell, len(s.Shells)),
	}
	for i, f := range s.Faces {
		nf := f
		nf.Outer = append(Wire(nil), f.Outer...)
		nf.Inners = make([]Wire, len(f.Inners))
		for j, w := range f.Inners {
			nf.Inners[j] = append(Wire(nil), w...)
		}
		out.Faces[i] = nf
	}
	for i, sh := range s.Shells {
		out.Shells[i] = Shell{Faces: append([]FaceID(nil), sh.Faces...)}
	}
	out.rebuildAdjacency()
	return out
}

// FaceGuids returns the face arena's Guids in face order. The BIM layer
// uses this to attach stable identities to generated geometry.
func (s *Solid) FaceGuids() []base.Guid {
	out := make([]base.Guid, len(s.Faces))
	for i, f := range s.Faces {
		out[i] = f.Guid
	}
	return out
}
