package topo

import (
	"fmt"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// CheckManifold validates that the solid is a closed oriented 2-manifold:
// every edge has exactly two face uses with opposite orientations, wires
// chain head to tail, edge endpoints coincide with their vertices within
// the tolerance, wires lie on their face's surface, and every face belongs
// to exactly one shell of connected faces. An empty solid is valid.
//
// A full-period face uses each of its closed boundary edges once; the
// partner use comes from the adjacent face, so the two-use rule holds
// unchanged.
func CheckManifold(s *Solid, tol base.Tolerance) error {
	if s.IsEmpty() {
		if len(s.Faces) != 0 {
			return fmt.Errorf("%w: %d faces outside any shell", base.ErrTopology, len(s.Faces))
		}
		return nil
	}

	for ei := range s.Edges {
		uses := s.EdgeFaces(EdgeID(ei))
		if len(uses) != 2 {
			return fmt.Errorf("%w: edge %d has %d face uses, want 2", base.ErrTopology, ei, len(uses))
		}
		if uses[0].Reversed == uses[1].Reversed {
			return fmt.Errorf("%w: edge %d is used twice in the same direction", base.ErrTopology, ei)
		}
	}

	for ei, e := range s.Edges {
		if e.Start < 0 || int(e.Start) >= len(s.Vertices) || e.End < 0 || int(e.End) >= len(s.Vertices) {
			return fmt.Errorf("%w: edge %d references a vertex out of range", base.ErrTopology, ei)
		}
		if e.Closed && e.Start != e.End {
			return fmt.Errorf("%w: closed edge %d has distinct endpoints", base.ErrTopology, ei)
		}
		if d := e.PointAt(e.T0).Sub(s.Vertices[e.Start].Point).Length(); d > tol.Linear {
			return fmt.Errorf("%w: edge %d start is %g from its vertex", base.ErrTopology, ei, d)
		}
		if d := e.PointAt(e.T1).Sub(s.Vertices[e.End].Point).Length(); d > tol.Linear {
			return fmt.Errorf("%w: edge %d end is %g from its vertex", base.ErrTopology, ei, d)
		}
	}

	for fi := range s.Faces {
		f := s.Faces[fi]
		for wi, w := range f.Wires() {
			if len(w) == 0 {
				return fmt.Errorf("%w: face %d wire %d is empty", base.ErrTopology, fi, wi)
			}
			for i, oe := range w {
				next := w[(i+1)%len(w)]
				if s.EndOf(oe) != s.StartOf(next) {
					return fmt.Errorf("%w: face %d wire %d breaks between edges %d and %d",
						base.ErrTopology, fi, wi, oe.Edge, next.Edge)
				}
				e := s.Edges[oe.Edge]
				mid := e.PointAt((e.T0 + e.T1) / 2)
				if !geom.OnSurface(f.Surface, mid, tol) {
					return fmt.Errorf("%w: face %d wire %d edge %d leaves the surface",
						base.ErrTopology, fi, wi, oe.Edge)
				}
			}
		}
	}

	return checkShells(s)
}

// checkShells verifies that shells partition the faces and that each
// shell's faces are connected through shared edges.
func checkShells(s *Solid) error {
	owner := make([]int, len(s.Faces))
	for i := range owner {
		owner[i] = -1
	}
	for si, sh := range s.Shells {
		if len(sh.Faces) == 0 {
			return fmt.Errorf("%w: shell %d is empty", base.ErrTopology, si)
		}
		for _, fid := range sh.Faces {
			if int(fid) < 0 || int(fid) >= len(s.Faces) {
				return fmt.Errorf("%w: shell %d references face %d out of range", base.ErrTopology, si, fid)
			}
			if owner[fid] != -1 {
				return fmt.Errorf("%w: face %d appears in shells %d and %d", base.ErrTopology, fid, owner[fid], si)
			}
			owner[fid] = si
		}
	}
	for fi, si := range owner {
		if si == -1 {
			return fmt.Errorf("%w: face %d belongs to no shell", base.ErrTopology, fi)
		}
	}

	for si, sh := range s.Shells {
		inShell := make(map[FaceID]bool, len(sh.Faces))
		for _, fid := range sh.Faces {
			inShell[fid] = true
		}
		seen := map[FaceID]bool{sh.Faces[0]: true}
		queue := []FaceID{sh.Faces[0]}
		for len(queue) > 0 {
			fid := queue[0]
			queue = queue[1:]
			for _, oe := range s.FaceEdges(fid) {
				for _, use := range s.EdgeFaces(oe.Edge) {
					if use.Face == fid || seen[use.Face] {
						continue
					}
					if !inShell[use.Face] {
						return fmt.Errorf("%w: shell %d shares edge %d with face %d of another shell",
							base.ErrTopology, si, oe.Edge, use.Face)
					}
					seen[use.Face] = true
					queue = append(queue, use.Face)
				}
			}
		}
		if len(seen) != len(sh.Faces) {
			return fmt.Errorf("%w: shell %d is disconnected (%d of %d faces reachable)",
				base.ErrTopology, si, len(seen), len(sh.Faces))
		}
	}
	return nil
}
