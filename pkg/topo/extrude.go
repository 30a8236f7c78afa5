package topo

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// Extrude sweeps a closed planar profile along a direction for a positive
// distance and returns the resulting solid. Line segments may be swept
// obliquely; profiles containing arcs must be swept along the profile
// plane's normal, since an oblique sweep of an arc has no surface in the
// kernel's closed set.
func Extrude(p Profile, dir v3.Vec, dist float64, tol base.Tolerance) (*Solid, error) {
	if dist <= 0 {
		return nil, fmt.Errorf("%w: extrusion distance must be > 0, got %g", base.ErrInvalidGeometry, dist)
	}
	if dir.Length() < 1e-12 {
		return nil, fmt.Errorf("%w: extrusion direction is degenerate", base.ErrInvalidGeometry)
	}
	pl, err := p.Validate(tol)
	if err != nil {
		return nil, err
	}
	d := dir.Normalize()
	n0 := pl.NormalDir()
	if math.Abs(n0.Dot(d)) <= tol.Angular {
		return nil, fmt.Errorf("%w: extrusion direction lies in the profile plane", base.ErrInvalidGeometry)
	}
	if p.HasArcs() && !geom.Parallel(n0, d, tol) {
		return nil, fmt.Errorf("%w: oblique extrusion of circular arcs", base.ErrUnsupportedGeometry)
	}

	// Normalize the profile to counter-clockwise about the sweep-side
	// plane normal; all face orientations below assume it.
	nUp := n0
	sign := 1.0
	if n0.Dot(d) < 0 {
		nUp = n0.Neg()
		sign = -1
	}
	if p.SignedAreaOn(pl)*sign < 0 {
		p = p.Reverse()
	}
	w := d.MulScalar(dist)

	if p.IsClosedCurve() {
		return extrudeCircle(p, nUp, w, tol)
	}
	return extrudeLoop(p, nUp, w, dist, tol)
}

// extrudeCircle sweeps a full-circle profile into a cylinder solid with
// seamless periodic circle edges.
func extrudeCircle(p Profile, nUp, w v3.Vec, tol base.Tolerance) (*Solid, error) {
	c := p.Segs[0].Curve.(geom.Circle)
	cb, err := geom.NewCircle(c.Center, nUp, c.XDir, c.Radius)
	if err != nil {
		return nil, err
	}
	ct := geom.TransformCurve(geom.Translation(w), cb).(geom.Circle)
	cyl, err := geom.NewCylinder(cb.Center, nUp, cb.XDir, cb.Radius)
	if err != nil {
		return nil, err
	}
	botPl, err := geom.PlaneFromNormal(cb.Center, nUp)
	if err != nil {
		return nil, err
	}
	topPl, err := geom.PlaneFromNormal(ct.Center, nUp)
	if err != nil {
		return nil, err
	}

	var a arena
	vb := a.vertex(cb.Point(0))
	vt := a.vertex(ct.Point(0))
	eb := a.edge(cb, 0, 2*math.Pi, vb, vb)
	et := a.edge(ct, 0, 2*math.Pi, vt, vt)

	a.face(botPl, false, Wire{{Edge: eb, Reversed: true}})
	a.face(topPl, true, Wire{{Edge: et}})
	a.face(cyl, true, Wire{{Edge: eb}}, Wire{{Edge: et, Reversed: true}})
	return a.solid(tol)
}

// extrudeLoop sweeps a multi-segment profile: one bottom and one top cap
// plus one side face per segment.
func extrudeLoop(p Profile, nUp, w v3.Vec, dist float64, tol base.Tolerance) (*Solid, error) {
	var a arena
	n := len(p.Segs)

	vb := make([]VertexID, n)
	vt := make([]VertexID, n)
	for i, s := range p.Segs {
		vb[i] = a.vertex(s.Start())
		vt[i] = a.vertex(s.Start().Add(w))
	}

	// Bottom and top boundary edges. Edges store ascending parameters;
	// orient records whether the profile traverses them backwards.
	eb := make([]EdgeID, n)
	et := make([]EdgeID, n)
	orient := make([]bool, n)
	for i, s := range p.Segs {
		lo, hi := s.T0, s.T1
		rev := lo > hi
		if rev {
			lo, hi = hi, lo
		}
		orient[i] = rev
		start, end := vb[i], vb[(i+1)%n]
		if rev {
			start, end = end, start
		}
		eb[i] = a.edge(s.Curve, lo, hi, start, end)
		ct := geom.TransformCurve(geom.Translation(w), s.Curve)
		startT, endT := vt[i], vt[(i+1)%n]
		if rev {
			startT, endT = endT, startT
		}
		et[i] = a.edge(ct, lo, hi, startT, endT)
	}

	ve := make([]EdgeID, n)
	for i := range p.Segs {
		pb := a.verts[vb[i]].Point
		ln, err := geom.LineThrough(pb, pb.Add(w))
		if err != nil {
			return nil, err
		}
		ve[i] = a.edge(ln, 0, dist, vb[i], vt[i])
	}

	botPl, err := geom.PlaneFromNormal(a.verts[vb[0]].Point, nUp)
	if err != nil {
		return nil, err
	}
	topPl, err := geom.PlaneFromNormal(a.verts[vt[0]].Point, nUp)
	if err != nil {
		return nil, err
	}
	botWire := make(Wire, n)
	topWire := make(Wire, n)
	for i := 0; i < n; i++ {
		botWire[i] = OrientedEdge{Edge: eb[n-1-i], Reversed: !orient[n-1-i]}
		topWire[i] = OrientedEdge{Edge: et[i], Reversed: orient[i]}
	}
	a.face(botPl, false, botWire)
	a.face(topPl, true, topWire)

	for i, s := range p.Segs {
		surf, sameSense, err := sideSurface(s, nUp, w)
		if err != nil {
			return nil, err
		}
		wire := Wire{
			{Edge: eb[i], Reversed: orient[i]},
			{Edge: ve[(i+1)%n]},
			{Edge: et[i], Reversed: !orient[i]},
			{Edge: ve[i], Reversed: true},
		}
		a.face(surf, sameSense, wire)
	}
	return a.solid(tol)
}

// sideSurface returns the carrier of a swept profile segment and whether
// the solid's outward normal agrees with the surface frame.
func sideSurface(s ProfileSeg, nUp, w v3.Vec) (geom.Surface, bool, error) {
	switch c := s.Curve.(type) {
	case geom.Line:
		t := s.End().Sub(s.Start())
		pl, err := geom.NewPlane(s.Start(), t, w)
		if err != nil {
			return nil, false, err
		}
		return pl, true, nil
	case geom.Circle:
		cyl, err := geom.NewCylinder(c.Center, nUp, c.XDir, c.Radius)
		if err != nil {
			return nil, false, err
		}
		// A segment run counter-clockwise about the sweep normal bulges
		// outward; run the other way it is a concave notch whose outward
		// normal points at the axis.
		ccw := (c.Axis.Dot(nUp) > 0) == (s.T1 > s.T0)
		return cyl, ccw, nil
	default:
		return nil, false, fmt.Errorf("%w: profile segment kind", base.ErrUnsupportedGeometry)
	}
}
