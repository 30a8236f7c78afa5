package topo

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// Revolve sweeps a closed planar profile around an axis lying in the
// profile plane, by an angle in (0, 2*pi]. A full revolution produces
// seamless periodic faces; a partial one adds two planar caps.
//
// The profile must consist of line segments only and keep a positive
// distance from the axis: revolved arcs produce toroidal surfaces outside
// the kernel's closed set, and profiles touching the axis would need apex
// degeneracies.
func Revolve(p Profile, axisPt, axisDir v3.Vec, angle float64, tol base.Tolerance) (*Solid, error) {
	if axisDir.Length() < 1e-12 {
		return nil, fmt.Errorf("%w: revolution axis is degenerate", base.ErrInvalidGeometry)
	}
	if angle <= tol.Angular || angle > 2*math.Pi+tol.Angular {
		return nil, fmt.Errorf("%w: revolution angle must be in (0, 2*pi], got %g", base.ErrInvalidGeometry, angle)
	}
	if p.HasArcs() {
		return nil, fmt.Errorf("%w: revolving circular arcs", base.ErrUnsupportedGeometry)
	}
	pl, err := p.Validate(tol)
	if err != nil {
		return nil, err
	}
	a := axisDir.Normalize()
	if !geom.Perpendicular(a, pl.NormalDir(), tol) {
		return nil, fmt.Errorf("%w: revolution axis does not lie in the profile plane", base.ErrInvalidGeometry)
	}
	if d := math.Abs(pl.SignedDistance(axisPt)); d > tol.Linear {
		return nil, fmt.Errorf("%w: revolution axis is %g off the profile plane", base.ErrInvalidGeometry, d)
	}

	// Half-plane frame: z along the axis, r radially out through the
	// first profile vertex.
	rv, err := newRevFrame(p, axisPt, a, tol)
	if err != nil {
		return nil, err
	}
	if rv.signedArea() < 0 {
		p = p.Reverse()
		rv, err = newRevFrame(p, axisPt, a, tol)
		if err != nil {
			return nil, err
		}
	}

	full := math.Abs(angle-2*math.Pi) <= tol.Angular
	if full {
		return revolveFull(rv, tol)
	}
	return revolvePartial(rv, angle, tol)
}

// revFrame holds a revolution profile reduced to (radius, height)
// coordinates in the half-plane spanned by rdir and the axis.
type revFrame struct {
	axisPt v3.Vec
	axis   v3.Vec
	rdir   v3.Vec
	segs   []ProfileSeg
	r, z   []float64
}

func newRevFrame(p Profile, axisPt, axis v3.Vec, tol base.Tolerance) (*revFrame, error) {
	rv := &revFrame{axisPt: axisPt, axis: axis, segs: p.Segs}
	for i, s := range p.Segs {
		d := s.Start().Sub(axisPt)
		z := d.Dot(axis)
		m := d.Sub(axis.MulScalar(z))
		r := m.Length()
		if r <= tol.Linear {
			return nil, fmt.Errorf("%w: profile vertex %d touches the revolution axis", base.ErrInvalidProfile, i)
		}
		if i == 0 {
			rv.rdir = m.DivScalar(r)
		} else if m.Dot(rv.rdir) <= 0 {
			return nil, fmt.Errorf("%w: profile crosses the revolution axis", base.ErrInvalidProfile)
		}
		rv.r = append(rv.r, r)
		rv.z = append(rv.z, z)
	}
	return rv, nil
}

func (rv *revFrame) signedArea() float64 {
	var sum float64
	n := len(rv.r)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += rv.r[i]*rv.z[j] - rv.r[j]*rv.z[i]
	}
	return sum / 2
}

// segSurface returns the surface swept by profile segment i and whether
// the solid's outward normal agrees with the surface frame.
func (rv *revFrame) segSurface(i int, tol base.Tolerance) (geom.Surface, bool, error) {
	j := (i + 1) % len(rv.r)
	dr := rv.r[j] - rv.r[i]
	dz := rv.z[j] - rv.z[i]
	switch {
	case math.Abs(dr) <= tol.Linear:
		cyl, err := geom.NewCylinder(rv.axisPt, rv.axis, rv.rdir, rv.r[i])
		return cyl, dz > 0, err
	case math.Abs(dz) <= tol.Linear:
		pln, err := geom.PlaneFromNormal(rv.axisPt.Add(rv.axis.MulScalar(rv.z[i])), rv.axis)
		return pln, dr < 0, err
	default:
		w := rv.axis
		if dr/dz < 0 {
			w = rv.axis.Neg()
		}
		half := math.Atan(math.Abs(dr / dz))
		cone, err := geom.NewCone(rv.axisPt.Add(rv.axis.MulScalar(rv.z[i])), w, rv.rdir, rv.r[i], half)
		return cone, dz > 0, err
	}
}

// circleAt returns the circle swept by profile vertex i.
func (rv *revFrame) circleAt(i int) (geom.Circle, error) {
	center := rv.axisPt.Add(rv.axis.MulScalar(rv.z[i]))
	return geom.NewCircle(center, rv.axis, rv.rdir, rv.r[i])
}

func revolveFull(rv *revFrame, tol base.Tolerance) (*Solid, error) {
	var ar arena
	n := len(rv.segs)
	verts := make([]VertexID, n)
	rings := make([]EdgeID, n)
	circles := make([]geom.Circle, n)
	for i := 0; i < n; i++ {
		c, err := rv.circleAt(i)
		if err != nil {
			return nil, err
		}
		circles[i] = c
		verts[i] = ar.vertex(c.Point(0))
		rings[i] = ar.edge(c, 0, 2*math.Pi, verts[i], verts[i])
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		surf, sameSense, err := rv.segSurface(i, tol)
		if err != nil {
			return nil, err
		}
		start := OrientedEdge{Edge: rings[i]}
		end := OrientedEdge{Edge: rings[j], Reversed: true}
		outer, inner := start, end
		if _, planar := surf.(geom.Plane); planar {
			// Planar annulus: the larger circle bounds the outside.
			if rv.r[j] > rv.r[i] {
				outer, inner = end, start
			}
		} else if surfV(surf, circles[j].Center) < surfV(surf, circles[i].Center) {
			outer, inner = end, start
		}
		ar.face(surf, sameSense, Wire{outer}, Wire{inner})
	}
	return ar.solid(tol)
}

// surfV returns the axial parameter of a point on a periodic surface.
func surfV(surf geom.Surface, p v3.Vec) float64 {
	return surf.Project(p).Y
}

func revolvePartial(rv *revFrame, angle float64, tol base.Tolerance) (*Solid, error) {
	var ar arena
	n := len(rv.segs)
	rot := geom.RotationAxis(rv.axisPt, rv.axis, angle)

	v0 := make([]VertexID, n)
	v1 := make([]VertexID, n)
	arcs := make([]EdgeID, n)
	for i := 0; i < n; i++ {
		c, err := rv.circleAt(i)
		if err != nil {
			return nil, err
		}
		v0[i] = ar.vertex(c.Point(0))
		v1[i] = ar.vertex(c.Point(angle))
		arcs[i] = ar.edge(c, 0, angle, v0[i], v1[i])
	}

	e0 := make([]EdgeID, n)
	e1 := make([]EdgeID, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a0 := ar.verts[v0[i]].Point
		b0 := ar.verts[v0[j]].Point
		ln, err := geom.LineThrough(a0, b0)
		if err != nil {
			return nil, err
		}
		e0[i] = ar.edge(ln, 0, b0.Sub(a0).Length(), v0[i], v0[j])
		lnR := geom.TransformCurve(rot, ln)
		e1[i] = ar.edge(lnR, 0, b0.Sub(a0).Length(), v1[i], v1[j])
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		surf, sameSense, err := rv.segSurface(i, tol)
		if err != nil {
			return nil, err
		}
		wire := Wire{
			{Edge: arcs[i]},
			{Edge: e1[i]},
			{Edge: arcs[j], Reversed: true},
			{Edge: e0[i], Reversed: true},
		}
		ar.face(surf, sameSense, wire)
	}

	// Caps. The start cap's frame normal (rdir x axis) points against the
	// sweep, which is its outward side; the end cap is the mirror case.
	capPl, err := geom.NewPlane(rv.axisPt, rv.rdir, rv.axis)
	if err != nil {
		return nil, err
	}
	capWire := make(Wire, n)
	for i := 0; i < n; i++ {
		capWire[i] = OrientedEdge{Edge: e0[i]}
	}
	ar.face(capPl, true, capWire)

	endPl, err := geom.NewPlane(rv.axisPt, rot.ApplyVec(rv.rdir), rv.axis)
	if err != nil {
		return nil, err
	}
	endWire := make(Wire, n)
	for i := 0; i < n; i++ {
		endWire[i] = OrientedEdge{Edge: e1[n-1-i], Reversed: true}
	}
	ar.face(endPl, false, endWire)

	return ar.solid(tol)
}
