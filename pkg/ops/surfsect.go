package ops

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
)

// sectCurve is one intersection curve of two surface carriers, trimmed to
// the window where the faces can meet. Lines are finite trims; circles and
// closed sampled loops cover their full period.
type sectCurve struct {
	curve  geom.Curve
	t0, t1 float64
	closed bool
}

// surfaceIntersections returns the intersection curves of two surface
// carriers inside the given box. Coincident and tangent carriers yield no
// curves (the classification band resolves those); surface pairs with no
// supported analytic or sampled form fail with ErrAmbiguousBoolean.
func surfaceIntersections(sa, sb geom.Surface, lo, hi v3.Vec, tol base.Tolerance) ([]sectCurve, error) {
	switch a := sa.(type) {
	case geom.Plane:
		switch b := sb.(type) {
		case geom.Plane:
			return planePlane(a, b, lo, hi, tol), nil
		case geom.Cylinder:
			return planeCylinder(a, b, lo, hi, tol)
		case geom.Cone:
			return planeCone(a, b, tol)
		}
	case geom.Cylinder:
		switch b := sb.(type) {
		case geom.Plane:
			return planeCylinder(b, a, lo, hi, tol)
		case geom.Cylinder:
			return cylinderCylinder(a, b, lo, hi, tol)
		case geom.Cone:
			return cylinderCone(a, b, tol)
		}
	case geom.Cone:
		switch b := sb.(type) {
		case geom.Plane:
			return planeCone(b, a, tol)
		case geom.Cylinder:
			return cylinderCone(b, a, tol)
		case geom.Cone:
			return coneCone(a, b, tol)
		}
	}
	return nil, fmt.Errorf("%w: unsupported surface pair", base.ErrAmbiguousBoolean)
}

func planePlane(a, b geom.Plane, lo, hi v3.Vec, tol base.Tolerance) []sectCurve {
	n1, n2 := a.NormalDir(), b.NormalDir()
	dir := n1.Cross(n2)
	if dir.Length() < tol.Angular {
		return nil // parallel or coincident
	}
	d1 := n1.Dot(a.Origin)
	d2 := n2.Dot(b.Origin)
	l2 := dir.Dot(dir)
	p0 := n2.Cross(dir).MulScalar(d1).Add(dir.Cross(n1).MulScalar(d2)).DivScalar(l2)
	ln := geom.Line{P0: p0, Dir: dir.Normalize()}
	t0, t1, ok := clipLineToBox(ln, lo, hi)
	if !ok {
		return nil
	}
	return []sectCurve{{curve: ln, t0: t0, t1: t1}}
}

func planeCylinder(pl geom.Plane, cyl geom.Cylinder, lo, hi v3.Vec, tol base.Tolerance) ([]sectCurve, error) {
	n := pl.NormalDir()
	c := n.Dot(pl.Origin)

	if geom.Parallel(n, cyl.Axis, tol) {
		// Cross-section circle.
		v := (c - n.Dot(cyl.Origin)) / n.Dot(cyl.Axis)
		circ, err := geom.NewCircle(cyl.Origin.Add(cyl.Axis.MulScalar(v)), cyl.Axis, cyl.XDir, cyl.Radius)
		if err != nil {
			return nil, err
		}
		return []sectCurve{{curve: circ, t0: 0, t1: 2 * math.Pi, closed: true}}, nil
	}

	if geom.Perpendicular(n, cyl.Axis, tol) {
		// Zero, one, or two rulings.
		e := c - n.Dot(cyl.Origin)
		if cyl.Radius-math.Abs(e) <= tol.Linear {
			return nil, nil // miss or tangent ruling
		}
		phi := math.Atan2(n.Dot(cyl.YDir()), n.Dot(cyl.XDir))
		delta := math.Acos(e / cyl.Radius)
		var out []sectCurve
		for _, u := range []float64{phi + delta, phi - delta} {
			ln := geom.Line{P0: cyl.Point(u, 0), Dir: cyl.Axis}
			if t0, t1, ok := clipLineToBox(ln, lo, hi); ok {
				out = append(out, sectCurve{curve: ln, t0: t0, t1: t1})
			}
		}
		return out, nil
	}

	// Oblique section: an ellipse, carried as a sampled closed polyline.
	// Parameterized by the cylinder angle so both charts see it smoothly.
	na := n.Dot(cyl.Axis)
	slopeR := cyl.Radius / math.Abs(na)
	step := geom.ChordAngle(slopeR, tol.Linear/4)
	nseg := int(math.Ceil(2 * math.Pi / step))
	if nseg < 64 {
		nseg = 64
	}
	if nseg > 1024 {
		nseg = 1024
	}
	pts := make([]v3.Vec, nseg+1)
	for i := 0; i <= nseg; i++ {
		u := 2 * math.Pi * float64(i) / float64(nseg)
		ring := cyl.Origin.
			Add(cyl.XDir.MulScalar(cyl.Radius * math.Cos(u))).
			Add(cyl.YDir().MulScalar(cyl.Radius * math.Sin(u)))
		v := (c - n.Dot(ring)) / na
		pts[i] = ring.Add(cyl.Axis.MulScalar(v))
	}
	pts[nseg] = pts[0]
	pline, err := geom.NewPolyline(pts)
	if err != nil {
		return nil, err
	}
	return []sectCurve{{curve: pline, t0: 0, t1: float64(nseg), closed: true}}, nil
}

func planeCone(pl geom.Plane, cone geom.Cone, tol base.Tolerance) ([]sectCurve, error) {
	n := pl.NormalDir()
	if !geom.Parallel(n, cone.Axis, tol) {
		return nil, fmt.Errorf("%w: oblique plane/cone section", base.ErrAmbiguousBoolean)
	}
	v := (n.Dot(pl.Origin) - n.Dot(cone.Origin)) / n.Dot(cone.Axis)
	r := cone.RadiusAt(v)
	if r <= tol.Linear {
		return nil, nil // apex touch
	}
	circ, err := geom.NewCircle(cone.Origin.Add(cone.Axis.MulScalar(v)), cone.Axis, cone.XDir, r)
	if err != nil {
		return nil, err
	}
	return []sectCurve{{curve: circ, t0: 0, t1: 2 * math.Pi, closed: true}}, nil
}

func cylinderCylinder(a, b geom.Cylinder, lo, hi v3.Vec, tol base.Tolerance) ([]sectCurve, error) {
	if !geom.Parallel(a.Axis, b.Axis, tol) {
		return nil, fmt.Errorf("%w: skew cylinder/cylinder section", base.ErrAmbiguousBoolean)
	}
	w := b.Origin.Sub(a.Origin)
	w = w.Sub(a.Axis.MulScalar(w.Dot(a.Axis)))
	d := w.Length()
	if d <= tol.Linear {
		return nil, nil // coaxial: coincident or nested
	}
	if d >= a.Radius+b.Radius-tol.Linear || d <= math.Abs(a.Radius-b.Radius)+tol.Linear {
		return nil, nil // miss, tangent, or nested
	}
	// Circle-circle intersection in the cross-section plane.
	wd := w.DivScalar(d)
	hd := a.Axis.Cross(wd)
	along := (a.Radius*a.Radius - b.Radius*b.Radius + d*d) / (2 * d)
	h2 := a.Radius*a.Radius - along*along
	if h2 <= tol.Linear*tol.Linear {
		return nil, nil
	}
	h := math.Sqrt(h2)
	var out []sectCurve
	for _, s := range []float64{h, -h} {
		p0 := a.Origin.Add(wd.MulScalar(along)).Add(hd.MulScalar(s))
		ln := geom.Line{P0: p0, Dir: a.Axis}
		if t0, t1, ok := clipLineToBox(ln, lo, hi); ok {
			out = append(out, sectCurve{curve: ln, t0: t0, t1: t1})
		}
	}
	return out, nil
}

func cylinderCone(cyl geom.Cylinder, cone geom.Cone, tol base.Tolerance) ([]sectCurve, error) {
	if !coaxial(cyl.Origin, cyl.Axis, cone.Origin, cone.Axis, tol) {
		return nil, fmt.Errorf("%w: non-coaxial cylinder/cone section", base.ErrAmbiguousBoolean)
	}
	v := (cyl.Radius - cone.Radius) / math.Tan(cone.HalfAngle)
	center := cone.Origin.Add(cone.Axis.MulScalar(v))
	circ, err := geom.NewCircle(center, cyl.Axis, cyl.XDir, cyl.Radius)
	if err != nil {
		return nil, err
	}
	return []sectCurve{{curve: circ, t0: 0, t1: 2 * math.Pi, closed: true}}, nil
}

func coneCone(a, b geom.Cone, tol base.Tolerance) ([]sectCurve, error) {
	if !coaxial(a.Origin, a.Axis, b.Origin, b.Axis, tol) {
		return nil, fmt.Errorf("%w: non-coaxial cone/cone section", base.ErrAmbiguousBoolean)
	}
	// Solve ra(v) == rb(v) along the shared axis, in a's frame.
	sign := 1.0
	if a.Axis.Dot(b.Axis) < 0 {
		sign = -1
	}
	offset := b.Origin.Sub(a.Origin).Dot(a.Axis)
	ta := math.Tan(a.HalfAngle)
	tb := sign * math.Tan(b.HalfAngle)
	if math.Abs(ta-tb) < tol.Angular {
		return nil, nil // parallel slants: coincident or disjoint
	}
	v := (b.Radius - a.Radius + offset*tb) / (ta - tb)
	r := a.RadiusAt(v)
	if r <= tol.Linear {
		return nil, nil
	}
	circ, err := geom.NewCircle(a.Origin.Add(a.Axis.MulScalar(v)), a.Axis, a.XDir, r)
	if err != nil {
		return nil, err
	}
	return []sectCurve{{curve: circ, t0: 0, t1: 2 * math.Pi, closed: true}}, nil
}

func coaxial(o1, a1, o2, a2 v3.Vec, tol base.Tolerance) bool {
	if !geom.Parallel(a1, a2, tol) {
		return false
	}
	w := o2.Sub(o1)
	w = w.Sub(a1.MulScalar(w.Dot(a1)))
	return w.Length() <= tol.Linear
}

// clipLineToBox trims an infinite line to an axis-aligned box using the
// slab method.
func clipLineToBox(ln geom.Line, lo, hi v3.Vec) (float64, float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [3]float64{ln.P0.X, ln.P0.Y, ln.P0.Z}
	d := [3]float64{ln.Dir.X, ln.Dir.Y, ln.Dir.Z}
	l := [3]float64{lo.X, lo.Y, lo.Z}
	h := [3]float64{hi.X, hi.Y, hi.Z}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < l[i] || o[i] > h[i] {
				return 0, 0, false
			}
			continue
		}
		ta := (l[i] - o[i]) / d[i]
		tb := (h[i] - o[i]) / d[i]
		if ta > tb {
			ta, tb = tb, ta
		}
		if ta > tmin {
			tmin = ta
		}
		if tb < tmax {
			tmax = tb
		}
	}
	if tmin >= tmax {
		return 0, 0, false
	}
	return tmin, tmax, true
}
