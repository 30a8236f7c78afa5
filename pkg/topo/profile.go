package topo

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/poly"
)

// ProfileSeg is one trimmed curve of a profile. T0 > T1 traverses the
// curve backwards.
type ProfileSeg struct {
	Curve  geom.Curve
	T0, T1 float64
}

// Start returns the segment's first point in traversal order.
func (s ProfileSeg) Start() v3.Vec { return s.Curve.Point(s.T0) }

// End returns the segment's last point in traversal order.
func (s ProfileSeg) End() v3.Vec { return s.Curve.Point(s.T1) }

// Profile is a closed planar loop of curve segments, the sweep input for
// extrusion and revolution. A single full-period segment (a whole circle)
// is a valid profile.
type Profile struct {
	Segs []ProfileSeg
}

// RectProfile returns the axis-aligned rectangle [x0,x0+w] x [y0,y0+h] in
// the z = 0 plane, counter-clockwise seen from +Z.
func RectProfile(x0, y0, w, h float64) (Profile, error) {
	if w <= 0 || h <= 0 {
		return Profile{}, fmt.Errorf("%w: rectangle sides must be > 0, got %g x %g", base.ErrInvalidProfile, w, h)
	}
	pts := []v3.Vec{
		{X: x0, Y: y0},
		{X: x0 + w, Y: y0},
		{X: x0 + w, Y: y0 + h},
		{X: x0, Y: y0 + h},
	}
	return PolygonProfile(pts)
}

// PolygonProfile returns a closed polygonal profile over at least three
// points.
func PolygonProfile(pts []v3.Vec) (Profile, error) {
	if len(pts) < 3 {
		return Profile{}, fmt.Errorf("%w: polygon needs at least 3 points, got %d", base.ErrInvalidProfile, len(pts))
	}
	segs := make([]ProfileSeg, len(pts))
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		ln, err := geom.LineThrough(a, b)
		if err != nil {
			return Profile{}, fmt.Errorf("%w: polygon side %d: %v", base.ErrInvalidProfile, i, err)
		}
		segs[i] = ProfileSeg{Curve: ln, T0: 0, T1: b.Sub(a).Length()}
	}
	return Profile{Segs: segs}, nil
}

// CircleProfile returns a full-circle profile around an axis.
func CircleProfile(center, axis v3.Vec, radius float64) (Profile, error) {
	xdir := v3.Vec{X: 1}
	if geom.Parallel(axis, xdir, base.DefaultTolerance()) {
		xdir = v3.Vec{Y: 1}
	}
	c, err := geom.NewCircle(center, axis, xdir, radius)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", base.ErrInvalidProfile, err)
	}
	return Profile{Segs: []ProfileSeg{{Curve: c, T0: 0, T1: 2 * math.Pi}}}, nil
}

// IsClosedCurve reports whether the profile is a single full period of a
// periodic curve.
func (p Profile) IsClosedCurve() bool {
	if len(p.Segs) != 1 {
		return false
	}
	s := p.Segs[0]
	per, period := s.Curve.Periodic()
	return per && math.Abs(math.Abs(s.T1-s.T0)-period) < 1e-9
}

// Reverse returns the profile traversed the other way.
func (p Profile) Reverse() Profile {
	out := Profile{Segs: make([]ProfileSeg, len(p.Segs))}
	for i, s := range p.Segs {
		s.T0, s.T1 = s.T1, s.T0
		out.Segs[len(p.Segs)-1-i] = s
	}
	return out
}

// HasArcs reports whether any segment is circular.
func (p Profile) HasArcs() bool {
	for _, s := range p.Segs {
		if _, ok := s.Curve.(geom.Circle); ok {
			return true
		}
	}
	return false
}

// Validate checks that the profile is a closed, planar, non-self-
// intersecting loop and returns its carrier plane. The plane's frame
// normal is arbitrary; callers orient it for their sweep.
func (p Profile) Validate(tol base.Tolerance) (geom.Plane, error) {
	if len(p.Segs) == 0 {
		return geom.Plane{}, fmt.Errorf("%w: profile has no segments", base.ErrInvalidProfile)
	}

	if p.IsClosedCurve() {
		c, ok := p.Segs[0].Curve.(geom.Circle)
		if !ok {
			return geom.Plane{}, fmt.Errorf("%w: closed profile curve must be a circle", base.ErrInvalidProfile)
		}
		pl, err := geom.PlaneFromNormal(c.Center, c.Axis)
		if err != nil {
			return geom.Plane{}, fmt.Errorf("%w: %v", base.ErrInvalidProfile, err)
		}
		return pl, nil
	}

	// Chained endpoints.
	n := len(p.Segs)
	for i := 0; i < n; i++ {
		gap := p.Segs[i].End().Sub(p.Segs[(i+1)%n].Start()).Length()
		if gap > tol.Linear {
			return geom.Plane{}, fmt.Errorf("%w: gap of %g between segments %d and %d",
				base.ErrInvalidProfile, gap, i, (i+1)%n)
		}
	}

	samples := p.samplePoints()
	pl, err := fitPlane(samples)
	if err != nil {
		return geom.Plane{}, err
	}
	for i, s := range samples {
		if d := math.Abs(pl.SignedDistance(s)); d > tol.Linear {
			return geom.Plane{}, fmt.Errorf("%w: sample %d is %g off the profile plane", base.ErrInvalidProfile, i, d)
		}
	}

	flat := make([]v2.Vec, len(samples))
	for i, s := range samples {
		flat[i] = pl.Project(s)
	}
	if math.Abs(poly.Area(flat)) < tol.Linear*tol.Linear {
		return geom.Plane{}, fmt.Errorf("%w: profile encloses no area", base.ErrInvalidProfile)
	}
	if poly.SelfIntersects(flat, tol.Linear) {
		return geom.Plane{}, fmt.Errorf("%w: profile self-intersects", base.ErrInvalidProfile)
	}
	return pl, nil
}

// SignedAreaOn returns the profile's signed area in the given plane's
// frame (positive when counter-clockwise about the frame normal).
func (p Profile) SignedAreaOn(pl geom.Plane) float64 {
	samples := p.samplePoints()
	flat := make([]v2.Vec, len(samples))
	for i, s := range samples {
		flat[i] = pl.Project(s)
	}
	return poly.Area(flat)
}

// samplePoints walks the profile boundary, sampling arcs at the chart
// resolution and lines at their endpoints.
func (p Profile) samplePoints() []v3.Vec {
	var out []v3.Vec
	for _, s := range p.Segs {
		switch s.Curve.(type) {
		case geom.Line:
			out = append(out, s.Start())
		default:
			span := math.Abs(s.T1 - s.T0)
			n := int(math.Ceil(span / chartAngleStep))
			if n < 8 {
				n = 8
			}
			for i := 0; i < n; i++ {
				t := s.T0 + (s.T1-s.T0)*float64(i)/float64(n)
				out = append(out, s.Curve.Point(t))
			}
		}
	}
	return out
}

// fitPlane fits a plane through a point loop using Newell's method.
func fitPlane(pts []v3.Vec) (geom.Plane, error) {
	var normal, centroid v3.Vec
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		normal.X += (a.Y - b.Y) * (a.Z + b.Z)
		normal.Y += (a.Z - b.Z) * (a.X + b.X)
		normal.Z += (a.X - b.X) * (a.Y + b.Y)
		centroid = centroid.Add(a)
	}
	centroid = centroid.DivScalar(float64(n))
	pl, err := geom.PlaneFromNormal(centroid, normal)
	if err != nil {
		return geom.Plane{}, fmt.Errorf("%w: profile is degenerate", base.ErrInvalidProfile)
	}
	return pl, nil
}
