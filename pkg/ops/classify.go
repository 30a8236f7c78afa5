package ops

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/topo"
)

// pointClass is the membership of a point relative to a solid.
type pointClass int

const (
	classOutside pointClass = iota
	classInside
	classOn
)

// rayDirs are the casting directions tried in order when a ray grazes the
// boundary. Irrational components keep them off the axis-aligned planes
// most models are built from.
var rayDirs = []v3.Vec{
	{X: 0.7236, Y: 0.5251, Z: 0.4481},
	{X: -0.3917, Y: 0.8204, Z: 0.4166},
	{X: 0.5317, Y: -0.2703, Z: 0.8026},
	{X: -0.6111, Y: -0.4829, Z: 0.6270},
	{X: 0.2049, Y: 0.6173, Z: -0.7596},
	{X: -0.8011, Y: 0.3021, Z: -0.5166},
	{X: 0.4597, Y: -0.7549, Z: -0.4676},
	{X: -0.1413, Y: -0.5734, Z: 0.8070},
}

// classifier answers point-in-solid queries against one operand. On-band
// hits are resolved against the face charts; everything else falls to
// analytic ray casting with retry over a fixed direction set.
type classifier struct {
	solid  *topo.Solid
	tol    base.Tolerance
	charts []*topo.Chart
}

func newClassifier(s *topo.Solid, charts []*topo.Chart, tol base.Tolerance) *classifier {
	return &classifier{solid: s, tol: tol, charts: charts}
}

// classify locates p relative to the solid. For classOn the returned face
// is the coincident one, so the caller can compare outward normals.
func (c *classifier) classify(p v3.Vec) (pointClass, topo.FaceID, error) {
	for _, ch := range c.charts {
		if ch == nil {
			continue
		}
		uv := ch.Surface.Project(p)
		if ch.Surface.Point(uv.X, uv.Y).Sub(p).Length() > c.tol.Linear {
			continue
		}
		if chartContains(ch, uv, chartTolFor(ch, c.tol)) != 0 {
			return classOn, ch.Face, nil
		}
	}

	for _, dir := range rayDirs {
		crossings, ok := c.castRay(p, dir)
		if !ok {
			continue
		}
		if crossings%2 == 1 {
			return classInside, 0, nil
		}
		return classOutside, 0, nil
	}
	return classOutside, 0, fmt.Errorf("%w: every ray from point (%g, %g, %g) grazes the boundary",
		base.ErrAmbiguousBoolean, p.X, p.Y, p.Z)
}

// chartContains reports where uv falls in the chart's region: 1 inside,
// -1 on the boundary band, 0 outside. Periodic charts are tested with the
// u coordinate shifted by each period offset.
func chartContains(ch *topo.Chart, uv v2.Vec, ctol float64) int {
	shifts := []float64{0}
	if periodic, period := ch.Surface.PeriodicU(); periodic {
		shifts = []float64{0, -period, period}
	}
	for _, sh := range shifts {
		q := v2.Vec{X: uv.X + sh, Y: uv.Y}
		if ch.Region.OnBoundary(q, ctol) {
			return -1
		}
		if ch.Region.ContainsPoint(q) {
			return 1
		}
	}
	return 0
}

// castRay counts boundary crossings of the ray p + t*dir, t > 0. It
// reports ok == false when any hit grazes a face boundary or a carrier
// tangentially, telling the caller to try another direction.
func (c *classifier) castRay(p, dir v3.Vec) (int, bool) {
	total := 0
	for _, ch := range c.charts {
		if ch == nil {
			continue
		}
		n, ok := c.faceCrossings(ch, p, dir)
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

func (c *classifier) faceCrossings(ch *topo.Chart, p, dir v3.Vec) (int, bool) {
	var ts []float64
	switch s := ch.Surface.(type) {
	case geom.Plane:
		n := s.NormalDir()
		denom := n.Dot(dir)
		dist := s.SignedDistance(p)
		if math.Abs(denom) < c.tol.Angular {
			if math.Abs(dist) < c.tol.Linear {
				return 0, false // ray runs inside the carrier plane
			}
			return 0, true
		}
		ts = []float64{-dist / denom}
	case geom.Cylinder:
		var ok bool
		ts, ok = rayQuadric(p.Sub(s.Origin), dir, s.Axis, s.Radius, 0, c.tol)
		if !ok {
			return 0, false
		}
	case geom.Cone:
		var ok bool
		ts, ok = rayQuadric(p.Sub(s.Origin), dir, s.Axis, s.Radius, math.Tan(s.HalfAngle), c.tol)
		if !ok {
			return 0, false
		}
	default:
		return 0, false
	}

	count := 0
	ctol := chartTolFor(ch, c.tol)
	for _, t := range ts {
		if t <= c.tol.Linear {
			if t > -c.tol.Linear {
				return 0, false // hit at the ray origin
			}
			continue
		}
		hit := p.Add(dir.MulScalar(t))
		uv := ch.Surface.Project(hit)
		switch chartContains(ch, uv, ctol) {
		case 1:
			count++
		case -1:
			return 0, false // hit lands on a face boundary
		}
	}
	return count, true
}

// rayQuadric solves for the ray parameters hitting a cylinder (k == 0) or
// cone (k == tan of the half angle) around the axis through the local
// origin. The ray origin w is already relative to the surface origin.
func rayQuadric(w, dir, axis v3.Vec, radius, k float64, tol base.Tolerance) ([]float64, bool) {
	z0 := w.Dot(axis)
	zd := dir.Dot(axis)
	m0 := w.Sub(axis.MulScalar(z0))
	md := dir.Sub(axis.MulScalar(zd))

	c0 := radius + z0*k
	c1 := zd * k
	a := md.Dot(md) - c1*c1
	b := 2 * (m0.Dot(md) - c0*c1)
	cc := m0.Dot(m0) - c0*c0

	if math.Abs(a) < 1e-12 {
		// Ray parallel to the wall slant.
		if math.Abs(b) < 1e-12 {
			if math.Abs(cc) < tol.Linear*math.Max(1, radius) {
				return nil, false // running along the carrier
			}
			return nil, true
		}
		return filterShadow([]float64{-cc / b}, z0, zd, radius, k), true
	}

	disc := b*b - 4*a*cc
	scale := math.Max(1, b*b)
	if disc < 0 {
		return nil, true
	}
	if disc < 1e-9*scale {
		return nil, false // tangent graze
	}
	sq := math.Sqrt(disc)
	return filterShadow([]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)}, z0, zd, radius, k), true
}

// filterShadow drops quadric roots on the cone's mirror nappe, where the
// signed radius would be negative.
func filterShadow(ts []float64, z0, zd, radius, k float64) []float64 {
	if k == 0 {
		return ts
	}
	var out []float64
	for _, t := range ts {
		if radius+(z0+t*zd)*k >= 0 {
			out = append(out, t)
		}
	}
	return out
}
