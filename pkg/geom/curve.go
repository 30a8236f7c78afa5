package geom

import (
	"fmt"
	"math"

	"github.com/castorlab/castor/pkg/base"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Curve is a parametric 3D curve. The set of implementations is closed:
// Line, Circle, and Polyline. Edges own their trim interval; a Curve is
// the untrimmed carrier geometry.
type Curve interface {
	// Point evaluates the curve at parameter t.
	Point(t float64) v3.Vec
	// Tangent returns the unit tangent at parameter t.
	Tangent(t float64) v3.Vec
	// Periodic reports whether the curve closes onto itself, and if so
	// with which period.
	Periodic() (bool, float64)

	curve() // marker restricting implementations to this package
}

// Line is an infinite straight line through P0 with unit direction Dir.
// The parameter is arc length: Point(t) = P0 + t*Dir.
type Line struct {
	P0  v3.Vec
	Dir v3.Vec
}

func (Line) curve() {}

// NewLine builds a line through p0 with direction dir. The direction is
// normalized; a near-zero direction is rejected.
func NewLine(p0, dir v3.Vec) (Line, error) {
	if dir.Length() < 1e-12 {
		return Line{}, fmt.Errorf("%w: line direction is degenerate", base.ErrInvalidGeometry)
	}
	return Line{P0: p0, Dir: dir.Normalize()}, nil
}

// LineThrough builds the line through two distinct points, parameterized
// so that Point(0) == a and Point(|b-a|) == b.
func LineThrough(a, b v3.Vec) (Line, error) {
	return NewLine(a, b.Sub(a))
}

func (l Line) Point(t float64) v3.Vec {
	return l.P0.Add(l.Dir.MulScalar(t))
}

func (l Line) Tangent(float64) v3.Vec {
	return l.Dir
}

func (l Line) Periodic() (bool, float64) {
	return false, 0
}

// ClosestParam returns the parameter of the point on the line closest to p.
func (l Line) ClosestParam(p v3.Vec) float64 {
	return p.Sub(l.P0).Dot(l.Dir)
}

// Circle is a full circle of radius Radius centered at Center, lying in
// the plane normal to Axis. XDir marks the parameter origin:
// Point(t) = Center + Radius*(cos(t)*XDir + sin(t)*YDir), YDir = Axis x XDir.
// The parameter is periodic with period 2*pi.
type Circle struct {
	Center v3.Vec
	Axis   v3.Vec
	XDir   v3.Vec
	Radius float64
}

func (Circle) curve() {}

// NewCircle builds a circle. The axis is normalized and xdir is
// re-orthogonalized against it; degenerate frames and non-positive radii
// are rejected.
func NewCircle(center, axis, xdir v3.Vec, radius float64) (Circle, error) {
	if radius <= 0 {
		return Circle{}, fmt.Errorf("%w: circle radius must be > 0, got %g", base.ErrInvalidGeometry, radius)
	}
	if axis.Length() < 1e-12 {
		return Circle{}, fmt.Errorf("%w: circle axis is degenerate", base.ErrInvalidGeometry)
	}
	a := axis.Normalize()
	x := xdir.Sub(a.MulScalar(xdir.Dot(a)))
	if x.Length() < 1e-12 {
		return Circle{}, fmt.Errorf("%w: circle reference direction is parallel to axis", base.ErrInvalidGeometry)
	}
	return Circle{Center: center, Axis: a, XDir: x.Normalize(), Radius: radius}, nil
}

// YDir returns the in-plane direction a quarter turn from XDir.
func (c Circle) YDir() v3.Vec {
	return c.Axis.Cross(c.XDir)
}

func (c Circle) Point(t float64) v3.Vec {
	return c.Center.
		Add(c.XDir.MulScalar(c.Radius * math.Cos(t))).
		Add(c.YDir().MulScalar(c.Radius * math.Sin(t)))
}

func (c Circle) Tangent(t float64) v3.Vec {
	return c.XDir.MulScalar(-math.Sin(t)).Add(c.YDir().MulScalar(math.Cos(t)))
}

func (c Circle) Periodic() (bool, float64) {
	return true, 2 * math.Pi
}

// ClosestParam returns the angle of the point on the circle closest to p,
// normalized to [0, 2*pi).
func (c Circle) ClosestParam(p v3.Vec) float64 {
	d := p.Sub(c.Center)
	t := math.Atan2(d.Dot(c.YDir()), d.Dot(c.XDir))
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

// Polyline is a piecewise-linear curve through Points. It is the free-form
// carrier used for boolean intersection curves that have no analytic
// representation; the exchange layer has no mapping for it. The parameter
// runs over segment indices: Point(i+f) lerps segment i at fraction f.
type Polyline struct {
	Points []v3.Vec
}

func (Polyline) curve() {}

// NewPolyline builds a polyline over at least two points.
func NewPolyline(points []v3.Vec) (Polyline, error) {
	if len(points) < 2 {
		return Polyline{}, fmt.Errorf("%w: polyline needs at least 2 points, got %d", base.ErrInvalidGeometry, len(points))
	}
	cp := make([]v3.Vec, len(points))
	copy(cp, points)
	return Polyline{Points: cp}, nil
}

func (pl Polyline) segment(t float64) (int, float64) {
	n := len(pl.Points) - 1
	if t <= 0 {
		return 0, 0
	}
	if t >= float64(n) {
		return n - 1, 1
	}
	i := int(math.Floor(t))
	return i, t - float64(i)
}

func (pl Polyline) Point(t float64) v3.Vec {
	i, f := pl.segment(t)
	a, b := pl.Points[i], pl.Points[i+1]
	return a.Add(b.Sub(a).MulScalar(f))
}

func (pl Polyline) Tangent(t float64) v3.Vec {
	i, _ := pl.segment(t)
	d := pl.Points[i+1].Sub(pl.Points[i])
	if d.Length() < 1e-12 {
		return v3.Vec{X: 1}
	}
	return d.Normalize()
}

func (pl Polyline) Periodic() (bool, float64) {
	return false, 0
}
