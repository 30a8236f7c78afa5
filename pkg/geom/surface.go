package geom

import (
	"fmt"
	"math"

	"github.com/castorlab/castor/pkg/base"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Surface is a parametric 3D surface. The set of implementations is
// closed: Plane, Cylinder, and Cone. Faces own their trimming wires; a
// Surface is the untrimmed carrier geometry.
type Surface interface {
	// Point evaluates the surface at (u, v).
	Point(u, v float64) v3.Vec
	// Normal returns the unit surface normal at (u, v), oriented by the
	// surface's own frame (faces flip it via SameSense).
	Normal(u, v float64) v3.Vec
	// Project returns the (u, v) parameters of the point on the surface
	// closest to p.
	Project(p v3.Vec) v2.Vec
	// PeriodicU reports whether the u parameter is periodic, and the period.
	PeriodicU() (bool, float64)

	surface() // marker restricting implementations to this package
}

// Plane is an infinite plane with orthonormal in-plane frame (U, V) and
// normal N = U x V: Point(u, v) = Origin + u*U + v*V.
type Plane struct {
	Origin v3.Vec
	U, V   v3.Vec
}

func (Plane) surface() {}

// NewPlane builds a plane from an origin and two spanning directions. The
// directions are orthonormalized; a degenerate span is rejected.
func NewPlane(origin, u, v v3.Vec) (Plane, error) {
	if u.Length() < 1e-12 {
		return Plane{}, fmt.Errorf("%w: plane U direction is degenerate", base.ErrInvalidGeometry)
	}
	un := u.Normalize()
	vo := v.Sub(un.MulScalar(v.Dot(un)))
	if vo.Length() < 1e-12 {
		return Plane{}, fmt.Errorf("%w: plane directions are collinear", base.ErrInvalidGeometry)
	}
	return Plane{Origin: origin, U: un, V: vo.Normalize()}, nil
}

// PlaneFromNormal builds a plane through origin with the given normal,
// choosing an arbitrary stable in-plane frame.
func PlaneFromNormal(origin, normal v3.Vec) (Plane, error) {
	if normal.Length() < 1e-12 {
		return Plane{}, fmt.Errorf("%w: plane normal is degenerate", base.ErrInvalidGeometry)
	}
	n := normal.Normalize()
	// Pick the world axis least aligned with n as the seed for U.
	seed := v3.Vec{X: 1}
	if math.Abs(n.X) > math.Abs(n.Y) {
		seed = v3.Vec{Y: 1}
		if math.Abs(n.Y) > math.Abs(n.Z) {
			seed = v3.Vec{Z: 1}
		}
	} else if math.Abs(n.Y) > math.Abs(n.Z) {
		seed = v3.Vec{Z: 1}
	}
	u := seed.Sub(n.MulScalar(seed.Dot(n))).Normalize()
	return Plane{Origin: origin, U: u, V: n.Cross(u)}, nil
}

// NormalDir returns the constant plane normal U x V.
func (p Plane) NormalDir() v3.Vec {
	return p.U.Cross(p.V)
}

func (p Plane) Point(u, v float64) v3.Vec {
	return p.Origin.Add(p.U.MulScalar(u)).Add(p.V.MulScalar(v))
}

func (p Plane) Normal(u, v float64) v3.Vec {
	return p.NormalDir()
}

func (p Plane) Project(pt v3.Vec) v2.Vec {
	d := pt.Sub(p.Origin)
	return v2.Vec{X: d.Dot(p.U), Y: d.Dot(p.V)}
}

func (p Plane) PeriodicU() (bool, float64) {
	return false, 0
}

// SignedDistance returns the distance from p to the plane, positive on the
// normal side.
func (p Plane) SignedDistance(pt v3.Vec) float64 {
	return pt.Sub(p.Origin).Dot(p.NormalDir())
}

// Cylinder is an infinite right circular cylinder around the axis through
// Origin with unit direction Axis. Parameters: u is the angle from XDir,
// v is the distance along the axis:
//
//	Point(u, v) = Origin + Radius*(cos(u)*XDir + sin(u)*YDir) + v*Axis
//
// The normal points outward, away from the axis.
type Cylinder struct {
	Origin v3.Vec
	Axis   v3.Vec
	XDir   v3.Vec
	Radius float64
}

func (Cylinder) surface() {}

// NewCylinder builds a cylinder, normalizing the frame and rejecting
// non-positive radii and degenerate axes.
func NewCylinder(origin, axis, xdir v3.Vec, radius float64) (Cylinder, error) {
	if radius <= 0 {
		return Cylinder{}, fmt.Errorf("%w: cylinder radius must be > 0, got %g", base.ErrInvalidGeometry, radius)
	}
	if axis.Length() < 1e-12 {
		return Cylinder{}, fmt.Errorf("%w: cylinder axis is degenerate", base.ErrInvalidGeometry)
	}
	a := axis.Normalize()
	x := xdir.Sub(a.MulScalar(xdir.Dot(a)))
	if x.Length() < 1e-12 {
		return Cylinder{}, fmt.Errorf("%w: cylinder reference direction is parallel to axis", base.ErrInvalidGeometry)
	}
	return Cylinder{Origin: origin, Axis: a, XDir: x.Normalize(), Radius: radius}, nil
}

// YDir returns the frame direction a quarter turn from XDir.
func (c Cylinder) YDir() v3.Vec {
	return c.Axis.Cross(c.XDir)
}

func (c Cylinder) Point(u, v float64) v3.Vec {
	return c.Origin.
		Add(c.XDir.MulScalar(c.Radius * math.Cos(u))).
		Add(c.YDir().MulScalar(c.Radius * math.Sin(u))).
		Add(c.Axis.MulScalar(v))
}

func (c Cylinder) Normal(u, v float64) v3.Vec {
	return c.XDir.MulScalar(math.Cos(u)).Add(c.YDir().MulScalar(math.Sin(u)))
}

func (c Cylinder) Project(p v3.Vec) v2.Vec {
	d := p.Sub(c.Origin)
	z := d.Dot(c.Axis)
	u := math.Atan2(d.Dot(c.YDir()), d.Dot(c.XDir))
	if u < 0 {
		u += 2 * math.Pi
	}
	return v2.Vec{X: u, Y: z}
}

func (c Cylinder) PeriodicU() (bool, float64) {
	return true, 2 * math.Pi
}

// AxisDistance returns the distance from p to the cylinder axis.
func (c Cylinder) AxisDistance(p v3.Vec) float64 {
	d := p.Sub(c.Origin)
	return d.Sub(c.Axis.MulScalar(d.Dot(c.Axis))).Length()
}

// Cone is a right circular cone around the axis through Origin. Radius is
// the radius at v = 0 and grows by tan(HalfAngle) per unit of v:
//
//	Point(u, v) = Origin + r(v)*(cos(u)*XDir + sin(u)*YDir) + v*Axis
//	r(v) = Radius + v*tan(HalfAngle)
//
// Cones arise only from revolved profiles with slanted segments.
type Cone struct {
	Origin    v3.Vec
	Axis      v3.Vec
	XDir      v3.Vec
	Radius    float64
	HalfAngle float64
}

func (Cone) surface() {}

// NewCone builds a cone, rejecting degenerate axes, negative base radii,
// and half angles outside (0, pi/2).
func NewCone(origin, axis, xdir v3.Vec, radius, halfAngle float64) (Cone, error) {
	if radius < 0 {
		return Cone{}, fmt.Errorf("%w: cone radius must be >= 0, got %g", base.ErrInvalidGeometry, radius)
	}
	if halfAngle <= 0 || halfAngle >= math.Pi/2 {
		return Cone{}, fmt.Errorf("%w: cone half angle must be in (0, pi/2), got %g", base.ErrInvalidGeometry, halfAngle)
	}
	if axis.Length() < 1e-12 {
		return Cone{}, fmt.Errorf("%w: cone axis is degenerate", base.ErrInvalidGeometry)
	}
	a := axis.Normalize()
	x := xdir.Sub(a.MulScalar(xdir.Dot(a)))
	if x.Length() < 1e-12 {
		return Cone{}, fmt.Errorf("%w: cone reference direction is parallel to axis", base.ErrInvalidGeometry)
	}
	return Cone{Origin: origin, Axis: a, XDir: x.Normalize(), Radius: radius, HalfAngle: halfAngle}, nil
}

// YDir returns the frame direction a quarter turn from XDir.
func (c Cone) YDir() v3.Vec {
	return c.Axis.Cross(c.XDir)
}

// RadiusAt returns the cone radius at axial parameter v.
func (c Cone) RadiusAt(v float64) float64 {
	return c.Radius + v*math.Tan(c.HalfAngle)
}

func (c Cone) Point(u, v float64) v3.Vec {
	r := c.RadiusAt(v)
	return c.Origin.
		Add(c.XDir.MulScalar(r * math.Cos(u))).
		Add(c.YDir().MulScalar(r * math.Sin(u))).
		Add(c.Axis.MulScalar(v))
}

func (c Cone) Normal(u, v float64) v3.Vec {
	// Outward normal tilted against the slant.
	radial := c.XDir.MulScalar(math.Cos(u)).Add(c.YDir().MulScalar(math.Sin(u)))
	return radial.MulScalar(math.Cos(c.HalfAngle)).Sub(c.Axis.MulScalar(math.Sin(c.HalfAngle))).Normalize()
}

func (c Cone) Project(p v3.Vec) v2.Vec {
	d := p.Sub(c.Origin)
	z := d.Dot(c.Axis)
	u := math.Atan2(d.Dot(c.YDir()), d.Dot(c.XDir))
	if u < 0 {
		u += 2 * math.Pi
	}
	return v2.Vec{X: u, Y: z}
}

func (c Cone) PeriodicU() (bool, float64) {
	return true, 2 * math.Pi
}
