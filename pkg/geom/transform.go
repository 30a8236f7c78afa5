package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform is a rigid motion: rotation followed by translation. Rigid
// motions are the only transforms the kernel supports, so curve and
// surface kinds are closed under transformation.
type Transform struct {
	// Rows of the rotation matrix.
	RX, RY, RZ v3.Vec
	T          v3.Vec
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		RX: v3.Vec{X: 1},
		RY: v3.Vec{Y: 1},
		RZ: v3.Vec{Z: 1},
	}
}

// Translation returns a pure translation by t.
func Translation(t v3.Vec) Transform {
	m := Identity()
	m.T = t
	return m
}

// RotationZ returns a rotation about the world Z axis by angle radians.
func RotationZ(angle float64) Transform {
	c, s := math.Cos(angle), math.Sin(angle)
	return Transform{
		RX: v3.Vec{X: c, Y: -s},
		RY: v3.Vec{X: s, Y: c},
		RZ: v3.Vec{Z: 1},
	}
}

// RotationAxis returns a rotation about the axis through origin with unit
// direction axis by angle radians (Rodrigues form).
func RotationAxis(origin, axis v3.Vec, angle float64) Transform {
	a := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	k := 1 - c
	r := Transform{
		RX: v3.Vec{X: c + a.X*a.X*k, Y: a.X*a.Y*k - a.Z*s, Z: a.X*a.Z*k + a.Y*s},
		RY: v3.Vec{X: a.Y*a.X*k + a.Z*s, Y: c + a.Y*a.Y*k, Z: a.Y*a.Z*k - a.X*s},
		RZ: v3.Vec{X: a.Z*a.X*k - a.Y*s, Y: a.Z*a.Y*k + a.X*s, Z: c + a.Z*a.Z*k},
	}
	// Rotate about origin rather than the world origin.
	r.T = origin.Sub(r.ApplyVec(origin))
	return r
}

// ApplyVec rotates a direction vector (no translation).
func (m Transform) ApplyVec(v v3.Vec) v3.Vec {
	return v3.Vec{X: m.RX.Dot(v), Y: m.RY.Dot(v), Z: m.RZ.Dot(v)}
}

// Apply maps a point through the transform.
func (m Transform) Apply(p v3.Vec) v3.Vec {
	return m.ApplyVec(p).Add(m.T)
}

// Compose returns the transform equivalent to applying n first, then m.
func (m Transform) Compose(n Transform) Transform {
	// m.R * n.R, computed column-wise through m.
	rx := v3.Vec{X: m.RX.Dot(colX(n)), Y: m.RX.Dot(colY(n)), Z: m.RX.Dot(colZ(n))}
	ry := v3.Vec{X: m.RY.Dot(colX(n)), Y: m.RY.Dot(colY(n)), Z: m.RY.Dot(colZ(n))}
	rz := v3.Vec{X: m.RZ.Dot(colX(n)), Y: m.RZ.Dot(colY(n)), Z: m.RZ.Dot(colZ(n))}
	return Transform{RX: rx, RY: ry, RZ: rz, T: m.Apply(n.T)}
}

func colX(m Transform) v3.Vec { return v3.Vec{X: m.RX.X, Y: m.RY.X, Z: m.RZ.X} }
func colY(m Transform) v3.Vec { return v3.Vec{X: m.RX.Y, Y: m.RY.Y, Z: m.RZ.Y} }
func colZ(m Transform) v3.Vec { return v3.Vec{X: m.RX.Z, Y: m.RY.Z, Z: m.RZ.Z} }

// TransformCurve maps a curve through a rigid motion, returning a new
// curve of the same kind.
func TransformCurve(m Transform, c Curve) Curve {
	switch k := c.(type) {
	case Line:
		return Line{P0: m.Apply(k.P0), Dir: m.ApplyVec(k.Dir)}
	case Circle:
		return Circle{
			Center: m.Apply(k.Center),
			Axis:   m.ApplyVec(k.Axis),
			XDir:   m.ApplyVec(k.XDir),
			Radius: k.Radius,
		}
	case Polyline:
		pts := make([]v3.Vec, len(k.Points))
		for i, p := range k.Points {
			pts[i] = m.Apply(p)
		}
		return Polyline{Points: pts}
	default:
		panic("geom: unknown curve kind")
	}
}

// TransformSurface maps a surface through a rigid motion, returning a new
// surface of the same kind.
func TransformSurface(m Transform, s Surface) Surface {
	switch k := s.(type) {
	case Plane:
		return Plane{Origin: m.Apply(k.Origin), U: m.ApplyVec(k.U), V: m.ApplyVec(k.V)}
	case Cylinder:
		return Cylinder{
			Origin: m.Apply(k.Origin),
			Axis:   m.ApplyVec(k.Axis),
			XDir:   m.ApplyVec(k.XDir),
			Radius: k.Radius,
		}
	case Cone:
		return Cone{
			Origin:    m.Apply(k.Origin),
			Axis:      m.ApplyVec(k.Axis),
			XDir:      m.ApplyVec(k.XDir),
			Radius:    k.Radius,
			HalfAngle: k.HalfAngle,
		}
	default:
		panic("geom: unknown surface kind")
	}
}
