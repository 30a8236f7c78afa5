package geom

import (
	"math"

	"github.com/castorlab/castor/pkg/base"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Coincident reports whether two points are equal within the linear
// tolerance.
func Coincident(a, b v3.Vec, tol base.Tolerance) bool {
	return a.Sub(b).Length() <= tol.Linear
}

// Parallel reports whether two directions are parallel (same or opposite
// sense) within the angular tolerance.
func Parallel(a, b v3.Vec, tol base.Tolerance) bool {
	la, lb := a.Length(), b.Length()
	if la < 1e-12 || lb < 1e-12 {
		return false
	}
	return a.Cross(b).Length()/(la*lb) <= tol.Angular
}

// SameDirection reports whether two directions are parallel with the same
// sense within the angular tolerance.
func SameDirection(a, b v3.Vec, tol base.Tolerance) bool {
	return Parallel(a, b, tol) && a.Dot(b) > 0
}

// Perpendicular reports whether two directions are perpendicular within
// the angular tolerance.
func Perpendicular(a, b v3.Vec, tol base.Tolerance) bool {
	la, lb := a.Length(), b.Length()
	if la < 1e-12 || lb < 1e-12 {
		return false
	}
	return math.Abs(a.Dot(b))/(la*lb) <= tol.Angular
}

// NormalizeAngle wraps an angle into [0, 2*pi).
func NormalizeAngle(t float64) float64 {
	t = math.Mod(t, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

// OnSurface reports whether a point lies on the surface carrier within the
// linear tolerance (trimming wires are not consulted).
func OnSurface(s Surface, p v3.Vec, tol base.Tolerance) bool {
	uv := s.Project(p)
	return s.Point(uv.X, uv.Y).Sub(p).Length() <= tol.Linear
}

// ChordAngle returns the angular step that keeps the chord of a circular
// arc of the given radius within the deviation bound. The result is
// clamped so degenerate bounds still make progress.
func ChordAngle(radius, deviation float64) float64 {
	if radius <= 0 {
		return math.Pi / 2
	}
	d := deviation
	if d <= 0 {
		d = 1e-3
	}
	if d >= radius {
		return math.Pi / 2
	}
	return 2 * math.Acos(1-d/radius)
}
