package topo

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
)

// Box returns the axis-aligned box [0,dx] x [0,dy] x [0,dz] with its
// minimum corner at the origin.
func Box(dx, dy, dz float64, tol base.Tolerance) (*Solid, error) {
	if dz <= 0 {
		return nil, fmt.Errorf("%w: box height must be > 0, got %g", base.ErrInvalidGeometry, dz)
	}
	p, err := RectProfile(0, 0, dx, dy)
	if err != nil {
		return nil, err
	}
	return Extrude(p, v3.Vec{Z: 1}, dz, tol)
}

// Plate returns a rectangular plate of width w (X), depth h (Y) and
// thickness t (Z), with its minimum corner at the origin.
func Plate(w, h, t float64, tol base.Tolerance) (*Solid, error) {
	return Box(w, h, t, tol)
}

// CylinderZ returns a solid cylinder of radius r and height hgt whose base
// circle is centered at base and whose axis runs along +Z.
func CylinderZ(basePt v3.Vec, r, hgt float64, tol base.Tolerance) (*Solid, error) {
	if hgt <= 0 {
		return nil, fmt.Errorf("%w: cylinder height must be > 0, got %g", base.ErrInvalidGeometry, hgt)
	}
	p, err := CircleProfile(basePt, v3.Vec{Z: 1}, r)
	if err != nil {
		return nil, err
	}
	return Extrude(p, v3.Vec{Z: 1}, hgt, tol)
}
