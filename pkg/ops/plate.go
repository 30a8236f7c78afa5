package ops

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/topo"
)

// PlateWithHole builds a width x height x thickness plate with a circular
// through hole centered on it, by subtracting a cylinder that overshoots
// the plate on both sides so the caps never graze the plate faces. The
// result has the plate's six faces (top and bottom gaining an inner wire)
// plus one inward-facing cylindrical wall.
func PlateWithHole(width, height, thickness, holeRadius float64, tol base.Tolerance) (*topo.Solid, error) {
	if holeRadius <= 0 {
		return nil, fmt.Errorf("%w: hole radius must be > 0, got %g", base.ErrInvalidGeometry, holeRadius)
	}
	if 2*holeRadius >= math.Min(width, height) {
		return nil, fmt.Errorf("%w: hole diameter %g does not fit a %g x %g plate",
			base.ErrInvalidGeometry, 2*holeRadius, width, height)
	}

	plate, err := topo.Plate(width, height, thickness, base.DefaultTolerance())
	if err != nil {
		return nil, err
	}
	clearance := 0.1 * thickness
	tool, err := topo.CylinderZ(
		v3.Vec{X: width / 2, Y: height / 2, Z: -clearance},
		holeRadius, thickness+2*clearance, base.DefaultTolerance())
	if err != nil {
		return nil, err
	}
	return Difference(plate, tool, tol)
}
