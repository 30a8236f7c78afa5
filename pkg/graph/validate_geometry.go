package graph

import (
	"fmt"
	"math"
)

// validateGeometry runs the geometric checks: every primitive payload
// must describe a buildable solid. The kernel would reject these too,
// but catching them here points at the DSL form instead of failing deep
// inside a boolean.
func validateGeometry(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		errs = append(errs, validateNodeGeometry(node)...)
	}
	return errs
}

func validateNodeGeometry(node *Node) []ValidationError {
	var errs []ValidationError
	fail := func(format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   node.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	switch d := node.Data.(type) {
	case BoxData:
		if d.Dimensions.X <= 0 {
			fail("box dimension X is %.4f, must be positive", d.Dimensions.X)
		}
		if d.Dimensions.Y <= 0 {
			fail("box dimension Y is %.4f, must be positive", d.Dimensions.Y)
		}
		if d.Dimensions.Z <= 0 {
			fail("box dimension Z is %.4f, must be positive", d.Dimensions.Z)
		}

	case PlateData:
		if d.Width <= 0 {
			fail("plate width is %.4f, must be positive", d.Width)
		}
		if d.Height <= 0 {
			fail("plate height is %.4f, must be positive", d.Height)
		}
		if d.Thickness <= 0 {
			fail("plate thickness is %.4f, must be positive", d.Thickness)
		}

	case CylinderData:
		if d.Radius <= 0 {
			fail("cylinder radius is %.4f, must be positive", d.Radius)
		}
		if d.Height <= 0 {
			fail("cylinder height is %.4f, must be positive", d.Height)
		}

	case PlateWithHoleData:
		if d.Width <= 0 {
			fail("plate width is %.4f, must be positive", d.Width)
		}
		if d.Height <= 0 {
			fail("plate height is %.4f, must be positive", d.Height)
		}
		if d.Thickness <= 0 {
			fail("plate thickness is %.4f, must be positive", d.Thickness)
		}
		if d.HoleRadius <= 0 {
			fail("hole radius is %.4f, must be positive", d.HoleRadius)
		} else if d.Width > 0 && d.Height > 0 && 2*d.HoleRadius >= math.Min(d.Width, d.Height) {
			fail("hole diameter %.4f does not fit a %.4f x %.4f plate",
				2*d.HoleRadius, d.Width, d.Height)
		}
	}

	return errs
}
