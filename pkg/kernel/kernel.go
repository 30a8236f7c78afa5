// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and boolean operations behind
// this interface: the brep backend builds exact boundary representations,
// while the sdfx backend approximates the same operations with signed
// distance fields for quick previews. The abstraction lets the scene
// walker and the design DSL swap backends without changing anything else.
package kernel

// Solid is an opaque handle to a backend solid. Implementations wrap
// their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface. Dimensions are in
// model units (millimeters by convention) and must be positive; backends
// reject degenerate inputs with base.ErrInvalidGeometry.
type Kernel interface {
	// Primitives. Box and Plate sit with one corner at the origin;
	// Cylinder stands on the XY plane centered on the Z axis.
	Box(dx, dy, dz float64) (Solid, error)
	Plate(width, height, thickness float64) (Solid, error)
	Cylinder(radius, height float64) (Solid, error)
	PlateWithHole(width, height, thickness, holeRadius float64) (Solid, error)

	// Boolean operations.
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Rigid placement.
	Translate(s Solid, x, y, z float64) (Solid, error)
	RotateZ(s Solid, angleDeg float64) (Solid, error)

	// ToMesh triangulates the solid with the given chord deviation bound;
	// zero selects the backend default.
	ToMesh(s Solid, maxDeviation float64) (*Mesh, error)
}
