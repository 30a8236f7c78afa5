// Package base holds the identity, unit, and tolerance types shared by
// every layer of the kernel, plus the kernel-wide error taxonomy.
package base

import "github.com/google/uuid"

// Guid is a globally unique, immutable identifier assigned at creation to
// every topological entity and every BIM element. It is used for
// cross-referencing and carries no ownership semantics.
type Guid struct {
	id uuid.UUID
}

// NewGuid returns a fresh random Guid.
func NewGuid() Guid {
	return Guid{id: uuid.New()}
}

// GuidFromUUID wraps an existing uuid.UUID.
func GuidFromUUID(id uuid.UUID) Guid {
	return Guid{id: id}
}

// UUID returns the underlying uuid.UUID.
func (g Guid) UUID() uuid.UUID {
	return g.id
}

// IsZero reports whether the Guid is the zero value.
func (g Guid) IsZero() bool {
	return g.id == uuid.UUID{}
}

func (g Guid) String() string {
	return g.id.String()
}

// LengthUnit is the project-wide linear unit. The kernel never converts
// units; all numeric inputs are interpreted in this unit.
type LengthUnit int

const (
	Millimeter LengthUnit = iota
	Meter
)

func (u LengthUnit) String() string {
	switch u {
	case Millimeter:
		return "mm"
	case Meter:
		return "m"
	default:
		return "unknown"
	}
}

// AngleUnit is the project-wide angular unit.
type AngleUnit int

const (
	Radian AngleUnit = iota
)

func (u AngleUnit) String() string {
	if u == Radian {
		return "rad"
	}
	return "unknown"
}

// Units bundles the length and angle units of a project.
type Units struct {
	Length LengthUnit
	Angle  AngleUnit
}

// MetricMM is the default unit system: millimeters and radians.
func MetricMM() Units {
	return Units{Length: Millimeter, Angle: Radian}
}

// Tolerance is the numeric epsilon policy used consistently for
// coincidence, collinearity, and containment tests. Every geometric
// predicate within a single operation must use exactly one Tolerance
// value; mixing tolerances breaks classification consistency.
type Tolerance struct {
	Linear  float64
	Angular float64
}

// DefaultTolerance is the kernel-wide default epsilon.
func DefaultTolerance() Tolerance {
	return Tolerance{Linear: 1.0e-6, Angular: 1.0e-6}
}

// DefaultShapeOpsTolerance is the default tolerance for boolean shape
// operations. Booleans run on a much coarser epsilon than raw geometric
// predicates because face splitting accumulates rounding over many steps.
const DefaultShapeOpsTolerance = 0.05

// DefaultTessellationTolerance is the default chord-height deviation bound
// for mesh export.
const DefaultTessellationTolerance = 0.5
