package base

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewGuidUnique(t *testing.T) {
	a := NewGuid()
	b := NewGuid()
	if a.IsZero() || b.IsZero() {
		t.Fatal("fresh guid is zero")
	}
	if a == b {
		t.Error("two fresh guids collide")
	}
}

func TestGuidRoundTrip(t *testing.T) {
	id := uuid.New()
	g := GuidFromUUID(id)
	if g.UUID() != id {
		t.Errorf("UUID() = %v, want %v", g.UUID(), id)
	}
	if g.String() != id.String() {
		t.Errorf("String() = %q, want %q", g.String(), id.String())
	}
}

func TestGuidIsZero(t *testing.T) {
	var g Guid
	if !g.IsZero() {
		t.Error("zero value not reported zero")
	}
	if GuidFromUUID(uuid.UUID{}).IsZero() != true {
		t.Error("wrapped zero uuid not reported zero")
	}
}

func TestUnitStrings(t *testing.T) {
	if Millimeter.String() != "mm" || Meter.String() != "m" {
		t.Errorf("length units = %q, %q", Millimeter.String(), Meter.String())
	}
	if Radian.String() != "rad" {
		t.Errorf("angle unit = %q", Radian.String())
	}
	if LengthUnit(99).String() != "unknown" {
		t.Error("out-of-range length unit should stringify as unknown")
	}
}

func TestMetricMM(t *testing.T) {
	u := MetricMM()
	if u.Length != Millimeter || u.Angle != Radian {
		t.Errorf("MetricMM = %+v", u)
	}
}

func TestDefaultTolerances(t *testing.T) {
	tol := DefaultTolerance()
	if tol.Linear != 1e-6 || tol.Angular != 1e-6 {
		t.Errorf("DefaultTolerance = %+v", tol)
	}
	if DefaultShapeOpsTolerance <= tol.Linear {
		t.Error("shape op tolerance must be coarser than the linear epsilon")
	}
	if DefaultTessellationTolerance <= DefaultShapeOpsTolerance {
		t.Error("tessellation deviation must be coarser than the shape op tolerance")
	}
}
