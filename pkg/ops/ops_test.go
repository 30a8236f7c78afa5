package ops

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/topo"
)

func mustBox(t *testing.T, dx, dy, dz float64) *topo.Solid {
	t.Helper()
	s, err := topo.Box(dx, dy, dz, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("Box(%g,%g,%g): %v", dx, dy, dz, err)
	}
	return s
}

func checkResult(t *testing.T, s *topo.Solid) {
	t.Helper()
	if err := topo.CheckManifold(s, ShapeOpsTolerance()); err != nil {
		t.Fatalf("result is not manifold: %v", err)
	}
}

func TestUnionWithSelf(t *testing.T) {
	a := mustBox(t, 10, 10, 10)
	got, err := Union(a, a.Clone(), ShapeOpsTolerance())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkResult(t, got)
	if len(got.Faces) != 6 {
		t.Errorf("faces = %d, want 6", len(got.Faces))
	}
	if vol := topo.SolidVolume(got); math.Abs(vol-1000) > 1 {
		t.Errorf("volume = %g, want 1000", vol)
	}
}

func TestDifferenceWithSelf(t *testing.T) {
	a := mustBox(t, 10, 10, 10)
	got, err := Difference(a, a.Clone(), ShapeOpsTolerance())
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if !got.IsEmpty() {
		t.Errorf("A \\ A has %d faces, want empty", len(got.Faces))
	}
}

func TestEmptyOperands(t *testing.T) {
	a := mustBox(t, 10, 10, 10)
	empty := topo.Empty()
	tol := ShapeOpsTolerance()

	if got, err := Union(empty, a, tol); err != nil || len(got.Faces) != 6 {
		t.Errorf("union(empty, A) = %d faces, err %v; want A back", len(got.Faces), err)
	}
	if got, err := Intersection(a, empty, tol); err != nil || !got.IsEmpty() {
		t.Errorf("intersection(A, empty) not empty (err %v)", err)
	}
	if got, err := Difference(a, empty, tol); err != nil || len(got.Faces) != 6 {
		t.Errorf("difference(A, empty) = %d faces, err %v; want A back", len(got.Faces), err)
	}
	if got, err := Difference(empty, a, tol); err != nil || !got.IsEmpty() {
		t.Errorf("difference(empty, A) not empty (err %v)", err)
	}
}

func TestDisjointOperands(t *testing.T) {
	tol := ShapeOpsTolerance()
	a := mustBox(t, 10, 10, 10)
	b := topo.Translate(mustBox(t, 10, 10, 10), v3.Vec{X: 30})

	u, err := Union(a, b, tol)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkResult(t, u)
	if len(u.Shells) != 2 {
		t.Errorf("disjoint union shells = %d, want 2", len(u.Shells))
	}
	if vol := topo.SolidVolume(u); math.Abs(vol-2000) > 1 {
		t.Errorf("disjoint union volume = %g, want 2000", vol)
	}

	i, err := Intersection(a, b, tol)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !i.IsEmpty() {
		t.Errorf("disjoint intersection has %d faces, want empty", len(i.Faces))
	}

	d, err := Difference(a, b, tol)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	checkResult(t, d)
	if vol := topo.SolidVolume(d); math.Abs(vol-1000) > 1 {
		t.Errorf("disjoint difference volume = %g, want 1000", vol)
	}
}

func TestGluedBoxesUnion(t *testing.T) {
	a := mustBox(t, 10, 10, 10)
	b := topo.Translate(mustBox(t, 10, 10, 10), v3.Vec{X: 10})

	got, err := Union(a, b, ShapeOpsTolerance())
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkResult(t, got)
	// The two touching faces dissolve; the rest survive whole.
	if len(got.Faces) != 10 {
		t.Errorf("faces = %d, want 10", len(got.Faces))
	}
	if len(got.Shells) != 1 {
		t.Errorf("shells = %d, want 1", len(got.Shells))
	}
	if vol := topo.SolidVolume(got); math.Abs(vol-2000) > 1 {
		t.Errorf("volume = %g, want 2000", vol)
	}
}

func TestOverlappingBoxes(t *testing.T) {
	tol := ShapeOpsTolerance()
	makeA := func() *topo.Solid { return mustBox(t, 10, 10, 10) }
	makeB := func() *topo.Solid {
		return topo.Translate(mustBox(t, 10, 10, 10), v3.Vec{X: 5})
	}

	cases := []struct {
		name    string
		op      func(a, b *topo.Solid) (*topo.Solid, error)
		volume  float64
		nFaces  int
		nShells int
	}{
		{"union", func(a, b *topo.Solid) (*topo.Solid, error) { return Union(a, b, tol) }, 1500, 14, 1},
		{"intersection", func(a, b *topo.Solid) (*topo.Solid, error) { return Intersection(a, b, tol) }, 500, 6, 1},
		{"difference", func(a, b *topo.Solid) (*topo.Solid, error) { return Difference(a, b, tol) }, 500, 6, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.op(makeA(), makeB())
			if err != nil {
				t.Fatalf("%s: %v", tc.name, err)
			}
			checkResult(t, got)
			if vol := topo.SolidVolume(got); math.Abs(vol-tc.volume) > 1 {
				t.Errorf("volume = %g, want %g", vol, tc.volume)
			}
			if len(got.Faces) != tc.nFaces {
				t.Errorf("faces = %d, want %d", len(got.Faces), tc.nFaces)
			}
			if len(got.Shells) != tc.nShells {
				t.Errorf("shells = %d, want %d", len(got.Shells), tc.nShells)
			}
		})
	}
}

func TestIntersectionCommutes(t *testing.T) {
	tol := ShapeOpsTolerance()
	a := mustBox(t, 10, 10, 10)
	b := topo.Translate(mustBox(t, 10, 10, 10), v3.Vec{X: 3, Y: 4, Z: 5})

	ab, err := Intersection(a, b, tol)
	if err != nil {
		t.Fatalf("Intersection(a, b): %v", err)
	}
	ba, err := Intersection(b, a, tol)
	if err != nil {
		t.Fatalf("Intersection(b, a): %v", err)
	}
	checkResult(t, ab)
	checkResult(t, ba)
	va, vb := topo.SolidVolume(ab), topo.SolidVolume(ba)
	if math.Abs(va-vb) > 1e-6*math.Max(1, va) {
		t.Errorf("volumes differ: %g vs %g", va, vb)
	}
	if math.Abs(va-7*6*5) > 1 {
		t.Errorf("volume = %g, want %d", va, 7*6*5)
	}
}

func TestBoxMinusCylinderThroughHole(t *testing.T) {
	tol := ShapeOpsTolerance()
	a := mustBox(t, 40, 40, 10)
	tool, err := topo.CylinderZ(v3.Vec{X: 20, Y: 20, Z: -5}, 8, 20, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}

	got, err := Difference(a, tool, tol)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	checkResult(t, got)
	if len(got.Faces) != 7 {
		t.Errorf("faces = %d, want 7 (6 box faces + hole wall)", len(got.Faces))
	}

	want := 40*40*10 - math.Pi*64*10
	if vol := topo.SolidVolume(got); math.Abs(vol-want)/want > 0.01 {
		t.Errorf("volume = %g, want %g within 1%%", vol, want)
	}

	// The hole wall faces inward: a cylindrical face with the sense bit
	// cleared.
	walls := 0
	withInner := 0
	for _, f := range got.Faces {
		if _, ok := f.Surface.(geom.Cylinder); ok {
			walls++
			if f.SameSense {
				t.Errorf("hole wall still faces outward")
			}
		}
		if len(f.Inners) == 1 {
			withInner++
		}
	}
	if walls != 1 {
		t.Errorf("cylindrical faces = %d, want 1", walls)
	}
	if withInner != 2 {
		t.Errorf("faces with an inner wire = %d, want 2 (top and bottom)", withInner)
	}
}

func TestPlateWithHole(t *testing.T) {
	got, err := PlateWithHole(100, 100, 20, 10, ShapeOpsTolerance())
	if err != nil {
		t.Fatalf("PlateWithHole: %v", err)
	}
	checkResult(t, got)
	if len(got.Faces) != 7 {
		t.Errorf("faces = %d, want 7", len(got.Faces))
	}
	want := 100*100*20 - math.Pi*100*20
	if vol := topo.SolidVolume(got); math.Abs(vol-want)/want > 0.01 {
		t.Errorf("volume = %g, want %g within 1%%", vol, want)
	}
}

func TestPlateWithHoleRejectsBadHole(t *testing.T) {
	cases := []struct {
		name   string
		radius float64
	}{
		{"zero radius", 0},
		{"negative radius", -2},
		{"hole wider than plate", 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlateWithHole(100, 120, 20, tc.radius, ShapeOpsTolerance())
			if !errors.Is(err, base.ErrInvalidGeometry) {
				t.Errorf("err = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestSkewCylindersAmbiguous(t *testing.T) {
	tol := ShapeOpsTolerance()
	a, err := topo.CylinderZ(v3.Vec{Z: -10}, 5, 20, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}
	b, err := topo.CylinderZ(v3.Vec{Z: -10}, 5, 20, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}
	b = topo.Transform(b, geom.RotationAxis(v3.Vec{}, v3.Vec{X: 1}, math.Pi/2))

	_, err = Union(a, b, tol)
	if !errors.Is(err, base.ErrAmbiguousBoolean) {
		t.Errorf("union of crossing skew cylinders: err = %v, want ErrAmbiguousBoolean", err)
	}
}

func TestBooleanRejectsBadTolerance(t *testing.T) {
	a := mustBox(t, 1, 1, 1)
	_, err := Union(a, a, base.Tolerance{Linear: 0, Angular: 1e-9})
	if !errors.Is(err, base.ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestStackedCylindersUnion(t *testing.T) {
	tol := ShapeOpsTolerance()
	a, err := topo.CylinderZ(v3.Vec{}, 5, 10, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}
	b, err := topo.CylinderZ(v3.Vec{Z: 10}, 5, 10, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}

	got, err := Union(a, b, tol)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkResult(t, got)
	want := math.Pi * 25 * 20
	if vol := topo.SolidVolume(got); math.Abs(vol-want)/want > 0.01 {
		t.Errorf("volume = %g, want %g within 1%%", vol, want)
	}
	// The touching caps dissolve.
	if len(got.Faces) != 4 {
		t.Errorf("faces = %d, want 4 (two walls, two caps)", len(got.Faces))
	}
}
