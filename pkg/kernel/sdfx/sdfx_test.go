package sdfx

import (
	"errors"
	"math"
	"testing"

	"github.com/castorlab/castor/pkg/base"
)

func TestBox(t *testing.T) {
	k := New()
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	mesh, err := k.ToMesh(box, 0)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3", len(mesh.Indices))
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box, err := k.Box(100, 50, 25)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	min, max := box.BoundingBox()

	// Minimum corner sits at the origin.
	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestCylinderSitsOnPlane(t *testing.T) {
	k := New()
	cyl, err := k.Cylinder(10, 50)
	if err != nil {
		t.Fatalf("Cylinder: %v", err)
	}
	min, max := cyl.BoundingBox()
	const tol = 0.01
	if math.Abs(min[2]) > tol || math.Abs(max[2]-50) > tol {
		t.Errorf("z range = [%f, %f], expected [0, 50]", min[2], max[2])
	}
	if math.Abs(min[0]+10) > tol || math.Abs(max[0]-10) > tol {
		t.Errorf("x range = [%f, %f], expected [-10, 10]", min[0], max[0])
	}
}

func TestDifference(t *testing.T) {
	k := New()

	box, err := k.Box(100, 100, 100)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	boxMesh, err := k.ToMesh(box, 0)
	if err != nil {
		t.Fatalf("ToMesh(box): %v", err)
	}

	cyl, err := k.Cylinder(20, 120)
	if err != nil {
		t.Fatalf("Cylinder: %v", err)
	}
	cyl, err = k.Translate(cyl, 50, 50, -10)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	diff, err := k.Difference(box, cyl)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	diffMesh, err := k.ToMesh(diff, 0)
	if err != nil {
		t.Fatalf("ToMesh(diff): %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	// A box with a hole has more triangles than a plain box.
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should exceed box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnion(t *testing.T) {
	k := New()
	box1, err := k.Box(50, 50, 50)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	box2, err := k.Box(50, 50, 50)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	box2, err = k.Translate(box2, 30, 0, 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	u, err := k.Union(box1, box2)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	mesh, err := k.ToMesh(u, 0)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestIntersection(t *testing.T) {
	k := New()
	box1, err := k.Box(100, 100, 100)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	box2, err := k.Box(100, 100, 100)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	box2, err = k.Translate(box2, 50, 0, 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	inter, err := k.Intersection(box1, box2)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	mesh, err := k.ToMesh(inter, 0)
	if err != nil {
		t.Fatalf("ToMesh: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box, err := k.Box(10, 10, 10)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}
	translated, err := k.Translate(box, 100, 200, 300)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotateZ(t *testing.T) {
	k := New()
	box, err := k.Box(100, 10, 10)
	if err != nil {
		t.Fatalf("Box: %v", err)
	}

	// A long box along X rotated a quarter turn extends along Y instead.
	rotated, err := k.RotateZ(box, 90)
	if err != nil {
		t.Fatalf("RotateZ: %v", err)
	}
	min, max := rotated.BoundingBox()
	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestPlateWithHoleRejectsBadHole(t *testing.T) {
	k := New()
	if _, err := k.PlateWithHole(100, 100, 20, 0); !errors.Is(err, base.ErrInvalidGeometry) {
		t.Errorf("zero radius: err = %v, want ErrInvalidGeometry", err)
	}
	if _, err := k.PlateWithHole(100, 100, 20, 60); !errors.Is(err, base.ErrInvalidGeometry) {
		t.Errorf("oversized hole: err = %v, want ErrInvalidGeometry", err)
	}
}

func TestMeshDeviationControlsResolution(t *testing.T) {
	k := New()
	cyl, err := k.Cylinder(20, 120)
	if err != nil {
		t.Fatalf("Cylinder: %v", err)
	}
	coarse, err := k.ToMesh(cyl, 5)
	if err != nil {
		t.Fatalf("ToMesh coarse: %v", err)
	}
	fine, err := k.ToMesh(cyl, 0.5)
	if err != nil {
		t.Fatalf("ToMesh fine: %v", err)
	}
	if fine.TriangleCount() <= coarse.TriangleCount() {
		t.Errorf("fine mesh (%d triangles) should exceed coarse (%d triangles)",
			fine.TriangleCount(), coarse.TriangleCount())
	}
}
