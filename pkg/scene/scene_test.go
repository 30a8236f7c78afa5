package scene_test

import (
	"math"
	"testing"

	"github.com/castorlab/castor/pkg/graph"
	"github.com/castorlab/castor/pkg/kernel/brep"
	"github.com/castorlab/castor/pkg/scene"
)

func boxNode(name string, x, y, z float64) *graph.Node {
	return graph.NewNode(graph.NodePrimitive, name, graph.BoxData{Dimensions: graph.Vec3{X: x, Y: y, Z: z}})
}

func TestEvaluateSingleBox(t *testing.T) {
	g := graph.New()
	n := boxNode("beam", 100, 50, 25)
	g.AddNode(n)
	g.AddRoot(n.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(parts))
	}
	p := parts[0]
	if p.Name != "beam" {
		t.Errorf("Name = %q, want %q", p.Name, "beam")
	}
	if p.Mesh.PartName != "beam" {
		t.Errorf("Mesh.PartName = %q, want %q", p.Mesh.PartName, "beam")
	}
	if p.Mesh.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", p.Mesh.TriangleCount())
	}
	_, max := p.Mesh.Bounds()
	if max != [3]float64{100, 50, 25} {
		t.Errorf("Bounds max = %v, want (100,50,25)", max)
	}
}

func TestEvaluateNilGraph(t *testing.T) {
	parts, err := scene.Evaluate(nil, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate(nil): %v", err)
	}
	if parts != nil {
		t.Errorf("parts = %v, want nil", parts)
	}
}

func TestEvaluateTransformTranslates(t *testing.T) {
	g := graph.New()
	n := boxNode("box", 10, 10, 10)
	g.AddNode(n)
	place := graph.NewNode(graph.NodeTransform, "",
		graph.TransformData{Translation: &graph.Vec3{X: 100, Y: 200, Z: 300}}, n.ID)
	g.AddNode(place)
	g.AddRoot(place.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1", len(parts))
	}
	min, max := parts[0].Mesh.Bounds()
	if min != [3]float64{100, 200, 300} || max != [3]float64{110, 210, 310} {
		t.Errorf("Bounds = %v-%v, want (100,200,300)-(110,210,310)", min, max)
	}
}

func TestEvaluateRotateBeforeTranslate(t *testing.T) {
	// A 90 degree rotation maps x in [0,10] to y in [0,10]; the
	// translation then moves the result, not the rotation center.
	g := graph.New()
	n := boxNode("box", 10, 5, 5)
	g.AddNode(n)
	rot := 90.0
	place := graph.NewNode(graph.NodeTransform, "",
		graph.TransformData{Translation: &graph.Vec3{X: 100}, RotateZDeg: &rot}, n.ID)
	g.AddNode(place)
	g.AddRoot(place.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	min, max := parts[0].Mesh.Bounds()
	if math.Abs(min[0]-95) > 1e-4 || math.Abs(max[0]-100) > 1e-4 {
		t.Errorf("x range = [%v, %v], want [95, 100]", min[0], max[0])
	}
	if math.Abs(min[1]) > 1e-4 || math.Abs(max[1]-10) > 1e-4 {
		t.Errorf("y range = [%v, %v], want [0, 10]", min[1], max[1])
	}
}

func TestEvaluateNestedTransforms(t *testing.T) {
	g := graph.New()
	n := boxNode("box", 10, 10, 10)
	g.AddNode(n)
	inner := graph.NewNode(graph.NodeTransform, "",
		graph.TransformData{Translation: &graph.Vec3{Z: 50}}, n.ID)
	g.AddNode(inner)
	outer := graph.NewNode(graph.NodeTransform, "",
		graph.TransformData{Translation: &graph.Vec3{X: 100}}, inner.ID)
	g.AddNode(outer)
	g.AddRoot(outer.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	min, _ := parts[0].Mesh.Bounds()
	if min != [3]float64{100, 0, 50} {
		t.Errorf("Bounds min = %v, want (100,0,50)", min)
	}
}

func TestEvaluateBooleanDifference(t *testing.T) {
	g := graph.New()
	plate := graph.NewNode(graph.NodePrimitive, "plate",
		graph.PlateData{Width: 100, Height: 100, Thickness: 20})
	tool := graph.NewNode(graph.NodePrimitive, "tool",
		graph.CylinderData{Radius: 10, Height: 40})
	g.AddNode(plate)
	g.AddNode(tool)

	// Center the cylinder on the plate so it cuts all the way through.
	lift := -10.0
	moved := graph.NewNode(graph.NodeTransform, "placed-tool",
		graph.TransformData{Translation: &graph.Vec3{X: 50, Y: 50, Z: lift}}, tool.ID)
	g.AddNode(moved)

	cut := graph.NewNode(graph.NodeBoolean, "drilled",
		graph.BooleanData{Op: graph.BoolDifference, A: plate.ID, B: moved.ID})
	g.AddNode(cut)
	g.AddRoot(cut.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0.5)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("parts = %d, want 1 (operands must not emit parts)", len(parts))
	}
	if parts[0].Name != "drilled" {
		t.Errorf("Name = %q, want %q", parts[0].Name, "drilled")
	}
	if parts[0].Mesh.IsEmpty() {
		t.Error("difference produced an empty mesh")
	}
}

func TestEvaluateGroupCollectsChildren(t *testing.T) {
	g := graph.New()
	a := boxNode("a", 10, 10, 10)
	b := boxNode("b", 20, 20, 20)
	g.AddNode(a)
	g.AddNode(b)
	place := graph.NewNode(graph.NodeTransform, "",
		graph.TransformData{Translation: &graph.Vec3{X: 50}}, b.ID)
	g.AddNode(place)
	root := graph.NewNode(graph.NodeGroup, "frame", graph.GroupData{}, a.ID, place.ID)
	g.AddNode(root)
	g.AddRoot(root.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	if parts[0].Name != "a" || parts[1].Name != "b" {
		t.Errorf("part names = %q, %q, want a, b", parts[0].Name, parts[1].Name)
	}
}

func TestEvaluatePartNameFallsBackToID(t *testing.T) {
	g := graph.New()
	n := graph.NewNode(graph.NodePrimitive, "",
		graph.BoxData{Dimensions: graph.Vec3{X: 1, Y: 1, Z: 1}})
	g.AddNode(n)
	g.AddRoot(n.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if parts[0].Name != n.ID.Short() {
		t.Errorf("Name = %q, want short id %q", parts[0].Name, n.ID.Short())
	}
}

func TestEvaluateRejectsInvalidGraph(t *testing.T) {
	g := graph.New()
	a := &graph.Node{ID: graph.NewNodeID("a"), Kind: graph.NodeGroup, Data: graph.GroupData{}}
	b := &graph.Node{ID: graph.NewNodeID("b"), Kind: graph.NodeGroup, Data: graph.GroupData{}}
	a.Children = []graph.NodeID{b.ID}
	b.Children = []graph.NodeID{a.ID}
	g.AddNode(a)
	g.AddNode(b)
	g.AddRoot(a.ID)

	if _, err := scene.Evaluate(g, brep.New(), 0); err == nil {
		t.Error("cyclic graph accepted")
	}
}

func TestEvaluateSharedOperandBuiltOnce(t *testing.T) {
	// The same tool node feeds two boolean cuts; evaluation must not fail
	// and both cuts must produce geometry.
	g := graph.New()
	tool := graph.NewNode(graph.NodePrimitive, "tool",
		graph.CylinderData{Radius: 5, Height: 100})
	p1 := boxNode("p1", 40, 40, 40)
	p2 := boxNode("p2", 40, 40, 40)
	g.AddNode(tool)
	g.AddNode(p1)
	g.AddNode(p2)

	center := graph.NewNode(graph.NodeTransform, "centered-tool",
		graph.TransformData{Translation: &graph.Vec3{X: 20, Y: 20, Z: -30}}, tool.ID)
	g.AddNode(center)

	c1 := graph.NewNode(graph.NodeBoolean, "cut1",
		graph.BooleanData{Op: graph.BoolDifference, A: p1.ID, B: center.ID})
	c2 := graph.NewNode(graph.NodeBoolean, "cut2",
		graph.BooleanData{Op: graph.BoolDifference, A: p2.ID, B: center.ID})
	g.AddNode(c1)
	g.AddNode(c2)
	g.AddRoot(c1.ID)
	g.AddRoot(c2.ID)

	parts, err := scene.Evaluate(g, brep.New(), 0.5)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	for _, p := range parts {
		if p.Mesh.IsEmpty() {
			t.Errorf("part %s has an empty mesh", p.Name)
		}
	}
}
