package graph

import (
	"strings"
	"testing"
)

func makeBoxNode(name string, x, y, z float64) *Node {
	return NewNode(NodePrimitive, name, BoxData{Dimensions: Vec3{X: x, Y: y, Z: z}})
}

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Defaults.Units != "mm" {
		t.Errorf("default units = %q, want %q", g.Defaults.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestNodeIDDeterministic(t *testing.T) {
	a := NewNodeID("primitive", "column")
	b := NewNodeID("primitive", "column")
	if a != b {
		t.Errorf("same content hashed to different ids: %s vs %s", a.Short(), b.Short())
	}
	c := NewNodeID("primitive", "beam")
	if a == c {
		t.Error("different content hashed to the same id")
	}
}

func TestNodeIDShort(t *testing.T) {
	id := NewNodeID("x")
	if len(id.Short()) != 8 {
		t.Errorf("Short() = %q, want 8 characters", id.Short())
	}
	if !strings.HasPrefix(string(id), id.Short()) {
		t.Error("Short() is not a prefix of the id")
	}
	if !ZeroID.IsZero() {
		t.Error("ZeroID.IsZero() = false")
	}
	if id.IsZero() {
		t.Error("non-zero id reports IsZero")
	}
}

func TestNewNodeHashesContent(t *testing.T) {
	a := makeBoxNode("column", 100, 100, 3000)
	b := makeBoxNode("column", 100, 100, 3000)
	if a.ID != b.ID {
		t.Error("identical nodes got different ids")
	}
	c := makeBoxNode("column", 100, 100, 2999)
	if a.ID == c.ID {
		t.Error("different payloads got the same id")
	}
	d := NewNode(NodeGroup, "column", GroupData{})
	if a.ID == d.ID {
		t.Error("different kinds got the same id")
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()
	n := makeBoxNode("slab", 4000, 2000, 200)
	g.AddNode(n)
	g.AddRoot(n.ID)

	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount = %d, want 1", g.NodeCount())
	}
	if got := g.Lookup("slab"); got == nil || got.ID != n.ID {
		t.Error("Lookup by name failed")
	}
	if got := g.Get(n.ID); got == nil || got.Name != "slab" {
		t.Error("Get by id failed")
	}
	if g.Lookup("missing") != nil {
		t.Error("Lookup of unknown name should return nil")
	}
}

func TestMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustLookup of a missing name did not panic")
		}
	}()
	New().MustLookup("nope")
}

func TestChildren(t *testing.T) {
	g := New()
	a := makeBoxNode("a", 1, 1, 1)
	b := makeBoxNode("b", 2, 2, 2)
	g.AddNode(a)
	g.AddNode(b)

	place := NewNode(NodeTransform, "", TransformData{Translation: &Vec3{X: 10}}, a.ID, b.ID)
	g.AddNode(place)

	kids := g.Children(place)
	if len(kids) != 2 {
		t.Fatalf("Children = %d nodes, want 2", len(kids))
	}
	if kids[0].Name != "a" || kids[1].Name != "b" {
		t.Error("children out of order")
	}
}

func TestPrimitivesAndBooleans(t *testing.T) {
	g := New()
	a := makeBoxNode("a", 1, 1, 1)
	b := NewNode(NodePrimitive, "b", CylinderData{Radius: 5, Height: 10})
	g.AddNode(a)
	g.AddNode(b)
	diff := NewNode(NodeBoolean, "cut", BooleanData{Op: BoolDifference, A: a.ID, B: b.ID})
	g.AddNode(diff)

	if got := len(g.Primitives()); got != 2 {
		t.Errorf("Primitives() = %d, want 2", got)
	}
	if got := len(g.Booleans()); got != 1 {
		t.Errorf("Booleans() = %d, want 1", got)
	}
}

func TestBoolOpString(t *testing.T) {
	cases := []struct {
		op   BoolOp
		want string
	}{
		{BoolUnion, "union"},
		{BoolDifference, "difference"},
		{BoolIntersection, "intersection"},
	}
	for _, tc := range cases {
		if got := tc.op.String(); got != tc.want {
			t.Errorf("BoolOp(%d).String() = %q, want %q", int(tc.op), got, tc.want)
		}
	}
}

func TestNodeKindString(t *testing.T) {
	cases := []struct {
		kind NodeKind
		want string
	}{
		{NodePrimitive, "primitive"},
		{NodeBoolean, "boolean"},
		{NodeTransform, "transform"},
		{NodeGroup, "group"},
		{NodeKind(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", int(tc.kind), got, tc.want)
		}
	}
}
