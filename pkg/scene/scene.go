// Package scene walks a design graph and produces solids and triangle
// meshes using a geometry kernel. One part is produced per primitive or
// boolean node reachable from a root; transforms and groups shape the
// traversal but emit nothing themselves.
package scene

import (
	"fmt"

	"github.com/castorlab/castor/pkg/graph"
	"github.com/castorlab/castor/pkg/kernel"
)

// Part is one evaluated component of the design: a named solid with its
// tessellated mesh.
type Part struct {
	Name  string
	ID    graph.NodeID
	Solid kernel.Solid
	Mesh  *kernel.Mesh
}

// frame is one transform node's contribution to the placement of the
// parts beneath it. Rotation applies before translation.
type frame struct {
	translation graph.Vec3
	rotateZDeg  float64
}

// transformStack accumulates frames during graph traversal.
type transformStack struct {
	frames []frame
}

func (ts *transformStack) push(f frame) {
	ts.frames = append(ts.frames, f)
}

func (ts *transformStack) pop() {
	ts.frames = ts.frames[:len(ts.frames)-1]
}

// apply places a solid according to the stacked frames, innermost first.
func (ts *transformStack) apply(k kernel.Kernel, s kernel.Solid) (kernel.Solid, error) {
	var err error
	for i := len(ts.frames) - 1; i >= 0; i-- {
		f := ts.frames[i]
		if f.rotateZDeg != 0 {
			s, err = k.RotateZ(s, f.rotateZDeg)
			if err != nil {
				return nil, err
			}
		}
		if f.translation != (graph.Vec3{}) {
			s, err = k.Translate(s, f.translation.X, f.translation.Y, f.translation.Z)
			if err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// walker carries traversal state. Solids for primitive and boolean nodes
// are cached so shared boolean operands are built once.
type walker struct {
	g      *graph.DesignGraph
	k      kernel.Kernel
	dev    float64
	stack  transformStack
	solids map[graph.NodeID]kernel.Solid
}

// Evaluate walks the design graph and produces one part per primitive or
// boolean node reachable through root children. maxDeviation bounds the
// tessellation chord error; zero falls back to the graph default, then to
// the kernel default. The walker is read-only and never mutates the graph.
func Evaluate(g *graph.DesignGraph, k kernel.Kernel, maxDeviation float64) ([]Part, error) {
	if g == nil {
		return nil, nil
	}

	// A cyclic or dangling graph would send the walk into unbounded
	// recursion, so structural validation gates evaluation.
	for _, e := range graph.Validate(g) {
		if e.Severity == graph.SeverityError {
			return nil, fmt.Errorf("scene: invalid design graph: %w", e)
		}
	}

	if maxDeviation <= 0 {
		maxDeviation = g.Defaults.MaxDeviation
	}

	w := &walker{
		g:      g,
		k:      k,
		dev:    maxDeviation,
		solids: make(map[graph.NodeID]kernel.Solid),
	}

	var parts []Part
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := w.walkNode(root)
		if err != nil {
			return nil, fmt.Errorf("scene: root %s: %w", rootID.Short(), err)
		}
		parts = append(parts, collected...)
	}

	return parts, nil
}

// walkNode recursively traverses a node and its children, collecting parts.
func (w *walker) walkNode(n *graph.Node) ([]Part, error) {
	switch n.Kind {
	case graph.NodePrimitive, graph.NodeBoolean:
		return w.emitPart(n)

	case graph.NodeTransform:
		return w.walkTransform(n)

	case graph.NodeGroup:
		return w.walkGroup(n)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// emitPart builds the node's solid, places it through the transform
// stack, and tessellates it into a part.
func (w *walker) emitPart(n *graph.Node) ([]Part, error) {
	solid, err := w.buildSolid(n)
	if err != nil {
		return nil, err
	}

	placed, err := w.stack.apply(w.k, solid)
	if err != nil {
		return nil, fmt.Errorf("node %s: placement: %w", n.ID.Short(), err)
	}

	mesh, err := w.k.ToMesh(placed, w.dev)
	if err != nil {
		return nil, fmt.Errorf("node %s: tessellation: %w", n.ID.Short(), err)
	}

	name := n.Name
	if name == "" {
		name = n.ID.Short()
	}
	mesh.PartName = name

	return []Part{{Name: name, ID: n.ID, Solid: placed, Mesh: mesh}}, nil
}

// buildSolid constructs the untransformed solid for a node. Boolean
// operands are resolved recursively through the payload references.
func (w *walker) buildSolid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := w.solids[n.ID]; ok {
		return s, nil
	}

	var (
		s   kernel.Solid
		err error
	)

	switch data := n.Data.(type) {
	case graph.BoxData:
		s, err = w.k.Box(data.Dimensions.X, data.Dimensions.Y, data.Dimensions.Z)
	case graph.PlateData:
		s, err = w.k.Plate(data.Width, data.Height, data.Thickness)
	case graph.CylinderData:
		s, err = w.k.Cylinder(data.Radius, data.Height)
	case graph.PlateWithHoleData:
		s, err = w.k.PlateWithHole(data.Width, data.Height, data.Thickness, data.HoleRadius)
	case graph.BooleanData:
		s, err = w.buildBoolean(n, data)
	case graph.TransformData:
		s, err = w.buildTransformed(n, data)
	default:
		return nil, fmt.Errorf("node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID.Short(), err)
	}

	w.solids[n.ID] = s
	return s, nil
}

// buildBoolean resolves both operand solids and combines them.
func (w *walker) buildBoolean(n *graph.Node, data graph.BooleanData) (kernel.Solid, error) {
	a, err := w.operandSolid(data.A)
	if err != nil {
		return nil, fmt.Errorf("operand a: %w", err)
	}
	b, err := w.operandSolid(data.B)
	if err != nil {
		return nil, fmt.Errorf("operand b: %w", err)
	}

	switch data.Op {
	case graph.BoolUnion:
		return w.k.Union(a, b)
	case graph.BoolDifference:
		return w.k.Difference(a, b)
	case graph.BoolIntersection:
		return w.k.Intersection(a, b)
	}
	return nil, fmt.Errorf("unknown boolean op: %v", data.Op)
}

func (w *walker) operandSolid(id graph.NodeID) (kernel.Solid, error) {
	op := w.g.Get(id)
	if op == nil {
		return nil, fmt.Errorf("operand %s does not exist", id.Short())
	}
	if op.Kind == graph.NodeGroup {
		return nil, fmt.Errorf("operand %s is a group", id.Short())
	}
	return w.buildSolid(op)
}

// buildTransformed builds a transform node's single child solid with the
// node's own rotation and translation baked in. This is the boolean
// operand path; transforms in the part tree are handled by walkTransform.
func (w *walker) buildTransformed(n *graph.Node, data graph.TransformData) (kernel.Solid, error) {
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("transform used as solid must have exactly one child, has %d", len(n.Children))
	}
	child := w.g.Get(n.Children[0])
	if child == nil {
		return nil, fmt.Errorf("child %s does not exist", n.Children[0].Short())
	}

	s, err := w.buildSolid(child)
	if err != nil {
		return nil, err
	}
	if data.RotateZDeg != nil && *data.RotateZDeg != 0 {
		s, err = w.k.RotateZ(s, *data.RotateZDeg)
		if err != nil {
			return nil, err
		}
	}
	if data.Translation != nil {
		s, err = w.k.Translate(s, data.Translation.X, data.Translation.Y, data.Translation.Z)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// walkTransform pushes the node's frame, recurses into children, then pops.
func (w *walker) walkTransform(n *graph.Node) ([]Part, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}

	var f frame
	if td.Translation != nil {
		f.translation = *td.Translation
	}
	if td.RotateZDeg != nil {
		f.rotateZDeg = *td.RotateZDeg
	}
	w.stack.push(f)
	defer w.stack.pop()

	var parts []Part
	for _, child := range w.g.Children(n) {
		collected, err := w.walkNode(child)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// walkGroup recurses into children transparently.
func (w *walker) walkGroup(n *graph.Node) ([]Part, error) {
	var parts []Part
	for _, child := range w.g.Children(n) {
		collected, err := w.walkNode(child)
		if err != nil {
			return nil, err
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}
