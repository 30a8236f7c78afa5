package graph

import "fmt"

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	Units        string  `json:"units"`         // "mm" (only option for now)
	MaxDeviation float64 `json:"max_deviation"` // tessellation bound, 0 = backend default
}

// DesignGraph is the top-level immutable data structure produced by Lisp
// evaluation. It is never mutated in place; each evaluation produces a
// new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			Units: "mm",
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Primitives returns all primitive nodes in the graph.
func (g *DesignGraph) Primitives() []*Node {
	var parts []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodePrimitive {
			parts = append(parts, n)
		}
	}
	return parts
}

// Booleans returns all boolean nodes in the graph.
func (g *DesignGraph) Booleans() []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Kind == NodeBoolean {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
