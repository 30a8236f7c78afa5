package graph

import "fmt"

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // geometric primitive (box, plate, cylinder)
	NodeBoolean                   // boolean combination of two operands
	NodeTransform                 // spatial placement (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeBoolean:
		return "boolean"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID    `json:"id"`
	Kind     NodeKind  `json:"kind"`
	Name     string    `json:"name,omitempty"`
	Source   SourceRef `json:"source"`
	Children []NodeID  `json:"children,omitempty"`
	Data     NodeData  `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// NewNode builds a node whose id is the content hash of its kind, name,
// payload, and children.
func NewNode(kind NodeKind, name string, data NodeData, children ...NodeID) *Node {
	parts := []string{kind.String(), name, fmt.Sprintf("%#v", data)}
	for _, c := range children {
		parts = append(parts, string(c))
	}
	return &Node{
		ID:       NewNodeID(parts...),
		Kind:     kind,
		Name:     name,
		Children: children,
		Data:     data,
	}
}
