package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// NodeID is a content-addressed identifier: the hex SHA-256 of the
// node's kind, name, payload, and child ids. Equal content yields equal
// ids across evaluations, which is what makes regeneration stable.
type NodeID string

// ZeroID is the absent node id.
const ZeroID NodeID = ""

// NewNodeID hashes the given content fragments into an id.
func NewNodeID(parts ...string) NodeID {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return NodeID(hex.EncodeToString(h.Sum(nil)))
}

// Short returns an abbreviated id for messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether the id is absent.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return string(id)
}

// Vec3 is a plain 3D vector for graph payloads. Geometry math happens in
// the kernel; the graph only records intent.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g %g %g)", v.X, v.Y, v.Z)
}

// SourceRef points back to the DSL form that created a node.
type SourceRef struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

func (s SourceRef) String() string {
	if s.File == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.File)
	if s.Line > 0 {
		fmt.Fprintf(&b, ":%d", s.Line)
	}
	return b.String()
}
