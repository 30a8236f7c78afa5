// Package graph defines the design graph for Castor. The graph is an
// immutable DAG of primitives, boolean operations, transforms, and
// groups produced by Lisp evaluation; the scene walker turns it into
// geometry through a kernel backend.
package graph
