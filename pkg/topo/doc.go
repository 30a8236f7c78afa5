// Package topo implements the boundary-representation topology of the
// kernel: vertices, edges, wires, faces, shells and solids, the builders
// that assemble them from parametric profiles, and the manifold validation
// used as a post-condition by every producing operation.
//
// Entities live in arenas owned by their Solid and reference each other by
// typed indices, which keeps the adjacency graph cycle-free while giving
// O(1) lookups. Every entity also carries a stable base.Guid for
// cross-referencing from the BIM layer. Solids are immutable once built:
// operations return new solids rather than mutating in place.
package topo
