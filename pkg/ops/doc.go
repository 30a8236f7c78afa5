// Package ops implements the boolean operations on solids: union,
// difference, and intersection, plus compound operations built from them.
//
// The pipeline is split, classify, select, stitch. Every face of both
// operands is flattened into its surface's parameter space, cut along the
// exact intersection curves with the other solid's faces, classified by
// point-in-solid tests against the other operand, and the selected pieces
// are stitched back into a manifold result. Carrier geometry of the cut
// edges stays exact wherever the surface pair admits an analytic
// intersection (planes and axis-aligned cylinder cases); only skew
// intersections degrade to sampled polylines. Surface pairs with no
// supported intersection form make the operation fail with
// base.ErrAmbiguousBoolean rather than return an approximate solid.
package ops
