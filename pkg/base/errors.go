package base

import "errors"

// Kernel error taxonomy. All errors are returned to the immediate caller;
// the kernel performs no internal retries and no logging. An empty boolean
// result is not an error (see topo.Solid.IsEmpty).
var (
	// ErrInvalidGeometry marks malformed primitive parameters, such as a
	// non-positive size or a degenerate axis. Not retryable.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidProfile marks a builder profile that is non-planar, open,
	// or self-intersecting. Not retryable without changing input.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrTopology marks a manifold invariant violation detected by
	// validation. Treated as a defect in the producing operation.
	ErrTopology = errors.New("topology invariant violation")

	// ErrAmbiguousBoolean marks a near-tolerance degenerate overlap during
	// a boolean operation. The caller may retry with adjusted tolerance.
	ErrAmbiguousBoolean = errors.New("ambiguous boolean classification")

	// ErrUnsupportedGeometry marks a curve or surface kind with no exchange
	// schema mapping. Callers should fall back to mesh export.
	ErrUnsupportedGeometry = errors.New("unsupported geometry for exchange format")

	// ErrNotImplemented marks functionality with a declared boundary but no
	// implementation yet (STEP import, IFC export).
	ErrNotImplemented = errors.New("not implemented")
)
