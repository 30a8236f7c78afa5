// Package geom defines the parametric curves and surfaces of the kernel as
// exact mathematical objects, independent of topology. The supported kinds
// form a closed set (the export layer handles each one exhaustively), and
// all evaluation is pure: no geometry object is ever mutated after
// construction.
package geom
