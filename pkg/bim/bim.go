// Package bim links kernel geometry to building-information elements.
// An Element pairs a solid with a stable Guid, a category, and a typed
// parameter set; it carries no behavior of its own and never feeds back
// into geometry.
package bim

import (
	"fmt"
	"sort"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/topo"
)

// Category classifies an element for downstream BIM tooling.
type Category int

const (
	CategoryWall Category = iota
	CategorySlab
	CategoryBeam
	CategoryOpening
	CategoryRebar
	CategoryGeneric
)

func (c Category) String() string {
	switch c {
	case CategoryWall:
		return "wall"
	case CategorySlab:
		return "slab"
	case CategoryBeam:
		return "beam"
	case CategoryOpening:
		return "opening"
	case CategoryRebar:
		return "rebar"
	case CategoryGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// ParameterValue is a closed variant over the four supported parameter
// types.
type ParameterValue interface {
	parameterValue()
	String() string
}

// Integer is a whole-number parameter (counts, indices).
type Integer int64

// Number is a floating-point parameter (dimensions, areas).
type Number float64

// Bool is a flag parameter.
type Bool bool

// Text is a free-form string parameter.
type Text string

func (Integer) parameterValue() {}
func (Number) parameterValue()  {}
func (Bool) parameterValue()    {}
func (Text) parameterValue()    {}

func (v Integer) String() string { return fmt.Sprintf("%d", int64(v)) }
func (v Number) String() string  { return fmt.Sprintf("%g", float64(v)) }
func (v Bool) String() string    { return fmt.Sprintf("%t", bool(v)) }
func (v Text) String() string    { return string(v) }

// ParameterSet maps parameter names to values. Iteration over the raw
// map is unordered; use Keys for deterministic traversal.
type ParameterSet map[string]ParameterValue

// Keys returns the parameter names in sorted order.
func (ps ParameterSet) Keys() []string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Element is one BIM component: identified geometry plus metadata.
type Element struct {
	Guid       base.Guid
	Name       string
	Category   Category
	Parameters ParameterSet
	Geometry   *topo.Solid

	// FaceGuids records the face identities in face order at build time.
	// Elements regenerated from the same spec re-match exported face
	// references through this map.
	FaceGuids []base.Guid
}

// NewElement mints a fresh Guid and assembles an element. A nil
// parameter set is replaced with an empty one.
func NewElement(name string, category Category, parameters ParameterSet, geometry *topo.Solid) *Element {
	if parameters == nil {
		parameters = make(ParameterSet)
	}
	return &Element{
		Guid:       base.NewGuid(),
		Name:       name,
		Category:   category,
		Parameters: parameters,
		Geometry:   geometry,
	}
}

// SetParameter adds or replaces a parameter.
func (e *Element) SetParameter(key string, value ParameterValue) {
	if e.Parameters == nil {
		e.Parameters = make(ParameterSet)
	}
	e.Parameters[key] = value
}
