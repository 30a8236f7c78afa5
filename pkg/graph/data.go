package graph

// MaterialSpec describes the intended material. Advisory only; it flows
// into BIM parameters but never into geometry.
type MaterialSpec struct {
	Name  string `json:"name,omitempty"`  // e.g. "C30/37", "S355"
	Notes string `json:"notes,omitempty"`
}

// BoxData is a rectangular solid with its minimum corner at the origin.
type BoxData struct {
	Dimensions Vec3         `json:"dimensions"` // width x depth x height in mm
	Material   MaterialSpec `json:"material"`
}

func (BoxData) nodeData() {}

// PlateData is a flat rectangular slab.
type PlateData struct {
	Width     float64      `json:"width"`     // mm, along X
	Height    float64      `json:"height"`    // mm, along Y
	Thickness float64      `json:"thickness"` // mm, along Z
	Material  MaterialSpec `json:"material"`
}

func (PlateData) nodeData() {}

// CylinderData is a vertical cylinder standing on the XY plane.
type CylinderData struct {
	Radius   float64      `json:"radius"` // mm
	Height   float64      `json:"height"` // mm
	Material MaterialSpec `json:"material"`
}

func (CylinderData) nodeData() {}

// PlateWithHoleData is a plate with a circular through hole centered on
// it.
type PlateWithHoleData struct {
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Thickness  float64      `json:"thickness"`
	HoleRadius float64      `json:"hole_radius"`
	Material   MaterialSpec `json:"material"`
}

func (PlateWithHoleData) nodeData() {}

// BoolOp enumerates the boolean operations.
type BoolOp int

const (
	BoolUnion BoolOp = iota
	BoolDifference
	BoolIntersection
)

func (op BoolOp) String() string {
	switch op {
	case BoolUnion:
		return "union"
	case BoolDifference:
		return "difference"
	case BoolIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// BooleanData combines two operand nodes. Operand order matters for
// difference.
type BooleanData struct {
	Op BoolOp `json:"op"`
	A  NodeID `json:"a"`
	B  NodeID `json:"b"`
}

func (BooleanData) nodeData() {}

// TransformData places its children. Created by the (place ...) form;
// rotation is applied before translation.
type TransformData struct {
	Translation *Vec3    `json:"translation,omitempty"`
	RotateZDeg  *float64 `json:"rotate_z_deg,omitempty"`
}

func (TransformData) nodeData() {}

// GroupData is a logical grouping (assembly, subassembly). Created by
// the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
