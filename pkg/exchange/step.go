// Package exchange serializes solids and meshes to neutral CAD formats.
// The STEP writer emits exact AP203 boundary representations; the OBJ
// writer emits triangle meshes. Both are deterministic: the same input
// always produces byte-identical output.
package exchange

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/topo"
)

// originatingSystem identifies the writer in the STEP header.
const originatingSystem = "cryxtal-castor"

// ExportSTEP serializes the solid as an ISO 10303-21 AP203 document.
// Entity ids follow the solid's arena order, shared vertices and edges
// are written exactly once, and the output carries no timestamp, so
// export is idempotent. Polyline edges have no STEP mapping and are
// rejected with ErrUnsupportedGeometry.
func ExportSTEP(s *topo.Solid) ([]byte, error) {
	return exportSTEP(s, "model.step")
}

// WriteSTEPFile exports the solid to path, creating parent directories
// as needed. The file name lands in the STEP header.
func WriteSTEPFile(s *topo.Solid, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	data, err := exportSTEP(s, filepath.Base(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write STEP file %s: %w", path, err)
	}
	return nil
}

// ImportSTEP parses a STEP document back into a solid. Not implemented;
// callers surface the error to the user.
func ImportSTEP(path string) (*topo.Solid, error) {
	return nil, fmt.Errorf("%w: STEP import from %s", base.ErrNotImplemented, path)
}

func exportSTEP(s *topo.Solid, fileName string) ([]byte, error) {
	if s.IsEmpty() {
		return nil, fmt.Errorf("%w: cannot export an empty solid", base.ErrInvalidGeometry)
	}

	w := newStepWriter()

	// Representation context: millimetres, radians, 1e-6 accuracy.
	lenUnit := w.add("( LENGTH_UNIT() NAMED_UNIT(*) SI_UNIT(.MILLI.,.METRE.) )")
	angUnit := w.add("( NAMED_UNIT(*) PLANE_ANGLE_UNIT() SI_UNIT($,.RADIAN.) )")
	solUnit := w.add("( NAMED_UNIT(*) SI_UNIT($,.STERADIAN.) SOLID_ANGLE_UNIT() )")
	uncertainty := w.add("UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(%s),#%d,'distance_accuracy_value','')",
		stepFloat(base.DefaultTolerance().Linear), lenUnit)
	geomCtx := w.add("( GEOMETRIC_REPRESENTATION_CONTEXT(3) GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d)) GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d)) REPRESENTATION_CONTEXT('','') )",
		uncertainty, lenUnit, angUnit, solUnit)

	// Product structure required by AP203.
	appCtx := w.add("APPLICATION_CONTEXT('configuration controlled 3D designs of mechanical parts and assemblies')")
	w.add("APPLICATION_PROTOCOL_DEFINITION('international standard','config_control_design',1994,#%d)", appCtx)
	prodCtx := w.add("PRODUCT_CONTEXT('',#%d,'mechanical')", appCtx)
	product := w.add("PRODUCT('castor','castor','',(#%d))", prodCtx)
	formation := w.add("PRODUCT_DEFINITION_FORMATION('','',#%d)", product)
	defCtx := w.add("PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design')", appCtx)
	prodDef := w.add("PRODUCT_DEFINITION('design','',#%d,#%d)", formation, defCtx)
	prodShape := w.add("PRODUCT_DEFINITION_SHAPE('','',#%d)", prodDef)

	// Shared topology: one VERTEX_POINT per arena vertex, one EDGE_CURVE
	// per arena edge.
	vertexIDs := make([]int, len(s.Vertices))
	for i, v := range s.Vertices {
		pt := w.addPoint(v.Point)
		vertexIDs[i] = w.add("VERTEX_POINT('',#%d)", pt)
	}
	edgeIDs := make([]int, len(s.Edges))
	for i, e := range s.Edges {
		curve, err := w.addCurve(e.Curve)
		if err != nil {
			return nil, err
		}
		edgeIDs[i] = w.add("EDGE_CURVE('',#%d,#%d,#%d,.T.)",
			vertexIDs[e.Start], vertexIDs[e.End], curve)
	}

	faceIDs := make([]int, len(s.Faces))
	for i, f := range s.Faces {
		surf, err := w.addSurface(f.Surface)
		if err != nil {
			return nil, err
		}
		var bounds []string
		for wi, wire := range f.Wires() {
			loop := w.addLoop(wire, edgeIDs)
			kind := "FACE_BOUND"
			if wi == 0 {
				kind = "FACE_OUTER_BOUND"
			}
			bounds = append(bounds, fmt.Sprintf("#%d", w.add("%s('',#%d,.T.)", kind, loop)))
		}
		sense := ".F."
		if f.SameSense {
			sense = ".T."
		}
		faceIDs[i] = w.add("ADVANCED_FACE('',(%s),#%d,%s)", strings.Join(bounds, ","), surf, sense)
	}

	var breps []string
	for _, sh := range s.Shells {
		var refs []string
		for _, fid := range sh.Faces {
			refs = append(refs, fmt.Sprintf("#%d", faceIDs[fid]))
		}
		shell := w.add("CLOSED_SHELL('',(%s))", strings.Join(refs, ","))
		breps = append(breps, fmt.Sprintf("#%d", w.add("MANIFOLD_SOLID_BREP('',#%d)", shell)))
	}

	origin := w.addPoint(v3.Vec{})
	zDir := w.addDirection(v3.Vec{Z: 1})
	xDir := w.addDirection(v3.Vec{X: 1})
	world := w.add("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)", origin, zDir, xDir)
	rep := w.add("ADVANCED_BREP_SHAPE_REPRESENTATION('',(#%d,%s),#%d)",
		world, strings.Join(breps, ","), geomCtx)
	w.add("SHAPE_DEFINITION_REPRESENTATION(#%d,#%d)", prodShape, rep)

	return w.document(fileName), nil
}

// stepWriter accumulates numbered Part 21 entities.
type stepWriter struct {
	entities []string
}

func newStepWriter() *stepWriter {
	return &stepWriter{}
}

// add appends an entity and returns its 1-based id.
func (w *stepWriter) add(format string, args ...any) int {
	w.entities = append(w.entities, fmt.Sprintf(format, args...))
	return len(w.entities)
}

func (w *stepWriter) addPoint(p v3.Vec) int {
	return w.add("CARTESIAN_POINT('',(%s,%s,%s))", stepFloat(p.X), stepFloat(p.Y), stepFloat(p.Z))
}

func (w *stepWriter) addDirection(d v3.Vec) int {
	return w.add("DIRECTION('',(%s,%s,%s))", stepFloat(d.X), stepFloat(d.Y), stepFloat(d.Z))
}

func (w *stepWriter) addPlacement(origin, axis, ref v3.Vec) int {
	o := w.addPoint(origin)
	a := w.addDirection(axis)
	r := w.addDirection(ref)
	return w.add("AXIS2_PLACEMENT_3D('',#%d,#%d,#%d)", o, a, r)
}

func (w *stepWriter) addCurve(c geom.Curve) (int, error) {
	switch c := c.(type) {
	case geom.Line:
		pt := w.addPoint(c.P0)
		dir := w.addDirection(c.Dir)
		vec := w.add("VECTOR('',#%d,1.)", dir)
		return w.add("LINE('',#%d,#%d)", pt, vec), nil
	case geom.Circle:
		place := w.addPlacement(c.Center, c.Axis, c.XDir)
		return w.add("CIRCLE('',#%d,%s)", place, stepFloat(c.Radius)), nil
	case geom.Polyline:
		return 0, fmt.Errorf("%w: polyline edges cannot be written to STEP", base.ErrUnsupportedGeometry)
	default:
		return 0, fmt.Errorf("%w: curve %T", base.ErrUnsupportedGeometry, c)
	}
}

func (w *stepWriter) addSurface(s geom.Surface) (int, error) {
	switch s := s.(type) {
	case geom.Plane:
		place := w.addPlacement(s.Origin, s.NormalDir(), s.U)
		return w.add("PLANE('',#%d)", place), nil
	case geom.Cylinder:
		place := w.addPlacement(s.Origin, s.Axis, s.XDir)
		return w.add("CYLINDRICAL_SURFACE('',#%d,%s)", place, stepFloat(s.Radius)), nil
	case geom.Cone:
		place := w.addPlacement(s.Origin, s.Axis, s.XDir)
		return w.add("CONICAL_SURFACE('',#%d,%s,%s)",
			place, stepFloat(s.Radius), stepFloat(s.HalfAngle)), nil
	default:
		return 0, fmt.Errorf("%w: surface %T", base.ErrUnsupportedGeometry, s)
	}
}

func (w *stepWriter) addLoop(wire topo.Wire, edgeIDs []int) int {
	var refs []string
	for _, oe := range wire {
		flag := ".T."
		if oe.Reversed {
			flag = ".F."
		}
		refs = append(refs, fmt.Sprintf("#%d", w.add("ORIENTED_EDGE('',*,*,#%d,%s)", edgeIDs[oe.Edge], flag)))
	}
	return w.add("EDGE_LOOP('',(%s))", strings.Join(refs, ","))
}

func (w *stepWriter) document(fileName string) []byte {
	var b strings.Builder
	b.WriteString("ISO-10303-21;\n")
	b.WriteString("HEADER;\n")
	b.WriteString("FILE_DESCRIPTION((''),'2;1');\n")
	// The timestamp field stays empty so repeated exports are
	// byte-identical.
	fmt.Fprintf(&b, "FILE_NAME('%s','',(''),('%s'),'','','');\n", fileName, originatingSystem)
	b.WriteString("FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));\n")
	b.WriteString("ENDSEC;\n")
	b.WriteString("DATA;\n")
	for i, e := range w.entities {
		fmt.Fprintf(&b, "#%d = %s;\n", i+1, e)
	}
	b.WriteString("ENDSEC;\n")
	b.WriteString("END-ISO-10303-21;\n")
	return []byte(b.String())
}

// stepFloat formats a real in Part 21 syntax: always with a decimal
// point, never in exponent form, shortest round-trip digits.
func stepFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}
