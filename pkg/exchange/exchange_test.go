package exchange_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/exchange"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/tessellate"
	"github.com/castorlab/castor/pkg/topo"
)

func mustBox(t *testing.T, dx, dy, dz float64) *topo.Solid {
	t.Helper()
	s, err := topo.Box(dx, dy, dz, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("Box(%g,%g,%g): %v", dx, dy, dz, err)
	}
	return s
}

func TestExportSTEPBox(t *testing.T) {
	s := mustBox(t, 100, 200, 300)
	data, err := exchange.ExportSTEP(s)
	if err != nil {
		t.Fatalf("ExportSTEP: %v", err)
	}
	doc := string(data)

	if !strings.HasPrefix(doc, "ISO-10303-21;") {
		t.Error("document does not start with the Part 21 magic")
	}
	if !strings.HasSuffix(strings.TrimSpace(doc), "END-ISO-10303-21;") {
		t.Error("document does not end with the Part 21 terminator")
	}
	if !strings.Contains(doc, "FILE_SCHEMA(('CONFIG_CONTROL_DESIGN'));") {
		t.Error("missing AP203 schema declaration")
	}
	if !strings.Contains(doc, "cryxtal-castor") {
		t.Error("missing originating system in header")
	}

	counts := map[string]int{
		"ADVANCED_FACE(":       6,
		"EDGE_CURVE(":          12,
		"VERTEX_POINT(":        8,
		"CLOSED_SHELL(":        1,
		"MANIFOLD_SOLID_BREP(": 1,
		"FACE_OUTER_BOUND(":    6,
	}
	for entity, want := range counts {
		if got := strings.Count(doc, entity); got != want {
			t.Errorf("%s count = %d, want %d", entity, got, want)
		}
	}

	// The far corner must appear as an exact coordinate triple.
	if !strings.Contains(doc, "(100.,200.,300.)") {
		t.Error("missing far-corner cartesian point")
	}
}

func TestExportSTEPIdempotent(t *testing.T) {
	s := mustBox(t, 10, 20, 30)
	first, err := exchange.ExportSTEP(s)
	if err != nil {
		t.Fatalf("ExportSTEP: %v", err)
	}
	second, err := exchange.ExportSTEP(s)
	if err != nil {
		t.Fatalf("ExportSTEP: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("repeated exports differ")
	}
}

func TestExportSTEPCylinder(t *testing.T) {
	s, err := topo.CylinderZ(v3.Vec{}, 5, 10, base.DefaultTolerance())
	if err != nil {
		t.Fatalf("CylinderZ: %v", err)
	}
	data, err := exchange.ExportSTEP(s)
	if err != nil {
		t.Fatalf("ExportSTEP: %v", err)
	}
	doc := string(data)
	if strings.Count(doc, "CYLINDRICAL_SURFACE(") != 1 {
		t.Error("expected exactly one cylindrical surface")
	}
	if got := strings.Count(doc, "CIRCLE("); got != 2 {
		t.Errorf("CIRCLE count = %d, want 2 (rim edges)", got)
	}
	if got := strings.Count(doc, "PLANE("); got != 2 {
		t.Errorf("PLANE count = %d, want 2 (caps)", got)
	}
}

func TestExportSTEPRejectsPolyline(t *testing.T) {
	s := mustBox(t, 10, 10, 10)
	e := s.Edges[0]
	pl, err := geom.NewPolyline([]v3.Vec{e.PointAt(e.T0), e.PointAt(e.T1)})
	if err != nil {
		t.Fatalf("NewPolyline: %v", err)
	}
	s.Edges[0].Curve = pl
	s.Edges[0].T0, s.Edges[0].T1 = 0, 1

	_, err = exchange.ExportSTEP(s)
	if !errors.Is(err, base.ErrUnsupportedGeometry) {
		t.Errorf("err = %v, want ErrUnsupportedGeometry", err)
	}
}

func TestExportSTEPRejectsEmpty(t *testing.T) {
	_, err := exchange.ExportSTEP(topo.Empty())
	if !errors.Is(err, base.ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestWriteSTEPFileCreatesDirectories(t *testing.T) {
	s := mustBox(t, 10, 10, 10)
	path := filepath.Join(t.TempDir(), "nested", "out", "box.step")

	if err := exchange.WriteSTEPFile(s, path); err != nil {
		t.Fatalf("WriteSTEPFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "FILE_NAME('box.step'") {
		t.Error("header does not carry the file name")
	}
}

func TestExportOBJBox(t *testing.T) {
	mesh, err := tessellate.Triangulate(mustBox(t, 10, 20, 30), 0.5)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	mesh.PartName = "box"
	data, err := exchange.ExportOBJ(mesh)
	if err != nil {
		t.Fatalf("ExportOBJ: %v", err)
	}

	var nv, nvn, nf int
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			nv++
		case strings.HasPrefix(line, "vn "):
			nvn++
		case strings.HasPrefix(line, "f "):
			nf++
		}
	}
	if nv != 8 {
		t.Errorf("vertex lines = %d, want 8", nv)
	}
	if nvn != 8 {
		t.Errorf("normal lines = %d, want 8", nvn)
	}
	if nf != 12 {
		t.Errorf("face lines = %d, want 12", nf)
	}
	if !strings.HasPrefix(string(data), "o box\n") {
		t.Error("missing object name line")
	}
}

func TestExportOBJRejectsEmpty(t *testing.T) {
	m, err := tessellate.Triangulate(topo.Empty(), 0.5)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if _, err := exchange.ExportOBJ(m); !errors.Is(err, base.ErrInvalidGeometry) {
		t.Errorf("err = %v, want ErrInvalidGeometry", err)
	}
}

func TestWriteOBJFileCreatesDirectories(t *testing.T) {
	mesh, err := tessellate.Triangulate(mustBox(t, 1, 1, 1), 0.5)
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "deep", "plate.obj")
	if err := exchange.WriteOBJFile(mesh, path); err != nil {
		t.Fatalf("WriteOBJFile: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("output missing or empty: %v", err)
	}
}

func TestImportSTEPNotImplemented(t *testing.T) {
	_, err := exchange.ImportSTEP("model.step")
	if !errors.Is(err, base.ErrNotImplemented) {
		t.Errorf("err = %v, want ErrNotImplemented", err)
	}
}

func TestExportIFCStub(t *testing.T) {
	err := exchange.ExportIFCStub("model.ifc")
	if !errors.Is(err, base.ErrNotImplemented) {
		t.Errorf("err = %v, want ErrNotImplemented", err)
	}
}
