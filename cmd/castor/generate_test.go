package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		w, h, d float64
	}{
		{"valid", "100,200,300", false, 100, 200, 300},
		{"with spaces", " 10 , 20 , 30 ", false, 10, 20, 30},
		{"floats", "1.5,2.5,3.5", false, 1.5, 2.5, 3.5},
		{"too few", "100,200", true, 0, 0, 0},
		{"too many", "1,2,3,4", true, 0, 0, 0},
		{"not numbers", "a,b,c", true, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, d, err := parseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (w != tt.w || h != tt.h || d != tt.d) {
				t.Errorf("parseSize = %g,%g,%g, want %g,%g,%g", w, h, d, tt.w, tt.h, tt.d)
			}
		})
	}
}

// runCLI executes the root command with the given arguments.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestGenerateBoxSTEP(t *testing.T) {
	out := filepath.Join(t.TempDir(), "box.step")
	if err := runCLI(t, "generate", "box", "--size", "100,200,300", "--out", out); err != nil {
		t.Fatalf("generate box: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "ISO-10303-21;") {
		t.Error("output is not a STEP document")
	}
	if !strings.Contains(text, "MANIFOLD_SOLID_BREP") {
		t.Error("STEP output missing solid brep entity")
	}
	if !strings.Contains(text, "(100.,200.,300.)") {
		t.Error("STEP output missing the far box corner")
	}
}

func TestGeneratePlateOBJ(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plate.obj")
	err := runCLI(t, "generate", "plate",
		"--width", "100", "--height", "100", "--thickness", "20",
		"--hole", "20", "--material", "S355", "--out", out,
		"--name", "AnchorPlate")
	if err != nil {
		t.Fatalf("generate plate: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "o AnchorPlate") {
		t.Error("OBJ output missing object name")
	}
	if !strings.Contains(text, "\nf ") {
		t.Error("OBJ output has no faces")
	}
}

func TestGenerateCylinderOBJ(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cyl.obj")
	if err := runCLI(t, "generate", "cylinder",
		"--radius", "10", "--height", "50", "--out", out); err != nil {
		t.Fatalf("generate cylinder: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestGenerateBoxRejectsBadSize(t *testing.T) {
	out := filepath.Join(t.TempDir(), "box.step")
	if err := runCLI(t, "generate", "box", "--size", "100,200", "--out", out); err == nil {
		t.Error("malformed --size accepted")
	}
}

func TestGenerateRejectsUnknownExtension(t *testing.T) {
	out := filepath.Join(t.TempDir(), "box.stl")
	if err := runCLI(t, "generate", "box", "--size", "10,10,10", "--out", out); err == nil {
		t.Error("unsupported extension accepted")
	}
}

func TestEvalDesignFile(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "footing.lisp")
	source := `
;; Base plate with a drilled hole, column alongside.
(def base (plate :width 100 :height 100 :thickness 20 :name "base"))
(def tool (cylinder :radius 10 :height 40 :name "tool"))
(def drilled (difference base (place tool :at (vec3 50 50 -10)) :name "drilled"))

(assembly "footing"
  drilled
  (place (box :dx 20 :dy 20 :dz 200 :name "column") :at (vec3 40 40 20)))
`
	if err := os.WriteFile(design, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "build")
	if err := runCLI(t, "eval", design, "--out", out); err != nil {
		t.Fatalf("eval: %v", err)
	}

	for _, name := range []string{"drilled.obj", "column.obj"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected part file %s: %v", name, err)
		}
	}
}

func TestEvalReportsErrors(t *testing.T) {
	dir := t.TempDir()
	design := filepath.Join(dir, "bad.lisp")
	if err := os.WriteFile(design, []byte(`(union (box :dx 1 :dy 1 :dz 1))`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runCLI(t, "eval", design, "--out", filepath.Join(dir, "build")); err == nil {
		t.Error("design with eval errors accepted")
	}
}

func TestTriangulateNotImplemented(t *testing.T) {
	dir := t.TempDir()
	err := runCLI(t, "triangulate",
		"--in", filepath.Join(dir, "in.step"),
		"--out", filepath.Join(dir, "out.obj"))
	if err == nil {
		t.Fatal("expected STEP import error")
	}
	if !strings.Contains(err.Error(), "not implemented") {
		t.Errorf("err = %v, want not implemented", err)
	}
}
