package engine

import (
	"fmt"
	"strings"

	"github.com/castorlab/castor/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Castor Lisp source code before passing it
// to zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: plate-with-hole -> plate_with_hole
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpMaterial wraps a graph.MaterialSpec so it can be passed between builtins.
type sexpMaterial struct {
	spec graph.MaterialSpec
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :name %q)", m.spec.Name)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMaterial extracts a MaterialSpec from a sexpMaterial.
func toMaterial(s zygo.Sexp) (graph.MaterialSpec, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.spec, nil
	}
	return graph.MaterialSpec{}, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// kwFloat reads an optional numeric keyword argument into dst.
func kwFloat(pa kwArgs, builtin, key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", builtin, key, err)
	}
	*dst = f
	return nil
}

// kwString reads an optional string keyword argument into dst.
func kwString(pa kwArgs, builtin, key string, dst *string) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", builtin, key, err)
	}
	*dst = s
	return nil
}

// kwMaterial reads an optional material keyword argument into dst.
func kwMaterial(pa kwArgs, builtin string, dst *graph.MaterialSpec) error {
	v, ok := pa.kw["material"]
	if !ok {
		return nil
	}
	m, err := toMaterial(v)
	if err != nil {
		return fmt.Errorf("%s: material: %w", builtin, err)
	}
	*dst = m
	return nil
}

// registerBuiltins installs all Castor DSL builtins into a zygomys
// environment. The builtins operate on the provided DesignGraph,
// populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are converted to recognizable
// string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// addNode registers a node and returns a reference to it.
	addNode := func(n *graph.Node) zygo.Sexp {
		g.AddNode(n)
		return &sexpNodeRef{id: n.ID, name: n.Name}
	}

	// -----------------------------------------------------------------------
	// (material :name "S355" :notes "hot rolled")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := graph.MaterialSpec{}
		if err := kwString(pa, "material", "name", &spec.Name); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwString(pa, "material", "notes", &spec.Notes); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMaterial{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}
		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :dx 100 :dy 200 :dz 300 :name "column" :material steel)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		bd := graph.BoxData{}
		var nodeName string
		if err := kwFloat(pa, "box", "dx", &bd.Dimensions.X); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "box", "dy", &bd.Dimensions.Y); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "box", "dz", &bd.Dimensions.Z); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwString(pa, "box", "name", &nodeName); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwMaterial(pa, "box", &bd.Material); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(graph.NewNode(graph.NodePrimitive, nodeName, bd)), nil
	})

	// -----------------------------------------------------------------------
	// (plate :width 400 :height 400 :thickness 20 :name "base" :material steel)
	// -----------------------------------------------------------------------
	env.AddFunction("plate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pd := graph.PlateData{}
		var nodeName string
		if err := kwFloat(pa, "plate", "width", &pd.Width); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "plate", "height", &pd.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "plate", "thickness", &pd.Thickness); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwString(pa, "plate", "name", &nodeName); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwMaterial(pa, "plate", &pd.Material); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(graph.NewNode(graph.NodePrimitive, nodeName, pd)), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 12 :height 3000 :name "pile")
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		cd := graph.CylinderData{}
		var nodeName string
		if err := kwFloat(pa, "cylinder", "radius", &cd.Radius); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "cylinder", "height", &cd.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwString(pa, "cylinder", "name", &nodeName); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwMaterial(pa, "cylinder", &cd.Material); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(graph.NewNode(graph.NodePrimitive, nodeName, cd)), nil
	})

	// -----------------------------------------------------------------------
	// (plate-with-hole :width 400 :height 400 :thickness 20 :hole-radius 16)
	//
	// Note: registered as "plate_with_hole" because zygomys does not
	// support hyphens in identifiers. The preprocessor converts
	// plate-with-hole to plate_with_hole in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("plate_with_hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		pd := graph.PlateWithHoleData{}
		var nodeName string
		if err := kwFloat(pa, "plate-with-hole", "width", &pd.Width); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "plate-with-hole", "height", &pd.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "plate-with-hole", "thickness", &pd.Thickness); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwFloat(pa, "plate-with-hole", "hole-radius", &pd.HoleRadius); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwString(pa, "plate-with-hole", "name", &nodeName); err != nil {
			return zygo.SexpNull, err
		}
		if err := kwMaterial(pa, "plate-with-hole", &pd.Material); err != nil {
			return zygo.SexpNull, err
		}
		return addNode(graph.NewNode(graph.NodePrimitive, nodeName, pd)), nil
	})

	// -----------------------------------------------------------------------
	// (union a b), (difference a b), (intersection a b), optional :name
	// -----------------------------------------------------------------------
	addBoolean := func(builtin string, op graph.BoolOp) {
		env.AddFunction(builtin, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 operands, got %d", builtin, len(pa.positional))
			}
			a, err := toNodeRef(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: operand a: %w", builtin, err)
			}
			b, err := toNodeRef(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: operand b: %w", builtin, err)
			}
			var nodeName string
			if err := kwString(pa, builtin, "name", &nodeName); err != nil {
				return zygo.SexpNull, err
			}
			bd := graph.BooleanData{Op: op, A: a, B: b}
			return addNode(graph.NewNode(graph.NodeBoolean, nodeName, bd)), nil
		})
	}
	addBoolean("union", graph.BoolUnion)
	addBoolean("difference", graph.BoolDifference)
	addBoolean("intersection", graph.BoolIntersection)

	// -----------------------------------------------------------------------
	// (place x :at (vec3 0 0 200) :rotate-z 45)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a node reference as first argument")
		}
		childID, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		td := graph.TransformData{}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
			td.Translation = &vec
		}
		if v, ok := pa.kw["rotate-z"]; ok {
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rotate-z: %w", err)
			}
			td.RotateZDeg = &deg
		}
		var nodeName string
		if err := kwString(pa, "place", "name", &nodeName); err != nil {
			return zygo.SexpNull, err
		}

		return addNode(graph.NewNode(graph.NodeTransform, nodeName, td, childID)), nil
	})

	// -----------------------------------------------------------------------
	// (part "name")
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		n := g.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// -----------------------------------------------------------------------
	// (assembly "name" (place ...) (difference ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}
		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}

		var children []graph.NodeID
		for i := 1; i < len(args); i++ {
			ref, ok := args[i].(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("assembly: child %d: expected node reference, got %T (%s)",
					i, args[i], args[i].SexpString(nil))
			}
			children = append(children, ref.id)
		}

		node := graph.NewNode(graph.NodeGroup, asmName, graph.GroupData{}, children...)
		g.AddNode(node)
		g.AddRoot(node.ID)
		return &sexpNodeRef{id: node.ID, name: asmName}, nil
	})
}
