package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks
// evaluation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the structural validation checks on the design graph
// and returns a slice of validation errors. An empty slice means the
// graph is valid. This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateBooleanOperands(g)...)
	return errs
}

// ValidateAll runs structural and geometric validation and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	structural := Validate(g)
	geomErrs := validateGeometry(g)

	var result ValidationResult
	for _, e := range structural {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Errors = append(result.Errors, geomErrs...)
	return result
}

// operandIDs returns the node ids a node depends on beyond Children:
// boolean operands live in the payload, not the child list.
func operandIDs(n *Node) []NodeID {
	if bd, ok := n.Data.(BooleanData); ok {
		var out []NodeID
		if !bd.A.IsZero() {
			out = append(out, bd.A)
		}
		if !bd.B.IsZero() {
			out = append(out, bd.B)
		}
		return out
	}
	return nil
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) =
// fully explored. A gray node reached during traversal is a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		for _, opID := range operandIDs(node) {
			if visit(opID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the
// graph points to a node that actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		if bd, ok := node.Data.(BooleanData); ok {
			for _, ref := range []struct {
				label string
				id    NodeID
			}{{"a", bd.A}, {"b", bd.B}} {
				if ref.id.IsZero() {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("boolean operand %s is missing", ref.label),
						Severity: SeverityError,
					})
					continue
				}
				if _, ok := g.Nodes[ref.id]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("boolean operand %s reference %s does not exist", ref.label, ref.id.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes
// share the same name) and that every entry points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node
// and warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	// BFS from all roots through child and operand edges.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
		for _, opID := range operandIDs(node) {
			if !reachable[opID] {
				reachable[opID] = true
				queue = append(queue, opID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateBooleanOperands checks that boolean nodes do not reference
// themselves and that their operands can produce geometry.
func validateBooleanOperands(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		bd, ok := node.Data.(BooleanData)
		if !ok {
			continue
		}

		if bd.A == node.ID || bd.B == node.ID {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "boolean references itself as an operand",
				Severity: SeverityError,
			})
		}
		if !bd.A.IsZero() && bd.A == bd.B {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "boolean uses the same node for both operands",
				Severity: SeverityWarning,
			})
		}

		for _, opID := range operandIDs(node) {
			op, ok := g.Nodes[opID]
			if !ok {
				continue // dangling; handled by validateReferences
			}
			if op.Kind == NodeGroup {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("boolean operand %s is a group; operands must be solids", opID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}
