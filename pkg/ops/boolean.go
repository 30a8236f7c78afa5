package ops

import (
	"fmt"
	"math"
	"runtime"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/poly"
	"github.com/castorlab/castor/pkg/topo"
)

// Op selects the boolean predicate applied to classified sub-faces.
type Op int

const (
	OpUnion Op = iota
	OpIntersection
	OpDifference
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersection"
	case OpDifference:
		return "difference"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// ShapeOpsTolerance is the default tolerance for boolean operations.
// It is deliberately coarser than the modeling tolerance: booleans merge
// entities across two independently built solids.
func ShapeOpsTolerance() base.Tolerance {
	t := base.DefaultTolerance()
	t.Linear = base.DefaultShapeOpsTolerance
	return t
}

// Union returns the solid covering the volume of either operand. Disjoint
// operands merge into one multi-shell solid.
func Union(a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error) {
	return boolean(OpUnion, a, b, tol)
}

// Intersection returns the solid covering the volume common to both
// operands. Disjoint operands yield the empty solid.
func Intersection(a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error) {
	return boolean(OpIntersection, a, b, tol)
}

// Difference returns the volume of a with the volume of b removed. The
// faces of b that survive are reversed so the result stays outward
// oriented.
func Difference(a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error) {
	return boolean(OpDifference, a, b, tol)
}

// boolean runs the split/classify/select/stitch pipeline shared by the
// three operations.
func boolean(op Op, a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error) {
	if tol.Linear <= 0 {
		return nil, fmt.Errorf("%w: boolean tolerance must be > 0, got %g", base.ErrInvalidGeometry, tol.Linear)
	}

	if a.IsEmpty() || b.IsEmpty() {
		switch op {
		case OpUnion:
			if a.IsEmpty() {
				return b.Clone(), nil
			}
			return a.Clone(), nil
		case OpIntersection:
			return topo.Empty(), nil
		default:
			if a.IsEmpty() {
				return topo.Empty(), nil
			}
			return a.Clone(), nil
		}
	}

	if !boxOverlap(a, b, tol) {
		switch op {
		case OpUnion:
			return mergeDisjoint(a, b, tol)
		case OpIntersection:
			return topo.Empty(), nil
		default:
			return a.Clone(), nil
		}
	}

	opA, err := newOperand(a, tol)
	if err != nil {
		return nil, err
	}
	opB, err := newOperand(b, tol)
	if err != nil {
		return nil, err
	}
	if err := intersectOperands(opA, opB); err != nil {
		return nil, err
	}
	opA.split()
	opB.split()
	opA.collectSplits()
	opB.collectSplits()

	clsA := newClassifier(a, opA.charts, tol)
	clsB := newClassifier(b, opB.charts, tol)

	st := newStitcher(tol)
	if err := opA.emit(st, clsB, op, true); err != nil {
		return nil, err
	}
	if err := opB.emit(st, clsA, op, false); err != nil {
		return nil, err
	}
	return st.finish(tol)
}

// operand is one input solid prepared for the pipeline: a chart and a
// splitter per face, plus the split results once the cuts are in.
type operand struct {
	solid *topo.Solid
	tol   base.Tolerance

	charts []*topo.Chart
	sps    []*splitter
	boxLo  []v3.Vec
	boxHi  []v3.Vec

	// regions[f] is nil while face f received no cuts; such faces are
	// copied whole instead of rebuilt from chart space.
	regions [][]poly.Region

	// splits are extra vertices forced onto original edges by cuts landing
	// on them, keyed by edge and recorded as curve parameters. Uncut
	// neighbor faces split their boundary at the same parameters so shared
	// edges stitch back two-to-two.
	splits map[topo.EdgeID][]float64
}

func newOperand(s *topo.Solid, tol base.Tolerance) (*operand, error) {
	o := &operand{
		solid:  s,
		tol:    tol,
		charts: make([]*topo.Chart, len(s.Faces)),
		sps:    make([]*splitter, len(s.Faces)),
		boxLo:  make([]v3.Vec, len(s.Faces)),
		boxHi:  make([]v3.Vec, len(s.Faces)),
		splits: make(map[topo.EdgeID][]float64),
	}
	for fi := range s.Faces {
		ch, err := s.FaceChart(topo.FaceID(fi))
		if err != nil {
			return nil, err
		}
		o.charts[fi] = ch
		o.sps[fi] = newSplitter(ch, tol)
		o.boxLo[fi], o.boxHi[fi] = faceBox(s, topo.FaceID(fi))
	}
	return o, nil
}

// faceBox bounds a face by sampling its edges. The closed surface set has
// no face that bulges past its boundary edges in more than sampling noise,
// so edge samples suffice for pair culling.
func faceBox(s *topo.Solid, fid topo.FaceID) (lo, hi v3.Vec) {
	lo = v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi = lo.Neg()
	grow := func(p v3.Vec) {
		lo = v3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = v3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	for _, oe := range s.FaceEdges(fid) {
		e := s.Edges[oe.Edge]
		const n = 16
		for i := 0; i <= n; i++ {
			grow(e.PointAt(e.T0 + (e.T1-e.T0)*float64(i)/n))
		}
	}
	return lo, hi
}

// intersectOperands computes the face-pair intersection curves in parallel
// and feeds them to both splitters in deterministic pair order.
func intersectOperands(a, b *operand) error {
	na, nb := len(a.solid.Faces), len(b.solid.Faces)
	results := make([][]sectCurve, na*nb)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			lo, hi, ok := boxIntersection(a.boxLo[i], a.boxHi[i], b.boxLo[j], b.boxHi[j], a.tol.Linear)
			if !ok {
				continue
			}
			idx := i*nb + j
			sa := a.solid.Faces[i].Surface
			sb := b.solid.Faces[j].Surface
			g.Go(func() error {
				cs, err := surfaceIntersections(sa, sb, lo, hi, a.tol)
				if err != nil {
					return err
				}
				results[idx] = cs
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			for _, c := range results[i*nb+j] {
				spA, spB := a.sps[i], b.sps[j]
				insideA := spA.curveInside(c)
				insideB := spB.curveInside(c)
				if len(insideA) == 0 || len(insideB) == 0 {
					continue
				}
				// Both operands split the curve at the same parameters so
				// the rebuilt cut edges dedupe across the stitch.
				var breaks []float64
				if c.closed {
					breaks = append(spA.curveBreaks(c), spB.curveBreaks(c)...)
				}
				spA.addCurve(c, insideB, breaks)
				spB.addCurve(c, insideA, breaks)
			}
		}
	}
	return nil
}

func (o *operand) split() {
	o.regions = make([][]poly.Region, len(o.solid.Faces))
	for fi, sp := range o.sps {
		chains := sp.chains()
		if len(chains) == 0 {
			continue
		}
		ctol := chartTolFor(o.charts[fi], o.tol)
		o.regions[fi] = poly.SplitRegion(o.charts[fi].Region, chains, ctol)
	}
}

// emit classifies every (sub-)face of this operand against the other solid
// and stitches the survivors.
func (o *operand) emit(st *stitcher, other *classifier, op Op, fromA bool) error {
	for fi := range o.solid.Faces {
		fid := topo.FaceID(fi)
		if o.regions[fi] == nil {
			if err := o.emitRegion(st, fid, o.charts[fi].Region, false, other, op, fromA); err != nil {
				return err
			}
			continue
		}
		for _, reg := range o.regions[fi] {
			if err := o.emitRegion(st, fid, reg, true, other, op, fromA); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *operand) emitRegion(st *stitcher, fid topo.FaceID, reg poly.Region, cut bool, other *classifier, op Op, fromA bool) error {
	uv := reg.InteriorPoint()
	p := o.charts[fid].Surface.Point(uv.X, uv.Y)
	cls, onFace, err := other.classify(p)
	if err != nil {
		return err
	}
	same := false
	if cls == classOn {
		same = outwardNormal(o.solid, fid, p).Dot(outwardNormal(other.solid, onFace, p)) > 0
	}
	keep, flip := keepFace(op, fromA, cls, same)
	if !keep {
		return nil
	}
	if !cut {
		st.faces = append(st.faces, o.copyFace(st, fid, flip))
		return nil
	}
	f, ok, err := o.buildFace(st, fid, reg, flip)
	if err != nil {
		return err
	}
	if ok {
		st.faces = append(st.faces, f)
	}
	return nil
}

// keepFace is the selection rule. Coincident sub-faces (cls == classOn)
// resolve by outward normal: when the normals agree the copy from operand
// a survives and b's duplicate is dropped; opposed normals mean the solids
// meet back to back, so union and intersection drop both while difference
// keeps a's copy (b only grazes it there).
func keepFace(op Op, fromA bool, cls pointClass, sameNormal bool) (keep, flip bool) {
	switch op {
	case OpUnion:
		if cls == classOn {
			return fromA && sameNormal, false
		}
		return cls == classOutside, false
	case OpIntersection:
		if cls == classOn {
			return fromA && sameNormal, false
		}
		return cls == classInside, false
	default: // OpDifference
		if fromA {
			if cls == classOn {
				return !sameNormal, false
			}
			return cls == classOutside, false
		}
		if cls == classOn {
			return false, false
		}
		return cls == classInside, true
	}
}

// outwardNormal evaluates a face's outward normal at a point on it.
func outwardNormal(s *topo.Solid, fid topo.FaceID, p v3.Vec) v3.Vec {
	f := s.Faces[fid]
	uv := f.Surface.Project(p)
	n := f.Surface.Normal(uv.X, uv.Y)
	if !f.SameSense {
		n = n.Neg()
	}
	return n
}

func boxOverlap(a, b *topo.Solid, tol base.Tolerance) bool {
	alo, ahi := a.BoundingBox()
	blo, bhi := b.BoundingBox()
	_, _, ok := boxIntersection(alo, ahi, blo, bhi, tol.Linear)
	return ok
}

// boxIntersection intersects two boxes expanded by pad on every side.
func boxIntersection(alo, ahi, blo, bhi v3.Vec, pad float64) (lo, hi v3.Vec, ok bool) {
	lo = v3.Vec{
		X: math.Max(alo.X, blo.X) - pad,
		Y: math.Max(alo.Y, blo.Y) - pad,
		Z: math.Max(alo.Z, blo.Z) - pad,
	}
	hi = v3.Vec{
		X: math.Min(ahi.X, bhi.X) + pad,
		Y: math.Min(ahi.Y, bhi.Y) + pad,
		Z: math.Min(ahi.Z, bhi.Z) + pad,
	}
	if lo.X > hi.X || lo.Y > hi.Y || lo.Z > hi.Z {
		return lo, hi, false
	}
	return lo, hi, true
}

// mergeDisjoint combines two solids that share no volume into one
// multi-shell solid with fresh entity identities.
func mergeDisjoint(a, b *topo.Solid, tol base.Tolerance) (*topo.Solid, error) {
	st := newStitcher(tol)
	for _, s := range []*topo.Solid{a, b} {
		o := &operand{solid: s, tol: tol, splits: make(map[topo.EdgeID][]float64)}
		for fi := range s.Faces {
			st.faces = append(st.faces, o.copyFace(st, topo.FaceID(fi), false))
		}
	}
	return st.finish(tol)
}
