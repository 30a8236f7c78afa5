package ops

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/poly"
	"github.com/castorlab/castor/pkg/topo"
)

// segGroup is a maximal run of loop segments sharing one segment source.
// Each group rebuilds into one exact edge: src carries the source and the
// parameter where the run starts, t1 where it ends. a and b are the chart
// endpoints, which seam segments (with no curve parameters) rebuild from.
type segGroup struct {
	src  poly.SegSource
	t1   float64
	a, b v2.Vec
}

func groupBreakAt(loop poly.Loop, i int) bool {
	cur := loop[i]
	if cur.Break {
		return true
	}
	prev := loop[(i-1+len(loop))%len(loop)]
	if prev.Src.Chain != cur.Src.Chain || prev.Src.ID != cur.Src.ID {
		return true
	}
	eps := 1e-6 * (1 + math.Abs(cur.Src.T0))
	return math.Abs(prev.Src.T1-cur.Src.T0) > eps
}

// loopGroups merges consecutive same-source segments of a loop. A loop
// with no source change anywhere is a single closed run (an island cut by
// one curve, or a full closed boundary edge).
func loopGroups(loop poly.Loop) []segGroup {
	n := len(loop)
	start := -1
	for i := 0; i < n; i++ {
		if groupBreakAt(loop, i) {
			start = i
			break
		}
	}
	if start == -1 {
		return []segGroup{{
			src: loop[0].Src,
			t1:  loop[n-1].Src.T1,
			a:   loop[0].P,
			b:   loop[0].P,
		}}
	}

	var groups []segGroup
	i := start
	for count := 0; count < n; {
		g := segGroup{src: loop[i].Src, a: loop[i].P}
		j := i
		for {
			g.t1 = loop[j].Src.T1
			g.b = loop[(j+1)%n].P
			j = (j + 1) % n
			count++
			if count >= n || groupBreakAt(loop, j) {
				break
			}
		}
		groups = append(groups, g)
		i = j
	}
	return groups
}

// collectSplits walks every rebuilt region and records where cut runs end
// on original boundary edges. All faces, cut or not, later subdivide their
// boundary at these parameters, keeping shared edges two-to-two after the
// stitch.
func (o *operand) collectSplits() {
	for fi, regs := range o.regions {
		ch := o.charts[fi]
		for _, reg := range regs {
			for _, loop := range loopLoops(reg) {
				for _, g := range loopGroups(loop) {
					if g.src.Chain || g.src.ID == topo.SeamID {
						continue
					}
					eid := ch.Uses[g.src.ID].Edge
					o.recordSplit(eid, g.src.T0)
					o.recordSplit(eid, g.t1)
				}
			}
		}
	}
}

func loopLoops(reg poly.Region) []poly.Loop {
	out := make([]poly.Loop, 0, 1+len(reg.Holes))
	out = append(out, reg.Outer)
	return append(out, reg.Holes...)
}

func (o *operand) recordSplit(eid topo.EdgeID, t float64) {
	e := o.solid.Edges[eid]
	span := e.T1 - e.T0
	eps := 1e-6 * math.Max(1, span)
	if e.Closed {
		// Closed edges span a full period; fold into [T0, T1).
		for t < e.T0 {
			t += span
		}
		for t >= e.T1 {
			t -= span
		}
	} else if t <= e.T0+eps || t >= e.T1-eps {
		return
	}
	for _, have := range o.splits[eid] {
		if math.Abs(have-t) <= eps {
			return
		}
	}
	o.splits[eid] = append(o.splits[eid], t)
}

// boundaryPieces subdivides a traversal of an original edge at the
// recorded split parameters, in traversal order. Closed-edge splits repeat
// modulo the period so shifted parameter windows still catch them.
func (o *operand) boundaryPieces(eid topo.EdgeID, tA, tB float64) [][2]float64 {
	e := o.solid.Edges[eid]
	lo, hi := tA, tB
	rev := lo > hi
	if rev {
		lo, hi = hi, lo
	}
	eps := 1e-6 * math.Max(1, hi-lo)

	cuts := []float64{lo}
	if e.Closed {
		period := e.T1 - e.T0
		for _, s := range o.splits[eid] {
			t := s
			for t > lo+eps {
				t -= period
			}
			for t <= lo+eps {
				t += period
			}
			for ; t < hi-eps; t += period {
				cuts = append(cuts, t)
			}
		}
	} else {
		for _, s := range o.splits[eid] {
			if s > lo+eps && s < hi-eps {
				cuts = append(cuts, s)
			}
		}
	}
	cuts = append(cuts, hi)
	for i := 1; i < len(cuts); i++ {
		for j := i; j > 0 && cuts[j] < cuts[j-1]; j-- {
			cuts[j], cuts[j-1] = cuts[j-1], cuts[j]
		}
	}

	var out [][2]float64
	for i := 0; i+1 < len(cuts); i++ {
		if cuts[i+1]-cuts[i] > eps {
			out = append(out, [2]float64{cuts[i], cuts[i+1]})
		}
	}
	if rev {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		for i := range out {
			out[i][0], out[i][1] = out[i][1], out[i][0]
		}
	}
	return out
}

// buildFace rebuilds one split region as an exact face. Regions that
// degenerate below tolerance report ok == false and are dropped.
func (o *operand) buildFace(st *stitcher, fid topo.FaceID, reg poly.Region, flip bool) (topo.Face, bool, error) {
	ch := o.charts[fid]
	f := o.solid.Faces[fid]

	loops := loopLoops(reg)
	if ch.Flipped {
		// The chart normalized the face's wires to CCW-outer; undo that so
		// rebuilt wires run the way the face's orientation demands.
		for i := range loops {
			loops[i] = loops[i].Reverse()
		}
	}

	var wires []topo.Wire
	for i, lp := range loops {
		w, err := o.buildWire(st, fid, lp)
		if err != nil {
			return topo.Face{}, false, err
		}
		if len(w) == 0 {
			if i == 0 {
				return topo.Face{}, false, nil // sliver region
			}
			continue
		}
		wires = append(wires, w)
	}

	nf := topo.Face{
		Guid:      base.NewGuid(),
		Surface:   f.Surface,
		SameSense: f.SameSense,
		Outer:     wires[0],
		Inners:    wires[1:],
	}
	if flip {
		nf = reverseFace(nf)
	}
	return nf, true, nil
}

func (o *operand) buildWire(st *stitcher, fid topo.FaceID, loop poly.Loop) (topo.Wire, error) {
	ch := o.charts[fid]
	var w topo.Wire
	for _, g := range loopGroups(loop) {
		switch {
		case g.src.Chain:
			c := o.sps[fid].geoms[g.src.ID].curve
			if oe, ok := st.edge(c, g.src.T0, g.t1); ok {
				w = append(w, oe)
			}
		case g.src.ID == topo.SeamID:
			pa := ch.Surface.Point(g.a.X, g.a.Y)
			pb := ch.Surface.Point(g.b.X, g.b.Y)
			if pb.Sub(pa).Length() <= o.tol.Linear {
				continue
			}
			ln, err := geom.LineThrough(pa, pb)
			if err != nil {
				return nil, err
			}
			if oe, ok := st.edge(ln, 0, pb.Sub(pa).Length()); ok {
				w = append(w, oe)
			}
		default:
			eid := ch.Uses[g.src.ID].Edge
			curve := o.solid.Edges[eid].Curve
			for _, pc := range o.boundaryPieces(eid, g.src.T0, g.t1) {
				if oe, ok := st.edge(curve, pc[0], pc[1]); ok {
					w = append(w, oe)
				}
			}
		}
	}
	return w, nil
}

// copyFace re-stitches an uncut face, splitting its boundary wherever cuts
// on neighboring faces forced new vertices onto shared edges.
func (o *operand) copyFace(st *stitcher, fid topo.FaceID, flip bool) topo.Face {
	f := o.solid.Faces[fid]
	wires := make([]topo.Wire, 0, 1+len(f.Inners))
	for _, w := range f.Wires() {
		var nw topo.Wire
		for _, oe := range w {
			e := o.solid.Edges[oe.Edge]
			tA, tB := e.T0, e.T1
			if oe.Reversed {
				tA, tB = tB, tA
			}
			for _, pc := range o.boundaryPieces(oe.Edge, tA, tB) {
				if noe, ok := st.edge(e.Curve, pc[0], pc[1]); ok {
					nw = append(nw, noe)
				}
			}
		}
		wires = append(wires, nw)
	}
	nf := topo.Face{
		Guid:      base.NewGuid(),
		Surface:   f.Surface,
		SameSense: f.SameSense,
		Outer:     wires[0],
		Inners:    wires[1:],
	}
	if flip {
		nf = reverseFace(nf)
	}
	return nf
}

// reverseFace flips a face's orientation: the sense bit toggles and every
// wire runs backwards.
func reverseFace(f topo.Face) topo.Face {
	f.SameSense = !f.SameSense
	f.Outer = reverseWire(f.Outer)
	inners := make([]topo.Wire, len(f.Inners))
	for i, w := range f.Inners {
		inners[i] = reverseWire(w)
	}
	f.Inners = inners
	return f
}

func reverseWire(w topo.Wire) topo.Wire {
	out := make(topo.Wire, len(w))
	for i, oe := range w {
		out[len(w)-1-i] = topo.OrientedEdge{Edge: oe.Edge, Reversed: !oe.Reversed}
	}
	return out
}

// stitcher accumulates the output arena, merging coincident vertices and
// geometrically identical edges from both operands.
type stitcher struct {
	tol   base.Tolerance
	verts []topo.Vertex
	edges []topo.Edge
	faces []topo.Face
}

func newStitcher(tol base.Tolerance) *stitcher {
	return &stitcher{tol: tol}
}

func (st *stitcher) vertex(p v3.Vec) topo.VertexID {
	for i, v := range st.verts {
		if v.Point.Sub(p).Length() <= st.tol.Linear {
			return topo.VertexID(i)
		}
	}
	st.verts = append(st.verts, topo.Vertex{Guid: base.NewGuid(), Point: p})
	return topo.VertexID(len(st.verts) - 1)
}

// edge interns a traversal of curve from tA to tB and returns the oriented
// use. Pieces that collapse below tolerance report ok == false. Dedup is
// geometric: endpoints, midpoint, and a quarter point, so the same cut
// produced by both operands (possibly with parameter windows shifted by a
// period) lands on one stored edge.
func (st *stitcher) edge(c geom.Curve, tA, tB float64) (topo.OrientedEdge, bool) {
	rev := tA > tB
	lo, hi := tA, tB
	if rev {
		lo, hi = hi, lo
	}

	pa := c.Point(lo)
	pb := c.Point(hi)
	mid := c.Point(lo + 0.5*(hi-lo))
	if pa.Sub(pb).Length() <= st.tol.Linear && mid.Sub(pa).Length() <= st.tol.Linear {
		return topo.OrientedEdge{}, false
	}

	va := st.vertex(pa)
	vb := st.vertex(pb)
	q1 := c.Point(lo + 0.25*(hi-lo))
	for i, e := range st.edges {
		if !((e.Start == va && e.End == vb) || (e.Start == vb && e.End == va)) {
			continue
		}
		if e.PointAt(e.T0+0.5*(e.T1-e.T0)).Sub(mid).Length() > st.tol.Linear {
			continue
		}
		if e.PointAt(e.T0+0.25*(e.T1-e.T0)).Sub(q1).Length() <= st.tol.Linear {
			return topo.OrientedEdge{Edge: topo.EdgeID(i), Reversed: rev}, true
		}
		if e.PointAt(e.T1-0.25*(e.T1-e.T0)).Sub(q1).Length() <= st.tol.Linear {
			return topo.OrientedEdge{Edge: topo.EdgeID(i), Reversed: !rev}, true
		}
	}

	st.edges = append(st.edges, topo.Edge{
		Guid:   base.NewGuid(),
		Curve:  c,
		T0:     lo,
		T1:     hi,
		Start:  va,
		End:    vb,
		Closed: va == vb,
	})
	return topo.OrientedEdge{Edge: topo.EdgeID(len(st.edges) - 1), Reversed: rev}, true
}

// finish groups the selected faces into shells by edge connectivity and
// validates the assembled solid.
func (st *stitcher) finish(tol base.Tolerance) (*topo.Solid, error) {
	if len(st.faces) == 0 {
		return topo.Empty(), nil
	}

	edgeFaces := make(map[topo.EdgeID][]int)
	for fi, f := range st.faces {
		for _, w := range f.Wires() {
			for _, oe := range w {
				edgeFaces[oe.Edge] = append(edgeFaces[oe.Edge], fi)
			}
		}
	}

	comp := make([]int, len(st.faces))
	for i := range comp {
		comp[i] = -1
	}
	var shells []topo.Shell
	for fi := range st.faces {
		if comp[fi] != -1 {
			continue
		}
		id := len(shells)
		var members []topo.FaceID
		queue := []int{fi}
		comp[fi] = id
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, topo.FaceID(cur))
			for _, w := range st.faces[cur].Wires() {
				for _, oe := range w {
					for _, nb := range edgeFaces[oe.Edge] {
						if comp[nb] == -1 {
							comp[nb] = id
							queue = append(queue, nb)
						}
					}
				}
			}
		}
		shells = append(shells, topo.Shell{Faces: members})
	}

	s := topo.NewSolid(st.verts, st.edges, st.faces, shells)
	if err := topo.CheckManifold(s, tol); err != nil {
		return nil, err
	}
	return s, nil
}
