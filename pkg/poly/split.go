package poly

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Chain is a cutting polyline inside a region. A closed chain has
// Pts[0] == Pts[len-1] within tolerance and splits off an island; an open
// chain must start and end on the region boundary. Chains may be stitched
// together from several source curves, so each point carries the source ID
// and parameter of the segment leaving it.
type Chain struct {
	Pts    []V
	Closed bool
}

// V is a chain point plus the segment leaving it: the source ID and the
// source-curve parameter range from this point to the next. Keeping the
// full range on each point lets chains stitched from different curves
// stay well-parameterized across the joins. Break marks points where the
// rebuilt edges must split even though the source continues.
type V struct {
	P      v2.Vec
	Seg    int
	T0, T1 float64
	Break  bool
}

// SplitRegion cuts a region along the given chains and returns the
// resulting sub-regions. Closed chains are applied outermost-first. Open
// chains may land on boundary created by earlier chains, so they are
// retried until no further chain applies; chains that never land are
// dropped.
func SplitRegion(r Region, chains []Chain, tol float64) []Region {
	regions := []Region{r}

	closed, open := partitionChains(chains)
	for _, c := range closed {
		regions = applyClosedChain(regions, c, tol)
	}
	for len(open) > 0 {
		var pending []Chain
		progress := false
		for _, c := range open {
			next, ok := applyOpenChain(regions, c, tol)
			if ok {
				regions = next
				progress = true
			} else {
				pending = append(pending, c)
			}
		}
		if !progress {
			break
		}
		open = pending
	}
	return regions
}

func partitionChains(chains []Chain) (closed, open []Chain) {
	for _, c := range chains {
		if c.Closed {
			closed = append(closed, c)
		} else {
			open = append(open, c)
		}
	}
	// Outermost closed chains first so islands nest correctly.
	for i := 1; i < len(closed); i++ {
		for j := i; j > 0; j-- {
			if math.Abs(chainArea(closed[j])) > math.Abs(chainArea(closed[j-1])) {
				closed[j], closed[j-1] = closed[j-1], closed[j]
			} else {
				break
			}
		}
	}
	return closed, open
}

func chainArea(c Chain) float64 {
	pts := make([]v2.Vec, 0, len(c.Pts))
	for _, v := range c.Pts {
		pts = append(pts, v.P)
	}
	return Area(pts)
}

// chainLoop converts a closed chain into a tagged loop, dropping the
// duplicated last point.
func chainLoop(c Chain) Loop {
	n := len(c.Pts) - 1
	loop := make(Loop, n)
	for i := 0; i < n; i++ {
		loop[i] = Vertex{
			P:     c.Pts[i].P,
			Src:   SegSource{Chain: true, ID: c.Pts[i].Seg, T0: c.Pts[i].T0, T1: c.Pts[i].T1},
			Break: c.Pts[i].Break,
		}
	}
	return loop
}

// applyClosedChain splits the sub-region containing the chain into the
// region outside the chain (which gains it as a hole) and the island
// inside it. Holes of the original region that fall inside the island
// move with it.
func applyClosedChain(regions []Region, c Chain, tol float64) []Region {
	loop := chainLoop(c)
	if len(loop) < 3 {
		return regions
	}
	ccw := loop
	if ccw.Area() < 0 {
		ccw = ccw.Reverse()
	}
	sample := Region{Outer: ccw}.InteriorPoint()

	for i, r := range regions {
		if !r.ContainsPoint(sample) {
			continue
		}
		var keptHoles, movedHoles []Loop
		for _, h := range r.Holes {
			if Contains(ccw.Points(), h[0].P) {
				movedHoles = append(movedHoles, h)
			} else {
				keptHoles = append(keptHoles, h)
			}
		}
		outerPart := Region{Outer: r.Outer, Holes: append(keptHoles, ccw.Reverse())}
		island := Region{Outer: ccw, Holes: movedHoles}

		out := make([]Region, 0, len(regions)+1)
		out = append(out, regions[:i]...)
		out = append(out, outerPart, island)
		out = append(out, regions[i+1:]...)
		return out
	}
	return regions
}

// applyOpenChain splits along a chain whose endpoints lie on a
// sub-region's boundary. Endpoints on the same loop split that loop in
// two; endpoints on different loops merge them through a slit. The second
// result reports whether the chain landed on any sub-region.
func applyOpenChain(regions []Region, c Chain, tol float64) ([]Region, bool) {
	if len(c.Pts) < 2 {
		return regions, true
	}
	p := c.Pts[0].P
	q := c.Pts[len(c.Pts)-1].P
	mid := c.Pts[len(c.Pts)/2].P

	for i, r := range regions {
		if !r.ContainsPoint(mid) && !r.OnBoundary(mid, tol) {
			continue
		}
		pl, pOK := locateOnRegion(r, p, tol)
		ql, qOK := locateOnRegion(r, q, tol)
		if !pOK || !qOK {
			continue
		}
		var split []Region
		if pl == ql {
			split = splitSameLoop(r, pl, p, q, c, tol)
		} else {
			split = []Region{mergeLoops(r, pl, ql, p, q, c, tol)}
		}
		if split == nil {
			continue
		}
		out := make([]Region, 0, len(regions)+1)
		out = append(out, regions[:i]...)
		out = append(out, split...)
		out = append(out, regions[i+1:]...)
		return out, true
	}
	return regions, false
}

// locateOnRegion returns which loop of the region p sits on: -1 for the
// outer loop, otherwise the hole index.
func locateOnRegion(r Region, p v2.Vec, tol float64) (int, bool) {
	if loopHasPoint(r.Outer, p, tol) {
		return -1, true
	}
	for i, h := range r.Holes {
		if loopHasPoint(h, p, tol) {
			return i, true
		}
	}
	return 0, false
}

func loopOf(r Region, which int) Loop {
	if which == -1 {
		return r.Outer
	}
	return r.Holes[which]
}

// insertOnLoop splits the loop segment nearest to p and returns the new
// loop plus the index of the vertex at p. An existing vertex within tol
// is reused.
func insertOnLoop(l Loop, p v2.Vec, tol float64) (Loop, int) {
	for i, v := range l {
		if v.P.Sub(p).Length() <= tol {
			return l, i
		}
	}
	n := len(l)
	bestSeg, bestDist := -1, math.Inf(1)
	for i := 0; i < n; i++ {
		d := DistToSegment(p, l[i].P, l[(i+1)%n].P)
		if d < bestDist {
			bestDist = d
			bestSeg = i
		}
	}
	a := l[bestSeg]
	b := l[(bestSeg+1)%n]
	// Parameter of p on the source curve, interpolated along the segment.
	seg := b.P.Sub(a.P)
	f := 0.0
	if seg.Length() > 1e-15 {
		f = p.Sub(a.P).Dot(seg) / seg.Dot(seg)
	}
	tSplit := a.Src.T0 + f*(a.Src.T1-a.Src.T0)

	out := make(Loop, 0, n+1)
	out = append(out, l[:bestSeg+1]...)
	out = append(out, Vertex{P: p, Src: a.Src})
	out = append(out, l[bestSeg+1:]...)
	out[bestSeg].Src.T1 = tSplit
	out[bestSeg+1].Src.T0 = tSplit
	return out, bestSeg + 1
}

// chainVerts converts the chain into tagged vertices from its first to
// last point; the final vertex's source is left for the caller.
func chainVerts(c Chain) []Vertex {
	out := make([]Vertex, len(c.Pts))
	for i := range c.Pts {
		out[i] = Vertex{
			P:     c.Pts[i].P,
			Src:   SegSource{Chain: true, ID: c.Pts[i].Seg, T0: c.Pts[i].T0, T1: c.Pts[i].T1},
			Break: c.Pts[i].Break,
		}
	}
	return out
}

func reverseVerts(vs []Vertex) []Vertex {
	n := len(vs)
	out := make([]Vertex, n)
	for i := 0; i < n; i++ {
		out[i].P = vs[n-1-i].P
		out[i].Break = vs[n-1-i].Break
		if i+1 < n {
			out[i].Src = vs[n-2-i].Src.Reversed()
		}
	}
	return out
}

// walkLoop collects the loop vertices from index i (inclusive) forward to
// index j (inclusive), wrapping as needed.
func walkLoop(l Loop, i, j int) []Vertex {
	n := len(l)
	out := []Vertex{l[i]}
	for k := (i + 1) % n; ; k = (k + 1) % n {
		out = append(out, l[k])
		if k == j {
			break
		}
		if len(out) > n+1 {
			break // malformed loop; bail rather than spin
		}
	}
	return out
}

// joinLoop concatenates a boundary walk with a chain, dropping the
// duplicated junction vertices. The chain runs from the walk's last
// vertex back to its first.
func joinLoop(walk []Vertex, chain []Vertex) Loop {
	out := make(Loop, 0, len(walk)+len(chain))
	out = append(out, walk...)
	// The last walk vertex and chain[0] coincide: give the junction
	// vertex the chain's outgoing segment source.
	out[len(out)-1].Src = chain[0].Src
	// Skip chain[0] and the final chain vertex (coincides with walk[0]).
	for i := 1; i < len(chain)-1; i++ {
		out = append(out, chain[i])
	}
	return out
}

func splitSameLoop(r Region, which int, p, q v2.Vec, c Chain, tol float64) []Region {
	l := loopOf(r, which)
	l, pi := insertOnLoop(l, p, tol)
	l, qi := insertOnLoop(l, q, tol)
	if pi == qi {
		return nil
	}
	// Re-locate p's index: inserting q may have shifted it.
	for i, v := range l {
		if v.P.Sub(p).Length() <= tol {
			pi = i
			break
		}
	}

	fwd := chainVerts(c)       // p -> q
	rev := reverseVerts(fwd)   // q -> p
	walkPQ := walkLoop(l, qi, pi) // boundary q..p, then chain p..q closes it
	walkQP := walkLoop(l, pi, qi) // boundary p..q, then chain q..p closes it
	cand1 := joinLoop(walkPQ, fwd)
	cand2 := joinLoop(walkQP, rev)

	if which == -1 {
		// Outer loop split: both candidates are CCW region outers; holes
		// follow whichever side contains them.
		r1 := Region{Outer: cand1}
		r2 := Region{Outer: cand2}
		for _, h := range r.Holes {
			if Contains(cand1.Points(), h[0].P) {
				r1.Holes = append(r1.Holes, h)
			} else {
				r2.Holes = append(r2.Holes, h)
			}
		}
		return []Region{r1, r2}
	}

	// Hole chord: the CCW candidate is a new island region cut off
	// between the chain and the hole; the CW candidate replaces the hole.
	island, newHole := cand1, cand2
	if island.Area() < 0 {
		island, newHole = cand2, cand1
	}
	kept := Region{Outer: r.Outer}
	for hi, h := range r.Holes {
		if hi == which {
			kept.Holes = append(kept.Holes, newHole)
		} else {
			kept.Holes = append(kept.Holes, h)
		}
	}
	return []Region{kept, {Outer: island}}
}

// mergeLoops joins two loops of the region through the chain, producing a
// single region whose boundary passes along the chain twice (a slit).
// Later chains then split the slit region cleanly.
func mergeLoops(r Region, pl, ql int, p, q v2.Vec, c Chain, tol float64) Region {
	// Normalize so pl is the outer (-1) or the lower hole index.
	if ql == -1 || (pl != -1 && ql < pl) {
		pl, ql = ql, pl
		p, q = q, p
		c = reversedChain(c)
	}
	a := loopOf(r, pl)
	b := loopOf(r, ql)
	a, pi := insertOnLoop(a, p, tol)
	b, qi := insertOnLoop(b, q, tol)

	fwd := chainVerts(c)     // p -> q
	rev := reverseVerts(fwd) // q -> p

	merged := make(Loop, 0, len(a)+len(b)+2*len(fwd))
	// Walk a fully starting at p, out along the chain, around b starting
	// at q, and back along the chain.
	walkA := walkLoop(a, pi, (pi-1+len(a))%len(a))
	walkB := walkLoop(b, qi, (qi-1+len(b))%len(b))
	walkA[len(walkA)-1].Src = a[(pi-1+len(a))%len(a)].Src
	walkB[len(walkB)-1].Src = b[(qi-1+len(b))%len(b)].Src

	merged = append(merged, walkA...)
	merged = append(merged, fwd[:len(fwd)-1]...)
	merged = append(merged, walkB...)
	merged = append(merged, rev[:len(rev)-1]...)

	out := Region{Outer: merged}
	if pl == -1 {
		for hi, h := range r.Holes {
			if hi != ql {
				out.Holes = append(out.Holes, h)
			}
		}
	} else {
		for hi, h := range r.Holes {
			if hi != pl && hi != ql {
				out.Holes = append(out.Holes, h)
			}
		}
	}
	return out
}

func reversedChain(c Chain) Chain {
	n := len(c.Pts)
	pts := make([]V, n)
	for i := 0; i < n; i++ {
		pts[i].P = c.Pts[n-1-i].P
		pts[i].Break = c.Pts[n-1-i].Break
		if i+1 < n {
			// The segment leaving pts[i] is the old segment into it,
			// traversed backwards.
			old := c.Pts[n-2-i]
			pts[i].Seg = old.Seg
			pts[i].T0, pts[i].T1 = old.T1, old.T0
		}
	}
	return Chain{Pts: pts, Closed: c.Closed}
}
