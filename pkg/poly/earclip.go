package poly

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// EarClip triangulates a polygon with holes by bridging each hole into
// the outer loop and clipping ears. The returned vertex slice is the
// outer loop (forced counter-clockwise) followed by each hole (forced
// clockwise); triangles index into it. Bridge duplication reuses indices,
// so no new vertices are introduced.
func EarClip(outer []v2.Vec, holes [][]v2.Vec) ([]v2.Vec, [][3]int) {
	if len(outer) < 3 {
		return nil, nil
	}
	if Area(outer) < 0 {
		outer = reversePts(outer)
	}
	verts := make([]v2.Vec, 0, len(outer))
	verts = append(verts, outer...)

	type node struct {
		p   v2.Vec
		idx int
	}
	ring := make([]node, len(outer))
	for i, p := range outer {
		ring[i] = node{p: p, idx: i}
	}

	// Normalize holes to clockwise and record their vertex offsets.
	fixed := make([][]v2.Vec, len(holes))
	offsets := make([]int, len(holes))
	for i, h := range holes {
		if Area(h) > 0 {
			h = reversePts(h)
		}
		fixed[i] = h
		offsets[i] = len(verts)
		verts = append(verts, h...)
	}

	// All boundary segments, for bridge visibility tests.
	var allSegs [][2]v2.Vec
	addSegs := func(pts []v2.Vec) {
		n := len(pts)
		for i := 0; i < n; i++ {
			allSegs = append(allSegs, [2]v2.Vec{pts[i], pts[(i+1)%n]})
		}
	}
	addSegs(outer)
	for _, h := range fixed {
		addSegs(h)
	}

	visible := func(a, b v2.Vec) bool {
		for _, s := range allSegs {
			t, u, ok := SegIntersect(a, b, s[0], s[1], 0)
			if !ok {
				continue
			}
			if t > 1e-9 && t < 1-1e-9 && u > 1e-9 && u < 1-1e-9 {
				return false
			}
		}
		return true
	}

	// Bridge holes in order of decreasing max X so earlier bridges cannot
	// occlude later ones.
	order := make([]int, len(fixed))
	for i := range order {
		order[i] = i
	}
	maxX := func(h []v2.Vec) (int, float64) {
		bi, bx := 0, math.Inf(-1)
		for i, p := range h {
			if p.X > bx {
				bi, bx = i, p.X
			}
		}
		return bi, bx
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			_, xa := maxX(fixed[order[j]])
			_, xb := maxX(fixed[order[j-1]])
			if xa > xb {
				order[j], order[j-1] = order[j-1], order[j]
			} else {
				break
			}
		}
	}

	for _, hi := range order {
		h := fixed[hi]
		mi, _ := maxX(h)
		m := h[mi]

		// Find the visible ring vertex closest to m.
		best, bestDist := -1, math.Inf(1)
		for ri, nd := range ring {
			d := nd.p.Sub(m).Length()
			if d >= bestDist {
				continue
			}
			if visible(m, nd.p) {
				best, bestDist = ri, d
			}
		}
		if best == -1 {
			// No strictly visible vertex (degenerate input); take the
			// nearest and accept the overlap.
			for ri, nd := range ring {
				if d := nd.p.Sub(m).Length(); d < bestDist {
					best, bestDist = ri, d
				}
			}
		}

		// Splice: ...ring[best], hole[mi..mi-1], hole[mi], ring[best]...
		spliced := make([]node, 0, len(ring)+len(h)+2)
		spliced = append(spliced, ring[:best+1]...)
		for k := 0; k <= len(h); k++ {
			j := (mi + k) % len(h)
			spliced = append(spliced, node{p: h[j], idx: offsets[hi] + j})
		}
		spliced = append(spliced, ring[best:]...)
		ring = spliced
	}

	// Ear clipping over the bridged simple polygon.
	var tris [][3]int
	guard := 0
	for len(ring) > 3 && guard < len(ring)*len(ring)+16 {
		guard++
		n := len(ring)
		clipped := false
		for i := 0; i < n; i++ {
			a := ring[(i-1+n)%n]
			b := ring[i]
			c := ring[(i+1)%n]
			if cross2(b.p.Sub(a.p), c.p.Sub(b.p)) <= 1e-14 {
				continue // reflex or collinear
			}
			ear := true
			for j := 0; j < n; j++ {
				if j == (i-1+n)%n || j == i || j == (i+1)%n {
					continue
				}
				if pointInTri(ring[j].p, a.p, b.p, c.p) {
					ear = false
					break
				}
			}
			if ear {
				tris = append(tris, [3]int{a.idx, b.idx, c.idx})
				ring = append(ring[:i], ring[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			// Degenerate remainder: clip the most convex vertex to make
			// progress rather than spin.
			bi, bc := 0, math.Inf(-1)
			for i := 0; i < n; i++ {
				a := ring[(i-1+n)%n].p
				b := ring[i].p
				c := ring[(i+1)%n].p
				if cr := cross2(b.Sub(a), c.Sub(b)); cr > bc {
					bi, bc = i, cr
				}
			}
			a := ring[(bi-1+n)%n]
			b := ring[bi]
			c := ring[(bi+1)%n]
			if bc > 1e-14 {
				tris = append(tris, [3]int{a.idx, b.idx, c.idx})
			}
			ring = append(ring[:bi], ring[bi+1:]...)
		}
	}
	if len(ring) == 3 {
		a, b, c := ring[0], ring[1], ring[2]
		if cross2(b.p.Sub(a.p), c.p.Sub(b.p)) > 1e-14 {
			tris = append(tris, [3]int{a.idx, b.idx, c.idx})
		}
	}
	return verts, tris
}

func reversePts(pts []v2.Vec) []v2.Vec {
	out := make([]v2.Vec, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func cross2(a, b v2.Vec) float64 {
	return a.X*b.Y - a.Y*b.X
}

func pointInTri(p, a, b, c v2.Vec) bool {
	d1 := cross2(b.Sub(a), p.Sub(a))
	d2 := cross2(c.Sub(b), p.Sub(b))
	d3 := cross2(a.Sub(c), p.Sub(c))
	const eps = 1e-12
	return d1 > eps && d2 > eps && d3 > eps
}
