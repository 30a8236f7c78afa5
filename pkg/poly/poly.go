// Package poly implements the 2D polygon machinery used by profile
// validation, boolean face splitting, and tessellation: signed areas,
// containment, segment intersection, region splitting by cut chains, and
// ear-clipping triangulation with holes. All routines work in a face's
// parameter space.
package poly

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// SegSource records where a boundary segment came from, so callers can
// rebuild exact curve geometry after a split. A segment either lies on an
// original boundary edge (Chain == false, ID = edge index) or on a cutting
// chain (Chain == true, ID = chain index). T0 and T1 are the parameter
// range on the source curve.
type SegSource struct {
	Chain  bool
	ID     int
	T0, T1 float64
}

// Reversed returns the source with its parameter range flipped.
func (s SegSource) Reversed() SegSource {
	s.T0, s.T1 = s.T1, s.T0
	return s
}

// Vertex is a loop vertex. Src describes the segment from this vertex to
// the next vertex in the loop. Break marks a vertex that must survive as a
// boundary between rebuilt edges even when the segments on both sides share
// a source.
type Vertex struct {
	P     v2.Vec
	Src   SegSource
	Break bool
}

// Loop is a closed polygonal loop; the segment from the last vertex back
// to the first is implicit.
type Loop []Vertex

// Region is a polygon with holes. The outer loop is counter-clockwise,
// holes are clockwise.
type Region struct {
	Outer Loop
	Holes []Loop
}

// Points extracts the loop's positions.
func (l Loop) Points() []v2.Vec {
	pts := make([]v2.Vec, len(l))
	for i, v := range l {
		pts[i] = v.P
	}
	return pts
}

// Area returns the signed area of the loop (positive when
// counter-clockwise).
func (l Loop) Area() float64 {
	return Area(l.Points())
}

// Reverse returns the loop traversed in the opposite direction, with the
// segment sources shifted to keep describing the segment that leaves each
// vertex.
func (l Loop) Reverse() Loop {
	n := len(l)
	out := make(Loop, n)
	for j := 0; j < n; j++ {
		out[j].P = l[n-1-j].P
		out[j].Break = l[n-1-j].Break
		// Segment out[j] -> out[j+1] is the old segment
		// l[n-2-j] -> l[n-1-j], traversed backwards.
		src := l[(2*n-2-j)%n].Src
		out[j].Src = src.Reversed()
	}
	return out
}

// Area returns the shoelace signed area of a point loop.
func Area(pts []v2.Vec) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Contains reports whether p lies inside the point loop, using even-odd
// ray crossing. Points on the boundary are not reliably classified; use
// OnBoundary first when that matters.
func Contains(pts []v2.Vec, p v2.Vec) bool {
	inside := false
	n := len(pts)
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if x > p.X {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsPoint reports whether p lies inside the region: inside the
// outer loop and outside every hole.
func (r Region) ContainsPoint(p v2.Vec) bool {
	if !Contains(r.Outer.Points(), p) {
		return false
	}
	for _, h := range r.Holes {
		if Contains(h.Points(), p) {
			return false
		}
	}
	return true
}

// OnBoundary reports whether p lies within tol of any boundary segment of
// the region.
func (r Region) OnBoundary(p v2.Vec, tol float64) bool {
	if loopHasPoint(r.Outer, p, tol) {
		return true
	}
	for _, h := range r.Holes {
		if loopHasPoint(h, p, tol) {
			return true
		}
	}
	return false
}

func loopHasPoint(l Loop, p v2.Vec, tol float64) bool {
	n := len(l)
	for i := 0; i < n; i++ {
		if DistToSegment(p, l[i].P, l[(i+1)%n].P) <= tol {
			return true
		}
	}
	return false
}

// DistToSegment returns the distance from p to segment ab.
func DistToSegment(p, a, b v2.Vec) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 < 1e-24 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(d) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(d.MulScalar(t))).Length()
}

// SegIntersect intersects segments a0a1 and b0b1. On success t and u are
// the parameters of the intersection on each segment in [0, 1] (expanded
// by eps at the ends). Collinear overlaps report no intersection; callers
// detect those with distance checks.
func SegIntersect(a0, a1, b0, b1 v2.Vec, eps float64) (t, u float64, ok bool) {
	da := a1.Sub(a0)
	db := b1.Sub(b0)
	denom := da.X*db.Y - da.Y*db.X
	lenA, lenB := da.Length(), db.Length()
	if lenA < 1e-15 || lenB < 1e-15 {
		return 0, 0, false
	}
	if math.Abs(denom)/(lenA*lenB) < 1e-12 {
		return 0, 0, false
	}
	w := b0.Sub(a0)
	t = (w.X*db.Y - w.Y*db.X) / denom
	u = (w.X*da.Y - w.Y*da.X) / denom
	epsT := eps / lenA
	epsU := eps / lenB
	if t < -epsT || t > 1+epsT || u < -epsU || u > 1+epsU {
		return 0, 0, false
	}
	return t, u, true
}

// SelfIntersects reports whether any two non-adjacent segments of the
// point loop intersect, or whether an adjacent pair folds back onto
// itself within tol.
func SelfIntersects(pts []v2.Vec, tol float64) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a0, a1 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent {
				continue
			}
			b0, b1 := pts[j], pts[(j+1)%n]
			if t, u, ok := SegIntersect(a0, a1, b0, b1, -tol); ok {
				// Shared endpoints at segment ends are fine.
				if (t > 0 && t < 1) || (u > 0 && u < 1) {
					return true
				}
			}
		}
	}
	return false
}

// InteriorPoint returns a point strictly inside the region. It clips an
// ear first so the result is valid for regions with holes and reflex
// outer loops.
func (r Region) InteriorPoint() v2.Vec {
	verts, tris := EarClip(r.Outer.Points(), holePoints(r.Holes))
	if len(tris) == 0 {
		// Degenerate region; fall back to the outer centroid.
		var c v2.Vec
		for _, v := range r.Outer {
			c = c.Add(v.P)
		}
		return c.DivScalar(float64(len(r.Outer)))
	}
	// Use the largest triangle's centroid for numeric headroom.
	best, bestArea := tris[0], 0.0
	for _, tri := range tris {
		a := math.Abs(Area([]v2.Vec{verts[tri[0]], verts[tri[1]], verts[tri[2]]}))
		if a > bestArea {
			bestArea = a
			best = tri
		}
	}
	return verts[best[0]].Add(verts[best[1]]).Add(verts[best[2]]).DivScalar(3)
}

func holePoints(holes []Loop) [][]v2.Vec {
	out := make([][]v2.Vec, len(holes))
	for i, h := range holes {
		out[i] = h.Points()
	}
	return out
}

// ClipSegment clips segment ab against the region and returns the sorted
// parameter intervals of ab (in [0,1]) that lie strictly inside it.
func ClipSegment(r Region, a, b v2.Vec, tol float64) [][2]float64 {
	return clipSegment(r, a, b, tol, false)
}

// ClipSegmentOn is ClipSegment, but pieces running along the region
// boundary within tol count as inside. Callers that ask "does this curve
// touch the face" use this form; callers cutting the face itself use the
// strict form so boundary-hugging curves never split off sliver regions.
func ClipSegmentOn(r Region, a, b v2.Vec, tol float64) [][2]float64 {
	return clipSegment(r, a, b, tol, true)
}

func clipSegment(r Region, a, b v2.Vec, tol float64, onCounts bool) [][2]float64 {
	ts := []float64{0, 1}
	collect := func(l Loop) {
		n := len(l)
		for i := 0; i < n; i++ {
			if t, _, ok := SegIntersect(a, b, l[i].P, l[(i+1)%n].P, tol); ok {
				if t > 0 && t < 1 {
					ts = append(ts, t)
				}
			}
		}
	}
	collect(r.Outer)
	for _, h := range r.Holes {
		collect(h)
	}
	sortFloats(ts)
	var out [][2]float64
	d := b.Sub(a)
	for i := 0; i+1 < len(ts); i++ {
		t0, t1 := ts[i], ts[i+1]
		if t1-t0 < 1e-12 {
			continue
		}
		mid := a.Add(d.MulScalar((t0 + t1) / 2))
		if r.ContainsPoint(mid) || (onCounts && r.OnBoundary(mid, tol)) {
			if len(out) > 0 && math.Abs(out[len(out)-1][1]-t0) < 1e-12 {
				out[len(out)-1][1] = t1
			} else {
				out = append(out, [2]float64{t0, t1})
			}
		}
	}
	return out
}

func sortFloats(ts []float64) {
	// Insertion sort; crossing lists are tiny.
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j] < ts[j-1]; j-- {
			ts[j], ts[j-1] = ts[j-1], ts[j]
		}
	}
}
