package poly

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func square(s float64) []v2.Vec {
	return []v2.Vec{{}, {X: s}, {X: s, Y: s}, {Y: s}}
}

func loopFrom(pts []v2.Vec) Loop {
	l := make(Loop, len(pts))
	for i, p := range pts {
		l[i] = Vertex{P: p, Src: SegSource{ID: i, T0: 0, T1: 1}}
	}
	return l
}

func TestArea(t *testing.T) {
	if got := Area(square(10)); math.Abs(got-100) > 1e-12 {
		t.Errorf("Area = %g, want 100", got)
	}
	if got := Area(reversePts(square(10))); math.Abs(got+100) > 1e-12 {
		t.Errorf("reversed Area = %g, want -100", got)
	}
	tri := []v2.Vec{{}, {X: 4}, {X: 4, Y: 3}}
	if got := Area(tri); math.Abs(got-6) > 1e-12 {
		t.Errorf("triangle Area = %g, want 6", got)
	}
}

func TestLoopReverseKeepsMagnitude(t *testing.T) {
	l := loopFrom(square(10))
	r := l.Reverse()
	if math.Abs(l.Area()+r.Area()) > 1e-12 {
		t.Errorf("areas %g and %g should cancel", l.Area(), r.Area())
	}
	// Each reversed segment covers its source backwards.
	for _, v := range r {
		if v.Src.T0 != 1 || v.Src.T1 != 0 {
			t.Fatalf("reversed source = %+v, want T0=1 T1=0", v.Src)
		}
	}
}

func TestContains(t *testing.T) {
	sq := square(10)
	tests := []struct {
		name string
		p    v2.Vec
		want bool
	}{
		{"center", v2.Vec{X: 5, Y: 5}, true},
		{"near edge inside", v2.Vec{X: 9.9, Y: 5}, true},
		{"outside right", v2.Vec{X: 11, Y: 5}, false},
		{"outside below", v2.Vec{X: 5, Y: -1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(sq, tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRegionContainsPoint(t *testing.T) {
	r := Region{
		Outer: loopFrom(square(10)),
		Holes: []Loop{loopFrom(reversePts([]v2.Vec{
			{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6},
		}))},
	}
	if !r.ContainsPoint(v2.Vec{X: 2, Y: 2}) {
		t.Error("point between outer and hole should be inside")
	}
	if r.ContainsPoint(v2.Vec{X: 5, Y: 5}) {
		t.Error("point inside the hole should be outside")
	}
	if r.ContainsPoint(v2.Vec{X: 20, Y: 5}) {
		t.Error("point beyond the outer loop should be outside")
	}
}

func TestOnBoundary(t *testing.T) {
	r := Region{Outer: loopFrom(square(10))}
	if !r.OnBoundary(v2.Vec{X: 5, Y: 1e-8}, 1e-6) {
		t.Error("point on the bottom edge not on boundary")
	}
	if r.OnBoundary(v2.Vec{X: 5, Y: 1}, 1e-6) {
		t.Error("interior point on boundary")
	}
}

func TestDistToSegment(t *testing.T) {
	a, b := v2.Vec{}, v2.Vec{X: 10}
	tests := []struct {
		name string
		p    v2.Vec
		want float64
	}{
		{"above midpoint", v2.Vec{X: 5, Y: 3}, 3},
		{"beyond end", v2.Vec{X: 13, Y: 4}, 5},
		{"before start", v2.Vec{X: -3, Y: 0}, 3},
		{"on segment", v2.Vec{X: 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistToSegment(tt.p, a, b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DistToSegment = %g, want %g", got, tt.want)
			}
		})
	}
	// Degenerate segment falls back to point distance.
	if got := DistToSegment(v2.Vec{X: 3, Y: 4}, a, a); math.Abs(got-5) > 1e-12 {
		t.Errorf("degenerate segment dist = %g, want 5", got)
	}
}

func TestSegIntersect(t *testing.T) {
	tt, u, ok := SegIntersect(v2.Vec{}, v2.Vec{X: 10}, v2.Vec{X: 4, Y: -2}, v2.Vec{X: 4, Y: 2}, 0)
	if !ok {
		t.Fatal("crossing segments did not intersect")
	}
	if math.Abs(tt-0.4) > 1e-12 || math.Abs(u-0.5) > 1e-12 {
		t.Errorf("t,u = %g,%g, want 0.4,0.5", tt, u)
	}

	if _, _, ok := SegIntersect(v2.Vec{}, v2.Vec{X: 10}, v2.Vec{Y: 1}, v2.Vec{X: 10, Y: 1}, 0); ok {
		t.Error("parallel segments intersected")
	}
	if _, _, ok := SegIntersect(v2.Vec{}, v2.Vec{X: 10}, v2.Vec{X: 2}, v2.Vec{X: 8}, 0); ok {
		t.Error("collinear overlap should report no intersection")
	}
	// Near-miss past an endpoint, admitted by a positive eps.
	if _, _, ok := SegIntersect(v2.Vec{}, v2.Vec{X: 10}, v2.Vec{X: 10.005, Y: -1}, v2.Vec{X: 10.005, Y: 1}, 0); ok {
		t.Error("miss beyond the endpoint intersected with eps 0")
	}
	if _, _, ok := SegIntersect(v2.Vec{}, v2.Vec{X: 10}, v2.Vec{X: 10.005, Y: -1}, v2.Vec{X: 10.005, Y: 1}, 0.01); !ok {
		t.Error("eps did not expand the segment ends")
	}
}

func TestSelfIntersects(t *testing.T) {
	if SelfIntersects(square(10), 1e-9) {
		t.Error("square reported self-intersecting")
	}
	bowtie := []v2.Vec{{}, {X: 10, Y: 10}, {X: 10}, {Y: 10}}
	if !SelfIntersects(bowtie, 1e-9) {
		t.Error("bowtie not reported self-intersecting")
	}
	if SelfIntersects(square(10)[:2], 1e-9) {
		t.Error("two points cannot self-intersect")
	}
}

func TestEarClipConvex(t *testing.T) {
	// An n-gon without holes clips to n-2 triangles covering the full area.
	for _, n := range []int{3, 4, 6, 12} {
		pts := make([]v2.Vec, n)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / float64(n)
			pts[i] = v2.Vec{X: math.Cos(a), Y: math.Sin(a)}
		}
		verts, tris := EarClip(pts, nil)
		if len(tris) != n-2 {
			t.Errorf("n=%d: got %d triangles, want %d", n, len(tris), n-2)
		}
		if got, want := triArea(verts, tris), Area(pts); math.Abs(got-want) > 1e-9 {
			t.Errorf("n=%d: triangle area %g, want %g", n, got, want)
		}
	}
}

func TestEarClipReflex(t *testing.T) {
	// L-shape with one reflex vertex.
	pts := []v2.Vec{{}, {X: 10}, {X: 10, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 10}, {Y: 10}}
	verts, tris := EarClip(pts, nil)
	if len(tris) != 4 {
		t.Errorf("got %d triangles, want 4", len(tris))
	}
	if got, want := triArea(verts, tris), Area(pts); math.Abs(got-want) > 1e-9 {
		t.Errorf("triangle area %g, want %g", got, want)
	}
}

func TestEarClipWithHole(t *testing.T) {
	outer := square(10)
	hole := []v2.Vec{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}
	verts, tris := EarClip(outer, [][]v2.Vec{hole})

	if len(verts) != len(outer)+len(hole) {
		t.Errorf("got %d vertices, want %d", len(verts), len(outer)+len(hole))
	}
	wantArea := Area(outer) - math.Abs(Area(hole))
	if got := triArea(verts, tris); math.Abs(got-wantArea) > 1e-9 {
		t.Errorf("triangle area %g, want %g", got, wantArea)
	}
	// All triangles are counter-clockwise and avoid the hole interior.
	holeCenter := v2.Vec{X: 5, Y: 5}
	for _, tri := range tris {
		a, b, c := verts[tri[0]], verts[tri[1]], verts[tri[2]]
		if Area([]v2.Vec{a, b, c}) <= 0 {
			t.Errorf("triangle %v not counter-clockwise", tri)
		}
		if pointInTri(holeCenter, a, b, c) {
			t.Errorf("triangle %v covers the hole center", tri)
		}
	}
}

func TestEarClipTwoHoles(t *testing.T) {
	outer := square(20)
	h1 := []v2.Vec{{X: 3, Y: 3}, {X: 6, Y: 3}, {X: 6, Y: 6}, {X: 3, Y: 6}}
	h2 := []v2.Vec{{X: 12, Y: 12}, {X: 16, Y: 12}, {X: 16, Y: 16}, {X: 12, Y: 16}}
	verts, tris := EarClip(outer, [][]v2.Vec{h1, h2})
	wantArea := Area(outer) - math.Abs(Area(h1)) - math.Abs(Area(h2))
	if got := triArea(verts, tris); math.Abs(got-wantArea) > 1e-9 {
		t.Errorf("triangle area %g, want %g", got, wantArea)
	}
}

func TestEarClipHandlesWindingInput(t *testing.T) {
	// Clockwise outer and counter-clockwise hole are normalized internally.
	outer := reversePts(square(10))
	hole := []v2.Vec{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}
	verts, tris := EarClip(outer, [][]v2.Vec{hole})
	wantArea := 100.0 - 4.0
	if got := triArea(verts, tris); math.Abs(got-wantArea) > 1e-9 {
		t.Errorf("triangle area %g, want %g", got, wantArea)
	}
}

func TestEarClipDegenerate(t *testing.T) {
	if verts, tris := EarClip(square(10)[:2], nil); verts != nil || tris != nil {
		t.Error("two-point input should produce nothing")
	}
}

func triArea(verts []v2.Vec, tris [][3]int) float64 {
	var sum float64
	for _, tri := range tris {
		sum += math.Abs(Area([]v2.Vec{verts[tri[0]], verts[tri[1]], verts[tri[2]]}))
	}
	return sum
}

func TestInteriorPoint(t *testing.T) {
	r := Region{
		Outer: loopFrom(square(10)),
		Holes: []Loop{loopFrom(reversePts([]v2.Vec{
			{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8},
		}))},
	}
	p := r.InteriorPoint()
	if !r.ContainsPoint(p) {
		t.Errorf("interior point %v not inside the region", p)
	}
}

func TestClipSegment(t *testing.T) {
	r := Region{
		Outer: loopFrom(square(10)),
		Holes: []Loop{loopFrom(reversePts([]v2.Vec{
			{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6},
		}))},
	}
	// Horizontal segment through the hole at mid height.
	spans := ClipSegment(r, v2.Vec{X: -5, Y: 5}, v2.Vec{X: 15, Y: 5}, 1e-9)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	// Entry/exit at x=0,4 and x=6,10 map to t=0.25,0.45 and t=0.55,0.75.
	want := [][2]float64{{0.25, 0.45}, {0.55, 0.75}}
	for i, s := range spans {
		if math.Abs(s[0]-want[i][0]) > 1e-9 || math.Abs(s[1]-want[i][1]) > 1e-9 {
			t.Errorf("span %d = %v, want %v", i, s, want[i])
		}
	}

	// A segment fully outside clips to nothing.
	if spans := ClipSegment(r, v2.Vec{X: -5, Y: 20}, v2.Vec{X: 15, Y: 20}, 1e-9); len(spans) != 0 {
		t.Errorf("outside segment produced spans %v", spans)
	}
}

func TestClipSegmentOnBoundary(t *testing.T) {
	r := Region{Outer: loopFrom(square(10))}
	a, b := v2.Vec{X: 2, Y: 10}, v2.Vec{X: 8, Y: 10}

	if spans := ClipSegment(r, a, b, 1e-9); len(spans) != 0 {
		t.Errorf("strict clip counted a boundary-hugging segment: %v", spans)
	}
	spans := ClipSegmentOn(r, a, b, 1e-9)
	if len(spans) != 1 || math.Abs(spans[0][0]) > 1e-9 || math.Abs(spans[0][1]-1) > 1e-9 {
		t.Errorf("on-boundary clip = %v, want [[0 1]]", spans)
	}
}

func TestSplitRegionClosedChain(t *testing.T) {
	r := Region{Outer: loopFrom(square(10))}
	c := Chain{
		Pts: []V{
			{P: v2.Vec{X: 4, Y: 4}, Seg: 0, T0: 0, T1: 1},
			{P: v2.Vec{X: 6, Y: 4}, Seg: 1, T0: 0, T1: 1},
			{P: v2.Vec{X: 6, Y: 6}, Seg: 2, T0: 0, T1: 1},
			{P: v2.Vec{X: 4, Y: 6}, Seg: 3, T0: 0, T1: 1},
			{P: v2.Vec{X: 4, Y: 4}},
		},
		Closed: true,
	}
	regions := SplitRegion(r, []Chain{c}, 1e-9)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	// The outer part gains the chain as a hole; the island has none.
	outer, island := regions[0], regions[1]
	if len(outer.Holes) != 1 || len(island.Holes) != 0 {
		t.Fatalf("holes = %d,%d, want 1,0", len(outer.Holes), len(island.Holes))
	}
	if outer.ContainsPoint(v2.Vec{X: 5, Y: 5}) {
		t.Error("outer part still contains the island interior")
	}
	if !island.ContainsPoint(v2.Vec{X: 5, Y: 5}) {
		t.Error("island does not contain its interior")
	}
	if island.Outer.Area() <= 0 {
		t.Error("island outer loop must be counter-clockwise")
	}
}

func TestSplitRegionNestedClosedChains(t *testing.T) {
	r := Region{Outer: loopFrom(square(20))}
	ring := func(lo, hi float64) Chain {
		return Chain{
			Pts: []V{
				{P: v2.Vec{X: lo, Y: lo}}, {P: v2.Vec{X: hi, Y: lo}},
				{P: v2.Vec{X: hi, Y: hi}}, {P: v2.Vec{X: lo, Y: hi}},
				{P: v2.Vec{X: lo, Y: lo}},
			},
			Closed: true,
		}
	}
	// Inner listed first; the split still applies the outer ring first.
	regions := SplitRegion(r, []Chain{ring(8, 12), ring(4, 16)}, 1e-9)
	if len(regions) != 3 {
		t.Fatalf("got %d regions, want 3", len(regions))
	}
	counts := 0
	for _, reg := range regions {
		if reg.ContainsPoint(v2.Vec{X: 10, Y: 10}) {
			counts++
			if len(reg.Holes) != 0 {
				t.Error("innermost island should have no holes")
			}
		}
	}
	if counts != 1 {
		t.Errorf("center contained by %d regions, want exactly 1", counts)
	}
}

func TestSplitRegionOpenChain(t *testing.T) {
	r := Region{Outer: loopFrom(square(10))}
	c := Chain{
		Pts: []V{
			{P: v2.Vec{X: 5, Y: 0}, Seg: 7, T0: 0, T1: 1},
			{P: v2.Vec{X: 5, Y: 10}},
		},
	}
	regions := SplitRegion(r, []Chain{c}, 1e-9)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	var left, right bool
	for _, reg := range regions {
		if a := reg.Outer.Area(); math.Abs(a-50) > 1e-9 {
			t.Errorf("half area = %g, want 50", a)
		}
		if reg.ContainsPoint(v2.Vec{X: 2, Y: 5}) {
			left = true
		}
		if reg.ContainsPoint(v2.Vec{X: 8, Y: 5}) {
			right = true
		}
	}
	if !left || !right {
		t.Error("split halves do not cover both sides of the cut")
	}
}

func TestSplitRegionOpenChainThroughHole(t *testing.T) {
	// A chord across a hole cuts off an island between chain and hole.
	r := Region{
		Outer: loopFrom(square(10)),
		Holes: []Loop{loopFrom(reversePts([]v2.Vec{
			{X: 3, Y: 3}, {X: 7, Y: 3}, {X: 7, Y: 7}, {X: 3, Y: 7},
		}))},
	}
	c := Chain{
		Pts: []V{
			{P: v2.Vec{X: 3, Y: 5}, Seg: 9, T0: 0, T1: 1},
			{P: v2.Vec{X: 1, Y: 5}, Seg: 9, T0: 1, T1: 2},
			{P: v2.Vec{X: 3, Y: 6.5}},
		},
	}
	regions := SplitRegion(r, []Chain{c}, 1e-9)
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
}

func TestSplitRegionDropsStrandedChain(t *testing.T) {
	r := Region{Outer: loopFrom(square(10))}
	// Open chain floating in the interior never lands on a boundary.
	c := Chain{
		Pts: []V{
			{P: v2.Vec{X: 4, Y: 4}},
			{P: v2.Vec{X: 6, Y: 6}},
		},
	}
	regions := SplitRegion(r, []Chain{c}, 1e-9)
	if len(regions) != 1 {
		t.Errorf("got %d regions, want the region unchanged", len(regions))
	}
}
