package topo

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/poly"
)

// chartAngleStep bounds the angular resolution used when a curved edge has
// no exact straight image in a face's parameter space. The polygonal chart
// only drives split topology and containment; rebuilt geometry comes from
// the recorded segment sources, so this never degrades output exactness.
const chartAngleStep = math.Pi / 32

// Chart is a face flattened into the parameter space of its surface. The
// region's outer loop is always counter-clockwise; Flipped records that the
// face's own wires run the other way (outward normal opposite the surface
// frame normal). Segment sources with Chain == false index Uses; ID -1
// marks a synthetic seam segment of a full-period chart.
type Chart struct {
	Face    FaceID
	Surface geom.Surface
	Region  poly.Region
	Uses    []OrientedEdge
	Flipped bool

	// Full-period charts cover the whole u period of a periodic surface
	// between two closed-edge wires; their region is an exact rectangle
	// with seam segments at both u extremes.
	Periodic bool
	Period   float64
	VRange   [2]float64
}

// SeamID is the segment source ID of synthetic seam segments.
const SeamID = -1

// FaceChart flattens a face into its surface's parameter space.
func (s *Solid) FaceChart(id FaceID) (*Chart, error) {
	f := s.Faces[id]
	wires := f.Wires()

	uses := make([]OrientedEdge, 0, 8)
	for _, w := range wires {
		uses = append(uses, w...)
	}

	if s.isFullPeriodFace(f) {
		return s.periodicChart(id, f, uses)
	}

	ch := &Chart{Face: id, Surface: f.Surface, Uses: uses}
	periodic, period := f.Surface.PeriodicU()

	var refU float64
	haveRef := false
	gi := 0
	loops := make([]poly.Loop, 0, len(wires))
	for _, w := range wires {
		var loop poly.Loop
		for _, oe := range w {
			e := s.Edges[oe.Edge]
			ts := chartParams(e, f.Surface)
			if oe.Reversed {
				ts = reverseFloats(ts)
			}
			for k := 0; k+1 < len(ts); k++ {
				p := e.PointAt(ts[k])
				uv := f.Surface.Project(p)
				if periodic {
					if haveRef {
						uv.X = unwrapPeriodic(uv.X, refU, period)
					}
					refU, haveRef = uv.X, true
				}
				loop = append(loop, poly.Vertex{
					P:   uv,
					Src: poly.SegSource{ID: gi, T0: ts[k], T1: ts[k+1]},
				})
			}
			gi++
		}
		if len(loop) < 3 {
			return nil, fmt.Errorf("%w: face %d wire degenerates in parameter space", base.ErrTopology, id)
		}
		loops = append(loops, loop)
	}

	if loops[0].Area() < 0 {
		ch.Flipped = true
		for i := range loops {
			loops[i] = loops[i].Reverse()
		}
	}
	ch.Region = poly.Region{Outer: loops[0], Holes: loops[1:]}
	return ch, nil
}

// isFullPeriodFace reports whether the face covers the full u period of a
// periodic surface, bounded by closed circular edges around the surface
// axis.
func (s *Solid) isFullPeriodFace(f Face) bool {
	if ok, _ := f.Surface.PeriodicU(); !ok {
		return false
	}
	wires := f.Wires()
	if len(wires) != 2 {
		return false
	}
	for _, w := range wires {
		if len(w) != 1 || !s.Edges[w[0].Edge].Closed {
			return false
		}
		if !s.axisAlignedCircle(w[0].Edge, f.Surface) {
			return false
		}
	}
	return true
}

func (s *Solid) axisAlignedCircle(id EdgeID, surf geom.Surface) bool {
	c, ok := s.Edges[id].Curve.(geom.Circle)
	if !ok {
		return false
	}
	tol := base.DefaultTolerance()
	switch sf := surf.(type) {
	case geom.Cylinder:
		return geom.Parallel(c.Axis, sf.Axis, tol)
	case geom.Cone:
		return geom.Parallel(c.Axis, sf.Axis, tol)
	}
	return false
}

func (s *Solid) periodicChart(id FaceID, f Face, uses []OrientedEdge) (*Chart, error) {
	_, period := f.Surface.PeriodicU()

	type band struct {
		gi    int
		v     float64
		phase float64 // chart u at curve parameter 0
		sign  float64 // du/dt along the wire's traversal
	}
	bands := make([]band, 2)
	for i, w := range f.Wires() {
		oe := w[0]
		e := s.Edges[oe.Edge]
		c := e.Curve.(geom.Circle)
		p0 := c.Point(0)
		uv := f.Surface.Project(p0)
		sign := 1.0
		if !surfaceAxisAligned(c, f.Surface) {
			sign = -1
		}
		if oe.Reversed {
			sign = -sign
		}
		bands[i] = band{gi: i, v: uv.Y, phase: uv.X, sign: sign}
	}
	if bands[0].sign == bands[1].sign {
		return nil, fmt.Errorf("%w: face %d period wires run the same way", base.ErrTopology, id)
	}

	bot, top := bands[0], bands[1]
	if bot.v > top.v {
		bot, top = top, bot
	}
	// An outward-consistent full-period face traverses its lower wire in
	// +u. If it runs the other way the face is inverted in chart space.
	flipped := bot.sign < 0

	// Curve parameter at a given chart u, for the wire's underlying edge.
	// The traversal sign is a wire property; the curve itself always maps
	// u = phase + t * axisSign.
	curveT := func(b band, u float64) float64 {
		c := s.Edges[uses[b.gi].Edge].Curve.(geom.Circle)
		axisSign := 1.0
		if !surfaceAxisAligned(c, f.Surface) {
			axisSign = -1
		}
		return axisSign * (u - b.phase)
	}

	const nseg = 4
	u0 := bot.phase
	du := period / nseg
	var outer poly.Loop
	for k := 0; k < nseg; k++ {
		u := u0 + float64(k)*du
		outer = append(outer, poly.Vertex{
			P:   v2.Vec{X: u, Y: bot.v},
			Src: poly.SegSource{ID: bot.gi, T0: curveT(bot, u), T1: curveT(bot, u+du)},
		})
	}
	outer = append(outer, poly.Vertex{
		P:   v2.Vec{X: u0 + period, Y: bot.v},
		Src: poly.SegSource{ID: SeamID},
	})
	for k := 0; k < nseg; k++ {
		u := u0 + period - float64(k)*du
		outer = append(outer, poly.Vertex{
			P:   v2.Vec{X: u, Y: top.v},
			Src: poly.SegSource{ID: top.gi, T0: curveT(top, u), T1: curveT(top, u-du)},
		})
	}
	outer = append(outer, poly.Vertex{
		P:   v2.Vec{X: u0, Y: top.v},
		Src: poly.SegSource{ID: SeamID},
	})

	return &Chart{
		Face:     id,
		Surface:  f.Surface,
		Region:   poly.Region{Outer: outer},
		Uses:     uses,
		Flipped:  flipped,
		Periodic: true,
		Period:   period,
		VRange:   [2]float64{bot.v, top.v},
	}, nil
}

func surfaceAxisAligned(c geom.Circle, surf geom.Surface) bool {
	switch sf := surf.(type) {
	case geom.Cylinder:
		return c.Axis.Dot(sf.Axis) > 0
	case geom.Cone:
		return c.Axis.Dot(sf.Axis) > 0
	}
	return true
}

// chartParams returns ascending curve parameters sampling an edge finely
// enough for its chart image. Edges whose chart image is an exact straight
// segment need only their endpoints.
func chartParams(e Edge, surf geom.Surface) []float64 {
	switch c := e.Curve.(type) {
	case geom.Line:
		return []float64{e.T0, e.T1}
	case geom.Circle:
		if straightOnSurface(c, surf) {
			return []float64{e.T0, e.T1}
		}
		span := math.Abs(e.T1 - e.T0)
		n := int(math.Ceil(span / chartAngleStep))
		if n < 8 {
			n = 8
		}
		return linspace(e.T0, e.T1, n)
	case geom.Polyline:
		var ts []float64
		ts = append(ts, e.T0)
		for i := math.Floor(e.T0) + 1; i < e.T1; i++ {
			if i > e.T0 {
				ts = append(ts, i)
			}
		}
		ts = append(ts, e.T1)
		return ts
	}
	return []float64{e.T0, e.T1}
}

// straightOnSurface reports whether a circle maps to a straight segment in
// the surface's parameter space (an arc around the surface axis).
func straightOnSurface(c geom.Circle, surf geom.Surface) bool {
	tol := base.DefaultTolerance()
	switch sf := surf.(type) {
	case geom.Cylinder:
		return geom.Parallel(c.Axis, sf.Axis, tol)
	case geom.Cone:
		return geom.Parallel(c.Axis, sf.Axis, tol)
	}
	return false
}

func linspace(t0, t1 float64, n int) []float64 {
	out := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		out[i] = t0 + (t1-t0)*float64(i)/float64(n)
	}
	out[n] = t1
	return out
}

func reverseFloats(ts []float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[len(ts)-1-i] = t
	}
	return out
}

func unwrapPeriodic(u, ref, period float64) float64 {
	for u-ref > period/2 {
		u -= period
	}
	for u-ref < -period/2 {
		u += period
	}
	return u
}
