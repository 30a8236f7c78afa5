package ops

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/castorlab/castor/pkg/base"
	"github.com/castorlab/castor/pkg/geom"
	"github.com/castorlab/castor/pkg/poly"
	"github.com/castorlab/castor/pkg/topo"
)

// chainGeom is one cut curve registered with a face's splitter. Its index
// in the splitter is the segment source ID that the split regions record,
// so rebuilt cut edges recover the exact carrier.
type chainGeom struct {
	curve  geom.Curve
	closed bool
}

// splitter accumulates the cut pieces landing on one face and turns them
// into chains for poly.SplitRegion.
type splitter struct {
	chart *topo.Chart
	tol   base.Tolerance
	geoms []chainGeom
	runs  []chainRun
}

// chainRun is a clipped curve piece mapped into the face's chart.
type chainRun struct {
	geomID int
	ts     []float64
	pts    []v2.Vec
}

func newSplitter(ch *topo.Chart, tol base.Tolerance) *splitter {
	return &splitter{chart: ch, tol: tol}
}

// chartScale converts linear tolerances into the chart's u units.
func chartScale(ch *topo.Chart) float64 {
	switch s := ch.Surface.(type) {
	case geom.Cylinder:
		return 1 / s.Radius
	case geom.Cone:
		if s.Radius > 1 {
			return 1 / s.Radius
		}
		return 1
	}
	return 1
}

func (sp *splitter) chartTol() float64 {
	return chartTolFor(sp.chart, sp.tol)
}

func chartTolFor(ch *topo.Chart, tol base.Tolerance) float64 {
	sc := chartScale(ch)
	if sc > 1 {
		sc = 1
	}
	return tol.Linear * sc
}

// addCurve clips an intersection curve against this face's region and
// records the inside pieces. The other face's inside intervals are
// supplied so only the overlap of both faces cuts; breaks are curve
// parameters where the pieces must split so both operands rebuild the same
// edges.
func (sp *splitter) addCurve(c sectCurve, otherInside []interval, breaks []float64) {
	domain := sp.rebaseDomain(c)
	ts := sp.curveParams(c, domain)
	mine := sp.insideIntervals(c.curve, ts, false)

	eps := 1e-9 * math.Max(1, domain.span())
	var joint []interval
	if c.closed {
		period := domain.span()
		joint = intersectIntervals(wrapExpand(mine, period), wrapExpand(otherInside, period), eps)
		joint = foldIntervals(joint, period, eps)
		// Rebase folded intervals into this face's domain.
		for i := range joint {
			for joint[i].t0 < domain.t0-eps {
				joint[i].t0 += period
				joint[i].t1 += period
			}
			for joint[i].t0 >= domain.t1-eps {
				joint[i].t0 -= period
				joint[i].t1 -= period
			}
		}
		jeps := 1e-7 * math.Max(1, period)
		joint = splitAtBreaks(joint, breaks, period, jeps)
	} else {
		joint = intersectIntervals(mine, otherInside, eps)
	}
	if len(joint) == 0 {
		return
	}

	geomID := len(sp.geoms)
	sp.geoms = append(sp.geoms, chainGeom{curve: c.curve, closed: c.closed})
	for _, iv := range joint {
		if run, ok := sp.buildRun(c.curve, geomID, iv); ok {
			sp.runs = append(sp.runs, run)
		}
	}
}

// splitAtBreaks cuts each interval at every break parameter, taken modulo
// the period. Cuts landing within eps of an interval end are dropped.
func splitAtBreaks(ivs []interval, breaks []float64, period, eps float64) []interval {
	if len(breaks) == 0 {
		return ivs
	}
	var out []interval
	for _, iv := range ivs {
		cuts := []float64{iv.t0}
		for _, b := range breaks {
			t := b
			for t > iv.t0+eps {
				t -= period
			}
			for t <= iv.t0+eps {
				t += period
			}
			for ; t < iv.t1-eps; t += period {
				cuts = append(cuts, t)
			}
		}
		cuts = append(cuts, iv.t1)
		for i := 1; i < len(cuts); i++ {
			for j := i; j > 0 && cuts[j] < cuts[j-1]; j-- {
				cuts[j], cuts[j-1] = cuts[j-1], cuts[j]
			}
		}
		for i := 0; i+1 < len(cuts); i++ {
			if cuts[i+1]-cuts[i] > eps {
				out = append(out, interval{cuts[i], cuts[i+1]})
			}
		}
	}
	return out
}

// curveBreaks returns the parameters where a closed curve must split on
// account of this face's chart: the rebased domain start and, on periodic
// charts, every seam crossing of the curve's chart track.
func (sp *splitter) curveBreaks(c sectCurve) []float64 {
	if !c.closed {
		return nil
	}
	domain := sp.rebaseDomain(c)
	out := []float64{domain.t0}
	if !sp.chart.Periodic {
		return out
	}
	_, period := sp.chart.Surface.PeriodicU()
	u0 := sp.regionUMin()
	ts := sp.curveParams(c, domain)
	pts := sp.chartTrack(c.curve, ts)
	for i := 0; i+1 < len(pts); i++ {
		a := pts[i].X - u0
		b := pts[i+1].X - u0
		ka := math.Floor(a / period)
		kb := math.Floor(b / period)
		lo, hi := ka, kb
		if lo > hi {
			lo, hi = hi, lo
		}
		for k := lo + 1; k <= hi; k++ {
			if math.Abs(b-a) < 1e-15 {
				continue
			}
			f := (k*period - a) / (b - a)
			out = append(out, ts[i]+f*(ts[i+1]-ts[i]))
		}
	}
	return out
}

// insideIntervals returns the curve parameter ranges lying inside this
// face's region. With onCounts set, stretches running along the region
// boundary count as inside; the partner filter needs that so coplanar
// overlaps still cut, while a face's own cuts stay strict and never
// split off sliver regions.
func (sp *splitter) insideIntervals(curve geom.Curve, ts []float64, onCounts bool) []interval {
	region := sp.chart.Region
	ctol := sp.chartTol()
	pts := sp.chartTrack(curve, ts)
	clip := poly.ClipSegment
	if onCounts {
		clip = poly.ClipSegmentOn
	}

	shifts := []float64{0}
	if sp.periodicU() {
		_, period := sp.chart.Surface.PeriodicU()
		shifts = []float64{0, -period, period}
	}

	var out []interval
	for i := 0; i+1 < len(ts); i++ {
		for _, sh := range shifts {
			a := v2.Vec{X: pts[i].X + sh, Y: pts[i].Y}
			b := v2.Vec{X: pts[i+1].X + sh, Y: pts[i+1].Y}
			for _, f := range clip(region, a, b, ctol) {
				out = append(out, interval{
					t0: ts[i] + f[0]*(ts[i+1]-ts[i]),
					t1: ts[i] + f[1]*(ts[i+1]-ts[i]),
				})
			}
		}
	}
	return mergeIntervals(out, 1e-9*math.Max(1, abs(ts[len(ts)-1]-ts[0])))
}

// curveInside is the entry point used for the partner face: parameter
// ranges of the curve inside this face, in the curve's rebased domain.
func (sp *splitter) curveInside(c sectCurve) []interval {
	domain := sp.rebaseDomain(c)
	return sp.insideIntervals(c.curve, sp.curveParams(c, domain), true)
}

// rebaseDomain shifts a closed curve's parameter window so that, on a
// full-period chart, the curve's chart track starts at the chart seam and
// wrap splits land exactly on the seam edges.
func (sp *splitter) rebaseDomain(c sectCurve) interval {
	if !c.closed || !sp.chart.Periodic {
		return interval{c.t0, c.t1}
	}
	circ, ok := c.curve.(geom.Circle)
	if !ok {
		return interval{c.t0, c.t1}
	}
	period := c.t1 - c.t0
	u0 := sp.regionUMin()
	phase := sp.chart.Surface.Project(circ.Point(0)).X
	sign := 1.0
	if !alignedWithChartU(circ, sp.chart.Surface) {
		sign = -1
	}
	tstart := sign * (u0 - phase)
	tstart = math.Mod(tstart, period)
	if tstart < 0 {
		tstart += period
	}
	return interval{tstart, tstart + period}
}

func (sp *splitter) regionUMin() float64 {
	min := math.Inf(1)
	for _, v := range sp.chart.Region.Outer {
		if v.P.X < min {
			min = v.P.X
		}
	}
	return min
}

func alignedWithChartU(c geom.Circle, surf geom.Surface) bool {
	switch s := surf.(type) {
	case geom.Cylinder:
		return c.Axis.Dot(s.Axis) > 0
	case geom.Cone:
		return c.Axis.Dot(s.Axis) > 0
	}
	return true
}

func (sp *splitter) periodicU() bool {
	ok, _ := sp.chart.Surface.PeriodicU()
	return ok
}

// curveParams samples a curve domain finely enough for clipping in this
// chart. Curves whose chart track is straight need only their endpoints.
func (sp *splitter) curveParams(c sectCurve, domain interval) []float64 {
	switch k := c.curve.(type) {
	case geom.Line:
		return []float64{domain.t0, domain.t1}
	case geom.Circle:
		if sp.circleStraight(k) {
			// Straight chart track; keep a midpoint so shift selection
			// has an interior sample.
			return []float64{domain.t0, (domain.t0 + domain.t1) / 2, domain.t1}
		}
		step := geom.ChordAngle(k.Radius, sp.tol.Linear/4)
		n := int(math.Ceil(domain.span() / step))
		if n < 32 {
			n = 32
		}
		if n > 1024 {
			n = 1024
		}
		out := make([]float64, n+1)
		for i := 0; i <= n; i++ {
			out[i] = domain.t0 + domain.span()*float64(i)/float64(n)
		}
		return out
	case geom.Polyline:
		var out []float64
		out = append(out, domain.t0)
		for t := math.Floor(domain.t0) + 1; t < domain.t1; t++ {
			if t > domain.t0 {
				out = append(out, t)
			}
		}
		out = append(out, domain.t1)
		return out
	}
	return []float64{domain.t0, domain.t1}
}

func (sp *splitter) circleStraight(c geom.Circle) bool {
	switch s := sp.chart.Surface.(type) {
	case geom.Cylinder:
		return geom.Parallel(c.Axis, s.Axis, base.DefaultTolerance())
	case geom.Cone:
		return geom.Parallel(c.Axis, s.Axis, base.DefaultTolerance())
	}
	return false
}

// chartTrack projects curve samples into the chart with u unwrapped
// continuously along the track.
func (sp *splitter) chartTrack(curve geom.Curve, ts []float64) []v2.Vec {
	periodic, period := sp.chart.Surface.PeriodicU()
	out := make([]v2.Vec, len(ts))
	for i, t := range ts {
		uv := sp.chart.Surface.Project(curve.Point(t))
		if periodic && i > 0 {
			for uv.X-out[i-1].X > period/2 {
				uv.X -= period
			}
			for uv.X-out[i-1].X < -period/2 {
				uv.X += period
			}
		}
		out[i] = uv
	}
	return out
}

// buildRun samples one joint interval into a chart polyline, shifted so it
// lies inside the region.
func (sp *splitter) buildRun(curve geom.Curve, geomID int, iv interval) (chainRun, bool) {
	sub := sp.curveParams(sectCurve{curve: curve, t0: iv.t0, t1: iv.t1}, iv)
	pts := sp.chartTrack(curve, sub)

	shifts := []float64{0}
	if sp.periodicU() {
		_, period := sp.chart.Surface.PeriodicU()
		shifts = []float64{0, -period, period}
	}
	mid := pts[len(pts)/2]
	ctol := sp.chartTol()
	for _, sh := range shifts {
		m := v2.Vec{X: mid.X + sh, Y: mid.Y}
		if sp.chart.Region.ContainsPoint(m) || sp.chart.Region.OnBoundary(m, ctol) {
			run := chainRun{geomID: geomID, ts: sub, pts: make([]v2.Vec, len(pts))}
			for i, p := range pts {
				run.pts[i] = v2.Vec{X: p.X + sh, Y: p.Y}
			}
			return run, true
		}
	}
	return chainRun{}, false
}

// chains merges the recorded pieces end to end and returns the final cut
// chains. Pieces join where their endpoints meet away from the region
// boundary, which stitches curve pieces from different partner faces into
// single cuts.
func (sp *splitter) chains() []poly.Chain {
	jtol := 4 * sp.chartTol()
	pending := make([][]poly.V, 0, len(sp.runs))
	for _, r := range sp.runs {
		vs := make([]poly.V, len(r.pts))
		for i := range r.pts {
			vs[i] = poly.V{P: r.pts[i], Seg: r.geomID, T0: r.ts[i], T1: r.ts[i]}
			if i+1 < len(r.pts) {
				vs[i].T1 = r.ts[i+1]
			}
		}
		pending = append(pending, vs)
	}

	joinable := func(p v2.Vec) bool {
		return !sp.chart.Region.OnBoundary(p, jtol)
	}

	for {
		joined := false
	outer:
		for i := 0; i < len(pending); i++ {
			for j := 0; j < len(pending); j++ {
				if i == j {
					continue
				}
				a, b := pending[i], pending[j]
				if closeTo(last(a).P, b[0].P, jtol) && joinable(last(a).P) && !closeTo(last(a).P, a[0].P, jtol) {
					pending[i] = joinVs(a, b)
					pending = removeAt(pending, j)
					joined = true
					break outer
				}
				if closeTo(last(a).P, last(b).P, jtol) && joinable(last(a).P) && !closeTo(last(a).P, a[0].P, jtol) {
					pending[i] = joinVs(a, reverseVs(b))
					pending = removeAt(pending, j)
					joined = true
					break outer
				}
			}
		}
		if !joined {
			break
		}
	}

	out := make([]poly.Chain, 0, len(pending))
	for _, vs := range pending {
		if len(vs) < 2 {
			continue
		}
		closed := closeTo(vs[0].P, last(vs).P, jtol)
		if closed {
			vs[len(vs)-1].P = vs[0].P
		}
		out = append(out, poly.Chain{Pts: vs, Closed: closed})
	}
	return out
}

func last(vs []poly.V) poly.V { return vs[len(vs)-1] }

func closeTo(a, b v2.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}

func joinVs(a, b []poly.V) []poly.V {
	out := make([]poly.V, 0, len(a)+len(b)-1)
	out = append(out, a[:len(a)-1]...)
	// The junction vertex takes b's outgoing segment and becomes a forced
	// edge boundary so both operands split the rebuilt cut identically.
	out = append(out, b...)
	out[len(a)-1].Break = true
	return out
}

func reverseVs(vs []poly.V) []poly.V {
	n := len(vs)
	out := make([]poly.V, n)
	for i := 0; i < n; i++ {
		out[i].P = vs[n-1-i].P
		out[i].Break = vs[n-1-i].Break
		if i+1 < n {
			old := vs[n-2-i]
			out[i].Seg = old.Seg
			out[i].T0, out[i].T1 = old.T1, old.T0
		}
	}
	return out
}

func removeAt(xs [][]poly.V, i int) [][]poly.V {
	return append(xs[:i], xs[i+1:]...)
}
