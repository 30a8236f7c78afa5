package ops

// interval is a parameter range on an intersection curve. For periodic
// curves t1 may exceed the period; curve evaluation does not wrap, so the
// range stays monotone.
type interval struct {
	t0, t1 float64
}

func (iv interval) span() float64 {
	return iv.t1 - iv.t0
}

// mergeIntervals sorts intervals and coalesces ranges that touch within
// eps.
func mergeIntervals(ivs []interval, eps float64) []interval {
	if len(ivs) == 0 {
		return nil
	}
	sorted := append([]interval(nil), ivs...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].t0 < sorted[j-1].t0; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.t0 <= last.t1+eps {
			if iv.t1 > last.t1 {
				last.t1 = iv.t1
			}
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// intersectIntervals returns the ranges covered by both lists. For closed
// curves the wrap at the period seam is handled by the caller shifting one
// list; here the lists are plain sorted ranges.
func intersectIntervals(a, b []interval, eps float64) []interval {
	var out []interval
	for _, x := range a {
		for _, y := range b {
			lo, hi := x.t0, x.t1
			if y.t0 > lo {
				lo = y.t0
			}
			if y.t1 < hi {
				hi = y.t1
			}
			if hi-lo > eps {
				out = append(out, interval{lo, hi})
			}
		}
	}
	return mergeIntervals(out, eps)
}

// wrapExpand duplicates each interval shifted by -period and +period so
// interval intersection over a periodic parameter works without modular
// case analysis. Results are folded back by the caller.
func wrapExpand(ivs []interval, period float64) []interval {
	out := make([]interval, 0, 3*len(ivs))
	for _, iv := range ivs {
		out = append(out,
			interval{iv.t0 - period, iv.t1 - period},
			iv,
			interval{iv.t0 + period, iv.t1 + period})
	}
	return out
}

// foldIntervals drops duplicates produced by wrapExpand, keeping one
// representative with t0 in [0, period).
func foldIntervals(ivs []interval, period, eps float64) []interval {
	var out []interval
	for _, iv := range ivs {
		t0 := iv.t0
		shift := 0.0
		for t0 < -eps {
			t0 += period
			shift += period
		}
		for t0 >= period-eps {
			t0 -= period
			shift -= period
		}
		folded := interval{iv.t0 + shift, iv.t1 + shift}
		dup := false
		for _, have := range out {
			if abs(have.t0-folded.t0) < eps && abs(have.t1-folded.t1) < eps {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, folded)
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
